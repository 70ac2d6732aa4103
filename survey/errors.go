package survey

import "fmt"

// DataNotFoundError is returned when the archive is missing, unreadable, or
// holds no tabular file.
type DataNotFoundError struct {
	Path   string
	Reason string
	Err    error
}

func (e *DataNotFoundError) Error() string {
	msg := "data not found: " + e.Path
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DataNotFoundError) Unwrap() error { return e.Err }

// DateParseError is returned when a wave identifier does not look like
// YYYYmMM. Row is the 1-based data row (the header is not counted).
type DateParseError struct {
	Row   int
	Value string
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("row %d: malformed wave identifier %q (want YYYYmMM)", e.Row, e.Value)
}

// SchemaMismatchError is returned when a required column is absent, or when a
// cell cannot be coerced to the column's declared type. Row is zero for an
// absent column.
type SchemaMismatchError struct {
	Column string
	Row    int
	Value  string
}

func (e *SchemaMismatchError) Error() string {
	if e.Row == 0 {
		return fmt.Sprintf("column %q not found", e.Column)
	}
	return fmt.Sprintf("column %q row %d: cannot coerce %q to %s", e.Column, e.Row, e.Value, Schema[e.Column])
}

// UnmappedCodeWarning records codes outside a label mapping. It is never
// fatal: the affected rows get a placeholder label or are left out.
type UnmappedCodeWarning struct {
	Column string
	Code   string
	Count  int
}

func (w *UnmappedCodeWarning) Error() string {
	return fmt.Sprintf("column %q: %d rows with unmapped code %q", w.Column, w.Count, w.Code)
}
