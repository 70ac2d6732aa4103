package survey

import (
	"encoding/binary"
	"math"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Column names as they appear in the survey CSV header.
const (
	ColWave                = "date"
	ColDesiredDays         = "wfh_days_postCOVID_ss"
	ColEmployerDays        = "wfh_days_postCOVID_boss_ss"
	ColDesiredDaysCategory = "wfh_days_postCOVID_s"
	ColEfficiency          = "wfh_eff_COVID_quant"
	ColCommuteTime         = "commutetime_quant"
	ColIndustry            = "work_industry"
	ColRegion              = "region"
	ColBenefitCommute      = "wfh_top3benefits_commute"
	ColBenefitQuiet        = "wfh_top3benefits_quiet"
	ColBenefitMeetings     = "wfh_top3benefits_meetings"
	ColChallengeInternet   = "lesseff_reasons_internet"
	ColReaction            = "wbp_react_qual"
	ColPayTradeoff         = "wfh_feel_quant"

	// ColDate is derived from ColWave at load time.
	ColDate = "date_proper"
)

// Kind is the declared type of a column.
type Kind int

const (
	Number Kind = iota
	Text
	Wave
)

func (k Kind) String() string {
	switch k {
	case Number:
		return "number"
	case Text:
		return "text"
	case Wave:
		return "wave"
	}
	return "unknown"
}

// Schema declares the type of every column the dashboard reads. Other columns
// in the file are ignored.
var Schema = map[string]Kind{
	ColWave:                Wave,
	ColDesiredDays:         Number,
	ColEmployerDays:        Number,
	ColDesiredDaysCategory: Text,
	ColEfficiency:          Number,
	ColCommuteTime:         Number,
	ColIndustry:            Number,
	ColRegion:              Text,
	ColBenefitCommute:      Number,
	ColBenefitQuiet:        Number,
	ColBenefitMeetings:     Number,
	ColChallengeInternet:   Number,
	ColReaction:            Number,
	ColPayTradeoff:         Number,
}

// Table is the loaded survey: one row per respondent per wave, stored by
// column. It is never modified after load; accessors hand out copies.
type Table struct {
	rows    int
	numbers map[string][]float64 // NaN marks a missing cell
	texts   map[string][]string  // "" marks a missing cell
	waves   []string
	dates   []time.Time

	digestOnce sync.Once
	digest     uint64
}

// Len returns the number of rows.
func (t *Table) Len() int { return t.rows }

// Has reports whether column col was present in the source file.
func (t *Table) Has(col string) bool {
	if col == ColWave || col == ColDate {
		return true
	}
	if _, ok := t.numbers[col]; ok {
		return true
	}
	_, ok := t.texts[col]
	return ok
}

// Columns returns the present columns, sorted, including the derived date.
func (t *Table) Columns() []string {
	cols := []string{ColWave, ColDate}
	for c := range t.numbers {
		cols = append(cols, c)
	}
	for c := range t.texts {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}

// Numbers returns a copy of a numeric column.
func (t *Table) Numbers(col string) ([]float64, error) {
	v, ok := t.numbers[col]
	if !ok {
		return nil, &SchemaMismatchError{Column: col}
	}
	return slices.Clone(v), nil
}

// Texts returns a copy of a text column.
func (t *Table) Texts(col string) ([]string, error) {
	v, ok := t.texts[col]
	if !ok {
		return nil, &SchemaMismatchError{Column: col}
	}
	return slices.Clone(v), nil
}

// Waves returns a copy of the raw wave identifiers.
func (t *Table) Waves() []string { return slices.Clone(t.waves) }

// Dates returns a copy of the normalized wave dates.
func (t *Table) Dates() []time.Time { return slices.Clone(t.dates) }

// DateRange returns the first and last wave dates. Both are zero for an empty
// table.
func (t *Table) DateRange() (first, last time.Time) {
	for i, d := range t.dates {
		if i == 0 || d.Before(first) {
			first = d
		}
		if i == 0 || d.After(last) {
			last = d
		}
	}
	return first, last
}

// Digest fingerprints the table contents. Two loads of the same archive
// produce the same digest. It is computed on first use.
func (t *Table) Digest() uint64 {
	t.digestOnce.Do(func() { t.digest = t.hash() })
	return t.digest
}

func (t *Table) hash() uint64 {
	h := xxhash.New()
	var buf []byte
	buf = binary.LittleEndian.AppendUint64(buf, uint64(t.rows))
	for _, col := range t.Columns() {
		buf = append(buf, col...)
		buf = append(buf, 0)
		nums, isNumber := t.numbers[col]
		switch {
		case col == ColWave:
			for _, s := range t.waves {
				buf = append(buf, s...)
				buf = append(buf, 0)
			}
		case col == ColDate:
			for _, d := range t.dates {
				buf = binary.LittleEndian.AppendUint64(buf, uint64(d.Unix()))
			}
		case isNumber:
			for _, v := range nums {
				buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(v))
			}
		default:
			for _, s := range t.texts[col] {
				buf = append(buf, s...)
				buf = append(buf, 0)
			}
		}
		h.Write(buf)
		buf = buf[:0]
	}
	return h.Sum64()
}
