package survey

import (
	"archive/zip"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// tabularExts lists archive entry extensions that are read as CSV.
var tabularExts = []string{".csv"}

var wavePattern = regexp.MustCompile(`^(\d{4})m(\d{2})$`)

// missingTokens are cell values treated as missing in numeric columns.
var missingTokens = map[string]bool{
	"":    true,
	"NA":  true,
	"NaN": true,
	"nan": true,
	".":   true,
}

// Load reads the first tabular file in the zip archive at path and decodes
// it into a Table. Any error leaves no partial table behind.
func Load(path string) (*Table, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, &DataNotFoundError{Path: path, Err: err}
	}
	defer zr.Close()

	f := findTabular(zr.File)
	if f == nil {
		return nil, &DataNotFoundError{Path: path, Reason: "archive holds no .csv file"}
	}

	rc, err := f.Open()
	if err != nil {
		return nil, &DataNotFoundError{Path: path, Reason: f.Name, Err: err}
	}
	defer rc.Close()

	t, err := Decode(rc)
	if err != nil {
		var nf *DataNotFoundError
		if errors.As(err, &nf) {
			nf.Path = path
			return nil, nf
		}
		return nil, fmt.Errorf("%s: %w", f.Name, err)
	}
	return t, nil
}

func findTabular(files []*zip.File) *zip.File {
	for _, f := range files {
		if f.FileInfo().IsDir() {
			continue
		}
		ext := strings.ToLower(path.Ext(f.Name))
		for _, want := range tabularExts {
			if ext == want {
				return f
			}
		}
	}
	return nil
}

// Decode reads CSV from r. The first record is the header. Rows may be
// ragged; cells past the end of a short row read as missing.
func Decode(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, &DataNotFoundError{Reason: "tabular file is empty"}
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	b, err := newBuilder(header)
	if err != nil {
		return nil, err
	}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row %d: %w", b.rows+1, err)
		}
		if err := b.add(rec); err != nil {
			return nil, err
		}
	}
	return b.table(), nil
}

// Parse builds a Table from an already split header and records.
func Parse(header []string, records [][]string) (*Table, error) {
	b, err := newBuilder(header)
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		if err := b.add(rec); err != nil {
			return nil, err
		}
	}
	return b.table(), nil
}

// ParseWave converts a wave identifier such as "2023m05" to the first day of
// that month in UTC.
func ParseWave(s string) (time.Time, error) {
	m := wavePattern.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, &DateParseError{Value: s}
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	if month < 1 || month > 12 {
		return time.Time{}, &DateParseError{Value: s}
	}
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC), nil
}

// parseNumber returns NaN for a missing cell and ok=false for a cell that is
// not a number.
func parseNumber(s string) (v float64, ok bool) {
	if missingTokens[s] {
		return math.NaN(), true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

type builder struct {
	rows    int
	index   map[string]int
	numbers map[string][]float64
	texts   map[string][]string
	waves   []string
	dates   []time.Time
}

func newBuilder(header []string) (*builder, error) {
	b := &builder{
		index:   make(map[string]int),
		numbers: make(map[string][]float64),
		texts:   make(map[string][]string),
	}
	for i, name := range header {
		name = strings.TrimSpace(name)
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		kind, ok := Schema[name]
		if !ok {
			continue
		}
		if _, dup := b.index[name]; dup {
			continue
		}
		b.index[name] = i
		switch kind {
		case Number:
			b.numbers[name] = []float64{}
		case Text:
			b.texts[name] = []string{}
		}
	}
	if _, ok := b.index[ColWave]; !ok {
		return nil, &SchemaMismatchError{Column: ColWave}
	}
	return b, nil
}

func (b *builder) add(rec []string) error {
	row := b.rows + 1
	cell := func(col string) string {
		i := b.index[col]
		if i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	wave := cell(ColWave)
	date, err := ParseWave(wave)
	if err != nil {
		return &DateParseError{Row: row, Value: wave}
	}

	for col := range b.numbers {
		s := cell(col)
		v, ok := parseNumber(s)
		if !ok {
			return &SchemaMismatchError{Column: col, Row: row, Value: s}
		}
		b.numbers[col] = append(b.numbers[col], v)
	}
	for col := range b.texts {
		b.texts[col] = append(b.texts[col], cell(col))
	}
	b.waves = append(b.waves, wave)
	b.dates = append(b.dates, date)
	b.rows++
	return nil
}

func (b *builder) table() *Table {
	return &Table{
		rows:    b.rows,
		numbers: b.numbers,
		texts:   b.texts,
		waves:   b.waves,
		dates:   b.dates,
	}
}
