package survey

import (
	"archive/zip"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `date,wfh_days_postCOVID_ss,wfh_days_postCOVID_boss_ss,work_industry,region,unused
2023m05,5,3,6,CA,x
2023m05,0,0,99,NY,y
2023m06,NA,2,,TX,z
`

// writeArchive writes a zip at dir/name holding the given entries.
func writeArchive(t *testing.T, dir, name string, entries map[string]string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	f, err := os.Create(p)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for n, body := range entries {
		w, err := zw.Create(n)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return p
}

func TestLoad(t *testing.T) {
	p := writeArchive(t, t.TempDir(), "wfh.zip", map[string]string{
		"readme.txt":      "not data",
		"WFHdata_Oct.csv": sampleCSV,
	})

	tbl, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, 3, tbl.Len())

	days, err := tbl.Numbers(ColDesiredDays)
	require.NoError(t, err)
	assert.Equal(t, 5.0, days[0])
	assert.Equal(t, 0.0, days[1])
	assert.True(t, math.IsNaN(days[2]), "NA should load as NaN")

	industry, err := tbl.Numbers(ColIndustry)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(industry[2]), "empty cell should load as NaN")

	regions, err := tbl.Texts(ColRegion)
	require.NoError(t, err)
	assert.Equal(t, []string{"CA", "NY", "TX"}, regions)

	assert.Equal(t, []string{"2023m05", "2023m05", "2023m06"}, tbl.Waves())
	dates := tbl.Dates()
	assert.Equal(t, time.Date(2023, time.May, 1, 0, 0, 0, 0, time.UTC), dates[0])
	assert.Equal(t, time.Date(2023, time.June, 1, 0, 0, 0, 0, time.UTC), dates[2])

	first, last := tbl.DateRange()
	assert.Equal(t, dates[0], first)
	assert.Equal(t, dates[2], last)

	assert.False(t, tbl.Has("unused"), "undeclared columns are not kept")
	assert.False(t, tbl.Has(ColEfficiency))
	_, err = tbl.Numbers(ColEfficiency)
	var sm *SchemaMismatchError
	require.ErrorAs(t, err, &sm)
	assert.Equal(t, ColEfficiency, sm.Column)
}

func TestLoadDeterministic(t *testing.T) {
	p := writeArchive(t, t.TempDir(), "wfh.zip", map[string]string{"data.csv": sampleCSV})

	a, err := Load(p)
	require.NoError(t, err)
	b, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, a.Digest(), b.Digest())
	assert.Equal(t, a.Columns(), b.Columns())

	other := writeArchive(t, t.TempDir(), "wfh.zip", map[string]string{
		"data.csv": strings.Replace(sampleCSV, "CA", "WA", 1),
	})
	c, err := Load(other)
	require.NoError(t, err)
	assert.NotEqual(t, a.Digest(), c.Digest())
}

func TestLoadDataNotFound(t *testing.T) {
	dir := t.TempDir()
	notZip := filepath.Join(dir, "plain.zip")
	require.NoError(t, os.WriteFile(notZip, []byte("hello"), 0644))

	tests := []struct {
		name string
		path string
	}{
		{"missing path", filepath.Join(dir, "nope.zip")},
		{"not an archive", notZip},
		{"no csv entry", writeArchive(t, dir, "empty.zip", map[string]string{"notes.txt": "x"})},
		{"empty csv", writeArchive(t, dir, "blank.zip", map[string]string{"data.csv": ""})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path)
			var nf *DataNotFoundError
			require.ErrorAs(t, err, &nf)
			assert.Equal(t, tt.path, nf.Path)
		})
	}
}

func TestLoadDateParseError(t *testing.T) {
	p := writeArchive(t, t.TempDir(), "wfh.zip", map[string]string{
		"data.csv": "date,region\n2023m05,CA\n2023-06,NY\n",
	})
	_, err := Load(p)
	var de *DateParseError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, 2, de.Row)
	assert.Equal(t, "2023-06", de.Value)
}

func TestLoadSchemaMismatch(t *testing.T) {
	dir := t.TempDir()

	noWave := writeArchive(t, dir, "a.zip", map[string]string{"data.csv": "region\nCA\n"})
	_, err := Load(noWave)
	var sm *SchemaMismatchError
	require.ErrorAs(t, err, &sm)
	assert.Equal(t, ColWave, sm.Column)
	assert.Zero(t, sm.Row)

	badNumber := writeArchive(t, dir, "b.zip", map[string]string{
		"data.csv": "date,wfh_eff_COVID_quant\n2023m05,90\n2023m05,high\n",
	})
	_, err = Load(badNumber)
	require.ErrorAs(t, err, &sm)
	assert.Equal(t, ColEfficiency, sm.Column)
	assert.Equal(t, 2, sm.Row)
	assert.Equal(t, "high", sm.Value)
}

func TestParseWave(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{"2023m05", time.Date(2023, time.May, 1, 0, 0, 0, 0, time.UTC), false},
		{"2020m12", time.Date(2020, time.December, 1, 0, 0, 0, 0, time.UTC), false},
		{"2023m5", time.Time{}, true},
		{"2023-05", time.Time{}, true},
		{"23m05", time.Time{}, true},
		{"2023m13", time.Time{}, true},
		{"2023m00", time.Time{}, true},
		{"", time.Time{}, true},
	}
	for _, tt := range tests {
		got, err := ParseWave(tt.in)
		if tt.wantErr {
			var de *DateParseError
			if !errors.As(err, &de) {
				t.Errorf("ParseWave(%q) error = %v, want DateParseError", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseWave(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("ParseWave(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseRaggedRows(t *testing.T) {
	tbl, err := Parse(
		[]string{"\ufeffdate", "region", "wfh_days_postCOVID_ss"},
		[][]string{{"2023m05", " CA "}, {"2023m05", "NY", "4"}},
	)
	require.NoError(t, err)
	regions, _ := tbl.Texts(ColRegion)
	assert.Equal(t, []string{"CA", "NY"}, regions)
	days, _ := tbl.Numbers(ColDesiredDays)
	assert.True(t, math.IsNaN(days[0]))
	assert.Equal(t, 4.0, days[1])
}

func TestAccessorsReturnCopies(t *testing.T) {
	tbl, err := Parse([]string{"date", "region"}, [][]string{{"2023m05", "CA"}})
	require.NoError(t, err)
	before := tbl.Digest()

	regions, _ := tbl.Texts(ColRegion)
	regions[0] = "XX"
	dates := tbl.Dates()
	dates[0] = time.Time{}

	again, _ := tbl.Texts(ColRegion)
	assert.Equal(t, "CA", again[0])
	assert.Equal(t, before, tbl.hash())
}

func TestDigestIsComputedOnce(t *testing.T) {
	tbl, err := Parse([]string{"date", "region"}, [][]string{{"2023m05", "CA"}})
	require.NoError(t, err)
	first := tbl.Digest()
	assert.Equal(t, first, tbl.hash())

	tbl.texts[ColRegion][0] = "XX"
	assert.NotEqual(t, first, tbl.hash())
	assert.Equal(t, first, tbl.Digest())
}
