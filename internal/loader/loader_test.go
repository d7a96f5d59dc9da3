package loader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaneschanro-gif/recovery-dashboard/internal/incident"
)

const sample = `Year,Month,manufacturer,model,client_name,recovered
2023.0,1.0,Toyota,Hilux,ACME Corp,Yes
2023,2,Nissan,,Beta Ltd, yes
2024,1,,Corolla,,No

2024.0,3,Ford,Ranger,Gamma,YES 
`

func TestParse_BuildsDataset(t *testing.T) {
	ds, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)

	assert.Equal(t, 4, ds.Len(), "blank line skipped")
	assert.Equal(t,
		[]string{"Year", "Month", "manufacturer", "model", "client_name", "recovered", "Recovered01"},
		ds.Columns())

	v, ok := ds.Value(0, incident.ColYear)
	assert.True(t, ok)
	assert.Equal(t, "2023", v, "integral float normalised")

	v, _ = ds.Value(0, incident.ColMonth)
	assert.Equal(t, "1", v)

	_, ok = ds.Value(1, incident.ColModel)
	assert.False(t, ok, "empty cell is null")

	_, ok = ds.Value(2, incident.ColManufacturer)
	assert.False(t, ok)

	var flags []int
	for i := 0; i < ds.Len(); i++ {
		flags = append(flags, ds.Recovered(i))
	}
	assert.Equal(t, []int{1, 1, 0, 1}, flags)
}

func TestParse_KeepsRawCellText(t *testing.T) {
	data := "Year,manufacturer,client_name,recovered\n 2023.0 , Toyota,ACME Corp ,Yes\n2024, , ,No\n"
	ds, err := Parse(strings.NewReader(data))
	require.NoError(t, err)

	v, _ := ds.Value(0, incident.ColYear)
	assert.Equal(t, "2023", v, "numeric columns are trimmed")
	v, _ = ds.Value(0, incident.ColManufacturer)
	assert.Equal(t, " Toyota", v)
	v, _ = ds.Value(0, incident.ColClientName)
	assert.Equal(t, "ACME Corp ", v)

	v, ok := ds.Value(1, incident.ColClientName)
	assert.True(t, ok, "whitespace cell is a value, not null")
	assert.Equal(t, " ", v)
}

func TestParse_KeepsStoredRecovered01(t *testing.T) {
	data := "recovered,Recovered01\nNo,1\nYes,0\n"
	ds, err := Parse(strings.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, 1, ds.Recovered(0))
	assert.Equal(t, 0, ds.Recovered(1))
}

func TestParse_RaggedRowsAndBOM(t *testing.T) {
	data := "\ufeffmanufacturer,recovered,extra\nToyota,yes\nNissan,no,x,overflow\n"
	ds, err := Parse(strings.NewReader(data))
	require.NoError(t, err)

	assert.True(t, ds.HasColumn(incident.ColManufacturer))
	assert.Equal(t, 2, ds.Len())
	v, ok := ds.Value(1, "extra")
	assert.True(t, ok)
	assert.Equal(t, "x", v)
}

func TestParse_NonNumericColumnsUntouched(t *testing.T) {
	data := "model,recovered\n3.0,yes\n"
	ds, err := Parse(strings.NewReader(data))
	require.NoError(t, err)

	v, _ := ds.Value(0, incident.ColModel)
	assert.Equal(t, "3.0", v)
}

func TestParse_MissingOutcomeColumn(t *testing.T) {
	_, err := Parse(strings.NewReader("manufacturer\nToyota\n"))
	assert.ErrorIs(t, err, incident.ErrMissingDimension)
}

func TestParse_Empty(t *testing.T) {
	_, err := Parse(strings.NewReader(""))
	assert.Error(t, err)
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "detail.csv")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0644))

	ds, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, 4, ds.Len())

	_, err = ParseFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestNormalizeNumber(t *testing.T) {
	tests := map[string]string{
		"2023.0": "2023",
		"12":     "12",
		"1.5":    "1.5",
		"2e3":    "2000",
		"abc":    "abc",
	}
	for in, want := range tests {
		assert.Equal(t, want, normalizeNumber(in), "normalizeNumber(%q)", in)
	}
}
