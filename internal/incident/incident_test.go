package incident

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recoveredOnly(values ...string) *Dataset {
	records := make([]Record, len(values))
	for i, v := range values {
		records[i] = NewRecord(map[string]string{ColRecovered: v})
	}
	return NewDataset([]string{ColRecovered}, records)
}

func TestEnsureRecovered01_DerivesFromRecovered(t *testing.T) {
	ds := recoveredOnly("Yes", " yes", "No", "YES ")
	require.NoError(t, ds.EnsureRecovered01())

	var got []int
	for i := 0; i < ds.Len(); i++ {
		got = append(got, ds.Recovered(i))
	}
	assert.Equal(t, []int{1, 1, 0, 1}, got)
	assert.True(t, ds.HasColumn(ColRecovered01))
	assert.True(t, ds.Derived())
}

func TestEnsureRecovered01_NullIsNotRecovered(t *testing.T) {
	ds := NewDataset([]string{ColRecovered}, []Record{
		NewRecord(nil),
		NewRecord(map[string]string{ColRecovered: "yes"}),
	})
	require.NoError(t, ds.EnsureRecovered01())
	assert.Equal(t, 0, ds.Recovered(0))
	assert.Equal(t, 1, ds.Recovered(1))
}

func TestEnsureRecovered01_ReusesStoredColumn(t *testing.T) {
	// Stored flag disagrees with the raw outcome on purpose: it must win.
	ds := NewDataset([]string{ColRecovered, ColRecovered01}, []Record{
		NewRecord(map[string]string{ColRecovered: "No", ColRecovered01: "1"}),
		NewRecord(map[string]string{ColRecovered: "Yes", ColRecovered01: "0"}),
		NewRecord(map[string]string{ColRecovered: "Yes", ColRecovered01: "1.0"}),
	})
	require.NoError(t, ds.EnsureRecovered01())

	assert.Equal(t, 1, ds.Recovered(0))
	assert.Equal(t, 0, ds.Recovered(1))
	assert.Equal(t, 1, ds.Recovered(2))
	assert.Equal(t, []string{ColRecovered, ColRecovered01}, ds.Columns())
}

func TestEnsureRecovered01_NonFiniteStoredFlag(t *testing.T) {
	ds := NewDataset([]string{ColRecovered01}, []Record{
		NewRecord(map[string]string{ColRecovered01: "NaN"}),
		NewRecord(map[string]string{ColRecovered01: "Inf"}),
		NewRecord(map[string]string{ColRecovered01: "-inf"}),
		NewRecord(map[string]string{ColRecovered01: "1"}),
	})
	require.NoError(t, ds.EnsureRecovered01())

	var flags []int
	for i := 0; i < ds.Len(); i++ {
		flags = append(flags, ds.Recovered(i))
	}
	assert.Equal(t, []int{0, 0, 0, 1}, flags)
}

func TestEnsureRecovered01_Idempotent(t *testing.T) {
	ds := recoveredOnly("yes", "no")
	require.NoError(t, ds.EnsureRecovered01())
	require.NoError(t, ds.EnsureRecovered01())

	assert.Equal(t, []string{ColRecovered, ColRecovered01}, ds.Columns())
	assert.Equal(t, 1, ds.Recovered(0))
	assert.Equal(t, 0, ds.Recovered(1))
}

func TestEnsureRecovered01_MissingOutcomeColumn(t *testing.T) {
	ds := NewDataset([]string{ColManufacturer}, []Record{NewRecord(map[string]string{ColManufacturer: "Toyota"})})
	err := ds.EnsureRecovered01()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingDimension))

	var mc *MissingColumnError
	require.True(t, errors.As(err, &mc))
	assert.Equal(t, ColRecovered, mc.Column)
}

func TestNewDataset_DropsDuplicateColumns(t *testing.T) {
	ds := NewDataset([]string{"Year", "model", "Year", ""}, nil)
	assert.Equal(t, []string{"Year", "model"}, ds.Columns())
	assert.Equal(t, 0, ds.Len())
}

func TestSubView_ReadsThroughParent(t *testing.T) {
	ds := NewDataset([]string{ColManufacturer, ColRecovered}, []Record{
		NewRecord(map[string]string{ColManufacturer: "Toyota", ColRecovered: "yes"}),
		NewRecord(map[string]string{ColManufacturer: "Nissan", ColRecovered: "no"}),
		NewRecord(map[string]string{ColRecovered: "yes"}),
	})
	require.NoError(t, ds.EnsureRecovered01())

	sub := NewSubView(ds, []int{2, 0})
	assert.Equal(t, 2, sub.Len())

	_, ok := sub.Value(0, ColManufacturer)
	assert.False(t, ok, "null manufacturer")
	v, ok := sub.Value(1, ColManufacturer)
	assert.True(t, ok)
	assert.Equal(t, "Toyota", v)
	assert.Equal(t, 1, sub.Recovered(0))
	assert.True(t, sub.HasColumn(ColManufacturer))

	_, ok = sub.Value(5, ColManufacturer)
	assert.False(t, ok)
	assert.Equal(t, 0, sub.Recovered(-1))
}
