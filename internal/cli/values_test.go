package cli

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaneschanro-gif/recovery-dashboard/internal/filter"
)

func TestValues_ListsDimensions(t *testing.T) {
	cmd := &ValuesCommand{globals: &GlobalFlags{}}
	var err error
	output := captureOutput(t, func() { err = cmd.Execute(nil) })
	require.NoError(t, err)

	assert.Contains(t, output, "Incident Date")
	assert.Contains(t, output, "People & Sales")
	assert.Contains(t, output, "manufacturer")
	assert.Contains(t, output, "client             Client Name (text contains)")
	assert.Contains(t, output, "year               Year (period)")
}

func TestValues_ListsDimensionsJSON(t *testing.T) {
	cmd := &ValuesCommand{globals: &GlobalFlags{JSON: true}}
	var err error
	output := captureOutput(t, func() { err = cmd.Execute(nil) })
	require.NoError(t, err)

	var dims []dimensionJSON
	require.NoError(t, json.Unmarshal([]byte(output), &dims))
	assert.Len(t, dims, len(filter.Dimensions()))
	assert.Equal(t, "year", dims[0].Name)
	assert.True(t, dims[0].Temporal)
}

func TestValues_Options(t *testing.T) {
	s := newTestSession(t)
	importFleet(t, s)

	cmd := &ValuesCommand{Dimension: "manufacturer", Search: "toy", globals: &GlobalFlags{}}
	var err error
	output := captureOutput(t, func() {
		err = cmd.executeWithSession(context.Background(), s)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Toyota", "Toyota Trucks"}, strings.Split(strings.TrimSpace(output), "\n"))
}

func TestValues_NumericOrderJSON(t *testing.T) {
	s := newTestSession(t)
	importFleet(t, s)

	cmd := &ValuesCommand{Dimension: "month", globals: &GlobalFlags{JSON: true}}
	var err error
	output := captureOutput(t, func() {
		err = cmd.executeWithSession(context.Background(), s)
	})
	require.NoError(t, err)

	var result struct {
		Values []string `json:"values"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &result))
	assert.Equal(t, []string{"1", "2", "3", "4"}, result.Values)
}

func TestValues_UnknownDimension(t *testing.T) {
	s := newTestSession(t)
	importFleet(t, s)

	cmd := &ValuesCommand{Dimension: "planet", globals: &GlobalFlags{}}
	err := cmd.executeWithSession(context.Background(), s)
	assert.ErrorIs(t, err, filter.ErrUnknownDimension)
}
