package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaneschanro-gif/recovery-dashboard/internal/aggregate"
	"github.com/vaneschanro-gif/recovery-dashboard/internal/dashboard"
	"github.com/vaneschanro-gif/recovery-dashboard/internal/filter"
	"github.com/vaneschanro-gif/recovery-dashboard/internal/logging"
)

func standardReport() *dashboard.Report {
	var sel filter.Selections
	sel.Select("year", "2024")
	return &dashboard.Report{
		Standard: aggregate.Result{Total: 12345, Recovered: 9876, Rate: 9876.0 / 12345.0},
		Active:   sel.Active(),
		Filters:  sel,
	}
}

func focusReport() *dashboard.Report {
	var sel filter.Selections
	sel.Select("year", "2023").SearchFor("manufacturer", "toyota", filter.All())
	return &dashboard.Report{
		Standard: aggregate.Result{Total: 10, Recovered: 4, Rate: 0.4},
		Focus: &aggregate.Focus{
			Result:      aggregate.Result{Total: 10, Recovered: 4, Rate: 0.4},
			PeriodTotal: 60,
			GroupPct:    100.0 / 6.0,
			OverallRate: 0.5,
			Delta:       -0.1,
			Label:       "toyota",
		},
		Active:  sel.Active(),
		Filters: sel,
	}
}

func TestHeadline_ThousandsSeparators(t *testing.T) {
	assert.Equal(t, "Recovery Rate: 80.0% (9,876 of 12,345 incidents recovered)", Headline(standardReport()))
}

func TestFormat_Standard(t *testing.T) {
	out := Format(standardReport())
	assert.Contains(t, out, "Filters:         year=2024")
	assert.Contains(t, out, "Total Incidents: 12,345")
	assert.Contains(t, out, "Recovered:       9,876")
	assert.Contains(t, out, "Recovery Rate:   80.0%")
	assert.NotContains(t, out, "Focus")
}

func TestFormat_Focus(t *testing.T) {
	out := Format(focusReport())
	assert.Contains(t, out, "Focus: toyota")
	assert.Contains(t, out, "16.67% (10 of 60 incidents)")
	assert.Contains(t, out, "Group recovery rate:  40.0%")
	assert.Contains(t, out, "Period recovery rate: 50.0%")
	assert.Contains(t, out, "-10.0 pts")
}

func TestFormat_EmptyResult(t *testing.T) {
	out := Format(&dashboard.Report{})
	assert.Contains(t, out, "all incidents")
	assert.Contains(t, out, "Recovery Rate:   0.0%")
}

func TestBlocks(t *testing.T) {
	assert.Len(t, Blocks(standardReport()), 3)
	assert.Len(t, Blocks(focusReport()), 5)
}

func TestNewSlackNotifier_RequiresURL(t *testing.T) {
	_, err := NewSlackNotifier("", "#ops")
	assert.Error(t, err)
}

func TestSlackNotifier_PostsWebhook(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	n, err := NewSlackNotifier(server.URL, "#recoveries")
	require.NoError(t, err)
	require.NoError(t, n.Notify(context.Background(), focusReport()))

	assert.Equal(t, "#recoveries", got["channel"])
	assert.Equal(t, "Recovery Rate: 40.0% (4 of 10 incidents recovered)", got["text"])
	blocks, ok := got["blocks"].([]any)
	require.True(t, ok, "blocks should be an array")
	assert.Len(t, blocks, 5)
}

func TestSlackNotifier_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	n, err := NewSlackNotifier(server.URL, "")
	require.NoError(t, err)
	err = n.Notify(context.Background(), standardReport())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "post slack webhook")
}

func TestParseSchedule(t *testing.T) {
	_, err := ParseSchedule("0 8 * * 1")
	assert.NoError(t, err)
	_, err = ParseSchedule("@daily")
	assert.NoError(t, err)

	_, err = ParseSchedule("")
	assert.Error(t, err)
	_, err = ParseSchedule("0 0 8 * * 1")
	assert.Error(t, err, "seconds field is not accepted")
	_, err = ParseSchedule("whenever")
	assert.Error(t, err)
}

func TestScheduler_NextHonoursTimezone(t *testing.T) {
	loc, err := time.LoadLocation("Africa/Johannesburg")
	require.NoError(t, err)

	s, err := NewScheduler("0 8 * * 1", loc, func(context.Context) error { return nil }, logging.Discard())
	require.NoError(t, err)

	// Sunday 2025-03-02 12:00 UTC -> Monday 08:00 in Johannesburg (UTC+2).
	next := s.Next(time.Date(2025, 3, 2, 12, 0, 0, 0, time.UTC))
	assert.True(t, next.Equal(time.Date(2025, 3, 3, 6, 0, 0, 0, time.UTC)), "got %s", next)
}

func TestScheduler_RunStopsOnCancel(t *testing.T) {
	s, err := NewScheduler("0 8 * * 1", time.UTC, func(context.Context) error { return nil }, logging.Discard())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestScheduler_RunOnceLogsFailure(t *testing.T) {
	var buf bytes.Buffer
	var calls atomic.Int32
	s, err := NewScheduler("@hourly", nil, func(context.Context) error {
		calls.Add(1)
		return errors.New("webhook down")
	}, logging.New(&buf, "text", logging.ParseLevel("info")))
	require.NoError(t, err)

	s.runOnce(context.Background())
	assert.Equal(t, int32(1), calls.Load())
	assert.Contains(t, buf.String(), "scheduled report failed")
	assert.Contains(t, buf.String(), "webhook down")
}
