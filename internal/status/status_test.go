package status

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummaryOperational(t *testing.T) {
	r := NewReporter([]Check{
		{Name: "cms", Run: func(context.Context) error { return nil }},
		{Name: "cache", Run: func(context.Context) error { return nil }},
	})
	s := r.Summary(context.Background())
	assert.Equal(t, StateOperational, s.State)
	require.Len(t, s.Components, 2)
	assert.Equal(t, "cms", s.Components[0].Name)
	assert.Equal(t, "cache", s.Components[1].Name)
}

func TestServeHTTPDegraded(t *testing.T) {
	r := NewReporter([]Check{
		{Name: "cms", Run: func(context.Context) error { return errors.New("upstream down") }},
		{Name: "cache", Run: func(context.Context) error { return nil }},
	})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/_internal/status", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	var got Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, StateDegraded, got.State)
	assert.Equal(t, "upstream down", got.Components[0].Error)
	assert.Equal(t, StateOperational, got.Components[1].Status)
}

func TestSummaryCachedUntilTTL(t *testing.T) {
	var calls atomic.Int32
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	r := NewReporter([]Check{{Name: "cms", Run: func(context.Context) error {
		calls.Add(1)
		return nil
	}}}, WithTTL(time.Minute), WithClock(func() time.Time { return now }))

	first := r.Summary(context.Background())
	first.Components[0].Status = "mutated"
	second := r.Summary(context.Background())
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, StateOperational, second.Components[0].Status)

	now = now.Add(2 * time.Minute)
	r.Summary(context.Background())
	assert.Equal(t, int32(2), calls.Load())
}
