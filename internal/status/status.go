// Package status reports the readiness of the site's backing components.
package status

import (
	"context"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"finitefield.org/corporate-web/internal/platform/httpx"
	"finitefield.org/corporate-web/internal/platform/requestctx"
)

const (
	StateOperational = "operational"
	StateDegraded    = "degraded"

	defaultTTL   = 30 * time.Second
	checkTimeout = 3 * time.Second
)

// Summary captures the overall state and each component's result.
type Summary struct {
	State      string      `json:"state"`
	UpdatedAt  time.Time   `json:"updatedAt"`
	Components []Component `json:"components"`
}

// Component represents the status of an individual subsystem.
type Component struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Check tests one component. A nil error means operational.
type Check struct {
	Name string
	Run  func(ctx context.Context) error
}

// Reporter runs checks and caches the summary for a short time so checks
// do not hammer upstream services.
type Reporter struct {
	checks []Check
	ttl    time.Duration
	now    func() time.Time

	mu      sync.RWMutex
	cached  Summary
	expires time.Time
}

// Option customises a Reporter.
type Option func(*Reporter)

// WithTTL sets how long a summary is reused.
func WithTTL(d time.Duration) Option {
	return func(r *Reporter) {
		if d > 0 {
			r.ttl = d
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Reporter) {
		if now != nil {
			r.now = now
		}
	}
}

// NewReporter returns a Reporter for checks. Summary components keep the
// order of checks, and a summary is reused for 30 seconds unless WithTTL
// says otherwise.
func NewReporter(checks []Check, opts ...Option) *Reporter {
	r := &Reporter{checks: checks, ttl: defaultTTL, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Summary returns the cached summary or runs every check concurrently.
func (r *Reporter) Summary(ctx context.Context) Summary {
	now := r.now()
	r.mu.RLock()
	if !r.expires.IsZero() && now.Before(r.expires) {
		s := cloneSummary(r.cached)
		r.mu.RUnlock()
		return s
	}
	r.mu.RUnlock()

	components := make([]Component, len(r.checks))
	var wg sync.WaitGroup
	for i, c := range r.checks {
		wg.Add(1)
		go func(i int, c Check) {
			defer wg.Done()
			cctx, cancel := context.WithTimeout(ctx, checkTimeout)
			defer cancel()
			comp := Component{Name: c.Name, Status: StateOperational}
			if err := c.Run(cctx); err != nil {
				comp.Status = StateDegraded
				comp.Error = err.Error()
			}
			components[i] = comp
		}(i, c)
	}
	wg.Wait()

	s := Summary{State: StateOperational, UpdatedAt: now.UTC(), Components: components}
	for _, c := range components {
		if c.Status != StateOperational {
			s.State = StateDegraded
			requestctx.Logger(ctx).Warn("status: component degraded",
				zap.String("component", c.Name), zap.String("error", c.Error))
		}
	}

	r.mu.Lock()
	r.cached = cloneSummary(s)
	r.expires = now.Add(r.ttl)
	r.mu.Unlock()
	return s
}

// ServeHTTP writes the summary as JSON; degraded summaries use 503.
func (r *Reporter) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	s := r.Summary(req.Context())
	status := http.StatusOK
	if s.State != StateOperational {
		status = http.StatusServiceUnavailable
	}
	w.Header().Set("Cache-Control", "no-store")
	httpx.WriteJSON(w, status, s)
}

func cloneSummary(src Summary) Summary {
	cp := src
	if len(src.Components) > 0 {
		cp.Components = make([]Component, len(src.Components))
		copy(cp.Components, src.Components)
	}
	return cp
}
