package contact

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"finitefield.org/corporate-web/internal/platform/httpx"
	"finitefield.org/corporate-web/internal/platform/observability"
	"finitefield.org/corporate-web/internal/platform/requestctx"
)

const maxBodyBytes = 64 << 10

// Sink receives accepted submissions.
type Sink interface {
	Deliver(ctx context.Context, rec Record) error
}

// LogSink only logs submissions. No message is sent anywhere.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink returns a LogSink writing to logger, or to a no-op logger when
// nil.
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

// Deliver logs the submission with the email masked. The phone number and
// message body are never logged.
func (s *LogSink) Deliver(ctx context.Context, rec Record) error {
	logger := s.logger
	if l := requestctx.Logger(ctx); l != requestctx.NoopLogger() {
		logger = l
	}
	logger.Info("contact submission received",
		zap.String("submissionId", rec.ID),
		zap.String("email", observability.MaskEmail(rec.Submission.Email)),
		zap.String("subject", rec.Submission.Subject),
		zap.String("company", rec.Submission.Company),
		zap.Bool("hasPhone", rec.Submission.Phone != ""),
		zap.String("locale", rec.Submission.Locale),
		zap.Int("messageLength", len(rec.Submission.Message)),
		zap.Time("receivedAt", rec.ReceivedAt),
	)
	return nil
}

// Handler serves POST /api/contact.
type Handler struct {
	sink      Sink
	translate func(locale, key string) string
	locale    func(r *http.Request) string
	newID     func() string
	now       func() time.Time
}

// Option customises a Handler.
type Option func(*Handler)

// WithTranslator sets the lookup used for the acknowledgement message.
func WithTranslator(t func(locale, key string) string) Option {
	return func(h *Handler) {
		if t != nil {
			h.translate = t
		}
	}
}

// WithLocale sets how the request locale is found when the payload has none.
func WithLocale(fn func(r *http.Request) string) Option {
	return func(h *Handler) {
		if fn != nil {
			h.locale = fn
		}
	}
}

// WithIDGenerator replaces the ULID generator.
func WithIDGenerator(fn func() string) Option {
	return func(h *Handler) {
		if fn != nil {
			h.newID = fn
		}
	}
}

// NewHandler returns a Handler passing valid submissions to sink. Without
// options the acknowledgement message is the untranslated key.
func NewHandler(sink Sink, opts ...Option) *Handler {
	h := &Handler{
		sink:      sink,
		translate: func(_, key string) string { return key },
		locale:    func(*http.Request) string { return "" },
		newID:     func() string { return ulid.Make().String() },
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

type response struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
	Message string `json:"message"`
}

// ServeHTTP decodes, validates and delivers one submission.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	defer func() {
		if rec := recover(); rec != nil {
			requestctx.Logger(ctx).Error("contact handler panic", zap.Any("panic", rec))
			httpx.WriteError(ctx, w, httpx.NewError("internal_error", "failed to process submission", http.StatusInternalServerError))
		}
	}()

	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_payload", "request body must be JSON", http.StatusBadRequest))
		return
	}

	var sub Submission
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&sub); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_payload", "request body is not valid JSON", http.StatusBadRequest))
		return
	}
	sub = sub.Normalize()

	if err := sub.Validate(); err != nil {
		var missing *MissingFieldsError
		switch {
		case errors.As(err, &missing):
			httpx.WriteError(ctx, w, httpx.NewError("missing_fields", "missing required fields", http.StatusBadRequest).
				WithDetails(map[string]any{"fields": missing.Fields}))
		case errors.Is(err, ErrInvalidEmail):
			httpx.WriteError(ctx, w, httpx.NewError("invalid_email", "invalid email format", http.StatusBadRequest))
		default:
			httpx.WriteError(ctx, w, httpx.NewError("invalid_payload", err.Error(), http.StatusBadRequest))
		}
		return
	}

	if sub.Locale == "" {
		sub.Locale = h.locale(r)
	}
	rec := Record{
		ID:         h.newID(),
		Submission: sub,
		ReceivedAt: h.now().UTC(),
		RemoteIP:   r.RemoteAddr,
		UserAgent:  r.UserAgent(),
	}
	if err := h.sink.Deliver(ctx, rec); err != nil {
		requestctx.Logger(ctx).Error("contact delivery failed",
			zap.String("submissionId", rec.ID),
			zap.String("requestId", middleware.GetReqID(ctx)),
			zap.Error(err),
		)
		httpx.WriteError(ctx, w, httpx.NewError("internal_error", fmt.Sprintf("failed to process submission %s", rec.ID), http.StatusInternalServerError))
		return
	}

	httpx.WriteJSON(w, http.StatusOK, response{
		Success: true,
		ID:      rec.ID,
		Message: h.translate(sub.Locale, "contact.success"),
	})
}
