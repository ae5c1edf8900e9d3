package cms

import (
	"context"
	"strconv"

	"go.uber.org/zap"
)

// FallbackSource reads from primary and switches to secondary when primary
// fails. Empty results from primary are authoritative.
type FallbackSource struct {
	primary   Source
	secondary Source
	logger    *zap.Logger
}

// NewFallbackSource returns a Source trying primary, then secondary.
func NewFallbackSource(primary, secondary Source, logger *zap.Logger) *FallbackSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FallbackSource{primary: primary, secondary: secondary, logger: logger}
}

func (s *FallbackSource) Find(ctx context.Context, q Query) (Result, error) {
	res, err := s.primary.Find(ctx, q)
	if err == nil {
		return res, nil
	}
	if ctx.Err() != nil {
		return Result{}, ctx.Err()
	}
	s.logger.Warn("cms find failed, using fallback content",
		zap.String("collection", q.Collection),
		zap.String("locale", q.Locale),
		zap.Error(err),
	)
	return s.secondary.Find(ctx, q)
}

func (s *FallbackSource) Global(ctx context.Context, name, locale string, depth int) (Document, bool, error) {
	doc, found, err := s.primary.Global(ctx, name, locale, depth)
	if err == nil {
		return doc, found, nil
	}
	if ctx.Err() != nil {
		return nil, false, ctx.Err()
	}
	s.logger.Warn("cms global failed, using fallback content",
		zap.String("global", name),
		zap.String("locale", locale),
		zap.Error(err),
	)
	return s.secondary.Global(ctx, name, locale, depth)
}

func itoa(n int) string { return strconv.Itoa(n) }
