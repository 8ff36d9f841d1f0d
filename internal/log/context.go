package log

import (
	"context"

	"github.com/rs/zerolog"
)

type ctxKey string

const (
	solutionKey ctxKey = "solution"
	trialKey    ctxKey = "trial_id"
	tradeKey    ctxKey = "trade_id"
)

// ContextWithSolution stores the solution id for log enrichment.
func ContextWithSolution(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, solutionKey, id)
}

// ContextWithTrialID stores the trial id for log enrichment.
func ContextWithTrialID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, trialKey, id)
}

// ContextWithTradeID stores the trade id for log enrichment.
func ContextWithTradeID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, tradeKey, id)
}

func stringValue(ctx context.Context, key ctxKey) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(key).(string)
	return v
}

// WithContext adds the solution, trade and trial fields found in ctx.
func WithContext(ctx context.Context, logger zerolog.Logger) zerolog.Logger {
	b := logger.With()
	added := false
	for _, key := range []ctxKey{solutionKey, tradeKey, trialKey} {
		if v := stringValue(ctx, key); v != "" {
			b = b.Str(string(key), v)
			added = true
		}
	}
	if !added {
		return logger
	}
	return b.Logger()
}

// FromContext returns the logger attached with zerolog's WithContext,
// or the base logger when none is attached.
func FromContext(ctx context.Context) zerolog.Logger {
	if ctx != nil {
		if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
			return WithContext(ctx, *l)
		}
	}
	return WithContext(ctx, Base())
}
