package llm

import (
	"context"
	"strconv"
)

type trialKey struct{}

// WithTrial returns a context carrying the trial id.
func WithTrial(ctx context.Context, trialID string) context.Context {
	return context.WithValue(ctx, trialKey{}, trialID)
}

// TrialFrom returns the trial id in ctx, if any.
func TrialFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(trialKey{}).(string)
	return id, ok
}

// SubTrial derives the trial for a retry or vote so that it does not reuse
// the cached completion of a sibling attempt: "<trial>\<index>", or just
// "<index>" when ctx has no trial.
func SubTrial(ctx context.Context, index int) context.Context {
	idx := strconv.Itoa(index)
	if parent, ok := TrialFrom(ctx); ok {
		return WithTrial(ctx, parent+`\`+idx)
	}
	return WithTrial(ctx, idx)
}
