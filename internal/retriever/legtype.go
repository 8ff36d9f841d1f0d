package retriever

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rickgao/tradeentry-hackathon/internal/llm"
	"github.com/rickgao/tradeentry-hackathon/internal/prompt"
)

// Leg types.
const (
	LegFixed    = "Fixed"
	LegFloating = "Floating"
)

const legTypeTemplate = "You will be given the input below in the form of description of trade entry leg.\n" +
	"Return only JSON with following keys:\n" +
	"* LegType - enum with values Floating and Fixed\n" +
	"Description of trade entry leg:\n```\n{input_text}\n```"

// LegType classifies a leg description as Fixed or Floating.
func LegType(ctx context.Context, completer llm.Completer, text string, retries int) (string, error) {
	if retries <= 0 {
		retries = 1
	}
	query, err := prompt.Format(legTypeTemplate, map[string]string{"input_text": text})
	if err != nil {
		return "", err
	}

	var lastErr error
	for attempt := range retries {
		actx := ctx
		if retries > 1 {
			actx = llm.SubTrial(ctx, attempt)
		}
		completion, err := completer.Complete(actx, query)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return "", err
			}
			lastErr = err
			continue
		}
		result, err := ExtractJSON(unwrapFence(completion))
		if err != nil {
			lastErr = fmt.Errorf("Could not extract JSON from the LLM response. LLM response:\n%s\n", completion)
			continue
		}
		legType := strings.TrimSpace(StringValue(result, "LegType"))
		if choice, ok := MatchChoice(legType, []string{LegFixed, LegFloating}); ok {
			return choice, nil
		}
		lastErr = fmt.Errorf("Undefined leg type: %s", legType)
	}
	return "", lastErr
}
