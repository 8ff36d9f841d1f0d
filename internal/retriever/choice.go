package retriever

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rickgao/tradeentry-hackathon/internal/llm"
	"github.com/rickgao/tradeentry-hackathon/internal/prompt"
)

// MultipleChoiceTemplate is the default multiple-choice prompt.
const MultipleChoiceTemplate = `You will be provided with an input text, a description of a parameter and a list of valid choices for that parameter.
Your goal is to select the choice that matches the value of this parameter in the input text.

You must reply with JSON formatted strictly according to the JSON specification in which all values are strings.
The JSON must have the following keys:

{{
    "success": <Y if the parameter was found and matches one of the valid choices and N otherwise. This parameter is required.>
    "param_value": "<One of the valid choices, copied exactly. Leave this field empty in case of failure.>",
    "justification": "<Justification for your choice in case of success or the reason why you were not able to find the parameter in case of failure.>"
}}
Input text: ` + "```{InputText}```" + `
Parameter description: ` + "```{ParamDescription}```" + `
Valid choices: ` + "```{ValidChoices}```" + `
`

// MultipleChoice retrieves a parameter restricted to a set of choices.
type MultipleChoice struct {
	completer  llm.Completer
	maxRetries int
}

// NewMultipleChoice returns a retriever with the given number of attempts.
func NewMultipleChoice(completer llm.Completer, maxRetries int) *MultipleChoice {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	return &MultipleChoice{completer: completer, maxRetries: maxRetries}
}

// Retrieve returns the valid choice the model selected, spelled as in
// choices. found is false when the model reports no match.
func (m *MultipleChoice) Retrieve(ctx context.Context, input, description string, choices []string) (string, bool, error) {
	if len(choices) == 0 {
		return "", false, errors.New("multiple choice retrieval requires at least one choice")
	}
	input = strings.TrimSpace(input)

	var lastErr error
	for attempt := range m.maxRetries {
		actx := ctx
		if m.maxRetries > 1 {
			actx = llm.SubTrial(ctx, attempt)
		}
		value, found, err := m.attempt(actx, input, description, choices)
		if err == nil {
			return value, found, nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", false, err
		}
		lastErr = err
	}
	return "", false, fmt.Errorf(
		"Unable to select a valid choice after %d retries.\nInput text: %s\nParameter description: %s\nLast trial error information: %s\n",
		m.maxRetries, input, description, lastErr)
}

func (m *MultipleChoice) attempt(ctx context.Context, input, description string, choices []string) (string, bool, error) {
	query, err := prompt.Format(MultipleChoiceTemplate, map[string]string{
		"InputText":        input,
		"ParamDescription": description,
		"ValidChoices":     strings.Join(choices, ", "),
	})
	if err != nil {
		return "", false, fmt.Errorf("render multiple choice prompt: %w", err)
	}

	completion, err := m.completer.Complete(ctx, query)
	if err != nil {
		return "", false, err
	}
	completion = unwrapFence(completion)

	result, err := ExtractJSON(completion)
	if err != nil {
		return "", false, fmt.Errorf("Could not extract JSON from the LLM response. LLM response:\n%s\n", completion)
	}
	success, err := ParseYN(StringValue(result, "success"), "Success")
	if err != nil {
		return "", false, err
	}
	if !success {
		return "", false, nil
	}

	value := strings.TrimSpace(StringValue(result, "param_value"))
	if choice, ok := MatchChoice(value, choices); ok {
		return choice, true, nil
	}
	return "", false, fmt.Errorf("%q is not one of the valid choices: %s", value, strings.Join(choices, ", "))
}

// MatchChoice returns the element of choices equal to value ignoring case
// and surrounding whitespace.
func MatchChoice(value string, choices []string) (string, bool) {
	value = strings.TrimSpace(value)
	for _, c := range choices {
		if strings.EqualFold(value, c) {
			return c, true
		}
	}
	return "", false
}
