package retriever

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/rickgao/tradeentry-hackathon/internal/llm"
	"github.com/rickgao/tradeentry-hackathon/internal/log"
	"github.com/rickgao/tradeentry-hackathon/internal/prompt"
)

// AnnotatingTemplate is the default brace-annotation prompt.
const AnnotatingTemplate = `You will be provided with an input text and a description of a parameter.
Your goal is to surround each piece of information about this parameter you find in the input text by curly braces.
Use multiple non-nested pairs of opening and closing curly braces if you find more than one piece of information.

You must reply with JSON formatted strictly according to the JSON specification in which all values are strings.
The JSON must have the following keys:

{{
    "success": <Y if at least one piece of information was found and N otherwise. This parameter is required.>
    "annotated_text": "<The input text where each piece of information about this parameter is surrounded by curly braces. There should be no changes other than adding curly braces, even to whitespace. Leave this field empty in case of failure. Do not add additional quotation marks.>,"
    "justification": "<Justification for your annotations in case of success or the reason why you were not able to find the parameter in case of failure.>"
}}
Input text: ` + "```{InputText}```" + `
Parameter description: ` + "```{ParamDescription}```" + `
`

const (
	// DefaultMaxRetries is the number of attempts per retrieval.
	DefaultMaxRetries = 1
	// DefaultMaxCalls caps retrievals per retriever.
	DefaultMaxCalls = 50
)

// ErrCallLimit is returned once a retriever has used up its calls.
var ErrCallLimit = errors.New("retriever call limit exceeded")

var bracesRE = regexp.MustCompile(`\{(.*?)\}`)

// Annotating retrieves a parameter by asking the model to annotate the
// input text with curly braces.
type Annotating struct {
	completer  llm.Completer
	template   string
	maxRetries int
	maxCalls   int64
	calls      atomic.Int64
	logger     zerolog.Logger
}

// AnnotatingOption configures an Annotating retriever.
type AnnotatingOption func(*Annotating)

// WithMaxRetries sets the number of attempts per retrieval.
func WithMaxRetries(n int) AnnotatingOption {
	return func(a *Annotating) {
		if n > 0 {
			a.maxRetries = n
		}
	}
}

// WithMaxCalls sets the retrieval cap.
func WithMaxCalls(n int) AnnotatingOption {
	return func(a *Annotating) {
		if n > 0 {
			a.maxCalls = int64(n)
		}
	}
}

// WithTemplate replaces the annotation prompt. It must contain
// {InputText} and {ParamDescription}.
func WithTemplate(tmpl string) AnnotatingOption {
	return func(a *Annotating) {
		if tmpl != "" {
			a.template = tmpl
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) AnnotatingOption {
	return func(a *Annotating) {
		a.logger = logger
	}
}

// NewAnnotating creates a retriever backed by completer.
func NewAnnotating(completer llm.Completer, opts ...AnnotatingOption) *Annotating {
	a := &Annotating{
		completer:  completer,
		template:   AnnotatingTemplate,
		maxRetries: DefaultMaxRetries,
		maxCalls:   DefaultMaxCalls,
		logger:     log.WithComponent("retriever"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// CallsRemaining returns how many retrievals are left.
func (a *Annotating) CallsRemaining() int {
	return int(a.maxCalls - a.calls.Load())
}

// errRetry marks an attempt whose result should not be used.
var errRetry = errors.New("retry")

// Retrieve returns the annotated value of the described parameter in
// input. found is false when the model reports the parameter absent and
// it is not required.
func (a *Annotating) Retrieve(ctx context.Context, input, description string, required bool) (string, bool, error) {
	if a.calls.Add(1) > a.maxCalls {
		return "", false, ErrCallLimit
	}

	input = strings.TrimSpace(input)
	for attempt := range a.maxRetries {
		last := attempt == a.maxRetries-1
		actx := ctx
		if a.maxRetries > 1 {
			actx = llm.SubTrial(ctx, attempt)
		}

		value, found, err := a.attempt(actx, input, description, required, last)
		if errors.Is(err, errRetry) {
			continue
		}
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return "", false, err
			}
			if !last {
				logger := log.WithContext(actx, a.logger)
				logger.Debug().Err(err).Int("attempt", attempt).Msg("annotation attempt failed")
				continue
			}
			return "", false, fmt.Errorf(
				"Unable to extract parameter from the input text after %d retries.\n"+
					"Input text: %s\nParameter description: %s\nLast trial error information: %s\n",
				a.maxRetries, input, description, err)
		}
		return value, found, nil
	}

	return "", false, fmt.Errorf(
		"Unable to extract parameter from the input text.\nInput text: %s\nParameter description: %s\n",
		input, description)
}

func (a *Annotating) attempt(ctx context.Context, input, description string, required, last bool) (string, bool, error) {
	query, err := prompt.Format(a.template, map[string]string{
		"InputText":        input,
		"ParamDescription": description,
	})
	if err != nil {
		return "", false, fmt.Errorf("render annotation prompt: %w", err)
	}

	completion, err := a.completer.Complete(ctx, query)
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
		if required {
			return "", false, errRetry
		}
		return "", false, nil
	}

	annotated := StringValue(result, "annotated_text")
	if strings.TrimSpace(annotated) == "" {
		return "", false, fmt.Errorf("Extraction success reported by %s, however the annotated text is empty. Input text:\n%s\n",
			a.completer.ID(), input)
	}

	// The last attempt is accepted even if the model changed more than braces.
	if deannotate(annotated) != input && !last {
		return "", false, errRetry
	}

	matches := bracesRE.FindAllStringSubmatch(annotated, -1)
	values := make([]string, 0, len(matches))
	for _, m := range matches {
		if strings.ContainsAny(m[1], "{}") {
			if !last {
				return "", false, errRetry
			}
			return "", false, fmt.Errorf("Nested curly braces are present in annotated text.\nAnnotated text: ```%s```\n", annotated)
		}
		values = append(values, m[1])
	}
	return strings.Join(values, " "), true, nil
}

func deannotate(text string) string {
	text = strings.TrimSpace(strings.ReplaceAll(text, "`", ""))
	text = strings.NewReplacer("{", "", "}", "").Replace(text)
	return strings.TrimSpace(text)
}
