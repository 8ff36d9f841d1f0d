package solution

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/rickgao/tradeentry-hackathon/internal/entry"
	"github.com/rickgao/tradeentry-hackathon/internal/llm"
	"github.com/rickgao/tradeentry-hackathon/internal/log"
	"github.com/rickgao/tradeentry-hackathon/internal/model"
	"github.com/rickgao/tradeentry-hackathon/internal/prompt"
	"github.com/rickgao/tradeentry-hackathon/internal/retriever"
)

type fieldKind int

const (
	kindString fieldKind = iota
	kindDate
	kindNumber
)

func oneStepKind(field string) fieldKind {
	switch field {
	case model.FieldEffectiveDate, model.FieldMaturityDate:
		return kindDate
	case model.FieldTenorYears:
		return kindNumber
	}
	leg := strings.TrimPrefix(strings.TrimPrefix(field, model.PayLegPrefix), model.RecLegPrefix)
	switch leg {
	case model.LegNotional, model.LegFreqMonths, model.LegFloatSpreadBp, model.LegFixedRatePct:
		return kindNumber
	}
	return kindString
}

// OneStep extracts all fields with a single prompt.
type OneStep struct {
	spec      model.SolutionSpec
	completer llm.Completer
	logger    zerolog.Logger
}

// NewOneStep returns a one-step solution. spec.Prompt must contain
// {input_text}.
func NewOneStep(spec model.SolutionSpec, completer llm.Completer, logger zerolog.Logger) (*OneStep, error) {
	if strings.TrimSpace(spec.Prompt) == "" {
		return nil, fmt.Errorf("solution %s: prompt is required", spec.ID)
	}
	if _, err := prompt.Format(spec.Prompt, map[string]string{"input_text": ""}); err != nil {
		return nil, fmt.Errorf("solution %s: invalid prompt: %w", spec.ID, err)
	}
	return &OneStep{spec: spec, completer: completer, logger: logger}, nil
}

func (s *OneStep) Spec() model.SolutionSpec { return s.spec }

// ProcessInput runs the prompt for in under trialID.
func (s *OneStep) ProcessInput(ctx context.Context, in model.Input, trialID string) (model.Output, error) {
	out := model.NewOutput(s.spec.ID, trialID, in)

	ctx, err := startTrial(ctx, s.spec, trialID)
	if err != nil {
		return out, err
	}
	logger := log.WithContext(log.ContextWithTradeID(ctx, in.TradeID), s.logger)

	query, err := prompt.Format(s.spec.Prompt, map[string]string{"input_text": in.EntryText})
	if err != nil {
		return out, err
	}

	var result map[string]any
	if s.spec.Votes > 1 {
		results := make([]map[string]any, 0, s.spec.Votes)
		for v := range s.spec.Votes {
			r, err := s.complete(llm.SubTrial(ctx, v), query)
			if err != nil {
				if !errors.Is(err, retriever.ErrNoJSON) {
					return out, err
				}
				logger.Warn().Err(err).Int("vote", v).Msg("discarding vote")
				continue
			}
			results = append(results, r)
		}
		if len(results) > 0 {
			result = Consensus(results, s.spec.Votes)
		}
	} else {
		result, err = s.complete(ctx, query)
		if err != nil {
			if !errors.Is(err, retriever.ErrNoJSON) {
				return out, err
			}
			logger.Warn().Err(err).Msg("no usable completion")
		}
	}

	if result != nil {
		applyJSON(&out, result)
	}
	return out, nil
}

func (s *OneStep) complete(ctx context.Context, query string) (map[string]any, error) {
	completion, err := s.completer.Complete(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("solution %s: %w", s.spec.ID, err)
	}
	return retriever.ExtractJSON(completion)
}

// applyJSON copies recognized keys of result onto out. A value that fails
// to parse is stored as its error text.
func applyJSON(out *model.Output, result map[string]any) {
	for _, field := range model.FieldNames() {
		raw, ok := result[field]
		if !ok || raw == nil {
			continue
		}
		value, err := fieldValue(oneStepKind(field), raw)
		if err != nil {
			value = err.Error()
		}
		_ = out.SetField(field, value)
	}
}

func fieldValue(kind fieldKind, raw any) (string, error) {
	switch kind {
	case kindDate:
		text := strings.TrimSpace(fmt.Sprint(raw))
		if text == "" {
			return "", nil
		}
		return entry.Date(text)
	case kindNumber:
		switch v := raw.(type) {
		case json.Number:
			f, err := v.Float64()
			if err != nil {
				return "", err
			}
			return entry.FormatNumber(f), nil
		case string:
			if strings.TrimSpace(v) == "" {
				return "", nil
			}
			return entry.NormalizeNumber(v)
		default:
			return entry.NormalizeNumber(fmt.Sprint(v))
		}
	default:
		s, ok := raw.(string)
		if !ok {
			return "", nil
		}
		return strings.TrimSpace(s), nil
	}
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
