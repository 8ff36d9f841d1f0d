package llm

import (
	"context"
	"strings"
)

const validatorSystemPrompt = "You are a quant trained in identifying the trade parameters. " +
	"You will be given a trade description, and a description of a trade attribute that was meant to be provided. " +
	"Then, you will be given this trade attribute as an identified value: you are meant to validate if this value is right for a given trade description. " +
	"Return your answer as a 'yes' for right answer and 'no' for wrong. If the parameter is not possible to be identified, return 'not given'."

// Verdict is the validator's reading of a model answer.
type Verdict string

const (
	VerdictYes      Verdict = "yes"
	VerdictNo       Verdict = "no"
	VerdictNotGiven Verdict = "not given"
	VerdictUnknown  Verdict = "unknown"
)

// Validator asks a model whether an extracted value fits the trade description.
type Validator struct {
	chat Chatter
}

// NewValidator returns a validator backed by chat.
func NewValidator(chat Chatter) *Validator {
	return &Validator{chat: chat}
}

// Validate returns true only when the model answers yes.
func (v *Validator) Validate(ctx context.Context, description, answer string) (bool, Verdict, error) {
	decision, err := v.chat.Chat(ctx, []Message{
		{Role: RoleSystem, Content: validatorSystemPrompt},
		{Role: RoleUser, Content: description},
		{Role: RoleAssistant, Content: answer},
	})
	if err != nil {
		return false, VerdictUnknown, err
	}
	verdict := ParseVerdict(decision)
	return verdict == VerdictYes, verdict, nil
}

// ParseVerdict classifies a free-text answer. "not given" is checked
// before "no" because it would otherwise match the shorter token.
func ParseVerdict(decision string) Verdict {
	d := strings.ToLower(decision)
	switch {
	case strings.Contains(d, "yes"):
		return VerdictYes
	case strings.Contains(d, "not given"):
		return VerdictNotGiven
	case strings.Contains(d, "no"):
		return VerdictNo
	default:
		return VerdictUnknown
	}
}
