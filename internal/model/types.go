package model

import (
	"fmt"
	"strconv"
)

// ExpectedResultsID is the solution under which expected outputs are stored.
const ExpectedResultsID = "ExpectedResults"

// GenerateTrialID is the trial used by generate and by expected results.
const GenerateTrialID = "0"

// -----------------------------------------------------------------------------
// Inputs and outputs
// -----------------------------------------------------------------------------

// Input is the entry text for a single trade.
type Input struct {
	TradeGroup string `json:"trade_group"`
	TradeID    string `json:"trade_id"`
	EntryText  string `json:"entry_text"`
}

// TradeNumber returns the numeric trade id, or -1 when it is not numeric.
func (in Input) TradeNumber() int {
	n, err := strconv.Atoi(in.TradeID)
	if err != nil {
		return -1
	}
	return n
}

// OutputKey identifies one output record.
type OutputKey struct {
	Solution   string `json:"solution"`
	TradeGroup string `json:"trade_group"`
	TradeID    string `json:"trade_id"`
	TrialID    string `json:"trial_id"`
}

func (k OutputKey) String() string {
	return fmt.Sprintf("%s;%s;%s;%s", k.Solution, k.TradeGroup, k.TradeID, k.TrialID)
}

// Output holds the fields extracted from one input by one solution in one trial.
type Output struct {
	OutputKey
	EntryText string `json:"entry_text"`

	EffectiveDate string `json:"effective_date"`
	MaturityDate  string `json:"maturity_date"`
	TenorYears    string `json:"tenor_years"`

	PayLegNotional      string `json:"pay_leg_notional"`
	PayLegCcy           string `json:"pay_leg_ccy"`
	PayLegBasis         string `json:"pay_leg_basis"`
	PayLegFreqMonths    string `json:"pay_leg_freq_months"`
	PayLegFloatIndex    string `json:"pay_leg_float_index"`
	PayLegFloatSpreadBp string `json:"pay_leg_float_spread_bp"`
	PayLegFixedRatePct  string `json:"pay_leg_fixed_rate_pct"`

	RecLegNotional      string `json:"rec_leg_notional"`
	RecLegCcy           string `json:"rec_leg_ccy"`
	RecLegBasis         string `json:"rec_leg_basis"`
	RecLegFreqMonths    string `json:"rec_leg_freq_months"`
	RecLegFloatIndex    string `json:"rec_leg_float_index"`
	RecLegFloatSpreadBp string `json:"rec_leg_float_spread_bp"`
	RecLegFixedRatePct  string `json:"rec_leg_fixed_rate_pct"`
}

// Key returns the output's identifying fields.
func (o *Output) Key() OutputKey {
	return o.OutputKey
}

// NewOutput returns an empty output for the input.
func NewOutput(solution, trialID string, in Input) Output {
	return Output{
		OutputKey: OutputKey{
			Solution:   solution,
			TradeGroup: in.TradeGroup,
			TradeID:    in.TradeID,
			TrialID:    trialID,
		},
		EntryText: in.EntryText,
	}
}

// Scored field names in canonical order.
const (
	FieldEffectiveDate = "effective_date"
	FieldMaturityDate  = "maturity_date"
	FieldTenorYears    = "tenor_years"
)

// Leg field suffixes; combine with PayLegPrefix or RecLegPrefix.
const (
	PayLegPrefix = "pay_leg_"
	RecLegPrefix = "rec_leg_"

	LegNotional      = "notional"
	LegCcy           = "ccy"
	LegBasis         = "basis"
	LegFreqMonths    = "freq_months"
	LegFloatIndex    = "float_index"
	LegFloatSpreadBp = "float_spread_bp"
	LegFixedRatePct  = "fixed_rate_pct"
)

var legFields = []string{
	LegNotional, LegCcy, LegBasis, LegFreqMonths, LegFloatIndex, LegFloatSpreadBp, LegFixedRatePct,
}

var fieldNames = func() []string {
	names := []string{FieldEffectiveDate, FieldMaturityDate, FieldTenorYears}
	for _, prefix := range []string{PayLegPrefix, RecLegPrefix} {
		for _, f := range legFields {
			names = append(names, prefix+f)
		}
	}
	return names
}()

// FieldNames returns the scored output fields in canonical order.
// Key fields and entry_text are not scored.
func FieldNames() []string {
	out := make([]string, len(fieldNames))
	copy(out, fieldNames)
	return out
}

// LegFieldNames returns the per-leg field suffixes.
func LegFieldNames() []string {
	out := make([]string, len(legFields))
	copy(out, legFields)
	return out
}

func (o *Output) fieldPtr(name string) *string {
	switch name {
	case FieldEffectiveDate:
		return &o.EffectiveDate
	case FieldMaturityDate:
		return &o.MaturityDate
	case FieldTenorYears:
		return &o.TenorYears
	case PayLegPrefix + LegNotional:
		return &o.PayLegNotional
	case PayLegPrefix + LegCcy:
		return &o.PayLegCcy
	case PayLegPrefix + LegBasis:
		return &o.PayLegBasis
	case PayLegPrefix + LegFreqMonths:
		return &o.PayLegFreqMonths
	case PayLegPrefix + LegFloatIndex:
		return &o.PayLegFloatIndex
	case PayLegPrefix + LegFloatSpreadBp:
		return &o.PayLegFloatSpreadBp
	case PayLegPrefix + LegFixedRatePct:
		return &o.PayLegFixedRatePct
	case RecLegPrefix + LegNotional:
		return &o.RecLegNotional
	case RecLegPrefix + LegCcy:
		return &o.RecLegCcy
	case RecLegPrefix + LegBasis:
		return &o.RecLegBasis
	case RecLegPrefix + LegFreqMonths:
		return &o.RecLegFreqMonths
	case RecLegPrefix + LegFloatIndex:
		return &o.RecLegFloatIndex
	case RecLegPrefix + LegFloatSpreadBp:
		return &o.RecLegFloatSpreadBp
	case RecLegPrefix + LegFixedRatePct:
		return &o.RecLegFixedRatePct
	}
	return nil
}

// Field returns the value of a scored field, or "" for unknown names.
func (o *Output) Field(name string) string {
	if p := o.fieldPtr(name); p != nil {
		return *p
	}
	return ""
}

// SetField assigns a scored field.
func (o *Output) SetField(name, value string) error {
	p := o.fieldPtr(name)
	if p == nil {
		return fmt.Errorf("unknown output field %q", name)
	}
	*p = value
	return nil
}

// Values returns the scored fields in canonical order.
func (o *Output) Values() []string {
	vals := make([]string, len(fieldNames))
	for i, name := range fieldNames {
		vals[i] = o.Field(name)
	}
	return vals
}

// -----------------------------------------------------------------------------
// Solutions and scoring
// -----------------------------------------------------------------------------

// Solution kinds.
const (
	KindOneStep         = "one_step"
	KindAnnotation      = "annotation"
	KindExpectedResults = "expected_results"
)

// SolutionSpec is the stored definition of a solution.
type SolutionSpec struct {
	ID           string `json:"id" yaml:"id"`
	Kind         string `json:"kind" yaml:"kind"`
	LLM          string `json:"llm" yaml:"llm"`
	TradeGroup   string `json:"trade_group" yaml:"trade_group"`
	TradeIDs     string `json:"trade_ids,omitempty" yaml:"trade_ids"`
	Prompt       string `json:"prompt,omitempty" yaml:"prompt"`
	Votes        int    `json:"votes,omitempty" yaml:"votes"`
	MaxRetries   int    `json:"max_retries,omitempty" yaml:"max_retries"`
	ClassifyLegs bool   `json:"classify_legs,omitempty" yaml:"classify_legs"`
}

// Scoring is the running total for one solution.
// Score and MaxScore are nil while a scoring run is in progress.
type Scoring struct {
	Solution   string `json:"solution"`
	TrialCount int    `json:"trial_count"`
	Score      *int   `json:"score"`
	MaxScore   *int   `json:"max_score"`
}

// Percent returns Score/MaxScore in percent, or 0 when not scored.
func (s Scoring) Percent() float64 {
	if s.Score == nil || s.MaxScore == nil || *s.MaxScore == 0 {
		return 0
	}
	return 100 * float64(*s.Score) / float64(*s.MaxScore)
}

// ScoreItem records which fields of one output matched the expected output.
type ScoreItem struct {
	Solution         string   `json:"solution"`
	TradeGroup       string   `json:"trade_group"`
	TradeID          string   `json:"trade_id"`
	TrialID          string   `json:"trial_id"`
	MatchedFields    []string `json:"matched_fields"`
	MismatchedFields []string `json:"mismatched_fields"`
}

// Statistics summarises the spread of extracted values for one trade.
type Statistics struct {
	Solution  string            `json:"solution"`
	TradeID   string            `json:"trade_id"`
	EntryText string            `json:"entry_text"`
	Fields    map[string]string `json:"fields"`
}
