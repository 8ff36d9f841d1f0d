package solution

import (
	"context"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/rickgao/tradeentry-hackathon/internal/entry"
	"github.com/rickgao/tradeentry-hackathon/internal/llm"
	"github.com/rickgao/tradeentry-hackathon/internal/log"
	"github.com/rickgao/tradeentry-hackathon/internal/model"
	"github.com/rickgao/tradeentry-hackathon/internal/retriever"
)

// Descriptions are the parameter descriptions passed to the annotating
// retriever. Leg parameters get " for the <leg>" appended.
type Descriptions struct {
	Maturity      string
	EffectiveDate string
	FreqMonths    string
	FloatIndex    string
	FloatSpread   string
	FixedRate     string
	Notional      string
	Basis         string
	Currency      string
}

// DefaultDescriptions returns the stock parameter descriptions.
func DefaultDescriptions() Descriptions {
	return Descriptions{
		Maturity:      "Either maturity date as a date, or tenor (length) as the number of years and/or months",
		EffectiveDate: "Effective date as date",
		FreqMonths:    "Payment frequency",
		FloatIndex:    "Name of the floating interest rate index",
		FloatSpread:   "Spread over the interest rate index, number only",
		FixedRate:     "Fixed rate value",
		Notional:      "Trade notional",
		Basis:         "Day-count basis",
		Currency:      "Currency",
	}
}

const (
	extractErrPrefix = "Error trying to extract the field from the trade description\n"
	processErrPrefix = "Error trying to process an extracted field from the trade description\n"

	scopeTrade = "General trade information"
	scopeLeg   = "Leg description"

	legPay     = "Pay leg"
	legReceive = "Receive leg"
)

// Annotation retrieves every field separately by brace annotation.
type Annotation struct {
	spec         model.SolutionSpec
	completer    llm.Completer
	descriptions Descriptions
	logger       zerolog.Logger
}

// NewAnnotation returns an annotation solution. A non-empty spec.Prompt
// replaces the default annotation template.
func NewAnnotation(spec model.SolutionSpec, completer llm.Completer, logger zerolog.Logger) *Annotation {
	return &Annotation{
		spec:         spec,
		completer:    completer,
		descriptions: DefaultDescriptions(),
		logger:       logger,
	}
}

// WithDescriptions returns a copy of a using d.
func (a *Annotation) WithDescriptions(d Descriptions) *Annotation {
	c := *a
	c.descriptions = d
	return &c
}

func (a *Annotation) Spec() model.SolutionSpec { return a.spec }

// extraction collects the retrieved fields of one scope.
type extraction struct {
	ctx       context.Context
	retriever *retriever.Annotating
	chooser   entry.Chooser
	text      string
	scope     string
	fields    map[string]string
	err       error // context error, aborts processing
}

func (x *extraction) retrieve(description string, targets ...string) (string, bool) {
	if x.err != nil {
		return "", false
	}
	value, found, err := x.retriever.Retrieve(x.ctx, x.text, description, false)
	if err != nil {
		if isContextErr(err) {
			x.err = err
			return "", false
		}
		msg := extractErrPrefix + x.scope + ": " + x.text + "\n" + err.Error()
		for _, t := range targets {
			x.fields[t] = msg
		}
		return "", false
	}
	return value, found
}

func (x *extraction) processErr(extracted string, err error, targets ...string) {
	if isContextErr(err) {
		x.err = err
		return
	}
	msg := processErrPrefix + "Extracted field: " + extracted + "\n" + x.scope + ": " + x.text + "\n" + err.Error()
	for _, t := range targets {
		x.fields[t] = msg
	}
}

// ProcessInput retrieves trade and leg parameters for in under trialID.
func (a *Annotation) ProcessInput(ctx context.Context, in model.Input, trialID string) (model.Output, error) {
	out := model.NewOutput(a.spec.ID, trialID, in)

	ctx, err := startTrial(ctx, a.spec, trialID)
	if err != nil {
		return out, err
	}
	ctx = log.ContextWithTradeID(ctx, in.TradeID)

	r := retriever.NewAnnotating(a.completer,
		retriever.WithMaxRetries(a.spec.MaxRetries),
		retriever.WithTemplate(a.spec.Prompt),
		retriever.WithLogger(a.logger),
	)
	chooser := retriever.NewMultipleChoice(a.completer, a.spec.MaxRetries)

	trade := &extraction{ctx: ctx, retriever: r, chooser: chooser, text: in.EntryText, scope: scopeTrade, fields: map[string]string{}}
	a.tradeParameters(trade)
	if trade.err != nil {
		return out, trade.err
	}
	for _, f := range []string{model.FieldMaturityDate, model.FieldTenorYears, model.FieldEffectiveDate} {
		_ = out.SetField(f, trade.fields[f])
	}

	for _, leg := range []struct {
		name   string
		prefix string
	}{{legPay, model.PayLegPrefix}, {legReceive, model.RecLegPrefix}} {
		x := &extraction{ctx: ctx, retriever: r, chooser: chooser, text: in.EntryText, scope: scopeLeg, fields: map[string]string{}}
		a.legParameters(x, leg.name)
		if x.err != nil {
			return out, x.err
		}

		// Leg notional and currency fall back to the trade-level values.
		if x.fields[model.LegNotional] == "" {
			x.fields[model.LegNotional] = trade.fields[model.LegNotional]
		}
		if x.fields[model.LegCcy] == "" {
			x.fields[model.LegCcy] = x.fields[notionalCcy]
		}
		if x.fields[model.LegCcy] == "" {
			x.fields[model.LegCcy] = trade.fields[notionalCcy]
		}

		for _, f := range model.LegFieldNames() {
			_ = out.SetField(leg.prefix+f, x.fields[f])
		}
	}
	return out, nil
}

// notionalCcy holds the currency found next to the notional amount.
const notionalCcy = "notional_ccy"

func (a *Annotation) tradeParameters(x *extraction) {
	d := a.descriptions

	if v, ok := x.retrieve(d.Maturity, model.FieldMaturityDate, model.FieldTenorYears); ok {
		date, tenor, err := entry.DateOrTenor(v)
		switch {
		case err != nil:
			x.processErr(v, err, model.FieldMaturityDate, model.FieldTenorYears)
		case date != "":
			x.fields[model.FieldMaturityDate] = date
		default:
			x.fields[model.FieldTenorYears] = nonZero(tenor)
		}
	}

	if v, ok := x.retrieve(d.EffectiveDate, model.FieldEffectiveDate); ok {
		date, err := entry.Date(v)
		if err != nil {
			x.processErr(v, err, model.FieldEffectiveDate)
		} else {
			x.fields[model.FieldEffectiveDate] = date
		}
	}

	a.notional(x, d.Notional)
}

func (a *Annotation) notional(x *extraction, description string) {
	v, ok := x.retrieve(description, model.LegNotional, notionalCcy)
	if !ok {
		return
	}
	amount, ccy, err := entry.Amount(v)
	if err != nil {
		x.processErr(v, err, model.LegNotional, notionalCcy)
		return
	}
	x.fields[model.LegNotional] = nonZero(entry.FormatNumber(amount))
	x.fields[notionalCcy] = ccy
}

func (a *Annotation) legParameters(x *extraction, leg string) {
	d := a.descriptions
	suffix := " for the " + leg

	wantFloat, wantFixed := true, true
	if a.spec.ClassifyLegs {
		legType, err := retriever.LegType(x.ctx, a.completer, leg+" of the trade: "+x.text, a.spec.MaxRetries)
		switch {
		case isContextErr(err):
			x.err = err
			return
		case err != nil:
			logger := log.WithContext(x.ctx, a.logger)
			logger.Warn().Err(err).Str("leg", leg).Msg("leg type unknown, retrieving all fields")
		case legType == retriever.LegFixed:
			wantFloat = false
		case legType == retriever.LegFloating:
			wantFixed = false
		}
	}

	if v, ok := x.retrieve(d.FreqMonths+suffix, model.LegFreqMonths); ok {
		months, err := entry.PayFreqMonths(x.ctx, v, x.chooser)
		if err != nil {
			x.processErr(v, err, model.LegFreqMonths)
		} else if months != 0 {
			x.fields[model.LegFreqMonths] = strconv.Itoa(months)
		}
	}

	if wantFloat {
		if v, ok := x.retrieve(d.FloatIndex+suffix, model.LegFloatIndex); ok {
			index, err := entry.RatesIndex(v)
			if err != nil {
				x.processErr(v, err, model.LegFloatIndex)
			} else {
				x.fields[model.LegFloatIndex] = index
			}
		}

		if v, ok := x.retrieve(d.FloatSpread+suffix, model.LegFloatSpreadBp); ok {
			spread, err := entry.NormalizeNumber(v)
			if err != nil {
				x.processErr(v, err, model.LegFloatSpreadBp)
			} else {
				x.fields[model.LegFloatSpreadBp] = nonZero(spread)
			}
		}
	}

	if v, ok := x.retrieve(d.Basis+suffix, model.LegBasis); ok {
		basis, err := entry.DayCountBasis(x.ctx, v, x.chooser)
		if err != nil {
			x.processErr(v, err, model.LegBasis)
		} else {
			x.fields[model.LegBasis] = basis
		}
	}

	a.notional(x, d.Notional+suffix)

	if v, ok := x.retrieve(d.Currency+suffix, model.LegCcy); ok {
		ccy, err := entry.Currency(v)
		if err != nil {
			x.processErr(v, err, model.LegCcy)
		} else {
			x.fields[model.LegCcy] = ccy
		}
	}

	if wantFixed {
		if v, ok := x.retrieve(d.FixedRate+suffix, model.LegFixedRatePct); ok {
			rate, err := entry.NormalizeNumber(v)
			if err != nil {
				x.processErr(v, err, model.LegFixedRatePct)
			} else {
				x.fields[model.LegFixedRatePct] = nonZero(rate)
			}
		}
	}
}

// nonZero maps a formatted zero to "none".
func nonZero(s string) string {
	if s == "0" {
		return ""
	}
	return s
}
