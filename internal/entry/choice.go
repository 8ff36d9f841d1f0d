package entry

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode"
)

// Descriptions and options used for LLM-assisted entries.
const (
	DayCountBasisDescription = "Day count basis"
	PayFreqDescription       = "Payment frequency in months, for example 3 for quarterly."
)

var (
	DayCountBasisOptions = []string{"30/360", "30/365", "actual/360", "actual/365", "actual/actual"}
	PayFreqOptions       = []string{"1", "3", "6", "12"}
)

// Chooser selects one of a fixed list of choices for a described
// parameter of input. *retriever.MultipleChoice implements it.
type Chooser interface {
	Retrieve(ctx context.Context, input, description string, choices []string) (string, bool, error)
}

var basisAliases = map[string]string{
	"30/360":            "30/360",
	"30e/360":           "30/360",
	"30/360bond":        "30/360",
	"bondbasis":         "30/360",
	"30/360isda":        "30/360",
	"30/365":            "30/365",
	"actual/360":        "actual/360",
	"act/360":           "actual/360",
	"a/360":             "actual/360",
	"act360":            "actual/360",
	"moneymarket":       "actual/360",
	"actual/365":        "actual/365",
	"actual/365fixed":   "actual/365",
	"act/365":           "actual/365",
	"act/365f":          "actual/365",
	"act/365fixed":      "actual/365",
	"a/365":             "actual/365",
	"a/365f":            "actual/365",
	"act365":            "actual/365",
	"actual/actual":     "actual/actual",
	"act/act":           "actual/actual",
	"act/actisda":       "actual/actual",
	"actual/actualisda": "actual/actual",
	"a/a":               "actual/actual",
}

var freqAliases = map[string]int{
	"monthly":       1,
	"everymonth":    1,
	"quarterly":     3,
	"quarter":       3,
	"everyquarter":  3,
	"semiannual":    6,
	"semiannually":  6,
	"semi-annual":   6,
	"semi-annually": 6,
	"halfyearly":    6,
	"half-yearly":   6,
	"biannual":      6,
	"biannually":    6,
	"annual":        12,
	"annually":      12,
	"yearly":        12,
	"everyyear":     12,
	"peryear":       12,
}

// DayCountBasis normalizes a day-count basis to one of
// DayCountBasisOptions. Unrecognized text is passed to chooser when one
// is given.
func DayCountBasis(ctx context.Context, text string, chooser Chooser) (string, error) {
	key := strings.ToLower(strings.Join(strings.Fields(strings.ReplaceAll(text, " / ", "/")), ""))
	key = strings.NewReplacer("(", "", ")", "", "-", "", ".", "").Replace(key)
	if basis, ok := basisAliases[key]; ok {
		return basis, nil
	}
	if chooser == nil {
		return "", newError("DayCountBasis", text, fmt.Errorf("unknown day count basis %q", strings.TrimSpace(text)))
	}
	return choose(ctx, "DayCountBasis", text, DayCountBasisDescription, DayCountBasisOptions, chooser)
}

// PayFreqMonths converts a payment frequency to a number of months, one
// of PayFreqOptions. Unrecognized text is passed to chooser when one is
// given.
func PayFreqMonths(ctx context.Context, text string, chooser Chooser) (int, error) {
	if months, ok := parseFreq(text); ok && slices.Contains(PayFreqOptions, strconv.Itoa(months)) {
		return months, nil
	}
	if chooser == nil {
		return 0, newError("PayFreqMonths", text, fmt.Errorf("unknown payment frequency %q", strings.TrimSpace(text)))
	}
	choice, err := choose(ctx, "PayFreqMonths", text, PayFreqDescription, PayFreqOptions, chooser)
	if err != nil {
		return 0, err
	}
	v, err := parseNumber(choice)
	if err != nil {
		return 0, newError("PayFreqMonths", text, err)
	}
	return int(v), nil
}

func parseFreq(text string) (int, bool) {
	lower := strings.ToLower(strings.TrimSpace(text))
	if months, ok := freqAliases[strings.ReplaceAll(lower, " ", "")]; ok {
		return months, true
	}
	// Two-word aliases are tried before single words at each position, so
	// "paid semi annually" is 6 and not 12.
	words := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for i, w := range words {
		if i+1 < len(words) {
			if months, ok := freqAliases[w+words[i+1]]; ok {
				return months, true
			}
		}
		if months, ok := freqAliases[w]; ok {
			return months, true
		}
	}
	if t, err := parseTenor(lower); err == nil && t.Weeks == 0 && t.Days == 0 && t.BusinessDays == 0 {
		return t.Years*12 + t.Months, true
	}
	if v, err := parseNumber(lower); err == nil && v == float64(int(v)) {
		return int(v), true
	}
	return 0, false
}

func choose(ctx context.Context, entryType, text, description string, options []string, chooser Chooser) (string, error) {
	choice, found, err := chooser.Retrieve(ctx, text, description, options)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}
		return "", newError(entryType, text, err)
	}
	if !found {
		return "", newError(entryType, text, fmt.Errorf("%s not found in %q", strings.ToLower(description), strings.TrimSpace(text)))
	}
	return choice, nil
}
