package entry

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/currency"
)

const (
	typeCurrency = "Currency"
	typeAmount   = "Amount"
)

var currencySymbols = map[string]string{
	"US$": "USD",
	"C$":  "CAD",
	"A$":  "AUD",
	"NZ$": "NZD",
	"HK$": "HKD",
	"$":   "USD",
	"€":   "EUR",
	"£":   "GBP",
	"¥":   "JPY",
	"₣":   "CHF",
	"₹":   "INR",
}

var currencyNames = map[string]string{
	"us dollar":          "USD",
	"us dollars":         "USD",
	"dollar":             "USD",
	"dollars":            "USD",
	"euro":               "EUR",
	"euros":              "EUR",
	"pound":              "GBP",
	"pounds":             "GBP",
	"pound sterling":     "GBP",
	"pounds sterling":    "GBP",
	"sterling":           "GBP",
	"british pound":      "GBP",
	"british pounds":     "GBP",
	"yen":                "JPY",
	"japanese yen":       "JPY",
	"swiss franc":        "CHF",
	"swiss francs":       "CHF",
	"canadian dollar":    "CAD",
	"canadian dollars":   "CAD",
	"australian dollar":  "AUD",
	"australian dollars": "AUD",
}

// Longest first so that "US$" wins over "$" and "us dollars" over "dollars".
var (
	symbolsByLength = sortedByLength(currencySymbols)
	namesByLength   = sortedByLength(currencyNames)
	isoPrefixRE     = regexp.MustCompile(`^([A-Za-z]{3})(\d.*)$`)
	isoSuffixRE     = regexp.MustCompile(`^(.*\d[a-zA-Z]*)\s*([A-Z]{3})$`)
)

func sortedByLength(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}

// Currency resolves an ISO code, a currency symbol or a currency name to
// an ISO 4217 code.
func Currency(text string) (string, error) {
	code, err := parseCurrency(text)
	if err != nil {
		return "", newError(typeCurrency, text, err)
	}
	return code, nil
}

func parseCurrency(text string) (string, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return "", fmt.Errorf("empty currency")
	}
	if code, ok := currencySymbols[s]; ok {
		return code, nil
	}
	if code, ok := currencyNames[strings.ToLower(s)]; ok {
		return code, nil
	}
	if len(s) == 3 {
		unit, err := currency.ParseISO(strings.ToUpper(s))
		if err == nil {
			return unit.String(), nil
		}
	}
	return "", fmt.Errorf("unknown currency %q", s)
}

// Amount splits text such as "USD 10,000,000", "$10mm" or "50 million
// euros" into a value and an ISO currency code. The code is empty when
// no currency is present.
func Amount(text string) (float64, string, error) {
	v, ccy, err := parseAmount(text)
	if err != nil {
		return 0, "", newError(typeAmount, text, err)
	}
	return v, ccy, nil
}

func parseAmount(text string) (float64, string, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return 0, "", fmt.Errorf("empty amount")
	}

	var ccy string
	for _, sym := range symbolsByLength {
		if strings.HasPrefix(s, sym) {
			ccy, s = currencySymbols[sym], strings.TrimSpace(s[len(sym):])
			break
		}
		if strings.HasSuffix(s, sym) {
			ccy, s = currencySymbols[sym], strings.TrimSpace(s[:len(s)-len(sym)])
			break
		}
	}

	if ccy == "" {
		lower := strings.ToLower(s)
		for _, name := range namesByLength {
			if i := strings.Index(lower, name); i >= 0 && wordBoundary(lower, i, i+len(name)) {
				ccy = currencyNames[name]
				s = strings.TrimSpace(s[:i] + s[i+len(name):])
				break
			}
		}
	}

	if ccy == "" {
		if m := isoPrefixRE.FindStringSubmatch(s); m != nil {
			if code, err := parseCurrency(m[1]); err == nil {
				ccy, s = code, m[2]
			}
		} else if m := isoSuffixRE.FindStringSubmatch(s); m != nil {
			if code, err := parseCurrency(m[2]); err == nil {
				ccy, s = code, m[1]
			}
		}
	}

	if ccy == "" {
		rest := make([]string, 0, 4)
		for _, f := range strings.Fields(s) {
			if ccy == "" && len(f) == 3 {
				if code, err := parseCurrency(f); err == nil {
					ccy = code
					continue
				}
			}
			rest = append(rest, f)
		}
		s = strings.Join(rest, " ")
	}

	v, err := parseNumber(s)
	if err != nil {
		return 0, "", err
	}
	return v, ccy, nil
}

func wordBoundary(s string, start, end int) bool {
	isLetter := func(b byte) bool { return b >= 'a' && b <= 'z' }
	if start > 0 && isLetter(s[start-1]) {
		return false
	}
	return end >= len(s) || !isLetter(s[end])
}
