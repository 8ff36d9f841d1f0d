package entry

import (
	"fmt"
	"regexp"
	"strings"
)

const typeRatesIndex = "RatesIndex"

// rateAliases maps lowercase aliases to canonical index ids.
var rateAliases = map[string]string{
	"sofr":                                 "SOFR",
	"secured overnight financing rate":     "SOFR",
	"term sofr":                            "TermSOFR",
	"libor":                                "LIBOR",
	"usd libor":                            "LIBOR",
	"us libor":                             "LIBOR",
	"london interbank offered rate":        "LIBOR",
	"euribor":                              "EURIBOR",
	"euro interbank offered rate":          "EURIBOR",
	"estr":                                 "ESTR",
	"€str":                                 "ESTR",
	"ester":                                "ESTR",
	"euro short-term rate":                 "ESTR",
	"euro short term rate":                 "ESTR",
	"sonia":                                "SONIA",
	"sterling overnight index average":     "SONIA",
	"sterling overnight interbank average": "SONIA",
	"tona":                                 "TONA",
	"tonar":                                "TONA",
	"tokyo overnight average rate":         "TONA",
	"tibor":                                "TIBOR",
	"saron":                                "SARON",
	"swiss average rate overnight":         "SARON",
	"corra":                                "CORRA",
	"cdor":                                 "CDOR",
	"bbsw":                                 "BBSW",
	"aonia":                                "AONIA",
	"fed funds":                            "FEDFUNDS",
	"fed funds rate":                       "FEDFUNDS",
	"federal funds":                        "FEDFUNDS",
	"federal funds rate":                   "FEDFUNDS",
	"effective federal funds rate":         "FEDFUNDS",
	"effr":                                 "FEDFUNDS",
	"prime":                                "PRIME",
	"prime rate":                           "PRIME",
}

var (
	rateAliasesByLength = sortedByLength(rateAliases)
	indexTenorRE        = regexp.MustCompile(`(?i)\b(\d{1,2})\s*-?\s*(m|mo|month|months|w|wk|week|weeks|y|yr|year)\b`)
	ccyPrefixRE         = regexp.MustCompile(`^[A-Za-z]{3}\s+`)
)

// RatesIndex resolves a floating rate index name to its canonical id.
// A tenor in the text is appended after a space, for example
// "3M USD LIBOR" becomes "LIBOR 3M". Unknown names are returned trimmed
// and uppercased.
func RatesIndex(text string) (string, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return "", newError(typeRatesIndex, text, fmt.Errorf("empty rates index"))
	}

	var tenor string
	if m := indexTenorRE.FindStringSubmatchIndex(s); m != nil {
		n := s[m[2]:m[3]]
		unit := strings.ToUpper(s[m[4]:m[5]])[:1]
		tenor = n + unit
		s = strings.TrimSpace(s[:m[0]] + " " + s[m[1]:])
	}

	lower := strings.ToLower(strings.Join(strings.Fields(s), " "))
	id, ok := rateAliases[lower]
	if !ok {
		for _, alias := range rateAliasesByLength {
			if i := strings.Index(lower, alias); i >= 0 && wordBoundary(lower, i, i+len(alias)) {
				id, ok = rateAliases[alias], true
				break
			}
		}
	}
	if !ok {
		id = strings.ToUpper(strings.TrimSpace(ccyPrefixRE.ReplaceAllStringFunc(s, func(p string) string {
			if _, err := parseCurrency(strings.TrimSpace(p)); err == nil {
				return ""
			}
			return p
		})))
		if id == "" {
			return "", newError(typeRatesIndex, text, fmt.Errorf("cannot parse %q as a rates index", text))
		}
	}

	if tenor != "" {
		return id + " " + tenor, nil
	}
	return id, nil
}
