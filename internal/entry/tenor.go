package entry

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

const typeTenor = "Tenor"

// Tenor is a time interval. Components are additive.
type Tenor struct {
	Years        int
	Months       int
	Weeks        int
	Days         int
	BusinessDays int
}

var (
	tenorPartRE = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*-?\s*([a-z]+)`)
	tenorWordRE = regexp.MustCompile(`[a-z]+`)
)

var tenorUnits = map[string]byte{
	"y": 'y', "yr": 'y', "yrs": 'y', "year": 'y', "years": 'y',
	"m": 'm', "mo": 'm', "mos": 'm', "mth": 'm', "mths": 'm', "month": 'm', "months": 'm',
	"w": 'w', "wk": 'w', "wks": 'w', "week": 'w', "weeks": 'w',
	"d": 'd', "day": 'd', "days": 'd',
	"bd": 'b', "bday": 'b', "bdays": 'b',
}

// ParseTenor parses intervals such as "10Y", "5 years 6 months", "18M",
// "ten-year" or "2 business days".
func ParseTenor(text string) (Tenor, error) {
	t, err := parseTenor(text)
	if err != nil {
		return Tenor{}, newError(typeTenor, text, err)
	}
	return t, nil
}

func parseTenor(text string) (Tenor, error) {
	s := strings.ToLower(strings.TrimSpace(text))
	if s == "" {
		return Tenor{}, fmt.Errorf("empty tenor")
	}
	s = tenorWordRE.ReplaceAllStringFunc(s, func(w string) string {
		if v, ok := smallWords[w]; ok {
			return strconv.Itoa(int(v))
		}
		return w
	})
	s = strings.NewReplacer(
		" and a half ", ".5 ",
		"business days", "bd",
		"business day", "bd",
	).Replace(s)

	var t Tenor
	found := false
	for _, m := range tenorPartRE.FindAllStringSubmatch(s, -1) {
		unit, ok := tenorUnits[m[2]]
		if !ok {
			continue
		}
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return Tenor{}, fmt.Errorf("invalid tenor %q: %w", text, err)
		}
		found = true
		whole, frac := math.Modf(v)
		switch unit {
		case 'y':
			t.Years += int(whole)
			t.Months += int(math.Round(frac * 12))
		case 'm':
			t.Months += int(whole)
			t.Days += int(math.Round(frac * 30))
		case 'w':
			t.Weeks += int(whole)
			t.Days += int(math.Round(frac * 7))
		case 'd':
			t.Days += int(whole)
		case 'b':
			t.BusinessDays += int(whole)
		}
	}
	if !found {
		return Tenor{}, fmt.Errorf("cannot parse %q as a tenor", strings.TrimSpace(text))
	}
	return t, nil
}

// InYears converts the tenor to a number of years using 12 months, 52
// weeks, 365 days and 252 business days per year.
func (t Tenor) InYears() float64 {
	y := float64(t.Years) +
		float64(t.Months)/12 +
		float64(t.Weeks)/52 +
		float64(t.Days)/365 +
		float64(t.BusinessDays)/252
	return roundTo(y, 4)
}

// String returns the tenor in market notation, for example "10Y6M".
func (t Tenor) String() string {
	var b strings.Builder
	for _, p := range []struct {
		n    int
		unit string
	}{{t.Years, "Y"}, {t.Months, "M"}, {t.Weeks, "W"}, {t.Days, "D"}, {t.BusinessDays, "BD"}} {
		if p.n != 0 {
			b.WriteString(strconv.Itoa(p.n))
			b.WriteString(p.unit)
		}
	}
	if b.Len() == 0 {
		return "0D"
	}
	return b.String()
}

// DateOrTenor parses text as a date, or failing that as a tenor. Exactly
// one of date and tenorYears is set on success.
func DateOrTenor(text string) (date, tenorYears string, err error) {
	if d, derr := parseDate(text); derr == nil {
		return d.Format(DateLayout), "", nil
	}
	t, terr := parseTenor(text)
	if terr != nil {
		return "", "", newError("DateOrTenor", text,
			fmt.Errorf("cannot parse %q as a date or tenor", strings.TrimSpace(text)))
	}
	return "", FormatNumber(t.InYears()), nil
}
