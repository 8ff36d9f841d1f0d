package entry

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

const typeNumber = "Number"

var numberRE = regexp.MustCompile(`^([+-]?(?:\d+\.?\d*|\.\d+))\s*([a-z% ]*)$`)

var unitScale = map[string]float64{
	"":             1,
	"%":            1,
	"pct":          1,
	"percent":      1,
	"per cent":     1,
	"bp":           1,
	"bps":          1,
	"basis point":  1,
	"basis points": 1,
	"k":            1e3,
	"th":           1e3,
	"thousand":     1e3,
	"m":            1e6,
	"mm":           1e6,
	"mn":           1e6,
	"mio":          1e6,
	"mln":          1e6,
	"million":      1e6,
	"millions":     1e6,
	"b":            1e9,
	"bn":           1e9,
	"bln":          1e9,
	"billion":      1e9,
	"billions":     1e9,
	"tn":           1e12,
	"trillion":     1e12,
}

var smallWords = map[string]float64{
	"zero": 0, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5, "six": 6,
	"seven": 7, "eight": 8, "nine": 9, "ten": 10, "eleven": 11, "twelve": 12,
	"thirteen": 13, "fourteen": 14, "fifteen": 15, "sixteen": 16,
	"seventeen": 17, "eighteen": 18, "nineteen": 19, "twenty": 20,
	"thirty": 30, "forty": 40, "fifty": 50, "sixty": 60, "seventy": 70,
	"eighty": 80, "ninety": 90,
}

var scaleWords = map[string]float64{
	"thousand": 1e3,
	"million":  1e6,
	"billion":  1e9,
	"trillion": 1e12,
}

// Number parses a number written with optional thousands separators, a
// unit (%, bp) or a scale suffix (k, m, mm, bn), or in words.
func Number(text string) (float64, error) {
	v, err := parseNumber(text)
	if err != nil {
		return 0, newError(typeNumber, text, err)
	}
	return v, nil
}

func parseNumber(text string) (float64, error) {
	s := strings.ToLower(strings.TrimSpace(text))
	if s == "" {
		return 0, fmt.Errorf("empty number")
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "_", "")
	s = strings.TrimSuffix(s, ".")

	if m := numberRE.FindStringSubmatch(s); m != nil {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, fmt.Errorf("invalid number %q: %w", text, err)
		}
		scale, ok := unitScale[strings.TrimSpace(m[2])]
		if !ok {
			return 0, fmt.Errorf("unknown unit %q in number %q", strings.TrimSpace(m[2]), text)
		}
		if scale == 1 {
			return v, nil
		}
		return roundTo(v*scale, 6), nil
	}

	if v, ok := parseWords(s); ok {
		return v, nil
	}
	return 0, fmt.Errorf("cannot parse %q as a number", text)
}

// parseWords handles numbers such as "twenty five" or "ten million".
func parseWords(s string) (float64, bool) {
	s = strings.NewReplacer("-", " ", "%", " percent").Replace(s)
	words := strings.Fields(s)
	if len(words) == 0 {
		return 0, false
	}

	var total, current float64
	seen := false
	for _, w := range words {
		switch {
		case w == "and" || w == "a":
		case w == "percent" || w == "bps" || w == "bp":
		case w == "hundred":
			if current == 0 {
				current = 1
			}
			current *= 100
			seen = true
		default:
			if v, ok := smallWords[w]; ok {
				current += v
				seen = true
				continue
			}
			if scale, ok := scaleWords[strings.TrimSuffix(w, "s")]; ok {
				if current == 0 {
					current = 1
				}
				total += current * scale
				current = 0
				seen = true
				continue
			}
			return 0, false
		}
	}
	if !seen {
		return 0, false
	}
	return total + current, true
}

func roundTo(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}

// FormatNumber renders integral values without a fractional part and
// other values in their shortest exact form.
func FormatNumber(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// NormalizeNumber parses text as a number and formats it.
func NormalizeNumber(text string) (string, error) {
	v, err := Number(text)
	if err != nil {
		return "", err
	}
	return FormatNumber(v), nil
}
