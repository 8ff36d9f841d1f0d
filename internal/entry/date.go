package entry

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	typeDate = "Date"

	// DateLayout is the normalized date format.
	DateLayout = "2006-01-02"
)

var (
	ordinalRE   = regexp.MustCompile(`(?i)\b(\d{1,2})(st|nd|rd|th)\b`)
	spacesRE    = regexp.MustCompile(`\s+`)
	septRE      = regexp.MustCompile(`(?i)\bsept\b`)
	abbrevDotRE = regexp.MustCompile(`\b([A-Za-z]{3})\.(\s|$)`)
)

// Layouts tried in order; month-first numeric forms come before day-first.
var dateLayouts = []string{
	"2006-01-02",
	"2006-1-2",
	"2006/01/02",
	"2006/1/2",
	"2006.01.02",
	"20060102",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"1-2-2006",
	"02/01/2006",
	"2/1/2006",
	"02.01.2006",
	"2.1.2006",
	"January 2 2006",
	"Jan 2 2006",
	"2 January 2006",
	"2 Jan 2006",
	"02-Jan-2006",
	"2-Jan-2006",
	"02-Jan-06",
	"02Jan2006",
	"2Jan2006",
	"02Jan06",
	"January 2006 2",
	"Monday January 2 2006",
	"Monday 2 January 2006",
	"Mon Jan 2 2006",
	"Mon 2 Jan 2006",
}

// Date parses a calendar date and returns it as yyyy-mm-dd. ISO, US
// numeric and textual month forms with ordinal days are accepted.
func Date(text string) (string, error) {
	t, err := parseDate(text)
	if err != nil {
		return "", newError(typeDate, text, err)
	}
	return t.Format(DateLayout), nil
}

func parseDate(text string) (time.Time, error) {
	s := normalizeDateText(text)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse %q as a date", strings.TrimSpace(text))
}

func normalizeDateText(text string) string {
	s := strings.TrimSpace(text)
	s = ordinalRE.ReplaceAllString(s, "$1")
	s = strings.NewReplacer(",", " ", " of ", " ", " the ", " ").Replace(" " + s + " ")
	s = septRE.ReplaceAllString(s, "Sep")
	s = abbrevDotRE.ReplaceAllString(s, "$1$2")
	s = strings.TrimSuffix(strings.TrimSpace(s), ".")
	return spacesRE.ReplaceAllString(s, " ")
}
