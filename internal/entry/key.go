package entry

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/language"

	"github.com/rickgao/tradeentry-hackathon/internal/digest"
)

// DefaultLocale is used when an entry does not specify one.
const DefaultLocale = "en-US"

var localeRE = regexp.MustCompile(`^[a-z]{2}-[A-Z]{2}$`)

// CheckLocale verifies that locale has the ll-CC form and names a known
// language and region.
func CheckLocale(locale string) error {
	if !localeRE.MatchString(locale) {
		return fmt.Errorf("locale %q must have the form ll-CC, for example en-US", locale)
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return fmt.Errorf("locale %q: %w", locale, err)
	}
	if _, conf := tag.Region(); conf != language.Exact {
		return fmt.Errorf("locale %q has no region", locale)
	}
	return nil
}

// Key returns the identifier of an entry: the digest of text followed by
// the entry type, the locale and, when the text was shortened or data is
// present, an MD5 hash of text and data.
func Key(entryType, locale, text, data string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", errors.New("entry text is empty")
	}
	if locale == "" {
		locale = DefaultLocale
	}
	if err := CheckLocale(locale); err != nil {
		return "", err
	}

	id := digest.Digest(text, []string{entryType, locale}, []string{data})
	if strings.ContainsAny(id, `\;`) {
		return "", fmt.Errorf("entry id %q must not contain backslash or semicolon", id)
	}
	return id, nil
}

// Error reports a failure to parse an entry.
type Error struct {
	EntryID string
	Err     error
}

func (e *Error) Error() string { return e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

// newError wraps err with the id of the failing entry. The id is left
// empty when the text cannot form one.
func newError(entryType, text string, err error) error {
	id, _ := Key(entryType, DefaultLocale, text, "")
	return &Error{EntryID: id, Err: err}
}
