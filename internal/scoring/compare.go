package scoring

import (
	"strconv"
	"strings"

	"github.com/rickgao/tradeentry-hackathon/internal/model"
)

// Compare checks every scored field of actual against expected.
// entry_text and the key fields are not compared.
func Compare(expected, actual model.Output) (matched, mismatched []string) {
	matched = []string{}
	mismatched = []string{}
	for _, f := range model.FieldNames() {
		if Equal(expected.Field(f), actual.Field(f)) {
			matched = append(matched, f)
		} else {
			mismatched = append(mismatched, f)
		}
	}
	return matched, mismatched
}

// Equal reports whether two field values match. Values match when their
// trimmed text is equal or when both are numbers with the same value.
// An empty value only matches another empty value.
func Equal(expected, actual string) bool {
	expected, actual = strings.TrimSpace(expected), strings.TrimSpace(actual)
	if expected == actual {
		return true
	}
	if expected == "" || actual == "" {
		return false
	}
	x, err := strconv.ParseFloat(expected, 64)
	if err != nil {
		return false
	}
	y, err := strconv.ParseFloat(actual, 64)
	if err != nil {
		return false
	}
	return x == y
}
