package retriever

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoJSON is returned when a completion contains no JSON object.
var ErrNoJSON = errors.New("no JSON object found")

// ExtractJSON decodes the outermost {...} object in text, ignoring
// markdown code fences and any prose around the object. Numbers are
// returned as json.Number.
func ExtractJSON(text string) (map[string]any, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```JSON")

	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end <= start {
		return nil, ErrNoJSON
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(text[start : end+1])))
	dec.UseNumber()
	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoJSON, err)
	}
	return out, nil
}

// StringValue returns m[key] as a string. Missing and null values are "".
func StringValue(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		if v {
			return "Y"
		}
		return "N"
	default:
		return fmt.Sprint(v)
	}
}

// ParseYN parses a Y/N flag. Yes/No and True/False spellings are accepted.
func ParseYN(value, field string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "":
		return false, fmt.Errorf("The value for field %s is empty. Valid values are Y or N.", field)
	case "y", "yes", "true":
		return true, nil
	case "n", "no", "false":
		return false, nil
	default:
		return false, fmt.Errorf("The value for field %s must be Y or N, got %q.", field, value)
	}
}

// unwrapFence removes a triple-backtick wrapper from a completion: the
// same character six times at both ends.
func unwrapFence(completion string) string {
	if len(completion) < 12 {
		return completion
	}
	first, last := completion[0], completion[len(completion)-1]
	if strings.Repeat(string(first), 6) == completion[:6] &&
		strings.Repeat(string(last), 6) == completion[len(completion)-6:] {
		return completion[3 : len(completion)-3]
	}
	return completion
}
