// Package prompt renders prompt templates with {name} placeholders.
//
// Literal braces are written as {{ and }}, so prompts that show JSON
// examples can be stored verbatim in solution definitions.
package prompt

import (
	"fmt"
	"strings"
)

// Format substitutes every {name} in tmpl with params[name].
func Format(tmpl string, params map[string]string) (string, error) {
	var b strings.Builder
	b.Grow(len(tmpl))

	for i := 0; i < len(tmpl); i++ {
		c := tmpl[i]
		switch c {
		case '{':
			if i+1 < len(tmpl) && tmpl[i+1] == '{' {
				b.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexByte(tmpl[i+1:], '}')
			if end < 0 {
				return "", fmt.Errorf("unmatched '{' at offset %d", i)
			}
			name := tmpl[i+1 : i+1+end]
			if strings.ContainsAny(name, "{") {
				return "", fmt.Errorf("unexpected '{' in placeholder at offset %d", i)
			}
			v, ok := params[name]
			if !ok {
				return "", fmt.Errorf("unknown placeholder {%s}", name)
			}
			b.WriteString(v)
			i += end + 1
		case '}':
			if i+1 < len(tmpl) && tmpl[i+1] == '}' {
				b.WriteByte('}')
				i++
				continue
			}
			return "", fmt.Errorf("single '}' at offset %d", i)
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), nil
}

// MustFormat is Format for templates known at compile time.
func MustFormat(tmpl string, params map[string]string) string {
	s, err := Format(tmpl, params)
	if err != nil {
		panic(err)
	}
	return s
}
