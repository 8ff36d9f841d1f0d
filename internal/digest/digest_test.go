package digest

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestMD5HexIgnoresCaseAndWhitespace(t *testing.T) {
	assert.Equal(t, MD5Hex("SampleText"), MD5Hex("sample text"))
	assert.Equal(t, MD5Hex("a\r\nb"), MD5Hex("AB"))
	assert.Len(t, MD5Hex(""), 32)
}

func TestDigest(t *testing.T) {
	long := strings.Repeat("Long Text ", 20)

	tests := []struct {
		name       string
		text       string
		textParams []string
		hashParams []string
		want       string
	}{
		{"short no params", "Sample Text", nil, nil, "Sample Text"},
		{"short with params", "Sample Text", []string{"Stub", "en-GB"}, nil, "Sample Text (Stub, en-GB)"},
		{"empty params pruned", "Sample Text", []string{"gpt-4o-mini", ""}, nil, "Sample Text (gpt-4o-mini)"},
		{
			"hash params",
			"Sample Text", []string{"Stub"}, []string{"Sample Data"},
			"Sample Text (Stub, " + MD5Hex("Sample TextSample Data") + ")",
		},
		{
			"multiline",
			"Multiline\nText", nil, nil,
			"Multiline Text (" + MD5Hex("Multiline\nText") + ")",
		},
		{
			"long",
			long, []string{"Stub"}, nil,
			strings.TrimSpace(long[:80]) + " (Stub, " + MD5Hex(long) + ")",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Digest(tt.text, tt.textParams, tt.hashParams))
		})
	}
}

func TestShortenCollapsesWhitespace(t *testing.T) {
	got, truncated := Shorten("Pay   fixed\n\nreceive\tfloat")
	assert.True(t, truncated)
	assert.Equal(t, "Pay fixed receive float", got)
}

func TestShortenCountsCharacters(t *testing.T) {
	// 79 characters but well over 80 bytes.
	text := "Notional €10m, fee £5k " + strings.Repeat("€", 56)
	assert.Equal(t, 79, utf8.RuneCountInString(text))
	got, truncated := Shorten(text)
	assert.False(t, truncated)
	assert.Equal(t, text, got)

	long := strings.Repeat("€", 200)
	got, truncated = Shorten(long)
	assert.True(t, truncated)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, 80, utf8.RuneCountInString(got))
	assert.Equal(t, strings.Repeat("€", 80), got)

	id := Digest(long, []string{"gpt"}, nil)
	assert.True(t, utf8.ValidString(id))
	assert.Equal(t, strings.Repeat("€", 80)+" (gpt, "+MD5Hex(long)+")", id)
}

func TestNormalizeEOL(t *testing.T) {
	assert.Equal(t, "a\nb\nc", NormalizeEOL("a\r\nb\r\r\nc"))
}
