package completion

import (
	"strings"

	"github.com/rickgao/tradeentry-hackathon/internal/digest"
)

// Key identifies a cached completion.
type Key struct {
	Channel string // model id
	Trial   string // empty when no trial is set
	Query   string // raw query as sent to the model
}

// Record is one cached completion.
type Record struct {
	RequestID  string `json:"request_id"` // UUIDv7, time ordered
	Query      string `json:"query"`      // formatted query, see FormatQuery
	Completion string `json:"completion"`
}

// FormatQuery trims the query, prefixes the trial id and normalizes EOL.
func FormatQuery(trial, query string) string {
	q := strings.TrimSpace(query)
	if trial != "" {
		q = "TrialID: " + trial + "\n" + q
	}
	return digest.NormalizeEOL(q)
}

// FormatCompletion trims the completion and normalizes EOL.
func FormatCompletion(completion string) string {
	return digest.NormalizeEOL(strings.TrimSpace(completion))
}

// ID returns "digest (channel, trial[, md5])" for the key.
func ID(k Key) string {
	return digest.Digest(digest.NormalizeEOL(strings.TrimSpace(k.Query)), []string{k.Channel, k.Trial}, nil)
}

// Formatted returns the key's query in stored form.
func (k Key) Formatted() string {
	return FormatQuery(k.Trial, k.Query)
}
