package solution

import (
	"sort"
	"strconv"
	"strings"

	"github.com/rickgao/tradeentry-hackathon/internal/entry"
	"github.com/rickgao/tradeentry-hackathon/internal/retriever"
)

// AgreementThreshold is the minimum share of votes the modal value of a
// key needs to be kept.
const AgreementThreshold = 0.20

// Consensus combines several JSON results into one. Values are compared
// as canonical numbers where they parse as numbers and as strings
// otherwise. For each key the most frequent value wins, ties going to the
// value seen first; keys whose winner has less than AgreementThreshold of
// votes are dropped. votes is the number of votes cast, including those
// that produced no result; missing keys and failed votes count as votes
// for nothing.
func Consensus(results []map[string]any, votes int) map[string]any {
	if len(results) == 0 {
		return map[string]any{}
	}
	if votes < len(results) {
		votes = len(results)
	}

	type tally struct {
		counts map[string]int
		order  []string
	}
	tallies := make(map[string]*tally)
	for _, result := range results {
		for key := range result {
			if result[key] == nil {
				continue
			}
			v := canonicalValue(retriever.StringValue(result, key))
			t, ok := tallies[key]
			if !ok {
				t = &tally{counts: make(map[string]int)}
				tallies[key] = t
			}
			if t.counts[v] == 0 {
				t.order = append(t.order, v)
			}
			t.counts[v]++
		}
	}

	keys := make([]string, 0, len(tallies))
	for k := range tallies {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string]any, len(keys))
	for _, key := range keys {
		t := tallies[key]
		best, bestCount := "", 0
		for _, v := range t.order {
			if t.counts[v] > bestCount {
				best, bestCount = v, t.counts[v]
			}
		}
		if float64(bestCount)/float64(votes) < AgreementThreshold {
			continue
		}
		out[key] = best
	}
	return out
}

func canonicalValue(s string) string {
	trimmed := strings.TrimSpace(s)
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return entry.FormatNumber(f)
	}
	return trimmed
}
