// Package entry turns snippets of user text into normalized trade field
// values.
//
// Most entries are parsed deterministically: numbers with scale and unit
// suffixes, calendar dates, tenors, amounts with a currency, ISO
// currencies and floating rate indices. Day-count basis and payment
// frequency first try a fixed alias table and fall back to a
// multiple-choice LLM retrieval.
//
// Every entry is identified by Key, which combines a digest of the text
// with the entry type and locale.
package entry
