// Package solution implements the ways a trade description is turned into
// an output record.
//
// A one-step solution sends a single prompt and maps the returned JSON
// onto output fields, optionally voting across several completions. An
// annotation solution retrieves each field separately with the
// brace-annotation retriever and normalizes it with the entry parsers.
// ExpectedResults holds the reference outputs and is never generated.
//
// Every call to ProcessInput runs under its own trial id, which becomes
// part of the completion cache key.
package solution
