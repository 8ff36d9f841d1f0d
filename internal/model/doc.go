// Package model defines the records shared across the hackathon harness.
//
// Conventions:
//   - Scored output fields are strings; "" means the field was not extracted
//   - Dates are ISO-8601 yyyy-mm-dd
//   - Numbers are formatted as integers when integral (10000000, not 1e+07)
//   - Trial "0" holds generated or expected results, "1".."N" scoring runs
package model
