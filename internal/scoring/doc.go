// Package scoring compares solution outputs with expected results.
//
// A score is the number of fields that match the ExpectedResults output
// (trial "0") summed over every input and scoring trial; the maximum score
// is the number of fields compared. Heatmap and Statistics summarise the
// stored score items and outputs per trade and field.
package scoring
