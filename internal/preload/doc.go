// Package preload imports hackathon data files into the store.
//
// Inputs and expected results are CSV files with a header row. Column
// names are matched without regard to case or underscores, so both
// TradeId and trade_id are accepted. Solutions are a YAML list.
package preload
