// Package writer batches solution outputs on their way to the store.
//
// The runner submits each output as soon as it is produced. OutputWriter
// collects them and writes a batch when BatchSize outputs are waiting or the
// flush interval elapses, whichever comes first. Flush forces a write of
// everything submitted so far; the scorer calls it before reading outputs
// back.
//
// Writes are upserts, so rerunning a trial replaces its earlier outputs.
package writer
