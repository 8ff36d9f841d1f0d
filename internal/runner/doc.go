// Package runner drives a solution over its inputs.
//
// A run processes every (input, trial) pair with bounded concurrency and
// hands each output to a Sink, normally the batching writer. Trial "0" is
// generation; trials "1".."N" are scoring runs. The first processing error
// cancels the remaining work.
package runner
