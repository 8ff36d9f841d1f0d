// Package metrics provides Prometheus metrics for monitoring.
//
// Key metrics:
//   - LLM request counts, status codes and latency per model
//   - Completion cache hits and misses per backend
//   - Inputs processed and outputs written per solution
//   - Writer batch flushes and errors
//   - Latest score percent per solution
package metrics
