// Package llm provides an OpenAI-compatible chat completions client.
//
// The same client serves OpenAI and Fireworks, which expose the same
// /chat/completions contract under different base URLs. Requests carry a
// bearer token, are rate limited per client, traced with otelhttp, and
// retried with jittered exponential backoff on 5xx and 429 responses.
//
// Trial ids travel in the context (WithTrial) so that caches can keep
// completions of different trials apart.
package llm
