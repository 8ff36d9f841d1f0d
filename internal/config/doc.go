// Package config loads the hackathon harness configuration.
//
// Configuration is a single YAML file. ${VAR} references are expanded from
// the environment before parsing, then secrets that are still empty are
// filled from well-known environment variables (OPENAI_API_KEY,
// FIREWORKS_API_KEY, HACKATHON_DB_PASSWORD, HACKATHON_REDIS_PASSWORD).
package config
