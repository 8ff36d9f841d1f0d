// Package server exposes solutions, outputs and scores over HTTP.
//
// Read endpoints serve what is in the store. POST endpoints start
// generation or scoring runs and block until they finish; they are rate
// limited per client IP.
package server
