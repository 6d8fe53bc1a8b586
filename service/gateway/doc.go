// Package gateway talks to the remote task service: polling for work,
// reporting outcomes, and registering task definitions and capabilities.
// Each operation issues exactly one HTTP request and never retries.
package gateway
