// Package idgen wraps the UUID generator so that it can be stubbed in tests.
// It is used for dispatch message ids and for the default worker identifier
// reported to the orchestrator.
package idgen
