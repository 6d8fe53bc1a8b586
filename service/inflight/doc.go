// Package inflight tracks tasks that were fetched from the orchestrator but
// not yet reported. An entry is present exactly while its task is owned by
// this worker; whoever claims it first is the only party allowed to report.
package inflight
