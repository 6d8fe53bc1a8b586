// Package task defines the task instance fetched from the orchestrator, the
// outcome reported back for it, the definition announced at registration time
// and the tagged Result a handler returns.
package task
