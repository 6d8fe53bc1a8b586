// Package tracing wraps OpenTelemetry so that the poller, executor and gateway
// can open spans without importing the upstream packages directly. When no
// provider is installed the global no-op tracer is used and spans cost nothing.
package tracing
