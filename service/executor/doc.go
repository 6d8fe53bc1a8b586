// Package executor runs a dispatched task through its registered handler and
// reports the outcome. A task is reported only by whoever claims its
// in-flight entry first, so a handler result racing the shutdown sweep or an
// external settlement is never reported twice.
package executor
