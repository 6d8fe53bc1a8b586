// Package processor hosts the bounded pool of workers that execute polled
// tasks. Every worker consumes tasks from the dispatch queue and hands them
// to the executor; the pool size caps how many handlers run at once.
package processor
