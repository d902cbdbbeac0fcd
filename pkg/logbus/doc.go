// Package logbus provides the process-wide broadcast bus that delivers
// per-request access-log records to subscribers.
//
// The bus is the only cross-goroutine mutable state on the serving hot
// path, so its contract is deliberately narrow: Publish never blocks, and
// a subscriber that falls behind loses its oldest buffered records rather
// than exerting back-pressure on the handler. Records are delivered to
// each subscriber in publish order; a new subscriber only sees records
// published after it subscribed.
//
// This is a leaf package with no internal dependencies, allowing it to be
// imported by any package without creating import cycles.
package logbus
