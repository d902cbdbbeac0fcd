// Package command is the transport-agnostic operation surface the host
// embedder invokes: server lifecycle, configuration and mapping CRUD, and
// the local-directory listing backing the mapping picker.
//
// The log stream is not a command; hosts subscribe on the bus directly
// via Service.SubscribeLogs and receive records until they close the
// subscription.
package command
