// Package engine provides the mock static file server: the supervisor
// owning the bound socket and shutdown signal, the route builder that
// turns a configuration snapshot plus enabled mappings into an immutable
// routing table, and the static file handler with precompressed-variant
// negotiation.
//
// The routing table and CORS policy are built once per Start and never
// mutated for the life of that run; mapping changes take effect only at
// the next Start.
package engine
