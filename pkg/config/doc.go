// Package config defines the persisted data model of the mock static file
// server: the server configuration (port, CORS policy inputs), directory
// mappings (virtual path to local directory), their patch types, and the
// derived runtime state.
//
// Virtual path normalization lives here so that every writer (store,
// command surface, tests) applies the same rules: a forced leading slash,
// no empty paths, no ".." segments, and a stripped trailing slash except
// for the root.
package config
