// Package cliconfig provides configuration loading for the staticmock CLI.
//
// It implements a layered configuration system with the following precedence
// (highest to lowest):
//
//  1. Command-line flags
//  2. Environment variables (STATICMOCK_* prefix)
//  3. Local config file (.staticmockrc.yaml in current directory)
//  4. Global config file (~/.config/staticmock/config.yaml)
//  5. Default values
//
// The package tracks the source of each configuration value for
// debugging.
package cliconfig
