// Package main declares constants used across the imagelink command-line interface.
package main

// Output formats accepted by --output-format
const (
	OutputFormatText = "text"
	OutputFormatYAML = "yaml"
)

// Flag names that are not config keys
const (
	flagConfig       = "config"
	flagDebug        = "debug"
	flagOutputFormat = "output-format"
	flagRequire      = "require"
)
