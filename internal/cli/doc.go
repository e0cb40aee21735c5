// Package cli parses command-line arguments, validates flag combinations and
// maps process-level failures to exit codes. Flags given explicitly override
// values from the configuration file.
package cli
