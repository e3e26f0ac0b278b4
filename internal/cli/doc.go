// Package cli parses command-line arguments into an app.Config and maps
// invalid input to exit codes.
package cli
