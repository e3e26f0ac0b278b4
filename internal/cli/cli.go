package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/specialistvlad/texgraphgo/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(format string, args ...any) *ExitError {
	return &ExitError{Code: 2, Message: fmt.Sprintf(format, args...)}
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("texgraph", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
texgraph - renders procedural material packages into textures.

Usage:
  texgraph [options] [PROJECT_PATH]

Arguments:
  PROJECT_PATH
    Path to a project .hcl file or a directory of project files.

Options:
`)
		flagSet.PrintDefaults()
	}

	projectFlag := flagSet.String("project", "", "Path to the project file or directory.")
	pFlag := flagSet.String("p", "", "Path to the project file or directory (shorthand).")
	statusPortFlag := flagSet.Int("status-port", 0, "Port for the HTTP health and status server. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	watchFlag := flagSet.Bool("watch", false, "Keep running and reimport packages and images when their files change.")
	outFlag := flagSet.String("out", "", "Directory to export rendered textures to as PNG. Empty disables export.")
	backendFlag := flagSet.String("backend", "", "Compute backend, overrides the project's renderer block. Options: 'local' or 'socketio'.")
	workersFlag := flagSet.Int("workers", 0, "Number of compute workers. 0 uses the project setting.")
	strictFlag := flagSet.Bool("strict", false, "Fail a package reimport that leaves instances detached.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, usageError("%s", err.Error())
	}

	path := *projectFlag
	if path == "" {
		path = *pFlag
	}
	if path == "" && flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	if path == "" {
		slog.Debug("No project path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, usageError("invalid log-format: must be 'text' or 'json'")
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, false, usageError("invalid log-level: must be 'debug', 'info', 'warn', or 'error'")
	}

	backend := strings.ToLower(*backendFlag)
	switch backend {
	case "", "local", "socketio":
	default:
		return nil, false, usageError("invalid backend %q: must be 'local' or 'socketio'", *backendFlag)
	}

	if *statusPortFlag < 0 || *statusPortFlag > 65535 {
		return nil, false, usageError("invalid status-port: %d", *statusPortFlag)
	}

	cfg, err := app.NewConfig(app.Config{
		ProjectPath: path,
		OutDir:      *outFlag,
		LogFormat:   logFormat,
		LogLevel:    logLevel,
		StatusPort:  *statusPortFlag,
		Watch:       *watchFlag,
		Backend:     backend,
		Workers:     *workersFlag,
		Strict:      *strictFlag,
	})
	if err != nil {
		return nil, false, usageError("%s", err.Error())
	}

	slog.Debug("CLI parser finished successfully.", "config", cfg)
	return cfg, false, nil
}
