package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/bundlegrid/internal/app"
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

// pathList collects a repeatable path flag; each value may also hold a
// comma-separated list.
type pathList []string

func (p *pathList) String() string { return strings.Join(*p, ",") }

func (p *pathList) Set(v string) error {
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			*p = append(*p, part)
		}
	}
	return nil
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("bundlegrid", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
bundlegrid - orders front-end assets and packs them into the fewest aggregates.

Usage:
  bundlegrid [options] [MANIFEST_PATH...]
  bundlegrid --listen :8080 [options]

Arguments:
  MANIFEST_PATH
    A .hcl, .yaml or .yml manifest, or a directory searched recursively.

Options:
`)
		flagSet.PrintDefaults()
	}

	var manifests, libraries pathList
	flagSet.Var(&manifests, "manifest", "Path to a manifest file or directory. Repeatable.")
	flagSet.Var(&manifests, "m", "Path to a manifest file or directory (shorthand).")
	flagSet.Var(&libraries, "libraries", "Path to bundle library manifests. Repeatable.")
	outputFlag := flagSet.String("output", "text", "Plan output format. Options: 'text' or 'json'.")
	cyclesFlag := flagSet.String("cycles", "reject", "What to do with cyclic ordering declarations. Options: 'reject' or 'ignore'.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	listenFlag := flagSet.String("listen", "", "Serve plans, health and metrics over HTTP on this address instead of printing one plan.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	manifests = append(manifests, flagSet.Args()...)
	slog.Debug("Manifest paths determined.", "paths", []string(manifests))

	if len(manifests) == 0 && *listenFlag == "" {
		slog.Debug("No manifest path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		ManifestPaths: manifests,
		LibraryPaths:  libraries,
		Output:        strings.ToLower(*outputFlag),
		Cycles:        strings.ToLower(*cyclesFlag),
		LogFormat:     logFormat,
		LogLevel:      logLevel,
		Listen:        *listenFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
