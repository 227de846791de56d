package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/restobridge/internal/app"
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

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("restobridge", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
restobridge - Local runner and UI bridge for the old-photo restoration pipeline.

Usage:
  restobridge [options] [INPUT_PATH]

Arguments:
  INPUT_PATH
    An image file or a folder of images to restore (one-shot mode).

Options:
`)
		flagSet.PrintDefaults()
	}

	inputFlag := flagSet.String("input", "", "Image file or folder to restore (one-shot mode).")
	iFlag := flagSet.String("i", "", "Image file or folder to restore (shorthand).")
	serveFlag := flagSet.Bool("serve", false, "Run the socket.io bridge server for the UI.")
	portFlag := flagSet.Int("port", 0, "Bridge server port. 0 keeps the configured value.")
	settingsFlag := flagSet.String("config", "", "Path to the restobridge.hcl settings file.")
	rootFlag := flagSet.String("root", "", "Pipeline project root containing the entry script.")
	pythonFlag := flagSet.String("python", "", "Python interpreter used to launch the worker.")
	outputFlag := flagSet.String("output", "", "Output folder; relative paths resolve against the root.")
	gpuFlag := flagSet.String("gpu", "", "GPU selector passed to the worker, e.g. -1 for CPU.")
	scratchFlag := flagSet.Bool("with-scratch", true, "Enable scratch removal in the worker.")
	hrFlag := flagSet.Bool("hr", false, "Enable the high-resolution variant.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	input := ""
	if *inputFlag != "" {
		input = *inputFlag
	} else if *iFlag != "" {
		input = *iFlag
	} else if flagSet.NArg() > 0 {
		input = flagSet.Arg(0)
	}
	slog.Debug("Input path determined.", "path", input)

	if input == "" && !*serveFlag {
		slog.Debug("No input path or mode provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if !app.ValidLogFormat(logFormat) {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	if !app.ValidLogLevel(logLevel) {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	// Only flags the user actually set become overrides; everything else
	// defers to the settings file.
	provided := map[string]bool{}
	flagSet.Visit(func(f *flag.Flag) { provided[f.Name] = true })

	cfg := app.Config{
		SettingsPath: *settingsFlag,
		LogFormat:    logFormat,
		LogLevel:     logLevel,
		Serve:        *serveFlag,
		InputPath:    input,
	}
	if provided["port"] {
		cfg.Port = portFlag
	}
	if provided["root"] {
		cfg.Root = rootFlag
	}
	if provided["python"] {
		cfg.Python = pythonFlag
	}
	if provided["output"] {
		cfg.OutputFolder = outputFlag
	}
	if provided["gpu"] {
		cfg.GPU = gpuFlag
	}
	if provided["with-scratch"] {
		cfg.WithScratch = scratchFlag
	}
	if provided["hr"] {
		cfg.HR = hrFlag
	}

	config, err := app.NewConfig(cfg)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.")
	return config, false, nil
}
