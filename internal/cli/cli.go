package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/ppcbuildtools/asmcc/internal/app"
)

// Version is the tool version reported by --version.
const Version = "0.4.1"

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
	flagSet := flag.NewFlagSet("asmcc", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
asmcc - Compiles one C translation unit with spliced assembly into a
GameCube relocatable object.

Usage:
  asmcc [options] SOURCE_FILE

Arguments:
  SOURCE_FILE
    Path to a single .c or .cpp source file. The object is written next to
    it with the extension replaced by .o.

Options:
`)
		flagSet.PrintDefaults()
		fmt.Fprint(output, `
Environment:
  ASMCC_CONFIG      Profile file path when --config is not given.
  ASMCC_PROFILE     Profile name when --profile is not given.
  ASMCC_CFLAGS      Extra whitespace-separated flags for the rewrite and
                    compile stages.
  ASMCC_LOG_LEVEL   Log level when --log-level is not given. Default: warn.
  ASMCC_LOG_FORMAT  Log format when --log-format is not given. Default: text.
  DEVKITPPC         devkitPPC installation root, exposed to profile files as
                    the devkitppc variable.
  WINE              Emulation-layer command for non-WSL hosts. Default: wine.
`)
	}

	configFlag := flagSet.String("config", "", "Path to an HCL profile file. Built-in profiles are used when empty.")
	profileFlag := flagSet.String("profile", "", "Name of the toolchain profile to build with.")
	pFlag := flagSet.String("p", "", "Name of the toolchain profile to build with (shorthand).")
	logFormatFlag := flagSet.String("log-format", "", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	versionFlag := flagSet.Bool("version", false, "Print the version and exit.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	if *versionFlag {
		fmt.Fprintln(output, "asmcc "+Version)
		return nil, true, nil
	}

	if flagSet.NArg() == 0 {
		slog.Debug("No source file provided, printing usage.")
		flagSet.Usage()
		return nil, false, &ExitError{Code: 2, Message: "missing required argument: SOURCE_FILE"}
	}
	if flagSet.NArg() > 1 {
		return nil, false, &ExitError{
			Code:    2,
			Message: "unexpected extra arguments: " + strings.Join(flagSet.Args()[1:], " "),
		}
	}
	source := flagSet.Arg(0)
	slog.Debug("Source file determined.", "source", source)

	profile := *profileFlag
	if profile == "" {
		profile = *pFlag
	}

	config, err := app.NewConfig(app.Config{
		Source:     source,
		ConfigPath: *configFlag,
		Profile:    profile,
		LogFormat:  strings.ToLower(*logFormatFlag),
		LogLevel:   strings.ToLower(*logLevelFlag),
	})

	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
