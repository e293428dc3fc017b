package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/predictgen/internal/app"
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

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("predictgen", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
predictgen - compiles predictions directives into resolvers and resources.

Usage:
  predictgen [options] [SCHEMA_PATH]

Arguments:
  SCHEMA_PATH
    Path to a single .hcl file or a directory containing .hcl files.

Options:
`)
		flagSet.PrintDefaults()
	}

	schemaFlag := flagSet.String("schema", "", "Path to the schema file or directory.")
	gFlag := flagSet.String("g", "", "Path to the schema file or directory (shorthand).")
	configFlag := flagSet.String("config", "", "Path to a defaults file. Defaults to ./"+DefaultsFile+" when present.")
	envFlag := flagSet.String("env", "", "Deployment environment name. Empty means none.")
	stackFlag := flagSet.String("stack-name", "", "Stack name the storage hash is derived from.")
	bucketFlag := flagSet.String("bucket", "", "Storage bucket. Overrides the api block's storage.")
	formatFlag := flagSet.String("format", "yaml", "Output format. Options: 'yaml' or 'json'.")
	outFlag := flagSet.String("out", "", "Write the output document to this file instead of stdout.")
	evaluateFlag := flagSet.Bool("evaluate", false, "Resolve names and ARNs for -env and -stack-name.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := ""
	if *schemaFlag != "" {
		path = *schemaFlag
	} else if *gFlag != "" {
		path = *gFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	slog.Debug("Schema path determined.", "path", path)

	if path == "" {
		slog.Debug("No schema path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	defaultsPath, required := DefaultsFile, false
	if *configFlag != "" {
		defaultsPath, required = *configFlag, true
	}
	defaults, err := LoadDefaults(defaultsPath, required)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	set := make(map[string]bool)
	flagSet.Visit(func(f *flag.Flag) { set[f.Name] = true })
	pick := func(name, flagValue, fileValue string) string {
		if !set[name] && fileValue != "" {
			return fileValue
		}
		return flagValue
	}

	logFormat := strings.ToLower(pick("log-format", *logFormatFlag, defaults.LogFormat))
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(pick("log-level", *logLevelFlag, defaults.LogLevel))
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		SchemaPath: path,
		OutputPath: *outFlag,
		Format:     strings.ToLower(pick("format", *formatFlag, defaults.Format)),
		Env:        pick("env", *envFlag, defaults.Env),
		StackName:  pick("stack-name", *stackFlag, defaults.StackName),
		Bucket:     pick("bucket", *bucketFlag, defaults.Bucket),
		Evaluate:   *evaluateFlag,
		LogFormat:  logFormat,
		LogLevel:   logLevel,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
