// Package cli parses command-line arguments into an app.Config.
package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/keebforge/keycore/internal/app"
)

// ExitError carries a specific process exit code alongside its message.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments on top of environment defaults. It
// returns the resulting config, a boolean indicating a clean early exit
// (help requested or no config path given), or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	cfg, err := app.ConfigFromEnv()
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	flagSet := flag.NewFlagSet("keycored", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
keycored - programmable-keyboard configuration daemon.

Usage:
  keycored [options] [CONFIG_PATH]

Arguments:
  CONFIG_PATH
    Path to an .hcl file, or a directory of them, declaring the keymap
    layers and physical layouts. May also be set via KEYCORE_CONFIG.

Options:
`)
		flagSet.PrintDefaults()
	}

	configFlag := flagSet.String("config", cfg.ConfigPath, "Path to the configuration file or directory.")
	listenFlag := flagSet.String("listen", cfg.Listen, "Address the studio endpoint binds to.")
	settingsFlag := flagSet.String("settings-db", cfg.SettingsDB, "SQLite file for persisted state. Empty uses an in-memory store.")
	schemeFlag := flagSet.String("id-scheme", cfg.IDScheme, "Behavior local-ID scheme. Options: 'crc16' or 'settings-table'.")
	fullConsumerFlag := flagSet.Bool("full-consumer-usages", cfg.FullConsumerUsages, "Validate consumer usages against the extended report range.")
	noValidateFlag := flagSet.Bool("disable-param-validation", cfg.DisableParamValidation, "Accept every binding parameter without metadata validation.")
	logFormatFlag := flagSet.String("log-format", cfg.LogFormat, "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", cfg.LogLevel, "Logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	path := *configFlag
	if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	if path == "" {
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
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	cfg.ConfigPath = path
	cfg.Listen = *listenFlag
	cfg.SettingsDB = *settingsFlag
	cfg.IDScheme = *schemeFlag
	cfg.FullConsumerUsages = *fullConsumerFlag
	cfg.DisableParamValidation = *noValidateFlag
	cfg.LogFormat = logFormat
	cfg.LogLevel = logLevel

	if err := cfg.Validate(); err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	return &cfg, false, nil
}
