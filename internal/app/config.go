package app

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds everything an App instance needs to run. Environment
// variables provide the defaults; command-line flags override them.
type Config struct {
	// ConfigPath is an .hcl file, or a directory of them, declaring the
	// keymap layers and the physical-layout catalog.
	ConfigPath string `env:"KEYCORE_CONFIG"`

	// Listen is the address the studio endpoint binds to.
	Listen string `env:"KEYCORE_LISTEN" envDefault:"127.0.0.1:8845"`

	// SettingsDB is the SQLite file backing persisted state. Empty selects
	// the in-memory store: IDs and layout selection then last only as long
	// as the process.
	SettingsDB string `env:"KEYCORE_SETTINGS_DB"`

	// IDScheme selects the local-ID assignment scheme: "crc16" or
	// "settings-table".
	IDScheme string `env:"KEYCORE_ID_SCHEME" envDefault:"settings-table"`

	// FullConsumerUsages widens consumer-page validation to the extended
	// consumer report range.
	FullConsumerUsages bool `env:"KEYCORE_FULL_CONSUMER_USAGES"`

	// DisableParamValidation turns binding validation into a no-op,
	// matching a firmware build without the metadata capability.
	DisableParamValidation bool `env:"KEYCORE_DISABLE_PARAM_VALIDATION"`

	LogFormat string `env:"KEYCORE_LOG_FORMAT" envDefault:"text"`
	LogLevel  string `env:"KEYCORE_LOG_LEVEL" envDefault:"info"`
}

// ConfigFromEnv returns the configuration defaults with environment
// overrides applied.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// Validate checks the fields no component downstream re-checks.
func (c *Config) Validate() error {
	if c.ConfigPath == "" {
		return errors.New("a configuration path is required")
	}
	switch c.IDScheme {
	case "crc16", "settings-table":
	default:
		return fmt.Errorf("invalid id-scheme %q: must be 'crc16' or 'settings-table'", c.IDScheme)
	}
	return nil
}
