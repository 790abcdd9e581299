package app

import (
	"errors"
	"strings"

	"github.com/ppcbuildtools/asmcc/internal/hostenv"
	"github.com/ppcbuildtools/asmcc/internal/target"
	"github.com/ppcbuildtools/asmcc/internal/toolchain"
	"github.com/xyproto/env/v2"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	Source     string   // the translation unit to build
	ConfigPath string   // optional HCL profile file
	Profile    string   // toolchain profile name, empty means the file's default
	CFlags     []string // optional pass-through flag set for rewrite and compile

	DevkitPPC string // devkitPPC root, exposed to profile files
	Emulator  string // emulation-layer command for non-WSL hosts

	LogFormat   string
	LogLevel    string
	ReleasePath string // kernel release probe, overridable in tests
}

// NewConfig validates cfg and fills the unset fields, first from the
// environment and then from the stock defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.Source == "" {
		return nil, errors.New("Source is a required configuration field and cannot be empty")
	}
	if _, err := target.Derive(cfg.Source); err != nil {
		return nil, err
	}

	if cfg.ConfigPath == "" {
		cfg.ConfigPath = env.Str("ASMCC_CONFIG")
	}
	if cfg.Profile == "" {
		cfg.Profile = env.Str("ASMCC_PROFILE")
	}
	if len(cfg.CFlags) == 0 {
		cfg.CFlags = strings.Fields(env.Str("ASMCC_CFLAGS"))
	}
	if cfg.DevkitPPC == "" {
		cfg.DevkitPPC = env.Str("DEVKITPPC")
	}
	if cfg.Emulator == "" {
		cfg.Emulator = env.Str("WINE", toolchain.DefaultEmulator)
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = strings.ToLower(env.Str("ASMCC_LOG_LEVEL", "warn"))
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = strings.ToLower(env.Str("ASMCC_LOG_FORMAT", "text"))
	}
	if cfg.ReleasePath == "" {
		cfg.ReleasePath = hostenv.DefaultReleasePath
	}

	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, errors.New("invalid log-format: must be 'text' or 'json'")
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, errors.New("invalid log-level: must be 'debug', 'info', 'warn', or 'error'")
	}

	return &cfg, nil
}
