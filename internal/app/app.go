package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/ppcbuildtools/asmcc/internal/asmproc"
	"github.com/ppcbuildtools/asmcc/internal/ctxlog"
	"github.com/ppcbuildtools/asmcc/internal/hcl"
	"github.com/ppcbuildtools/asmcc/internal/toolchain"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	errW   io.Writer
	logger *slog.Logger
	config *Config

	profiles       map[string]toolchain.Profile
	defaultProfile string
	toolPath       string
	tool           asmproc.Tool
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and the
// evaluated profile set. A nil tool selects the real rewrite/patch
// executable at run time; tests inject fakes through it.
func NewApp(outW, errW io.Writer, cfg *Config, tool asmproc.Tool) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	profiles := toolchain.Defaults(cfg.DevkitPPC, cfg.Emulator)
	defaultProfile := toolchain.DefaultProfileName
	toolPath := asmproc.DefaultToolPath

	// A profile file replaces the built-in set entirely.
	if cfg.ConfigPath != "" {
		file, err := hcl.NewLoader().Load(ctx, cfg.ConfigPath, cfg.DevkitPPC, cfg.Emulator)
		if err != nil {
			// A failure to load the profile file is a fatal startup error.
			panic(fmt.Errorf("failed to load configuration: %w", err))
		}
		profiles = file.Profiles
		if file.DefaultProfile != "" {
			defaultProfile = file.DefaultProfile
		}
		if file.Tool != "" {
			toolPath = file.Tool
		}
		logger.Debug("Profile file loaded.", "path", cfg.ConfigPath, "profiles", len(profiles))
	}

	return &App{
		outW:           outW,
		errW:           errW,
		logger:         logger,
		config:         cfg,
		profiles:       profiles,
		defaultProfile: defaultProfile,
		toolPath:       toolPath,
		tool:           tool,
	}
}

// Profiles returns the evaluated profile set. This is primarily for testing.
func (a *App) Profiles() map[string]toolchain.Profile {
	return a.profiles
}
