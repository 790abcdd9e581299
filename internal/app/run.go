package app

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ppcbuildtools/asmcc/internal/asmproc"
	"github.com/ppcbuildtools/asmcc/internal/ctxlog"
	"github.com/ppcbuildtools/asmcc/internal/hostenv"
	"github.com/ppcbuildtools/asmcc/internal/pipeline"
	"github.com/ppcbuildtools/asmcc/internal/report"
	"github.com/ppcbuildtools/asmcc/internal/target"
	"github.com/ppcbuildtools/asmcc/internal/toolchain"
)

// Run executes one build of the configured source file.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	tgt, err := target.Derive(a.config.Source)
	if err != nil {
		return err
	}
	a.logger.Debug("Build target derived.", "source", tgt.Source, "object", tgt.Object)

	resolver := &hostenv.Resolver{ReleasePath: a.config.ReleasePath}
	kind, err := resolver.Resolve(ctx)
	if err != nil {
		return fmt.Errorf("failed to resolve host environment: %w", err)
	}
	a.logger.Info("Host environment resolved.", "kind", kind)

	profile, err := a.selectProfile()
	if err != nil {
		return err
	}
	a.logger.Debug("Toolchain profile selected.",
		"profile", profile.Name,
		"compiler", profile.Compiler,
		"assembler", profile.Assembler,
	)

	tool := a.tool
	if tool == nil {
		tool = asmproc.NewExecTool(a.toolPath, a.outW, a.errW)
	}

	orch := &pipeline.Orchestrator{
		Tool:     tool,
		Builder:  &toolchain.Builder{Profile: profile, Env: kind},
		FlagSet:  a.config.CFlags,
		Stdout:   a.outW,
		Stderr:   a.errW,
		Reporter: &report.Reporter{W: a.outW},
	}
	if err := orch.Run(ctx, tgt); err != nil {
		return err
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

// selectProfile resolves the profile name by priority: the explicit
// flag, then the file's default, then the stock default name.
func (a *App) selectProfile() (toolchain.Profile, error) {
	name := a.config.Profile
	if name == "" {
		name = a.defaultProfile
	}
	profile, ok := a.profiles[name]
	if !ok {
		names := make([]string, 0, len(a.profiles))
		for n := range a.profiles {
			names = append(names, n)
		}
		sort.Strings(names)
		return toolchain.Profile{}, fmt.Errorf("unknown profile %q, available profiles: %s", name, strings.Join(names, ", "))
	}
	return profile, nil
}
