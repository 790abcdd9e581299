package hcl

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/ppcbuildtools/asmcc/internal/ctxlog"
	"github.com/ppcbuildtools/asmcc/internal/schema"
	"github.com/ppcbuildtools/asmcc/internal/toolchain"
	"github.com/zclconf/go-cty/cty"
)

// Loader parses profile files into toolchain profiles.
type Loader struct {
	parser *hclparse.Parser
}

// NewLoader creates a new profile file loader.
func NewLoader() *Loader {
	return &Loader{parser: hclparse.NewParser()}
}

// File is the evaluated content of one profile file.
type File struct {
	DefaultProfile string
	Tool           string
	Profiles       map[string]toolchain.Profile
}

// Load parses and evaluates a single profile file. The evaluation context
// exposes a `devkitppc` string variable so profiles can locate the native
// assembler with "${devkitppc}/bin/...". The emulator argument is the
// fallback for profiles that set none.
func (l *Loader) Load(ctx context.Context, path, devkitPPC, emulator string) (*File, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading profile file.", "path", path)

	hclFile, diags := l.parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"devkitppc": cty.StringVal(strings.TrimSuffix(devkitPPC, "/")),
		},
	}

	var cfg schema.Config
	if diags := gohcl.DecodeBody(hclFile.Body, evalCtx, &cfg); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", path, diags)
	}

	if len(cfg.Profiles) == 0 {
		return nil, fmt.Errorf("profile file %s defines no profiles", path)
	}

	file := &File{
		DefaultProfile: cfg.DefaultProfile,
		Tool:           cfg.Tool,
		Profiles:       make(map[string]toolchain.Profile, len(cfg.Profiles)),
	}
	for _, p := range cfg.Profiles {
		if _, dup := file.Profiles[p.Name]; dup {
			return nil, fmt.Errorf("duplicate profile %q in %s", p.Name, path)
		}
		prof := translateProfile(p, emulator)
		if err := prof.Validate(); err != nil {
			return nil, fmt.Errorf("invalid profile in %s: %w", path, err)
		}
		file.Profiles[p.Name] = prof
	}

	logger.Debug("Profile file loaded.", "path", path, "profiles", len(file.Profiles), "default", file.DefaultProfile)
	return file, nil
}

// translateProfile converts the HCL shape into the runtime profile,
// splitting flag strings on whitespace and filling stock defaults for the
// optional attributes.
func translateProfile(p *schema.Profile, emulator string) toolchain.Profile {
	out := toolchain.Profile{
		Name:      p.Name,
		Compiler:  p.Compiler,
		CFlags:    strings.Fields(p.CFlags),
		Assembler: p.Assembler,
		ASFlags:   strings.Fields(p.ASFlags),
		Wrapper:   p.Wrapper,
		Prelude:   p.Prelude,
		Emulator:  p.Emulator,
	}
	if out.Wrapper == "" {
		out.Wrapper = toolchain.DefaultWrapper
	}
	if out.Prelude == "" {
		out.Prelude = toolchain.DefaultPrelude
	}
	if out.Emulator == "" {
		out.Emulator = emulator
	}
	if out.Emulator == "" {
		out.Emulator = toolchain.DefaultEmulator
	}
	return out
}
