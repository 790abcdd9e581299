package toolchain

import (
	"strings"

	"github.com/ppcbuildtools/asmcc/internal/hostenv"
)

// Builder renders command lines for one profile under a resolved execution
// environment. Rendering is pure and deterministic: the builder never probes
// the host beyond what the resolver already decided.
type Builder struct {
	Profile Profile
	Env     hostenv.Kind
}

// CompileCommand returns the argv that compiles the wrapper unit to the
// given object path. The wrapper pulls the rewritten source from standard
// input, so the caller must wire stage one's output stream to the process.
// Extra flags are appended verbatim after the profile's fixed flags; an
// empty set is valid and adds nothing.
func (b *Builder) CompileCommand(object string, extraFlags []string) []string {
	argv := b.prefix()
	argv = append(argv, b.Profile.Compiler)
	argv = append(argv, b.Profile.CFlags...)
	argv = append(argv, extraFlags...)
	argv = append(argv, "-c", b.Profile.Wrapper, "-o", object)
	return argv
}

// AssemblerCommand returns the assembler invocation as one space-joined
// string, the form the patch tool's --assembler flag expects. The pipeline
// never runs this command itself.
func (b *Builder) AssemblerCommand() string {
	argv := b.prefix()
	argv = append(argv, b.Profile.Assembler)
	argv = append(argv, b.Profile.ASFlags...)
	return strings.Join(argv, " ")
}

// prefix returns the emulator wrapper for Emulated environments. Every
// vendor binary invocation gets the same prefix; Native environments get
// none.
func (b *Builder) prefix() []string {
	if b.Env == hostenv.Emulated {
		return []string{b.Profile.Emulator}
	}
	return nil
}
