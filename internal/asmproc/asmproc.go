// Package asmproc wraps the external rewriting/patching tool that makes
// embedded assembly survive the vendor compiler. The tool's internals are
// opaque here; this package only speaks its command-line and stream
// contract.
package asmproc

import (
	"context"
	"errors"
	"io"
	"os/exec"

	"github.com/ppcbuildtools/asmcc/internal/ctxlog"
)

// DefaultToolPath matches the historical repo layout, where the processor
// script sits beside the vendor compiler.
const DefaultToolPath = "./asm_processor.py"

// Tool is the rewriting/patching collaborator invoked around the compiler.
// The production implementation runs the real executable; tests substitute
// fakes to exercise pipeline sequencing without it.
type Tool interface {
	// Preprocess runs the rewrite pass over the source file, streaming the
	// modified source to out and diagnostics to the tool's own standard
	// error. The flag set, when present, leads the argument list. It
	// returns the pass's exit status once the stream is fully written.
	Preprocess(ctx context.Context, source string, flagSet []string, out io.Writer) (int, error)

	// PostProcess runs the patch pass, mutating the object file in place
	// using the given assembler command line and prelude file.
	PostProcess(ctx context.Context, source, object, assembler, prelude string) (int, error)
}

// ExecTool is the production Tool: it invokes the collaborator executable
// through the operating system. Diagnostics pass through the configured
// writers untranslated.
type ExecTool struct {
	Path   string
	Stdout io.Writer // patch-pass chatter
	Stderr io.Writer // diagnostics from both passes
}

// NewExecTool returns an ExecTool for the executable at path.
func NewExecTool(path string, stdout, stderr io.Writer) *ExecTool {
	return &ExecTool{Path: path, Stdout: stdout, Stderr: stderr}
}

// Preprocess implements Tool. Invocation shape: `tool [flag-set...] source`.
func (t *ExecTool) Preprocess(ctx context.Context, source string, flagSet []string, out io.Writer) (int, error) {
	args := make([]string, 0, len(flagSet)+1)
	args = append(args, flagSet...)
	args = append(args, source)

	cmd := exec.Command(t.Path, args...)
	cmd.Stdout = out
	cmd.Stderr = t.Stderr

	ctxlog.FromContext(ctx).Debug("Running rewrite pass.", "argv", cmd.Args)
	return run(cmd)
}

// PostProcess implements Tool. Invocation shape:
// `tool source --post-process object --assembler "<as> <flags>" --asm-prelude prelude`.
func (t *ExecTool) PostProcess(ctx context.Context, source, object, assembler, prelude string) (int, error) {
	cmd := exec.Command(t.Path, source,
		"--post-process", object,
		"--assembler", assembler,
		"--asm-prelude", prelude,
	)
	cmd.Stdout = t.Stdout
	cmd.Stderr = t.Stderr

	ctxlog.FromContext(ctx).Debug("Running patch pass.", "argv", cmd.Args)
	return run(cmd)
}

// run folds a command's outcome into (status, error): any exit, including a
// signal death reported as -1, is a status; a command that never launched is
// an error.
func run(cmd *exec.Cmd) (int, error) {
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return 0, err
	}
	return 0, nil
}
