package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/ppcbuildtools/asmcc/internal/ctxlog"
	"github.com/ppcbuildtools/asmcc/internal/target"
)

// rewriteAndCompile runs stage one and stage two as one pipe-connected
// unit: the rewrite pass streams the modified source straight into the
// compiler's standard input, never through a temporary file. The exit
// status of both sides is checked; a clean compile never hides a failed
// rewrite.
func (o *Orchestrator) rewriteAndCompile(ctx context.Context, tgt target.Target) error {
	logger := ctxlog.FromContext(ctx)

	pr, pw, err := os.Pipe()
	if err != nil {
		return newStageError(StageRewrite, 1, fmt.Errorf("creating pipe: %w", err))
	}

	argv := o.Builder.CompileCommand(tgt.Object, o.FlagSet)
	compile := exec.Command(argv[0], argv[1:]...)
	compile.Stdin = pr
	compile.Stdout = o.Stdout
	compile.Stderr = o.Stderr

	o.Reporter.Stage(StageRewrite, tgt.Source)
	logger.Debug("Starting compiler.", "argv", argv)
	if err := compile.Start(); err != nil {
		pr.Close()
		pw.Close()
		return newStageError(StageCompile, 1, fmt.Errorf("starting compiler: %w", err))
	}
	// The compiler holds its own copy of the read end now. Dropping ours
	// makes a dead compiler surface as a broken pipe to the rewrite pass
	// instead of letting it write into an orphaned buffer.
	pr.Close()

	rewriteStatus, rewriteErr := o.Tool.Preprocess(ctx, tgt.Source, o.FlagSet, pw)
	pw.Close()

	o.Reporter.Stage(StageCompile, tgt.Object)
	compileErr := compile.Wait()

	// The rewrite pass is upstream: its failure wins even when the compiler
	// exits cleanly on whatever truncated stream it received.
	if rewriteErr != nil {
		return newStageError(StageRewrite, 1, fmt.Errorf("running rewrite pass: %w", rewriteErr))
	}
	if rewriteStatus != 0 {
		return newStageError(StageRewrite, rewriteStatus, fmt.Errorf("rewrite pass exited with status %d", rewriteStatus))
	}
	logger.Debug("Source rewritten.", "source", tgt.Source, "state", StateRewritten)

	if compileErr != nil {
		var exitErr *exec.ExitError
		if errors.As(compileErr, &exitErr) {
			return newStageError(StageCompile, exitErr.ExitCode(), compileErr)
		}
		return newStageError(StageCompile, 1, compileErr)
	}
	if err := checkObject(tgt.Object); err != nil {
		return newStageError(StageCompile, 1, err)
	}
	logger.Debug("Object compiled.", "object", tgt.Object, "state", StateCompiled)
	return nil
}

// patch runs stage three: the post-process pass mutates the compiled object
// in place, splicing in the separately assembled regions. The assembler is
// handed over as a command-line string; the pipeline never runs it itself.
func (o *Orchestrator) patch(ctx context.Context, tgt target.Target) error {
	logger := ctxlog.FromContext(ctx)
	o.Reporter.Stage(StagePatch, tgt.Object)

	assembler := o.Builder.AssemblerCommand()
	logger.Debug("Starting patch pass.", "object", tgt.Object, "assembler", assembler)

	status, err := o.Tool.PostProcess(ctx, tgt.Source, tgt.Object, assembler, o.Builder.Profile.Prelude)
	if err != nil {
		return newStageError(StagePatch, 1, fmt.Errorf("running patch pass: %w", err))
	}
	if status != 0 {
		return newStageError(StagePatch, status, fmt.Errorf("patch pass exited with status %d", status))
	}
	logger.Debug("Object patched.", "object", tgt.Object, "state", StatePatched)
	return nil
}

// checkObject verifies the artifact stage two claims to have produced
// actually exists and is non-empty before ownership passes to the patch
// stage.
func checkObject(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("compiler reported success but produced no object: %w", err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("compiler produced an empty object at %s", path)
	}
	return nil
}
