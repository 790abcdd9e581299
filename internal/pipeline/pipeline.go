// Package pipeline sequences the rewrite, compile and patch stages over a
// single build target. Stages run strictly in order and share exactly one
// mutable artifact, the object file; the first failing stage aborts the run
// and its exit status becomes the pipeline's.
package pipeline

import (
	"context"
	"fmt"
	"io"

	"github.com/ppcbuildtools/asmcc/internal/asmproc"
	"github.com/ppcbuildtools/asmcc/internal/ctxlog"
	"github.com/ppcbuildtools/asmcc/internal/report"
	"github.com/ppcbuildtools/asmcc/internal/target"
	"github.com/ppcbuildtools/asmcc/internal/toolchain"
)

// Stage names as they appear in errors and logs.
const (
	StageRewrite = "rewrite"
	StageCompile = "compile"
	StagePatch   = "patch"
)

// State is the pipeline's progress marker. It only ever advances.
type State int

const (
	StateInit State = iota
	StateRewritten
	StateCompiled
	StatePatched
)

// String implements fmt.Stringer for log output.
func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateRewritten:
		return "rewritten"
	case StateCompiled:
		return "compiled"
	case StatePatched:
		return "patched"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// StageError reports which stage failed and the exit status the process
// should propagate.
type StageError struct {
	Stage  string
	Status int
	Err    error
}

// Error implements the error interface.
func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

// Unwrap exposes the underlying cause.
func (e *StageError) Unwrap() error { return e.Err }

// newStageError normalizes statuses that cannot serve as a process exit
// code (signal deaths report -1, launch failures 0) down to 1.
func newStageError(stage string, status int, err error) *StageError {
	if status < 1 || status > 255 {
		status = 1
	}
	return &StageError{Stage: stage, Status: status, Err: err}
}

// Orchestrator owns the three-stage control flow for one build target. The
// rewrite and compile processes overlap only through the pipe connecting
// them and count as one unit with one combined outcome; the patch stage
// starts only after that unit has fully succeeded.
type Orchestrator struct {
	Tool     asmproc.Tool
	Builder  *toolchain.Builder
	FlagSet  []string  // optional pass-through flags; empty is fine
	Stdout   io.Writer // compiler chatter passes through here
	Stderr   io.Writer // diagnostics pass through here, untranslated
	Reporter *report.Reporter
}

// Run drives init → rewritten → compiled → patched for the target. No stage
// is cancellable and none has a timeout; the context only carries the
// logger.
func (o *Orchestrator) Run(ctx context.Context, tgt target.Target) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Pipeline starting.", "source", tgt.Source, "object", tgt.Object, "state", StateInit)

	if err := o.rewriteAndCompile(ctx, tgt); err != nil {
		o.Reporter.Failed(err)
		return err
	}
	if err := o.patch(ctx, tgt); err != nil {
		o.Reporter.Failed(err)
		return err
	}

	logger.Debug("Pipeline finished.", "object", tgt.Object, "state", StatePatched)
	o.Reporter.Done(tgt.Object)
	return nil
}
