package pipeline_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ppcbuildtools/asmcc/internal/asmproc"
	"github.com/ppcbuildtools/asmcc/internal/hostenv"
	"github.com/ppcbuildtools/asmcc/internal/pipeline"
	"github.com/ppcbuildtools/asmcc/internal/report"
	"github.com/ppcbuildtools/asmcc/internal/target"
	"github.com/ppcbuildtools/asmcc/internal/testutil"
	"github.com/ppcbuildtools/asmcc/internal/toolchain"
	"github.com/stretchr/testify/require"
)

// newOrchestrator builds an Orchestrator over fake executables, with all
// pass-through output discarded unless the test captures it.
func newOrchestrator(toolPath, compilerPath string, flagSet []string, statusW, diagW io.Writer) *pipeline.Orchestrator {
	return &pipeline.Orchestrator{
		Tool: asmproc.NewExecTool(toolPath, io.Discard, diagW),
		Builder: &toolchain.Builder{
			Profile: toolchain.Profile{
				Name:      "test",
				Compiler:  compilerPath,
				CFlags:    []string{"-Cpp_exceptions", "off", "-proc", "gekko", "-fp", "hard", "-O4"},
				Assembler: "powerpc-eabi-as.exe",
				ASFlags:   []string{"-mgekko", "-mregnames"},
				Wrapper:   "include-stdin.c",
				Prelude:   "prelude.s",
				Emulator:  "wine",
			},
			Env: hostenv.Native,
		},
		FlagSet:  flagSet,
		Stdout:   io.Discard,
		Stderr:   diagW,
		Reporter: &report.Reporter{W: statusW},
	}
}

// writeSource writes a source file and derives its target.
func writeSource(t *testing.T, dir, name, content string) target.Target {
	t.Helper()
	src := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(src, []byte(content), 0o644))
	tgt, err := target.Derive(src)
	require.NoError(t, err)
	return tgt
}

func TestRun_HappyPathProducesAPatchedObject(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := t.TempDir()
	logPath := filepath.Join(dir, "invocations.log")
	tool := testutil.FakeProcessor(t, dir, logPath)
	compiler := testutil.FakeCompiler(t, dir, logPath)
	tgt := writeSource(t, dir, "foo.c", "int x;\n")
	var status bytes.Buffer
	orch := newOrchestrator(tool, compiler, nil, &status, io.Discard)

	// --- Act ---
	err := orch.Run(context.Background(), tgt)

	// --- Assert ---
	require.NoError(t, err)

	// The object carries the rewritten stream plus the patch marker.
	object, readErr := os.ReadFile(tgt.Object)
	require.NoError(t, readErr)
	require.Equal(t, "int x;\n/* rewritten */\nPATCH", string(object))

	// Rewrite and compile overlap as one unit; the patch pass runs strictly
	// after both, so it must be the final invocation.
	lines := testutil.Invocations(t, logPath)
	require.Len(t, lines, 3)
	require.Contains(t, lines[2], "--post-process")
	require.Contains(t, lines[2], tgt.Object)

	out := status.String()
	require.Contains(t, out, pipeline.StageRewrite)
	require.Contains(t, out, pipeline.StageCompile)
	require.Contains(t, out, pipeline.StagePatch)
	require.Contains(t, out, "Done")
}

func TestRun_RewriteFailureWinsOverACleanCompile(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// The failing tool emits nothing, so the compiler sees an empty stream
	// and exits zero. The pipeline must still fail with the rewrite status.
	dir := t.TempDir()
	logPath := filepath.Join(dir, "invocations.log")
	tool := testutil.FailingProcessor(t, dir, logPath, 7)
	compiler := testutil.FakeCompiler(t, dir, logPath)
	tgt := writeSource(t, dir, "foo.c", "int x;\n")
	orch := newOrchestrator(tool, compiler, nil, io.Discard, io.Discard)

	// --- Act ---
	err := orch.Run(context.Background(), tgt)

	// --- Assert ---
	var stageErr *pipeline.StageError
	require.ErrorAs(t, err, &stageErr)
	require.Equal(t, pipeline.StageRewrite, stageErr.Stage)
	require.Equal(t, 7, stageErr.Status)

	// The patch pass must never have been invoked.
	for _, line := range testutil.Invocations(t, logPath) {
		require.NotContains(t, line, "--post-process")
	}
}

func TestRun_CompileFailureStopsThePipelineBeforePatch(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := t.TempDir()
	logPath := filepath.Join(dir, "invocations.log")
	tool := testutil.FakeProcessor(t, dir, logPath)
	compiler := testutil.FailingCompiler(t, dir, logPath, 2)
	tgt := writeSource(t, dir, "bad.c", "int broken(\n")
	orch := newOrchestrator(tool, compiler, nil, io.Discard, io.Discard)

	// --- Act ---
	err := orch.Run(context.Background(), tgt)

	// --- Assert ---
	var stageErr *pipeline.StageError
	require.ErrorAs(t, err, &stageErr)
	require.Equal(t, pipeline.StageCompile, stageErr.Stage)
	require.Equal(t, 2, stageErr.Status)

	// No patch invocation, and stage three never touched the object path.
	for _, line := range testutil.Invocations(t, logPath) {
		require.NotContains(t, line, "--post-process")
	}
	_, statErr := os.Stat(tgt.Object)
	require.True(t, os.IsNotExist(statErr), "no object should exist after a compile failure")
}

func TestRun_MissingObjectAfterCleanCompileIsACompileFailure(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := t.TempDir()
	logPath := filepath.Join(dir, "invocations.log")
	tool := testutil.FakeProcessor(t, dir, logPath)
	compiler := testutil.NoOutputCompiler(t, dir, logPath)
	tgt := writeSource(t, dir, "foo.c", "int x;\n")
	orch := newOrchestrator(tool, compiler, nil, io.Discard, io.Discard)

	// --- Act ---
	err := orch.Run(context.Background(), tgt)

	// --- Assert ---
	var stageErr *pipeline.StageError
	require.ErrorAs(t, err, &stageErr)
	require.Equal(t, pipeline.StageCompile, stageErr.Stage)
	require.ErrorContains(t, err, "produced no object")
}

func TestRun_PatchFailurePropagatesItsStatus(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := t.TempDir()
	logPath := filepath.Join(dir, "invocations.log")
	tool := testutil.WriteScript(t, dir, "asm-processor", `echo "proc $*" >> "`+logPath+`"
if [ "$2" = "--post-process" ]; then
	exit 9
fi
for a; do src=$a; done
cat "$src"
`)
	compiler := testutil.FakeCompiler(t, dir, logPath)
	tgt := writeSource(t, dir, "foo.c", "int x;\n")
	orch := newOrchestrator(tool, compiler, nil, io.Discard, io.Discard)

	// --- Act ---
	err := orch.Run(context.Background(), tgt)

	// --- Assert ---
	var stageErr *pipeline.StageError
	require.ErrorAs(t, err, &stageErr)
	require.Equal(t, pipeline.StagePatch, stageErr.Stage)
	require.Equal(t, 9, stageErr.Status)

	// The compiled object survives in its pre-patch state.
	object, readErr := os.ReadFile(tgt.Object)
	require.NoError(t, readErr)
	require.Equal(t, "int x;\n", string(object))
}

func TestRun_CompilerThatCannotStartIsACompileFailure(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := t.TempDir()
	logPath := filepath.Join(dir, "invocations.log")
	tool := testutil.FakeProcessor(t, dir, logPath)
	tgt := writeSource(t, dir, "foo.c", "int x;\n")
	orch := newOrchestrator(tool, filepath.Join(dir, "no-such-compiler"), nil, io.Discard, io.Discard)

	// --- Act ---
	err := orch.Run(context.Background(), tgt)

	// --- Assert ---
	var stageErr *pipeline.StageError
	require.ErrorAs(t, err, &stageErr)
	require.Equal(t, pipeline.StageCompile, stageErr.Stage)
	require.Equal(t, 1, stageErr.Status)
	require.ErrorContains(t, err, "starting compiler")
}

func TestRun_FlagSetReachesRewriteAndCompileButNeverPatch(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := t.TempDir()
	logPath := filepath.Join(dir, "invocations.log")
	tool := testutil.FakeProcessor(t, dir, logPath)
	compiler := testutil.FakeCompiler(t, dir, logPath)
	tgt := writeSource(t, dir, "foo.c", "int x;\n")
	orch := newOrchestrator(tool, compiler, []string{"-O2"}, io.Discard, io.Discard)

	// --- Act ---
	err := orch.Run(context.Background(), tgt)

	// --- Assert ---
	require.NoError(t, err)
	lines := testutil.Invocations(t, logPath)
	require.Len(t, lines, 3)
	for _, line := range lines {
		switch {
		case strings.Contains(line, "--post-process"):
			require.NotContains(t, line, "-O2", "the patch pass must not receive the flag set")
		default:
			require.Contains(t, line, "-O2")
		}
	}
}

func TestRun_DiagnosticsPassThroughUntranslated(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := t.TempDir()
	logPath := filepath.Join(dir, "invocations.log")
	tool := testutil.WriteScript(t, dir, "asm-processor", `echo "proc $*" >> "`+logPath+`"
if [ "$2" = "--post-process" ]; then
	exit 0
fi
echo "GLOBAL_ASM block at line 12" >&2
for a; do src=$a; done
cat "$src"
`)
	compiler := testutil.WriteScript(t, dir, "mwcceppc", `echo "cc $*" >> "`+logPath+`"
echo "mwcceppc: note 1234" >&2
out=""
prev=""
for a; do
	if [ "$prev" = "-o" ]; then out=$a; fi
	prev=$a
done
cat > "$out"
`)
	tgt := writeSource(t, dir, "foo.c", "int x;\n")
	// The rewrite pass and the compiler emit diagnostics concurrently.
	diag := &testutil.SafeBuffer{}
	orch := newOrchestrator(tool, compiler, nil, io.Discard, diag)

	// --- Act ---
	err := orch.Run(context.Background(), tgt)

	// --- Assert ---
	require.NoError(t, err)
	require.Contains(t, diag.String(), "GLOBAL_ASM block at line 12")
	require.Contains(t, diag.String(), "mwcceppc: note 1234")
}

// copyTool is the in-process fake from the sequencing notes: it streams the
// source unchanged and leaves the object alone while patching.
type copyTool struct{}

func (copyTool) Preprocess(_ context.Context, source string, _ []string, out io.Writer) (int, error) {
	f, err := os.Open(source)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	if _, err := io.Copy(out, f); err != nil {
		return 0, err
	}
	return 0, nil
}

func (copyTool) PostProcess(context.Context, string, string, string, string) (int, error) {
	return 0, nil
}

func TestRun_RepeatedRunsProduceIdenticalObjects(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := t.TempDir()
	logPath := filepath.Join(dir, "invocations.log")
	compiler := testutil.FakeCompiler(t, dir, logPath)
	tgt := writeSource(t, dir, "foo.c", "int x;\nint y;\n")
	orch := newOrchestrator("", compiler, nil, io.Discard, io.Discard)
	orch.Tool = copyTool{}

	// --- Act ---
	require.NoError(t, orch.Run(context.Background(), tgt))
	first, err := os.ReadFile(tgt.Object)
	require.NoError(t, err)

	require.NoError(t, orch.Run(context.Background(), tgt))
	second, err := os.ReadFile(tgt.Object)
	require.NoError(t, err)

	// --- Assert ---
	require.Equal(t, first, second, "an unchanged input must rebuild to identical bytes")
}
