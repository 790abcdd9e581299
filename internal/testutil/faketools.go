package testutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// WriteScript writes an executable /bin/sh script into dir and returns its
// path.
func WriteScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

// FakeProcessor writes a stand-in for the rewrite/patch tool. In preprocess
// mode it streams the source file with a marker line appended; in
// post-process mode it appends a patch marker to the object file. Every
// invocation logs one line to logPath.
func FakeProcessor(t *testing.T, dir, logPath string) string {
	t.Helper()
	return WriteScript(t, dir, "asm-processor", `echo "proc $*" >> "`+logPath+`"
if [ "$2" = "--post-process" ]; then
	printf 'PATCH' >> "$3"
	exit 0
fi
for a; do src=$a; done
cat "$src"
printf '/* rewritten */\n'
`)
}

// FailingProcessor writes a tool whose preprocess pass emits nothing and
// fails with status. Post-process invocations still log and succeed, so a
// test can detect them running when they must not.
func FailingProcessor(t *testing.T, dir, logPath string, status int) string {
	t.Helper()
	return WriteScript(t, dir, "asm-processor", fmt.Sprintf(`echo "proc $*" >> "%s"
if [ "$2" = "--post-process" ]; then
	exit 0
fi
exit %d
`, logPath, status))
}

// FakeCompiler writes a stand-in vendor compiler: it scans its arguments
// for -o, drains standard input into that path, and exits zero. The result
// is deterministic, which the idempotence tests rely on.
func FakeCompiler(t *testing.T, dir, logPath string) string {
	t.Helper()
	return WriteScript(t, dir, "mwcceppc", `echo "cc $*" >> "`+logPath+`"
out=""
prev=""
for a; do
	if [ "$prev" = "-o" ]; then out=$a; fi
	prev=$a
done
cat > "$out"
`)
}

// FailingCompiler writes a compiler that drains its input and fails with
// status, the way the real one does on a C-level error.
func FailingCompiler(t *testing.T, dir, logPath string, status int) string {
	t.Helper()
	return WriteScript(t, dir, "mwcceppc", fmt.Sprintf(`echo "cc $*" >> "%s"
cat > /dev/null
exit %d
`, logPath, status))
}

// NoOutputCompiler writes a compiler that drains input, produces no object
// and still exits zero, to exercise the object existence check.
func NoOutputCompiler(t *testing.T, dir, logPath string) string {
	t.Helper()
	return WriteScript(t, dir, "mwcceppc", `echo "cc $*" >> "`+logPath+`"
cat > /dev/null
`)
}

// FakeEmulator writes an emulation-layer stand-in that logs and then runs
// its arguments as the real command.
func FakeEmulator(t *testing.T, dir, logPath string) string {
	t.Helper()
	return WriteScript(t, dir, "emu", `echo "emu $*" >> "`+logPath+`"
exec "$@"
`)
}

// Invocations returns the logged invocation lines from logPath in order,
// or nil when nothing ran.
func Invocations(t *testing.T, logPath string) []string {
	t.Helper()
	data, err := os.ReadFile(logPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	require.NoError(t, err)
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "\n")
}
