package testutil

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ppcbuildtools/asmcc/internal/app"
	"github.com/ppcbuildtools/asmcc/internal/target"
	"github.com/stretchr/testify/require"
)

// SafeBuffer is a thread-safe buffer for capturing output written from the
// overlapping rewrite and compile processes in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// BuildFixture describes one end-to-end build scenario over fake tools.
// The zero value is a plain Linux host building a small valid source file
// with the generated profile file's default profile.
type BuildFixture struct {
	SourceName  string // defaults to foo.c
	SourceBody  string // defaults to a small C snippet
	Release     string // kernel release served to the resolver; defaults to a plain Linux one
	OmitRelease bool   // leave the release probe unreadable
	Profile     string // profile name to select; empty uses the file's default
	CFlags      []string

	FailProcessor int  // preprocess exit status; 0 means success
	FailCompiler  int  // compiler exit status; 0 means success
	NoObject      bool // compiler exits zero without producing an object

	ExtraHCL string // appended verbatim to the generated profile file
}

// BuildResult holds the outcomes of a harness build run.
type BuildResult struct {
	Err         error
	LogOutput   string // app log, status lines and compiler chatter
	Diagnostics string // the pass-through stderr side
	Dir         string
	SourcePath  string
	ObjectPath  string
	ToolLog     []string // fake tool invocations in completion order
	App         *app.App
}

// RunBuild provides a standardized harness for running one build through
// the full App lifecycle, using a default background context.
func RunBuild(t *testing.T, fx BuildFixture) *BuildResult {
	t.Helper()
	return RunBuildWithContext(context.Background(), t, fx)
}

// RunBuildWithContext assembles a temporary workspace of fake tools, a
// profile file and a source file, then runs one build with the caller's
// context.
func RunBuildWithContext(ctx context.Context, t *testing.T, fx BuildFixture) *BuildResult {
	t.Helper()

	// 1. Create the workspace and the fake toolchain inside it.
	dir := t.TempDir()
	logPath := filepath.Join(dir, "invocations.log")

	toolPath := FakeProcessor(t, dir, logPath)
	if fx.FailProcessor > 0 {
		toolPath = FailingProcessor(t, dir, logPath, fx.FailProcessor)
	}
	compilerPath := FakeCompiler(t, dir, logPath)
	if fx.FailCompiler > 0 {
		compilerPath = FailingCompiler(t, dir, logPath, fx.FailCompiler)
	} else if fx.NoObject {
		compilerPath = NoOutputCompiler(t, dir, logPath)
	}
	emulatorPath := FakeEmulator(t, dir, logPath)

	// 2. Write the kernel release fixture the resolver will probe.
	releasePath := filepath.Join(dir, "osrelease")
	if !fx.OmitRelease {
		release := fx.Release
		if release == "" {
			release = "6.8.0-generic\n"
		}
		require.NoError(t, os.WriteFile(releasePath, []byte(release), 0o644))
	}

	// 3. Write the source file and derive where the object must appear.
	sourceName := fx.SourceName
	if sourceName == "" {
		sourceName = "foo.c"
	}
	sourceBody := fx.SourceBody
	if sourceBody == "" {
		sourceBody = "int value = 42;\n"
	}
	sourcePath := filepath.Join(dir, sourceName)
	require.NoError(t, os.WriteFile(sourcePath, []byte(sourceBody), 0o644))
	tgt, err := target.Derive(sourcePath)
	require.NoError(t, err)

	// 4. Write a profile file wiring the fakes together. The alt profile
	//    shares the fake compiler but carries marker flags and a different
	//    assembler, so selection tests can tell the two apart.
	profilePath := filepath.Join(dir, "profiles.hcl")
	profileHCL := fmt.Sprintf(`
tool            = %[1]q
default_profile = "harness"

profile "harness" {
  compiler  = %[2]q
  cflags    = "-proc gekko -O4"
  assembler = "powerpc-eabi-as.exe"
  asflags   = "-mgekko"
  emulator  = %[3]q
}

profile "alt" {
  compiler  = %[2]q
  cflags    = "-alt-marker"
  assembler = "alt-as.exe"
  emulator  = %[3]q
}
%[4]s`, toolPath, compilerPath, emulatorPath, fx.ExtraHCL)
	require.NoError(t, os.WriteFile(profilePath, []byte(profileHCL), 0o644))

	// 5. Configure the app against the fixture paths only, bypassing the
	//    environment merge so the invoking shell cannot leak in.
	appConfig := &app.Config{
		Source:      sourcePath,
		ConfigPath:  profilePath,
		Profile:     fx.Profile,
		CFlags:      fx.CFlags,
		Emulator:    emulatorPath,
		LogLevel:    "debug",
		LogFormat:   "text",
		ReleasePath: releasePath,
	}

	logBuffer := &SafeBuffer{}
	diagBuffer := &SafeBuffer{}

	var testApp *app.App
	var panicErr any
	func() {
		defer func() {
			if r := recover(); r != nil {
				if os.Getenv("ASMCC_TEST_LOGS") == "true" {
					t.Logf("--- HARNESS RECOVERED PANIC ---\n%q", fmt.Sprintf("%v", r))
				}
				panicErr = r
			}
		}()
		testApp = app.NewApp(logBuffer, diagBuffer, appConfig, nil)
	}()

	if panicErr != nil {
		return &BuildResult{
			Err:        fmt.Errorf("application startup panicked | %v", panicErr),
			LogOutput:  logBuffer.String(),
			Dir:        dir,
			SourcePath: sourcePath,
			ObjectPath: tgt.Object,
		}
	}

	runErr := testApp.Run(ctx)

	if os.Getenv("ASMCC_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
	}

	return &BuildResult{
		Err:         runErr,
		LogOutput:   logBuffer.String(),
		Diagnostics: diagBuffer.String(),
		Dir:         dir,
		SourcePath:  sourcePath,
		ObjectPath:  tgt.Object,
		ToolLog:     Invocations(t, logPath),
		App:         testApp,
	}
}
