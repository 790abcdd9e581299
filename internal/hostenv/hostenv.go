// Package hostenv resolves how the host must execute the vendor's Windows
// toolchain binaries: directly, or wrapped in an emulation layer.
package hostenv

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppcbuildtools/asmcc/internal/ctxlog"
)

// Kind classifies the host's ability to run Windows executables.
type Kind int

const (
	// Native hosts run Windows executables directly, because the kernel is
	// itself a Windows compatibility front end (WSL).
	Native Kind = iota
	// Emulated hosts need an emulation layer such as wine around every
	// vendor binary invocation.
	Emulated
)

// String implements fmt.Stringer for log output.
func (k Kind) String() string {
	switch k {
	case Native:
		return "native"
	case Emulated:
		return "emulated"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// DefaultReleasePath is where Linux exposes the kernel release string.
const DefaultReleasePath = "/proc/sys/kernel/osrelease"

// marker is the substring WSL kernels carry in their release string. WSL1
// reports "Microsoft", WSL2 "microsoft-standard", so matching is
// case-insensitive.
const marker = "microsoft"

// Resolver classifies the execution environment from the kernel release
// string. The zero value reads the real proc path; tests point ReleasePath
// at a fixture file.
type Resolver struct {
	ReleasePath string
}

// Resolve reads the kernel release string once and classifies the host. An
// unreadable release source is fatal: without it there is no environment to
// proceed with.
func (r *Resolver) Resolve(ctx context.Context) (Kind, error) {
	path := r.ReleasePath
	if path == "" {
		path = DefaultReleasePath
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading kernel release: %w", err)
	}
	release := strings.TrimSpace(string(raw))

	kind := Emulated
	if strings.Contains(strings.ToLower(release), marker) {
		kind = Native
	}
	ctxlog.FromContext(ctx).Debug("Execution environment resolved.", "release", release, "environment", kind)
	return kind, nil
}
