// Package toolchain describes vendor toolchain profiles and renders the
// exact command lines the pipeline hands to the operating system.
package toolchain

import "fmt"

// Profile is an immutable bundle of toolchain locations and flags. It is
// selected once per invocation, at deployment-configuration time, and never
// changes while a build runs.
type Profile struct {
	Name      string
	Compiler  string   // vendor compiler executable
	CFlags    []string // fixed compiler flags
	Assembler string   // assembler executable
	ASFlags   []string // fixed assembler flags
	Wrapper   string   // wrapper compilation unit handed to the compiler
	Prelude   string   // assembly prelude handed to the patch stage
	Emulator  string   // emulation layer binary for Emulated environments
}

// Validate checks that every location the pipeline will hand to the OS is
// present. Flag lists may legitimately be empty.
func (p Profile) Validate() error {
	missing := ""
	switch {
	case p.Name == "":
		missing = "name"
	case p.Compiler == "":
		missing = "compiler"
	case p.Assembler == "":
		missing = "assembler"
	case p.Wrapper == "":
		missing = "wrapper"
	case p.Prelude == "":
		missing = "prelude"
	case p.Emulator == "":
		missing = "emulator"
	}
	if missing != "" {
		return fmt.Errorf("profile %q: %s is not set", p.Name, missing)
	}
	return nil
}
