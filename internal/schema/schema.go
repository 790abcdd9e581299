// Package schema defines the HCL shapes for asmcc profile files.
package schema

import "github.com/hashicorp/hcl/v2"

// Profile represents a `profile` block in a profile file. Flag attributes
// are single strings so the file reads like the historical shell variables;
// splitting into argv elements happens at translation time.
type Profile struct {
	Name      string `hcl:"name,label"`
	Compiler  string `hcl:"compiler"`
	CFlags    string `hcl:"cflags,optional"`
	Assembler string `hcl:"assembler"`
	ASFlags   string `hcl:"asflags,optional"`
	Wrapper   string `hcl:"wrapper,optional"`
	Prelude   string `hcl:"prelude,optional"`
	Emulator  string `hcl:"emulator,optional"`
}

// Config represents the top-level structure of a profile file.
type Config struct {
	DefaultProfile string     `hcl:"default_profile,optional"`
	Tool           string     `hcl:"tool,optional"`
	Profiles       []*Profile `hcl:"profile,block"`
	Body           hcl.Body   `hcl:",remain"`
}
