package toolchain

import "strings"

// Built-in profile names. Both historical deployment paths stay available
// side by side; configuration picks one.
const (
	NativeAS = "native-as"
	VendorAS = "vendor-as"
)

// DefaultProfileName is used when neither configuration nor flags select a
// profile.
const DefaultProfileName = NativeAS

// Repo-shipped artifact names and the stock emulator binary.
const (
	DefaultWrapper  = "include-stdin.c"
	DefaultPrelude  = "prelude.s"
	DefaultEmulator = "wine"
)

// vendorCFlags are the fixed vendor compiler flags: exceptions off, Gekko
// CPU, hardware floating point, highest optimization level.
var vendorCFlags = []string{"-Cpp_exceptions", "off", "-proc", "gekko", "-fp", "hard", "-O4"}

// Defaults returns the built-in profiles keyed by name, used when no profile
// file is configured. devkitPPC locates the native assembler; a trailing
// slash is trimmed the way the historical build scripts did. An empty
// emulator falls back to wine.
func Defaults(devkitPPC, emulator string) map[string]Profile {
	devkitPPC = strings.TrimSuffix(devkitPPC, "/")
	if emulator == "" {
		emulator = DefaultEmulator
	}

	nativeAssembler := "powerpc-eabi-as.exe"
	if devkitPPC != "" {
		nativeAssembler = devkitPPC + "/bin/powerpc-eabi-as.exe"
	}

	return map[string]Profile{
		NativeAS: {
			Name:      NativeAS,
			Compiler:  "./mwcceppc.exe",
			CFlags:    vendorCFlags,
			Assembler: nativeAssembler,
			ASFlags:   []string{"-mgekko", "-mregnames"},
			Wrapper:   DefaultWrapper,
			Prelude:   DefaultPrelude,
			Emulator:  emulator,
		},
		VendorAS: {
			Name:      VendorAS,
			Compiler:  "./mwcceppc.exe",
			CFlags:    vendorCFlags,
			Assembler: "./mwasmeppc.exe",
			ASFlags:   []string{"-proc", "gekko"},
			Wrapper:   DefaultWrapper,
			Prelude:   DefaultPrelude,
			Emulator:  emulator,
		},
	}
}
