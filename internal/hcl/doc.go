// Package hcl provides the concrete HCL implementation for profile file
// loading. It is responsible for file parsing, expression evaluation against
// the toolchain-location variables, and translation into the runtime
// toolchain.Profile form.
package hcl
