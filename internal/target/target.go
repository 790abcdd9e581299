// Package target models the one artifact pair a pipeline run operates on:
// the input source file and the object file derived from it.
package target

import (
	"fmt"
	"strings"
)

// sourceExtensions lists the file extensions accepted as compilable input.
var sourceExtensions = []string{".c", ".cpp"}

// Target is the immutable pair of paths for one compilation. The object
// path is fully determined by the source path; nothing else in the pipeline
// is allowed to invent an output location.
type Target struct {
	Source string
	Object string
}

// Derive validates the source path's extension and substitutes it with ".o"
// to produce the object path. Any other extension is rejected before a
// single stage runs.
func Derive(source string) (Target, error) {
	for _, ext := range sourceExtensions {
		if strings.HasSuffix(source, ext) && len(source) > len(ext) {
			return Target{
				Source: source,
				Object: strings.TrimSuffix(source, ext) + ".o",
			}, nil
		}
	}
	return Target{}, fmt.Errorf("source file %q must end in %s", source, strings.Join(sourceExtensions, " or "))
}
