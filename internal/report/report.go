// Package report renders the user-facing status lines for a pipeline run.
// Styling follows pterm; all output goes through an injected writer so tests
// can capture it and production can keep it off the rewrite stream.
package report

import (
	"fmt"
	"io"

	"github.com/pterm/pterm"
)

var (
	SuccessColorFG = pterm.FgLightGreen
	SuccessStyleBG = pterm.NewStyle(pterm.BgLightGreen, pterm.FgBlack)
	ErrorColorFG   = pterm.FgRed
	ErrorStyleBG   = pterm.NewStyle(pterm.BgRed, pterm.FgWhite)
	StageColorFG   = pterm.FgCyan
)

// Reporter prints one line per stage plus a final outcome line. A nil
// Reporter is valid and prints nothing.
type Reporter struct {
	W io.Writer
}

// Stage announces a pipeline stage beginning work on a path.
func (r *Reporter) Stage(name, path string) {
	if r == nil || r.W == nil {
		return
	}
	fmt.Fprintln(r.W, StageColorFG.Sprint(name)+" "+path)
}

// Done reports the terminal success state and the finished object.
func (r *Reporter) Done(object string) {
	if r == nil || r.W == nil {
		return
	}
	fmt.Fprintln(r.W, SuccessStyleBG.Sprint("Done")+" "+object)
}

// Failed reports the aborting failure.
func (r *Reporter) Failed(err error) {
	if r == nil || r.W == nil {
		return
	}
	fmt.Fprintln(r.W, ErrorStyleBG.Sprint("Fail")+" "+ErrorColorFG.Sprint(err.Error()))
}
