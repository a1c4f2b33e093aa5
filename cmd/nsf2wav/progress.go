package main

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/binaryphile/nsf2wav/internal/convert"
)

// isTerminal reports whether w is a terminal file.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// newProgress reports render progress to w. On a terminal the line is
// redrawn in place; otherwise a line is printed every tenth of the way.
func newProgress(w io.Writer, tty bool) convert.ProgressFunc {
	lastStep := -1
	return func(remaining, rendered uint64) {
		total := remaining + rendered
		if total == 0 {
			return
		}
		pct := int(rendered * 100 / total)

		if tty {
			fmt.Fprintf(w, "\r  %3d%% | %d/%d frames", pct, rendered, total)
			if remaining == 0 {
				fmt.Fprintln(w)
			}
			return
		}

		if step := pct / 10; step != lastStep {
			lastStep = step
			fmt.Fprintf(w, "  %3d%% | %d/%d frames\n", pct, rendered, total)
		}
	}
}
