// Package cliutil holds the thin, narrowly-scoped presentation helpers:
// terminal coloring and single-colored-line error/conflict reporting.
// Nothing outside this package imports fatih/color.
package cliutil

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/dustin/go-humanize"

	"github.com/tonimelisma/dat/internal/daterrors"
)

// Error prints a single colored error line to stderr.
func Error(err error) {
	fmt.Fprintln(os.Stderr, color.RedString("Error:"), err)
}

// Fatal prints err via Error and exits the process with status 1.
func Fatal(err error) {
	Error(err)
	os.Exit(1)
}

// Warn prints a single colored warning line to stderr.
func Warn(msg string) {
	fmt.Fprintln(os.Stderr, color.YellowString("Warning:"), msg)
}

// Conflict prints a single conflicted path, colored, to w.
func Conflict(w io.Writer, path string) {
	fmt.Fprintln(w, color.RedString("conflict:"), path)
}

// Section prints a colored section header followed by one line per
// path, or nothing at all when paths is empty.
func Section(w io.Writer, label string, paths []string) {
	if len(paths) == 0 {
		return
	}

	fmt.Fprintln(w, color.CyanString(label+":"))

	for _, p := range paths {
		fmt.Fprintln(w, "  "+p)
	}
}

// Bytes renders a byte count for verbose output, e.g. "4.2 kB".
func Bytes(n int64) string {
	return humanize.Bytes(uint64(n))
}

// AbortHint formats daterrors.ErrStashWouldOverwrite's suggested
// remediation.
func AbortHint(err error) string {
	if err == daterrors.ErrStashWouldOverwrite { //nolint:errorlint // sentinel identity check
		return "retry with --hard to overwrite"
	}

	return ""
}
