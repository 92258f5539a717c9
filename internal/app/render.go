package app

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// renderer colors terminal output: critical-path rows in red, warnings in
// yellow, matching the detected color profile so piped output (no TTY)
// degrades to plain text automatically.
type renderer struct {
	profile termenv.Profile
}

func newRenderer(_ io.Writer) *renderer {
	return &renderer{profile: termenv.EnvColorProfile()}
}

func (r *renderer) critical(s string) string {
	return termenv.String(s).Foreground(r.profile.Color("9")).Bold().String()
}

func (r *renderer) warning(s string) string {
	return termenv.String(s).Foreground(r.profile.Color("11")).String()
}

func (r *renderer) ok(s string) string {
	return termenv.String(s).Foreground(r.profile.Color("10")).String()
}

func (r *renderer) printActivityLine(w io.Writer, id string, critical bool) {
	if critical {
		fmt.Fprintln(w, r.critical(id+" (critical)"))
		return
	}
	fmt.Fprintln(w, id)
}
