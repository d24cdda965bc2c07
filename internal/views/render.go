package views

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
)

var (
	headingColor = color.New(color.Bold, color.FgCyan)
	errorColor   = color.New(color.FgRed)
	okColor      = color.New(color.FgGreen)
	dimColor     = color.New(color.Faint)
)

const dateLayout = "Jan 2, 2006"

// renderState prints the loading and error lines shared by every view. It
// reports whether the caller should go on to render data.
func (s *state) renderState(w io.Writer, loadingText string) bool {
	switch s.Status() {
	case Loading:
		dimColor.Fprintln(w, loadingText)
		return false
	case Failed:
		errorColor.Fprintln(w, s.ErrorMessage())
		return false
	case Idle:
		return false
	}
	return true
}

func heading(w io.Writer, format string, a ...any) {
	headingColor.Fprintf(w, format+"\n", a...)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(dateLayout)
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func fprintf(w io.Writer, format string, a ...any) {
	_, _ = fmt.Fprintf(w, format, a...)
}
