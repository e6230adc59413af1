// Package status renders the one-line outcome message shown under each
// section after a save or delete.
package status

import (
	"fmt"
	"strings"

	"github.com/rjratcon/rachaeljuzeler/internal/theme"
)

// Kind selects the color of a Line.
type Kind int

const (
	Info Kind = iota
	Success
	Warning
	Error
)

// Line is a status message. The zero value renders as nothing.
type Line struct {
	Text string
	Kind Kind
}

// Render styles the line by kind.
func (l Line) Render() string {
	if l.Text == "" {
		return ""
	}
	switch l.Kind {
	case Success:
		return theme.SuccessStyle.Render(l.Text)
	case Warning:
		return theme.WarningStyle.Render(l.Text)
	case Error:
		return theme.ErrorStyle.Render(l.Text)
	default:
		return theme.HelpStyle.Render(l.Text)
	}
}

// Saved reports the result of a save that may carry copy warnings.
func Saved(what string, warnings []string, err error) Line {
	switch {
	case err != nil:
		return Failed(err)
	case len(warnings) > 0:
		return Line{
			Text: fmt.Sprintf("%s saved with warnings: %s", what, strings.Join(warnings, "; ")),
			Kind: Warning,
		}
	default:
		return Line{Text: what + " saved", Kind: Success}
	}
}

// Failed reports an error.
func Failed(err error) Line {
	return Line{Text: fmt.Sprintf("Error: %v", err), Kind: Error}
}
