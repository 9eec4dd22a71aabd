package report

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/verte-zerg/typebest/internal/model"
	"github.com/verte-zerg/typebest/internal/tracker"
)

var (
	pbStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
)

// RenderOutcome prints the result of one submission.
func RenderOutcome(w io.Writer, result model.Result, out tracker.Outcome) error {
	useColor := shouldUseColor(w)
	label := fmt.Sprintf("%s %s", result.Mode, result.Mode2)
	wpm := optionalFloat(result.Wpm, formatFloat)

	var line string
	switch {
	case !out.FunboxEligible:
		line = paint(useColor, warningStyle, fmt.Sprintf("%s: %s wpm recorded, funbox %q cannot set a personal best", label, wpm, result.Funbox))
	case out.IsPb:
		line = paint(useColor, pbStyle, fmt.Sprintf("%s: new personal best, %s wpm", label, wpm))
	default:
		line = paint(useColor, mutedStyle, fmt.Sprintf("%s: %s wpm recorded", label, wpm))
	}
	_, err := fmt.Fprintf(w, "%s (%s)\n", line, out.ResultID)
	return err
}

func paint(useColor bool, style lipgloss.Style, text string) string {
	if !useColor {
		return text
	}
	return style.Render(text)
}

func shouldUseColor(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
