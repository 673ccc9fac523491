package cli

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// defaultWidth is used when the output is not a terminal.
const defaultWidth = 80

// snippetLines caps the preview printed under each search result.
const snippetLines = 3

var (
	nameStyle  = lipgloss.NewStyle().Bold(true)
	scoreStyle = lipgloss.NewStyle().Faint(true)
	kindStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#06B6D4"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))
)

// outputWidth returns the terminal width of w, or defaultWidth.
func outputWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return defaultWidth
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return defaultWidth
	}
	return width
}

// snippet collapses whitespace in content and wraps it to width,
// keeping at most maxLines lines.
func snippet(content string, width, maxLines int) []string {
	if width < 20 {
		width = 20
	}
	words := strings.Fields(content)

	var lines []string
	var line strings.Builder
	for _, word := range words {
		if line.Len() > 0 && len([]rune(line.String()))+1+len([]rune(word)) > width {
			lines = append(lines, line.String())
			line.Reset()
			if len(lines) == maxLines {
				last := []rune(lines[maxLines-1])
				if len(last) > width-3 {
					last = last[:width-3]
				}
				lines[maxLines-1] = string(last) + "..."
				return lines
			}
		}
		if line.Len() > 0 {
			line.WriteByte(' ')
		}
		line.WriteString(word)
	}
	if line.Len() > 0 {
		lines = append(lines, line.String())
	}
	return lines
}
