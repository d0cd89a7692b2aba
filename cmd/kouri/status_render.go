package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"kouri/internal/config"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const ansiReset = "\x1b[0m"

const (
	statusLabelWidth = 12
	statusIndent     = "  "
)

// palette maps status kinds to ANSI colours for one theme.
type palette struct {
	info, ok, warn, err string
}

var (
	lightPalette = palette{info: "\x1b[34m", ok: "\x1b[32m", warn: "\x1b[33m", err: "\x1b[31m"}
	darkPalette  = palette{info: "\x1b[94m", ok: "\x1b[92m", warn: "\x1b[93m", err: "\x1b[91m"}
)

// paletteFor picks the colours for theme. The system theme follows the
// terminal's COLORFGBG hint when present and falls back to light.
func paletteFor(theme config.Theme) palette {
	switch theme {
	case config.ThemeDark:
		return darkPalette
	case config.ThemeSystem:
		if terminalIsDark(os.Getenv("COLORFGBG")) {
			return darkPalette
		}
	}
	return lightPalette
}

// terminalIsDark interprets COLORFGBG ("fg;bg"); background 0-6 or 8 is dark.
func terminalIsDark(hint string) bool {
	parts := strings.Split(strings.TrimSpace(hint), ";")
	if len(parts) < 2 {
		return false
	}
	switch parts[len(parts)-1] {
	case "0", "1", "2", "3", "4", "5", "6", "8":
		return true
	}
	return false
}

func (p palette) color(kind statusKind) string {
	switch kind {
	case statusOK:
		return p.ok
	case statusWarn:
		return p.warn
	case statusError:
		return p.err
	default:
		return p.info
	}
}

// renderer formats status lines for one output stream.
type renderer struct {
	colorize bool
	palette  palette
}

func newRenderer(w io.Writer, theme config.Theme) renderer {
	return renderer{colorize: shouldColorize(w), palette: paletteFor(theme)}
}

func (r renderer) statusLine(label string, kind statusKind, message string) string {
	statusText := statusKindLabel(kind)
	if message != "" {
		statusText = fmt.Sprintf("[%s] %s", statusText, message)
	} else {
		statusText = fmt.Sprintf("[%s]", statusText)
	}
	base := statusIndent + padLabel(label+":") + " " + statusText
	if r.colorize {
		return r.palette.color(kind) + base + ansiReset
	}
	return base
}

// padLabel pads by display width so CJK labels line up with ASCII ones.
func padLabel(label string) string {
	if gap := statusLabelWidth - text.RuneWidthWithoutEscSequences(label); gap > 0 {
		return label + strings.Repeat(" ", gap)
	}
	return label
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func (r renderer) sectionHeader(title string) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", text.RuneWidthWithoutEscSequences(line))
	if r.colorize {
		line = r.palette.info + line + ansiReset
		rule = r.palette.info + rule + ansiReset
	}
	return []string{line, rule}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
