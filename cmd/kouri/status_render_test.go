package main

import (
	"fmt"
	"strings"
	"testing"

	"github.com/jedib0t/go-pretty/v6/text"

	"kouri/internal/config"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	r := renderer{palette: lightPalette}
	got := r.statusLine("Probe", statusError, "unreachable")
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "Probe:", "[ERROR] unreachable")
	if got != want {
		t.Fatalf("statusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	r := renderer{colorize: true, palette: darkPalette}
	got := r.statusLine("Probe", statusOK, "reachable")
	if !strings.HasPrefix(got, darkPalette.ok) {
		t.Fatalf("expected dark green prefix, got %q", got)
	}
	if !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected reset suffix, got %q", got)
	}
}

func TestPaletteFor(t *testing.T) {
	if paletteFor(config.ThemeDark) != darkPalette {
		t.Fatal("dark theme should use dark palette")
	}
	if paletteFor(config.ThemeLight) != lightPalette {
		t.Fatal("light theme should use light palette")
	}
	t.Setenv("COLORFGBG", "15;0")
	if paletteFor(config.ThemeSystem) != darkPalette {
		t.Fatal("system theme on dark terminal should use dark palette")
	}
	t.Setenv("COLORFGBG", "0;15")
	if paletteFor(config.ThemeSystem) != lightPalette {
		t.Fatal("system theme on light terminal should use light palette")
	}
}

func TestSectionHeaderWidth(t *testing.T) {
	lines := renderer{}.sectionHeader("测试")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[1] != strings.Repeat("-", 10) {
		t.Fatalf("rule = %q", lines[1])
	}
}

func TestStatusLinesAlignWideLabels(t *testing.T) {
	r := renderer{palette: lightPalette}
	lines := []string{
		r.statusLine("连接", statusWarn, "网络连接失败"),
		r.statusLine("对话", statusOK, "HTTP 200"),
		r.statusLine("Probe", statusOK, ""),
	}
	for _, line := range lines {
		prefix, _, ok := strings.Cut(line, "[")
		if !ok {
			t.Fatalf("no status bracket in %q", line)
		}
		if got := text.RuneWidthWithoutEscSequences(prefix); got != len(statusIndent)+statusLabelWidth+1 {
			t.Fatalf("status column at width %d in %q", got, line)
		}
	}
}
