package textutil

import (
	"path/filepath"
	"strings"
	"unicode"
)

// MaxFileNameRunes caps names derived from free text.
const MaxFileNameRunes = 48

// fileNameReplacer replaces filesystem-unsafe characters with safe alternatives.
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
	"：", "-",
	"？", "",
)

// SanitizeFileName replaces filesystem-unsafe characters in a filename.
// Slashes, backslashes, colons, and asterisks become dashes; other unsafe
// characters are removed. Whitespace runs collapse to one underscore and the
// result is capped at MaxFileNameRunes.
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	name = fileNameReplacer.Replace(name)
	name = strings.Join(strings.FieldsFunc(name, unicode.IsSpace), "_")
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, name)
	if runes := []rune(name); len(runes) > MaxFileNameRunes {
		name = string(runes[:MaxFileNameRunes])
	}
	return strings.Trim(name, "._-")
}

// WithDefaultExt appends ext to path when path has no extension.
func WithDefaultExt(path, ext string) string {
	path = strings.TrimSpace(path)
	if path == "" || filepath.Ext(path) != "" {
		return path
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return path + ext
}
