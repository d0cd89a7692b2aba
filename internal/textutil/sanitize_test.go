package textutil

import (
	"strings"
	"testing"
)

func TestSanitizeFileName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"  ", ""},
		{"一只猫", "一只猫"},
		{"a/b\\c:d*e", "a-b-c-d-e"},
		{"what? <now> |x|", "what_now_x"},
		{"海边  的\t日落", "海边_的_日落"},
		{"角色：勇者？", "角色-勇者"},
		{"..hidden..", "hidden"},
	}
	for _, tc := range cases {
		if got := SanitizeFileName(tc.in); got != tc.want {
			t.Errorf("SanitizeFileName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSanitizeFileNameCapsLength(t *testing.T) {
	got := SanitizeFileName(strings.Repeat("猫", MaxFileNameRunes+10))
	if n := len([]rune(got)); n != MaxFileNameRunes {
		t.Fatalf("length = %d, want %d", n, MaxFileNameRunes)
	}
}

func TestWithDefaultExt(t *testing.T) {
	cases := []struct {
		path, ext, want string
	}{
		{"hero", ".txt", "hero.txt"},
		{"hero.md", ".txt", "hero.md"},
		{"dir/cat", "png", "dir/cat.png"},
		{"", ".txt", ""},
	}
	for _, tc := range cases {
		if got := WithDefaultExt(tc.path, tc.ext); got != tc.want {
			t.Errorf("WithDefaultExt(%q, %q) = %q, want %q", tc.path, tc.ext, got, tc.want)
		}
	}
}
