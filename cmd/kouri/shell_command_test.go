package main

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func TestShellKeepsProfileAcrossCommands(t *testing.T) {
	fe := newFakeEndpoint(t)
	path := writeTestConfig(t, fe.server.URL)
	exported := filepath.Join(t.TempDir(), "hero.txt")

	script := strings.Join([]string{
		"help",
		"polish 更幽默",
		"generate 勇者",
		"polish 更幽默",
		"export " + exported,
		"show",
		"exit",
	}, "\n")
	out, stderr, err := runCLI(t, path, script, "shell")
	if err != nil {
		t.Fatalf("shell: %v", err)
	}
	requireContains(t, out, "save-image [path]")
	requireContains(t, stderr, "请先生成或导入角色人设")
	requireContains(t, out, "GENERATED PROFILE")
	requireContains(t, out, "polished")

	data, err := os.ReadFile(exported)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if string(data) != "POLISHED PROFILE" {
		t.Fatalf("exported %q", data)
	}
}

func TestShellContinuesAfterErrors(t *testing.T) {
	fe := newFakeEndpoint(t)
	path := writeTestConfig(t, fe.server.URL)

	script := "bogus\nsave-image x.png\nset theme\nset theme dark\nconfig\n"
	out, stderr, err := runCLI(t, path, script, "shell")
	if err != nil {
		t.Fatalf("shell: %v", err)
	}
	requireContains(t, stderr, "未知命令")
	requireContains(t, stderr, "请先生成图片")
	requireContains(t, stderr, "用法错误")
	requireContains(t, out, "已保存 theme")
	requireContains(t, out, "dark")
}

func TestShellSetTakesEffectImmediately(t *testing.T) {
	fe := newFakeEndpoint(t)
	path := filepath.Join(t.TempDir(), "api_config.json")

	script := strings.Join([]string{
		"generate 勇者",
		"set base_url " + fe.server.URL,
		"set api_key sk-live",
		"generate 勇者",
		"exit",
	}, "\n")
	out, stderr, err := runCLI(t, path, script, "shell")
	if err != nil {
		t.Fatalf("shell: %v", err)
	}
	requireContains(t, stderr, "请填写URL地址、API 密钥和模型名称")
	requireContains(t, out, "GENERATED PROFILE")
}

func TestShellSavesLastImageUnderPromptName(t *testing.T) {
	fe := newFakeEndpoint(t)
	path := writeTestConfig(t, fe.server.URL)
	dir := t.TempDir()
	t.Chdir(dir)

	script := "image 海边 日落?\nsave-image\nexit\n"
	out, stderr, err := runCLI(t, path, script, "shell")
	if err != nil {
		t.Fatalf("shell: %v (stderr %s)", err, stderr)
	}
	requireContains(t, out, "图片已保存到 海边_日落.png")
	if _, err := os.Stat(filepath.Join(dir, "海边_日落.png")); err != nil {
		t.Fatalf("expected saved image: %v", err)
	}
}

func TestLineReaderScansPipedInput(t *testing.T) {
	var out strings.Builder
	lines := newLineReader(strings.NewReader("show\n\nexit"), &out)

	var got []string
	for {
		line, err := lines.ReadLine()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("ReadLine: %v", err)
		}
		got = append(got, line)
	}
	if want := []string{"show", "", "exit"}; !slices.Equal(got, want) {
		t.Fatalf("lines = %q, want %q", got, want)
	}
	if n := strings.Count(out.String(), shellPrompt); n != 4 {
		t.Fatalf("expected a prompt per read, got %d in %q", n, out.String())
	}
}

func TestLineReaderFallsBackForNonTerminalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.txt")
	if err := os.WriteFile(path, []byte("help\n"), 0o600); err != nil {
		t.Fatalf("write script: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open script: %v", err)
	}
	defer f.Close()

	if _, ok := newLineReader(f, io.Discard).(*scanReader); !ok {
		t.Fatal("regular files must use the scanning reader")
	}
}
