package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"kouri/internal/profile"
)

// lineReader yields one shell line per call and io.EOF when input ends.
type lineReader interface {
	ReadLine() (string, error)
}

// newLineReader edits lines with history when in is a terminal and falls back
// to plain line scanning for pipes and files.
func newLineReader(in io.Reader, out io.Writer) lineReader {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		screen := struct {
			io.Reader
			io.Writer
		}{in, out}
		return &terminalReader{fd: int(f.Fd()), term: term.NewTerminal(screen, shellPrompt)}
	}
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), int(profile.MaxImportBytes))
	return &scanReader{scanner: scanner, out: out}
}

// terminalReader holds raw mode only while a line is being edited so command
// output between prompts renders normally.
type terminalReader struct {
	fd   int
	term *term.Terminal
}

func (r *terminalReader) ReadLine() (string, error) {
	state, err := term.MakeRaw(r.fd)
	if err != nil {
		return "", fmt.Errorf("enter raw mode: %w", err)
	}
	defer func() { _ = term.Restore(r.fd, state) }()
	return r.term.ReadLine()
}

type scanReader struct {
	scanner *bufio.Scanner
	out     io.Writer
}

func (r *scanReader) ReadLine() (string, error) {
	fmt.Fprint(r.out, shellPrompt)
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return r.scanner.Text(), nil
}
