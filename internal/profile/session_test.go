package profile_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"kouri/internal/config"
	"kouri/internal/logging"
	"kouri/internal/profile"
	"kouri/internal/services"
	"kouri/internal/services/chatapi"
	"kouri/internal/testsupport"
)

type fakeBackend struct {
	readyErr    error
	generateOut string
	polishOut   string
	err         error

	calls        int
	lastProfile  string
	lastArgument string
}

func (f *fakeBackend) Ready() error { return f.readyErr }

func (f *fakeBackend) GenerateCharacterProfile(_ context.Context, description string) (string, error) {
	f.calls++
	f.lastArgument = description
	return f.generateOut, f.err
}

func (f *fakeBackend) PolishCharacterProfile(_ context.Context, text, instruction string) (string, error) {
	f.calls++
	f.lastProfile = text
	f.lastArgument = instruction
	return f.polishOut, f.err
}

func newSession(backend profile.Backend) *profile.Session {
	return profile.NewSession(backend, logging.NewNop())
}

func requireState(t *testing.T, s *profile.Session, state profile.State, provenance profile.Provenance, text string) {
	t.Helper()
	if s.State() != state || s.Provenance() != provenance || s.Text() != text {
		t.Fatalf("session = (%s, %s, %q), want (%s, %s, %q)", s.State(), s.Provenance(), s.Text(), state, provenance, text)
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestGenerateAndPolish(t *testing.T) {
	backend := &fakeBackend{generateOut: "Name: Aria", polishOut: "Name: Aria, polished"}
	s := newSession(backend)
	ctx := context.Background()

	if err := s.Generate(ctx, "a brave knight"); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	requireState(t, s, profile.StateGenerated, profile.ProvenanceGenerated, "Name: Aria")
	if s.Snapshot().UpdatedAt.IsZero() {
		t.Fatal("expected update time")
	}

	if err := s.Polish(ctx, "more detail"); err != nil {
		t.Fatalf("Polish: %v", err)
	}
	requireState(t, s, profile.StatePolished, profile.ProvenancePolished, "Name: Aria, polished")
	if backend.lastProfile != "Name: Aria" || backend.lastArgument != "more detail" {
		t.Fatalf("polish received (%q, %q)", backend.lastProfile, backend.lastArgument)
	}

	backend.polishOut = "twice polished"
	if err := s.Polish(ctx, "again"); err != nil {
		t.Fatalf("second Polish: %v", err)
	}
	requireState(t, s, profile.StatePolished, profile.ProvenancePolished, "twice polished")
}

func TestGuardsOnEmptySession(t *testing.T) {
	backend := &fakeBackend{}
	s := newSession(backend)
	ctx := context.Background()

	err := s.Polish(ctx, "shorter")
	if !errors.Is(err, profile.ErrNoProfile) || !errors.Is(err, services.ErrValidation) {
		t.Fatalf("Polish on empty: expected guard, got %v", err)
	}
	err = s.Export(filepath.Join(t.TempDir(), "out.txt"))
	if !errors.Is(err, profile.ErrNoProfile) {
		t.Fatalf("Export on empty: expected guard, got %v", err)
	}
	if err := s.Generate(ctx, "   "); !errors.Is(err, profile.ErrEmptyDescription) {
		t.Fatalf("Generate blank: expected guard, got %v", err)
	}
	if backend.calls != 0 {
		t.Fatalf("guards must not reach the backend, got %d calls", backend.calls)
	}
	requireState(t, s, profile.StateEmpty, profile.ProvenanceEmpty, "")
}

func TestPolishRequiresInstruction(t *testing.T) {
	backend := &fakeBackend{generateOut: "text"}
	s := newSession(backend)
	if err := s.Generate(context.Background(), "knight"); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if err := s.Polish(context.Background(), ""); !errors.Is(err, profile.ErrEmptyInstruction) {
		t.Fatalf("expected instruction guard, got %v", err)
	}
	requireState(t, s, profile.StateGenerated, profile.ProvenanceGenerated, "text")
}

func TestBackendFailureLeavesStateUnchanged(t *testing.T) {
	backend := &fakeBackend{generateOut: "first"}
	s := newSession(backend)
	ctx := context.Background()
	if err := s.Generate(ctx, "knight"); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	backend.err = services.StatusFailure("chat", 500, nil)
	backend.generateOut = "ignored"
	if err := s.Generate(ctx, "other"); services.KindOf(err) != services.KindHTTPStatus {
		t.Fatalf("expected backend failure, got %v", err)
	}
	if err := s.Polish(ctx, "x"); services.KindOf(err) != services.KindHTTPStatus {
		t.Fatalf("expected backend failure, got %v", err)
	}
	requireState(t, s, profile.StateGenerated, profile.ProvenanceGenerated, "first")
}

func TestNotReadyRefusesBeforeBackendCall(t *testing.T) {
	backend := &fakeBackend{readyErr: config.Config{}.Complete()}
	s := newSession(backend)
	err := s.Generate(context.Background(), "a brave knight")
	if !errors.Is(err, config.ErrIncomplete) {
		t.Fatalf("expected incomplete config, got %v", err)
	}
	if backend.calls != 0 {
		t.Fatal("backend must not be called when not ready")
	}
	requireState(t, s, profile.StateEmpty, profile.ProvenanceEmpty, "")

	if err := newSession(nil).Generate(context.Background(), "x"); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error without backend, got %v", err)
	}
}

func TestEmptyConfigScenarioMakesNoRequest(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { calls++ }))
	defer server.Close()

	client := chatapi.NewClient(config.Config{BaseURL: server.URL})
	s := newSession(client)
	if err := s.Generate(context.Background(), "a brave knight"); err == nil {
		t.Fatal("expected refusal")
	}
	if calls != 0 {
		t.Fatalf("expected no network calls, got %d", calls)
	}
	requireState(t, s, profile.StateEmpty, profile.ProvenanceEmpty, "")
}

func TestGenerateThroughAPIClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"choices":[{"message":{"content":"Name: Aria..."}}]}`)
	}))
	defer server.Close()

	s := newSession(chatapi.NewClient(testsupport.NewConfig(server.URL)))
	if err := s.Generate(context.Background(), "a brave knight"); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	requireState(t, s, profile.StateGenerated, profile.ProvenanceGenerated, "Name: Aria...")
}

func TestImport(t *testing.T) {
	s := newSession(nil)
	path := writeFile(t, "profile.txt", "Name: Aria")
	if err := s.Import(path); err != nil {
		t.Fatalf("Import: %v", err)
	}
	requireState(t, s, profile.StateGenerated, profile.ProvenanceImported, "Name: Aria")

	backend := &fakeBackend{generateOut: "gen", polishOut: "pol"}
	s = newSession(backend)
	if err := s.Generate(context.Background(), "x"); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if err := s.Polish(context.Background(), "y"); err != nil {
		t.Fatalf("Polish: %v", err)
	}
	if err := s.Import(path); err != nil {
		t.Fatalf("Import over polished: %v", err)
	}
	requireState(t, s, profile.StateGenerated, profile.ProvenanceImported, "Name: Aria")
}

func TestImportKeepsBytesVerbatim(t *testing.T) {
	content := "\ufeff第一行\r\n  indented\t\n\n"
	s := newSession(nil)
	if err := s.Import(writeFile(t, "raw.txt", content)); err != nil {
		t.Fatalf("Import: %v", err)
	}
	if s.Text() != content {
		t.Fatalf("import altered text: %q", s.Text())
	}
}

func TestImportRejectsLargeFileBeforeReading(t *testing.T) {
	backend := &fakeBackend{generateOut: "kept"}
	s := newSession(backend)
	if err := s.Generate(context.Background(), "x"); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	path := filepath.Join(t.TempDir(), "huge.txt")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := f.Truncate(profile.MaxImportBytes + 1); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	f.Close()
	// Unreadable: a read attempt would fail with a permission error instead of
	// the size guard.
	if err := os.Chmod(path, 0o200); err != nil {
		t.Fatalf("chmod: %v", err)
	}

	err = s.Import(path)
	if !errors.Is(err, profile.ErrFileTooLarge) || !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected size guard, got %v", err)
	}
	for _, fragment := range []string{"10,485,761 bytes (10 MiB)", "limit 10,485,760 bytes (10 MiB)"} {
		if !strings.Contains(err.Error(), fragment) {
			t.Fatalf("expected %q in %q", fragment, err.Error())
		}
	}
	requireState(t, s, profile.StateGenerated, profile.ProvenanceGenerated, "kept")
}

func TestImportAtLimitIsAccepted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "limit.txt")
	testsupport.WriteFile(t, path, profile.MaxImportBytes)
	s := newSession(nil)
	if err := s.Import(path); err != nil {
		t.Fatalf("Import at limit: %v", err)
	}
	if int64(len(s.Text())) != profile.MaxImportBytes {
		t.Fatalf("unexpected length %d", len(s.Text()))
	}
}

func TestImportMissingFile(t *testing.T) {
	s := newSession(nil)
	if err := s.Import(filepath.Join(t.TempDir(), "nope.txt")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist, got %v", err)
	}
	if err := s.Import(""); !errors.Is(err, profile.ErrEmptyPath) {
		t.Fatalf("expected path guard, got %v", err)
	}
	requireState(t, s, profile.StateEmpty, profile.ProvenanceEmpty, "")
}

func TestExportWritesVerbatimAndKeepsState(t *testing.T) {
	s := newSession(nil)
	content := "Name: Aria\n性格：勇敢\n"
	if err := s.Import(writeFile(t, "in.txt", content)); err != nil {
		t.Fatalf("Import: %v", err)
	}
	out := filepath.Join(t.TempDir(), "out.txt")
	if err := s.Export(out); err != nil {
		t.Fatalf("Export: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != content {
		t.Fatalf("export altered text: %q", data)
	}
	requireState(t, s, profile.StateGenerated, profile.ProvenanceImported, content)
}
