package profile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"kouri/internal/fileutil"
	"kouri/internal/logging"
	"kouri/internal/services"
)

// MaxImportBytes caps the size of an imported profile file.
const MaxImportBytes int64 = 10 << 20

// State is the lifecycle position of a Session.
type State int

const (
	StateEmpty State = iota
	StateGenerated
	StatePolished
)

func (s State) String() string {
	switch s {
	case StateGenerated:
		return "generated"
	case StatePolished:
		return "polished"
	default:
		return "empty"
	}
}

// Provenance records where the current text came from.
type Provenance string

const (
	ProvenanceEmpty     Provenance = "empty"
	ProvenanceGenerated Provenance = "generated"
	ProvenanceImported  Provenance = "imported"
	ProvenancePolished  Provenance = "polished"
)

// Refusal reasons. They are wrapped with services.ErrValidation, or
// services.ErrConfiguration for backend readiness, when returned.
var (
	ErrEmptyDescription = errors.New("请输入角色描述")
	ErrEmptyInstruction = errors.New("请输入润色要求")
	ErrNoProfile        = errors.New("请先生成或导入角色人设")
	ErrFileTooLarge     = errors.New("文件大小超过 10MB，请选择较小的文件")
	ErrEmptyPath        = errors.New("请选择文件路径")
)

// Backend produces and rewrites profile text.
type Backend interface {
	// Ready reports, without network I/O, whether requests can be issued.
	Ready() error
	GenerateCharacterProfile(ctx context.Context, description string) (string, error)
	PolishCharacterProfile(ctx context.Context, profile, instruction string) (string, error)
}

// Snapshot is a read-only view of a Session.
type Snapshot struct {
	State      State
	Provenance Provenance
	Text       string
	UpdatedAt  time.Time
}

// Session holds at most one profile.
type Session struct {
	backend Backend
	logger  *slog.Logger
	now     func() time.Time

	state      State
	provenance Provenance
	text       string
	updatedAt  time.Time
}

// NewSession returns an empty session. backend may be nil when only
// Import/Export are needed; Generate and Polish then refuse.
func NewSession(backend Backend, logger *slog.Logger) *Session {
	return &Session{
		backend:    backend,
		logger:     logging.NewComponentLogger(logger, "profile"),
		now:        time.Now,
		state:      StateEmpty,
		provenance: ProvenanceEmpty,
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State { return s.state }

// Text returns the current profile text, empty in StateEmpty.
func (s *Session) Text() string { return s.text }

// Provenance returns where the current text came from.
func (s *Session) Provenance() Provenance { return s.provenance }

// Snapshot returns a copy of the session state.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{State: s.state, Provenance: s.provenance, Text: s.text, UpdatedAt: s.updatedAt}
}

// Generate asks the backend for a new profile built from description and
// replaces the current text with it.
func (s *Session) Generate(ctx context.Context, description string) error {
	const op = "generate"
	if strings.TrimSpace(description) == "" {
		return refuse(op, ErrEmptyDescription)
	}
	if err := s.ready(op); err != nil {
		return err
	}
	text, err := s.backend.GenerateCharacterProfile(ctx, description)
	if err != nil {
		return err
	}
	s.set(StateGenerated, ProvenanceGenerated, text)
	logging.WithContext(ctx, s.logger).Info("profile generated", logging.Int("chars", len([]rune(text))))
	return nil
}

// Polish rewrites the current text following instruction.
func (s *Session) Polish(ctx context.Context, instruction string) error {
	const op = "polish"
	if s.state == StateEmpty {
		return refuse(op, ErrNoProfile)
	}
	if strings.TrimSpace(instruction) == "" {
		return refuse(op, ErrEmptyInstruction)
	}
	if err := s.ready(op); err != nil {
		return err
	}
	text, err := s.backend.PolishCharacterProfile(ctx, s.text, instruction)
	if err != nil {
		return err
	}
	s.set(StatePolished, ProvenancePolished, text)
	logging.WithContext(ctx, s.logger).Info("profile polished", logging.Int("chars", len([]rune(text))))
	return nil
}

// Import replaces the current text with the contents of path. Files larger
// than MaxImportBytes are rejected before they are opened for reading.
func (s *Session) Import(path string) error {
	const op = "import"
	if strings.TrimSpace(path) == "" {
		return refuse(op, ErrEmptyPath)
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("profile import: %w", err)
	}
	if info.IsDir() {
		return services.Wrap(services.ErrValidation, "profile", op, path+" is a directory", nil)
	}
	if info.Size() > MaxImportBytes {
		return services.Wrap(services.ErrValidation, "profile", op,
			fmt.Sprintf("%s is %s, limit %s", path, describeSize(info.Size()), describeSize(MaxImportBytes)),
			ErrFileTooLarge)
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("profile import: %w", err)
	}
	defer file.Close()
	// The limit guards against the file growing between Stat and Read.
	data, err := io.ReadAll(io.LimitReader(file, MaxImportBytes+1))
	if err != nil {
		return fmt.Errorf("profile import: %w", err)
	}
	if int64(len(data)) > MaxImportBytes {
		return services.Wrap(services.ErrValidation, "profile", op, path, ErrFileTooLarge)
	}

	s.set(StateGenerated, ProvenanceImported, string(data))
	s.logger.Info("profile imported", logging.String("path", path), logging.String("size", humanize.IBytes(uint64(len(data)))))
	return nil
}

// Export writes the current text to path verbatim.
func (s *Session) Export(path string) error {
	const op = "export"
	if s.state == StateEmpty {
		return refuse(op, ErrNoProfile)
	}
	if strings.TrimSpace(path) == "" {
		return refuse(op, ErrEmptyPath)
	}
	if err := fileutil.WriteFileAtomic(path, []byte(s.text), 0o644); err != nil {
		return fmt.Errorf("profile export: %w", err)
	}
	s.logger.Info("profile exported", logging.String("path", path))
	return nil
}

// describeSize prints exact bytes next to the rounded size.
func describeSize(n int64) string {
	return fmt.Sprintf("%s bytes (%s)", humanize.Comma(n), humanize.IBytes(uint64(n)))
}

func (s *Session) ready(op string) error {
	if s.backend == nil {
		return services.Wrap(services.ErrConfiguration, "profile", op, "no backend configured", nil)
	}
	return s.backend.Ready()
}

func (s *Session) set(state State, provenance Provenance, text string) {
	s.state = state
	s.provenance = provenance
	s.text = text
	s.updatedAt = s.now()
}

func refuse(op string, reason error) error {
	return services.Wrap(services.ErrValidation, "profile", op, "", reason)
}
