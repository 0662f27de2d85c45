package export

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	KindPDF = "pdf"
	KindPNG = "png"
)

// Artifact describes a stored export file.
type Artifact struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Slide     int       `json:"slide,omitempty"`
	Title     string    `json:"title,omitempty"`
	SizeBytes int       `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}

// FileName is the name the artifact is served under.
func (a Artifact) FileName() string {
	if a.Kind == KindPNG && a.Slide > 0 {
		return fmt.Sprintf("slide-%02d.png", a.Slide)
	}
	return "deck." + a.Kind
}

// ContentType is the MIME type of the artifact file.
func (a Artifact) ContentType() string {
	if a.Kind == KindPDF {
		return "application/pdf"
	}
	return "image/png"
}

// Store keeps export files and their metadata sidecars in one directory.
type Store struct {
	dir string
	mu  sync.RWMutex
}

// NewStore creates a Store and ensures the directory exists.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("export store: mkdir %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil || len(id) != 36 {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

func (s *Store) paths(a Artifact) (file, meta string) {
	return filepath.Join(s.dir, a.ID+"."+a.Kind), filepath.Join(s.dir, a.ID+".json")
}

// Save writes the file and its metadata sidecar.
func (s *Store) Save(a Artifact, data []byte) error {
	if err := validateID(a.ID); err != nil {
		return err
	}
	if a.Kind != KindPDF && a.Kind != KindPNG {
		return fmt.Errorf("export store: unknown kind %q", a.Kind)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	filePath, metaPath := s.paths(a)
	if err := os.WriteFile(filePath, data, 0o644); err != nil {
		return fmt.Errorf("export store: write file: %w", err)
	}

	meta, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		_ = os.Remove(filePath)
		return fmt.Errorf("export store: marshal meta: %w", err)
	}
	if err := os.WriteFile(metaPath, meta, 0o644); err != nil {
		_ = os.Remove(filePath)
		return fmt.Errorf("export store: write meta: %w", err)
	}
	return nil
}

// Get reads artifact metadata by ID.
func (s *Store) Get(id string) (Artifact, error) {
	if err := validateID(id); err != nil {
		return Artifact{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getLocked(id)
}

func (s *Store) getLocked(id string) (Artifact, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, id+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			return Artifact{}, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return Artifact{}, fmt.Errorf("export store: read meta: %w", err)
	}
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return Artifact{}, fmt.Errorf("export store: unmarshal meta: %w", err)
	}
	return a, nil
}

// List returns all artifacts, newest first.
func (s *Store) List() ([]Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches, err := filepath.Glob(filepath.Join(s.dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("export store: glob: %w", err)
	}

	out := make([]Artifact, 0, len(matches))
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var a Artifact
		if err := json.Unmarshal(data, &a); err != nil {
			slog.Debug("export store skipped unreadable meta", "path", path, "error", err)
			continue
		}
		out = append(out, a)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// ReadFile returns the artifact and its file contents.
func (s *Store) ReadFile(id string) (Artifact, []byte, error) {
	if err := validateID(id); err != nil {
		return Artifact{}, nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	a, err := s.getLocked(id)
	if err != nil {
		return Artifact{}, nil, err
	}
	filePath, _ := s.paths(a)
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return Artifact{}, nil, fmt.Errorf("%w: file for %s", ErrNotFound, id)
		}
		return Artifact{}, nil, fmt.Errorf("export store: read file: %w", err)
	}
	return a, data, nil
}

// Delete removes the file and its metadata.
func (s *Store) Delete(id string) error {
	if err := validateID(id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.getLocked(id)
	if err != nil {
		return err
	}
	filePath, metaPath := s.paths(a)
	if err := os.Remove(filePath); err != nil {
		slog.Debug("export file cleanup failed", "id", id, "path", filePath, "error", err)
	}
	if err := os.Remove(metaPath); err != nil {
		return fmt.Errorf("export store: remove meta: %w", err)
	}
	return nil
}
