package services

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"hatstore-backend/internal/models"
)

// The stores below keep the "file as database" contract of the original
// deployment: whole-document reads and writes of small JSON files, last
// write wins. Concurrent writers to the same file may race; callers accept
// that. Swapping in a real store only requires a new implementation of
// these interfaces.

// SessionStore persists per-user auth sessions as one document.
type SessionStore interface {
	Load() (map[string]models.SessionRecord, error)
	Save(sessions map[string]models.SessionRecord) error
}

// LastSpinStore keeps exactly one record: the most recent spin.
type LastSpinStore interface {
	Write(snapshot models.SpinSnapshot) error
}

// MappingSource provides the raw dice-mapping rows.
type MappingSource interface {
	Read() ([]models.MappingEntry, error)
}

type FileSessionStore struct {
	path string
}

func NewFileSessionStore(path string) *FileSessionStore {
	return &FileSessionStore{path: path}
}

func (s *FileSessionStore) Load() (map[string]models.SessionRecord, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]models.SessionRecord{}, nil
		}
		return nil, fmt.Errorf("failed to read sessions file: %v", err)
	}

	sessions := map[string]models.SessionRecord{}
	if err := json.Unmarshal(data, &sessions); err != nil {
		return nil, fmt.Errorf("failed to parse sessions file: %v", err)
	}

	return sessions, nil
}

func (s *FileSessionStore) Save(sessions map[string]models.SessionRecord) error {
	data, err := json.MarshalIndent(sessions, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal sessions: %v", err)
	}

	if err := writeFile(s.path, data); err != nil {
		return fmt.Errorf("failed to write sessions file: %v", err)
	}

	return nil
}

type FileLastSpinStore struct {
	path string
}

func NewFileLastSpinStore(path string) *FileLastSpinStore {
	return &FileLastSpinStore{path: path}
}

func (s *FileLastSpinStore) Write(snapshot models.SpinSnapshot) error {
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal last spin: %v", err)
	}

	if err := writeFile(s.path, data); err != nil {
		return fmt.Errorf("failed to write last spin file: %v", err)
	}

	return nil
}

type FileMappingSource struct {
	path string
}

func NewFileMappingSource(path string) *FileMappingSource {
	return &FileMappingSource{path: path}
}

func (s *FileMappingSource) Read() ([]models.MappingEntry, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping file: %v", err)
	}

	var entries []models.MappingEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse mapping file: %v", err)
	}

	return entries, nil
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
