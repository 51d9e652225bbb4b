package credentials

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
)

// SettingsStore persists the AI key between runs.
type SettingsStore interface {
	// ReadKey returns the stored key. ok is false when none is stored.
	ReadKey() (key string, ok bool, err error)
	WriteKey(key string) error
}

const settingsKeyField = "geminiApiKey"

// FileSettingsStore keeps settings in a JSON object on disk. Fields other
// than the key are preserved on write.
type FileSettingsStore struct {
	path string
}

// NewFileSettingsStore builds a FileSettingsStore rooted at the provided path.
func NewFileSettingsStore(path string) *FileSettingsStore {
	return &FileSettingsStore{path: path}
}

// Path returns the backing file location.
func (s *FileSettingsStore) Path() string { return s.path }

// ReadKey reads the key from disk. A missing file resolves to no key.
func (s *FileSettingsStore) ReadKey() (string, bool, error) {
	settings, err := s.load()
	if err != nil {
		return "", false, err
	}
	raw, ok := settings[settingsKeyField]
	if !ok {
		return "", false, nil
	}
	var key string
	if err := json.Unmarshal(raw, &key); err != nil {
		return "", false, fmt.Errorf("decode %s: %w", settingsKeyField, err)
	}
	key = strings.TrimSpace(key)
	return key, key != "", nil
}

// WriteKey stores key with restricted permissions, replacing the file atomically.
func (s *FileSettingsStore) WriteKey(key string) error {
	settings, err := s.load()
	if err != nil {
		return err
	}
	encodedKey, err := json.Marshal(key)
	if err != nil {
		return fmt.Errorf("encode key: %w", err)
	}
	settings[settingsKeyField] = encodedKey

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("ensure settings directory: %w", err)
	}
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".settings-*.json")
	if err != nil {
		return fmt.Errorf("create temp settings: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write settings: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close settings: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("replace settings: %w", err)
	}
	return nil
}

func (s *FileSettingsStore) load() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]json.RawMessage{}, nil
		}
		return nil, fmt.Errorf("read settings: %w", err)
	}
	settings := map[string]json.RawMessage{}
	if len(strings.TrimSpace(string(data))) == 0 {
		return settings, nil
	}
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("decode settings %s: %w", s.path, err)
	}
	return settings, nil
}
