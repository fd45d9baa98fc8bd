// Package legacy reads and deletes the flat key/value storage left behind
// by earlier releases, which kept everything in one JSON file of string
// keys. The package exists only to feed the one-shot migration into the
// record store; nothing writes new data here except the migration flag.
package legacy

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Keys used by the legacy storage format.
const (
	KeyMemories    = "business_mentor_memories"
	KeyCanvas      = "business_mentor_canvas"
	KeyModelInputs = "business_mentor_model_inputs"
	KeyTheme       = "theme"

	// KeyMigrated is the boolean migration-complete flag.
	KeyMigrated = "idb_migration_complete"
)

// FileStore is a flat string-to-string map persisted as one JSON file.
// Mutations rewrite the file atomically (temp file + rename).
//
// FileStore is not safe for concurrent use; the migration runner holds a
// file lock around the whole pass.
type FileStore struct {
	path string
}

// NewFileStore returns a store over the file at path. The file may be
// absent; that is simply an empty store.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Get returns the raw value for key and whether it was present.
func (f *FileStore) Get(key string) (string, bool, error) {
	data, err := f.load()
	if err != nil {
		return "", false, err
	}
	v, ok := data[key]
	return v, ok, nil
}

// Set stores a raw value for key.
func (f *FileStore) Set(key, value string) error {
	data, err := f.load()
	if err != nil {
		return err
	}
	data[key] = value
	return f.save(data)
}

// Delete removes key. Deleting an absent key is a no-op.
func (f *FileStore) Delete(key string) error {
	data, err := f.load()
	if err != nil {
		return err
	}
	if _, ok := data[key]; !ok {
		return nil
	}
	delete(data, key)
	return f.save(data)
}

// Empty reports whether no legacy keys remain.
func (f *FileStore) Empty() (bool, error) {
	data, err := f.load()
	if err != nil {
		return false, err
	}
	return len(data) == 0, nil
}

func (f *FileStore) load() (map[string]string, error) {
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading legacy storage: %w", err)
	}

	data := map[string]string{}
	if len(raw) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parsing legacy storage: %w", err)
	}
	return data, nil
}

func (f *FileStore) save(data map[string]string) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding legacy storage: %w", err)
	}

	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, ".legacy-*")
	if err != nil {
		return fmt.Errorf("writing legacy storage: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing legacy storage: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing legacy storage: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("replacing legacy storage: %w", err)
	}
	return nil
}
