package remote

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"mythoughts/internal/backend"
)

// sessionFile persists the signed-in identity between runs.
type sessionFile struct {
	path string
}

func (s sessionFile) load() (backend.Identity, bool, error) {
	if s.path == "" {
		return backend.Identity{}, false, nil
	}
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return backend.Identity{}, false, nil
	}
	if err != nil {
		return backend.Identity{}, false, err
	}
	var id backend.Identity
	if err := json.Unmarshal(b, &id); err != nil {
		return backend.Identity{}, false, err
	}
	return id, id.Token != "", nil
}

func (s sessionFile) save(id backend.Identity) error {
	if s.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	b, err := json.Marshal(id)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, b, 0o600)
}

func (s sessionFile) clear() error {
	if s.path == "" {
		return nil
	}
	err := os.Remove(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
