package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// DefaultFileName is the name of the notified set file in the user's cache directory.
const DefaultFileName = "hn-telegram.json"

// DefaultPath returns the location of the notified set file in the user's cache directory.
func DefaultPath() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoLocation, err)
	}
	return filepath.Join(dir, DefaultFileName), nil
}

// File keeps the notified set as a JSON array in a single file.
// An empty Path means the location is unknown: loads yield an empty set
// and saves fail.
type File struct {
	Path string
}

// Load reads ids from the file. A missing file is an empty set.
func (f *File) Load(context.Context) ([]uint64, error) {
	if f.Path == "" {
		return nil, ErrNoLocation
	}

	bts, err := os.ReadFile(f.Path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("read %s: %w", f.Path, err)
	}

	var ids []uint64
	if err = json.Unmarshal(bts, &ids); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", f.Path, err)
	}

	return ids, nil
}

// Save replaces the file with the given ids. The file is written aside
// and renamed over the old one, so readers never see a partial write.
func (f *File) Save(_ context.Context, ids []uint64) error {
	if f.Path == "" {
		return &PersistError{Err: ErrNoLocation}
	}

	if ids == nil {
		ids = []uint64{}
	}

	bts, err := json.Marshal(ids)
	if err != nil {
		return &PersistError{Location: f.Path, Err: fmt.Errorf("marshal: %w", err)}
	}

	if err = writeAtomic(f.Path, bts); err != nil {
		return &PersistError{Location: f.Path, Err: err}
	}

	return nil
}

// Close does nothing, the file is not kept open.
func (f *File) Close() error { return nil }

func writeAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err = os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("make dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}

	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}
