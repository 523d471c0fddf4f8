package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
)

// FileSlot keeps each slot as <Dir>/<key>.json. Writes go through a temp file
// and a rename; the previous content is kept as <key>.json.bak.
type FileSlot struct {
	Dir string
}

func (f *FileSlot) path(key string) string {
	return filepath.Join(f.Dir, key+".json")
}

func (f *FileSlot) Get(_ context.Context, key string) ([]byte, bool, error) {
	if err := validateKey(key); err != nil {
		return nil, false, err
	}
	b, err := os.ReadFile(f.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return b, true, nil
}

func (f *FileSlot) Put(_ context.Context, key string, b []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := os.MkdirAll(f.Dir, 0o755); err != nil {
		return err
	}
	path := f.path(key)

	// Best-effort: keep the previous version around for manual recovery.
	if prev, err := os.ReadFile(path); err == nil && len(prev) > 0 {
		_ = atomicWriteFile(f.Dir, key+".json.bak.*.tmp", path+".bak", prev, 0o644)
	}
	return atomicWriteFile(f.Dir, key+".json.*.tmp", path, b, 0o644)
}

func (f *FileSlot) Close() error { return nil }

// atomicWriteFile writes through a uniquely named temp file so concurrent
// writers (CLI + TUI + web) never observe a torn file.
func atomicWriteFile(dir, tmpPattern, path string, b []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, perm)
	return os.Rename(tmp, path)
}
