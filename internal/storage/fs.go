package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// FSStore reads artifacts from a directory.
type FSStore struct{ base string }

func NewFSStore(base string) (*FSStore, error) {
	if base == "" {
		base = "./artifacts"
	}
	st, err := os.Stat(base)
	if err != nil {
		return nil, fmt.Errorf("artifact dir: %w", err)
	}
	if !st.IsDir() {
		return nil, fmt.Errorf("artifact dir %s is not a directory", base)
	}
	return &FSStore{base: base}, nil
}

// resolve keeps keys inside the base directory.
func (s *FSStore) resolve(key string) (string, error) {
	if key == "" {
		return "", errors.New("empty key")
	}
	clean := path.Clean("/" + strings.ReplaceAll(key, "\\", "/"))
	return filepath.Join(s.base, filepath.FromSlash(strings.TrimPrefix(clean, "/"))), nil
}

func (s *FSStore) Open(key string) (io.ReadCloser, error) {
	p, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return f, err
}

func (s *FSStore) Stat(key string) (Info, error) {
	p, err := s.resolve(key)
	if err != nil {
		return Info{}, err
	}
	st, err := os.Stat(p)
	if errors.Is(err, fs.ErrNotExist) {
		return Info{}, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return Info{}, err
	}
	return Info{Key: key, Size: st.Size(), ModTime: st.ModTime()}, nil
}
