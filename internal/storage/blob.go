package storage

import (
	"errors"
	"io"
	"time"
)

// ErrNotFound is returned when an artifact key does not exist.
var ErrNotFound = errors.New("artifact not found")

// ArtifactStore serves the static model artifacts. Keys are slash separated
// and relative to the store root.
type ArtifactStore interface {
	Open(key string) (io.ReadCloser, error)
	Stat(key string) (Info, error)
}

// Info describes one stored artifact.
type Info struct {
	Key     string
	Size    int64
	ModTime time.Time
}
