package blobstore

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store writes profile images somewhere and hands back a reference string.
// The identity record keeps only the reference, never bytes.
type Store interface {
	Save(filename string, r io.Reader) (ref string, err error)
}

var (
	ErrMissingFileName = errors.New("file name is required")
	ErrBadExtension    = errors.New("file type is not allowed")
	ErrTooLarge        = errors.New("file exceeds maximum allowed size")
)

// MaxImageSize caps profile uploads (5 MB).
const MaxImageSize = 5 * 1024 * 1024

var allowedExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".gif":  {},
	".webp": {},
}

// DiskStore keeps uploads under a local directory, the reference is the
// generated file name. Uploaded names are discarded, only the extension
// survives, so path traversal via the filename is a non-issue.
type DiskStore struct {
	dir string
}

func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	return &DiskStore{dir: dir}, nil
}

func (s *DiskStore) Save(filename string, r io.Reader) (string, error) {
	if strings.TrimSpace(filename) == "" {
		return "", ErrMissingFileName
	}

	ext := strings.ToLower(filepath.Ext(filename))

	if _, ok := allowedExtensions[ext]; !ok {
		return "", ErrBadExtension
	}

	ref := uuid.NewString() + ext

	f, err := os.Create(filepath.Join(s.dir, ref))

	if err != nil {
		return "", err
	}

	defer f.Close()

	n, err := io.Copy(f, io.LimitReader(r, MaxImageSize+1))

	if err != nil {
		_ = os.Remove(f.Name())
		return "", err
	}

	if n > MaxImageSize {
		_ = os.Remove(f.Name())
		return "", ErrTooLarge
	}

	return ref, nil
}
