package ingest

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// TempStore owns the upload directory. Names are prefixed with the upload time in
// milliseconds so concurrent uploads of the same file do not collide.
type TempStore struct {
	dir    string
	logger *slog.Logger
	now    func() time.Time
}

func NewTempStore(dir string, logger *slog.Logger) *TempStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &TempStore{dir: dir, logger: logger, now: time.Now}
}

// Dir returns the upload directory.
func (s *TempStore) Dir() string { return s.dir }

// TempFile is an uploaded file on disk. Release removes it.
type TempFile struct {
	Path         string
	OriginalName string
	Size         int64

	logger *slog.Logger
	once   sync.Once
	err    error
}

// Save copies r into a new file named "<unixmilli>-<base of name>".
func (s *TempStore) Save(name string, r io.Reader) (*TempFile, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		s.logger.Error("ingest.mkdir_error", "dir", s.dir, "error", err)
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	base := sanitizeName(name)
	stamp := s.now().UnixMilli()
	path := filepath.Join(s.dir, fmt.Sprintf("%d-%s", stamp, base))

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if errors.Is(err, fs.ErrExist) {
		// same name within the same millisecond
		path = filepath.Join(s.dir, fmt.Sprintf("%d-%s-%s", stamp, uuid.NewString()[:8], base))
		f, err = os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	}
	if err != nil {
		s.logger.Error("ingest.create_error", "path", path, "error", err)
		return nil, fmt.Errorf("create temp file: %w", err)
	}

	n, copyErr := io.Copy(f, r)
	closeErr := f.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		s.logger.Error("ingest.write_error", "path", path, "error", err)
		if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			s.logger.Warn("ingest.remove_error", "path", path, "error", rmErr)
		}
		return nil, fmt.Errorf("write temp file: %w", err)
	}

	s.logger.Debug("ingest.saved", "path", path, "bytes", n)
	return &TempFile{Path: path, OriginalName: name, Size: n, logger: s.logger}, nil
}

// Release deletes the file. It is safe to call more than once and never panics;
// a file that is already gone counts as released.
func (t *TempFile) Release() error {
	if t == nil {
		return nil
	}
	t.once.Do(func() {
		err := os.Remove(t.Path)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			t.logger.Warn("ingest.release_error", "path", t.Path, "error", err)
			t.err = err
			return
		}
		t.logger.Debug("ingest.released", "path", t.Path)
	})
	return t.err
}

// With saves r, runs fn on the stored file, and releases it on every exit path.
// Release is best-effort: failures are logged and never change fn's result.
func (s *TempStore) With(name string, r io.Reader, fn func(*TempFile) error) error {
	tf, err := s.Save(name, r)
	if err != nil {
		return err
	}
	defer func() { _ = tf.Release() }()
	return fn(tf)
}

func sanitizeName(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" || base == "" {
		return "upload"
	}
	return base
}
