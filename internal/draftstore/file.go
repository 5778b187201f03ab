package draftstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"syscall"

	"go.uber.org/zap"
)

const tempPrefix = ".tmp-"

var originPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// FileStore keeps one file per draft under <root>/<origin>.
//
// Writes go to a temporary file that is renamed over the target, so a reader
// never observes a partial draft.
type FileStore struct {
	dir    string
	quota  int64
	logger *zap.Logger

	mu sync.Mutex // serializes quota accounting with writes
}

// FileOption configures a FileStore.
type FileOption func(*FileStore)

// WithFileQuota limits the total bytes of draft files in the origin directory.
func WithFileQuota(bytes int64) FileOption {
	return func(s *FileStore) { s.quota = bytes }
}

// WithFileLogger sets the logger.
func WithFileLogger(l *zap.Logger) FileOption {
	return func(s *FileStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewFileStore creates the origin directory if needed and returns a store on it.
func NewFileStore(root, origin string, opts ...FileOption) (*FileStore, error) {
	if root == "" {
		return nil, errors.New("file store root is required")
	}
	if !originPattern.MatchString(origin) {
		return nil, fmt.Errorf("invalid origin %q", origin)
	}

	s := &FileStore{
		dir:    filepath.Join(root, origin),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return nil, fmt.Errorf("%w: creating %s: %v", ErrUnavailable, s.dir, err)
	}
	return s, nil
}

// Dir returns the origin directory.
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, fileName(key))
}

// fileName maps a key to a single safe path element. A leading dot is escaped
// so no draft file is hidden or mistaken for a temp file.
func fileName(key string) string {
	name := url.QueryEscape(key)
	if strings.HasPrefix(name, ".") {
		name = "%2E" + name[1:]
	}
	return name
}

// keyFromFile reverses fileName. ok is false for temp files and foreign names.
func keyFromFile(name string) (string, bool) {
	if strings.HasPrefix(name, tempPrefix) {
		return "", false
	}
	key, err := url.QueryUnescape(name)
	if err != nil {
		return "", false
	}
	return key, true
}

// Get implements Store.
func (s *FileStore) Get(_ context.Context, key string) (string, bool, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("reading draft %q: %w", key, err)
	}
	return string(data), true, nil
}

// Set implements Store.
func (s *FileStore) Set(_ context.Context, key, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	target := s.path(key)

	if s.quota > 0 {
		used, err := s.usage()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		if info, err := os.Stat(target); err == nil {
			used -= info.Size()
		}
		if used+int64(len(content)) > s.quota {
			return ErrQuotaExceeded
		}
	}

	tmp, err := os.CreateTemp(s.dir, tempPrefix+"*")
	if err != nil {
		return classifyWriteError(err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.WriteString(content); err != nil {
		_ = tmp.Close()
		cleanup()
		return classifyWriteError(err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return classifyWriteError(err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return classifyWriteError(err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		cleanup()
		return classifyWriteError(err)
	}

	s.logger.Debug("draft written", zap.String("key", key), zap.Int("bytes", len(content)))
	return nil
}

// Remove implements Store.
func (s *FileStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing draft %q: %w", key, err)
	}
	return nil
}

// Keys implements Lister.
func (s *FileStore) Keys(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing drafts: %w", err)
	}

	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if key, ok := keyFromFile(e.Name()); ok {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// usage returns the bytes used by draft files. Caller holds s.mu.
func (s *FileStore) usage() (int64, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, e := range entries {
		if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), tempPrefix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		total += info.Size()
	}
	return total, nil
}

func classifyWriteError(err error) error {
	if errors.Is(err, syscall.ENOSPC) || errors.Is(err, syscall.EDQUOT) {
		return fmt.Errorf("%w: %v", ErrQuotaExceeded, err)
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
