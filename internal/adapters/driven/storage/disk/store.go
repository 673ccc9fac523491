package disk

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

const (
	objectsDir = "objects"
	entryExt   = ".json"
)

// Ensure Store implements the interface.
var _ driven.BlobStore = (*Store)(nil)

// Store keeps cache entries as files under a root directory.
type Store struct {
	rootDir string
}

// NewStore creates or opens a store at rootDir.
// If rootDir is empty, defaults to ~/.docqa/cache.
func NewStore(rootDir string) (*Store, error) {
	if rootDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		rootDir = filepath.Join(home, ".docqa", "cache")
	}

	if err := os.MkdirAll(filepath.Join(rootDir, objectsDir), 0700); err != nil {
		return nil, fmt.Errorf("create store directory %s: %w", rootDir, err)
	}

	return &Store{rootDir: rootDir}, nil
}

// Root returns the store's root directory.
func (s *Store) Root() string {
	return s.rootDir
}

// Get reads the entry for key.
func (s *Store) Get(_ context.Context, key string) (*domain.CacheEntry, error) {
	data, err := os.ReadFile(s.objectPath(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("read entry %s: %w", key, err)
	}

	var entry domain.CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrCacheCorrupt, key, err)
	}
	if entry.Key != key || entry.Fingerprint == "" {
		return nil, fmt.Errorf("%w: %s: entry header mismatch", domain.ErrCacheCorrupt, key)
	}
	return &entry, nil
}

// Put writes the entry atomically, replacing any existing one.
func (s *Store) Put(_ context.Context, entry *domain.CacheEntry) error {
	if entry == nil || entry.Key == "" {
		return domain.ErrInvalidInput
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal entry %s: %w", entry.Key, err)
	}

	path := s.objectPath(entry.Key)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create shard directory: %w", err)
	}

	return writeFileAtomic(dir, path, data)
}

// Delete removes the entry file for key.
func (s *Store) Delete(_ context.Context, key string) error {
	err := os.Remove(s.objectPath(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove entry %s: %w", key, err)
	}
	return nil
}

// Keys walks the store and returns every readable entry's key, sorted.
// Unreadable files are skipped.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	root := filepath.Join(s.rootDir, objectsDir)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), entryExt) {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("Skipping unreadable cache file %s: %v", path, err)
			return nil
		}
		var header struct {
			Key string `json:"key"`
		}
		if err := json.Unmarshal(data, &header); err != nil || header.Key == "" {
			logger.Warn("Skipping corrupt cache file %s", path)
			return nil
		}
		keys = append(keys, header.Key)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk store: %w", err)
	}

	sort.Strings(keys)
	return keys, nil
}

// Close is a no-op; the store holds no open handles.
func (s *Store) Close() error {
	return nil
}

// objectPath maps a key to its sharded file path.
func (s *Store) objectPath(key string) string {
	sum := sha256.Sum256([]byte(key))
	h := hex.EncodeToString(sum[:])
	return filepath.Join(s.rootDir, objectsDir, h[:2], h[2:]+entryExt)
}

// writeFileAtomic writes data to a temp file in dir and renames it to path.
func writeFileAtomic(dir, path string, data []byte) (err error) {
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
