package blob

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// StagingDir holds partially written objects; it is never part of the key space
const StagingDir = ".staging"

type fsStore struct {
	root   string
	bucket string
}

// NewFS creates a Store whose objects are files below root
func NewFS(root, bucket string) (Store, error) {
	if err := os.MkdirAll(filepath.Join(root, StagingDir), 0755); err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}
	return &fsStore{root: root, bucket: bucket}, nil
}

func (s *fsStore) Bucket() string {
	return s.bucket
}

func (s *fsStore) path(key string) (string, error) {
	clean := path.Clean("/" + key)
	if key == "" || strings.HasSuffix(key, "/") || clean != "/"+key {
		return "", fmt.Errorf("invalid key %q", key)
	}
	if strings.HasPrefix(key, StagingDir+"/") {
		return "", fmt.Errorf("reserved key %q", key)
	}
	return filepath.Join(s.root, filepath.FromSlash(key)), nil
}

func (s *fsStore) Get(ctx context.Context, key string) ([]byte, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("get %s: %w", key, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return data, nil
}

// Put writes the object into the staging dir and renames it into place so
// watchers only ever observe complete objects
func (s *fsStore) Put(ctx context.Context, key string, body []byte) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return fmt.Errorf("put %s: create dir: %w", key, err)
	}

	tmp, err := os.CreateTemp(filepath.Join(s.root, StagingDir), "put-*")
	if err != nil {
		return fmt.Errorf("put %s: create temp: %w", key, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		return fmt.Errorf("put %s: write: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("put %s: close: %w", key, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("put %s: chmod: %w", key, err)
	}
	if err := os.Rename(tmpName, p); err != nil {
		return fmt.Errorf("put %s: rename: %w", key, err)
	}
	return nil
}

func (s *fsStore) Exists(ctx context.Context, key string) (bool, error) {
	p, err := s.path(key)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(p)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("head %s: %w", key, err)
	}
	return !info.IsDir(), nil
}

func (s *fsStore) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(s.root, p)
		if relErr != nil {
			return relErr
		}
		key := filepath.ToSlash(rel)
		if d.IsDir() {
			if key == StagingDir {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return ctx.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", prefix, err)
	}
	sort.Strings(keys)
	return keys, nil
}
