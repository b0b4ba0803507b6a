package blockcache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/heliodyne/pulseview/codec"
	"github.com/heliodyne/pulseview/types"
)

// FSStore persists blocks as files under a cache directory. Files are
// sharded by fingerprint prefix to keep directory sizes bounded; the file
// modification time serves as StoredAt.
type FSStore struct {
	root string
}

// NewFSStore creates the cache directory if needed and returns a store
// rooted there.
func NewFSStore(root string) (*FSStore, error) {
	if root == "" {
		return nil, errors.New("blockcache: cache directory is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("blockcache: create cache directory: %w", err)
	}
	return &FSStore{root: root}, nil
}

func (s *FSStore) path(fp types.Fingerprint) string {
	key := string(fp)
	if len(key) < 2 {
		return filepath.Join(s.root, key+".pvb")
	}
	return filepath.Join(s.root, key[:2], key+".pvb")
}

// Get reads the block file for fp. The content kind is re-probed from the
// stored container header.
func (s *FSStore) Get(ctx context.Context, fp types.Fingerprint) (*Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := s.path(fp)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("blockcache: stat %s: %w", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("blockcache: read %s: %w", path, err)
	}
	kind, err := codec.Kind(data)
	if err != nil {
		// A corrupt file cannot be served; treat it as absent so the
		// caller refetches and overwrites it.
		return nil, ErrNotFound
	}
	return &Entry{
		Block:    types.RawBlock{Kind: kind, Bytes: data},
		StoredAt: info.ModTime(),
	}, nil
}

// Put writes the block to a temp file and renames it into place so
// concurrent readers never observe a partial write.
func (s *FSStore) Put(ctx context.Context, fp types.Fingerprint, block types.RawBlock) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := s.path(fp)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("blockcache: create shard directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".pvb-*")
	if err != nil {
		return fmt.Errorf("blockcache: create temp file: %w", err)
	}
	if _, err := tmp.Write(block.Bytes); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("blockcache: write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("blockcache: close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("blockcache: rename into place: %w", err)
	}
	return nil
}

// Delete removes the block file for fp.
func (s *FSStore) Delete(ctx context.Context, fp types.Fingerprint) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := os.Remove(s.path(fp))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("blockcache: delete: %w", err)
	}
	return nil
}

// Clear removes every entry under the cache directory, keeping the
// directory itself.
func (s *FSStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return fmt.Errorf("blockcache: read cache directory: %w", err)
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(s.root, e.Name())); err != nil {
			return fmt.Errorf("blockcache: clear: %w", err)
		}
	}
	return nil
}

// Close is a no-op for the filesystem backend.
func (s *FSStore) Close() error { return nil }

var _ Store = (*FSStore)(nil)
