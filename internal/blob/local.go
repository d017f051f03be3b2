package blob

import (
	"context"
	"fmt"
	gopath "path"
	"path/filepath"

	"docqa/internal/util"
)

// LocalStore keeps blobs under a root directory on disk. The default backend;
// writes are atomic so a crashed upload never leaves a torn file.
type LocalStore struct {
	root string
}

func NewLocalStore(root string) (*LocalStore, error) {
	if err := util.EnsureDir(root); err != nil {
		return nil, err
	}
	return &LocalStore{root: root}, nil
}

func (s *LocalStore) Put(ctx context.Context, path string, data []byte) error {
	_ = ctx
	if path == "" {
		return fmt.Errorf("empty blob path")
	}
	// Rooted clean keeps untrusted names inside the store directory.
	rel := gopath.Clean("/" + path)
	full := filepath.Join(s.root, filepath.FromSlash(rel))
	return util.WriteFileAtomic(full, data)
}
