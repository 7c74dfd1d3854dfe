// Package file is the filesystem kv.Store adapter: one file per key inside
// a data directory, defaulting to the XDG data home.
package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

type Store struct {
	dir string
}

// New uses dir as the snapshot directory, creating it if needed. An empty
// dir falls back to <xdg data home>/vendorpay.
func New(dir string) (*Store, error) {
	if dir == "" {
		dir = filepath.Join(xdg.DataHome, "vendorpay")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	b, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read snapshot %q: %w", key, err)
	}
	return b, true, nil
}

func (s *Store) Set(_ context.Context, key string, value []byte) error {
	path := s.path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, value, 0o644); err != nil {
		return fmt.Errorf("write snapshot %q: %w", key, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace snapshot %q: %w", key, err)
	}
	return nil
}

// path maps a logical key to a file name, flattening separators so keys
// cannot escape the data dir.
func (s *Store) path(key string) string {
	name := strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(key)
	return filepath.Join(s.dir, name+".json")
}
