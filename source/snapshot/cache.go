package snapshot

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/syssam/modelbuilder"
)

// Cache is a modelbuilder.Cache storing one file per key in a directory.
// File names are derived from a hash of the key.
type Cache struct {
	dir string
}

var _ modelbuilder.Cache = (*Cache)(nil)

// NewCache returns a cache rooted at dir. The directory is created on
// the first Set.
func NewCache(dir string) *Cache {
	return &Cache{dir: dir}
}

// Path returns the file holding key.
func (c *Cache) Path(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:16])+".msgpack")
}

// Get implements modelbuilder.Cache.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(c.Path(key))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, modelbuilder.ErrCacheMiss
	case err != nil:
		return nil, fmt.Errorf("snapshot cache: %w", err)
	}
	return data, nil
}

// Set implements modelbuilder.Cache.
func (c *Cache) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return writeFile(c.Path(key), value)
}

// Delete implements modelbuilder.Cache. Deleting a missing key is not an error.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(c.Path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("snapshot cache: %w", err)
	}
	return nil
}
