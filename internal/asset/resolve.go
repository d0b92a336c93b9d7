package asset

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"
)

// Resolve returns the asset behind h, loading it on first access.
// Failures are logged and returned; the cache is left unchanged.
func (c *Cache) Resolve(h *Handle) (Asset, error) {
	if !h.Valid() {
		return nil, ErrNullHandle
	}
	return c.resolve(h.key)
}

func (c *Cache) resolve(key Key) (Asset, error) {
	if a, ok := c.lookup(key); ok {
		return a, nil
	}

	rec, ok := c.records[key]
	if !ok {
		return nil, c.fail(fmt.Sprintf("%#016x", uint64(key)), ErrUnknownKey)
	}
	if rec.BasePath == "" {
		return nil, c.fail(rec.Identifier, ErrMalformedIdentifier)
	}

	kind := KindOf(rec.BasePath)
	loader, ok := c.loaders[kind]
	if kind == KindUnknown || !ok {
		return nil, c.fail(rec.Identifier, fmt.Errorf("%w: %q", ErrUnsupportedType, filepath.Ext(rec.BasePath)))
	}

	// Loads always happen against the root identifier.
	rootKey := key
	if rec.IsSubAsset() {
		rootKey = c.Intern(rec.BasePath)
		if _, ok := c.loaded[rootKey]; ok {
			c.attachChildren(rootKey)
			return c.subAsset(key)
		}
	}
	root := c.records[rootKey]

	path, ok := c.locate(root.BasePath)
	if !ok {
		return nil, c.fail(rec.Identifier, ErrNotFound)
	}
	root.ResolvedPath = path
	rec.ResolvedPath = path

	a, err := loader.Load(LoadContext{
		Identifier: root.Identifier,
		Key:        rootKey,
		Path:       path,
		FS:         c.fs,
		Log:        c.log,
	})
	if err != nil {
		return nil, c.fail(rec.Identifier, fmt.Errorf("%w: %w", ErrLoadFailed, err))
	}
	c.Register(a, root.Identifier)
	c.log.Debug("asset loaded",
		zap.String("identifier", root.Identifier),
		zap.Stringer("kind", a.Kind()),
		zap.String("path", path))

	if !rec.IsSubAsset() {
		return a, nil
	}
	return c.subAsset(key)
}

func (c *Cache) subAsset(key Key) (Asset, error) {
	if a, ok := c.lookup(key); ok {
		return a, nil
	}
	return nil, c.fail(c.records[key].Identifier, ErrSubAssetNotFound)
}

// locate probes the game root, then the engine root, for base.
func (c *Cache) locate(base string) (string, bool) {
	rel := filepath.FromSlash(base)
	for _, root := range [...]string{c.gameRoot, c.engineRoot} {
		if root == "" {
			continue
		}
		p := filepath.Join(root, rel)
		if c.fs.Exists(p) {
			return p, true
		}
	}
	return "", false
}

func (c *Cache) fail(id string, err error) error {
	err = fmt.Errorf("asset: resolve %s: %w", id, err)
	c.log.Error("asset resolve failed", zap.String("identifier", id), zap.Error(err))
	return err
}
