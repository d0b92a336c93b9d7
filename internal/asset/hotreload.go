package asset

import (
	"fmt"

	"go.uber.org/zap"
)

// ScanForChanges reloads watched assets whose file changed since the last
// scan. Unreferenced assets and files that are still being written are
// skipped and looked at again next frame. It returns the number of reloads.
func (c *Cache) ScanForChanges() int {
	reloaded := 0
	// reload may grow c.watches, so index rather than range over a copy.
	for i := 0; i < len(c.watches); i++ {
		key := c.watches[i].key
		rec := c.records[key]

		mt, err := c.fs.ModTime(rec.ResolvedPath)
		if err != nil {
			c.log.Debug("hot reload stat failed", zap.String("identifier", rec.Identifier), zap.Error(err))
			continue
		}
		if mt.Equal(c.watches[i].modTime) {
			continue
		}
		if c.liveRefs(key) == 0 {
			continue
		}
		if c.fs.InUse(rec.ResolvedPath) {
			c.log.Debug("hot reload deferred, file in use", zap.String("identifier", rec.Identifier))
			continue
		}

		done, err := c.reload(key)
		if err != nil {
			c.log.Error("hot reload failed", zap.String("identifier", rec.Identifier), zap.Error(err))
		} else if done {
			reloaded++
		}
		c.watches[i].modTime = mt
		c.log.Info("asset changed on disk",
			zap.String("identifier", rec.Identifier),
			zap.String("path", rec.ResolvedPath),
			zap.Bool("reloaded", done))
	}
	return reloaded
}

// UpdateHotReloading is the per-frame hook for ScanForChanges.
func (c *Cache) UpdateHotReloading() int { return c.ScanForChanges() }

// reload refreshes a loaded root in place when it supports that, and
// otherwise frees it and loads a new instance. Pointers to the old instance
// are invalid after a full reload.
func (c *Cache) reload(key Key) (bool, error) {
	e, ok := c.loaded[key]
	if !ok || e.asset == nil {
		return false, nil
	}
	rec := c.records[key]

	if r, ok := e.asset.(Reloader); ok {
		err := r.Reload(LoadContext{
			Identifier: rec.Identifier,
			Key:        key,
			Path:       rec.ResolvedPath,
			FS:         c.fs,
			Log:        c.log,
		})
		if err != nil {
			return false, fmt.Errorf("asset: reload %s in place: %w", rec.Identifier, err)
		}
		c.dropChildren(key)
		c.attachChildren(key)
		return true, nil
	}

	c.FreeKey(key)
	if _, err := c.resolve(key); err != nil {
		return false, err
	}
	return true, nil
}
