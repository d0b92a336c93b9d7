package asset

import (
	"fmt"
	"reflect"
	"strconv"
	"time"

	"go.uber.org/zap"

	"mu-asset-cache/internal/fsys"
)

// Options configures a Cache.
type Options struct {
	GameRoot   string // searched first
	EngineRoot string // fallback search root
	HotReload  bool
	FS         fsys.FS // defaults to fsys.OS
	Loaders    map[Kind]Loader
	Log        *zap.Logger
}

// Cache maps identifiers to lazily loaded assets and tracks the handles on
// them. It is driven from the frame loop and is not safe for concurrent use.
type Cache struct {
	gameRoot   string
	engineRoot string
	hotReload  bool
	fs         fsys.FS
	loaders    map[Kind]Loader
	log        *zap.Logger

	records map[Key]*Record
	order   []Key // records in interning order
	loaded  map[Key]*entry
	watches []watch
	watched map[Key]struct{}
}

// entry is a slot in the loaded-asset table. Root assets are owned by their
// entry; a sub-asset entry only names its parent and an index into it.
type entry struct {
	asset  Asset
	parent Key
	index  int
}

type watch struct {
	key     Key
	modTime time.Time
}

// New creates an empty cache.
func New(opts Options) *Cache {
	c := &Cache{
		gameRoot:   opts.GameRoot,
		engineRoot: opts.EngineRoot,
		hotReload:  opts.HotReload,
		fs:         opts.FS,
		loaders:    make(map[Kind]Loader, len(opts.Loaders)),
		log:        opts.Log,
		records:    make(map[Key]*Record),
		loaded:     make(map[Key]*entry),
		watched:    make(map[Key]struct{}),
	}
	if c.fs == nil {
		c.fs = fsys.OS{}
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	for k, l := range opts.Loaders {
		c.loaders[k] = l
	}
	return c
}

// Close frees every loaded asset. Records and outstanding handles stay valid;
// resolving them afterwards loads the assets again.
func (c *Cache) Close() {
	for _, key := range c.order {
		if !c.records[key].IsSubAsset() {
			c.FreeKey(key)
		}
	}
}

// Register inserts a under id and enrolls it for hot reloading. It does not
// change any reference count. A different asset already registered under a
// root id is released.
func (c *Cache) Register(a Asset, id string) Key {
	key := c.Intern(id)
	rec := c.records[key]

	if old, ok := c.loaded[key]; ok && old.asset != nil && !sameAsset(old.asset, a) && !rec.IsSubAsset() {
		c.dropChildren(key)
		old.asset.Release()
	}
	c.loaded[key] = &entry{asset: a}

	if !rec.IsSubAsset() {
		c.attachChildren(key)
		c.enroll(key)
	}
	return key
}

// sameAsset reports whether a and b are the same instance. Comparing two
// interfaces holding a non-comparable dynamic type panics, so those never match.
func sameAsset(a, b Asset) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}

// attachChildren registers sub-asset entries for every child of a loaded
// composite root.
func (c *Cache) attachChildren(root Key) {
	e, ok := c.loaded[root]
	if !ok {
		return
	}
	comp, ok := e.asset.(Composite)
	if !ok {
		return
	}
	base := c.records[root].BasePath
	for i := 0; i < comp.SubAssetCount(); i++ {
		ck := c.Intern(base + ":" + strconv.Itoa(i))
		if _, ok := c.loaded[ck]; !ok {
			c.loaded[ck] = &entry{parent: root, index: i}
		}
	}
}

// dropChildren removes every sub-asset entry aliasing root.
func (c *Cache) dropChildren(root Key) {
	for _, ck := range c.records[root].children {
		delete(c.loaded, ck)
	}
}

func (c *Cache) enroll(key Key) {
	if !c.hotReload {
		return
	}
	if _, ok := c.watched[key]; ok {
		return
	}
	rec := c.records[key]
	if rec.ResolvedPath == "" || !KindOf(rec.ResolvedPath).hotReloadable() {
		return
	}
	mt, err := c.fs.ModTime(rec.ResolvedPath)
	if err != nil {
		c.log.Warn("hot reload enrollment skipped",
			zap.String("identifier", rec.Identifier), zap.Error(err))
		return
	}
	c.watched[key] = struct{}{}
	c.watches = append(c.watches, watch{key: key, modTime: mt})
}

// lookup returns the loaded asset for key without loading anything.
func (c *Cache) lookup(key Key) (Asset, bool) {
	e, ok := c.loaded[key]
	if !ok {
		return nil, false
	}
	if e.asset != nil {
		return e.asset, true
	}
	parent, ok := c.loaded[e.parent]
	if !ok {
		return nil, false
	}
	comp, ok := parent.asset.(Composite)
	if !ok || e.index >= comp.SubAssetCount() {
		return nil, false
	}
	return comp.SubAsset(e.index), true
}

// Free releases the asset behind h regardless of its reference count.
func (c *Cache) Free(h *Handle) {
	c.FreeKey(h.Key())
}

// FreeIdentifier frees the asset registered under id, if any.
func (c *Cache) FreeIdentifier(id string) {
	c.FreeKey(HashIdentifier(id))
}

// FreeKey removes key from the loaded table. Root assets are released and
// take their sub-asset entries with them; sub-assets are only unlinked,
// since their storage belongs to the parent.
func (c *Cache) FreeKey(key Key) {
	e, ok := c.loaded[key]
	if !ok {
		return
	}
	delete(c.loaded, key)

	rec := c.records[key]
	if rec == nil || rec.IsSubAsset() {
		return
	}
	c.dropChildren(key)
	if e.asset != nil {
		e.asset.Release()
	}
}

// Loaded reports whether key currently has a loaded asset.
func (c *Cache) Loaded(key Key) bool {
	_, ok := c.loaded[key]
	return ok
}

// Len returns the number of loaded-table entries, sub-assets included.
func (c *Cache) Len() int { return len(c.loaded) }

// Identifier returns the full identifier h was created from.
func (c *Cache) Identifier(h *Handle) string {
	if rec, ok := c.records[h.Key()]; ok {
		return rec.Identifier
	}
	return ""
}

// IsSubAsset reports whether h names a sub-asset.
func (c *Cache) IsSubAsset(h *Handle) bool {
	rec, ok := c.records[h.Key()]
	return ok && rec.IsSubAsset()
}

// Get resolves h and asserts the asset's concrete type.
func Get[T Asset](c *Cache, h *Handle) (T, error) {
	var zero T
	a, err := c.Resolve(h)
	if err != nil {
		return zero, err
	}
	t, ok := a.(T)
	if !ok {
		return zero, fmt.Errorf("asset: get %s as %T (have %T): %w", c.Identifier(h), zero, a, ErrTypeMismatch)
	}
	return t, nil
}
