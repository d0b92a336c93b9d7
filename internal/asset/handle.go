package asset

import "fmt"

// Handle is a counted reference to an asset record. It is not a pointer to
// the loaded asset: resolve it through the Cache every time it is used.
//
// A Handle must be released exactly once. Use Clone for an additional
// reference and Move to hand ownership elsewhere; copying the pointer does
// not add a reference.
type Handle struct {
	key   Key
	cache *Cache
}

// Acquire interns id and returns a handle holding one reference to it.
func (c *Cache) Acquire(id string) *Handle {
	key := c.Intern(id)
	c.records[key].RefCount++
	return &Handle{key: key, cache: c}
}

// AcquireKey returns a new handle for an already-interned key.
func (c *Cache) AcquireKey(key Key) (*Handle, error) {
	rec, ok := c.records[key]
	if !ok || key == NullKey {
		return nil, fmt.Errorf("asset: acquire %#016x: %w", uint64(key), ErrUnknownKey)
	}
	rec.RefCount++
	return &Handle{key: key, cache: c}, nil
}

// Key returns the handle's key, or NullKey for a null handle.
func (h *Handle) Key() Key {
	if h == nil {
		return NullKey
	}
	return h.key
}

// Valid reports whether the handle still holds a reference.
func (h *Handle) Valid() bool {
	return h != nil && h.key != NullKey && h.cache != nil
}

// Clone returns a second handle on the same asset.
func (h *Handle) Clone() *Handle {
	if !h.Valid() {
		return &Handle{}
	}
	h.cache.records[h.key].RefCount++
	return &Handle{key: h.key, cache: h.cache}
}

// Move transfers the reference to a new handle and nulls h.
func (h *Handle) Move() *Handle {
	if h == nil {
		return &Handle{}
	}
	m := &Handle{key: h.key, cache: h.cache}
	h.key, h.cache = NullKey, nil
	return m
}

// Release drops the reference. Releasing a null handle is a no-op.
func (h *Handle) Release() {
	if !h.Valid() {
		return
	}
	if rec := h.cache.records[h.key]; rec.RefCount > 0 {
		rec.RefCount--
	}
	h.key, h.cache = NullKey, nil
}

// Equal reports whether both handles refer to the same key.
func (h *Handle) Equal(o *Handle) bool {
	return h.Key() == o.Key()
}

func (h *Handle) String() string {
	if !h.Valid() {
		return "<null>"
	}
	return h.cache.records[h.key].Identifier
}
