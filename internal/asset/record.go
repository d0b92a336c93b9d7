package asset

// Record is the metadata kept for every identifier the cache has seen.
// Records live for the lifetime of the Cache; only loaded assets are freed.
type Record struct {
	Identifier   string
	BasePath     string
	SubAsset     string
	ResolvedPath string // set on first successful load
	RefCount     int

	children []Key // sub-asset keys interned under this root
}

// IsSubAsset reports whether the record names a sub-asset of BasePath.
func (r *Record) IsSubAsset() bool { return r.SubAsset != "" }

// Intern returns the key for id, creating its record on first use.
// Repeated calls with the same identifier are pure lookups.
func (c *Cache) Intern(id string) Key {
	key := HashIdentifier(id)
	if _, ok := c.records[key]; ok {
		return key
	}

	base, sub := SplitIdentifier(id)
	c.records[key] = &Record{
		Identifier: id,
		BasePath:   base,
		SubAsset:   sub,
	}
	c.order = append(c.order, key)

	if sub != "" && base != "" {
		root := c.records[c.Intern(base)]
		root.children = append(root.children, key)
	}
	return key
}

// Record returns a copy of the record for key.
func (c *Cache) Record(key Key) (Record, bool) {
	rec, ok := c.records[key]
	if !ok {
		return Record{}, false
	}
	return *rec, true
}

// RefCount returns the number of live handles on key.
func (c *Cache) RefCount(key Key) int {
	if rec, ok := c.records[key]; ok {
		return rec.RefCount
	}
	return 0
}

// liveRefs counts handles on key plus handles on its sub-assets, which keep
// the parent's storage alive.
func (c *Cache) liveRefs(key Key) int {
	rec, ok := c.records[key]
	if !ok {
		return 0
	}
	n := rec.RefCount
	for _, ck := range rec.children {
		n += c.records[ck].RefCount
	}
	return n
}
