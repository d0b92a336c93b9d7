package asset

// CollectGarbage frees every loaded asset whose record has no handles left.
// A model stays loaded while any of its sub-assets is referenced.
// It returns the number of entries freed.
func (c *Cache) CollectGarbage() int {
	freed := 0
	for _, key := range c.order {
		rec := c.records[key]
		if rec.RefCount != 0 {
			continue
		}
		if _, ok := c.loaded[key]; !ok {
			continue
		}
		if !rec.IsSubAsset() && c.liveRefs(key) > 0 {
			continue
		}
		c.FreeKey(key)
		freed++
	}
	return freed
}
