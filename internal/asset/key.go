package asset

import (
	"hash/fnv"
	"strings"
)

// Key is the 64-bit fingerprint of a full asset identifier.
// Distinct identifiers that collide are treated as the same asset.
type Key uint64

// NullKey marks an empty (released or moved-from) handle.
const NullKey Key = 0

// HashIdentifier returns the FNV-1a 64 fingerprint of the whole identifier,
// including any ":sub" suffix.
func HashIdentifier(id string) Key {
	h := fnv.New64a()
	h.Write([]byte(id))
	return Key(h.Sum64())
}

// SplitIdentifier splits "Models/monkey.bmd:0" on the last colon into the
// base path and the sub-asset name. Without a colon, sub is empty.
func SplitIdentifier(id string) (base, sub string) {
	i := strings.LastIndexByte(id, ':')
	if i < 0 {
		return id, ""
	}
	return id[:i], id[i+1:]
}
