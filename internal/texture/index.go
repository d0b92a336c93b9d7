// Package texture maps the texture names referenced by models to image
// identifiers under the asset roots.
package texture

import (
	"io/fs"
	"path"
	"path/filepath"
	"strings"
)

// priority ranks texture extensions for the same stem. OZT wins over OZJ
// because it carries an alpha channel.
var priority = map[string]int{
	".ozt": 4,
	".ozj": 3,
	".tga": 2,
	".png": 1,
	".jpg": 0,
}

type entry struct {
	id   string
	root int
	rank int
}

// Index maps lowercase texture stems to asset identifiers.
type Index struct {
	entries map[string]entry // stem.lower() → identifier
}

// BuildIndex scans each root recursively. Identifiers are relative to the
// root they were found in, with forward slashes. Earlier roots take
// precedence, matching the cache's search order.
func BuildIndex(roots ...string) *Index {
	idx := &Index{entries: make(map[string]entry)}

	for ri, root := range roots {
		if root == "" {
			continue
		}
		filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return nil
			}
			rank, ok := priority[strings.ToLower(filepath.Ext(p))]
			if !ok {
				return nil
			}
			rel, err := filepath.Rel(root, p)
			if err != nil {
				return nil
			}
			stem := stemOf(p)
			e := entry{id: filepath.ToSlash(rel), root: ri, rank: rank}

			existing, exists := idx.entries[stem]
			if !exists || (existing.root == ri && rank > existing.rank) {
				idx.entries[stem] = e
			}
			return nil
		})
	}
	return idx
}

// Lookup returns the image identifier for a texture reference such as
// "Monsters\texture\foo.jpg".
func (idx *Index) Lookup(ref string) (string, bool) {
	if ref == "" {
		return "", false
	}
	e, ok := idx.entries[stemOf(strings.ReplaceAll(ref, "\\", "/"))]
	return e.id, ok
}

// Len returns the number of indexed textures.
func (idx *Index) Len() int {
	return len(idx.entries)
}

func stemOf(p string) string {
	base := path.Base(filepath.ToSlash(p))
	return strings.ToLower(strings.TrimSuffix(base, path.Ext(base)))
}
