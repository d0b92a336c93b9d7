package loader

import (
	"bytes"
	"fmt"

	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"mu-asset-cache/internal/asset"
)

// Text is a decoded text file. It reloads in place and remembers how many
// lines the last reload added and removed.
type Text struct {
	Content    string
	Encoding   string // "utf-8", "utf-16le" or "utf-16be"
	Generation int
	Added      int
	Removed    int
}

func (*Text) Kind() asset.Kind { return asset.KindText }
func (t *Text) Release()       { t.Content = "" }

// Reload re-reads the file and logs a unified diff of the change.
func (t *Text) Reload(ctx asset.LoadContext) error {
	next, err := readText(ctx)
	if err != nil {
		return err
	}

	edits := myers.ComputeEdits(span.URIFromPath(ctx.Path), t.Content, next.Content)
	u := gotextdiff.ToUnified(ctx.Identifier, ctx.Identifier, t.Content, edits)
	added, removed := 0, 0
	for _, h := range u.Hunks {
		for _, ln := range h.Lines {
			switch ln.Kind {
			case gotextdiff.Insert:
				added++
			case gotextdiff.Delete:
				removed++
			}
		}
	}

	t.Content, t.Encoding = next.Content, next.Encoding
	t.Added, t.Removed = added, removed
	t.Generation++
	ctx.Log.Debug("text reloaded",
		zap.String("identifier", ctx.Identifier),
		zap.Int("added", added),
		zap.Int("removed", removed),
		zap.String("diff", fmt.Sprint(u)))
	return nil
}

// LoadText reads a text file, honouring a UTF-8 or UTF-16 byte order mark.
// Files without a BOM are read as UTF-8.
func LoadText(ctx asset.LoadContext) (asset.Asset, error) {
	return readText(ctx)
}

func readText(ctx asset.LoadContext) (*Text, error) {
	raw, err := ctx.ReadFile()
	if err != nil {
		return nil, fmt.Errorf("loader: read %s: %w", ctx.Path, err)
	}
	out, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), raw)
	if err != nil {
		return nil, fmt.Errorf("loader: decode %s: %w", ctx.Path, err)
	}
	return &Text{Content: string(out), Encoding: bomEncoding(raw)}, nil
}

func bomEncoding(raw []byte) string {
	switch {
	case bytes.HasPrefix(raw, []byte{0xFF, 0xFE}):
		return "utf-16le"
	case bytes.HasPrefix(raw, []byte{0xFE, 0xFF}):
		return "utf-16be"
	default:
		return "utf-8"
	}
}
