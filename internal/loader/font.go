package loader

import (
	"fmt"
	"image"

	"github.com/golang/freetype/truetype"
	"go.uber.org/zap"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"mu-asset-cache/internal/asset"
)

const (
	atlasWidth   = 512
	glyphPadding = 1
	firstGlyph   = ' '
	lastGlyph    = '~'
)

// Glyph locates one rune inside a font atlas.
type Glyph struct {
	Rect    image.Rectangle // in atlas pixels
	Offset  image.Point     // from the pen position to Rect.Min
	Advance int
}

// Font is a rasterized TrueType face with a printable ASCII atlas.
type Font struct {
	Face       font.Face
	Size       float64
	Atlas      *image.Alpha
	Glyphs     map[rune]Glyph
	LineHeight int
	Ascent     int
}

func (*Font) Kind() asset.Kind { return asset.KindFont }

func (f *Font) Release() {
	if f.Face != nil {
		f.Face.Close()
		f.Face = nil
	}
	f.Atlas = nil
}

// MeasureString returns the pen advance of s in pixels.
func (f *Font) MeasureString(s string) int {
	w := 0
	for _, r := range s {
		w += f.Glyphs[r].Advance
	}
	return w
}

// NewFontLoader returns a loader rasterizing faces at size points (72 DPI).
func NewFontLoader(size float64) asset.Loader {
	return asset.LoaderFunc(func(ctx asset.LoadContext) (asset.Asset, error) {
		raw, err := ctx.ReadFile()
		if err != nil {
			return nil, fmt.Errorf("loader: read %s: %w", ctx.Path, err)
		}
		parsed, err := truetype.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("loader: parse font %s: %w", ctx.Path, err)
		}
		face := truetype.NewFace(parsed, &truetype.Options{
			Size:    size,
			DPI:     72,
			Hinting: font.HintingNone,
		})

		f := buildAtlas(face)
		f.Size = size
		ctx.Log.Debug("font atlas built",
			zap.String("identifier", ctx.Identifier),
			zap.Int("glyphs", len(f.Glyphs)),
			zap.Stringer("atlas", f.Atlas.Bounds()))
		return f, nil
	})
}

type rasterGlyph struct {
	r       rune
	mask    *image.Alpha
	offset  image.Point
	advance int
}

func buildAtlas(face font.Face) *Font {
	// Glyph masks are only valid until the next Glyph call, so copy each one.
	glyphs := make([]rasterGlyph, 0, lastGlyph-firstGlyph+1)
	for r := rune(firstGlyph); r <= lastGlyph; r++ {
		dr, mask, maskp, adv, ok := face.Glyph(fixed.Point26_6{}, r)
		if !ok {
			continue
		}
		g := rasterGlyph{r: r, offset: dr.Min, advance: adv.Round()}
		g.mask = image.NewAlpha(image.Rect(0, 0, dr.Dx(), dr.Dy()))
		if !dr.Empty() {
			draw.Draw(g.mask, g.mask.Bounds(), mask, maskp, draw.Src)
		}
		glyphs = append(glyphs, g)
	}

	// Shelf packing, left to right, one row at a time.
	rects := make([]image.Rectangle, len(glyphs))
	x, y, rowH := glyphPadding, glyphPadding, 0
	for i, g := range glyphs {
		w, h := g.mask.Bounds().Dx(), g.mask.Bounds().Dy()
		if x+w+glyphPadding > atlasWidth {
			x = glyphPadding
			y += rowH + glyphPadding
			rowH = 0
		}
		rects[i] = image.Rect(x, y, x+w, y+h)
		x += w + glyphPadding
		if h > rowH {
			rowH = h
		}
	}

	atlas := image.NewAlpha(image.Rect(0, 0, atlasWidth, y+rowH+glyphPadding))
	m := face.Metrics()
	f := &Font{
		Face:       face,
		Atlas:      atlas,
		Glyphs:     make(map[rune]Glyph, len(glyphs)),
		LineHeight: m.Height.Ceil(),
		Ascent:     m.Ascent.Ceil(),
	}
	for i, g := range glyphs {
		draw.Draw(atlas, rects[i], g.mask, image.Point{}, draw.Src)
		f.Glyphs[g.r] = Glyph{Rect: rects[i], Offset: g.offset, Advance: g.advance}
	}
	return f
}
