package loader

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/webp"

	"mu-asset-cache/internal/asset"
)

// MU texture containers wrap a plain JPEG or TGA behind a fixed header.
const (
	ozjHeader = 24
	oztHeader = 4
)

type decodeFunc func(io.Reader) (image.Image, error)

// Image is a decoded texture.
type Image struct {
	Pixels *image.NRGBA
	Format string // decoder name: "jpeg", "tga", "png", ...
}

func (*Image) Kind() asset.Kind { return asset.KindImage }
func (i *Image) Release()       { i.Pixels = nil }

// Bounds returns the pixel bounds, or an empty rectangle after Release.
func (i *Image) Bounds() image.Rectangle {
	if i.Pixels == nil {
		return image.Rectangle{}
	}
	return i.Pixels.Bounds()
}

// LoadImage decodes OZJ, OZT, PNG, JPEG, TGA, BMP and WebP files. The decoder
// is chosen by extension; TGA has no magic number, so sniffing is unreliable.
func LoadImage(ctx asset.LoadContext) (asset.Asset, error) {
	raw, err := ctx.ReadFile()
	if err != nil {
		return nil, fmt.Errorf("loader: read %s: %w", ctx.Path, err)
	}

	var (
		data   = raw
		format string
		decode decodeFunc
	)
	switch ext := strings.ToLower(filepath.Ext(ctx.Path)); ext {
	case ".ozj":
		if len(raw) <= ozjHeader {
			return nil, fmt.Errorf("loader: OZJ too short: %s", ctx.Path)
		}
		data, format, decode = raw[ozjHeader:], "jpeg", jpeg.Decode
	case ".ozt":
		if len(raw) <= oztHeader {
			return nil, fmt.Errorf("loader: OZT too short: %s", ctx.Path)
		}
		data, format, decode = raw[oztHeader:], "tga", tga.Decode
	case ".jpg", ".jpeg":
		format, decode = "jpeg", jpeg.Decode
	case ".tga":
		format, decode = "tga", tga.Decode
	case ".png":
		format, decode = "png", png.Decode
	case ".bmp":
		format, decode = "bmp", bmp.Decode
	case ".webp":
		format, decode = "webp", webp.Decode
	default:
		return nil, fmt.Errorf("loader: no image decoder for %q: %s", ext, ctx.Path)
	}

	img, err := decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("loader: decode %s: %w", ctx.Path, err)
	}
	return &Image{Pixels: toNRGBA(img), Format: format}, nil
}

// toNRGBA converts any image to NRGBA with its origin at (0, 0).
func toNRGBA(src image.Image) *image.NRGBA {
	b := src.Bounds()
	if n, ok := src.(*image.NRGBA); ok && b.Min == (image.Point{}) {
		return n
	}
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}
