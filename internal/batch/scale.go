package batch

import (
	"image"

	"golang.org/x/image/draw"
)

// Downsample shrinks img so neither side exceeds maxSize, keeping the
// aspect ratio. Smaller images are returned unchanged. Scaling runs in
// premultiplied RGBA so transparent edges do not pick up dark halos.
func Downsample(img image.Image, maxSize int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxSize <= 0 || (w <= maxSize && h <= maxSize) {
		return img
	}
	if w >= h {
		h = max(1, h*maxSize/w)
		w = maxSize
	} else {
		w = max(1, w*maxSize/h)
		h = maxSize
	}

	// Downsample with CatmullRom (approximates Lanczos)
	premul := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(premul, premul.Bounds(), img, b, draw.Src, nil)

	result := image.NewNRGBA(premul.Bounds())
	draw.Draw(result, result.Bounds(), premul, image.Point{}, draw.Src)
	return result
}
