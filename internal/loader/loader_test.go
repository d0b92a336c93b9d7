package loader

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/image/bmp"

	"mu-asset-cache/internal/asset"
	"mu-asset-cache/internal/fsys"
)

// contextFor writes data to a temp file and returns a load context for it.
func contextFor(t *testing.T, name string, data []byte) asset.LoadContext {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return asset.LoadContext{
		Identifier: name,
		Key:        asset.HashIdentifier(name),
		Path:       path,
		FS:         fsys.OS{},
		Log:        zap.NewNop(),
	}
}

func rewrite(t *testing.T, ctx asset.LoadContext, data []byte) {
	t.Helper()
	require.NoError(t, os.WriteFile(ctx.Path, data, 0644))
}

func TestLoadText(t *testing.T) {
	tests := []struct {
		name     string
		raw      []byte
		want     string
		encoding string
	}{
		{"plain", []byte("hello"), "hello", "utf-8"},
		{"utf8 bom", []byte("\xEF\xBB\xBFhello"), "hello", "utf-8"},
		{"utf16le bom", []byte{0xFF, 0xFE, 'h', 0, 'i', 0}, "hi", "utf-16le"},
		{"utf16be bom", []byte{0xFE, 0xFF, 0, 'h', 0, 'i'}, "hi", "utf-16be"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := LoadText(contextFor(t, "notes.txt", tt.raw))
			require.NoError(t, err)
			text := a.(*Text)
			assert.Equal(t, tt.want, text.Content)
			assert.Equal(t, tt.encoding, text.Encoding)
			assert.Equal(t, asset.KindText, text.Kind())
		})
	}
}

func TestTextReloadInPlace(t *testing.T) {
	ctx := contextFor(t, "quest.txt", []byte("line one\nline two\nline three\n"))
	a, err := LoadText(ctx)
	require.NoError(t, err)
	text := a.(*Text)

	rewrite(t, ctx, []byte("line one\nline 2\nline three\nline four\n"))
	require.NoError(t, text.Reload(ctx))
	assert.Equal(t, "line one\nline 2\nline three\nline four\n", text.Content)
	assert.Equal(t, 1, text.Generation)
	assert.Equal(t, 2, text.Added)
	assert.Equal(t, 1, text.Removed)

	require.NoError(t, os.Remove(ctx.Path))
	assert.Error(t, text.Reload(ctx))
	assert.Equal(t, 1, text.Generation, "failed reload keeps the content")
	assert.Contains(t, text.Content, "line four")
}

func testPattern() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 3))
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 60), G: uint8(y * 100), B: 200, A: 255})
		}
	}
	return img
}

func TestLoadImage(t *testing.T) {
	src := testPattern()

	var pngBuf, jpgBuf, bmpBuf, webpBuf, tgaBuf bytes.Buffer
	require.NoError(t, png.Encode(&pngBuf, src))
	require.NoError(t, jpeg.Encode(&jpgBuf, src, &jpeg.Options{Quality: 95}))
	require.NoError(t, bmp.Encode(&bmpBuf, src))
	require.NoError(t, nativewebp.Encode(&webpBuf, src, nil))
	require.NoError(t, tga.Encode(&tgaBuf, src))

	ozj := append(make([]byte, ozjHeader), jpgBuf.Bytes()...)
	ozt := append(make([]byte, oztHeader), tgaBuf.Bytes()...)

	tests := []struct {
		name     string
		file     string
		raw      []byte
		format   string
		lossless bool
	}{
		{"png", "a.png", pngBuf.Bytes(), "png", true},
		{"bmp", "a.bmp", bmpBuf.Bytes(), "bmp", true},
		{"webp", "a.webp", webpBuf.Bytes(), "webp", true},
		{"jpeg", "a.jpg", jpgBuf.Bytes(), "jpeg", false},
		{"jpeg long ext", "a.jpeg", jpgBuf.Bytes(), "jpeg", false},
		{"ozj", "a.OZJ", ozj, "jpeg", false},
		{"tga", "a.tga", tgaBuf.Bytes(), "tga", false},
		{"ozt", "a.ozt", ozt, "tga", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := LoadImage(contextFor(t, tt.file, tt.raw))
			require.NoError(t, err)
			img := a.(*Image)
			assert.Equal(t, tt.format, img.Format)
			assert.Equal(t, image.Rect(0, 0, 4, 3), img.Bounds())
			if tt.lossless {
				assert.Equal(t, src.Pix, img.Pixels.Pix)
			}
			assert.Equal(t, uint8(255), img.Pixels.NRGBAAt(3, 2).A)

			img.Release()
			assert.True(t, img.Bounds().Empty())
		})
	}
}

func TestLoadImageErrors(t *testing.T) {
	_, err := LoadImage(contextFor(t, "short.ozj", make([]byte, 10)))
	assert.Error(t, err)
	_, err = LoadImage(contextFor(t, "short.ozt", []byte{1, 2, 3}))
	assert.Error(t, err)
	_, err = LoadImage(contextFor(t, "junk.png", []byte("not an image")))
	assert.Error(t, err)
	_, err = LoadImage(contextFor(t, "anim.gif", []byte("GIF89a")))
	assert.ErrorContains(t, err, "no image decoder")

	// The extension picks the decoder; content is never sniffed.
	var jpgBuf bytes.Buffer
	require.NoError(t, jpeg.Encode(&jpgBuf, testPattern(), nil))
	_, err = LoadImage(contextFor(t, "mislabeled.png", jpgBuf.Bytes()))
	assert.Error(t, err)
}

func wavFile(channels, rate, bits int, pcm []byte, extra ...[]byte) []byte {
	var b bytes.Buffer
	le := binary.LittleEndian
	chunk := func(id string, body []byte) {
		b.WriteString(id)
		binary.Write(&b, le, uint32(len(body)))
		b.Write(body)
		if len(body)%2 == 1 {
			b.WriteByte(0)
		}
	}
	fmtChunk := make([]byte, 16)
	le.PutUint16(fmtChunk[0:], 1)
	le.PutUint16(fmtChunk[2:], uint16(channels))
	le.PutUint32(fmtChunk[4:], uint32(rate))
	le.PutUint32(fmtChunk[8:], uint32(rate*channels*bits/8))
	le.PutUint16(fmtChunk[12:], uint16(channels*bits/8))
	le.PutUint16(fmtChunk[14:], uint16(bits))

	b.WriteString("RIFF")
	b.Write([]byte{0, 0, 0, 0})
	b.WriteString("WAVE")
	for _, e := range extra {
		chunk("JUNK", e)
	}
	chunk("fmt ", fmtChunk)
	chunk("data", pcm)
	out := b.Bytes()
	le.PutUint32(out[4:], uint32(len(out)-8))
	return out
}

func TestLoadSound(t *testing.T) {
	pcm := make([]byte, 8000*2*2) // one second of 16-bit stereo at 8 kHz
	a, err := LoadSound(contextFor(t, "hit.wav", wavFile(2, 8000, 16, pcm, []byte("odd"))))
	require.NoError(t, err)
	s := a.(*Sound)
	assert.Equal(t, 2, s.Channels)
	assert.Equal(t, 8000, s.SampleRate)
	assert.Equal(t, 16, s.BitsPerSample)
	assert.Len(t, s.Samples, 8000*2)
	assert.Equal(t, "1s", s.Duration().String())

	_, err = LoadSound(contextFor(t, "bad.wav", []byte("RIFF\x00\x00\x00\x00AVI ")))
	assert.Error(t, err)

	truncated := wavFile(1, 8000, 8, make([]byte, 100))
	_, err = LoadSound(contextFor(t, "cut.wav", truncated[:len(truncated)-10]))
	assert.Error(t, err)
}

func TestLoadSoundSamples(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	enc := wav.NewEncoder(f, 22050, 16, 1, 1)
	samples := []int{0, 1000, -1000, 32767, -32768, 42}
	require.NoError(t, enc.Write(&audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: 22050},
		Data:           samples,
		SourceBitDepth: 16,
	}))
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())

	a, err := LoadSound(asset.LoadContext{Identifier: "tone.wav", Path: path, FS: fsys.OS{}, Log: zap.NewNop()})
	require.NoError(t, err)
	s := a.(*Sound)
	assert.Equal(t, 1, s.Channels)
	assert.Equal(t, 22050, s.SampleRate)
	assert.Equal(t, samples, s.Samples)

	s.Release()
	assert.Nil(t, s.Samples)
	assert.Zero(t, s.Duration())
}
