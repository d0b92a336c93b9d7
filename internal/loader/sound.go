package loader

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/go-audio/wav"

	"mu-asset-cache/internal/asset"
)

const wavFormatPCM = 1

var errNotWAV = errors.New("not a RIFF/WAVE file")

// Sound is decoded PCM audio.
type Sound struct {
	Channels      int
	SampleRate    int
	BitsPerSample int
	Samples       []int // interleaved; 8-bit samples stay unsigned
}

func (*Sound) Kind() asset.Kind { return asset.KindSound }
func (s *Sound) Release()       { s.Samples = nil }

// Duration returns the playback length of the sample data.
func (s *Sound) Duration() time.Duration {
	if s.Channels == 0 || s.SampleRate == 0 {
		return 0
	}
	frames := len(s.Samples) / s.Channels
	return time.Duration(frames) * time.Second / time.Duration(s.SampleRate)
}

// LoadSound reads an uncompressed PCM WAV file.
func LoadSound(ctx asset.LoadContext) (asset.Asset, error) {
	raw, err := ctx.ReadFile()
	if err != nil {
		return nil, fmt.Errorf("loader: read %s: %w", ctx.Path, err)
	}
	s, err := decodeWAV(raw)
	if err != nil {
		return nil, fmt.Errorf("loader: decode %s: %w", ctx.Path, err)
	}
	return s, nil
}

func decodeWAV(raw []byte) (*Sound, error) {
	d := wav.NewDecoder(bytes.NewReader(raw))
	if !d.IsValidFile() {
		if err := d.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", errNotWAV, err)
		}
		return nil, errNotWAV
	}
	if d.WavAudioFormat != wavFormatPCM {
		return nil, fmt.Errorf("unsupported WAV format %d, want PCM", d.WavAudioFormat)
	}

	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, err
	}

	// The decoder stops quietly at EOF; a short data chunk means a cut file.
	width := (int(d.BitDepth) + 7) / 8
	if got := len(buf.Data) * width; got+width <= d.PCMSize {
		return nil, fmt.Errorf("data chunk truncated: %d of %d bytes", got, d.PCMSize)
	}

	return &Sound{
		Channels:      int(d.NumChans),
		SampleRate:    int(d.SampleRate),
		BitsPerSample: int(d.BitDepth),
		Samples:       buf.Data,
	}, nil
}
