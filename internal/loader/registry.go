// Package loader provides the concrete loaders for each asset kind.
package loader

import (
	"fmt"

	"mu-asset-cache/internal/asset"
	"mu-asset-cache/internal/crypto"
	"mu-asset-cache/internal/texture"
)

// Options configures the loaders that need settings.
type Options struct {
	FontSize float64
	BMDKey   string // hex LEA-256 key for BMD v15; empty disables v15
	Textures *texture.Index
}

// Defaults returns a loader for every file-backed kind.
func Defaults(opts Options) (map[asset.Kind]asset.Loader, error) {
	var leaKey *[32]byte
	if opts.BMDKey != "" {
		key, err := crypto.ParseLEAKey(opts.BMDKey)
		if err != nil {
			return nil, fmt.Errorf("loader: bmd key: %w", err)
		}
		leaKey = &key
	}
	size := opts.FontSize
	if size <= 0 {
		size = 32
	}

	return map[asset.Kind]asset.Loader{
		asset.KindText:   asset.LoaderFunc(LoadText),
		asset.KindImage:  asset.LoaderFunc(LoadImage),
		asset.KindSound:  asset.LoaderFunc(LoadSound),
		asset.KindShader: asset.LoaderFunc(LoadShader),
		asset.KindFont:   NewFontLoader(size),
		asset.KindModel:  NewModelLoader(leaKey, opts.Textures),
		asset.KindScript: asset.LoaderFunc(LoadScript),
		asset.KindData:   asset.LoaderFunc(LoadData),
	}, nil
}
