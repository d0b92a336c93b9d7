package asset

import (
	"go.uber.org/zap"

	"mu-asset-cache/internal/fsys"
)

// Asset is a loaded, type-erased resource. Implementations should be pointer
// types: Register compares assets by identity to tell a re-registration from a
// replacement, and values of a non-comparable type are always treated as a
// replacement.
type Asset interface {
	Kind() Kind
	// Release tears down the resource. The cache calls it at most once,
	// and never for sub-assets.
	Release()
}

// Reloader is implemented by assets that can refresh themselves in place,
// keeping their identity across a hot reload. Reload must either fully
// succeed or leave the asset unmodified.
type Reloader interface {
	Reload(ctx LoadContext) error
}

// Composite is implemented by assets that own sub-assets (a model's meshes).
// Sub-asset i is addressed as "<base>:<i>".
type Composite interface {
	SubAssetCount() int
	SubAsset(i int) Asset
}

// LoadContext is passed to loaders. It always describes the root asset.
type LoadContext struct {
	Identifier string
	Key        Key
	Path       string // resolved filesystem path
	FS         fsys.FS
	Log        *zap.Logger
}

// ReadFile reads the asset's resolved file through the cache's filesystem.
func (ctx LoadContext) ReadFile() ([]byte, error) {
	return ctx.FS.ReadFile(ctx.Path)
}

// Loader constructs an asset from a resolved path.
type Loader interface {
	Load(ctx LoadContext) (Asset, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx LoadContext) (Asset, error)

func (f LoaderFunc) Load(ctx LoadContext) (Asset, error) { return f(ctx) }
