package loader

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"mu-asset-cache/internal/asset"
	"mu-asset-cache/internal/bmd"
	"mu-asset-cache/internal/texture"
)

// Model is a decoded BMD model in its bind pose. Meshes are exposed as
// sub-assets "<identifier>:<index>".
type Model struct {
	Name    string
	Version byte
	Meshes  []*Mesh
	Bones   int
	Actions int
}

func (*Model) Kind() asset.Kind { return asset.KindModel }

func (m *Model) Release() {
	for _, mesh := range m.Meshes {
		mesh.Geometry = bmd.Geometry{}
	}
	m.Meshes = nil
}

func (m *Model) SubAssetCount() int { return len(m.Meshes) }

func (m *Model) SubAsset(i int) asset.Asset { return m.Meshes[i] }

// Mesh is one flattened mesh of a model. It is owned by its Model and has
// no teardown of its own.
type Mesh struct {
	Index     int
	Texture   string // texture path as referenced by the model
	TextureID string // image identifier, empty when no index or no match
	Geometry  bmd.Geometry
	Min, Max  [3]float32
}

func (*Mesh) Kind() asset.Kind { return asset.KindMesh }
func (*Mesh) Release()         {}

// NewModelLoader returns a BMD loader. leaKey is required only for v15
// files; textures may be nil.
func NewModelLoader(leaKey *[32]byte, textures *texture.Index) asset.Loader {
	return asset.LoaderFunc(func(ctx asset.LoadContext) (asset.Asset, error) {
		raw, err := ctx.ReadFile()
		if err != nil {
			return nil, fmt.Errorf("loader: read %s: %w", ctx.Path, err)
		}
		src, err := bmd.Decode(raw, leaKey)
		if err != nil {
			return nil, fmt.Errorf("loader: decode %s: %w", ctx.Path, err)
		}
		src.ApplyBindPose()

		m := &Model{
			Name:    src.Name,
			Version: src.Version,
			Meshes:  make([]*Mesh, 0, len(src.Meshes)),
			Bones:   len(src.Bones),
			Actions: len(src.Actions),
		}
		for i := range src.Meshes {
			g, err := src.Meshes[i].Flatten()
			if err != nil {
				return nil, fmt.Errorf("loader: mesh %d of %s: %w", i, ctx.Path, err)
			}
			mesh := &Mesh{Index: i, Texture: src.Meshes[i].TexPath, Geometry: g}
			mesh.Min, mesh.Max = bounds(g.Vertices)
			if textures != nil {
				mesh.TextureID, _ = textures.Lookup(mesh.Texture)
			}
			m.Meshes = append(m.Meshes, mesh)
		}

		ctx.Log.Debug("model decoded",
			zap.String("identifier", ctx.Identifier),
			zap.Uint8("version", src.Version),
			zap.Int("meshes", len(m.Meshes)),
			zap.Int("bones", m.Bones))
		return m, nil
	})
}

func bounds(verts []bmd.Vertex) (lo, hi [3]float32) {
	if len(verts) == 0 {
		return lo, hi
	}
	lo = [3]float32{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32}
	hi = [3]float32{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32}
	for _, v := range verts {
		for k := 0; k < 3; k++ {
			lo[k] = min(lo[k], v.Pos[k])
			hi[k] = max(hi[k], v.Pos[k])
		}
	}
	return lo, hi
}
