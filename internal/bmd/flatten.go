package bmd

import "fmt"

// Flatten de-indexes the mesh into one vertex per triangle corner. Quads
// split into 0-1-2 and 0-2-3. Missing normals or texture coordinates are
// left zero; an out-of-range vertex index is an error.
func (m *Mesh) Flatten() (Geometry, error) {
	var g Geometry
	for ti, tri := range m.Tris {
		corners := 3
		if tri.Polygon == 4 {
			corners = 4
		}
		base := uint32(len(g.Vertices))
		for k := 0; k < corners; k++ {
			vi := int(tri.VI[k])
			if vi < 0 || vi >= len(m.Verts) {
				return Geometry{}, fmt.Errorf("bmd: triangle %d: vertex index %d out of range", ti, vi)
			}
			v := Vertex{Pos: m.Verts[vi]}
			if ni := int(tri.NI[k]); ni >= 0 && ni < len(m.Normals) {
				v.Normal = m.Normals[ni]
			}
			if uv := int(tri.TI[k]); uv >= 0 && uv < len(m.UVs) {
				v.UV = m.UVs[uv]
			}
			g.Vertices = append(g.Vertices, v)
		}
		g.Indices = append(g.Indices, base, base+1, base+2)
		if corners == 4 {
			g.Indices = append(g.Indices, base, base+2, base+3)
		}
	}
	return g, nil
}
