package bmd

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"

	"mu-asset-cache/internal/crypto"
)

var (
	ErrHeader    = errors.New("bmd: invalid header")
	ErrTruncated = errors.New("bmd: truncated data")
	ErrNoKey     = errors.New("bmd: v15 model needs a LEA key")
)

// maxMeshes bounds the mesh count read from the header.
const maxMeshes = 100

// Decode parses a BMD file image. Versions 10 (unencrypted), 12 (XOR) and
// 15 (LEA-256 ECB) are supported; leaKey may be nil when no v15 files are
// expected.
func Decode(raw []byte, leaKey *[32]byte) (*Model, error) {
	if len(raw) < 4 || string(raw[:3]) != "BMD" {
		return nil, ErrHeader
	}

	version := raw[3]
	var data []byte

	switch version {
	case 12, 15:
		if len(raw) < 8 {
			return nil, fmt.Errorf("bmd: v%d header: %w", version, ErrTruncated)
		}
		size := binary.LittleEndian.Uint32(raw[4:8])
		if 8+int(size) > len(raw) {
			return nil, fmt.Errorf("bmd: v%d payload of %d bytes: %w", version, size, ErrTruncated)
		}
		payload := raw[8 : 8+size]
		if version == 12 {
			data = crypto.DecryptXOR(payload)
			break
		}
		if leaKey == nil {
			return nil, ErrNoKey
		}
		data = crypto.DecryptLEA(payload, *leaKey)
	default:
		data = raw[4:]
	}

	r := &reader{data: data}
	m, err := r.parse()
	if err != nil {
		return nil, err
	}
	m.Version = version
	return m, nil
}

type reader struct {
	data  []byte
	off   int
	short bool
}

func (r *reader) take(n int) []byte {
	if n < 0 || r.off+n > len(r.data) {
		r.off = len(r.data)
		r.short = true
		return nil
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b
}

func (r *reader) readStr(n int) string {
	s := r.take(n)
	if i := strings.IndexByte(string(s), 0); i >= 0 {
		return string(s[:i])
	}
	return string(s)
}

func (r *reader) readI16() int16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return int16(binary.LittleEndian.Uint16(b))
}

func (r *reader) readU16() uint16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (r *reader) readF32() float32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}

func (r *reader) readByte() byte {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *reader) parse() (*Model, error) {
	m := &Model{Name: r.readStr(32)}
	meshCount := int(r.readU16())
	boneCount := int(r.readU16())
	actionCount := int(r.readU16())
	if r.short {
		return nil, fmt.Errorf("bmd: model header: %w", ErrTruncated)
	}
	if meshCount > maxMeshes {
		return nil, fmt.Errorf("bmd: invalid mesh count %d", meshCount)
	}

	m.Meshes = make([]Mesh, 0, meshCount)
	for i := 0; i < meshCount; i++ {
		mesh := r.mesh()
		if r.short {
			return nil, fmt.Errorf("bmd: mesh %d: %w", i, ErrTruncated)
		}
		m.Meshes = append(m.Meshes, mesh)
	}

	m.Actions = make([]Action, actionCount)
	for a := range m.Actions {
		keys := int(r.readI16())
		lock := r.readByte() > 0
		if lock {
			r.take(keys * 12) // float32 x,y,z per key
		}
		m.Actions[a] = Action{Keys: keys, LockPositions: lock}
	}
	if r.short {
		return nil, fmt.Errorf("bmd: actions: %w", ErrTruncated)
	}

	m.Bones = make([]Bone, 0, boneCount)
	for b := 0; b < boneCount; b++ {
		bone := r.bone(m.Actions)
		if r.short {
			return nil, fmt.Errorf("bmd: bone %d: %w", b, ErrTruncated)
		}
		m.Bones = append(m.Bones, bone)
	}
	return m, nil
}

func (r *reader) mesh() Mesh {
	nv := int(r.readI16())
	nn := int(r.readI16())
	ntc := int(r.readI16())
	nt := int(r.readI16())
	tex := r.readI16()
	if r.short || nv < 0 || nn < 0 || ntc < 0 || nt < 0 {
		r.short = true
		return Mesh{}
	}

	// Vertices: 16 bytes each (node:i16, pad:i16, x:f32, y:f32, z:f32)
	verts := make([][3]float32, nv)
	nodes := make([]int16, nv)
	for j := range verts {
		nodes[j] = r.readI16()
		_ = r.readI16()
		verts[j] = [3]float32{r.readF32(), r.readF32(), r.readF32()}
	}

	// Normals: 20 bytes each (node:i16, pad:i16, nx:f32, ny:f32, nz:f32, bind:i16, pad:i16)
	normals := make([][3]float32, nn)
	normalNodes := make([]int16, nn)
	for j := range normals {
		normalNodes[j] = r.readI16()
		_ = r.readI16()
		normals[j] = [3]float32{r.readF32(), r.readF32(), r.readF32()}
		_ = r.readI16() // bind vertex
		_ = r.readI16()
	}

	uvs := make([][2]float32, ntc)
	for j := range uvs {
		uvs[j] = [2]float32{r.readF32(), r.readF32()}
	}

	// Triangles: 64 bytes each
	tris := make([]Triangle, nt)
	for j := range tris {
		b := r.take(64)
		if b == nil {
			return Mesh{}
		}
		tri := Triangle{Polygon: int(b[0])}
		for k := 0; k < 4; k++ {
			tri.VI[k] = int16(binary.LittleEndian.Uint16(b[2+k*2:]))
			tri.NI[k] = int16(binary.LittleEndian.Uint16(b[10+k*2:]))
			tri.TI[k] = int16(binary.LittleEndian.Uint16(b[18+k*2:]))
		}
		tris[j] = tri
	}

	texPath := strings.ReplaceAll(r.readStr(32), "\\", "/")

	return Mesh{
		Verts:       verts,
		Nodes:       nodes,
		Normals:     normals,
		NormalNodes: normalNodes,
		UVs:         uvs,
		Tris:        tris,
		Texture:     tex,
		TexPath:     texPath,
	}
}

func (r *reader) bone(actions []Action) Bone {
	if r.readByte() > 0 {
		return Bone{Parent: -1, IsDummy: true}
	}

	bone := Bone{Name: r.readStr(32), Parent: int(r.readI16())}
	for a, act := range actions {
		if act.Keys <= 0 {
			continue
		}
		// Positions then rotations, numKeys × (x, y, z) float32 each.
		for k := 0; k < act.Keys; k++ {
			p := [3]float64{float64(r.readF32()), float64(r.readF32()), float64(r.readF32())}
			if a == 0 && k == 0 {
				bone.BindPosition = p
			}
		}
		for k := 0; k < act.Keys; k++ {
			rot := [3]float64{float64(r.readF32()), float64(r.readF32()), float64(r.readF32())}
			if a == 0 && k == 0 {
				bone.BindRotation = rot
			}
		}
	}
	return bone
}
