package bmd

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"mu-asset-cache/internal/crypto"
)

// Encode writes m as a BMD file of the given version. Action key frames
// are not retained by Decode, so every key of every action repeats the
// bind pose and locked positions are written as zero.
func Encode(m *Model, version byte, leaKey *[32]byte) ([]byte, error) {
	if len(m.Meshes) > maxMeshes {
		return nil, fmt.Errorf("bmd: invalid mesh count %d", len(m.Meshes))
	}

	var w writer
	w.str(m.Name, 32)
	w.u16(uint16(len(m.Meshes)))
	w.u16(uint16(len(m.Bones)))
	w.u16(uint16(len(m.Actions)))

	for _, mesh := range m.Meshes {
		w.i16(int16(len(mesh.Verts)))
		w.i16(int16(len(mesh.Normals)))
		w.i16(int16(len(mesh.UVs)))
		w.i16(int16(len(mesh.Tris)))
		w.i16(mesh.Texture)
		for i, v := range mesh.Verts {
			w.i16(nodeAt(mesh.Nodes, i))
			w.i16(0)
			w.vec(v)
		}
		for i, n := range mesh.Normals {
			w.i16(nodeAt(mesh.NormalNodes, i))
			w.i16(0)
			w.vec(n)
			w.i16(0)
			w.i16(0)
		}
		for _, uv := range mesh.UVs {
			w.f32(uv[0])
			w.f32(uv[1])
		}
		for _, tri := range mesh.Tris {
			var rec [64]byte
			rec[0] = byte(tri.Polygon)
			for k := 0; k < 4; k++ {
				binary.LittleEndian.PutUint16(rec[2+k*2:], uint16(tri.VI[k]))
				binary.LittleEndian.PutUint16(rec[10+k*2:], uint16(tri.NI[k]))
				binary.LittleEndian.PutUint16(rec[18+k*2:], uint16(tri.TI[k]))
			}
			w.buf.Write(rec[:])
		}
		w.str(strings.ReplaceAll(mesh.TexPath, "/", "\\"), 32)
	}

	for _, act := range m.Actions {
		w.i16(int16(act.Keys))
		if act.LockPositions {
			w.buf.WriteByte(1)
			w.buf.Write(make([]byte, act.Keys*12))
		} else {
			w.buf.WriteByte(0)
		}
	}

	for _, bone := range m.Bones {
		if bone.IsDummy {
			w.buf.WriteByte(1)
			continue
		}
		w.buf.WriteByte(0)
		w.str(bone.Name, 32)
		w.i16(int16(bone.Parent))
		for _, act := range m.Actions {
			for k := 0; k < act.Keys; k++ {
				w.vec64(bone.BindPosition)
			}
			for k := 0; k < act.Keys; k++ {
				w.vec64(bone.BindRotation)
			}
		}
	}

	payload := w.buf.Bytes()
	out := []byte{'B', 'M', 'D', version}
	switch version {
	case 12:
		payload = crypto.EncryptXOR(payload)
	case 15:
		if leaKey == nil {
			return nil, ErrNoKey
		}
		payload = crypto.EncryptLEA(payload, *leaKey)
	default:
		return append(out, payload...), nil
	}
	out = binary.LittleEndian.AppendUint32(out, uint32(len(payload)))
	return append(out, payload...), nil
}

func nodeAt(nodes []int16, i int) int16 {
	if i < len(nodes) {
		return nodes[i]
	}
	return 0
}

type writer struct {
	buf bytes.Buffer
}

func (w *writer) str(s string, n int) {
	b := make([]byte, n)
	copy(b, s)
	w.buf.Write(b)
}

func (w *writer) i16(v int16)  { w.u16(uint16(v)) }
func (w *writer) u16(v uint16) { w.buf.Write(binary.LittleEndian.AppendUint16(nil, v)) }
func (w *writer) f32(v float32) {
	w.buf.Write(binary.LittleEndian.AppendUint32(nil, math.Float32bits(v)))
}

func (w *writer) vec(v [3]float32) {
	w.f32(v[0])
	w.f32(v[1])
	w.f32(v[2])
}

func (w *writer) vec64(v [3]float64) {
	w.vec([3]float32{float32(v[0]), float32(v[1]), float32(v[2])})
}
