package bmd

import "math"

// mat4 is a row-major affine transform.
type mat4 [16]float64

var identity = mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 1, 0,
	0, 0, 0, 1,
}

// eulerMatrix builds the rotation of Euler XYZ radians via the quaternion
// form MU uses for bone angles, then appends the translation.
func eulerMatrix(rot, pos [3]float64) mat4 {
	cx, sx := math.Cos(rot[0]*0.5), math.Sin(rot[0]*0.5)
	cy, sy := math.Cos(rot[1]*0.5), math.Sin(rot[1]*0.5)
	cz, sz := math.Cos(rot[2]*0.5), math.Sin(rot[2]*0.5)

	x := sx*cy*cz - cx*sy*sz
	y := cx*sy*cz + sx*cy*sz
	z := cx*cy*sz - sx*sy*cz
	w := cx*cy*cz + sx*sy*sz

	xx, yy, zz := x*x, y*y, z*z
	xy, xz, yz := x*y, x*z, y*z
	wx, wy, wz := w*x, w*y, w*z

	return mat4{
		1 - 2*(yy+zz), 2 * (xy - wz), 2 * (xz + wy), pos[0],
		2 * (xy + wz), 1 - 2*(xx+zz), 2 * (yz - wx), pos[1],
		2 * (xz - wy), 2 * (yz + wx), 1 - 2*(xx+yy), pos[2],
		0, 0, 0, 1,
	}
}

func (a mat4) mul(b mat4) mat4 {
	var m mat4
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			m[r*4+c] = a[r*4]*b[c] + a[r*4+1]*b[4+c] + a[r*4+2]*b[8+c] + a[r*4+3]*b[12+c]
		}
	}
	return m
}

func (m mat4) point(v [3]float32) [3]float32 {
	x, y, z := float64(v[0]), float64(v[1]), float64(v[2])
	return [3]float32{
		float32(m[0]*x + m[1]*y + m[2]*z + m[3]),
		float32(m[4]*x + m[5]*y + m[6]*z + m[7]),
		float32(m[8]*x + m[9]*y + m[10]*z + m[11]),
	}
}

// direction applies only the rotation part.
func (m mat4) direction(v [3]float32) [3]float32 {
	x, y, z := float64(v[0]), float64(v[1]), float64(v[2])
	return [3]float32{
		float32(m[0]*x + m[1]*y + m[2]*z),
		float32(m[4]*x + m[5]*y + m[6]*z),
		float32(m[8]*x + m[9]*y + m[10]*z),
	}
}

func (m mat4) isIdentity() bool {
	for i := range m {
		if d := m[i] - identity[i]; d > 1e-8 || d < -1e-8 {
			return false
		}
	}
	return true
}

// worldMatrices returns the bind-pose (action 0, frame 0) world transform
// of each bone. A parent index must precede its child.
func worldMatrices(bones []Bone) []mat4 {
	worlds := make([]mat4, len(bones))
	for i, bone := range bones {
		if bone.IsDummy {
			worlds[i] = identity
			continue
		}
		local := eulerMatrix(bone.BindRotation, bone.BindPosition)
		if bone.Parent >= 0 && bone.Parent < i {
			worlds[i] = worlds[bone.Parent].mul(local)
		} else {
			worlds[i] = local
		}
	}
	return worlds
}

// ApplyBindPose moves every vertex and normal into model space using its
// bone's bind-pose transform. Rigid skinning: one bone per vertex.
func (m *Model) ApplyBindPose() {
	if len(m.Bones) == 0 {
		return
	}
	worlds := worldMatrices(m.Bones)

	allIdentity := true
	for _, w := range worlds {
		if !w.isIdentity() {
			allIdentity = false
			break
		}
	}
	if allIdentity {
		return
	}

	for mi := range m.Meshes {
		mesh := &m.Meshes[mi]
		for i, node := range mesh.Nodes {
			if int(node) >= 0 && int(node) < len(worlds) {
				mesh.Verts[i] = worlds[node].point(mesh.Verts[i])
			}
		}
		for i, node := range mesh.NormalNodes {
			if int(node) >= 0 && int(node) < len(worlds) {
				mesh.Normals[i] = worlds[node].direction(mesh.Normals[i])
			}
		}
	}
}
