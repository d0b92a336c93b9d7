package bmd

// Triangle holds polygon type and index triples into vertex/normal/texcoord arrays.
// Polygon == 4 means quad (two triangles: 0-1-2 and 0-2-3).
type Triangle struct {
	Polygon int
	VI      [4]int16
	NI      [4]int16
	TI      [4]int16
}

// Mesh holds parsed geometry for one sub-mesh within a BMD file.
type Mesh struct {
	Verts       [][3]float32 // vertex positions, mutable for bone transforms
	Nodes       []int16      // bone index per vertex
	Normals     [][3]float32
	NormalNodes []int16
	UVs         [][2]float32
	Tris        []Triangle
	Texture     int16
	TexPath     string // texture reference from BMD (e.g. "sword04.jpg")
}

// Action is one animation clip header. Key frames are skipped.
type Action struct {
	Keys          int
	LockPositions bool
}

// Bone holds bind-pose data for one bone in the skeleton hierarchy.
type Bone struct {
	Name         string
	Parent       int
	IsDummy      bool
	BindPosition [3]float64
	BindRotation [3]float64 // Euler XYZ radians
}

// Model is a decoded BMD file.
type Model struct {
	Name    string
	Version byte
	Meshes  []Mesh
	Actions []Action
	Bones   []Bone
}

// Vertex is one de-indexed vertex.
type Vertex struct {
	Pos    [3]float32
	Normal [3]float32
	UV     [2]float32
}

// Geometry is a mesh flattened into vertex and index buffers.
type Geometry struct {
	Vertices []Vertex
	Indices  []uint32
}
