package mesh

// Buffer is a triangle mesh laid out for GPU upload.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, indices has 3 uint32s per triangle.
type Buffer struct {
	Vertices []float32 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`  // [nx0,ny0,nz0, ...]
	Indices  []uint32  `json:"indices"`  // [i0,i1,i2, ...] triangles
	Name     string    `json:"name"`
}

// VertexCount returns the number of vertices.
func (b *Buffer) VertexCount() int {
	return len(b.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (b *Buffer) TriangleCount() int {
	return len(b.Indices) / 3
}

// IsEmpty returns true if the buffer has no geometry.
func (b *Buffer) IsEmpty() bool {
	return len(b.Vertices) == 0
}

// Flatten lays tris out as an unindexed-by-sharing buffer: every triangle
// gets its own three vertices so flat face normals survive.
func Flatten(name string, tris []Triangle) *Buffer {
	numVerts := len(tris) * 3
	b := &Buffer{
		Vertices: make([]float32, 0, numVerts*3),
		Normals:  make([]float32, 0, numVerts*3),
		Indices:  make([]uint32, 0, numVerts),
		Name:     name,
	}
	for i, t := range tris {
		n := t.FaceNormal()
		nx, ny, nz := float32(n.X), float32(n.Y), float32(n.Z)
		for j := 0; j < 3; j++ {
			v := t.V[j]
			b.Vertices = append(b.Vertices, float32(v.X), float32(v.Y), float32(v.Z))
			b.Normals = append(b.Normals, nx, ny, nz)
			b.Indices = append(b.Indices, uint32(i*3+j))
		}
	}
	return b
}

// LineBuffer is a list of line segments laid out for GPU upload:
// 6 floats per segment, plus the requested stroke thickness.
type LineBuffer struct {
	Segments  []float32 `json:"segments"` // [ax,ay,az, bx,by,bz, ...]
	Thickness float32   `json:"thickness"`
	Name      string    `json:"name"`
}

// SegmentCount returns the number of segments.
func (b *LineBuffer) SegmentCount() int {
	return len(b.Segments) / 6
}
