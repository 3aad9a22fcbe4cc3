// Package geometry provides the vertex data the renderer draws: a single quad covering clip space.
package geometry

import (
	"github.com/Carmen-Shannon/oxy-shader/engine/graphics"
)

// VertexCount is the number of vertices in the full-screen quad (two triangles).
const VertexCount = 6

// Components is the number of float32 components per quad vertex.
const Components = 2

// QuadVertices are the clip-space positions of the two triangles covering the viewport.
var QuadVertices = [VertexCount * Components]float32{
	-1, -1,
	1, -1,
	-1, 1,
	-1, 1,
	1, -1,
	1, 1,
}

// Quad is a full-screen quad uploaded into a static vertex buffer.
type Quad struct {
	buffer graphics.BufferHandle
}

// NewQuad allocates a vertex buffer and uploads the quad positions into it.
//
// Parameters:
//   - ctx: the backend that owns the buffer
//
// Returns:
//   - Quad: the uploaded quad
func NewQuad(ctx graphics.Backend) Quad {
	buf := ctx.CreateBuffer()
	ctx.BufferData(buf, QuadVertices[:])
	return Quad{buffer: buf}
}

// Valid reports whether the quad holds a live buffer.
func (q Quad) Valid() bool {
	return q.buffer != 0
}

// Bind points the given attribute at the quad's buffer.
//
// Parameters:
//   - ctx: the backend that owns the buffer
//   - attrib: the position attribute index
func (q Quad) Bind(ctx graphics.Backend, attrib uint32) {
	ctx.BindVertexBuffer(q.buffer, attrib, Components)
}

// Release deletes the quad's buffer. Releasing an invalid quad is a no-op.
func (q *Quad) Release(ctx graphics.Backend) {
	if q.buffer == 0 {
		return
	}
	ctx.DeleteBuffer(q.buffer)
	q.buffer = 0
}
