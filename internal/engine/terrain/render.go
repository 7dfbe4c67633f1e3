package terrain

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-globe/internal/engine/debug"
	"github.com/Faultbox/midgard-globe/internal/engine/frame"
	"github.com/Faultbox/midgard-globe/internal/engine/gpu"
	"github.com/Faultbox/midgard-globe/pkg/math"
)

type drawStyle int

const (
	drawSurface drawStyle = iota
	drawWireframe
	drawOutline
)

// BeginRendering activates the surface program. It returns false when the
// frame has no graphics context.
func (t *Tessellator) BeginRendering(dc *frame.Context) bool {
	if !dc.CanDraw() {
		return false
	}
	dc.GPU.UseProgram(dc.SurfaceProgram)
	return true
}

// EndRendering unbinds the vertex attributes BeginRendering and Render used.
func (t *Tessellator) EndRendering(dc *frame.Context) {
	if !dc.CanDraw() {
		return
	}
	dc.GPU.DisableVertexAttrib(dc.SurfaceProgram, gpu.AttribVertexPoint)
	dc.GPU.DisableVertexAttrib(dc.SurfaceProgram, gpu.AttribVertexTexCoord)
}

// Render draws one tile's surface with the active program. Texture and
// color uniforms are the caller's.
func (t *Tessellator) Render(dc *frame.Context, st *SurfaceTile) {
	t.draw(dc, dc.SurfaceProgram, st, drawSurface)
}

// RenderWireframe draws the tile's interior cell edges.
func (t *Tessellator) RenderWireframe(dc *frame.Context, st *SurfaceTile) {
	t.draw(dc, dc.SurfaceProgram, st, drawWireframe)
}

// RenderOutline draws the tile's border, skirts excluded.
func (t *Tessellator) RenderOutline(dc *frame.Context, st *SurfaceTile) {
	t.draw(dc, dc.SurfaceProgram, st, drawOutline)
}

func (t *Tessellator) draw(dc *frame.Context, prog gpu.Program, st *SurfaceTile, style drawStyle) {
	if !dc.CanDraw() {
		return
	}
	geom := st.Geometry
	sg := t.sharedGeometry(geom.TileWidth, geom.TileHeight)

	vb := t.vertexBuffer(dc, geom)
	if vb == 0 {
		t.log.Warn("tile vertex buffer missing, skipping draw", zap.Stringer("tile", st.Key))
		return
	}

	var (
		ib    uint32
		count int
		mode  gpu.Primitive
	)
	switch style {
	case drawSurface:
		ib, count, mode = t.indexBuffer(dc, sg.IndicesToken, sg.Indices), len(sg.Indices), gpu.TriangleStrip
	case drawWireframe:
		ib, count, mode = t.indexBuffer(dc, sg.WireframeToken, sg.WireframeIndices), len(sg.WireframeIndices), gpu.Lines
	case drawOutline:
		ib, count, mode = t.indexBuffer(dc, sg.OutlineToken, sg.OutlineIndices), len(sg.OutlineIndices), gpu.LineStrip
	}
	if ib == 0 {
		t.log.Warn("shared index buffer missing, skipping draw", zap.Stringer("tile", st.Key))
		return
	}

	g := dc.GPU
	g.SetUniformMatrix(prog, gpu.UniformMvpMatrix, dc.View.ModelviewProjection.Mul(geom.Transform))
	g.EnableVertexAttrib(prog, gpu.AttribVertexPoint, vb, 3)
	if style == drawSurface {
		if tb := t.texCoordBuffer(dc, sg); tb != 0 {
			g.EnableVertexAttrib(prog, gpu.AttribVertexTexCoord, tb, 2)
		}
	}
	g.DrawElements(mode, ib, count)
}

// RenderBoundingVolume draws the tile's extent box as lines.
func (t *Tessellator) RenderBoundingVolume(dc *frame.Context, st *SurfaceTile) {
	if !dc.CanDraw() || !st.HasExtent {
		return
	}
	if t.pick.boxBuffer == 0 {
		t.pick.boxBuffer = dc.GPU.CreateBuffer()
		if t.pick.boxBuffer == 0 {
			return
		}
	}
	center := st.Extent.Center()
	g := dc.GPU
	g.UploadVertices(t.pick.boxBuffer, debug.BoxLineVertices(st.Extent, center))
	g.SetUniformMatrix(dc.SurfaceProgram, gpu.UniformMvpMatrix,
		dc.View.ModelviewProjection.Mul(math.Translate(center.X, center.Y, center.Z)))
	g.EnableVertexAttrib(dc.SurfaceProgram, gpu.AttribVertexPoint, t.pick.boxBuffer, 3)
	g.DrawArrays(gpu.Lines, 0, debug.BoxLineVertexCount)
}

// vertexBuffer returns the GPU buffer holding geom's points, uploading them
// when the buffer is absent or the points changed. It returns 0 when no
// buffer could be made resident.
func (t *Tessellator) vertexBuffer(dc *frame.Context, geom *Geometry) uint32 {
	res, ok := dc.Resources.Get(geom.Token)
	if ok && !geom.dirty {
		return res.Buffer(0)
	}
	id := res.Buffer(0)
	if id == 0 {
		if id = dc.GPU.CreateBuffer(); id == 0 {
			return 0
		}
	}
	dc.GPU.UploadVertices(id, geom.Points)
	if !dc.Resources.Put(geom.Token, gpu.Resource{Buffers: []uint32{id}, Size: int64(len(geom.Points)) * 4}) {
		return 0
	}
	geom.dirty = false
	return id
}

func (t *Tessellator) indexBuffer(dc *frame.Context, token uuid.UUID, indices []uint32) uint32 {
	if res, ok := dc.Resources.Get(token); ok {
		return res.Buffer(0)
	}
	id := dc.GPU.CreateBuffer()
	if id == 0 {
		return 0
	}
	dc.GPU.UploadIndices(id, indices)
	if !dc.Resources.Put(token, gpu.Resource{Buffers: []uint32{id}, Size: int64(len(indices)) * 4}) {
		return 0
	}
	return id
}

func (t *Tessellator) texCoordBuffer(dc *frame.Context, sg *SharedGeometry) uint32 {
	if res, ok := dc.Resources.Get(sg.TexCoordToken); ok {
		return res.Buffer(0)
	}
	id := dc.GPU.CreateBuffer()
	if id == 0 {
		return 0
	}
	dc.GPU.UploadVertices(id, sg.TexCoords)
	if !dc.Resources.Put(sg.TexCoordToken, gpu.Resource{Buffers: []uint32{id}, Size: int64(len(sg.TexCoords)) * 4}) {
		return 0
	}
	return id
}
