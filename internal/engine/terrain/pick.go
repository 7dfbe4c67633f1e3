package terrain

import (
	"image"

	"github.com/Faultbox/midgard-globe/internal/engine/frame"
	"github.com/Faultbox/midgard-globe/internal/engine/gpu"
	"github.com/Faultbox/midgard-globe/internal/engine/picking"
	"github.com/Faultbox/midgard-globe/pkg/math"
)

// pickFrustumSize is the side, in pixels, of the square a tile must touch
// to be drawn in the tile pass.
const pickFrustumSize = 3

// pickScratch holds the per-triangle pick arrays and the scratch buffers
// they are uploaded to. Render goroutine only.
type pickScratch struct {
	points []float32 // 9 floats per triangle, relative to the reference center
	colors []float32 // 9 floats per triangle

	pointBuffer uint32
	colorBuffer uint32
	boxBuffer   uint32
}

// Pick resolves the window pixel p against the tiles in list. The first
// pass draws every tile in a unique color to find the tile under p; the
// second draws that tile's triangles in unique colors to find the triangle,
// which is then intersected with the ray through p. It returns nil on a
// miss.
func (t *Tessellator) Pick(dc *frame.Context, list *TileList, p image.Point) *picking.PickedObject {
	if !dc.CanDraw() || list == nil || len(list.Tiles) == 0 {
		return nil
	}
	g := dc.GPU
	prog := dc.PickProgram

	st, code := t.pickTile(dc, prog, list, p)
	if st == nil {
		return nil
	}
	a, b, c, ok := t.pickTriangle(dc, prog, st, p)
	if !ok {
		return nil
	}
	g.DisableVertexAttrib(prog, gpu.AttribVertexColor)

	ray := dc.View.RayThroughScreenPoint(float64(p.X)+0.5, float64(p.Y)+0.5)
	point, hit := ray.IntersectTrianglePlane(a, b, c)
	if !hit {
		return nil
	}
	pos := dc.Globe.PositionFromPoint(point)
	pos.Elevation = dc.Globe.Elevation(pos.Lat, pos.Lon) * dc.Exaggeration()

	return &picking.PickedObject{
		ScreenPoint: p,
		ColorCode:   code,
		Position:    pos,
		Point:       point,
		Terrain:     true,
	}
}

// pickTile runs the tile pass. Every tile gets a color, drawn or not, so the
// tile index is the color's offset in the pass's range.
func (t *Tessellator) pickTile(dc *frame.Context, prog gpu.Program, list *TileList, p image.Point) (*SurfaceTile, int) {
	g := dc.GPU
	frustum := dc.View.PickFrustum(p, pickFrustumSize)

	g.BeginPickPass()
	defer g.EndPickPass()

	g.UseProgram(prog)
	g.SetUniformInt(prog, gpu.UniformUseVertexColor, 0)

	var colors picking.ColorRange
	for i, st := range list.Tiles {
		code := g.UniquePickColor()
		if i == 0 {
			colors.Min = code
		}
		colors.Max = code
		if !frustum.IntersectsBox(st.Extent) {
			continue
		}
		red, green, blue := picking.RGB(code)
		g.SetUniformColor(prog, gpu.UniformColor, float32(red)/255, float32(green)/255, float32(blue)/255, 1)
		t.draw(dc, prog, st, drawSurface)
	}

	code := g.ReadPickColor(p.X, p.Y)
	i := colors.Index(code)
	if i < 0 {
		return nil, 0
	}
	return list.Tiles[i], code
}

// pickTriangle runs the triangle pass over st and returns the model
// coordinates of the triangle under p. Cells include the skirts, two
// triangles per cell: (upper-left, lower-left, upper-right) then
// (upper-right, lower-left, lower-right).
func (t *Tessellator) pickTriangle(dc *frame.Context, prog gpu.Program, st *SurfaceTile, p image.Point) (a, b, c math.Vec3, ok bool) {
	g := dc.GPU
	geom := st.Geometry
	if !t.ensurePickBuffers(g) {
		return a, b, c, false
	}

	cols := geom.TileWidth + 3
	rows := geom.TileHeight + 3
	n := 2 * (rows - 1) * (cols - 1)
	ps := &t.pick
	ps.points = ps.points[:0]
	ps.colors = ps.colors[:0]

	var colors picking.ColorRange
	addTriangle := func(v ...int) {
		code := g.UniquePickColor()
		if colors.Min == 0 {
			colors.Min = code
		}
		colors.Max = code
		red, green, blue := picking.RGB(code)
		for _, i := range v {
			ps.points = append(ps.points, geom.Points[3*i:3*i+3]...)
			ps.colors = append(ps.colors, float32(red)/255, float32(green)/255, float32(blue)/255)
		}
	}
	for j := 0; j < rows-1; j++ {
		for i := 0; i < cols-1; i++ {
			ll := j*cols + i
			lr := ll + 1
			ul := ll + cols
			ur := ul + 1
			addTriangle(ul, ll, ur)
			addTriangle(ur, ll, lr)
		}
	}

	g.BeginPickPass()
	g.UseProgram(prog)
	g.UploadVertices(ps.pointBuffer, ps.points)
	g.UploadVertices(ps.colorBuffer, ps.colors)
	g.SetUniformInt(prog, gpu.UniformUseVertexColor, 1)
	g.SetUniformMatrix(prog, gpu.UniformMvpMatrix, dc.View.ModelviewProjection.Mul(geom.Transform))
	g.EnableVertexAttrib(prog, gpu.AttribVertexPoint, ps.pointBuffer, 3)
	g.EnableVertexAttrib(prog, gpu.AttribVertexColor, ps.colorBuffer, 3)
	g.DrawArrays(gpu.Triangles, 0, 3*n)
	code := g.ReadPickColor(p.X, p.Y)
	g.EndPickPass()

	i := colors.Index(code)
	if i < 0 {
		return a, b, c, false
	}
	return t.pickVertex(geom, 9*i), t.pickVertex(geom, 9*i+3), t.pickVertex(geom, 9*i+6), true
}

func (t *Tessellator) pickVertex(geom *Geometry, offset int) math.Vec3 {
	return math.Vec3{
		X: float64(t.pick.points[offset]) + geom.ReferenceCenter.X,
		Y: float64(t.pick.points[offset+1]) + geom.ReferenceCenter.Y,
		Z: float64(t.pick.points[offset+2]) + geom.ReferenceCenter.Z,
	}
}

func (t *Tessellator) ensurePickBuffers(g gpu.Context) bool {
	if t.pick.pointBuffer == 0 {
		t.pick.pointBuffer = g.CreateBuffer()
	}
	if t.pick.colorBuffer == 0 {
		t.pick.colorBuffer = g.CreateBuffer()
	}
	return t.pick.pointBuffer != 0 && t.pick.colorBuffer != 0
}

// Release deletes the scratch buffers the tessellator created outside the
// resource cache. Call it on the render goroutine before the graphics
// context goes away.
func (t *Tessellator) Release(g gpu.Context) {
	for _, id := range []*uint32{&t.pick.pointBuffer, &t.pick.colorBuffer, &t.pick.boxBuffer} {
		if *id != 0 {
			g.DeleteBuffer(*id)
			*id = 0
		}
	}
}
