// Package gpu defines the graphics context the engine draws through and
// the GPU tier of the resource cache. The OpenGL implementation lives in
// package renderer; gputest provides a recording implementation.
package gpu

import (
	"image"

	"github.com/Faultbox/midgard-globe/pkg/math"
)

// Program is a compiled, linked shader program handle.
type Program uint32

// Primitive selects how indices are assembled.
type Primitive int

const (
	Triangles Primitive = iota
	TriangleStrip
	Lines
	LineStrip
)

func (p Primitive) String() string {
	switch p {
	case Triangles:
		return "triangles"
	case TriangleStrip:
		return "triangle-strip"
	case Lines:
		return "lines"
	case LineStrip:
		return "line-strip"
	}
	return "unknown"
}

// Attribute and uniform names shared by the engine's shader programs.
const (
	AttribVertexPoint    = "vertexPoint"
	AttribVertexTexCoord = "vertexTexCoord"
	AttribVertexColor    = "vertexColor"

	UniformMvpMatrix      = "uMvpMatrix"
	UniformTexMatrix      = "uTexMatrix"
	UniformTileMatrix     = "uTileMatrix"
	UniformColor          = "uColor"
	UniformUseTexture     = "uUseTexture"
	UniformUseVertexColor = "uUseVertexColor"
	UniformTexture        = "uTexture"
)

// Context is the subset of a graphics API the engine needs. All methods
// must be called from the goroutine that owns the graphics context.
type Context interface {
	// CreateBuffer returns a new buffer name, or 0 on failure.
	CreateBuffer() uint32
	DeleteBuffer(id uint32)
	UploadVertices(id uint32, data []float32)
	UploadIndices(id uint32, data []uint32)

	UseProgram(p Program)

	// EnableVertexAttrib binds buffer to the named float attribute with the
	// given component count. It returns false when the program has no such
	// attribute.
	EnableVertexAttrib(p Program, name string, buffer uint32, components int) bool
	DisableVertexAttrib(p Program, name string)

	SetUniformMatrix(p Program, name string, m math.Mat4)
	SetUniformColor(p Program, name string, r, g, b, a float32)
	SetUniformInt(p Program, name string, v int32)

	DrawElements(mode Primitive, indexBuffer uint32, count int)
	DrawArrays(mode Primitive, first, count int)

	// CreateTexture uploads img and returns the texture name, or 0.
	CreateTexture(img *image.RGBA) uint32
	DeleteTexture(id uint32)
	BindTexture(unit int, id uint32)

	// UniquePickColor returns the next sequential pick color code.
	UniquePickColor() int

	// BeginPickPass redirects drawing to the pick buffer and clears it;
	// EndPickPass restores normal drawing.
	BeginPickPass()
	EndPickPass()

	// ReadPickColor returns the color code at the window pixel (x, y),
	// with y measured from the top. 0 means nothing was drawn there.
	ReadPickColor(x, y int) int
}
