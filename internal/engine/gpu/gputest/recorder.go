// Package gputest provides a recording gpu.Context for tests that exercise
// rendering and picking without a window or driver.
package gputest

import (
	"image"

	"github.com/Faultbox/midgard-globe/internal/engine/gpu"
	"github.com/Faultbox/midgard-globe/internal/engine/picking"
	"github.com/Faultbox/midgard-globe/pkg/math"
)

// Draw is one recorded draw call.
type Draw struct {
	Mode        gpu.Primitive
	IndexBuffer uint32 // 0 for DrawArrays
	First       int
	Count       int
	Pick        bool
	Color       [4]float32
	Matrix      math.Mat4
	Attribs     map[string]uint32
	Texture     uint32
}

// Recorder is an in-memory gpu.Context. The zero value is not usable;
// call New.
type Recorder struct {
	Vertices map[uint32][]float32
	Indices  map[uint32][]uint32
	Textures map[uint32]image.Rectangle

	Draws           []Draw
	DeletedBuffers  []uint32
	DeletedTextures []uint32
	Uploads         map[uint32]int

	// FailBuffers makes CreateBuffer return 0.
	FailBuffers bool

	// PickFunc answers ReadPickColor. It receives the pick pass number
	// since the last ResetFrame, starting at 1.
	PickFunc func(pass int, x, y int) int

	nextID   uint32
	colors   picking.Allocator
	pickPass int
	picking  bool
	attribs  map[string]uint32
	uniforms map[string]any
	boundTex uint32
	program  gpu.Program
}

// New returns an empty recorder.
func New() *Recorder {
	return &Recorder{
		Vertices: make(map[uint32][]float32),
		Indices:  make(map[uint32][]uint32),
		Textures: make(map[uint32]image.Rectangle),
		Uploads:  make(map[uint32]int),
		attribs:  make(map[string]uint32),
		uniforms: make(map[string]any),
	}
}

func (r *Recorder) CreateBuffer() uint32 {
	if r.FailBuffers {
		return 0
	}
	r.nextID++
	return r.nextID
}

func (r *Recorder) DeleteBuffer(id uint32) {
	delete(r.Vertices, id)
	delete(r.Indices, id)
	r.DeletedBuffers = append(r.DeletedBuffers, id)
}

func (r *Recorder) UploadVertices(id uint32, data []float32) {
	r.Vertices[id] = append([]float32(nil), data...)
	r.Uploads[id]++
}

func (r *Recorder) UploadIndices(id uint32, data []uint32) {
	r.Indices[id] = append([]uint32(nil), data...)
	r.Uploads[id]++
}

func (r *Recorder) UseProgram(p gpu.Program) { r.program = p }

func (r *Recorder) EnableVertexAttrib(_ gpu.Program, name string, buffer uint32, _ int) bool {
	r.attribs[name] = buffer
	return true
}

func (r *Recorder) DisableVertexAttrib(_ gpu.Program, name string) {
	delete(r.attribs, name)
}

func (r *Recorder) SetUniformMatrix(_ gpu.Program, name string, m math.Mat4) {
	r.uniforms[name] = m
}

func (r *Recorder) SetUniformColor(_ gpu.Program, name string, red, green, blue, alpha float32) {
	r.uniforms[name] = [4]float32{red, green, blue, alpha}
}

func (r *Recorder) SetUniformInt(_ gpu.Program, name string, v int32) {
	r.uniforms[name] = v
}

// Uniform returns the last value set for name.
func (r *Recorder) Uniform(name string) any { return r.uniforms[name] }

func (r *Recorder) DrawElements(mode gpu.Primitive, indexBuffer uint32, count int) {
	r.record(mode, indexBuffer, 0, count)
}

func (r *Recorder) DrawArrays(mode gpu.Primitive, first, count int) {
	r.record(mode, 0, first, count)
}

func (r *Recorder) record(mode gpu.Primitive, indexBuffer uint32, first, count int) {
	d := Draw{
		Mode:        mode,
		IndexBuffer: indexBuffer,
		First:       first,
		Count:       count,
		Pick:        r.picking,
		Texture:     r.boundTex,
		Attribs:     make(map[string]uint32, len(r.attribs)),
	}
	for k, v := range r.attribs {
		d.Attribs[k] = v
	}
	if c, ok := r.uniforms[gpu.UniformColor].([4]float32); ok {
		d.Color = c
	}
	if m, ok := r.uniforms[gpu.UniformMvpMatrix].(math.Mat4); ok {
		d.Matrix = m
	}
	r.Draws = append(r.Draws, d)
}

func (r *Recorder) CreateTexture(img *image.RGBA) uint32 {
	r.nextID++
	r.Textures[r.nextID] = img.Bounds()
	return r.nextID
}

func (r *Recorder) DeleteTexture(id uint32) {
	delete(r.Textures, id)
	r.DeletedTextures = append(r.DeletedTextures, id)
}

func (r *Recorder) BindTexture(_ int, id uint32) { r.boundTex = id }

func (r *Recorder) UniquePickColor() int { return r.colors.Next() }

func (r *Recorder) BeginPickPass() {
	r.picking = true
	r.pickPass++
}

func (r *Recorder) EndPickPass() { r.picking = false }

func (r *Recorder) ReadPickColor(x, y int) int {
	if r.PickFunc == nil {
		return 0
	}
	return r.PickFunc(r.pickPass, x, y)
}

// ResetFrame clears the per-frame draw log and pick state.
func (r *Recorder) ResetFrame() {
	r.Draws = r.Draws[:0]
	r.colors.Reset()
	r.pickPass = 0
}

// DrawsOf returns the recorded draws using mode.
func (r *Recorder) DrawsOf(mode gpu.Primitive) []Draw {
	var out []Draw
	for _, d := range r.Draws {
		if d.Mode == mode {
			out = append(out, d)
		}
	}
	return out
}

var _ gpu.Context = (*Recorder)(nil)
