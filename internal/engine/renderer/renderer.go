// Package renderer implements gpu.Context on OpenGL 4.1 core.
package renderer

import (
	"fmt"
	"image"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-globe/internal/engine/framebuffer"
	"github.com/Faultbox/midgard-globe/internal/engine/gpu"
	"github.com/Faultbox/midgard-globe/internal/engine/picking"
	"github.com/Faultbox/midgard-globe/internal/engine/shader"
	"github.com/Faultbox/midgard-globe/internal/logger"
	"github.com/Faultbox/midgard-globe/pkg/math"
)

// Config holds renderer configuration.
type Config struct {
	Width  int
	Height int

	// ClearColor is the background behind the globe.
	ClearColor [4]float32
	// Wireframe draws the surface program's triangles as lines.
	Wireframe bool
}

// DefaultConfig returns a 1280x720 renderer clearing to a dark blue.
func DefaultConfig() Config {
	return Config{Width: 1280, Height: 720, ClearColor: [4]float32{0.02, 0.02, 0.06, 1}}
}

// FrameStats counts the GL work of the last frame.
type FrameStats struct {
	Draws          int
	PickDraws      int
	TextureUploads int
	BufferUploads  int
}

type location struct {
	program gpu.Program
	name    string
}

// Renderer is the OpenGL gpu.Context. Every method must run on the
// goroutine that created it, which owns the GL context.
type Renderer struct {
	config Config
	log    *zap.Logger

	programs *shader.Programs
	vao      uint32
	pickFB   *framebuffer.Framebuffer
	colors   picking.Allocator
	picking  bool

	uniforms map[location]int32
	attribs  map[location]int32

	stats FrameStats
}

// New initializes OpenGL and creates the renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config) (*Renderer, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	r := &Renderer{
		config:   cfg,
		log:      logger.Named("gpu"),
		uniforms: make(map[location]int32),
		attribs:  make(map[location]int32),
	}
	r.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LEQUAL)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	c := cfg.ClearColor
	gl.ClearColor(c[0], c[1], c[2], c[3])

	var err error
	if r.programs, err = shader.Load(); err != nil {
		return nil, fmt.Errorf("failed to create shader programs: %w", err)
	}
	if err := r.programs.Validate(map[string][]string{
		"surface": {gpu.UniformMvpMatrix, gpu.UniformTexMatrix, gpu.UniformTileMatrix, gpu.UniformColor, gpu.UniformUseTexture},
		"pick":    {gpu.UniformMvpMatrix, gpu.UniformColor, gpu.UniformUseVertexColor},
	}); err != nil {
		r.programs.Delete()
		return nil, err
	}

	// Core profile draws need a bound vertex array; one serves every draw.
	gl.GenVertexArrays(1, &r.vao)
	gl.BindVertexArray(r.vao)

	if r.pickFB, err = framebuffer.New(int32(cfg.Width), int32(cfg.Height)); err != nil {
		r.Close()
		return nil, fmt.Errorf("failed to create pick framebuffer: %w", err)
	}
	r.Resize(cfg.Width, cfg.Height)
	return r, nil
}

// SurfaceProgram returns the program terrain and imagery draw with.
func (r *Renderer) SurfaceProgram() gpu.Program { return gpu.Program(r.programs.Surface) }

// PickProgram returns the program pick passes draw with.
func (r *Renderer) PickProgram() gpu.Program { return gpu.Program(r.programs.Pick) }

// Stats returns the counters of the last completed frame.
func (r *Renderer) Stats() FrameStats { return r.stats }

// SetWireframe toggles line rasterization of filled triangles.
func (r *Renderer) SetWireframe(on bool) {
	r.config.Wireframe = on
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	r.log.Info("closing renderer")
	if r.pickFB != nil {
		r.pickFB.Destroy()
		r.pickFB = nil
	}
	if r.vao != 0 {
		gl.DeleteVertexArrays(1, &r.vao)
		r.vao = 0
	}
	if r.programs != nil {
		r.programs.Delete()
	}
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	if r.pickFB != nil {
		r.pickFB.Resize(int32(width), int32(height))
	}
	r.log.Debug("renderer resized", zap.Int("width", width), zap.Int("height", height))
}

// Viewport returns the drawable rectangle.
func (r *Renderer) Viewport() image.Rectangle {
	return image.Rect(0, 0, r.config.Width, r.config.Height)
}

// Begin starts a new frame.
func (r *Renderer) Begin() {
	r.stats = FrameStats{}
	r.colors.Reset()
	gl.BindVertexArray(r.vao)
	if r.config.Wireframe {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
	} else {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// End finishes the frame and reports a pending GL error.
func (r *Renderer) End() error {
	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("gl error 0x%x", code)
	}
	return nil
}

func (r *Renderer) CreateBuffer() uint32 {
	var id uint32
	gl.GenBuffers(1, &id)
	return id
}

func (r *Renderer) DeleteBuffer(id uint32) {
	gl.DeleteBuffers(1, &id)
}

func (r *Renderer) UploadVertices(id uint32, data []float32) {
	if len(data) == 0 {
		return
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, id)
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.DYNAMIC_DRAW)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	r.stats.BufferUploads++
}

func (r *Renderer) UploadIndices(id uint32, data []uint32) {
	if len(data) == 0 {
		return
	}
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, id)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.STATIC_DRAW)
	r.stats.BufferUploads++
}

func (r *Renderer) UseProgram(p gpu.Program) {
	gl.UseProgram(uint32(p))
}

func (r *Renderer) attrib(p gpu.Program, name string) int32 {
	k := location{p, name}
	loc, ok := r.attribs[k]
	if !ok {
		loc = shader.Attrib(uint32(p), name)
		r.attribs[k] = loc
	}
	return loc
}

func (r *Renderer) uniform(p gpu.Program, name string) int32 {
	k := location{p, name}
	loc, ok := r.uniforms[k]
	if !ok {
		loc = shader.Uniform(uint32(p), name)
		if loc < 0 {
			r.log.Debug("inactive uniform", zap.String("name", name), zap.Uint32("program", uint32(p)))
		}
		r.uniforms[k] = loc
	}
	return loc
}

func (r *Renderer) EnableVertexAttrib(p gpu.Program, name string, buffer uint32, components int) bool {
	loc := r.attrib(p, name)
	if loc < 0 {
		return false
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, buffer)
	gl.VertexAttribPointer(uint32(loc), int32(components), gl.FLOAT, false, 0, nil)
	gl.EnableVertexAttribArray(uint32(loc))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return true
}

func (r *Renderer) DisableVertexAttrib(p gpu.Program, name string) {
	if loc := r.attrib(p, name); loc >= 0 {
		gl.DisableVertexAttribArray(uint32(loc))
	}
}

func (r *Renderer) SetUniformMatrix(p gpu.Program, name string, m math.Mat4) {
	if loc := r.uniform(p, name); loc >= 0 {
		f := m.Float32()
		gl.ProgramUniformMatrix4fv(uint32(p), loc, 1, false, &f[0])
	}
}

func (r *Renderer) SetUniformColor(p gpu.Program, name string, red, green, blue, alpha float32) {
	if loc := r.uniform(p, name); loc >= 0 {
		gl.ProgramUniform4f(uint32(p), loc, red, green, blue, alpha)
	}
}

func (r *Renderer) SetUniformInt(p gpu.Program, name string, v int32) {
	if loc := r.uniform(p, name); loc >= 0 {
		gl.ProgramUniform1i(uint32(p), loc, v)
	}
}

func glMode(mode gpu.Primitive) uint32 {
	switch mode {
	case gpu.TriangleStrip:
		return gl.TRIANGLE_STRIP
	case gpu.Lines:
		return gl.LINES
	case gpu.LineStrip:
		return gl.LINE_STRIP
	}
	return gl.TRIANGLES
}

func (r *Renderer) DrawElements(mode gpu.Primitive, indexBuffer uint32, count int) {
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, indexBuffer)
	gl.DrawElements(glMode(mode), int32(count), gl.UNSIGNED_INT, nil)
	r.countDraw()
}

func (r *Renderer) DrawArrays(mode gpu.Primitive, first, count int) {
	gl.DrawArrays(glMode(mode), int32(first), int32(count))
	r.countDraw()
}

func (r *Renderer) countDraw() {
	if r.picking {
		r.stats.PickDraws++
	} else {
		r.stats.Draws++
	}
}

// CreateTexture uploads img with a full mipmap chain and edge clamping.
func (r *Renderer) CreateTexture(img *image.RGBA) uint32 {
	b := img.Bounds()
	if b.Empty() {
		return 0
	}
	var id uint32
	gl.GenTextures(1, &id)
	if id == 0 {
		return 0
	}
	gl.BindTexture(gl.TEXTURE_2D, id)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, int32(img.Stride/4))
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(b.Dx()), int32(b.Dy()), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, 0)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	r.stats.TextureUploads++
	return id
}

func (r *Renderer) DeleteTexture(id uint32) {
	gl.DeleteTextures(1, &id)
}

func (r *Renderer) BindTexture(unit int, id uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
	gl.BindTexture(gl.TEXTURE_2D, id)
}

func (r *Renderer) UniquePickColor() int { return r.colors.Next() }

// BeginPickPass draws into the cleared pick framebuffer without blending
// or line rasterization so every pixel holds an exact color code.
func (r *Renderer) BeginPickPass() {
	r.picking = true
	r.pickFB.Bind()
	r.pickFB.Clear(0, 0, 0, 0)
	gl.Disable(gl.BLEND)
	gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
}

func (r *Renderer) EndPickPass() {
	if !r.picking {
		return
	}
	r.picking = false
	r.pickFB.Unbind()
	gl.Enable(gl.BLEND)
	if r.config.Wireframe {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
	}
	c := r.config.ClearColor
	gl.ClearColor(c[0], c[1], c[2], c[3])
}

// ReadPickColor reads the pick framebuffer, flipping y to GL's bottom-left
// origin.
func (r *Renderer) ReadPickColor(x, y int) int {
	_, h := r.pickFB.Size()
	red, green, blue, _ := r.pickFB.ReadPixel(int32(x), h-1-int32(y))
	return picking.CodeFromRGB(red, green, blue)
}

// ReadPixels returns the default framebuffer as a top-down RGBA image.
func (r *Renderer) ReadPixels() *image.RGBA {
	w, h := r.config.Width, r.config.Height
	pixels := make([]byte, w*h*4)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return FlipRows(pixels, w, h)
}

// FlipRows copies bottom-up RGBA rows into a top-down image.
func FlipRows(pixels []byte, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	row := width * 4
	for y := range height {
		src := (height - 1 - y) * row
		copy(img.Pix[y*img.Stride:y*img.Stride+row], pixels[src:src+row])
	}
	return img
}

var _ gpu.Context = (*Renderer)(nil)
