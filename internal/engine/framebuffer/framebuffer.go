// Package framebuffer provides OpenGL framebuffer utilities for offscreen rendering.
package framebuffer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// Framebuffer manages an offscreen render target with an RGBA8 color
// texture and a depth renderbuffer. The pick pass draws into one with
// filtering disabled so color codes read back unchanged.
type Framebuffer struct {
	fbo          uint32
	colorTexture uint32
	depthRBO     uint32
	width        int32
	height       int32

	prevFBO      int32
	prevViewport [4]int32
	bound        bool
}

// New creates a new framebuffer with the specified dimensions.
func New(width, height int32) (*Framebuffer, error) {
	fb := &Framebuffer{
		width:  max(width, 1),
		height: max(height, 1),
	}
	if err := fb.create(); err != nil {
		return nil, fmt.Errorf("creating framebuffer: %w", err)
	}
	return fb, nil
}

func (fb *Framebuffer) create() error {
	gl.GenFramebuffers(1, &fb.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, fb.fbo)

	gl.GenTextures(1, &fb.colorTexture)
	gl.BindTexture(gl.TEXTURE_2D, fb.colorTexture)
	fb.allocate()
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, fb.colorTexture, 0)

	gl.GenRenderbuffers(1, &fb.depthRBO)
	gl.BindRenderbuffer(gl.RENDERBUFFER, fb.depthRBO)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, fb.width, fb.height)
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, fb.depthRBO)

	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		fb.Destroy()
		return fmt.Errorf("framebuffer incomplete: 0x%x", status)
	}
	return nil
}

func (fb *Framebuffer) allocate() {
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, fb.width, fb.height, 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
}

// Bind makes this framebuffer the render target, remembering the previous
// framebuffer and viewport for Unbind. Nested binds are ignored.
func (fb *Framebuffer) Bind() {
	if fb.bound {
		return
	}
	gl.GetIntegerv(gl.FRAMEBUFFER_BINDING, &fb.prevFBO)
	gl.GetIntegerv(gl.VIEWPORT, &fb.prevViewport[0])
	gl.BindFramebuffer(gl.FRAMEBUFFER, fb.fbo)
	gl.Viewport(0, 0, fb.width, fb.height)
	fb.bound = true
}

// Unbind restores the framebuffer and viewport active before Bind.
func (fb *Framebuffer) Unbind() {
	if !fb.bound {
		return
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(fb.prevFBO))
	v := fb.prevViewport
	gl.Viewport(v[0], v[1], v[2], v[3])
	fb.bound = false
}

// Clear clears color and depth buffers with the specified color.
func (fb *Framebuffer) Clear(r, g, b, a float32) {
	gl.ClearColor(r, g, b, a)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// Size returns the framebuffer dimensions.
func (fb *Framebuffer) Size() (width, height int32) {
	return fb.width, fb.height
}

// Resize updates the framebuffer dimensions if they have changed.
func (fb *Framebuffer) Resize(width, height int32) {
	width, height = max(width, 1), max(height, 1)
	if width == fb.width && height == fb.height {
		return
	}
	fb.width, fb.height = width, height

	gl.BindTexture(gl.TEXTURE_2D, fb.colorTexture)
	fb.allocate()
	gl.BindTexture(gl.TEXTURE_2D, 0)

	gl.BindRenderbuffer(gl.RENDERBUFFER, fb.depthRBO)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, fb.width, fb.height)
	gl.BindRenderbuffer(gl.RENDERBUFFER, 0)
}

// ReadPixel returns the color at (x, y) in framebuffer coordinates, origin
// at the bottom-left. Out of range coordinates read as zero.
func (fb *Framebuffer) ReadPixel(x, y int32) (r, g, b, a uint8) {
	if x < 0 || y < 0 || x >= fb.width || y >= fb.height {
		return 0, 0, 0, 0
	}
	var px [4]uint8
	var prev int32
	gl.GetIntegerv(gl.READ_FRAMEBUFFER_BINDING, &prev)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, fb.fbo)
	gl.ReadPixels(x, y, 1, 1, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(&px[0]))
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, uint32(prev))
	return px[0], px[1], px[2], px[3]
}

// Destroy releases all OpenGL resources.
func (fb *Framebuffer) Destroy() {
	if fb.fbo != 0 {
		gl.DeleteFramebuffers(1, &fb.fbo)
		fb.fbo = 0
	}
	if fb.colorTexture != 0 {
		gl.DeleteTextures(1, &fb.colorTexture)
		fb.colorTexture = 0
	}
	if fb.depthRBO != 0 {
		gl.DeleteRenderbuffers(1, &fb.depthRBO)
		fb.depthRBO = 0
	}
}
