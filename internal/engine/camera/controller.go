package camera

import "image"

// Button identifies a pointer button.
type Button int

const (
	ButtonLeft Button = iota + 1
	ButtonMiddle
	ButtonRight
)

// clickSlop is how far, in pixels, the pointer may move between press and
// release for the release to count as a click.
const clickSlop = 3

// Controller turns pointer gestures into camera navigation: a left drag
// pans, a right drag turns and tilts, the wheel zooms and a left press and
// release in place is a click.
type Controller struct {
	Camera *GlobeCamera

	pressed Button
	press   image.Point
	last    image.Point
	moved   bool
	clicks  []image.Point
}

// NewController controls cam.
func NewController(cam *GlobeCamera) *Controller {
	return &Controller{Camera: cam}
}

// PointerDown starts a drag with button b at p. A second button pressed
// during a drag is ignored.
func (c *Controller) PointerDown(b Button, p image.Point) {
	if c.pressed != 0 {
		return
	}
	c.pressed, c.press, c.last, c.moved = b, p, p, false
}

// PointerMove continues the current drag.
func (c *Controller) PointerMove(p image.Point) {
	if c.pressed == 0 {
		return
	}
	dx, dy := float64(p.X-c.last.X), float64(p.Y-c.last.Y)
	c.last = p
	if d := p.Sub(c.press); abs(d.X) > clickSlop || abs(d.Y) > clickSlop {
		c.moved = true
	}
	switch c.pressed {
	case ButtonLeft:
		c.Camera.HandleDrag(dx, dy)
	case ButtonRight:
		c.Camera.HandleTurn(dx, dy)
	}
}

// PointerUp ends the drag started with b.
func (c *Controller) PointerUp(b Button, p image.Point) {
	if b != c.pressed {
		return
	}
	if b == ButtonLeft && !c.moved {
		c.clicks = append(c.clicks, p)
	}
	c.pressed = 0
}

// Wheel zooms in for positive delta.
func (c *Controller) Wheel(delta float64) {
	c.Camera.HandleZoom(delta)
}

// Dragging reports whether a drag is in progress.
func (c *Controller) Dragging() bool { return c.pressed != 0 }

// TakeClicks returns the clicks since the last call.
func (c *Controller) TakeClicks() []image.Point {
	out := c.clicks
	c.clicks = nil
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
