package camera

import (
	"image"
	"testing"
)

func TestControllerGestures(t *testing.T) {
	tests := []struct {
		name   string
		run    func(c *Controller)
		check  func(cam *GlobeCamera) bool
		clicks int
	}{
		{
			name: "left drag pans",
			run: func(c *Controller) {
				c.PointerDown(ButtonLeft, image.Pt(100, 100))
				c.PointerMove(image.Pt(100, 150))
				c.PointerUp(ButtonLeft, image.Pt(100, 150))
			},
			check: func(cam *GlobeCamera) bool { return cam.Lat > 0 && cam.Heading == 0 },
		},
		{
			name: "right drag turns",
			run: func(c *Controller) {
				c.PointerDown(ButtonRight, image.Pt(100, 100))
				c.PointerMove(image.Pt(140, 120))
				c.PointerUp(ButtonRight, image.Pt(140, 120))
			},
			check: func(cam *GlobeCamera) bool { return cam.Heading == 10 && cam.Tilt == 5 && cam.Lat == 0 },
		},
		{
			name: "press and release in place clicks",
			run: func(c *Controller) {
				c.PointerDown(ButtonLeft, image.Pt(10, 10))
				c.PointerMove(image.Pt(11, 12))
				c.PointerUp(ButtonLeft, image.Pt(11, 12))
			},
			check:  func(cam *GlobeCamera) bool { return true },
			clicks: 1,
		},
		{
			name: "wheel zooms in",
			run:  func(c *Controller) { c.Wheel(1) },
			check: func(cam *GlobeCamera) bool {
				return cam.Range < NewGlobeCamera().Range
			},
		},
		{
			name: "second button ignored during a drag",
			run: func(c *Controller) {
				c.PointerDown(ButtonLeft, image.Pt(0, 0))
				c.PointerDown(ButtonRight, image.Pt(0, 0))
				c.PointerUp(ButtonRight, image.Pt(0, 0))
				c.PointerUp(ButtonLeft, image.Pt(0, 0))
			},
			check:  func(cam *GlobeCamera) bool { return true },
			clicks: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam := NewGlobeCamera()
			c := NewController(cam)
			tt.run(c)
			if !tt.check(cam) {
				t.Errorf("camera = %+v", *cam)
			}
			if got := len(c.TakeClicks()); got != tt.clicks {
				t.Errorf("clicks = %d, want %d", got, tt.clicks)
			}
			if c.Dragging() {
				t.Error("drag still in progress")
			}
		})
	}
}
