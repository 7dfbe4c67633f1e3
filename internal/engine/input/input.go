// Package input translates SDL2 events into viewer actions and camera
// navigation.
package input

import (
	"image"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/midgard-globe/internal/engine/camera"
)

// Action is a keyboard command of the viewer.
type Action int

const (
	ActionNone Action = iota
	ActionQuit
	ActionToggleWireframe
	ActionToggleFill
	ActionToggleOutline
	ActionToggleBoundingVolumes
	ActionToggleImagery
	ActionDumpCoverage
	ActionScreenshot
	ActionExpireAll
	ActionIncreaseDetail
	ActionDecreaseDetail
)

var keyActions = map[sdl.Scancode]Action{
	sdl.SCANCODE_ESCAPE: ActionQuit,
	sdl.SCANCODE_W:      ActionToggleWireframe,
	sdl.SCANCODE_F:      ActionToggleFill,
	sdl.SCANCODE_O:      ActionToggleOutline,
	sdl.SCANCODE_B:      ActionToggleBoundingVolumes,
	sdl.SCANCODE_I:      ActionToggleImagery,
	sdl.SCANCODE_C:      ActionDumpCoverage,
	sdl.SCANCODE_F12:    ActionScreenshot,
	sdl.SCANCODE_R:      ActionExpireAll,
	sdl.SCANCODE_EQUALS: ActionIncreaseDetail,
	sdl.SCANCODE_MINUS:  ActionDecreaseDetail,
}

// Frame is what happened since the previous Update.
type Frame struct {
	Quit    bool
	Resized bool
	Width   int
	Height  int
	Actions []Action
	// Clicks are in drawable pixels.
	Clicks []image.Point
}

// Input handles all input processing.
type Input struct {
	nav   *camera.Controller
	scale float64
	frame Frame
}

// New feeds pointer gestures to nav. scale converts window coordinates to
// drawable pixels.
func New(nav *camera.Controller, scale float64) *Input {
	if scale <= 0 {
		scale = 1
	}
	return &Input{nav: nav, scale: scale}
}

// SetScale updates the window to drawable pixel ratio.
func (i *Input) SetScale(scale float64) {
	if scale > 0 {
		i.scale = scale
	}
}

func (i *Input) point(x, y int32) image.Point {
	return image.Pt(int(float64(x)*i.scale), int(float64(y)*i.scale))
}

// Update polls SDL events, drives the camera and returns the frame's
// viewer actions.
func (i *Input) Update() Frame {
	i.frame = Frame{Actions: i.frame.Actions[:0]}

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			i.frame.Quit = true

		case *sdl.WindowEvent:
			if e.Event == sdl.WINDOWEVENT_RESIZED || e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
				i.frame.Resized = true
				i.frame.Width, i.frame.Height = int(e.Data1), int(e.Data2)
			}

		case *sdl.KeyboardEvent:
			if e.Type != sdl.KEYDOWN || e.Repeat != 0 {
				continue
			}
			if a, ok := keyActions[e.Keysym.Scancode]; ok {
				if a == ActionQuit {
					i.frame.Quit = true
				}
				i.frame.Actions = append(i.frame.Actions, a)
			}

		case *sdl.MouseMotionEvent:
			i.nav.PointerMove(i.point(e.X, e.Y))

		case *sdl.MouseButtonEvent:
			b := button(e.Button)
			if b == 0 {
				continue
			}
			if e.Type == sdl.MOUSEBUTTONDOWN {
				i.nav.PointerDown(b, i.point(e.X, e.Y))
			} else {
				i.nav.PointerUp(b, i.point(e.X, e.Y))
			}

		case *sdl.MouseWheelEvent:
			dy := float64(e.Y)
			if e.Direction == sdl.MOUSEWHEEL_FLIPPED {
				dy = -dy
			}
			i.nav.Wheel(dy)
		}
	}

	i.frame.Clicks = i.nav.TakeClicks()
	return i.frame
}

func button(b uint8) camera.Button {
	switch b {
	case sdl.BUTTON_LEFT:
		return camera.ButtonLeft
	case sdl.BUTTON_MIDDLE:
		return camera.ButtonMiddle
	case sdl.BUTTON_RIGHT:
		return camera.ButtonRight
	}
	return 0
}
