// Package frame holds the per-frame draw context passed to the terrain
// tessellator and the layers that draw on it.
package frame

import (
	"image"
	"time"

	"github.com/Faultbox/midgard-globe/internal/engine/camera"
	"github.com/Faultbox/midgard-globe/internal/engine/gpu"
	"github.com/Faultbox/midgard-globe/internal/engine/picking"
	"github.com/Faultbox/midgard-globe/internal/globe"
	"github.com/Faultbox/midgard-globe/pkg/geo"
)

// Context is rebuilt by the scene every frame. It is only used on the
// render goroutine.
type Context struct {
	Globe globe.Globe
	View  *camera.View

	// VerticalExaggeration scales elevations; 0 is treated as 1.
	VerticalExaggeration float64

	// GPU is nil for headless tessellation.
	GPU            gpu.Context
	Resources      *gpu.ResourceCache
	SurfaceProgram gpu.Program
	PickProgram    gpu.Program

	Timestamp time.Time

	// VisibleSector is the union of the selected terrain tile sectors,
	// set by the tessellator.
	VisibleSector geo.Sector

	// Picking is set while the scene runs its pick pass at PickPoint.
	Picking       bool
	PickPoint     image.Point
	PickedObjects []picking.PickedObject
}

// Exaggeration returns the vertical exaggeration, defaulting to 1.
func (dc *Context) Exaggeration() float64 {
	if dc.VerticalExaggeration == 0 {
		return 1
	}
	return dc.VerticalExaggeration
}

// CanDraw reports whether the context has a graphics backend.
func (dc *Context) CanDraw() bool {
	return dc.GPU != nil && dc.Resources != nil
}

// AddPickedObject records a pick result for this frame.
func (dc *Context) AddPickedObject(po picking.PickedObject) {
	dc.PickedObjects = append(dc.PickedObjects, po)
}

// TopPickedObject returns the first recorded pick result, or nil.
func (dc *Context) TopPickedObject() *picking.PickedObject {
	if len(dc.PickedObjects) == 0 {
		return nil
	}
	return &dc.PickedObjects[0]
}
