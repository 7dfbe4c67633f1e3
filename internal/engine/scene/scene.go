// Package scene drives a frame of the globe: terrain tessellation, the
// imagery drawn over it, debug presentations and picking.
package scene

import (
	"context"
	"fmt"
	"image"
	"io"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-globe/internal/engine/camera"
	"github.com/Faultbox/midgard-globe/internal/engine/frame"
	"github.com/Faultbox/midgard-globe/internal/engine/gpu"
	"github.com/Faultbox/midgard-globe/internal/engine/imagery"
	"github.com/Faultbox/midgard-globe/internal/engine/picking"
	"github.com/Faultbox/midgard-globe/internal/engine/terrain"
	"github.com/Faultbox/midgard-globe/internal/globe"
	"github.com/Faultbox/midgard-globe/internal/logger"
	"github.com/Faultbox/midgard-globe/pkg/math"
)

// DefaultGPUCacheCapacity is the GPU resource budget when none is given.
const DefaultGPUCacheCapacity = 256 << 20

// DebugOptions toggles the per-tile debug presentations.
type DebugOptions struct {
	Wireframe       bool
	Outline         bool
	BoundingVolumes bool
}

// Options configures a Scene.
type Options struct {
	Terrain terrain.Config

	// Imagery is nil for bare terrain. Retriever must be set with it.
	Imagery   *imagery.Config
	Retriever imagery.Retriever
	// ImageryOpacity of 0 draws opaque imagery.
	ImageryOpacity float64

	GPUCacheCapacity     int64
	VerticalExaggeration float64

	// SurfaceColor is the color of terrain without imagery.
	SurfaceColor [4]float32

	Debug DebugOptions

	// Closers are closed by Close after the imagery workers stop.
	Closers []io.Closer
}

// DefaultOptions returns bare terrain with the default tessellation.
func DefaultOptions() Options {
	return Options{
		Terrain:              terrain.DefaultConfig(),
		GPUCacheCapacity:     DefaultGPUCacheCapacity,
		VerticalExaggeration: 1,
		SurfaceColor:         [4]float32{0.36, 0.42, 0.30, 1},
	}
}

// Frame reports what one Render call did.
type Frame struct {
	Number  uint64
	Tiles   *terrain.TileList
	Imagery int
	Picked  *picking.PickedObject
	Elapsed time.Duration
}

// Scene owns the tessellator, the imagery layer and the GPU resource cache
// for one graphics context. Render and Close must run on the goroutine
// owning that context.
type Scene struct {
	globe     globe.Globe
	gpu       gpu.Context
	surface   gpu.Program
	pick      gpu.Program
	resources *gpu.ResourceCache
	tess      *terrain.Tessellator
	imagery   *imagery.Layer
	opts      Options
	log       *zap.Logger

	frames uint64
	closed bool
}

// New creates a scene drawing g through ctx with the given programs.
func New(g globe.Globe, ctx gpu.Context, surface, pick gpu.Program, opts Options) (*Scene, error) {
	if ctx == nil {
		return nil, fmt.Errorf("%w: nil graphics context", terrain.ErrInvalidArgument)
	}
	tess, err := terrain.New(g, opts.Terrain)
	if err != nil {
		return nil, err
	}
	if opts.GPUCacheCapacity <= 0 {
		opts.GPUCacheCapacity = DefaultGPUCacheCapacity
	}
	if opts.VerticalExaggeration <= 0 {
		opts.VerticalExaggeration = 1
	}

	s := &Scene{
		globe:     g,
		gpu:       ctx,
		surface:   surface,
		pick:      pick,
		resources: gpu.NewResourceCache(ctx, opts.GPUCacheCapacity),
		tess:      tess,
		opts:      opts,
		log:       logger.Named("scene"),
	}
	if opts.Imagery != nil {
		if s.imagery, err = imagery.New(opts.Retriever, *opts.Imagery); err != nil {
			return nil, fmt.Errorf("imagery layer: %w", err)
		}
		if opts.ImageryOpacity > 0 {
			s.imagery.SetOpacity(opts.ImageryOpacity)
		}
	}
	s.log.Info("scene ready",
		zap.Int("terrain_levels", tess.Levels().NumLevels()),
		zap.Bool("imagery", s.imagery != nil),
		zap.Int64("gpu_cache", opts.GPUCacheCapacity))
	return s, nil
}

// Tessellator returns the terrain tessellator.
func (s *Scene) Tessellator() *terrain.Tessellator { return s.tess }

// Imagery returns the imagery layer, or nil.
func (s *Scene) Imagery() *imagery.Layer { return s.imagery }

// Resources returns the GPU resource cache.
func (s *Scene) Resources() *gpu.ResourceCache { return s.resources }

// Debug returns the current debug options.
func (s *Scene) Debug() DebugOptions { return s.opts.Debug }

// SetDebug replaces the debug options.
func (s *Scene) SetDebug(d DebugOptions) { s.opts.Debug = d }

// VerticalExaggeration returns the elevation scale.
func (s *Scene) VerticalExaggeration() float64 { return s.opts.VerticalExaggeration }

// SetVerticalExaggeration changes the elevation scale. Terrain geometry is
// rebuilt on the next frame.
func (s *Scene) SetVerticalExaggeration(ve float64) {
	if ve > 0 {
		s.opts.VerticalExaggeration = ve
	}
}

// Render draws one frame for view. When pickPoint is non-nil the terrain
// under it is resolved after drawing.
func (s *Scene) Render(view *camera.View, pickPoint *image.Point) Frame {
	start := time.Now()
	s.frames++
	dc := &frame.Context{
		Globe:                s.globe,
		View:                 view,
		VerticalExaggeration: s.opts.VerticalExaggeration,
		GPU:                  s.gpu,
		Resources:            s.resources,
		SurfaceProgram:       s.surface,
		PickProgram:          s.pick,
		Timestamp:            start,
	}

	list := s.tess.Tessellate(dc)
	s.renderSurface(dc, list)

	f := Frame{Number: s.frames, Tiles: list}
	if s.imagery != nil {
		s.imagery.Render(dc, list)
		f.Imagery = len(s.imagery.CurrentTiles())
	}
	s.renderDebug(dc, list)

	if pickPoint != nil {
		dc.Picking, dc.PickPoint = true, *pickPoint
		if po := list.Pick(dc, *pickPoint); po != nil {
			dc.AddPickedObject(*po)
		}
		f.Picked = dc.TopPickedObject()
	}
	f.Elapsed = time.Since(start)
	return f
}

// renderSurface draws every tile untextured so the globe is complete
// wherever imagery is missing.
func (s *Scene) renderSurface(dc *frame.Context, list *terrain.TileList) {
	if !list.BeginRendering(dc) {
		return
	}
	defer list.EndRendering(dc)

	c := s.opts.SurfaceColor
	s.gpu.SetUniformInt(s.surface, gpu.UniformUseTexture, 0)
	s.gpu.SetUniformMatrix(s.surface, gpu.UniformTexMatrix, math.Identity())
	s.gpu.SetUniformMatrix(s.surface, gpu.UniformTileMatrix, math.Identity())
	s.gpu.SetUniformColor(s.surface, gpu.UniformColor, c[0], c[1], c[2], c[3])
	for _, st := range list.Tiles {
		list.Render(dc, st)
	}
}

func (s *Scene) renderDebug(dc *frame.Context, list *terrain.TileList) {
	d := s.opts.Debug
	if !d.Wireframe && !d.Outline && !d.BoundingVolumes {
		return
	}
	if !list.BeginRendering(dc) {
		return
	}
	defer list.EndRendering(dc)

	g, prog := s.gpu, s.surface
	g.SetUniformInt(prog, gpu.UniformUseTexture, 0)
	g.SetUniformMatrix(prog, gpu.UniformTileMatrix, math.Identity())
	if d.Wireframe {
		g.SetUniformColor(prog, gpu.UniformColor, 1, 1, 1, 0.35)
		for _, st := range list.Tiles {
			s.tess.RenderWireframe(dc, st)
		}
	}
	if d.Outline {
		g.SetUniformColor(prog, gpu.UniformColor, 1, 0.85, 0.1, 1)
		for _, st := range list.Tiles {
			s.tess.RenderOutline(dc, st)
		}
	}
	if d.BoundingVolumes {
		g.SetUniformColor(prog, gpu.UniformColor, 0.2, 0.9, 1, 1)
		for _, st := range list.Tiles {
			s.tess.RenderBoundingVolume(dc, st)
		}
	}
}

// Close stops imagery retrieval, releases every GPU object the scene made
// and closes opts.Closers. It returns all errors encountered.
func (s *Scene) Close(ctx context.Context) error {
	if s.closed {
		return nil
	}
	s.closed = true

	var err error
	if s.imagery != nil {
		err = multierr.Append(err, s.imagery.Close(ctx))
		s.imagery.Release(s.gpu)
	}
	s.tess.Release(s.gpu)
	s.resources.Clear()
	for _, c := range s.opts.Closers {
		err = multierr.Append(err, c.Close())
	}
	if err != nil {
		s.log.Warn("scene closed with errors", zap.Error(err))
	}
	return err
}
