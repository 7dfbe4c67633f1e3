// Package viewer implements the interactive globe viewer: the window, the
// frame loop and the keyboard commands.
package viewer

import (
	"context"
	"fmt"
	"image"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-globe/internal/config"
	"github.com/Faultbox/midgard-globe/internal/engine/camera"
	"github.com/Faultbox/midgard-globe/internal/engine/imagery"
	"github.com/Faultbox/midgard-globe/internal/engine/input"
	"github.com/Faultbox/midgard-globe/internal/engine/renderer"
	"github.com/Faultbox/midgard-globe/internal/engine/scene"
	"github.com/Faultbox/midgard-globe/internal/engine/window"
	"github.com/Faultbox/midgard-globe/internal/globe"
	"github.com/Faultbox/midgard-globe/internal/logger"
)

// closeTimeout bounds the wait for imagery workers on shutdown.
const closeTimeout = 5 * time.Second

// Viewer is the main viewer instance.
type Viewer struct {
	config   *config.Config
	running  bool
	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	nav      *camera.Controller
	globe    globe.Globe
	scene    *scene.Scene
	controls *controls
	log      *zap.Logger

	// wireframe rasterizes every triangle as lines.
	wireframe bool
}

// New opens the window and builds the scene. Imagery tiles come from
// source when the configuration enables imagery; closers are closed with
// the scene.
func New(cfg *config.Config, source imagery.Retriever, closers ...io.Closer) (*Viewer, error) {
	v := &Viewer{
		config: cfg,
		log:    logger.Named("viewer"),
	}
	v.log.Info("initializing viewer",
		zap.String("title", cfg.Window.Title),
		zap.Int("width", cfg.Window.Width),
		zap.Int("height", cfg.Window.Height),
	)

	opts, err := scene.OptionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	opts.Retriever = source
	opts.Closers = closers
	if opts.Imagery != nil && source == nil {
		v.log.Warn("no imagery source, drawing bare terrain")
		opts.Imagery = nil
	}

	v.globe, err = scene.GlobeFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	// Create window (this also creates OpenGL context)
	v.window, err = window.New(window.Config{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// Create renderer (AFTER window, since OpenGL context must exist)
	rc := renderer.DefaultConfig()
	rc.Width, rc.Height = v.window.DrawableSize()
	v.renderer, err = renderer.New(rc)
	if err != nil {
		v.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	v.scene, err = scene.New(v.globe, v.renderer, v.renderer.SurfaceProgram(), v.renderer.PickProgram(), opts)
	if err != nil {
		v.renderer.Close()
		v.window.Close()
		return nil, fmt.Errorf("failed to create scene: %w", err)
	}

	v.nav = camera.NewController(scene.CameraFromConfig(cfg))
	v.input = input.New(v.nav, v.window.PixelScale())
	v.controls = newControls(v.scene, "")

	v.log.Info("viewer initialized successfully")
	return v, nil
}

// Run runs the frame loop until the window closes or ESC is pressed. A
// cancelled ctx stops the loop with ctx's error.
func (v *Viewer) Run(ctx context.Context) error {
	v.running = true

	frameCount := 0
	fpsTimer := time.Now()
	var frameTime time.Duration

	v.log.Info("starting frame loop")

	for v.running {
		if err := ctx.Err(); err != nil {
			return err
		}

		// 1. Process input
		in := v.input.Update()
		if in.Quit {
			v.running = false
			break
		}
		if in.Resized {
			w, h := v.window.DrawableSize()
			v.renderer.Resize(w, h)
			v.input.SetScale(v.window.PixelScale())
		}
		for _, a := range in.Actions {
			if a == input.ActionToggleFill {
				v.wireframe = !v.wireframe
				v.renderer.SetWireframe(v.wireframe)
				continue
			}
			v.controls.apply(a)
		}

		// 2. Render, picking at the first click of the frame
		var pick *image.Point
		if len(in.Clicks) > 0 {
			pick = &in.Clicks[0]
		}
		f := v.render(pick)
		frameTime += f.Elapsed
		if pick != nil {
			v.reportPick(*pick, f)
		}

		// 3. Screenshots read the back buffer before it is presented
		if v.controls.takeScreenshot() {
			v.controls.capture(v.renderer.ReadPixels())
		}

		// 4. Present (swap buffers)
		v.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			v.logFrameStats(frameCount, frameTime, f)
			frameCount, frameTime = 0, 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

func (v *Viewer) render(pick *image.Point) scene.Frame {
	vp := v.renderer.Viewport()
	view := v.nav.Camera.View(v.globe, v.scene.VerticalExaggeration(), vp.Dx(), vp.Dy())
	v.renderer.Begin()
	f := v.scene.Render(view, pick)
	if err := v.renderer.End(); err != nil {
		v.log.Warn("frame ended with error", zap.Uint64("frame", f.Number), zap.Error(err))
	}
	return f
}

func (v *Viewer) reportPick(p image.Point, f scene.Frame) {
	if f.Picked == nil {
		v.log.Info("nothing under pointer", zap.Int("x", p.X), zap.Int("y", p.Y))
		return
	}
	pos := f.Picked.Position
	v.log.Info("picked terrain",
		zap.Float64("lat", pos.Lat),
		zap.Float64("lon", pos.Lon),
		zap.Float64("elevation", pos.Elevation),
		zap.Int("color", f.Picked.ColorCode),
	)
}

func (v *Viewer) logFrameStats(frames int, frameTime time.Duration, f scene.Frame) {
	fields := []zap.Field{
		zap.Int("fps", frames),
		zap.Duration("scene", frameTime/time.Duration(frames)),
		zap.Int("tiles", f.Tiles.Len()),
		zap.Int("draws", v.renderer.Stats().Draws),
		zap.Int64("gpu_bytes", v.scene.Resources().Stats().Used),
	}
	if l := v.scene.Imagery(); l != nil {
		s := l.Stats()
		fields = append(fields,
			zap.Int("imagery", s.Tiles),
			zap.Int("fallbacks", s.Fallbacks),
			zap.Int("pending", s.Pending),
			zap.Uint64("dropped", s.Dropped),
		)
	}
	v.log.Debug("frame stats", fields...)
}

// Close cleans up viewer resources.
func (v *Viewer) Close() error {
	v.log.Info("closing viewer")

	var err error
	if v.scene != nil {
		ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		err = v.scene.Close(ctx)
		cancel()
	}
	if v.renderer != nil {
		v.renderer.Close()
	}
	if v.window != nil {
		v.window.Close()
	}
	return err
}
