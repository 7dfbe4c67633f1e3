package viewer

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-globe/internal/engine/debug"
	"github.com/Faultbox/midgard-globe/internal/engine/input"
	"github.com/Faultbox/midgard-globe/internal/engine/scene"
	"github.com/Faultbox/midgard-globe/internal/engine/terrain"
	"github.com/Faultbox/midgard-globe/internal/logger"
)

// detailStep is the detail hint change per key press.
const detailStep = 0.1

// controls applies keyboard commands to a scene.
type controls struct {
	scene *scene.Scene
	dir   string
	shots *debug.ScreenshotCapture
	now   func() time.Time
	log   *zap.Logger

	screenshot bool
}

// newControls writes coverage dumps and screenshots to dir, the working
// directory when empty.
func newControls(s *scene.Scene, dir string) *controls {
	return &controls{
		scene: s,
		dir:   dir,
		shots: debug.NewScreenshotCapture(dir, "globe"),
		now:   time.Now,
		log:   logger.Named("controls"),
	}
}

func (c *controls) apply(a input.Action) {
	s := c.scene
	d := s.Debug()

	switch a {
	case input.ActionToggleWireframe:
		d.Wireframe = !d.Wireframe
		s.SetDebug(d)
	case input.ActionToggleOutline:
		d.Outline = !d.Outline
		s.SetDebug(d)
	case input.ActionToggleBoundingVolumes:
		d.BoundingVolumes = !d.BoundingVolumes
		s.SetDebug(d)

	case input.ActionToggleImagery:
		if l := s.Imagery(); l != nil {
			l.SetEnabled(!l.Enabled())
			c.log.Info("imagery toggled", zap.Bool("enabled", l.Enabled()))
		}

	case input.ActionIncreaseDetail, input.ActionDecreaseDetail:
		step := detailStep
		if a == input.ActionDecreaseDetail {
			step = -step
		}
		t := s.Tessellator()
		t.SetDetailHint(t.DetailHint() + step)
		if l := s.Imagery(); l != nil {
			l.SetDetailHint(l.DetailHint() + step)
		}
		c.log.Info("detail hint changed", zap.Float64("terrain", t.DetailHint()))

	case input.ActionExpireAll:
		s.Tessellator().ExpireAll()
		c.log.Info("terrain geometry expired")

	case input.ActionDumpCoverage:
		path := filepath.Join(c.dir, fmt.Sprintf("coverage_%s.geojson", c.now().Format("2006-01-02_15-04-05")))
		if err := writeCoverage(path, s.Tessellator().CurrentTiles()); err != nil {
			c.log.Error("coverage dump failed", zap.Error(err))
			return
		}
		c.log.Info("coverage written", zap.String("path", path))

	case input.ActionScreenshot:
		c.screenshot = true
	}
}

// takeScreenshot reports and clears a pending screenshot request.
func (c *controls) takeScreenshot() bool {
	pending := c.screenshot
	c.screenshot = false
	return pending
}

func (c *controls) capture(img image.Image) {
	path, err := c.shots.Capture(img)
	if err != nil {
		c.log.Error("screenshot failed", zap.Error(err))
		return
	}
	c.log.Info("screenshot saved", zap.String("path", path))
}

// writeCoverage writes the sectors of list as a GeoJSON feature
// collection. A nil list writes an empty collection.
func writeCoverage(path string, list *terrain.TileList) error {
	fc := geojson.NewFeatureCollection()
	if list != nil {
		fc = list.FeatureCollection()
	}
	data, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("encode coverage: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write coverage: %w", err)
	}
	return nil
}
