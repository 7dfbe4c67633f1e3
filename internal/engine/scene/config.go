package scene

import (
	"fmt"

	"github.com/Faultbox/midgard-globe/internal/config"
	"github.com/Faultbox/midgard-globe/internal/engine/camera"
	"github.com/Faultbox/midgard-globe/internal/engine/imagery"
	"github.com/Faultbox/midgard-globe/internal/engine/terrain"
	"github.com/Faultbox/midgard-globe/internal/globe"
	"github.com/Faultbox/midgard-globe/pkg/geo"
)

// Relief grid resolution, a sample every half degree.
const (
	reliefRows    = 361
	reliefColumns = 721
)

// GlobeFromConfig returns the Earth ellipsoid carrying the configured
// elevation model.
func GlobeFromConfig(cfg *config.Config) (globe.Globe, error) {
	if cfg.Terrain.Relief <= 0 {
		return globe.NewEarth(nil), nil
	}
	m, err := globe.NewReliefModel(reliefRows, reliefColumns, cfg.Terrain.Relief)
	if err != nil {
		return nil, fmt.Errorf("relief model: %w", err)
	}
	return globe.NewEarth(m), nil
}

// OptionsFromConfig translates the viewer configuration. The imagery
// retriever is left for the caller, which owns the tile store.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	cpu, gpuBytes, err := cfg.Cache.Budgets()
	if err != nil {
		return Options{}, fmt.Errorf("cache budgets: %w", err)
	}

	opts := DefaultOptions()
	opts.GPUCacheCapacity = gpuBytes
	opts.VerticalExaggeration = cfg.Terrain.VerticalExaggeration
	opts.Debug = DebugOptions{
		Wireframe:       cfg.Graphics.Wireframe,
		Outline:         cfg.Graphics.Outline,
		BoundingVolumes: cfg.Graphics.BoundingVolumes,
	}

	t := cfg.Terrain
	opts.Terrain = terrain.DefaultConfig()
	opts.Terrain.Levels.TileWidth = t.TileWidth
	opts.Terrain.Levels.TileHeight = t.TileHeight
	opts.Terrain.Levels.LevelZeroDelta = geo.Location{Lat: t.LevelZeroDelta, Lon: t.LevelZeroDelta}
	opts.Terrain.Levels.NumLevels = t.NumLevels
	opts.Terrain.DetailHint = t.DetailHint
	opts.Terrain.GeometryCacheCapacity = cpu
	opts.Terrain.GeometryLowWaterRatio = cfg.Cache.LowWaterRatio
	opts.Terrain.RetainLevelZeroTiles = cfg.Imagery.RetainLevelZero

	if i := cfg.Imagery; i.Enabled {
		ic := imagery.DefaultConfig()
		ic.Name = i.Dataset
		ic.Levels.TileWidth = i.TileSize
		ic.Levels.TileHeight = i.TileSize
		ic.Levels.LevelZeroDelta = geo.Location{Lat: i.LevelZeroDelta, Lon: i.LevelZeroDelta}
		ic.Levels.NumLevels = i.NumLevels
		ic.DetailHint = i.DetailHint
		ic.ForceLevelZeroLoads = i.ForceLevelZero
		ic.RetainLevelZeroTiles = i.RetainLevelZero
		ic.QueueCapacity = i.QueueCapacity
		ic.Workers = i.Workers
		opts.Imagery = &ic
		opts.ImageryOpacity = i.Opacity
	}
	return opts, nil
}

// CameraFromConfig returns a camera at the configured pose.
func CameraFromConfig(cfg *config.Config) *camera.GlobeCamera {
	cam := camera.NewGlobeCamera()
	c := cfg.Camera
	cam.LookAt(geo.Location{Lat: c.Latitude, Lon: c.Longitude}, c.Range)
	cam.Heading = c.Heading
	cam.Tilt = min(max(c.Tilt, 0), cam.MaxTilt)
	cam.FieldOfView = cfg.Graphics.FieldOfView
	return cam
}
