// Package config handles viewer configuration loading and management.
package config

// Config holds all viewer settings.
type Config struct {
	Window   WindowConfig   `yaml:"window"`
	Graphics GraphicsConfig `yaml:"graphics"`
	Terrain  TerrainConfig  `yaml:"terrain"`
	Imagery  ImageryConfig  `yaml:"imagery"`
	Cache    CacheConfig    `yaml:"cache"`
	Camera   CameraConfig   `yaml:"camera"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
}

// GraphicsConfig holds rendering settings.
type GraphicsConfig struct {
	FieldOfView     float64 `yaml:"fov"` // degrees
	Wireframe       bool    `yaml:"wireframe"`
	Outline         bool    `yaml:"outline"`
	BoundingVolumes bool    `yaml:"bounding_volumes"`
}

// TerrainConfig holds the terrain tessellation settings.
type TerrainConfig struct {
	TileWidth      int     `yaml:"tile_width"`
	TileHeight     int     `yaml:"tile_height"`
	LevelZeroDelta float64 `yaml:"level_zero_delta"` // degrees
	NumLevels      int     `yaml:"num_levels"`
	DetailHint     float64 `yaml:"detail_hint"`
	// VerticalExaggeration scales elevations.
	VerticalExaggeration float64 `yaml:"vertical_exaggeration"`
	// Relief is the amplitude in meters of the procedural elevation
	// model. Zero draws a smooth ellipsoid.
	Relief float64 `yaml:"relief"`
}

// ImageryConfig holds the imagery layer settings.
type ImageryConfig struct {
	Enabled bool `yaml:"enabled"`
	// StorePath is the bbolt tile store file. Empty selects
	// <config dir>/tiles.db.
	StorePath      string  `yaml:"store_path"`
	Dataset        string  `yaml:"dataset"`
	TileSize       int     `yaml:"tile_size"`
	LevelZeroDelta float64 `yaml:"level_zero_delta"` // degrees
	NumLevels      int     `yaml:"num_levels"`
	DetailHint     float64 `yaml:"detail_hint"`
	Opacity        float64 `yaml:"opacity"`

	ForceLevelZero  bool `yaml:"force_level_zero"`
	RetainLevelZero bool `yaml:"retain_level_zero"`

	QueueCapacity int `yaml:"queue_capacity"`
	Workers       int `yaml:"workers"`
}

// CacheConfig holds the memory budgets. Zero byte budgets are sized from
// physical memory at startup.
type CacheConfig struct {
	CPUBytes      int64   `yaml:"cpu_bytes"`
	GPUBytes      int64   `yaml:"gpu_bytes"`
	LowWaterRatio float64 `yaml:"low_water_ratio"`
}

// CameraConfig holds the initial camera pose.
type CameraConfig struct {
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
	Range     float64 `yaml:"range"` // meters
	Heading   float64 `yaml:"heading"`
	Tilt      float64 `yaml:"tilt"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:  "Midgard Globe",
			Width:  1280,
			Height: 720,
			VSync:  true,
		},
		Graphics: GraphicsConfig{
			FieldOfView: 45,
		},
		Terrain: TerrainConfig{
			TileWidth:            32,
			TileHeight:           32,
			LevelZeroDelta:       36,
			NumLevels:            12,
			VerticalExaggeration: 1,
			Relief:               4000,
		},
		Imagery: ImageryConfig{
			Enabled:         true,
			Dataset:         "imagery",
			TileSize:        512,
			LevelZeroDelta:  36,
			NumLevels:       19,
			Opacity:         1,
			ForceLevelZero:  true,
			RetainLevelZero: true,
			QueueCapacity:   200,
			Workers:         4,
		},
		Cache: CacheConfig{
			LowWaterRatio: 0.8,
		},
		Camera: CameraConfig{
			Range: 2.0e7,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
