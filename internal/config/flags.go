package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagWindowed   = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
	flagStore      = flag.String("store", "", "Path to the imagery tile store")
	flagDataset    = flag.String("dataset", "", "Imagery dataset name")
	flagNoImagery  = flag.Bool("no-imagery", false, "Draw the bare terrain")
	flagLat        = flag.Float64("lat", 0, "Initial camera latitude (degrees)")
	flagLon        = flag.Float64("lon", 0, "Initial camera longitude (degrees)")
	flagRange      = flag.Float64("range", 0, "Initial camera range (meters)")
	flagDetail     = flag.Float64("detail", 0, "Terrain detail hint")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagWindowed {
		cfg.Window.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Window.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Window.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Window.Height = *flagHeight
	}
	if *flagStore != "" {
		cfg.Imagery.StorePath = *flagStore
	}
	if *flagDataset != "" {
		cfg.Imagery.Dataset = *flagDataset
	}
	if *flagNoImagery {
		cfg.Imagery.Enabled = false
	}
	// Zero is a meaningful position, so only flags given explicitly apply.
	if set["lat"] {
		cfg.Camera.Latitude = *flagLat
	}
	if set["lon"] {
		cfg.Camera.Longitude = *flagLon
	}
	if *flagRange > 0 {
		cfg.Camera.Range = *flagRange
	}
	if set["detail"] {
		cfg.Terrain.DetailHint = *flagDetail
	}
}
