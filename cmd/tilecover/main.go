// Package main tessellates the terrain for one camera pose without a
// graphics context and writes the selected tiles as GeoJSON.
//
// It reads the same configuration and flags as globeview:
//
//	tilecover -lat 46.5 -lon 8 -range 40000 -out alps.geojson
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-globe/internal/config"
	"github.com/Faultbox/midgard-globe/internal/engine/frame"
	"github.com/Faultbox/midgard-globe/internal/engine/scene"
	"github.com/Faultbox/midgard-globe/internal/engine/terrain"
	"github.com/Faultbox/midgard-globe/internal/logger"
)

var flagOut = flag.String("out", "-", "GeoJSON output path, - for stdout")

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Console logs would interleave with GeoJSON on stdout.
	fileCfg := logger.FileConfig{}
	if cfg.Logging.LogFile != "" {
		fileCfg = logger.DefaultFileConfig(cfg.Logging.LogFile)
	}
	if err := logger.InitWithFileConfig(cfg.Logging.Level, fileCfg, *flagOut != "-"); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	fc, err := cover(cfg)
	if err != nil {
		logger.Error("tessellation failed", zap.Error(err))
		os.Exit(1)
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		logger.Error("encoding coverage failed", zap.Error(err))
		os.Exit(1)
	}
	if *flagOut == "-" {
		_, err = os.Stdout.Write(append(data, '\n'))
	} else {
		err = os.WriteFile(*flagOut, data, 0o644)
	}
	if err != nil {
		logger.Error("writing coverage failed", zap.String("out", *flagOut), zap.Error(err))
		os.Exit(1)
	}
}

// cover runs one headless tessellation at the configured camera pose.
func cover(cfg *config.Config) (*geojson.FeatureCollection, error) {
	g, err := scene.GlobeFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	opts, err := scene.OptionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	tess, err := terrain.New(g, opts.Terrain)
	if err != nil {
		return nil, err
	}

	cam := scene.CameraFromConfig(cfg)
	dc := &frame.Context{
		Globe:                g,
		View:                 cam.View(g, opts.VerticalExaggeration, cfg.Window.Width, cfg.Window.Height),
		VerticalExaggeration: opts.VerticalExaggeration,
		Timestamp:            time.Now(),
	}
	start := time.Now()
	list := tess.Tessellate(dc)

	perLevel := make(map[int]int)
	for _, st := range list.Tiles {
		perLevel[st.Key.Level]++
	}
	logger.Info("tessellated",
		zap.Int("tiles", list.Len()),
		zap.Any("per_level", perLevel),
		zap.Stringer("coverage", dc.VisibleSector),
		zap.Duration("elapsed", time.Since(start)),
	)

	fc := list.FeatureCollection()
	if list.Len() > 0 {
		fc.BBox = geojson.NewBBox(list.Sector.Bound())
	}
	return fc, nil
}
