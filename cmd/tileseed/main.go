// Package main fills a tile store with synthetic imagery: the procedural
// relief the viewer draws, tinted by elevation with a 10° graticule.
//
//	tileseed -levels 3 -format tiff -store tiles.db
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/midgard-globe/internal/config"
	"github.com/Faultbox/midgard-globe/internal/engine/scene"
	"github.com/Faultbox/midgard-globe/internal/engine/tile"
	"github.com/Faultbox/midgard-globe/internal/logger"
	"github.com/Faultbox/midgard-globe/internal/tilestore"
)

var (
	flagLevels  = flag.Int("levels", 3, "Number of levels to seed")
	flagFormat  = flag.String("format", "png", "Tile encoding: png, tiff or bmp")
	flagWorkers = flag.Int("workers", runtime.NumCPU(), "Concurrent tile encoders")
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Error("seeding failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	opts, err := scene.OptionsFromConfig(cfg)
	if err != nil {
		return err
	}
	if opts.Imagery == nil {
		return errors.New("imagery is disabled in the configuration")
	}
	ls, err := tile.NewLevelSet(opts.Imagery.Levels)
	if err != nil {
		return err
	}

	store, err := tilestore.Open(cfg.Imagery.StorePath)
	if err != nil {
		return err
	}
	defer store.Close()

	dataset := cfg.Imagery.Dataset
	size := cfg.Imagery.TileSize
	for level, keys := range levelKeys(ls, *flagLevels) {
		start := time.Now()
		payloads, err := encodeLevel(ctx, ls, keys, size, cfg.Terrain.Relief)
		if err != nil {
			return fmt.Errorf("level %d: %w", level, err)
		}
		if err := store.PutBatch(dataset, payloads); err != nil {
			return err
		}
		logger.Info("level seeded",
			zap.Int("level", level),
			zap.Int("tiles", len(payloads)),
			zap.Duration("elapsed", time.Since(start)),
		)
	}

	n, err := store.Count(dataset)
	if err != nil {
		return err
	}
	logger.Info("store ready",
		zap.String("path", store.Path()),
		zap.String("dataset", dataset),
		zap.Int("tiles", n),
	)
	return nil
}

// encodeLevel renders and encodes keys on *flagWorkers goroutines.
func encodeLevel(ctx context.Context, ls *tile.LevelSet, keys []tile.Key, size int, relief float64) (map[tile.Key][]byte, error) {
	var mu sync.Mutex
	payloads := make(map[tile.Key][]byte, len(keys))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(*flagWorkers, 1))
	for _, k := range keys {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := encode(renderTile(ls.SectorForKey(k), size, relief), *flagFormat)
			if err != nil {
				return fmt.Errorf("tile %v: %w", k, err)
			}
			mu.Lock()
			payloads[k] = data
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return payloads, nil
}
