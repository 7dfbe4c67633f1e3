// Package imagery draws tiled imagery over the terrain. A Layer selects a
// quadtree of imagery tiles for the view, fetches missing textures on a
// worker pool and draws each terrain tile once per overlapping imagery
// tile. Until a tile's texture arrives it borrows the nearest resident
// ancestor's.
package imagery

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io/fs"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-globe/internal/cache"
	"github.com/Faultbox/midgard-globe/internal/engine/frame"
	"github.com/Faultbox/midgard-globe/internal/engine/gpu"
	"github.com/Faultbox/midgard-globe/internal/engine/terrain"
	"github.com/Faultbox/midgard-globe/internal/engine/texture"
	"github.com/Faultbox/midgard-globe/internal/engine/tile"
	"github.com/Faultbox/midgard-globe/internal/logger"
	"github.com/Faultbox/midgard-globe/internal/task"
	"github.com/Faultbox/midgard-globe/pkg/geo"
)

// ErrInvalidArgument reports a malformed layer configuration.
var ErrInvalidArgument = errors.New("imagery: invalid argument")

const (
	// DefaultDetailHintOrigin is the detail factor at a zero detail hint.
	// Imagery refines further than terrain: a texel should be about one
	// screen pixel.
	DefaultDetailHintOrigin = 2.6

	DefaultTileCacheCapacity = 2 << 20

	colorKeyTolerance = 8
)

// Retriever returns the encoded image of one tile. A tile the source does
// not have is reported with an error wrapping fs.ErrNotExist. Retrieve is
// called from worker goroutines.
type Retriever interface {
	Retrieve(ctx context.Context, k tile.Key) ([]byte, error)
}

// DefaultLevelSetConfig returns the imagery defaults: the full sphere with
// 36° level-zero tiles of 512x512 texels and 19 levels.
func DefaultLevelSetConfig() tile.LevelSetConfig {
	return tile.LevelSetConfig{
		Sector:         geo.FullSphere(),
		TileOrigin:     geo.Location{Lat: -90, Lon: -180},
		LevelZeroDelta: geo.Location{Lat: 36, Lon: 36},
		NumLevels:      19,
		TileWidth:      512,
		TileHeight:     512,
	}
}

// Config configures a Layer.
type Config struct {
	Name   string
	Levels tile.LevelSetConfig

	DetailHint       float64
	DetailHintOrigin float64

	// ForceLevelZeroLoads loads every level-zero texture synchronously on
	// the first frame, and any level-zero texture a frame needs after that.
	ForceLevelZeroLoads bool

	// RetainLevelZeroTiles keeps level-zero textures out of the evictable
	// GPU cache.
	RetainLevelZeroTiles bool

	QueueCapacity     int
	Workers           int
	TileCacheCapacity int64

	// TransparentColor, when set, is keyed out of every decoded tile.
	TransparentColor *color.RGBA

	// Logger defaults to logger.Named("imagery").
	Logger *zap.Logger
}

// DefaultConfig returns a layer configuration using DefaultLevelSetConfig.
func DefaultConfig() Config {
	return Config{
		Name:              "imagery",
		Levels:            DefaultLevelSetConfig(),
		DetailHintOrigin:  DefaultDetailHintOrigin,
		QueueCapacity:     task.DefaultQueueCapacity,
		Workers:           task.DefaultWorkers,
		TileCacheCapacity: DefaultTileCacheCapacity,
	}
}

// Stats is a snapshot of the layer's counters.
type Stats struct {
	// Tiles were selected last frame; Fallbacks of them draw an
	// ancestor's texture.
	Tiles     int
	Fallbacks int

	// Retained level-zero textures are held outside the GPU cache.
	Retained int

	// Pending images are decoded and wait for upload.
	Pending int
	Absent  int

	// Dropped counts requests refused by a full queue.
	Dropped uint64
	Tasks   task.Stats
}

// Layer is one tiled imagery source drawn over the terrain. Render,
// Release and the accessors must be called from the render goroutine;
// retrievals run on the layer's worker pool.
type Layer struct {
	name             string
	retriever        Retriever
	levels           *tile.LevelSet
	detailHint       float64
	detailHintOrigin float64
	forceLevelZero   bool
	retainLevelZero  bool
	colorKey         *color.RGBA
	log              *zap.Logger

	enabled   bool
	opacity   float64
	namespace uuid.UUID
	topLevel  []tile.Key
	tiles     *cache.Memory[tile.Key, tile.Tile]
	retained  map[tile.Key]uint32
	renderer  SurfaceTileRenderer

	queue   *task.RequestQueue
	service *task.Service
	absent  *absentList
	ctx     context.Context
	cancel  context.CancelFunc

	mu     sync.Mutex
	loaded map[tile.Key]*image.RGBA

	// Per-frame state
	current         []*TextureTile
	ancestor        *tile.Tile
	criteria        tile.DetailCriterion
	levelZeroLoaded bool
}

// New creates a layer drawing tiles from r.
func New(r Retriever, cfg Config) (*Layer, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: nil retriever", ErrInvalidArgument)
	}
	levels, err := tile.NewLevelSet(cfg.Levels)
	if err != nil {
		return nil, fmt.Errorf("imagery levels: %w", err)
	}
	if cfg.Name == "" {
		cfg.Name = "imagery"
	}
	if cfg.DetailHintOrigin == 0 {
		cfg.DetailHintOrigin = DefaultDetailHintOrigin
	}
	if cfg.TileCacheCapacity <= 0 {
		cfg.TileCacheCapacity = DefaultTileCacheCapacity
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Named("imagery")
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Layer{
		name:             cfg.Name,
		retriever:        r,
		levels:           levels,
		detailHint:       cfg.DetailHint,
		detailHintOrigin: cfg.DetailHintOrigin,
		forceLevelZero:   cfg.ForceLevelZeroLoads,
		retainLevelZero:  cfg.RetainLevelZeroTiles,
		colorKey:         cfg.TransparentColor,
		log:              cfg.Logger.With(zap.String("layer", cfg.Name)),
		enabled:          true,
		opacity:          1,
		namespace:        uuid.New(),
		topLevel:         levels.TopLevelKeys(),
		tiles:            cache.New[tile.Key, tile.Tile](cfg.TileCacheCapacity),
		retained:         make(map[tile.Key]uint32),
		queue:            task.NewRequestQueue(cfg.QueueCapacity),
		service:          task.NewService(cfg.Workers),
		absent:           newAbsentList(),
		ctx:              ctx,
		cancel:           cancel,
		loaded:           make(map[tile.Key]*image.RGBA),
	}, nil
}

// Name returns the layer name.
func (l *Layer) Name() string { return l.name }

// Levels returns the layer's level set.
func (l *Layer) Levels() *tile.LevelSet { return l.levels }

// Enabled reports whether Render draws the layer.
func (l *Layer) Enabled() bool { return l.enabled }

func (l *Layer) SetEnabled(on bool) { l.enabled = on }

func (l *Layer) Opacity() float64 { return l.opacity }

func (l *Layer) DetailHint() float64 { return l.detailHint }

// SetDetailHint changes the detail hint from the next frame on.
func (l *Layer) SetDetailHint(h float64) { l.detailHint = h }

// SetOpacity sets the layer's alpha, clamped to [0, 1].
func (l *Layer) SetOpacity(a float64) { l.opacity = max(0, min(1, a)) }

// CurrentTiles returns the tiles drawn by the last Render call.
func (l *Layer) CurrentTiles() []*TextureTile { return l.current }

// Render draws the layer over terrainTiles and requests the textures the
// view is missing. Requests that find the worker pool full are dropped and
// issued again on a later frame.
func (l *Layer) Render(dc *frame.Context, terrainTiles *terrain.TileList) {
	if !l.enabled || !dc.CanDraw() {
		return
	}
	l.uploadLoaded(dc)
	if l.forceLevelZero && !l.levelZeroLoaded {
		l.loadLevelZero(dc)
	}
	if terrainTiles == nil || terrainTiles.Len() == 0 {
		return
	}
	if !dc.VisibleSector.Intersects(l.levels.Sector()) {
		l.current = nil
		return
	}

	l.assemble(dc)
	if len(l.current) > 0 {
		l.renderer.RenderTiles(dc, terrainTiles, l.current, l.opacity)
	}
	if n := l.service.Drain(l.queue); n > 0 {
		l.log.Debug("requested tiles", zap.Int("started", n))
	}
}

// Wait blocks until the retrievals in flight have finished or ctx is done.
func (l *Layer) Wait(ctx context.Context) error {
	return l.service.Wait(ctx)
}

// Close stops issuing retrievals and waits for those in flight.
func (l *Layer) Close(ctx context.Context) error {
	l.cancel()
	l.queue.Clear()
	if err := l.service.Wait(ctx); err != nil {
		return fmt.Errorf("close %s: %w", l.name, err)
	}
	return nil
}

// Release deletes the retained level-zero textures. Textures in the GPU
// cache are released by the cache.
func (l *Layer) Release(g gpu.Context) {
	for k, tex := range l.retained {
		g.DeleteTexture(tex)
		delete(l.retained, k)
	}
	l.levelZeroLoaded = false
}

// Stats returns the layer counters.
func (l *Layer) Stats() Stats {
	st := Stats{
		Tiles:    len(l.current),
		Retained: len(l.retained),
		Absent:   l.absent.len(),
		Dropped:  l.queue.Dropped(),
		Tasks:    l.service.Stats(),
	}
	for _, tt := range l.current {
		if tt.Fallback() {
			st.Fallbacks++
		}
	}
	l.mu.Lock()
	st.Pending = len(l.loaded)
	l.mu.Unlock()
	return st
}

func (l *Layer) token(k tile.Key) uuid.UUID {
	return uuid.NewSHA1(l.namespace, []byte(k.String()))
}

// texture returns the resident texture of k, or 0.
func (l *Layer) texture(dc *frame.Context, k tile.Key) uint32 {
	if tex, ok := l.retained[k]; ok {
		return tex
	}
	if res, ok := dc.Resources.Get(l.token(k)); ok {
		return res.Texture()
	}
	return 0
}

// request queues a background retrieval of tl's texture. Closer tiles are
// started first.
func (l *Layer) request(tl *tile.Tile) {
	k := tl.Key
	if l.pending(k) {
		return
	}
	id := k.String()
	if l.service.IsActive(id) {
		return
	}
	l.queue.Add(task.Request{
		Key:      id,
		Priority: tl.EyeDistance(l.criteria.Eye),
		Run:      func() { l.retrieve(k) },
	})
}

func (l *Layer) pending(k tile.Key) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.loaded[k]
	return ok
}

// retrieve runs on a worker: it fetches and decodes k and leaves the image
// for the render goroutine to upload.
func (l *Layer) retrieve(k tile.Key) {
	img, err := l.load(k)
	if err != nil {
		l.fail(k, err)
		return
	}
	l.mu.Lock()
	l.loaded[k] = img
	l.mu.Unlock()
}

func (l *Layer) load(k tile.Key) (*image.RGBA, error) {
	payload, err := l.retriever.Retrieve(l.ctx, k)
	if err != nil {
		return nil, fmt.Errorf("retrieve %v: %w", k, err)
	}
	lvl := l.levels.Level(k.Level)
	img, err := texture.DecodeSized(payload, lvl.TileWidth, lvl.TileHeight)
	if err != nil {
		return nil, fmt.Errorf("tile %v: %w", k, err)
	}
	if l.colorKey != nil {
		texture.ApplyColorKey(img, *l.colorKey, colorKeyTolerance)
	}
	return img, nil
}

func (l *Layer) fail(k tile.Key, err error) {
	if errors.Is(err, fs.ErrNotExist) {
		l.absent.markPermanent(k)
		l.log.Debug("tile absent", zap.Stringer("tile", k))
		return
	}
	l.absent.mark(k)
	l.log.Warn("tile retrieval failed", zap.Stringer("tile", k), zap.Error(err))
}

// uploadLoaded turns the images decoded since the last frame into
// textures.
func (l *Layer) uploadLoaded(dc *frame.Context) {
	l.mu.Lock()
	if len(l.loaded) == 0 {
		l.mu.Unlock()
		return
	}
	loaded := l.loaded
	l.loaded = make(map[tile.Key]*image.RGBA)
	l.mu.Unlock()

	for k, img := range loaded {
		l.upload(dc, k, img)
	}
}

func (l *Layer) upload(dc *frame.Context, k tile.Key, img *image.RGBA) uint32 {
	tex := dc.GPU.CreateTexture(img)
	if tex == 0 {
		l.log.Warn("texture upload failed", zap.Stringer("tile", k))
		return 0
	}
	l.absent.unmark(k)

	if k.Level == 0 && l.retainLevelZero {
		if old, ok := l.retained[k]; ok && old != tex {
			dc.GPU.DeleteTexture(old)
		}
		l.retained[k] = tex
		return tex
	}
	if !dc.Resources.Put(l.token(k), gpu.Resource{Textures: []uint32{tex}, Size: int64(len(img.Pix))}) {
		l.log.Warn("texture larger than the GPU cache", zap.Stringer("tile", k))
		return 0
	}
	return tex
}

// forceLoad retrieves, decodes and uploads k on the calling goroutine.
func (l *Layer) forceLoad(dc *frame.Context, k tile.Key) uint32 {
	img, err := l.load(k)
	if err != nil {
		l.fail(k, err)
		return 0
	}
	return l.upload(dc, k, img)
}

func (l *Layer) loadLevelZero(dc *frame.Context) {
	loaded := 0
	for _, k := range l.topLevel {
		if l.texture(dc, k) != 0 || l.absent.isAbsent(k) {
			continue
		}
		if l.forceLoad(dc, k) != 0 {
			loaded++
		}
	}
	l.levelZeroLoaded = true
	l.log.Info("level zero loaded", zap.Int("textures", loaded), zap.Int("tiles", len(l.topLevel)))
}
