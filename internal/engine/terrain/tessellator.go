package terrain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-globe/internal/cache"
	"github.com/Faultbox/midgard-globe/internal/engine/frame"
	"github.com/Faultbox/midgard-globe/internal/engine/tile"
	"github.com/Faultbox/midgard-globe/internal/globe"
	"github.com/Faultbox/midgard-globe/internal/logger"
	"github.com/Faultbox/midgard-globe/pkg/geo"
)

// ErrInvalidArgument reports a malformed tessellator configuration.
var ErrInvalidArgument = errors.New("terrain: invalid argument")

const (
	// DefaultDetailHintOrigin is the detail factor at a zero detail hint.
	DefaultDetailHintOrigin = 1.3

	DefaultTileCacheCapacity     = 2 << 20
	DefaultGeometryCacheCapacity = 64 << 20
)

// Config configures a Tessellator.
type Config struct {
	Levels tile.LevelSetConfig

	// DetailHint shifts the subdivision threshold; positive values refine
	// further, negative values coarsen.
	DetailHint       float64
	DetailHintOrigin float64

	TileCacheCapacity     int64
	GeometryCacheCapacity int64
	// GeometryLowWaterRatio is the fraction of the geometry cache eviction
	// drains down to; 0 selects cache.DefaultLowWaterRatio.
	GeometryLowWaterRatio float64

	// RetainLevelZeroTiles keeps level-zero geometry out of the evictable
	// cache so a coarse surface is always available.
	RetainLevelZeroTiles bool

	// Logger defaults to logger.Named("terrain").
	Logger *zap.Logger
}

// DefaultConfig returns the standard 36° level-zero, 12 level, 32×32 grid
// configuration.
func DefaultConfig() Config {
	return Config{
		Levels:                tile.DefaultLevelSetConfig(),
		DetailHintOrigin:      DefaultDetailHintOrigin,
		TileCacheCapacity:     DefaultTileCacheCapacity,
		GeometryCacheCapacity: DefaultGeometryCacheCapacity,
	}
}

// Tessellator selects and builds the terrain tiles drawn each frame. Apart
// from ExpireSector and ExpireAll, its methods must be called from the
// render goroutine.
type Tessellator struct {
	globe            globe.Globe
	levels           *tile.LevelSet
	detailHint       float64
	detailHintOrigin float64
	retainLevelZero  bool
	log              *zap.Logger

	topLevel   []tile.Key
	tiles      *cache.Memory[tile.Key, tile.Tile]
	geometries *cache.Memory[tile.Key, *Geometry]
	retained   map[tile.Key]*Geometry
	shared     map[dims]*SharedGeometry

	expiry  expiration
	scratch meshScratch
	pick    pickScratch

	// Per-frame state
	current  *TileList
	ve       float64
	veKnown  bool
	criteria tile.DetailCriterion
	failures int
}

// New creates a tessellator for g. It subscribes to the globe's elevation
// model so data changes expire the affected geometry.
func New(g globe.Globe, cfg Config) (*Tessellator, error) {
	if g == nil {
		return nil, fmt.Errorf("%w: nil globe", ErrInvalidArgument)
	}
	levels, err := tile.NewLevelSet(cfg.Levels)
	if err != nil {
		return nil, fmt.Errorf("terrain levels: %w", err)
	}
	if cfg.DetailHintOrigin == 0 {
		cfg.DetailHintOrigin = DefaultDetailHintOrigin
	}
	if cfg.TileCacheCapacity <= 0 {
		cfg.TileCacheCapacity = DefaultTileCacheCapacity
	}
	if cfg.GeometryCacheCapacity <= 0 {
		cfg.GeometryCacheCapacity = DefaultGeometryCacheCapacity
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Named("terrain")
	}

	t := &Tessellator{
		globe:            g,
		levels:           levels,
		detailHint:       cfg.DetailHint,
		detailHintOrigin: cfg.DetailHintOrigin,
		retainLevelZero:  cfg.RetainLevelZeroTiles,
		log:              cfg.Logger,
		topLevel:         levels.TopLevelKeys(),
		tiles:            cache.New[tile.Key, tile.Tile](cfg.TileCacheCapacity),
		geometries:       newGeometryCache(cfg.GeometryCacheCapacity, cfg.GeometryLowWaterRatio),
		retained:         make(map[tile.Key]*Geometry),
		shared:           make(map[dims]*SharedGeometry),
		current:          &TileList{},
	}
	t.current.tessellator = t

	g.ElevationModel().AddListener(func(c globe.Change) {
		if c.All {
			t.ExpireAll()
		} else {
			t.ExpireSector(c.Sector)
		}
	})
	return t, nil
}

func newGeometryCache(capacity int64, ratio float64) *cache.Memory[tile.Key, *Geometry] {
	if ratio <= 0 || ratio >= 1 {
		return cache.New[tile.Key, *Geometry](capacity)
	}
	return cache.NewWithLowWater[tile.Key, *Geometry](capacity, int64(float64(capacity)*ratio))
}

// Levels returns the tessellator's level set.
func (t *Tessellator) Levels() *tile.LevelSet { return t.levels }

// DetailHint returns the current detail hint.
func (t *Tessellator) DetailHint() float64 { return t.detailHint }

// SetDetailHint changes the detail hint from the next frame on.
func (t *Tessellator) SetDetailHint(hint float64) { t.detailHint = hint }

// CurrentTiles returns the list selected by the last Tessellate call.
func (t *Tessellator) CurrentTiles() *TileList { return t.current }

// Coverage returns the union of the sectors selected last frame.
func (t *Tessellator) Coverage() geo.Sector { return t.current.Sector }

// Tessellate selects the tiles to draw for the frame, building or reusing
// their geometry, and stores the coverage in dc.VisibleSector.
func (t *Tessellator) Tessellate(dc *frame.Context) *TileList {
	if dc.Globe == nil || dc.View == nil {
		panic("terrain: Tessellate needs a globe and a view")
	}

	ve := dc.Exaggeration()
	if t.veKnown && ve != t.ve {
		t.ExpireAll()
	}
	t.ve, t.veKnown = ve, true
	t.applyExpirations()

	t.criteria = tile.DetailCriterion{
		Eye:              dc.View.Eye,
		GlobeRadius:      dc.Globe.Radius(),
		FieldOfViewScale: dc.View.FieldOfViewScale(),
	}

	list := &TileList{tessellator: t, Sector: geo.EmptySector}
	t.failures = 0
	for _, k := range t.topLevel {
		tl := t.cachedTile(k)
		if tl.Level == nil {
			continue
		}
		t.refreshExtent(dc, &tl)
		if !dc.View.Visible(tl.Extent) {
			continue
		}
		t.addTileOrDescendants(dc, list, tl)
	}

	if t.failures > 0 {
		t.log.Warn("tiles skipped this frame", zap.Int("failed", t.failures))
	}
	if len(list.Tiles) != len(t.current.Tiles) {
		t.log.Debug("tessellated",
			zap.Int("selected", len(list.Tiles)),
			zap.Stringer("coverage", list.Sector))
	}

	t.current = list
	dc.VisibleSector = list.Sector
	return list
}

// cachedTile returns the tile for k from the tile cache, creating it when
// absent. Cached tiles keep their extent between frames.
func (t *Tessellator) cachedTile(k tile.Key) tile.Tile {
	if tl, ok := t.tiles.Get(k); ok {
		return tl
	}
	tl, err := t.levels.TileFor(k)
	if err != nil {
		t.log.Error("invalid tile key", zap.Stringer("tile", k), zap.Error(err))
		return tile.Tile{}
	}
	return tl
}

func (t *Tessellator) refreshExtent(dc *frame.Context, tl *tile.Tile) {
	if UpdateExtent(dc.Globe, t.ve, tl) {
		t.tiles.Put(tl.Key, *tl)
	}
}

func (t *Tessellator) addTileOrDescendants(dc *frame.Context, list *TileList, tl tile.Tile) {
	if t.meetsRenderCriteria(dc, &tl) {
		t.addTile(dc, list, tl)
		return
	}

	children, ok := t.levels.Children(tl)
	if !ok {
		t.addTile(dc, list, tl)
		return
	}

	root := t.levels.Sector()
	for _, child := range children {
		if !root.Overlaps(child.Sector) {
			continue
		}
		if cached, ok := t.tiles.Get(child.Key); ok {
			child = cached
		}
		t.refreshExtent(dc, &child)
		if !dc.View.Visible(child.Extent) {
			continue
		}
		t.addTileOrDescendants(dc, list, child)
	}
}

// meetsRenderCriteria reports whether tl is drawn as is instead of being
// subdivided: it is at the last level, at the finest resolution the
// elevation data offers, or fine enough for its distance to the eye. Tiles
// on empty levels are always subdivided.
func (t *Tessellator) meetsRenderCriteria(dc *frame.Context, tl *tile.Tile) bool {
	i := tl.Key.Level
	if t.levels.IsFinalLevel(i) {
		return true
	}
	if t.levels.IsLevelEmpty(i) {
		return false
	}
	// Resolution is judged over the part of the tile inside the root sector.
	// The mesh still spans the full nominal sector.
	in := t.levels.Sector().Intersection(tl.Sector)
	if best := dc.Globe.BestResolution(in); best > 0 && tl.Level.TexelSizeRadians() <= best {
		return true
	}
	return !tl.MustSubdivide(t.criteria, t.detailHintOrigin+t.detailHint)
}

func (t *Tessellator) addTile(dc *frame.Context, list *TileList, tl tile.Tile) {
	geom := t.geometry(tl.Key)
	if geom == nil || t.mustRegenerate(geom, tl.Sector) {
		var err error
		if geom, err = t.regenerate(dc, &tl, geom); err != nil {
			t.failures++
			t.log.Warn("tessellation failed", zap.Stringer("tile", tl.Key), zap.Error(err))
			return
		}
	}
	list.Tiles = append(list.Tiles, &SurfaceTile{Tile: tl, Geometry: geom})
	list.Sector = list.Sector.Union(tl.Sector)
}

func (t *Tessellator) geometry(k tile.Key) *Geometry {
	if geom, ok := t.retained[k]; ok {
		return geom
	}
	if geom, ok := t.geometries.Get(k); ok {
		return geom
	}
	return nil
}

func (t *Tessellator) mustRegenerate(geom *Geometry, s geo.Sector) bool {
	return geom.expired || geom.VerticalExaggeration != t.ve || t.expiry.intersects(s)
}

// regenerate builds the tile's mesh into geom, or a new geometry when geom
// is nil. Panics while building are turned into errors so one bad tile never
// takes the frame down; the tile is retried next frame.
func (t *Tessellator) regenerate(dc *frame.Context, tl *tile.Tile, geom *Geometry) (out *Geometry, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("building mesh: %v", r)
		}
	}()

	if geom == nil {
		geom = &Geometry{Token: uuid.New()}
	}
	if err := t.buildVertices(dc.Globe, t.ve, tl, geom); err != nil {
		return nil, err
	}

	if t.retainLevelZero && tl.Key.Level == 0 {
		t.retained[tl.Key] = geom
	} else if !t.geometries.Put(tl.Key, geom) {
		t.log.Warn("geometry larger than cache", zap.Stringer("tile", tl.Key),
			zap.Int64("bytes", geom.SizeInBytes()))
	}
	return geom, nil
}
