package imagery

import (
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-globe/internal/engine/frame"
	"github.com/Faultbox/midgard-globe/internal/engine/terrain"
	"github.com/Faultbox/midgard-globe/internal/engine/tile"
)

// assemble selects the imagery tiles for the frame into l.current.
func (l *Layer) assemble(dc *frame.Context) {
	l.current = nil
	l.criteria = tile.DetailCriterion{
		Eye:              dc.View.Eye,
		GlobeRadius:      dc.Globe.Radius(),
		FieldOfViewScale: dc.View.FieldOfViewScale(),
	}

	for _, k := range l.topLevel {
		tl := l.cachedTile(k)
		if tl.Level == nil {
			continue
		}
		l.refreshExtent(dc, &tl)
		l.ancestor = nil
		if l.isTileVisible(dc, &tl) {
			l.addTileOrDescendants(dc, tl)
		}
	}
	l.ancestor = nil
}

func (l *Layer) cachedTile(k tile.Key) tile.Tile {
	if tl, ok := l.tiles.Get(k); ok {
		return tl
	}
	tl, err := l.levels.TileFor(k)
	if err != nil {
		l.log.Error("invalid tile key", zap.Stringer("tile", k), zap.Error(err))
		return tile.Tile{}
	}
	return tl
}

func (l *Layer) refreshExtent(dc *frame.Context, tl *tile.Tile) {
	if terrain.UpdateExtent(dc.Globe, dc.Exaggeration(), tl) {
		l.tiles.Put(tl.Key, *tl)
	}
}

// isTileVisible reports whether tl lies in the terrain's coverage and
// inside the view frustum.
func (l *Layer) isTileVisible(dc *frame.Context, tl *tile.Tile) bool {
	return dc.VisibleSector.Intersects(tl.Sector) && dc.View.Visible(tl.Extent)
}

func (l *Layer) meetsRenderCriteria(tl *tile.Tile) bool {
	return l.levels.IsFinalLevel(tl.Key.Level) ||
		!tl.MustSubdivide(l.criteria, l.detailHintOrigin+l.detailHint)
}

// addTileOrDescendants adds tl when it is fine enough for the view and
// otherwise descends into its visible children. While descending, the
// nearest ancestor with a resident texture (or the level-zero tile) is
// kept as the fallback for descendants whose own texture is missing.
func (l *Layer) addTileOrDescendants(dc *frame.Context, tl tile.Tile) {
	if l.meetsRenderCriteria(&tl) {
		l.addTile(dc, &tl)
		return
	}

	prev := l.ancestor
	if tl.Key.Level == 0 || l.texture(dc, tl.Key) != 0 {
		l.ancestor = &tl
	}
	defer func() { l.ancestor = prev }()

	children, ok := l.levels.Children(tl)
	if !ok {
		l.addTile(dc, &tl)
		return
	}
	root := l.levels.Sector()
	for _, child := range children {
		if !root.Overlaps(child.Sector) {
			continue
		}
		if cached, ok := l.tiles.Get(child.Key); ok {
			child = cached
		}
		l.refreshExtent(dc, &child)
		if l.isTileVisible(dc, &child) {
			l.addTileOrDescendants(dc, child)
		}
	}
}

// addTile adds tl with its own texture when resident. Otherwise it requests
// the texture and, until it arrives, draws tl with the current ancestor's.
// Tiles on empty levels are never drawn.
func (l *Layer) addTile(dc *frame.Context, tl *tile.Tile) {
	if tl.Level.Empty {
		return
	}
	if tex := l.texture(dc, tl.Key); tex != 0 {
		l.current = append(l.current, &TextureTile{Tile: *tl, Texture: tex, Source: tl.Key, TextureSector: tl.Sector})
		return
	}
	if tl.Key.Level == 0 && l.forceLevelZero && !l.absent.isAbsent(tl.Key) {
		if tex := l.forceLoad(dc, tl.Key); tex != 0 {
			l.current = append(l.current, &TextureTile{Tile: *tl, Texture: tex, Source: tl.Key, TextureSector: tl.Sector})
			return
		}
	}
	if !l.absent.isAbsent(tl.Key) {
		l.request(tl)
	}

	a := l.ancestor
	if a == nil {
		return
	}
	tex := l.texture(dc, a.Key)
	if tex == 0 && a.Key.Level == 0 && l.forceLevelZero && !l.absent.isAbsent(a.Key) {
		tex = l.forceLoad(dc, a.Key)
	}
	switch {
	case tex != 0:
		l.current = append(l.current, &TextureTile{Tile: *tl, Texture: tex, Source: a.Key, TextureSector: a.Sector})
	case a.Key.Level == 0 && !l.absent.isAbsent(a.Key):
		l.request(a)
	}
}
