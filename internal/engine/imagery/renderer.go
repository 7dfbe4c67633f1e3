package imagery

import (
	"github.com/Faultbox/midgard-globe/internal/engine/frame"
	"github.com/Faultbox/midgard-globe/internal/engine/gpu"
	"github.com/Faultbox/midgard-globe/internal/engine/terrain"
)

// SurfaceTileRenderer draws textured tiles over the terrain: every terrain
// tile is drawn once per imagery tile overlapping it, with the texture
// matrix aligning the imagery and the tile matrix clipping it to the
// imagery tile's sector.
type SurfaceTileRenderer struct{}

// RenderTiles draws tiles over terrainTiles with the given opacity and
// returns the number of draws issued.
func (SurfaceTileRenderer) RenderTiles(dc *frame.Context, terrainTiles *terrain.TileList, tiles []*TextureTile, opacity float64) int {
	if len(tiles) == 0 || !terrainTiles.BeginRendering(dc) {
		return 0
	}
	defer terrainTiles.EndRendering(dc)

	g, prog := dc.GPU, dc.SurfaceProgram
	g.SetUniformInt(prog, gpu.UniformUseTexture, 1)
	g.SetUniformInt(prog, gpu.UniformTexture, 0)
	g.SetUniformColor(prog, gpu.UniformColor, 1, 1, 1, float32(opacity))

	draws := 0
	for _, st := range terrainTiles.Tiles {
		for _, tt := range tiles {
			if !tt.Sector.Overlaps(st.Sector) {
				continue
			}
			g.BindTexture(0, tt.Texture)
			g.SetUniformMatrix(prog, gpu.UniformTexMatrix, TextureMatrix(st.Sector, tt.TextureSector))
			g.SetUniformMatrix(prog, gpu.UniformTileMatrix, TileMatrix(st.Sector, tt.Sector))
			terrainTiles.Render(dc, st)
			draws++
		}
	}

	g.BindTexture(0, 0)
	g.SetUniformInt(prog, gpu.UniformUseTexture, 0)
	return draws
}
