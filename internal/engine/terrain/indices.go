package terrain

// Every builder below works on the skirted point grid: (h+3) rows of (w+3)
// points, where row 0, row h+2, column 0 and column w+2 are skirt points.

// buildTexCoords maps the grid onto [0,1]². Skirt points repeat the texture
// coordinates of the edge they hang from.
func buildTexCoords(tileWidth, tileHeight int) []float32 {
	numLat := tileHeight + 3
	numLon := tileWidth + 3
	out := make([]float32, 0, 2*numLat*numLon)

	deltaS := 1 / float32(tileWidth)
	deltaT := 1 / float32(tileHeight)

	var s, t float32
	for j := 0; j < numLat; j++ {
		switch {
		case j <= 1:
			t = 0
		case j >= numLat-2:
			t = 1
		default:
			t += deltaT
		}
		for i := 0; i < numLon; i++ {
			switch {
			case i <= 1:
				s = 0
			case i >= numLon-2:
				s = 1
			default:
				s += deltaS
			}
			out = append(out, s, t)
		}
	}
	return out
}

// buildIndices returns one triangle strip over the whole grid. Rows are
// joined by repeating the last index of one row and the first of the next,
// which produces zero-area triangles that are never rasterized.
func buildIndices(tileWidth, tileHeight int) []uint32 {
	numLat := tileHeight + 3
	numLon := tileWidth + 3
	out := make([]uint32, 0, stripIndexCount(tileWidth, tileHeight))

	vertex := 0
	for j := 0; j < numLat-1; j++ {
		if j != 0 {
			out = append(out, uint32(vertex), uint32(j*numLon+numLon))
		}
		for i := 0; i < numLon; i++ {
			vertex = i + j*numLon
			out = append(out, uint32(vertex+numLon), uint32(vertex))
		}
	}
	return out
}

func stripIndexCount(tileWidth, tileHeight int) int {
	numLat := tileHeight + 3
	numLon := tileWidth + 3
	return 2*(numLat-1)*numLon + 2*(numLat-2)
}

// buildWireframeIndices returns a line list outlining every interior cell.
func buildWireframeIndices(tileWidth, tileHeight int) []uint32 {
	numLat := tileHeight + 1
	numLon := tileWidth + 1
	rowStride := numLon + 2
	offset := rowStride + 1 // first non-skirt point

	out := make([]uint32, 0, 2*numLat*(numLon-1)+2*(numLat-1)*numLon)

	// horizontal edges
	for j := 0; j < numLat; j++ {
		for i := 0; i < numLon-1; i++ {
			v := offset + i + j*rowStride
			out = append(out, uint32(v), uint32(v+1))
		}
	}
	// vertical edges
	for i := 0; i < numLon; i++ {
		for j := 0; j < numLat-1; j++ {
			v := offset + i + j*rowStride
			out = append(out, uint32(v), uint32(v+rowStride))
		}
	}
	return out
}

// buildOutlineIndices returns a closed line strip around the tile's
// non-skirt border, counter-clockwise from the south-west corner.
func buildOutlineIndices(tileWidth, tileHeight int) []uint32 {
	numLat := tileHeight + 1
	numLon := tileWidth + 1
	rowStride := numLon + 2

	out := make([]uint32, 0, 2*(numLat-1)+2*numLon-1)

	// south edge
	offset := rowStride + 1
	for i := 0; i < numLon; i++ {
		out = append(out, uint32(offset+i))
	}
	// east edge
	offset = 2*rowStride - 2
	for j := 1; j < numLat; j++ {
		out = append(out, uint32(offset+j*rowStride))
	}
	// north edge
	offset = numLat*rowStride + 1
	for i := numLon - 2; i >= 0; i-- {
		out = append(out, uint32(offset+i))
	}
	// west edge
	offset = rowStride + 1
	for j := numLat - 2; j >= 0; j-- {
		out = append(out, uint32(offset+j*rowStride))
	}
	return out
}

// sharedGeometry returns the shared buffers for tiles of the given size,
// building them on first use. The map belongs to one Tessellator.
func (t *Tessellator) sharedGeometry(width, height int) *SharedGeometry {
	k := dims{width, height}
	if sg, ok := t.shared[k]; ok {
		return sg
	}
	sg := newSharedGeometry(width, height)
	t.shared[k] = sg
	return sg
}
