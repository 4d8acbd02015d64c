package engine

// CountTerrain counts the cells of a specific terrain on the board
func CountTerrain(b *Board, terrain TerrainKind) int {
	count := 0
	for _, row := range b.cells {
		for _, c := range row {
			if c.Terrain == terrain {
				count++
			}
		}
	}
	return count
}

// RemainingConvertible counts cells that still have to become rails
func RemainingConvertible(b *Board) int {
	count := 0
	for _, row := range b.cells {
		for _, c := range row {
			if c.Terrain.IsUnconverted() {
				count++
			}
		}
	}
	return count
}

// CountRails counts placed rail segments of any kind
func CountRails(b *Board) int {
	count := 0
	for _, row := range b.cells {
		for _, c := range row {
			if c.Terrain.IsRail() {
				count++
			}
		}
	}
	return count
}

// TerrainHistogram returns how many cells hold each terrain kind
func TerrainHistogram(layout BoardLayout, size int) map[TerrainKind]int {
	hist := make(map[TerrainKind]int, len(AllTerrains))
	for _, tile := range layout {
		hist[tile.Terrain]++
	}
	hist[Empty] += size*size - len(layout)
	return hist
}
