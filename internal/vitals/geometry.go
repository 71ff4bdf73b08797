package vitals

// antennaPos is one virtual antenna's position in the angle grid, in
// half-wavelength steps.
type antennaPos struct {
	row int8
	col int8
}

// antennaGeometry maps virtual antenna indices onto the 2-D angle-FFT
// grid. It is the only adapter between "virtual antenna v" and
// "grid cell (row, col)"; nothing else assumes an array shape.
type antennaGeometry struct {
	pos     [NumVirtualAnt]antennaPos
	numRows int
	numCols int
	numTx   int
	numRx   int

	// grid[r][c] is the virtual antenna at that cell, or -1.
	grid [AngleFFTSize][AngleFFTSize]int8
}

// newAntennaGeometry builds the 3TX x 4RX virtual array of the device
// class: antenna v sits at row v/4, column v%4.
func newAntennaGeometry() antennaGeometry {
	g := antennaGeometry{
		numRows: 3,
		numCols: 4,
		numTx:   3,
		numRx:   4,
	}
	for r := range g.grid {
		for c := range g.grid[r] {
			g.grid[r][c] = -1
		}
	}
	for v := 0; v < NumVirtualAnt; v++ {
		row := int8(v / g.numCols)
		col := int8(v % g.numCols)
		g.pos[v] = antennaPos{row: row, col: col}
		g.grid[row][col] = int8(v)
	}
	return g
}

// antennaAt returns the virtual antenna index occupying grid cell
// (row, col), or -1 when the cell is empty.
func (g *antennaGeometry) antennaAt(row, col int) int {
	return int(g.grid[row][col])
}
