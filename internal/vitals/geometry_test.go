package vitals

import "testing"

func TestAntennaGeometry(t *testing.T) {
	g := newAntennaGeometry()

	if g.numRows != 3 || g.numCols != 4 || g.numTx != 3 || g.numRx != 4 {
		t.Fatalf("unexpected array shape: %dx%d (%d tx, %d rx)", g.numRows, g.numCols, g.numTx, g.numRx)
	}

	for v := 0; v < NumVirtualAnt; v++ {
		wantRow := int8(v / 4)
		wantCol := int8(v % 4)
		if g.pos[v].row != wantRow || g.pos[v].col != wantCol {
			t.Errorf("antenna %d at (%d,%d), want (%d,%d)", v, g.pos[v].row, g.pos[v].col, wantRow, wantCol)
		}
		if got := g.antennaAt(int(wantRow), int(wantCol)); got != v {
			t.Errorf("antennaAt(%d,%d) = %d, want %d", wantRow, wantCol, got, v)
		}
	}

	// Cells outside the populated aperture are empty.
	if got := g.antennaAt(0, 4); got != -1 {
		t.Errorf("antennaAt(0,4) = %d, want -1", got)
	}
	if got := g.antennaAt(3, 0); got != -1 {
		t.Errorf("antennaAt(3,0) = %d, want -1", got)
	}
}

func TestNeighborhood3(t *testing.T) {
	cases := []struct {
		idx  int
		want [3]int
	}{
		{0, [3]int{AngleFFTSize - 1, 0, 1}},
		{1, [3]int{0, 1, 2}},
		{AngleFFTSize - 1, [3]int{AngleFFTSize - 2, AngleFFTSize - 1, 0}},
		{7, [3]int{6, 7, 8}},
	}
	for _, c := range cases {
		if got := neighborhood3(c.idx, AngleFFTSize); got != c.want {
			t.Errorf("neighborhood3(%d) = %v, want %v", c.idx, got, c.want)
		}
	}
}
