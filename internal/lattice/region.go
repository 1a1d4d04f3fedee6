package lattice

// Region is a rectangle of local tile cells [Row0, Row1) x [Col0, Col1).
// Y0 and X0 are the global coordinates of cell (Row0, Col0).
type Region struct {
	Row0, Row1 int
	Col0, Col1 int
	Y0, X0     int
}

func (r Region) Rows() int { return r.Row1 - r.Row0 }
func (r Region) Cols() int { return r.Col1 - r.Col0 }
func (r Region) Empty() bool { return r.Rows() <= 0 || r.Cols() <= 0 }

// InnerRegion covers the cells this node owns.
func (l *Lattice) InnerRegion() Region {
	return Region{
		Row0: l.Y.InnerStart - l.Y.Start,
		Row1: l.Y.InnerEnd - l.Y.Start,
		Col0: l.X.InnerStart - l.X.Start,
		Col1: l.X.InnerEnd - l.X.Start,
		Y0:   l.Y.InnerStart,
		X0:   l.X.InnerStart,
	}
}

// StencilRegion is the inner region minus any edge row or column that has
// no halo beyond it, so a 5-point stencil centred anywhere in the region
// stays inside the tile.
func (l *Lattice) StencilRegion() Region {
	r := l.InnerRegion()
	if l.Y.LowHalo() == 0 {
		r.Row0++
		r.Y0++
	}
	if l.Y.HighHalo() == 0 {
		r.Row1--
	}
	if l.X.LowHalo() == 0 {
		r.Col0++
		r.X0++
	}
	if l.X.HighHalo() == 0 {
		r.Col1--
	}
	r.Row1 = max(r.Row1, r.Row0)
	r.Col1 = max(r.Col1, r.Col0)
	return r
}
