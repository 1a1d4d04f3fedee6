package lattice

// Borders is the result of splitting one axis among partitions.
// Start/End are halo-inclusive tile bounds, InnerStart/InnerEnd the region
// the node owns. All values are in logical global coordinates, so Start is
// negative for the first node of a periodic axis and End exceeds the
// logical length for the last one.
type Borders struct {
	Start, End           int
	InnerStart, InnerEnd int
}

// Width is the halo-extended tile width along the axis.
func (b Borders) Width() int { return b.End - b.Start }

// LowHalo is the number of halo cells below the owned range.
func (b Borders) LowHalo() int { return b.InnerStart - b.Start }

// HighHalo is the number of halo cells above the owned range.
func (b Borders) HighHalo() int { return b.End - b.InnerEnd }

// CalculateBorders splits [0, length) into dim ceiling-sized blocks and
// returns the ranges for block coord. Earlier blocks get the full ceiling
// size; the last one absorbs the shortfall, and blocks past the end of the
// axis own nothing.
//
// A periodic axis gets a halo on both sides of every block. A non-periodic
// axis has no halo beyond the domain edges.
func CalculateBorders(coord, dim, length, halo int, periodic bool) Borders {
	var b Borders

	inner := 0
	if dim > 0 {
		inner = (length + dim - 1) / dim
	}

	b.InnerStart = min(coord*inner, length)
	b.InnerEnd = min(b.InnerStart+inner, length)

	if periodic {
		b.Start = b.InnerStart - halo
		b.End = b.InnerEnd + halo
	} else {
		b.Start = max(b.InnerStart-halo, 0)
		b.End = min(b.InnerEnd+halo, length)
	}

	return b
}
