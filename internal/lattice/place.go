package lattice

// Place calls set with the tile offset of every local copy of logical cell
// (row, col), 0 <= row < Height(), 0 <= col < Width().
//
// Besides the body cell, a periodic axis mirrors the first halo rows of the
// domain into the band below the last row (and the last rows into the band
// above the first one); a periodic x axis does the same for the left and
// right bands. When both axes are periodic the four corner bands receive the
// diagonal images. Every one of these copies must be written, otherwise the
// duplicated edges of a periodic grid disagree.
func (l *Lattice) Place(row, col int, set func(idx int)) {
	var rb, cb [4]int
	rows := images(row, l.Y, l.Height(), l.Periods[0], rb[:0])
	cols := images(col, l.X, l.Width(), l.Periods[1], cb[:0])

	for _, r := range rows {
		base := (r - l.Y.Start) * l.DimX
		for _, c := range cols {
			set(base + c - l.X.Start)
		}
	}
}

// images lists the global coordinates in [b.Start, b.End) that alias i.
func images(i int, b Borders, length int, periodic bool, buf []int) []int {
	if !periodic {
		if i >= b.Start && i < b.End {
			buf = append(buf, i)
		}
		return buf
	}
	if length <= 0 {
		return buf
	}
	off := (i - b.Start) % length
	if off < 0 {
		off += length
	}
	for p := b.Start + off; p < b.End; p += length {
		buf = append(buf, p)
	}
	return buf
}

// Wrap maps a global coordinate of a periodic axis back into [0, length).
func Wrap(i, length int) int {
	i %= length
	if i < 0 {
		i += length
	}
	return i
}
