package lattice

import (
	"errors"
	"fmt"
	"testing"

	"github.com/san-kum/halosim/internal/comm"
)

func TestCalculateBordersPartition(t *testing.T) {
	for _, periodic := range []bool{false, true} {
		for length := 0; length <= 40; length++ {
			for dim := 1; dim <= 9; dim++ {
				covered := make([]int, length)
				for coord := 0; coord < dim; coord++ {
					b := CalculateBorders(coord, dim, length, 4, periodic)
					if b.InnerEnd < b.InnerStart {
						t.Fatalf("length=%d dim=%d coord=%d: negative inner range %+v", length, dim, coord, b)
					}
					for i := b.InnerStart; i < b.InnerEnd; i++ {
						covered[i]++
					}
				}
				for i, n := range covered {
					if n != 1 {
						t.Fatalf("periodic=%v length=%d dim=%d: cell %d owned %d times", periodic, length, dim, i, n)
					}
				}
			}
		}
	}
}

func TestCalculateBordersFrontLoaded(t *testing.T) {
	want := [][2]int{{0, 4}, {4, 8}, {8, 10}}
	for coord, w := range want {
		b := CalculateBorders(coord, 3, 10, 2, false)
		if b.InnerStart != w[0] || b.InnerEnd != w[1] {
			t.Errorf("coord %d: got [%d,%d), want [%d,%d)", coord, b.InnerStart, b.InnerEnd, w[0], w[1])
		}
	}
}

func TestCalculateBordersHalo(t *testing.T) {
	tests := []struct {
		name     string
		coord    int
		periodic bool
		want     Borders
	}{
		{"first open", 0, false, Borders{Start: 0, End: 14, InnerStart: 0, InnerEnd: 10}},
		{"interior open", 1, false, Borders{Start: 6, End: 24, InnerStart: 10, InnerEnd: 20}},
		{"last open", 2, false, Borders{Start: 16, End: 30, InnerStart: 20, InnerEnd: 30}},
		{"first periodic", 0, true, Borders{Start: -4, End: 14, InnerStart: 0, InnerEnd: 10}},
		{"last periodic", 2, true, Borders{Start: 16, End: 34, InnerStart: 20, InnerEnd: 30}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateBorders(tt.coord, 3, 30, 4, tt.periodic)
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}

	interior := CalculateBorders(1, 3, 30, 4, false)
	if interior.InnerStart != interior.Start+4 || interior.InnerEnd != interior.End-4 {
		t.Errorf("interior node inner range %+v is not [start+halo, end-halo)", interior)
	}
}

func TestDimsCreate(t *testing.T) {
	tests := []struct {
		n    int
		want [2]int
	}{
		{1, [2]int{1, 1}},
		{2, [2]int{2, 1}},
		{4, [2]int{2, 2}},
		{6, [2]int{3, 2}},
		{7, [2]int{7, 1}},
		{12, [2]int{4, 3}},
		{16, [2]int{4, 4}},
	}

	for _, tt := range tests {
		got, err := DimsCreate(tt.n)
		if err != nil {
			t.Fatalf("DimsCreate(%d): %v", tt.n, err)
		}
		if got != tt.want {
			t.Errorf("DimsCreate(%d) = %v, want %v", tt.n, got, tt.want)
		}
	}

	if _, err := DimsCreate(0); !errors.Is(err, ErrTopology) {
		t.Errorf("expected ErrTopology for 0 nodes, got %v", err)
	}
}

type fakeComm struct{ rank, size int }

func (f fakeComm) Rank() int { return f.rank }
func (f fakeComm) Size() int { return f.size }
func (f fakeComm) AllGather(v float64) ([]float64, error) { return []float64{v}, nil }
func (f fakeComm) Barrier() error { return nil }

func TestNewTopology(t *testing.T) {
	topo, err := NewTopology(fakeComm{rank: 5, size: 6}, [2]int{})
	if err != nil {
		t.Fatalf("topology failed: %v", err)
	}
	if topo.Dims != [2]int{3, 2} {
		t.Errorf("expected dims 3x2, got %v", topo.Dims)
	}
	if topo.Coords != [2]int{2, 1} {
		t.Errorf("expected coords {2,1}, got %v", topo.Coords)
	}
	if topo.RankOf(topo.Coords) != 5 {
		t.Errorf("RankOf round trip failed: %d", topo.RankOf(topo.Coords))
	}

	if _, err := NewTopology(fakeComm{rank: 0, size: 6}, [2]int{4, 2}); !errors.Is(err, ErrTopology) {
		t.Errorf("expected ErrTopology for 4x2 pinned grid, got %v", err)
	}
}

func TestNewLattice(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		halo     int
		globalX  int
		globalY  int
		tileSize [2]int
	}{
		{
			"open", Config{DimX: 32, DimY: 24, DeltaX: 0.1, DeltaY: 0.1},
			DefaultHalo, 32, 24, [2]int{32, 24},
		},
		{
			"periodic x", Config{DimX: 32, DimY: 24, DeltaX: 0.1, DeltaY: 0.1, PeriodicX: true},
			DefaultHalo, 40, 24, [2]int{40, 24},
		},
		{
			"rotating periodic", Config{DimX: 32, DimY: 24, DeltaX: 0.1, DeltaY: 0.1, PeriodicX: true, PeriodicY: true, Omega: 0.5},
			RotatingHalo, 48, 40, [2]int{48, 40},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.cfg, comm.Local())
			if err != nil {
				t.Fatalf("new failed: %v", err)
			}
			if l.HaloX != tt.halo || l.HaloY != tt.halo {
				t.Errorf("expected halo %d, got %d/%d", tt.halo, l.HaloX, l.HaloY)
			}
			if l.GlobalDimX != tt.globalX || l.GlobalDimY != tt.globalY {
				t.Errorf("expected global %dx%d, got %dx%d", tt.globalX, tt.globalY, l.GlobalDimX, l.GlobalDimY)
			}
			if l.DimX != tt.tileSize[0] || l.DimY != tt.tileSize[1] {
				t.Errorf("expected tile %v, got %dx%d", tt.tileSize, l.DimX, l.DimY)
			}
			if l.Width() != tt.cfg.DimX || l.Height() != tt.cfg.DimY {
				t.Errorf("logical size %dx%d, want %dx%d", l.Width(), l.Height(), tt.cfg.DimX, tt.cfg.DimY)
			}
		})
	}
}

func TestNewLatticeInvalid(t *testing.T) {
	bad := []Config{
		{DimX: 0, DimY: 8, DeltaX: 1, DeltaY: 1},
		{DimX: 8, DimY: 8, DeltaX: 0, DeltaY: 1},
		{DimX: 8, DimY: 8, DeltaX: 1, DeltaY: 1, Dims: [2]int{2, 2}},
	}
	for i, cfg := range bad {
		if _, err := New(cfg, comm.Local()); !errors.Is(err, ErrTopology) {
			t.Errorf("config %d: expected ErrTopology, got %v", i, err)
		}
	}
}

func TestStencilRegion(t *testing.T) {
	open, _ := New(Config{DimX: 8, DimY: 6, DeltaX: 1, DeltaY: 1}, comm.Local())
	r := open.StencilRegion()
	if r != (Region{Row0: 1, Row1: 5, Col0: 1, Col1: 7, Y0: 1, X0: 1}) {
		t.Errorf("open stencil region %+v", r)
	}

	periodic, _ := New(Config{DimX: 8, DimY: 6, DeltaX: 1, DeltaY: 1, PeriodicX: true, PeriodicY: true}, comm.Local())
	r = periodic.StencilRegion()
	if r != periodic.InnerRegion() {
		t.Errorf("periodic stencil region %+v should equal inner region %+v", r, periodic.InnerRegion())
	}
	if r.Rows() != 6 || r.Cols() != 8 || r.Row0 != 4 || r.Col0 != 4 {
		t.Errorf("periodic stencil region %+v", r)
	}

	mixed, _ := New(Config{DimX: 8, DimY: 6, DeltaX: 1, DeltaY: 1, PeriodicX: true}, comm.Local())
	r = mixed.StencilRegion()
	if r.Rows() != 4 || r.Cols() != 8 {
		t.Errorf("mixed stencil region %+v", r)
	}
}

func TestStencilRegionNodeGrid(t *testing.T) {
	// 2x2 node grid over an open 16x16 domain: every node loses exactly one
	// row and one column, on its domain-edge sides.
	for rank := 0; rank < 4; rank++ {
		l, err := New(Config{DimX: 16, DimY: 16, DeltaX: 1, DeltaY: 1}, fakeComm{rank: rank, size: 4})
		if err != nil {
			t.Fatalf("rank %d: %v", rank, err)
		}
		inner, st := l.InnerRegion(), l.StencilRegion()
		if inner.Rows() != 8 || inner.Cols() != 8 {
			t.Errorf("rank %d: inner region %+v", rank, inner)
		}
		if st.Rows() != 7 || st.Cols() != 7 {
			t.Errorf("rank %d: stencil region %+v", rank, st)
		}
		if st.Row0 < 1 || st.Col0 < 1 || st.Row1 > l.DimY-1 || st.Col1 > l.DimX-1 {
			t.Errorf("rank %d: stencil region %+v reaches the tile edge", rank, st)
		}
	}
}

func TestBorrow(t *testing.T) {
	l, _ := New(Config{DimX: 4, DimY: 4, DeltaX: 1, DeltaY: 1}, comm.Local())

	b, err := l.Borrow(make([]float64, 16))
	if err != nil {
		t.Fatalf("borrow failed: %v", err)
	}
	if b.Own != Borrowed {
		t.Errorf("expected borrowed buffer, got %v", b.Own)
	}

	b, err = l.Borrow(nil)
	if err != nil || b.Own != Owned || len(b.Data) != 16 {
		t.Errorf("nil borrow should allocate an owned buffer, got %v %v %d", err, b.Own, len(b.Data))
	}

	if _, err := l.Borrow(make([]float64, 15)); !errors.Is(err, ErrSizeMismatch) {
		t.Errorf("expected ErrSizeMismatch, got %v", err)
	}
}

func TestPlacePeriodicImages(t *testing.T) {
	for _, cfg := range []Config{
		{DimX: 10, DimY: 7, DeltaX: 1, DeltaY: 1, PeriodicX: true, PeriodicY: true},
		{DimX: 10, DimY: 7, DeltaX: 1, DeltaY: 1, PeriodicX: true},
		{DimX: 10, DimY: 7, DeltaX: 1, DeltaY: 1, PeriodicY: true},
	} {
		for rank := 0; rank < 4; rank++ {
			name := fmt.Sprintf("px=%v py=%v rank=%d", cfg.PeriodicX, cfg.PeriodicY, rank)
			l, err := New(cfg, fakeComm{rank: rank, size: 4})
			if err != nil {
				t.Fatalf("%s: %v", name, err)
			}

			tile := make([]float64, l.TileSize())
			for i := range tile {
				tile[i] = -1
			}
			for row := 0; row < l.Height(); row++ {
				for col := 0; col < l.Width(); col++ {
					v := float64(row*100 + col)
					l.Place(row, col, func(idx int) { tile[idx] = v })
				}
			}

			for r := 0; r < l.DimY; r++ {
				for c := 0; c < l.DimX; c++ {
					gy, gx := l.Y.Start+r, l.X.Start+c
					if l.Periods[0] {
						gy = Wrap(gy, l.Height())
					}
					if l.Periods[1] {
						gx = Wrap(gx, l.Width())
					}
					want := float64(gy*100 + gx)
					if tile[l.Index(r, c)] != want {
						t.Fatalf("%s: cell (%d,%d) = %v, want %v", name, r, c, tile[l.Index(r, c)], want)
					}
				}
			}
		}
	}
}
