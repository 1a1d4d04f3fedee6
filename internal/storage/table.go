package storage

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/san-kum/halosim/internal/observable"
	"github.com/san-kum/halosim/internal/textio"
)

// ExpectRow is one snapshot of the expectation table.
type ExpectRow struct {
	Iteration int     `json:"iteration"`
	Time      float64 `json:"time"`
	DeltaE    float64 `json:"delta_e"`

	observable.Snapshot
}

// ExpectTableName names the table of a run over a grid of size dim with
// the given iteration stride and snapshot count.
func ExpectTableName(dim, iterations, snapshots int) string {
	return fmt.Sprintf("exp_val_D%d_I%d_S%d.dat", dim, iterations, snapshots)
}

const expectHeader = "#iter\t time\tEnergy\t\tdelta_E\t\tPx\tPy\tP**2\tnorm2(psi(t))\tsigma_x\tsigma_y\t<X>\t<Y>"

func WriteExpectTable(w io.Writer, rows []ExpectRow) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, expectHeader)
	for _, r := range rows {
		fmt.Fprintf(bw, "%d\t%g\t%10g\t%10g\t%10g\t%10g\t%10g\t%g\t%g\t%g\t%10g\t%g\n",
			r.Iteration, r.Time, r.Energy, r.DeltaE, r.Px, r.Py, r.P2, r.Norm, r.SigmaX, r.SigmaY, r.X, r.Y)
	}
	return bw.Flush()
}

func SaveExpectTable(path string, rows []ExpectRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteExpectTable(f, rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ErrShortMatrix indicates a matrix file with fewer values than requested.
var ErrShortMatrix = errors.New("storage: matrix file too short")

// ReadComplexMatrix reads width x height complex values, row-major, from a
// snapshot file.
func ReadComplexMatrix(path string, width, height int) (re, im []float64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	n := width * height
	re, im = make([]float64, n), make([]float64, n)
	sc := textio.NewScanner(bufio.NewReader(f))
	for i := 0; i < n; i++ {
		v, err := sc.Complex()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, nil, fmt.Errorf("%w: %s has %d of %d values", ErrShortMatrix, path, i, n)
			}
			return nil, nil, err
		}
		re[i], im[i] = real(v), imag(v)
	}
	return re, im, nil
}
