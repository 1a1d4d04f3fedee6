package experiment

import (
	"fmt"
	"math"
	"math/cmplx"
	"sort"

	"github.com/san-kum/halosim/internal/lattice"
)

type Registry struct {
	potentials map[string]func(map[string]float64) lattice.Evaluable
	states     map[string]func(map[string]float64) lattice.ComplexEvaluable
}

func NewRegistry() *Registry {
	r := &Registry{
		potentials: make(map[string]func(map[string]float64) lattice.Evaluable),
		states:     make(map[string]func(map[string]float64) lattice.ComplexEvaluable),
	}

	r.potentials["const"] = func(params map[string]float64) lattice.Evaluable {
		v := params["value"]
		return lattice.EvalFunc(func(x, y int, l *lattice.Lattice) float64 { return v })
	}
	r.potentials["harmonic"] = func(params map[string]float64) lattice.Evaluable {
		omega := param(params, "omega", 1)
		cx, cy := params["x"], params["y"]
		return lattice.EvalFunc(func(x, y int, l *lattice.Lattice) float64 {
			px, py := position(x, y, l)
			px, py = px-cx, py-cy
			return 0.5 * omega * omega * (px*px + py*py)
		})
	}

	r.states["gaussian"] = func(params map[string]float64) lattice.ComplexEvaluable {
		w := param(params, "width", 1)
		cx, cy := params["x"], params["y"]
		kx, ky := params["kx"], params["ky"]
		return lattice.ComplexEvalFunc(func(x, y int, l *lattice.Lattice) complex128 {
			px, py := position(x, y, l)
			px, py = px-cx, py-cy
			amp := math.Exp(-(px*px + py*py) / (2 * w * w))
			return complex(amp, 0) * cmplx.Exp(complex(0, kx*px+ky*py))
		})
	}
	r.states["plane_wave"] = func(params map[string]float64) lattice.ComplexEvaluable {
		nx, ny := params["nx"], params["ny"]
		return lattice.ComplexEvalFunc(func(x, y int, l *lattice.Lattice) complex128 {
			phase := 2 * math.Pi * (nx*float64(x)/float64(l.Width()) + ny*float64(y)/float64(l.Height()))
			return cmplx.Exp(complex(0, phase))
		})
	}
	r.states["vortex"] = func(params map[string]float64) lattice.ComplexEvaluable {
		w := param(params, "width", 1)
		q := param(params, "charge", 1)
		return lattice.ComplexEvalFunc(func(x, y int, l *lattice.Lattice) complex128 {
			px, py := position(x, y, l)
			r := math.Hypot(px, py)
			amp := math.Pow(r, math.Abs(q)) * math.Exp(-r*r/(2*w*w))
			return complex(amp, 0) * cmplx.Exp(complex(0, q*math.Atan2(py, px)))
		})
	}

	return r
}

func param(params map[string]float64, name string, def float64) float64 {
	if v, ok := params[name]; ok {
		return v
	}
	return def
}

// position maps global cell (x, y) to physical coordinates measured from
// the centre of the grid. Periodic axes are wrapped first, so halo cells
// see the value of the cell they mirror.
func position(x, y int, l *lattice.Lattice) (float64, float64) {
	if l.Periods[1] {
		x = lattice.Wrap(x, l.Width())
	}
	if l.Periods[0] {
		y = lattice.Wrap(y, l.Height())
	}
	px := (float64(x) - 0.5*float64(l.Width())) * l.DeltaX
	py := (float64(y) - 0.5*float64(l.Height())) * l.DeltaY
	return px, py
}

func (r *Registry) GetPotential(name string, params map[string]float64) (lattice.Evaluable, error) {
	fn, ok := r.potentials[name]
	if !ok {
		return nil, fmt.Errorf("unknown potential: %s", name)
	}
	return fn(params), nil
}

func (r *Registry) GetInitialState(name string, params map[string]float64) (lattice.ComplexEvaluable, error) {
	fn, ok := r.states[name]
	if !ok {
		return nil, fmt.Errorf("unknown initial state: %s", name)
	}
	return fn(params), nil
}

func (r *Registry) ListPotentials() []string {
	return sortedKeys(r.potentials)
}

func (r *Registry) ListInitialStates() []string {
	return sortedKeys(r.states)
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
