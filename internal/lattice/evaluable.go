package lattice

// Evaluable samples a real field at global lattice coordinates. It must be
// deterministic: halo cells cause the same point to be evaluated by more
// than one node.
type Evaluable interface {
	Eval(x, y int, l *Lattice) float64
}

// ComplexEvaluable samples a complex field, typically an initial state.
type ComplexEvaluable interface {
	Eval(x, y int, l *Lattice) complex128
}

type EvalFunc func(x, y int, l *Lattice) float64

func (f EvalFunc) Eval(x, y int, l *Lattice) float64 { return f(x, y, l) }

type ComplexEvalFunc func(x, y int, l *Lattice) complex128

func (f ComplexEvalFunc) Eval(x, y int, l *Lattice) complex128 { return f(x, y, l) }
