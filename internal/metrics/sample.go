package metrics

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Sample accumulates a named scalar series, one value per snapshot.
type Sample struct {
	name   string
	values []float64
}

func NewSample(name string) *Sample {
	return &Sample{name: name}
}

func (s *Sample) Name() string { return s.name }

func (s *Sample) Observe(v float64) {
	s.values = append(s.values, v)
}

func (s *Sample) Len() int { return len(s.values) }

func (s *Sample) Values() []float64 { return s.values }

// Value is the sample mean, 0 for an empty series.
func (s *Sample) Value() float64 {
	if len(s.values) == 0 {
		return 0
	}
	return stat.Mean(s.values, nil)
}

// StdDev is the sample standard deviation with the N-1 denominator, 0 for
// fewer than two values.
func (s *Sample) StdDev() float64 {
	if len(s.values) < 2 {
		return 0
	}
	return math.Sqrt(stat.Variance(s.values, nil))
}

func (s *Sample) Reset() {
	s.values = s.values[:0]
}

// Summary holds the statistics of energy and momentum over a run.
type Summary struct {
	MeanE  float64 `json:"mean_e"`
	StdE   float64 `json:"std_e"`
	MeanPx float64 `json:"mean_px"`
	StdPx  float64 `json:"std_px"`
	MeanPy float64 `json:"mean_py"`
	StdPy  float64 `json:"std_py"`
	Drift  float64 `json:"energy_drift"`
}

func Summarize(energy, px, py *Sample) Summary {
	drift := NewEnergyDrift()
	for _, e := range energy.Values() {
		drift.Observe(e)
	}
	return Summary{
		MeanE:  energy.Value(),
		StdE:   energy.StdDev(),
		MeanPx: px.Value(),
		StdPx:  px.StdDev(),
		MeanPy: py.Value(),
		StdPy:  py.StdDev(),
		Drift:  drift.Value(),
	}
}
