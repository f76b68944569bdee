package metrics

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/gonum/floats"
	htm "github.com/htm-community/streamhtm"
)

/*
 A metric scores a prediction against the value that actually arrived and
returns its running aggregate, over the last Window scores when a window is
set and over everything seen otherwise.
*/
type Metric interface {
	Name() string
	Score(dist *htm.Distribution, actual float64) float64
	//Current aggregate, NaN before the first score
	Value() float64
}

//Floor applied to probabilities before taking logs
const minProbability = 1e-8

//Mean of the last window values, or of all values with a zero window
type aggregate struct {
	window int
	values []float64
	sum    float64
	count  int
}

func (a *aggregate) add(v float64) {
	if a.window <= 0 {
		a.sum += v
		a.count++
		return
	}
	a.values = append(a.values, v)
	if len(a.values) > a.window {
		a.values = a.values[len(a.values)-a.window:]
	}
}

func (a *aggregate) total() (float64, int) {
	if a.window <= 0 {
		return a.sum, a.count
	}
	return floats.Sum(a.values), len(a.values)
}

func (a *aggregate) mean() float64 {
	sum, n := a.total()
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

//Value of the most likely bucket, NaN for an empty distribution
func predictedValue(dist *htm.Distribution) float64 {
	if dist == nil {
		return math.NaN()
	}
	idx, value := dist.MostLikely()
	if idx < 0 {
		return math.NaN()
	}
	return value
}

type averageAbsoluteError struct {
	agg aggregate
}

func (m *averageAbsoluteError) Name() string { return "aae" }

func (m *averageAbsoluteError) Score(dist *htm.Distribution, actual float64) float64 {
	predicted := predictedValue(dist)
	if !math.IsNaN(predicted) {
		m.agg.add(math.Abs(actual - predicted))
	}
	return m.Value()
}

func (m *averageAbsoluteError) Value() float64 {
	return m.agg.mean()
}

type rootMeanSquareError struct {
	agg aggregate
}

func (m *rootMeanSquareError) Name() string { return "rmse" }

func (m *rootMeanSquareError) Score(dist *htm.Distribution, actual float64) float64 {
	predicted := predictedValue(dist)
	if !math.IsNaN(predicted) {
		m.agg.add((actual - predicted) * (actual - predicted))
	}
	return m.Value()
}

func (m *rootMeanSquareError) Value() float64 {
	return math.Sqrt(m.agg.mean())
}

/*
 Alternative mean absolute percentage error: total absolute error over total
absolute actual value, as a percentage. Stays defined when actual values
are zero.
*/
type altMAPE struct {
	errs    aggregate
	actuals aggregate
}

func (m *altMAPE) Name() string { return "altmape" }

func (m *altMAPE) Score(dist *htm.Distribution, actual float64) float64 {
	predicted := predictedValue(dist)
	if !math.IsNaN(predicted) {
		m.errs.add(math.Abs(actual - predicted))
		m.actuals.add(math.Abs(actual))
	}
	return m.Value()
}

func (m *altMAPE) Value() float64 {
	errSum, n := m.errs.total()
	if n == 0 {
		return math.NaN()
	}
	actualSum, _ := m.actuals.total()
	if actualSum == 0 {
		return 0
	}
	return 100 * errSum / actualSum
}

/*
 Negative log likelihood of the actual value: the probability of the bucket
whose value is nearest to it, floored at minProbability.
*/
type negLogLikelihood struct {
	agg aggregate
}

func (m *negLogLikelihood) Name() string { return "nll" }

func (m *negLogLikelihood) Score(dist *htm.Distribution, actual float64) float64 {
	prob := 0.0
	if dist != nil && len(dist.Probabilities) > 0 {
		best := 0
		for i, v := range dist.ActualValues {
			if math.Abs(v-actual) < math.Abs(dist.ActualValues[best]-actual) {
				best = i
			}
		}
		prob = dist.Probabilities[best]
	}
	m.agg.add(-math.Log(math.Max(prob, minProbability)))
	return m.Value()
}

func (m *negLogLikelihood) Value() float64 {
	return m.agg.mean()
}

//Fraction of predictions within Tolerance of the actual value
type accuracy struct {
	agg       aggregate
	tolerance float64
}

func (m *accuracy) Name() string { return "accuracy" }

func (m *accuracy) Score(dist *htm.Distribution, actual float64) float64 {
	hit := 0.0
	predicted := predictedValue(dist)
	if !math.IsNaN(predicted) && math.Abs(predicted-actual) <= m.tolerance {
		hit = 1
	}
	m.agg.add(hit)
	return m.Value()
}

func (m *accuracy) Value() float64 {
	return m.agg.mean()
}

//Options shared by all metrics
type Options struct {
	//Number of most recent scores aggregated, 0 for all
	Window int
	//Largest error counted as correct by accuracy
	Tolerance float64
}

type Factory func(opts Options) Metric

var (
	factoriesOnce sync.Once
	factories     map[string]Factory
)

//Metric constructors keyed by name
func Factories() map[string]Factory {
	factoriesOnce.Do(func() {
		factories = map[string]Factory{
			"aae": func(o Options) Metric {
				return &averageAbsoluteError{agg: aggregate{window: o.Window}}
			},
			"rmse": func(o Options) Metric {
				return &rootMeanSquareError{agg: aggregate{window: o.Window}}
			},
			"altmape": func(o Options) Metric {
				return &altMAPE{errs: aggregate{window: o.Window}, actuals: aggregate{window: o.Window}}
			},
			"nll": func(o Options) Metric {
				return &negLogLikelihood{agg: aggregate{window: o.Window}}
			},
			"accuracy": func(o Options) Metric {
				return &accuracy{agg: aggregate{window: o.Window}, tolerance: o.Tolerance}
			},
		}
	})
	return factories
}

//Builds the named metric
func New(name string, opts Options) (Metric, error) {
	if opts.Window < 0 || opts.Tolerance < 0 {
		return nil, fmt.Errorf("metrics: window and tolerance must not be negative")
	}
	f, ok := Factories()[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("metrics: unknown metric %q, known: %s", name, strings.Join(Names(), ", "))
	}
	return f(opts), nil
}

//Sorted metric names
func Names() []string {
	names := make([]string, 0, len(Factories()))
	for name := range Factories() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
