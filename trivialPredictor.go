package htm

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cznic/mathutil"
	"github.com/voodooEntity/archivist"
)

/*
Baseline column predictors to compare a temporal memory against
(n = half the number of average input columns on)
"random" - predict n random columns
"zeroth" - predict the n most common columns learned from the input
"last" - predict the last input
"all" - predict all columns
"lots" - predict the 2n most common columns learned from the input

Both "random" and "all" should give a prediction score of zero
*/

type PredictorMethod int

const (
	PredictRandom PredictorMethod = 1
	PredictZeroth PredictorMethod = 2
	PredictLast   PredictorMethod = 3
	PredictAll    PredictorMethod = 4
	PredictLots   PredictorMethod = 5
)

var predictorMethodNames = map[PredictorMethod]string{
	PredictRandom: "random",
	PredictZeroth: "zeroth",
	PredictLast:   "last",
	PredictAll:    "all",
	PredictLots:   "lots",
}

func (m PredictorMethod) String() string {
	if name, ok := predictorMethodNames[m]; ok {
		return name
	}
	return fmt.Sprintf("PredictorMethod(%d)", int(m))
}

//Looks up a method by its lower case name
func ParsePredictorMethod(name string) (PredictorMethod, error) {
	for method, n := range predictorMethodNames {
		if n == strings.ToLower(name) {
			return method, nil
		}
	}
	return 0, fmt.Errorf("unknown predictor method %q", name)
}

type trivialPredictorState struct {
	predicted  []int
	confidence []float64
}

type TrivialPredictor struct {
	NumberOfColumns int
	Methods         []PredictorMethod
	BurnIn          int
	Verbosity       int

	stats          map[PredictorMethod]*PredictionStats
	state          map[PredictorMethod]*trivialPredictorState
	columnCount    []int
	averageDensity float64
	rng            *Random
}

func NewTrivialPredictor(numberOfCols int, methods []PredictorMethod, burnIn int, seed int64) (*TrivialPredictor, error) {
	if numberOfCols <= 0 {
		return nil, configErr("NumberOfColumns", "must be positive")
	}
	if len(methods) == 0 {
		return nil, configErr("Methods", "at least one method is required")
	}

	tp := &TrivialPredictor{
		NumberOfColumns: numberOfCols,
		BurnIn:          burnIn,
		stats:           make(map[PredictorMethod]*PredictionStats, len(methods)),
		state:           make(map[PredictorMethod]*trivialPredictorState, len(methods)),
		// Number of times each column has been active during learning
		columnCount: make([]int, numberOfCols),
		// Running average of input density
		averageDensity: 0.05,
		rng:            NewRandom(seed),
	}

	for _, method := range methods {
		if _, ok := predictorMethodNames[method]; !ok {
			return nil, configErr("Methods", "unknown method %d", int(method))
		}
		if _, dup := tp.state[method]; dup {
			continue
		}
		tp.Methods = append(tp.Methods, method)
		tp.stats[method] = &PredictionStats{BurnIn: burnIn}
		tp.state[method] = &trivialPredictorState{confidence: make([]float64, numberOfCols)}
	}

	return tp, nil
}

/*
 Scores the previous prediction of every method against activeColumns, then
learns from them when learn is set and makes the next prediction.
*/
func (tp *TrivialPredictor) Compute(activeColumns []int, learn bool) {
	cols := append([]int(nil), activeColumns...)
	sort.Ints(cols)
	for _, col := range cols {
		if col < 0 || col >= tp.NumberOfColumns {
			panic(fmt.Sprintf("column %d out of range [0,%d)", col, tp.NumberOfColumns))
		}
	}

	for _, method := range tp.Methods {
		st := tp.state[method]
		tp.stats[method].update(cols, st.predicted, st.confidence)
	}

	if learn {
		tp.learn(cols)
	}
	tp.infer(cols)
}

func (tp *TrivialPredictor) learn(activeColumns []int) {
	// Running average of bottom up density
	density := float64(len(activeColumns)) / float64(tp.NumberOfColumns)
	tp.averageDensity = 0.95*tp.averageDensity + 0.05*density

	for _, val := range activeColumns {
		tp.columnCount[val]++
	}
}

func (tp *TrivialPredictor) infer(activeColumns []int) {
	numColsToPredict := int(0.5 + tp.averageDensity*float64(tp.NumberOfColumns))

	for _, method := range tp.Methods {
		var predictedCols []int

		switch method {
		case PredictRandom:
			all := make([]int, tp.NumberOfColumns)
			for i := range all {
				all[i] = i
			}
			predictedCols = tp.rng.Sample(all, numColsToPredict)
		case PredictZeroth:
			predictedCols = tp.mostFrequent(numColsToPredict)
		case PredictLast:
			predictedCols = append([]int(nil), activeColumns...)
		case PredictAll:
			predictedCols = make([]int, tp.NumberOfColumns)
			for i := range predictedCols {
				predictedCols[i] = i
			}
		case PredictLots:
			predictedCols = tp.mostFrequent(mathutil.Min(2*numColsToPredict, tp.NumberOfColumns))
		default:
			panic("prediction method not implemented")
		}

		st := tp.state[method]
		for i := range st.confidence {
			st.confidence[i] = 0
		}
		for _, val := range predictedCols {
			st.confidence[val] = 1.0
		}
		st.predicted = predictedCols

		if tp.Verbosity > 1 {
			archivist.DebugF("Trivial prediction: %v numColsToPredict: %d %v", method, numColsToPredict, predictedCols)
		}
	}
}

//The n most frequently active columns, lowest index first on ties, sorted
func (tp *TrivialPredictor) mostFrequent(n int) []int {
	inds := make([]int, tp.NumberOfColumns)
	for i := range inds {
		inds[i] = i
	}
	sort.SliceStable(inds, func(a, b int) bool {
		return tp.columnCount[inds[a]] > tp.columnCount[inds[b]]
	})
	result := append([]int(nil), inds[:mathutil.Min(n, len(inds))]...)
	sort.Ints(result)
	return result
}

//Columns predicted for the next step by method
func (tp *TrivialPredictor) Predicted(method PredictorMethod) []int {
	st, ok := tp.state[method]
	if !ok {
		return nil
	}
	return st.predicted
}

func (tp *TrivialPredictor) Stats(method PredictorMethod) *PredictionStats {
	return tp.stats[method]
}

/*
Reset the state of all methods.
This is normally used between sequences while training. Learned column
counts and accumulated totals are kept.
*/
func (tp *TrivialPredictor) Reset() {
	for _, method := range tp.Methods {
		st := tp.state[method]
		st.predicted = nil
		for i := range st.confidence {
			st.confidence[i] = 0
		}
		tp.stats[method].Reset()
	}
}

/*
Reset the learning and inference stats. This will usually be called by
user code at the start of each inference run (for a particular data set).
*/
func (tp *TrivialPredictor) ResetStats() {
	tp.Reset()
	for _, method := range tp.Methods {
		tp.stats[method] = &PredictionStats{BurnIn: tp.BurnIn}
	}
}
