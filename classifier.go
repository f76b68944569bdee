package htm

import (
	"fmt"
	"math"
	"sort"

	"github.com/cznic/mathutil"
	"github.com/gonum/floats"
	"github.com/skelterjohn/go.matrix"
	"github.com/voodooEntity/archivist"
)

type ClassifierParams struct {
	//Step offsets to learn and predict
	Steps []int
	//Learning rate of the weight updates
	Alpha float64
	//Weight of a new value in the per bucket moving average
	ActValueAlpha float64
	//Width of the input patterns, normally the number of cells
	NumInputs int
	Verbosity int
}

func NewClassifierParams() ClassifierParams {
	return ClassifierParams{
		Steps:         []int{1},
		Alpha:         0.1,
		ActValueAlpha: 0.3,
		NumInputs:     2048 * 32,
	}
}

//Validate returns a *ConfigError describing the first invalid field
func (p ClassifierParams) Validate() error {
	if len(p.Steps) == 0 {
		return configErr("Steps", "must not be empty")
	}
	seen := make(map[int]bool, len(p.Steps))
	for _, s := range p.Steps {
		if s < 0 {
			return configErr("Steps", "offsets must not be negative, got %v", p.Steps)
		}
		if seen[s] {
			return configErr("Steps", "duplicate offset %d", s)
		}
		seen[s] = true
	}
	if p.Alpha <= 0 || p.Alpha > 1 {
		return configErr("Alpha", "must be in (0,1], got %v", p.Alpha)
	}
	if p.ActValueAlpha <= 0 || p.ActValueAlpha > 1 {
		return configErr("ActValueAlpha", "must be in (0,1], got %v", p.ActValueAlpha)
	}
	if p.NumInputs <= 0 {
		return configErr("NumInputs", "must be positive, got %d", p.NumInputs)
	}
	return nil
}

//Probability per bucket and the value each bucket stands for
type Distribution struct {
	Probabilities []float64
	ActualValues  []float64
}

//Returns the most probable bucket and its value
func (d *Distribution) MostLikely() (int, float64) {
	if len(d.Probabilities) == 0 {
		return -1, 0
	}
	idx := floats.MaxIdx(d.Probabilities)
	return idx, d.ActualValues[idx]
}

//Returns buckets ordered by decreasing probability
func (d *Distribution) Ranked() []int {
	probs := make([]float64, len(d.Probabilities))
	for i, p := range d.Probabilities {
		probs[i] = -p
	}
	inds := make([]int, len(probs))
	floats.Argsort(probs, inds)
	return inds
}

type patternRecord struct {
	RecordNum int
	Pattern   []int
}

/*
 Classifier maps input patterns to probability distributions over buckets
for a set of future step offsets. Each offset owns a weight matrix of
inputs by buckets, trained online with a softmax error update: learning at
record t for offset k pairs the pattern seen at t-k with the bucket seen
at t.
*/
type Classifier struct {
	ClassifierParams

	weights      map[int]*matrix.DenseMatrix
	maxSteps     int
	maxBucketIdx int
	//moving average of the values seen per bucket
	actualValues []float64
	//false until a bucket has seen a value
	actualValueSet []bool
	history        []patternRecord
	learnIteration int
}

func NewClassifier(params ClassifierParams) (*Classifier, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	params.Steps = append([]int(nil), params.Steps...)
	sort.Ints(params.Steps)

	c := new(Classifier)
	c.ClassifierParams = params
	c.weights = make(map[int]*matrix.DenseMatrix, len(params.Steps))
	for _, s := range params.Steps {
		c.weights[s] = matrix.Zeros(params.NumInputs, 1)
		if s > c.maxSteps {
			c.maxSteps = s
		}
	}
	return c, nil
}

//Number of buckets seen so far, at least one
func (c *Classifier) NumBuckets() int {
	return c.maxBucketIdx + 1
}

/*
Computes the distribution over buckets for each requested step offset given
the active inputs. Asking for an offset that is not learned returns
ErrUnknownStep.
*/
func (c *Classifier) Infer(activeCells []int, steps []int) (map[int]*Distribution, error) {
	c.validatePattern(activeCells)
	result := make(map[int]*Distribution, len(steps))
	for _, s := range steps {
		w, ok := c.weights[s]
		if !ok {
			return nil, fmt.Errorf("step %d: %w", s, ErrUnknownStep)
		}
		result[s] = &Distribution{
			Probabilities: c.softmaxFor(w, activeCells),
			ActualValues:  c.bucketValues(),
		}
	}
	return result, nil
}

/*
Learns from a record: remembers its pattern, folds actValue into bucket's
average, then for every remembered pattern whose age matches an offset
moves that offset's weights toward bucketIdx.
*/
func (c *Classifier) Learn(recordNum int, activeCells []int, bucketIdx int, actValue float64) error {
	if bucketIdx < 0 {
		return fmt.Errorf("htm: bucket index %d must not be negative", bucketIdx)
	}
	if math.IsNaN(actValue) || math.IsInf(actValue, 0) {
		return fmt.Errorf("htm: actual value %v is not finite", actValue)
	}
	c.validatePattern(activeCells)
	c.learnIteration++

	c.history = append(c.history, patternRecord{recordNum, append([]int(nil), activeCells...)})
	if len(c.history) > c.maxSteps+1 {
		c.history = c.history[len(c.history)-c.maxSteps-1:]
	}

	if bucketIdx > c.maxBucketIdx {
		c.growBuckets(bucketIdx)
	}
	c.updateActualValue(bucketIdx, actValue)

	for _, h := range c.history {
		nSteps := recordNum - h.RecordNum
		w, ok := c.weights[nSteps]
		if !ok {
			continue
		}
		errs := c.softmaxFor(w, h.Pattern)
		floats.Scale(-1, errs)
		errs[bucketIdx] += 1.0
		floats.Scale(c.Alpha, errs)
		for _, cell := range h.Pattern {
			for b, e := range errs {
				w.Set(cell, b, w.Get(cell, b)+e)
			}
		}
	}

	if c.Verbosity > 1 {
		archivist.DebugF("classifier record %d bucket %d value %v buckets %d",
			recordNum, bucketIdx, actValue, c.NumBuckets())
	}
	return nil
}

//Forgets remembered patterns so no learning spans a sequence break
func (c *Classifier) Reset() {
	c.history = nil
}

/*
Makes room for bucketIdx. Weight matrices keep spare columns and double
when full, so a stream of new buckets reallocates only logarithmically often.
Columns past NumBuckets stay zero and are ignored.
*/
func (c *Classifier) growBuckets(bucketIdx int) {
	numBuckets := c.NumBuckets()
	for s, w := range c.weights {
		if bucketIdx < w.Cols() {
			continue
		}
		grown := matrix.Zeros(w.Rows(), mathutil.Max(bucketIdx+1, 2*w.Cols()))
		for r := 0; r < w.Rows(); r++ {
			for b := 0; b < numBuckets; b++ {
				if v := w.Get(r, b); v != 0 {
					grown.Set(r, b, v)
				}
			}
		}
		c.weights[s] = grown
	}
	c.maxBucketIdx = bucketIdx
}

func (c *Classifier) updateActualValue(bucketIdx int, actValue float64) {
	for len(c.actualValues) <= bucketIdx {
		c.actualValues = append(c.actualValues, 0)
		c.actualValueSet = append(c.actualValueSet, false)
	}
	if !c.actualValueSet[bucketIdx] {
		c.actualValues[bucketIdx] = actValue
		c.actualValueSet[bucketIdx] = true
		return
	}
	c.actualValues[bucketIdx] = (1.0-c.ActValueAlpha)*c.actualValues[bucketIdx] + c.ActValueAlpha*actValue
}

//Values per bucket, buckets never observed report zero
func (c *Classifier) bucketValues() []float64 {
	result := make([]float64, c.NumBuckets())
	copy(result, c.actualValues)
	return result
}

//Softmax over the summed weight rows of the active inputs
func (c *Classifier) softmaxFor(w *matrix.DenseMatrix, activeCells []int) []float64 {
	activation := make([]float64, c.NumBuckets())
	for _, cell := range activeCells {
		for b := range activation {
			activation[b] += w.Get(cell, b)
		}
	}
	floats.AddConst(-floats.LogSumExp(activation), activation)
	for b, a := range activation {
		activation[b] = math.Exp(a)
	}
	return activation
}

func (c *Classifier) validatePattern(activeCells []int) {
	for _, cell := range activeCells {
		if cell < 0 || cell >= c.NumInputs {
			panic(fmt.Sprintf("classifier input %d outside [0,%d)", cell, c.NumInputs))
		}
	}
}
