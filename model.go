package htm

import (
	"errors"
	"sync/atomic"

	"github.com/c2h5oh/datasize"
	"github.com/google/uuid"
	"github.com/voodooEntity/archivist"
)

// ErrNotComputed is returned by Observe when no record has been computed yet.
var ErrNotComputed = errors.New("htm: no record computed yet")

// ErrAlreadyObserved is returned by Observe when the last computed record
// has already been learned.
var ErrAlreadyObserved = errors.New("htm: record already observed")

/*
Params for a whole model: the region surface (columns, cells, thresholds,
permanence changes, caps and seed), the input shape, the classifier and the
spatial pooler tuning.
*/
type ModelParams struct {
	InputWidth int
	//Expected active bits per input, zero accepts any count
	InputActiveBits int

	ColumnCount    int
	CellsPerColumn int
	//Fraction of columns active per step
	Sparsity            float64
	PermanenceIncrement float64
	PermanenceDecrement float64
	ConnectedPermanence float64
	ActivationThreshold int
	//Overlap a column needs before it can win
	MinOverlap            int
	MaxSynapsesPerSegment int
	MaxSegmentsPerCell    int
	Seed                  int

	MinThreshold              int
	MaxNewSynapseCount        int
	InitialPermanence         float64
	PredictedSegmentDecrement float64

	//Spatial pooler tuning, PotentialRadius zero covers the whole input
	PotentialRadius       int
	PotentialPct          float64
	SpPermanenceIncrement float64
	SpPermanenceDecrement float64
	SpConnectedPermanence float64
	DutyCyclePeriod       int
	MaxBoost              float64
	MinConnectedPerColumn int

	Steps         []int
	Alpha         float64
	ActValueAlpha float64

	//Steps after a reset excluded from the accumulated prediction stats
	BurnIn int
	//Largest serialized state SetState and LoadModel accept
	MaxStateSize datasize.ByteSize
	Verbosity    int
}

//Model params with defaults
func NewModelParams() ModelParams {
	return ModelParams{
		InputWidth:                1024,
		ColumnCount:               2048,
		CellsPerColumn:            32,
		Sparsity:                  0.02,
		PermanenceIncrement:       0.10,
		PermanenceDecrement:       0.10,
		ConnectedPermanence:       0.5,
		ActivationThreshold:       13,
		MinOverlap:                1,
		MaxSynapsesPerSegment:     255,
		MaxSegmentsPerCell:        255,
		Seed:                      42,
		MinThreshold:              10,
		MaxNewSynapseCount:        20,
		InitialPermanence:         0.21,
		PredictedSegmentDecrement: 0.004,
		PotentialPct:              0.85,
		SpPermanenceIncrement:     0.04,
		SpPermanenceDecrement:     0.005,
		SpConnectedPermanence:     0.1,
		DutyCyclePeriod:           1000,
		MaxBoost:                  1.0,
		Steps:                     []int{1},
		Alpha:                     0.1,
		ActValueAlpha:             0.3,
		MaxStateSize:              datasize.GB,
	}
}

//Validate returns a *ConfigError describing the first invalid field
func (p ModelParams) Validate() error {
	if p.InputWidth <= 0 {
		return configErr("InputWidth", "must be positive, got %d", p.InputWidth)
	}
	if p.InputActiveBits < 0 || p.InputActiveBits > p.InputWidth {
		return configErr("InputActiveBits", "must be in [0,%d], got %d", p.InputWidth, p.InputActiveBits)
	}
	if p.ColumnCount <= 0 {
		return configErr("ColumnCount", "must be positive, got %d", p.ColumnCount)
	}
	if p.CellsPerColumn <= 0 {
		return configErr("CellsPerColumn", "must be positive, got %d", p.CellsPerColumn)
	}
	if p.Sparsity <= 0 || p.Sparsity > 1 {
		return configErr("Sparsity", "must be in (0,1], got %v", p.Sparsity)
	}
	if p.ActivationThreshold <= 0 {
		return configErr("ActivationThreshold", "must be positive, got %d", p.ActivationThreshold)
	}
	if p.MinOverlap <= 0 {
		return configErr("MinOverlap", "must be positive, got %d", p.MinOverlap)
	}
	if p.MaxStateSize == 0 {
		return configErr("MaxStateSize", "must be positive, got %v", p.MaxStateSize)
	}
	if p.BurnIn < 0 {
		return configErr("BurnIn", "must not be negative, got %d", p.BurnIn)
	}
	if err := p.spParams().Validate(); err != nil {
		return err
	}
	if err := p.tmParams().Validate(); err != nil {
		return err
	}
	return p.classifierParams().Validate()
}

func (p ModelParams) spParams() SpParams {
	sp := NewSpParams()
	sp.InputDimensions = []int{p.InputWidth}
	sp.ColumnDimensions = []int{p.ColumnCount}
	sp.PotentialRadius = p.PotentialRadius
	if sp.PotentialRadius == 0 {
		sp.PotentialRadius = p.InputWidth
	}
	sp.PotentialPct = p.PotentialPct
	sp.GlobalInhibition = true
	sp.LocalAreaDensity = p.Sparsity
	sp.StimulusThreshold = p.MinOverlap
	sp.SynPermActiveInc = p.SpPermanenceIncrement
	sp.SynPermInactiveDec = p.SpPermanenceDecrement
	sp.SynPermConnected = p.SpConnectedPermanence
	sp.DutyCyclePeriod = p.DutyCyclePeriod
	sp.MaxBoost = p.MaxBoost
	sp.MinConnectedPerColumn = p.MinConnectedPerColumn
	sp.Seed = p.Seed
	sp.SpVerbosity = p.Verbosity
	return sp
}

func (p ModelParams) tmParams() TemporalMemoryParams {
	return TemporalMemoryParams{
		ColumnDimensions:          []int{p.ColumnCount},
		CellsPerColumn:            p.CellsPerColumn,
		ActivationThreshold:       p.ActivationThreshold,
		InitialPermanence:         p.InitialPermanence,
		ConnectedPermanence:       p.ConnectedPermanence,
		MinThreshold:              p.MinThreshold,
		MaxNewSynapseCount:        p.MaxNewSynapseCount,
		PermanenceIncrement:       p.PermanenceIncrement,
		PermanenceDecrement:       p.PermanenceDecrement,
		PredictedSegmentDecrement: p.PredictedSegmentDecrement,
		MaxSegmentsPerCell:        p.MaxSegmentsPerCell,
		MaxSynapsesPerSegment:     p.MaxSynapsesPerSegment,
		Seed:                      p.Seed,
		Verbosity:                 p.Verbosity,
	}
}

func (p ModelParams) classifierParams() ClassifierParams {
	return ClassifierParams{
		Steps:         p.Steps,
		Alpha:         p.Alpha,
		ActValueAlpha: p.ActValueAlpha,
		NumInputs:     p.ColumnCount * p.CellsPerColumn,
		Verbosity:     p.Verbosity,
	}
}

//Output of one model step. Index lists are sorted.
type ComputeResult struct {
	RecordNum       int
	ActiveColumns   []int
	ActiveCells     []int
	WinnerCells     []int
	PredictiveCells []int
	Anomaly         float64
}

type ModelStats struct {
	ID         uuid.UUID
	RecordNum  int
	NumBuckets int
	Prediction PredictionStats
	Segments   SegmentStats
}

/*
 Model chains a spatial pooler, a temporal memory and a classifier. A model
is owned by one goroutine: Compute panics when called concurrently on the
same instance.
*/
type Model struct {
	ModelParams
	ID uuid.UUID

	sp         *SpatialPooler
	tm         *TemporalMemory
	classifier *Classifier
	stats      PredictionStats

	//record number the next Compute gets
	recordNum int
	//cells active on the last computed record
	lastActiveCells []int
	computed        bool
	//the classifier learned the last computed record
	observed bool

	prevPredictedColumns []int
	prevColConfidence    []float64

	busy int32
}

//Creates a model, returning a *ConfigError for invalid params
func NewModel(params ModelParams) (*Model, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	params.Steps = append([]int(nil), params.Steps...)

	m := &Model{ModelParams: params, ID: uuid.New()}
	var err error
	if m.sp, err = NewSpatialPooler(params.spParams()); err != nil {
		return nil, err
	}
	if m.tm, err = NewTemporalMemory(params.tmParams()); err != nil {
		return nil, err
	}
	if m.classifier, err = NewClassifier(params.classifierParams()); err != nil {
		return nil, err
	}
	m.stats.BurnIn = params.BurnIn

	if m.Verbosity > 0 {
		archivist.Info("created model", m.ID.String())
	}
	return m, nil
}

func (m *Model) SpatialPooler() *SpatialPooler {
	return m.sp
}

func (m *Model) TemporalMemory() *TemporalMemory {
	return m.tm
}

func (m *Model) Classifier() *Classifier {
	return m.classifier
}

func (m *Model) acquire() {
	if !atomic.CompareAndSwapInt32(&m.busy, 0, 1) {
		panic("htm: concurrent use of one model instance")
	}
}

func (m *Model) release() {
	atomic.StoreInt32(&m.busy, 0)
}

/*
Feeds one input through the spatial pooler and temporal memory. An input
whose width or active bit count does not match the params fails with an
*InputShapeError and leaves the model untouched.
*/
func (m *Model) Compute(input SDR, learn bool) (*ComputeResult, error) {
	m.acquire()
	defer m.release()

	if err := input.checkShape(m.InputWidth, m.InputActiveBits); err != nil {
		return nil, err
	}

	activeColumns, err := m.sp.Compute(input, learn)
	if err != nil {
		return nil, err
	}
	out := m.tm.Compute(activeColumns, learn)

	if m.prevColConfidence == nil {
		m.prevColConfidence = make([]float64, m.ColumnCount)
	}
	m.stats.update(activeColumns, m.prevPredictedColumns, m.prevColConfidence)
	m.prevPredictedColumns = m.tm.PredictedColumns()
	m.prevColConfidence = m.tm.ColumnConfidence()

	result := &ComputeResult{
		RecordNum:       m.recordNum,
		ActiveColumns:   activeColumns,
		ActiveCells:     out.ActiveCells,
		WinnerCells:     out.WinnerCells,
		PredictiveCells: out.PredictiveCells,
		Anomaly:         out.Anomaly,
	}
	m.lastActiveCells = out.ActiveCells
	m.computed = true
	m.observed = false
	m.recordNum++
	return result, nil
}

/*
Tells the classifier which bucket and value the last computed record
belonged to. Without learn this is a no-op. Each record is learned at
most once, a second learning call fails with ErrAlreadyObserved.
*/
func (m *Model) Observe(bucketIdx int, actValue float64, learn bool) error {
	m.acquire()
	defer m.release()

	if !m.computed {
		return ErrNotComputed
	}
	if !learn {
		return nil
	}
	if m.observed {
		return ErrAlreadyObserved
	}
	if err := m.classifier.Learn(m.recordNum-1, m.lastActiveCells, bucketIdx, actValue); err != nil {
		return err
	}
	m.observed = true
	return nil
}

/*
Predicts bucket distributions for the step offsets from the cells active on
the last record. nil steps means every configured offset.
*/
func (m *Model) Predict(steps []int) (map[int]*Distribution, error) {
	m.acquire()
	defer m.release()

	if steps == nil {
		steps = m.Steps
	}
	return m.classifier.Infer(m.lastActiveCells, steps)
}

//Marks a sequence break, learned state is kept
func (m *Model) Reset() {
	m.acquire()
	defer m.release()

	m.tm.Reset()
	m.classifier.Reset()
	m.stats.Reset()
	m.lastActiveCells = nil
	m.prevPredictedColumns = nil
	m.prevColConfidence = nil
}

func (m *Model) Stats() ModelStats {
	return ModelStats{
		ID:         m.ID,
		RecordNum:  m.recordNum,
		NumBuckets: m.classifier.NumBuckets(),
		Prediction: m.stats,
		Segments:   m.tm.CalcSegmentStats(true),
	}
}
