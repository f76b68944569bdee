package htm

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/c2h5oh/datasize"
	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"github.com/skelterjohn/go.matrix"
)

const (
	stateMagic   uint32 = 0x534d5448 // "HTMS"
	stateVersion uint16 = 1
	headerSize          = 4 + 2 + 8
)

//Largest state LoadModel accepts
var DefaultMaxStateSize = datasize.GB

/*
Serializes the whole model: params, spatial pooler, temporal memory arena
and sequence state, classifier weights and history. The layout is a
little-endian body behind a magic and version header, compressed with zstd.
*/
func (m *Model) State() ([]byte, error) {
	m.acquire()
	defer m.release()

	enc := &stateEncoder{}
	m.encode(enc)
	if enc.err != nil {
		return nil, enc.err
	}
	body := enc.buf.Bytes()

	zw, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	defer zw.Close()

	out := bytes.NewBuffer(make([]byte, 0, headerSize+len(body)/4))
	binary.Write(out, binary.LittleEndian, stateMagic)
	binary.Write(out, binary.LittleEndian, stateVersion)
	binary.Write(out, binary.LittleEndian, uint64(len(body)))
	return zw.EncodeAll(body, out.Bytes()), nil
}

//Replaces the model with a serialized one, accepting states up to MaxStateSize
func (m *Model) SetState(data []byte) error {
	loaded, err := loadModel(data, m.MaxStateSize)
	if err != nil {
		return err
	}

	m.acquire()
	defer m.release()
	m.ModelParams = loaded.ModelParams
	m.ID = loaded.ID
	m.sp = loaded.sp
	m.tm = loaded.tm
	m.classifier = loaded.classifier
	m.stats = loaded.stats
	m.recordNum = loaded.recordNum
	m.lastActiveCells = loaded.lastActiveCells
	m.computed = loaded.computed
	m.prevPredictedColumns = loaded.prevPredictedColumns
	m.prevColConfidence = loaded.prevColConfidence
	return nil
}

//Creates a model from a serialized state
func LoadModel(data []byte) (*Model, error) {
	return loadModel(data, DefaultMaxStateSize)
}

func loadModel(data []byte, limit datasize.ByteSize) (m *Model, err error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("%w: short header", ErrStateCorrupt)
	}
	r := bytes.NewReader(data)
	var magic uint32
	var version uint16
	var bodyLen uint64
	binary.Read(r, binary.LittleEndian, &magic)
	binary.Read(r, binary.LittleEndian, &version)
	binary.Read(r, binary.LittleEndian, &bodyLen)
	if magic != stateMagic {
		return nil, fmt.Errorf("%w: bad magic %x", ErrStateCorrupt, magic)
	}
	if version != stateVersion {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrStateVersion, version, stateVersion)
	}
	if bodyLen > limit.Bytes() {
		return nil, fmt.Errorf("%w: state of %s exceeds limit %s", ErrStateCorrupt,
			datasize.ByteSize(bodyLen).HumanReadable(), limit.HumanReadable())
	}

	zr, err := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(limit.Bytes()))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	body, err := zr.DecodeAll(data[headerSize:], make([]byte, 0, bodyLen))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStateCorrupt, err)
	}
	if uint64(len(body)) != bodyLen {
		return nil, fmt.Errorf("%w: body is %d bytes, header says %d", ErrStateCorrupt, len(body), bodyLen)
	}

	defer func() {
		if r := recover(); r != nil {
			m = nil
			err = fmt.Errorf("%w: %v", ErrStateCorrupt, r)
		}
	}()

	dec := &stateDecoder{r: bytes.NewReader(body)}
	params := decodeParams(dec)
	if dec.err != nil {
		return nil, dec.err
	}
	m, err = NewModel(params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStateCorrupt, err)
	}
	m.decode(dec)
	if dec.err != nil {
		return nil, dec.err
	}
	if dec.r.Len() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrStateCorrupt, dec.r.Len())
	}
	m.tm.Connections.checkInvariants()
	return m, nil
}

func (m *Model) encode(e *stateEncoder) {
	encodeParams(e, m.ModelParams)
	e.bytes(m.ID[:])
	e.int(m.recordNum)
	e.bool(m.computed)
	e.bool(m.observed)
	e.ints(m.lastActiveCells)
	e.ints(m.prevPredictedColumns)
	e.floats(m.prevColConfidence)
	encodePredictionStats(e, &m.stats)
	m.sp.encode(e)
	m.tm.encode(e)
	m.classifier.encode(e)
}

func (m *Model) decode(d *stateDecoder) {
	id := d.bytes()
	if d.err == nil {
		parsed, err := uuid.FromBytes(id)
		if err != nil {
			d.fail("model id: %v", err)
			return
		}
		m.ID = parsed
	}
	m.recordNum = d.int()
	m.computed = d.bool()
	m.observed = d.bool()
	m.lastActiveCells = d.ints()
	m.prevPredictedColumns = d.ints()
	m.prevColConfidence = d.floats()
	decodePredictionStats(d, &m.stats)
	m.sp.decode(d)
	m.tm.decode(d)
	m.classifier.decode(d)
}

func encodeParams(e *stateEncoder, p ModelParams) {
	e.int(p.InputWidth)
	e.int(p.InputActiveBits)
	e.int(p.ColumnCount)
	e.int(p.CellsPerColumn)
	e.float(p.Sparsity)
	e.float(p.PermanenceIncrement)
	e.float(p.PermanenceDecrement)
	e.float(p.ConnectedPermanence)
	e.int(p.ActivationThreshold)
	e.int(p.MinOverlap)
	e.int(p.MaxSynapsesPerSegment)
	e.int(p.MaxSegmentsPerCell)
	e.int(p.Seed)
	e.int(p.MinThreshold)
	e.int(p.MaxNewSynapseCount)
	e.float(p.InitialPermanence)
	e.float(p.PredictedSegmentDecrement)
	e.int(p.PotentialRadius)
	e.float(p.PotentialPct)
	e.float(p.SpPermanenceIncrement)
	e.float(p.SpPermanenceDecrement)
	e.float(p.SpConnectedPermanence)
	e.int(p.DutyCyclePeriod)
	e.float(p.MaxBoost)
	e.int(p.MinConnectedPerColumn)
	e.ints(p.Steps)
	e.float(p.Alpha)
	e.float(p.ActValueAlpha)
	e.int(p.BurnIn)
	e.uint(uint64(p.MaxStateSize))
	e.int(p.Verbosity)
}

func decodeParams(d *stateDecoder) ModelParams {
	var p ModelParams
	p.InputWidth = d.int()
	p.InputActiveBits = d.int()
	p.ColumnCount = d.int()
	p.CellsPerColumn = d.int()
	p.Sparsity = d.float()
	p.PermanenceIncrement = d.float()
	p.PermanenceDecrement = d.float()
	p.ConnectedPermanence = d.float()
	p.ActivationThreshold = d.int()
	p.MinOverlap = d.int()
	p.MaxSynapsesPerSegment = d.int()
	p.MaxSegmentsPerCell = d.int()
	p.Seed = d.int()
	p.MinThreshold = d.int()
	p.MaxNewSynapseCount = d.int()
	p.InitialPermanence = d.float()
	p.PredictedSegmentDecrement = d.float()
	p.PotentialRadius = d.int()
	p.PotentialPct = d.float()
	p.SpPermanenceIncrement = d.float()
	p.SpPermanenceDecrement = d.float()
	p.SpConnectedPermanence = d.float()
	p.DutyCyclePeriod = d.int()
	p.MaxBoost = d.float()
	p.MinConnectedPerColumn = d.int()
	p.Steps = d.ints()
	p.Alpha = d.float()
	p.ActValueAlpha = d.float()
	p.BurnIn = d.int()
	p.MaxStateSize = datasize.ByteSize(d.uint())
	p.Verbosity = d.int()
	return p
}

func encodePredictionStats(e *stateEncoder, s *PredictionStats) {
	e.int(s.NInfersSinceReset)
	e.int(s.NPredictions)
	e.floats([]float64{
		s.PredictionScoreTotal, s.FalseNegativeScoreTotal, s.FalsePositiveScoreTotal,
		s.PctExtraTotal, s.PctMissingTotal, s.TotalMissing, s.TotalExtra,
		s.CurPredictionScore, s.CurFalseNegativeScore, s.CurFalsePositiveScore,
		s.CurMissing, s.CurExtra,
	})
}

func decodePredictionStats(d *stateDecoder, s *PredictionStats) {
	s.NInfersSinceReset = d.int()
	s.NPredictions = d.int()
	v := d.floats()
	if d.err != nil {
		return
	}
	if len(v) != 12 {
		d.fail("prediction stats has %d values", len(v))
		return
	}
	s.PredictionScoreTotal, s.FalseNegativeScoreTotal, s.FalsePositiveScoreTotal = v[0], v[1], v[2]
	s.PctExtraTotal, s.PctMissingTotal, s.TotalMissing, s.TotalExtra = v[3], v[4], v[5], v[6]
	s.CurPredictionScore, s.CurFalseNegativeScore, s.CurFalsePositiveScore = v[7], v[8], v[9]
	s.CurMissing, s.CurExtra = v[10], v[11]
}

func (sp *SpatialPooler) encode(e *stateEncoder) {
	e.int(sp.iterationNum)
	e.int(sp.iterationLearnNum)
	e.int(sp.inhibitionRadius)
	e.uint(sp.rng.State())
	for i := 0; i < sp.numColumns; i++ {
		potential := sp.potentialPools.GetRowIndices(i)
		perms := make([]float64, len(potential))
		for k, j := range potential {
			perms[k] = sp.permanences.Get(i, j)
		}
		e.ints(potential)
		e.floats(perms)
	}
	e.floats(sp.overlapDutyCycles)
	e.floats(sp.activeDutyCycles)
	e.floats(sp.minOverlapDutyCycles)
	e.floats(sp.minActiveDutyCycles)
	e.floats(sp.boostFactors)
}

func (sp *SpatialPooler) decode(d *stateDecoder) {
	sp.iterationNum = d.int()
	sp.iterationLearnNum = d.int()
	sp.inhibitionRadius = d.int()
	sp.rng.SetState(d.uint())
	sp.neighbors = nil

	sp.permanences = matrix.Zeros(sp.numColumns, sp.numInputs)
	for i := 0; i < sp.numColumns && d.err == nil; i++ {
		potential := d.ints()
		perms := d.floats()
		if d.err != nil {
			return
		}
		if len(potential) != len(perms) {
			d.fail("column %d has %d potential inputs and %d permanences", i, len(potential), len(perms))
			return
		}
		if !sort.IntsAreSorted(potential) {
			d.fail("column %d potential pool not sorted", i)
			return
		}
		sp.potentialPools.ReplaceRowByIndices(i, potential)
		perm := make([]float64, sp.numInputs)
		for k, j := range potential {
			perm[j] = perms[k]
		}
		sp.updatePermanencesForColumn(perm, i, false)
	}

	sp.overlapDutyCycles = d.floatsOfLen(sp.numColumns)
	sp.activeDutyCycles = d.floatsOfLen(sp.numColumns)
	sp.minOverlapDutyCycles = d.floatsOfLen(sp.numColumns)
	sp.minActiveDutyCycles = d.floatsOfLen(sp.numColumns)
	sp.boostFactors = d.floatsOfLen(sp.numColumns)
}

func (tm *TemporalMemory) encode(e *stateEncoder) {
	e.int(tm.iteration)
	e.uint(tm.rng.State())

	c := tm.Connections
	e.int(len(c.segments))
	for _, seg := range c.segments {
		e.int(seg.Cell)
		e.int(seg.LastUsedIteration)
		e.uint(seg.Ordinal)
		e.ints(seg.Synapses)
	}
	e.int(len(c.synapses))
	for _, syn := range c.synapses {
		e.int(syn.Segment)
		e.int(syn.Presynaptic)
		e.float(syn.Permanence)
	}
	e.ints(c.freeSegments)
	e.ints(c.freeSynapses)
	for cell := range c.segmentsForCell {
		e.ints(c.segmentsForCell[cell])
		e.ints(c.synapsesForPresynapticCell[cell])
	}
	e.int(c.numSegments)
	e.int(c.numSynapses)
	e.uint(c.nextOrdinal)
	e.int(c.iteration)

	e.ints(tm.activeCells)
	e.ints(tm.winnerCells)
	e.ints(tm.activeSegments)
	e.ints(tm.matchingSegments)
	e.ints(tm.numActivePotential)
	e.ints(tm.PredictiveCells())
}

func (tm *TemporalMemory) decode(d *stateDecoder) {
	tm.iteration = d.int()
	tm.rng.SetState(d.uint())

	c := tm.Connections
	numCells := c.NumberOfCells()

	n := d.count(8 * 4)
	c.segments = make([]Segment, n)
	for i := range c.segments {
		seg := &c.segments[i]
		seg.Cell = d.index(-1, numCells)
		seg.LastUsedIteration = d.int()
		seg.Ordinal = d.uint()
		seg.Synapses = d.ints()
	}
	n = d.count(8 * 3)
	c.synapses = make([]Synapse, n)
	for i := range c.synapses {
		syn := &c.synapses[i]
		syn.Segment = d.index(-1, len(c.segments))
		syn.Presynaptic = d.index(-1, numCells)
		syn.Permanence = d.float()
		if !syn.destroyed() {
			checkPermanence(syn.Permanence)
		}
	}
	c.freeSegments = d.ints()
	c.freeSynapses = d.ints()
	for cell := 0; cell < numCells && d.err == nil; cell++ {
		c.segmentsForCell[cell] = d.ints()
		c.synapsesForPresynapticCell[cell] = d.ints()
	}
	c.numSegments = d.int()
	c.numSynapses = d.int()
	c.nextOrdinal = d.uint()
	c.iteration = d.int()

	tm.activeCells = d.ints()
	tm.winnerCells = d.ints()
	tm.activeSegments = d.ints()
	tm.matchingSegments = d.ints()
	tm.numActivePotential = d.ints()
	tm.predictiveCells.Clear()
	for _, cell := range d.ints() {
		tm.predictiveCells.Set(cell/tm.CellsPerColumn, cell%tm.CellsPerColumn, true)
	}
	tm.updates = nil
}

func (c *Classifier) encode(e *stateEncoder) {
	e.int(c.maxBucketIdx)
	e.floats(c.actualValues)
	set := make([]int, len(c.actualValueSet))
	for i, v := range c.actualValueSet {
		if v {
			set[i] = 1
		}
	}
	e.ints(set)
	e.int(c.learnIteration)

	e.int(len(c.history))
	for _, h := range c.history {
		e.int(h.RecordNum)
		e.ints(h.Pattern)
	}

	numBuckets := c.NumBuckets()
	for _, s := range c.Steps {
		w := c.weights[s]
		var cells []int
		var values []float64
		for r := 0; r < w.Rows(); r++ {
			for b := 0; b < numBuckets; b++ {
				if v := w.Get(r, b); v != 0 {
					cells = append(cells, r*numBuckets+b)
					values = append(values, v)
				}
			}
		}
		e.ints(cells)
		e.floats(values)
	}
}

func (c *Classifier) decode(d *stateDecoder) {
	c.maxBucketIdx = d.int()
	if d.err != nil {
		return
	}
	if c.maxBucketIdx < 0 {
		d.fail("negative bucket index %d", c.maxBucketIdx)
		return
	}
	c.actualValues = d.floats()
	set := d.ints()
	if len(set) != len(c.actualValues) || len(set) > c.maxBucketIdx+1 {
		d.fail("classifier has %d values for %d buckets", len(c.actualValues), c.maxBucketIdx+1)
		return
	}
	c.actualValueSet = make([]bool, len(set))
	for i, v := range set {
		c.actualValueSet[i] = v != 0
	}
	c.learnIteration = d.int()

	n := d.count(8 * 2)
	c.history = make([]patternRecord, n)
	for i := range c.history {
		c.history[i].RecordNum = d.int()
		c.history[i].Pattern = d.ints()
	}

	numBuckets := c.maxBucketIdx + 1
	for _, s := range c.Steps {
		cells := d.ints()
		values := d.floats()
		if d.err != nil {
			return
		}
		if len(cells) != len(values) {
			d.fail("step %d has %d weights and %d values", s, len(cells), len(values))
			return
		}
		w := matrix.Zeros(c.NumInputs, numBuckets)
		for k, idx := range cells {
			if idx < 0 || idx >= c.NumInputs*numBuckets {
				d.fail("step %d weight index %d out of range", s, idx)
				return
			}
			w.Set(idx/numBuckets, idx%numBuckets, values[k])
		}
		c.weights[s] = w
	}
}

type stateEncoder struct {
	buf bytes.Buffer
	err error
}

func (e *stateEncoder) write(v interface{}) {
	if e.err == nil {
		e.err = binary.Write(&e.buf, binary.LittleEndian, v)
	}
}

func (e *stateEncoder) int(v int) {
	e.write(int64(v))
}

func (e *stateEncoder) uint(v uint64) {
	e.write(v)
}

func (e *stateEncoder) float(v float64) {
	e.write(v)
}

func (e *stateEncoder) bool(v bool) {
	e.write(v)
}

func (e *stateEncoder) bytes(v []byte) {
	e.int(len(v))
	e.write(v)
}

func (e *stateEncoder) floats(v []float64) {
	e.int(len(v))
	e.write(v)
}

func (e *stateEncoder) ints(v []int) {
	wide := make([]int64, len(v))
	for i, x := range v {
		wide[i] = int64(x)
	}
	e.int(len(v))
	e.write(wide)
}

//Reads a body written by stateEncoder. The first failure sticks and every
//later read returns zero values.
type stateDecoder struct {
	r   *bytes.Reader
	err error
}

func (d *stateDecoder) fail(format string, args ...interface{}) {
	if d.err == nil {
		d.err = fmt.Errorf("%w: %s", ErrStateCorrupt, fmt.Sprintf(format, args...))
	}
}

func (d *stateDecoder) read(v interface{}) {
	if d.err != nil {
		return
	}
	if err := binary.Read(d.r, binary.LittleEndian, v); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			d.fail("truncated body")
			return
		}
		d.fail("%v", err)
	}
}

func (d *stateDecoder) int() int {
	var v int64
	d.read(&v)
	return int(v)
}

func (d *stateDecoder) uint() uint64 {
	var v uint64
	d.read(&v)
	return v
}

func (d *stateDecoder) float() float64 {
	var v float64
	d.read(&v)
	return v
}

func (d *stateDecoder) bool() bool {
	var v bool
	d.read(&v)
	return v
}

//Reads a length prefix for items of at least itemSize bytes each
func (d *stateDecoder) count(itemSize int) int {
	n := d.int()
	if d.err != nil {
		return 0
	}
	if n < 0 || n > d.r.Len()/itemSize {
		d.fail("length %d exceeds the remaining body", n)
		return 0
	}
	return n
}

//Reads an int that must lie in [min, max)
func (d *stateDecoder) index(min, max int) int {
	v := d.int()
	if d.err == nil && (v < min || v >= max) {
		d.fail("index %d outside [%d,%d)", v, min, max)
	}
	return v
}

func (d *stateDecoder) bytes() []byte {
	n := d.count(1)
	if d.err != nil {
		return nil
	}
	v := make([]byte, n)
	d.read(v)
	return v
}

func (d *stateDecoder) ints() []int {
	n := d.count(8)
	if d.err != nil || n == 0 {
		return nil
	}
	wide := make([]int64, n)
	d.read(wide)
	v := make([]int, n)
	for i, x := range wide {
		v[i] = int(x)
	}
	return v
}

func (d *stateDecoder) floats() []float64 {
	n := d.count(8)
	if d.err != nil || n == 0 {
		return nil
	}
	v := make([]float64, n)
	d.read(v)
	for _, x := range v {
		if math.IsNaN(x) {
			d.fail("NaN in body")
			break
		}
	}
	return v
}

func (d *stateDecoder) floatsOfLen(n int) []float64 {
	v := d.floats()
	if d.err == nil && len(v) != n {
		d.fail("expected %d values, got %d", n, len(v))
	}
	return v
}
