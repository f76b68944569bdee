package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/c2h5oh/datasize"
	"github.com/google/uuid"
	htm "github.com/htm-community/streamhtm"
	"github.com/htm-community/streamhtm/encoders"
	"github.com/htm-community/streamhtm/metrics"
	"github.com/voodooEntity/archivist"
)

//Outcome of one record
type StepResult struct {
	RecordNum   int
	Anomaly     float64
	BucketIdx   int
	Actual      float64
	Predictions map[int]*htm.Distribution
	//Running metric aggregates keyed by ScoreKey
	Scores map[string]float64
}

type Summary struct {
	Experiment  string
	RunID       uuid.UUID
	Records     int
	MeanAnomaly float64
	Scores      map[string]float64
	//Column prediction score of the model and of each baseline
	PredictionScore float64
	Baselines       map[string]float64
	CheckpointSize  datasize.ByteSize
	//Stopped by its context before the input ran out
	Halted bool
}

//Key of a metric's score for a prediction step
func ScoreKey(metric string, step int) string {
	return fmt.Sprintf("%s:%d", strings.ToLower(metric), step)
}

/*
 Drives one model through an experiment: read, encode, compute, observe,
predict and score. A runner and its model belong to one goroutine.
*/
type Runner struct {
	Config *ExperimentConfig
	RunID  uuid.UUID

	model     *htm.Model
	encoder   *encoders.MultiEncoder
	predicted encoders.Encoder
	scorers   map[int][]metrics.Metric
	baseline  *htm.TrivialPredictor
	//predictions made on the most recent records, oldest first
	history        []map[int]*htm.Distribution
	maxStep        int
	records        int
	stepped        int
	anomalySum     float64
	checkpointSize datasize.ByteSize
}

func NewRunner(cfg *ExperimentConfig) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	fields := make([]encoders.Field, 0, len(cfg.Fields))
	fixedActive := true
	for _, fc := range cfg.Fields {
		enc, err := encoders.New(fc)
		if err != nil {
			return nil, fmt.Errorf("client: field %q: %w", fc.Name, err)
		}
		// hashed encoders may collide and set fewer bits
		if _, ok := enc.(*encoders.CoordinateEncoder); ok {
			fixedActive = false
		}
		fields = append(fields, encoders.Field{Name: fc.Name, Encoder: enc})
	}
	multi, err := encoders.NewMultiEncoder(fields...)
	if err != nil {
		return nil, fmt.Errorf("client: %w", err)
	}
	predicted, _, _ := multi.Field(cfg.PredictedField)

	params := cfg.Model
	params.InputWidth = multi.Width()
	params.InputActiveBits = 0
	if fixedActive {
		params.InputActiveBits = multi.ActiveBits()
	}
	params.MaxStateSize = cfg.Checkpoint.MaxSize
	model, err := htm.NewModel(params)
	if err != nil {
		return nil, err
	}

	r := &Runner{
		Config:    cfg,
		RunID:     uuid.New(),
		model:     model,
		encoder:   multi,
		predicted: predicted,
		scorers:   make(map[int][]metrics.Metric, len(params.Steps)),
	}

	opts := metrics.Options{Window: cfg.MetricWindow, Tolerance: cfg.Tolerance}
	for _, step := range params.Steps {
		if step > r.maxStep {
			r.maxStep = step
		}
		for _, name := range cfg.Metrics {
			m, err := metrics.New(name, opts)
			if err != nil {
				return nil, fmt.Errorf("client: %w", err)
			}
			r.scorers[step] = append(r.scorers[step], m)
		}
	}

	if len(cfg.Baselines) > 0 {
		methods := make([]htm.PredictorMethod, len(cfg.Baselines))
		for i, name := range cfg.Baselines {
			methods[i], _ = htm.ParsePredictorMethod(name)
		}
		r.baseline, err = htm.NewTrivialPredictor(params.ColumnCount, methods, params.BurnIn, int64(params.Seed))
		if err != nil {
			return nil, err
		}
	}

	archivist.Info("Created runner", cfg.Name, r.RunID.String())
	return r, nil
}

func (r *Runner) Model() *htm.Model {
	return r.model
}

//Numeric value the classifier learns for a predicted field value
func (r *Runner) actualValue(raw interface{}, bucketIdx int) float64 {
	if _, ok := r.predicted.(*encoders.CategoryEncoder); ok {
		return float64(bucketIdx)
	}
	v, err := encoders.ParseFloat(raw)
	if err != nil {
		return float64(bucketIdx)
	}
	return v
}

//Runs one record through the model
func (r *Runner) Step(rec Record) (*StepResult, error) {
	learn := r.Config.Learn

	dense, err := r.encoder.Encode(map[string]interface{}(rec))
	if err != nil {
		return nil, err
	}
	raw := rec[r.Config.PredictedField]
	bucketIdx, err := r.predicted.BucketIndex(raw)
	if err != nil {
		return nil, fmt.Errorf("predicted field %q: %w", r.Config.PredictedField, err)
	}
	actual := r.actualValue(raw, bucketIdx)

	res, err := r.model.Compute(htm.NewSDRFromDense(dense), learn)
	if err != nil {
		return nil, err
	}
	if err := r.model.Observe(bucketIdx, actual, learn); err != nil {
		return nil, err
	}
	predictions, err := r.model.Predict(nil)
	if err != nil {
		return nil, err
	}

	r.history = append(r.history, predictions)
	if len(r.history) > r.maxStep+1 {
		r.history = r.history[len(r.history)-r.maxStep-1:]
	}

	// score the predictions that targeted this record, offset 0 included
	scores := make(map[string]float64)
	for step, ms := range r.scorers {
		idx := len(r.history) - 1 - step
		if idx < 0 {
			continue
		}
		dist := r.history[idx][step]
		for _, m := range ms {
			scores[ScoreKey(m.Name(), step)] = m.Score(dist, actual)
		}
	}
	if r.baseline != nil {
		r.baseline.Compute(res.ActiveColumns, learn)
	}
	r.records++
	r.stepped++
	r.anomalySum += res.Anomaly

	return &StepResult{
		RecordNum:   res.RecordNum,
		Anomaly:     res.Anomaly,
		BucketIdx:   bucketIdx,
		Actual:      actual,
		Predictions: predictions,
		Scores:      scores,
	}, nil
}

/*
 Steps through src until it is exhausted or ctx is done, checking ctx
between records. A halted run returns its summary along with ctx's error.
*/
func (r *Runner) Run(ctx context.Context, src RecordSource) (*Summary, error) {
	cfg := r.Config
	if cfg.Input.Limit > 0 {
		src = &limitSource{src: src, n: cfg.Input.Limit}
	}

	for {
		if err := ctx.Err(); err != nil {
			summary := r.Summary()
			summary.Halted = true
			archivist.Info("Experiment halted", cfg.Name, r.records)
			return summary, err
		}

		rec, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		step, err := r.Step(rec)
		if err != nil {
			return nil, fmt.Errorf("client: experiment %q record %d: %w", cfg.Name, r.records, err)
		}

		if cfg.LogEvery > 0 && r.records%cfg.LogEvery == 0 {
			archivist.DebugF("experiment %s record %d anomaly %.3f scores %v",
				cfg.Name, step.RecordNum, step.Anomaly, step.Scores)
		}
		if cfg.Checkpoint.Path != "" && cfg.Checkpoint.Every > 0 && r.records%cfg.Checkpoint.Every == 0 {
			if err := r.SaveCheckpoint(cfg.Checkpoint.Path); err != nil {
				return nil, err
			}
		}
	}

	if cfg.Checkpoint.Path != "" {
		if err := r.SaveCheckpoint(cfg.Checkpoint.Path); err != nil {
			return nil, err
		}
	}

	summary := r.Summary()
	archivist.Info("Experiment finished", cfg.Name, summary.Records, summary.Scores)
	return summary, nil
}

func (r *Runner) Summary() *Summary {
	s := &Summary{
		Experiment:     r.Config.Name,
		RunID:          r.RunID,
		Records:        r.records,
		Scores:         make(map[string]float64),
		CheckpointSize: r.checkpointSize,
	}
	if r.stepped > 0 {
		s.MeanAnomaly = r.anomalySum / float64(r.stepped)
	}
	for step, ms := range r.scorers {
		for _, m := range ms {
			s.Scores[ScoreKey(m.Name(), step)] = m.Value()
		}
	}
	stats := r.model.Stats()
	s.PredictionScore = stats.Prediction.AvgPredictionScore()
	if r.baseline != nil {
		s.Baselines = make(map[string]float64, len(r.baseline.Methods))
		for _, method := range r.baseline.Methods {
			s.Baselines[method.String()] = r.baseline.Stats(method).AvgPredictionScore()
		}
	}
	return s
}

//Sidecar written next to a checkpoint
type checkpointMeta struct {
	RunID        string              `toml:"run_id"`
	Experiment   string              `toml:"experiment"`
	Records      int                 `toml:"records"`
	Vocabularies map[string][]string `toml:"vocabularies"`
}

func metaPath(path string) string {
	return path + ".toml"
}

/*
 Writes the model state to path and the run metadata, including category
vocabularies, to path.toml.
*/
func (r *Runner) SaveCheckpoint(path string) error {
	state, err := r.model.State()
	if err != nil {
		return fmt.Errorf("client: checkpoint: %w", err)
	}
	if err := os.WriteFile(path, state, 0644); err != nil {
		return fmt.Errorf("client: checkpoint: %w", err)
	}

	meta := checkpointMeta{
		RunID:        r.RunID.String(),
		Experiment:   r.Config.Name,
		Records:      r.records,
		Vocabularies: make(map[string][]string),
	}
	for _, f := range r.encoder.Fields() {
		if ce, ok := f.Encoder.(*encoders.CategoryEncoder); ok {
			meta.Vocabularies[f.Name] = ce.Vocabulary()
		}
	}
	mf, err := os.Create(metaPath(path))
	if err != nil {
		return fmt.Errorf("client: checkpoint: %w", err)
	}
	defer mf.Close()
	if err := toml.NewEncoder(mf).Encode(meta); err != nil {
		return fmt.Errorf("client: checkpoint: %w", err)
	}

	r.checkpointSize = datasize.ByteSize(len(state))
	archivist.Info("Saved checkpoint", path, r.checkpointSize.HumanReadable())
	return nil
}

/*
 Restores a checkpoint written by SaveCheckpoint. The runner must not have
stepped yet, its encoders must match the ones that wrote the checkpoint.
*/
func (r *Runner) LoadCheckpoint(path string) error {
	if r.stepped > 0 {
		return fmt.Errorf("client: checkpoint %s: runner already stepped", path)
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("client: checkpoint: %w", err)
	}
	if limit := r.Config.Checkpoint.MaxSize; uint64(info.Size()) > limit.Bytes() {
		return fmt.Errorf("client: checkpoint %s is %s, limit %s", path,
			datasize.ByteSize(info.Size()).HumanReadable(), limit.HumanReadable())
	}
	state, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("client: checkpoint: %w", err)
	}

	var meta checkpointMeta
	if _, err := toml.DecodeFile(metaPath(path), &meta); err != nil {
		return fmt.Errorf("client: checkpoint metadata: %w", err)
	}
	runID, err := uuid.Parse(meta.RunID)
	if err != nil {
		return fmt.Errorf("client: checkpoint metadata: %w", err)
	}

	if err := r.model.SetState(state); err != nil {
		return fmt.Errorf("client: checkpoint %s: %w", path, err)
	}

	names := make([]string, 0, len(meta.Vocabularies))
	for name := range meta.Vocabularies {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		enc, _, ok := r.encoder.Field(name)
		ce, isCategory := enc.(*encoders.CategoryEncoder)
		if !ok || !isCategory {
			return fmt.Errorf("client: checkpoint vocabulary for unknown category field %q", name)
		}
		for i, category := range meta.Vocabularies[name] {
			if idx, _ := ce.BucketIndex(category); idx != i+1 {
				return fmt.Errorf("client: checkpoint vocabulary of %q does not match its encoder", name)
			}
		}
	}

	// predictions made before the checkpoint are not restored
	r.history = nil
	r.RunID = runID
	r.records = meta.Records
	r.checkpointSize = datasize.ByteSize(len(state))
	archivist.Info("Loaded checkpoint", path, r.checkpointSize.HumanReadable(), meta.Records)
	return nil
}
