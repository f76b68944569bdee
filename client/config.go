package client

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/c2h5oh/datasize"
	htm "github.com/htm-community/streamhtm"
	"github.com/htm-community/streamhtm/encoders"
	"github.com/htm-community/streamhtm/metrics"
)

type InputConfig struct {
	//CSV file with a header row naming the fields
	Path string `toml:"path"`
	//Record limit, zero reads the whole input
	Limit int `toml:"limit"`
}

type CheckpointConfig struct {
	//Path the model state is written to, empty disables checkpoints
	Path string `toml:"path"`
	//Checkpoint every this many records, zero saves only at the end
	Every int `toml:"every"`
	//Largest state accepted when resuming
	MaxSize datasize.ByteSize `toml:"max_size"`
}

/*
 An experiment: where the records come from, how each field is encoded,
which field is predicted, the model parameters and how predictions are
scored.
*/
type ExperimentConfig struct {
	Name           string            `toml:"name"`
	Input          InputConfig       `toml:"input"`
	Fields         []encoders.Config `toml:"fields"`
	PredictedField string            `toml:"predicted_field"`
	Model          htm.ModelParams   `toml:"model"`
	Learn          bool              `toml:"learn"`
	Metrics        []string          `toml:"metrics"`
	MetricWindow   int               `toml:"metric_window"`
	Tolerance      float64           `toml:"tolerance"`
	Baselines      []string          `toml:"baselines"`
	Checkpoint     CheckpointConfig  `toml:"checkpoint"`

	//Log progress every this many records, zero logs only the summary
	LogEvery int `toml:"log_every"`
}

//Experiment config with defaults
func NewExperimentConfig() *ExperimentConfig {
	return &ExperimentConfig{
		Model:   htm.NewModelParams(),
		Learn:   true,
		Metrics: []string{"aae"},
		Checkpoint: CheckpointConfig{
			MaxSize: htm.DefaultMaxStateSize,
		},
	}
}

//Reads an experiment from a TOML file
func LoadConfig(path string) (*ExperimentConfig, error) {
	cfg := NewExperimentConfig()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("client: read config %s: %w", path, err)
	}
	return cfg, checkDecoded(md, cfg)
}

//Parses an experiment from TOML text
func ParseConfig(data string) (*ExperimentConfig, error) {
	cfg := NewExperimentConfig()
	md, err := toml.Decode(data, cfg)
	if err != nil {
		return nil, fmt.Errorf("client: parse config: %w", err)
	}
	return cfg, checkDecoded(md, cfg)
}

func checkDecoded(md toml.MetaData, cfg *ExperimentConfig) error {
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("client: unknown config keys: %s", strings.Join(keys, ", "))
	}
	return cfg.Validate()
}

//Checks the parts of the experiment the model does not validate itself
func (c *ExperimentConfig) Validate() error {
	if len(c.Fields) == 0 {
		return fmt.Errorf("client: experiment %q has no fields", c.Name)
	}
	seen := make(map[string]bool, len(c.Fields))
	for _, f := range c.Fields {
		if f.Name == "" {
			return fmt.Errorf("client: experiment %q: every field needs a name", c.Name)
		}
		if seen[f.Name] {
			return fmt.Errorf("client: experiment %q: duplicate field %q", c.Name, f.Name)
		}
		seen[f.Name] = true
	}
	if !seen[c.PredictedField] {
		return fmt.Errorf("client: experiment %q: predicted field %q is not a field", c.Name, c.PredictedField)
	}
	for _, m := range c.Metrics {
		if _, ok := metrics.Factories()[strings.ToLower(m)]; !ok {
			return fmt.Errorf("client: experiment %q: unknown metric %q", c.Name, m)
		}
	}
	for _, b := range c.Baselines {
		if _, err := htm.ParsePredictorMethod(b); err != nil {
			return fmt.Errorf("client: experiment %q: %w", c.Name, err)
		}
	}
	if c.MetricWindow < 0 || c.Tolerance < 0 || c.LogEvery < 0 || c.Checkpoint.Every < 0 || c.Input.Limit < 0 {
		return fmt.Errorf("client: experiment %q: counts and tolerances must not be negative", c.Name)
	}
	return nil
}
