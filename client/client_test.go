package client

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/c2h5oh/datasize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voodooEntity/archivist"
)

func TestMain(m *testing.M) {
	archivist.Init("info", "stdout", "")
	os.Exit(m.Run())
}

const experimentToml = `
name = "cycle"
predicted_field = "value"
metrics = ["aae", "rmse"]
metric_window = 10
baselines = ["last", "zeroth"]
log_every = 50

[input]
path = "data.csv"
limit = 100

[model]
ColumnCount = 256
CellsPerColumn = 8
Steps = [1, 2]

[checkpoint]
path = "model.ckpt"
every = 50
max_size = "64MB"

[[fields]]
type = "scalar"
name = "value"
active_bits = 21
n = 121
min_val = 0.0
max_val = 100.0

[[fields]]
type = "date"
name = "timestamp"
time_of_day_width = 5
`

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig(experimentToml)
	require.NoError(t, err)

	assert.Equal(t, "cycle", cfg.Name)
	assert.Equal(t, "value", cfg.PredictedField)
	assert.Equal(t, []string{"aae", "rmse"}, cfg.Metrics)
	assert.Equal(t, 10, cfg.MetricWindow)
	assert.Equal(t, 100, cfg.Input.Limit)
	assert.Equal(t, 256, cfg.Model.ColumnCount)
	assert.Equal(t, 8, cfg.Model.CellsPerColumn)
	assert.Equal(t, []int{1, 2}, cfg.Model.Steps)
	// defaults survive
	assert.Equal(t, 0.02, cfg.Model.Sparsity)
	assert.True(t, cfg.Learn)
	assert.Equal(t, 64*datasize.MB, cfg.Checkpoint.MaxSize)
	require.Len(t, cfg.Fields, 2)
	assert.Equal(t, "scalar", cfg.Fields[0].Type)
	assert.Equal(t, 121, cfg.Fields[0].N)
	assert.Equal(t, 5, cfg.Fields[1].TimeOfDayWidth)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exp.toml")
	require.NoError(t, os.WriteFile(path, []byte(experimentToml), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "cycle", cfg.Name)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestParseConfigErrors(t *testing.T) {
	_, err := ParseConfig(experimentToml + "\nbogus = 1\n")
	assert.Error(t, err)

	_, err = ParseConfig(strings.Replace(experimentToml, `predicted_field = "value"`, `predicted_field = "price"`, 1))
	assert.Error(t, err)

	_, err = ParseConfig(strings.Replace(experimentToml, `"aae", "rmse"`, `"aae", "mase"`, 1))
	assert.Error(t, err)

	_, err = ParseConfig(strings.Replace(experimentToml, `"last", "zeroth"`, `"oracle"`, 1))
	assert.Error(t, err)

	_, err = ParseConfig(`name = "empty"`)
	assert.Error(t, err)
}

func TestCSVSource(t *testing.T) {
	src, err := NewCSVSource(strings.NewReader("value, kind\n1.5,a\n2.5, b\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"value", "kind"}, src.Header())

	rec, err := src.Next()
	require.NoError(t, err)
	assert.Equal(t, Record{"value": "1.5", "kind": "a"}, rec)

	rec, err = src.Next()
	require.NoError(t, err)
	assert.Equal(t, Record{"value": "2.5", "kind": "b"}, rec)

	_, err = src.Next()
	assert.Equal(t, io.EOF, err)
	assert.NoError(t, src.Close())

	bad, err := NewCSVSource(strings.NewReader("a,b\n1\n"))
	require.NoError(t, err)
	_, err = bad.Next()
	assert.Error(t, err)
	assert.NotEqual(t, io.EOF, err)

	_, err = NewCSVSource(strings.NewReader(""))
	assert.Error(t, err)
}

func TestSliceSource(t *testing.T) {
	src := NewSliceSource([]Record{{"a": 1}})
	rec, err := src.Next()
	require.NoError(t, err)
	assert.Equal(t, Record{"a": 1}, rec)
	_, err = src.Next()
	assert.Equal(t, io.EOF, err)
}
