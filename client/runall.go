package client

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/voodooEntity/archivist"
)

//An experiment and its input, Source nil reads Config.Input.Path
type Experiment struct {
	Config *ExperimentConfig
	Source RecordSource
}

/*
 Runs independent experiments concurrently, one goroutine and one model
each. Summaries are returned in experiment order, nil for experiments that
failed; their errors are joined. Halted experiments keep their summary.
*/
func RunAll(ctx context.Context, experiments []Experiment) ([]*Summary, error) {
	summaries := make([]*Summary, len(experiments))
	errs := make([]error, len(experiments))

	var wg sync.WaitGroup
	for i, exp := range experiments {
		wg.Add(1)
		go func(i int, exp Experiment) {
			defer wg.Done()
			summaries[i], errs[i] = runExperiment(ctx, exp)
			if errs[i] != nil {
				archivist.Error("Experiment failed", exp.Config.Name, errs[i].Error())
			}
		}(i, exp)
	}
	wg.Wait()

	return summaries, errors.Join(errs...)
}

func runExperiment(ctx context.Context, exp Experiment) (*Summary, error) {
	if exp.Config == nil {
		return nil, fmt.Errorf("client: experiment without config")
	}
	runner, err := NewRunner(exp.Config)
	if err != nil {
		return nil, err
	}

	src := exp.Source
	if src == nil {
		csvSrc, err := OpenCSV(exp.Config.Input.Path)
		if err != nil {
			return nil, err
		}
		defer csvSrc.Close()
		src = csvSrc
	}
	return runner.Run(ctx, src)
}
