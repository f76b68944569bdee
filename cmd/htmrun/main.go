package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/htm-community/streamhtm/client"
	"github.com/voodooEntity/archivist"
)

func main() {
	var (
		configPath = flag.String("config", "", "Experiment config file (TOML)")
		checkpoint = flag.String("checkpoint", "", "Write the model state to this file, overrides the config")
		resume     = flag.String("resume", "", "Resume from a checkpoint written by an earlier run")
		verbose    = flag.Bool("verbose", false, "Enable debug logging")
		logPath    = flag.String("log", "", "Log to this file instead of stdout")
	)
	flag.Parse()

	if *configPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s -config exp.toml [-checkpoint out] [-resume in] [-verbose]\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}

	logLevel, logTarget := "info", "stdout"
	if *verbose {
		logLevel = "debug"
	}
	if *logPath != "" {
		logTarget = "file"
	}
	archivist.Init(logLevel, logTarget, *logPath)

	cfg, err := client.LoadConfig(*configPath)
	if err != nil {
		archivist.Error("Failed to load config", err.Error())
		os.Exit(1)
	}
	if *checkpoint != "" {
		cfg.Checkpoint.Path = *checkpoint
	}

	runner, err := client.NewRunner(cfg)
	if err != nil {
		archivist.Error("Failed to create runner", err.Error())
		os.Exit(1)
	}
	if *resume != "" {
		if err := runner.LoadCheckpoint(*resume); err != nil {
			archivist.Error("Failed to resume", err.Error())
			os.Exit(1)
		}
	}

	src, err := client.OpenCSV(cfg.Input.Path)
	if err != nil {
		archivist.Error("Failed to open input", err.Error())
		os.Exit(1)
	}
	defer src.Close()

	// interrupting stops the run between records
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := runner.Run(ctx, src)
	if summary != nil {
		printSummary(summary)
	}
	if err != nil && (summary == nil || !summary.Halted) {
		archivist.Error("Run failed", err.Error())
		src.Close()
		os.Exit(1)
	}
}

func printSummary(s *client.Summary) {
	fmt.Printf("experiment: %s\n", s.Experiment)
	fmt.Printf("run:        %s\n", s.RunID)
	fmt.Printf("records:    %d\n", s.Records)
	if s.Halted {
		fmt.Println("halted:     true")
	}
	fmt.Printf("anomaly:    %.4f\n", s.MeanAnomaly)
	fmt.Printf("prediction: %.4f\n", s.PredictionScore)

	keys := make([]string, 0, len(s.Scores))
	for k := range s.Scores {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("  %-12s %.4f\n", k, s.Scores[k])
	}

	methods := make([]string, 0, len(s.Baselines))
	for m := range s.Baselines {
		methods = append(methods, m)
	}
	sort.Strings(methods)
	for _, m := range methods {
		fmt.Printf("  baseline %-6s %.4f\n", m, s.Baselines[m])
	}

	if s.CheckpointSize > 0 {
		fmt.Printf("checkpoint: %s\n", s.CheckpointSize.HumanReadable())
	}
}
