// icaplot renders the incremental-capacity chart of one battery straight
// from the sqlite file, without the HTTP service running.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"battery_analysis/internal/analysis"
	"battery_analysis/internal/chart"
	"battery_analysis/internal/logger"
	"battery_analysis/internal/repository"
	"battery_analysis/internal/repository/db"
	"battery_analysis/internal/service"

	arg "github.com/alexflint/go-arg"
)

var version = "<not set>"

type Args struct {
	DB        string `arg:"--db" help:"path to the sqlite database"`
	Battery   int    `arg:"-b,--battery,required" help:"battery id"`
	Stage     string `arg:"-s,--stage" help:"ICA cycle to plot: first or second"`
	Out       string `arg:"-o,--out" help:"output file"`
	Format    string `arg:"-f,--format" help:"png, svg or pdf"`
	Reanalyze bool   `arg:"--reanalyze" help:"re-run and store the analyses before plotting"`
	Verbose   bool   `arg:"-v,--verbose" help:"debug logging"`
}

func (Args) Version() string {
	return version
}

func procArgs() Args {
	args := Args{
		DB:     "app.db",
		Stage:  analysis.FirstCycle.Name,
		Out:    "curve.png",
		Format: "png",
	}
	arg.MustParse(&args)
	return args
}

func main() {
	if err := runMain(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runMain() error {
	return run(procArgs())
}

// run opens the database named in args and writes the requested chart.
func run(args Args) error {
	level := logger.InfoLevel
	if args.Verbose {
		level = logger.DebugLevel
	}
	log := logger.New(logger.Config{Level: level})
	defer func() { _ = log.Sync() }()

	stage, err := analysis.ParseStage(args.Stage)
	if err != nil {
		return err
	}

	conn, err := db.InitDB(args.DB)
	if err != nil {
		return err
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	repos := repository.NewRepository(conn)
	store := repository.NewAnalysisStore(repos.Batteries, repos.Samples)
	events := service.NewEventLogService(repos.EventRepo)
	svc := service.NewAnalysisService(store, analysis.NewOrchestrator(store, events, log), nil)

	if args.Reanalyze {
		outcomes, err := svc.Reanalyze(ctx, args.Battery)
		if err != nil {
			return fmt.Errorf("reanalyze battery %d: %w", args.Battery, err)
		}
		for _, o := range outcomes {
			log.Infow("reanalyzed", "op", o.Operation, "status", o.Status, "value", o.Value, "reason", o.Reason)
		}
	}

	f, err := os.Create(args.Out)
	if err != nil {
		return err
	}
	if err := svc.RenderCurve(ctx, args.Battery, stage, f, chart.Options{Format: args.Format}); err != nil {
		_ = f.Close()
		_ = os.Remove(args.Out)
		return fmt.Errorf("render battery %d stage %s: %w", args.Battery, stage, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	log.Infow("chart_written", "battery_id", args.Battery, "stage", stage.Name, "path", args.Out)
	return nil
}
