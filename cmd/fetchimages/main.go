package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/youruser/imagefetch/internal/config"
	imagepkg "github.com/youruser/imagefetch/internal/image"
	"github.com/youruser/imagefetch/internal/logging"
	"github.com/youruser/imagefetch/internal/pipeline"
	"github.com/youruser/imagefetch/internal/records"
	"github.com/youruser/imagefetch/internal/report"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		return 2
	}
	input := flag.String("input", cfg.InputFile, "spreadsheet to read (.xlsx or .csv)")
	out := flag.String("out", cfg.OutputDir, "directory the run folder is created in")
	flag.Parse()

	// progress goes to stdout, diagnostics to stderr
	logging.Setup(os.Stderr, logging.Config{Format: cfg.LogFormat, Level: cfg.LogLevel})
	fmt.Println("Script starting...")

	recs, err := records.LoadFile(*input)
	if err != nil {
		slog.Error("could not read input", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := pipeline.New(imagepkg.NewFetcher(cfg.FetchTimeout, cfg.NoPicture), pipeline.Options{
		OutputDir:   *out,
		WebPQuality: cfg.WebPQuality,
		Progress: func(done, total int, o report.Outcome) {
			fmt.Println(pipeline.ProgressLine(done, total, o))
		},
	})
	res, err := runner.Run(ctx, recs)
	if res != nil && res.Text != "" {
		fmt.Println()
		fmt.Println(res.Text)
	}
	if err != nil {
		slog.Error("run failed", "error", err)
		return 1
	}
	fmt.Printf("Report written to %s\n", res.ReportPath)
	fmt.Println("Script finished.")
	return 0
}
