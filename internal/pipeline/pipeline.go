// Package pipeline drives a single run: it creates the run directory, feeds
// every row through fetch and conversion one at a time and writes the report.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	imagepkg "github.com/youruser/imagefetch/internal/image"
	"github.com/youruser/imagefetch/internal/logging"
	"github.com/youruser/imagefetch/internal/metrics"
	"github.com/youruser/imagefetch/internal/records"
	"github.com/youruser/imagefetch/internal/report"
	"github.com/youruser/imagefetch/internal/util"
)

// DirPrefix starts the name of every run directory.
const DirPrefix = "bilder"

// Fetcher downloads one image link.
type Fetcher interface {
	Fetch(ctx context.Context, link string) (*imagepkg.FetchResult, error)
}

// Converter turns downloaded bytes into the final image file.
type Converter interface {
	Convert(raw []byte, ext, articleNumber string) (*imagepkg.ConversionResult, error)
}

// ProgressFunc is called after each row with the number of rows done.
type ProgressFunc func(done, total int, o report.Outcome)

type Options struct {
	OutputDir   string
	WebPQuality float32
	// Now defaults to time.Now; it names the run directory.
	Now      func() time.Time
	Progress ProgressFunc
}

// Result is what a finished run leaves behind.
type Result struct {
	Dir        string
	ReportPath string
	Summary    report.Summary
	Text       string
}

// Name returns the run directory's base name.
func (r *Result) Name() string {
	return filepath.Base(r.Dir)
}

type Runner struct {
	fetcher      Fetcher
	newConverter func(dir string) Converter
	opts         Options
}

func New(fetcher Fetcher, opts Options) *Runner {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}
	return &Runner{
		fetcher: fetcher,
		newConverter: func(dir string) Converter {
			return imagepkg.NewConverter(dir, opts.WebPQuality)
		},
		opts: opts,
	}
}

// Run processes recs in order. Per-row failures end up in the report; only
// a run directory that cannot be created or a report that cannot be
// written fail the run. On a report write failure the returned Result
// still carries the summary.
func (r *Runner) Run(ctx context.Context, recs []records.Record) (*Result, error) {
	dir, err := util.CreateRunDir(r.opts.OutputDir, DirPrefix, r.opts.Now())
	if err != nil {
		metrics.RunsTotal.WithLabelValues("failed").Inc()
		return nil, err
	}
	res := &Result{Dir: dir}
	log := logging.RunLogger(res.Name())
	log.Info("run started", "rows", len(recs), "dir", dir)

	conv := r.newConverter(dir)
	metrics.RunProgress.Set(0)
	for i, rec := range recs {
		o := r.process(ctx, log, conv, rec)
		res.Summary.Add(o)
		metrics.RecordsTotal.WithLabelValues(o.Kind.String()).Inc()
		metrics.RunProgress.Set(float64(i+1) / float64(len(recs)))
		if r.opts.Progress != nil {
			r.opts.Progress(i+1, len(recs), o)
		}
	}

	res.Text = res.Summary.Render()
	path, err := res.Summary.WriteFile(dir)
	if err != nil {
		metrics.RunsTotal.WithLabelValues("failed").Inc()
		log.Error("report write failed", "error", err)
		return res, err
	}
	res.ReportPath = path
	metrics.RunsTotal.WithLabelValues("completed").Inc()
	log.Info("run finished",
		"rows", res.Summary.TotalRows,
		"downloaded", res.Summary.Downloaded,
		"converted", res.Summary.Converted,
		"failed", len(res.Summary.Failures))
	return res, nil
}

// process never returns an error: every failure becomes the row's outcome.
func (r *Runner) process(ctx context.Context, log *slog.Logger, conv Converter, rec records.Record) report.Outcome {
	o := report.Outcome{ArticleNumber: rec.ArticleNumber}

	fetched, err := r.fetcher.Fetch(ctx, rec.ImageLink)
	if err != nil {
		var refErr *imagepkg.ReferenceError
		if errors.As(err, &refErr) {
			o.Kind = report.SkippedInvalidReference
		} else {
			o.Kind = report.FetchFailed
		}
		o.Reason = err.Error()
		log.Warn("row not downloaded", "article", rec.ArticleNumber, "outcome", o.Kind.String(), "reason", o.Reason)
		return o
	}

	converted, err := conv.Convert(fetched.Data, fetched.Extension, rec.ArticleNumber)
	if converted != nil {
		o.Downloaded = converted.Persisted
	}
	if err != nil {
		o.Kind = report.ConversionFailed
		o.Reason = err.Error()
		log.Warn("row not converted", "article", rec.ArticleNumber, "reason", o.Reason)
		return o
	}

	o.Kind = report.Converted
	log.Debug("row converted", "article", rec.ArticleNumber, "path", converted.Path,
		"content_type", fetched.ContentType, "bytes", len(fetched.Data))
	return o
}

// ProgressLine formats one row's outcome for console output.
func ProgressLine(done, total int, o report.Outcome) string {
	if o.Kind == report.Converted {
		return fmt.Sprintf("[%d/%d] %s: ok", done, total, o.ArticleNumber)
	}
	return fmt.Sprintf("[%d/%d] %s: %s", done, total, o.ArticleNumber, o.Reason)
}
