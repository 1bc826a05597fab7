package pipeline

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/tanq16/printgrab/internal/fetch"
	"github.com/tanq16/printgrab/internal/output"
	"github.com/tanq16/printgrab/internal/printables"
	"github.com/tanq16/printgrab/internal/utils"
)

// Job is one model to download.
type Job struct {
	ID         string
	ModelURL   string
	OutputDir  string
	Extensions []string
	DryRun     bool
}

// Options carries the run-wide settings shared by every job.
type Options struct {
	ClientConfig utils.HTTPClientConfig
	MaxAttempts  int
	RetryDelay   time.Duration
	Writer       io.Writer
	Verbose      bool
	BaseURL      string
	GraphQLURL   string
}

// Run processes jobs sequentially: resolve the model page, filter files,
// plan destinations, then fetch each file in listing order. The returned
// error joins one entry per failed job; a failing file or job never stops
// its siblings.
func Run(jobs []Job, opts Options) error {
	client := utils.NewHTTPClient(opts.ClientConfig)
	site := printables.NewClient(client)
	if opts.BaseURL != "" {
		site.BaseURL = opts.BaseURL
	}
	if opts.GraphQLURL != "" {
		site.GraphQLURL = opts.GraphQLURL
	}
	reporter := output.NewReporter(opts.Writer, opts.Verbose)
	fetcher := fetch.NewFetcher(client, opts.MaxAttempts, opts.RetryDelay)
	fetcher.SetProgressFunc(reporter.Progress)

	var runErrs []error
	for _, job := range jobs {
		if job.ID == "" {
			job.ID = uuid.New().String()[:8]
		}
		if job.OutputDir == "" {
			job.OutputDir = "."
		}
		log.Debug().Str("op", "pipeline/run").Msgf("Starting job %s for %s", job.ID, job.ModelURL)
		model, err := site.Resolve(job.ModelURL)
		if err != nil {
			reporter.JobError(job.ModelURL, err)
			runErrs = append(runErrs, fmt.Errorf("model %s: %w", job.ModelURL, err))
			continue
		}
		exts := utils.NormalizeExtensions(job.Extensions)
		exts = applySTLFallback(model.Files, exts)
		selected := printables.SelectFiles(model.Files, exts)
		reporter.Header(model, len(selected))
		if len(selected) == 0 {
			reporter.NoMatches()
			continue
		}
		plan := fetch.BuildPlan(selected, job.OutputDir)
		if job.DryRun {
			reporter.DryRun(plan)
			continue
		}
		results := make([]fetch.Result, 0, len(plan))
		for _, item := range plan {
			res := fetcher.Fetch(item)
			reporter.Result(res)
			results = append(results, res)
		}
		reporter.Summary(results)
		if t := output.Tabulate(results); t.Failed > 0 {
			runErrs = append(runErrs, fmt.Errorf("%d of %d downloads failed for model %s", t.Failed, len(results), job.ModelURL))
		}
	}
	return errors.Join(runErrs...)
}

// applySTLFallback widens the selection to .stl when .3mf was requested but
// the model carries none, matching how most models publish STL only.
func applySTLFallback(files []printables.File, exts []string) []string {
	if !slices.Contains(exts, ".3mf") {
		return exts
	}
	if printables.HasExtension(files, ".3mf") {
		return exts
	}
	if slices.Contains(exts, ".stl") {
		return exts
	}
	log.Info().Str("op", "pipeline/run").Msg("No .3mf files found, falling back to .stl")
	return append(exts, ".stl")
}
