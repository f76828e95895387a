// Package pipeline wires fetching, extraction, normalization, persistence and
// dataset remapping into a per-source run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/net/html"

	"teakeys/internal/config"
	"teakeys/internal/extractor"
	"teakeys/internal/logger"
	"teakeys/internal/models"
	"teakeys/internal/normalizer"
	"teakeys/internal/remapper"
	"teakeys/internal/store"
)

// DocumentSource retrieves the parsed reference page for a source.
type DocumentSource interface {
	FetchDocument(ctx context.Context, src config.SourceConfig) (*html.Node, error)
}

// Result describes what a single source run produced.
type Result struct {
	Source        string
	Title         string
	Keys          int
	GeneratedPath string
	ProcessedPath string
	RenamedPath   string
	Remap         remapper.Stats
	Duration      time.Duration
}

// Runner executes the pipeline for configured sources.
type Runner struct {
	docs      DocumentSource
	extractor *extractor.Extractor
	processor *normalizer.Processor
	store     *store.JSONStore
	log       *logger.Logger
}

// NewRunner builds a runner from cfg. The normalize stage is skipped when
// cfg.Normalize.Enabled is false.
func NewRunner(cfg *config.Config, docs DocumentSource, log *logger.Logger) *Runner {
	if log == nil {
		log = logger.Discard()
	}

	r := &Runner{
		docs: docs,
		extractor: extractor.New(extractor.Options{
			HeaderRows: cfg.Extract.HeaderRows,
			KeyCell:    cfg.Extract.KeyCell,
			ValueCell:  cfg.Extract.ValueCell,
		}),
		store: store.NewJSONStore(store.NewLayout(cfg.Output), store.WithBackup(cfg.Output.CreateBackup)),
		log:   log,
	}

	if cfg.Normalize.Enabled {
		r.processor = normalizer.NewProcessor(normalizer.Options{
			UseDefaults: cfg.Normalize.UseDefaults,
			ExtraRules:  cfg.Normalize.Rules,
		})
	}

	return r
}

// Store returns the store used for outputs.
func (r *Runner) Store() *store.JSONStore {
	return r.store
}

// Bootstrap creates the output directories. It must run before Run.
func (r *Runner) Bootstrap() error {
	return r.store.Layout().Bootstrap()
}

// RunAll bootstraps the output directories once, then runs every source in order. A failing source is logged and does not
// stop the others; all failures are joined into the returned error.
func (r *Runner) RunAll(ctx context.Context, sources []config.SourceConfig) ([]Result, error) {
	if err := r.Bootstrap(); err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(sources))

	var errs []error

	for i, src := range sources {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)

			break
		}

		r.log.Info("processing source", "index", i+1, "total", len(sources), "source", src.DisplayName())

		res, err := r.Run(ctx, src)
		if err != nil {
			r.log.Error("source failed", "source", src.DisplayName(), "error", err)
			errs = append(errs, fmt.Errorf("source %s: %w", src.DisplayName(), err))

			continue
		}

		results = append(results, res)
	}

	r.log.Info("run complete", "succeeded", len(results), "failed", len(sources)-len(results))

	return results, errors.Join(errs...)
}

// Run processes one source: fetch, extract, save raw, optionally normalize and
// save cleaned, then remap the source's dataset if one is configured. The
// output directories must already exist; see Bootstrap.
func (r *Runner) Run(ctx context.Context, src config.SourceConfig) (Result, error) {
	start := time.Now()
	res := Result{Source: src.DisplayName()}
	log := r.log.With("source", res.Source)

	doc, err := r.docs.FetchDocument(ctx, src)
	if err != nil {
		return res, err
	}

	raw, err := r.extractor.Extract(doc)
	if err != nil {
		var ee *models.ExtractionError
		if errors.As(err, &ee) && ee.Source == "" {
			ee.Source = src.GetSource()
		}

		return res, err
	}

	res.Title = raw.Title()
	res.Keys = raw.Len()
	log.Info("extracted keys", "title", raw.Title(), "keys", raw.Len())

	if res.GeneratedPath, err = r.store.SaveGenerated(raw); err != nil {
		return res, fmt.Errorf("save generated keys: %w", err)
	}

	log.Debug("saved generated keys", "path", res.GeneratedPath)

	var cleaned *models.KeyMapping

	if r.processor != nil {
		if cleaned, err = r.processor.Process(raw); err != nil {
			return res, fmt.Errorf("normalize: %w", err)
		}

		if res.ProcessedPath, err = r.store.SaveProcessed(cleaned); err != nil {
			return res, fmt.Errorf("save processed keys: %w", err)
		}

		log.Debug("saved processed keys", "path", res.ProcessedPath)
	}

	if src.Dataset != "" {
		mapping := raw
		if src.UseCleaned {
			// nil when normalization is disabled; Remap reports it as not ready
			mapping = cleaned
		}

		res.RenamedPath = r.store.Layout().RenamedPath(src.Dataset)

		if res.Remap, err = remapper.RemapFile(src.Dataset, res.RenamedPath, mapping); err != nil {
			return res, err
		}

		log.Info("remapped dataset", "path", res.RenamedPath, "renamed", res.Remap.Renamed, "columns", res.Remap.Columns)
	}

	res.Duration = time.Since(start)

	return res, nil
}
