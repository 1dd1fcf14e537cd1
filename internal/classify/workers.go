package classify

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/dtnitsch/wiki-triage/internal/common"
	"github.com/dtnitsch/wiki-triage/models"
	"github.com/dtnitsch/wiki-triage/pkg/caching"
	"github.com/dtnitsch/wiki-triage/pkg/db"
	"github.com/dtnitsch/wiki-triage/pkg/manifest"
	"github.com/dtnitsch/wiki-triage/pkg/parser"
	"github.com/dtnitsch/wiki-triage/pkg/storage"
	"gopkg.in/yaml.v3"
)

// Runner classifies a corpus with a fixed pool of workers.
type Runner struct {
	logger  *slog.Logger
	parser  *parser.Parser
	cache   *caching.Cache // nil disables caching
	storage *storage.Storage
	opts    Options
}

// NewRunner wires a Runner. cache may be nil.
func NewRunner(logger *slog.Logger, p *parser.Parser, cache *caching.Cache, s *storage.Storage, opts Options) *Runner {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Format == "" {
		opts.Format = "json"
	}
	return &Runner{logger: logger, parser: p, cache: cache, storage: s, opts: opts}
}

// Run processes docs and returns one result per document in input order.
func (r *Runner) Run(docs []models.Document) []manifest.DocumentResult {
	r.logger.Info("Starting classify phase", "documents", len(docs), "workers", r.opts.Workers, "cache", r.cache != nil)

	var wg sync.WaitGroup
	jobs := make(chan Job, len(docs))
	results := make(chan indexedResult, len(docs))

	for w := 1; w <= r.opts.Workers; w++ {
		wg.Add(1)
		go r.worker(w, &wg, jobs, results)
	}

	for i, doc := range docs {
		jobs <- Job{Index: i, Document: doc}
	}
	close(jobs)

	wg.Wait()
	close(results)
	r.logger.Info("All classify workers finished")

	out := make([]manifest.DocumentResult, len(docs))
	for res := range results {
		out[res.index] = res.result
	}
	return out
}

type indexedResult struct {
	index  int
	result manifest.DocumentResult
}

func (r *Runner) worker(id int, wg *sync.WaitGroup, jobs <-chan Job, results chan<- indexedResult) {
	defer wg.Done()
	for job := range jobs {
		r.logger.Debug("Worker started job", "worker_id", id, "doc_id", job.Document.ID)
		results <- indexedResult{index: job.Index, result: r.process(id, job.Document)}
	}
}

func (r *Runner) process(id int, doc models.Document) manifest.DocumentResult {
	result := manifest.DocumentResult{ID: doc.ID, Title: doc.Title, URL: doc.URL}
	fn := filepath.Join(r.opts.OutputDir, common.SafeFileName(doc.ID)+"."+r.opts.Format)

	if r.opts.Resume && r.storage.HasFile(fn) {
		report, size, err := r.load(fn)
		if err == nil {
			r.logger.Debug("Reusing existing report", "worker_id", id, "doc_id", doc.ID, "path", fn)
			result.Report, result.FilePath, result.FileSizeBytes = report, fn, size
			return result
		}
		r.logger.Warn("Existing report unreadable, parsing again", "doc_id", doc.ID, "path", fn, "error", err)
	}

	report, err := r.classify(doc)
	if err != nil {
		r.logger.Error("Error parsing document", "worker_id", id, "doc_id", doc.ID, "error", err)
		result.Error = err
		result.ErrorType = "parse_error"
		return result
	}
	result.Report = report

	data, err := r.marshal(report)
	if err != nil {
		r.logger.Error("Error marshalling report", "worker_id", id, "doc_id", doc.ID, "error", err)
		result.Error = err
		result.ErrorType = "marshal_error"
		return result
	}

	if err := r.storage.SaveFile(fn, data); err != nil {
		r.logger.Error("Error saving report", "worker_id", id, "doc_id", doc.ID, "path", fn, "error", err)
		result.Error = err
		result.ErrorType = "save_error"
		return result
	}

	result.FilePath = fn
	result.FileSizeBytes = int64(len(data))
	r.logger.Debug("Worker finished job", "worker_id", id, "doc_id", doc.ID,
		"classification", report.Verdict.Classification, "rule", report.Verdict.Rule)
	return result
}

// classify runs the pipeline, consulting the cache first. Cached reports are
// keyed by body and settings, so identity fields are always refreshed from doc.
func (r *Runner) classify(doc models.Document) (*models.Report, error) {
	req := doc.Request()
	req.DetectLanguage = r.opts.DetectLanguage
	if r.opts.Rendered {
		req.Format = models.FormatRendered
	}

	var key string
	if r.cache != nil {
		key = caching.Key(doc.Body, req.Format.String(), r.opts.ConfigHash, strconv.FormatBool(req.DetectLanguage), strconv.FormatBool(r.opts.KeepMarkdown))
		if data, err := r.cache.Get(key); err == nil {
			var report models.Report
			if err := json.Unmarshal(data, &report); err == nil {
				report.ID, report.URL = doc.ID, doc.URL
				if doc.Title != "" {
					report.Title = doc.Title
				}
				return &report, nil
			}
		} else if !errors.Is(err, caching.ErrMiss) {
			r.logger.Warn("Cache read failed", "doc_id", doc.ID, "error", err)
		}
	}

	report, err := r.parser.Parse(req)
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		if data, err := json.Marshal(report); err == nil {
			if err := r.cache.Set(key, data); err != nil {
				r.logger.Warn("Cache write failed", "doc_id", doc.ID, "error", err)
			}
		}
	}
	return report, nil
}

// load reads back a report written by an earlier run.
func (r *Runner) load(fn string) (*models.Report, int64, error) {
	data, err := r.storage.ReadFile(fn)
	if err != nil {
		return nil, 0, err
	}
	var report models.Report
	if r.opts.Format == "yaml" {
		err = yaml.Unmarshal(data, &report)
	} else {
		err = json.Unmarshal(data, &report)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("error decoding report: %w", err)
	}
	return &report, int64(len(data)), nil
}

func (r *Runner) marshal(report *models.Report) ([]byte, error) {
	switch r.opts.Format {
	case "yaml":
		return yaml.Marshal(report)
	case "json":
		return json.MarshalIndent(report, "", "  ")
	default:
		return nil, fmt.Errorf("unknown output format %q", r.opts.Format)
	}
}

// Tally counts the outcomes of a run.
func Tally(results []manifest.DocumentResult) Counts {
	c := Counts{Total: len(results)}
	for _, res := range results {
		switch {
		case res.Error != nil || res.Report == nil:
			c.Failed++
		case res.Report.Verdict.IsUseful():
			c.Useful++
		default:
			c.Gibberish++
		}
	}
	return c
}

// Record stores every result of a run and closes it with the final counts.
// Insert failures are logged and do not stop the remaining documents.
func Record(logger *slog.Logger, database *db.DB, runID int64, results []manifest.DocumentResult) error {
	for _, res := range results {
		var err error
		if res.Error != nil || res.Report == nil {
			msg := "no report"
			if res.Error != nil {
				msg = res.ErrorType + ": " + res.Error.Error()
			}
			_, err = database.InsertDocumentError(runID, res.ID, res.Title, res.URL, msg)
		} else {
			_, err = database.InsertDocumentReport(runID, res.Report)
		}
		if err != nil {
			logger.Warn("Failed to record document", "run_id", runID, "doc_id", res.ID, "error", err)
		}
	}

	c := Tally(results)
	return database.FinishRun(runID, c.Total, c.Useful, c.Gibberish, c.Failed)
}
