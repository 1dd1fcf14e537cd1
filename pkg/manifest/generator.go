package manifest

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dtnitsch/wiki-triage/models"
	"github.com/dtnitsch/wiki-triage/pkg/mapreduce"
	"github.com/dtnitsch/wiki-triage/pkg/storage"
)

const topN = 10

// DocumentResult is the outcome of running one document through the pipeline.
type DocumentResult struct {
	ID        string
	Title     string
	URL       string
	FilePath  string
	Report    *models.Report
	Error     error
	ErrorType string
	// FileSizeBytes is the size of the written report; zero means look it up.
	FileSizeBytes int64
}

// Build aggregates results into a SummaryManifest.
func Build(results []DocumentResult, s *storage.Storage) SummaryManifest {
	manifest := SummaryManifest{
		GeneratedAt:    time.Now().Format(time.RFC3339),
		TotalDocuments: len(results),
		Results:        make([]DocumentSummary, 0, len(results)),
	}

	var rules, macros []map[string]int
	for _, result := range results {
		summary := DocumentSummary{ID: result.ID, Title: result.Title, URL: result.URL}

		if result.Error != nil || result.Report == nil {
			manifest.Failed++
			summary.Status = "error"
			summary.ErrorType = result.ErrorType
			if result.Error != nil {
				summary.ErrorMessage = result.Error.Error()
			}
			manifest.Results = append(manifest.Results, summary)
			continue
		}

		r := result.Report
		summary.Status = "success"
		summary.FilePath = result.FilePath
		summary.Classification = string(r.Verdict.Classification)
		summary.Reason = r.Verdict.Reason
		summary.Rule = r.Verdict.Rule
		summary.Language = r.Language
		if len(r.Keywords) > 3 {
			summary.Keywords = r.Keywords[:3]
		} else {
			summary.Keywords = r.Keywords
		}
		if r.Verdict.IsUseful() {
			manifest.Useful++
		} else {
			manifest.Gibberish++
		}

		summary.SizeBytes = result.FileSizeBytes
		if summary.SizeBytes == 0 && result.FilePath != "" && s != nil {
			if stats, err := s.GetFileStats(result.FilePath); err == nil {
				summary.SizeBytes = stats.SizeBytes
			}
		}

		rules = append(rules, mapreduce.Count([]string{r.Verdict.Rule}))
		macros = append(macros, mapreduce.Count(r.UnknownMacros))
		manifest.Results = append(manifest.Results, summary)
	}

	manifest.TopRules = mapreduce.TopKeywords(mapreduce.Reduce(rules), topN)
	manifest.UnknownMacros = mapreduce.TopKeywords(mapreduce.Reduce(macros), topN)
	return manifest
}

// GenerateSummary builds the manifest and writes it to outputDir/summary-<date>.json.
// Returns the path to the generated manifest file.
func GenerateSummary(results []DocumentResult, runUUID, outputDir string, s *storage.Storage) (string, error) {
	manifest := Build(results, s)
	manifest.RunUUID = runUUID

	manifestPath := filepath.Join(outputDir, fmt.Sprintf("summary-%s.json", time.Now().Format("2006-01-02")))
	manifestData, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return "", fmt.Errorf("error marshalling manifest: %w", err)
	}

	if err := s.SaveFile(manifestPath, manifestData); err != nil {
		return "", fmt.Errorf("error saving manifest: %w", err)
	}

	return manifestPath, nil
}
