package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dtnitsch/wiki-triage/models"
	"github.com/google/uuid"
)

// ErrRunNotFound is returned when a run reference matches nothing.
var ErrRunNotFound = errors.New("run not found")

// Run is one classify invocation.
type Run struct {
	ID         int64      `json:"run_id"`
	UUID       string     `json:"run_uuid"`
	Input      string     `json:"input"`
	ConfigHash string     `json:"config_hash,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Total      int        `json:"total"`
	Useful     int        `json:"useful"`
	Gibberish  int        `json:"gibberish"`
	Failed     int        `json:"failed"`
}

// DocumentRow is a stored page verdict.
type DocumentRow struct {
	ID             int64    `json:"document_id"`
	RunID          int64    `json:"run_id"`
	PageID         string   `json:"page_id"`
	Title          string   `json:"title,omitempty"`
	URL            string   `json:"url,omitempty"`
	Format         string   `json:"format,omitempty"`
	Language       string   `json:"language,omitempty"`
	Classification string   `json:"classification,omitempty"`
	Reason         string   `json:"reason,omitempty"`
	Rule           string   `json:"rule,omitempty"`
	OutsideWords   int      `json:"outside_meaningful_words"`
	OutsideLinks   int      `json:"outside_links"`
	TableCount     int      `json:"table_count"`
	UsefulTables   int      `json:"useful_tables"`
	AverageFill    float64  `json:"average_fill"`
	UnknownMacros  []string `json:"unknown_macros,omitempty"`
	Error          string   `json:"error,omitempty"`
}

// TableVerdictRow is a stored table verdict.
type TableVerdictRow struct {
	DocumentID      int64   `json:"document_id"`
	Index           int     `json:"table_index"`
	Classification  string  `json:"classification"`
	Reason          string  `json:"reason"`
	Rule            string  `json:"rule"`
	Tier            string  `json:"tier"`
	DataRows        int     `json:"data_rows"`
	Cols            int     `json:"cols"`
	MeaningfulWords int     `json:"meaningful_words"`
	FillPercentage  float64 `json:"fill_percentage"`
}

// CreateRun starts a run and assigns it a UUID.
func (db *DB) CreateRun(input, configHash string) (*Run, error) {
	run := &Run{UUID: uuid.NewString(), Input: input, ConfigHash: configHash}

	result, err := db.Exec(`
		INSERT INTO runs (run_uuid, input, config_hash)
		VALUES (?, ?, ?)
	`, run.UUID, input, configHash)
	if err != nil {
		return nil, fmt.Errorf("failed to insert run: %w", err)
	}

	run.ID, err = result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get run ID: %w", err)
	}
	return db.GetRunByID(run.ID)
}

// FinishRun stores the final counters of a run.
func (db *DB) FinishRun(runID int64, total, useful, gibberish, failed int) error {
	result, err := db.Exec(`
		UPDATE runs
		SET finished_at = CURRENT_TIMESTAMP,
		    total_documents = ?, useful_documents = ?, gibberish_documents = ?, failed_documents = ?
		WHERE run_id = ?
	`, total, useful, gibberish, failed, runID)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("run %d: %w", runID, ErrRunNotFound)
	}
	return nil
}

// InsertDocumentReport stores a page verdict and its table verdicts in one transaction.
func (db *DB) InsertDocumentReport(runID int64, r *models.Report) (int64, error) {
	macros, err := json.Marshal(r.UnknownMacros)
	if err != nil {
		return 0, fmt.Errorf("failed to encode unknown macros: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.Exec(`
		INSERT INTO documents (
			run_id, page_id, title, url, format, language,
			classification, reason, rule,
			outside_meaningful_words, outside_links, table_count, useful_tables, average_fill,
			unknown_macros
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, runID, r.ID, r.Title, r.URL, r.Format, r.Language,
		string(r.Verdict.Classification), r.Verdict.Reason, r.Verdict.Rule,
		r.Metrics.Outside.MeaningfulWords, r.Metrics.Outside.Links, len(r.Tables), r.UsefulTables, r.Metrics.AverageFill,
		string(macros))
	if err != nil {
		return 0, fmt.Errorf("failed to insert document: %w", err)
	}

	docID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get document ID: %w", err)
	}

	for _, t := range r.Tables {
		_, err := tx.Exec(`
			INSERT INTO table_verdicts (
				document_id, table_index, classification, reason, rule, tier,
				data_rows, cols, meaningful_words, fill_percentage
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, docID, t.Index, string(t.Verdict.Classification), t.Verdict.Reason, t.Verdict.Rule, string(t.Metrics.Tier),
			t.Metrics.DataRows, t.Metrics.Cols, t.Metrics.MeaningfulWords, t.Metrics.FillPercentage)
		if err != nil {
			return 0, fmt.Errorf("failed to insert table verdict %d: %w", t.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit document: %w", err)
	}
	return docID, nil
}

// InsertDocumentError records a document the pipeline could not process.
func (db *DB) InsertDocumentError(runID int64, pageID, title, url, errMsg string) (int64, error) {
	result, err := db.Exec(`
		INSERT INTO documents (run_id, page_id, title, url, error)
		VALUES (?, ?, ?, ?, ?)
	`, runID, pageID, title, url, errMsg)
	if err != nil {
		return 0, fmt.Errorf("failed to insert document error: %w", err)
	}
	return result.LastInsertId()
}

const runColumns = `run_id, run_uuid, input, COALESCE(config_hash, ''), started_at, finished_at,
	total_documents, useful_documents, gibberish_documents, failed_documents`

func scanRun(row interface{ Scan(...any) error }) (*Run, error) {
	var r Run
	var finished sql.NullTime
	if err := row.Scan(&r.ID, &r.UUID, &r.Input, &r.ConfigHash, &r.StartedAt, &finished,
		&r.Total, &r.Useful, &r.Gibberish, &r.Failed); err != nil {
		return nil, err
	}
	if finished.Valid {
		r.FinishedAt = &finished.Time
	}
	return &r, nil
}

// GetRunByID loads a run by its numeric id.
func (db *DB) GetRunByID(runID int64) (*Run, error) {
	r, err := scanRun(db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE run_id = ?`, runID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %d: %w", runID, ErrRunNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return r, nil
}

// GetRun resolves a run reference: a numeric id, a full UUID or a UUID prefix.
func (db *DB) GetRun(ref string) (*Run, error) {
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return db.GetRunByID(id)
	}

	r, err := scanRun(db.QueryRow(`
		SELECT `+runColumns+` FROM runs
		WHERE run_uuid = ? OR run_uuid LIKE ? || '%'
		ORDER BY run_id DESC LIMIT 1
	`, ref, ref))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %q: %w", ref, ErrRunNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return r, nil
}

// ListRuns returns the most recent runs first.
func (db *DB) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.Query(`SELECT `+runColumns+` FROM runs ORDER BY run_id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

// GetRunDocuments lists the documents of a run, optionally filtered by classification.
// The classification "ERROR" selects documents that failed to parse.
func (db *DB) GetRunDocuments(runID int64, classification string) ([]DocumentRow, error) {
	query := `
		SELECT document_id, run_id, page_id, COALESCE(title, ''), COALESCE(url, ''),
		       COALESCE(format, ''), COALESCE(language, ''),
		       COALESCE(classification, ''), COALESCE(reason, ''), COALESCE(rule, ''),
		       outside_meaningful_words, outside_links, table_count, useful_tables, average_fill,
		       COALESCE(unknown_macros, ''), COALESCE(error, '')
		FROM documents WHERE run_id = ?`
	args := []any{runID}
	switch classification {
	case "":
	case "ERROR":
		query += ` AND error IS NOT NULL`
	default:
		query += ` AND classification = ?`
		args = append(args, classification)
	}
	query += ` ORDER BY document_id`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var docs []DocumentRow
	for rows.Next() {
		var d DocumentRow
		var macros string
		if err := rows.Scan(&d.ID, &d.RunID, &d.PageID, &d.Title, &d.URL, &d.Format, &d.Language,
			&d.Classification, &d.Reason, &d.Rule,
			&d.OutsideWords, &d.OutsideLinks, &d.TableCount, &d.UsefulTables, &d.AverageFill,
			&macros, &d.Error); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		if macros != "" && macros != "null" {
			_ = json.Unmarshal([]byte(macros), &d.UnknownMacros)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// GetDocumentTables returns the table verdicts of one document in table order.
func (db *DB) GetDocumentTables(documentID int64) ([]TableVerdictRow, error) {
	rows, err := db.Query(`
		SELECT document_id, table_index, classification, COALESCE(reason, ''), COALESCE(rule, ''),
		       COALESCE(tier, ''), data_rows, cols, meaningful_words, fill_percentage
		FROM table_verdicts WHERE document_id = ? ORDER BY table_index
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query table verdicts: %w", err)
	}
	defer rows.Close()

	var out []TableVerdictRow
	for rows.Next() {
		var t TableVerdictRow
		if err := rows.Scan(&t.DocumentID, &t.Index, &t.Classification, &t.Reason, &t.Rule,
			&t.Tier, &t.DataRows, &t.Cols, &t.MeaningfulWords, &t.FillPercentage); err != nil {
			return nil, fmt.Errorf("failed to scan table verdict: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ReasonCounts aggregates page verdict rules of a run.
func (db *DB) ReasonCounts(runID int64) (map[string]int, error) {
	rows, err := db.Query(`
		SELECT COALESCE(rule, 'error'), COUNT(*) FROM documents WHERE run_id = ? GROUP BY 1
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to count reasons: %w", err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var rule string
		var n int
		if err := rows.Scan(&rule, &n); err != nil {
			return nil, fmt.Errorf("failed to scan reason count: %w", err)
		}
		counts[rule] = n
	}
	return counts, rows.Err()
}
