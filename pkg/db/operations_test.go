package db

import (
	"testing"

	"github.com/dtnitsch/wiki-triage/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	database := &DB{path: ":memory:"}
	var err error
	database.DB, err = openDB(":memory:")
	require.NoError(t, err, "failed to create test database")
	require.NoError(t, database.InitSchema(), "failed to initialize schema")

	return database
}

func sampleReport(id string) *models.Report {
	return &models.Report{
		ID:     id,
		Title:  "Runbook " + id,
		URL:    "https://wiki.example.com/" + id,
		Format: "storage",
		Verdict: models.Verdict{
			Classification: models.Useful,
			Reason:         "table 1 is useful: 4 meaningful words",
			Rule:           "useful-table",
		},
		Tables: []models.TableReport{
			{
				Index:   0,
				Verdict: models.Verdict{Classification: models.Useful, Reason: "4 meaningful words", Rule: "meaningful-words"},
				Metrics: models.TableMetrics{DataRows: 2, Cols: 2, Tier: models.TierKeyValue, MeaningfulWords: 4, FillPercentage: 100},
			},
			{
				Index:   1,
				Verdict: models.Verdict{Classification: models.Gibberish, Reason: "only header row filled", Rule: "header-only"},
				Metrics: models.TableMetrics{DataRows: 1, Cols: 3, Tier: models.TierSmall},
			},
		},
		Metrics: models.DocumentMetrics{
			Outside:     models.OutsideMetrics{MeaningfulWords: 12, Signals: models.Signals{Links: 2}},
			AverageFill: 50,
		},
		UsefulTables:    1,
		GibberishTables: 1,
		UnknownMacros:   []string{"gadget"},
	}
}

func TestCreateRun(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	run, err := db.CreateRun("corpus.jsonl", "abc123")
	require.NoError(t, err)
	assert.NotZero(t, run.ID)
	assert.Len(t, run.UUID, 36)
	assert.Equal(t, "corpus.jsonl", run.Input)
	assert.Equal(t, "abc123", run.ConfigHash)
	assert.Nil(t, run.FinishedAt)
	assert.False(t, run.StartedAt.IsZero())

	require.NoError(t, db.FinishRun(run.ID, 3, 1, 1, 1))
	got, err := db.GetRunByID(run.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.FinishedAt)
	assert.Equal(t, 3, got.Total)
	assert.Equal(t, 1, got.Failed)
}

func TestGetRun_References(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	run, err := db.CreateRun("corpus.jsonl", "")
	require.NoError(t, err)

	tests := []struct {
		name string
		ref  string
	}{
		{"numeric id", "1"},
		{"full uuid", run.UUID},
		{"uuid prefix", run.UUID[:8]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.GetRun(tt.ref)
			require.NoError(t, err)
			assert.Equal(t, run.ID, got.ID)
		})
	}

	_, err = db.GetRun("does-not-exist")
	assert.ErrorIs(t, err, ErrRunNotFound)
	_, err = db.GetRunByID(999)
	assert.ErrorIs(t, err, ErrRunNotFound)
	assert.ErrorIs(t, db.FinishRun(999, 0, 0, 0, 0), ErrRunNotFound)
}

func TestListRuns(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	for _, in := range []string{"a.jsonl", "b.jsonl", "c.jsonl"} {
		_, err := db.CreateRun(in, "")
		require.NoError(t, err)
	}

	runs, err := db.ListRuns(2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "c.jsonl", runs[0].Input)
	assert.Equal(t, "b.jsonl", runs[1].Input)
}

func TestInsertDocumentReport(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	run, err := db.CreateRun("corpus.jsonl", "")
	require.NoError(t, err)

	docID, err := db.InsertDocumentReport(run.ID, sampleReport("42"))
	require.NoError(t, err)

	gib := sampleReport("43")
	gib.Verdict = models.Verdict{Classification: models.Gibberish, Reason: "no tables and only 3 words outside tables", Rule: "no-content"}
	gib.Tables = nil
	_, err = db.InsertDocumentReport(run.ID, gib)
	require.NoError(t, err)

	_, err = db.InsertDocumentError(run.ID, "44", "Broken", "", "failed to distill rendered page")
	require.NoError(t, err)

	all, err := db.GetRunDocuments(run.ID, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "42", all[0].PageID)
	assert.Equal(t, "USEFUL", all[0].Classification)
	assert.Equal(t, 12, all[0].OutsideWords)
	assert.Equal(t, 2, all[0].OutsideLinks)
	assert.Equal(t, 2, all[0].TableCount)
	assert.Equal(t, []string{"gadget"}, all[0].UnknownMacros)

	useful, err := db.GetRunDocuments(run.ID, "USEFUL")
	require.NoError(t, err)
	assert.Len(t, useful, 1)

	failed, err := db.GetRunDocuments(run.ID, "ERROR")
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, "failed to distill rendered page", failed[0].Error)

	tables, err := db.GetDocumentTables(docID)
	require.NoError(t, err)
	require.Len(t, tables, 2)
	assert.Equal(t, "key-value", tables[0].Tier)
	assert.Equal(t, "header-only", tables[1].Rule)

	counts, err := db.ReasonCounts(run.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"useful-table": 1, "no-content": 1, "error": 1}, counts)
}

func TestInsertDocumentReport_UnknownRun(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	_, err := db.InsertDocumentReport(12345, sampleReport("1"))
	assert.Error(t, err, "foreign key must reject unknown run")
}

func TestOpen_File(t *testing.T) {
	path := t.TempDir() + "/triage.db"
	db, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, path, db.Path())
	require.NoError(t, db.Close())

	again, err := Open(path)
	require.NoError(t, err)
	defer again.Close()
	_, err = again.CreateRun("x", "")
	assert.NoError(t, err)
}
