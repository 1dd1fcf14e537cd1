package db

const schema = `
-- Performance and reliability settings
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;
PRAGMA temp_store = MEMORY;

-- Runs: one classify invocation over a corpus
CREATE TABLE IF NOT EXISTS runs (
    run_id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_uuid TEXT NOT NULL UNIQUE,
    input TEXT NOT NULL,
    config_hash TEXT,
    started_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    finished_at TIMESTAMP,

    total_documents INTEGER DEFAULT 0,
    useful_documents INTEGER DEFAULT 0,
    gibberish_documents INTEGER DEFAULT 0,
    failed_documents INTEGER DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

-- Documents: page verdict per run
CREATE TABLE IF NOT EXISTS documents (
    document_id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id INTEGER NOT NULL,
    page_id TEXT NOT NULL,
    title TEXT,
    url TEXT,
    format TEXT,
    language TEXT,

    classification TEXT,          -- USEFUL, GIBBERISH; NULL when parsing failed
    reason TEXT,
    rule TEXT,

    outside_meaningful_words INTEGER DEFAULT 0,
    outside_links INTEGER DEFAULT 0,
    table_count INTEGER DEFAULT 0,
    useful_tables INTEGER DEFAULT 0,
    average_fill REAL DEFAULT 0,

    -- Unknown macro names as JSON array
    unknown_macros TEXT,
    error TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,

    FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_documents_run ON documents(run_id);
CREATE INDEX IF NOT EXISTS idx_documents_class ON documents(run_id, classification);
CREATE INDEX IF NOT EXISTS idx_documents_page ON documents(page_id);

-- Table verdicts: one row per table of a document
CREATE TABLE IF NOT EXISTS table_verdicts (
    verdict_id INTEGER PRIMARY KEY AUTOINCREMENT,
    document_id INTEGER NOT NULL,
    table_index INTEGER NOT NULL,
    classification TEXT NOT NULL,
    reason TEXT,
    rule TEXT,
    tier TEXT,
    data_rows INTEGER DEFAULT 0,
    cols INTEGER DEFAULT 0,
    meaningful_words INTEGER DEFAULT 0,
    fill_percentage REAL DEFAULT 0,

    FOREIGN KEY (document_id) REFERENCES documents(document_id) ON DELETE CASCADE,
    UNIQUE(document_id, table_index)
);

CREATE INDEX IF NOT EXISTS idx_table_verdicts_document ON table_verdicts(document_id);
`
