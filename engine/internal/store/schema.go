package store

import "database/sql"

// Schema is the complete history schema. One row per content hash;
// enrichment columns are the only mutable content-bearing fields.
const Schema = `
CREATE TABLE IF NOT EXISTS clipboard_entries (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    content_hash    TEXT NOT NULL UNIQUE,
    content_type    TEXT NOT NULL CHECK (content_type IN ('text','image','url','file')),
    content         TEXT,
    content_preview TEXT,
    image_data      BLOB,
    image_format    TEXT,
    image_size      TEXT,
    is_url          INTEGER NOT NULL DEFAULT 0,
    url_title       TEXT,
    url_description TEXT,
    url_content     TEXT,
    url_status_code INTEGER,
    url_fetch_error TEXT,
    source_app      TEXT,
    created_at      INTEGER NOT NULL,
    accessed_at     INTEGER NOT NULL,
    access_count    INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_entries_type ON clipboard_entries(content_type);
CREATE INDEX IF NOT EXISTS idx_entries_created ON clipboard_entries(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_entries_accessed ON clipboard_entries(accessed_at DESC);
CREATE INDEX IF NOT EXISTS idx_entries_is_url ON clipboard_entries(is_url, created_at DESC);

-- FTS5 on searchable text (external content table, rowid-joined)
CREATE VIRTUAL TABLE IF NOT EXISTS entries_fts USING fts5(
    content, url_title, url_description, url_content,
    content='clipboard_entries', content_rowid='id',
    tokenize='unicode61 remove_diacritics 2'
);

-- Triggers to keep FTS5 in sync
CREATE TRIGGER IF NOT EXISTS entries_ai AFTER INSERT ON clipboard_entries BEGIN
    INSERT INTO entries_fts(rowid, content, url_title, url_description, url_content)
    VALUES (new.id, new.content, new.url_title, new.url_description, new.url_content);
END;
CREATE TRIGGER IF NOT EXISTS entries_ad AFTER DELETE ON clipboard_entries BEGIN
    INSERT INTO entries_fts(entries_fts, rowid, content, url_title, url_description, url_content)
    VALUES ('delete', old.id, old.content, old.url_title, old.url_description, old.url_content);
END;
CREATE TRIGGER IF NOT EXISTS entries_au AFTER UPDATE ON clipboard_entries BEGIN
    INSERT INTO entries_fts(entries_fts, rowid, content, url_title, url_description, url_content)
    VALUES ('delete', old.id, old.content, old.url_title, old.url_description, old.url_content);
    INSERT INTO entries_fts(rowid, content, url_title, url_description, url_content)
    VALUES (new.id, new.content, new.url_title, new.url_description, new.url_content);
END;
`

// ApplySchema creates all tables, indexes and triggers on the given database.
func ApplySchema(db *sql.DB) error {
	_, err := db.Exec(Schema)
	return err
}
