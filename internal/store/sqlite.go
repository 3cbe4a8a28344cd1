// Package store persists terminal processing results in SQLite so they
// survive tracker eviction and process restarts.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/dgallion1/docchunk/internal/document"
)

// ResultStore persists results keyed by task id.
type ResultStore struct {
	db *sql.DB
}

// Open opens (or creates) a SQLite database at path with WAL mode enabled.
func Open(ctx context.Context, path string) (*ResultStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &ResultStore{db: db}, nil
}

// Close closes the database connection.
func (s *ResultStore) Close() error {
	return s.db.Close()
}

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS results (
	task_id TEXT PRIMARY KEY,
	document_id TEXT NOT NULL,
	status TEXT NOT NULL,
	chunk_count INTEGER NOT NULL,
	total_tokens INTEGER NOT NULL,
	strategy TEXT,
	duration_ns INTEGER NOT NULL,
	reason TEXT,
	detail TEXT,
	created_at TEXT NOT NULL,
	completed_at TEXT
);

CREATE INDEX IF NOT EXISTS idx_results_document ON results(document_id);

CREATE TABLE IF NOT EXISTS chunks (
	id TEXT PRIMARY KEY,
	task_id TEXT NOT NULL,
	document_id TEXT NOT NULL,
	idx INTEGER NOT NULL,
	text TEXT NOT NULL,
	token_count INTEGER NOT NULL,
	start_offset INTEGER NOT NULL,
	end_offset INTEGER NOT NULL,
	metadata TEXT NOT NULL,
	FOREIGN KEY(task_id) REFERENCES results(task_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_chunks_task ON chunks(task_id);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// SaveResult inserts or replaces a result and its chunks in one transaction.
func (s *ResultStore) SaveResult(ctx context.Context, res document.Result) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var completed string
	if !res.CompletedAt.IsZero() {
		completed = res.CompletedAt.UTC().Format(time.RFC3339Nano)
	}
	_, err = tx.ExecContext(ctx, `
INSERT INTO results (task_id, document_id, status, chunk_count, total_tokens, strategy, duration_ns, reason, detail, created_at, completed_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(task_id) DO UPDATE SET
	document_id=excluded.document_id,
	status=excluded.status,
	chunk_count=excluded.chunk_count,
	total_tokens=excluded.total_tokens,
	strategy=excluded.strategy,
	duration_ns=excluded.duration_ns,
	reason=excluded.reason,
	detail=excluded.detail,
	created_at=excluded.created_at,
	completed_at=excluded.completed_at;
`, res.TaskID, res.DocumentID, string(res.Status), res.ChunkCount, res.TotalTokens,
		res.Strategy, int64(res.Duration), res.Reason, res.Detail,
		res.CreatedAt.UTC().Format(time.RFC3339Nano), completed)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE task_id=?`, res.TaskID); err != nil {
		return err
	}
	if len(res.Chunks) > 0 {
		stmt, err := tx.PrepareContext(ctx, `
INSERT INTO chunks (id, task_id, document_id, idx, text, token_count, start_offset, end_offset, metadata)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, c := range res.Chunks {
			meta, err := json.Marshal(c.Metadata)
			if err != nil {
				return err
			}
			if _, err := stmt.ExecContext(ctx, c.ID, res.TaskID, c.DocumentID, c.Index,
				c.Text, c.TokenCount, c.Start, c.End, string(meta)); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// GetResult loads a result with its chunks. Missing task ids map to
// document.ErrNotFound.
func (s *ResultStore) GetResult(ctx context.Context, taskID string) (document.Result, error) {
	var (
		res       document.Result
		status    string
		duration  int64
		created   string
		completed sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
SELECT task_id, document_id, status, chunk_count, total_tokens, strategy, duration_ns, reason, detail, created_at, completed_at
FROM results
WHERE task_id = ?;
`, taskID).Scan(&res.TaskID, &res.DocumentID, &status, &res.ChunkCount, &res.TotalTokens,
		&res.Strategy, &duration, &res.Reason, &res.Detail, &created, &completed)
	if err == sql.ErrNoRows {
		return document.Result{}, fmt.Errorf("%w: task %s", document.ErrNotFound, taskID)
	}
	if err != nil {
		return document.Result{}, err
	}

	res.Status = document.Status(status)
	res.Duration = time.Duration(duration)
	if parsed, perr := time.Parse(time.RFC3339Nano, created); perr == nil {
		res.CreatedAt = parsed
	}
	if completed.Valid && completed.String != "" {
		if parsed, perr := time.Parse(time.RFC3339Nano, completed.String); perr == nil {
			res.CompletedAt = parsed
		}
	}

	res.Chunks, err = s.loadChunks(ctx, taskID)
	if err != nil {
		return document.Result{}, err
	}
	return res, nil
}

// ListResults returns recent results for a document, newest first, without
// chunk bodies.
func (s *ResultStore) ListResults(ctx context.Context, documentID string, limit int) ([]document.Result, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT task_id, document_id, status, chunk_count, total_tokens, strategy, duration_ns, reason, detail, created_at, completed_at
FROM results
WHERE document_id = ?
ORDER BY created_at DESC
LIMIT ?;
`, documentID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []document.Result
	for rows.Next() {
		var (
			res       document.Result
			status    string
			duration  int64
			created   string
			completed sql.NullString
		)
		if err := rows.Scan(&res.TaskID, &res.DocumentID, &status, &res.ChunkCount, &res.TotalTokens,
			&res.Strategy, &duration, &res.Reason, &res.Detail, &created, &completed); err != nil {
			return nil, err
		}
		res.Status = document.Status(status)
		res.Duration = time.Duration(duration)
		if parsed, perr := time.Parse(time.RFC3339Nano, created); perr == nil {
			res.CreatedAt = parsed
		}
		if completed.Valid && completed.String != "" {
			if parsed, perr := time.Parse(time.RFC3339Nano, completed.String); perr == nil {
				res.CompletedAt = parsed
			}
		}
		results = append(results, res)
	}
	return results, rows.Err()
}

// DeleteResult removes a result and its chunks.
func (s *ResultStore) DeleteResult(ctx context.Context, taskID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE task_id=?`, taskID); err != nil {
		return err
	}
	out, err := tx.ExecContext(ctx, `DELETE FROM results WHERE task_id=?`, taskID)
	if err != nil {
		return err
	}
	n, err := out.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: task %s", document.ErrNotFound, taskID)
	}
	return tx.Commit()
}

func (s *ResultStore) loadChunks(ctx context.Context, taskID string) ([]document.Chunk, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, document_id, idx, text, token_count, start_offset, end_offset, metadata
FROM chunks
WHERE task_id = ?
ORDER BY idx;
`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []document.Chunk
	for rows.Next() {
		var (
			c    document.Chunk
			meta string
		)
		if err := rows.Scan(&c.ID, &c.DocumentID, &c.Index, &c.Text, &c.TokenCount, &c.Start, &c.End, &meta); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(meta), &c.Metadata); err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}
