package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/agentkits/memory/internal/model"
)

// UpsertMemoryEntry inserts a new memory entry, or, when an entry with the
// same namespace/key/content hash already exists, bumps its access
// bookkeeping and returns it unchanged instead of inserting a duplicate.
func (d *DB) UpsertMemoryEntry(ctx context.Context, e *model.MemoryEntry) (*model.MemoryEntry, error) {
	hash := model.MemoryEntryContentHash(e.Namespace, e.Key, e.Content)
	e.ContentHash = hash

	row := d.conn.QueryRowContext(ctx, `SELECT id FROM memory_entries WHERE namespace = ? AND key = ? AND content_hash = ?`,
		e.Namespace, e.Key, hash)
	var existingID string
	if err := row.Scan(&existingID); err == nil {
		if err := d.touchMemoryEntry(ctx, existingID); err != nil {
			return nil, err
		}
		return d.GetMemoryEntry(ctx, existingID)
	} else if err != sql.ErrNoRows {
		return nil, fmt.Errorf("store: memory entry dedup lookup: %w", err)
	}

	tags, _ := json.Marshal(e.Tags)
	metadata, _ := json.Marshal(e.Metadata)

	_, err := d.conn.ExecContext(ctx, `
		INSERT INTO memory_entries (
			id, key, content, type, namespace, tags, metadata, embedding,
			access_count, last_accessed_at, version, importance, decay_rate, created_at, content_hash
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Key, e.Content, e.Type, e.Namespace, string(tags), string(metadata), encodeEmbedding(e.Embedding),
		e.AccessCount, e.LastAccessedAt, e.Version, e.Importance, e.DecayRate, e.CreatedAt, e.ContentHash,
	)
	if err != nil {
		return nil, fmt.Errorf("store: insert memory entry: %w", err)
	}
	return e, nil
}

func (d *DB) touchMemoryEntry(ctx context.Context, id string) error {
	_, err := d.conn.ExecContext(ctx, `UPDATE memory_entries SET access_count = access_count + 1, last_accessed_at = ? WHERE id = ?`, model.UnixMilli(), id)
	if err != nil {
		return fmt.Errorf("store: touch memory entry: %w", err)
	}
	return nil
}

const memoryEntrySelectColumns = `
	SELECT id, key, content, type, namespace, tags, metadata, embedding,
		access_count, last_accessed_at, version, importance, decay_rate, created_at, content_hash
	FROM memory_entries`

// GetMemoryEntry fetches one memory entry by id. It does not record an
// access.
func (d *DB) GetMemoryEntry(ctx context.Context, id string) (*model.MemoryEntry, error) {
	row := d.conn.QueryRowContext(ctx, memoryEntrySelectColumns+` WHERE id = ?`, id)
	return scanMemoryEntry(row)
}

func scanMemoryEntry(row *sql.Row) (*model.MemoryEntry, error) {
	var e model.MemoryEntry
	var tagsJSON, metadataJSON string
	var embedding []byte
	var typ string
	err := row.Scan(&e.ID, &e.Key, &e.Content, &typ, &e.Namespace, &tagsJSON, &metadataJSON, &embedding,
		&e.AccessCount, &e.LastAccessedAt, &e.Version, &e.Importance, &e.DecayRate, &e.CreatedAt, &e.ContentHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: scan memory entry: %w", err)
	}
	e.Type = model.MemoryEntryType(typ)
	_ = json.Unmarshal([]byte(tagsJSON), &e.Tags)
	_ = json.Unmarshal([]byte(metadataJSON), &e.Metadata)
	e.Embedding = decodeEmbedding(embedding)
	return &e, nil
}

// UpdateMemoryEntry overwrites an entry's content fields, bumping its
// version and recomputing the content hash.
func (d *DB) UpdateMemoryEntry(ctx context.Context, id, content string, tags []string, metadata map[string]any) error {
	e, err := d.GetMemoryEntry(ctx, id)
	if err != nil {
		return err
	}
	tagsJSON, _ := json.Marshal(tags)
	metadataJSON, _ := json.Marshal(metadata)
	hash := model.MemoryEntryContentHash(e.Namespace, e.Key, content)

	_, err = d.conn.ExecContext(ctx, `
		UPDATE memory_entries SET content = ?, tags = ?, metadata = ?, version = version + 1, content_hash = ? WHERE id = ?`,
		content, string(tagsJSON), string(metadataJSON), hash, id)
	if err != nil {
		return fmt.Errorf("store: update memory entry: %w", err)
	}
	return nil
}

// SetMemoryEntryEmbedding writes the embedding vector for one memory entry.
func (d *DB) SetMemoryEntryEmbedding(ctx context.Context, id string, embedding []float32) error {
	_, err := d.conn.ExecContext(ctx, `UPDATE memory_entries SET embedding = ? WHERE id = ?`, encodeEmbedding(embedding), id)
	if err != nil {
		return fmt.Errorf("store: set memory entry embedding: %w", err)
	}
	return nil
}

// DeleteMemoryEntry removes an entry; the AFTER DELETE trigger keeps the FTS
// index consistent.
func (d *DB) DeleteMemoryEntry(ctx context.Context, id string) error {
	_, err := d.conn.ExecContext(ctx, `DELETE FROM memory_entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete memory entry: %w", err)
	}
	return nil
}

// ListMemoryEntriesByNamespace returns up to limit entries in a namespace,
// most recently created first.
func (d *DB) ListMemoryEntriesByNamespace(ctx context.Context, namespace string, limit int) ([]*model.MemoryEntry, error) {
	rows, err := d.conn.QueryContext(ctx, memoryEntrySelectColumns+` WHERE namespace = ? ORDER BY created_at DESC LIMIT ?`, namespace, limit)
	if err != nil {
		return nil, fmt.Errorf("store: list memory entries: %w", err)
	}
	defer rows.Close()
	return scanMemoryEntryRows(rows)
}

// MemoryEntriesWithNullEmbedding returns entries awaiting embedding, for the
// Embed worker's catch-up pass.
func (d *DB) MemoryEntriesWithNullEmbedding(ctx context.Context, limit int) ([]*model.MemoryEntry, error) {
	rows, err := d.conn.QueryContext(ctx, memoryEntrySelectColumns+` WHERE embedding IS NULL ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("store: memory entries without embedding: %w", err)
	}
	defer rows.Close()
	return scanMemoryEntryRows(rows)
}

// SearchMemoryEntriesFTS runs a full-text trigram search over key, content,
// namespace and tags, returning matches ranked by FTS5's bm25 score.
func (d *DB) SearchMemoryEntriesFTS(ctx context.Context, query string, limit int) ([]*model.MemoryEntry, error) {
	rows, err := d.conn.QueryContext(ctx, `
		SELECT m.id, m.key, m.content, m.type, m.namespace, m.tags, m.metadata, m.embedding,
			m.access_count, m.last_accessed_at, m.version, m.importance, m.decay_rate, m.created_at, m.content_hash
		FROM memory_entries_fts f
		JOIN memory_entries m ON m.rowid = f.rowid
		WHERE memory_entries_fts MATCH ?
		ORDER BY bm25(memory_entries_fts) LIMIT ?`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("store: search memory entries fts: %w", err)
	}
	defer rows.Close()
	return scanMemoryEntryRows(rows)
}

// SearchMemoryEntriesLike is the substring-match fallback used when the FTS
// index has no match (e.g. a query too short for trigram tokenization).
func (d *DB) SearchMemoryEntriesLike(ctx context.Context, query string, limit int) ([]*model.MemoryEntry, error) {
	like := "%" + query + "%"
	rows, err := d.conn.QueryContext(ctx, memoryEntrySelectColumns+`
		WHERE key LIKE ? OR content LIKE ? OR tags LIKE ?
		ORDER BY created_at DESC LIMIT ?`, like, like, like, limit)
	if err != nil {
		return nil, fmt.Errorf("store: search memory entries like: %w", err)
	}
	defer rows.Close()
	return scanMemoryEntryRows(rows)
}

// AllMemoryEntriesForVectorScan returns up to limit entries with a non-null
// embedding, for brute-force cosine scoring by the retrieval package.
func (d *DB) AllMemoryEntriesForVectorScan(ctx context.Context, limit int) ([]*model.MemoryEntry, error) {
	rows, err := d.conn.QueryContext(ctx, memoryEntrySelectColumns+` WHERE embedding IS NOT NULL ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("store: memory entries for vector scan: %w", err)
	}
	defer rows.Close()
	return scanMemoryEntryRows(rows)
}

func scanMemoryEntryRows(rows *sql.Rows) ([]*model.MemoryEntry, error) {
	var out []*model.MemoryEntry
	for rows.Next() {
		var e model.MemoryEntry
		var tagsJSON, metadataJSON string
		var embedding []byte
		var typ string
		if err := rows.Scan(&e.ID, &e.Key, &e.Content, &typ, &e.Namespace, &tagsJSON, &metadataJSON, &embedding,
			&e.AccessCount, &e.LastAccessedAt, &e.Version, &e.Importance, &e.DecayRate, &e.CreatedAt, &e.ContentHash); err != nil {
			return nil, fmt.Errorf("store: scan memory entry row: %w", err)
		}
		e.Type = model.MemoryEntryType(typ)
		_ = json.Unmarshal([]byte(tagsJSON), &e.Tags)
		_ = json.Unmarshal([]byte(metadataJSON), &e.Metadata)
		e.Embedding = decodeEmbedding(embedding)
		out = append(out, &e)
	}
	return out, rows.Err()
}
