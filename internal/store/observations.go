package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/agentkits/memory/internal/model"
)

// ObservationDedupWindowMillis is the lookback window for observation
// content-hash dedup.
const ObservationDedupWindowMillis = 60 * 1000

// InsertObservation stores one observation using template-only derivation.
// If an observation with the same content hash exists in the same session
// within the dedup window, that row is returned instead of inserting and
// inserted is false — callers must not count a dedup hit as new activity.
func (d *DB) InsertObservation(ctx context.Context, o *model.Observation) (saved *model.Observation, inserted bool, err error) {
	row := d.conn.QueryRowContext(ctx, `
		SELECT id FROM observations
		WHERE session_id = ? AND content_hash = ? AND timestamp >= ?
		ORDER BY timestamp DESC LIMIT 1`,
		o.SessionID, o.ContentHash, o.Timestamp-ObservationDedupWindowMillis)
	var existingID string
	if scanErr := row.Scan(&existingID); scanErr == nil {
		existing, getErr := d.GetObservation(ctx, existingID)
		return existing, false, getErr
	} else if scanErr != sql.ErrNoRows {
		return nil, false, fmt.Errorf("store: dedup lookup: %w", scanErr)
	}

	facts, _ := json.Marshal(o.Facts)
	concepts, _ := json.Marshal(o.Concepts)
	filesRead, _ := json.Marshal(o.FilesRead)
	filesModified, _ := json.Marshal(o.FilesModified)

	_, execErr := d.conn.ExecContext(ctx, `
		INSERT INTO observations (
			id, session_id, project, tool_name, tool_input, tool_response, cwd, timestamp,
			type, title, subtitle, narrative, facts, concepts, prompt_number,
			files_read, files_modified, content_hash, compressed_summary, is_compressed, embedding
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.SessionID, o.Project, o.ToolName, o.ToolInput, o.ToolResponse, o.Cwd, o.Timestamp,
		o.Type, o.Title, o.Subtitle, o.Narrative, string(facts), string(concepts), o.PromptNumber,
		string(filesRead), string(filesModified), o.ContentHash, o.CompressedSummary, boolToInt(o.IsCompressed), encodeEmbedding(o.Embedding),
	)
	if execErr != nil {
		return nil, false, fmt.Errorf("store: insert observation: %w", execErr)
	}
	return o, true, nil
}

// GetObservation fetches one observation by id.
func (d *DB) GetObservation(ctx context.Context, id string) (*model.Observation, error) {
	row := d.conn.QueryRowContext(ctx, observationSelectColumns+` WHERE id = ?`, id)
	return scanObservation(row)
}

const observationSelectColumns = `
	SELECT id, session_id, project, tool_name, tool_input, tool_response, cwd, timestamp,
		type, title, subtitle, narrative, facts, concepts, prompt_number,
		files_read, files_modified, content_hash, compressed_summary, is_compressed, embedding
	FROM observations`

func scanObservation(row *sql.Row) (*model.Observation, error) {
	var o model.Observation
	var factsJSON, conceptsJSON, filesReadJSON, filesModifiedJSON string
	var promptNumber sql.NullInt64
	var compressedSummary sql.NullString
	var isCompressed int
	var embedding []byte
	var typ string

	err := row.Scan(&o.ID, &o.SessionID, &o.Project, &o.ToolName, &o.ToolInput, &o.ToolResponse, &o.Cwd, &o.Timestamp,
		&typ, &o.Title, &o.Subtitle, &o.Narrative, &factsJSON, &conceptsJSON, &promptNumber,
		&filesReadJSON, &filesModifiedJSON, &o.ContentHash, &compressedSummary, &isCompressed, &embedding)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: scan observation: %w", err)
	}

	o.Type = model.ObservationType(typ)
	_ = json.Unmarshal([]byte(factsJSON), &o.Facts)
	_ = json.Unmarshal([]byte(conceptsJSON), &o.Concepts)
	_ = json.Unmarshal([]byte(filesReadJSON), &o.FilesRead)
	_ = json.Unmarshal([]byte(filesModifiedJSON), &o.FilesModified)
	if promptNumber.Valid {
		n := int(promptNumber.Int64)
		o.PromptNumber = &n
	}
	if compressedSummary.Valid {
		o.CompressedSummary = &compressedSummary.String
	}
	o.IsCompressed = isCompressed != 0
	o.Embedding = decodeEmbedding(embedding)
	return &o, nil
}

// RecentObservations returns up to limit observations for a session, newest
// first.
func (d *DB) RecentObservations(ctx context.Context, sessionID string, limit int) ([]*model.Observation, error) {
	return d.queryObservations(ctx, observationSelectColumns+` WHERE session_id = ? ORDER BY timestamp DESC LIMIT ?`, sessionID, limit)
}

// RecentObservationsByProject returns up to limit observations for a
// project across all its sessions, newest first.
func (d *DB) RecentObservationsByProject(ctx context.Context, project string, limit int) ([]*model.Observation, error) {
	return d.queryObservations(ctx, observationSelectColumns+` WHERE project = ? ORDER BY timestamp DESC LIMIT ?`, project, limit)
}

// ObservationsWithNullEmbedding returns uncompressed-embedding observations
// newest first, for the Embed worker's catch-up pass.
func (d *DB) ObservationsWithNullEmbedding(ctx context.Context, limit int) ([]*model.Observation, error) {
	return d.queryObservations(ctx, observationSelectColumns+` WHERE embedding IS NULL ORDER BY timestamp DESC LIMIT ?`, limit)
}

// ObservationsUncompressedOlderThan returns observation ids not yet
// compressed with timestamp before cutoff, bounded by limit.
func (d *DB) ObservationsUncompressedOlderThan(ctx context.Context, cutoff uint64, limit int) ([]string, error) {
	rows, err := d.conn.QueryContext(ctx, `SELECT id FROM observations WHERE is_compressed = 0 AND timestamp < ? ORDER BY timestamp ASC LIMIT ?`, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("store: uncompressed observations: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (d *DB) queryObservations(ctx context.Context, query string, args ...any) ([]*model.Observation, error) {
	rows, err := d.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: query observations: %w", err)
	}
	defer rows.Close()

	var out []*model.Observation
	for rows.Next() {
		var o model.Observation
		var factsJSON, conceptsJSON, filesReadJSON, filesModifiedJSON string
		var promptNumber sql.NullInt64
		var compressedSummary sql.NullString
		var isCompressed int
		var embedding []byte
		var typ string

		err := rows.Scan(&o.ID, &o.SessionID, &o.Project, &o.ToolName, &o.ToolInput, &o.ToolResponse, &o.Cwd, &o.Timestamp,
			&typ, &o.Title, &o.Subtitle, &o.Narrative, &factsJSON, &conceptsJSON, &promptNumber,
			&filesReadJSON, &filesModifiedJSON, &o.ContentHash, &compressedSummary, &isCompressed, &embedding)
		if err != nil {
			return nil, fmt.Errorf("store: scan observation row: %w", err)
		}
		o.Type = model.ObservationType(typ)
		_ = json.Unmarshal([]byte(factsJSON), &o.Facts)
		_ = json.Unmarshal([]byte(conceptsJSON), &o.Concepts)
		_ = json.Unmarshal([]byte(filesReadJSON), &o.FilesRead)
		_ = json.Unmarshal([]byte(filesModifiedJSON), &o.FilesModified)
		if promptNumber.Valid {
			n := int(promptNumber.Int64)
			o.PromptNumber = &n
		}
		if compressedSummary.Valid {
			o.CompressedSummary = &compressedSummary.String
		}
		o.IsCompressed = isCompressed != 0
		o.Embedding = decodeEmbedding(embedding)
		out = append(out, &o)
	}
	return out, rows.Err()
}

// SetObservationEmbedding writes the embedding vector for one observation.
func (d *DB) SetObservationEmbedding(ctx context.Context, id string, embedding []float32) error {
	_, err := d.conn.ExecContext(ctx, `UPDATE observations SET embedding = ? WHERE id = ?`, encodeEmbedding(embedding), id)
	if err != nil {
		return fmt.Errorf("store: set observation embedding: %w", err)
	}
	return nil
}

// ApplyEnrichment overwrites an observation's derived fields with an
// AI-enriched result.
func (d *DB) ApplyEnrichment(ctx context.Context, id, subtitle, narrative string, facts, concepts []string) error {
	factsJSON, _ := json.Marshal(capToLen(facts, 5))
	conceptsJSON, _ := json.Marshal(capToLen(concepts, 8))
	_, err := d.conn.ExecContext(ctx, `
		UPDATE observations SET subtitle = ?, narrative = ?, facts = ?, concepts = ? WHERE id = ?`,
		subtitle, narrative, string(factsJSON), string(conceptsJSON), id)
	if err != nil {
		return fmt.Errorf("store: apply enrichment: %w", err)
	}
	return nil
}

func capToLen(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}

// CompressObservation writes a dense AI summary, destroys the raw payload,
// and marks the row compressed. Irreversible.
func (d *DB) CompressObservation(ctx context.Context, id, summary string) error {
	_, err := d.conn.ExecContext(ctx, `
		UPDATE observations SET compressed_summary = ?, is_compressed = 1, tool_input = '{}', tool_response = '{}' WHERE id = ?`,
		summary, id)
	if err != nil {
		return fmt.Errorf("store: compress observation: %w", err)
	}
	return nil
}

// CountObservationsByCompression returns counts of compressed vs.
// uncompressed observations, for the lifecycle statistics reporter.
func (d *DB) CountObservationsByCompression(ctx context.Context) (compressed, uncompressed int, err error) {
	row := d.conn.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN is_compressed = 1 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN is_compressed = 0 THEN 1 ELSE 0 END), 0)
		FROM observations`)
	if err := row.Scan(&compressed, &uncompressed); err != nil {
		return 0, 0, fmt.Errorf("store: count observations by compression: %w", err)
	}
	return compressed, uncompressed, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
