package infra

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/voxsplit/backend/internal/models"
	"github.com/voxsplit/backend/internal/ports"
)

type PostgresRecordingRepo struct {
	pool *pgxpool.Pool
}

func trim(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "…"
}

func NewPostgresRecordingRepo(pool *pgxpool.Pool) ports.RecordingRepository {
	return &PostgresRecordingRepo{pool: pool}
}

func (r *PostgresRecordingRepo) InsertRecording(ctx context.Context, rec *models.Recording) (*models.Recording, error) {
	query := `
		INSERT INTO recordings (profile_id, file_path, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	row := r.pool.QueryRow(ctx, query, rec.ProfileID, rec.FilePath, rec.Status)
	if err := row.Scan(&rec.ID, &rec.CreatedAt); err != nil {
		return nil, fmt.Errorf("insert recording: %w", err)
	}
	return rec, nil
}

func (r *PostgresRecordingRepo) GetRecordingByID(ctx context.Context, id int) (*models.Recording, error) {
	query := `
		SELECT id, profile_id, file_path, status, created_at
		FROM recordings
		WHERE id = $1
	`

	var rec models.Recording
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&rec.ID,
		&rec.ProfileID,
		&rec.FilePath,
		&rec.Status,
		&rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get recording by id: %w", err)
	}

	return &rec, nil
}

func (r *PostgresRecordingRepo) ListRecordings(ctx context.Context, limit, offset int) ([]models.Recording, error) {
	query := `
		SELECT id, profile_id, file_path, status, created_at
		FROM recordings
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list recordings: %w", err)
	}
	defer rows.Close()

	recs := []models.Recording{}
	for rows.Next() {
		var rec models.Recording
		if err := rows.Scan(&rec.ID, &rec.ProfileID, &rec.FilePath, &rec.Status, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan recording: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

func (r *PostgresRecordingRepo) UpdateRecordingStatus(ctx context.Context, id int, status string) error {
	query := `
		UPDATE recordings
		SET status = $1
		WHERE id = $2
	`
	tag, err := r.pool.Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("update recording status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update recording status: recording %d not found", id)
	}
	return nil
}

func (r *PostgresRecordingRepo) DeleteRecording(ctx context.Context, id int) error {
	// Chunks and tag links go with it via ON DELETE CASCADE.
	_, err := r.pool.Exec(ctx, `DELETE FROM recordings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete recording: %w", err)
	}
	return nil
}

func (r *PostgresRecordingRepo) MarkStaleProcessingFailed(ctx context.Context) (int, error) {
	query := `
		UPDATE recordings
		SET status = $1
		WHERE status = $2
	`
	tag, err := r.pool.Exec(ctx, query, models.StatusFailed, models.StatusProcessing)
	if err != nil {
		return 0, fmt.Errorf("mark stale processing failed: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *PostgresRecordingRepo) CompleteRecording(ctx context.Context, recordingID int, drafts []models.ChunkDraft) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("complete recording: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	insert := `
		INSERT INTO chunks (recording_id, title, transcript, start_time, end_time, audio_path)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	for _, d := range drafts {
		var audio *string
		if d.AudioPath != "" {
			audio = &d.AudioPath
		}
		if _, err := tx.Exec(ctx, insert, recordingID, d.Title, d.Transcript, d.Start, d.End, audio); err != nil {
			return fmt.Errorf("insert chunk %q: %w", trim(d.Title, 60), err)
		}
	}

	if _, err := tx.Exec(ctx,
		`UPDATE recordings SET status = $1 WHERE id = $2`,
		models.StatusCompleted, recordingID,
	); err != nil {
		return fmt.Errorf("complete recording: status: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *PostgresRecordingRepo) ListChunksByRecording(ctx context.Context, recordingID int) ([]models.Chunk, error) {
	query := `
		SELECT id, recording_id, title, transcript, start_time, end_time, audio_path, user_note, bookmark
		FROM chunks
		WHERE recording_id = $1
		ORDER BY start_time ASC
	`
	rows, err := r.pool.Query(ctx, query, recordingID)
	if err != nil {
		return nil, fmt.Errorf("list chunks: %w", err)
	}
	defer rows.Close()

	chunks := []models.Chunk{}
	for rows.Next() {
		var c models.Chunk
		if err := rows.Scan(
			&c.ID, &c.RecordingID, &c.Title, &c.Transcript,
			&c.StartTime, &c.EndTime, &c.AudioPath, &c.UserNote, &c.Bookmark,
		); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		chunks = append(chunks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.loadTags(ctx, chunks); err != nil {
		return nil, err
	}
	return chunks, nil
}

func (r *PostgresRecordingRepo) loadTags(ctx context.Context, chunks []models.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	byID := make(map[int]*models.Chunk, len(chunks))
	ids := make([]int32, 0, len(chunks))
	for i := range chunks {
		byID[chunks[i].ID] = &chunks[i]
		ids = append(ids, int32(chunks[i].ID))
	}

	query := `
		SELECT ct.chunk_id, t.name
		FROM chunk_tags ct
		JOIN tags t ON t.id = ct.tag_id
		WHERE ct.chunk_id = ANY($1)
		ORDER BY t.name ASC
	`
	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("load tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			chunkID int
			name    string
		)
		if err := rows.Scan(&chunkID, &name); err != nil {
			return fmt.Errorf("scan tag: %w", err)
		}
		if c, ok := byID[chunkID]; ok {
			c.Tags = append(c.Tags, name)
		}
	}
	return rows.Err()
}

func (r *PostgresRecordingRepo) CountChunksByRecording(ctx context.Context, recordingID int) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM chunks WHERE recording_id = $1`,
		recordingID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count chunks: %w", err)
	}
	return count, nil
}

func (r *PostgresRecordingRepo) DeleteChunksByRecording(ctx context.Context, recordingID int) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM chunks WHERE recording_id = $1`,
		recordingID,
	)
	if err != nil {
		return fmt.Errorf("delete chunks: %w", err)
	}
	return nil
}

func (r *PostgresRecordingRepo) UpdateChunkNote(ctx context.Context, chunkID int, note *string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE chunks SET user_note = $1 WHERE id = $2`,
		note, chunkID,
	)
	if err != nil {
		return fmt.Errorf("update chunk note: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update chunk note: chunk %d: %w", chunkID, ports.ErrChunkNotFound)
	}
	return nil
}
