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

type PostgresProfileRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresProfileRepo(pool *pgxpool.Pool) ports.ProfileRepository {
	return &PostgresProfileRepo{pool: pool}
}

func (r *PostgresProfileRepo) InsertProfile(ctx context.Context, p *models.Profile) (*models.Profile, error) {
	query := `
		INSERT INTO profiles (title, recorded_at, summary)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	row := r.pool.QueryRow(ctx, query, p.Title, p.RecordedAt, p.Summary)
	if err := row.Scan(&p.ID, &p.CreatedAt); err != nil {
		return nil, fmt.Errorf("insert profile: %w", err)
	}
	return p, nil
}

func (r *PostgresProfileRepo) GetProfileByID(ctx context.Context, id int) (*models.Profile, error) {
	query := `
		SELECT id, title, recorded_at, summary, created_at
		FROM profiles
		WHERE id = $1
	`

	var p models.Profile
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.Title,
		&p.RecordedAt,
		&p.Summary,
		&p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get profile by id: %w", err)
	}

	if err := r.loadRecordings(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PostgresProfileRepo) loadRecordings(ctx context.Context, p *models.Profile) error {
	query := `
		SELECT id, profile_id, file_path, status, created_at
		FROM recordings
		WHERE profile_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, p.ID)
	if err != nil {
		return fmt.Errorf("load profile recordings: %w", err)
	}
	defer rows.Close()

	p.Recordings = []models.Recording{}
	for rows.Next() {
		var rec models.Recording
		if err := rows.Scan(&rec.ID, &rec.ProfileID, &rec.FilePath, &rec.Status, &rec.CreatedAt); err != nil {
			return fmt.Errorf("scan profile recording: %w", err)
		}
		p.Recordings = append(p.Recordings, rec)
	}
	return rows.Err()
}

func (r *PostgresProfileRepo) ListProfiles(ctx context.Context, limit, offset int) ([]models.Profile, error) {
	query := `
		SELECT id, title, recorded_at, summary, created_at
		FROM profiles
		ORDER BY recorded_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	profiles := []models.Profile{}
	for rows.Next() {
		var p models.Profile
		if err := rows.Scan(&p.ID, &p.Title, &p.RecordedAt, &p.Summary, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func (r *PostgresProfileRepo) DeleteProfile(ctx context.Context, id int) error {
	// Recordings, chunks and tag links go with it via ON DELETE CASCADE.
	_, err := r.pool.Exec(ctx, `DELETE FROM profiles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	return nil
}
