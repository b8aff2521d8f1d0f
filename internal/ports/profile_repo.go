package ports

import (
	"context"

	"github.com/voxsplit/backend/internal/models"
)

type ProfileRepository interface {
	InsertProfile(ctx context.Context, p *models.Profile) (*models.Profile, error)

	// GetProfileByID returns the profile with its recordings loaded, or
	// (nil, nil) when no such profile exists.
	GetProfileByID(ctx context.Context, id int) (*models.Profile, error)

	ListProfiles(ctx context.Context, limit, offset int) ([]models.Profile, error)

	// DeleteProfile removes the profile row; recordings and their chunks
	// cascade in the database.
	DeleteProfile(ctx context.Context, id int) error
}
