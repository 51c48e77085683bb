package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/yourusername/odds-backtester/internal/models"
)

// VerdictRepository defines the interface for validation verdict storage
type VerdictRepository interface {
	Save(ctx context.Context, record *models.VerdictRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.VerdictRecord, error)
	// GetLatest returns the most recent verdict for a domain or models.ErrNotFound
	GetLatest(ctx context.Context, domain string) (*models.VerdictRecord, error)
	// List returns verdicts newest first; an empty domain lists every domain
	List(ctx context.Context, domain string, limit int) ([]*models.VerdictRecord, error)
	Close() error
}
