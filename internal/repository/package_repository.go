package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jpfielding/dicometa/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned when no record has the requested id
var ErrNotFound = errors.New("record not found")

// PackageRepository handles package record database operations
type PackageRepository struct {
	db *gorm.DB
}

// NewPackageRepository creates a new package repository
func NewPackageRepository(db *gorm.DB) *PackageRepository {
	return &PackageRepository{db: db}
}

// Save inserts the record, or replaces the row with the same id
func (r *PackageRepository) Save(ctx context.Context, rec *models.PackageRecord) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(rec).Error
	if err != nil {
		return fmt.Errorf("failed to save package: %w", err)
	}
	return nil
}

// GetByID retrieves one package record
func (r *PackageRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.PackageRecord, error) {
	var rec models.PackageRecord
	err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get package: %w", err)
	}
	return &rec, nil
}

// List returns the most recently extracted packages first
func (r *PackageRepository) List(ctx context.Context, limit, offset int) ([]models.PackageRecord, error) {
	var recs []models.PackageRecord
	query := r.db.WithContext(ctx).Order("extracted_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	if err := query.Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to list packages: %w", err)
	}
	return recs, nil
}
