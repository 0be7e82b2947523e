package repository

import (
	"context"

	"skywatch/internal/models"

	"gorm.io/gorm"
)

// AdviceRepository is the append-only store of generated advisories.
// No update or delete paths exist.
type AdviceRepository interface {
	Create(ctx context.Context, record *models.AdviceRecord) error
	GetHistoryByLocation(ctx context.Context, lat, lon float64, limit int) ([]*models.AdviceRecord, error)
	Count(ctx context.Context) (int64, error)
}

type adviceRepository struct {
	db *gorm.DB
}

func NewAdviceRepository(db *gorm.DB) AdviceRepository {
	return &adviceRepository{db: db}
}

func (r *adviceRepository) Create(ctx context.Context, record *models.AdviceRecord) error {
	if record.IssuedAt.IsZero() {
		record.IssuedAt = clock.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(record).Error
}

// GetHistoryByLocation joins through weather_records on the coordinate pair:
// the whole advisory trail of a location regardless of which observation each
// advisory is attached to, newest first.
func (r *adviceRepository) GetHistoryByLocation(ctx context.Context, lat, lon float64, limit int) ([]*models.AdviceRecord, error) {
	var records []*models.AdviceRecord
	err := r.db.WithContext(ctx).
		Joins("JOIN weather_records ON weather_records.id = advice_records.weather_record_id").
		Where("weather_records.latitude = ? AND weather_records.longitude = ?", lat, lon).
		Order("advice_records.issued_at DESC, advice_records.id DESC").
		Limit(limit).
		Find(&records).
		Error
	return records, err
}

func (r *adviceRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.AdviceRecord{}).
		Count(&count).
		Error
	return count, err
}
