package repository

import (
	"context"
	"errors"

	"skywatch/internal/models"

	"gorm.io/gorm"
)

// WeatherRepository is the append-only store of observations. Locations are
// matched on bit-identical (latitude, longitude); two coordinates differing by
// a float epsilon are distinct locations with independent histories.
type WeatherRepository interface {
	Create(ctx context.Context, record *models.WeatherRecord) error
	GetLatest(ctx context.Context, lat, lon float64, excludeID uint) (*models.WeatherRecord, error)
	GetByID(ctx context.Context, id uint) (*models.WeatherRecord, error)
	GetHistory(ctx context.Context, lat, lon float64, limit int) ([]*models.WeatherRecord, error)
	Count(ctx context.Context) (int64, error)
}

type weatherRepository struct {
	db *gorm.DB
}

func NewWeatherRepository(db *gorm.DB) WeatherRepository {
	return &weatherRepository{db: db}
}

func (r *weatherRepository) Create(ctx context.Context, record *models.WeatherRecord) error {
	if record.ObservedAt.IsZero() {
		record.ObservedAt = clock.Now().UTC()
	}
	if record.Source == "" {
		record.Source = models.SourceAuto
	}
	return r.db.WithContext(ctx).Create(record).Error
}

// GetLatest returns the most recent observation at the exact coordinates,
// nil when there is none. With excludeID set it returns the newest record
// older than that id, which is how "the previous observation" is fetched
// right after inserting the current one. The exclusion is strictly-older
// (id < excludeID), not id != excludeID: a record with a later id is never a
// "previous", even when its timestamp sorts earlier.
//
// Insert and GetLatest are deliberately two separate calls with no
// transaction around them: when two requests for the same coordinates
// interleave, one request's fresh insert can be read back as the other's
// "previous". Accepted consistency gap, covered by a repository test.
func (r *weatherRepository) GetLatest(ctx context.Context, lat, lon float64, excludeID uint) (*models.WeatherRecord, error) {
	q := r.db.WithContext(ctx).
		Where("latitude = ? AND longitude = ?", lat, lon)
	if excludeID != 0 {
		q = q.Where("id < ?", excludeID)
	}

	var record models.WeatherRecord
	err := q.Order("observed_at DESC, id DESC").First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (r *weatherRepository) GetByID(ctx context.Context, id uint) (*models.WeatherRecord, error) {
	var record models.WeatherRecord
	err := r.db.WithContext(ctx).First(&record, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (r *weatherRepository) GetHistory(ctx context.Context, lat, lon float64, limit int) ([]*models.WeatherRecord, error) {
	var records []*models.WeatherRecord
	err := r.db.WithContext(ctx).
		Where("latitude = ? AND longitude = ?", lat, lon).
		Order("observed_at DESC, id DESC").
		Limit(limit).
		Find(&records).
		Error
	return records, err
}

func (r *weatherRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.WeatherRecord{}).
		Count(&count).
		Error
	return count, err
}
