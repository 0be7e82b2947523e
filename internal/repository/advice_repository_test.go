package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skywatch/internal/models"
)

func insertAdvice(t *testing.T, repo AdviceRepository, weatherRecordID uint, text, updateType string) *models.AdviceRecord {
	t.Helper()
	record := &models.AdviceRecord{
		WeatherRecordID: weatherRecordID,
		AdviceText:      text,
		UpdateType:      updateType,
	}
	require.NoError(t, repo.Create(context.Background(), record))
	return record
}

func TestAdviceRepositoryCreate(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	useFakeClock(t, base)

	db := openTestDB(t)
	weatherRepo := NewWeatherRepository(db)
	adviceRepo := NewAdviceRepository(db)

	w := insertWeather(t, weatherRepo, 1, 2, `{}`)
	a := insertAdvice(t, adviceRepo, w.ID, "Carry an umbrella.", models.UpdateForced)

	assert.NotZero(t, a.ID)
	assert.Equal(t, base, a.IssuedAt)
	assert.Equal(t, w.ID, a.WeatherRecordID)
}

func TestAdviceRepositoryGetHistoryByLocation(t *testing.T) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	fc := useFakeClock(t, base)

	db := openTestDB(t)
	weatherRepo := NewWeatherRepository(db)
	adviceRepo := NewAdviceRepository(db)
	ctx := context.Background()

	lat, lon := 39.9042, 116.4074

	w1 := insertWeather(t, weatherRepo, lat, lon, `{}`)
	fc.Advance(time.Hour)
	w2 := insertWeather(t, weatherRepo, lat, lon, `{}`)
	elsewhere := insertWeather(t, weatherRepo, 51.5, -0.12, `{}`)

	// Advisory trail spread over both observations at the location, plus one
	// at another location that must not leak in.
	a1 := insertAdvice(t, adviceRepo, w1.ID, "first", models.UpdateForced)
	fc.Advance(time.Hour)
	a2 := insertAdvice(t, adviceRepo, w2.ID, "second", models.UpdateAuto)
	fc.Advance(time.Hour)
	a3 := insertAdvice(t, adviceRepo, w1.ID, "third", models.UpdateAuto)
	insertAdvice(t, adviceRepo, elsewhere.ID, "other city", models.UpdateForced)

	t.Run("whole trail, newest first", func(t *testing.T) {
		trail, err := adviceRepo.GetHistoryByLocation(ctx, lat, lon, 10)
		require.NoError(t, err)
		require.Len(t, trail, 3)
		assert.Equal(t, a3.ID, trail[0].ID)
		assert.Equal(t, a2.ID, trail[1].ID)
		assert.Equal(t, a1.ID, trail[2].ID)
	})

	t.Run("limit truncates from the newest end", func(t *testing.T) {
		trail, err := adviceRepo.GetHistoryByLocation(ctx, lat, lon, 2)
		require.NoError(t, err)
		require.Len(t, trail, 2)
		assert.Equal(t, a3.ID, trail[0].ID)
		assert.Equal(t, a2.ID, trail[1].ID)
	})

	t.Run("unknown location is empty", func(t *testing.T) {
		trail, err := adviceRepo.GetHistoryByLocation(ctx, 0, 0, 10)
		require.NoError(t, err)
		assert.Empty(t, trail)
	})

	count, err := adviceRepo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)
}
