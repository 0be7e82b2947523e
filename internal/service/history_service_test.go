package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skywatch/internal/models"
)

func historyFixture(t *testing.T) (*fakeWeatherRepo, *fakeAdviceRepo) {
	t.Helper()

	observedAt := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	weatherRepo := &fakeWeatherRepo{
		history: []*models.WeatherRecord{
			{
				ID:         2,
				ObservedAt: observedAt,
				Latitude:   10,
				Longitude:  20,
				Payload:    []byte(`{"timezone":"America/New_York","current":{"temp":3.0,"weather":[{"main":"Snow","description":"light snow"}]}}`),
				Alerts:     []byte(`["Alert: Winter Storm"]`),
				Source:     models.SourceAuto,
			},
			{
				ID:         1,
				ObservedAt: observedAt.Add(-time.Hour),
				Latitude:   10,
				Longitude:  20,
				Payload:    []byte(`{"current":{"temp":5.0}}`),
				Source:     models.SourceManual,
			},
		},
	}
	adviceRepo := &fakeAdviceRepo{
		trail: []*models.AdviceRecord{
			{ID: 11, WeatherRecordID: 2, AdviceText: "Bundle up.", UpdateType: models.UpdateAuto},
			{ID: 10, WeatherRecordID: 1, AdviceText: "Mild day.", UpdateType: models.UpdateForced},
		},
	}
	return weatherRepo, adviceRepo
}

func TestGetMergedHistory(t *testing.T) {
	weatherRepo, adviceRepo := historyFixture(t)
	svc := NewHistoryService(weatherRepo, adviceRepo, newFakeCache(), HistoryConfig{
		DefaultTimezone: "Asia/Shanghai",
	})

	entries, err := svc.GetMergedHistory(context.Background(), 10, 20, 5)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	t.Run("timestamps render in the observation's own timezone", func(t *testing.T) {
		assert.Equal(t, "America/New_York", entries[0].Timezone)
		assert.Equal(t, "2025-01-01 07:00:00", entries[0].Timestamp)
	})

	t.Run("missing timezone falls back to the default", func(t *testing.T) {
		assert.Equal(t, "Asia/Shanghai", entries[1].Timezone)
		assert.Equal(t, "2025-01-01 19:00:00", entries[1].Timestamp)
	})

	t.Run("alerts and advisory trail are attached", func(t *testing.T) {
		assert.Equal(t, []string{"Alert: Winter Storm"}, entries[0].Alerts)
		assert.Equal(t, []string{}, entries[1].Alerts, "never nil, even without alerts")

		// The trail is per-location, so every entry carries the whole of it.
		require.Len(t, entries[0].AdviceHistory, 2)
		assert.Equal(t, entries[0].AdviceHistory, entries[1].AdviceHistory)
	})

	t.Run("formatted summary comes from the stored payload", func(t *testing.T) {
		assert.Contains(t, entries[0].Formatted, "Conditions: light snow")
	})
}

func TestGetMergedHistoryUnknownTimezoneFallsBack(t *testing.T) {
	weatherRepo := &fakeWeatherRepo{
		history: []*models.WeatherRecord{
			{
				ID:         1,
				ObservedAt: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
				Payload:    []byte(`{"timezone":"Not/AZone","current":{"temp":1.0}}`),
				Source:     models.SourceAuto,
			},
		},
	}
	svc := NewHistoryService(weatherRepo, &fakeAdviceRepo{}, newFakeCache(), HistoryConfig{
		DefaultTimezone: "Asia/Shanghai",
	})

	entries, err := svc.GetMergedHistory(context.Background(), 1, 2, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Asia/Shanghai", entries[0].Timezone)
	assert.Equal(t, "2025-01-01 20:00:00", entries[0].Timestamp)
}

func TestGetMergedHistoryCaching(t *testing.T) {
	weatherRepo, adviceRepo := historyFixture(t)
	cache := newFakeCache()
	svc := NewHistoryService(weatherRepo, adviceRepo, cache, HistoryConfig{})

	first, err := svc.GetMergedHistory(context.Background(), 10, 20, 5)
	require.NoError(t, err)
	assert.Contains(t, cache.setKeys, "history:10:20:5")

	// Second call is served from cache: cut the repo off to prove it.
	weatherRepo.historyErr = errors.New("must not be called")
	second, err := svc.GetMergedHistory(context.Background(), 10, 20, 5)
	require.NoError(t, err)

	require.Len(t, second, len(first))
	assert.Equal(t, first[0].ID, second[0].ID)
	assert.Equal(t, first[0].Timestamp, second[0].Timestamp)
}

func TestGetMergedHistoryAdviceFailureDegrades(t *testing.T) {
	weatherRepo, _ := historyFixture(t)
	adviceRepo := &fakeAdviceRepo{trailErr: errors.New("join broke")}
	svc := NewHistoryService(weatherRepo, adviceRepo, newFakeCache(), HistoryConfig{})

	entries, err := svc.GetMergedHistory(context.Background(), 10, 20, 5)
	require.NoError(t, err, "observations still come back without the trail")
	require.Len(t, entries, 2)
	assert.Empty(t, entries[0].AdviceHistory)
}

func TestExportHistory(t *testing.T) {
	weatherRepo, adviceRepo := historyFixture(t)
	dir := t.TempDir()
	svc := NewHistoryService(weatherRepo, adviceRepo, newFakeCache(), HistoryConfig{
		ExportDir: dir,
	})

	path, err := svc.ExportHistory(context.Background(), 10, 20, 5)
	require.NoError(t, err)

	assert.Equal(t, dir, filepath.Dir(path))
	assert.True(t, strings.HasPrefix(filepath.Base(path), "history_10_20_"))
	assert.True(t, strings.HasSuffix(path, ".xlsx"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}
