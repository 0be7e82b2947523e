package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"skywatch/internal/models"
	"skywatch/internal/repository"
	"skywatch/internal/utils"
)

// HistoryService reconstructs the audit trail of a location: observations
// rendered in their own timezone with the per-location advisory trail
// attached, plus an Excel export of the same view.
type HistoryService interface {
	GetMergedHistory(ctx context.Context, lat, lon float64, limit int) ([]*models.HistoryEntry, error)
	ExportHistory(ctx context.Context, lat, lon float64, limit int) (string, error)
}

type HistoryConfig struct {
	DefaultLimit    int
	DefaultTimezone string
	ExportDir       string
}

type historyService struct {
	weatherRepo repository.WeatherRepository
	adviceRepo  repository.AdviceRepository
	cacheRepo   repository.CacheRepository
	config      HistoryConfig
}

func NewHistoryService(
	weatherRepo repository.WeatherRepository,
	adviceRepo repository.AdviceRepository,
	cacheRepo repository.CacheRepository,
	config HistoryConfig,
) HistoryService {
	if config.DefaultLimit <= 0 {
		config.DefaultLimit = 10
	}
	if config.DefaultTimezone == "" {
		config.DefaultTimezone = "Asia/Shanghai"
	}
	return &historyService{
		weatherRepo: weatherRepo,
		adviceRepo:  adviceRepo,
		cacheRepo:   cacheRepo,
		config:      config,
	}
}

func (s *historyService) GetMergedHistory(ctx context.Context, lat, lon float64, limit int) ([]*models.HistoryEntry, error) {
	if limit <= 0 {
		limit = s.config.DefaultLimit
	}

	cacheKey := fmt.Sprintf("%s:%d", historyKeyPrefix(lat, lon), limit)
	var cached []*models.HistoryEntry
	if err := s.cacheRepo.GetJSON(ctx, cacheKey, &cached); err == nil && len(cached) > 0 {
		return cached, nil
	}

	records, err := s.weatherRepo.GetHistory(ctx, lat, lon, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get weather history: %w", err)
	}

	// The advisory trail attached to every entry is the whole per-location
	// trail, independently limited; it is not scoped to the one record.
	adviceTrail, err := s.adviceRepo.GetHistoryByLocation(ctx, lat, lon, limit)
	if err != nil {
		log.Printf("Failed to get advice history: %v", err)
		adviceTrail = nil
	}

	entries := make([]*models.HistoryEntry, 0, len(records))
	for _, record := range records {
		entries = append(entries, s.buildEntry(record, adviceTrail))
	}

	if len(entries) > 0 {
		if err := s.cacheRepo.SetJSON(ctx, cacheKey, entries, 5*time.Minute); err != nil {
			log.Printf("Failed to cache history: %v", err)
		}
	}

	return entries, nil
}

func (s *historyService) buildEntry(record *models.WeatherRecord, adviceTrail []*models.AdviceRecord) *models.HistoryEntry {
	var payload map[string]any
	if err := json.Unmarshal(record.Payload, &payload); err != nil {
		log.Printf("Failed to decode payload of record %d: %v", record.ID, err)
	}

	var alerts []string
	if len(record.Alerts) > 0 {
		if err := json.Unmarshal(record.Alerts, &alerts); err != nil {
			log.Printf("Failed to decode alerts of record %d: %v", record.ID, err)
		}
	}
	if alerts == nil {
		alerts = []string{}
	}

	tzName, localTime := s.localize(payload, record.ObservedAt)

	return &models.HistoryEntry{
		ID:            record.ID,
		Timestamp:     localTime,
		Formatted:     FormatWeather(payload),
		Alerts:        alerts,
		Source:        record.Source,
		Timezone:      tzName,
		AdviceHistory: adviceTrail,
	}
}

// localize converts the stored UTC timestamp into the payload's timezone.
// An absent or unloadable timezone name falls back to the configured default,
// and to UTC if even the default is unavailable; a bad zone name must never
// fail the history call.
func (s *historyService) localize(payload map[string]any, observedAt time.Time) (string, string) {
	tzName := getString(payload, "timezone")
	if tzName == "" {
		tzName = s.config.DefaultTimezone
	}

	loc, err := time.LoadLocation(tzName)
	if err != nil {
		tzName = s.config.DefaultTimezone
		loc, err = time.LoadLocation(tzName)
		if err != nil {
			loc = time.UTC
		}
	}

	return tzName, observedAt.In(loc).Format("2006-01-02 15:04:05")
}

// ExportHistory writes the merged view into an .xlsx workbook and returns its
// path for the transport layer to serve.
func (s *historyService) ExportHistory(ctx context.Context, lat, lon float64, limit int) (string, error) {
	if limit <= 0 {
		limit = s.config.DefaultLimit
	}

	records, err := s.weatherRepo.GetHistory(ctx, lat, lon, limit)
	if err != nil {
		return "", fmt.Errorf("failed to get weather history: %w", err)
	}
	adviceTrail, err := s.adviceRepo.GetHistoryByLocation(ctx, lat, lon, limit)
	if err != nil {
		return "", fmt.Errorf("failed to get advice history: %w", err)
	}

	rows := make([]models.HistoryExportRow, 0, len(records))
	for _, record := range records {
		var payload map[string]any
		if err := json.Unmarshal(record.Payload, &payload); err != nil {
			log.Printf("Failed to decode payload of record %d: %v", record.ID, err)
		}

		tzName, localTime := s.localize(payload, record.ObservedAt)
		current := getMap(payload, "current")
		temp, hasTemp := lookupFloat(current, "temp")

		conditions := ""
		if weather := getFirstInArray(current, "weather"); weather != nil {
			conditions = getString(weather, "description")
		}

		rows = append(rows, models.HistoryExportRow{
			ObservedAt: localTime,
			Timezone:   tzName,
			Source:     record.Source,
			TempC:      temp,
			HasTemp:    hasTemp,
			Conditions: conditions,
			AlertCount: len(getArray(payload, "alerts")),
		})
	}

	filename := fmt.Sprintf("history_%g_%g_%s.xlsx",
		lat, lon, time.Now().UTC().Format("20060102_150405"))
	path := filepath.Join(s.config.ExportDir, filename)

	if err := utils.CreateHistoryWorkbook(path, rows, adviceTrail); err != nil {
		return "", fmt.Errorf("failed to create workbook: %w", err)
	}
	return path, nil
}
