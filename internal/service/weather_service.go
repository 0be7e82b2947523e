package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	"skywatch/internal/clients"
	"skywatch/internal/models"
	"skywatch/internal/repository"
)

// WeatherService runs the per-request ingestion flow: fetch, normalize,
// persist, fetch-previous. Everything is synchronous; the caller decides when
// and how often to poll. Latest answers from cache without touching the
// provider.
type WeatherService interface {
	FetchAndStore(ctx context.Context, lat, lon float64, source string) (*models.WeatherResult, error)
	Latest(ctx context.Context, lat, lon float64) (*models.WeatherResult, error)
	LocationName(ctx context.Context, lat, lon float64) string
}

type weatherService struct {
	repo      repository.WeatherRepository
	cacheRepo repository.CacheRepository
	client    clients.WeatherClient
}

func NewWeatherService(
	repo repository.WeatherRepository,
	cacheRepo repository.CacheRepository,
	client clients.WeatherClient,
) WeatherService {
	return &weatherService{repo: repo, cacheRepo: cacheRepo, client: client}
}

func (s *weatherService) FetchAndStore(ctx context.Context, lat, lon float64, source string) (*models.WeatherResult, error) {
	payload, err := s.client.FetchWeather(ctx, lat, lon)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch weather data: %w", err)
	}

	alerts := ExtractAlerts(payload)

	record := &models.WeatherRecord{
		Latitude:  lat,
		Longitude: lon,
		Source:    source,
	}
	record.Payload, _ = json.Marshal(payload)
	record.Alerts, _ = json.Marshal(alerts)

	// Persistence failure degrades, it never aborts the request: the user
	// still gets the weather, only history loses this entry. RecordID 0
	// marks the skip for the caller.
	if err := s.repo.Create(ctx, record); err != nil {
		log.Printf("Failed to save weather record, continuing without persistence: %v", err)
		record.ID = 0
	}

	// Insert and fetch-previous are two separate calls; see
	// WeatherRepository.GetLatest for the interleaving this allows.
	previous, err := s.repo.GetLatest(ctx, lat, lon, record.ID)
	if err != nil {
		log.Printf("Failed to fetch previous weather record: %v", err)
		previous = nil
	}

	if record.ID != 0 {
		s.cacheLatest(ctx, record)
		if err := s.cacheRepo.DeleteByPattern(ctx, historyKeyPrefix(lat, lon)+":*"); err != nil {
			log.Printf("Failed to invalidate history cache: %v", err)
		}
	}

	return &models.WeatherResult{
		Payload:   payload,
		Formatted: FormatWeather(payload),
		Alerts:    alerts,
		RecordID:  record.ID,
		Previous:  previous,
	}, nil
}

// Latest is the cache-aside read of the newest stored observation at a
// coordinate: cache hit answers directly, a miss falls through to the store
// and re-warms the cache. Returns nil when the location has no observations.
func (s *weatherService) Latest(ctx context.Context, lat, lon float64) (*models.WeatherResult, error) {
	key := latestKey(lat, lon)

	if raw, err := s.cacheRepo.Get(ctx, key); err == nil && raw != "" {
		var record models.WeatherRecord
		if err := json.Unmarshal([]byte(raw), &record); err == nil {
			return resultFromRecord(&record), nil
		}
		// Corrupt entry: drop it and fall through to the store.
		log.Printf("Dropping unreadable cached observation for %s", key)
		if err := s.cacheRepo.Delete(ctx, key); err != nil {
			log.Printf("Failed to drop cached observation: %v", err)
		}
	}

	record, err := s.repo.GetLatest(ctx, lat, lon, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest weather record: %w", err)
	}
	if record == nil {
		return nil, nil
	}

	s.cacheLatest(ctx, record)
	return resultFromRecord(record), nil
}

func (s *weatherService) cacheLatest(ctx context.Context, record *models.WeatherRecord) {
	data, err := json.Marshal(record)
	if err != nil {
		return
	}
	if err := s.cacheRepo.Set(ctx, latestKey(record.Latitude, record.Longitude), data, 10*time.Minute); err != nil {
		log.Printf("Failed to cache latest weather: %v", err)
	}
}

func resultFromRecord(record *models.WeatherRecord) *models.WeatherResult {
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

	return &models.WeatherResult{
		Payload:   payload,
		Formatted: FormatWeather(payload),
		Alerts:    alerts,
		RecordID:  record.ID,
	}
}

// LocationName resolves a coordinate to a display name. Any failure yields an
// empty name; the UI treats that as "no suggestion".
func (s *weatherService) LocationName(ctx context.Context, lat, lon float64) string {
	name, err := s.client.ReverseGeocode(ctx, lat, lon)
	if err != nil {
		log.Printf("Reverse geocoding failed: %v", err)
		return ""
	}
	return name
}

// Cache keys carry the exact coordinate text so that locations are grouped
// precisely the way the store groups them: bit-identical or not at all.
func latestKey(lat, lon float64) string {
	return "weather:last:" + coordKey(lat, lon)
}

func historyKeyPrefix(lat, lon float64) string {
	return "history:" + coordKey(lat, lon)
}

func coordKey(lat, lon float64) string {
	return strconv.FormatFloat(lat, 'f', -1, 64) + ":" + strconv.FormatFloat(lon, 'f', -1, 64)
}
