package service

import (
	"context"
	"encoding/json"
	"time"

	"skywatch/internal/models"
)

// Hand-rolled fakes for the collaborators the services talk to. Each one
// records its calls so tests can assert on interaction, not just results.

type fakeLLM struct {
	response string
	err      error

	calls        int
	lastSystem   string
	lastUser     string
	lastWantJSON bool
}

func (f *fakeLLM) Complete(_ context.Context, systemPrompt, userPrompt string, wantJSON bool) (string, error) {
	f.calls++
	f.lastSystem = systemPrompt
	f.lastUser = userPrompt
	f.lastWantJSON = wantJSON
	return f.response, f.err
}

type fakeWeatherClient struct {
	payload  map[string]any
	fetchErr error
	name     string
	geoErr   error
}

func (f *fakeWeatherClient) FetchWeather(context.Context, float64, float64) (map[string]any, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.payload, nil
}

func (f *fakeWeatherClient) ReverseGeocode(context.Context, float64, float64) (string, error) {
	return f.name, f.geoErr
}

type fakeWeatherRepo struct {
	nextID    uint
	createErr error
	created   []*models.WeatherRecord

	latest        *models.WeatherRecord
	latestErr     error
	lastExcludeID uint
	byID          *models.WeatherRecord

	history    []*models.WeatherRecord
	historyErr error
}

func (f *fakeWeatherRepo) Create(_ context.Context, record *models.WeatherRecord) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	record.ID = f.nextID
	if record.ObservedAt.IsZero() {
		record.ObservedAt = time.Now().UTC()
	}
	f.created = append(f.created, record)
	return nil
}

func (f *fakeWeatherRepo) GetLatest(_ context.Context, _, _ float64, excludeID uint) (*models.WeatherRecord, error) {
	f.lastExcludeID = excludeID
	return f.latest, f.latestErr
}

func (f *fakeWeatherRepo) GetByID(context.Context, uint) (*models.WeatherRecord, error) {
	return f.byID, nil
}

func (f *fakeWeatherRepo) GetHistory(context.Context, float64, float64, int) ([]*models.WeatherRecord, error) {
	return f.history, f.historyErr
}

func (f *fakeWeatherRepo) Count(context.Context) (int64, error) {
	return int64(len(f.created)), nil
}

type fakeAdviceRepo struct {
	createErr error
	created   []*models.AdviceRecord

	trail    []*models.AdviceRecord
	trailErr error
}

func (f *fakeAdviceRepo) Create(_ context.Context, record *models.AdviceRecord) error {
	if f.createErr != nil {
		return f.createErr
	}
	record.ID = uint(len(f.created) + 1)
	f.created = append(f.created, record)
	return nil
}

func (f *fakeAdviceRepo) GetHistoryByLocation(context.Context, float64, float64, int) ([]*models.AdviceRecord, error) {
	return f.trail, f.trailErr
}

func (f *fakeAdviceRepo) Count(context.Context) (int64, error) {
	return int64(len(f.created)), nil
}

// fakeCache is an in-memory stand-in for the redis-backed repository. Values
// round-trip through the same JSON encoding the real one uses.
type fakeCache struct {
	store map[string]string

	setKeys      []string
	deletedGlobs []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{store: map[string]string{}}
}

func (f *fakeCache) Get(_ context.Context, key string) (string, error) {
	return f.store[key], nil
}

func (f *fakeCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	switch v := value.(type) {
	case string:
		f.store[key] = v
	case []byte:
		f.store[key] = string(v)
	}
	f.setKeys = append(f.setKeys, key)
	return nil
}

func (f *fakeCache) Delete(_ context.Context, key string) error {
	delete(f.store, key)
	return nil
}

func (f *fakeCache) DeleteByPattern(_ context.Context, pattern string) error {
	f.deletedGlobs = append(f.deletedGlobs, pattern)
	return nil
}

func (f *fakeCache) GetJSON(_ context.Context, key string, dest interface{}) error {
	raw, ok := f.store[key]
	if !ok {
		return nil
	}
	return json.Unmarshal([]byte(raw), dest)
}

func (f *fakeCache) SetJSON(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.store[key] = string(raw)
	f.setKeys = append(f.setKeys, key)
	return nil
}
