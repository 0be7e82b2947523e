package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// WeatherClient talks to the OpenWeatherMap One Call and geocoding APIs.
// FetchWeather returns the raw payload untouched; parsing meaning out of it
// is the service layer's job.
type WeatherClient interface {
	FetchWeather(ctx context.Context, lat, lon float64) (map[string]any, error)
	ReverseGeocode(ctx context.Context, lat, lon float64) (string, error)
}

type WeatherConfig struct {
	APIKey  string
	APIURL  string
	GeoURL  string
	Units   string
	Lang    string
	Timeout time.Duration
}

type weatherClient struct {
	apiKey string
	apiURL string
	geoURL string
	units  string
	lang   string
	client *http.Client
}

// StatusError is returned when the upstream answers with a non-2xx status.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("weather API returned status %d: %s", e.Status, e.Body)
}

func NewWeatherClient(config WeatherConfig) WeatherClient {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &weatherClient{
		apiKey: config.APIKey,
		apiURL: config.APIURL,
		geoURL: config.GeoURL,
		units:  config.Units,
		lang:   config.Lang,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:    10,
				IdleConnTimeout: 30 * time.Second,
			},
		},
	}
}

func (c *weatherClient) FetchWeather(ctx context.Context, lat, lon float64) (map[string]any, error) {
	params := url.Values{}
	params.Set("lat", fmt.Sprintf("%f", lat))
	params.Set("lon", fmt.Sprintf("%f", lon))
	params.Set("appid", c.apiKey)
	params.Set("units", c.units)
	if c.lang != "" {
		params.Set("lang", c.lang)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", c.apiURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		// Covers timeouts and network errors alike; the caller only
		// needs to know there is no payload.
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("weather API timeout: %w", err)
		}
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Status: resp.StatusCode}
	}

	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode JSON: %w", err)
	}
	return payload, nil
}

// ReverseGeocode resolves a coordinate to a "City, State, Country" display
// string. Failures return an empty name, never an error the caller has to
// branch on beyond logging.
func (c *weatherClient) ReverseGeocode(ctx context.Context, lat, lon float64) (string, error) {
	if c.apiKey == "" {
		return "", nil
	}

	params := url.Values{}
	params.Set("lat", fmt.Sprintf("%f", lat))
	params.Set("lon", fmt.Sprintf("%f", lon))
	params.Set("limit", "1")
	params.Set("appid", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, "GET", c.geoURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{Status: resp.StatusCode}
	}

	var results []struct {
		Name    string `json:"name"`
		State   string `json:"state"`
		Country string `json:"country"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return "", fmt.Errorf("decode JSON: %w", err)
	}
	if len(results) == 0 {
		return "", nil
	}

	display := results[0].Name
	if results[0].State != "" {
		display += ", " + results[0].State
	}
	if results[0].Country != "" {
		display += ", " + results[0].Country
	}
	return display, nil
}
