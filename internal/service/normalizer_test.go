package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatWeather(t *testing.T) {
	t.Run("complete payload", func(t *testing.T) {
		payload := map[string]any{
			"timezone": "Asia/Shanghai",
			"current": map[string]any{
				"temp":       21.5,
				"feels_like": 20.0,
				"humidity":   65.0,
				"wind_speed": 3.2,
				"pressure":   1013.0,
				"weather": []any{
					map[string]any{"main": "Clouds", "description": "scattered clouds"},
				},
			},
		}

		got := FormatWeather(payload)
		want := "Temperature: 21.5°C (feels like 20°C)\n" +
			"Humidity: 65%\n" +
			"Conditions: scattered clouds\n" +
			"Wind speed: 3.2 m/s\n" +
			"Pressure: 1013 hPa\n" +
			"Timezone: Asia/Shanghai"
		assert.Equal(t, want, got)
	})

	t.Run("missing fields degrade to placeholders", func(t *testing.T) {
		got := FormatWeather(map[string]any{})
		assert.Contains(t, got, "Temperature: N/A°C (feels like N/A°C)")
		assert.Contains(t, got, "Conditions: N/A")
		assert.Contains(t, got, "Timezone: N/A")
	})

	t.Run("wrongly typed fields degrade too", func(t *testing.T) {
		payload := map[string]any{
			"timezone": 42,
			"current": map[string]any{
				"temp":    "warm",
				"weather": "not an array",
			},
		}
		got := FormatWeather(payload)
		assert.Contains(t, got, "Temperature: N/A°C")
		assert.Contains(t, got, "Timezone: N/A")
	})

	t.Run("nil payload", func(t *testing.T) {
		assert.Equal(t, "Weather data unavailable", FormatWeather(nil))
	})
}

func TestExtractAlerts(t *testing.T) {
	t.Run("no alerts field", func(t *testing.T) {
		got := ExtractAlerts(map[string]any{})
		require.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("nil payload", func(t *testing.T) {
		got := ExtractAlerts(nil)
		require.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("well-formed alert", func(t *testing.T) {
		start := float64(1717243200)
		end := float64(1717254000)
		payload := map[string]any{
			"alerts": []any{
				map[string]any{
					"event":       "Thunderstorm Warning",
					"start":       start,
					"end":         end,
					"description": "Severe thunderstorms expected.",
					"sender_name": "Weather Bureau",
				},
			},
		}

		got := ExtractAlerts(payload)
		require.Len(t, got, 1)

		// Timestamps render in the test host's local zone, so compute the
		// expected strings the same way.
		want := fmt.Sprintf(
			"Alert: Thunderstorm Warning\nTime: %s - %s\nDescription: Severe thunderstorms expected.\nIssued by: Weather Bureau",
			time.Unix(int64(start), 0).Format("2006-01-02 15:04"),
			time.Unix(int64(end), 0).Format("2006-01-02 15:04"),
		)
		assert.Equal(t, want, got[0])
	})

	t.Run("malformed entries are skipped, not fatal", func(t *testing.T) {
		payload := map[string]any{
			"alerts": []any{
				"not an object",
				map[string]any{"event": "Missing times"},
				map[string]any{
					"event": "Flood Watch",
					"start": float64(1717243200),
					"end":   float64(1717254000),
				},
			},
		}

		got := ExtractAlerts(payload)
		require.Len(t, got, 1)
		assert.Contains(t, got[0], "Alert: Flood Watch")
		assert.Contains(t, got[0], "Description: \nIssued by: ")
	})
}
