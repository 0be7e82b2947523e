package service

import (
	"fmt"
	"log"
	"strconv"
	"time"
)

// notAvailable is the display marker for fields the provider did not send.
const notAvailable = "N/A"

// FormatWeather renders the current-conditions block of a raw payload as
// display text. It never fails: absent or malformed fields degrade to the
// N/A marker because this string backs user-facing display directly.
func FormatWeather(payload map[string]any) string {
	if payload == nil {
		return "Weather data unavailable"
	}

	current := getMap(payload, "current")

	description := notAvailable
	if weather := getFirstInArray(current, "weather"); weather != nil {
		if d := getString(weather, "description"); d != "" {
			description = d
		}
	}

	timezone := getString(payload, "timezone")
	if timezone == "" {
		timezone = notAvailable
	}

	return fmt.Sprintf(
		"Temperature: %s°C (feels like %s°C)\n"+
			"Humidity: %s%%\n"+
			"Conditions: %s\n"+
			"Wind speed: %s m/s\n"+
			"Pressure: %s hPa\n"+
			"Timezone: %s",
		numOrNA(current, "temp"),
		numOrNA(current, "feels_like"),
		numOrNA(current, "humidity"),
		description,
		numOrNA(current, "wind_speed"),
		numOrNA(current, "pressure"),
		timezone,
	)
}

// ExtractAlerts renders each alert entry of the payload as a fixed-shape
// display block with epoch timestamps converted to local calendar strings.
// No alerts field, or an empty one, yields an empty slice. A malformed entry
// is skipped with a warning; it never aborts the remaining alerts.
func ExtractAlerts(payload map[string]any) []string {
	alerts := []string{}
	if payload == nil {
		return alerts
	}

	for i, entry := range getArray(payload, "alerts") {
		alert, ok := entry.(map[string]any)
		if !ok {
			log.Printf("Skipping malformed alert entry %d: not an object", i)
			continue
		}

		event := getString(alert, "event")
		start, startOK := lookupFloat(alert, "start")
		end, endOK := lookupFloat(alert, "end")
		if event == "" || !startOK || !endOK {
			log.Printf("Skipping malformed alert entry %d: missing event or time range", i)
			continue
		}

		startTime := time.Unix(int64(start), 0).Format("2006-01-02 15:04")
		endTime := time.Unix(int64(end), 0).Format("2006-01-02 15:04")

		alerts = append(alerts, fmt.Sprintf(
			"Alert: %s\nTime: %s - %s\nDescription: %s\nIssued by: %s",
			event, startTime, endTime,
			getString(alert, "description"),
			getString(alert, "sender_name"),
		))
	}

	return alerts
}

func numOrNA(m map[string]any, key string) string {
	v, ok := lookupFloat(m, key)
	if !ok {
		return notAvailable
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
