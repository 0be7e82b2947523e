package service

import "math"

// tempDeltaThreshold is the surface temperature change, in display units,
// past which an advisory goes stale.
const tempDeltaThreshold = 5.0

// NeedsUpdate is the rule-based staleness check: does the current snapshot
// differ enough from the previous one to warrant a new advisory. It is the
// simplified fallback path; the production flow defers the same judgment to
// the model's auto-mode verdict. Both share one contract: true means
// "generate and persist a new advisory now".
func NeedsUpdate(current, previous map[string]any) bool {
	// First observation at a location always warrants an advisory.
	if previous == nil {
		return true
	}

	currentTemp := getFloat(getMap(current, "current"), "temp")
	previousTemp := getFloat(getMap(previous, "current"), "temp")
	if math.Abs(currentTemp-previousTemp) > tempDeltaThreshold {
		return true
	}

	currentMain := getString(getFirstInArray(getMap(current, "current"), "weather"), "main")
	previousMain := getString(getFirstInArray(getMap(previous, "current"), "weather"), "main")
	if currentMain != previousMain {
		return true
	}

	if len(getArray(current, "alerts")) != len(getArray(previous, "alerts")) {
		return true
	}

	return false
}
