package models

// WeatherResult is what a submitted observation returns to the caller:
// the raw payload, the rendered summary, extracted alerts, the new record id
// (0 when persistence was skipped) and the prior record at the same
// coordinates, if any.
type WeatherResult struct {
	Payload   map[string]any `json:"weather"`
	Formatted string         `json:"formatted"`
	Alerts    []string       `json:"alerts"`
	RecordID  uint           `json:"record_id"`
	Previous  *WeatherRecord `json:"previous_record,omitempty"`
}

// AdviceRequest carries the snapshots the generator reasons over.
// LastUpdate is the payload at the time of the last advisory, Previous the
// immediately preceding observation; both are optional context.
type AdviceRequest struct {
	Current     map[string]any
	LastUpdate  map[string]any
	Previous    map[string]any
	RecordID    uint
	ForceUpdate bool
}

// AdviceResult is always well-formed: generation failures surface as a
// fallback Advice with NeedUpdate=false, never as an error.
type AdviceResult struct {
	Advice     string `json:"advice"`
	NeedUpdate bool   `json:"need_update"`
}

// HistoryExportRow is one observation flattened for the Excel export.
type HistoryExportRow struct {
	ObservedAt string
	Timezone   string
	Source     string
	TempC      float64
	HasTemp    bool
	Conditions string
	AlertCount int
}

// HistoryEntry is one observation reconstructed for display: the stored UTC
// timestamp rendered in the observation's own timezone, plus the whole
// per-location advisory trail.
type HistoryEntry struct {
	ID            uint            `json:"id"`
	Timestamp     string          `json:"timestamp"`
	Formatted     string          `json:"formatted"`
	Alerts        []string        `json:"alerts"`
	Source        string          `json:"source"`
	Timezone      string          `json:"timezone"`
	AdviceHistory []*AdviceRecord `json:"advice_history"`
}
