package models

import "time"

// AdviceRecord is one generated advisory, owned by exactly one WeatherRecord.
// A record may accumulate any number of advisories over re-evaluations.
// Append-only, retained indefinitely.
type AdviceRecord struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	IssuedAt        time.Time `gorm:"not null;index" json:"issued_at"`
	WeatherRecordID uint      `gorm:"not null;index" json:"weather_record_id"`
	AdviceText      string    `gorm:"not null" json:"advice_text"`
	UpdateType      string    `gorm:"not null" json:"update_type"`
}

// UpdateType values: which decision path produced the advisory.
const (
	UpdateForced = "forced"
	UpdateAuto   = "auto"
)
