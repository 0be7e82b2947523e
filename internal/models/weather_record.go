package models

import (
	"time"

	"gorm.io/datatypes"
)

// WeatherRecord is one fetched weather snapshot for a coordinate pair.
// Records are append-only: inserted once at ingestion, never updated.
// Per coordinate they are totally ordered by (ObservedAt, ID); ID breaks ties
// when timestamps collide.
type WeatherRecord struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	ObservedAt time.Time      `gorm:"not null;index" json:"observed_at"`
	Latitude   float64        `gorm:"not null;index:idx_weather_location,priority:1" json:"latitude"`
	Longitude  float64        `gorm:"not null;index:idx_weather_location,priority:2" json:"longitude"`
	Payload    datatypes.JSON `gorm:"type:jsonb;not null" json:"payload"`
	Alerts     datatypes.JSON `gorm:"type:jsonb" json:"alerts"`
	Source     string         `gorm:"not null;default:'auto'" json:"source"`
}

// Provenance tags for WeatherRecord.Source. Display/audit only, decision
// logic never looks at them.
const (
	SourceManual = "manual"
	SourceAuto   = "auto"
)
