package models

import "time"

// GeneralConfigUpdatedEvent is fanned out to every instance after a successful update.
type GeneralConfigUpdatedEvent struct {
	EventID   string        `json:"eventId"`
	Origin    string        `json:"origin"`
	Version   int64         `json:"version"`
	General   GeneralConfig `json:"general"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// Типы событий для realtime-клиентов.
const (
	EventGeneralConfigUpdated = "general_config_updated"
)
