package models

import "time"

// Preference keys
const (
	PreferenceHidePreview = "hidePreview"
)

// Preference is a persisted UI setting, independent of any report
type Preference struct {
	Key       string    `gorm:"primarykey" json:"key"`
	Value     string    `gorm:"not null" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
