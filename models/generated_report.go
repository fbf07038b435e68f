package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GeneratedReport records a PDF produced from the composer
type GeneratedReport struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	// File metadata
	FileName   string `gorm:"not null" json:"file_name"`
	StorageKey string `gorm:"not null" json:"-"` // Not exposed in JSON
	FileSize   int64  `gorm:"not null" json:"file_size"`
	PageCount  int    `gorm:"not null" json:"page_count"`

	// Report identification, copied from the document at print time
	ReportDate string `json:"report_date,omitempty"`
	Reference  string `json:"reference,omitempty"`
	ClientName string `json:"client_name,omitempty"`
}

// BeforeCreate hook to generate UUID
func (r *GeneratedReport) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}

// GetDownloadURL returns the download route for this report
func (r *GeneratedReport) GetDownloadURL() string {
	return "/api/reports/" + r.ID + "/download"
}
