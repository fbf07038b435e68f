package services

import (
	"context"
	"errors"
	"fmt"

	"tim_report_app_go/models"

	"gorm.io/gorm"
)

var ErrReportNotFound = errors.New("generated report not found")

// ListGeneratedReports returns the most recent printed reports first
func ListGeneratedReports(ctx context.Context, db *gorm.DB, limit int) ([]models.GeneratedReport, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var reports []models.GeneratedReport
	if err := db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&reports).Error; err != nil {
		return nil, fmt.Errorf("failed to list generated reports: %w", err)
	}
	return reports, nil
}

// GetGeneratedReport loads one printed report
func GetGeneratedReport(ctx context.Context, db *gorm.DB, id string) (*models.GeneratedReport, error) {
	var report models.GeneratedReport
	err := db.WithContext(ctx).First(&report, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load generated report: %w", err)
	}
	return &report, nil
}
