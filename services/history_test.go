package services

import (
	"context"
	"testing"
	"time"

	"tim_report_app_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListGeneratedReports(t *testing.T) {
	testDB := setupTestDB(t)
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	for i, ref := range []string{"A", "B", "C"} {
		require.NoError(t, testDB.Create(&models.GeneratedReport{
			CreatedAt:  base.Add(time.Duration(i) * time.Hour),
			FileName:   "intervention-draft.pdf",
			StorageKey: "reports/2024-03/" + ref,
			FileSize:   10,
			PageCount:  1,
			Reference:  ref,
		}).Error)
	}

	reports, err := ListGeneratedReports(ctx, testDB, 0)
	require.NoError(t, err)
	require.Len(t, reports, 3)
	assert.Equal(t, "C", reports[0].Reference, "newest first")
	assert.Equal(t, "A", reports[2].Reference)

	limited, err := ListGeneratedReports(ctx, testDB, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestGetGeneratedReport(t *testing.T) {
	testDB := setupTestDB(t)
	ctx := context.Background()

	r := &models.GeneratedReport{FileName: "a.pdf", StorageKey: "reports/a.pdf", FileSize: 1, PageCount: 1}
	require.NoError(t, testDB.Create(r).Error)
	assert.Equal(t, "/api/reports/"+r.ID+"/download", r.GetDownloadURL())

	got, err := GetGeneratedReport(ctx, testDB, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "reports/a.pdf", got.StorageKey)

	_, err = GetGeneratedReport(ctx, testDB, "missing")
	assert.ErrorIs(t, err, ErrReportNotFound)
}
