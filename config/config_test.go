package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"SERVER_PORT", "LAYOUT_MEASURER", "PRINT_SURFACE_TTL_SECONDS", "EMAIL_TEST_MODE", "R2_ACCOUNT_ID"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, MeasurerHeuristic, cfg.LayoutMeasurer)
	assert.Equal(t, 60, cfg.PrintSurfaceTTLSecond)
	assert.True(t, cfg.EmailTestMode)
	assert.False(t, cfg.R2Configured())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("LAYOUT_MEASURER", "Chrome")
	t.Setenv("MAX_IMAGE_SIZE_MB", "4")
	t.Setenv("EMAIL_TEST_MODE", "off")
	t.Setenv("ENVIRONMENT", "production")

	cfg := Load()
	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, MeasurerChrome, cfg.LayoutMeasurer)
	assert.Equal(t, 4, cfg.MaxImageSizeMB)
	assert.False(t, cfg.EmailTestMode)
	assert.True(t, cfg.IsProduction())
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("LAYOUT_MEASURER", "ruler")
	t.Setenv("PRINT_SURFACE_TTL_SECONDS", "-5")
	t.Setenv("MAX_IMAGE_SIZE_MB", "lots")
	t.Setenv("EMAIL_TEST_MODE", "maybe")

	cfg := Load()
	assert.Equal(t, MeasurerHeuristic, cfg.LayoutMeasurer)
	assert.Equal(t, 60, cfg.PrintSurfaceTTLSecond)
	assert.Equal(t, 15, cfg.MaxImageSizeMB)
	assert.True(t, cfg.EmailTestMode)
}

func TestR2Configured(t *testing.T) {
	cfg := &Config{R2AccountID: "a", R2AccessKeyID: "b", R2SecretAccessKey: "c"}
	assert.False(t, cfg.R2Configured())
	cfg.R2BucketName = "reports"
	assert.True(t, cfg.R2Configured())
}
