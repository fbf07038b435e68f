package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Layout measurer names accepted by LAYOUT_MEASURER
const (
	MeasurerHeuristic = "heuristic"
	MeasurerChrome    = "chrome"
)

type Config struct {
	ServerPort  string
	DBPath      string
	Environment string
	UploadDir   string
	// Rendering
	ChromePath            string // Empty lets chromedp locate a browser
	LayoutMeasurer        string // heuristic or chrome
	LogoURL               string
	PrintSurfaceTTLSecond int
	MaxImageSizeMB        int
	// Preferences (Redis is optional, sqlite is used otherwise)
	RedisURL string
	// Email (Resend)
	ResendAPIKey  string
	EmailFrom     string
	EmailFromName string
	EmailTestMode bool // When true, emails are logged to console instead of sent
	// Cloudflare R2 Storage
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicURL       string
}

func Load() *Config {
	// Load .env file (ignore error if not present - use system env vars)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	measurer := strings.ToLower(getEnv("LAYOUT_MEASURER", MeasurerHeuristic))
	if measurer != MeasurerHeuristic && measurer != MeasurerChrome {
		log.Printf("[WARNING] Unknown LAYOUT_MEASURER %q, falling back to %s", measurer, MeasurerHeuristic)
		measurer = MeasurerHeuristic
	}

	return &Config{
		ServerPort:            getEnv("SERVER_PORT", "8080"),
		DBPath:                getEnv("DB_PATH", "db/app.db"),
		Environment:           getEnv("ENVIRONMENT", "development"),
		UploadDir:             getEnv("UPLOAD_DIR", "static/uploads"),
		ChromePath:            getEnv("CHROME_PATH", ""),
		LayoutMeasurer:        measurer,
		LogoURL:               getEnv("LOGO_URL", "/static/img/transitube.jpg"),
		PrintSurfaceTTLSecond: getEnvInt("PRINT_SURFACE_TTL_SECONDS", 60),
		MaxImageSizeMB:        getEnvInt("MAX_IMAGE_SIZE_MB", 15),
		RedisURL:              getEnv("REDIS_URL", ""),
		ResendAPIKey:          getEnv("RESEND_API_KEY", ""),
		EmailFrom:             getEnv("EMAIL_FROM", "rapports@transitube.com"),
		EmailFromName:         getEnv("EMAIL_FROM_NAME", "TIM Transitube"),
		EmailTestMode:         getEnvBool("EMAIL_TEST_MODE", true), // Default true for safety
		R2AccountID:           getEnv("R2_ACCOUNT_ID", ""),
		R2AccessKeyID:         getEnv("R2_ACCESS_KEY_ID", ""),
		R2SecretAccessKey:     getEnv("R2_SECRET_ACCESS_KEY", ""),
		R2BucketName:          getEnv("R2_BUCKET_NAME", ""),
		R2PublicURL:           getEnv("R2_PUBLIC_URL", ""),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		log.Printf("Using default value for %s: %s", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	// Accept common boolean representations
	switch strings.ToLower(value) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		return defaultValue
	}
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		log.Printf("[WARNING] Invalid value for %s: %q, using %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

// R2Configured reports whether every R2 credential is present
func (c *Config) R2Configured() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2SecretAccessKey != "" && c.R2BucketName != ""
}

// IsProduction reports whether the server runs in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
