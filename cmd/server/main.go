package main

import (
	"context"
	"log"
	"time"

	"tim_report_app_go/config"
	"tim_report_app_go/db"
	"tim_report_app_go/handlers"
	"tim_report_app_go/middleware"
	"tim_report_app_go/services"
	"tim_report_app_go/templates/report"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

func main() {
	cfg := config.Load()

	if err := db.Initialize(cfg.DBPath, cfg.Environment); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := db.AutoMigrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	storage := services.NewStorage(cfg)

	// Preferences live in Redis when configured, in sqlite otherwise
	var prefs services.PreferenceStore = services.NewGormPreferenceStore(db.DB)
	if cfg.RedisURL != "" {
		redisPrefs, err := services.NewRedisPreferenceStore(context.Background(), cfg.RedisURL)
		if err != nil {
			log.Printf("[WARNING] Redis unavailable (%v), keeping preferences in sqlite", err)
		} else {
			defer redisPrefs.Close()
			prefs = redisPrefs
			log.Println("[INFO] Preferences stored in Redis")
		}
	}

	browser := services.NewChromeBrowser(cfg.ChromePath)
	defer browser.Close()

	var measurer services.Measurer = services.NewHeuristicMeasurer()
	if cfg.LayoutMeasurer == config.MeasurerChrome {
		measurer = services.NewChromeMeasurer(browser)
		log.Println("[INFO] Layout measured with headless Chrome")
	}

	footer := report.Footer(cfg.LogoURL)
	workspace := services.NewWorkspace(services.WorkspaceOptions{
		Renderer:     services.NewRenderer(cfg.LogoURL),
		Paginator:    services.NewPaginator(measurer, footer),
		Preferences:  prefs,
		MaxImageSize: int64(cfg.MaxImageSizeMB) << 20,
	})

	app := &handlers.App{
		Workspace: workspace,
		Printer: &services.ReportPrinter{
			Printer: services.NewChromePrinter(browser),
			Storage: storage,
			DB:      db.DB,
			Options: services.DefaultPDFOptions(),
		},
		Surfaces: services.NewPrintSurfaces(time.Duration(cfg.PrintSurfaceTTLSecond) * time.Second),
		Storage:  storage,
	}

	e := echo.New()
	e.Use(echomiddleware.RequestLogger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.BodyLimit("250M"))
	e.Use(app.Inject(cfg))

	e.Static("/static", "static")

	imageLimiter := middleware.ImageUploadRateLimiter()
	printLimiter := middleware.PrintRateLimiter()
	emailLimiter := middleware.EmailRateLimiter()

	e.GET("/", handlers.ComposerPageHandler, middleware.CSPNonce())
	e.GET("/print/:id", handlers.PrintPageHandler, middleware.CSPNonce())

	api := e.Group("/api/report")
	{
		api.GET("", handlers.GetReportHandler)
		api.PUT("/fields/:key", handlers.SetFieldHandler)

		api.POST("/sections/:kind", handlers.AddSectionHandler)
		api.PUT("/sections/:kind/:index", handlers.UpdateSectionHandler)
		api.DELETE("/sections/:kind/:index", handlers.DeleteSectionHandler)

		api.POST("/rows", handlers.AddRowHandler)
		api.PUT("/rows/:index", handlers.UpdateRowHandler)
		api.DELETE("/rows/:index", handlers.DeleteRowHandler)

		api.POST("/images", handlers.UploadImagesHandler, imageLimiter.Middleware())
		api.PUT("/images/:id", handlers.UpdateImageHandler)
		api.DELETE("/images/:id", handlers.DeleteImageHandler)

		api.GET("/preview", handlers.PreviewHandler)

		api.GET("/export", handlers.ExportReportHandler)
		api.POST("/import", handlers.ImportReportHandler)
		api.GET("/measurements.xlsx", handlers.MeasurementsWorkbookHandler)
		api.POST("/measurements.xlsx", handlers.ImportMeasurementsHandler)

		api.POST("/print", handlers.PrintSurfaceHandler)
		api.POST("/pdf", handlers.DownloadPDFHandler, printLimiter.Middleware())
		api.POST("/email", handlers.EmailReportHandler, emailLimiter.Middleware())

		api.POST("/reset", handlers.ResetReportHandler)
	}

	e.GET("/api/reports", handlers.ListReportsHandler)
	e.GET("/api/reports/:id/download", handlers.DownloadReportHandler)

	e.GET("/api/preferences/preview", handlers.GetPreviewPreferenceHandler)
	e.PUT("/api/preferences/preview", handlers.SetPreviewPreferenceHandler)

	log.Printf("Server starting on port %s", cfg.ServerPort)
	if err := e.Start(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
