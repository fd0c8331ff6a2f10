package main

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"projectdrop/internal/config"
	"projectdrop/internal/database"
	"projectdrop/internal/database/migration"
	handlers "projectdrop/internal/http/handler"
	"projectdrop/internal/http/middleware"
	"projectdrop/internal/otel"
	"projectdrop/internal/repository/postgres"
	"projectdrop/internal/service"
	"projectdrop/internal/storage"
)

func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	ctx := context.Background()

	shutdownTracing, err := otel.Init(ctx, time.UTC)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer shutdownTracing(ctx)

	// Initialize PostgreSQL connection (with pooling via database/sql)
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, time.UTC, cfg.Database.Host); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Initialize the reusable storage client; the handle lives for the
	// whole process.
	store, err := newStorage(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to initialize storage: %v", err)
	}

	subRepo := postgres.NewSubmissionPostgres(db)
	classRepo := postgres.NewClassPostgres(db)
	configRepo := postgres.NewConfigPostgres(db)

	// The academic term is read once at startup; without it the form
	// cannot run, so a missing row halts the process.
	sysCfg, err := configRepo.Get(ctx)
	if err != nil {
		log.Fatalf("failed to load system configuration: %v", err)
	}

	subSvc := service.NewSubmissionService(store, subRepo, classRepo, service.Term{
		Year:     sysCfg.CurrentYear,
		Semester: sysCfg.CurrentSemester,
	})

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		// Headroom above the validation limit so an oversized file reaches
		// the collected validation messages instead of a bare 413.
		BodyLimit: service.MaxFileSize + 1<<20,
	})

	// Register global middleware
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.Logger())
	app.Use(otelfiber.Middleware())

	promMW, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatalf("failed to register metrics: %v", err)
	}
	app.Use(promMW.Handler())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Register HTTP routes with injected service
	handlers.RegisterRoutes(app, db, subSvc)

	addr := ":" + cfg.Port

	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}

// newStorage selects the storage backend: Google Drive in production,
// MinIO for local development.
func newStorage(ctx context.Context, cfg *config.AppConfig) (storage.Storage, error) {
	switch cfg.StorageBackend {
	case "minio":
		return storage.NewMinIO(cfg.MinIO)
	default:
		return storage.NewDrive(ctx, cfg.Drive)
	}
}
