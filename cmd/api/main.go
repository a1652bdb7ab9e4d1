package main

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"dochub/internal/config"
	"dochub/internal/connector"
	"dochub/internal/database"
	"dochub/internal/database/migration"
	"dochub/internal/events"
	"dochub/internal/extractor"
	handlers "dochub/internal/http/handler"
	"dochub/internal/http/middleware"
	"dochub/internal/ingest"
	"dochub/internal/otel"
	"dochub/internal/storage"
	"dochub/internal/store"
	"dochub/internal/store/jsonfile"
	storepg "dochub/internal/store/postgres"
)

func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	// Tracing is optional; init degrades to a noop provider on failure.
	shutdownTracing, err := otel.Init(context.Background(), time.UTC)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer shutdownTracing(context.Background())

	// Select the document store backend.
	var (
		docs store.DocumentStore
		db   *sql.DB
	)
	switch cfg.Store.Backend {
	case config.StoreBackendPostgres:
		db, err = database.NewPostgres(cfg.Database)
		if err != nil {
			log.Fatalf("failed to connect to database: %v", err)
		}
		defer db.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := migration.EnsureMigrated(ctx, db, time.UTC, cfg.Database.Host); err != nil {
			cancel()
			log.Fatalf("failed to migrate database: %v", err)
		}
		cancel()

		docs = storepg.NewDocumentStorePostgres(db)
	case config.StoreBackendJSONFile:
		docs, err = jsonfile.New(cfg.Store.CollectionPath)
		if err != nil {
			log.Fatalf("failed to open document collection: %v", err)
		}
	default:
		log.Fatalf("unknown store backend: %q", cfg.Store.Backend)
	}

	// Metadata extraction is a plug-in capability; absent means every file
	// falls back to default metadata.
	var ext extractor.Extractor = extractor.Unavailable{}
	if cfg.Extractor.URL != "" {
		ext = extractor.NewHTTP(cfg.Extractor.URL, time.Duration(cfg.Extractor.TimeoutSec)*time.Second)
	}

	opts := []ingest.Option{}

	// Object storage for uploaded file content (optional).
	if cfg.MinIO.Endpoint != "" {
		objStore, err := storage.NewMinIO(cfg.MinIO)
		if err != nil {
			log.Fatalf("failed to initialize object storage: %v", err)
		}
		opts = append(opts, ingest.WithObjectStorage(objStore))
	}

	// Connector gateway for departmental document feeds (optional).
	if cfg.Connector.BaseURL != "" {
		src := connector.NewHTTP(cfg.Connector.BaseURL, time.Duration(cfg.Connector.TimeoutSec)*time.Second)
		opts = append(opts, ingest.WithConnectorSource(src))
	}

	// Event broker (optional); Noop when unconfigured.
	var publisher events.Publisher = events.Noop{}
	if cfg.NATS.URL != "" {
		natsPub, err := events.NewNATS(cfg.NATS)
		if err != nil {
			log.Fatalf("failed to connect to event broker: %v", err)
		}
		defer natsPub.Close()
		publisher = natsPub
	}
	opts = append(opts, ingest.WithPublisher(publisher))

	// Prometheus registry with process/runtime collectors plus our own.
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := ingest.NewMetrics(reg)
	if err != nil {
		log.Fatalf("failed to register ingestion metrics: %v", err)
	}
	opts = append(opts, ingest.WithMetrics(metrics))

	svc := ingest.NewService(docs, ext, opts...)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})

	// Register global middleware
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.Logger())
	app.Use(otelfiber.Middleware())

	promMW, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		log.Fatalf("failed to register http metrics: %v", err)
	}
	app.Use(promMW.Handler())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// Register HTTP routes with injected service
	handlers.RegisterRoutes(app, db, svc)

	addr := ":" + cfg.Port

	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
