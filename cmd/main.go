package main

import (
	"log"

	"viewer-service/internal/config"
	"viewer-service/internal/geometry"
	"viewer-service/internal/handlers"
	"viewer-service/internal/metrics"
	"viewer-service/internal/models"
	"viewer-service/internal/repository"
	"viewer-service/internal/services"
	"viewer-service/internal/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/minio/minio-go/v7"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

func main() {
	cfg := InitConfig()
	db := ConnectDatabase(cfg)
	MigrateDatabase(db)
	minioClient := InitMinIOClient(cfg)
	redisClient := InitRedisClient(cfg)

	m := metrics.NewMetrics()

	materialRepo := repository.NewMaterialRepository(db)
	selectionRepo := repository.NewSelectionRepository(db)

	sceneService := services.NewSceneService(minioClient, cfg.MinioBucket, m)
	classifier := geometry.NewClassifier(cfg.ThinnessThreshold, cfg.FloorCenterThreshold)
	sessionStore := services.NewSessionStore(cfg.SessionTTL, cfg.MaxSessions, m)
	customizationService := services.NewCustomizationService(
		materialRepo, selectionRepo, sceneService, classifier, sessionStore, cfg.HistoryLimit, m)
	ratesService := services.NewRatesService(cfg.RatesURL, cfg.RatesTTL, redisClient)

	app := fiber.New()

	//Register Prometheus metrics endpoint
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Viewer session routes
	vh := handlers.NewViewerHandler(customizationService)
	api := app.Group("/api")
	api.Post("/viewer/sessions", vh.CreateSession)
	api.Get("/viewer/sessions/:id", vh.GetSession)
	api.Post("/viewer/sessions/:id/materials", vh.ApplyMaterial)
	api.Post("/viewer/sessions/:id/save", vh.SaveSelection)
	api.Post("/viewer/sessions/:id/history/:index/preview", vh.PreviewHistory)
	api.Delete("/viewer/sessions/:id", vh.CloseSession)
	api.Get("/selections", vh.GetSavedSelection)

	// Catalog routes
	mh := handlers.NewMaterialHandler(customizationService)
	api.Get("/units/:unitId/materials", mh.ListMaterials)
	api.Get("/units/:unitId/catalog-defaults", mh.GetCatalogDefaults)

	// Exchange-rate route
	rh := handlers.NewRatesHandler(ratesService)
	api.Get("/exchange-rates", rh.GetExchangeRates)

	api.Get("/swagger/*", swagger.HandlerDefault)

	// Add Health check endpoint
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	routes := app.GetRoutes()
	log.Println("Registered routes:")
	for _, r := range routes {
		log.Printf("  %s %s\n", r.Method, r.Path)
	}

	// Start the Fiber server
	port := cfg.AppPort
	if port == "" {
		port = "8080"
		log.Printf("Defaulting to port %s", port)
	}
	log.Printf("Server listening on port %s", port)
	log.Fatal(app.Listen(":" + port))
}

func InitConfig() *config.Config {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}
	return cfg
}

func ConnectDatabase(cfg *config.Config) *gorm.DB {
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	return db
}

func MigrateDatabase(db *gorm.DB) {
	err := db.AutoMigrate(
		&models.ListingUnit{},
		&models.MaterialOption{},
		&models.WhitelistEntry{},
		&models.CatalogAssignment{},
		&models.SavedSelection{},
	)
	if err != nil {
		log.Fatalf("Database migration failed: %v", err)
	}
}

func InitMinIOClient(cfg *config.Config) *minio.Client {
	minioClient, err := storage.NewMinioClient(cfg)
	if err != nil {
		log.Fatalf("MinIO client initialization failed: %v", err)
	}
	return minioClient
}

// InitRedisClient connects to the rate cache. Redis is optional; on failure
// the rates service falls back to its in-memory cache.
func InitRedisClient(cfg *config.Config) *storage.RedisClient {
	if cfg.RedisHost == "" {
		log.Println("Redis not configured, exchange rates cached in memory only")
		return nil
	}
	client, err := storage.NewRedisClient(cfg.RedisHost, cfg.RedisPort)
	if err != nil {
		log.Printf("Redis connection failed, exchange rates cached in memory only: %v", err)
		return nil
	}
	return client
}
