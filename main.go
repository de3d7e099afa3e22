package main

import (
	"SocialPulse/auth"
	"SocialPulse/config"
	"SocialPulse/migrations"
	"SocialPulse/repositories"
	"SocialPulse/routes"
	"SocialPulse/services"
	"SocialPulse/storage"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

func init() {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetLevel(logrus.InfoLevel)

	prometheus.MustRegister(
		services.ConnectionsCounter,
		services.CallbackFailuresCounter,
		services.TokenRefreshCounter,
		services.AnalysesCounter,
	)
}

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		logrus.Warn("No .env file found, relying on environment: ", err)
	}

	cfg := config.LoadConfig()
	if cfg.JWTSecret == "" {
		logrus.Fatal("JWT_SECRET is not configured")
	}
	if err := cfg.ValidatePlatforms(); err != nil {
		logrus.Fatal("Invalid oauth configuration: ", err)
	}

	// Initialize database connection
	repositories.InitDB()
	dbConn := repositories.DBConnection
	if err := migrations.RunMigrations(dbConn); err != nil {
		logrus.Fatal("Failed to run migrations: ", err)
	}

	// OAuth state storage: redis in production, in-memory for single-node
	// development setups.
	var states auth.StateStore
	if os.Getenv("REDIS_ADDR") != "" {
		config.InitRedis()
		states = auth.NewRedisStateStore(config.RedisClient)
	} else {
		logrus.Info("REDIS_ADDR not set, using in-memory oauth state store")
		states = auth.NewMemoryStateStore()
	}

	// Avatar mirror storage
	var avatarStore storage.Storage
	switch cfg.AvatarStorage {
	case "s3":
		s3Store, err := storage.NewS3Storage(cfg.AvatarBucket)
		if err != nil {
			logrus.Fatal("Failed to configure S3 storage: ", err)
		}
		avatarStore = s3Store
	default:
		avatarStore = storage.NewLocalStorage(cfg.AvatarPath)
	}

	e := routes.SetupRouter(cfg, dbConn, states, avatarStore)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := e.Start(":" + port); err != nil {
		logrus.Fatalf("Failed to start server: %v", err)
	}
}
