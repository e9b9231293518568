package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/kamau/chamacircle-go/storage"
	"github.com/kamau/chamacircle-go/storage/memstore"
	"github.com/kamau/chamacircle-go/storage/mongostore"
)

type Config struct {
	Port             string
	DBName           string
	JWTSecret        string
	JWTRefreshSecret string
	AccessTokenTTL   time.Duration
	RefreshTokenTTL  time.Duration
	AdminEmail       string

	MongoClient *mongo.Client
	Store       storage.Store
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// Load reads .env plus the environment and connects storage. Without a
// MONGO_URI the server falls back to the in-memory store, which is only
// useful for local development.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using environment")
	}

	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		DBName:           getEnv("DB_NAME", "chamacircle"),
		JWTSecret:        getEnv("JWT_SECRET", "dev_jwt_secret_change_me"),
		JWTRefreshSecret: getEnv("JWT_REFRESH_SECRET", "dev_refresh_secret_change_me"),
		AccessTokenTTL:   24 * time.Hour,
		RefreshTokenTTL:  7 * 24 * time.Hour,
		AdminEmail:       getEnv("ADMIN_EMAIL", ""),
	}

	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		slog.Warn("MONGO_URI not set, using in-memory store (data will not survive restarts)")
		cfg.Store = memstore.New()
		return cfg, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	cfg.MongoClient = client
	cfg.Store = mongostore.New(client, cfg.DBName)
	slog.Info("connected to mongodb", "db", cfg.DBName)
	return cfg, nil
}
