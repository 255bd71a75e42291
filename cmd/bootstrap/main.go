// Package main 初始化课程存储结构（Mongo 索引或 PostgreSQL 表）
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"sheetcode-ai-api/internal/config"
	"sheetcode-ai-api/internal/infrastructure/persistence/mongo"
	"sheetcode-ai-api/internal/infrastructure/persistence/postgres"
)

func main() {
	_ = godotenv.Load()

	fmt.Println("Starting storage bootstrap...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	switch cfg.Database.Driver {
	case config.DriverPostgres:
		client, err := postgres.NewClient(&cfg.Database.Postgres)
		if err != nil {
			log.Fatalf("failed to connect postgres: %v", err)
		}
		defer func() { _ = client.Close(ctx) }()

		if err := postgres.AutoMigrate(client); err != nil {
			log.Fatalf("failed to migrate tables: %v", err)
		}
		fmt.Println("PostgreSQL tables are up to date.")
	default:
		client, err := mongo.NewClient(ctx, &cfg.Database.Mongo)
		if err != nil {
			log.Fatalf("failed to connect mongo: %v", err)
		}
		defer func() { _ = client.Close(ctx) }()

		if err := mongo.EnsureIndexes(ctx, client); err != nil {
			log.Fatalf("failed to ensure indexes: %v", err)
		}
		fmt.Println("MongoDB indexes are in place.")
	}

	fmt.Println("Bootstrap completed successfully.")
}
