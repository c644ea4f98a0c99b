package main

import (
	"context"
	"log"
	"time"

	"github.com/abhishekjoshi1998/EduPayout/internal/cache"
	"github.com/abhishekjoshi1998/EduPayout/internal/config"
	"github.com/abhishekjoshi1998/EduPayout/internal/database"
	"github.com/abhishekjoshi1998/EduPayout/internal/routes"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Connect to Database
	if cfg.DBUrl == "" {
		log.Fatal("DB_URL is required")
	}
	db, err := database.Connect(context.Background(), cfg.DBUrl, database.PoolOptions{
		MaxConns: int32(cfg.DBMaxConns),
		MinConns: int32(cfg.DBMinConns),
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	bootCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	err = bootstrap(bootCtx, cfg, db)
	cancel()
	if err != nil {
		log.Fatalf("Failed to bootstrap: %v", err)
	}

	// 3. Dashboard cache
	var dashboardCache cache.Cache = cache.Nop{}
	if cfg.RedisAddr != "" {
		client := cache.NewRedis(cfg.RedisAddr)
		defer client.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := client.Ping(pingCtx).Err(); err != nil {
			log.Printf("Redis at %s unreachable, dashboards will not be cached: %v", cfg.RedisAddr, err)
		} else {
			dashboardCache = cache.NewRedisCache(client, "edupayout:")
			log.Printf("Caching dashboards in Redis for %s", cfg.DashboardCacheTTL)
		}
		cancel()
	}

	// 4. Setup Fiber
	app := fiber.New()

	// Middleware
	if cfg.CORSOrigins != "" {
		// Credentials let a separately served console send the auth cookie.
		app.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSOrigins,
			AllowCredentials: true,
		}))
	} else {
		app.Use(cors.New())
	}
	app.Use(logger.New())
	app.Use(recover.New())

	// Routes
	if err := routes.RegisterRoutes(app, cfg, db, dashboardCache); err != nil {
		log.Fatalf("Failed to register routes: %v", err)
	}

	// 5. Start Server
	log.Printf("Server starting on port %s (%s)", cfg.Port, cfg.AppEnv)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
