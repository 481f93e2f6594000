package main

import (
	"context"
	"errors"
	"log"
	"runtime"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/hanzalakhan/portfolio-backend/internal/cloud"
	"github.com/hanzalakhan/portfolio-backend/internal/config"
	"github.com/hanzalakhan/portfolio-backend/internal/content"
	"github.com/hanzalakhan/portfolio-backend/internal/domain/fiber/handler"
	"github.com/hanzalakhan/portfolio-backend/internal/middleware"
	"github.com/hanzalakhan/portfolio-backend/internal/model"
	"github.com/hanzalakhan/portfolio-backend/internal/portfolio"
	"github.com/hanzalakhan/portfolio-backend/internal/security"
	"github.com/hanzalakhan/portfolio-backend/internal/storage"
)

func main() {
	ctx := context.Background()
	if err := godotenv.Load(); err != nil {
		log.Println("Could not load .env file")
	}

	appConfig := config.LoadAppConfig()

	app := fiber.New(fiber.Config{
		AppName: appConfig.Name,
		ErrorHandler: func(ctx *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError

			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}

			message := err.Error()
			if message == "" {
				message = "Internal Server Error"
			}

			return ctx.Status(code).JSON(fiber.Map{"error": message})
		},
	})
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
	}))
	app.Use(recover.New(recover.Config{
		EnableStackTrace: appConfig.Env != "production",
	}))
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	app.Use(pprof.New(pprof.Config{
		Next: func(c *fiber.Ctx) bool {
			return config.LoadAppConfig().Env == "production"
		},
	}))
	app.Use(healthcheck.New())
	app.Use(helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
	}))
	app.Use(middleware.RateLimiter(50, 1*time.Minute))

	// Persistent backend is optional: without DATABASE_PROVIDER the service
	// runs degraded on cloud mirror and file fallbacks.
	backend, err := storage.New(ctx, config.LoadDBConfig())
	if err != nil {
		log.Printf("Warning: database storage not available: %v", err)
		backend = nil
	}
	if backend == nil {
		log.Println("Warning: no DATABASE_PROVIDER specified, database features disabled")
	}

	mirror := cloud.NewMirrorFromConfig(config.LoadCloudConfig())
	svc := portfolio.New(backend, mirror, appConfig.IsProduction())

	limiter := security.NewRateLimiter()
	limiter.StartSweeper(ctx)

	authCfg := config.LoadAuthConfig()
	adminAuth := middleware.AdminAuth(authCfg, nil)
	// The authorization probe is the one route that audits attempts; putting
	// the logger on every admin route would write an audit row per request.
	checkAuth := middleware.AdminAuth(authCfg, func(c *fiber.Ctx, email string, granted bool) {
		if backend == nil {
			return
		}
		action := model.ActionAuthDenied
		desc := "Admin authorization denied"
		if granted {
			action = model.ActionAuthSuccess
			desc = "Admin authorization granted"
		}
		if err := backend.LogChange(c.Context(), action, email, desc); err != nil {
			log.Printf("Failed to log authorization attempt: %v", err)
		}
	})

	contentMgr := content.NewManager(config.LoadDBConfig().MongoURL)

	handler.NewPortfolioHandler(svc, limiter).RegisterRoutes(app, adminAuth)
	handler.NewAdminHandler(svc, mirror).RegisterRoutes(app, adminAuth, checkAuth)
	handler.NewContentHandler(contentMgr).RegisterRoutes(app, adminAuth)

	// Monitor goroutine count
	go func() {
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			log.Printf("Active goroutines: %d", runtime.NumGoroutine())
		}
	}()

	log.Println("Server running on ", appConfig.Port)
	if err := app.Listen(appConfig.Port); err != nil {
		log.Fatal(err)
	}
}
