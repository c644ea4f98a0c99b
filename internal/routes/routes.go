package routes

import (
	"context"
	"time"

	"github.com/abhishekjoshi1998/EduPayout/internal/cache"
	"github.com/abhishekjoshi1998/EduPayout/internal/config"
	"github.com/abhishekjoshi1998/EduPayout/internal/handlers"
	"github.com/abhishekjoshi1998/EduPayout/internal/middleware"
	"github.com/abhishekjoshi1998/EduPayout/internal/models"
	"github.com/abhishekjoshi1998/EduPayout/internal/payout"
	"github.com/abhishekjoshi1998/EduPayout/internal/repository"
	"github.com/abhishekjoshi1998/EduPayout/internal/services"
	chatws "github.com/abhishekjoshi1998/EduPayout/internal/websocket"
	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func RegisterRoutes(app *fiber.App, cfg *config.Config, db *pgxpool.Pool, dashboardCache cache.Cache) error {
	userRepo := repository.NewUserRepository(db)
	mentorRepo := repository.NewMentorRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	payoutRepo := repository.NewPayoutRepository(db)
	receiptRepo := repository.NewReceiptRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	threadRepo := repository.NewThreadRepository(db)
	messageRepo := repository.NewMessageRepository(db)

	var storageService services.StorageService = services.DisabledStorage{}
	if cfg.StorageConfigured() {
		storageService = services.NewSupabaseStorageService(cfg.SupabaseURL, cfg.SupabaseBucket, cfg.SupabaseServiceKey)
	}

	dashboardService := services.NewDashboardService(mentorRepo, sessionRepo, payoutRepo, dashboardCache, cfg.DashboardCacheTTL)
	settingsService := services.NewSettingsService(settingsRepo, payout.Rates{
		GSTPercent:         cfg.GSTPercent,
		PlatformFeePercent: cfg.PlatformFeePercent,
	})
	authService := services.NewAuthService(db, userRepo, cfg.JWTSecret, cfg.JWTTTL)
	mentorService := services.NewMentorService(db, mentorRepo, storageService, dashboardService)
	sessionService := services.NewSessionService(db, sessionRepo, mentorRepo, dashboardService)
	payoutService := services.NewPayoutService(db, payoutRepo, sessionRepo, mentorRepo, settingsService, dashboardService)
	receiptService := services.NewReceiptService(receiptRepo, payoutRepo, sessionRepo, mentorRepo)
	chatService := services.NewChatService(db, threadRepo, messageRepo, mentorRepo, userRepo)

	chatHub := chatws.NewHub()
	go chatHub.Run()

	authHandler := handlers.NewAuthHandler(authService, cfg.JWTTTL, cfg.SecureCookies())
	mentorHandler := handlers.NewMentorHandler(mentorService)
	sessionHandler := handlers.NewSessionHandler(sessionService)
	payoutHandler := handlers.NewPayoutHandler(payoutService)
	receiptHandler := handlers.NewReceiptHandler(receiptService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	settingsHandler := handlers.NewSettingsHandler(settingsService)
	chatHandler := handlers.NewChatHandler(chatService, chatHub, cfg.JWTSecret)

	app.Get("/health", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/login", limiter.New(limiter.Config{
		Max:        cfg.LoginRateLimit,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "Too many login attempts, try again later"})
		},
	}), authHandler.Login)
	auth.Post("/logout", authHandler.Logout)
	auth.Get("/me", middleware.AuthRequired(cfg.JWTSecret), authHandler.Me)

	// The upgrade authenticates itself, so it sits outside the role-gated groups.
	api.Use("/v1/ws", chatHandler.WebSocketAuth)
	api.Get("/v1/ws", websocket.New(chatHandler.HandleWebSocket))

	admin := api.Group("/v1/admin", middleware.AuthRequired(cfg.JWTSecret), middleware.RequireRole(models.RoleAdmin))
	admin.Get("/dashboard", dashboardHandler.AdminDashboard)

	admin.Get("/mentors", mentorHandler.ListMentors)
	admin.Post("/mentors", mentorHandler.CreateMentor)
	admin.Get("/mentors/:id", mentorHandler.GetMentor)
	admin.Put("/mentors/:id", mentorHandler.UpdateMentor)
	admin.Delete("/mentors/:id", mentorHandler.DeleteMentor)
	admin.Get("/mentors/:id/available-sessions", sessionHandler.ListAvailableSessions)

	admin.Get("/sessions", sessionHandler.ListSessions)
	admin.Post("/sessions", sessionHandler.CreateSession)
	admin.Get("/sessions/:id", sessionHandler.GetSession)
	admin.Put("/sessions/:id", sessionHandler.UpdateSession)
	admin.Delete("/sessions/:id", sessionHandler.DeleteSession)

	admin.Get("/payouts", payoutHandler.ListPayouts)
	admin.Post("/payouts", payoutHandler.CreatePayout)
	admin.Post("/payouts/preview", payoutHandler.PreviewPayout)
	admin.Get("/payouts/:id", payoutHandler.GetPayout)
	admin.Put("/payouts/:id/status", payoutHandler.UpdatePayoutStatus)

	admin.Get("/receipts", receiptHandler.ListReceipts)
	admin.Get("/receipts/:id", receiptHandler.GetReceipt)
	admin.Get("/receipts/:id/print", receiptHandler.PrintReceipt)

	admin.Get("/settings", settingsHandler.GetSettings)
	admin.Put("/settings", settingsHandler.UpdateSettings)

	admin.Get("/chat/threads", chatHandler.ListThreads)
	admin.Get("/chat/:mentorId/messages", chatHandler.GetMessages)
	admin.Post("/chat/:mentorId/messages", chatHandler.SendMessage)

	mentor := api.Group("/v1/mentor", middleware.AuthRequired(cfg.JWTSecret), middleware.RequireRole(models.RoleMentor))
	mentor.Get("/dashboard", dashboardHandler.MentorDashboard)

	mentor.Get("/profile", mentorHandler.GetProfile)
	mentor.Put("/profile", mentorHandler.UpdateProfile)
	mentor.Post("/profile/avatar", mentorHandler.UploadAvatar)

	mentor.Get("/sessions", sessionHandler.ListSessions)
	mentor.Get("/sessions/:id", sessionHandler.GetSession)

	mentor.Get("/payouts", payoutHandler.ListPayouts)
	mentor.Get("/payouts/:id", payoutHandler.GetPayout)

	mentor.Get("/receipts/:id", receiptHandler.GetReceipt)
	mentor.Get("/receipts/:id/print", receiptHandler.PrintReceipt)

	mentor.Get("/chat/messages", chatHandler.GetMessages)
	mentor.Post("/chat/messages", chatHandler.SendMessage)

	return registerConsoleRoutes(app, cfg.JWTSecret)
}
