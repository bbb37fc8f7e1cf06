// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"foodbridge/internal/auth"
	"foodbridge/internal/cache"
	"foodbridge/internal/config"
	"foodbridge/internal/database"
	"foodbridge/internal/middleware"
	"foodbridge/internal/models"
	"foodbridge/internal/notifications"
	"foodbridge/internal/repository"
	"foodbridge/internal/service"
	"foodbridge/internal/session"
	"foodbridge/internal/storage"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config      *config.Config
	db          *gorm.DB
	redis       *redis.Client
	app         *fiber.App
	validate    *validator.Validate
	shutdownCtx context.Context
	shutdownFn  context.CancelFunc

	userRepo         repository.UserRepository
	listingRepo      repository.ListingRepository
	claimRepo        repository.ClaimRepository
	tradeRepo        repository.TradeRepository
	barterRepo       repository.BarterTradeRepository
	blogRepo         repository.BlogRepository
	communityRepo    repository.CommunityRepository
	distributionRepo repository.DistributionRepository
	notificationRepo repository.NotificationRepository
	statsRepo        repository.StatsRepository

	authService         *auth.Service
	sessionManager      *session.Manager
	uploader            storage.Uploader
	notifier            *notifications.Notifier
	registry            *notifications.Registry
	hub                 *notifications.Hub
	moderationService   *service.ModerationService
	statsService        *service.StatsService
	communityService    *service.CommunityService
	distributionService *service.DistributionService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	redisClient := cache.GetClient()

	var uploader storage.Uploader
	if cfg.StorageCredentials != "" {
		up, err := storage.NewFirebaseUploader(context.Background(), cfg.StorageCredentials)
		if err != nil {
			return nil, fmt.Errorf("storage initialization failed: %w", err)
		}
		uploader = up
	} else {
		slog.Warn("no storage credentials configured, uploads held in memory")
		uploader = storage.NewMemoryUploader()
	}

	return NewServerWithDeps(cfg, db, redisClient, uploader)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, uploader storage.Uploader) (*Server, error) {
	s := &Server{
		config:   cfg,
		db:       db,
		redis:    redisClient,
		validate: validator.New(),
		uploader: uploader,
	}

	s.userRepo = repository.NewUserRepository(db)
	s.listingRepo = repository.NewListingRepository(db)
	s.claimRepo = repository.NewClaimRepository(db)
	s.tradeRepo = repository.NewTradeRepository(db)
	s.barterRepo = repository.NewBarterTradeRepository(db)
	s.blogRepo = repository.NewBlogRepository(db)
	s.communityRepo = repository.NewCommunityRepository(db)
	s.distributionRepo = repository.NewDistributionRepository(db)
	s.notificationRepo = repository.NewNotificationRepository(db)
	s.statsRepo = repository.NewStatsRepository(db)

	s.authService = auth.NewService(s.userRepo, redisClient, cfg)

	var store session.Store
	if redisClient != nil {
		store = session.NewRedisStore(redisClient, "session:")
	} else {
		store = session.NewMemoryStore()
	}
	s.sessionManager = session.NewManager(
		s.authService, s.userRepo, s.statsRepo, store, uploader, cfg.AvatarBucket, slog.Default())

	s.notifier = notifications.NewNotifier(redisClient)
	s.registry = notifications.NewRegistry(redisClient, slog.Default())
	if redisClient != nil {
		s.hub = notifications.NewHub()
	}

	s.moderationService = service.NewModerationService(
		s.claimRepo, s.listingRepo, s.notificationRepo, s.notifier, slog.Default())
	s.statsService = service.NewStatsService(s.statsRepo, s.tradeRepo)
	s.communityService = service.NewCommunityService(s.communityRepo, s.blogRepo)
	s.distributionService = service.NewDistributionService(s.distributionRepo)

	return s, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context middleware to propagate request ID and user ID
	app.Use(middleware.ContextMiddleware())

	// Security headers
	app.Use(helmet.New())

	// Structured logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS must run before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they are handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	// Auth routes
	authGroup := api.Group("/auth")
	authGroup.Post("/signup", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	authGroup.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	authGroup.Post("/logout", s.Logout)
	authGroup.Post("/forgot-password", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "forgot_password"), s.ForgotPassword)
	authGroup.Post("/reset-password", s.ResetPassword)
	authGroup.Get("/session", s.GetSessionInfo)
	authGroup.Post("/admin/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "admin_login"), s.AdminLogin)

	// Shell resolution for the web client
	api.Get("/shell/resolve", s.ResolveShell)

	// Public listing routes
	publicListings := api.Group("/listings")
	publicListings.Get("/", s.GetListings)
	publicListings.Get("/search", middleware.RateLimit(
		s.redis, 10, time.Minute, "search"), s.SearchListings)
	publicListings.Get("/:id", s.GetListing)

	// Public blog routes
	blog := api.Group("/blog")
	blog.Get("/", s.GetBlogPosts)
	blog.Get("/:slug", s.GetBlogPost)
	blog.Get("/:slug/comments", s.GetBlogComments)

	// Public distribution events
	api.Get("/distribution/events", s.GetDistributionEvents)

	// Claims can come from people without accounts.
	api.Post("/claims", middleware.RateLimit(
		s.redis, 5, 10*time.Minute, "create_claim"), s.CreateClaim)

	// Protected routes
	protected := api.Group("", s.AuthRequired())

	protected.Post("/listings", middleware.RateLimit(
		s.redis, 5, 5*time.Minute, "create_listing"), s.CreateListing)
	protected.Put("/listings/:id", s.UpdateListing)
	protected.Delete("/listings/:id", s.DeleteListing)
	protected.Post("/uploads/images", s.UploadImage)

	// User routes
	users := protected.Group("/users")
	users.Get("/me", s.GetMyProfile)
	users.Put("/me", s.UpdateMyProfile)
	users.Post("/me/avatar", s.UploadAvatar)
	users.Put("/me/password", s.ChangePassword)
	users.Get("/me/stats", s.GetMyStats)
	users.Put("/me/stats", s.UpdateMyStats)

	// Trade routes
	trades := protected.Group("/trades")
	trades.Get("/", s.GetTrades)
	trades.Post("/", s.CreateTrade)
	trades.Put("/:id/status", s.UpdateTradeStatus)
	trades.Get("/:id", s.GetTrade)

	// Barter trade routes
	barter := protected.Group("/barter-trades")
	barter.Get("/", s.GetBarterTrades)
	barter.Post("/", s.CreateBarterTrade)
	barter.Put("/:id/status", s.UpdateBarterTradeStatus)

	// Blog engagement
	protected.Post("/blog/:id/comments", middleware.RateLimit(
		s.redis, 5, time.Minute, "blog_comment"), s.CreateBlogComment)
	protected.Post("/blog/:id/like", s.LikeBlogPost)
	protected.Delete("/blog/:id/like", s.UnlikeBlogPost)

	// Community routes
	community := protected.Group("/community")
	community.Get("/posts", s.GetCommunityPosts)
	community.Post("/posts", middleware.RateLimit(
		s.redis, 5, 5*time.Minute, "community_post"), s.CreateCommunityPost)
	community.Post("/posts/:id/comments", s.CreateCommunityComment)
	community.Post("/posts/:id/like", s.LikeCommunityPost)
	community.Delete("/posts/:id/like", s.UnlikeCommunityPost)
	community.Delete("/posts/:id", s.DeleteCommunityPost)

	// Distribution registration
	protected.Post("/distribution/events/:id/register", s.RegisterForEvent)

	// Notification routes
	notifs := protected.Group("/notifications")
	notifs.Get("/", s.GetNotifications)
	notifs.Put("/read-all", s.MarkAllNotificationsRead)
	notifs.Put("/:id/read", s.MarkNotificationRead)

	// Websocket feed
	api.Get("/ws", s.AuthRequired(), s.WebsocketHandler())

	// Admin routes
	admin := protected.Group("/admin", s.AdminRequired())
	admin.Get("/stats", s.AdminDashboard)
	admin.Get("/users", s.AdminGetUsers)
	admin.Get("/users/recent", s.AdminRecentUsers)
	admin.Get("/listings", s.AdminGetListings)
	admin.Get("/listings/recent", s.AdminRecentListings)
	admin.Put("/listings/:id/review", s.ReviewListing)
	admin.Get("/claims", s.AdminGetClaims)
	admin.Put("/claims/:id/review", s.ReviewClaim)
	admin.Post("/distribution/events", s.CreateDistributionEvent)
	admin.Delete("/distribution/events/:id", s.DeleteDistributionEvent)
	admin.Get("/distribution/events/:id/attendees", s.GetEventAttendees)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// AuthRequired returns the authentication middleware.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		tokenString := ""
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}
		// Websocket upgrades cannot set headers; allow a query token there.
		if tokenString == "" && strings.HasPrefix(c.Path(), "/api/ws") {
			tokenString = c.Query("token")
		}
		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		sess, err := s.authService.GetSession(c.Context(), tokenString)
		if err != nil || sess == nil {
			if err == nil {
				err = models.NewUnauthorizedError("Invalid or expired token")
			}
			return models.RespondWithError(c, models.StatusForError(err), err)
		}

		c.Locals("userID", sess.User.ID)
		c.Locals("token", tokenString)
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, sess.User.ID)
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// AdminRequired returns middleware that rejects non-admin users with 403.
// Must be placed after AuthRequired so that userID is available in locals.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("userID").(uint)

		user, err := s.userRepo.GetByID(c.Context(), userID)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}
		if !user.IsAdmin() {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewUnauthorizedError("Admin access required"))
		}
		return c.Next()
	}
}

// optionalUserID extracts the user ID from the Authorization header without
// enforcing it.
func (s *Server) optionalUserID(c *fiber.Ctx) (uint, bool) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return 0, false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return 0, false
	}

	token, err := jwt.Parse(parts[1], func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(s.config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, false
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, false
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, false
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(userID), true
}

// Start starts the server
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	app := fiber.New(fiber.Config{
		AppName: "FoodBridge API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			slog.Error("unhandled error", "error", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	if s.hub != nil {
		go func() {
			if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
				slog.Error("failed to start hub wiring", "error", err)
			}
		}()
	}

	slog.Info("server starting", "port", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			slog.Error("error shutting down HTTP server", "error", err)
		}
	}

	if s.hub != nil {
		if err := s.hub.Shutdown(ctx); err != nil {
			slog.Error("error shutting down websocket hub", "error", err)
		}
	}
	s.registry.UnsubscribeAll()
	s.sessionManager.Close()

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			slog.Error("error closing sql DB", "error", cerr)
		}
	}
	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			slog.Error("error closing redis", "error", rerr)
		}
	}

	slog.Info("server shutdown complete")
	return nil
}
