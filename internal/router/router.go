package router

import (
	"time"

	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/shivanshahestabit-sudo/socialMedia-backend/internal/handlers"
	"github.com/shivanshahestabit-sudo/socialMedia-backend/internal/metrics"
	"github.com/shivanshahestabit-sudo/socialMedia-backend/internal/middleware"
	"github.com/shivanshahestabit-sudo/socialMedia-backend/internal/models"
	"github.com/shivanshahestabit-sudo/socialMedia-backend/internal/repositories"
	"github.com/shivanshahestabit-sudo/socialMedia-backend/internal/services"
	"github.com/shivanshahestabit-sudo/socialMedia-backend/internal/ws"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	e.Use(metrics.EchoMiddleware())
	e.Use(middleware.RateLimit(rate.Every(time.Second/20), 40))
	log.Info().Msg("global middleware configured")
}

// SetupRoutes configures all application routes and injects dependencies.
// The websocket hub is created here and handed to both the connection
// gateway and the services that push through it.
func SetupRoutes(e *echo.Echo, pgdb *gorm.DB, mgClient *mongo.Client) {
	// AutoMigrate PostgreSQL models
	err := pgdb.AutoMigrate(
		&models.User{},
		&models.Message{},
		&models.Notification{},
		&models.Comment{},
		&models.Like{},
	)
	if err != nil {
		log.Fatal().Err(err).Msg("auto migrate models")
	}
	log.Info().Msg("PostgreSQL auto-migrations completed for all models")

	// Health check and metrics - always accessible
	e.GET("/health", handlers.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(pgdb)
	messageRepo := repositories.NewPostgresMessageRepository(pgdb)
	notificationRepo := repositories.NewPostgresNotificationRepository(pgdb)
	postRepo := repositories.NewMongoPostRepository(mgClient.Database("socialmedia"))
	commentRepo := repositories.NewPostgresCommentRepository(pgdb)
	likeRepo := repositories.NewPostgresLikeRepository(pgdb)

	// --- Presence hub and realtime services ---
	hub := ws.NewHub()
	chatService := services.NewChatService(messageRepo, userRepo, hub)
	notificationService := services.NewNotificationService(notificationRepo, userRepo, hub)
	gateway := ws.NewGateway(hub, chatService, userRepo)
	e.GET("/ws", gateway.Serve)
	log.Info().Msg("websocket gateway configured")

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	authHandler := handlers.NewAuthHandler(userRepo)
	authHandler.RegisterAuthRoutes(authGroup)
	log.Info().Msg("auth routes configured")

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware())

	// User profile routes
	userHandler := handlers.NewUserHandler(userRepo)
	userHandler.RegisterProfileRoutes(api)
	api.GET("/users/search", userHandler.SearchUsers)

	// Post routes
	postHandler := handlers.NewPostHandler(postRepo, notificationRepo, notificationService)
	postHandler.RegisterPostRoutes(api)

	// Comment routes
	commentHandler := handlers.NewCommentHandler(commentRepo, postRepo, notificationService)
	commentHandler.RegisterCommentRoutes(api)

	// Like routes
	likeHandler := handlers.NewLikeHandler(likeRepo, postRepo, notificationService)
	likeHandler.RegisterLikeRoutes(api)

	// Chat routes
	chatHandler := handlers.NewChatHandler(chatService, hub)
	chatHandler.RegisterChatRoutes(api)

	// Notification routes
	notificationHandler := handlers.NewNotificationHandler(notificationRepo)
	notificationHandler.RegisterNotificationRoutes(api)

	log.Info().Msg("all routes configured")
}
