package router

import (
	"github.com/anonto42/socialgraph/backend/internal/auth"
	"github.com/anonto42/socialgraph/backend/internal/engagement"
	"github.com/anonto42/socialgraph/backend/internal/handlers"
	"github.com/anonto42/socialgraph/backend/internal/metrics"
	"github.com/anonto42/socialgraph/backend/internal/middleware"
	"github.com/anonto42/socialgraph/backend/internal/repositories"
	"github.com/anonto42/socialgraph/backend/internal/store"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Dependencies are the collaborators SetupRoutes wires into handlers.
// Notifications and Metrics are optional.
type Dependencies struct {
	Store         store.DocumentStore
	Notifications *gorm.DB
	Tokens        *auth.TokenManager
	Resolver      *auth.Resolver
	Engagement    *engagement.Service
	Metrics       *metrics.Metrics
	Logger        logrus.FieldLogger
	CookieSecure  bool
	AdminUserIDs  []string
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, deps Dependencies) {
	log := deps.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	if deps.Metrics != nil {
		e.Use(deps.Metrics.Middleware())
	}

	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	userRepo := repositories.NewStoreUserRepository(deps.Store)
	postRepo := repositories.NewStorePostRepository(deps.Store)
	commentRepo := repositories.NewStoreCommentRepository(deps.Store)

	var notifier *handlers.Notifier
	var notificationRepo repositories.NotificationRepository
	if deps.Notifications != nil {
		notificationRepo = repositories.NewGormNotificationRepository(deps.Notifications)
		notifier = handlers.NewNotifier(notificationRepo, log)
	}

	authenticate := middleware.Authenticate(deps.Resolver)

	// --- Authentication; only /me needs a session ---
	authHandler := handlers.NewAuthHandler(userRepo, deps.Tokens, deps.CookieSecure)
	authHandler.RegisterAuthRoutes(e.Group("/api/auth"), authenticate)
	log.Debug("Auth routes configured.")

	// --- Protected routes ---
	api := e.Group("/api", authenticate)

	handlers.NewUserHandler(userRepo, deps.Engagement, notifier).RegisterUserRoutes(api)
	handlers.NewFollowHandler(userRepo).RegisterFollowRoutes(api)
	handlers.NewFeedHandler(postRepo, userRepo).RegisterFeedRoutes(api)
	handlers.NewPostHandler(postRepo, commentRepo, deps.Engagement, notifier).RegisterPostRoutes(api)
	handlers.NewCommentHandler(commentRepo, postRepo, deps.Engagement, notifier).RegisterCommentRoutes(api)

	bookmarkHandler := handlers.NewBookmarkHandler(deps.Engagement)
	bookmarkHandler.RegisterBookmarkRoutes(api)
	bookmarkHandler.RegisterAdminRoutes(api.Group("/admin", middleware.RequireAdmin(deps.AdminUserIDs)))

	if notificationRepo != nil {
		handlers.NewNotificationHandler(notificationRepo, userRepo).RegisterNotificationRoutes(api)
		log.Debug("Notification routes configured.")
	}

	log.WithField("consistency_mode", deps.Engagement.Mode()).Info("All routes configured.")
}
