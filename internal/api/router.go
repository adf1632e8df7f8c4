package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/reviewhub/review-api/docs"
	"github.com/reviewhub/review-api/internal/api/handler"
	"github.com/reviewhub/review-api/internal/api/middleware"
	"github.com/reviewhub/review-api/internal/core/domain"
	"github.com/reviewhub/review-api/internal/core/ports"
	"github.com/reviewhub/review-api/internal/core/service"
	"github.com/reviewhub/review-api/internal/infrastructure/config"
	mongostore "github.com/reviewhub/review-api/internal/infrastructure/db/mongo"
	"github.com/reviewhub/review-api/pkg/logger"
)

// Dependencies carries the externally constructed pieces the router wires
// into handlers. Mailer, throttle and audit are interfaces so main can swap
// implementations by configuration.
type Dependencies struct {
	DB       *mongo.Database
	Redis    *redis.Client
	Mailer   ports.Mailer
	Throttle ports.SignupThrottle
	Audit    ports.AuditRecorder
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg *config.Config, deps Dependencies) *echo.Echo {
	log := logger.Get()

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("reviewapi"))

	// --- Repositories ---
	accountRepo := mongostore.NewAccountRepository(deps.DB)
	categoryRepo := mongostore.NewCategoryRepository(deps.DB)
	genreRepo := mongostore.NewGenreRepository(deps.DB)
	titleRepo := mongostore.NewTitleRepository(deps.DB)
	reviewRepo := mongostore.NewReviewRepository(deps.DB)
	commentRepo := mongostore.NewCommentRepository(deps.DB)

	// --- Services ---
	authService := service.NewAuthService(
		accountRepo, deps.Mailer, deps.Throttle, deps.Audit,
		cfg.JWTSecret, cfg.TokenTTL, cfg.CodeLength, log,
	)
	userService := service.NewUserService(accountRepo, reviewRepo, commentRepo, log)
	catalogService := service.NewCatalogService(categoryRepo, genreRepo, titleRepo, reviewRepo, commentRepo, log)
	reviewService := service.NewReviewService(titleRepo, reviewRepo, commentRepo, deps.Audit, log)

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	catalogHandler := handler.NewCatalogHandler(catalogService)
	titleHandler := handler.NewTitleHandler(catalogService)
	reviewHandler := handler.NewReviewHandler(reviewService)
	commentHandler := handler.NewCommentHandler(reviewService)

	// Resolves the bearer token to a principal on every request. Never
	// rejects; unauthenticated and undecipherable requests proceed as
	// anonymous and the permission gate decides downstream.
	principal := middleware.Principal(cfg.JWTSecret, accountRepo)
	adminOnly := middleware.RequireTier(domain.TierAdmin)
	signedIn := middleware.RequireTier(domain.TierUser)

	// --- Health probes and operations endpoints (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.DB, deps.Redis)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	v1 := e.Group("/v1", principal)

	// --- Auth routes ---
	v1.POST("/auth/signup", authHandler.Signup)
	v1.POST("/auth/token", authHandler.Token)

	// --- Account routes ---
	me := v1.Group("/users/me", signedIn)
	me.GET("", userHandler.Me)
	me.PATCH("", userHandler.UpdateMe)

	users := v1.Group("/users", adminOnly)
	users.GET("", userHandler.List)
	users.POST("", userHandler.Create)
	users.GET("/:username", userHandler.Get)
	users.PATCH("/:username", userHandler.Update)
	users.DELETE("/:username", userHandler.Delete)

	// --- Catalog routes: public reads, admin writes ---
	v1.GET("/categories", catalogHandler.ListCategories)
	v1.POST("/categories", catalogHandler.CreateCategory, adminOnly)
	v1.DELETE("/categories/:slug", catalogHandler.DeleteCategory, adminOnly)

	v1.GET("/genres", catalogHandler.ListGenres)
	v1.POST("/genres", catalogHandler.CreateGenre, adminOnly)
	v1.DELETE("/genres/:slug", catalogHandler.DeleteGenre, adminOnly)

	v1.GET("/titles", titleHandler.ListTitles)
	v1.GET("/titles/:id", titleHandler.GetTitle)
	v1.POST("/titles", titleHandler.CreateTitle, adminOnly)
	v1.PATCH("/titles/:id", titleHandler.UpdateTitle, adminOnly)
	v1.DELETE("/titles/:id", titleHandler.DeleteTitle, adminOnly)

	// --- Review and comment routes: ownership is checked in the service,
	// so no tier middleware here beyond the principal resolver ---
	v1.GET("/titles/:title_id/reviews", reviewHandler.ListReviews)
	v1.POST("/titles/:title_id/reviews", reviewHandler.CreateReview)
	v1.GET("/titles/:title_id/reviews/:id", reviewHandler.GetReview)
	v1.PATCH("/titles/:title_id/reviews/:id", reviewHandler.UpdateReview)
	v1.DELETE("/titles/:title_id/reviews/:id", reviewHandler.DeleteReview)

	v1.GET("/reviews/:review_id/comments", commentHandler.ListComments)
	v1.POST("/reviews/:review_id/comments", commentHandler.CreateComment)
	v1.GET("/reviews/:review_id/comments/:id", commentHandler.GetComment)
	v1.PATCH("/reviews/:review_id/comments/:id", commentHandler.UpdateComment)
	v1.DELETE("/reviews/:review_id/comments/:id", commentHandler.DeleteComment)

	return e
}
