package router

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stackit-dev/stackit/backend/internal/handlers"
	"github.com/stackit-dev/stackit/backend/internal/middleware"
	"github.com/stackit-dev/stackit/backend/internal/repositories"
	"github.com/stackit-dev/stackit/backend/internal/voting"
	"github.com/stackit-dev/stackit/backend/pkg/config"
	"github.com/stackit-dev/stackit/backend/validators"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Dependencies are the external handles the routes are built on
type Dependencies struct {
	Postgres *gorm.DB
	// Mongo backs the activity feed; nil disables it
	Mongo *mongo.Database
	// TokenVerifier enables Firebase login when non-nil
	TokenVerifier handlers.IDTokenVerifier
	JWTSecret     string
	JWTTTL        time.Duration
	Logger        *zap.Logger
}

// SetupMiddleware configures the validator, error rendering and global Echo middleware
func SetupMiddleware(e *echo.Echo, logger *zap.Logger) {
	e.Validator = validators.NewValidator()
	e.HTTPErrorHandler = handlers.NewHTTPErrorHandler(logger)
	config.SetupMiddleware(e, logger)
	logger.Debug("global middleware configured")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, deps Dependencies) error {
	logger := deps.Logger
	pgdb := deps.Postgres

	healthHandler := handlers.NewHealthHandler(pgdb)
	e.GET("/health", healthHandler.HealthCheck)

	// --- Initialize Repositories ---
	engine := voting.NewEngine(pgdb, logger)
	userRepo := repositories.NewPostgresUserRepository(pgdb)
	questionRepo := repositories.NewPostgresQuestionRepository(pgdb)
	answerRepo := repositories.NewPostgresAnswerRepository(pgdb, engine.RecordAnswerCreated)
	voteRepo := repositories.NewPostgresVoteRepository(pgdb)
	tagRepo := repositories.NewPostgresTagRepository(pgdb)
	notificationRepo := repositories.NewPostgresNotificationRepository(pgdb)
	statsRepo := repositories.NewPostgresStatsRepository(pgdb)

	var activityRepo repositories.ActivityRepository = repositories.NopActivityRepository{}
	if deps.Mongo != nil {
		mongoActivityRepo := repositories.NewMongoActivityRepository(deps.Mongo)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := mongoActivityRepo.EnsureIndexes(ctx); err != nil {
			return err
		}
		activityRepo = mongoActivityRepo
	}

	requireAuth := middleware.JWTAuth(deps.JWTSecret)
	optionalAuth := middleware.OptionalJWTAuth(deps.JWTSecret)

	api := e.Group("/api")

	// --- Auth ---
	authHandler := handlers.NewAuthHandler(userRepo, deps.TokenVerifier, deps.JWTSecret, deps.JWTTTL, logger)
	authHandler.RegisterAuthRoutes(api.Group("/auth"), requireAuth)

	// --- Questions, answers and votes ---
	questionHandler := handlers.NewQuestionHandler(questionRepo, voteRepo, activityRepo, logger)
	questionHandler.RegisterQuestionRoutes(api, requireAuth, optionalAuth)

	answerHandler := handlers.NewAnswerHandler(questionRepo, answerRepo, voteRepo, activityRepo, engine, logger)
	answerHandler.RegisterAnswerRoutes(api, requireAuth, optionalAuth)

	voteHandler := handlers.NewVoteHandler(engine)
	voteHandler.RegisterVoteRoutes(api, requireAuth)

	// --- Public reads ---
	handlers.NewTagHandler(tagRepo).RegisterTagRoutes(api)
	handlers.NewStatsHandler(statsRepo).RegisterStatsRoutes(api)
	handlers.NewActivityHandler(activityRepo, userRepo).RegisterActivityRoutes(api)

	// --- Notifications ---
	notificationHandler := handlers.NewNotificationHandler(notificationRepo)
	notificationHandler.RegisterNotificationRoutes(api, requireAuth)

	logger.Info("routes configured", zap.Bool("firebase_login", deps.TokenVerifier != nil), zap.Bool("activity_feed", deps.Mongo != nil))
	return nil
}
