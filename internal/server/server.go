package server

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/vostuff/vostuff/internal/config"
	"github.com/vostuff/vostuff/internal/handler"
	"github.com/vostuff/vostuff/internal/middleware"
	"github.com/vostuff/vostuff/internal/repository"
	"github.com/vostuff/vostuff/internal/service"
	"github.com/vostuff/vostuff/internal/telemetry"
)

// AppDependencies holds the dependencies required to start the application
type AppDependencies struct {
	Config      *config.Config
	MongoDB     *mongo.Database
	RedisClient *redis.Client
}

// NewApp creates and configures the Fiber application with the given dependencies
func NewApp(deps AppDependencies) *fiber.App {
	// Repositories
	userRepo := repository.NewMongoUserRepository(deps.MongoDB)
	mongoOrgRepo := repository.NewMongoOrganizationRepository(deps.MongoDB)
	cacheRepo := repository.NewRedisCacheRepository(deps.RedisClient)
	orgRepo := repository.NewCachedOrganizationRepository(mongoOrgRepo, cacheRepo)

	// Services
	passwordService := service.NewPasswordService(deps.Config.Argon2)
	tokenService := service.NewTokenService(deps.Config.JWT)
	authService := service.NewAuthService(userRepo, orgRepo, passwordService, tokenService)

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	orgHandler := handler.NewOrgHandler(orgRepo)

	app := fiber.New(fiber.Config{
		AppName:      "vostuff API",
		ErrorHandler: customErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))
	if deps.Config.OTEL.Enabled {
		app.Use(telemetry.FiberMiddleware())
	}

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"service": "vostuff-api",
		})
	})

	v1 := app.Group("/v1")

	// Decode the bearer token (if any) before anything else; a present but
	// invalid token never reaches a handler.
	v1.Use(middleware.AuthContext(tokenService))

	// Auth endpoints (public)
	auth := v1.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/select-org", authHandler.SelectOrganization)
	auth.Get("/me", middleware.RequireAuth(), authHandler.Me)

	// Organization display reads: token must be scoped to the target org.
	orgs := v1.Group("/orgs")
	orgs.Get("/:id", middleware.RequireOrgAccess("id"), orgHandler.Get)

	return app
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	log.Printf("Error: %v", err)
	return c.Status(code).JSON(fiber.Map{
		"error":   "internal_error",
		"message": err.Error(),
	})
}
