package routes

import (
	"time"

	"presence-service/internal/api/handlers"
	"presence-service/internal/api/middleware"
	"presence-service/internal/auth"
	"presence-service/internal/config"
	"presence-service/internal/database"
	"presence-service/internal/presence"
	"presence-service/internal/websocket"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Router struct {
	engine          *gin.Engine
	wsHandler       *handlers.WSHandler
	authHandler     *handlers.AuthHandler
	userHandler     *handlers.UserHandler
	presenceHandler *handlers.PresenceHandler
	verifier        *auth.TokenVerifier
	rateLimitMW     *middleware.RateLimitMiddleware
	authMW          *middleware.AuthMiddleware
}

func NewRouter(
	hub *websocket.Hub,
	registry *presence.Registry,
	store *presence.Store,
	db *gorm.DB,
	redisClient *redis.Client,
	storage *database.MinIOClient,
	cfg *config.Config,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS())
	engine.Use(middleware.LogApi())

	verifier := auth.NewTokenVerifier(cfg.JWT.Secret)
	authRepo := auth.NewAuthRepository(db)
	authService := auth.NewAuthService(authRepo, cfg.JWT.Secret, cfg.JWT.Expire)

	return &Router{
		engine:          engine,
		wsHandler:       handlers.NewWSHandler(hub),
		authHandler:     handlers.NewAuthHandler(authService),
		userHandler:     handlers.NewUserHandler(authService, storage),
		presenceHandler: handlers.NewPresenceHandler(store, registry),
		verifier:        verifier,
		rateLimitMW:     middleware.NewRateLimitMiddleware(redisClient),
		authMW:          middleware.NewAuthMiddleware(verifier),
	}
}

func (r *Router) SetupRoutes() {
	r.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.engine.Group("/api/v1")

	// WebSocket endpoint; the connection gate rejects unauthenticated
	// attempts before the upgrade
	api.GET("/ws",
		middleware.WSAuth(r.verifier),
		r.wsHandler.HandleWebSocket,
	)

	// Authenticated routes
	authed := api.Group("/")
	authed.Use(r.authMW.RequireAuth())
	{
		users := authed.Group("/users")
		users.Use(r.rateLimitMW.RateLimit(100, time.Minute))
		{
			users.GET("/profile", r.userHandler.GetProfile)
			users.PUT("/profile", r.userHandler.UpdateProfile)
		}

		presenceRoutes := authed.Group("/presence")
		presenceRoutes.Use(r.rateLimitMW.RateLimit(100, time.Minute))
		{
			presenceRoutes.GET("/online", r.presenceHandler.GetOnlineUsers)
		}
	}

	// Public routes (no authentication required)
	public := api.Group("/")
	{
		authRoutes := public.Group("/auth")
		authRoutes.Use(r.rateLimitMW.RateLimitIP(50, time.Minute))
		{
			authRoutes.POST("/register", r.authHandler.Register)
			authRoutes.POST("/login", r.authHandler.Login)
		}
	}
}

func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
