package router

import (
	"context"
	"time"

	"gestionstock/internal/config"
	"gestionstock/internal/handler"
	"gestionstock/internal/infra"
	"gestionstock/internal/middleware"
	"gestionstock/internal/service"
	"gestionstock/internal/store"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps are the infrastructure pieces built by the composition root.
type Deps struct {
	Store store.Store
	// DB and Redis are nil on the memory backend; health reports them as
	// disabled.
	DB        *gorm.DB
	Redis     *redis.Client
	PrinterCB *infra.CircuitBreaker
	// Hooks run after every ledger write (receipt printing, events).
	Hooks []service.SaleHook
}

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Store ← DB/Redis
// Background loops (session reaper, rate limiter purge) run until ctx is
// done, at which point every open session is closed.
func New(ctx context.Context, cfg *config.Config, deps Deps) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	loginLimiter := middleware.NewLimiter("login", 20, time.Minute)
	apiLimiter := middleware.NewLimiter("api", 1000, time.Minute)
	go loginLimiter.RunPurge(ctx, 5*time.Minute)
	go apiLimiter.RunPurge(ctx, 5*time.Minute)

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(apiLimiter)) // 1000 req/min per IP

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(cfg)
	catalogSvc := service.NewCatalogService(deps.Store)
	directorySvc := service.NewDirectoryService(deps.Store)
	saleSvc := service.NewSaleService(deps.Store, cfg.Location(), deps.Hooks...)

	sessions := service.NewSessionManager(deps.Store, saleSvc, cfg.SessionIdleTimeout())
	go sessions.RunReaper(ctx, time.Minute)
	go func() {
		<-ctx.Done()
		sessions.Shutdown()
	}()

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	productsH := handler.NewProductsHandler(catalogSvc)
	clientsH := handler.NewClientsHandler(directorySvc)
	sessionsH := handler.NewSessionsHandler(sessions)
	salesH := handler.NewSalesHandler(saleSvc)
	streamH := handler.NewStreamHandler(ctx, deps.Store)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(deps.DB, deps.Redis, deps.PrinterCB))

	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(loginLimiter), authH.Login)
	}

	// Protected routes
	v1 := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret))
	{
		products := v1.Group("/products")
		{
			products.POST("", productsH.Create)
			products.GET("", productsH.List)
			products.GET("/:id", productsH.Get)
			products.PUT("/:id", productsH.Update)
			products.DELETE("/:id", productsH.Delete)
		}

		clients := v1.Group("/clients")
		{
			clients.POST("", clientsH.Create)
			clients.GET("", clientsH.List)
			clients.GET("/:id", clientsH.Get)
			clients.PUT("/:id", clientsH.Update)
			clients.DELETE("/:id", clientsH.Delete)
		}

		sess := v1.Group("/sessions")
		{
			sess.POST("", sessionsH.Open)
			sess.GET("/:id", sessionsH.Get)
			sess.DELETE("/:id", sessionsH.Close)
			sess.PUT("/:id/client", sessionsH.SelectClient)
			sess.POST("/:id/items", sessionsH.AddItem)
			sess.PATCH("/:id/items/:productId", sessionsH.AdjustQuantity)
			sess.DELETE("/:id/items/:productId", sessionsH.RemoveItem)
			sess.POST("/:id/commit", sessionsH.Commit)
		}

		sales := v1.Group("/sales")
		{
			sales.GET("", salesH.List)
			sales.GET("/:id", salesH.Get)
			sales.POST("/:id/return", salesH.Return)
			sales.POST("/:id/reprint", salesH.Reprint)
		}

		v1.GET("/dashboard", salesH.Dashboard)
		v1.GET("/stream/:collection", streamH.Stream)
	}

	// Swagger UI, only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
