package restapi

import (
	"net/http/pprof"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// RouterOptions configures the cross-cutting parts of the router.
type RouterOptions struct {
	AllowOrigins      []string
	EnablePprof       bool
	EnableSwagger     bool
	SwaggerSpec       string
	CommentsPerMinute int
	CommentsBurst     int
}

// Handlers groups the API handlers. A nil handler leaves its routes out.
type Handlers struct {
	Comments *CommentHandler
	Session  *SessionHandler
	Markets  *MarketHandler
}

// SetupRouter builds the API engine with CORS, access logs, metrics and recovery.
func SetupRouter(h Handlers, opts RouterOptions, logger *zap.Logger) *gin.Engine {
	router := gin.New()

	corsConfig := cors.DefaultConfig()
	if len(opts.AllowOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = opts.AllowOrigins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))

	router.Use(ZapLoggerMiddleware(logger.Named("HTTP")))
	router.Use(MetricsMiddleware())
	router.Use(gin.Recovery())

	api := router.Group("/api")
	if h.Comments != nil {
		api.GET("/comments", h.Comments.ListComments)
		api.POST("/comments", RateLimitMiddleware(opts.CommentsPerMinute, opts.CommentsBurst), h.Comments.CreateComment)
	}
	if h.Session != nil {
		api.GET("/session", h.Session.GetSession)
		api.POST("/session/connect", h.Session.Connect)
		api.POST("/session/disconnect", h.Session.Disconnect)
		api.POST("/session/switch-network", h.Session.SwitchNetwork)
		api.GET("/notifications", h.Session.ListNotifications)
		api.DELETE("/notifications/:id", h.Session.DismissNotification)
		api.GET("/confirmations", h.Session.ListConfirmations)
		api.POST("/confirmations/:id", h.Session.ResolveConfirmation)
	}
	if h.Markets != nil {
		api.GET("/markets", h.Markets.ListMarkets)
		api.POST("/markets", h.Markets.CreateMarket)
		api.GET("/markets/:id", h.Markets.GetMarket)
		api.POST("/markets/:id/buy", h.Markets.BuyShares)
		api.POST("/markets/:id/resolve", h.Markets.ResolveMarket)
		api.POST("/markets/:id/claim", h.Markets.ClaimWinnings)
		api.GET("/positions", h.Markets.Positions)
		api.GET("/token", h.Markets.TokenStatus)
		api.POST("/token/approve", h.Markets.ApproveToken)
		api.POST("/token/mint", h.Markets.MintToken)
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if opts.EnableSwagger {
		spec := opts.SwaggerSpec
		if spec == "" {
			spec = "./docs/swagger.yaml"
		}
		router.StaticFile("/docs/swagger.yaml", spec)
		swaggerURL := ginSwagger.URL("/docs/swagger.yaml")
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, swaggerURL))
		logger.Info("Swagger UI enabled at /swagger/index.html")
	}

	if opts.EnablePprof {
		pprofRouter := router.Group("/debug/pprof")
		{
			pprofRouter.GET("/", gin.WrapF(pprof.Index))
			pprofRouter.GET("/cmdline", gin.WrapF(pprof.Cmdline))
			pprofRouter.GET("/profile", gin.WrapF(pprof.Profile))
			pprofRouter.POST("/symbol", gin.WrapF(pprof.Symbol))
			pprofRouter.GET("/symbol", gin.WrapF(pprof.Symbol))
			pprofRouter.GET("/trace", gin.WrapF(pprof.Trace))
			pprofRouter.GET("/allocs", gin.WrapH(pprof.Handler("allocs")))
			pprofRouter.GET("/block", gin.WrapH(pprof.Handler("block")))
			pprofRouter.GET("/goroutine", gin.WrapH(pprof.Handler("goroutine")))
			pprofRouter.GET("/heap", gin.WrapH(pprof.Handler("heap")))
			pprofRouter.GET("/mutex", gin.WrapH(pprof.Handler("mutex")))
			pprofRouter.GET("/threadcreate", gin.WrapH(pprof.Handler("threadcreate")))
		}
		logger.Info("Pprof endpoints enabled under /debug/pprof")
	}

	return router
}
