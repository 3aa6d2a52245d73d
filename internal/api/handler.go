package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"nftraffle/internal/logger"
	"nftraffle/internal/service"
)

type Handler struct {
	service *service.Service
	secret  []byte
}

func NewHandler(service *service.Service, secret []byte) *Handler {
	return &Handler{
		service: service,
		secret:  secret,
	}
}

// NewRouter builds the engine with recovery, request logging and CORS.
// With no allowed origins every origin is accepted.
func NewRouter(handler *Handler, allowedOrigins []string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger)

	corsConfig := cors.DefaultConfig()
	if len(allowedOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = allowedOrigins
	}
	corsConfig.AddAllowHeaders("Authorization")
	router.Use(cors.New(corsConfig))

	handler.RegisterRoutes(router)
	return router
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	v1 := router.Group("/v1")
	{
		v1.GET("/registry/collections", h.listCollections)
		v1.GET("/raffles", h.listRaffles)
		v1.GET("/raffles/:id", h.getRaffle)
		v1.GET("/accounts/:address/balance", h.getBalance)
	}

	signed := v1.Group("", h.authenticate)
	{
		signed.POST("/registry", h.initRegistry)
		signed.POST("/registry/collections", h.registerCollection)
		signed.POST("/raffles", h.createRaffle)
		signed.POST("/raffles/:id/tickets", h.buyTickets)
		signed.POST("/raffles/:id/reveal", h.revealWinner)
		signed.POST("/raffles/:id/claim", h.claimReward)
		signed.POST("/raffles/:id/withdraw", h.withdrawAsset)
	}
}

func requestLogger(c *gin.Context) {
	start := time.Now()
	c.Next()
	logger.Debug("http: request",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", c.Writer.Status()),
		zap.Duration("latency", time.Since(start)),
	)
}
