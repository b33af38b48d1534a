package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"school-auth/internal/service"
)

const requestIDHeader = "X-Request-ID"

// NewRouter configura el router de Gin con middlewares y rutas de la API.
func NewRouter(
	logger *zap.Logger,
	authH *AuthHandler,
	adminH *AdminHandler,
	jwtSvc *service.JWTService,
	adminToken string,
) *gin.Engine {
	r := gin.New()

	r.Use(requestIDMiddleware(), zapLoggerMiddleware(logger), gin.Recovery())

	api := r.Group("/api", jsonContentTypeMiddleware())
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := api.Group("/auth")
	auth.POST("/register", authH.Register)
	auth.POST("/verify-email", authH.VerifyEmail)
	auth.GET("/verify-email", authH.VerifyEmailLink)
	auth.POST("/resend-verification", authH.ResendVerification)
	auth.POST("/login", authH.Login)
	auth.POST("/refresh", authH.Refresh)
	auth.POST("/logout", authH.Logout)
	auth.GET("/me", JWTAuthMiddleware(jwtSvc), authH.Me)

	admin := api.Group("/admin", AdminTokenMiddleware(adminToken))
	admin.GET("/accounts", adminH.ListAccounts)
	admin.GET("/roles", adminH.ListRoles)
	admin.POST("/roles", adminH.CreateRole)
	admin.GET("/email-logs", adminH.ListEmailLogs)

	return r
}

// requestIDMiddleware propaga X-Request-ID o genera uno nuevo.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDHeader, id)
		c.Writer.Header().Set(requestIDHeader, id)
		c.Next()
	}
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
			zap.String("request_id", c.GetString(requestIDHeader)),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
