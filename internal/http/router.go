package http

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDKey    = "request_id"
	requestIDHeader = "X-Request-ID"
)

// requestID tags every request with an id, reusing the caller's when it is
// a valid UUID.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// SetupRouter creates and configures the Gin router. An empty
// allowedOrigins allows every origin.
func SetupRouter(handler *Handler, allowedOrigins []string) *gin.Engine {

	router := gin.Default()

	// Setup CORS middleware.
	corsConfig := cors.DefaultConfig()
	if len(allowedOrigins) > 0 {
		corsConfig.AllowOrigins = allowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.ExposeHeaders = []string{requestIDHeader}

	router.Use(cors.New(corsConfig))
	router.Use(requestID())

	// API v1 routes.
	v1 := router.Group("/v1")
	v1.POST("/regrid", handler.Regrid)
	v1.POST("/interpolate", handler.Interpolate)
	v1.POST("/derived", handler.Derived)

	// Methods.
	v1.GET("/methods", handler.GetMethods)

	// Health check.
	router.GET("/health", handler.HealthCheck)

	return router
}
