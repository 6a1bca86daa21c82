package http

import (
	"github.com/gin-gonic/gin"
)

// SetupRoutes registers the catalog API. Middleware such as SessionGuard is
// installed ahead of every route.
func SetupRoutes(router *gin.Engine, handler *Handler, middleware ...gin.HandlerFunc) {
	router.Use(middleware...)

	api := router.Group("/api")
	{
		api.GET("/instruments", handler.ListInstruments)
		api.POST("/instruments", handler.CreateInstrument)
		api.PUT("/instruments", handler.ReplaceInstruments)

		api.GET("/instruments/:id", handler.GetInstrument)
		api.PUT("/instruments/:id", handler.UpdateInstrument)
		api.DELETE("/instruments/:id", handler.DeleteInstrument)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
}
