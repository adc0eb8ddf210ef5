// Package health exposes the liveness endpoint polled by the hosting
// platform. Any path answers 200.
package health

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func Start(port string, log *zap.Logger) {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.NoRoute(func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	go func() {
		if err := router.Run(":" + port); err != nil {
			log.Error("health server stopped", zap.Error(err))
		}
	}()
}
