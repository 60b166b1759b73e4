package app

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/studykit/core/internal/modules/processing/study"
	"github.com/studykit/core/internal/modules/system/core/health"
	"github.com/studykit/core/internal/pkg/response"
)

func (a *App) registerRoutes(studySvc *study.Service) {
	r := a.router

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c)
	})
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})

	appInfo := gin.H{
		"name":     "studykit-core",
		"version":  "1.0.0",
		"homepage": "https://github.com/studykit/core",
	}

	// App info endpoints
	r.GET("/", func(c *gin.Context) { c.PureJSON(http.StatusOK, appInfo) })
	r.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"data": "pong"}) })
	r.GET("/uptime", func(c *gin.Context) {
		uptimeMs := time.Since(processStart).Milliseconds()
		c.JSON(http.StatusOK, gin.H{
			"timestamp": uptimeMs,
			"humanize":  humanizeDuration(time.Duration(uptimeMs) * time.Millisecond),
		})
	})

	root := r.Group("")
	health.RegisterRoutes(root)

	// Document processing: POST /upload, POST /generate-notes. The paths sit
	// at the root because existing clients call them there.
	study.NewHandler(studySvc, a.logger).RegisterRoutes(root)
}
