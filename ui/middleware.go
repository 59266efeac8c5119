package ui

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"prithvipulse/adapters/backend"
)

// Gateway headers
const (
	HeaderDispatchSource = "X-Dispatch-Source"
	HeaderFailureClass   = "X-Failure-Class"
	HeaderClientID       = "X-Client-ID"
)

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.requestLogger())

	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	config.AllowHeaders = append(config.AllowHeaders, HeaderClientID)
	config.ExposeHeaders = []string{HeaderDispatchSource, HeaderFailureClass, backend.HeaderRequestID}
	s.router.Use(cors.New(config))
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		line := "[Gateway] %s %s status=%d source=%s latency=%s"
		args := []interface{}{c.Request.Method, c.FullPath(), status, c.Writer.Header().Get(HeaderDispatchSource), time.Since(start)}
		if status >= 500 {
			s.logger.Error(line, args...)
			return
		}
		s.logger.Debug(line, args...)
	}
}
