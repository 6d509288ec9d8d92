package server

import (
	"time"

	"github.com/gin-gonic/gin"
)

func (s *Server) setupRoutes() {
	s.engine.Use(gin.Recovery())
	s.engine.Use(securityHeaders())
	s.engine.Use(requestLogger(s.log))

	limiter := newRateLimiter(s.cfg.RateLimit, time.Minute)

	s.engine.POST("/chat/stream", rateLimit(limiter), s.handleChatStream)
	s.engine.GET("/chat/history/:user", s.handleGetHistory)
	s.engine.DELETE("/chat/history/:user", s.handleClearHistory)
	s.engine.POST("/feedback", rateLimit(limiter), s.handleFeedback)
	s.engine.GET("/stats", s.handleStats)
	s.engine.GET("/health", s.handleHealth)
}
