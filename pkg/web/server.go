// Package web provides the status HTTP API.
// It uses Gin framework for routing and middleware.
package web

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"sync"
	"time"

	"github.com/PancyStudios/PancyCompanionGo/pkg/logger"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimitConfig holds the per-IP token bucket settings
type RateLimitConfig struct {
	Every time.Duration
	Burst int
}

// DefaultRateLimit allows roughly 100 requests per minute per client
var DefaultRateLimit = RateLimitConfig{
	Every: 600 * time.Millisecond,
	Burst: 20,
}

// Server represents the web server
type Server struct {
	engine      *gin.Engine
	allowedHost *regexp.Regexp
	limit       RateLimitConfig

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	http     *http.Server
}

// NewServer creates a new web server. allowedHosts is an optional regular
// expression; requests for other hosts are rejected with 403.
func NewServer(allowedHosts string, limit RateLimitConfig) (*Server, error) {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		engine:   engine,
		limit:    limit,
		limiters: make(map[string]*rate.Limiter),
	}

	if allowedHosts != "" {
		re, err := regexp.Compile(allowedHosts)
		if err != nil {
			return nil, fmt.Errorf("invalid allowed hosts pattern: %w", err)
		}
		s.allowedHost = re
	}

	s.engine.Use(s.logsMiddleware())
	s.engine.Use(s.rateLimitMiddleware())

	s.setupErrorHandlers()

	return s, nil
}

// Engine returns the underlying Gin engine
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// logsMiddleware logs incoming requests and rejects unexpected hosts
func (s *Server) logsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.allowedHost != nil && !s.allowedHost.MatchString(c.Request.Host) {
			logger.Warn(fmt.Sprintf("Solicitud sospechosa: %s %s | %s", c.Request.Method, c.Request.URL.Path, c.ClientIP()), "WebServer")
			c.AbortWithStatus(http.StatusForbidden)
			return
		}

		logger.Debug(fmt.Sprintf("Nueva solicitud: %s %s", c.Request.Method, c.Request.URL.Path), "WebServer")
		c.Next()
	}
}

func (s *Server) limiter(ip string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.limiters[ip]
	if !ok {
		l = rate.NewLimiter(rate.Every(s.limit.Every), s.limit.Burst)
		s.limiters[ip] = l
	}
	return l
}

// rateLimitMiddleware applies one token bucket per client IP
func (s *Server) rateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.limiter(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Demasiadas solicitudes, por favor intente de nuevo más tarde.",
			})
			return
		}
		c.Next()
	}
}

// setupErrorHandlers sets up error handling routes
func (s *Server) setupErrorHandlers() {
	s.engine.HandleMethodNotAllowed = true

	s.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Not Found",
			"message": "La ruta solicitada no existe.",
			"status":  http.StatusNotFound,
		})
	})

	s.engine.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{
			"error":   "Method Not Allowed",
			"message": "El método HTTP no está permitido para esta ruta.",
			"status":  http.StatusMethodNotAllowed,
		})
	})
}

// Group creates a new router group
func (s *Server) Group(path string, handlers ...gin.HandlerFunc) *gin.RouterGroup {
	return s.engine.Group(path, handlers...)
}

// StartAsync starts listening in a goroutine. Use Shutdown to stop it.
func (s *Server) StartAsync(port string) {
	s.mu.Lock()
	s.http = &http.Server{
		Addr:              ":" + port,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv := s.http
	s.mu.Unlock()

	logger.Info(fmt.Sprintf("🚀 Servidor escuchando en http://localhost:%s", port), "WebServer")
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error(fmt.Sprintf("Error starting web server: %v", err), "WebServer")
		}
	}()
}

// Shutdown stops the server started by StartAsync
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.http
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
