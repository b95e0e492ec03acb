// Package server exposes the gateway capabilities over HTTP so a
// browser front end can call the model without holding the API key.
// Classified gateway failures travel in the response body with status
// 200; non-200 statuses are reserved for malformed requests and
// handler-level faults.
package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"larchstudio/internal/types"
)

// Server wraps a gin engine around a gateway.
type Server struct {
	gateway   types.Gateway
	logger    *zap.Logger
	engine    *gin.Engine
	startTime time.Time
}

// New builds the server and registers its routes.
func New(gateway types.Gateway, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		gateway:   gateway,
		logger:    logger,
		engine:    gin.New(),
		startTime: time.Now(),
	}
	s.engine.Use(gin.Recovery())
	s.engine.Use(s.requestLogger())
	s.routes()
	return s
}

func (s *Server) routes() {
	api := s.engine.Group("/api")
	api.GET("/health", s.health)
	api.POST("/generate-prompts", s.generatePrompts)
	api.POST("/visualize", s.visualize)
	api.POST("/edit-image", s.editImage)
	api.POST("/generate-random-template", s.randomTemplate)
}

// Run serves until the listener fails.
func (s *Server) Run(addr string) error {
	s.logger.Info("proxy server listening", zap.String("addr", addr))
	return s.engine.Run(addr)
}

// Handler exposes the engine for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"uptime": time.Since(s.startTime).String(),
	})
}

// NewLogger builds a production zap logger. With a log file set, output
// goes through a size-rotated file; otherwise it goes to stderr.
func NewLogger(logFile string, debug bool) *zap.Logger {
	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}
	if logFile == "" {
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(level)
		logger, err := cfg.Build()
		if err != nil {
			return zap.NewNop()
		}
		return logger
	}
	writer := zapcore.AddSync(&lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    50, // megabytes
		MaxBackups: 5,
		MaxAge:     30, // days
		Compress:   true,
	})
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		writer,
		level,
	)
	return zap.New(core)
}
