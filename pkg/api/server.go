// Package api provides the REST API server for wavetone
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/james-see/wavetone/pkg/converter"
	"github.com/james-see/wavetone/pkg/library"
	"github.com/james-see/wavetone/pkg/logger"
	"github.com/james-see/wavetone/pkg/music"
	"github.com/james-see/wavetone/pkg/synth"
)

// @title Wavetone API
// @version 1.0
// @description API for rendering scales and simple pieces with a waveform synthesizer
// @host localhost:8080
// @BasePath /api/v1

// Options configure the server
type Options struct {
	Converter converter.Options
	Settings  music.BeatSettings // tempo and meter for generated scales
	Waveform  synth.Waveform
	Volume    uint8
	Library   *library.Library // optional
}

// Server serves the HTTP API
type Server struct {
	opts    Options
	router  *gin.Engine
	metrics *metrics
}

// NewServer builds the router
func NewServer(opts Options) *Server {
	if opts.Volume == 0 {
		opts.Volume = 200
	}
	if opts.Settings.BPM <= 0 {
		opts.Settings = music.BeatSettings{BPM: DefaultScaleBPM, TimeSignature: music.CommonTime}
	}

	s := &Server{opts: opts, metrics: newMetrics()}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger())

	// CORS middleware
	r.Use(corsMiddleware())

	// Health check
	r.GET("/health", healthCheck)
	r.GET("/metrics", gin.WrapH(s.metrics.handler()))

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.GET("/waveforms", listWaveforms)
		v1.GET("/scales", listScales)
		v1.GET("/formats", listFormats)
		v1.GET("/pieces", listPieces)
		v1.GET("/pieces/:name", getPiece)
		v1.POST("/render", s.handleRender)
		v1.POST("/scale", s.handleScale)
		v1.POST("/convert/midi2score", s.handleMIDIToScore)
		v1.POST("/convert/score2midi", s.handleScoreToMIDI)
		v1.POST("/convert/midi2wav", s.handleMIDIToWAV)
		v1.POST("/convert/score2wav", s.handleScoreToWAV)

		lib := v1.Group("/library", s.requireLibrary())
		lib.GET("", s.listLibrary)
		lib.POST("", s.saveToLibrary)
		lib.GET("/:id", s.getFromLibrary)
		lib.DELETE("/:id", s.deleteFromLibrary)
	}

	// Swagger docs
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	s.router = r
	return s
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on the given port
func (s *Server) Run(port int) error {
	logger.Infof("listening on :%d", port)
	return s.router.Run(fmt.Sprintf(":%d", port))
}

// StartServer starts the API server on the specified port
func StartServer(port int, opts Options) error {
	return NewServer(opts).Run(port)
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Infof("%s %s %d %s", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func (s *Server) requireLibrary() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.opts.Library == nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "score library is not configured"})
			return
		}
		c.Next()
	}
}

// healthCheck godoc
// @Summary Health check endpoint
// @Description Returns the health status of the API
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "wavetone",
	})
}
