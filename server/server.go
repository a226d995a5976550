// Package server exposes the forecast report pipeline over HTTP
package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/aouyang1/go-forecast-narrator/report"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const DefaultMaxUploadBytes = 10 << 20

// Reporter computes a forecast response from uploaded bytes
type Reporter interface {
	Run(ctx context.Context, r io.Reader, dateCol, valueCol string, horizon int) (*report.Response, error)
	Fingerprint() string
}

type Options struct {
	ServiceName    string
	Version        string
	AllowedOrigins []string
	MaxUploadBytes int64
	FrontendDir    string
	SampleDir      string
	DefaultHorizon int
	// WriterEnabled is reported by the health endpoint
	WriterEnabled bool
}

func NewDefaultOptions() *Options {
	return &Options{
		ServiceName:    "forecast-narrator",
		Version:        "dev",
		MaxUploadBytes: DefaultMaxUploadBytes,
		DefaultHorizon: report.DefaultHorizonDays,
	}
}

type Server struct {
	opt      *Options
	reporter Reporter
	cache    *Cache
	logger   *slog.Logger
	started  time.Time
	engine   *gin.Engine
}

// New builds the routes. cache and logger may be nil.
func New(reporter Reporter, cache *Cache, logger *slog.Logger, opt *Options) *Server {
	if opt == nil {
		opt = NewDefaultOptions()
	}
	if logger == nil {
		logger = slog.Default()
	}
	o := *opt
	if o.MaxUploadBytes <= 0 {
		o.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if o.DefaultHorizon <= 0 {
		o.DefaultHorizon = report.DefaultHorizonDays
	}

	s := &Server{
		opt:      &o,
		reporter: reporter,
		cache:    cache,
		logger:   logger,
		started:  time.Now(),
	}
	s.engine = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(
		gin.Recovery(),
		otelgin.Middleware(s.opt.ServiceName),
		requestID(s.logger),
		accessLog(),
		cors(s.opt.AllowedOrigins),
	)

	r.GET("/health", s.health)

	api := r.Group("/api")
	{
		api.POST("/preview", limitUpload(s.opt.MaxUploadBytes), s.preview)
		api.POST("/forecast", limitUpload(s.opt.MaxUploadBytes), s.forecast)
		api.GET("/sample/:name", s.sample)
	}

	if info, err := os.Stat(s.opt.FrontendDir); err == nil && info.IsDir() {
		r.NoRoute(s.frontend())
	} else {
		r.GET("/", placeholder)
		r.NoRoute(notFound)
	}
	return r
}

// Handler returns the http handler serving every route
func (s *Server) Handler() http.Handler {
	return s.engine
}
