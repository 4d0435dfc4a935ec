package server

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"co2-chart/internal/chart"
	"co2-chart/internal/query"
	"co2-chart/internal/store"
	"co2-chart/internal/types"
)

//go:embed templates/*.html
var templateFiles embed.FS

// Records is the query client type the server reads emissions from.
type Records = query.Client[[]types.DailyRecord]

// Server HTTP server
type Server struct {
	router  *gin.Engine
	queries *Records
	key     string
	chart   chart.Options
	page    *template.Template
}

// NewServer wires the routes. accessLog may be nil.
func NewServer(cfg *store.Config, queries *Records, accessLog *zap.Logger) *Server {
	if !cfg.Server.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}
	if accessLog == nil {
		accessLog = zap.NewNop()
	}

	s := &Server{
		router:  gin.New(),
		queries: queries,
		key:     cfg.Query.Key,
		chart:   chartOptions(cfg),
		page:    template.Must(template.ParseFS(templateFiles, "templates/index.html")),
	}
	s.router.Use(gin.Recovery(), requestID(), accessLogger(accessLog))
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/", s.index)
	s.router.GET("/health", s.health)

	api := s.router.Group("/api")
	{
		api.GET("/chart.svg", s.chartSVG)
		api.GET("/tooltip", s.tooltip)
		api.GET("/years", s.years)
		api.GET("/records", s.records)
		api.GET("/status", s.status)
	}
}

// Handler exposes the router for http.Server and tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func chartOptions(cfg *store.Config) chart.Options {
	m := cfg.Chart.Margin
	return chart.Options{
		Width:  cfg.Chart.Width,
		Height: cfg.Chart.Height,
		Margin: chart.Margin{
			Top:    m.Top,
			Right:  m.Right,
			Bottom: m.Bottom,
			Left:   m.Left,
		},
		PointRadius: cfg.Chart.PointRadius,
		StrokeWidth: cfg.Chart.StrokeWidth,
	}
}
