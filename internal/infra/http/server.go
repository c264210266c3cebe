package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Spok95/fitclub-bot/internal/attendance"
	"github.com/Spok95/fitclub-bot/internal/domain/clients"
	"github.com/Spok95/fitclub-bot/internal/domain/visits"
	"github.com/Spok95/fitclub-bot/internal/venue"
)

type Attendance interface {
	Check(ctx context.Context, identity string) (*attendance.CheckResult, error)
	Commit(ctx context.Context, identity string) (*attendance.CommitResult, error)
	SetFreeze(ctx context.Context, identity string, action attendance.FreezeAction) (*attendance.FreezeResult, error)
}

type VisitLister interface {
	ListBetween(ctx context.Context, from, to time.Time) ([]visits.ReportRow, error)
}

type ClientFinder interface {
	GetByExternalID(ctx context.Context, externalID string) (*clients.Client, error)
}

type Deps struct {
	Attendance    Attendance
	Visits        VisitLister
	Clients       ClientFinder
	Clock         *venue.Clock
	Log           *slog.Logger
	ExposeMetrics bool
}

type Server struct {
	srv *http.Server
}

func New(addr string, d Deps) *Server {
	return &Server{srv: &http.Server{
		Addr:              addr,
		Handler:           NewRouter(d),
		ReadHeaderTimeout: 10 * time.Second,
	}}
}

func NewRouter(d Deps) *gin.Engine {
	if d.Log == nil {
		d.Log = slog.Default()
	}
	h := &handlers{Deps: d}

	r := gin.New()
	r.Use(requestLogger(d.Log), gin.CustomRecovery(func(c *gin.Context, rec any) {
		d.Log.Error("http: panic recovered", "panic", rec, "path", c.Request.URL.Path)
		internalError(c)
	}))

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	if d.ExposeMetrics {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	api := r.Group("/api")
	{
		api.POST("/attendance/check", h.check)
		api.POST("/attendance/commit", h.commit)
		api.POST("/attendance/freeze", h.freeze)
		api.GET("/visits/export", h.exportVisits)
		api.GET("/clients/:identity/qr", h.clientQR)
	}
	return r
}

func (s *Server) Start() error {
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func requestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
