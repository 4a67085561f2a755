package daemon

import (
	"context"
	"errors"
	"net/http"
	"replisync/internal/logger"
	"replisync/internal/model"
	"replisync/internal/repository"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type StatusProvider interface {
	Snapshot() model.MirrorSnapshot
	Trigger()
}

type Server struct {
	echo     *echo.Echo
	mirror   StatusProvider
	runRepo  *repository.RunRepository
	histRepo *repository.HistoryRepository
	port     int
	stopCh   chan struct{}
}

// NewServer exposes mirror over HTTP. conn may be nil, in which case the
// history endpoints answer 404.
func NewServer(mirror StatusProvider, conn *gorm.DB, port int) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	s := &Server{
		echo:   e,
		mirror: mirror,
		port:   port,
		stopCh: make(chan struct{}, 1),
	}

	if conn != nil {
		s.runRepo = repository.NewRunRepository(conn)
		s.histRepo = repository.NewHistoryRepository(conn)
	}

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.echo.GET("/status", s.handleStatus)
	s.echo.POST("/sync", s.handleSync)
	s.echo.POST("/stop", s.handleStop)

	g := s.echo.Group("/runs")
	g.GET("", s.handleListRuns)
	g.GET("/:id/events", s.handleRunEvents)

	s.echo.GET("/history", s.handleHistory)
}

func (s *Server) Start() {
	go func() {
		addr := "localhost:" + strconv.Itoa(s.port)
		logger.Log.Info("status server started",
			zap.String("addr", addr))

		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("status server error", zap.Error(err))
		}
	}()
}

func (s *Server) Stop(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) StopCh() <-chan struct{} {
	return s.stopCh
}

func (s *Server) handleStatus(c echo.Context) error {
	resp := map[string]any{
		"mirror": s.mirror.Snapshot(),
	}

	if s.runRepo != nil {
		stats, err := s.runRepo.GetStats()
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		resp["runs"] = stats
	}

	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleSync(c echo.Context) error {
	s.mirror.Trigger()
	return c.JSON(http.StatusAccepted, map[string]string{"status": "sync requested"})
}

func (s *Server) handleStop(c echo.Context) error {
	select {
	case s.stopCh <- struct{}{}:
	default:
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "stopping"})
}

func (s *Server) handleListRuns(c echo.Context) error {
	if s.runRepo == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "history disabled"})
	}

	runs, err := s.runRepo.GetRecent(limit(c, 20))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, runs)
}

func (s *Server) handleRunEvents(c echo.Context) error {
	if s.histRepo == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "history disabled"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid run id"})
	}

	events, err := s.histRepo.GetByRun(uint(id))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, events)
}

func (s *Server) handleHistory(c echo.Context) error {
	if s.histRepo == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "history disabled"})
	}

	n := limit(c, 20)
	var (
		events []model.History
		err    error
	)
	if c.QueryParam("all") == "true" {
		events, err = s.histRepo.GetRecent(n)
	} else {
		events, err = s.histRepo.GetChanges(n)
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, events)
}

func limit(c echo.Context, def int) int {
	n, err := strconv.Atoi(c.QueryParam("n"))
	if err != nil || n <= 0 {
		return def
	}
	return n
}
