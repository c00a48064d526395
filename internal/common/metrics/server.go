package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	MetricsPath = "/metrics"
	HealthPath  = "/health"
	ReadyPath   = "/ready"

	shutdownTimeout = 5 * time.Second
	readyTimeout    = 2 * time.Second
)

// ReadinessCheck сообщает, готова ли зависимость обслуживать рассылку.
type ReadinessCheck func(ctx context.Context) error

type Server struct {
	server *http.Server
	logger *slog.Logger
	checks map[string]ReadinessCheck
}

type Option func(*Server)

// WithReadinessCheck добавляет проверку, которую выполняет /ready.
func WithReadinessCheck(name string, check ReadinessCheck) Option {
	return func(s *Server) {
		s.checks[name] = check
	}
}

// WithMiddleware оборачивает все маршруты; первый переданный middleware оказывается внешним.
func WithMiddleware(middlewares ...func(http.Handler) http.Handler) Option {
	return func(s *Server) {
		for i := len(middlewares) - 1; i >= 0; i-- {
			s.server.Handler = middlewares[i](s.server.Handler)
		}
	}
}

func NewServer(port int, logger *slog.Logger, opts ...Option) *Server {
	s := &Server{
		logger: logger,
		checks: make(map[string]ReadinessCheck),
	}

	mux := http.NewServeMux()
	mux.Handle(MetricsPath, promhttp.Handler())
	mux.HandleFunc(HealthPath, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	mux.HandleFunc(ReadyPath, s.ready)

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Server) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			s.logger.Warn("Зависимость не готова", "check", name, "error", err)
			http.Error(w, name+" not ready", http.StatusServiceUnavailable)

			return
		}
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("READY"))
}

// Start блокируется до остановки сервера; отмена ctx запускает graceful shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Запуск сервера метрик", "addr", s.server.Addr, "checks", len(s.checks))

	stopped := make(chan struct{})
	defer close(stopped)

	go func() {
		select {
		case <-ctx.Done():
		case <-stopped:
			return
		}

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Ошибка при остановке сервера метрик", "error", err)
			return
		}

		s.logger.Info("Сервер метрик остановлен")
	}()

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("ошибка запуска сервера метрик: %w", err)
	}

	return nil
}

func (s *Server) Handler() http.Handler {
	return s.server.Handler
}
