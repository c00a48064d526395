package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

type TitleRefresher interface {
	RefreshAll(ctx context.Context) (int, error)
}

// Scheduler периодически обновляет названия чатов подписчиков.
type Scheduler struct {
	scheduler *gocron.Scheduler
	refresher TitleRefresher
	logger    *slog.Logger
	interval  time.Duration
	timeout   time.Duration
}

func NewScheduler(refresher TitleRefresher, interval time.Duration, logger *slog.Logger) *Scheduler {
	scheduler := gocron.NewScheduler(time.UTC)
	scheduler.SingletonModeAll()

	return &Scheduler{
		scheduler: scheduler,
		refresher: refresher,
		logger:    logger,
		interval:  interval,
		timeout:   interval,
	}
}

func (s *Scheduler) Start() {
	s.logger.Info("Запуск планировщика обновления названий",
		"interval", s.interval.String(),
	)

	_, err := s.scheduler.Every(s.interval).WaitForSchedule().Do(s.refresh)
	if err != nil {
		s.logger.Error("Ошибка при настройке планировщика",
			"error", err,
		)

		return
	}

	s.scheduler.StartAsync()
}

func (s *Scheduler) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	updated, err := s.refresher.RefreshAll(ctx)
	if err != nil {
		s.logger.Error("Ошибка при обновлении названий чатов",
			"error", err,
		)

		return
	}

	s.logger.Debug("Плановое обновление названий завершено", "updated", updated)
}

func (s *Scheduler) Stop() {
	s.logger.Info("Остановка планировщика")
	s.scheduler.Stop()
}
