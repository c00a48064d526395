package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/central-university-dev/post-broadcaster/internal/common"
	"github.com/central-university-dev/post-broadcaster/internal/common/metrics"
	customerrors "github.com/central-university-dev/post-broadcaster/internal/domain/errors"
	"github.com/central-university-dev/post-broadcaster/internal/domain/models"
	"github.com/central-university-dev/post-broadcaster/pkg/txs"
)

const tracerName = "github.com/central-university-dev/post-broadcaster/internal/bot/service"

type DispatcherConfig struct {
	// ForwardDelay выдерживается перед каждой пересылкой, включая первую. 0 отключает slow mode.
	ForwardDelay time.Duration
	// RefreshTitles обновляет названия включенных чатов перед фильтрацией.
	RefreshTitles bool
}

// Dispatcher рассылает один пост всем подходящим подписчикам.
// Пересылки выполняются последовательно, ошибка одной не прерывает остальные.
type Dispatcher struct {
	repo      SubscriberRepository
	txManager txs.Transactor
	engine    *common.TagEngine
	forwarder Forwarder
	titles    *TitleService
	cfg       DispatcherConfig
	logger    *slog.Logger
	tracer    trace.Tracer
	wait      func(ctx context.Context, d time.Duration) error
}

// NewDispatcher принимает nil вместо titles, если обновление названий не нужно.
func NewDispatcher(
	repo SubscriberRepository,
	txManager txs.Transactor,
	engine *common.TagEngine,
	forwarder Forwarder,
	titles *TitleService,
	cfg DispatcherConfig,
	logger *slog.Logger,
) *Dispatcher {
	return &Dispatcher{
		repo:      repo,
		txManager: txManager,
		engine:    engine,
		forwarder: forwarder,
		titles:    titles,
		cfg:       cfg,
		logger:    logger,
		tracer:    otel.Tracer(tracerName),
		wait:      sleepContext,
	}
}

// SetWaitFunc подменяет ожидание slow mode (используется в тестах).
func (d *Dispatcher) SetWaitFunc(wait func(ctx context.Context, d time.Duration) error) {
	d.wait = wait
}

// Dispatch возвращает ошибку, только если не удалось получить список подписчиков
// или контекст был отменен во время рассылки.
func (d *Dispatcher) Dispatch(ctx context.Context, post *models.Post) (*models.DispatchResult, error) {
	start := time.Now()

	extending, restrictive := d.engine.Extract(post)

	result := &models.DispatchResult{
		DispatchID:  uuid.NewString(),
		Extending:   extending,
		Restrictive: restrictive,
	}

	ctx, span := d.tracer.Start(ctx, "Dispatcher.Dispatch", trace.WithAttributes(
		attribute.String("dispatch.id", result.DispatchID),
		attribute.Int64("post.chat_id", post.ChatID),
		attribute.Int("post.message_id", post.MessageID),
		attribute.StringSlice("post.extending_tags", extending.Sorted()),
		attribute.StringSlice("post.restrictive_tags", restrictive.Sorted()),
	))
	defer span.End()

	logger := d.logger.With("dispatch_id", result.DispatchID, "message_id", post.MessageID)

	var subscribers []*models.Subscriber

	err := d.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		var err error

		subscribers, err = d.repo.ListEnabled(ctx)

		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list enabled subscribers")
		metrics.RecordDispatch(metrics.DispatchResultError, 0, time.Since(start))

		return nil, fmt.Errorf("ошибка при получении включенных подписчиков: %w", err)
	}

	result.Candidates = len(subscribers)

	if d.cfg.RefreshTitles && d.titles != nil {
		d.titles.Refresh(ctx, subscribers)
	}

	recipients := make([]*models.Subscriber, 0, len(subscribers))

	for _, subscriber := range subscribers {
		if common.Matches(extending, restrictive, subscriber.TagSet()) {
			recipients = append(recipients, subscriber)
		}
	}

	result.Matched = len(recipients)

	logger.Info("Начало рассылки поста",
		"extending", extending.String(),
		"restrictive", restrictive.String(),
		"candidates", result.Candidates,
		"matched", result.Matched,
	)

	err = d.forwardAll(ctx, logger, post, recipients, result)

	span.SetAttributes(
		attribute.Int("dispatch.matched", result.Matched),
		attribute.Int("dispatch.forwarded", result.Forwarded),
	)

	outcome := metrics.DispatchResultDelivered
	if result.Forwarded == 0 {
		outcome = metrics.DispatchResultNoMatch

		logger.Info("Пост не был доставлен ни одному подписчику",
			"matched", result.Matched,
			"rejected", result.Rejected,
			"failed", result.Failed,
		)
	} else {
		logger.Info("Рассылка поста завершена",
			"forwarded", result.Forwarded,
			"rejected", result.Rejected,
			"failed", result.Failed,
		)
	}

	if err != nil {
		outcome = metrics.DispatchResultError

		span.RecordError(err)
		span.SetStatus(codes.Error, "dispatch interrupted")
	}

	metrics.RecordDispatch(outcome, result.Candidates, time.Since(start))

	return result, err
}

func (d *Dispatcher) forwardAll(
	ctx context.Context,
	logger *slog.Logger,
	post *models.Post,
	recipients []*models.Subscriber,
	result *models.DispatchResult,
) error {
	for _, subscriber := range recipients {
		if d.cfg.ForwardDelay > 0 {
			if err := d.wait(ctx, d.cfg.ForwardDelay); err != nil {
				logger.Warn("Рассылка прервана", "error", err, "forwarded", result.Forwarded)

				return fmt.Errorf("рассылка прервана: %w", err)
			}
		}

		err := d.forwarder.ForwardMessage(ctx, subscriber.ChatID, post.ChatID, post.MessageID)
		if err == nil {
			result.Forwarded++

			metrics.RecordForward(metrics.ForwardStatusSuccess)
			logger.Debug("Пост переслан", "chat_id", subscriber.ChatID)

			continue
		}

		var rejected *customerrors.ErrForwardRejected
		if errors.As(err, &rejected) {
			result.Rejected++

			metrics.RecordForward(metrics.ForwardStatusRejected)
			logger.Warn("Telegram отклонил пересылку поста",
				"chat_id", subscriber.ChatID,
				"code", rejected.Code,
				"error", err,
			)

			continue
		}

		result.Failed++

		metrics.RecordForward(metrics.ForwardStatusFailed)
		logger.Error("Непредвиденная ошибка при пересылке поста",
			"chat_id", subscriber.ChatID,
			"source_chat_id", post.ChatID,
			"message_id", post.MessageID,
			"error", err,
		)
	}

	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
