package service

import (
	"context"
	"errors"
	"log/slog"

	customerrors "github.com/central-university-dev/post-broadcaster/internal/domain/errors"
	"github.com/central-university-dev/post-broadcaster/internal/domain/models"
	"github.com/central-university-dev/post-broadcaster/pkg/txs"
)

// SubscriptionService управляет жизненным циклом подписчика:
// нет записи -> выключен <-> включен. Каждая операция выполняется в одной транзакции.
type SubscriptionService struct {
	repo      SubscriberRepository
	txManager txs.Transactor
	logger    *slog.Logger
}

func NewSubscriptionService(repo SubscriberRepository, txManager txs.Transactor, logger *slog.Logger) *SubscriptionService {
	return &SubscriptionService{
		repo:      repo,
		txManager: txManager,
		logger:    logger,
	}
}

// Find никогда не возвращает ошибку хранилища: недоступность хранилища трактуется как отсутствие записи.
func (s *SubscriptionService) Find(ctx context.Context, chatID int64) (*models.Subscriber, bool) {
	subscriber, err := s.repo.FindByID(ctx, chatID)
	if err != nil {
		var notFound *customerrors.ErrSubscriberNotFound
		if errors.As(err, &notFound) && notFound.Cause != nil {
			s.logger.Warn("Хранилище недоступно при поиске подписчика, считаем что записи нет",
				"chat_id", chatID,
				"error", notFound.Cause,
			)
		}

		return nil, false
	}

	return subscriber, true
}

func (s *SubscriptionService) GetOrCreate(ctx context.Context, chatID int64, title string) (*models.Subscriber, error) {
	var subscriber *models.Subscriber

	err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		if existing, ok := s.Find(ctx, chatID); ok {
			subscriber = existing
			return nil
		}

		created, err := s.repo.Create(ctx, chatID, title)
		if err != nil {
			return err
		}

		s.logger.Info("Создан новый подписчик", "chat_id", chatID, "title", title)

		subscriber = created

		return nil
	})
	if err != nil {
		return nil, err
	}

	return subscriber, nil
}

// Enable возвращает false, если рассылка уже была включена.
func (s *SubscriptionService) Enable(ctx context.Context, chatID int64) (bool, error) {
	return s.mutate(ctx, chatID, func(subscriber *models.Subscriber) bool {
		if subscriber.IsEnabled() {
			return false
		}

		subscriber.Enable()

		return true
	})
}

func (s *SubscriptionService) Disable(ctx context.Context, chatID int64) (bool, error) {
	return s.mutate(ctx, chatID, func(subscriber *models.Subscriber) bool {
		if !subscriber.IsEnabled() {
			return false
		}

		subscriber.Disable()

		return true
	})
}

func (s *SubscriptionService) SetTags(ctx context.Context, chatID int64, tags models.TagSet) (*models.Subscriber, bool, error) {
	return s.mutateTags(ctx, chatID, func(subscriber *models.Subscriber) bool {
		return subscriber.SetTags(tags)
	})
}

func (s *SubscriptionService) AddTags(ctx context.Context, chatID int64, tags models.TagSet) (*models.Subscriber, bool, error) {
	return s.mutateTags(ctx, chatID, func(subscriber *models.Subscriber) bool {
		return subscriber.AddTags(tags)
	})
}

func (s *SubscriptionService) RemoveTags(ctx context.Context, chatID int64, tags models.TagSet) (*models.Subscriber, bool, error) {
	return s.mutateTags(ctx, chatID, func(subscriber *models.Subscriber) bool {
		return subscriber.RemoveTags(tags)
	})
}

func (s *SubscriptionService) UpdateTags(
	ctx context.Context,
	chatID int64,
	toAdd, toRemove models.TagSet,
) (*models.Subscriber, bool, error) {
	return s.mutateTags(ctx, chatID, func(subscriber *models.Subscriber) bool {
		return subscriber.UpdateTags(toAdd, toRemove)
	})
}

func (s *SubscriptionService) UpdateTitle(ctx context.Context, chatID int64, title string) (bool, error) {
	return s.mutate(ctx, chatID, func(subscriber *models.Subscriber) bool {
		return subscriber.UpdateTitle(title)
	})
}

func (s *SubscriptionService) mutateTags(
	ctx context.Context,
	chatID int64,
	apply func(subscriber *models.Subscriber) bool,
) (*models.Subscriber, bool, error) {
	var result *models.Subscriber

	changed, err := s.mutate(ctx, chatID, func(subscriber *models.Subscriber) bool {
		result = subscriber
		return apply(subscriber)
	})
	if err != nil {
		return nil, false, err
	}

	return result, changed, nil
}

// mutate загружает запись, применяет apply и сохраняет ее, только если apply сообщил об изменении.
func (s *SubscriptionService) mutate(
	ctx context.Context,
	chatID int64,
	apply func(subscriber *models.Subscriber) bool,
) (bool, error) {
	var changed bool

	err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		subscriber, ok := s.Find(ctx, chatID)
		if !ok {
			return &customerrors.ErrSubscriberNotFound{ChatID: chatID}
		}

		if !apply(subscriber) {
			return nil
		}

		if err := s.repo.Save(ctx, subscriber); err != nil {
			return err
		}

		changed = true

		return nil
	})
	if err != nil {
		return false, err
	}

	return changed, nil
}
