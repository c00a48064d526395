package service

import (
	"context"
	"log/slog"

	"github.com/central-university-dev/post-broadcaster/internal/domain/models"
	"github.com/central-university-dev/post-broadcaster/pkg/txs"
)

// TitleService обновляет сохраненные названия чатов. Ошибка получения названия
// одного чата пропускается и никогда не выключает рассылку в него.
type TitleService struct {
	repo      SubscriberRepository
	txManager txs.Transactor
	provider  TitleProvider
	logger    *slog.Logger
}

func NewTitleService(repo SubscriberRepository, txManager txs.Transactor, provider TitleProvider, logger *slog.Logger) *TitleService {
	return &TitleService{
		repo:      repo,
		txManager: txManager,
		provider:  provider,
		logger:    logger,
	}
}

type titleChange struct {
	chatID int64
	title  string
}

// RefreshAll обновляет названия всех подписчиков и возвращает число измененных записей.
// Названия запрашиваются вне транзакции, сохранение изменений идет одной короткой транзакцией.
func (s *TitleService) RefreshAll(ctx context.Context) (int, error) {
	subscribers, err := s.repo.ListAll(ctx)
	if err != nil {
		return 0, err
	}

	updated, err := s.apply(ctx, s.fetch(ctx, subscribers))
	if err != nil {
		return 0, err
	}

	s.logger.Info("Названия чатов обновлены", "updated", updated)

	return updated, nil
}

// Refresh обновляет названия переданных подписчиков. Ошибки только логируются.
func (s *TitleService) Refresh(ctx context.Context, subscribers []*models.Subscriber) int {
	updated, err := s.apply(ctx, s.fetch(ctx, subscribers))
	if err != nil {
		s.logger.Warn("Не удалось сохранить обновленные названия чатов", "error", err)

		return 0
	}

	return updated
}

// fetch обновляет названия в переданных записях и возвращает только изменившиеся.
func (s *TitleService) fetch(ctx context.Context, subscribers []*models.Subscriber) []titleChange {
	var changes []titleChange

	for _, subscriber := range subscribers {
		title, err := s.provider.GetChatTitle(ctx, subscriber.ChatID)
		if err != nil {
			s.logger.Debug("Не удалось получить название чата", "chat_id", subscriber.ChatID, "error", err)
			continue
		}

		if subscriber.UpdateTitle(title) {
			changes = append(changes, titleChange{chatID: subscriber.ChatID, title: title})
		}
	}

	return changes
}

// apply перечитывает записи внутри транзакции, чтобы не затереть теги и флаг,
// измененные командами, пока шли запросы к Telegram.
func (s *TitleService) apply(ctx context.Context, changes []titleChange) (int, error) {
	if len(changes) == 0 {
		return 0, nil
	}

	var updated int

	err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		updated = 0

		for _, change := range changes {
			subscriber, err := s.repo.FindByID(ctx, change.chatID)
			if err != nil {
				s.logger.Debug("Запись пропала до сохранения названия", "chat_id", change.chatID, "error", err)
				continue
			}

			if !subscriber.UpdateTitle(change.title) {
				continue
			}

			if err := s.repo.Save(ctx, subscriber); err != nil {
				return err
			}

			updated++
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return updated, nil
}
