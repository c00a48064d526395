package service

import (
	"context"

	"github.com/central-university-dev/post-broadcaster/internal/domain/models"
)

// SubscriberRepository хранит записи подписчиков. Все методы работают в транзакции,
// переданной через контекст, если она там есть.
type SubscriberRepository interface {
	// FindByID возвращает *errors.ErrSubscriberNotFound и в случае отсутствия записи,
	// и при недоступности хранилища (причина лежит в Cause).
	FindByID(ctx context.Context, chatID int64) (*models.Subscriber, error)

	// Create создает выключенную запись без тегов. Если запись уже есть, возвращает ее.
	Create(ctx context.Context, chatID int64, title string) (*models.Subscriber, error)

	ListEnabled(ctx context.Context) ([]*models.Subscriber, error)

	ListAll(ctx context.Context) ([]*models.Subscriber, error)

	Save(ctx context.Context, subscriber *models.Subscriber) error

	DumpAll(ctx context.Context) ([]models.SubscriberDump, error)

	LoadAll(ctx context.Context, dumps []models.SubscriberDump) error
}

type Forwarder interface {
	ForwardMessage(ctx context.Context, toChatID, fromChatID int64, messageID int) error
}

type TitleProvider interface {
	GetChatTitle(ctx context.Context, chatID int64) (string, error)
}

type MessageSender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}
