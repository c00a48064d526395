package service_test

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"unicode/utf16"

	"github.com/central-university-dev/post-broadcaster/internal/bot/repository/memory"
	"github.com/central-university-dev/post-broadcaster/internal/domain/models"
)

const sourceChannelID = int64(-1001)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// countingRepository считает записи поверх in-memory хранилища.
type countingRepository struct {
	*memory.SubscriberRepository
	saves atomic.Int32
}

func newCountingRepository() *countingRepository {
	return &countingRepository{SubscriberRepository: memory.NewSubscriberRepository()}
}

func (r *countingRepository) Save(ctx context.Context, subscriber *models.Subscriber) error {
	r.saves.Add(1)
	return r.SubscriberRepository.Save(ctx, subscriber)
}

// seed создает подписчика с заданным состоянием в обход сервисов.
func seed(repo interface {
	Create(ctx context.Context, chatID int64, title string) (*models.Subscriber, error)
	Save(ctx context.Context, subscriber *models.Subscriber) error
}, chatID int64, enabled bool, tags ...string) {
	ctx := context.Background()

	subscriber, err := repo.Create(ctx, chatID, "")
	if err != nil {
		panic(err)
	}

	subscriber.Enabled = enabled
	subscriber.SetTags(models.NewTagSet(tags...))

	if err := repo.Save(ctx, subscriber); err != nil {
		panic(err)
	}
}

// newPost строит пост из слов: слова с '#' размечаются как хэштеги со смещениями в UTF-16.
func newPost(messageID int, words ...string) *models.Post {
	text := strings.Join(words, " ")
	post := &models.Post{ChatID: sourceChannelID, MessageID: messageID, Text: text}

	offset := 0

	for _, word := range words {
		length := len(utf16.Encode([]rune(word)))

		if strings.HasPrefix(word, "#") {
			post.Entities = append(post.Entities, models.MessageEntity{
				Type:   models.EntityHashtag,
				Offset: offset,
				Length: length,
			})
		}

		offset += length + 1
	}

	return post
}
