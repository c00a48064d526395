package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"
)

const titleKeyPrefix = "chat_title:"

type TitleCache interface {
	// GetTitle возвращает ok=false, если значения нет в кэше.
	GetTitle(ctx context.Context, chatID int64) (title string, ok bool, err error)
	SetTitle(ctx context.Context, chatID int64, title string) error
	DeleteTitle(ctx context.Context, chatID int64) error
}

type RedisTitleCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedisTitleCache(redisURL, password string, db int, ttl time.Duration, logger *slog.Logger) (*RedisTitleCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     redisURL,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ошибка при подключении к Redis: %w", err)
	}

	logger.Info("Соединение с Redis успешно установлено", "ttl", ttl)

	return &RedisTitleCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}, nil
}

func titleKey(chatID int64) string {
	return fmt.Sprintf("%s%d", titleKeyPrefix, chatID)
}

func (c *RedisTitleCache) GetTitle(ctx context.Context, chatID int64) (string, bool, error) {
	title, err := c.client.Get(ctx, titleKey(chatID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			c.logger.Debug("Название чата не найдено в кэше", "chat_id", chatID)

			return "", false, nil
		}

		return "", false, fmt.Errorf("ошибка при получении данных из Redis: %w", err)
	}

	return title, true, nil
}

func (c *RedisTitleCache) SetTitle(ctx context.Context, chatID int64, title string) error {
	if err := c.client.Set(ctx, titleKey(chatID), title, c.ttl).Err(); err != nil {
		return fmt.Errorf("ошибка при сохранении данных в Redis: %w", err)
	}

	c.logger.Debug("Название чата сохранено в кэш", "chat_id", chatID, "ttl", c.ttl)

	return nil
}

func (c *RedisTitleCache) DeleteTitle(ctx context.Context, chatID int64) error {
	if err := c.client.Del(ctx, titleKey(chatID)).Err(); err != nil {
		return fmt.Errorf("ошибка при удалении данных из Redis: %w", err)
	}

	return nil
}

func (c *RedisTitleCache) Close() error {
	return c.client.Close()
}
