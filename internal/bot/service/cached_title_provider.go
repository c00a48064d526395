package service

import (
	"context"
	"log/slog"

	"github.com/central-university-dev/post-broadcaster/internal/bot/cache"
)

// CachedTitleProvider отдает названия чатов из кэша и ходит в Telegram только при промахе.
// Ошибки кэша не мешают получить название напрямую.
type CachedTitleProvider struct {
	provider TitleProvider
	cache    cache.TitleCache
	logger   *slog.Logger
}

func NewCachedTitleProvider(provider TitleProvider, titleCache cache.TitleCache, logger *slog.Logger) *CachedTitleProvider {
	return &CachedTitleProvider{
		provider: provider,
		cache:    titleCache,
		logger:   logger,
	}
}

func (p *CachedTitleProvider) GetChatTitle(ctx context.Context, chatID int64) (string, error) {
	title, ok, err := p.cache.GetTitle(ctx, chatID)
	if err != nil {
		p.logger.Error("Ошибка при чтении названия чата из кэша", "error", err, "chat_id", chatID)
	} else if ok {
		return title, nil
	}

	title, err = p.provider.GetChatTitle(ctx, chatID)
	if err != nil {
		return "", err
	}

	if err := p.cache.SetTitle(ctx, chatID, title); err != nil {
		p.logger.Error("Ошибка при кэшировании названия чата", "error", err, "chat_id", chatID)
	}

	return title, nil
}
