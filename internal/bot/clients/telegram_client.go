package clients

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/central-university-dev/post-broadcaster/internal/bot/domain"
	domainerrors "github.com/central-university-dev/post-broadcaster/internal/domain/errors"
)

type TelegramClient struct {
	bot    *tgbotapi.BotAPI
	logger *slog.Logger
}

// NewTelegramClient создает клиента Bot API. При пустом endpoint используется tgbotapi.APIEndpoint.
// Если бот не прошел getMe, клиент создается без API и все вызовы возвращают ErrTelegramNotInitialized.
func NewTelegramClient(token, endpoint string, httpClient tgbotapi.HTTPClient, logger *slog.Logger) *TelegramClient {
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}

	if httpClient == nil {
		httpClient = &http.Client{}
	}

	bot, err := tgbotapi.NewBotAPIWithClient(token, endpoint, httpClient)
	if err != nil {
		logger.Error("Ошибка при создании Telegram клиента", "error", err)

		bot = nil
	} else {
		logger.Info("Telegram клиент создан", "username", bot.Self.UserName)
	}

	return &TelegramClient{
		bot:    bot,
		logger: logger,
	}
}

func (c *TelegramClient) SendMessage(_ context.Context, chatID int64, text string) error {
	if c.bot == nil {
		return &domainerrors.ErrTelegramNotInitialized{}
	}

	msg := tgbotapi.NewMessage(chatID, text)

	if _, err := c.bot.Send(msg); err != nil {
		return classifyError("sendMessage", chatID, err)
	}

	return nil
}

func (c *TelegramClient) ForwardMessage(_ context.Context, toChatID, fromChatID int64, messageID int) error {
	if c.bot == nil {
		return &domainerrors.ErrTelegramNotInitialized{}
	}

	forward := tgbotapi.NewForward(toChatID, fromChatID, messageID)

	if _, err := c.bot.Send(forward); err != nil {
		return classifyError("forwardMessage", toChatID, err)
	}

	return nil
}

func (c *TelegramClient) GetChatTitle(_ context.Context, chatID int64) (string, error) {
	if c.bot == nil {
		return "", &domainerrors.ErrTelegramNotInitialized{}
	}

	chat, err := c.bot.GetChat(tgbotapi.ChatInfoConfig{
		ChatConfig: tgbotapi.ChatConfig{ChatID: chatID},
	})
	if err != nil {
		return "", classifyError("getChat", chatID, err)
	}

	return chat.Title, nil
}

func (c *TelegramClient) SetMyCommands(_ context.Context, commands []domain.BotCommand) error {
	if c.bot == nil {
		return &domainerrors.ErrTelegramNotInitialized{}
	}

	botAPICommands := make([]tgbotapi.BotCommand, 0, len(commands))
	for _, cmd := range commands {
		botAPICommands = append(botAPICommands, tgbotapi.BotCommand{
			Command:     cmd.Command,
			Description: cmd.Description,
		})
	}

	setCommandsConfig := tgbotapi.NewSetMyCommands(botAPICommands...)

	if _, err := c.bot.Request(setCommandsConfig); err != nil {
		return fmt.Errorf("ошибка при установке команд бота: %w", err)
	}

	return nil
}

func (c *TelegramClient) GetBot() *tgbotapi.BotAPI {
	return c.bot
}

// classifyError отделяет отказ Telegram выполнить запрос (4xx, кроме 429) от сбоев транспорта.
func classifyError(operation string, chatID int64, err error) error {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) && apiErr.Code >= http.StatusBadRequest &&
		apiErr.Code < http.StatusInternalServerError && apiErr.Code != http.StatusTooManyRequests {
		return &domainerrors.ErrForwardRejected{ChatID: chatID, Code: apiErr.Code, Cause: err}
	}

	return &domainerrors.ErrTransport{Operation: operation, Cause: err}
}
