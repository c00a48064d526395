package domain

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// BotCommand пункт меню команд, который Telegram показывает в клиентах.
type BotCommand struct {
	Command     string
	Description string
}

// DefaultCommands регистрируются через setMyCommands при старте.
func DefaultCommands() []BotCommand {
	return []BotCommand{
		{Command: "start", Description: "register this chat"},
		{Command: "help", Description: "show help"},
		{Command: "enable", Description: "enable broadcasting to this chat"},
		{Command: "disable", Description: "disable broadcasting to this chat"},
		{Command: "status", Description: "show broadcasting state and tags"},
		{Command: "tags", Description: "show or change tags: /tags +news -sports"},
		{Command: "settags", Description: "replace tags"},
		{Command: "addtags", Description: "add tags"},
		{Command: "removetags", Description: "remove tags"},
		{Command: "debug", Description: "show chat id and type"},
	}
}

type CommandRegistrar interface {
	SetMyCommands(ctx context.Context, commands []BotCommand) error
}

// TelegramClientAPI все, что бот делает с Bot API. Сервисы зависят от узких
// интерфейсов пакета service, этот нужен только для сборки в main и поллера.
type TelegramClientAPI interface {
	CommandRegistrar

	SendMessage(ctx context.Context, chatID int64, text string) error

	// ForwardMessage пересылает сообщение без изменений.
	// Отказ Telegram (4xx кроме 429) возвращается как *errors.ErrForwardRejected.
	ForwardMessage(ctx context.Context, toChatID, fromChatID int64, messageID int) error

	GetChatTitle(ctx context.Context, chatID int64) (string, error)

	// GetBot возвращает nil, если клиент создан без рабочего бота.
	GetBot() *tgbotapi.BotAPI
}
