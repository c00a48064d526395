package telegram

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/central-university-dev/post-broadcaster/internal/bot/domain"
	"github.com/central-university-dev/post-broadcaster/internal/common"
	customerrors "github.com/central-university-dev/post-broadcaster/internal/domain/errors"
	"github.com/central-university-dev/post-broadcaster/internal/domain/models"
)

const (
	updatesTimeout = 60
	commandTimeout = 10 * time.Second

	replyFailure = "Something went wrong. Please try again later."
)

type CommandProcessor interface {
	ProcessCommand(ctx context.Context, command *models.Command) (string, error)
}

type PostDispatcher interface {
	Dispatch(ctx context.Context, post *models.Post) (*models.DispatchResult, error)
}

type Config struct {
	Filter *common.PostFilter
	// DispatchChannelPosts выключается, когда посты приходят через Kafka.
	DispatchChannelPosts bool
	// BotUsername нужен, чтобы отбросить команды вида /cmd@OtherBot. Пустое значение принимает все.
	BotUsername string
}

// Poller получает обновления long polling'ом и обрабатывает их последовательно.
type Poller struct {
	telegramClient domain.TelegramClientAPI
	commands       CommandProcessor
	dispatcher     PostDispatcher
	cfg            Config
	logger         *slog.Logger

	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once
}

func NewPoller(
	telegramClient domain.TelegramClientAPI,
	commands CommandProcessor,
	dispatcher PostDispatcher,
	cfg Config,
	logger *slog.Logger,
) *Poller {
	return &Poller{
		telegramClient: telegramClient,
		commands:       commands,
		dispatcher:     dispatcher,
		cfg:            cfg,
		logger:         logger,
		done:           make(chan struct{}),
	}
}

func (p *Poller) Start(ctx context.Context) error {
	p.logger.Info("Запуск Telegram поллера", "dispatch_channel_posts", p.cfg.DispatchChannelPosts)

	bot := p.telegramClient.GetBot()
	if bot == nil {
		return &customerrors.ErrTelegramNotInitialized{}
	}

	ctx, p.cancel = context.WithCancel(ctx)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = updatesTimeout

	updates := bot.GetUpdatesChan(u)

	go func() {
		defer close(p.done)
		defer bot.StopReceivingUpdates()

		for {
			select {
			case <-ctx.Done():
				p.logger.Info("Получен сигнал остановки поллера")
				return
			case update, ok := <-updates:
				if !ok {
					return
				}

				p.HandleUpdate(ctx, &update)
			}
		}
	}()

	return nil
}

// Close останавливает получение обновлений и дожидается завершения текущей обработки.
func (p *Poller) Close() error {
	if p.cancel == nil {
		return nil
	}

	p.stopOnce.Do(func() {
		p.logger.Info("Остановка Telegram поллера")
		p.cancel()
	})

	<-p.done

	return nil
}

func (p *Poller) HandleUpdate(ctx context.Context, update *tgbotapi.Update) {
	switch {
	case update.ChannelPost != nil:
		p.handleChannelPost(ctx, update.ChannelPost)
	case update.Message != nil && update.Message.IsCommand():
		p.handleCommand(ctx, update.Message)
	}
}

func (p *Poller) handleChannelPost(ctx context.Context, message *tgbotapi.Message) {
	if !p.cfg.DispatchChannelPosts || p.cfg.Filter == nil {
		return
	}

	post := PostFromMessage(message)

	if !p.cfg.Filter.Accepts(post) {
		p.logger.Debug("Пост пропущен фильтром", "chat_id", post.ChatID, "message_id", post.MessageID)
		return
	}

	if _, err := p.dispatcher.Dispatch(ctx, post); err != nil {
		p.logger.Error("Ошибка при рассылке поста", "error", err, "message_id", message.MessageID)
	}
}

func (p *Poller) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	if !AddressedTo(message, p.cfg.BotUsername) {
		p.logger.Debug("Команда адресована другому боту", "text", message.Text)
		return
	}

	command := CommandFromMessage(message)

	p.logger.Info("Получена команда",
		"chat_id", command.ChatID,
		"chat_type", command.ChatType,
		"username", command.Username,
		"text", command.Text,
	)

	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	response, err := p.commands.ProcessCommand(ctx, command)
	if err != nil {
		var unknown *customerrors.ErrUnknownCommand
		if errors.As(err, &unknown) {
			p.logger.Debug("Неизвестная команда", "chat_id", command.ChatID, "text", command.Text)
		} else {
			p.logger.Error("Ошибка при обработке команды",
				"error", err,
				"chat_id", command.ChatID,
				"text", command.Text,
			)

			response = replyFailure
		}
	}

	if response == "" {
		return
	}

	if err := p.telegramClient.SendMessage(ctx, command.ChatID, response); err != nil {
		p.logger.Error("Ошибка при отправке ответа", "error", err, "chat_id", command.ChatID)
	}
}

// PostFromMessage берет подпись и ее разметку, если у поста нет текста (медиа-пост).
func PostFromMessage(message *tgbotapi.Message) *models.Post {
	text, entities := message.Text, message.Entities
	if text == "" {
		text, entities = message.Caption, message.CaptionEntities
	}

	post := &models.Post{
		MessageID: message.MessageID,
		Text:      text,
		Entities:  make([]models.MessageEntity, 0, len(entities)),
	}

	if message.Chat != nil {
		post.ChatID = message.Chat.ID
	}

	for _, entity := range entities {
		post.Entities = append(post.Entities, models.MessageEntity{
			Type:   entity.Type,
			Offset: entity.Offset,
			Length: entity.Length,
		})
	}

	return post
}

// AddressedTo сообщает, относится ли команда к боту username: без суффикса @ она общая.
func AddressedTo(message *tgbotapi.Message, username string) bool {
	_, target, found := strings.Cut(message.CommandWithAt(), "@")
	if !found || username == "" {
		return true
	}

	return strings.EqualFold(target, strings.TrimPrefix(username, "@"))
}

func CommandFromMessage(message *tgbotapi.Message) *models.Command {
	command := &models.Command{
		Type: models.ParseCommandType("/" + message.Command()),
		Text: message.Text,
		Args: strings.Fields(message.CommandArguments()),
	}

	if message.Chat != nil {
		command.ChatID = message.Chat.ID
		command.ChatType = models.ChatType(message.Chat.Type)
		command.ChatTitle = message.Chat.Title
	}

	if message.From != nil {
		command.UserID = message.From.ID
		command.Username = message.From.UserName
	}

	return command
}
