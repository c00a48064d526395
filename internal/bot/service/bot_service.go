package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/central-university-dev/post-broadcaster/internal/common"
	"github.com/central-university-dev/post-broadcaster/internal/common/metrics"
	domainerrors "github.com/central-university-dev/post-broadcaster/internal/domain/errors"
	"github.com/central-university-dev/post-broadcaster/internal/domain/models"
)

const HelpText = `Post Broadcaster Bot is dedicated to sharing posts from channels with multiple groups.
Add bot to group chat and use /start command.

Group admin commands:
/start - register this group chat
/enable - enable broadcasting to this group chat
/disable - disable broadcasting to this group chat
/status - show broadcasting state and tags
/tags - show tags, or change them: /tags +news -sports
/settags <tags> - replace tags
/addtags <tags> - add tags
/removetags <tags> - remove tags

/debug - show chat id and type`

const (
	replyStartFirst     = "Use /start first."
	replyGroupOnly      = "This command works in group chats only."
	replyAlreadyEnabled = "Post broadcasting already enabled."
	replyGreetings      = "Greetings!\nUse command /enable to enable post broadcasting to this group chat."
	replyEnabled        = "Broadcasting to this group chat successfully enabled."
	replyEnabledNoop    = "Broadcasting to this group chat is already enabled."
	replyDisabled       = "Broadcasting to this group chat successfully disabled."
	replyDisabledNoop   = "Broadcasting to this group chat is already disabled."
	replyTagsUnchanged  = "Tags unchanged."
	replyNoTagArguments = "Specify at least one tag."
	replyUnknownCommand = "Unknown command. Use /help to see available commands."
)

const (
	commandStatusSuccess  = "success"
	commandStatusError    = "error"
	commandStatusIgnored  = "ignored"
	commandStatusRejected = "rejected"
)

// BotService переводит команды чатов в операции SubscriptionService и формирует ответы.
// Пустой ответ означает, что отвечать не нужно.
type BotService struct {
	subscriptions *SubscriptionService
	engine        *common.TagEngine
	admins        map[string]struct{}
	logger        *slog.Logger
	tracer        trace.Tracer
}

func NewBotService(
	subscriptions *SubscriptionService,
	engine *common.TagEngine,
	adminUsernames []string,
	logger *slog.Logger,
) *BotService {
	admins := make(map[string]struct{}, len(adminUsernames))
	for _, username := range adminUsernames {
		if username = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(username), "@")); username != "" {
			admins[username] = struct{}{}
		}
	}

	if len(admins) == 0 {
		logger.Warn("Список администраторов пуст, команды в группах будут игнорироваться")
	}

	return &BotService{
		subscriptions: subscriptions,
		engine:        engine,
		admins:        admins,
		logger:        logger,
		tracer:        otel.Tracer(tracerName),
	}
}

func (s *BotService) IsAdmin(username string) bool {
	_, ok := s.admins[strings.ToLower(username)]
	return ok
}

func (s *BotService) ProcessCommand(ctx context.Context, command *models.Command) (string, error) {
	ctx, span := s.tracer.Start(ctx, "BotService.ProcessCommand", trace.WithAttributes(
		attribute.String("command.type", string(command.Type)),
		attribute.Int64("command.chat_id", command.ChatID),
		attribute.String("command.chat_type", string(command.ChatType)),
	))
	defer span.End()

	response, status, err := s.process(ctx, command)

	metrics.RecordCommand(string(command.Type), status)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, status)
	}

	return response, err
}

func (s *BotService) process(ctx context.Context, command *models.Command) (string, string, error) {
	//nolint:exhaustive // остальные команды требуют группового чата
	switch command.Type {
	case models.CommandHelp:
		return HelpText, commandStatusSuccess, nil
	case models.CommandDebug:
		return fmt.Sprintf("chat_id: %d\nchat_type: %s", command.ChatID, command.ChatType), commandStatusSuccess, nil
	case models.CommandUnknown:
		response := ""
		if !command.ChatType.IsGroup() {
			response = replyUnknownCommand
		}

		return response, commandStatusRejected, &domainerrors.ErrUnknownCommand{Command: command.Text}
	}

	if command.Type == models.CommandStart && !command.ChatType.IsGroup() {
		return HelpText, commandStatusSuccess, nil
	}

	if !command.ChatType.IsGroup() {
		return replyGroupOnly, commandStatusRejected, nil
	}

	if !s.IsAdmin(command.Username) {
		s.logger.Debug("Команда от пользователя без прав администратора проигнорирована",
			"chat_id", command.ChatID,
			"username", command.Username,
			"command", command.Type,
		)

		return "", commandStatusIgnored, nil
	}

	var (
		response string
		err      error
	)

	//nolint:exhaustive // help, debug и unknown обработаны выше
	switch command.Type {
	case models.CommandStart:
		response, err = s.handleStart(ctx, command)
	case models.CommandEnable:
		response, err = s.handleEnable(ctx, command)
	case models.CommandDisable:
		response, err = s.handleDisable(ctx, command)
	case models.CommandStatus:
		response = s.handleStatus(ctx, command)
	case models.CommandTags:
		response, err = s.handleTags(ctx, command)
	case models.CommandSetTags, models.CommandAddTags, models.CommandRemoveTags:
		response, err = s.handleTagMutation(ctx, command)
	}

	if err != nil {
		var notFound *domainerrors.ErrSubscriberNotFound
		if errors.As(err, &notFound) {
			return replyStartFirst, commandStatusRejected, nil
		}

		return "", commandStatusError, err
	}

	return response, commandStatusSuccess, nil
}

func (s *BotService) handleStart(ctx context.Context, command *models.Command) (string, error) {
	subscriber, err := s.subscriptions.GetOrCreate(ctx, command.ChatID, command.ChatTitle)
	if err != nil {
		return "", err
	}

	if subscriber.IsEnabled() {
		return replyAlreadyEnabled, nil
	}

	return replyGreetings, nil
}

func (s *BotService) handleEnable(ctx context.Context, command *models.Command) (string, error) {
	changed, err := s.subscriptions.Enable(ctx, command.ChatID)
	if err != nil {
		return "", err
	}

	if !changed {
		return replyEnabledNoop, nil
	}

	s.logger.Info("Рассылка включена", "chat_id", command.ChatID, "username", command.Username)

	return replyEnabled, nil
}

func (s *BotService) handleDisable(ctx context.Context, command *models.Command) (string, error) {
	changed, err := s.subscriptions.Disable(ctx, command.ChatID)
	if err != nil {
		return "", err
	}

	if !changed {
		return replyDisabledNoop, nil
	}

	s.logger.Info("Рассылка выключена", "chat_id", command.ChatID, "username", command.Username)

	return replyDisabled, nil
}

func (s *BotService) handleStatus(ctx context.Context, command *models.Command) string {
	subscriber, ok := s.subscriptions.Find(ctx, command.ChatID)
	if !ok {
		return replyStartFirst
	}

	state := "disabled"
	if subscriber.IsEnabled() {
		state = "enabled"
	}

	return fmt.Sprintf("Broadcasting: %s\n%s", state, formatTags(subscriber.TagSet()))
}

func (s *BotService) handleTags(ctx context.Context, command *models.Command) (string, error) {
	if len(command.Args) == 0 {
		subscriber, ok := s.subscriptions.Find(ctx, command.ChatID)
		if !ok {
			return replyStartFirst, nil
		}

		return formatTags(subscriber.TagSet()) + "\n" + s.formatAvailable(), nil
	}

	var addRaw, removeRaw []string

	for _, arg := range command.Args {
		switch {
		case strings.HasPrefix(arg, "+"):
			addRaw = append(addRaw, arg[1:])
		case strings.HasPrefix(arg, "-"):
			removeRaw = append(removeRaw, arg[1:])
		default:
			addRaw = append(addRaw, arg)
		}
	}

	toAdd, rejectedAdd := s.validateTags(addRaw)
	toRemove, rejectedRemove := models.ParseTags(removeRaw)

	if rejected := append(append([]string(nil), rejectedAdd...), rejectedRemove...); len(rejected) > 0 {
		return s.formatRejected(rejected), nil
	}

	subscriber, changed, err := s.subscriptions.UpdateTags(ctx, command.ChatID, toAdd, toRemove)
	if err != nil {
		return "", err
	}

	return s.formatTagResult(subscriber, changed), nil
}

func (s *BotService) handleTagMutation(ctx context.Context, command *models.Command) (string, error) {
	if len(command.Args) == 0 && command.Type != models.CommandSetTags {
		return replyNoTagArguments, nil
	}

	tags, rejected := s.validateTags(command.Args)
	if command.Type == models.CommandRemoveTags {
		tags, rejected = models.ParseTags(command.Args)
	}

	if len(rejected) > 0 {
		return s.formatRejected(rejected), nil
	}

	var (
		subscriber *models.Subscriber
		changed    bool
		err        error
	)

	//nolint:exhaustive // вызывается только для трех команд изменения тегов
	switch command.Type {
	case models.CommandSetTags:
		subscriber, changed, err = s.subscriptions.SetTags(ctx, command.ChatID, tags)
	case models.CommandAddTags:
		subscriber, changed, err = s.subscriptions.AddTags(ctx, command.ChatID, tags)
	case models.CommandRemoveTags:
		subscriber, changed, err = s.subscriptions.RemoveTags(ctx, command.ChatID, tags)
	}

	if err != nil {
		return "", err
	}

	return s.formatTagResult(subscriber, changed), nil
}

// validateTags нормализует теги и отбирает те, на которые нельзя подписаться.
// Удаление проверяет только нормализацию: тег могли убрать из конфигурации, а у чата он остался.
func (s *BotService) validateTags(raw []string) (models.TagSet, []string) {
	parsed, invalid := models.ParseTags(raw)
	known := s.engine.Known()

	rejected := append([]string(nil), invalid...)
	valid := models.NewTagSet()

	for _, tag := range parsed.Sorted() {
		if known.Contains(tag) {
			valid.Add(tag)
		} else {
			rejected = append(rejected, tag)
		}
	}

	return valid, rejected
}

func (s *BotService) formatRejected(rejected []string) string {
	quoted := make([]string, 0, len(rejected))
	for _, tag := range rejected {
		quoted = append(quoted, fmt.Sprintf("%q", tag))
	}

	return fmt.Sprintf("Unknown tags: %s\n%s", strings.Join(quoted, ", "), s.formatAvailable())
}

func (s *BotService) formatAvailable() string {
	known := s.engine.Known()
	if known.Len() == 0 {
		return "No tags are configured."
	}

	return "Available tags: " + known.String()
}

func (s *BotService) formatTagResult(subscriber *models.Subscriber, changed bool) string {
	if !changed {
		return replyTagsUnchanged + "\n" + formatTags(subscriber.TagSet())
	}

	return "Tags updated.\n" + formatTags(subscriber.TagSet())
}

func formatTags(tags models.TagSet) string {
	if tags.Len() == 0 {
		return "Tags: none"
	}

	return "Tags: " + tags.String()
}
