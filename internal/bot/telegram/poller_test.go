package telegram_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	domainmocks "github.com/central-university-dev/post-broadcaster/internal/bot/domain/mocks"
	"github.com/central-university-dev/post-broadcaster/internal/bot/telegram"
	"github.com/central-university-dev/post-broadcaster/internal/bot/telegram/mocks"
	"github.com/central-university-dev/post-broadcaster/internal/common"
	customerrors "github.com/central-university-dev/post-broadcaster/internal/domain/errors"
	"github.com/central-university-dev/post-broadcaster/internal/domain/models"
)

const sourceChannelID = int64(-1001)

type pollerFixture struct {
	poller     *telegram.Poller
	client     *domainmocks.TelegramClientAPI
	commands   *mocks.CommandProcessor
	dispatcher *mocks.PostDispatcher
}

func newFixture(t *testing.T, cfg telegram.Config) *pollerFixture {
	t.Helper()

	f := &pollerFixture{
		client:     domainmocks.NewTelegramClientAPI(t),
		commands:   mocks.NewCommandProcessor(t),
		dispatcher: mocks.NewPostDispatcher(t),
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.poller = telegram.NewPoller(f.client, f.commands, f.dispatcher, cfg, logger)

	return f
}

func channelConfig(t *testing.T, pattern string, enabled bool) telegram.Config {
	t.Helper()

	filter, err := common.NewPostFilter(sourceChannelID, pattern)
	require.NoError(t, err)

	return telegram.Config{Filter: filter, DispatchChannelPosts: enabled}
}

func channelPost(chatID int64, text string) *tgbotapi.Update {
	return &tgbotapi.Update{
		ChannelPost: &tgbotapi.Message{
			MessageID: 77,
			Chat:      &tgbotapi.Chat{ID: chatID, Type: "channel"},
			Text:      text,
			Entities:  []tgbotapi.MessageEntity{{Type: "hashtag", Offset: 0, Length: 7}},
		},
	}
}

func commandUpdate(chatType, text, command string) *tgbotapi.Update {
	return &tgbotapi.Update{
		Message: &tgbotapi.Message{
			MessageID: 5,
			Chat:      &tgbotapi.Chat{ID: -500, Type: chatType, Title: "Hikers"},
			From:      &tgbotapi.User{ID: 1, UserName: "alice"},
			Text:      text,
			Entities:  []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(command)}},
		},
	}
}

func TestPoller_DispatchesSourceChannelPost(t *testing.T) {
	f := newFixture(t, channelConfig(t, "", true))

	f.dispatcher.On("Dispatch", mock.Anything, mock.MatchedBy(func(post *models.Post) bool {
		return post.ChatID == sourceChannelID &&
			post.MessageID == 77 &&
			post.Text == "#sports tonight" &&
			len(post.Entities) == 1 &&
			post.Entities[0] == models.MessageEntity{Type: models.EntityHashtag, Offset: 0, Length: 7}
	})).Return(&models.DispatchResult{}, nil).Once()

	f.poller.HandleUpdate(context.Background(), channelPost(sourceChannelID, "#sports tonight"))
}

func TestPoller_SkipsForeignChannel(t *testing.T) {
	f := newFixture(t, channelConfig(t, "", true))

	f.poller.HandleUpdate(context.Background(), channelPost(-42, "#sports tonight"))

	f.dispatcher.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything)
}

func TestPoller_PostPattern(t *testing.T) {
	f := newFixture(t, channelConfig(t, `tonight`, true))

	f.dispatcher.On("Dispatch", mock.Anything, mock.Anything).Return(&models.DispatchResult{}, nil).Once()

	f.poller.HandleUpdate(context.Background(), channelPost(sourceChannelID, "#sports tonight"))
	f.poller.HandleUpdate(context.Background(), channelPost(sourceChannelID, "#sports tomorrow"))
}

func TestPoller_ChannelPostsDisabled(t *testing.T) {
	f := newFixture(t, channelConfig(t, "", false))

	f.poller.HandleUpdate(context.Background(), channelPost(sourceChannelID, "#sports tonight"))

	f.dispatcher.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything)
}

func TestPoller_DispatchErrorIsLogged(t *testing.T) {
	f := newFixture(t, channelConfig(t, "", true))

	f.dispatcher.On("Dispatch", mock.Anything, mock.Anything).Return(nil, errors.New("storage down")).Once()

	assert.NotPanics(t, func() {
		f.poller.HandleUpdate(context.Background(), channelPost(sourceChannelID, "#sports tonight"))
	})
}

func TestPoller_CommandReply(t *testing.T) {
	f := newFixture(t, telegram.Config{})

	f.commands.On("ProcessCommand", mock.Anything, mock.MatchedBy(func(command *models.Command) bool {
		return command.Type == models.CommandSetTags &&
			command.ChatID == -500 &&
			command.ChatType == models.ChatSupergroup &&
			command.ChatTitle == "Hikers" &&
			command.Username == "alice" &&
			assert.ObjectsAreEqual([]string{"sports", "news"}, command.Args)
	})).Return("Tags updated.", nil).Once()
	f.client.On("SendMessage", mock.Anything, int64(-500), "Tags updated.").Return(nil).Once()

	f.poller.HandleUpdate(context.Background(), commandUpdate("supergroup", "/settags@broadcast_bot sports news", "/settags@broadcast_bot"))
}

func TestPoller_CommandsForOtherBots(t *testing.T) {
	f := newFixture(t, telegram.Config{BotUsername: "broadcast_bot"})

	f.commands.On("ProcessCommand", mock.Anything, mock.MatchedBy(func(command *models.Command) bool {
		return command.Type == models.CommandDisable
	})).Return("Broadcasting disabled.", nil).Once()
	f.client.On("SendMessage", mock.Anything, int64(-500), "Broadcasting disabled.").Return(nil).Once()

	f.poller.HandleUpdate(context.Background(), commandUpdate("supergroup", "/disable@SomeOtherBot", "/disable@SomeOtherBot"))
	f.poller.HandleUpdate(context.Background(), commandUpdate("supergroup", "/disable@Broadcast_Bot", "/disable@Broadcast_Bot"))
}

func TestAddressedTo(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		username string
		expected bool
	}{
		{name: "без суффикса", text: "/status", username: "broadcast_bot", expected: true},
		{name: "свой бот", text: "/status@broadcast_bot", username: "broadcast_bot", expected: true},
		{name: "чужой бот", text: "/status@other_bot", username: "broadcast_bot", expected: false},
		{name: "имя бота неизвестно", text: "/status@other_bot", username: "", expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			command := strings.Fields(tt.text)[0]
			update := commandUpdate("group", tt.text, command)

			assert.Equal(t, tt.expected, telegram.AddressedTo(update.Message, tt.username))
		})
	}
}

func TestPoller_EmptyReplyIsNotSent(t *testing.T) {
	f := newFixture(t, telegram.Config{})

	f.commands.On("ProcessCommand", mock.Anything, mock.Anything).Return("", nil).Once()

	f.poller.HandleUpdate(context.Background(), commandUpdate("group", "/enable", "/enable"))

	f.client.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything, mock.Anything)
}

func TestPoller_CommandErrors(t *testing.T) {
	tests := []struct {
		name     string
		response string
		err      error
		expected string
	}{
		{
			name:     "неизвестная команда сохраняет ответ",
			response: "Unknown command. Use /help to see available commands.",
			err:      &customerrors.ErrUnknownCommand{Command: "/weather"},
			expected: "Unknown command. Use /help to see available commands.",
		},
		{
			name:     "непредвиденная ошибка заменяется общим ответом",
			err:      errors.New("storage down"),
			expected: "Something went wrong. Please try again later.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, telegram.Config{})

			f.commands.On("ProcessCommand", mock.Anything, mock.Anything).Return(tt.response, tt.err).Once()
			f.client.On("SendMessage", mock.Anything, int64(-500), tt.expected).Return(nil).Once()

			f.poller.HandleUpdate(context.Background(), commandUpdate("private", "/weather", "/weather"))
		})
	}
}

func TestPoller_IgnoresPlainMessages(t *testing.T) {
	f := newFixture(t, telegram.Config{})

	f.poller.HandleUpdate(context.Background(), &tgbotapi.Update{
		Message: &tgbotapi.Message{
			Chat: &tgbotapi.Chat{ID: -500, Type: "group"},
			Text: "hello",
		},
	})

	f.commands.AssertNotCalled(t, "ProcessCommand", mock.Anything, mock.Anything)
}

func TestPostFromMessage_UsesCaption(t *testing.T) {
	post := telegram.PostFromMessage(&tgbotapi.Message{
		MessageID:       3,
		Chat:            &tgbotapi.Chat{ID: sourceChannelID},
		Caption:         "photo #news",
		CaptionEntities: []tgbotapi.MessageEntity{{Type: "hashtag", Offset: 6, Length: 5}},
	})

	assert.Equal(t, "photo #news", post.Text)
	require.Len(t, post.Entities, 1)
	assert.Equal(t, 6, post.Entities[0].Offset)
}

func TestPoller_StartWithoutBot(t *testing.T) {
	f := newFixture(t, telegram.Config{})

	f.client.On("GetBot").Return(nil).Once()

	err := f.poller.Start(context.Background())

	var notInitialized *customerrors.ErrTelegramNotInitialized
	require.ErrorAs(t, err, &notInitialized)
	require.NoError(t, f.poller.Close())
}
