package clients_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/central-university-dev/post-broadcaster/internal/bot/clients"
	"github.com/central-university-dev/post-broadcaster/internal/bot/domain"
	domainerrors "github.com/central-university-dev/post-broadcaster/internal/domain/errors"
)

const testToken = "123:test"

type fakeBotAPI struct {
	mu       sync.Mutex
	calls    []string
	forms    map[string][]map[string]string
	handlers map[string]string
}

func newFakeBotAPI() *fakeBotAPI {
	return &fakeBotAPI{
		forms: make(map[string][]map[string]string),
		handlers: map[string]string{
			"getMe": `{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"Broadcaster","username":"broadcaster_bot"}}`,
		},
	}
}

func (f *fakeBotAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	method := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]

	_ = r.ParseForm()

	form := make(map[string]string, len(r.PostForm))
	for key := range r.PostForm {
		form[key] = r.PostForm.Get(key)
	}

	f.mu.Lock()
	f.calls = append(f.calls, method)
	f.forms[method] = append(f.forms[method], form)
	body, ok := f.handlers[method]
	f.mu.Unlock()

	if !ok {
		body = `{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":1,"type":"group"}}}`
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, body)
}

func (f *fakeBotAPI) respond(method, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.handlers[method] = body
}

func (f *fakeBotAPI) lastForm(method string) map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()

	forms := f.forms[method]
	if len(forms) == 0 {
		return nil
	}

	return forms[len(forms)-1]
}

func newTestClient(t *testing.T, api *fakeBotAPI) *clients.TelegramClient {
	t.Helper()

	server := httptest.NewServer(api)
	t.Cleanup(server.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return clients.NewTelegramClient(testToken, server.URL+"/bot%s/%s", server.Client(), logger)
}

func TestTelegramClient_ForwardMessage(t *testing.T) {
	api := newFakeBotAPI()
	client := newTestClient(t, api)
	require.NotNil(t, client.GetBot())

	err := client.ForwardMessage(context.Background(), -1002, -1001, 42)

	require.NoError(t, err)

	form := api.lastForm("forwardMessage")
	require.NotNil(t, form)
	assert.Equal(t, "-1002", form["chat_id"])
	assert.Equal(t, "-1001", form["from_chat_id"])
	assert.Equal(t, "42", form["message_id"])
}

func TestTelegramClient_ForwardMessage_Rejected(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		rejected bool
	}{
		{
			name:     "бот удален из чата",
			body:     `{"ok":false,"error_code":403,"description":"Forbidden: bot was kicked from the group chat"}`,
			rejected: true,
		},
		{
			name:     "сообщение удалено",
			body:     `{"ok":false,"error_code":400,"description":"Bad Request: message to forward not found"}`,
			rejected: true,
		},
		{
			name:     "превышен лимит",
			body:     `{"ok":false,"error_code":429,"description":"Too Many Requests: retry after 5","parameters":{"retry_after":5}}`,
			rejected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeBotAPI()
			api.respond("forwardMessage", tt.body)
			client := newTestClient(t, api)

			err := client.ForwardMessage(context.Background(), -1002, -1001, 42)
			require.Error(t, err)

			var rejected *domainerrors.ErrForwardRejected

			assert.Equal(t, tt.rejected, errors.As(err, &rejected))

			if !tt.rejected {
				var transportErr *domainerrors.ErrTransport
				assert.ErrorAs(t, err, &transportErr)
			}
		})
	}
}

func TestTelegramClient_GetChatTitle(t *testing.T) {
	api := newFakeBotAPI()
	api.respond("getChat", `{"ok":true,"result":{"id":-1002,"type":"supergroup","title":"Weekend Hikers"}}`)
	client := newTestClient(t, api)

	title, err := client.GetChatTitle(context.Background(), -1002)

	require.NoError(t, err)
	assert.Equal(t, "Weekend Hikers", title)
	assert.Equal(t, "-1002", api.lastForm("getChat")["chat_id"])
}

func TestTelegramClient_SendMessageAndCommands(t *testing.T) {
	api := newFakeBotAPI()
	api.respond("setMyCommands", `{"ok":true,"result":true}`)
	client := newTestClient(t, api)

	require.NoError(t, client.SendMessage(context.Background(), -1002, "Broadcasting enabled."))
	assert.Equal(t, "Broadcasting enabled.", api.lastForm("sendMessage")["text"])

	require.NoError(t, client.SetMyCommands(context.Background(), domain.DefaultCommands()))
	assert.Contains(t, api.lastForm("setMyCommands")["commands"], `"command":"enable"`)
}

func TestTelegramClient_NotInitialized(t *testing.T) {
	api := newFakeBotAPI()
	api.respond("getMe", `{"ok":false,"error_code":401,"description":"Unauthorized"}`)
	client := newTestClient(t, api)

	assert.Nil(t, client.GetBot())

	err := client.ForwardMessage(context.Background(), 1, 2, 3)

	var notInitialized *domainerrors.ErrTelegramNotInitialized
	assert.ErrorAs(t, err, &notInitialized)
}
