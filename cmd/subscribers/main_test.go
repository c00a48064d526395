package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/central-university-dev/post-broadcaster/internal/bot/repository/memory"
	servicemocks "github.com/central-university-dev/post-broadcaster/internal/bot/service/mocks"
	"github.com/central-university-dev/post-broadcaster/internal/domain/models"
	txmocks "github.com/central-university-dev/post-broadcaster/pkg/txs/mocks"
)

func TestDumpLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	source := memory.NewSubscriberRepository()

	hikers, err := source.Create(ctx, -1, "Hikers")
	require.NoError(t, err)

	hikers.Enable()
	hikers.SetTags(models.NewTagSet("sports", "local"))
	require.NoError(t, source.Save(ctx, hikers))

	_, err = source.Create(ctx, -2, "")
	require.NoError(t, err)

	var buf bytes.Buffer

	require.NoError(t, dump(ctx, source, source, &buf))

	var file map[string][]map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &file))
	require.Len(t, file["ReceiverGroup"], 2)
	assert.Nil(t, file["ReceiverGroup"][1]["title"], "Пустое название выгружается как null")

	target := memory.NewSubscriberRepository()

	count, err := load(ctx, target, target, &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	loaded, err := target.FindByID(ctx, -1)
	require.NoError(t, err)
	assert.True(t, loaded.IsEnabled())
	assert.Equal(t, "Hikers", loaded.Title)
	assert.Equal(t, []string{"local", "sports"}, loaded.Tags)
}

func TestDump_Empty(t *testing.T) {
	repo := memory.NewSubscriberRepository()

	var buf bytes.Buffer

	require.NoError(t, dump(context.Background(), repo, repo, &buf))
	assert.JSONEq(t, `{"ReceiverGroup": []}`, buf.String())
}

func TestLoad_InvalidJSON(t *testing.T) {
	repo := memory.NewSubscriberRepository()

	_, err := load(context.Background(), repo, repo, strings.NewReader("{"))

	require.Error(t, err)
}

func TestLoad_StorageFailure(t *testing.T) {
	repo := servicemocks.NewSubscriberRepository(t)
	txManager := txmocks.NewTransactor(t)

	errWrite := errors.New("write failed")

	txManager.On("WithTransaction", mock.Anything, mock.Anything).
		Return(func(ctx context.Context, txFunc func(context.Context) error) error {
			return txFunc(ctx)
		})
	repo.On("LoadAll", mock.Anything, mock.Anything).Return(errWrite)

	_, err := load(context.Background(), repo, txManager, strings.NewReader(`{"ReceiverGroup": [{"chat_id": -1}]}`))

	require.ErrorIs(t, err, errWrite)
}
