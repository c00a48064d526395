package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/central-university-dev/post-broadcaster/internal/bot/repository/memory"
	"github.com/central-university-dev/post-broadcaster/internal/bot/service"
	servicemocks "github.com/central-university-dev/post-broadcaster/internal/bot/service/mocks"
	customerrors "github.com/central-university-dev/post-broadcaster/internal/domain/errors"
	"github.com/central-university-dev/post-broadcaster/internal/domain/models"
	txmocks "github.com/central-university-dev/post-broadcaster/pkg/txs/mocks"
)

func runInTx(txManager *txmocks.Transactor) {
	txManager.On("WithTransaction", mock.Anything, mock.AnythingOfType("func(context.Context) error")).
		Return(func(ctx context.Context, txFunc func(context.Context) error) error {
			return txFunc(ctx)
		})
}

func TestSubscriptionService_GetOrCreate_Twice(t *testing.T) {
	repo := memory.NewSubscriberRepository()
	subscriptions := service.NewSubscriptionService(repo, repo, discardLogger())
	ctx := context.Background()

	first, err := subscriptions.GetOrCreate(ctx, -100, "Hikers")
	require.NoError(t, err)

	second, err := subscriptions.GetOrCreate(ctx, -100, "Hikers")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.False(t, first.Enabled)
	assert.Empty(t, first.Tags)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1, "Повторный вызов не должен создавать дубликат")
}

func TestSubscriptionService_Find_StorageUnavailable(t *testing.T) {
	repo := servicemocks.NewSubscriberRepository(t)
	txManager := txmocks.NewTransactor(t)
	subscriptions := service.NewSubscriptionService(repo, txManager, discardLogger())

	repo.On("FindByID", mock.Anything, int64(-100)).
		Return(nil, &customerrors.ErrSubscriberNotFound{ChatID: -100, Cause: errors.New("connection refused")})

	subscriber, ok := subscriptions.Find(context.Background(), -100)

	assert.False(t, ok)
	assert.Nil(t, subscriber)
}

func TestSubscriptionService_EnableDisable(t *testing.T) {
	repo := newCountingRepository()
	subscriptions := service.NewSubscriptionService(repo, repo, discardLogger())
	ctx := context.Background()

	_, err := subscriptions.Enable(ctx, -100)

	var notFound *customerrors.ErrSubscriberNotFound
	require.ErrorAs(t, err, &notFound, "Без /start записи нет")

	_, err = subscriptions.GetOrCreate(ctx, -100, "")
	require.NoError(t, err)

	changed, err := subscriptions.Enable(ctx, -100)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = subscriptions.Enable(ctx, -100)
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = subscriptions.Disable(ctx, -100)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = subscriptions.Disable(ctx, -100)
	require.NoError(t, err)
	assert.False(t, changed)

	assert.Equal(t, int32(2), repo.saves.Load(), "Запись сохраняется только при реальном изменении")

	subscriber, ok := subscriptions.Find(ctx, -100)
	require.True(t, ok)
	assert.False(t, subscriber.IsEnabled())
}

func TestSubscriptionService_SetTags_TwiceWritesOnce(t *testing.T) {
	repo := newCountingRepository()
	subscriptions := service.NewSubscriptionService(repo, repo, discardLogger())
	ctx := context.Background()

	_, err := subscriptions.GetOrCreate(ctx, -100, "")
	require.NoError(t, err)

	subscriber, changed, err := subscriptions.SetTags(ctx, -100, models.NewTagSet("Sports", "news"))
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []string{"news", "sports"}, subscriber.Tags)

	subscriber, changed, err = subscriptions.SetTags(ctx, -100, models.NewTagSet("NEWS", "#sports"))
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, []string{"news", "sports"}, subscriber.Tags)

	assert.Equal(t, int32(1), repo.saves.Load())
}

func TestSubscriptionService_UpdateTags(t *testing.T) {
	repo := memory.NewSubscriberRepository()
	subscriptions := service.NewSubscriptionService(repo, repo, discardLogger())
	ctx := context.Background()

	_, err := subscriptions.GetOrCreate(ctx, -100, "")
	require.NoError(t, err)

	subscriber, changed, err := subscriptions.UpdateTags(ctx, -100, models.NewTagSet("a", "b"), models.NewTagSet("a"))
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []string{"b"}, subscriber.Tags)

	subscriber, changed, err = subscriptions.AddTags(ctx, -100, models.NewTagSet("c"))
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []string{"b", "c"}, subscriber.Tags)

	subscriber, changed, err = subscriptions.RemoveTags(ctx, -100, models.NewTagSet("b", "missing"))
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []string{"c"}, subscriber.Tags)

	_, changed, err = subscriptions.RemoveTags(ctx, -100, models.NewTagSet("missing"))
	require.NoError(t, err)
	assert.False(t, changed)

	stored, ok := subscriptions.Find(ctx, -100)
	require.True(t, ok)
	assert.Equal(t, []string{"c"}, stored.Tags)
}

func TestSubscriptionService_UpdateTitle(t *testing.T) {
	repo := memory.NewSubscriberRepository()
	subscriptions := service.NewSubscriptionService(repo, repo, discardLogger())
	ctx := context.Background()

	_, err := subscriptions.GetOrCreate(ctx, -100, "Old")
	require.NoError(t, err)

	changed, err := subscriptions.UpdateTitle(ctx, -100, "New")
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = subscriptions.UpdateTitle(ctx, -100, "New")
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = subscriptions.UpdateTitle(ctx, -100, "")
	require.NoError(t, err)
	assert.True(t, changed, "Пустое название сохраняется как есть")
}

func TestSubscriptionService_SaveFailurePropagates(t *testing.T) {
	repo := servicemocks.NewSubscriberRepository(t)
	txManager := txmocks.NewTransactor(t)
	subscriptions := service.NewSubscriptionService(repo, txManager, discardLogger())

	runInTx(txManager)

	errWrite := errors.New("write failed")

	repo.On("FindByID", mock.Anything, int64(-100)).Return(models.NewSubscriber(-100, ""), nil)
	repo.On("Save", mock.Anything, mock.AnythingOfType("*models.Subscriber")).Return(errWrite)

	changed, err := subscriptions.Enable(context.Background(), -100)

	require.ErrorIs(t, err, errWrite)
	assert.False(t, changed)
}
