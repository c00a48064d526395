package sql

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/central-university-dev/post-broadcaster/internal/database"
	customerrors "github.com/central-university-dev/post-broadcaster/internal/domain/errors"
	"github.com/central-university-dev/post-broadcaster/internal/domain/models"
	"github.com/central-university-dev/post-broadcaster/pkg/txs"
)

const subscriberColumns = "chat_id, enabled, title, tags, created_at, updated_at"

const upsertSubscriberQuery = `
	INSERT INTO receiver_groups (chat_id, enabled, title, tags, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $5)
	ON CONFLICT (chat_id) DO UPDATE SET
		enabled = EXCLUDED.enabled,
		title = EXCLUDED.title,
		tags = EXCLUDED.tags,
		updated_at = EXCLUDED.updated_at`

type SubscriberRepository struct {
	db *database.PostgresDB
}

func NewSubscriberRepository(db *database.PostgresDB) *SubscriberRepository {
	return &SubscriberRepository{db: db}
}

func (r *SubscriberRepository) FindByID(ctx context.Context, chatID int64) (*models.Subscriber, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	row := querier.QueryRow(ctx,
		"SELECT "+subscriberColumns+" FROM receiver_groups WHERE chat_id = $1", chatID)

	subscriber, err := scanSubscriber(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &customerrors.ErrSubscriberNotFound{ChatID: chatID}
		}

		return nil, &customerrors.ErrSubscriberNotFound{ChatID: chatID, Cause: err}
	}

	return subscriber, nil
}

func (r *SubscriberRepository) Create(ctx context.Context, chatID int64, title string) (*models.Subscriber, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	now := time.Now()

	_, err := querier.Exec(ctx, `
		INSERT INTO receiver_groups (chat_id, enabled, title, tags, created_at, updated_at)
		VALUES ($1, FALSE, $2, '[]', $3, $3)
		ON CONFLICT (chat_id) DO NOTHING`,
		chatID, nullableTitle(title), now)
	if err != nil {
		return nil, &customerrors.ErrSQLExecution{Operation: customerrors.OpCreateSubscriber, Cause: err}
	}

	row := querier.QueryRow(ctx,
		"SELECT "+subscriberColumns+" FROM receiver_groups WHERE chat_id = $1", chatID)

	subscriber, err := scanSubscriber(row)
	if err != nil {
		return nil, &customerrors.ErrSQLScan{Entity: "subscriber", Cause: err}
	}

	return subscriber, nil
}

func (r *SubscriberRepository) ListEnabled(ctx context.Context) ([]*models.Subscriber, error) {
	return r.list(ctx, customerrors.OpListEnabled,
		"SELECT "+subscriberColumns+" FROM receiver_groups WHERE enabled = TRUE ORDER BY id")
}

func (r *SubscriberRepository) ListAll(ctx context.Context) ([]*models.Subscriber, error) {
	return r.list(ctx, customerrors.OpListAll,
		"SELECT "+subscriberColumns+" FROM receiver_groups ORDER BY id")
}

func (r *SubscriberRepository) Save(ctx context.Context, subscriber *models.Subscriber) error {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	tagsJSON, err := json.Marshal(subscriber.TagSet().Sorted())
	if err != nil {
		return &customerrors.ErrSQLExecution{Operation: customerrors.OpSaveSubscriber, Cause: err}
	}

	now := time.Now()

	_, err = querier.Exec(ctx, upsertSubscriberQuery,
		subscriber.ChatID, subscriber.Enabled, nullableTitle(subscriber.Title), string(tagsJSON), now)
	if err != nil {
		return &customerrors.ErrSQLExecution{Operation: customerrors.OpSaveSubscriber, Cause: err}
	}

	subscriber.UpdatedAt = now

	return nil
}

func (r *SubscriberRepository) DumpAll(ctx context.Context) ([]models.SubscriberDump, error) {
	subscribers, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	dumps := make([]models.SubscriberDump, 0, len(subscribers))
	for _, subscriber := range subscribers {
		dumps = append(dumps, subscriber.ToDump())
	}

	return dumps, nil
}

func (r *SubscriberRepository) LoadAll(ctx context.Context, dumps []models.SubscriberDump) error {
	for _, dump := range dumps {
		if err := r.Save(ctx, models.SubscriberFromDump(dump)); err != nil {
			return &customerrors.ErrSQLExecution{Operation: customerrors.OpLoadSubscribers, Cause: err}
		}
	}

	return nil
}

func (r *SubscriberRepository) list(ctx context.Context, operation, query string) ([]*models.Subscriber, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	rows, err := querier.Query(ctx, query)
	if err != nil {
		return nil, &customerrors.ErrSQLExecution{Operation: operation, Cause: err}
	}
	defer rows.Close()

	var subscribers []*models.Subscriber

	for rows.Next() {
		subscriber, err := scanSubscriber(rows)
		if err != nil {
			return nil, &customerrors.ErrSQLScan{Entity: "subscriber", Cause: err}
		}

		subscribers = append(subscribers, subscriber)
	}

	if err := rows.Err(); err != nil {
		return nil, &customerrors.ErrSQLExecution{Operation: operation, Cause: err}
	}

	return subscribers, nil
}

func scanSubscriber(row pgx.Row) (*models.Subscriber, error) {
	var (
		subscriber models.Subscriber
		title      *string
		tagsJSON   []byte
	)

	err := row.Scan(
		&subscriber.ChatID,
		&subscriber.Enabled,
		&title,
		&tagsJSON,
		&subscriber.CreatedAt,
		&subscriber.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if title != nil {
		subscriber.Title = *title
	}

	var tags []string
	if len(tagsJSON) > 0 {
		if err := json.Unmarshal(tagsJSON, &tags); err != nil {
			return nil, err
		}
	}

	subscriber.Tags = models.NewTagSet(tags...).Sorted()

	return &subscriber, nil
}

func nullableTitle(title string) *string {
	if title == "" {
		return nil
	}

	return &title
}
