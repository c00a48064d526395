package orm

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/central-university-dev/post-broadcaster/internal/database"
	customerrors "github.com/central-university-dev/post-broadcaster/internal/domain/errors"
	"github.com/central-university-dev/post-broadcaster/internal/domain/models"
	"github.com/central-university-dev/post-broadcaster/pkg/txs"
)

const tableName = "receiver_groups"

var subscriberColumns = []string{"chat_id", "enabled", "title", "tags", "created_at", "updated_at"}

type SubscriberRepository struct {
	db *database.PostgresDB
	sq sq.StatementBuilderType
}

func NewSubscriberRepository(db *database.PostgresDB) *SubscriberRepository {
	return &SubscriberRepository{
		db: db,
		sq: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *SubscriberRepository) FindByID(ctx context.Context, chatID int64) (*models.Subscriber, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	query, args, err := r.sq.Select(subscriberColumns...).
		From(tableName).
		Where(sq.Eq{"chat_id": chatID}).
		ToSql()
	if err != nil {
		return nil, &customerrors.ErrSubscriberNotFound{
			ChatID: chatID,
			Cause:  &customerrors.ErrBuildSQLQuery{Operation: customerrors.OpFindSubscriber, Cause: err},
		}
	}

	subscriber, err := scanSubscriber(querier.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &customerrors.ErrSubscriberNotFound{ChatID: chatID}
		}

		return nil, &customerrors.ErrSubscriberNotFound{
			ChatID: chatID,
			Cause:  &customerrors.ErrSQLExecution{Operation: customerrors.OpFindSubscriber, Cause: err},
		}
	}

	return subscriber, nil
}

func (r *SubscriberRepository) Create(ctx context.Context, chatID int64, title string) (*models.Subscriber, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	now := time.Now()

	query, args, err := r.sq.Insert(tableName).
		Columns(subscriberColumns...).
		Values(chatID, false, nullableTitle(title), "[]", now, now).
		Suffix("ON CONFLICT (chat_id) DO NOTHING").
		ToSql()
	if err != nil {
		return nil, &customerrors.ErrBuildSQLQuery{Operation: customerrors.OpCreateSubscriber, Cause: err}
	}

	if _, err := querier.Exec(ctx, query, args...); err != nil {
		return nil, &customerrors.ErrSQLExecution{Operation: customerrors.OpCreateSubscriber, Cause: err}
	}

	query, args, err = r.sq.Select(subscriberColumns...).
		From(tableName).
		Where(sq.Eq{"chat_id": chatID}).
		ToSql()
	if err != nil {
		return nil, &customerrors.ErrBuildSQLQuery{Operation: customerrors.OpCreateSubscriber, Cause: err}
	}

	subscriber, err := scanSubscriber(querier.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, &customerrors.ErrSQLScan{Entity: "subscriber", Cause: err}
	}

	return subscriber, nil
}

func (r *SubscriberRepository) ListEnabled(ctx context.Context) ([]*models.Subscriber, error) {
	return r.list(ctx, customerrors.OpListEnabled, r.sq.Select(subscriberColumns...).
		From(tableName).
		Where(sq.Eq{"enabled": true}).
		OrderBy("id"))
}

func (r *SubscriberRepository) ListAll(ctx context.Context) ([]*models.Subscriber, error) {
	return r.list(ctx, customerrors.OpListAll, r.sq.Select(subscriberColumns...).
		From(tableName).
		OrderBy("id"))
}

func (r *SubscriberRepository) Save(ctx context.Context, subscriber *models.Subscriber) error {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	tagsJSON, err := json.Marshal(subscriber.TagSet().Sorted())
	if err != nil {
		return &customerrors.ErrBuildSQLQuery{Operation: customerrors.OpSaveSubscriber, Cause: err}
	}

	now := time.Now()

	query, args, err := r.sq.Insert(tableName).
		Columns(subscriberColumns...).
		Values(subscriber.ChatID, subscriber.Enabled, nullableTitle(subscriber.Title), string(tagsJSON), now, now).
		Suffix(`ON CONFLICT (chat_id) DO UPDATE SET
			enabled = EXCLUDED.enabled,
			title = EXCLUDED.title,
			tags = EXCLUDED.tags,
			updated_at = EXCLUDED.updated_at`).
		ToSql()
	if err != nil {
		return &customerrors.ErrBuildSQLQuery{Operation: customerrors.OpSaveSubscriber, Cause: err}
	}

	if _, err := querier.Exec(ctx, query, args...); err != nil {
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

func (r *SubscriberRepository) list(ctx context.Context, operation string, builder sq.SelectBuilder) ([]*models.Subscriber, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, &customerrors.ErrBuildSQLQuery{Operation: operation, Cause: err}
	}

	rows, err := querier.Query(ctx, query, args...)
	if err != nil {
		return nil, &customerrors.ErrSQLExecution{Operation: operation, Cause: err}
	}
	defer rows.Close()

	subscribers := make([]*models.Subscriber, 0)

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
		tags       []string
	)

	if err := row.Scan(
		&subscriber.ChatID,
		&subscriber.Enabled,
		&title,
		&tags,
		&subscriber.CreatedAt,
		&subscriber.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if title != nil {
		subscriber.Title = *title
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
