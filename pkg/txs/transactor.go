package txs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"go.uber.org/multierr"
)

// Transactor выполняет функцию в рамках одной транзакции хранилища.
type Transactor interface {
	WithTransaction(ctx context.Context, txFunc func(ctx context.Context) error) error
}

type TxBeginner interface {
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

type TxManager struct {
	db     TxBeginner
	opts   pgx.TxOptions
	logger *slog.Logger
}

type Option func(*TxManager)

// WithIsolation задает уровень изоляции; по умолчанию используется уровень сервера.
func WithIsolation(level pgx.TxIsoLevel) Option {
	return func(t *TxManager) {
		t.opts.IsoLevel = level
	}
}

func NewTxManager(db TxBeginner, logger *slog.Logger, opts ...Option) *TxManager {
	t := &TxManager{
		db:     db,
		logger: logger,
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// WithTransaction переиспользует транзакцию, уже лежащую в контексте,
// поэтому вложенные вызовы фиксируются вместе с внешним.
// Rollback выполняется и после отмены ctx, чтобы соединение вернулось в пул чистым.
func (t *TxManager) WithTransaction(ctx context.Context, txFunc func(ctx context.Context) error) (err error) {
	if _, ok := TxFromContext(ctx); ok {
		return txFunc(ctx)
	}

	tx, err := t.db.BeginTx(ctx, t.opts)
	if err != nil {
		t.logger.Error("Ошибка при начале транзакции", "error", err)
		return fmt.Errorf("ошибка при начале транзакции: %w", err)
	}

	cleanupCtx := context.WithoutCancel(ctx)

	defer func() {
		if r := recover(); r != nil {
			t.logger.Error("Паника в транзакции, выполняем rollback", "panic", r)

			_ = tx.Rollback(cleanupCtx)

			panic(r)
		}
	}()

	if fnErr := txFunc(withTx(ctx, tx)); fnErr != nil {
		t.logger.Warn("Ошибка в транзакции, выполняем rollback", "error", fnErr)

		err = fmt.Errorf("ошибка в транзакции: %w", fnErr)

		if rbErr := tx.Rollback(cleanupCtx); rbErr != nil {
			t.logger.Error("Ошибка при rollback транзакции", "error", rbErr)
			err = multierr.Append(err, fmt.Errorf("ошибка rollback: %w", rbErr))
		}

		return err
	}

	if err := tx.Commit(ctx); err != nil {
		t.logger.Error("Ошибка при commit транзакции", "error", err)
		return fmt.Errorf("ошибка при commit транзакции: %w", err)
	}

	return nil
}
