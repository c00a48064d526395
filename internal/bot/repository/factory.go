package repository

import (
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/central-university-dev/post-broadcaster/internal/bot/repository/memory"
	"github.com/central-university-dev/post-broadcaster/internal/bot/repository/orm"
	sqlrepo "github.com/central-university-dev/post-broadcaster/internal/bot/repository/sql"
	"github.com/central-university-dev/post-broadcaster/internal/bot/service"
	"github.com/central-university-dev/post-broadcaster/internal/config"
	"github.com/central-university-dev/post-broadcaster/internal/database"
	"github.com/central-university-dev/post-broadcaster/internal/domain/errors"
	"github.com/central-university-dev/post-broadcaster/pkg/txs"
)

type Factory struct {
	db     *database.PostgresDB
	config *config.Config
	logger *slog.Logger
}

// NewFactory принимает nil вместо db, если выбран MEMORY доступ.
func NewFactory(db *database.PostgresDB, config *config.Config, logger *slog.Logger) *Factory {
	return &Factory{
		db:     db,
		config: config,
		logger: logger,
	}
}

// CreateSubscriberRepository возвращает репозиторий и менеджер транзакций, работающие с одним хранилищем.
func (f *Factory) CreateSubscriberRepository() (service.SubscriberRepository, txs.Transactor, error) {
	switch f.config.DatabaseAccessType {
	case config.MemoryAccess:
		f.logger.Info("Создание in-memory репозитория подписчиков")

		repo := memory.NewSubscriberRepository()

		return repo, repo, nil
	case config.SquirrelAccess:
		if f.db == nil {
			return nil, nil, &errors.ErrInvalidArgument{Message: "для SQUIRREL доступа нужно подключение к PostgreSQL"}
		}

		f.logger.Info("Создание ORM (Squirrel) репозитория подписчиков")

		return orm.NewSubscriberRepository(f.db), f.txManager(), nil
	case config.SQLAccess:
		if f.db == nil {
			return nil, nil, &errors.ErrInvalidArgument{Message: "для SQL доступа нужно подключение к PostgreSQL"}
		}

		f.logger.Info("Создание SQL репозитория подписчиков")

		return sqlrepo.NewSubscriberRepository(f.db), f.txManager(), nil
	default:
		return nil, nil, &errors.ErrUnknownDBAccessType{AccessType: string(f.config.DatabaseAccessType)}
	}
}

func (f *Factory) txManager() *txs.TxManager {
	return txs.NewTxManager(f.db.Pool, f.logger, txs.WithIsolation(pgx.ReadCommitted))
}
