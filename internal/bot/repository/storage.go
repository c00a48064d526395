package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/central-university-dev/post-broadcaster/internal/bot/service"
	"github.com/central-university-dev/post-broadcaster/internal/config"
	"github.com/central-university-dev/post-broadcaster/internal/database"
	"github.com/central-university-dev/post-broadcaster/pkg/txs"
)

// Storage связывает репозиторий с менеджером транзакций того же хранилища.
type Storage struct {
	Repo      service.SubscriberRepository
	TxManager txs.Transactor
	db        *database.PostgresDB
}

// OpenStorage применяет миграции и подключается к PostgreSQL, если выбран не MEMORY доступ.
func OpenStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Storage, error) {
	var db *database.PostgresDB

	if cfg.DatabaseAccessType != config.MemoryAccess {
		if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logger); err != nil {
			return nil, fmt.Errorf("ошибка применения миграций: %w", err)
		}

		var err error

		db, err = database.NewPostgresDB(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConn, logger)
		if err != nil {
			return nil, fmt.Errorf("ошибка подключения к базе данных: %w", err)
		}
	}

	repo, txManager, err := NewFactory(db, cfg, logger).CreateSubscriberRepository()
	if err != nil {
		if db != nil {
			_ = db.Close()
		}

		return nil, fmt.Errorf("ошибка создания репозитория подписчиков: %w", err)
	}

	return &Storage{Repo: repo, TxManager: txManager, db: db}, nil
}

func (s *Storage) Close() error {
	if s.db == nil {
		return nil
	}

	return s.db.Close()
}

// Ping проверяет соединение с PostgreSQL; хранилище в памяти готово всегда.
func (s *Storage) Ping(ctx context.Context) error {
	if s.db == nil {
		return nil
	}

	return s.db.Ping(ctx)
}
