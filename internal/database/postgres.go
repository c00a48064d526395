package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const maxInt32 = 1<<31 - 1

type PostgresDB struct {
	Pool   *pgxpool.Pool
	Logger *slog.Logger
}

// NewPostgresDB открывает пул соединений. maxConn <= 0 оставляет значение pgxpool по умолчанию.
func NewPostgresDB(ctx context.Context, databaseURL string, maxConn int, logger *slog.Logger) (*PostgresDB, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("ошибка при парсинге строки подключения к PostgreSQL: %w", err)
	}

	switch {
	case maxConn <= 0:
	case maxConn >= maxInt32:
		poolConfig.MaxConns = maxInt32
	default:
		poolConfig.MaxConns = int32(maxConn)
	}

	poolConfig.ConnConfig.ConnectTimeout = 5 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("ошибка при создании пула соединений PostgreSQL: %w", err)
	}

	db := &PostgresDB{
		Pool:   pool,
		Logger: logger,
	}

	if err := db.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("Соединение с PostgreSQL успешно установлено", "max_conns", poolConfig.MaxConns)

	return db, nil
}

func (db *PostgresDB) Ping(ctx context.Context) error {
	if err := db.Pool.Ping(ctx); err != nil {
		return fmt.Errorf("ошибка при проверке соединения с PostgreSQL: %w", err)
	}

	return nil
}

func (db *PostgresDB) Close() error {
	if db.Pool != nil {
		db.Pool.Close()
		db.Logger.Info("Соединение с PostgreSQL закрыто")
	}

	return nil
}
