package database

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"

	// postgres driver нужен golang-migrate для применения миграций.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	// file driver необходим для миграций базы данных.
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// RunMigrations применяет все миграции из каталога migrationsPath.
func RunMigrations(databaseURL, migrationsPath string, logger *slog.Logger) error {
	absPath, err := filepath.Abs(migrationsPath)
	if err != nil {
		return fmt.Errorf("ошибка при определении пути к миграциям: %w", err)
	}

	m, err := migrate.New("file://"+absPath, databaseURL)
	if err != nil {
		return fmt.Errorf("не удалось создать экземпляр migrate: %w", err)
	}

	defer func() {
		sourceErr, dbErr := m.Close()
		if sourceErr != nil || dbErr != nil {
			logger.Warn("Ошибка при закрытии migrate",
				"source_error", sourceErr,
				"db_error", dbErr,
			)
		}
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("не удалось применить миграции: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("ошибка при получении версии схемы: %w", err)
	}

	logger.Info("Миграции применены",
		"version", version,
		"dirty", dirty,
	)

	return nil
}
