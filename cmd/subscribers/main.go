// Команда subscribers выгружает и загружает записи подписчиков и обновляет названия чатов.
//
//	subscribers dump <file|->
//	subscribers load <file|->
//	subscribers refresh-titles
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/central-university-dev/post-broadcaster/internal/bot/clients"
	"github.com/central-university-dev/post-broadcaster/internal/bot/repository"
	"github.com/central-university-dev/post-broadcaster/internal/bot/service"
	"github.com/central-university-dev/post-broadcaster/internal/common/httputil"
	"github.com/central-university-dev/post-broadcaster/internal/config"
	"github.com/central-university-dev/post-broadcaster/internal/domain/models"
	"github.com/central-university-dev/post-broadcaster/pkg"
	"github.com/central-university-dev/post-broadcaster/pkg/txs"
)

const usage = `Usage:
  subscribers dump <file|->     write all subscribers as JSON
  subscribers load <file|->     upsert subscribers from JSON in one transaction
  subscribers refresh-titles    fetch current chat titles from Telegram
`

func main() {
	flag.Usage = func() { fmt.Fprint(flag.CommandLine.Output(), usage) }
	flag.Parse()

	if err := run(flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "subscribers: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		flag.Usage()
		return fmt.Errorf("не указана команда")
	}

	cfg := config.LoadConfig()
	appLogger := pkg.NewLogger(os.Stderr, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	storage, err := repository.OpenStorage(ctx, cfg, appLogger)
	if err != nil {
		return err
	}
	defer storage.Close()

	switch args[0] {
	case "dump":
		if len(args) != 2 {
			return fmt.Errorf("dump ожидает путь к файлу")
		}

		return withOutput(args[1], func(w io.Writer) error {
			return dump(ctx, storage.Repo, storage.TxManager, w)
		})
	case "load":
		if len(args) != 2 {
			return fmt.Errorf("load ожидает путь к файлу")
		}

		return withInput(args[1], func(r io.Reader) error {
			count, err := load(ctx, storage.Repo, storage.TxManager, r)
			if err == nil {
				appLogger.Info("Подписчики загружены", "count", count)
			}

			return err
		})
	case "refresh-titles":
		return refreshTitles(ctx, cfg, storage, appLogger)
	default:
		flag.Usage()
		return fmt.Errorf("неизвестная команда %q", args[0])
	}
}

func dump(ctx context.Context, repo service.SubscriberRepository, txManager txs.Transactor, w io.Writer) error {
	var file models.DumpFile

	err := txManager.WithTransaction(ctx, func(ctx context.Context) error {
		dumps, err := repo.DumpAll(ctx)
		if err != nil {
			return err
		}

		file.ReceiverGroups = dumps

		return nil
	})
	if err != nil {
		return fmt.Errorf("ошибка при выгрузке подписчиков: %w", err)
	}

	if file.ReceiverGroups == nil {
		file.ReceiverGroups = []models.SubscriberDump{}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	return encoder.Encode(file)
}

func load(ctx context.Context, repo service.SubscriberRepository, txManager txs.Transactor, r io.Reader) (int, error) {
	var file models.DumpFile

	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return 0, fmt.Errorf("ошибка при чтении файла выгрузки: %w", err)
	}

	err := txManager.WithTransaction(ctx, func(ctx context.Context) error {
		return repo.LoadAll(ctx, file.ReceiverGroups)
	})
	if err != nil {
		return 0, fmt.Errorf("ошибка при загрузке подписчиков: %w", err)
	}

	return len(file.ReceiverGroups), nil
}

func refreshTitles(ctx context.Context, cfg *config.Config, storage *repository.Storage, appLogger *slog.Logger) error {
	httpClient := httputil.CreateResilientTelegramHTTPClient(cfg, appLogger)

	telegramClient := clients.NewTelegramClient(cfg.TelegramBotToken, cfg.TelegramAPIEndpoint, httpClient, appLogger)
	if telegramClient.GetBot() == nil {
		return fmt.Errorf("не удалось инициализировать Telegram бота")
	}

	titles := service.NewTitleService(storage.Repo, storage.TxManager, telegramClient, appLogger)

	_, err := titles.RefreshAll(ctx)

	return err
}

func withOutput(path string, fn func(w io.Writer) error) error {
	if path == "-" {
		return fn(os.Stdout)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := fn(f); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}

func withInput(path string, fn func(r io.Reader) error) error {
	if path == "-" {
		return fn(os.Stdin)
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return fn(f)
}
