package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/multierr"

	"github.com/central-university-dev/post-broadcaster/internal/bot/cache"
	"github.com/central-university-dev/post-broadcaster/internal/bot/clients"
	"github.com/central-university-dev/post-broadcaster/internal/bot/clients/kafka"
	"github.com/central-university-dev/post-broadcaster/internal/bot/domain"
	"github.com/central-university-dev/post-broadcaster/internal/bot/repository"
	"github.com/central-university-dev/post-broadcaster/internal/bot/service"
	"github.com/central-university-dev/post-broadcaster/internal/bot/telegram"
	"github.com/central-university-dev/post-broadcaster/internal/common"
	"github.com/central-university-dev/post-broadcaster/internal/common/httputil"
	"github.com/central-university-dev/post-broadcaster/internal/common/metrics"
	"github.com/central-university-dev/post-broadcaster/internal/common/middleware"
	"github.com/central-university-dev/post-broadcaster/internal/config"
	"github.com/central-university-dev/post-broadcaster/internal/scheduler"
	"github.com/central-university-dev/post-broadcaster/pkg"
)

type resources struct {
	poller        *telegram.Poller
	kafkaConsumer *kafka.Consumer
	scheduler     *scheduler.Scheduler
	redisCache    *cache.RedisTitleCache
	storage       *repository.Storage
}

// close освобождает ресурсы в порядке, обратном запуску.
func (r *resources) close(appLogger *slog.Logger) error {
	var err error

	if r.scheduler != nil {
		r.scheduler.Stop()
	}

	if r.kafkaConsumer != nil {
		err = multierr.Append(err, r.kafkaConsumer.Close())
	}

	if r.poller != nil {
		err = multierr.Append(err, r.poller.Close())
	}

	if r.redisCache != nil {
		err = multierr.Append(err, r.redisCache.Close())
	}

	if r.storage != nil {
		err = multierr.Append(err, r.storage.Close())
	}

	if err != nil {
		appLogger.Error("Ошибки при остановке сервиса", "error", err)
	} else {
		appLogger.Info("Сервис успешно остановлен")
	}

	return err
}

func setupTelegramCommands(ctx context.Context, telegramClient domain.CommandRegistrar, appLogger *slog.Logger) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := telegramClient.SetMyCommands(ctx, domain.DefaultCommands()); err != nil {
		appLogger.Error("Ошибка при регистрации команд бота",
			"error", err,
		)
	} else {
		appLogger.Info("Команды бота успешно зарегистрированы")
	}
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка запуска сервиса: %v\n", err)
		os.Exit(1)
	}
}

//nolint:funlen // Длина функции обусловлена необходимостью последовательной инициализации всех компонентов.
func run() (err error) {
	cfg := config.LoadConfig()
	appLogger := pkg.NewLogger(os.Stdout, cfg.LogLevel)

	if cfg.TelegramBotToken == "" {
		return fmt.Errorf("не задан TELEGRAM_BOT_TOKEN")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res := &resources{}

	defer func() {
		err = multierr.Append(err, res.close(appLogger))
	}()

	filter, err := common.NewPostFilter(cfg.SourceChannelID, cfg.PostRegex)
	if err != nil {
		return err
	}

	engine := common.NewTagEngine(cfg.ExtendingTags(), cfg.RestrictiveTags())

	res.storage, err = repository.OpenStorage(ctx, cfg, appLogger)
	if err != nil {
		return err
	}

	httpClient := httputil.CreateResilientTelegramHTTPClient(cfg, appLogger)

	telegramClient := clients.NewTelegramClient(cfg.TelegramBotToken, cfg.TelegramAPIEndpoint, httpClient, appLogger)
	if telegramClient.GetBot() == nil {
		return fmt.Errorf("не удалось инициализировать Telegram бота")
	}

	var titleProvider service.TitleProvider = telegramClient

	if cfg.RedisURL != "" {
		res.redisCache, err = cache.NewRedisTitleCache(cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB, cfg.TitleCacheTTL, appLogger)
		if err != nil {
			appLogger.Warn("Redis недоступен, названия чатов запрашиваются без кэша",
				"error", err,
			)
		} else {
			titleProvider = service.NewCachedTitleProvider(telegramClient, res.redisCache, appLogger)
		}
	}

	subscriptions := service.NewSubscriptionService(res.storage.Repo, res.storage.TxManager, appLogger)
	titles := service.NewTitleService(res.storage.Repo, res.storage.TxManager, titleProvider, appLogger)
	botService := service.NewBotService(subscriptions, engine, cfg.Admins(), appLogger)

	dispatcher := service.NewDispatcher(
		res.storage.Repo,
		res.storage.TxManager,
		engine,
		telegramClient,
		titles,
		service.DispatcherConfig{
			ForwardDelay:  cfg.ForwardDelay(),
			RefreshTitles: cfg.AutoUpdateChatTitles,
		},
		appLogger,
	)

	appLogger.Info("Конфигурация рассылки",
		"source_channel_id", cfg.SourceChannelID,
		"extending_tags", engine.ExtendingTags().String(),
		"restrictive_tags", engine.RestrictiveTags().String(),
		"forward_delay", cfg.ForwardDelay().String(),
		"post_transport", cfg.PostTransport,
	)

	setupTelegramCommands(ctx, telegramClient, appLogger)

	res.poller = telegram.NewPoller(telegramClient, botService, dispatcher, telegram.Config{
		Filter:               filter,
		DispatchChannelPosts: cfg.PostTransport != config.KafkaTransport,
		BotUsername:          telegramClient.GetBot().Self.UserName,
	}, appLogger)

	if err := res.poller.Start(ctx); err != nil {
		return fmt.Errorf("ошибка запуска Telegram поллера: %w", err)
	}

	if cfg.PostTransport == config.KafkaTransport {
		res.kafkaConsumer = kafka.NewConsumer(
			config.SplitList(cfg.KafkaBrokers),
			cfg.KafkaGroupID,
			cfg.TopicChannelPosts,
			cfg.TopicDeadLetterQueue,
			dispatcher,
			filter,
			appLogger,
		)

		res.kafkaConsumer.Start(ctx)
	}

	if cfg.TitleRefreshInterval > 0 {
		res.scheduler = scheduler.NewScheduler(titles, cfg.TitleRefreshInterval, appLogger)
		res.scheduler.Start()
	}

	rateLimiter := middleware.NewRateLimiter(ctx, middleware.RateLimitConfig{
		Requests: cfg.RateLimitRequests,
		Window:   cfg.RateLimitWindow,
		Exempt:   []string{metrics.HealthPath, metrics.ReadyPath},
	}, appLogger)
	requestMetrics := middleware.NewRequestMetrics("metrics", metrics.MetricsPath, metrics.HealthPath, metrics.ReadyPath)
	metricsServer := metrics.NewServer(cfg.MetricsPort, appLogger,
		metrics.WithReadinessCheck("storage", res.storage.Ping),
		metrics.WithMiddleware(requestMetrics.Middleware, rateLimiter.Middleware),
	)

	serverErr := make(chan error, 1)

	go func() {
		serverErr <- metricsServer.Start(ctx)
	}()

	select {
	case <-ctx.Done():
		appLogger.Info("Получен сигнал завершения")
	case err := <-serverErr:
		if err != nil {
			appLogger.Error("Сервер метрик остановился с ошибкой", "error", err)
			return err
		}
	}

	return nil
}
