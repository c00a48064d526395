package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/multierr"

	"github.com/central-university-dev/post-broadcaster/internal/common"
	boterrors "github.com/central-university-dev/post-broadcaster/internal/domain/errors"
	"github.com/central-university-dev/post-broadcaster/internal/domain/models"
)

const closeTimeout = 5 * time.Second

// PostMessage - событие поста канала, опубликованное внешним ретранслятором.
type PostMessage struct {
	ChatID    int64                  `json:"chat_id"`
	MessageID int                    `json:"message_id"`
	Text      string                 `json:"text"`
	Entities  []models.MessageEntity `json:"entities"`
}

type PostHandler interface {
	Dispatch(ctx context.Context, post *models.Post) (*models.DispatchResult, error)
}

type DLQWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Consumer struct {
	reader      *kafka.Reader
	dlqWriter   DLQWriter
	postHandler PostHandler
	filter      *common.PostFilter
	logger      *slog.Logger
	postsTopic  string
	dlqTopic    string
	done        chan struct{}
	started     bool
}

func NewConsumer(
	brokers []string,
	groupID string,
	postsTopic string,
	dlqTopic string,
	postHandler PostHandler,
	filter *common.PostFilter,
	logger *slog.Logger,
) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        groupID,
		Topic:          postsTopic,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 1 * time.Second,
		Logger:         kafka.LoggerFunc(logger.Debug),
		ErrorLogger:    kafka.LoggerFunc(logger.Error),
	})

	dlqWriter := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        dlqTopic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		Logger:       kafka.LoggerFunc(logger.Debug),
		ErrorLogger:  kafka.LoggerFunc(logger.Error),
	}

	return &Consumer{
		reader:      reader,
		dlqWriter:   dlqWriter,
		postHandler: postHandler,
		filter:      filter,
		logger:      logger,
		postsTopic:  postsTopic,
		dlqTopic:    dlqTopic,
		done:        make(chan struct{}),
	}
}

// SetDLQWriter подменяет writer очереди недоставленных сообщений.
func (c *Consumer) SetDLQWriter(writer DLQWriter) {
	c.dlqWriter = writer
}

// Start читает посты до отмены ctx. Посты обрабатываются по одному, в порядке чтения.
func (c *Consumer) Start(ctx context.Context) {
	c.logger.Info("Запуск потребления постов из Kafka", "topic", c.postsTopic)

	c.started = true

	go func() {
		defer close(c.done)

		for {
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil || errors.Is(err, io.EOF) {
					c.logger.Info("Остановка потребления постов из Kafka")
					return
				}

				c.logger.Error("Ошибка при чтении сообщения из Kafka", "error", err)

				continue
			}

			c.logger.Debug("Получено сообщение из Kafka",
				"topic", msg.Topic,
				"partition", msg.Partition,
				"offset", msg.Offset,
			)

			if err := c.ProcessMessage(ctx, &msg); err != nil {
				c.logger.Error("Ошибка при обработке сообщения", "error", err, "offset", msg.Offset)
			}
		}
	}()
}

// ProcessMessage отправляет некорректные события в DLQ, посты не из исходного канала пропускает.
func (c *Consumer) ProcessMessage(ctx context.Context, msg *kafka.Message) error {
	post, err := decodePost(msg.Value)
	if err != nil {
		if sendErr := c.sendToDLQ(ctx, msg.Value, err.Error()); sendErr != nil {
			return multierr.Append(err, sendErr)
		}

		return err
	}

	if c.filter != nil && !c.filter.Accepts(post) {
		c.logger.Debug("Пост пропущен фильтром", "chat_id", post.ChatID, "message_id", post.MessageID)
		return nil
	}

	if _, err := c.postHandler.Dispatch(ctx, post); err != nil {
		return fmt.Errorf("ошибка при рассылке поста: %w", err)
	}

	return nil
}

func decodePost(value []byte) (*models.Post, error) {
	var message PostMessage

	if err := json.Unmarshal(value, &message); err != nil {
		return nil, &boterrors.ErrInvalidPostMessage{Reason: fmt.Sprintf("ошибка десериализации: %s", err)}
	}

	if message.ChatID == 0 {
		return nil, &boterrors.ErrInvalidPostMessage{Reason: "отсутствует обязательное поле chat_id"}
	}

	if message.MessageID <= 0 {
		return nil, &boterrors.ErrInvalidPostMessage{Reason: "отсутствует обязательное поле message_id"}
	}

	return &models.Post{
		ChatID:    message.ChatID,
		MessageID: message.MessageID,
		Text:      message.Text,
		Entities:  message.Entities,
	}, nil
}

func (c *Consumer) sendToDLQ(ctx context.Context, message []byte, errMsg string) error {
	c.logger.Warn("Отправка сообщения в DLQ", "error", errMsg, "topic", c.dlqTopic)

	err := c.dlqWriter.WriteMessages(ctx, kafka.Message{
		Key:   []byte("error"),
		Value: message,
		Headers: []kafka.Header{
			{Key: "error", Value: []byte(errMsg)},
			{Key: "timestamp", Value: []byte(time.Now().Format(time.RFC3339))},
		},
		Time: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("ошибка при отправке сообщения в DLQ: %w", err)
	}

	return nil
}

func (c *Consumer) Close() error {
	readerErr := c.reader.Close()

	if c.started {
		select {
		case <-c.done:
		case <-time.After(closeTimeout):
			c.logger.Warn("Обработка сообщения Kafka не завершилась вовремя")
		}
	}

	return multierr.Combine(readerErr, c.dlqWriter.Close())
}
