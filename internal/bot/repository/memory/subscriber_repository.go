package memory

import (
	"context"
	"sync"
	"time"

	customerrors "github.com/central-university-dev/post-broadcaster/internal/domain/errors"
	"github.com/central-university-dev/post-broadcaster/internal/domain/models"
)

// SubscriberRepository хранит записи в памяти процесса в порядке создания.
// Транзакции реализованы снимком состояния, который восстанавливается при ошибке.
type SubscriberRepository struct {
	mu      sync.RWMutex
	txMu    sync.Mutex
	records map[int64]*models.Subscriber
	order   []int64
}

func NewSubscriberRepository() *SubscriberRepository {
	return &SubscriberRepository{
		records: make(map[int64]*models.Subscriber),
	}
}

func (r *SubscriberRepository) FindByID(_ context.Context, chatID int64) (*models.Subscriber, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.records[chatID]
	if !ok {
		return nil, &customerrors.ErrSubscriberNotFound{ChatID: chatID}
	}

	return record.Clone(), nil
}

func (r *SubscriberRepository) Create(_ context.Context, chatID int64, title string) (*models.Subscriber, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if record, ok := r.records[chatID]; ok {
		return record.Clone(), nil
	}

	now := time.Now()

	record := models.NewSubscriber(chatID, title)
	record.CreatedAt = now
	record.UpdatedAt = now

	r.records[chatID] = record
	r.order = append(r.order, chatID)

	return record.Clone(), nil
}

func (r *SubscriberRepository) ListEnabled(_ context.Context) ([]*models.Subscriber, error) {
	return r.list(func(s *models.Subscriber) bool { return s.IsEnabled() }), nil
}

func (r *SubscriberRepository) ListAll(_ context.Context) ([]*models.Subscriber, error) {
	return r.list(func(*models.Subscriber) bool { return true }), nil
}

func (r *SubscriberRepository) Save(_ context.Context, subscriber *models.Subscriber) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.put(subscriber)

	return nil
}

func (r *SubscriberRepository) DumpAll(_ context.Context) ([]models.SubscriberDump, error) {
	subscribers := r.list(func(*models.Subscriber) bool { return true })

	dumps := make([]models.SubscriberDump, 0, len(subscribers))
	for _, subscriber := range subscribers {
		dumps = append(dumps, subscriber.ToDump())
	}

	return dumps, nil
}

func (r *SubscriberRepository) LoadAll(_ context.Context, dumps []models.SubscriberDump) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, dump := range dumps {
		r.put(models.SubscriberFromDump(dump))
	}

	return nil
}

// WithTransaction выполняет txFunc эксклюзивно. Вложенные вызовы работают в рамках внешней транзакции.
func (r *SubscriberRepository) WithTransaction(ctx context.Context, txFunc func(ctx context.Context) error) (err error) {
	if ctx.Value(txKey{}) != nil {
		return txFunc(ctx)
	}

	r.txMu.Lock()
	defer r.txMu.Unlock()

	snapshot := r.snapshot()

	defer func() {
		if p := recover(); p != nil {
			r.restore(snapshot)
			panic(p)
		}

		if err != nil {
			r.restore(snapshot)
		}
	}()

	return txFunc(context.WithValue(ctx, txKey{}, struct{}{}))
}

type txKey struct{}

type state struct {
	records map[int64]*models.Subscriber
	order   []int64
}

func (r *SubscriberRepository) put(subscriber *models.Subscriber) {
	now := time.Now()

	record := subscriber.Clone()
	record.Tags = record.TagSet().Sorted()
	record.UpdatedAt = now

	if existing, ok := r.records[record.ChatID]; ok {
		record.CreatedAt = existing.CreatedAt
	} else {
		if record.CreatedAt.IsZero() {
			record.CreatedAt = now
		}

		r.order = append(r.order, record.ChatID)
	}

	r.records[record.ChatID] = record
	subscriber.UpdatedAt = now
}

func (r *SubscriberRepository) list(filter func(*models.Subscriber) bool) []*models.Subscriber {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*models.Subscriber, 0, len(r.order))

	for _, chatID := range r.order {
		record := r.records[chatID]
		if filter(record) {
			result = append(result, record.Clone())
		}
	}

	return result
}

func (r *SubscriberRepository) snapshot() state {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := make(map[int64]*models.Subscriber, len(r.records))
	for chatID, record := range r.records {
		records[chatID] = record.Clone()
	}

	return state{
		records: records,
		order:   append([]int64(nil), r.order...),
	}
}

func (r *SubscriberRepository) restore(s state) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records = s.records
	r.order = s.order
}
