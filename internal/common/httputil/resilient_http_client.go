package httputil

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"

	"github.com/central-university-dev/post-broadcaster/internal/common/metrics"
	"github.com/central-university-dev/post-broadcaster/internal/config"
	"github.com/central-university-dev/post-broadcaster/internal/domain/errors"
)

// Policy описывает retry и circuit breaker для одного внешнего сервиса.
type Policy struct {
	Service       string
	Timeout       time.Duration
	Retries       int
	Backoff       time.Duration
	MaxBackoff    time.Duration
	RetryStatuses []int
	Breaker       BreakerPolicy
}

type BreakerPolicy struct {
	// Window через который сбрасываются счетчики закрытого breaker.
	Window           time.Duration
	MinRequests      uint32
	FailureRatio     float64
	HalfOpenRequests uint32
	OpenTimeout      time.Duration
}

func PolicyFromConfig(cfg *config.Config, service string) Policy {
	return Policy{
		Service:       service,
		Timeout:       cfg.HTTPRequestTimeout,
		Retries:       cfg.RetryCount,
		Backoff:       cfg.RetryBackoff,
		MaxBackoff:    cfg.RetryBackoff * 5,
		RetryStatuses: cfg.RetryableStatusCodes,
		Breaker: BreakerPolicy{
			Window:           time.Duration(cfg.CBSlidingWindowSize) * time.Second,
			MinRequests:      uint32(cfg.CBMinimumRequiredCalls), //nolint:gosec // G115: Значение из конфига
			FailureRatio:     float64(cfg.CBFailureRateThreshold) / 100.0,
			HalfOpenRequests: uint32(cfg.CBPermittedCallsInHalfOpen), //nolint:gosec // G115: Значение из конфига
			OpenTimeout:      cfg.CBWaitDurationInOpenState,
		},
	}
}

// apiError повторяет поля ответа Bot API, нужные для разбора 429.
type apiError struct {
	Parameters struct {
		RetryAfter int `json:"retry_after"`
	} `json:"parameters"`
}

// telegramRetryAfter читает parameters.retry_after из тела ответа; 0 означает обычный backoff.
func telegramRetryAfter(resp *resty.Response) time.Duration {
	if resp == nil || resp.StatusCode() != http.StatusTooManyRequests {
		return 0
	}

	var body apiError
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return 0
	}

	return time.Duration(body.Parameters.RetryAfter) * time.Second
}

// NewRestyClient собирает resty клиент, все запросы которого проходят через circuit breaker сервиса.
// 429 повторяется, только если Telegram просит подождать не дольше MaxBackoff.
func NewRestyClient(p Policy, logger *slog.Logger) *resty.Client {
	client := resty.New().
		SetTimeout(p.Timeout).
		SetRetryCount(p.Retries).
		SetRetryWaitTime(p.Backoff).
		SetRetryMaxWaitTime(p.MaxBackoff).
		SetRetryAfter(func(_ *resty.Client, resp *resty.Response) (time.Duration, error) {
			return telegramRetryAfter(resp), nil
		})

	client.AddRetryCondition(func(resp *resty.Response, err error) bool {
		if err != nil {
			return !stderrors.Is(err, gobreaker.ErrOpenState) && !stderrors.Is(err, context.Canceled)
		}

		if wait := telegramRetryAfter(resp); wait > 0 {
			return wait <= p.MaxBackoff
		}

		return slices.Contains(p.RetryStatuses, resp.StatusCode())
	})

	client.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		if resp.Request.Attempt > 1 {
			logger.Info("Повторный запрос к внешнему сервису",
				"service", p.Service,
				"attempt", resp.Request.Attempt,
				"status", resp.StatusCode(),
			)
		}

		return nil
	})

	client.SetTransport(&breakerTransport{
		breaker: newBreaker(p, logger),
		next:    http.DefaultTransport,
		service: p.Service,
		logger:  logger,
	})

	return client
}

func newBreaker(p Policy, logger *slog.Logger) *gobreaker.CircuitBreaker {
	metrics.SetCircuitBreakerState(p.Service, breakerStateValue(gobreaker.StateClosed))

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        p.Service,
		MaxRequests: p.Breaker.HalfOpenRequests,
		Interval:    p.Breaker.Window,
		Timeout:     p.Breaker.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < p.Breaker.MinRequests {
				return false
			}

			return float64(counts.TotalFailures)/float64(counts.Requests) >= p.Breaker.FailureRatio
		},
		// Отмена запроса вызывающим не говорит о здоровье Telegram.
		IsSuccessful: func(err error) bool {
			return err == nil || stderrors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.SetCircuitBreakerState(name, breakerStateValue(to))
			logger.Warn("Смена состояния circuit breaker", "service", name, "from", from.String(), "to", to.String())
		},
	})
}

func breakerStateValue(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// breakerTransport считает отказом сетевую ошибку и 5xx; ответы 4xx отдаются как есть.
type breakerTransport struct {
	breaker *gobreaker.CircuitBreaker
	next    http.RoundTripper
	service string
	logger  *slog.Logger
}

func (t *breakerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	result, err := t.breaker.Execute(func() (any, error) {
		resp, err := t.next.RoundTrip(req)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode >= http.StatusInternalServerError {
			_ = resp.Body.Close()
			return nil, &errors.HTTPError{StatusCode: resp.StatusCode}
		}

		return resp, nil
	})
	if err != nil {
		if stderrors.Is(err, gobreaker.ErrOpenState) || stderrors.Is(err, gobreaker.ErrTooManyRequests) {
			t.logger.Warn("Circuit breaker не пропустил запрос", "service", t.service, "state", t.breaker.State().String())
		}

		return nil, err
	}

	return result.(*http.Response), nil
}
