package httputil

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-resty/resty/v2"

	"github.com/central-university-dev/post-broadcaster/internal/config"
)

// RestyHTTPAdapter удовлетворяет интерфейсу tgbotapi.HTTPClient и пропускает
// все запросы к Bot API через resty клиент с circuit breaker.
type RestyHTTPAdapter struct {
	restyClient *resty.Client
}

func NewRestyHTTPAdapter(restyClient *resty.Client) *RestyHTTPAdapter {
	return &RestyHTTPAdapter{
		restyClient: restyClient,
	}
}

func (a *RestyHTTPAdapter) Do(req *http.Request) (*http.Response, error) {
	restyReq := a.restyClient.R()

	for key, values := range req.Header {
		for _, value := range values {
			restyReq.SetHeader(key, value)
		}
	}

	restyReq.SetContext(req.Context())

	if req.Body != nil {
		body, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}

		_ = req.Body.Close()

		restyReq.SetBody(body)
	}

	resp, err := restyReq.Execute(req.Method, req.URL.String())
	if err != nil {
		return nil, err
	}

	httpResp := resp.RawResponse
	if httpResp != nil {
		httpResp.Body = io.NopCloser(bytes.NewReader(resp.Body()))
	}

	return httpResp, nil
}

func CreateResilientTelegramHTTPClient(cfg *config.Config, logger *slog.Logger) *RestyHTTPAdapter {
	return NewRestyHTTPAdapter(NewRestyClient(PolicyFromConfig(cfg, "telegram"), logger))
}
