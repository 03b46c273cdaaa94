package moderation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// HTTPClient вызывает POST {baseURL}/classify.
// Сбой транспорта не блокирует чат: возвращается нейтральный вердикт.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type classifyRequest struct {
	Text        string `json:"text"`
	ContentType string `json:"content_type"`
}

func (c *HTTPClient) Classify(ctx context.Context, text string) (Verdict, error) {
	body, err := json.Marshal(classifyRequest{Text: text, ContentType: "chat"})
	if err != nil {
		return Verdict{}, fmt.Errorf("marshal classify request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/classify", bytes.NewReader(body))
	if err != nil {
		return Verdict{}, fmt.Errorf("build classify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		// fail-open: классификатор недоступен — пропускаем с нейтральной оценкой
		slog.Warn("moderation classify failed, passing through", "err", err)
		return Verdict{}, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Warn("moderation classify non-200, passing through", "status", resp.StatusCode)
		return Verdict{}, nil
	}

	var v Verdict
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		slog.Warn("moderation classify decode failed, passing through", "err", err)
		return Verdict{}, nil
	}
	return v, nil
}
