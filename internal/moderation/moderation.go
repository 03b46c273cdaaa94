// Package moderation — клиент внешнего классификатора контента.
// Сервис рассматривает его как чёрный ящик: текст на входе, вердикт на выходе.
package moderation

import "context"

type Verdict struct {
	SentimentScore  float64  `json:"sentiment_score"` // [-1, 1]
	IsInappropriate bool     `json:"is_inappropriate"`
	IsSuspicious    bool     `json:"is_suspicious"`
	Issues          []string `json:"issues"`
}

type Classifier interface {
	Classify(ctx context.Context, text string) (Verdict, error)
}
