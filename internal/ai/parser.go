package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kirillm/debate-bot/internal/domain"
)

// analysisPayload схема JSON-ответа агента
type analysisPayload struct {
	Message        string  `json:"message"`
	Sentiment      string  `json:"sentiment"`
	Confidence     float64 `json:"confidence"`
	Recommendation string  `json:"recommendation"`
	Reasoning      struct {
		KeyPoints   []string `json:"key_points"`
		DataSupport string   `json:"data_support"`
		Concerns    []string `json:"concerns"`
	} `json:"reasoning"`
	SuggestedPrice *float64 `json:"suggested_price"`
	SuggestedSize  *float64 `json:"suggested_size"`
	StopLoss       *float64 `json:"stop_loss"`
	TakeProfit     *float64 `json:"take_profit"`
}

// ParseAnalysis разбирает ответ агента в DebateMessage.
// Никогда не возвращает ошибку: при невалидном JSON детерминированно
// откатывается на эвристический классификатор по ключевым словам.
func ParseAnalysis(raw string) *domain.DebateMessage {
	if msg, ok := parseStrict(raw); ok {
		return msg
	}
	return classifyByKeywords(raw)
}

// FallbackMessage возвращает PASS-сообщение для агента, чей вызов не удался.
// Такой агент участвует в голосовании с нулевым вкладом в score.
func FallbackMessage(reason string) *domain.DebateMessage {
	return &domain.DebateMessage{
		Message:        fmt.Sprintf("Analysis unavailable: %s", reason),
		Sentiment:      domain.SentimentNeutral,
		Confidence:     0,
		Recommendation: domain.ActionPass,
		KeyPoints:      []string{"agent did not produce an analysis"},
		Concerns:       []string{reason},
	}
}

// parseStrict пытается строго извлечь и провалидировать JSON-анализ
func parseStrict(raw string) (*domain.DebateMessage, bool) {
	candidate := extractJSON(raw)
	if candidate == "" {
		return nil, false
	}

	var payload analysisPayload
	if err := json.Unmarshal([]byte(candidate), &payload); err != nil {
		return nil, false
	}

	rec := strings.ToUpper(strings.TrimSpace(payload.Recommendation))
	switch rec {
	case domain.ActionBuy, domain.ActionSell, domain.ActionHold, domain.ActionPass:
	default:
		return nil, false
	}

	sentiment := strings.ToUpper(strings.TrimSpace(payload.Sentiment))
	switch sentiment {
	case domain.SentimentBullish, domain.SentimentBearish, domain.SentimentNeutral:
	default:
		sentiment = sentimentFor(rec)
	}

	confidence := payload.Confidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 100 {
		confidence = 100
	}

	message := strings.TrimSpace(payload.Message)
	if message == "" {
		message = raw
	}

	return &domain.DebateMessage{
		Message:        message,
		Sentiment:      sentiment,
		Confidence:     confidence,
		Recommendation: rec,
		KeyPoints:      payload.Reasoning.KeyPoints,
		DataSupport:    payload.Reasoning.DataSupport,
		Concerns:       payload.Reasoning.Concerns,
		SuggestedPrice: positiveOrNil(payload.SuggestedPrice),
		SuggestedSize:  sizeOrNil(payload.SuggestedSize),
		StopLoss:       positiveOrNil(payload.StopLoss),
		TakeProfit:     positiveOrNil(payload.TakeProfit),
	}, true
}

// classifyByKeywords эвристический разбор сырого текста по направленным словам
func classifyByKeywords(raw string) *domain.DebateMessage {
	lower := strings.ToLower(raw)

	sentiment := domain.SentimentNeutral
	rec := domain.ActionHold

	switch {
	case strings.Contains(lower, "buy") || strings.Contains(lower, "bullish"):
		sentiment = domain.SentimentBullish
		rec = domain.ActionBuy
	case strings.Contains(lower, "sell") || strings.Contains(lower, "bearish"):
		sentiment = domain.SentimentBearish
		rec = domain.ActionSell
	}

	return &domain.DebateMessage{
		Message:        strings.TrimSpace(raw),
		Sentiment:      sentiment,
		Confidence:     domain.FallbackConfidence,
		Recommendation: rec,
		KeyPoints:      []string{"keyword fallback: structured analysis was not parseable"},
	}
}

// extractJSON извлекает JSON из текста: целиком, из ```json блока,
// либо по внешней паре фигурных скобок
func extractJSON(text string) string {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "{") && json.Valid([]byte(trimmed)) {
		return trimmed
	}

	if fenced := extractFenced(trimmed); fenced != "" && json.Valid([]byte(fenced)) {
		return fenced
	}

	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start >= 0 && end > start {
		candidate := trimmed[start : end+1]
		if json.Valid([]byte(candidate)) {
			return candidate
		}
	}

	return ""
}

// extractFenced извлекает содержимое первого ``` блока
func extractFenced(text string) string {
	start := strings.Index(text, "```")
	if start == -1 {
		return ""
	}
	rest := text[start+3:]
	rest = strings.TrimPrefix(rest, "json")
	rest = strings.TrimPrefix(rest, "\n")

	end := strings.Index(rest, "```")
	if end == -1 {
		return ""
	}
	return strings.TrimSpace(rest[:end])
}

func sentimentFor(rec string) string {
	switch rec {
	case domain.ActionBuy:
		return domain.SentimentBullish
	case domain.ActionSell:
		return domain.SentimentBearish
	default:
		return domain.SentimentNeutral
	}
}

func positiveOrNil(v *float64) *float64 {
	if v == nil || *v <= 0 {
		return nil
	}
	return v
}

func sizeOrNil(v *float64) *float64 {
	if v == nil || *v <= 0 || *v > 100 {
		return nil
	}
	return v
}
