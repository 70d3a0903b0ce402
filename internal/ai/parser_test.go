package ai

import (
	"strings"
	"testing"

	"github.com/kirillm/debate-bot/internal/domain"
)

const validAnalysis = `{
	"message": "Momentum is strong, volume confirms the move",
	"sentiment": "BULLISH",
	"confidence": 82,
	"recommendation": "BUY",
	"reasoning": {
		"key_points": ["volume spike", "higher lows"],
		"data_support": "24h volume up 3x",
		"concerns": ["thin orderbook"]
	},
	"suggested_price": 1.25,
	"suggested_size": 10,
	"stop_loss": 1.10,
	"take_profit": 1.60
}`

func TestParseAnalysisStrictJSON(t *testing.T) {
	msg := ParseAnalysis(validAnalysis)

	if msg.Recommendation != domain.ActionBuy {
		t.Errorf("expected BUY, got %s", msg.Recommendation)
	}
	if msg.Sentiment != domain.SentimentBullish {
		t.Errorf("expected BULLISH, got %s", msg.Sentiment)
	}
	if msg.Confidence != 82 {
		t.Errorf("expected confidence 82, got %f", msg.Confidence)
	}
	if len(msg.KeyPoints) != 2 || len(msg.Concerns) != 1 {
		t.Errorf("reasoning not carried over: %+v", msg)
	}
	if msg.SuggestedPrice == nil || *msg.SuggestedPrice != 1.25 {
		t.Errorf("expected suggested price 1.25, got %v", msg.SuggestedPrice)
	}
	if msg.SuggestedSize == nil || *msg.SuggestedSize != 10 {
		t.Errorf("expected suggested size 10, got %v", msg.SuggestedSize)
	}
}

func TestParseAnalysisFencedJSON(t *testing.T) {
	raw := "Here is my analysis:\n```json\n" + validAnalysis + "\n```\nLet me know."

	msg := ParseAnalysis(raw)
	if msg.Recommendation != domain.ActionBuy {
		t.Errorf("expected BUY from fenced block, got %s", msg.Recommendation)
	}
	if msg.Confidence != 82 {
		t.Errorf("expected confidence 82, got %f", msg.Confidence)
	}
}

func TestParseAnalysisEmbeddedJSON(t *testing.T) {
	raw := "Analysis follows. " + validAnalysis + " End of analysis."

	msg := ParseAnalysis(raw)
	if msg.Recommendation != domain.ActionBuy {
		t.Errorf("expected BUY from embedded JSON, got %s", msg.Recommendation)
	}
}

func TestParseAnalysisNormalization(t *testing.T) {
	raw := `{"message": "ok", "sentiment": "mixed", "confidence": 150, "recommendation": " sell "}`

	msg := ParseAnalysis(raw)
	if msg.Recommendation != domain.ActionSell {
		t.Errorf("expected SELL after normalization, got %s", msg.Recommendation)
	}
	// Неизвестный sentiment выводится из рекомендации
	if msg.Sentiment != domain.SentimentBearish {
		t.Errorf("expected BEARISH derived sentiment, got %s", msg.Sentiment)
	}
	if msg.Confidence != 100 {
		t.Errorf("expected confidence clamped to 100, got %f", msg.Confidence)
	}
}

func TestParseAnalysisRejectsBadParams(t *testing.T) {
	raw := `{"message": "ok", "confidence": 70, "recommendation": "BUY",
		"suggested_price": -5, "suggested_size": 250, "stop_loss": 0}`

	msg := ParseAnalysis(raw)
	if msg.SuggestedPrice != nil {
		t.Errorf("negative price should be dropped, got %v", *msg.SuggestedPrice)
	}
	if msg.SuggestedSize != nil {
		t.Errorf("size above 100%% should be dropped, got %v", *msg.SuggestedSize)
	}
	if msg.StopLoss != nil {
		t.Errorf("zero stop loss should be dropped, got %v", *msg.StopLoss)
	}
}

func TestParseAnalysisKeywordFallback(t *testing.T) {
	cases := []struct {
		name      string
		raw       string
		rec       string
		sentiment string
	}{
		{"bullish text", "I am very bullish on this token, strong momentum", domain.ActionBuy, domain.SentimentBullish},
		{"bearish text", "This looks bearish to me, distribution everywhere", domain.ActionSell, domain.SentimentBearish},
		{"neutral text", "Nothing interesting here, range-bound market", domain.ActionHold, domain.SentimentNeutral},
		{"broken json with keyword", `{"recommendation": "BUY", truncated...`, domain.ActionBuy, domain.SentimentBullish},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			msg := ParseAnalysis(tc.raw)
			if msg.Recommendation != tc.rec {
				t.Errorf("expected %s, got %s", tc.rec, msg.Recommendation)
			}
			if msg.Sentiment != tc.sentiment {
				t.Errorf("expected %s, got %s", tc.sentiment, msg.Sentiment)
			}
			if msg.Confidence != domain.FallbackConfidence {
				t.Errorf("expected fallback confidence %.0f, got %f", domain.FallbackConfidence, msg.Confidence)
			}
		})
	}
}

func TestParseAnalysisUnknownRecommendationFallsBack(t *testing.T) {
	// Валидный JSON с невалидной рекомендацией идет в эвристику
	raw := `{"message": "go long on this", "confidence": 90, "recommendation": "MOON"}`

	msg := ParseAnalysis(raw)
	if msg.Confidence != domain.FallbackConfidence {
		t.Errorf("expected heuristic confidence, got %f", msg.Confidence)
	}
}

func TestFallbackMessage(t *testing.T) {
	msg := FallbackMessage("agent Cassandra did not respond: context deadline exceeded")

	if msg.Recommendation != domain.ActionPass {
		t.Errorf("expected PASS, got %s", msg.Recommendation)
	}
	if msg.Confidence != 0 {
		t.Errorf("expected zero confidence, got %f", msg.Confidence)
	}
	if msg.Sentiment != domain.SentimentNeutral {
		t.Errorf("expected NEUTRAL, got %s", msg.Sentiment)
	}
	if !strings.Contains(msg.Message, "Analysis unavailable") {
		t.Errorf("unexpected message: %s", msg.Message)
	}
}
