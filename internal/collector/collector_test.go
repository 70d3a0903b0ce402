package collector

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/kirillm/debate-bot/internal/domain"
)

// fakeAnalyst отдает заготовленные ответы по модели агента
type fakeAnalyst struct {
	responses map[string]string // model -> raw response
	hang      map[string]bool   // model -> висеть до таймаута
}

func (f *fakeAnalyst) Chat(ctx context.Context, model, systemPrompt, userPrompt string) (string, error) {
	if f.hang[model] {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.responses[model], nil
}

// fakeMessageStore потокобезопасно копит сохраненные сообщения
type fakeMessageStore struct {
	mu       sync.Mutex
	messages []domain.DebateMessage
}

func (f *fakeMessageStore) CreateMessage(ctx context.Context, m *domain.DebateMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m.ID = int64(len(f.messages) + 1)
	f.messages = append(f.messages, *m)
	return nil
}

func testAgents(n int) []domain.Agent {
	names := []string{"alpha", "beta", "gamma", "delta", "epsilon"}
	agents := make([]domain.Agent, 0, n)
	for i := 0; i < n; i++ {
		agents = append(agents, domain.Agent{
			ID:           int64(i + 1),
			Name:         names[i],
			Role:         domain.RoleMomentumTrader,
			VotingWeight: 1.0,
			Model:        names[i],
			IsActive:     true,
		})
	}
	return agents
}

func TestCollectOneMessagePerAgent(t *testing.T) {
	buyResponse := `{"message": "looks good", "sentiment": "BULLISH", "confidence": 80, "recommendation": "BUY"}`

	analyst := &fakeAnalyst{responses: map[string]string{
		"alpha": buyResponse,
		"beta":  buyResponse,
		"gamma": `{"message": "overbought", "sentiment": "BEARISH", "confidence": 60, "recommendation": "SELL"}`,
	}}
	store := &fakeMessageStore{}
	c := NewCollector(analyst, store, time.Second)

	debate := &domain.Debate{ID: 7, Symbol: "BONK", CurrentPrice: 0.00002}
	agents := testAgents(3)

	messages := c.Collect(context.Background(), debate, agents)

	if len(messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(messages))
	}

	seen := make(map[int64]bool)
	for _, m := range messages {
		if m.DebateID != debate.ID {
			t.Errorf("message bound to wrong debate: %d", m.DebateID)
		}
		if seen[m.AgentID] {
			t.Errorf("agent %d produced more than one message", m.AgentID)
		}
		seen[m.AgentID] = true
	}

	store.mu.Lock()
	saved := len(store.messages)
	store.mu.Unlock()
	if saved != 3 {
		t.Errorf("expected 3 saved messages, got %d", saved)
	}
}

func TestCollectTimeoutBecomesPassFallback(t *testing.T) {
	buyResponse := `{"message": "strong setup", "sentiment": "BULLISH", "confidence": 90, "recommendation": "BUY"}`

	analyst := &fakeAnalyst{
		responses: map[string]string{
			"alpha": buyResponse,
			"beta":  buyResponse,
			"gamma": buyResponse,
			"delta": buyResponse,
		},
		hang: map[string]bool{"epsilon": true},
	}
	c := NewCollector(analyst, &fakeMessageStore{}, 50*time.Millisecond)

	debate := &domain.Debate{ID: 1, Symbol: "ETH-USD", CurrentPrice: 3000}
	agents := testAgents(5)

	start := time.Now()
	messages := c.Collect(context.Background(), debate, agents)
	elapsed := time.Since(start)

	if len(messages) != 5 {
		t.Fatalf("expected 5 messages, got %d", len(messages))
	}
	if elapsed > time.Second {
		t.Errorf("collect took %v, timeout did not bound the hang", elapsed)
	}

	var passes, buys int
	for _, m := range messages {
		switch m.Recommendation {
		case domain.ActionPass:
			passes++
			if m.Confidence != 0 {
				t.Errorf("fallback message must carry zero confidence, got %f", m.Confidence)
			}
			if m.AgentID != 5 {
				t.Errorf("expected hung agent 5 to fall back, got agent %d", m.AgentID)
			}
		case domain.ActionBuy:
			buys++
		}
	}

	if passes != 1 || buys != 4 {
		t.Errorf("expected 4 BUY + 1 PASS, got %d BUY / %d PASS", buys, passes)
	}
}

func TestCollectNilStore(t *testing.T) {
	analyst := &fakeAnalyst{responses: map[string]string{
		"alpha": `{"message": "hold here", "confidence": 50, "recommendation": "HOLD"}`,
	}}
	c := NewCollector(analyst, nil, time.Second)

	debate := &domain.Debate{ID: 2, Symbol: "DEGEN", CurrentPrice: 0.01}
	messages := c.Collect(context.Background(), debate, testAgents(1))

	if len(messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(messages))
	}
	if messages[0].Recommendation != domain.ActionHold {
		t.Errorf("expected HOLD, got %s", messages[0].Recommendation)
	}
}
