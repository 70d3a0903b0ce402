package collector

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/kirillm/debate-bot/internal/ai"
	"github.com/kirillm/debate-bot/internal/domain"
)

// Analyst интерфейс AI-бэкенда для опроса агентов
type Analyst interface {
	Chat(ctx context.Context, model, systemPrompt, userPrompt string) (string, error)
}

// MessageStore сохраняет анализы агентов по мере поступления
type MessageStore interface {
	CreateMessage(ctx context.Context, message *domain.DebateMessage) error
}

// Collector опрашивает панель агентов параллельно.
// Гарантия: ровно одно сообщение на агента — сбой или таймаут
// превращается в fallback PASS, агент не выпадает из дебатов.
type Collector struct {
	ai      Analyst
	store   MessageStore
	timeout time.Duration // на одного агента
}

// NewCollector создает коллектор анализов
func NewCollector(analyst Analyst, store MessageStore, timeout time.Duration) *Collector {
	return &Collector{ai: analyst, store: store, timeout: timeout}
}

// Collect собирает анализы всех агентов по дебатам.
// Агенты опрашиваются параллельно, каждый со своим таймаутом.
// Сообщения сохраняются по мере поступления, порядок не гарантирован.
func (c *Collector) Collect(ctx context.Context, debate *domain.Debate, agents []domain.Agent) []domain.DebateMessage {
	results := make(chan domain.DebateMessage, len(agents))

	var wg sync.WaitGroup
	for _, agent := range agents {
		wg.Add(1)
		go func(a domain.Agent) {
			defer wg.Done()
			results <- c.analyze(ctx, debate, a)
		}(agent)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	messages := make([]domain.DebateMessage, 0, len(agents))
	for m := range results {
		if c.store != nil {
			if err := c.store.CreateMessage(ctx, &m); err != nil {
				log.Printf("⚠️ Failed to save message of agent %d in debate %d: %v", m.AgentID, m.DebateID, err)
			}
		}
		messages = append(messages, m)
	}

	return messages
}

// analyze опрашивает одного агента и разбирает его ответ
func (c *Collector) analyze(ctx context.Context, debate *domain.Debate, agent domain.Agent) domain.DebateMessage {
	actx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var msg *domain.DebateMessage

	raw, err := c.ai.Chat(actx, agent.Model, ai.SystemPrompt(agent.Role), ai.BuildDataPrompt(debate))
	if err != nil {
		log.Printf("⚠️ Agent %s (%s) failed to respond: %v", agent.Name, agent.Role, err)
		msg = ai.FallbackMessage(fmt.Sprintf("agent %s did not respond: %v", agent.Name, err))
	} else {
		msg = ai.ParseAnalysis(raw)
	}

	msg.DebateID = debate.ID
	msg.AgentID = agent.ID
	msg.CreatedAt = time.Now()

	return *msg
}
