package domain

import "context"

// AgentRepository определяет интерфейс для работы с агентами
type AgentRepository interface {
	Create(ctx context.Context, agent *Agent) error
	Update(ctx context.Context, agent *Agent) error
	GetByID(ctx context.Context, id int64) (*Agent, error)
	GetByName(ctx context.Context, name string) (*Agent, error)
	ListActive(ctx context.Context) ([]Agent, error)
}

// DebateRepository определяет интерфейс для работы с дебатами
type DebateRepository interface {
	Create(ctx context.Context, debate *Debate) error
	Update(ctx context.Context, debate *Debate) error
	GetByID(ctx context.Context, id int64) (*Debate, error)
	List(ctx context.Context, symbol, status string, limit int) ([]Debate, error)
}

// MessageRepository определяет интерфейс для работы с сообщениями дебатов
type MessageRepository interface {
	Create(ctx context.Context, message *DebateMessage) error
	ListByDebate(ctx context.Context, debateID int64) ([]DebateMessage, error)
}

// VoteRepository определяет интерфейс для работы с голосами
type VoteRepository interface {
	Create(ctx context.Context, vote *Vote) error
	ListByDebate(ctx context.Context, debateID int64) ([]Vote, error)
}

// DecisionRepository определяет интерфейс для работы с решениями
type DecisionRepository interface {
	Create(ctx context.Context, decision *Decision) error
	GetByDebate(ctx context.Context, debateID int64) (*Decision, error)
	ListUnexecuted(ctx context.Context) ([]Decision, error)
}

// TradeRepository определяет интерфейс для работы с записями сделок
type TradeRepository interface {
	Create(ctx context.Context, trade *Trade) error
	ListRecent(ctx context.Context, limit int) ([]Trade, error)
	ListByDebate(ctx context.Context, debateID int64) ([]Trade, error)
}

// BalanceRepository определяет интерфейс для работы с балансами принципалов
type BalanceRepository interface {
	GetByAgent(ctx context.Context, agentID int64) (*Balance, error)
	Upsert(ctx context.Context, balance *Balance) error
}
