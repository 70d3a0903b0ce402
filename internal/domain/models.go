package domain

import "time"

// MarketOpportunity входная рыночная возможность от внешнего детектора.
// Неизменяема, потребляется ровно один раз на дебаты.
type MarketOpportunity struct {
	Symbol         string                 `json:"symbol"`
	CurrentPrice   float64                `json:"current_price"`
	PriceChange24h float64                `json:"price_change_24h"`
	Volume24h      float64                `json:"volume_24h"`
	TriggerReason  string                 `json:"trigger_reason"`
	MarketData     map[string]interface{} `json:"market_data,omitempty"`
}

// Agent представляет агента-участника дебатов
type Agent struct {
	ID           int64     `db:"id"`
	Name         string    `db:"name"`
	Role         string    `db:"role"` // RISK_ASSESSOR, MOMENTUM_TRADER, ...
	VotingWeight float64   `db:"voting_weight"`
	Provider     string    `db:"provider"` // привязка к AI-бэкенду
	Model        string    `db:"model"`
	IsActive     bool      `db:"is_active"`
	IsPrincipal  bool      `db:"is_principal"` // чей торговый баланс задействуется при исполнении
	CreatedAt    time.Time `db:"created_at"`
}

// Debate представляет один полный цикл консенсуса по возможности
type Debate struct {
	ID               int64      `db:"id"`
	Symbol           string     `db:"symbol"`
	TriggerReason    string     `db:"trigger_reason"`
	CurrentPrice     float64    `db:"current_price"`
	PriceChange24h   float64    `db:"price_change_24h"`
	Volume24h        float64    `db:"volume_24h"`
	MarketData       string     `db:"market_data"` // JSON снапшот
	Status           string     `db:"status"`      // IN_PROGRESS, VOTING, COMPLETED, CANCELLED
	StartedAt        time.Time  `db:"started_at"`
	CompletedAt      *time.Time `db:"completed_at"`
	DurationMs       int64      `db:"duration_ms"`
	ConsensusReached bool       `db:"consensus_reached"`
	FinalDecision    string     `db:"final_decision"`
	Confidence       float64    `db:"confidence"`
}

// DebateMessage анализ одного агента в рамках дебатов.
// Ровно одна запись на агента, включая fallback при сбое.
type DebateMessage struct {
	ID             int64     `db:"id"`
	DebateID       int64     `db:"debate_id"`
	AgentID        int64     `db:"agent_id"`
	Message        string    `db:"message"`
	Sentiment      string    `db:"sentiment"` // BULLISH, BEARISH, NEUTRAL
	Confidence     float64   `db:"confidence"`
	Recommendation string    `db:"recommendation"` // BUY, SELL, HOLD, PASS
	KeyPoints      []string  `db:"key_points"`
	DataSupport    string    `db:"data_support"`
	Concerns       []string  `db:"concerns"`
	SuggestedPrice *float64  `db:"suggested_price"`
	SuggestedSize  *float64  `db:"suggested_size"` // % портфеля
	StopLoss       *float64  `db:"stop_loss"`
	TakeProfit     *float64  `db:"take_profit"`
	CreatedAt      time.Time `db:"created_at"`
}

// Vote взвешенный голос агента, производный от его DebateMessage
type Vote struct {
	ID         int64     `db:"id"`
	DebateID   int64     `db:"debate_id"`
	AgentID    int64     `db:"agent_id"`
	Decision   string    `db:"decision"`
	Confidence float64   `db:"confidence"`
	Weight     float64   `db:"weight"` // копия VotingWeight агента на момент голосования
	Reasoning  string    `db:"reasoning"`
	CreatedAt  time.Time `db:"created_at"`
}

// Decision итоговое решение по завершенным дебатам, ровно одно
type Decision struct {
	ID             int64      `db:"id"`
	DebateID       int64      `db:"debate_id"`
	Action         string     `db:"action"`
	Confidence     float64    `db:"confidence"` // %
	TotalVotes     int        `db:"total_votes"`
	BuyVotes       int        `db:"buy_votes"`
	SellVotes      int        `db:"sell_votes"`
	HoldVotes      int        `db:"hold_votes"`
	PassVotes      int        `db:"pass_votes"`
	BuyScore       float64    `db:"buy_score"`
	SellScore      float64    `db:"sell_score"`
	HoldScore      float64    `db:"hold_score"`
	PassScore      float64    `db:"pass_score"`
	SuggestedPrice *float64   `db:"suggested_price"`
	SuggestedSize  *float64   `db:"suggested_size"`
	StopLoss       *float64   `db:"stop_loss"`
	TakeProfit     *float64   `db:"take_profit"`
	Executed       bool       `db:"executed"`
	ExecutedAt     *time.Time `db:"executed_at"`
	CreatedAt      time.Time  `db:"created_at"`
}

// Trade запись об исполнении (успешном или отмененном)
type Trade struct {
	ID           int64     `db:"id"`
	AgentID      int64     `db:"agent_id"` // принципал, чей капитал задействован
	DebateID     int64     `db:"debate_id"`
	Symbol       string    `db:"symbol"`
	Venue        string    `db:"venue"`
	Side         string    `db:"side"`
	Quantity     float64   `db:"quantity"`
	EntryPrice   float64   `db:"entry_price"`
	Leverage     float64   `db:"leverage"`
	UsdAmount    float64   `db:"usd_amount"` // выделенный капитал, списывается с баланса при успехе
	Status       string    `db:"status"` // OPEN, CLOSED, CANCELLED
	TxRef        string    `db:"tx_ref"` // txHash или orderId площадки
	Confidence   float64   `db:"confidence"`
	ErrorMessage string    `db:"error_message"`
	CreatedAt    time.Time `db:"created_at"`
}

// Balance торговый баланс принципала
type Balance struct {
	ID        int64     `db:"id"`
	AgentID   int64     `db:"agent_id"`
	NativeQty float64   `db:"native_qty"` // SOL
	QuoteQty  float64   `db:"quote_qty"`  // USDC
	TotalUSD  float64   `db:"total_usd"`
	UpdatedAt time.Time `db:"updated_at"`
}
