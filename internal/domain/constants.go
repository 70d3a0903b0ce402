package domain

// Agent roles
const (
	RoleRiskAssessor         = "RISK_ASSESSOR"
	RoleMomentumTrader       = "MOMENTUM_TRADER"
	RoleMeanReversion        = "MEAN_REVERSION"
	RoleSentimentAnalyzer    = "SENTIMENT_ANALYZER"
	RoleTechnicalAnalyst     = "TECHNICAL_ANALYST"
	RoleFundamentalAnalyst   = "FUNDAMENTAL_ANALYST"
	RoleVolatilitySpecialist = "VOLATILITY_SPECIALIST"
)

// Debate statuses
const (
	DebateInProgress = "IN_PROGRESS"
	DebateVoting     = "VOTING"
	DebateCompleted  = "COMPLETED"
	DebateCancelled  = "CANCELLED"
)

// Sentiments
const (
	SentimentBullish = "BULLISH"
	SentimentBearish = "BEARISH"
	SentimentNeutral = "NEUTRAL"
)

// Recommendations
const (
	ActionBuy  = "BUY"
	ActionSell = "SELL"
	ActionHold = "HOLD"
	ActionPass = "PASS"
)

// Actions возвращает действия в каноническом порядке.
// Порядок фиксирован: при равных score побеждает первое действие.
func Actions() []string {
	return []string{ActionBuy, ActionSell, ActionHold, ActionPass}
}

// Trade statuses
const (
	TradeOpen      = "OPEN"
	TradeClosed    = "CLOSED"
	TradeCancelled = "CANCELLED"
)

// Trade sides
const (
	SideBuy  = "BUY"
	SideSell = "SELL"
)

// Venues
const (
	VenueHyperliquid = "HYPERLIQUID" // бессрочные фьючерсы
	VenueJupiter     = "JUPITER"     // нативная ликвидность Solana
	VenueOneInch     = "ONEINCH"     // дефолтный спот-агрегатор
)

// Chains
const (
	ChainSolana = "SOLANA"
	ChainBase   = "BASE"
)

// Consensus
const (
	// ConsensusThreshold минимальная уверенность (%) для consensusReached
	ConsensusThreshold = 60.0

	// FallbackConfidence уверенность эвристического разбора ответа агента
	FallbackConfidence = 50.0
)
