package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/kirillm/debate-bot/internal/domain"
	"github.com/kirillm/debate-bot/internal/storage/repository"
)

// PostgresStorage является фасадом для работы с PostgreSQL через репозитории
type PostgresStorage struct {
	db        *sql.DB
	agents    *repository.AgentRepository
	debates   *repository.DebateRepository
	messages  *repository.MessageRepository
	votes     *repository.VoteRepository
	decisions *repository.DecisionRepository
	trades    *repository.TradeRepository
	balances  *repository.BalanceRepository
}

func NewPostgresStorage(host string, port int, user, password, dbname, sslmode string, maxOpenConns, maxIdleConns int, connMaxLifetime time.Duration) (*PostgresStorage, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDatabaseConnection, err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)

	storage := &PostgresStorage{
		db:        db,
		agents:    repository.NewAgentRepository(db),
		debates:   repository.NewDebateRepository(db),
		messages:  repository.NewMessageRepository(db),
		votes:     repository.NewVoteRepository(db),
		decisions: repository.NewDecisionRepository(db),
		trades:    repository.NewTradeRepository(db),
		balances:  repository.NewBalanceRepository(db),
	}

	if err := storage.migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return storage, nil
}

func (s *PostgresStorage) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS agents (
			id SERIAL PRIMARY KEY,
			name VARCHAR(100) NOT NULL UNIQUE,
			role VARCHAR(50) NOT NULL,
			voting_weight DECIMAL(10, 4) NOT NULL DEFAULT 1,
			provider VARCHAR(50) NOT NULL DEFAULT '',
			model VARCHAR(100) NOT NULL DEFAULT '',
			is_active BOOLEAN NOT NULL DEFAULT true,
			is_principal BOOLEAN NOT NULL DEFAULT false,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS debates (
			id SERIAL PRIMARY KEY,
			symbol VARCHAR(20) NOT NULL,
			trigger_reason TEXT NOT NULL DEFAULT '',
			current_price DECIMAL(20, 8) NOT NULL,
			price_change_24h DECIMAL(10, 4) NOT NULL DEFAULT 0,
			volume_24h DECIMAL(20, 2) NOT NULL DEFAULT 0,
			market_data TEXT NOT NULL DEFAULT '{}',
			status VARCHAR(20) NOT NULL,
			started_at TIMESTAMP NOT NULL DEFAULT NOW(),
			completed_at TIMESTAMP,
			duration_ms BIGINT NOT NULL DEFAULT 0,
			consensus_reached BOOLEAN NOT NULL DEFAULT false,
			final_decision VARCHAR(10) NOT NULL DEFAULT '',
			confidence DECIMAL(10, 4) NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS debate_messages (
			id SERIAL PRIMARY KEY,
			debate_id INTEGER NOT NULL REFERENCES debates(id),
			agent_id INTEGER NOT NULL REFERENCES agents(id),
			message TEXT NOT NULL DEFAULT '',
			sentiment VARCHAR(10) NOT NULL,
			confidence DECIMAL(10, 4) NOT NULL,
			recommendation VARCHAR(10) NOT NULL,
			key_points TEXT[],
			data_support TEXT NOT NULL DEFAULT '',
			concerns TEXT[],
			suggested_price DECIMAL(20, 8),
			suggested_size DECIMAL(10, 4),
			stop_loss DECIMAL(20, 8),
			take_profit DECIMAL(20, 8),
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS votes (
			id SERIAL PRIMARY KEY,
			debate_id INTEGER NOT NULL REFERENCES debates(id),
			agent_id INTEGER NOT NULL REFERENCES agents(id),
			decision VARCHAR(10) NOT NULL,
			confidence DECIMAL(10, 4) NOT NULL,
			weight DECIMAL(10, 4) NOT NULL,
			reasoning TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS decisions (
			id SERIAL PRIMARY KEY,
			debate_id INTEGER NOT NULL UNIQUE REFERENCES debates(id),
			action VARCHAR(10) NOT NULL,
			confidence DECIMAL(10, 4) NOT NULL,
			total_votes INTEGER NOT NULL,
			buy_votes INTEGER NOT NULL DEFAULT 0,
			sell_votes INTEGER NOT NULL DEFAULT 0,
			hold_votes INTEGER NOT NULL DEFAULT 0,
			pass_votes INTEGER NOT NULL DEFAULT 0,
			buy_score DECIMAL(20, 8) NOT NULL DEFAULT 0,
			sell_score DECIMAL(20, 8) NOT NULL DEFAULT 0,
			hold_score DECIMAL(20, 8) NOT NULL DEFAULT 0,
			pass_score DECIMAL(20, 8) NOT NULL DEFAULT 0,
			suggested_price DECIMAL(20, 8),
			suggested_size DECIMAL(10, 4),
			stop_loss DECIMAL(20, 8),
			take_profit DECIMAL(20, 8),
			executed BOOLEAN NOT NULL DEFAULT false,
			executed_at TIMESTAMP,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS trades (
			id SERIAL PRIMARY KEY,
			agent_id INTEGER NOT NULL REFERENCES agents(id),
			debate_id INTEGER NOT NULL REFERENCES debates(id),
			symbol VARCHAR(20) NOT NULL,
			venue VARCHAR(20) NOT NULL,
			side VARCHAR(10) NOT NULL,
			quantity DECIMAL(20, 8) NOT NULL DEFAULT 0,
			entry_price DECIMAL(20, 8) NOT NULL DEFAULT 0,
			leverage DECIMAL(10, 2) NOT NULL DEFAULT 0,
			usd_amount DECIMAL(20, 2) NOT NULL DEFAULT 0,
			status VARCHAR(20) NOT NULL,
			tx_ref VARCHAR(200) NOT NULL DEFAULT '',
			confidence DECIMAL(10, 4) NOT NULL DEFAULT 0,
			error_message TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS balances (
			id SERIAL PRIMARY KEY,
			agent_id INTEGER NOT NULL UNIQUE REFERENCES agents(id),
			native_qty DECIMAL(20, 8) NOT NULL DEFAULT 0,
			quote_qty DECIMAL(20, 8) NOT NULL DEFAULT 0,
			total_usd DECIMAL(20, 2) NOT NULL DEFAULT 0,
			updated_at TIMESTAMP NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_debates_symbol ON debates(symbol)`,
		`CREATE INDEX IF NOT EXISTS idx_debates_status ON debates(status)`,
		`CREATE INDEX IF NOT EXISTS idx_debates_started_at ON debates(started_at)`,
		`CREATE INDEX IF NOT EXISTS idx_debate_messages_debate_id ON debate_messages(debate_id)`,
		`CREATE INDEX IF NOT EXISTS idx_votes_debate_id ON votes(debate_id)`,
		`CREATE INDEX IF NOT EXISTS idx_decisions_executed ON decisions(executed)`,
		`CREATE INDEX IF NOT EXISTS idx_trades_debate_id ON trades(debate_id)`,
		`CREATE INDEX IF NOT EXISTS idx_trades_created_at ON trades(created_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}

// ==================== AGENTS ====================

func (s *PostgresStorage) Create(ctx context.Context, agent *domain.Agent) error {
	return s.agents.Create(ctx, agent)
}

func (s *PostgresStorage) Update(ctx context.Context, agent *domain.Agent) error {
	return s.agents.Update(ctx, agent)
}

func (s *PostgresStorage) GetByName(ctx context.Context, name string) (*domain.Agent, error) {
	return s.agents.GetByName(ctx, name)
}

func (s *PostgresStorage) ListActive(ctx context.Context) ([]domain.Agent, error) {
	return s.agents.ListActive(ctx)
}

// ==================== DEBATES ====================

func (s *PostgresStorage) CreateDebate(ctx context.Context, debate *domain.Debate) error {
	return s.debates.Create(ctx, debate)
}

func (s *PostgresStorage) UpdateDebate(ctx context.Context, debate *domain.Debate) error {
	return s.debates.Update(ctx, debate)
}

func (s *PostgresStorage) GetDebate(ctx context.Context, id int64) (*domain.Debate, error) {
	return s.debates.GetByID(ctx, id)
}

func (s *PostgresStorage) ListDebates(ctx context.Context, symbol, status string, limit int) ([]domain.Debate, error) {
	return s.debates.List(ctx, symbol, status, limit)
}

// ==================== MESSAGES ====================

func (s *PostgresStorage) CreateMessage(ctx context.Context, message *domain.DebateMessage) error {
	return s.messages.Create(ctx, message)
}

func (s *PostgresStorage) ListMessages(ctx context.Context, debateID int64) ([]domain.DebateMessage, error) {
	return s.messages.ListByDebate(ctx, debateID)
}

// ==================== VOTES ====================

func (s *PostgresStorage) CreateVote(ctx context.Context, vote *domain.Vote) error {
	return s.votes.Create(ctx, vote)
}

func (s *PostgresStorage) ListVotes(ctx context.Context, debateID int64) ([]domain.Vote, error) {
	return s.votes.ListByDebate(ctx, debateID)
}

// ==================== DECISIONS ====================

func (s *PostgresStorage) CreateDecision(ctx context.Context, decision *domain.Decision) error {
	return s.decisions.Create(ctx, decision)
}

func (s *PostgresStorage) GetDecision(ctx context.Context, debateID int64) (*domain.Decision, error) {
	return s.decisions.GetByDebate(ctx, debateID)
}

func (s *PostgresStorage) ListUnexecutedDecisions(ctx context.Context) ([]domain.Decision, error) {
	return s.decisions.ListUnexecuted(ctx)
}

// ==================== TRADES ====================

func (s *PostgresStorage) CreateTrade(ctx context.Context, trade *domain.Trade) error {
	return s.trades.Create(ctx, trade)
}

func (s *PostgresStorage) ListRecentTrades(ctx context.Context, limit int) ([]domain.Trade, error) {
	return s.trades.ListRecent(ctx, limit)
}

func (s *PostgresStorage) ListTradesByDebate(ctx context.Context, debateID int64) ([]domain.Trade, error) {
	return s.trades.ListByDebate(ctx, debateID)
}

// ==================== BALANCES ====================

func (s *PostgresStorage) GetTradingBalance(ctx context.Context, agentID int64) (*domain.Balance, error) {
	return s.balances.GetByAgent(ctx, agentID)
}

func (s *PostgresStorage) UpsertBalance(ctx context.Context, balance *domain.Balance) error {
	return s.balances.Upsert(ctx, balance)
}

// MarkDecisionExecuted переводит решение в executed и записывает сделку
// одной транзакцией. Флаг executed односторонний: уже исполненное решение
// повторно не исполняется.
func (s *PostgresStorage) MarkDecisionExecuted(ctx context.Context, decisionID int64, trade *domain.Trade) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	res, err := tx.ExecContext(ctx,
		`UPDATE decisions SET executed = true, executed_at = $2 WHERE id = $1 AND executed = false`,
		decisionID, now)
	if err != nil {
		return fmt.Errorf("failed to mark decision executed: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if affected == 0 {
		return domain.ErrAlreadyExecuted
	}

	if trade.CreatedAt.IsZero() {
		trade.CreatedAt = now
	}
	err = tx.QueryRowContext(ctx,
		`INSERT INTO trades (agent_id, debate_id, symbol, venue, side, quantity, entry_price,
		                     leverage, usd_amount, status, tx_ref, confidence, error_message, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		 RETURNING id`,
		trade.AgentID, trade.DebateID, trade.Symbol, trade.Venue, trade.Side,
		trade.Quantity, trade.EntryPrice, trade.Leverage, trade.UsdAmount, trade.Status,
		trade.TxRef, trade.Confidence, trade.ErrorMessage, trade.CreatedAt,
	).Scan(&trade.ID)
	if err != nil {
		return fmt.Errorf("failed to save trade: %w", err)
	}

	// Успешная сделка списывает выделенный капитал с баланса принципала
	if trade.Status == domain.TradeOpen && trade.UsdAmount > 0 {
		_, err = tx.ExecContext(ctx,
			`UPDATE balances SET total_usd = total_usd - $2, updated_at = $3 WHERE agent_id = $1`,
			trade.AgentID, trade.UsdAmount, now)
		if err != nil {
			return fmt.Errorf("failed to debit principal balance: %w", err)
		}
	}

	return tx.Commit()
}

// Close закрывает соединение с базой данных
func (s *PostgresStorage) Close() error {
	return s.db.Close()
}

// DB возвращает указатель на *sql.DB
func (s *PostgresStorage) DB() *sql.DB {
	return s.db
}
