package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/kirillm/debate-bot/internal/domain"
)

// TradeRepository реализует работу с записями сделок
type TradeRepository struct {
	db *sql.DB
}

// NewTradeRepository создает новый репозиторий для сделок
func NewTradeRepository(db *sql.DB) *TradeRepository {
	return &TradeRepository{db: db}
}

// Create сохраняет запись о сделке
func (r *TradeRepository) Create(ctx context.Context, trade *domain.Trade) error {
	if trade.CreatedAt.IsZero() {
		trade.CreatedAt = time.Now()
	}
	query := `
		INSERT INTO trades (agent_id, debate_id, symbol, venue, side, quantity, entry_price,
		                    leverage, usd_amount, status, tx_ref, confidence, error_message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id
	`
	return r.db.QueryRowContext(
		ctx,
		query,
		trade.AgentID,
		trade.DebateID,
		trade.Symbol,
		trade.Venue,
		trade.Side,
		trade.Quantity,
		trade.EntryPrice,
		trade.Leverage,
		trade.UsdAmount,
		trade.Status,
		trade.TxRef,
		trade.Confidence,
		trade.ErrorMessage,
		trade.CreatedAt,
	).Scan(&trade.ID)
}

// ListRecent получает последние N сделок
func (r *TradeRepository) ListRecent(ctx context.Context, limit int) ([]domain.Trade, error) {
	query := `
		SELECT id, agent_id, debate_id, symbol, venue, side, quantity, entry_price,
		       leverage, usd_amount, status, tx_ref, confidence, error_message, created_at
		FROM trades
		ORDER BY created_at DESC
		LIMIT $1
	`
	return r.queryTrades(ctx, query, limit)
}

// ListByDebate получает сделки конкретных дебатов
func (r *TradeRepository) ListByDebate(ctx context.Context, debateID int64) ([]domain.Trade, error) {
	query := `
		SELECT id, agent_id, debate_id, symbol, venue, side, quantity, entry_price,
		       leverage, usd_amount, status, tx_ref, confidence, error_message, created_at
		FROM trades
		WHERE debate_id = $1
		ORDER BY id
	`
	return r.queryTrades(ctx, query, debateID)
}

func (r *TradeRepository) queryTrades(ctx context.Context, query string, args ...interface{}) ([]domain.Trade, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trades []domain.Trade
	for rows.Next() {
		var trade domain.Trade
		err := rows.Scan(
			&trade.ID,
			&trade.AgentID,
			&trade.DebateID,
			&trade.Symbol,
			&trade.Venue,
			&trade.Side,
			&trade.Quantity,
			&trade.EntryPrice,
			&trade.Leverage,
			&trade.UsdAmount,
			&trade.Status,
			&trade.TxRef,
			&trade.Confidence,
			&trade.ErrorMessage,
			&trade.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		trades = append(trades, trade)
	}

	return trades, rows.Err()
}
