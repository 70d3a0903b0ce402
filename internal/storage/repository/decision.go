package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/kirillm/debate-bot/internal/domain"
)

// DecisionRepository реализует работу с итоговыми решениями
type DecisionRepository struct {
	db *sql.DB
}

// NewDecisionRepository создает новый репозиторий для решений
func NewDecisionRepository(db *sql.DB) *DecisionRepository {
	return &DecisionRepository{db: db}
}

const decisionColumns = `
	id, debate_id, action, confidence, total_votes,
	buy_votes, sell_votes, hold_votes, pass_votes,
	buy_score, sell_score, hold_score, pass_score,
	suggested_price, suggested_size, stop_loss, take_profit,
	executed, executed_at, created_at`

// Create сохраняет решение дебатов. На дебаты допускается ровно одно решение.
func (r *DecisionRepository) Create(ctx context.Context, d *domain.Decision) error {
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}
	query := `
		INSERT INTO decisions (debate_id, action, confidence, total_votes,
		                       buy_votes, sell_votes, hold_votes, pass_votes,
		                       buy_score, sell_score, hold_score, pass_score,
		                       suggested_price, suggested_size, stop_loss, take_profit,
		                       executed, executed_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING id
	`
	return r.db.QueryRowContext(
		ctx,
		query,
		d.DebateID,
		d.Action,
		d.Confidence,
		d.TotalVotes,
		d.BuyVotes,
		d.SellVotes,
		d.HoldVotes,
		d.PassVotes,
		d.BuyScore,
		d.SellScore,
		d.HoldScore,
		d.PassScore,
		d.SuggestedPrice,
		d.SuggestedSize,
		d.StopLoss,
		d.TakeProfit,
		d.Executed,
		d.ExecutedAt,
		d.CreatedAt,
	).Scan(&d.ID)
}

// GetByDebate получает решение по идентификатору дебатов
func (r *DecisionRepository) GetByDebate(ctx context.Context, debateID int64) (*domain.Decision, error) {
	query := `SELECT ` + decisionColumns + ` FROM decisions WHERE debate_id = $1`

	d := &domain.Decision{}
	err := r.scanDecision(r.db.QueryRowContext(ctx, query, debateID), d)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

// ListUnexecuted получает исполняемые решения, до которых не дошло исполнение.
// Используется recovery-обходом после рестарта.
func (r *DecisionRepository) ListUnexecuted(ctx context.Context) ([]domain.Decision, error) {
	query := `SELECT ` + decisionColumns + `
		FROM decisions
		WHERE executed = false AND action IN ($1, $2)
		ORDER BY created_at
	`
	rows, err := r.db.QueryContext(ctx, query, domain.ActionBuy, domain.ActionSell)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var decisions []domain.Decision
	for rows.Next() {
		var d domain.Decision
		if err := r.scanDecision(rows, &d); err != nil {
			return nil, err
		}
		decisions = append(decisions, d)
	}

	return decisions, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *DecisionRepository) scanDecision(row rowScanner, d *domain.Decision) error {
	return row.Scan(
		&d.ID,
		&d.DebateID,
		&d.Action,
		&d.Confidence,
		&d.TotalVotes,
		&d.BuyVotes,
		&d.SellVotes,
		&d.HoldVotes,
		&d.PassVotes,
		&d.BuyScore,
		&d.SellScore,
		&d.HoldScore,
		&d.PassScore,
		&d.SuggestedPrice,
		&d.SuggestedSize,
		&d.StopLoss,
		&d.TakeProfit,
		&d.Executed,
		&d.ExecutedAt,
		&d.CreatedAt,
	)
}
