package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/kirillm/debate-bot/internal/domain"
)

// DebateRepository реализует работу с дебатами
type DebateRepository struct {
	db *sql.DB
}

// NewDebateRepository создает новый репозиторий для дебатов
func NewDebateRepository(db *sql.DB) *DebateRepository {
	return &DebateRepository{db: db}
}

// Create сохраняет новые дебаты
func (r *DebateRepository) Create(ctx context.Context, debate *domain.Debate) error {
	query := `
		INSERT INTO debates (symbol, trigger_reason, current_price, price_change_24h, volume_24h,
		                     market_data, status, started_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	return r.db.QueryRowContext(
		ctx,
		query,
		debate.Symbol,
		debate.TriggerReason,
		debate.CurrentPrice,
		debate.PriceChange24h,
		debate.Volume24h,
		debate.MarketData,
		debate.Status,
		debate.StartedAt,
	).Scan(&debate.ID)
}

// Update обновляет статус и итоги дебатов
func (r *DebateRepository) Update(ctx context.Context, debate *domain.Debate) error {
	query := `
		UPDATE debates
		SET status = $2, completed_at = $3, duration_ms = $4,
		    consensus_reached = $5, final_decision = $6, confidence = $7
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query,
		debate.ID,
		debate.Status,
		debate.CompletedAt,
		debate.DurationMs,
		debate.ConsensusReached,
		debate.FinalDecision,
		debate.Confidence,
	)
	return err
}

// GetByID получает дебаты по идентификатору
func (r *DebateRepository) GetByID(ctx context.Context, id int64) (*domain.Debate, error) {
	debate := &domain.Debate{}
	query := `
		SELECT id, symbol, trigger_reason, current_price, price_change_24h, volume_24h,
		       market_data, status, started_at, completed_at, duration_ms,
		       consensus_reached, final_decision, confidence
		FROM debates WHERE id = $1
	`
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&debate.ID,
		&debate.Symbol,
		&debate.TriggerReason,
		&debate.CurrentPrice,
		&debate.PriceChange24h,
		&debate.Volume24h,
		&debate.MarketData,
		&debate.Status,
		&debate.StartedAt,
		&debate.CompletedAt,
		&debate.DurationMs,
		&debate.ConsensusReached,
		&debate.FinalDecision,
		&debate.Confidence,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return debate, nil
}

// List получает последние дебаты с необязательными фильтрами по символу и статусу
func (r *DebateRepository) List(ctx context.Context, symbol, status string, limit int) ([]domain.Debate, error) {
	query := `
		SELECT id, symbol, trigger_reason, current_price, price_change_24h, volume_24h,
		       market_data, status, started_at, completed_at, duration_ms,
		       consensus_reached, final_decision, confidence
		FROM debates
		WHERE ($1 = '' OR symbol = $1)
		  AND ($2 = '' OR status = $2)
		ORDER BY started_at DESC
		LIMIT $3
	`
	rows, err := r.db.QueryContext(ctx, query, symbol, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var debates []domain.Debate
	for rows.Next() {
		var debate domain.Debate
		err := rows.Scan(
			&debate.ID,
			&debate.Symbol,
			&debate.TriggerReason,
			&debate.CurrentPrice,
			&debate.PriceChange24h,
			&debate.Volume24h,
			&debate.MarketData,
			&debate.Status,
			&debate.StartedAt,
			&debate.CompletedAt,
			&debate.DurationMs,
			&debate.ConsensusReached,
			&debate.FinalDecision,
			&debate.Confidence,
		)
		if err != nil {
			return nil, err
		}
		debates = append(debates, debate)
	}

	return debates, rows.Err()
}
