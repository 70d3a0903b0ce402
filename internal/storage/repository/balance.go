package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/kirillm/debate-bot/internal/domain"
)

// BalanceRepository реализует работу с торговыми балансами принципалов
type BalanceRepository struct {
	db *sql.DB
}

// NewBalanceRepository создает новый репозиторий для балансов
func NewBalanceRepository(db *sql.DB) *BalanceRepository {
	return &BalanceRepository{db: db}
}

// GetByAgent получает баланс принципала.
// Если записи нет, возвращается нулевой баланс: для исполнения это
// эквивалентно нехватке средств, а не ошибке хранилища.
func (r *BalanceRepository) GetByAgent(ctx context.Context, agentID int64) (*domain.Balance, error) {
	balance := &domain.Balance{}
	query := `
		SELECT id, agent_id, native_qty, quote_qty, total_usd, updated_at
		FROM balances WHERE agent_id = $1
	`
	err := r.db.QueryRowContext(ctx, query, agentID).Scan(
		&balance.ID,
		&balance.AgentID,
		&balance.NativeQty,
		&balance.QuoteQty,
		&balance.TotalUSD,
		&balance.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return &domain.Balance{AgentID: agentID, UpdatedAt: time.Now()}, nil
	}
	if err != nil {
		return nil, err
	}

	return balance, nil
}

// Upsert обновляет или создает баланс принципала
func (r *BalanceRepository) Upsert(ctx context.Context, balance *domain.Balance) error {
	balance.UpdatedAt = time.Now()
	query := `
		INSERT INTO balances (agent_id, native_qty, quote_qty, total_usd, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (agent_id) DO UPDATE SET
			native_qty = EXCLUDED.native_qty,
			quote_qty = EXCLUDED.quote_qty,
			total_usd = EXCLUDED.total_usd,
			updated_at = EXCLUDED.updated_at
	`
	_, err := r.db.ExecContext(
		ctx,
		query,
		balance.AgentID,
		balance.NativeQty,
		balance.QuoteQty,
		balance.TotalUSD,
		balance.UpdatedAt,
	)
	return err
}
