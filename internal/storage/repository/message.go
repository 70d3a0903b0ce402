package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"

	"github.com/kirillm/debate-bot/internal/domain"
)

// MessageRepository реализует работу с сообщениями дебатов
type MessageRepository struct {
	db *sql.DB
}

// NewMessageRepository создает новый репозиторий для сообщений
func NewMessageRepository(db *sql.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create сохраняет анализ агента
func (r *MessageRepository) Create(ctx context.Context, m *domain.DebateMessage) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	query := `
		INSERT INTO debate_messages (debate_id, agent_id, message, sentiment, confidence,
		                             recommendation, key_points, data_support, concerns,
		                             suggested_price, suggested_size, stop_loss, take_profit, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id
	`
	return r.db.QueryRowContext(
		ctx,
		query,
		m.DebateID,
		m.AgentID,
		m.Message,
		m.Sentiment,
		m.Confidence,
		m.Recommendation,
		pq.Array(m.KeyPoints),
		m.DataSupport,
		pq.Array(m.Concerns),
		m.SuggestedPrice,
		m.SuggestedSize,
		m.StopLoss,
		m.TakeProfit,
		m.CreatedAt,
	).Scan(&m.ID)
}

// ListByDebate получает все сообщения дебатов в порядке поступления
func (r *MessageRepository) ListByDebate(ctx context.Context, debateID int64) ([]domain.DebateMessage, error) {
	query := `
		SELECT id, debate_id, agent_id, message, sentiment, confidence,
		       recommendation, key_points, data_support, concerns,
		       suggested_price, suggested_size, stop_loss, take_profit, created_at
		FROM debate_messages
		WHERE debate_id = $1
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query, debateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.DebateMessage
	for rows.Next() {
		var m domain.DebateMessage
		err := rows.Scan(
			&m.ID,
			&m.DebateID,
			&m.AgentID,
			&m.Message,
			&m.Sentiment,
			&m.Confidence,
			&m.Recommendation,
			pq.Array(&m.KeyPoints),
			&m.DataSupport,
			pq.Array(&m.Concerns),
			&m.SuggestedPrice,
			&m.SuggestedSize,
			&m.StopLoss,
			&m.TakeProfit,
			&m.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}

	return messages, rows.Err()
}
