package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/kirillm/debate-bot/internal/domain"
)

// VoteRepository реализует работу с голосами агентов
type VoteRepository struct {
	db *sql.DB
}

// NewVoteRepository создает новый репозиторий для голосов
func NewVoteRepository(db *sql.DB) *VoteRepository {
	return &VoteRepository{db: db}
}

// Create сохраняет голос агента
func (r *VoteRepository) Create(ctx context.Context, vote *domain.Vote) error {
	if vote.CreatedAt.IsZero() {
		vote.CreatedAt = time.Now()
	}
	query := `
		INSERT INTO votes (debate_id, agent_id, decision, confidence, weight, reasoning, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	return r.db.QueryRowContext(
		ctx,
		query,
		vote.DebateID,
		vote.AgentID,
		vote.Decision,
		vote.Confidence,
		vote.Weight,
		vote.Reasoning,
		vote.CreatedAt,
	).Scan(&vote.ID)
}

// ListByDebate получает все голоса дебатов
func (r *VoteRepository) ListByDebate(ctx context.Context, debateID int64) ([]domain.Vote, error) {
	query := `
		SELECT id, debate_id, agent_id, decision, confidence, weight, reasoning, created_at
		FROM votes
		WHERE debate_id = $1
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query, debateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var votes []domain.Vote
	for rows.Next() {
		var vote domain.Vote
		err := rows.Scan(
			&vote.ID,
			&vote.DebateID,
			&vote.AgentID,
			&vote.Decision,
			&vote.Confidence,
			&vote.Weight,
			&vote.Reasoning,
			&vote.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		votes = append(votes, vote)
	}

	return votes, rows.Err()
}
