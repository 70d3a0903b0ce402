package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/kirillm/debate-bot/internal/domain"
)

// AgentRepository реализует работу с агентами панели
type AgentRepository struct {
	db *sql.DB
}

// NewAgentRepository создает новый репозиторий для агентов
func NewAgentRepository(db *sql.DB) *AgentRepository {
	return &AgentRepository{db: db}
}

// Create сохраняет нового агента
func (r *AgentRepository) Create(ctx context.Context, agent *domain.Agent) error {
	if agent.CreatedAt.IsZero() {
		agent.CreatedAt = time.Now()
	}
	query := `
		INSERT INTO agents (name, role, voting_weight, provider, model, is_active, is_principal, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	return r.db.QueryRowContext(
		ctx,
		query,
		agent.Name,
		agent.Role,
		agent.VotingWeight,
		agent.Provider,
		agent.Model,
		agent.IsActive,
		agent.IsPrincipal,
		agent.CreatedAt,
	).Scan(&agent.ID)
}

// Update обновляет существующего агента
func (r *AgentRepository) Update(ctx context.Context, agent *domain.Agent) error {
	query := `
		UPDATE agents
		SET role = $2, voting_weight = $3, provider = $4, model = $5, is_active = $6, is_principal = $7
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query,
		agent.ID, agent.Role, agent.VotingWeight, agent.Provider, agent.Model,
		agent.IsActive, agent.IsPrincipal)
	return err
}

// GetByID получает агента по идентификатору
func (r *AgentRepository) GetByID(ctx context.Context, id int64) (*domain.Agent, error) {
	return r.getBy(ctx, "id = $1", id)
}

// GetByName получает агента по имени
func (r *AgentRepository) GetByName(ctx context.Context, name string) (*domain.Agent, error) {
	return r.getBy(ctx, "name = $1", name)
}

func (r *AgentRepository) getBy(ctx context.Context, where string, arg interface{}) (*domain.Agent, error) {
	agent := &domain.Agent{}
	query := `
		SELECT id, name, role, voting_weight, provider, model, is_active, is_principal, created_at
		FROM agents WHERE ` + where

	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&agent.ID,
		&agent.Name,
		&agent.Role,
		&agent.VotingWeight,
		&agent.Provider,
		&agent.Model,
		&agent.IsActive,
		&agent.IsPrincipal,
		&agent.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return agent, nil
}

// ListActive получает активных агентов в порядке создания
func (r *AgentRepository) ListActive(ctx context.Context) ([]domain.Agent, error) {
	query := `
		SELECT id, name, role, voting_weight, provider, model, is_active, is_principal, created_at
		FROM agents
		WHERE is_active = true
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var agents []domain.Agent
	for rows.Next() {
		var agent domain.Agent
		err := rows.Scan(
			&agent.ID,
			&agent.Name,
			&agent.Role,
			&agent.VotingWeight,
			&agent.Provider,
			&agent.Model,
			&agent.IsActive,
			&agent.IsPrincipal,
			&agent.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		agents = append(agents, agent)
	}

	return agents, rows.Err()
}
