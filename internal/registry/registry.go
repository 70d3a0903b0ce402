package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/kirillm/debate-bot/internal/domain"
)

// Store хранилище агентов
type Store interface {
	ListActive(ctx context.Context) ([]domain.Agent, error)
	GetByName(ctx context.Context, name string) (*domain.Agent, error)
	Create(ctx context.Context, agent *domain.Agent) error
	Update(ctx context.Context, agent *domain.Agent) error
}

// Registry реестр агентов-участников дебатов
type Registry struct {
	store Store
}

// NewRegistry создает реестр агентов
func NewRegistry(store Store) *Registry {
	return &Registry{store: store}
}

// ActiveAgents возвращает активных агентов панели.
// Пустая панель — ошибка: дебаты без участников не имеют смысла.
func (r *Registry) ActiveAgents(ctx context.Context) ([]domain.Agent, error) {
	agents, err := r.store.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active agents: %w", err)
	}
	if len(agents) == 0 {
		return nil, domain.ErrNoActiveAgents
	}
	return agents, nil
}

// Principal возвращает активного агента-принципала, чьим торговым балансом
// исполняются решения. Принципал помечается явно в конфигурации панели.
func (r *Registry) Principal(ctx context.Context) (*domain.Agent, error) {
	agents, err := r.ActiveAgents(ctx)
	if err != nil {
		return nil, err
	}
	for i := range agents {
		if agents[i].IsPrincipal {
			return &agents[i], nil
		}
	}
	return nil, domain.ErrNoPrincipal
}

// Sync приводит агентов в хранилище к составу панели из конфигурации.
// Существующие агенты (по имени) обновляются, новые создаются.
func (r *Registry) Sync(ctx context.Context, panel []domain.Agent) error {
	for i := range panel {
		a := panel[i]

		existing, err := r.store.GetByName(ctx, a.Name)
		switch {
		case err == nil:
			a.ID = existing.ID
			a.CreatedAt = existing.CreatedAt
			if err := r.store.Update(ctx, &a); err != nil {
				return fmt.Errorf("failed to update agent %s: %w", a.Name, err)
			}
		case errors.Is(err, domain.ErrNotFound) || errors.Is(err, sql.ErrNoRows):
			if err := r.store.Create(ctx, &a); err != nil {
				return fmt.Errorf("failed to create agent %s: %w", a.Name, err)
			}
			log.Printf("👤 Registered agent %s (%s, weight %.2f)", a.Name, a.Role, a.VotingWeight)
		default:
			return fmt.Errorf("failed to look up agent %s: %w", a.Name, err)
		}
	}
	return nil
}

// TotalWeight суммарный вес голосов панели
func TotalWeight(agents []domain.Agent) float64 {
	var total float64
	for _, a := range agents {
		total += a.VotingWeight
	}
	return total
}
