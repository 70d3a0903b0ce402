package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/kirillm/debate-bot/internal/domain"
)

type fakeStore struct {
	agents []domain.Agent
}

func (f *fakeStore) ListActive(ctx context.Context) ([]domain.Agent, error) {
	var out []domain.Agent
	for _, a := range f.agents {
		if a.IsActive {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeStore) GetByName(ctx context.Context, name string) (*domain.Agent, error) {
	for _, a := range f.agents {
		if a.Name == name {
			return &a, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeStore) Create(ctx context.Context, a *domain.Agent) error {
	a.ID = int64(len(f.agents) + 1)
	f.agents = append(f.agents, *a)
	return nil
}

func (f *fakeStore) Update(ctx context.Context, a *domain.Agent) error {
	for i := range f.agents {
		if f.agents[i].ID == a.ID {
			f.agents[i] = *a
			return nil
		}
	}
	return domain.ErrNotFound
}

func TestPrincipalReturnsFlaggedAgent(t *testing.T) {
	// Принципал не обязан идти первым в панели
	store := &fakeStore{agents: []domain.Agent{
		{ID: 1, Name: "a", IsActive: true},
		{ID: 2, Name: "b", IsActive: true, IsPrincipal: true},
		{ID: 3, Name: "c", IsActive: true},
	}}

	p, err := NewRegistry(store).Principal(context.Background())
	if err != nil {
		t.Fatalf("Principal failed: %v", err)
	}
	if p.ID != 2 {
		t.Errorf("expected flagged agent 2, got %d", p.ID)
	}
}

func TestPrincipalRequiresFlag(t *testing.T) {
	store := &fakeStore{agents: []domain.Agent{
		{ID: 1, Name: "a", IsActive: true},
	}}

	if _, err := NewRegistry(store).Principal(context.Background()); !errors.Is(err, domain.ErrNoPrincipal) {
		t.Errorf("expected ErrNoPrincipal, got %v", err)
	}
}

func TestPrincipalIgnoresInactive(t *testing.T) {
	// Деактивированный принципал не подбирается
	store := &fakeStore{agents: []domain.Agent{
		{ID: 1, Name: "a", IsActive: true},
		{ID: 2, Name: "b", IsActive: false, IsPrincipal: true},
	}}

	if _, err := NewRegistry(store).Principal(context.Background()); !errors.Is(err, domain.ErrNoPrincipal) {
		t.Errorf("expected ErrNoPrincipal, got %v", err)
	}
}

func TestSyncRegistersAndUpdates(t *testing.T) {
	store := &fakeStore{}
	reg := NewRegistry(store)

	panel := []domain.Agent{
		{Name: "a", Role: domain.RoleRiskAssessor, VotingWeight: 1.5, IsActive: true, IsPrincipal: true},
		{Name: "b", Role: domain.RoleMomentumTrader, VotingWeight: 1, IsActive: true},
	}
	if err := reg.Sync(context.Background(), panel); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if len(store.agents) != 2 {
		t.Fatalf("expected 2 registered agents, got %d", len(store.agents))
	}

	// Повторная синхронизация обновляет вес и флаг принципала
	panel[0].VotingWeight = 2
	panel[0].IsPrincipal = false
	panel[1].IsPrincipal = true
	if err := reg.Sync(context.Background(), panel); err != nil {
		t.Fatalf("second Sync failed: %v", err)
	}
	if len(store.agents) != 2 {
		t.Fatalf("sync must not duplicate agents, got %d", len(store.agents))
	}
	if store.agents[0].VotingWeight != 2 || store.agents[0].IsPrincipal {
		t.Errorf("agent a not updated: %+v", store.agents[0])
	}
	if !store.agents[1].IsPrincipal {
		t.Errorf("principal flag not moved: %+v", store.agents[1])
	}

	p, err := reg.Principal(context.Background())
	if err != nil {
		t.Fatalf("Principal failed: %v", err)
	}
	if p.Name != "b" {
		t.Errorf("expected principal b after resync, got %s", p.Name)
	}
}
