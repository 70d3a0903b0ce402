package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kirillm/debate-bot/internal/domain"
)

func writePanel(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "agents.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadPanel(t *testing.T) {
	path := writePanel(t, `
agents:
  - name: Cassandra
    role: RISK_ASSESSOR
    weight: 1.5
    provider: openai
    model: gpt-4o
    principal: true
  - name: Maverick
    role: MOMENTUM_TRADER
  - name: Ghost
    role: SENTIMENT_ANALYZER
    active: false
`)

	agents, err := LoadPanel(path)
	if err != nil {
		t.Fatalf("LoadPanel failed: %v", err)
	}
	if len(agents) != 3 {
		t.Fatalf("expected 3 agents, got %d", len(agents))
	}

	if agents[0].Name != "Cassandra" || agents[0].Role != domain.RoleRiskAssessor || agents[0].VotingWeight != 1.5 {
		t.Errorf("unexpected first agent: %+v", agents[0])
	}
	if !agents[0].IsPrincipal {
		t.Errorf("principal flag not applied: %+v", agents[0])
	}
	// Вес по умолчанию 1.0, активность по умолчанию true, принципал только явный
	if agents[1].VotingWeight != 1.0 || !agents[1].IsActive || agents[1].IsPrincipal {
		t.Errorf("defaults not applied: %+v", agents[1])
	}
	if agents[2].IsActive {
		t.Errorf("explicit active: false ignored: %+v", agents[2])
	}
}

func TestLoadPanelRejectsInvalid(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"unknown role", "agents:\n  - name: X\n    role: ASTROLOGER\n"},
		{"missing name", "agents:\n  - role: RISK_ASSESSOR\n"},
		{"negative weight", "agents:\n  - name: X\n    role: RISK_ASSESSOR\n    weight: -1\n"},
		{"empty panel", "agents: []\n"},
		{"not yaml", "{{{{\n"},
		{"no principal", "agents:\n  - name: X\n    role: RISK_ASSESSOR\n"},
		{"two principals", "agents:\n  - name: X\n    role: RISK_ASSESSOR\n    principal: true\n  - name: Y\n    role: MOMENTUM_TRADER\n    principal: true\n"},
		{"inactive principal", "agents:\n  - name: X\n    role: RISK_ASSESSOR\n    principal: true\n    active: false\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writePanel(t, tc.content)
			if _, err := LoadPanel(path); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestLoadPanelMissingFile(t *testing.T) {
	if _, err := LoadPanel(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
