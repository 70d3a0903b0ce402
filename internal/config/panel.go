package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kirillm/debate-bot/internal/domain"
)

// PanelAgent описание агента в YAML-файле панели
type PanelAgent struct {
	Name      string  `yaml:"name"`
	Role      string  `yaml:"role"`
	Weight    float64 `yaml:"weight"`
	Provider  string  `yaml:"provider"`
	Model     string  `yaml:"model"`
	Active    *bool   `yaml:"active"`    // nil трактуется как true
	Principal bool    `yaml:"principal"` // чей торговый баланс задействуется
}

type panelFile struct {
	Agents []PanelAgent `yaml:"agents"`
}

var validRoles = map[string]bool{
	domain.RoleRiskAssessor:         true,
	domain.RoleMomentumTrader:       true,
	domain.RoleMeanReversion:        true,
	domain.RoleSentimentAnalyzer:    true,
	domain.RoleTechnicalAnalyst:     true,
	domain.RoleFundamentalAnalyst:   true,
	domain.RoleVolatilitySpecialist: true,
}

// LoadPanel загружает панель агентов из YAML-файла
func LoadPanel(path string) ([]domain.Agent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read agents file: %w", err)
	}

	var file panelFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse agents file: %w", err)
	}

	if len(file.Agents) == 0 {
		return nil, fmt.Errorf("agents file %s defines no agents", path)
	}

	agents := make([]domain.Agent, 0, len(file.Agents))
	principals := 0
	for i, pa := range file.Agents {
		if pa.Name == "" {
			return nil, fmt.Errorf("agent #%d: name is required", i+1)
		}
		if !validRoles[pa.Role] {
			return nil, fmt.Errorf("agent %s: unknown role %q", pa.Name, pa.Role)
		}
		weight := pa.Weight
		if weight == 0 {
			weight = 1.0
		}
		if weight < 0 {
			return nil, fmt.Errorf("agent %s: voting weight must be positive", pa.Name)
		}
		active := true
		if pa.Active != nil {
			active = *pa.Active
		}
		if pa.Principal {
			if !active {
				return nil, fmt.Errorf("agent %s: principal must be active", pa.Name)
			}
			principals++
		}
		agents = append(agents, domain.Agent{
			Name:         pa.Name,
			Role:         pa.Role,
			VotingWeight: weight,
			Provider:     pa.Provider,
			Model:        pa.Model,
			IsActive:     active,
			IsPrincipal:  pa.Principal,
		})
	}
	if principals != 1 {
		return nil, fmt.Errorf("agents file %s defines %d principals, want exactly one", path, principals)
	}

	return agents, nil
}
