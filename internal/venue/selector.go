package venue

import (
	"fmt"
	"strings"

	"github.com/kirillm/debate-bot/internal/domain"
)

// Selection результат классификации: площадка плюс подсказки по сети и плечу
type Selection struct {
	Venue    string
	Chain    string
	Leverage float64
	Reason   string
}

// Config правила классификации; значения по умолчанию в DefaultConfig
type Config struct {
	NativeTokens  []string // токены с нативной ликвидностью Solana
	PerpSuffix    string   // суффикс перп-символов (стейбл-котировка)
	SizeThreshold float64  // % портфеля, выше которого высокий тир плеча
	HighLeverage  float64
	LowLeverage   float64
	DefaultChain  string
}

// DefaultConfig возвращает правила по умолчанию
func DefaultConfig() Config {
	return Config{
		NativeTokens:  []string{"SOL", "MSOL", "JITOSOL", "JUP", "JTO", "BONK", "WIF"},
		PerpSuffix:    "-USD",
		SizeThreshold: 20.0,
		HighLeverage:  10.0,
		LowLeverage:   3.0,
		DefaultChain:  domain.ChainBase,
	}
}

// Selector чистый классификатор символов по площадкам
type Selector struct {
	cfg    Config
	native map[string]bool
}

// NewSelector создает селектор с заданными правилами
func NewSelector(cfg Config) *Selector {
	native := make(map[string]bool, len(cfg.NativeTokens))
	for _, t := range cfg.NativeTokens {
		native[strings.ToUpper(t)] = true
	}
	return &Selector{cfg: cfg, native: native}
}

// Select классифицирует (symbol, action, suggestedSize) в площадку исполнения.
// Правила детерминированы, первое совпадение побеждает:
//  1. нативный токен Solana → Jupiter
//  2. перп-символ со стейбл-суффиксом → Hyperliquid с двухтировым плечом
//  3. иначе → дефолтный спот-агрегатор на Base
func (s *Selector) Select(symbol, action string, suggestedSize float64) Selection {
	upper := strings.ToUpper(strings.TrimSpace(symbol))

	if s.native[upper] {
		return Selection{
			Venue:  domain.VenueJupiter,
			Chain:  domain.ChainSolana,
			Reason: fmt.Sprintf("%s is a Solana-native token, routing to Jupiter aggregator", upper),
		}
	}

	if s.cfg.PerpSuffix != "" && strings.HasSuffix(upper, s.cfg.PerpSuffix) {
		leverage := s.cfg.LowLeverage
		tier := "low"
		if suggestedSize > s.cfg.SizeThreshold {
			leverage = s.cfg.HighLeverage
			tier = "high"
		}
		return Selection{
			Venue:    domain.VenueHyperliquid,
			Leverage: leverage,
			Reason: fmt.Sprintf("%s matches perpetual quote convention, %s leverage tier (size %.1f%% vs threshold %.1f%%)",
				upper, tier, suggestedSize, s.cfg.SizeThreshold),
		}
	}

	return Selection{
		Venue:  domain.VenueOneInch,
		Chain:  s.cfg.DefaultChain,
		Reason: fmt.Sprintf("%s has no dedicated route, defaulting to spot aggregator on %s", upper, s.cfg.DefaultChain),
	}
}
