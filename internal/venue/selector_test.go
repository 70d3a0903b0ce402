package venue

import (
	"testing"

	"github.com/kirillm/debate-bot/internal/domain"
)

func TestSelectRouting(t *testing.T) {
	s := NewSelector(DefaultConfig())

	cases := []struct {
		name     string
		symbol   string
		size     float64
		venue    string
		chain    string
		leverage float64
	}{
		{"solana native token", "BONK", 10, domain.VenueJupiter, domain.ChainSolana, 0},
		{"solana native lowercase", "jup", 10, domain.VenueJupiter, domain.ChainSolana, 0},
		{"perp high tier", "ETH-USD", 25, domain.VenueHyperliquid, "", 10},
		{"perp low tier", "ETH-USD", 5, domain.VenueHyperliquid, "", 3},
		{"perp at threshold stays low", "BTC-USD", 20, domain.VenueHyperliquid, "", 3},
		{"default aggregator", "DEGEN", 10, domain.VenueOneInch, domain.ChainBase, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sel := s.Select(tc.symbol, domain.ActionBuy, tc.size)
			if sel.Venue != tc.venue {
				t.Errorf("expected venue %s, got %s", tc.venue, sel.Venue)
			}
			if sel.Chain != tc.chain {
				t.Errorf("expected chain %q, got %q", tc.chain, sel.Chain)
			}
			if sel.Leverage != tc.leverage {
				t.Errorf("expected leverage %.0f, got %.0f", tc.leverage, sel.Leverage)
			}
			if sel.Reason == "" {
				t.Error("expected non-empty reason")
			}
		})
	}
}

func TestSelectNativeBeatsPerpSuffix(t *testing.T) {
	// Нативное правило стоит раньше перп-правила
	cfg := DefaultConfig()
	cfg.NativeTokens = append(cfg.NativeTokens, "SOL-USD")
	s := NewSelector(cfg)

	sel := s.Select("SOL-USD", domain.ActionBuy, 50)
	if sel.Venue != domain.VenueJupiter {
		t.Errorf("expected native rule to win, got %s", sel.Venue)
	}
}

func TestSelectDeterministic(t *testing.T) {
	s := NewSelector(DefaultConfig())

	first := s.Select("WIF", domain.ActionSell, 12)
	for i := 0; i < 5; i++ {
		again := s.Select("WIF", domain.ActionSell, 12)
		if again != first {
			t.Fatalf("selection diverged: %+v vs %+v", again, first)
		}
	}
}
