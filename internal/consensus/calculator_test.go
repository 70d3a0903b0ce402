package consensus

import (
	"errors"
	"math"
	"testing"

	"github.com/kirillm/debate-bot/internal/domain"
)

func vote(agentID int64, decision string, confidence, weight float64) domain.Vote {
	return domain.Vote{AgentID: agentID, Decision: decision, Confidence: confidence, Weight: weight}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestCalculateWeightedMajority(t *testing.T) {
	// Пять равных голосов, раздробленное мнение: победитель BUY, но без консенсуса
	votes := []domain.Vote{
		vote(1, domain.ActionBuy, 90, 1),
		vote(2, domain.ActionBuy, 80, 1),
		vote(3, domain.ActionHold, 50, 1),
		vote(4, domain.ActionSell, 60, 1),
		vote(5, domain.ActionPass, 0, 1),
	}

	decision, err := Calculate(votes, nil)
	if err != nil {
		t.Fatalf("Calculate returned error: %v", err)
	}

	if decision.Action != domain.ActionBuy {
		t.Errorf("expected BUY, got %s", decision.Action)
	}
	if !almostEqual(decision.BuyScore, 1.70) {
		t.Errorf("expected BUY score 1.70, got %f", decision.BuyScore)
	}
	if !almostEqual(decision.HoldScore, 0.50) {
		t.Errorf("expected HOLD score 0.50, got %f", decision.HoldScore)
	}
	if !almostEqual(decision.SellScore, 0.60) {
		t.Errorf("expected SELL score 0.60, got %f", decision.SellScore)
	}
	if !almostEqual(decision.Confidence, 34.0) {
		t.Errorf("expected confidence 34%%, got %f", decision.Confidence)
	}
	if decision.Confidence >= domain.ConsensusThreshold {
		t.Errorf("confidence %f should be below consensus threshold", decision.Confidence)
	}
	if decision.TotalVotes != 5 || decision.BuyVotes != 2 || decision.SellVotes != 1 ||
		decision.HoldVotes != 1 || decision.PassVotes != 1 {
		t.Errorf("unexpected vote counts: %+v", decision)
	}
}

func TestCalculateConsensusReached(t *testing.T) {
	// Взвешенное большинство: BUY 3.0 из totalWeight 4 → 75%
	votes := []domain.Vote{
		vote(1, domain.ActionBuy, 100, 2),
		vote(2, domain.ActionBuy, 100, 1),
		vote(3, domain.ActionSell, 100, 1),
	}

	decision, err := Calculate(votes, nil)
	if err != nil {
		t.Fatalf("Calculate returned error: %v", err)
	}

	if decision.Action != domain.ActionBuy {
		t.Errorf("expected BUY, got %s", decision.Action)
	}
	if !almostEqual(decision.BuyScore, 3.0) {
		t.Errorf("expected BUY score 3.0, got %f", decision.BuyScore)
	}
	if !almostEqual(decision.Confidence, 75.0) {
		t.Errorf("expected confidence 75%%, got %f", decision.Confidence)
	}
	if decision.Confidence < domain.ConsensusThreshold {
		t.Errorf("confidence %f should reach consensus threshold", decision.Confidence)
	}
}

func TestCalculateTieBreakCanonicalOrder(t *testing.T) {
	// При равных score побеждает первое действие канонического порядка
	cases := []struct {
		name   string
		votes  []domain.Vote
		winner string
	}{
		{
			name: "buy beats sell on tie",
			votes: []domain.Vote{
				vote(1, domain.ActionSell, 80, 1),
				vote(2, domain.ActionBuy, 80, 1),
			},
			winner: domain.ActionBuy,
		},
		{
			name: "sell beats hold on tie",
			votes: []domain.Vote{
				vote(1, domain.ActionHold, 70, 1),
				vote(2, domain.ActionSell, 70, 1),
			},
			winner: domain.ActionSell,
		},
		{
			name: "all zero confidence defaults to buy",
			votes: []domain.Vote{
				vote(1, domain.ActionPass, 0, 1),
				vote(2, domain.ActionHold, 0, 1),
			},
			winner: domain.ActionBuy,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			decision, err := Calculate(tc.votes, nil)
			if err != nil {
				t.Fatalf("Calculate returned error: %v", err)
			}
			if decision.Action != tc.winner {
				t.Errorf("expected %s, got %s", tc.winner, decision.Action)
			}
		})
	}
}

func TestCalculateDeterministic(t *testing.T) {
	votes := []domain.Vote{
		vote(1, domain.ActionBuy, 73, 1.5),
		vote(2, domain.ActionSell, 41, 0.8),
		vote(3, domain.ActionHold, 55, 1.2),
	}

	first, err := Calculate(votes, nil)
	if err != nil {
		t.Fatalf("Calculate returned error: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := Calculate(votes, nil)
		if err != nil {
			t.Fatalf("Calculate returned error: %v", err)
		}
		if again.Action != first.Action || !almostEqual(again.Confidence, first.Confidence) {
			t.Fatalf("run %d diverged: %s %.6f vs %s %.6f",
				i, again.Action, again.Confidence, first.Action, first.Confidence)
		}
	}
}

func TestCalculateErrors(t *testing.T) {
	if _, err := Calculate(nil, nil); !errors.Is(err, domain.ErrNoActiveAgents) {
		t.Errorf("expected ErrNoActiveAgents, got %v", err)
	}

	votes := []domain.Vote{vote(1, domain.ActionBuy, 90, 0)}
	if _, err := Calculate(votes, nil); !errors.Is(err, domain.ErrZeroTotalWeight) {
		t.Errorf("expected ErrZeroTotalWeight, got %v", err)
	}
}

func TestAverageTradeParamsWinnersOnly(t *testing.T) {
	f := func(v float64) *float64 { return &v }

	votes := []domain.Vote{
		vote(1, domain.ActionBuy, 90, 1),
		vote(2, domain.ActionBuy, 80, 1),
		vote(3, domain.ActionSell, 100, 1),
	}
	messages := []domain.DebateMessage{
		{AgentID: 1, SuggestedPrice: f(100), SuggestedSize: f(10), StopLoss: f(90)},
		{AgentID: 2, SuggestedPrice: f(110)}, // размер не указан, игнорируется
		{AgentID: 3, SuggestedPrice: f(50), SuggestedSize: f(99)}, // проигравший, не учитывается
	}

	decision, err := Calculate(votes, messages)
	if err != nil {
		t.Fatalf("Calculate returned error: %v", err)
	}

	if decision.SuggestedPrice == nil || !almostEqual(*decision.SuggestedPrice, 105) {
		t.Errorf("expected suggested price 105, got %v", decision.SuggestedPrice)
	}
	if decision.SuggestedSize == nil || !almostEqual(*decision.SuggestedSize, 10) {
		t.Errorf("expected suggested size 10, got %v", decision.SuggestedSize)
	}
	if decision.StopLoss == nil || !almostEqual(*decision.StopLoss, 90) {
		t.Errorf("expected stop loss 90, got %v", decision.StopLoss)
	}
	if decision.TakeProfit != nil {
		t.Errorf("expected nil take profit, got %v", *decision.TakeProfit)
	}
}
