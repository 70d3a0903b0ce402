package consensus

import (
	"github.com/kirillm/debate-bot/internal/domain"
)

// Calculate агрегирует голоса дебатов в единое решение.
// Чистая детерминированная функция: никакого I/O и случайности.
// score[a] = Σ (confidence/100 × weight) по голосам за действие a,
// победитель — argmax по каноническому порядку BUY, SELL, HOLD, PASS,
// итоговая уверенность = score[winner]/totalWeight × 100.
func Calculate(votes []domain.Vote, messages []domain.DebateMessage) (*domain.Decision, error) {
	if len(votes) == 0 {
		return nil, domain.ErrNoActiveAgents
	}

	scores := make(map[string]float64, 4)
	counts := make(map[string]int, 4)
	var totalWeight float64

	for _, v := range votes {
		totalWeight += v.Weight
		scores[v.Decision] += v.Confidence / 100.0 * v.Weight
		counts[v.Decision]++
	}

	if totalWeight <= 0 {
		return nil, domain.ErrZeroTotalWeight
	}

	// Первый максимум побеждает: порядок перечисления фиксирует tie-break
	winner := domain.ActionBuy
	best := scores[domain.ActionBuy]
	for _, action := range domain.Actions() {
		if scores[action] > best {
			winner = action
			best = scores[action]
		}
	}

	decision := &domain.Decision{
		Action:     winner,
		Confidence: best / totalWeight * 100.0,
		TotalVotes: len(votes),
		BuyVotes:   counts[domain.ActionBuy],
		SellVotes:  counts[domain.ActionSell],
		HoldVotes:  counts[domain.ActionHold],
		PassVotes:  counts[domain.ActionPass],
		BuyScore:   scores[domain.ActionBuy],
		SellScore:  scores[domain.ActionSell],
		HoldScore:  scores[domain.ActionHold],
		PassScore:  scores[domain.ActionPass],
	}

	averageTradeParams(decision, winner, votes, messages)

	return decision, nil
}

// averageTradeParams усредняет параметры сделки только по сообщениям агентов,
// проголосовавших за победившее действие. Отсутствующие поля игнорируются;
// если поле не заполнил никто, оно остается nil.
func averageTradeParams(decision *domain.Decision, winner string, votes []domain.Vote, messages []domain.DebateMessage) {
	winners := make(map[int64]bool, len(votes))
	for _, v := range votes {
		if v.Decision == winner {
			winners[v.AgentID] = true
		}
	}

	var (
		priceSum, sizeSum, stopSum, takeSum float64
		priceNum, sizeNum, stopNum, takeNum int
	)

	for _, m := range messages {
		if !winners[m.AgentID] {
			continue
		}
		if m.SuggestedPrice != nil {
			priceSum += *m.SuggestedPrice
			priceNum++
		}
		if m.SuggestedSize != nil {
			sizeSum += *m.SuggestedSize
			sizeNum++
		}
		if m.StopLoss != nil {
			stopSum += *m.StopLoss
			stopNum++
		}
		if m.TakeProfit != nil {
			takeSum += *m.TakeProfit
			takeNum++
		}
	}

	if priceNum > 0 {
		v := priceSum / float64(priceNum)
		decision.SuggestedPrice = &v
	}
	if sizeNum > 0 {
		v := sizeSum / float64(sizeNum)
		decision.SuggestedSize = &v
	}
	if stopNum > 0 {
		v := stopSum / float64(stopNum)
		decision.StopLoss = &v
	}
	if takeNum > 0 {
		v := takeSum / float64(takeNum)
		decision.TakeProfit = &v
	}
}
