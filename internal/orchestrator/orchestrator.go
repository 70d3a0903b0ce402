package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/kirillm/debate-bot/internal/consensus"
	"github.com/kirillm/debate-bot/internal/domain"
	"github.com/kirillm/debate-bot/internal/execution"
	"github.com/kirillm/debate-bot/internal/registry"
	"github.com/kirillm/debate-bot/internal/venue"
)

// Collector собирает анализы панели агентов
type Collector interface {
	Collect(ctx context.Context, debate *domain.Debate, agents []domain.Agent) []domain.DebateMessage
}

// Executor исполняет решение на выбранной площадке
type Executor interface {
	Execute(ctx context.Context, debate *domain.Debate, decision *domain.Decision, sel venue.Selection, principal *domain.Agent) *execution.Result
}

// Store хранилище состояния дебатов
type Store interface {
	CreateDebate(ctx context.Context, debate *domain.Debate) error
	UpdateDebate(ctx context.Context, debate *domain.Debate) error
	GetDebate(ctx context.Context, id int64) (*domain.Debate, error)
	CreateVote(ctx context.Context, vote *domain.Vote) error
	CreateDecision(ctx context.Context, decision *domain.Decision) error
	ListUnexecutedDecisions(ctx context.Context) ([]domain.Decision, error)
	MarkDecisionExecuted(ctx context.Context, decisionID int64, trade *domain.Trade) error
}

// Notifier уведомляет оператора о ходе дебатов. Может быть nil.
type Notifier interface {
	Send(text string)
}

// Orchestrator прогоняет рыночную возможность через полный цикл дебатов:
// сбор анализов, голосование, консенсус, выбор площадки, исполнение.
type Orchestrator struct {
	registry  *registry.Registry
	collector Collector
	selector  *venue.Selector
	executor  Executor
	store     Store
	notifier  Notifier
	threshold float64 // минимальная уверенность консенсуса, %
}

// New создает новый orchestrator
func New(reg *registry.Registry, col Collector, sel *venue.Selector, exec Executor, store Store, notifier Notifier, threshold float64) *Orchestrator {
	if threshold <= 0 {
		threshold = domain.ConsensusThreshold
	}
	return &Orchestrator{
		registry:  reg,
		collector: col,
		selector:  sel,
		executor:  exec,
		store:     store,
		notifier:  notifier,
		threshold: threshold,
	}
}

// InitiateDebate создает дебаты по возможности и запускает их асинхронно.
// Возвращает идентификатор дебатов сразу, не дожидаясь завершения.
func (o *Orchestrator) InitiateDebate(ctx context.Context, opp *domain.MarketOpportunity) (int64, error) {
	if opp == nil || opp.Symbol == "" || opp.CurrentPrice <= 0 {
		return 0, fmt.Errorf("%w: opportunity requires symbol and positive price", domain.ErrInvalidInput)
	}

	marketData := "{}"
	if opp.MarketData != nil {
		raw, err := json.Marshal(opp.MarketData)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal market data: %w", err)
		}
		marketData = string(raw)
	}

	debate := &domain.Debate{
		Symbol:         opp.Symbol,
		TriggerReason:  opp.TriggerReason,
		CurrentPrice:   opp.CurrentPrice,
		PriceChange24h: opp.PriceChange24h,
		Volume24h:      opp.Volume24h,
		MarketData:     marketData,
		Status:         domain.DebateInProgress,
		StartedAt:      time.Now(),
	}

	if err := o.store.CreateDebate(ctx, debate); err != nil {
		return 0, fmt.Errorf("failed to create debate: %w", err)
	}

	log.Printf("🎙 Debate #%d started: %s at %.6f (%s)",
		debate.ID, debate.Symbol, debate.CurrentPrice, debate.TriggerReason)

	go o.runDebate(context.Background(), debate)

	return debate.ID, nil
}

// runDebate прогоняет дебаты через все фазы.
// Любой сбой до исполнения отменяет дебаты; сбой исполнения — нет.
func (o *Orchestrator) runDebate(ctx context.Context, debate *domain.Debate) {
	agents, err := o.registry.ActiveAgents(ctx)
	if err != nil {
		o.cancelDebate(ctx, debate, fmt.Errorf("failed to assemble panel: %w", err))
		return
	}

	messages := o.collector.Collect(ctx, debate, agents)
	if len(messages) == 0 {
		o.cancelDebate(ctx, debate, fmt.Errorf("no analyses collected"))
		return
	}

	debate.Status = domain.DebateVoting
	if err := o.store.UpdateDebate(ctx, debate); err != nil {
		o.cancelDebate(ctx, debate, fmt.Errorf("failed to enter voting phase: %w", err))
		return
	}

	votes, err := o.castVotes(ctx, debate, agents, messages)
	if err != nil {
		o.cancelDebate(ctx, debate, err)
		return
	}

	decision, err := consensus.Calculate(votes, messages)
	if err != nil {
		o.cancelDebate(ctx, debate, fmt.Errorf("failed to calculate consensus: %w", err))
		return
	}

	decision.DebateID = debate.ID
	if err := o.store.CreateDecision(ctx, decision); err != nil {
		o.cancelDebate(ctx, debate, fmt.Errorf("failed to save decision: %w", err))
		return
	}

	debate.ConsensusReached = decision.Confidence >= o.threshold
	debate.FinalDecision = decision.Action
	debate.Confidence = decision.Confidence

	// Итоги фиксируются до исполнения: recovery-обход опирается на них
	if err := o.store.UpdateDebate(ctx, debate); err != nil {
		o.cancelDebate(ctx, debate, fmt.Errorf("failed to save debate outcome: %w", err))
		return
	}

	log.Printf("🗳 Debate #%d decided: %s %.1f%% (consensus: %v, votes %d/%d/%d/%d)",
		debate.ID, decision.Action, decision.Confidence, debate.ConsensusReached,
		decision.BuyVotes, decision.SellVotes, decision.HoldVotes, decision.PassVotes)

	o.completeDebate(ctx, debate)

	// Фаза исполнения идет после закрытия дебатов и изолирована: ее сбой
	// не меняет статус, неисполненное решение подберет recovery-обход
	if o.shouldExecute(debate, decision) {
		principal, err := o.registry.Principal(ctx)
		if err != nil {
			log.Printf("⚠️ Debate #%d: cannot execute without principal: %v", debate.ID, err)
		} else {
			o.executeDecision(ctx, debate, decision, principal)
		}
	}

	o.notify(fmt.Sprintf("🏁 Debate #%d %s: %s %.1f%% confidence (consensus: %v)",
		debate.ID, debate.Symbol, debate.FinalDecision, debate.Confidence, debate.ConsensusReached))
}

// castVotes превращает анализы в взвешенные голоса, по одному на агента
func (o *Orchestrator) castVotes(ctx context.Context, debate *domain.Debate, agents []domain.Agent, messages []domain.DebateMessage) ([]domain.Vote, error) {
	weights := make(map[int64]float64, len(agents))
	for _, a := range agents {
		weights[a.ID] = a.VotingWeight
	}

	votes := make([]domain.Vote, 0, len(messages))
	for _, m := range messages {
		vote := domain.Vote{
			DebateID:   debate.ID,
			AgentID:    m.AgentID,
			Decision:   m.Recommendation,
			Confidence: m.Confidence,
			Weight:     weights[m.AgentID],
			Reasoning:  m.Message,
		}
		if err := o.store.CreateVote(ctx, &vote); err != nil {
			return nil, fmt.Errorf("failed to save vote of agent %d: %w", m.AgentID, err)
		}
		votes = append(votes, vote)
	}

	return votes, nil
}

// shouldExecute проверяет, что решение исполняемое
func (o *Orchestrator) shouldExecute(debate *domain.Debate, decision *domain.Decision) bool {
	if !debate.ConsensusReached {
		return false
	}
	return decision.Action == domain.ActionBuy || decision.Action == domain.ActionSell
}

// executeDecision исполняет решение для принципала и фиксирует результат.
// Решение помечается executed независимо от исхода: повторных попыток нет.
func (o *Orchestrator) executeDecision(ctx context.Context, debate *domain.Debate, decision *domain.Decision, principal *domain.Agent) {
	var size float64
	if decision.SuggestedSize != nil {
		size = *decision.SuggestedSize
	}
	sel := o.selector.Select(debate.Symbol, decision.Action, size)

	log.Printf("🎯 Debate #%d routing to %s: %s", debate.ID, sel.Venue, sel.Reason)

	result := o.executor.Execute(ctx, debate, decision, sel, principal)

	trade := &domain.Trade{
		AgentID:    principal.ID,
		DebateID:   debate.ID,
		Symbol:     debate.Symbol,
		Venue:      sel.Venue,
		Side:       decision.Action,
		Quantity:   result.ExecutedQuantity,
		EntryPrice: result.ExecutedPrice,
		Leverage:   result.Leverage,
		UsdAmount:  result.UsdAmount,
		Status:     domain.TradeOpen,
		TxRef:      result.TxRef,
		Confidence: decision.Confidence,
	}

	if result.Success {
		log.Printf("✅ Debate #%d executed on %s: %s %.6f @ %.6f (tx %s)",
			debate.ID, sel.Venue, trade.Side, trade.Quantity, trade.EntryPrice, trade.TxRef)
		o.notify(fmt.Sprintf("✅ Trade: %s %s %.6f @ %.6f on %s",
			trade.Side, trade.Symbol, trade.Quantity, trade.EntryPrice, sel.Venue))
	} else {
		trade.Status = domain.TradeCancelled
		trade.ErrorMessage = result.Error
		log.Printf("❌ Debate #%d execution failed on %s: %s", debate.ID, sel.Venue, result.Error)
		o.notify(fmt.Sprintf("❌ Trade failed: %s %s on %s: %s",
			trade.Side, trade.Symbol, sel.Venue, result.Error))
	}

	if err := o.store.MarkDecisionExecuted(ctx, decision.ID, trade); err != nil {
		log.Printf("⚠️ Failed to finalize decision %d: %v", decision.ID, err)
	}
}

// completeDebate закрывает дебаты и фиксирует длительность
func (o *Orchestrator) completeDebate(ctx context.Context, debate *domain.Debate) {
	now := time.Now()
	debate.Status = domain.DebateCompleted
	debate.CompletedAt = &now
	debate.DurationMs = now.Sub(debate.StartedAt).Milliseconds()

	if err := o.store.UpdateDebate(ctx, debate); err != nil {
		log.Printf("⚠️ Failed to complete debate %d: %v", debate.ID, err)
		return
	}

	log.Printf("🏁 Debate #%d completed in %dms", debate.ID, debate.DurationMs)
}

// cancelDebate отменяет дебаты при сбое до фазы исполнения
func (o *Orchestrator) cancelDebate(ctx context.Context, debate *domain.Debate, cause error) {
	now := time.Now()
	debate.Status = domain.DebateCancelled
	debate.CompletedAt = &now
	debate.DurationMs = now.Sub(debate.StartedAt).Milliseconds()

	log.Printf("🛑 Debate #%d cancelled: %v", debate.ID, cause)

	if err := o.store.UpdateDebate(ctx, debate); err != nil {
		log.Printf("⚠️ Failed to cancel debate %d: %v", debate.ID, err)
	}

	o.notify(fmt.Sprintf("🛑 Debate #%d %s cancelled: %v", debate.ID, debate.Symbol, cause))
}

// ResumeUnexecuted доисполняет решения, до которых не дошло исполнение
// перед рестартом. Неконсенсусные и неторговые решения пропускаются.
func (o *Orchestrator) ResumeUnexecuted(ctx context.Context) error {
	decisions, err := o.store.ListUnexecutedDecisions(ctx)
	if err != nil {
		return fmt.Errorf("failed to list unexecuted decisions: %w", err)
	}
	if len(decisions) == 0 {
		return nil
	}

	principal, err := o.registry.Principal(ctx)
	if err != nil {
		return fmt.Errorf("failed to resolve principal: %w", err)
	}

	for i := range decisions {
		decision := &decisions[i]

		debate, err := o.store.GetDebate(ctx, decision.DebateID)
		if err != nil {
			log.Printf("⚠️ Skipping decision %d: failed to load debate %d: %v",
				decision.ID, decision.DebateID, err)
			continue
		}
		if !o.shouldExecute(debate, decision) {
			continue
		}

		log.Printf("🔁 Resuming unexecuted decision %d for debate #%d", decision.ID, debate.ID)
		o.executeDecision(ctx, debate, decision, principal)
	}

	return nil
}

func (o *Orchestrator) notify(text string) {
	if o.notifier == nil {
		return
	}
	o.notifier.Send(text)
}
