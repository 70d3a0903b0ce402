package execution

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kirillm/debate-bot/internal/domain"
	"github.com/kirillm/debate-bot/internal/venue"
)

// PerpVenue размещает маржинальные рыночные ордера
type PerpVenue interface {
	PlaceMarketOrder(ctx context.Context, symbol, side string, quantity, leverage float64) (string, float64, float64, error)
}

// NativeSwapVenue обменивает токены против SOL-ноги
type NativeSwapVenue interface {
	Swap(ctx context.Context, symbol, side string, amountSol float64, slippageBps int) (string, error)
}

// SpotVenue обменивает токены против USDC-ноги
type SpotVenue interface {
	Swap(ctx context.Context, symbol, side string, srcAmount float64, slippageBps int) (string, int64, error)
}

// PriceProvider отдает актуальную цену символа
type PriceProvider interface {
	GetPrice(ctx context.Context, symbol string) (float64, error)
}

// BalanceProvider отдает торговый баланс принципала
type BalanceProvider interface {
	GetTradingBalance(ctx context.Context, agentID int64) (*domain.Balance, error)
}

// Config параметры исполнения
type Config struct {
	SlippageBps        int     // максимальное отклонение цены от ожидаемой
	DefaultSizePercent float64 // размер позиции, если консенсус его не дал
	PerpQtyDecimals    int32   // точность количества на перп-площадке
	SolQtyDecimals     int32   // точность SOL-ноги свопа
	NativeSymbol       string  // перп-тикер для оценки SOL, например SOL-USD
	VenueTimeout       time.Duration
}

// DefaultConfig возвращает параметры исполнения по умолчанию
func DefaultConfig() Config {
	return Config{
		SlippageBps:        100,
		DefaultSizePercent: 5.0,
		PerpQtyDecimals:    3,
		SolQtyDecimals:     4,
		NativeSymbol:       "SOL-USD",
		VenueTimeout:       30 * time.Second,
	}
}

// Result единый результат исполнения для всех площадок.
// Execute никогда не возвращает ошибку Go: сбой — это Result с Error.
type Result struct {
	Success          bool
	Venue            string
	Side             string
	TxRef            string
	BlockNumber      int64 // блок подтверждения для on-chain свопов, 0 для остальных
	ExecutedPrice    float64
	ExecutedQuantity float64
	UsdAmount        float64
	Leverage         float64
	Error            string
}

// Executor исполняет решение консенсуса на выбранной площадке
type Executor struct {
	perp     PerpVenue
	native   NativeSwapVenue
	spot     SpotVenue
	prices   PriceProvider
	balances BalanceProvider
	guard    *SlippageGuard
	cfg      Config
}

// NewExecutor создает исполнителя сделок
func NewExecutor(perp PerpVenue, native NativeSwapVenue, spot SpotVenue, prices PriceProvider, balances BalanceProvider, cfg Config) *Executor {
	return &Executor{
		perp:     perp,
		native:   native,
		spot:     spot,
		prices:   prices,
		balances: balances,
		guard:    NewSlippageGuard(cfg.SlippageBps),
		cfg:      cfg,
	}
}

// Execute исполняет решение дебатов для принципала на площадке sel.
// Любой сбой оседает в Result.Error, паник и ошибок Go наружу нет.
func (e *Executor) Execute(ctx context.Context, debate *domain.Debate, decision *domain.Decision, sel venue.Selection, principal *domain.Agent) *Result {
	res := &Result{Venue: sel.Venue, Side: decision.Action, Leverage: sel.Leverage}

	if decision.Action != domain.ActionBuy && decision.Action != domain.ActionSell {
		return res.fail("action %s is not executable", decision.Action)
	}

	ctx, cancel := context.WithTimeout(ctx, e.cfg.VenueTimeout)
	defer cancel()

	balance, err := e.balances.GetTradingBalance(ctx, principal.ID)
	if err != nil {
		return res.fail("failed to get trading balance: %v", err)
	}
	if balance.TotalUSD <= 0 {
		return res.fail("%v: total balance is zero", domain.ErrInsufficientBalance)
	}

	sizePct := e.cfg.DefaultSizePercent
	if decision.SuggestedSize != nil && *decision.SuggestedSize > 0 {
		sizePct = *decision.SuggestedSize
	}
	if sizePct > 100 {
		sizePct = 100
	}

	usdAmount := balance.TotalUSD * sizePct / 100.0
	if usdAmount <= 0 {
		return res.fail("position size resolves to zero (%.2f%% of $%.2f)", sizePct, balance.TotalUSD)
	}
	res.UsdAmount = usdAmount

	refPrice := e.referencePrice(ctx, debate)
	if refPrice <= 0 {
		return res.fail("no usable price for %s", debate.Symbol)
	}

	var expected float64
	if decision.SuggestedPrice != nil {
		expected = *decision.SuggestedPrice
	}
	if err := e.guard.Check(refPrice, expected); err != nil {
		return res.fail("%v", err)
	}

	switch sel.Venue {
	case domain.VenueHyperliquid:
		return e.executePerp(ctx, res, debate.Symbol, decision.Action, usdAmount, refPrice, sel.Leverage)
	case domain.VenueJupiter:
		return e.executeNativeSwap(ctx, res, debate.Symbol, decision.Action, usdAmount, refPrice, balance)
	case domain.VenueOneInch:
		return e.executeSpotSwap(ctx, res, debate.Symbol, decision.Action, usdAmount, refPrice, balance)
	default:
		return res.fail("unknown venue: %s", sel.Venue)
	}
}

// referencePrice берет свежую цену, при недоступности — снапшот дебатов
func (e *Executor) referencePrice(ctx context.Context, debate *domain.Debate) float64 {
	price, err := e.prices.GetPrice(ctx, debate.Symbol)
	if err != nil || price <= 0 {
		log.Printf("⚠️ Fresh price for %s unavailable, falling back to debate snapshot %.6f: %v",
			debate.Symbol, debate.CurrentPrice, err)
		return debate.CurrentPrice
	}
	return price
}

func (e *Executor) executePerp(ctx context.Context, res *Result, symbol, side string, usdAmount, refPrice, leverage float64) *Result {
	qty := roundQty(usdAmount/refPrice, e.cfg.PerpQtyDecimals)
	if qty <= 0 {
		return res.fail("order quantity rounds to zero ($%.2f at %.6f)", usdAmount, refPrice)
	}

	orderID, execPrice, execQty, err := e.perp.PlaceMarketOrder(ctx, symbol, side, qty, leverage)
	if err != nil {
		return res.fail("failed to place perp order: %v", err)
	}

	res.Success = true
	res.TxRef = orderID
	res.ExecutedPrice = execPrice
	res.ExecutedQuantity = execQty
	return res
}

func (e *Executor) executeNativeSwap(ctx context.Context, res *Result, symbol, side string, usdAmount, refPrice float64, balance *domain.Balance) *Result {
	solPrice, err := e.prices.GetPrice(ctx, e.cfg.NativeSymbol)
	if err != nil || solPrice <= 0 {
		return res.fail("failed to price SOL leg: %v", err)
	}

	amountSol := roundQty(usdAmount/solPrice, e.cfg.SolQtyDecimals)
	if amountSol <= 0 {
		return res.fail("SOL leg rounds to zero ($%.2f at %.4f)", usdAmount, solPrice)
	}
	if side == domain.SideBuy && balance.NativeQty < amountSol {
		return res.fail("%v: need %.4f SOL, have %.4f", domain.ErrInsufficientBalance, amountSol, balance.NativeQty)
	}

	signature, err := e.native.Swap(ctx, symbol, side, amountSol, e.cfg.SlippageBps)
	if err != nil {
		return res.fail("failed to swap on Jupiter: %v", err)
	}

	res.Success = true
	res.TxRef = signature
	res.ExecutedPrice = refPrice
	res.ExecutedQuantity = usdAmount / refPrice
	return res
}

func (e *Executor) executeSpotSwap(ctx context.Context, res *Result, symbol, side string, usdAmount, refPrice float64, balance *domain.Balance) *Result {
	// srcAmount в человеческих единицах входной ноги: USDC при покупке, токен при продаже
	srcAmount := usdAmount
	if side == domain.SideSell {
		srcAmount = usdAmount / refPrice
	} else if balance.QuoteQty < usdAmount {
		return res.fail("%v: need %.2f USDC, have %.2f", domain.ErrInsufficientBalance, usdAmount, balance.QuoteQty)
	}

	txHash, blockNumber, err := e.spot.Swap(ctx, symbol, side, srcAmount, e.cfg.SlippageBps)
	if err != nil {
		return res.fail("failed to swap on aggregator: %v", err)
	}

	log.Printf("🔗 Swap %s confirmed in block %d", txHash, blockNumber)

	res.Success = true
	res.TxRef = txHash
	res.BlockNumber = blockNumber
	res.ExecutedPrice = refPrice
	res.ExecutedQuantity = usdAmount / refPrice
	return res
}

func (r *Result) fail(format string, args ...interface{}) *Result {
	r.Success = false
	r.Error = fmt.Sprintf(format, args...)
	return r
}

// roundQty округляет количество вниз до заданной точности площадки
func roundQty(qty float64, decimals int32) float64 {
	v, _ := decimal.NewFromFloat(qty).RoundFloor(decimals).Float64()
	return v
}
