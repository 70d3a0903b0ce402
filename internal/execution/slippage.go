package execution

import (
	"errors"
	"fmt"
	"math"
)

// ErrSlippageTooHigh цена ушла от ожидаемой дальше допустимого
var ErrSlippageTooHigh = errors.New("slippage too high")

// SlippageGuard проверяет отклонение текущей цены от ожидаемой перед исполнением
type SlippageGuard struct {
	maxBps int
}

// NewSlippageGuard создает guard с максимальным отклонением в базисных пунктах
func NewSlippageGuard(maxBps int) *SlippageGuard {
	return &SlippageGuard{maxBps: maxBps}
}

// Check сравнивает текущую цену с ожидаемой.
// Если одна из цен неизвестна (<= 0), проверка пропускается.
func (g *SlippageGuard) Check(currentPrice, expectedPrice float64) error {
	if g == nil || g.maxBps <= 0 {
		return nil
	}
	if currentPrice <= 0 || expectedPrice <= 0 {
		return nil
	}

	deviationBps := math.Abs(currentPrice-expectedPrice) / expectedPrice * 10000
	if deviationBps > float64(g.maxBps) {
		return fmt.Errorf("%w: price %.6f deviates %.0f bps from expected %.6f (max %d)",
			ErrSlippageTooHigh, currentPrice, deviationBps, expectedPrice, g.maxBps)
	}

	return nil
}
