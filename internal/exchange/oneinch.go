package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/shopspring/decimal"

	"github.com/kirillm/debate-bot/internal/domain"
)

const baseChainID = 8453

// usdcBase адрес USDC в сети Base, котировочная нога дефолтного агрегатора
const usdcBase = "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"

type baseToken struct {
	Address  string
	Decimals int32
}

// baseTokens адреса и decimals известных токенов сети Base
var baseTokens = map[string]baseToken{
	"USDC":  {usdcBase, 6},
	"WETH":  {"0x4200000000000000000000000000000000000006", 18},
	"ETH":   {"0xEeeeeEeeeEeEeeEeEeEeeEEEeeeeEeeeeeeeEEeE", 18},
	"DEGEN": {"0x4ed4E862860beD51a9570b96d89aF5E1B0Efefed", 18},
	"AERO":  {"0x940181a94A35A4569E4529A3CDfB74e38FD98631", 18},
	"BRETT": {"0x532f27101965dd16442E59d40670FaF5eBB142E4", 18},
}

// OneInchClient клиент дефолтного спот-агрегатора (сеть Base)
type OneInchClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	wallet  *WalletEngine
}

type oneInchSwapResponse struct {
	Tx struct {
		To    string `json:"to"`
		Data  string `json:"data"`
		Value string `json:"value"`
	} `json:"tx"`
	Description string `json:"description"` // заполнено при ошибке
}

// NewOneInchClient создает клиент агрегатора
func NewOneInchClient(baseURL, apiKey string, wallet *WalletEngine, timeout time.Duration) *OneInchClient {
	return &OneInchClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
		wallet:  wallet,
	}
}

// Swap обменивает USDC на токен (BUY) или токен на USDC (SELL).
// srcAmount задан в человеческих единицах входной ноги.
// Возвращает хеш транзакции и номер блока.
func (o *OneInchClient) Swap(ctx context.Context, symbol, side string, srcAmount float64, slippageBps int) (string, int64, error) {
	target, ok := baseTokens[strings.ToUpper(symbol)]
	if !ok {
		return "", 0, fmt.Errorf("failed to resolve token address for %s", symbol)
	}

	src, dst := baseTokens["USDC"], target
	if side == domain.SideSell {
		src, dst = target, baseTokens["USDC"]
	}

	amountUnits := toUnits(srcAmount, src.Decimals)
	if amountUnits.Sign() <= 0 {
		return "", 0, fmt.Errorf("swap amount too small: %f %s", srcAmount, symbol)
	}

	from, err := o.wallet.Address(ctx, domain.ChainBase)
	if err != nil {
		return "", 0, fmt.Errorf("failed to get wallet address: %w", err)
	}

	swapTx, err := o.getSwapTransaction(ctx, src.Address, dst.Address, amountUnits.String(), from, slippageBps)
	if err != nil {
		return "", 0, fmt.Errorf("failed to get swap transaction: %w", err)
	}

	txHash, blockNumber, err := o.wallet.SignAndSend(ctx, domain.ChainBase, swapTx)
	if err != nil {
		return "", 0, fmt.Errorf("failed to sign and send swap: %w", err)
	}

	return txHash, blockNumber, nil
}

// getSwapTransaction запрашивает calldata свопа. Чтение, ретраится с backoff.
func (o *OneInchClient) getSwapTransaction(ctx context.Context, src, dst, amount, from string, slippageBps int) (string, error) {
	url := fmt.Sprintf("%s/swap/v6.0/%d/swap?src=%s&dst=%s&amount=%s&from=%s&slippage=%s&disableEstimate=true",
		o.baseURL, baseChainID, src, dst, amount, from,
		decimal.NewFromInt(int64(slippageBps)).Div(decimal.NewFromInt(100)).String())

	var rawTx string
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", o.apiKey))

		resp, err := o.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}

		var swapResp oneInchSwapResponse
		if err := json.Unmarshal(body, &swapResp); err != nil {
			return backoff.Permanent(fmt.Errorf("failed to unmarshal response: %w", err))
		}

		if resp.StatusCode != http.StatusOK || swapResp.Tx.Data == "" {
			return fmt.Errorf("%w: %s", domain.ErrVenueAPI, swapResp.Description)
		}

		txJSON, err := json.Marshal(swapResp.Tx)
		if err != nil {
			return backoff.Permanent(err)
		}
		rawTx = string(txJSON)
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 2), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return "", err
	}

	return rawTx, nil
}

// toUnits переводит человеческое количество в целые единицы токена
func toUnits(amount float64, decimals int32) *big.Int {
	return decimal.NewFromFloat(amount).Shift(decimals).BigInt()
}
