package exchange

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/kirillm/debate-bot/internal/domain"
)

const (
	lamportsPerSol = 1_000_000_000

	solMint = "So11111111111111111111111111111111111111112"
)

// solanaMints адреса минтов нативных токенов Solana
var solanaMints = map[string]string{
	"SOL":     solMint,
	"MSOL":    "mSoLzYCxHdYgdzU16g5QSh3i5K3z3KZK7ytfqcJm7So",
	"JITOSOL": "J1toso1uCk3RLmjorhTtrVwY9HJ7X8V9yYac6Y7kGCPn",
	"JUP":     "JUPyiwrYJFskUPiHa7hkeR8VUtAeFoSYbKedZNsDvCN",
	"JTO":     "jtojtomepa8beP8AuQc6eXt5FriJwfFMwQx2v2f9mCL",
	"BONK":    "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263",
	"WIF":     "EKpQGSJtjMFqKZ9KQanSqYXRcF8fBopzLHYxdM65zcjm",
}

// JupiterClient клиент агрегатора нативной ликвидности Solana
type JupiterClient struct {
	baseURL string
	client  *http.Client
	wallet  *WalletEngine
}

type jupiterQuote struct {
	InputMint  string `json:"inputMint"`
	OutputMint string `json:"outputMint"`
	InAmount   string `json:"inAmount"`
	OutAmount  string `json:"outAmount"`
	Raw        json.RawMessage
}

type jupiterSwapResponse struct {
	SwapTransaction string `json:"swapTransaction"` // base64, неподписанная
	Error           string `json:"error"`
}

// NewJupiterClient создает клиент Jupiter
func NewJupiterClient(baseURL string, wallet *WalletEngine, timeout time.Duration) *JupiterClient {
	return &JupiterClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		wallet:  wallet,
	}
}

// Swap обменивает SOL на токен (BUY) или токен на SOL (SELL).
// amountSol задает SOL-ногу свопа: вход при BUY, выход при SELL.
// Возвращает подпись транзакции в сети Solana.
func (j *JupiterClient) Swap(ctx context.Context, symbol, side string, amountSol float64, slippageBps int) (string, error) {
	mint, ok := solanaMints[strings.ToUpper(symbol)]
	if !ok {
		return "", fmt.Errorf("failed to resolve Solana mint for %s", symbol)
	}
	if mint == solMint {
		return "", fmt.Errorf("refusing to swap SOL for itself")
	}

	inputMint, outputMint := solMint, mint
	swapMode := "ExactIn"
	if side == domain.SideSell {
		inputMint, outputMint = mint, solMint
		swapMode = "ExactOut" // фиксируем SOL-ногу на выходе
	}

	lamports := int64(amountSol * lamportsPerSol)
	if lamports <= 0 {
		return "", fmt.Errorf("swap amount too small: %.9f SOL", amountSol)
	}

	quote, err := j.getQuote(ctx, inputMint, outputMint, lamports, slippageBps, swapMode)
	if err != nil {
		return "", fmt.Errorf("failed to get quote: %w", err)
	}

	tx, err := j.buildSwapTransaction(ctx, quote)
	if err != nil {
		return "", fmt.Errorf("failed to build swap transaction: %w", err)
	}

	signature, _, err := j.wallet.SignAndSend(ctx, domain.ChainSolana, tx)
	if err != nil {
		return "", fmt.Errorf("failed to sign and send swap: %w", err)
	}

	return signature, nil
}

// getQuote запрашивает котировку. Чтение, поэтому ретраится с backoff.
func (j *JupiterClient) getQuote(ctx context.Context, inputMint, outputMint string, amount int64, slippageBps int, swapMode string) (*jupiterQuote, error) {
	url := fmt.Sprintf("%s/v6/quote?inputMint=%s&outputMint=%s&amount=%s&slippageBps=%d&swapMode=%s",
		j.baseURL, inputMint, outputMint, strconv.FormatInt(amount, 10), slippageBps, swapMode)

	var quote *jupiterQuote
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}

		resp, err := j.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("%w: quote returned %d: %s", domain.ErrVenueAPI, resp.StatusCode, string(body))
		}

		var q jupiterQuote
		if err := json.Unmarshal(body, &q); err != nil {
			return backoff.Permanent(fmt.Errorf("failed to unmarshal quote: %w", err))
		}
		q.Raw = body
		quote = &q
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 2), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}

	return quote, nil
}

// buildSwapTransaction запрашивает у агрегатора готовую swap-транзакцию.
// Не ретраится: котировка одноразовая.
func (j *JupiterClient) buildSwapTransaction(ctx context.Context, quote *jupiterQuote) (string, error) {
	userPublicKey, err := j.wallet.Address(ctx, domain.ChainSolana)
	if err != nil {
		return "", fmt.Errorf("failed to get wallet address: %w", err)
	}

	reqBody, err := json.Marshal(map[string]interface{}{
		"quoteResponse": json.RawMessage(quote.Raw),
		"userPublicKey": userPublicKey,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal swap request: %w", err)
	}

	url := fmt.Sprintf("%s/v6/swap", j.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := j.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var swapResp jupiterSwapResponse
	if err := json.Unmarshal(body, &swapResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if swapResp.SwapTransaction == "" {
		return "", fmt.Errorf("%w: %s", domain.ErrVenueAPI, swapResp.Error)
	}

	return swapResp.SwapTransaction, nil
}
