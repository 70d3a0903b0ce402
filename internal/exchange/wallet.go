package exchange

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kirillm/debate-bot/internal/domain"
)

// WalletEngine клиент сервиса подписи и отправки транзакций.
// Приватные ключи живут только внутри wallet engine, бот их не видит.
type WalletEngine struct {
	baseURL string
	client  *http.Client
}

type signAndSendRequest struct {
	Chain       string `json:"chain"`
	Transaction string `json:"transaction"` // сериализованная неподписанная транзакция
}

type signAndSendResponse struct {
	Status      string `json:"status"`
	Error       string `json:"error"`
	TxRef       string `json:"txRef"` // signature (Solana) или txHash (EVM)
	BlockNumber int64  `json:"blockNumber"`
}

// NewWalletEngine создает клиент wallet engine
func NewWalletEngine(baseURL string, timeout time.Duration) *WalletEngine {
	return &WalletEngine{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type addressResponse struct {
	Status  string `json:"status"`
	Error   string `json:"error"`
	Address string `json:"address"`
}

// Address возвращает публичный адрес кошелька в заданной сети
func (w *WalletEngine) Address(ctx context.Context, chain string) (string, error) {
	url := fmt.Sprintf("%s/v1/address?chain=%s", w.baseURL, chain)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var addrResp addressResponse
	if err := json.Unmarshal(body, &addrResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if addrResp.Status != "ok" || addrResp.Address == "" {
		return "", fmt.Errorf("%w: %s", domain.ErrVenueAPI, addrResp.Error)
	}

	return addrResp.Address, nil
}

// SignAndSend подписывает и отправляет транзакцию, возвращает ссылку на нее в сети.
// Не ретраится: повторная отправка той же сделки недопустима.
func (w *WalletEngine) SignAndSend(ctx context.Context, chain, transaction string) (string, int64, error) {
	reqBody, err := json.Marshal(signAndSendRequest{Chain: chain, Transaction: transaction})
	if err != nil {
		return "", 0, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/sign-and-send", w.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return "", 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, fmt.Errorf("failed to read response: %w", err)
	}

	var sendResp signAndSendResponse
	if err := json.Unmarshal(body, &sendResp); err != nil {
		return "", 0, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if sendResp.Status != "ok" || sendResp.TxRef == "" {
		return "", 0, fmt.Errorf("%w: %s", domain.ErrVenueAPI, sendResp.Error)
	}

	return sendResp.TxRef, sendResp.BlockNumber, nil
}
