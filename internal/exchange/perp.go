package exchange

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/kirillm/debate-bot/internal/domain"
)

// PerpClient клиент перп-площадки (рыночные ордера с плечом)
type PerpClient struct {
	apiKey    string
	apiSecret string
	baseURL   string
	client    *http.Client
}

type tickerResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
	Ticker struct {
		Symbol    string `json:"symbol"`
		MarkPrice string `json:"markPrice"`
	} `json:"ticker"`
}

type orderResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
	Order  struct {
		OrderID  string `json:"orderId"`
		AvgPrice string `json:"avgPrice"`
		ExecQty  string `json:"execQty"`
	} `json:"order"`
}

// NewPerpClient создает клиент перп-площадки
func NewPerpClient(apiKey, apiSecret, baseURL string, timeout time.Duration) *PerpClient {
	return &PerpClient{
		apiKey:    apiKey,
		apiSecret: apiSecret,
		baseURL:   baseURL,
		client:    &http.Client{Timeout: timeout},
	}
}

// GetPrice получает текущую mark-цену символа (публичный endpoint)
func (p *PerpClient) GetPrice(ctx context.Context, symbol string) (float64, error) {
	url := fmt.Sprintf("%s/v1/ticker?symbol=%s", p.baseURL, symbol)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("failed to read response: %w", err)
	}

	var tickerResp tickerResponse
	if err := json.Unmarshal(body, &tickerResp); err != nil {
		return 0, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if tickerResp.Status != "ok" {
		return 0, fmt.Errorf("%w: %s", domain.ErrVenueAPI, tickerResp.Error)
	}

	if tickerResp.Ticker.MarkPrice == "" {
		return 0, fmt.Errorf("no price data for symbol %s", symbol)
	}

	price, err := strconv.ParseFloat(tickerResp.Ticker.MarkPrice, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse price for %s: %w", symbol, err)
	}

	return price, nil
}

// PlaceMarketOrder размещает рыночный ордер с плечом.
// Возвращает идентификатор ордера площадки и фактические цену/количество.
func (p *PerpClient) PlaceMarketOrder(ctx context.Context, symbol, side string, quantity, leverage float64) (string, float64, float64, error) {
	timestamp := strconv.FormatInt(time.Now().UnixMilli(), 10)

	params := map[string]interface{}{
		"symbol":    symbol,
		"side":      side,
		"orderType": "Market",
		"qty":       fmt.Sprintf("%.8f", quantity),
		"leverage":  fmt.Sprintf("%.0f", leverage),
	}

	jsonData, err := json.Marshal(params)
	if err != nil {
		return "", 0, 0, fmt.Errorf("failed to marshal params: %w", err)
	}

	signature := p.generateSignature(timestamp, string(jsonData))

	url := fmt.Sprintf("%s/v1/order", p.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return "", 0, 0, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", p.apiKey)
	req.Header.Set("X-API-SIGN", signature)
	req.Header.Set("X-API-TIMESTAMP", timestamp)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", 0, 0, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, 0, fmt.Errorf("failed to read response: %w", err)
	}

	var orderResp orderResponse
	if err := json.Unmarshal(body, &orderResp); err != nil {
		return "", 0, 0, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if orderResp.Status != "ok" {
		return "", 0, 0, fmt.Errorf("%w: %s", domain.ErrVenueAPI, orderResp.Error)
	}

	execPrice, err := strconv.ParseFloat(orderResp.Order.AvgPrice, 64)
	if err != nil {
		return "", 0, 0, fmt.Errorf("failed to parse execution price: %w", err)
	}

	execQty, err := strconv.ParseFloat(orderResp.Order.ExecQty, 64)
	if err != nil {
		return "", 0, 0, fmt.Errorf("failed to parse executed quantity: %w", err)
	}

	return orderResp.Order.OrderID, execPrice, execQty, nil
}

// generateSignature генерирует подпись запроса
func (p *PerpClient) generateSignature(timestamp, payload string) string {
	message := timestamp + p.apiKey + payload
	h := hmac.New(sha256.New, []byte(p.apiSecret))
	h.Write([]byte(message))
	return hex.EncodeToString(h.Sum(nil))
}
