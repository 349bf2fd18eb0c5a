package binance

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"tradebot-backend/internal/domain"
)

const (
	SpotBaseURL    = "https://api.binance.com"
	TestnetBaseURL = "https://testnet.binance.vision"
)

// Client handles unauthenticated Binance Spot API requests (market data).
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(isTestnet bool) *Client {
	baseURL := SpotBaseURL
	if isTestnet {
		baseURL = TestnetBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// GetSymbolFilters fetches the trading constraints for one symbol from
// exchangeInfo: price tick size, quantity step size and minimum notional.
func (c *Client) GetSymbolFilters(symbol string) (domain.SymbolFilters, error) {
	url := fmt.Sprintf("%s/api/v3/exchangeInfo?symbol=%s", c.baseURL, symbol)
	resp, err := c.httpClient.Get(url)
	if err != nil {
		return domain.SymbolFilters{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.SymbolFilters{}, fmt.Errorf("binance API error: %d", resp.StatusCode)
	}

	var info struct {
		Symbols []struct {
			Symbol  string `json:"symbol"`
			Status  string `json:"status"`
			Filters []struct {
				FilterType  string `json:"filterType"`
				TickSize    string `json:"tickSize"`
				StepSize    string `json:"stepSize"`
				MinNotional string `json:"minNotional"`
			} `json:"filters"`
		} `json:"symbols"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return domain.SymbolFilters{}, err
	}
	if len(info.Symbols) == 0 {
		return domain.SymbolFilters{}, fmt.Errorf("symbol %s not found on exchange", symbol)
	}

	filters := domain.SymbolFilters{Symbol: info.Symbols[0].Symbol}
	for _, f := range info.Symbols[0].Filters {
		switch f.FilterType {
		case "PRICE_FILTER":
			filters.TickSize, _ = strconv.ParseFloat(f.TickSize, 64)
		case "LOT_SIZE":
			filters.StepSize, _ = strconv.ParseFloat(f.StepSize, 64)
		case "NOTIONAL", "MIN_NOTIONAL":
			filters.MinNotional, _ = strconv.ParseFloat(f.MinNotional, 64)
		}
	}

	if filters.StepSize <= 0 {
		return filters, fmt.Errorf("symbol %s has no LOT_SIZE filter", symbol)
	}
	return filters, nil
}

// GetKlines returns the most recent closed candles for a symbol. The last
// kline Binance returns is still forming, so it is dropped.
// Binance returns: [ [open_time, open, high, low, close, volume, close_time, ...], ... ]
func (c *Client) GetKlines(symbol, interval string, limit int) ([]domain.Candle, error) {
	url := fmt.Sprintf("%s/api/v3/klines?symbol=%s&interval=%s&limit=%d", c.baseURL, symbol, interval, limit)
	resp, err := c.httpClient.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("binance API error: %d", resp.StatusCode)
	}

	var klines [][]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&klines); err != nil {
		return nil, err
	}

	candles := make([]domain.Candle, 0, len(klines))
	for _, k := range klines {
		if len(k) < 7 {
			continue
		}
		closeStr, ok := k[4].(string)
		if !ok {
			continue
		}
		closePrice, err := strconv.ParseFloat(closeStr, 64)
		if err != nil {
			continue
		}
		closeTimeMs, ok := k[6].(float64)
		if !ok {
			continue
		}
		candles = append(candles, domain.Candle{
			Close:     closePrice,
			CloseTime: time.UnixMilli(int64(closeTimeMs)),
		})
	}

	if len(candles) > 0 {
		candles = candles[:len(candles)-1]
	}
	return candles, nil
}
