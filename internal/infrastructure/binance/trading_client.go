package binance

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"tradebot-backend/internal/domain"
)

// TradingClient handles authenticated Binance Spot API requests.
type TradingClient struct {
	apiKey     string
	secretKey  string
	baseURL    string
	market     *Client
	httpClient *http.Client
}

// APIError captures structured error info returned by Binance. A response of
// this type means the exchange received and rejected the request, as opposed
// to a transport error where the outcome is unknown.
type APIError struct {
	StatusCode int
	Code       int    `json:"code"`
	Message    string `json:"msg"`
	Body       string
}

func (e *APIError) Error() string {
	if e == nil {
		return "binance API error"
	}
	if e.Code != 0 || e.Message != "" {
		return fmt.Sprintf("binance API error %d (code=%d): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("binance API error %d: %s", e.StatusCode, e.Body)
}

// ExchangeRejection marks an APIError as a definite exchange-side rejection.
func (e *APIError) ExchangeRejection() bool { return true }

func parseAPIError(statusCode int, body []byte) error {
	var parsed struct {
		Code int    `json:"code"`
		Msg  string `json:"msg"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && (parsed.Code != 0 || parsed.Msg != "") {
		return &APIError{StatusCode: statusCode, Code: parsed.Code, Message: parsed.Msg, Body: string(body)}
	}
	return &APIError{StatusCode: statusCode, Body: string(body)}
}

// NewTradingClient creates a new authenticated Binance Spot client.
func NewTradingClient(apiKey, secretKey string, isTestnet bool) *TradingClient {
	baseURL := SpotBaseURL
	if isTestnet {
		baseURL = TestnetBaseURL
	}

	return &TradingClient{
		apiKey:     apiKey,
		secretKey:  secretKey,
		baseURL:    baseURL,
		market:     NewClient(isTestnet),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// TestConnection verifies the API credentials with an account query.
func (c *TradingClient) TestConnection() error {
	_, err := c.GetFreeBalance("USDT")
	return err
}

// GetSymbolFilters delegates to the public market-data client so the trading
// client alone satisfies the engine's exchange interface.
func (c *TradingClient) GetSymbolFilters(symbol string) (domain.SymbolFilters, error) {
	return c.market.GetSymbolFilters(symbol)
}

// GetFreeBalance returns the free (unlocked) balance of one asset.
func (c *TradingClient) GetFreeBalance(asset string) (float64, error) {
	endpoint := "/api/v3/account"

	resp, err := c.signedRequest("GET", endpoint, nil)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, err
	}

	if resp.StatusCode != http.StatusOK {
		return 0, parseAPIError(resp.StatusCode, body)
	}

	var account struct {
		Balances []struct {
			Asset string `json:"asset"`
			Free  string `json:"free"`
		} `json:"balances"`
	}
	if err := json.Unmarshal(body, &account); err != nil {
		return 0, err
	}

	for _, b := range account.Balances {
		if b.Asset == asset {
			free, _ := strconv.ParseFloat(b.Free, 64)
			return free, nil
		}
	}
	return 0, nil
}

// SubmitMarketOrder places a MARKET order and returns the normalized result.
// clientOrderID lets a retried submission be correlated on the exchange side.
func (c *TradingClient) SubmitMarketOrder(symbol, side string, quantity float64, clientOrderID string) (*domain.OrderResult, error) {
	endpoint := "/api/v3/order"

	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("side", side)
	params.Set("type", "MARKET")
	params.Set("quantity", strconv.FormatFloat(quantity, 'f', -1, 64))
	if clientOrderID != "" {
		params.Set("newClientOrderId", clientOrderID)
	}

	resp, err := c.signedRequest("POST", endpoint, params)
	if err != nil {
		// Transport failure: the order may or may not have been accepted.
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, parseAPIError(resp.StatusCode, body)
	}

	var orderResp struct {
		OrderID             int64  `json:"orderId"`
		Symbol              string `json:"symbol"`
		Status              string `json:"status"`
		ExecutedQty         string `json:"executedQty"`
		CummulativeQuoteQty string `json:"cummulativeQuoteQty"`
	}
	if err := json.Unmarshal(body, &orderResp); err != nil {
		return nil, err
	}

	executedQty, _ := strconv.ParseFloat(orderResp.ExecutedQty, 64)
	cumQuote, _ := strconv.ParseFloat(orderResp.CummulativeQuoteQty, 64)

	return &domain.OrderResult{
		OrderID:     orderResp.OrderID,
		Symbol:      orderResp.Symbol,
		Status:      orderResp.Status,
		ExecutedQty: executedQty,
		CumQuote:    cumQuote,
	}, nil
}

// signedRequest makes a signed API request.
func (c *TradingClient) signedRequest(method, endpoint string, params url.Values) (*http.Response, error) {
	if params == nil {
		params = url.Values{}
	}

	timestamp := strconv.FormatInt(time.Now().UnixMilli(), 10)
	params.Set("timestamp", timestamp)

	queryString := params.Encode()
	signature := c.sign(queryString)
	params.Set("signature", signature)

	fullURL := c.baseURL + endpoint + "?" + params.Encode()

	req, err := http.NewRequest(method, fullURL, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("X-MBX-APIKEY", c.apiKey)

	return c.httpClient.Do(req)
}

// sign creates the HMAC SHA256 signature over the query string.
func (c *TradingClient) sign(message string) string {
	mac := hmac.New(sha256.New, []byte(c.secretKey))
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}

// compile-time check
var _ domain.Exchange = (*TradingClient)(nil)
