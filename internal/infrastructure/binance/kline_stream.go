package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"tradebot-backend/internal/domain"
)

const (
	SpotStreamURL    = "wss://stream.binance.com:9443/ws"
	TestnetStreamURL = "wss://stream.testnet.binance.vision/ws"
)

// KlineStream consumes the Binance kline websocket stream for one symbol and
// delivers only closed candles, in order, on Candles(). Reconnection is
// handled here; the engine just reads from the channel.
type KlineStream struct {
	symbol   string
	interval string
	url      string

	ReadTimeout    time.Duration
	ReconnectDelay time.Duration

	candles chan domain.Candle
}

func NewKlineStream(symbol, interval string, isTestnet bool) *KlineStream {
	base := SpotStreamURL
	if isTestnet {
		base = TestnetStreamURL
	}
	return &KlineStream{
		symbol:         symbol,
		interval:       interval,
		url:            fmt.Sprintf("%s/%s@kline_%s", base, strings.ToLower(symbol), interval),
		ReadTimeout:    90 * time.Second,
		ReconnectDelay: 5 * time.Second,
		candles:        make(chan domain.Candle), // Unbuffered: backpressure while a tick is processed
	}
}

// Candles returns the closed-candle channel. Closed when Run returns.
func (s *KlineStream) Candles() <-chan domain.Candle {
	return s.candles
}

// Run connects and pumps candles until ctx is cancelled, reconnecting on any
// read failure.
func (s *KlineStream) Run(ctx context.Context) {
	defer close(s.candles)

	for {
		if err := s.readLoop(ctx); err != nil {
			log.Printf("kline stream: %v", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(s.ReconnectDelay):
		}
	}
}

func (s *KlineStream) readLoop(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", s.url, err)
	}
	defer conn.Close()

	log.Printf("kline stream connected: %s %s", s.symbol, s.interval)

	// Binance sends pings; answering keeps the connection alive.
	conn.SetPingHandler(func(appData string) error {
		deadline := time.Now().Add(10 * time.Second)
		return conn.WriteControl(websocket.PongMessage, []byte(appData), deadline)
	})

	// Close the connection when ctx is cancelled so ReadMessage unblocks.
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		if err := conn.SetReadDeadline(time.Now().Add(s.ReadTimeout)); err != nil {
			return err
		}
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}

		candle, closed, err := parseKlineEvent(raw)
		if err != nil {
			log.Printf("kline stream: parse error: %v", err)
			continue
		}
		if !closed {
			continue
		}

		select {
		case s.candles <- candle:
		case <-ctx.Done():
			return nil
		}
	}
}

type klineEvent struct {
	EventType string `json:"e"`
	Kline     struct {
		CloseTime int64  `json:"T"`
		Close     string `json:"c"`
		IsClosed  bool   `json:"x"`
	} `json:"k"`
}

func parseKlineEvent(raw []byte) (domain.Candle, bool, error) {
	var ev klineEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		return domain.Candle{}, false, err
	}
	if ev.EventType != "kline" {
		return domain.Candle{}, false, nil
	}
	if !ev.Kline.IsClosed {
		return domain.Candle{}, false, nil
	}

	closePrice, err := strconv.ParseFloat(ev.Kline.Close, 64)
	if err != nil {
		return domain.Candle{}, false, err
	}

	return domain.Candle{
		Close:     closePrice,
		CloseTime: time.UnixMilli(ev.Kline.CloseTime),
	}, true, nil
}
