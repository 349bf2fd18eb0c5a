package binance

import (
	"testing"
	"time"
)

func TestParseKlineEvent_ClosedCandle(t *testing.T) {
	raw := []byte(`{"e":"kline","E":1756411260001,"s":"BTCUSDT","k":{"t":1756411200000,"T":1756411259999,"s":"BTCUSDT","i":"1m","c":"65123.45000000","x":true}}`)

	candle, closed, err := parseKlineEvent(raw)
	if err != nil {
		t.Fatal(err)
	}
	if !closed {
		t.Fatal("closed kline not reported as closed")
	}
	if candle.Close != 65123.45 {
		t.Errorf("close = %v, want 65123.45", candle.Close)
	}
	if want := time.UnixMilli(1756411259999); !candle.CloseTime.Equal(want) {
		t.Errorf("close time = %v, want %v", candle.CloseTime, want)
	}
}

func TestParseKlineEvent_OpenCandleSkipped(t *testing.T) {
	raw := []byte(`{"e":"kline","k":{"T":1756411259999,"c":"65123.45","x":false}}`)

	_, closed, err := parseKlineEvent(raw)
	if err != nil {
		t.Fatal(err)
	}
	if closed {
		t.Error("still-forming kline reported as closed")
	}
}

func TestParseKlineEvent_OtherEventIgnored(t *testing.T) {
	raw := []byte(`{"e":"24hrTicker","s":"BTCUSDT"}`)

	_, closed, err := parseKlineEvent(raw)
	if err != nil {
		t.Fatal(err)
	}
	if closed {
		t.Error("non-kline event produced a candle")
	}
}

func TestParseKlineEvent_BadJSON(t *testing.T) {
	if _, _, err := parseKlineEvent([]byte(`{"e":"kline"`)); err == nil {
		t.Error("truncated payload should error")
	}
}

func TestNewKlineStream_URL(t *testing.T) {
	s := NewKlineStream("BTCUSDT", "1m", false)
	if want := SpotStreamURL + "/btcusdt@kline_1m"; s.url != want {
		t.Errorf("url = %s, want %s", s.url, want)
	}

	s = NewKlineStream("ETHUSDT", "15m", true)
	if want := TestnetStreamURL + "/ethusdt@kline_15m"; s.url != want {
		t.Errorf("url = %s, want %s", s.url, want)
	}
}
