package main

import (
	"context"
	"errors"
	"log"
	stdhttp "net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tradebot-backend/internal/config"
	httpdelivery "tradebot-backend/internal/delivery/http"
	wsdelivery "tradebot-backend/internal/delivery/websocket"
	"tradebot-backend/internal/domain"
	"tradebot-backend/internal/infrastructure/binance"
	"tradebot-backend/internal/infrastructure/db"
	"tradebot-backend/internal/infrastructure/fcm"
	"tradebot-backend/internal/repository"
	"tradebot-backend/internal/usecase"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Persistence
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, db.PoolConfigFromEnv())
	if err != nil {
		log.Fatalf("connecting to database: %v", err)
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		log.Fatalf("running migrations: %v", err)
	}

	stateRepo := repository.NewPostgresStateRepository(pool)
	tradeRepo := repository.NewPostgresTradeRepository(pool, cfg.BotID)
	tokenRepo := repository.NewTokenRepository(pool)

	// Notifications
	fcmClient, err := fcm.NewClient()
	if err != nil {
		log.Fatalf("initializing FCM: %v", err)
	}
	notifier := usecase.NewNotificationService(fcmClient, tokenRepo)

	// Exchange
	marketClient := binance.NewClient(cfg.IsTestnet)
	filters, err := marketClient.GetSymbolFilters(cfg.Symbol)
	if err != nil {
		log.Fatalf("loading symbol filters for %s: %v", cfg.Symbol, err)
	}
	log.Printf("filters %s: tick=%g step=%g minNotional=%g", filters.Symbol, filters.TickSize, filters.StepSize, filters.MinNotional)

	var exchange domain.Exchange
	var paper *usecase.PaperExchange
	if cfg.EnableRealTrading {
		tradingClient := binance.NewTradingClient(cfg.APIKey, cfg.SecretKey, cfg.IsTestnet)
		if err := tradingClient.TestConnection(); err != nil {
			log.Fatalf("verifying exchange credentials: %v", err)
		}
		exchange = tradingClient
		log.Println("real trading ENABLED")
	} else {
		paper = usecase.NewPaperExchange(filters, cfg.BaseAsset, cfg.QuoteAsset, cfg.PaperStartingQuote)
		exchange = paper
		log.Printf("paper trading mode, starting balance %.2f %s", cfg.PaperStartingQuote, cfg.QuoteAsset)
	}

	// Engine
	engine := usecase.NewSignalEngine(cfg.MAType, cfg.ShortPeriod, cfg.LongPeriod)
	risk := usecase.NewRiskGovernor(usecase.RiskLimits{
		StopLossPct:     cfg.StopLossPct,
		TakeProfitPct:   cfg.TakeProfitPct,
		TrailingStopPct: cfg.TrailingStopPct,
		MaxDailyLoss:    cfg.MaxDailyLoss,
		MaxDailyTrades:  cfg.MaxDailyTrades,
	})
	executor := usecase.NewOrderExecutor(exchange, tradeRepo, cfg.Symbol, cfg.QuantityPrecision)

	trader := usecase.NewTrader(usecase.TraderParams{
		BotID:            cfg.BotID,
		Symbol:           cfg.Symbol,
		BaseAsset:        cfg.BaseAsset,
		QuoteAsset:       cfg.QuoteAsset,
		TradeQuoteAmount: cfg.TradeQuoteAmount,
		Engine:           engine,
		Risk:             risk,
		Executor:         executor,
		Exchange:         exchange,
		States:           stateRepo,
		Notifier:         notifier,
		Filters:          filters,
		Paper:            paper,
	})

	if err := trader.LoadState(time.Now()); err != nil {
		log.Fatalf("restoring bot state: %v", err)
	}

	// Warm the moving averages from history so signals resume immediately.
	candles, err := marketClient.GetKlines(cfg.Symbol, cfg.Interval, 2*cfg.LongPeriod+1)
	if err != nil {
		log.Printf("backfill failed, warming up from live stream: %v", err)
	} else {
		trader.Backfill(candles)
	}

	// Price feed
	stream := binance.NewKlineStream(cfg.Symbol, cfg.Interval, cfg.IsTestnet)
	go stream.Run(ctx)
	go trader.Run(ctx, stream.Candles())

	// Delivery
	apiHandler := httpdelivery.NewHandler(trader, tradeRepo, stateRepo, tokenRepo, cfg.BotID)
	wsHandler := wsdelivery.NewHandler(trader)

	mux := stdhttp.NewServeMux()
	apiHandler.Register(mux)
	mux.HandleFunc("/ws", wsHandler.Handle)
	mux.Handle("/metrics", promhttp.Handler())

	server := &stdhttp.Server{Addr: cfg.HTTPAddr, Handler: mux}
	go func() {
		log.Printf("server listening on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			log.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown: %v", err)
	}

	trader.Shutdown()
}
