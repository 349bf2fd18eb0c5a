package http

import (
	"encoding/json"
	"net/http"
	"time"

	"tradebot-backend/internal/domain"
	"tradebot-backend/internal/repository"
	"tradebot-backend/internal/usecase"
)

// StatusProvider is the read-only view of the running trader.
type StatusProvider interface {
	Status() usecase.TraderStatus
}

// Handler serves the bot's JSON API.
type Handler struct {
	trader    StatusProvider
	trades    domain.TradeRepository
	states    domain.BotStateRepository
	tokenRepo *repository.TokenRepository
	botID     string
}

func NewHandler(trader StatusProvider, trades domain.TradeRepository, states domain.BotStateRepository, tokenRepo *repository.TokenRepository, botID string) *Handler {
	return &Handler{
		trader:    trader,
		trades:    trades,
		states:    states,
		tokenRepo: tokenRepo,
		botID:     botID,
	}
}

// Register mounts all routes on the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", h.Health)
	mux.HandleFunc("/api/status", h.GetStatus)
	mux.HandleFunc("/api/trades", h.GetTrades)
	mux.HandleFunc("/api/stats/daily", h.GetDailyStats)
	mux.HandleFunc("/api/tokens", h.HandleTokens)
}

// Health handles GET /healthz
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// GetStatus handles GET /api/status
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.trader.Status())
}

// GetTrades handles GET /api/trades?period=1d|7d|30d
func (h *Handler) GetTrades(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	period := r.URL.Query().Get("period")
	var fromTime time.Time

	switch period {
	case "7d":
		fromTime = time.Now().Add(-7 * 24 * time.Hour)
	case "30d":
		fromTime = time.Now().Add(-30 * 24 * time.Hour)
	default:
		fromTime = time.Now().Add(-24 * time.Hour)
	}

	trades, err := h.trades.GetTrades(fromTime)
	if err != nil {
		http.Error(w, "Failed to load trades", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(trades)
}

// GetDailyStats handles GET /api/stats/daily
func (h *Handler) GetDailyStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	history, err := h.states.DailyHistory(h.botID)
	if err != nil {
		http.Error(w, "Failed to load history", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"current": h.trader.Status().DailyStats,
		"history": history,
	})
}

type tokenRequest struct {
	Token string `json:"token"`
}

// HandleTokens handles POST/DELETE /api/tokens for FCM device registration.
func (h *Handler) HandleTokens(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var err error
	switch r.Method {
	case http.MethodPost:
		err = h.tokenRepo.RegisterToken(req.Token)
	case http.MethodDelete:
		err = h.tokenRepo.UnregisterToken(req.Token)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err != nil {
		http.Error(w, "Failed to update token", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "ok"})
}
