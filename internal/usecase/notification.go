package usecase

import (
	"fmt"
	"log"

	"tradebot-backend/internal/domain"
	"tradebot-backend/internal/infrastructure/fcm"
)

// Notifier is the outbound notification sink. Every method is fire-and-forget:
// delivery failure never affects engine state.
type Notifier interface {
	NotifyTrade(trade domain.Trade)
	NotifyDecision(title, body string)
	NotifyAlert(body string) // Escalations, e.g. persistence failures
}

// tokenSource lists the device tokens to push to.
type tokenSource interface {
	GetAllTokens() []string
}

// NotificationService pushes trade and decision alerts over FCM.
type NotificationService struct {
	fcmClient *fcm.Client
	tokens    tokenSource
}

func NewNotificationService(fcmClient *fcm.Client, tokens tokenSource) *NotificationService {
	return &NotificationService{fcmClient: fcmClient, tokens: tokens}
}

func (s *NotificationService) NotifyTrade(trade domain.Trade) {
	title := fmt.Sprintf("%s %s executed", trade.Symbol, trade.Side)
	body := fmt.Sprintf("qty %.8f @ %.4f (%s)", trade.Quantity, trade.AvgPrice, trade.Reason)
	if trade.Side == domain.SideSell {
		body = fmt.Sprintf("%s | P/L %.4f", body, trade.Profit)
	}
	s.send(title, body, map[string]string{
		"type":    "trade",
		"orderId": fmt.Sprintf("%d", trade.OrderID),
		"side":    trade.Side,
		"reason":  trade.Reason,
	})
}

func (s *NotificationService) NotifyDecision(title, body string) {
	s.send(title, body, map[string]string{"type": "decision"})
}

func (s *NotificationService) NotifyAlert(body string) {
	s.send("Trading bot alert", body, map[string]string{"type": "alert"})
}

func (s *NotificationService) send(title, body string, data map[string]string) {
	if s.fcmClient == nil || !s.fcmClient.IsEnabled() {
		return
	}

	tokens := s.tokens.GetAllTokens()
	if len(tokens) == 0 {
		return
	}

	go func() {
		if err := s.fcmClient.SendMulticast(tokens, title, body, data); err != nil {
			log.Printf("notification send failed: %v", err)
		}
	}()
}

// NopNotifier discards everything; used in tests.
type NopNotifier struct{}

func (NopNotifier) NotifyTrade(domain.Trade)      {}
func (NopNotifier) NotifyDecision(string, string) {}
func (NopNotifier) NotifyAlert(string)            {}
