package websocket

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"tradebot-backend/internal/usecase"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for now
	},
}

// StatusProvider is the read-only view of the running trader.
type StatusProvider interface {
	Status() usecase.TraderStatus
}

// Handler pushes engine-state snapshots to dashboard clients.
type Handler struct {
	trader StatusProvider
}

func NewHandler(trader StatusProvider) *Handler {
	return &Handler{trader: trader}
}

func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println(err)
		return
	}
	defer conn.Close()

	log.Println("New Client Connected")

	// Send initial snapshot immediately
	if err := conn.WriteJSON(h.trader.Status()); err != nil {
		log.Println("Write error:", err)
		return
	}

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		if err := conn.WriteJSON(h.trader.Status()); err != nil {
			log.Println("Write error:", err)
			return
		}
	}
}
