package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Dosada05/chess-pairings/live"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin проверяется на уровне CORS, фронтенд может жить на другом домене.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WebSocketHandler struct {
	hub *live.Hub
	log *slog.Logger
}

func NewWebSocketHandler(hub *live.Hub, log *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, log: log}
}

// ServeWs subscribes the caller to events of one tournament.
// Clients connect to /ws/tournaments/{tournamentID}.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParam(r, "tournamentID")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade уже отправил ответ клиенту.
		h.log.Warn("websocket upgrade failed", slog.String("tournament_id", tournamentID), slog.Any("error", err))
		return
	}

	room := live.RoomForTournament(tournamentID)
	client := live.NewClient(h.hub, conn, room)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()

	h.log.Debug("websocket client registered", slog.String("room", room))
}
