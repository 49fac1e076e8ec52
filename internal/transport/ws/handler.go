package ws

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/DaveMolla/Emoji-Game/internal/model"
	"github.com/DaveMolla/Emoji-Game/internal/service"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for dev
	},
}

// Handler upgrades player connections and maps inbound events onto the game
// service.
type Handler struct {
	hub     *Hub
	authSvc *service.AuthService
	gameSvc *service.GameService
}

// NewHandler creates a new WebSocket handler.
func NewHandler(hub *Hub, authSvc *service.AuthService, gameSvc *service.GameService) *Handler {
	return &Handler{
		hub:     hub,
		authSvc: authSvc,
		gameSvc: gameSvc,
	}
}

// PlayerWS handles GET /v1/ws
func (h *Handler) PlayerWS(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	claims, err := h.authSvc.ValidateToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	conn := &Connection{
		PlayerID: claims.UserID,
		Send:     make(chan []byte, 256),
		Hub:      h.hub,
	}

	if !h.hub.Register(conn) {
		log.Warn().Str("player_id", claims.UserID).Msg("rejecting duplicate connection")
		wsConn.Close()
		return
	}

	go h.writePump(wsConn, conn)
	go h.readPump(wsConn, conn)
}

func (h *Handler) readPump(wsConn *websocket.Conn, conn *Connection) {
	defer func() {
		if h.hub.Unregister(conn) {
			h.gameSvc.HandleDisconnect(conn.PlayerID)
		}
		wsConn.Close()
	}()

	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := wsConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Str("player_id", conn.PlayerID).Msg("websocket read error")
			}
			break
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Debug().Err(err).Str("player_id", conn.PlayerID).Msg("dropping malformed event")
			continue
		}
		h.dispatch(conn.PlayerID, &msg)
	}
}

// dispatch routes one inbound event. The authenticated connection identity
// is authoritative; a playerId in the payload is never trusted.
func (h *Handler) dispatch(playerID string, msg *Message) {
	switch msg.Type {
	case model.EvtStartGame:
		h.gameSvc.HandleStartGame(playerID)

	case model.EvtSelectEmoji:
		var p model.SelectEmojiPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			log.Debug().Err(err).Str("player_id", playerID).Msg("dropping malformed selection")
			return
		}
		h.gameSvc.HandleSelectEmoji(p.SessionID, playerID, p.EmojiIndex)

	default:
		log.Debug().Str("player_id", playerID).Str("type", msg.Type).Msg("unknown event type")
	}
}

func (h *Handler) writePump(wsConn *websocket.Conn, conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				wsConn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := wsConn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
