package controllers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/wearmade/wearmade-api/config"
	"github.com/wearmade/wearmade-api/models"
	"github.com/wearmade/wearmade-api/ws"
)

// joinRequest is the inbound frame on the chat socket. Sending messages goes
// through the REST endpoint; the socket only joins and leaves rooms.
type joinRequest struct {
	Type   string `json:"type"` // "join" or "leave"
	ChatID uint   `json:"chat_id"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		cfg := config.GetConfig()
		if cfg == nil || !cfg.IsProduction() {
			return true
		}
		origin := r.Header.Get("Origin")
		for _, allowed := range cfg.AllowedOrigins {
			if origin == allowed {
				return true
			}
		}
		return false
	},
}

// ChatSocket handles GET /api/v1/ws - upgrades the connection and relays chat
// events for rooms the caller joins
func ChatSocket(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Websocket upgrade failed: %v", err)
		return
	}

	hub := ws.GetHub()
	client := ws.NewClient(user.ID)

	// Write pump: drain the hub's events into the socket
	go func() {
		for event := range client.Send() {
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		}
	}()

	defer func() {
		hub.Remove(client)
		client.Close()
		if err := conn.Close(); err != nil {
			log.Printf("Failed to close websocket: %v", err)
		}
	}()

	db := config.GetDB()
	for {
		var req joinRequest
		if err := conn.ReadJSON(&req); err != nil {
			return
		}

		switch req.Type {
		case "join":
			var chat models.Chat
			if err := db.First(&chat, req.ChatID).Error; err != nil {
				continue
			}
			if !chat.IsParticipant(user.ID) {
				continue
			}
			hub.Join(chat.ID, client)
		case "leave":
			hub.Leave(req.ChatID, client)
		}
	}
}
