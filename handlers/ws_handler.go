package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"jogakzip/models"
	"jogakzip/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// WebSocketHandler streams change events of one public group to subscribers.
type WebSocketHandler struct {
	hubService   *services.HubService
	groupService *services.GroupService
	upgrader     websocket.Upgrader
}

func NewWebSocketHandler(hubService *services.HubService, groupService *services.GroupService, allowedOrigins []string) *WebSocketHandler {
	return &WebSocketHandler{
		hubService:   hubService,
		groupService: groupService,
		upgrader: websocket.Upgrader{
			CheckOrigin: originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowedOrigins []string) func(r *http.Request) bool {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if origin == "*" {
			return func(*http.Request) bool { return true }
		}
		allowed[origin] = true
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || allowed[origin]
	}
}

// HandleGroupFeed godoc
// @Summary Live change feed of a public group
// @Tags groups
// @Param groupId path int true "Group ID"
// @Success 101
// @Failure 403 {object} controllers.ErrorResponse
// @Failure 404 {object} controllers.ErrorResponse
// @Router /groups/{groupId}/ws [get]
func (wh *WebSocketHandler) HandleGroupFeed(c *gin.Context) {
	groupID := c.GetUint("groupId")

	// Private groups never get a feed, even with a password.
	if _, err := wh.groupService.GetGroup(c.Request.Context(), groupID, ""); err != nil {
		_ = c.Error(err)
		return
	}

	conn, err := wh.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade connection: %v", err)
		return
	}

	client := models.NewClient(wh.hubService.GetHub(), conn, models.GroupTopic(groupID))
	log.Printf("Client %s connected to %s", client.ID, client.Topic)

	client.Hub.Register <- client
	go wh.writePump(client)
	go wh.readPump(client)
}

func (wh *WebSocketHandler) readPump(client *models.Client) {
	defer func() {
		client.Hub.Unregister <- client
		client.Conn.Close()
	}()

	client.Conn.SetReadLimit(maxMessageSize)
	client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	client.Conn.SetPongHandler(func(string) error {
		client.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := client.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("Unexpected close error for client %s: %v", client.ID, err)
			}
			return
		}

		var wsMessage models.WSMessage
		if err := json.Unmarshal(message, &wsMessage); err != nil {
			log.Printf("Error unmarshaling WebSocket message from client %s: %v", client.ID, err)
			continue
		}

		switch wsMessage.Type {
		case "client_connect":
			responseBytes, err := json.Marshal(models.WSMessage{
				Type:     "client_connected",
				Topic:    client.Topic,
				ClientID: client.ID,
				Data:     map[string]string{"client_id": client.ID},
			})
			if err != nil {
				log.Printf("Error marshaling 'client_connected' response for client %s: %v", client.ID, err)
				continue
			}

			client.Hub.Reply <- models.Reply{Client: client, Message: responseBytes}

		default:
			log.Printf("Unknown message type '%s' received from client %s", wsMessage.Type, client.ID)
		}
	}
}

// writePump is the only writer on the connection.
func (wh *WebSocketHandler) writePump(client *models.Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-client.Send:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := client.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				log.Printf("Error getting writer for client %s: %v", client.ID, err)
				return
			}
			w.Write(message)

			n := len(client.Send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-client.Send)
			}

			if err := w.Close(); err != nil {
				log.Printf("Error closing writer for client %s: %v", client.ID, err)
				return
			}

		case <-ticker.C:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("Error sending ping to client %s: %v", client.ID, err)
				return
			}
		}
	}
}
