package services

import (
	"context"
	"encoding/json"
	"log"

	"jogakzip/models"
)

// HubService fans change events out to websocket subscribers of a group.
// All hub maps are owned by the Run goroutine.
type HubService struct {
	hub *models.Hub
}

func NewHubService() *HubService {
	hub := models.NewHub()
	service := &HubService{hub: hub}

	go service.Run()

	return service
}

func (h *HubService) GetHub() *models.Hub {
	return h.hub
}

func (h *HubService) Run() {
	for {
		select {
		case client := <-h.hub.Register:
			h.registerClient(client)

		case client := <-h.hub.Unregister:
			h.unregisterClient(client)

		case event := <-h.hub.Publish:
			h.broadcastToTopic(event)

		case reply := <-h.hub.Reply:
			h.deliver(reply.Client, reply.Message)
		}
	}
}

// Publish never blocks the request; events are dropped when the queue is full.
func (h *HubService) Publish(ctx context.Context, event models.Event) {
	select {
	case h.hub.Publish <- event:
	default:
		log.Printf("Hub queue full, dropping %s event for %s", event.Type, event.Topic())
	}
}

func (h *HubService) registerClient(client *models.Client) {
	h.hub.Clients[client] = true
	h.hub.TopicClients[client.Topic] = append(h.hub.TopicClients[client.Topic], client)
	log.Printf("Client %s subscribed to %s", client.ID, client.Topic)
}

func (h *HubService) unregisterClient(client *models.Client) {
	if _, ok := h.hub.Clients[client]; !ok {
		return
	}
	delete(h.hub.Clients, client)
	close(client.Send)
	h.removeFromTopic(client)
	log.Printf("Client %s unsubscribed from %s", client.ID, client.Topic)
}

func (h *HubService) removeFromTopic(client *models.Client) {
	clients := h.hub.TopicClients[client.Topic]
	for i, c := range clients {
		if c == client {
			h.hub.TopicClients[client.Topic] = append(clients[:i], clients[i+1:]...)
			break
		}
	}
	if len(h.hub.TopicClients[client.Topic]) == 0 {
		delete(h.hub.TopicClients, client.Topic)
	}
}

func (h *HubService) broadcastToTopic(event models.Event) {
	topic := event.Topic()
	clients := h.hub.TopicClients[topic]
	if len(clients) == 0 {
		return
	}

	messageBytes, err := json.Marshal(models.WSMessage{
		Type:  event.Type,
		Topic: topic,
		Data:  event.Data,
	})
	if err != nil {
		log.Printf("Error marshaling WebSocket message: %v", err)
		return
	}

	for _, client := range append([]*models.Client(nil), clients...) {
		h.deliver(client, messageBytes)
	}
}

// deliver is the only place besides unregisterClient that writes to Send.
// Slow consumers are unregistered instead of stalling the hub.
func (h *HubService) deliver(client *models.Client, message []byte) {
	if _, ok := h.hub.Clients[client]; !ok {
		return
	}

	select {
	case client.Send <- message:
	default:
		log.Printf("Send buffer full for client %s, dropping it", client.ID)
		h.unregisterClient(client)
	}
}
