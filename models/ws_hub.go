package models

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type Hub struct {
	Clients      map[*Client]bool
	Publish      chan Event
	Register     chan *Client
	Unregister   chan *Client
	Reply        chan Reply
	TopicClients map[string][]*Client
}

// Reply is a message addressed to a single client. The hub drops it once the
// client has been unregistered.
type Reply struct {
	Client  *Client
	Message []byte
}

// Client is one websocket subscriber. Topic is the group feed it listens to.
type Client struct {
	ID    string
	Hub   *Hub
	Conn  *websocket.Conn
	Send  chan []byte
	Topic string
}

type WSMessage struct {
	Type     string      `json:"type"`
	Topic    string      `json:"topic,omitempty"`
	Data     interface{} `json:"data"`
	ClientID string      `json:"client_id,omitempty"`
}

const (
	EventGroupUpdated   = "group.updated"
	EventGroupDeleted   = "group.deleted"
	EventGroupLiked     = "group.liked"
	EventPostCreated    = "post.created"
	EventPostUpdated    = "post.updated"
	EventPostDeleted    = "post.deleted"
	EventPostLiked      = "post.liked"
	EventCommentCreated = "comment.created"
	EventCommentUpdated = "comment.updated"
	EventCommentDeleted = "comment.deleted"
)

// Event is a change notification about a readable resource inside a group.
type Event struct {
	Type    string      `json:"type"`
	GroupID uint        `json:"groupId"`
	Data    interface{} `json:"data"`
}

func (e Event) Topic() string {
	return GroupTopic(e.GroupID)
}

func GroupTopic(groupID uint) string {
	return fmt.Sprintf("groups.%d", groupID)
}

func NewHub() *Hub {
	return &Hub{
		Clients:      make(map[*Client]bool),
		Publish:      make(chan Event, 64),
		Register:     make(chan *Client),
		Unregister:   make(chan *Client),
		Reply:        make(chan Reply, 64),
		TopicClients: make(map[string][]*Client),
	}
}

func NewClient(hub *Hub, conn *websocket.Conn, topic string) *Client {
	return &Client{
		ID:    uuid.New().String(),
		Hub:   hub,
		Conn:  conn,
		Send:  make(chan []byte, 256),
		Topic: topic,
	}
}
