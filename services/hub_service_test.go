package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"jogakzip/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, client *models.Client) models.WSMessage {
	t.Helper()

	select {
	case raw, ok := <-client.Send:
		require.True(t, ok, "send channel closed")
		var msg models.WSMessage
		require.NoError(t, json.Unmarshal(raw, &msg))
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message delivered")
		return models.WSMessage{}
	}
}

func TestHubDeliversToGroupTopic(t *testing.T) {
	hubService := NewHubService()
	hub := hubService.GetHub()

	subscriber := models.NewClient(hub, nil, models.GroupTopic(1))
	other := models.NewClient(hub, nil, models.GroupTopic(2))
	hub.Register <- subscriber
	hub.Register <- other

	hubService.Publish(context.Background(), models.Event{
		Type:    models.EventPostCreated,
		GroupID: 1,
		Data:    map[string]string{"title": "day one"},
	})

	msg := receive(t, subscriber)
	assert.Equal(t, models.EventPostCreated, msg.Type)
	assert.Equal(t, "groups.1", msg.Topic)

	select {
	case <-other.Send:
		t.Fatal("event leaked to another group")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubUnregisterClosesSend(t *testing.T) {
	hubService := NewHubService()
	hub := hubService.GetHub()

	client := models.NewClient(hub, nil, models.GroupTopic(7))
	hub.Register <- client
	hub.Unregister <- client
	// A second unregister must be a no-op.
	hub.Unregister <- client

	select {
	case _, ok := <-client.Send:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("send channel not closed")
	}
}

func TestHubDropsSlowConsumerAndIgnoresLateReplies(t *testing.T) {
	hubService := NewHubService()
	hub := hubService.GetHub()

	slow := models.NewClient(hub, nil, models.GroupTopic(4))
	hub.Register <- slow
	for i := 0; i < cap(slow.Send); i++ {
		slow.Send <- []byte("{}")
	}

	hubService.Publish(context.Background(), models.Event{Type: models.EventGroupLiked, GroupID: 4})

	deadline := time.After(time.Second)
	for closed := false; !closed; {
		select {
		case _, ok := <-slow.Send:
			closed = !ok
		case <-deadline:
			t.Fatal("slow client was not dropped")
		}
	}

	// A reply for a dropped client must not touch its closed channel.
	hub.Reply <- models.Reply{Client: slow, Message: []byte(`{"type":"client_connected"}`)}

	healthy := models.NewClient(hub, nil, models.GroupTopic(4))
	hub.Register <- healthy
	hubService.Publish(context.Background(), models.Event{Type: models.EventPostCreated, GroupID: 4})

	msg := receive(t, healthy)
	assert.Equal(t, models.EventPostCreated, msg.Type)
}

func TestHubRepliesToRegisteredClient(t *testing.T) {
	hubService := NewHubService()
	hub := hubService.GetHub()

	client := models.NewClient(hub, nil, models.GroupTopic(5))
	hub.Register <- client
	hub.Reply <- models.Reply{Client: client, Message: []byte(`{"type":"client_connected","data":null}`)}

	msg := receive(t, client)
	assert.Equal(t, "client_connected", msg.Type)
}

func TestPublishersFanOut(t *testing.T) {
	a := &mockPublisher{}
	b := &mockPublisher{}
	event := models.Event{Type: models.EventGroupLiked, GroupID: 3}
	a.On("Publish", context.Background(), event).Once()
	b.On("Publish", context.Background(), event).Once()

	Publishers{a, nil, b}.Publish(context.Background(), event)

	a.AssertExpectations(t)
	b.AssertExpectations(t)
}
