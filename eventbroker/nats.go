package eventbroker

import (
	"context"
	"encoding/json"
	"log"
	"strconv"

	"jogakzip/models"

	"github.com/nats-io/nats.go"
)

const DefaultSubjectPrefix = "jogakzip"

// NatsPublisher forwards change events to NATS on "<prefix>.<event type>",
// e.g. "jogakzip.post.created".
type NatsPublisher struct {
	nc     *nats.Conn
	prefix string
}

func NewNatsPublisher(nc *nats.Conn, prefix string) *NatsPublisher {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &NatsPublisher{nc: nc, prefix: prefix}
}

func Connect(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("jogakzip-api"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Printf("NATS disconnected: %v", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("NATS reconnected to %s", nc.ConnectedUrl())
		}),
	)
}

func (p *NatsPublisher) Publish(ctx context.Context, event models.Event) {
	msg, err := p.message(event)
	if err != nil {
		log.Printf("Error encoding %s event: %v", event.Type, err)
		return
	}
	if err := p.nc.PublishMsg(msg); err != nil {
		log.Printf("Error publishing %s to NATS: %v", msg.Subject, err)
	}
}

func (p *NatsPublisher) Subject(eventType string) string {
	return p.prefix + "." + eventType
}

func (p *NatsPublisher) message(event models.Event) (*nats.Msg, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}

	msg := nats.NewMsg(p.Subject(event.Type))
	msg.Data = data
	msg.Header.Set("Content-Type", "application/json")
	msg.Header.Set("Group-Id", strconv.FormatUint(uint64(event.GroupID), 10))
	return msg, nil
}
