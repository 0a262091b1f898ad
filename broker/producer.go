package broker

import (
	"log"

	"quill-notes/quill/config"

	"github.com/nats-io/nats.go"
)

// ProducerInterface publishes messages to the broker. Publishing is
// fire-and-forget: a failed publish is logged by callers, never propagated
// to the user-facing operation that triggered it.
type ProducerInterface interface {
	PublishMessage(subject string, data []byte) error
	Close()
}

type Producer struct {
	conn *nats.Conn
}

// DefaultProducer is set by InitProducer in main. It stays nil when the
// broker is unavailable; callers must treat that as "sink disabled".
var DefaultProducer ProducerInterface

func InitProducer(cfg config.Config) (*Producer, error) {
	conn, err := nats.Connect(cfg.NatsURL,
		nats.Name("quill-api"),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, err
	}

	log.Printf("NATS producer connected to %s", cfg.NatsURL)
	return &Producer{conn: conn}, nil
}

func (p *Producer) PublishMessage(subject string, data []byte) error {
	return p.conn.Publish(subject, data)
}

func (p *Producer) Close() {
	if p.conn != nil {
		p.conn.Drain()
	}
}
