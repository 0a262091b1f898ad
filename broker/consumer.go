package broker

import (
	"log"

	"quill-notes/quill/config"

	"github.com/nats-io/nats.go"
)

// Consumer subscribes to a set of subjects and exposes received messages
// on a channel. Subscriptions in the same queue group share work across
// API instances.
type Consumer struct {
	conn     *nats.Conn
	subs     []*nats.Subscription
	messages chan *nats.Msg
}

func InitConsumer(cfg config.Config, subjects []string, queueGroup string) (*Consumer, error) {
	conn, err := nats.Connect(cfg.NatsURL,
		nats.Name("quill-consumer-"+queueGroup),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, err
	}

	c := &Consumer{
		conn:     conn,
		messages: make(chan *nats.Msg, 256),
	}

	handler := func(msg *nats.Msg) {
		select {
		case c.messages <- msg:
		default:
			log.Printf("Consumer channel full, dropping message on %s", msg.Subject)
		}
	}

	for _, subject := range subjects {
		var sub *nats.Subscription
		if queueGroup == "" {
			// Fan-out subscription: every instance receives the message.
			sub, err = conn.Subscribe(subject, handler)
		} else {
			sub, err = conn.QueueSubscribe(subject, queueGroup, handler)
		}
		if err != nil {
			c.Close()
			return nil, err
		}
		c.subs = append(c.subs, sub)
	}

	log.Printf("NATS consumer subscribed to %v (group %s)", subjects, queueGroup)
	return c, nil
}

func (c *Consumer) GetMessageChannel() chan *nats.Msg {
	return c.messages
}

func (c *Consumer) Close() {
	for _, sub := range c.subs {
		sub.Unsubscribe()
	}
	if c.conn != nil {
		c.conn.Close()
	}
}
