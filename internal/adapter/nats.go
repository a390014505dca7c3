package adapter

import (
	"time"

	"github.com/nats-io/nats.go"
)

// NatsConn defines the subset of a NATS connection used to publish events
//
//go:generate mockgen -source=nats.go -destination=../mocks/nats.go -package=mocks -mock_names=NatsConn=MockNatsConn
type NatsConn interface {
	Publish(subject string, data []byte) error
	FlushTimeout(timeout time.Duration) error
	Close()
}

// ConnectNats dials a NATS server with reconnect handling
func ConnectNats(url string, name string, maxReconnects int, reconnectWait time.Duration) (NatsConn, error) {
	nc, err := nats.Connect(url,
		nats.Name(name),
		nats.MaxReconnects(maxReconnects),
		nats.ReconnectWait(reconnectWait),
	)
	if err != nil {
		return nil, err
	}
	return nc, nil
}
