package alert

import (
	"context"
	"fmt"

	"github.com/jinjernot/wg-sub000/internal/adapter"
)

type natsSink struct {
	conn          adapter.NatsConn
	json          adapter.JSON
	subjectPrefix string
}

// NewNatsSink creates a sink publishing alert events on <prefix>.<kind>
func NewNatsSink(conn adapter.NatsConn, json adapter.JSON, subjectPrefix string) Sink {
	return &natsSink{
		conn:          conn,
		json:          json,
		subjectPrefix: subjectPrefix,
	}
}

func (n *natsSink) Name() string {
	return "nats"
}

func (n *natsSink) Send(ctx context.Context, a Alert) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := n.json.Marshal(NewEvent(a))
	if err != nil {
		return fmt.Errorf("failed to encode alert event: %w", err)
	}
	subject := n.subjectPrefix + "." + string(a.Kind)
	if err := n.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish alert event to %s: %w", subject, err)
	}
	return nil
}
