package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
)

// NATSPublisher publishes JSON payloads to a NATS subject per event.
type NATSPublisher struct {
	nc *nats.Conn
}

// ConnectNATS dials the given NATS URL. An empty URL returns a nil publisher,
// which Emit treats as "no bus configured".
func ConnectNATS(url string) (*NATSPublisher, error) {
	if url == "" {
		return nil, nil
	}
	nc, err := nats.Connect(url, nats.Name("openbooks"))
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS: %w", err)
	}
	return &NATSPublisher{nc: nc}, nil
}

// Publish marshals payload and publishes it on subject.
func (p *NATSPublisher) Publish(_ context.Context, subject string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling %s payload: %w", subject, err)
	}
	if err := p.nc.Publish(subject, data); err != nil {
		return fmt.Errorf("publishing %s: %w", subject, err)
	}
	return nil
}

// Close drains the connection.
func (p *NATSPublisher) Close() {
	if p != nil && p.nc != nil {
		p.nc.Close()
	}
}
