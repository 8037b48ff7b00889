package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// PredictionEvent is published after every served prediction
type PredictionEvent struct {
	RequestID      string    `json:"request_id"`
	ModelVersion   string    `json:"model_version"`
	UserID         *int64    `json:"user_id,omitempty"`
	City           string    `json:"city"`
	PropertyType   string    `json:"type"`
	PredictedPrice float64   `json:"predicted_price"`
	Anomalies      int       `json:"anomalies"`
	At             time.Time `json:"at"`
}

// DriftEvent is published when a field falls back to its default
type DriftEvent struct {
	ModelVersion string    `json:"model_version"`
	Feature      string    `json:"feature"`
	Value        string    `json:"value"`
	Kind         string    `json:"kind"`
	Count        int64     `json:"count"`
	At           time.Time `json:"at"`
}

// Publisher emits domain events
type Publisher interface {
	PublishPrediction(evt PredictionEvent) error
	PublishDrift(evt DriftEvent) error
	Close() error
}

// NopPublisher drops every event
type NopPublisher struct{}

func (NopPublisher) PublishPrediction(PredictionEvent) error { return nil }
func (NopPublisher) PublishDrift(DriftEvent) error           { return nil }
func (NopPublisher) Close() error                            { return nil }

// conn is the part of *nats.Conn the publisher needs
type conn interface {
	Publish(subj string, data []byte) error
	Drain() error
}

// NATSPublisher publishes JSON events on <prefix>.completed and <prefix>.drift
type NATSPublisher struct {
	conn   conn
	prefix string
}

// NewNATSPublisher connects to url
func NewNATSPublisher(url, prefix string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("lumina-analytics"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return newNATSPublisher(nc, prefix), nil
}

func newNATSPublisher(c conn, prefix string) *NATSPublisher {
	return &NATSPublisher{conn: c, prefix: prefix}
}

// CompletedSubject is where prediction events go
func (p *NATSPublisher) CompletedSubject() string {
	return p.prefix + ".completed"
}

// DriftSubject is where drift events go
func (p *NATSPublisher) DriftSubject() string {
	return p.prefix + ".drift"
}

func (p *NATSPublisher) PublishPrediction(evt PredictionEvent) error {
	return p.publish(p.CompletedSubject(), evt)
}

func (p *NATSPublisher) PublishDrift(evt DriftEvent) error {
	return p.publish(p.DriftSubject(), evt)
}

// Close flushes pending messages and closes the connection
func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}

func (p *NATSPublisher) publish(subject string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish %s: %w", subject, err)
	}
	return nil
}
