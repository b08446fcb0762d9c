// Package notify broadcasts emergency alerts to an external sink.
// Delivery is best effort: callers log and count failures, nothing retries.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"

	rediscommon "github.com/avadhootsavle/hackispiration-hackathon/common/redis"
	"github.com/avadhootsavle/hackispiration-hackathon/internal/domain"
)

// Alert is the broadcast payload for an emergency request.
type Alert struct {
	RequestID      string           `json:"requestId"`
	BloodType      domain.BloodType `json:"bloodType"`
	Units          domain.Count     `json:"units"`
	City           string           `json:"city"`
	Urgency        string           `json:"urgency"`
	ClinicalReason string           `json:"clinicalReason,omitempty"`
	RequestedBy    string           `json:"requestedBy,omitempty"`
	Contact        string           `json:"contact,omitempty"`
	Matches        int              `json:"matches"`
	RaisedAt       string           `json:"raisedAt"`
}

// Notifier publishes alerts.
type Notifier interface {
	Notify(ctx context.Context, alert Alert) error
	Name() string
}

// Nop drops every alert.
type Nop struct{}

func (Nop) Notify(context.Context, Alert) error { return nil }
func (Nop) Name() string { return "none" }

// Publisher is the subset of the MQTT client used here.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload []byte) error
	QoS() byte
}

// MQTTNotifier publishes alerts as JSON on one topic.
type MQTTNotifier struct {
	pub   Publisher
	topic string
}

func NewMQTTNotifier(pub Publisher, topic string) *MQTTNotifier {
	return &MQTTNotifier{pub: pub, topic: topic}
}

func (n *MQTTNotifier) Name() string { return "mqtt" }

func (n *MQTTNotifier) Notify(_ context.Context, alert Alert) error {
	payload, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("encode alert: %w", err)
	}
	return n.pub.Publish(n.topic, n.pub.QoS(), false, payload)
}

// StreamNotifier appends alerts to a Redis stream capped at about maxLen entries.
type StreamNotifier struct {
	client *redis.Client
	stream string
	maxLen int64
}

func NewStreamNotifier(client *redis.Client, stream string, maxLen int64) *StreamNotifier {
	return &StreamNotifier{client: client, stream: stream, maxLen: maxLen}
}

func (n *StreamNotifier) Name() string { return "stream" }

func (n *StreamNotifier) Notify(ctx context.Context, alert Alert) error {
	if _, err := rediscommon.PublishJSONToStream(ctx, n.client, n.stream, n.maxLen, alert); err != nil {
		return fmt.Errorf("xadd %s: %w", n.stream, err)
	}
	return nil
}

// Recent returns up to count alerts, newest first. Entries that fail to
// decode are skipped.
func (n *StreamNotifier) Recent(ctx context.Context, count int64) ([]Alert, error) {
	msgs, err := rediscommon.LatestFromStream(ctx, n.client, n.stream, count)
	if err != nil {
		return nil, fmt.Errorf("xrevrange %s: %w", n.stream, err)
	}
	out := make([]Alert, 0, len(msgs))
	for _, m := range msgs {
		raw, ok := m.Values["data"].(string)
		if !ok {
			continue
		}
		var a Alert
		if err := json.Unmarshal([]byte(raw), &a); err != nil {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}
