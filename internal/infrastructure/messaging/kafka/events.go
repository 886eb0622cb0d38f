package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/simheat/pkg/errors"
)

const (
	TopicHeatmapRendered   = "simheat.heatmap.rendered"
	EventTypeHeatmapRender = "heatmap.rendered"
	SchemaVersion          = "v1"
)

// EventEnvelope wraps every published event.
type EventEnvelope struct {
	EventID       string            `json:"event_id"`
	EventType     string            `json:"event_type"`
	Source        string            `json:"source"`
	Timestamp     time.Time         `json:"timestamp"`
	SchemaVersion string            `json:"schema_version"`
	Payload       json.RawMessage   `json:"payload"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// HeatmapRenderedPayload describes one finished heatmap.
type HeatmapRenderedPayload struct {
	Dataset    string    `json:"dataset"`
	Output     string    `json:"output,omitempty"`
	Format     string    `json:"format"`
	Atoms      int       `json:"atoms"`
	Bytes      int       `json:"bytes"`
	Missing    int       `json:"missing"`
	Symmetric  bool      `json:"symmetric"`
	ObjectKey  string    `json:"object_key,omitempty"`
	URL        string    `json:"url,omitempty"`
	DurationMs int64     `json:"duration_ms"`
	RenderedAt time.Time `json:"rendered_at"`
}

func NewEventEnvelope(eventType, source string, payload interface{}) (*EventEnvelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeEventEncodeFailed, "failed to marshal payload")
	}
	return &EventEnvelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		SchemaVersion: SchemaVersion,
		Payload:       data,
	}, nil
}

func (e *EventEnvelope) DecodePayload(target interface{}) error {
	if len(e.Payload) == 0 || string(e.Payload) == "null" {
		return errors.New(errors.ErrCodeEventEncodeFailed, "empty payload")
	}
	if err := json.Unmarshal(e.Payload, target); err != nil {
		return errors.Wrap(err, errors.ErrCodeEventEncodeFailed, "failed to decode payload")
	}
	return nil
}

// ToMessage encodes the envelope. The key groups a dataset's events on one
// partition.
func (e *EventEnvelope) ToMessage(topic string, key string) (*Message, error) {
	val, err := json.Marshal(e)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeEventEncodeFailed, "failed to marshal envelope")
	}
	return &Message{
		Topic: topic,
		Key:   []byte(key),
		Value: val,
		Headers: map[string]string{
			"event_type":     e.EventType,
			"source_service": e.Source,
			"schema_version": e.SchemaVersion,
		},
		Timestamp: e.Timestamp,
	}, nil
}

func DecodeEnvelope(value []byte) (*EventEnvelope, error) {
	if len(value) == 0 {
		return nil, errors.New(errors.ErrCodeEventEncodeFailed, "empty message value")
	}
	var env EventEnvelope
	if err := json.Unmarshal(value, &env); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeEventEncodeFailed, "failed to unmarshal envelope")
	}
	return &env, nil
}

type publisher interface {
	Publish(ctx context.Context, msg *Message) error
}

// RenderEventPublisher emits "heatmap rendered" events.
type RenderEventPublisher struct {
	producer publisher
	topic    string
	source   string
}

func NewRenderEventPublisher(p *Producer, topic, source string) *RenderEventPublisher {
	return newRenderEventPublisher(p, topic, source)
}

func newRenderEventPublisher(p publisher, topic, source string) *RenderEventPublisher {
	if topic == "" {
		topic = TopicHeatmapRendered
	}
	if source == "" {
		source = "simheat"
	}
	return &RenderEventPublisher{producer: p, topic: topic, source: source}
}

func (r *RenderEventPublisher) Topic() string { return r.topic }

func (r *RenderEventPublisher) PublishRendered(ctx context.Context, payload HeatmapRenderedPayload) error {
	env, err := NewEventEnvelope(EventTypeHeatmapRender, r.source, payload)
	if err != nil {
		return err
	}
	msg, err := env.ToMessage(r.topic, payload.Dataset)
	if err != nil {
		return err
	}
	return r.producer.Publish(ctx, msg)
}

//Personal.AI order the ending
