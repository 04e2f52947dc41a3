package events

import (
	"context"
	"log/slog"
	"time"

	"cloud.google.com/go/pubsub"
)

// PubSubEmitter publishes domain events to a Google Cloud Pub/Sub topic,
// creating it on first use if it does not already exist.
type PubSubEmitter struct {
	client *pubsub.Client
	topic  *pubsub.Topic
	source string
	seq    eventIDSeq
	log    *slog.Logger
}

// NewPubSubEmitter dials projectID and ensures topicID exists.
func NewPubSubEmitter(ctx context.Context, projectID, topicID string) (*PubSubEmitter, error) {
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, err
	}

	topic := client.Topic(topicID)
	exists, err := topic.Exists(ctx)
	if err != nil {
		client.Close()
		return nil, err
	}
	if !exists {
		topic, err = client.CreateTopic(ctx, topicID)
		if err != nil {
			client.Close()
			return nil, err
		}
	}

	return &PubSubEmitter{
		client: client,
		topic:  topic,
		source: "syncx",
		seq:    eventIDSeq{source: "syncx"},
		log:    slog.With("component", "events"),
	}, nil
}

// Emit publishes data as a CloudEvent. Publish failures are logged, not
// returned: a lost notification never blocks the RPC or worker step that
// raised it.
func (e *PubSubEmitter) Emit(eventType, subject string, data map[string]interface{}) {
	event := newCloudEvent(e.seq.next(), eventType, e.source, subject, data)
	payload, err := event.JSON()
	if err != nil {
		e.log.Error("encode event", "event_id", event.ID, "err", err)
		return
	}

	msg := &pubsub.Message{
		Data: payload,
		Attributes: map[string]string{
			"ce-specversion": event.SpecVersion,
			"ce-type":        event.Type,
			"ce-source":      event.Source,
			"ce-id":          event.ID,
			"ce-time":        event.Time.Format(time.RFC3339Nano),
		},
		OrderingKey: subject,
	}

	result := e.topic.Publish(context.Background(), msg)
	go func() {
		if _, err := result.Get(context.Background()); err != nil {
			e.log.Error("publish event", "event_id", event.ID, "type", event.Type, "err", err)
		}
	}()
}

func (e *PubSubEmitter) Close() error {
	e.topic.Stop()
	return e.client.Close()
}
