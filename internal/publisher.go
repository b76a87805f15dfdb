package internal

import (
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/bytedance/sonic"
	"github.com/google/uuid"
)

// EventEnvelope is the message payload published for bridged events.
type EventEnvelope struct {
	OccurredAt time.Time `json:"occurred_at"`
	ID         string    `json:"id"`
	Event      string    `json:"event"`
	Method     string    `json:"method,omitempty"`
	Path       string    `json:"path,omitempty"`
	Route      string    `json:"route,omitempty"`
	RequestID  string    `json:"request_id,omitempty"`
	Status     int       `json:"status,omitempty"`
}

// Metadata keys set on every bridged message.
const (
	MetadataEvent     = "proton_event"
	MetadataRequestID = "proton_request_id"
)

// lifecycleEvents are bridged when no event names are given.
var lifecycleEvents = []string{
	EventRequestReceived,
	EventResponseBefore,
	EventResponseBeforeSend,
	EventResponseAfter,
}

type eventBridge struct {
	publisher message.Publisher
	logger    func() *slog.Logger
	topic     string
}

func newEnvelope(e *Event) EventEnvelope {
	env := EventEnvelope{
		ID:         uuid.NewString(),
		Event:      e.Name(),
		OccurredAt: time.Now().UTC(),
	}
	if r := e.Request(); r != nil {
		env.Method = r.Method
		env.Path = r.URL.Path
		env.RequestID = RequestIDFromContext(r.Context())
	}
	if res := e.Response(); res != nil {
		env.Status = res.Status()
		if env.RequestID == "" {
			env.RequestID = res.Header().Get(HeaderRequestID)
		}
	}
	if route := e.Route(); route != nil {
		env.Route = route.Pattern
	}
	return env
}

// forward publishes the event. Publish failures are logged, never returned,
// so a broker outage cannot fail a request.
func (b *eventBridge) forward(e *Event) error {
	env := newEnvelope(e)
	payload, err := sonic.ConfigStd.Marshal(env)
	if err != nil {
		b.logger().ErrorContext(e.Context(), "failed to encode event", slog.String("event", e.Name()), slog.Any("error", err))
		return nil
	}

	msg := message.NewMessage(env.ID, payload)
	msg.Metadata.Set(MetadataEvent, env.Event)
	if env.RequestID != "" {
		msg.Metadata.Set(MetadataRequestID, env.RequestID)
	}
	if err := b.publisher.Publish(b.topic, msg); err != nil {
		b.logger().WarnContext(e.Context(), "failed to publish event",
			slog.String("event", e.Name()),
			slog.String("topic", b.topic),
			slog.Any("error", err),
		)
	}
	return nil
}
