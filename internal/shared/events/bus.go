package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/EventStore/EventStore-Client-Go/v4/esdb"
	"github.com/LohithR22/DoseWise/internal/shared/config"
	"github.com/google/uuid"
)

// Event types published by the service
const (
	TypeCycleCompleted   = "cycle.completed"
	TypeCycleFailed      = "cycle.failed"
	TypeDoseConfirmed    = "dose.confirmed"
	TypeVitalsRecorded   = "vitals.recorded"
	TypeEscalationRaised = "escalation.raised"
	TypeReorderRequested = "reorder.requested"
)

// Event represents an audit event for a patient
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Source    string    `json:"source"`
	PatientID string    `json:"patient_id"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// NewEvent creates a new event with auto-generated ID and timestamp
func NewEvent(eventType, patientID string, data any) Event {
	return Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    "dosewise",
		PatientID: patientID,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// Handler is a function that handles an event
type Handler func(ctx context.Context, event Event) error

// Bus publishes audit events to EventStoreDB. One stream per patient.
type Bus struct {
	client *esdb.Client
	prefix string
}

// NewBus creates a new event bus connected to EventStoreDB. A disabled
// configuration yields a nil bus and no error; callers treat a nil bus
// as a no-op so no publish attempt ever reaches the network.
func NewBus(ctx context.Context, cfg config.EventStoreConfig) (*Bus, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	settings, err := esdb.ParseConnectionString(buildConnectionString(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	client, err := esdb.NewClient(settings)
	if err != nil {
		return nil, fmt.Errorf("failed to create event store client: %w", err)
	}

	return &Bus{client: client, prefix: "dosewise"}, nil
}

func buildConnectionString(cfg config.EventStoreConfig) string {
	var auth string
	if cfg.Username != "" && cfg.Password != "" {
		auth = fmt.Sprintf("%s:%s@", cfg.Username, cfg.Password)
	}

	params := ""
	if cfg.Insecure {
		params = "?tls=false&tlsVerifyCert=false"
	}

	return fmt.Sprintf("esdb://%s%s:%d%s", auth, cfg.Host, cfg.Port, params)
}

// Publish appends an event to the patient's audit stream
func (b *Bus) Publish(ctx context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	stream := fmt.Sprintf("%s-%s", b.prefix, event.PatientID)

	eventID, err := uuid.Parse(event.ID)
	if err != nil {
		eventID = uuid.New()
	}

	esdbEvent := esdb.EventData{
		EventType:   event.Type,
		ContentType: esdb.ContentTypeJson,
		Data:        data,
		EventID:     eventID,
	}

	_, err = b.client.AppendToStream(ctx, stream, esdb.AppendToStreamOptions{
		ExpectedRevision: esdb.Any{},
	}, esdbEvent)
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

// Subscribe creates a catch-up subscription to a patient's audit stream
func (b *Bus) Subscribe(ctx context.Context, patientID string, handler Handler) error {
	stream := fmt.Sprintf("%s-%s", b.prefix, patientID)

	sub, err := b.client.SubscribeToStream(ctx, stream, esdb.SubscribeToStreamOptions{
		From: esdb.End{},
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to stream: %w", err)
	}

	go func() {
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			resolved := sub.Recv()
			if resolved.SubscriptionDropped != nil {
				log.Printf("events: subscription dropped: %v", resolved.SubscriptionDropped.Error)
				return
			}
			if resolved.EventAppeared == nil {
				continue
			}

			var event Event
			if err := json.Unmarshal(resolved.EventAppeared.OriginalEvent().Data, &event); err != nil {
				log.Printf("events: failed to decode event: %v", err)
				continue
			}

			if err := handler(ctx, event); err != nil {
				log.Printf("events: handler error for %s: %v", event.Type, err)
			}
		}
	}()

	return nil
}

// Health checks the event store connection
func (b *Bus) Health() error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	stream, err := b.client.ReadAll(ctx, esdb.ReadAllOptions{}, 1)
	if err != nil {
		return fmt.Errorf("event store not reachable: %w", err)
	}
	stream.Close()
	return nil
}

// Close closes the event store connection
func (b *Bus) Close() {
	if b.client != nil {
		b.client.Close()
	}
}
