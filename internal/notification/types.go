// Package notification delivers reminders, escalations and reorder
// alerts to the patient's caregiver. Delivery is asynchronous and
// failures never propagate back into the reasoning pipeline.
package notification

import "time"

// Channel is the delivery channel for a message
type Channel string

const (
	ChannelEmail   Channel = "email"
	ChannelConsole Channel = "console"
)

// Kind classifies a message
type Kind string

const (
	KindReminder       Kind = "reminder"
	KindEscalation     Kind = "escalation"
	KindReorder        Kind = "reorder"
	KindLowInventory   Kind = "low_inventory"
	KindMissedDose     Kind = "missed_dose"
	KindAbnormalVitals Kind = "abnormal_vitals"
)

// Status is the delivery lifecycle state of a message
type Status string

const (
	StatusPending Status = "pending"
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
)

// Message is one outbound notification
type Message struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	Channel   Channel   `json:"channel"`
	Status    Status    `json:"status"`
	Recipient string    `json:"recipient"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`

	RetryCount   int        `json:"retry_count"`
	ErrorMessage string     `json:"error_message,omitempty"`
	SentAt       *time.Time `json:"sent_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Stats aggregates delivery counters for the service
type Stats struct {
	TotalSent   int64            `json:"total_sent"`
	TotalFailed int64            `json:"total_failed"`
	ByKind      map[Kind]int64   `json:"by_kind"`
	ByStatus    map[Status]int64 `json:"by_status"`
}
