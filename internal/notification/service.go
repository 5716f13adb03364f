package notification

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/LohithR22/DoseWise/internal/shared/metrics"
)

// Provider delivers a message over one channel
type Provider interface {
	Send(ctx context.Context, msg *Message) error
}

// ServiceConfig holds the worker and retry settings
type ServiceConfig struct {
	Workers       int
	BufferSize    int
	RetryAttempts int
	RetryDelay    time.Duration
}

// DefaultServiceConfig returns the default worker configuration
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		Workers:       2,
		BufferSize:    256,
		RetryAttempts: 3,
		RetryDelay:    10 * time.Second,
	}
}

// Service queues messages and delivers them through a worker pool. It
// implements the sender contract the agent's collaborators expect:
// SendReminder, SendEscalation, SendReorderTrigger, SendLowInventoryAlert.
type Service struct {
	provider  Provider
	recipient string

	mu      sync.RWMutex
	history map[string]*Message
	stats   Stats

	msgCh   chan *Message
	started bool
	stopCh  chan struct{}
	wg      sync.WaitGroup

	config ServiceConfig
}

// NewService creates a notification service. recipient is the default
// caregiver address used for every message.
func NewService(provider Provider, recipient string, config ServiceConfig) *Service {
	if config.Workers <= 0 {
		config = DefaultServiceConfig()
	}
	return &Service{
		provider:  provider,
		recipient: recipient,
		history:   make(map[string]*Message),
		msgCh:     make(chan *Message, config.BufferSize),
		stopCh:    make(chan struct{}),
		config:    config,
	}
}

// Start launches the delivery workers
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return fmt.Errorf("notification service already started")
	}
	s.started = true
	s.mu.Unlock()

	for i := 0; i < s.config.Workers; i++ {
		s.wg.Add(1)
		go s.worker(ctx)
	}
	return nil
}

// Stop drains the workers
func (s *Service) Stop() error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return fmt.Errorf("notification service not started")
	}
	s.mu.Unlock()

	close(s.stopCh)
	s.wg.Wait()
	return nil
}

// SendReminder queues a dose reminder for the medication
func (s *Service) SendReminder(ctx context.Context, medication string) error {
	return s.enqueue(&Message{
		Kind:    KindReminder,
		Subject: fmt.Sprintf("Medication Reminder - %s", medication),
		Body:    fmt.Sprintf("It is time to take %s. Please confirm the dose once taken.", medication),
	})
}

// SendEscalation queues a caregiver escalation with the given reason
func (s *Service) SendEscalation(ctx context.Context, reason string) error {
	return s.enqueue(&Message{
		Kind:    KindEscalation,
		Subject: fmt.Sprintf("Escalation Alert - %s", reason),
		Body:    fmt.Sprintf("The monitoring assistant flagged a condition that needs attention: %s. Please check on the patient.", reason),
	})
}

// SendReorderTrigger queues a reorder notice for the medication
func (s *Service) SendReorderTrigger(ctx context.Context, medication string) error {
	return s.enqueue(&Message{
		Kind:    KindReorder,
		Subject: fmt.Sprintf("Reorder Requested - %s", medication),
		Body:    fmt.Sprintf("A refill request was created for %s. No action is needed unless the pharmacy contacts you.", medication),
	})
}

// SendLowInventoryAlert queues a low-stock warning for the medication
func (s *Service) SendLowInventoryAlert(ctx context.Context, medication string, quantity, threshold int) error {
	return s.enqueue(&Message{
		Kind:    KindLowInventory,
		Subject: fmt.Sprintf("Low Inventory Alert - %s", medication),
		Body:    fmt.Sprintf("Only %d units of %s remain (threshold %d). Consider ordering a refill.", quantity, medication, threshold),
	})
}

func (s *Service) enqueue(msg *Message) error {
	msg.ID = fmt.Sprintf("ntf-%d", time.Now().UnixNano())
	msg.Channel = ChannelEmail
	msg.Status = StatusPending
	msg.Recipient = s.recipient
	msg.CreatedAt = time.Now()
	msg.UpdatedAt = msg.CreatedAt

	s.mu.Lock()
	s.history[msg.ID] = msg
	s.mu.Unlock()

	select {
	case s.msgCh <- msg:
		return nil
	default:
		return fmt.Errorf("notification buffer full")
	}
}

func (s *Service) worker(ctx context.Context) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case msg := <-s.msgCh:
			s.deliver(ctx, msg)
		}
	}
}

func (s *Service) deliver(ctx context.Context, msg *Message) {
	err := s.provider.Send(ctx, msg)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		msg.ErrorMessage = err.Error()
		msg.RetryCount++
		if msg.RetryCount >= s.config.RetryAttempts {
			msg.Status = StatusFailed
			s.record(msg, false)
		} else {
			// The retry waiter joins the WaitGroup so Stop cannot return
			// while a message is still in flight; on shutdown the message
			// is marked failed instead of being dropped.
			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				select {
				case <-time.After(s.config.RetryDelay):
				case <-s.stopCh:
					s.failPending(msg)
					return
				}
				select {
				case <-s.stopCh:
					// Workers are gone; a requeue would strand the message
					// in the buffer.
					s.failPending(msg)
				case s.msgCh <- msg:
				}
			}()
		}
	} else {
		now := time.Now()
		msg.SentAt = &now
		msg.Status = StatusSent
		s.record(msg, true)
	}
	msg.UpdatedAt = time.Now()
}

// failPending marks a retry-pending message failed when the service
// shuts down before it could be redelivered.
func (s *Service) failPending(msg *Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg.Status = StatusFailed
	msg.ErrorMessage = "service stopped before retry"
	msg.UpdatedAt = time.Now()
	s.record(msg, false)
}

func (s *Service) record(msg *Message, success bool) {
	if s.stats.ByKind == nil {
		s.stats.ByKind = make(map[Kind]int64)
	}
	if s.stats.ByStatus == nil {
		s.stats.ByStatus = make(map[Status]int64)
	}
	s.stats.ByKind[msg.Kind]++
	s.stats.ByStatus[msg.Status]++
	if success {
		s.stats.TotalSent++
		metrics.RecordNotification(string(msg.Channel), "sent")
	} else {
		s.stats.TotalFailed++
		metrics.RecordNotification(string(msg.Channel), "failed")
	}
}

// GetMessage returns a queued or delivered message by ID
func (s *Service) GetMessage(id string) (*Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msg, ok := s.history[id]
	return msg, ok
}

// GetStats returns a copy of the delivery counters
func (s *Service) GetStats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := Stats{
		TotalSent:   s.stats.TotalSent,
		TotalFailed: s.stats.TotalFailed,
		ByKind:      make(map[Kind]int64, len(s.stats.ByKind)),
		ByStatus:    make(map[Status]int64, len(s.stats.ByStatus)),
	}
	for k, v := range s.stats.ByKind {
		out.ByKind[k] = v
	}
	for k, v := range s.stats.ByStatus {
		out.ByStatus[k] = v
	}
	return out
}
