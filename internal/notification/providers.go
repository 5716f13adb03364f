package notification

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MockProvider is an in-memory provider for testing
type MockProvider struct {
	mu         sync.RWMutex
	sent       []*Message
	failOnSend bool
	sendDelay  time.Duration
}

// NewMockProvider creates a new mock provider
func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

// Send records the message (mock implementation)
func (p *MockProvider) Send(ctx context.Context, msg *Message) error {
	if p.sendDelay > 0 {
		time.Sleep(p.sendDelay)
	}
	if p.failOnSend {
		return fmt.Errorf("mock send failure")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, msg)
	return nil
}

// SetFailOnSend sets whether Send should fail
func (p *MockProvider) SetFailOnSend(fail bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failOnSend = fail
}

// SetSendDelay sets artificial delay for Send
func (p *MockProvider) SetSendDelay(delay time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sendDelay = delay
}

// SentMessages returns all delivered messages
func (p *MockProvider) SentMessages() []*Message {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]*Message, len(p.sent))
	copy(out, p.sent)
	return out
}

// ConsoleProvider prints messages to stdout, used when email is not
// configured in development
type ConsoleProvider struct{}

// NewConsoleProvider creates a console provider
func NewConsoleProvider() *ConsoleProvider {
	return &ConsoleProvider{}
}

// Send prints the message
func (p *ConsoleProvider) Send(ctx context.Context, msg *Message) error {
	fmt.Printf("[%s] To: %s, Subject: %s\n", msg.Kind, msg.Recipient, msg.Subject)
	return nil
}
