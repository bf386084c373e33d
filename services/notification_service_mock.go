package services

import (
	"fmt"
	"sync"
)

// SentNotification records one call to the mock notifier
type SentNotification struct {
	Recipient string
	Template  string
	Args      map[string]string
}

// MockNotifier is a Notifier implementation for testing. It records every call
// and can be told to fail.
type MockNotifier struct {
	mu        sync.Mutex
	sent      []SentNotification
	FailSends bool
}

// NewMockNotifier creates a new mock notifier
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

// Notify records the notification, then fails if FailSends is set
func (m *MockNotifier) Notify(recipientEmail, templateName string, args map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sent = append(m.sent, SentNotification{
		Recipient: recipientEmail,
		Template:  templateName,
		Args:      args,
	})

	if m.FailSends {
		return fmt.Errorf("mock notifier configured to fail")
	}
	return nil
}

// Sent returns a copy of the recorded notifications
func (m *MockNotifier) Sent() []SentNotification {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]SentNotification, len(m.sent))
	copy(out, m.sent)
	return out
}

// Reset clears the recorded notifications
func (m *MockNotifier) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = nil
}
