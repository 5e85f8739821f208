package utils

import (
	"sync"

	"github.com/stretchr/testify/mock"
)

// MockLogger records every call through testify's mock and keeps the
// emitted messages so tests can assert on them without setting expectations.
type MockLogger struct {
	mock.Mock

	mu       sync.Mutex
	Messages []LogMessage
}

type LogMessage struct {
	Level   string
	Message string
	Args    []any
}

func NewMockLogger() *MockLogger {
	return &MockLogger{}
}

func (m *MockLogger) record(level, msg string, args []any) {
	m.mu.Lock()
	m.Messages = append(m.Messages, LogMessage{Level: level, Message: msg, Args: args})
	m.mu.Unlock()
}

func (m *MockLogger) Debug(msg string, keysAndValues ...any) { m.record("DEBUG", msg, keysAndValues) }
func (m *MockLogger) Info(msg string, keysAndValues ...any)  { m.record("INFO", msg, keysAndValues) }
func (m *MockLogger) Warn(msg string, keysAndValues ...any)  { m.record("WARN", msg, keysAndValues) }
func (m *MockLogger) Error(msg string, keysAndValues ...any) { m.record("ERROR", msg, keysAndValues) }

func (m *MockLogger) SetLevel(level LogLevel) {
	m.Called(level)
}

// Filter returns the recorded messages at the given level.
func (m *MockLogger) Filter(level string) []LogMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []LogMessage
	for _, msg := range m.Messages {
		if msg.Level == level {
			out = append(out, msg)
		}
	}
	return out
}

func (m *MockLogger) Clear() {
	m.mu.Lock()
	m.Messages = nil
	m.mu.Unlock()
}
