// Package testutil provides shared test helpers for simheat packages.
package testutil

import (
	"sync"

	"github.com/turtacn/simheat/internal/infrastructure/monitoring/logging"
)

// MockLogger implements logging.Logger and records every entry.
type MockLogger struct {
	mu       sync.Mutex
	Messages []LogMessage
	fields   []logging.Field
	parent   *MockLogger
}

// LogMessage is a single entry captured by MockLogger.
type LogMessage struct {
	Level   string
	Message string
	Fields  []logging.Field
}

// Field returns the value of the named field, or nil.
func (m LogMessage) Field(key string) interface{} {
	for _, f := range m.Fields {
		if f.Key == key {
			return f.Value
		}
	}
	return nil
}

// NewMockLogger creates an empty MockLogger.
func NewMockLogger() *MockLogger {
	return &MockLogger{Messages: make([]LogMessage, 0)}
}

func (m *MockLogger) root() *MockLogger {
	if m.parent != nil {
		return m.parent.root()
	}
	return m
}

func (m *MockLogger) log(level, msg string, fields []logging.Field) {
	all := make([]logging.Field, 0, len(m.fields)+len(fields))
	all = append(all, m.fields...)
	all = append(all, fields...)

	r := m.root()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Messages = append(r.Messages, LogMessage{Level: level, Message: msg, Fields: all})
}

func (m *MockLogger) Debug(msg string, fields ...logging.Field) { m.log("debug", msg, fields) }
func (m *MockLogger) Info(msg string, fields ...logging.Field)  { m.log("info", msg, fields) }
func (m *MockLogger) Warn(msg string, fields ...logging.Field)  { m.log("warn", msg, fields) }
func (m *MockLogger) Error(msg string, fields ...logging.Field) { m.log("error", msg, fields) }
func (m *MockLogger) Fatal(msg string, fields ...logging.Field) { m.log("fatal", msg, fields) }

// With returns a child that shares the parent's message buffer.
func (m *MockLogger) With(fields ...logging.Field) logging.Logger {
	child := &MockLogger{parent: m}
	child.fields = append(append([]logging.Field{}, m.fields...), fields...)
	return child
}

// Named returns the receiver; names are not recorded.
func (m *MockLogger) Named(_ string) logging.Logger { return m }

func (m *MockLogger) Sync() error { return nil }

// GetMessages returns a copy of all logged messages.
func (m *MockLogger) GetMessages() []LogMessage {
	r := m.root()
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]LogMessage, len(r.Messages))
	copy(out, r.Messages)
	return out
}

// MessagesAt returns the captured messages at level.
func (m *MockLogger) MessagesAt(level string) []LogMessage {
	var out []LogMessage
	for _, msg := range m.GetMessages() {
		if msg.Level == level {
			out = append(out, msg)
		}
	}
	return out
}

// HasMessage reports whether an entry with the given level and text exists.
func (m *MockLogger) HasMessage(level, msg string) bool {
	for _, entry := range m.MessagesAt(level) {
		if entry.Message == msg {
			return true
		}
	}
	return false
}

// Reset discards captured messages.
func (m *MockLogger) Reset() {
	r := m.root()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Messages = r.Messages[:0]
}

var _ logging.Logger = (*MockLogger)(nil)

//Personal.AI order the ending
