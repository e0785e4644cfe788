// Package history stores the append-only conversation transcript.
package history

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/ashutoshrp06/propcalc/internal/types"
)

// ErrMessageNotFound is returned when no message has the requested id.
var ErrMessageNotFound = errors.New("message not found")

// Manager holds conversation messages in send order. Messages are only
// appended; existing ones can be amended in place but never removed,
// except by Reset.
type Manager struct {
	messages []types.Message
	index    map[string]int
	mu       sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		messages: make([]types.Message, 0),
		index:    make(map[string]int),
	}
}

// Append stores a copy of msg and returns it. An empty ID is replaced with
// a fresh UUID.
func (m *Manager) Append(msg types.Message) types.Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	msg = msg.Clone()
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}

	m.index[msg.ID] = len(m.messages)
	m.messages = append(m.messages, msg)
	return msg.Clone()
}

// Messages returns a deep copy of the transcript.
func (m *Manager) Messages() []types.Message {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]types.Message, len(m.messages))
	for i, msg := range m.messages {
		result[i] = msg.Clone()
	}
	return result
}

// Get returns a copy of the message with id.
func (m *Manager) Get(id string) (types.Message, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i, ok := m.index[id]
	if !ok {
		return types.Message{}, false
	}
	return m.messages[i].Clone(), true
}

// Update applies fn to the stored message with id. The ID cannot be changed.
func (m *Manager) Update(id string, fn func(msg *types.Message) error) (types.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i, ok := m.index[id]
	if !ok {
		return types.Message{}, ErrMessageNotFound
	}

	msg := m.messages[i].Clone()
	if err := fn(&msg); err != nil {
		return types.Message{}, err
	}
	msg.ID = id
	m.messages[i] = msg
	return msg.Clone(), nil
}

// Last returns the most recent message.
func (m *Manager) Last() (types.Message, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.messages) == 0 {
		return types.Message{}, false
	}
	return m.messages[len(m.messages)-1].Clone(), true
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.messages)
}

// Reset discards the transcript and starts over with msgs.
func (m *Manager) Reset(msgs ...types.Message) []types.Message {
	m.mu.Lock()
	m.messages = make([]types.Message, 0, len(msgs))
	m.index = make(map[string]int)
	m.mu.Unlock()

	out := make([]types.Message, 0, len(msgs))
	for _, msg := range msgs {
		out = append(out, m.Append(msg))
	}
	return out
}
