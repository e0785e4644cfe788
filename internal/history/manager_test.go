package history

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashutoshrp06/propcalc/internal/types"
)

func TestManager_AppendAssignsIDs(t *testing.T) {
	m := NewManager()

	a := m.Append(types.Message{Role: types.RoleUser, Content: "hi"})
	b := m.Append(types.Message{ID: "fixed", Role: types.RoleAssistant, Content: "hello"})

	assert.NotEmpty(t, a.ID)
	assert.Equal(t, "fixed", b.ID)
	assert.Equal(t, 2, m.Len())

	msgs := m.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "hi", msgs[0].Content)
	assert.Equal(t, "hello", msgs[1].Content)
}

func TestManager_MessagesAreCopies(t *testing.T) {
	m := NewManager()
	msg := m.Append(types.Message{
		Content:    "form",
		FormValues: types.FormValues{"sampleSize": types.Number(100)},
	})

	msgs := m.Messages()
	msgs[0].FormValues["sampleSize"] = types.Number(999)
	msgs[0].Content = "changed"

	stored, ok := m.Get(msg.ID)
	require.True(t, ok)
	assert.Equal(t, "form", stored.Content)
	assert.Equal(t, 100.0, stored.FormValues.FloatOr("sampleSize", 0))
}

func TestManager_Update(t *testing.T) {
	m := NewManager()
	msg := m.Append(types.Message{Content: "pending", Streaming: true})

	updated, err := m.Update(msg.ID, func(msg *types.Message) error {
		msg.Streaming = false
		msg.ID = "hijack"
		return nil
	})
	require.NoError(t, err)
	assert.False(t, updated.Streaming)
	assert.Equal(t, msg.ID, updated.ID)

	_, err = m.Update("missing", func(*types.Message) error { return nil })
	assert.ErrorIs(t, err, ErrMessageNotFound)
}

func TestManager_UpdateErrorLeavesMessage(t *testing.T) {
	m := NewManager()
	msg := m.Append(types.Message{Content: "keep"})

	boom := errors.New("boom")
	_, err := m.Update(msg.ID, func(msg *types.Message) error {
		msg.Content = "lost"
		return boom
	})
	assert.ErrorIs(t, err, boom)

	stored, _ := m.Get(msg.ID)
	assert.Equal(t, "keep", stored.Content)
}

func TestManager_ResetAndLast(t *testing.T) {
	m := NewManager()
	m.Append(types.Message{Content: "one"})
	m.Append(types.Message{Content: "two"})

	last, ok := m.Last()
	require.True(t, ok)
	assert.Equal(t, "two", last.Content)

	out := m.Reset(types.Message{Content: "welcome"})
	require.Len(t, out, 1)
	assert.Equal(t, 1, m.Len())

	last, _ = m.Last()
	assert.Equal(t, "welcome", last.Content)

	m.Reset()
	_, ok = m.Last()
	assert.False(t, ok)
}
