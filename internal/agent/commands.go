package agent

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ashutoshrp06/propcalc/internal/types"
)

// commandTimeout bounds a single UI-triggered call, reveal delay included.
const commandTimeout = 30 * time.Second

// SendMessageCmd returns a Bubble Tea command that sends a message.
func (a *Agent) SendMessageCmd(text string, attachments []types.Attachment) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()

		msg, err := a.SendMessage(ctx, text, attachments)
		return a.event(msg, err)
	}
}

// SubmitFormCmd returns a Bubble Tea command that submits the form on messageID.
func (a *Agent) SubmitFormCmd(messageID string, id types.ToolID, values types.FormValues) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()

		msg, err := a.SubmitForm(ctx, messageID, id, values)
		return a.event(msg, err)
	}
}

func (a *Agent) event(msg types.Message, err error) types.SessionEvent {
	ev := types.SessionEvent{State: a.State(), Error: err}
	if msg.ID != "" {
		ev.Message = &msg
	}
	return ev
}
