package ui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashutoshrp06/propcalc/internal/agent"
	"github.com/ashutoshrp06/propcalc/internal/types"
)

func newTestModel(t *testing.T) (Model, *agent.Agent) {
	t.Helper()
	a := agent.New(agent.Config{RevealDelay: -1})
	m := NewModel(a).WithExportDir(t.TempDir())

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 200, Height: 60})
	return updated.(Model), a
}

// run executes cmd and feeds the resulting session event back into m.
func run(t *testing.T, m Model, cmd tea.Cmd) (Model, types.SessionEvent) {
	t.Helper()
	require.NotNil(t, cmd)
	ev, ok := cmd().(types.SessionEvent)
	require.True(t, ok, "command should yield a session event")

	updated, _ := m.Update(ev)
	return updated.(Model), ev
}

func lastNotice(m Model) notice {
	if len(m.notices) == 0 {
		return notice{}
	}
	return m.notices[len(m.notices)-1]
}

func TestView(t *testing.T) {
	m := NewModel(agent.New(agent.Config{RevealDelay: -1}))
	assert.Equal(t, "Initializing...", m.View())

	m, _ = newTestModel(t)
	view := m.View()
	assert.Contains(t, view, Banner())
	assert.Contains(t, view, "research calculator assistant")
	assert.Contains(t, view, "#1 Calculate margin of error")
}

func TestSendMessage_OpensForm(t *testing.T) {
	m, a := newTestModel(t)

	cmd := m.handleInput("What's the margin of error for n=500?")
	assert.True(t, m.busy)

	m, ev := run(t, m, cmd)
	require.NoError(t, ev.Error)
	assert.False(t, m.busy)
	assert.Equal(t, types.ToolMarginOfError, ev.Message.PendingForm)

	active, ok := a.ActiveForm()
	require.True(t, ok)
	assert.Equal(t, types.ToolMarginOfError, active.Tool)

	transcript := m.renderTranscript()
	assert.Contains(t, transcript, "Margin of Error Calculator")
	assert.Contains(t, transcript, "set <field> <value>")
}

func TestEnterIgnoredWhileBusy(t *testing.T) {
	m, _ := newTestModel(t)
	m.handleInput("hello")
	require.True(t, m.busy)

	m.textInput.SetValue("tools")
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Empty(t, updated.(Model).notices)
}

func TestUseSetSubmit(t *testing.T) {
	m, a := newTestModel(t)

	assert.Nil(t, m.handleInput("use maxdiff-design"))
	active, ok := a.ActiveForm()
	require.True(t, ok)
	assert.Equal(t, types.ToolMaxDiff, active.Tool)

	assert.Nil(t, m.handleInput("set numAttributes 12"))
	active, _ = a.ActiveForm()
	assert.Equal(t, 12.0, active.Values.FloatOr("numAttributes", 0))

	m, ev := run(t, m, m.handleInput("submit numShown=4 sampleSize=300"))
	require.NoError(t, ev.Error)
	require.NotNil(t, ev.Message)
	require.NotNil(t, ev.Message.Result)
	assert.Equal(t, types.ToolMaxDiff, ev.Message.Result.Tool)

	_, ok = a.ActiveForm()
	assert.False(t, ok)
	transcript := m.renderTranscript()
	assert.Contains(t, transcript, "✓ Submitted")
	assert.Contains(t, transcript, "Recommended Tasks")
}

func TestUseByNumber(t *testing.T) {
	m, a := newTestModel(t)

	m.handleInput("use 6")
	active, ok := a.ActiveForm()
	require.True(t, ok)
	assert.Equal(t, types.ToolFeasibility, active.Tool)
}

func TestSubmit_ValidationErrors(t *testing.T) {
	m, a := newTestModel(t)
	m.handleInput("use margin of error")

	m, ev := run(t, m, m.handleInput("submit"))
	require.Error(t, ev.Error)

	n := lastNotice(m)
	assert.True(t, n.err)
	assert.Contains(t, n.text, "Sample Size is required")

	_, ok := a.ActiveForm()
	assert.True(t, ok, "form stays active after a validation failure")
}

func TestSetErrors(t *testing.T) {
	m, _ := newTestModel(t)

	m.handleInput("submit")
	assert.Contains(t, lastNotice(m).text, agent.ErrNoActiveForm.Error())

	m.handleInput("use survey-length")
	m.handleInput("set bogus 1")
	assert.Contains(t, lastNotice(m).text, `no field "bogus"`)

	m.handleInput("set openEnds many")
	assert.Contains(t, lastNotice(m).text, "must be a number")

	m.handleInput("submit openEnds")
	assert.True(t, lastNotice(m).err)
}

func TestSuggestionShortcut(t *testing.T) {
	m, _ := newTestModel(t)

	m, ev := run(t, m, m.handleInput("#2"))
	require.NoError(t, ev.Error)
	assert.Equal(t, types.ToolSampleSize, ev.Message.PendingForm)

	messages := m.session.Messages()
	require.GreaterOrEqual(t, len(messages), 2)
	assert.Equal(t, "Find required sample size", messages[len(messages)-2].Content)
}

func TestHelpToolsClear(t *testing.T) {
	m, a := newTestModel(t)

	m.handleInput("help")
	assert.Contains(t, lastNotice(m).text, "use <tool>")

	m.handleInput("tools")
	assert.Contains(t, lastNotice(m).text, "1. margin-of-error")
	assert.Contains(t, lastNotice(m).text, "6. feasibility")

	m.handleInput("use 1")
	m.handleInput("clear")
	assert.Empty(t, m.notices)
	assert.Len(t, a.Messages(), 1)
	_, ok := a.ActiveForm()
	assert.False(t, ok)
}

func TestExport(t *testing.T) {
	m, _ := newTestModel(t)
	m.handleInput("use 1")

	m.handleInput("export chat.md")
	data, err := os.ReadFile(filepath.Join(m.exportDir, "chat.md"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# Research Calculator Session"))

	m.handleInput("export chat.html")
	data, err = os.ReadFile(filepath.Join(m.exportDir, "chat.html"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "<!doctype html>")
	assert.Contains(t, lastNotice(m).text, "Transcript saved to")
}

func TestAttach(t *testing.T) {
	m, _ := newTestModel(t)
	path := filepath.Join(t.TempDir(), "brief.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0644))

	m.handleInput("attach " + path)
	require.Len(t, m.pending, 1)
	assert.Equal(t, "brief.txt", m.pending[0].Name)
	assert.Equal(t, int64(5), m.pending[0].Size)

	m, ev := run(t, m, m.handleInput(""))
	require.NoError(t, ev.Error)
	assert.Empty(t, m.pending)

	messages := m.session.Messages()
	user := messages[len(messages)-2]
	require.Len(t, user.Attachments, 1)
	assert.Contains(t, m.renderTranscript(), "📎 brief.txt (5 B)")

	m.handleInput("attach " + filepath.Join(t.TempDir(), "missing.pdf"))
	assert.True(t, lastNotice(m).err)
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(t)

	cmd := m.handleInput("exit")
	require.NotNil(t, cmd)
	assert.True(t, m.quitting)
	assert.Equal(t, "Goodbye!", strings.TrimSpace(m.View()))
}
