// Package ui provides the terminal chat interface using Bubble Tea.
package ui

import (
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/ashutoshrp06/propcalc/internal/agent"
	"github.com/ashutoshrp06/propcalc/internal/report"
	"github.com/ashutoshrp06/propcalc/internal/tools"
	"github.com/ashutoshrp06/propcalc/internal/types"
	"github.com/ashutoshrp06/propcalc/internal/validator"
)

// Session is the conversation the UI drives.
type Session interface {
	Messages() []types.Message
	State() types.SessionState
	ActiveForm() (agent.ActiveForm, bool)
	Configuration(id types.ToolID) (types.ToolConfiguration, bool)
	ListTools() []types.ToolConfiguration
	SelectTool(id types.ToolID) (types.Message, error)
	UpdateFormValue(field string, value types.Value) error
	ClearConversation() []types.Message
	SendMessageCmd(text string, attachments []types.Attachment) tea.Cmd
	SubmitFormCmd(messageID string, id types.ToolID, values types.FormValues) tea.Cmd
}

// Model is the Bubble Tea model for the calculator chat.
type Model struct {
	textInput textinput.Model
	spinner   spinner.Model
	viewport  viewport.Model
	styles    Styles

	session   Session
	notices   []notice
	pending   []types.Attachment
	exportDir string

	busy     bool
	width    int
	height   int
	ready    bool
	quitting bool
}

// notice is a local line shown after the first `after` transcript messages.
type notice struct {
	after int
	text  string
	err   bool
}

// NewModel creates a new UI model.
func NewModel(session Session) Model {
	ti := textinput.New()
	ti.Placeholder = "Ask a research question, or type 'help' (e.g. 'What's the margin of error for n=500?')"
	ti.Focus()
	ti.CharLimit = 2000
	ti.Width = 80

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = DefaultStyles().Spinner

	vp := viewport.New(0, 0)
	vp.KeyMap = viewport.DefaultKeyMap()

	return Model{
		textInput: ti,
		spinner:   s,
		viewport:  vp,
		styles:    DefaultStyles(),
		session:   session,
		exportDir: ".",
	}
}

// WithExportDir sets where relative export paths are written.
func (m Model) WithExportDir(dir string) Model {
	m.exportDir = dir
	return m
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
	)
}

func (m Model) headerHeight() int {
	return lipgloss.Height(m.styles.Banner.Render(Banner())) + 1
}

// footerHeight covers the prompt line and the help bar with its margin.
func (m Model) footerHeight() int {
	return 4
}

// updateViewport rebuilds the viewport content and scrolls to the bottom.
func (m *Model) updateViewport() {
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			m.quitting = true
			return m, tea.Quit

		case tea.KeyEsc:
			if !m.busy {
				m.quitting = true
				return m, tea.Quit
			}
			return m, nil

		case tea.KeyEnter:
			if m.busy {
				return m, nil
			}
			cmd := m.handleInput(m.textInput.Value())
			m.updateViewport()
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.textInput.Width = msg.Width - 10

		vpHeight := msg.Height - m.headerHeight() - m.footerHeight()
		if vpHeight < 1 {
			vpHeight = 1
		}

		if !m.ready {
			m.viewport = viewport.New(msg.Width, vpHeight)
			m.viewport.KeyMap = viewport.DefaultKeyMap()
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = vpHeight
		}

		m.ready = true
		m.updateViewport()

	case types.SessionEvent:
		m.busy = false
		if msg.Error != nil {
			m.notifyError(msg.Error)
		}
		m.updateViewport()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
		if m.busy {
			m.updateViewport()
		}
	}

	if !m.busy {
		var tiCmd tea.Cmd
		m.textInput, tiCmd = m.textInput.Update(msg)
		cmds = append(cmds, tiCmd)
	}

	var vpCmd tea.Cmd
	m.viewport, vpCmd = m.viewport.Update(msg)
	cmds = append(cmds, vpCmd)

	return m, tea.Batch(cmds...)
}

// handleInput runs a local command or sends the input as a chat message.
func (m *Model) handleInput(input string) tea.Cmd {
	input = strings.TrimSpace(input)
	m.textInput.SetValue("")

	if input == "" {
		if len(m.pending) > 0 {
			return m.send("")
		}
		return nil
	}

	fields := strings.Fields(input)
	command, args := strings.ToLower(fields[0]), fields[1:]

	switch command {
	case "exit", "quit", "q":
		if len(args) == 0 {
			m.quitting = true
			return tea.Quit
		}

	case "help", "?":
		if len(args) == 0 {
			m.notify(commandHelp)
			return nil
		}

	case "tools":
		if len(args) == 0 {
			m.notify(m.toolList())
			return nil
		}

	case "clear":
		if len(args) == 0 {
			m.session.ClearConversation()
			m.notices = nil
			m.pending = nil
			return nil
		}

	case "use":
		if id, ok := m.resolveTool(strings.Join(args, " ")); ok {
			if _, err := m.session.SelectTool(id); err != nil {
				m.notifyError(err)
			}
			return nil
		}

	case "set":
		if handled := m.setField(args); handled {
			return nil
		}

	case "submit":
		return m.submit(args)

	case "export":
		m.export(strings.Join(args, " "))
		return nil

	case "attach":
		if len(args) > 0 {
			m.attach(strings.Join(args, " "))
			return nil
		}
	}

	if strings.HasPrefix(input, "#") {
		if text, ok := m.suggestion(input[1:]); ok {
			return m.send(text)
		}
	}

	return m.send(input)
}

func (m *Model) send(text string) tea.Cmd {
	attachments := m.pending
	m.pending = nil
	m.busy = true
	return m.session.SendMessageCmd(text, attachments)
}

// resolveTool accepts a tool id, a name with spaces, or a 1-based list index.
func (m *Model) resolveTool(arg string) (types.ToolID, bool) {
	if arg == "" {
		return "", false
	}
	if n, err := strconv.Atoi(arg); err == nil {
		configs := m.session.ListTools()
		if n >= 1 && n <= len(configs) {
			return configs[n-1].ID, true
		}
		return "", false
	}
	return types.ParseToolID(arg)
}

// setField handles "set <field> <value>". It reports false when there is no
// active form so the input is sent as a chat message instead.
func (m *Model) setField(args []string) bool {
	active, ok := m.session.ActiveForm()
	if !ok || len(args) < 2 {
		return false
	}
	cfg, _ := m.session.Configuration(active.Tool)
	field, ok := cfg.Field(args[0])
	if !ok {
		m.notifyError(fmt.Errorf("%s has no field %q. Fields: %s", cfg.Name, args[0], fieldNames(cfg)))
		return true
	}

	value, err := tools.Coerce(field, strings.Join(args[1:], " "))
	if err != nil {
		m.notifyError(err)
		return true
	}
	if err := m.session.UpdateFormValue(field.Name, value); err != nil {
		m.notifyError(err)
	}
	return true
}

// submit handles "submit [field=value ...]".
func (m *Model) submit(args []string) tea.Cmd {
	active, ok := m.session.ActiveForm()
	if !ok {
		m.notifyError(agent.ErrNoActiveForm)
		return nil
	}
	cfg, _ := m.session.Configuration(active.Tool)

	raw, err := tools.ParseAssignments(args)
	if err != nil {
		m.notifyError(err)
		return nil
	}
	values, err := tools.CoerceAll(cfg, raw)
	if err != nil {
		m.notifyError(err)
		return nil
	}

	m.busy = true
	return m.session.SubmitFormCmd(active.MessageID, active.Tool, values)
}

// suggestion returns suggestion n of the latest message offering any.
func (m *Model) suggestion(arg string) (string, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return "", false
	}
	messages := m.session.Messages()
	for i := len(messages) - 1; i >= 0; i-- {
		if s := messages[i].Suggestions; len(s) > 0 {
			if n >= 1 && n <= len(s) {
				return s[n-1], true
			}
			return "", false
		}
	}
	return "", false
}

func (m *Model) export(path string) {
	if path == "" {
		path = fmt.Sprintf("propcalc-%s.md", time.Now().Format("20060102-150405"))
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(m.exportDir, path)
	}

	content := report.TranscriptMarkdown(m.session.Messages())
	if strings.EqualFold(filepath.Ext(path), ".html") {
		html, err := report.HTML("Research Calculator Session", content)
		if err != nil {
			m.notifyError(err)
			return
		}
		content = html
	}

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		m.notifyError(fmt.Errorf("export transcript: %w", err))
		return
	}
	m.notify("Transcript saved to " + path)
}

func (m *Model) attach(path string) {
	info, err := os.Stat(path)
	if err != nil {
		m.notifyError(fmt.Errorf("attach: %w", err))
		return
	}
	if info.IsDir() {
		m.notifyError(fmt.Errorf("attach: %s is a directory", path))
		return
	}

	a := types.Attachment{
		Name:     filepath.Base(path),
		MimeType: mime.TypeByExtension(filepath.Ext(path)),
		Size:     info.Size(),
	}
	m.pending = append(m.pending, a)
	m.notify(fmt.Sprintf("Attached %s (%s). It will be sent with your next message.", a.Name, humanize.Bytes(uint64(a.Size))))
}

func (m *Model) notify(text string) {
	m.notices = append(m.notices, notice{after: len(m.session.Messages()), text: text})
}

func (m *Model) notifyError(err error) {
	var fieldErrs *validator.FieldErrors
	if errors.As(err, &fieldErrs) {
		lines := make([]string, 0, len(fieldErrs.Errors))
		for _, fe := range fieldErrs.Errors {
			lines = append(lines, fmt.Sprintf("• %s %s", fe.Label, fe.Message))
		}
		m.notices = append(m.notices, notice{
			after: len(m.session.Messages()),
			text:  "Please fix the form:\n" + strings.Join(lines, "\n"),
			err:   true,
		})
		return
	}
	m.notices = append(m.notices, notice{after: len(m.session.Messages()), text: "Error: " + err.Error(), err: true})
}

func (m *Model) toolList() string {
	var sb strings.Builder
	sb.WriteString("Calculators (open one with 'use <number>' or 'use <id>'):\n")
	for i, cfg := range m.session.ListTools() {
		sb.WriteString(fmt.Sprintf("  %d. %-22s %s\n", i+1, cfg.ID, cfg.Name))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func fieldNames(cfg types.ToolConfiguration) string {
	names := make([]string, len(cfg.Fields))
	for i, f := range cfg.Fields {
		names[i] = f.Name
	}
	return strings.Join(names, ", ")
}

const commandHelp = `Commands:
  help, ?               Show this help
  tools                 List calculators
  use <tool>            Open a calculator form by id or number
  set <field> <value>   Fill a field of the open form
  submit [field=value]  Submit the open form
  #<n>                  Send suggestion n
  attach <path>         Attach a file to your next message
  export [path]         Save the transcript (.md or .html)
  clear                 Start a new conversation
  exit, quit            Leave

Anything else is sent as a question.`

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return m.styles.Notice.Render("Goodbye!\n")
	}

	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder

	b.WriteString(m.styles.Banner.Render(m.styles.BannerTitle.Render(Banner())))
	b.WriteString("\n")

	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	b.WriteString(m.styles.Prompt.Render("> "))
	if m.busy {
		b.WriteString(m.spinner.View() + " ")
		b.WriteString(m.styles.StatusText.Render(m.session.State().String() + "..."))
	} else {
		b.WriteString(m.textInput.View())
	}
	b.WriteString("\n")
	b.WriteString(m.renderHelpBar())

	return m.styles.App.Render(b.String())
}

// Run starts the full-screen chat.
func Run(session Session) error {
	p := tea.NewProgram(NewModel(session), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
