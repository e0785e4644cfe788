package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/ashutoshrp06/propcalc/internal/types"
)

// renderTranscript renders every message with local notices interleaved.
func (m Model) renderTranscript() string {
	var b strings.Builder
	messages := m.session.Messages()
	active, hasActive := m.session.ActiveForm()

	next := 0
	flush := func(upTo int) {
		for next < len(m.notices) && m.notices[next].after <= upTo {
			b.WriteString(m.renderNotice(m.notices[next]))
			b.WriteString("\n\n")
			next++
		}
	}

	flush(0)
	for i, msg := range messages {
		isActive := hasActive && active.MessageID == msg.ID
		b.WriteString(m.renderMessage(msg, isActive))
		b.WriteString("\n")
		flush(i + 1)
	}
	flush(len(messages))

	return b.String()
}

func (m Model) contentWidth() int {
	if m.width <= 10 {
		return 0
	}
	return m.width - 8
}

// renderMessage renders a single chat message.
func (m Model) renderMessage(msg types.Message, activeForm bool) string {
	var b strings.Builder

	if msg.Role == types.RoleUser {
		b.WriteString(m.styles.UserLabel.Render("You"))
		b.WriteString("\n")
		b.WriteString(m.renderInline(msg.Content))
		for _, a := range msg.Attachments {
			b.WriteString("\n")
			b.WriteString(m.styles.Attachment.Render("📎 " + attachmentLabel(a)))
		}
		return m.block(b.String())
	}

	b.WriteString(m.styles.AssistLabel.Render("Assistant"))
	b.WriteString("\n")

	if msg.Streaming {
		b.WriteString(m.spinner.View() + " ")
		b.WriteString(m.styles.StatusText.Render("Thinking..."))
		return m.block(b.String())
	}

	switch {
	case msg.Result != nil:
		b.WriteString(m.renderResult(*msg.Result))
	default:
		b.WriteString(m.renderInline(msg.Content))
	}

	if msg.PendingForm != "" {
		b.WriteString("\n")
		b.WriteString(m.renderForm(msg, activeForm))
	}

	if len(msg.Suggestions) > 0 {
		b.WriteString("\n\n")
		b.WriteString(m.renderSuggestions(msg.Suggestions))
	}

	return m.block(b.String())
}

func (m Model) block(s string) string {
	style := m.styles.Block
	if w := m.contentWidth(); w > 0 {
		style = style.Width(w)
	}
	return style.Render(s)
}

// renderInline renders text with **bold** spans emphasized.
func (m Model) renderInline(s string) string {
	parts := strings.Split(s, "**")
	var b strings.Builder
	for i, p := range parts {
		if i%2 == 1 {
			b.WriteString(m.styles.Emphasis.Render(p))
		} else {
			b.WriteString(m.styles.Text.Render(p))
		}
	}
	return b.String()
}

// renderForm renders a calculator form card. Submitted forms show the
// frozen values; abandoned ones are marked inactive.
func (m Model) renderForm(msg types.Message, active bool) string {
	cfg, ok := m.session.Configuration(msg.PendingForm)
	if !ok {
		return m.styles.NoticeError.Render("Unknown calculator " + string(msg.PendingForm))
	}

	values := msg.FormValues
	if msg.Submitted != nil {
		values = msg.Submitted
	}

	width := 0
	for _, f := range cfg.Fields {
		if len(f.Name) > width {
			width = len(f.Name)
		}
	}

	var b strings.Builder
	b.WriteString(m.styles.Emphasis.Render(cfg.Name))
	for _, f := range cfg.Fields {
		b.WriteString("\n")
		marker := " "
		if f.Required {
			marker = m.styles.Required.Render("*")
		}
		b.WriteString(fmt.Sprintf("%s %s  ", marker, m.styles.FieldLabel.Render(fmt.Sprintf("%-*s", width, f.Name))))

		if v, ok := values[f.Name]; ok && !v.Empty() {
			text := fieldDisplay(f, v)
			b.WriteString(m.styles.FieldValue.Render(text))
		} else {
			hint := f.Placeholder
			if hint == "" {
				hint = f.Label
			}
			b.WriteString(m.styles.FieldEmpty.Render(hint))
		}
	}

	b.WriteString("\n")
	switch {
	case msg.Submitted != nil:
		b.WriteString(m.styles.Submitted.Render("✓ Submitted"))
	case active:
		b.WriteString(m.styles.FormFooter.Render("set <field> <value>  ·  submit"))
	default:
		b.WriteString(m.styles.FormFooter.Render("Inactive: open it again with 'use " + string(cfg.ID) + "'"))
	}

	if active {
		return m.styles.FormBoxActive.Render(b.String())
	}
	return m.styles.FormBox.Render(b.String())
}

// fieldDisplay shows a value with its choice label or unit.
func fieldDisplay(f types.ToolFieldDefinition, v types.Value) string {
	text := v.Text()
	for _, c := range f.Choices {
		if strings.EqualFold(c.Value, text) {
			return c.Label
		}
	}
	if f.Unit != "" {
		return text + " " + f.Unit
	}
	return text
}

// renderResult renders a result card: summary, detail rows with the
// highlighted row emphasized, quality and recommendations.
func (m Model) renderResult(r types.ToolResult) string {
	var b strings.Builder
	b.WriteString(m.renderInline(r.Summary))
	b.WriteString("\n")

	width := 0
	for _, d := range r.Details {
		if w := lipgloss.Width(d.Label); w > width {
			width = w
		}
	}
	for _, d := range r.Details {
		b.WriteString("\n")
		label := m.styles.DetailLabel.Render(fmt.Sprintf("%-*s", width, d.Label))
		value := m.styles.DetailValue.Render(d.Value)
		if d.Highlight {
			value = m.styles.Headline.Render(d.Value)
		}
		b.WriteString(label + "  " + value)
	}

	if r.Quality != "" {
		b.WriteString("\n\n")
		b.WriteString(m.styles.DetailLabel.Render("Quality  "))
		b.WriteString(m.styles.Quality(r.Quality).Render(strings.ToUpper(string(r.Quality))))
	}

	if len(r.Recommendations) > 0 {
		b.WriteString("\n")
		b.WriteString(m.styles.SectionTitle.Render("Recommendations"))
		for _, rec := range r.Recommendations {
			b.WriteString("\n")
			b.WriteString(m.styles.Text.Render("• " + rec))
		}
	}

	return m.styles.ResultBox.Render(b.String())
}

func (m Model) renderSuggestions(suggestions []string) string {
	chips := make([]string, len(suggestions))
	for i, s := range suggestions {
		chips[i] = m.styles.SuggestIndex.Render(fmt.Sprintf("#%d", i+1)) + " " + m.styles.Suggestion.Render(s)
	}
	return strings.Join(chips, "\n")
}

func (m Model) renderNotice(n notice) string {
	if n.err {
		return m.styles.NoticeError.Render(n.text)
	}
	return m.styles.Notice.Render(n.text)
}

func attachmentLabel(a types.Attachment) string {
	if a.Size > 0 {
		return fmt.Sprintf("%s (%s)", a.Name, humanize.Bytes(uint64(a.Size)))
	}
	return a.Name
}

// renderHelpBar renders the bottom help bar.
func (m Model) renderHelpBar() string {
	help := []string{
		m.styles.HelpKey.Render("enter") + m.styles.HelpValue.Render(" send"),
		m.styles.HelpKey.Render("help") + m.styles.HelpValue.Render(" commands"),
		m.styles.HelpKey.Render("tools") + m.styles.HelpValue.Render(" calculators"),
		m.styles.HelpKey.Render("export") + m.styles.HelpValue.Render(" save"),
		m.styles.HelpKey.Render("ctrl+c") + m.styles.HelpValue.Render(" quit"),
	}
	return m.styles.HelpBar.Render(strings.Join(help, "  |  "))
}
