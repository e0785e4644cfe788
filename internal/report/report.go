// Package report renders calculator results and transcripts as Markdown,
// HTML or JSON for export.
package report

import (
	"encoding/json"
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/ashutoshrp06/propcalc/internal/types"
)

// Format is an export format.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatJSON     Format = "json"
)

// ParseFormat accepts a format name or a common alias.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "html":
		return FormatHTML, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unknown format %q: use text, markdown, html or json", s)
}

// Markdown renders one result as a Markdown section with a details table.
func Markdown(title string, r types.ToolResult) string {
	var sb strings.Builder
	if title != "" {
		sb.WriteString("## " + title + "\n\n")
	}
	sb.WriteString(r.Summary + "\n\n")

	if len(r.Details) > 0 {
		sb.WriteString("| Metric | Value |\n|---|---|\n")
		for _, d := range r.Details {
			value := escapeCell(d.Value)
			if d.Highlight {
				value = "**" + value + "**"
			}
			sb.WriteString(fmt.Sprintf("| %s | %s |\n", escapeCell(d.Label), value))
		}
		sb.WriteString("\n")
	}

	if r.Quality != "" {
		sb.WriteString(fmt.Sprintf("Quality: *%s*\n\n", r.Quality))
	}

	if len(r.Recommendations) > 0 {
		sb.WriteString("### Recommendations\n\n")
		for _, rec := range r.Recommendations {
			sb.WriteString("- " + rec + "\n")
		}
		sb.WriteString("\n")
	}

	if len(r.Inputs) > 0 {
		sb.WriteString("### Inputs\n\n")
		for _, name := range sortedKeys(r.Inputs) {
			sb.WriteString(fmt.Sprintf("- `%s`: %s\n", name, r.Inputs[name].Text()))
		}
		sb.WriteString("\n")
	}

	return strings.TrimRight(sb.String(), "\n") + "\n"
}

// Text renders one result for a plain terminal.
func Text(title string, r types.ToolResult) string {
	var sb strings.Builder
	if title != "" {
		sb.WriteString(title + "\n" + strings.Repeat("=", len(title)) + "\n\n")
	}
	sb.WriteString(StripBold(r.Summary) + "\n\n")

	width := 0
	for _, d := range r.Details {
		if len(d.Label) > width {
			width = len(d.Label)
		}
	}
	for _, d := range r.Details {
		marker := " "
		if d.Highlight {
			marker = "*"
		}
		sb.WriteString(fmt.Sprintf("%s %-*s  %s\n", marker, width, d.Label, d.Value))
	}

	if r.Quality != "" {
		sb.WriteString(fmt.Sprintf("\nQuality: %s\n", r.Quality))
	}

	if len(r.Recommendations) > 0 {
		sb.WriteString("\nRecommendations:\n")
		for _, rec := range r.Recommendations {
			sb.WriteString("  - " + rec + "\n")
		}
	}
	return sb.String()
}

// TranscriptMarkdown renders a conversation as Markdown.
func TranscriptMarkdown(messages []types.Message) string {
	var sb strings.Builder
	sb.WriteString("# Research Calculator Session\n\n")

	for _, m := range messages {
		if m.Streaming {
			continue
		}
		who := "Assistant"
		if m.Role == types.RoleUser {
			who = "You"
		}
		sb.WriteString(fmt.Sprintf("**%s** _(%s)_\n\n", who, m.Timestamp.Format(time.Kitchen)))

		switch {
		case m.Result != nil:
			sb.WriteString(Markdown("", *m.Result))
		case m.Content != "":
			sb.WriteString(m.Content + "\n")
		}

		for _, a := range m.Attachments {
			sb.WriteString(fmt.Sprintf("\n📎 %s\n", a.Name))
		}

		if m.Submitted != nil {
			sb.WriteString("\nSubmitted values:\n\n")
			for _, name := range sortedKeys(m.Submitted) {
				sb.WriteString(fmt.Sprintf("- `%s`: %s\n", name, m.Submitted[name].Text()))
			}
		}
		sb.WriteString("\n---\n\n")
	}

	return strings.TrimRight(sb.String(), "\n") + "\n"
}

// HTML converts Markdown into a standalone HTML document.
func HTML(title, markdown string) (string, error) {
	var content strings.Builder
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	if err := md.Convert([]byte(markdown), &content); err != nil {
		return "", fmt.Errorf("markdown convert: %w", err)
	}

	return "<!doctype html><html><head><meta charset='utf-8'><title>" + html.EscapeString(title) + "</title>" +
		"<style>" +
		"body{font-family:system-ui,sans-serif;max-width:820px;margin:2rem auto;padding:0 1rem;color:#1f2937;} " +
		"table{border-collapse:collapse;width:100%;margin:1rem 0;} " +
		"th,td{border:1px solid #d1d5db;padding:0.4rem 0.6rem;text-align:left;} " +
		"thead th{background:#f3f4f6;} " +
		"strong{color:#7c3aed;} hr{border:0;border-top:1px solid #e5e7eb;margin:1.5rem 0;}" +
		"</style></head><body>" + content.String() + "</body></html>", nil
}

// JSON encodes v with indentation.
func JSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal json: %w", err)
	}
	return string(data) + "\n", nil
}

// Render formats one result in the requested format.
func Render(format Format, title string, r types.ToolResult) (string, error) {
	switch format {
	case FormatMarkdown:
		return Markdown(title, r), nil
	case FormatHTML:
		return HTML(title, Markdown(title, r))
	case FormatJSON:
		return JSON(r)
	default:
		return Text(title, r), nil
	}
}

// StripBold removes **bold** markers.
func StripBold(s string) string {
	return strings.ReplaceAll(s, "**", "")
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func sortedKeys(values types.FormValues) []string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
