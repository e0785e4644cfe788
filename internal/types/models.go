// Package types defines shared data structures for the research calculator engine.
package types

import (
	"strings"
	"time"
)

// ToolID identifies one of the built-in research calculators.
type ToolID string

const (
	ToolMarginOfError ToolID = "margin-of-error"
	ToolSampleSize    ToolID = "required-sample-size"
	ToolMaxDiff       ToolID = "maxdiff-design"
	ToolSurveyLength  ToolID = "survey-length"
	ToolDemographics  ToolID = "demographics-quota"
	ToolFeasibility   ToolID = "feasibility"
)

// AllTools returns every tool identifier in display order.
func AllTools() []ToolID {
	return []ToolID{
		ToolMarginOfError,
		ToolSampleSize,
		ToolMaxDiff,
		ToolSurveyLength,
		ToolDemographics,
		ToolFeasibility,
	}
}

// Valid reports whether id is one of the known tools.
func (id ToolID) Valid() bool {
	for _, t := range AllTools() {
		if t == id {
			return true
		}
	}
	return false
}

// ParseToolID accepts the canonical identifier in any case, with
// underscores or spaces in place of hyphens.
func ParseToolID(s string) (ToolID, bool) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("_", "-", " ", "-").Replace(norm)
	id := ToolID(norm)
	if !id.Valid() {
		return "", false
	}
	return id, true
}

// FieldKind is the input widget type of a tool field.
type FieldKind string

const (
	FieldNumeric FieldKind = "number"
	FieldText    FieldKind = "text"
	FieldChoice  FieldKind = "select"
)

// Choice is one option of a select field.
type Choice struct {
	Value string `yaml:"value" json:"value"`
	Label string `yaml:"label" json:"label"`
}

// ToolFieldDefinition describes one input of a tool form.
type ToolFieldDefinition struct {
	Name        string    `yaml:"name" json:"name"`
	Label       string    `yaml:"label" json:"label"`
	Kind        FieldKind `yaml:"kind" json:"kind"`
	Required    bool      `yaml:"required" json:"required"`
	Default     string    `yaml:"default,omitempty" json:"default,omitempty"`
	Unit        string    `yaml:"unit,omitempty" json:"unit,omitempty"`
	Placeholder string    `yaml:"placeholder,omitempty" json:"placeholder,omitempty"`
	Min         *float64  `yaml:"min,omitempty" json:"min,omitempty"`
	Max         *float64  `yaml:"max,omitempty" json:"max,omitempty"`
	Step        *float64  `yaml:"step,omitempty" json:"step,omitempty"`
	Choices     []Choice  `yaml:"choices,omitempty" json:"choices,omitempty"`
	// AllowOther accepts values outside Choices; the calculator falls back
	// to a default for them.
	AllowOther bool `yaml:"allow_other,omitempty" json:"allow_other,omitempty"`
}

// DefaultValue returns the typed default for the field, if it has one.
func (f ToolFieldDefinition) DefaultValue() (Value, bool) {
	if f.Default == "" {
		return Value{}, false
	}
	if f.Kind == FieldNumeric {
		if v, ok := String(f.Default).Float(); ok {
			return Number(v), true
		}
	}
	return String(f.Default), true
}

// HasChoice reports whether s is one of the field's choice values.
func (f ToolFieldDefinition) HasChoice(s string) bool {
	for _, c := range f.Choices {
		if strings.EqualFold(c.Value, s) {
			return true
		}
	}
	return false
}

// ToolConfiguration is the static metadata for one tool.
type ToolConfiguration struct {
	ID          ToolID                `yaml:"id" json:"id"`
	Name        string                `yaml:"name" json:"name"`
	Description string                `yaml:"description" json:"description"`
	Examples    []string              `yaml:"examples,omitempty" json:"examples,omitempty"`
	FollowUps   []string              `yaml:"followups,omitempty" json:"followups,omitempty"`
	Fields      []ToolFieldDefinition `yaml:"fields" json:"fields"`
}

// Field looks up a field definition by name.
func (c ToolConfiguration) Field(name string) (ToolFieldDefinition, bool) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return ToolFieldDefinition{}, false
}

// Defaults returns a fresh FormValues seeded with every field default.
func (c ToolConfiguration) Defaults() FormValues {
	values := make(FormValues, len(c.Fields))
	for _, f := range c.Fields {
		if v, ok := f.DefaultValue(); ok {
			values[f.Name] = v
		}
	}
	return values
}

// Quality is the coarse assessment attached to a result.
type Quality string

const (
	QualityExcellent  Quality = "excellent"
	QualityGood       Quality = "good"
	QualityAcceptable Quality = "acceptable"
	QualityPoor       Quality = "poor"
)

// DetailRow is one labeled line of a result card.
type DetailRow struct {
	Label     string `json:"label"`
	Value     string `json:"value"`
	Highlight bool   `json:"highlight,omitempty"`
}

// ToolResult is the normalized output of every calculator.
type ToolResult struct {
	Tool            ToolID             `json:"tool"`
	Inputs          FormValues         `json:"inputs,omitempty"`
	Summary         string             `json:"summary"`
	Details         []DetailRow        `json:"details"`
	Recommendations []string           `json:"recommendations,omitempty"`
	Quality         Quality            `json:"quality,omitempty"`
	Metrics         map[string]float64 `json:"metrics,omitempty"`
}

// Headline returns the highlighted detail row.
func (r ToolResult) Headline() (DetailRow, bool) {
	for _, d := range r.Details {
		if d.Highlight {
			return d, true
		}
	}
	return DetailRow{}, false
}

// Clone returns a deep copy of the result.
func (r ToolResult) Clone() ToolResult {
	out := r
	out.Inputs = r.Inputs.Clone()
	out.Details = append([]DetailRow(nil), r.Details...)
	out.Recommendations = append([]string(nil), r.Recommendations...)
	if r.Metrics != nil {
		out.Metrics = make(map[string]float64, len(r.Metrics))
		for k, v := range r.Metrics {
			out.Metrics[k] = v
		}
	}
	return out
}

// Role is the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Attachment is opaque metadata for a file sent along with a message.
type Attachment struct {
	Name     string `json:"name"`
	MimeType string `json:"mime_type,omitempty"`
	Size     int64  `json:"size,omitempty"`
}

// Message is one entry of the conversation history.
type Message struct {
	ID          string       `json:"id"`
	Role        Role         `json:"role"`
	Content     string       `json:"content"`
	Timestamp   time.Time    `json:"timestamp"`
	Attachments []Attachment `json:"attachments,omitempty"`
	Result      *ToolResult  `json:"result,omitempty"`
	PendingForm ToolID       `json:"pending_form,omitempty"`
	FormValues  FormValues   `json:"form_values,omitempty"`
	Submitted   FormValues   `json:"submitted,omitempty"`
	Suggestions []string     `json:"suggestions,omitempty"`
	Streaming   bool         `json:"streaming,omitempty"`
}

// AwaitingSubmission reports whether the message shows a form that has
// not been submitted yet.
func (m Message) AwaitingSubmission() bool {
	return m.PendingForm != "" && m.Submitted == nil
}

// Clone returns a deep copy of the message.
func (m Message) Clone() Message {
	out := m
	out.Attachments = append([]Attachment(nil), m.Attachments...)
	out.FormValues = m.FormValues.Clone()
	out.Submitted = m.Submitted.Clone()
	out.Suggestions = append([]string(nil), m.Suggestions...)
	if m.Result != nil {
		r := m.Result.Clone()
		out.Result = &r
	}
	return out
}

// SessionState is the conversation state machine position.
type SessionState int

const (
	StateIdle SessionState = iota
	StateAwaitingClassification
	StateFormActive
	StateComputing
)

// String returns a human-readable state name.
func (s SessionState) String() string {
	names := [...]string{
		"Idle",
		"Thinking",
		"Waiting for input",
		"Calculating",
	}
	if int(s) >= 0 && int(s) < len(names) {
		return names[s]
	}
	return "Unknown"
}

// Busy reports whether the session is mid-reveal and rejects new input.
func (s SessionState) Busy() bool {
	return s == StateAwaitingClassification || s == StateComputing
}

// SessionEvent is sent to the UI when an asynchronous session call finishes.
type SessionEvent struct {
	State   SessionState
	Message *Message
	Error   error
}
