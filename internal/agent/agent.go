// Package agent implements the conversation and form state machine that
// drives the research calculators.
package agent

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ashutoshrp06/propcalc/internal/history"
	"github.com/ashutoshrp06/propcalc/internal/intent"
	"github.com/ashutoshrp06/propcalc/internal/tools"
	"github.com/ashutoshrp06/propcalc/internal/types"
	"github.com/ashutoshrp06/propcalc/internal/validator"
)

// DefaultRevealDelay is how long a reply stays in the streaming state.
const DefaultRevealDelay = 600 * time.Millisecond

// Agent owns one conversation: the transcript, the single active form and
// the session state.
type Agent struct {
	registry   *tools.Registry
	executor   *tools.Executor
	classifier *intent.Classifier
	history    *history.Manager
	input      *validator.MessageValidator
	logger     *zap.Logger

	revealDelay time.Duration
	overrides   types.FormValues
	now         func() time.Time

	mu           sync.Mutex
	state        types.SessionState
	active       *activeForm
	generation   int
	welcomeShown bool
}

// activeForm is the form currently accepting edits.
type activeForm struct {
	messageID string
	tool      types.ToolID
	values    types.FormValues
}

// Config holds agent configuration.
type Config struct {
	// Registry defaults to every built-in calculator.
	Registry *tools.Registry
	// Classifier defaults to the built-in keyword rules.
	Classifier *intent.Classifier
	Logger     *zap.Logger

	// HasShownWelcome suppresses the initial welcome message when the host
	// has already shown one this session.
	HasShownWelcome bool

	// RevealDelay is how long replies stay streaming. Negative disables it;
	// zero uses DefaultRevealDelay.
	RevealDelay time.Duration

	// Defaults override configuration defaults for any tool with a field of
	// the same name.
	Defaults types.FormValues

	Now func() time.Time
}

// New creates a new agent.
func New(cfg Config) *Agent {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Registry == nil {
		cfg.Registry = tools.NewDefaultRegistry(cfg.Logger)
	}
	if cfg.Classifier == nil {
		cfg.Classifier = intent.New(nil)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	switch {
	case cfg.RevealDelay == 0:
		cfg.RevealDelay = DefaultRevealDelay
	case cfg.RevealDelay < 0:
		cfg.RevealDelay = 0
	}

	a := &Agent{
		registry:     cfg.Registry,
		executor:     tools.NewExecutor(cfg.Registry, cfg.Logger),
		classifier:   cfg.Classifier,
		history:      history.NewManager(),
		input:        validator.NewMessageValidator(),
		logger:       cfg.Logger,
		revealDelay:  cfg.RevealDelay,
		overrides:    cfg.Defaults.Clone(),
		now:          cfg.Now,
		state:        types.StateIdle,
		welcomeShown: cfg.HasShownWelcome,
	}

	if !cfg.HasShownWelcome {
		a.history.Append(a.welcomeMessage())
		a.welcomeShown = true
	}

	return a
}

// SendMessage appends a user message, classifies it and appends the
// assistant reply. The reply is revealed after the reveal delay, or at once
// if ctx is cancelled first. If the conversation is cleared during the
// reveal the reply is dropped and ErrMessageNotFound is returned.
func (a *Agent) SendMessage(ctx context.Context, text string, attachments []types.Attachment) (types.Message, error) {
	a.mu.Lock()
	if a.state.Busy() {
		a.mu.Unlock()
		return types.Message{}, ErrBusy
	}
	if err := a.input.Validate(text, attachments); err != nil {
		a.mu.Unlock()
		return types.Message{}, err
	}
	text = a.input.Sanitize(text)

	a.history.Append(types.Message{
		Role:        types.RoleUser,
		Content:     text,
		Timestamp:   a.now(),
		Attachments: attachments,
	})

	tool, matched := a.classifier.Classify(text)
	reply := types.Message{
		Role:      types.RoleAssistant,
		Timestamp: a.now(),
		Streaming: true,
	}
	var seeded types.FormValues
	if matched {
		cfg := a.registry.Configuration(tool)
		seeded = a.seed(cfg)
		reply.Content = formIntro(cfg)
		reply.PendingForm = tool
		reply.FormValues = seeded.Clone()
	} else {
		reply.Content = a.helpText()
		reply.Suggestions = HelpSuggestions()
	}
	reply = a.history.Append(reply)

	previous := a.state
	a.state = types.StateAwaitingClassification
	gen := a.generation
	a.mu.Unlock()

	a.logger.Debug("Classified message",
		zap.String("tool", string(tool)),
		zap.Bool("matched", matched),
		zap.Int("attachments", len(attachments)))

	a.reveal(ctx)

	a.mu.Lock()
	defer a.mu.Unlock()
	if gen != a.generation {
		return types.Message{}, ErrMessageNotFound
	}

	final, err := a.history.Update(reply.ID, func(msg *types.Message) error {
		msg.Streaming = false
		return nil
	})
	if err != nil {
		return types.Message{}, err
	}

	switch {
	case matched:
		a.activate(final.ID, tool, seeded)
	case previous == types.StateFormActive && a.active != nil:
		a.state = types.StateFormActive
	default:
		a.state = types.StateIdle
	}

	return final, nil
}

// SelectTool opens the form for id directly, abandoning any active form.
func (a *Agent) SelectTool(id types.ToolID) (types.Message, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state.Busy() {
		return types.Message{}, ErrBusy
	}
	tool, ok := a.registry.Get(id)
	if !ok {
		return types.Message{}, fmt.Errorf("%w: %s", ErrUnknownTool, id)
	}

	cfg := tool.Configuration()
	seeded := a.seed(cfg)
	msg := a.history.Append(types.Message{
		Role:        types.RoleAssistant,
		Content:     formIntro(cfg),
		Timestamp:   a.now(),
		PendingForm: id,
		FormValues:  seeded.Clone(),
	})
	a.activate(msg.ID, id, seeded)

	return msg, nil
}

// UpdateFormValue sets one field of the active form and mirrors it onto the
// form's message. An empty value clears the field. Edits are rejected with
// ErrBusy while a reply is being revealed, even if a form stays open.
func (a *Agent) UpdateFormValue(field string, value types.Value) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state.Busy() {
		return ErrBusy
	}
	if a.state != types.StateFormActive || a.active == nil {
		return ErrNoActiveForm
	}
	cfg := a.registry.Configuration(a.active.tool)
	if _, ok := cfg.Field(field); !ok {
		return fmt.Errorf("%w: %s has no field %q", ErrUnknownField, cfg.ID, field)
	}

	if value.Empty() {
		delete(a.active.values, field)
	} else {
		a.active.values[field] = value
	}

	snapshot := a.active.values.Clone()
	_, err := a.history.Update(a.active.messageID, func(msg *types.Message) error {
		msg.FormValues = snapshot
		return nil
	})
	return err
}

// SubmitForm resolves and validates the active form on messageID, freezes
// the resolved values onto that message and appends the calculated result.
//
// Validation failures are returned as *validator.FieldErrors and leave the
// form active so it can be corrected.
func (a *Agent) SubmitForm(ctx context.Context, messageID string, id types.ToolID, values types.FormValues) (types.Message, error) {
	a.mu.Lock()
	if a.state.Busy() {
		a.mu.Unlock()
		return types.Message{}, ErrBusy
	}

	msg, ok := a.history.Get(messageID)
	if !ok {
		a.mu.Unlock()
		return types.Message{}, ErrMessageNotFound
	}
	if msg.PendingForm != id {
		a.mu.Unlock()
		return types.Message{}, fmt.Errorf("%w: message %s shows %q, not %q", ErrToolMismatch, messageID, msg.PendingForm, id)
	}
	if msg.Submitted != nil {
		a.mu.Unlock()
		return types.Message{}, ErrAlreadySubmitted
	}
	if a.active == nil || a.active.messageID != messageID {
		a.mu.Unlock()
		return types.Message{}, ErrNoActiveForm
	}

	cfg := a.registry.Configuration(id)
	resolved, err := a.executor.Resolve(id, a.overridesFor(cfg), a.active.values, values)
	if err != nil {
		a.mu.Unlock()
		return types.Message{}, err
	}
	if fieldErrs := validator.ValidateForm(cfg, resolved); fieldErrs != nil {
		a.mu.Unlock()
		return types.Message{}, fieldErrs
	}

	frozen := resolved.Clone()
	if _, err := a.history.Update(messageID, func(msg *types.Message) error {
		msg.FormValues = frozen.Clone()
		msg.Submitted = frozen
		return nil
	}); err != nil {
		a.mu.Unlock()
		return types.Message{}, err
	}

	a.active = nil
	a.state = types.StateComputing
	gen := a.generation
	a.mu.Unlock()

	a.reveal(ctx)

	// The submission is already accepted, so a cancelled ctx only skips the wait.
	result, execErr := a.executor.Execute(context.WithoutCancel(ctx), id, resolved)

	a.mu.Lock()
	defer a.mu.Unlock()
	if gen != a.generation {
		return types.Message{}, ErrMessageNotFound
	}
	a.state = types.StateIdle

	if execErr != nil {
		a.logger.Warn("Form submission failed",
			zap.String("tool", string(id)),
			zap.Error(execErr))
		failed := a.history.Append(types.Message{
			Role:        types.RoleAssistant,
			Content:     failureText(cfg, execErr),
			Timestamp:   a.now(),
			Suggestions: HelpSuggestions(),
		})
		return failed, execErr
	}

	a.logger.Info("Calculation finished",
		zap.String("tool", string(id)),
		zap.String("quality", string(result.Quality)))

	return a.history.Append(types.Message{
		Role:        types.RoleAssistant,
		Content:     result.Summary,
		Timestamp:   a.now(),
		Result:      &result,
		Suggestions: append([]string(nil), cfg.FollowUps...),
	}), nil
}

// ClearConversation resets the transcript to a single welcome message and
// drops any active form. A reply still being revealed is discarded.
func (a *Agent) ClearConversation() []types.Message {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.generation++
	a.active = nil
	a.state = types.StateIdle
	a.welcomeShown = true
	return a.history.Reset(a.welcomeMessage())
}

// Messages returns a copy of the transcript.
func (a *Agent) Messages() []types.Message {
	return a.history.Messages()
}

// Message returns a copy of one message.
func (a *Agent) Message(id string) (types.Message, bool) {
	return a.history.Get(id)
}

// State returns the current session state.
func (a *Agent) State() types.SessionState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// ActiveForm describes the form currently accepting edits.
type ActiveForm struct {
	MessageID string
	Tool      types.ToolID
	Values    types.FormValues
}

// ActiveForm returns the active form, if any.
func (a *Agent) ActiveForm() (ActiveForm, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.active == nil {
		return ActiveForm{}, false
	}
	return ActiveForm{
		MessageID: a.active.messageID,
		Tool:      a.active.tool,
		Values:    a.active.values.Clone(),
	}, true
}

// WelcomeShown reports whether this agent has shown a welcome message, so
// the host can carry the flag into the next session.
func (a *Agent) WelcomeShown() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.welcomeShown
}

// ListTools returns every calculator configuration in display order.
func (a *Agent) ListTools() []types.ToolConfiguration {
	return a.registry.Configurations()
}

// Configuration returns the form definition for id.
func (a *Agent) Configuration(id types.ToolID) (types.ToolConfiguration, bool) {
	tool, ok := a.registry.Get(id)
	if !ok {
		return types.ToolConfiguration{}, false
	}
	return tool.Configuration(), true
}

// Calculate runs a tool outside the conversation, using the same defaults
// a submitted form would.
func (a *Agent) Calculate(ctx context.Context, id types.ToolID, values types.FormValues) (types.ToolResult, error) {
	cfg, ok := a.Configuration(id)
	if !ok {
		return types.ToolResult{}, fmt.Errorf("%w: %s", ErrUnknownTool, id)
	}
	return a.executor.Execute(ctx, id, types.MergeValues(a.overridesFor(cfg), values))
}

// activate makes the form on messageID the only active form. Callers hold a.mu.
func (a *Agent) activate(messageID string, id types.ToolID, values types.FormValues) {
	if a.active != nil && a.active.messageID != messageID {
		a.logger.Debug("Abandoning active form",
			zap.String("tool", string(a.active.tool)),
			zap.String("message_id", a.active.messageID))
	}
	a.active = &activeForm{messageID: messageID, tool: id, values: values}
	a.state = types.StateFormActive
}

// seed returns the starting values for a new form.
func (a *Agent) seed(cfg types.ToolConfiguration) types.FormValues {
	return types.MergeValues(cfg.Defaults(), a.overridesFor(cfg))
}

// overridesFor keeps the configured defaults that apply to cfg.
func (a *Agent) overridesFor(cfg types.ToolConfiguration) types.FormValues {
	out := make(types.FormValues)
	for name, v := range a.overrides {
		if _, ok := cfg.Field(name); ok {
			out[name] = v
		}
	}
	return out
}

// reveal waits out the reveal delay unless ctx ends first.
func (a *Agent) reveal(ctx context.Context) {
	if a.revealDelay <= 0 {
		return
	}
	timer := time.NewTimer(a.revealDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
