// Package tools registers the research calculators and runs them against
// form values.
package tools

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ashutoshrp06/propcalc/internal/types"
	"github.com/ashutoshrp06/propcalc/internal/validator"
)

// ErrUnknownTool is returned when a tool id has no registered calculator.
var ErrUnknownTool = errors.New("unknown tool")

// Tool defines the interface that all calculators implement.
type Tool interface {
	// ID returns the unique identifier for this tool.
	ID() types.ToolID

	// Configuration returns the form definition used to collect inputs.
	Configuration() types.ToolConfiguration

	// Compute runs the calculation on fully resolved values.
	Compute(values types.FormValues) (types.ToolResult, error)
}

// Registry manages tool registration and lookup.
type Registry struct {
	mu    sync.RWMutex
	tools map[types.ToolID]Tool
	order []types.ToolID
}

// NewRegistry creates a new tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[types.ToolID]Tool),
	}
}

// Register adds a tool to the registry.
func (r *Registry) Register(tool Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := tool.ID()
	if _, exists := r.tools[id]; exists {
		return fmt.Errorf("tool already registered: %s", id)
	}

	r.tools[id] = tool
	r.order = append(r.order, id)
	return nil
}

// MustRegister adds a tool to the registry, panicking on error.
func (r *Registry) MustRegister(tool Tool) {
	if err := r.Register(tool); err != nil {
		panic(err)
	}
}

// Get retrieves a tool by id.
func (r *Registry) Get(id types.ToolID) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, exists := r.tools[id]
	return tool, exists
}

// List returns registered tool ids in registration order.
func (r *Registry) List() []types.ToolID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]types.ToolID, len(r.order))
	copy(ids, r.order)
	return ids
}

// Configurations returns the form definition of every registered tool in
// registration order.
func (r *Registry) Configurations() []types.ToolConfiguration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	configs := make([]types.ToolConfiguration, 0, len(r.order))
	for _, id := range r.order {
		configs = append(configs, r.tools[id].Configuration())
	}
	return configs
}

// Configuration returns the form definition for id. Unknown ids panic.
func (r *Registry) Configuration(id types.ToolID) types.ToolConfiguration {
	tool, ok := r.Get(id)
	if !ok {
		panic(fmt.Sprintf("tools: no tool registered for %q", id))
	}
	return tool.Configuration()
}

// Executor resolves form values, validates them and runs a tool.
type Executor struct {
	registry *Registry
	results  *validator.ResultValidator
	logger   *zap.Logger
}

// NewExecutor creates a new tool executor.
func NewExecutor(registry *Registry, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{
		registry: registry,
		results:  validator.NewResultValidator(),
		logger:   logger,
	}
}

// Resolve merges configuration defaults under the given layers, later
// layers taking priority.
func (e *Executor) Resolve(id types.ToolID, layers ...types.FormValues) (types.FormValues, error) {
	tool, exists := e.registry.Get(id)
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, id)
	}
	all := append([]types.FormValues{tool.Configuration().Defaults()}, layers...)
	return types.MergeValues(all...), nil
}

// Execute runs a tool with values layered over its defaults. Validation
// failures are returned as *validator.FieldErrors.
func (e *Executor) Execute(ctx context.Context, id types.ToolID, values types.FormValues) (types.ToolResult, error) {
	start := time.Now()

	if err := ctx.Err(); err != nil {
		return types.ToolResult{}, err
	}

	tool, exists := e.registry.Get(id)
	if !exists {
		return types.ToolResult{}, fmt.Errorf("%w: %s", ErrUnknownTool, id)
	}

	resolved, err := e.Resolve(id, values)
	if err != nil {
		return types.ToolResult{}, err
	}

	if fieldErrs := validator.ValidateForm(tool.Configuration(), resolved); fieldErrs != nil {
		e.logger.Debug("Form validation failed",
			zap.String("tool", string(id)),
			zap.Any("fields", fieldErrs.Map()))
		return types.ToolResult{}, fieldErrs
	}

	result, err := tool.Compute(resolved)
	if err != nil {
		e.logger.Warn("Calculation failed",
			zap.String("tool", string(id)),
			zap.Error(err))
		return types.ToolResult{}, err
	}

	result.Tool = id
	result.Inputs = resolved
	if err := e.results.Validate(result); err != nil {
		return types.ToolResult{}, fmt.Errorf("malformed result: %w", err)
	}

	e.logger.Debug("Calculation completed",
		zap.String("tool", string(id)),
		zap.String("quality", string(result.Quality)),
		zap.Duration("duration", time.Since(start)))

	return result, nil
}
