// Package mcpserver exposes the research calculators as MCP tools so that
// assistants can run them over stdio.
package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/ashutoshrp06/propcalc/internal/intent"
	"github.com/ashutoshrp06/propcalc/internal/report"
	"github.com/ashutoshrp06/propcalc/internal/tools"
	"github.com/ashutoshrp06/propcalc/internal/types"
	"github.com/ashutoshrp06/propcalc/internal/validator"
)

// SuggestToolName is the MCP tool that maps a question to a calculator.
const SuggestToolName = "suggest_calculator"

// Config wires the server's dependencies.
type Config struct {
	Name       string
	Version    string
	Registry   *tools.Registry
	Classifier *intent.Classifier
	Defaults   types.FormValues
	Logger     *zap.Logger
}

// Server holds the calculator handlers behind an MCP server.
type Server struct {
	mcp        *server.MCPServer
	registry   *tools.Registry
	executor   *tools.Executor
	classifier *intent.Classifier
	defaults   types.FormValues
	logger     *zap.Logger
}

// New builds an MCP server with one tool per registered calculator.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Registry == nil {
		cfg.Registry = tools.NewDefaultRegistry(cfg.Logger)
	}
	if cfg.Classifier == nil {
		cfg.Classifier = intent.New(nil)
	}
	if cfg.Name == "" {
		cfg.Name = "propcalc"
	}

	s := &Server{
		registry:   cfg.Registry,
		executor:   tools.NewExecutor(cfg.Registry, cfg.Logger),
		classifier: cfg.Classifier,
		defaults:   cfg.Defaults,
		logger:     cfg.Logger,
	}

	s.mcp = server.NewMCPServer(
		cfg.Name,
		cfg.Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(instructions()),
	)

	for _, tc := range cfg.Registry.Configurations() {
		s.mcp.AddTool(Definition(tc), s.handlerFor(tc))
	}
	s.mcp.AddTool(suggestDefinition(), s.handleSuggest)

	return s
}

// MCPServer returns the underlying server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// Serve runs the server over stdin/stdout until the client disconnects.
func (s *Server) Serve() error {
	s.logger.Info("Serving calculators over MCP stdio",
		zap.Int("tools", len(s.registry.List())))
	return server.ServeStdio(s.mcp)
}

// ToolName converts a calculator id into its MCP tool name.
func ToolName(id types.ToolID) string {
	return strings.ReplaceAll(string(id), "-", "_")
}

// Definition returns the MCP schema for one calculator.
func Definition(tc types.ToolConfiguration) mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(tc.Description)}

	for _, f := range tc.Fields {
		props := []mcp.PropertyOption{mcp.Description(describe(f))}
		if f.Required {
			props = append(props, mcp.Required())
		}

		if f.Kind == types.FieldNumeric {
			if f.Min != nil {
				props = append(props, mcp.Min(*f.Min))
			}
			if f.Max != nil {
				props = append(props, mcp.Max(*f.Max))
			}
			if v, ok := f.DefaultValue(); ok {
				if n, ok := v.Float(); ok {
					props = append(props, mcp.DefaultNumber(n))
				}
			}
			opts = append(opts, mcp.WithNumber(f.Name, props...))
			continue
		}

		if f.Kind == types.FieldChoice && !f.AllowOther {
			values := make([]string, len(f.Choices))
			for i, c := range f.Choices {
				values[i] = c.Value
			}
			props = append(props, mcp.Enum(values...))
		}
		if f.Default != "" {
			props = append(props, mcp.DefaultString(f.Default))
		}
		opts = append(opts, mcp.WithString(f.Name, props...))
	}

	return mcp.NewTool(ToolName(tc.ID), opts...)
}

func describe(f types.ToolFieldDefinition) string {
	desc := f.Label
	if f.Unit != "" {
		desc += " (" + f.Unit + ")"
	}
	if f.AllowOther && len(f.Choices) > 0 {
		names := make([]string, len(f.Choices))
		for i, c := range f.Choices {
			names[i] = c.Value
		}
		desc += ". Known values: " + strings.Join(names, ", ")
	}
	return desc
}

func suggestDefinition() mcp.Tool {
	return mcp.NewTool(SuggestToolName,
		mcp.WithDescription("Suggest which research calculator answers a free-text question."),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("The research planning question, e.g. 'what sample size do I need for ±3%?'"),
		),
	)
}

func (s *Server) handlerFor(tc types.ToolConfiguration) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return s.handleCalculate(ctx, tc, req)
	}
}

func (s *Server) handleCalculate(ctx context.Context, tc types.ToolConfiguration, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	values := types.FormValues{}
	for name, raw := range req.GetArguments() {
		field, ok := tc.Field(name)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("unknown parameter %q for %s", name, ToolName(tc.ID))), nil
		}
		v, err := tools.CoerceAny(field, raw)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if !v.Empty() {
			values[name] = v
		}
	}

	result, err := s.executor.Execute(ctx, tc.ID, types.MergeValues(s.overridesFor(tc), values))
	if err != nil {
		var fieldErrs *validator.FieldErrors
		if errors.As(err, &fieldErrs) {
			return mcp.NewToolResultError(fmt.Sprintf("invalid input: %v", fieldErrs)), nil
		}
		s.logger.Warn("MCP calculation failed",
			zap.String("tool", string(tc.ID)),
			zap.Error(err))
		return mcp.NewToolResultError(fmt.Sprintf("calculation failed: %v", err)), nil
	}

	res := mcp.NewToolResultText(report.Markdown(tc.Name, result))
	if data, err := report.JSON(result); err == nil {
		res.Content = append(res.Content, mcp.NewTextContent(data))
	}
	return res, nil
}

func (s *Server) handleSuggest(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, _ := req.GetArguments()["question"].(string)
	if strings.TrimSpace(question) == "" {
		return mcp.NewToolResultError("question is required"), nil
	}

	id, ok := s.classifier.Classify(question)
	if !ok {
		var sb strings.Builder
		sb.WriteString("No calculator matched. Available tools:\n\n")
		for _, tc := range s.registry.Configurations() {
			sb.WriteString(fmt.Sprintf("- `%s`: %s\n", ToolName(tc.ID), tc.Description))
		}
		return mcp.NewToolResultText(sb.String()), nil
	}

	tc, _ := s.registry.Get(id)
	cfg := tc.Configuration()
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Use `%s` (%s).\n\n%s\n\nParameters:\n", ToolName(id), cfg.Name, cfg.Description))
	for _, f := range cfg.Fields {
		req := "optional"
		if f.Required {
			req = "required"
		}
		sb.WriteString(fmt.Sprintf("- `%s`: %s, %s\n", f.Name, f.Label, req))
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// overridesFor keeps only configured defaults that tc actually has.
func (s *Server) overridesFor(tc types.ToolConfiguration) types.FormValues {
	out := types.FormValues{}
	for name, v := range s.defaults {
		if _, ok := tc.Field(name); ok {
			out[name] = v
		}
	}
	return out
}

func instructions() string {
	return "Research planning calculators. Call suggest_calculator with the user's question " +
		"when unsure which tool applies, then call that tool with numeric inputs. " +
		"Results are Markdown with the headline figure in bold."
}
