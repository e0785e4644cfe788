package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ashutoshrp06/propcalc/internal/agent"
	"github.com/ashutoshrp06/propcalc/internal/config"
	"github.com/ashutoshrp06/propcalc/internal/report"
	"github.com/ashutoshrp06/propcalc/internal/types"
	"github.com/ashutoshrp06/propcalc/internal/ui"
)

var (
	configPath  string
	verbose     bool
	interactive bool
)

var rootCmd = &cobra.Command{
	Use:   "propcalc [question]",
	Short: "Research planning calculators in your terminal",
	Long: `propcalc answers survey research planning questions: margin of error,
sample size, MaxDiff design, survey length, demographic quotas and
project feasibility.

Usage:
  propcalc "What's the margin of error for n=500?"
  propcalc calc margin-of-error --set sampleSize=500
  propcalc --it`,

	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if interactive {
			return runInteractive()
		}
		if len(args) > 0 {
			return runAsk(cmd.OutOrStdout(), strings.Join(args, " "))
		}
		return cmd.Help()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolVar(&interactive, "it", false, "Start interactive mode")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(newCalcCmd())
	rootCmd.AddCommand(newToolsCmd())
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)
}

func runInteractive() error {
	cfg := mustLoadConfig()
	logger := createLogger(cfg, zapcore.WarnLevel)
	defer logger.Sync()

	a := newAgent(cfg, logger, cfg.RevealDelay())
	return ui.Run(a)
}

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Find the calculator for a question",
	Long: `Classify a question and show the calculator form it opens, or the
list of calculators when nothing matches.

Examples:
  propcalc ask "How long will my survey take?"
  propcalc ask "Is 1000 completes in 2 weeks achievable?"`,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAsk(cmd.OutOrStdout(), strings.Join(args, " "))
	},
}

// runAsk classifies one question and prints the reply without the TUI.
func runAsk(out io.Writer, question string) error {
	cfg := mustLoadConfig()
	logger := createLogger(cfg, zapcore.WarnLevel)
	defer logger.Sync()

	a := newAgent(cfg, logger, 0)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	reply, err := a.SendMessage(ctx, question, nil)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, report.StripBold(reply.Content))
	if reply.PendingForm != "" {
		tc, _ := a.Configuration(reply.PendingForm)
		fmt.Fprintln(out)
		printFields(out, tc, reply.FormValues)
		fmt.Fprintln(out)
		fmt.Fprintln(out, dimStyle.Render(fmt.Sprintf("Run it with: propcalc calc %s --set <field>=<value>", tc.ID)))
	}
	for i, s := range reply.Suggestions {
		if i == 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "  • %s\n", s)
	}
	return nil
}

// newAgent builds a session. A zero reveal delay disables the reveal.
func newAgent(cfg *config.Config, logger *zap.Logger, reveal time.Duration) *agent.Agent {
	if reveal <= 0 {
		reveal = -1
	}
	return agent.New(agent.Config{
		Logger:          logger,
		HasShownWelcome: !cfg.Session.ShowWelcome,
		RevealDelay:     reveal,
		Defaults:        cfg.FormDefaults(),
	})
}

func printFields(out io.Writer, tc types.ToolConfiguration, values types.FormValues) {
	for _, f := range tc.Fields {
		req := ""
		if f.Required {
			req = " (required)"
		}
		current := ""
		if v, ok := values[f.Name]; ok && !v.Empty() {
			current = " = " + v.Text()
		}
		fmt.Fprintf(out, "  %s%s%s\n", paramStyle.Render(f.Name), current, dimStyle.Render(req))
		fmt.Fprintf(out, "      %s\n", dimStyle.Render(f.Label))
	}
}

func mustLoadConfig() *config.Config {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not load config: %v\n", err)
		cfg = config.DefaultConfig()
	}
	return cfg
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.Load(configPath)
	}
	return config.LoadFromPaths(
		"config.local.yaml",
		"config.yaml",
	)
}

// createLogger logs at the configured level, but never below floor unless
// verbose is set.
func createLogger(cfg *config.Config, floor zapcore.Level) *zap.Logger {
	if verbose {
		logger, _ := zap.NewDevelopment()
		return logger
	}

	level := cfg.LogLevel()
	if level < floor {
		level = floor
	}

	zc := zap.NewProductionConfig()
	if cfg.Logging.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}

	logger, err := zc.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7C3AED")).Bold(true)
	toolStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B")).Bold(true)
	paramStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#06B6D4"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
)

func printError(msg string, err error) {
	fmt.Fprintln(os.Stderr, errStyle.Render(fmt.Sprintf("Error: %s: %v", msg, err)))
}
