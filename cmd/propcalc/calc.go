package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/ashutoshrp06/propcalc/internal/report"
	"github.com/ashutoshrp06/propcalc/internal/tools"
	"github.com/ashutoshrp06/propcalc/internal/types"
	"github.com/ashutoshrp06/propcalc/internal/validator"
)

type calcOptions struct {
	sets   []string
	format string
	output string
}

func newCalcCmd() *cobra.Command {
	opts := &calcOptions{}

	cmd := &cobra.Command{
		Use:   "calc <tool>",
		Short: "Run one calculator",
		Long: `Run a calculator directly with field values.

Unset fields use their defaults. Select fields accept a value or its label.

Examples:
  propcalc calc margin-of-error --set sampleSize=500
  propcalc calc required-sample-size --set marginOfError=3 --set confidenceLevel=99
  propcalc calc feasibility --set sampleSize=1000 --set loi=12 --set timeline=14 --format markdown
  propcalc calc demographics-quota --set totalSample=800 --set country=uk -o quotas.html --format html`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCalc(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringArrayVar(&opts.sets, "set", nil, "Field value as name=value (repeatable)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, markdown, html or json")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Write the result to a file instead of stdout")

	return cmd
}

func runCalc(cmd *cobra.Command, name string, opts *calcOptions) error {
	id, ok := types.ParseToolID(name)
	if !ok {
		ids := make([]string, 0, len(types.AllTools()))
		for _, t := range types.AllTools() {
			ids = append(ids, string(t))
		}
		return fmt.Errorf("%w: %q (choose one of %s)", tools.ErrUnknownTool, name, strings.Join(ids, ", "))
	}

	format, err := report.ParseFormat(opts.format)
	if err != nil {
		return err
	}

	cfg := mustLoadConfig()
	logger := createLogger(cfg, zapcore.WarnLevel)
	defer logger.Sync()

	a := newAgent(cfg, logger, 0)
	tc, _ := a.Configuration(id)

	raw, err := tools.ParseAssignments(opts.sets)
	if err != nil {
		return err
	}
	values, err := tools.CoerceAll(tc, raw)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := a.Calculate(ctx, id, values)
	if err != nil {
		var fieldErrs *validator.FieldErrors
		if errors.As(err, &fieldErrs) {
			fmt.Fprintln(cmd.ErrOrStderr(), errStyle.Render("Invalid input:"))
			for _, fe := range fieldErrs.Errors {
				fmt.Fprintf(cmd.ErrOrStderr(), "  %s %s\n", paramStyle.Render(fe.Field), fe.Message)
			}
			return fmt.Errorf("%s: %d invalid field(s)", id, len(fieldErrs.Errors))
		}
		return err
	}

	rendered, err := report.Render(format, tc.Name, result)
	if err != nil {
		return err
	}

	if opts.output != "" {
		if err := os.WriteFile(opts.output, []byte(rendered), 0644); err != nil {
			return fmt.Errorf("write %s: %w", opts.output, err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("Saved to "+opts.output))
		return nil
	}

	fmt.Fprint(cmd.OutOrStdout(), rendered)
	return nil
}
