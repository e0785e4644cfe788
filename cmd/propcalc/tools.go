package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ashutoshrp06/propcalc/internal/tools"
)

func newToolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List available calculators",
		Long: `List all available research calculators.

Examples:
  propcalc tools           # List all calculators
  propcalc tools --verbose # Show fields, defaults and examples`,
		Run: func(cmd *cobra.Command, args []string) {
			runTools(cmd)
		},
	}
}

func runTools(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	catalog := tools.DefaultCatalog()

	fmt.Fprintln(out, titleStyle.Render("Available Calculators"))
	fmt.Fprintln(out)

	for _, tc := range catalog.Configurations() {
		fmt.Fprintf(out, "  %s  %s\n", toolStyle.Render(string(tc.ID)), tc.Name)
		fmt.Fprintf(out, "      %s\n", dimStyle.Render(tc.Description))

		if verbose {
			fmt.Fprintln(out, "      Fields:")
			for _, f := range tc.Fields {
				var notes []string
				if f.Required {
					notes = append(notes, "required")
				}
				if f.Default != "" {
					notes = append(notes, "default "+f.Default)
				}
				if len(f.Choices) > 0 {
					values := make([]string, len(f.Choices))
					for i, c := range f.Choices {
						values[i] = c.Value
					}
					notes = append(notes, "one of "+strings.Join(values, "|"))
				}
				suffix := ""
				if len(notes) > 0 {
					suffix = " (" + strings.Join(notes, ", ") + ")"
				}
				fmt.Fprintf(out, "        %s%s\n", paramStyle.Render(f.Name), dimStyle.Render(suffix))
			}
			if len(tc.Examples) > 0 {
				fmt.Fprintf(out, "      Try: %q\n", tc.Examples[0])
			}
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintln(out, dimStyle.Render(fmt.Sprintf("  Total: %d calculators available", len(catalog.Configurations()))))
	if !verbose {
		fmt.Fprintln(out, dimStyle.Render("  Use --verbose for field details"))
	}
}
