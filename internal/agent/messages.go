package agent

import (
	"fmt"
	"strings"

	"github.com/ashutoshrp06/propcalc/internal/types"
)

// helpSuggestions are offered when a message does not name a calculator.
// Each one classifies to the tool at the same position in types.AllTools.
var helpSuggestions = []string{
	"Calculate margin of error",
	"Find required sample size",
	"Design a MaxDiff study",
	"Estimate survey length",
	"Plan demographic quotas",
	"Check project feasibility",
}

// HelpSuggestions returns the generic suggestion chips.
func HelpSuggestions() []string {
	return append([]string(nil), helpSuggestions...)
}

const welcomeText = "Hi! I'm your research calculator assistant. Ask me about margin of error, " +
	"sample sizes, MaxDiff designs, survey length, demographic quotas or project feasibility, " +
	"or pick a calculator below."

func (a *Agent) welcomeMessage() types.Message {
	return types.Message{
		Role:        types.RoleAssistant,
		Content:     welcomeText,
		Timestamp:   a.now(),
		Suggestions: HelpSuggestions(),
	}
}

func (a *Agent) helpText() string {
	var sb strings.Builder
	sb.WriteString("I'm not sure which calculator you need. I can help with:\n\n")
	for _, cfg := range a.registry.Configurations() {
		sb.WriteString(fmt.Sprintf("- **%s**: %s\n", cfg.Name, cfg.Description))
	}

	sb.WriteString("\nTry asking:\n")
	for _, cfg := range a.registry.Configurations() {
		if len(cfg.Examples) > 0 {
			sb.WriteString(fmt.Sprintf("- \"%s\"\n", cfg.Examples[0]))
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formIntro(cfg types.ToolConfiguration) string {
	return fmt.Sprintf("I can help with that using the **%s**. %s Fill in the fields below and submit when you're ready.",
		cfg.Name, cfg.Description)
}

func failureText(cfg types.ToolConfiguration, err error) string {
	return fmt.Sprintf("I couldn't run the %s: %v", cfg.Name, err)
}
