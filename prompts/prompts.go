// Package prompts embeds the agent prompt templates and applies template
// variable replacement at load time.
package prompts

import (
	"embed"
	"fmt"
	"strings"
	"time"
)

// Template names.
const (
	ResearchLeadAgent = "research_lead_agent.md"
	ResearchSubAgent  = "research_sub_agent.md"
	CitationAgent     = "citation_agent.md"
)

//go:embed templates/*.md
var templates embed.FS

// Load returns a prompt template with variables replaced. {{.CurrentDate}}
// is always available; vars fill custom {{name}} placeholders.
func Load(name string, vars map[string]string) (string, error) {
	data, err := templates.ReadFile("templates/" + name)
	if err != nil {
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}
	content := string(data)
	content = strings.ReplaceAll(content, "{{.CurrentDate}}", time.Now().Format("2006-01-02"))
	for key, value := range vars {
		content = strings.ReplaceAll(content, "{{"+key+"}}", value)
	}
	return content, nil
}
