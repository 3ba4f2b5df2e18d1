package research

import (
	"fmt"
	"strings"

	"github.com/deepscout/deepscout/storage"
)

// CitationContext is the material handed to the citation editor: the
// draft report plus everything it can cite from.
type CitationContext struct {
	SessionID    string
	FinalReport  string
	ResearchPlan string // empty when no plan was saved
	Artifacts    []storage.Artifact
}

// LoadCitationContext gathers the session's report, optional plan, and
// remaining artifacts. A missing report is an error: there is nothing to
// cite without one.
func LoadCitationContext(store *storage.SessionStore, sessionID string) (*CitationContext, error) {
	report, err := store.ReadReport()
	if err != nil {
		return nil, fmt.Errorf("final report not found for session %q: %w", sessionID, err)
	}
	plan, err := store.ReadResearchPlan()
	if err != nil {
		return nil, err
	}
	artifacts, err := store.SubReports()
	if err != nil {
		return nil, err
	}
	return &CitationContext{
		SessionID:    sessionID,
		FinalReport:  report,
		ResearchPlan: plan,
		Artifacts:    artifacts,
	}, nil
}

// BuildCitationMessage assembles the citation editor's task message: the
// instructions, the optional plan, the draft report, and the numbered
// supporting artifacts in order.
func BuildCitationMessage(ctx *CitationContext) string {
	var lines []string
	lines = append(lines,
		"You are a meticulous research editor. The lead researcher has finished a draft "+
			"report for the user. Revise it so that every verifiable fact is supported by "+
			"inline citations that point to the provided artifacts.")
	lines = append(lines,
		"Your deliverable is the revised report only. Preserve the structure and claims, "+
			"tighten wording if needed, and insert bracketed numeric citations like [1], [2].")
	lines = append(lines,
		"Do not invent new facts or sources. Cite only from the supplied artifacts and "+
			"list each citation in a final 'Sources' section with the matching number and URL "+
			"or document reference.")
	lines = append(lines,
		"After verifying the report, return the updated markdown that already includes "+
			"the citations and the sources section.")

	if ctx.ResearchPlan != "" {
		lines = append(lines,
			"\nResearch plan (for context only, cite from it only if it contains explicit sources):",
			"```markdown",
			strings.TrimSpace(ctx.ResearchPlan),
			"```")
	}

	lines = append(lines,
		"\nDraft final report from the lead researcher:",
		"```markdown",
		strings.TrimSpace(ctx.FinalReport),
		"```")

	if len(ctx.Artifacts) > 0 {
		lines = append(lines, "\nSupporting artifacts with evidence:")
		for i, artifact := range ctx.Artifacts {
			lines = append(lines,
				fmt.Sprintf("--- Artifact %d: %s ---", i+1, artifact.Name),
				"```markdown",
				strings.TrimSpace(artifact.Content),
				"```")
		}
	} else {
		lines = append(lines,
			"\nNo additional artifacts were saved for this session. Use only the final report "+
				"and research plan when citing.")
	}

	return strings.Join(lines, "\n")
}
