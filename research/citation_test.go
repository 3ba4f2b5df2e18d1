package research

import (
	"strings"
	"testing"

	"github.com/deepscout/deepscout/storage"
)

func sessionWith(t *testing.T, artifacts map[string]string) *storage.SessionStore {
	t.Helper()
	store, err := storage.NewSessionStore(t.TempDir(), "sess")
	if err != nil {
		t.Fatal(err)
	}
	for name, content := range artifacts {
		if _, err := store.WriteArtifact(name, content); err != nil {
			t.Fatal(err)
		}
	}
	return store
}

func TestLoadCitationContextRequiresReport(t *testing.T) {
	store := sessionWith(t, map[string]string{"research_plan": "plan"})
	if _, err := LoadCitationContext(store, "sess"); err == nil {
		t.Fatal("missing report must fail")
	}
}

func TestLoadCitationContextGathersArtifacts(t *testing.T) {
	store := sessionWith(t, map[string]string{
		"report":           "draft report",
		"research_plan":    "the plan",
		"sub_report_beta":  "beta findings",
		"sub_report_alpha": "alpha findings",
	})

	ctx, err := LoadCitationContext(store, "sess")
	if err != nil {
		t.Fatal(err)
	}
	if ctx.FinalReport != "draft report" || ctx.ResearchPlan != "the plan" {
		t.Fatalf("context = %+v", ctx)
	}
	if len(ctx.Artifacts) != 2 {
		t.Fatalf("artifacts = %d, want 2", len(ctx.Artifacts))
	}
	if ctx.Artifacts[0].Name != "sub_report_alpha.md" || ctx.Artifacts[1].Name != "sub_report_beta.md" {
		t.Fatalf("artifacts not sorted: %v, %v", ctx.Artifacts[0].Name, ctx.Artifacts[1].Name)
	}
}

func TestBuildCitationMessageOrdering(t *testing.T) {
	msg := BuildCitationMessage(&CitationContext{
		SessionID:    "sess",
		FinalReport:  "THE-REPORT",
		ResearchPlan: "THE-PLAN",
		Artifacts: []storage.Artifact{
			{Name: "sub_report_a.md", Content: "A-CONTENT"},
			{Name: "sub_report_b.md", Content: "B-CONTENT"},
		},
	})

	// Instructions, plan, report, then numbered artifacts, in that order.
	positions := []int{
		strings.Index(msg, "meticulous research editor"),
		strings.Index(msg, "Research plan"),
		strings.Index(msg, "THE-PLAN"),
		strings.Index(msg, "Draft final report"),
		strings.Index(msg, "THE-REPORT"),
		strings.Index(msg, "Artifact 1: sub_report_a.md"),
		strings.Index(msg, "A-CONTENT"),
		strings.Index(msg, "Artifact 2: sub_report_b.md"),
		strings.Index(msg, "B-CONTENT"),
	}
	last := -1
	for i, pos := range positions {
		if pos < 0 {
			t.Fatalf("section %d missing from message", i)
		}
		if pos < last {
			t.Fatalf("section %d out of order", i)
		}
		last = pos
	}
}

func TestBuildCitationMessageWithoutArtifacts(t *testing.T) {
	msg := BuildCitationMessage(&CitationContext{
		SessionID:   "sess",
		FinalReport: "REPORT",
	})
	if strings.Contains(msg, "Research plan") {
		t.Fatal("plan section should be absent without a plan")
	}
	if !strings.Contains(msg, "No additional artifacts were saved") {
		t.Fatal("missing no-artifacts note")
	}
}
