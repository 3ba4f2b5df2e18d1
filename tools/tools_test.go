package tools

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/deepscout/deepscout/search"
	"github.com/deepscout/deepscout/storage"
)

func testStore(t *testing.T) *storage.SessionStore {
	t.Helper()
	store, err := storage.NewSessionStore(t.TempDir(), "session")
	if err != nil {
		t.Fatal(err)
	}
	return store
}

func TestExecuteRejectsDisallowedTool(t *testing.T) {
	store := testStore(t)
	e := NewExecutor([]Kind{KindWebSearch}, Deps{Store: store})

	_, err := e.Execute(context.Background(), "complete_task", `{"final_report":"x"}`, CallContext{})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	if _, statErr := os.Stat(filepath.Join(store.Root(), "report.md")); !os.IsNotExist(statErr) {
		t.Fatal("disallowed tool produced a side effect")
	}
}

func TestExecuteValidatesArguments(t *testing.T) {
	e := NewExecutor([]Kind{KindWebSearch, KindCompleteTask}, Deps{Store: testStore(t)})
	ctx := context.Background()

	cases := []struct {
		name string
		tool string
		args string
	}{
		{"missing required", "complete_task", `{}`},
		{"wrong string type", "complete_task", `{"final_report": 7}`},
		{"wrong integer type", "web_search", `{"query":"q","max_results":"five"}`},
		{"fractional integer", "web_search", `{"query":"q","max_results":2.5}`},
		{"wrong boolean type", "web_search", `{"query":"q","include_answer":"yes"}`},
		{"wrong array type", "web_search", `{"query":"q","include_domains":"wikipedia.org"}`},
		{"malformed json", "complete_task", `{"final_report":`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.Execute(ctx, tc.tool, tc.args, CallContext{})
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("err = %v, want ErrValidation", err)
			}
		})
	}
}

func TestCompleteTaskWritesReport(t *testing.T) {
	store := testStore(t)
	e := NewExecutor([]Kind{KindCompleteTask}, Deps{Store: store})

	env, err := e.Execute(context.Background(), "complete_task", `{"final_report":"X"}`, CallContext{AgentID: "lead"})
	if err != nil {
		t.Fatal(err)
	}
	if !env.Success || !env.TaskCompleted {
		t.Fatalf("envelope = %+v, want success and task_completed", env)
	}
	if env.FormattedContent != "X" {
		t.Fatalf("formatted content = %q, want report echo", env.FormattedContent)
	}
	report, err := store.ReadReport()
	if err != nil {
		t.Fatal(err)
	}
	if report != "X" {
		t.Fatalf("report.md = %q, want %q", report, "X")
	}
}

func TestSavePlanWritesArtifactWithoutCompletion(t *testing.T) {
	store := testStore(t)
	e := NewExecutor([]Kind{KindSavePlan}, Deps{Store: store})

	env, err := e.Execute(context.Background(), "save_research_plan", `{"research_plan":"1. search"}`, CallContext{})
	if err != nil {
		t.Fatal(err)
	}
	if env.TaskCompleted {
		t.Fatal("plan save must not signal completion")
	}
	plan, err := store.ReadResearchPlan()
	if err != nil {
		t.Fatal(err)
	}
	if plan != "1. search" {
		t.Fatalf("research_plan.md = %q", plan)
	}
}

func TestCompleteSubTaskFilenameSanitized(t *testing.T) {
	store := testStore(t)
	e := NewExecutor([]Kind{KindCompleteSubTask}, Deps{Store: store})

	call := CallContext{AgentID: "weird agent!", ToolCallID: "call/1", StepIndex: 4}
	env, err := e.Execute(context.Background(), "complete_sub_task", `{"sub_report":"findings"}`, call)
	if err != nil {
		t.Fatal(err)
	}
	if !env.TaskCompleted {
		t.Fatal("sub-task completion must signal task_completed")
	}
	want := "sub_report_weird-agent_call-1_step4.md"
	if _, err := os.Stat(filepath.Join(store.Root(), want)); err != nil {
		t.Fatalf("expected %s: %v", want, err)
	}
}

func TestCompleteSubTaskFilenameFallback(t *testing.T) {
	store := testStore(t)
	e := NewExecutor([]Kind{KindCompleteSubTask}, Deps{Store: store})

	_, err := e.Execute(context.Background(), "complete_sub_task", `{"sub_report":"r"}`, CallContext{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(store.Root(), "sub_report_sub_agent_complete_step0.md")); err != nil {
		t.Fatalf("fallback filename not used: %v", err)
	}
}

func TestWebSearchFormatsResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"query": "go concurrency",
			"answer": "Use goroutines.",
			"results": [{"title": "Go blog", "url": "https://go.dev/blog", "content": "Share memory by communicating."}]
		}`))
	}))
	defer srv.Close()

	client := search.NewClientWithHTTP("key", "basic", srv.Client())
	client.SetEndpoints(srv.URL+"/search", srv.URL+"/extract")

	e := NewExecutor([]Kind{KindWebSearch}, Deps{Search: client})
	env, err := e.Execute(context.Background(), "web_search", `{"query":"go concurrency","include_answer":true}`, CallContext{})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(env.FormattedContent, "Search Results for: 'go concurrency' (1 results, includes AI answer)") {
		t.Fatalf("missing header: %q", env.FormattedContent)
	}
	if !strings.Contains(env.FormattedContent, "https://go.dev/blog") {
		t.Fatalf("missing result URL: %q", env.FormattedContent)
	}
}

func TestSubagentRunnerFailureIsExecutionError(t *testing.T) {
	e := NewExecutor([]Kind{KindRunSubagent}, Deps{Subagents: failingRunner{}})

	_, err := e.Execute(context.Background(), "run_subagent", `{"prompt":"p","agent_id":"x"}`, CallContext{})
	if !errors.Is(err, ErrExecution) {
		t.Fatalf("err = %v, want ErrExecution", err)
	}
}

type failingRunner struct{}

func (failingRunner) RunSubagent(ctx context.Context, agentID, parentID, prompt string) (string, error) {
	return "", errors.New("sub-agent blew up")
}

func TestDefsFollowAllowListOrder(t *testing.T) {
	e := NewExecutor([]Kind{KindCompleteTask, KindWebSearch}, Deps{})
	defs := e.Defs()
	if len(defs) != 2 {
		t.Fatalf("defs = %d, want 2", len(defs))
	}
	if defs[0].Function.Name != "complete_task" || defs[1].Function.Name != "web_search" {
		t.Fatalf("defs out of order: %s, %s", defs[0].Function.Name, defs[1].Function.Name)
	}
	if !e.Has(KindWebSearch) || e.Has(KindRunSubagent) {
		t.Fatal("Has does not reflect the allow-list")
	}
}
