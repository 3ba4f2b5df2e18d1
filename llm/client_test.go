package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/deepscout/deepscout/provider"
)

type fakeProvider struct {
	content string
	err     error
	calls   int
	stamps  []time.Time
}

func (f *fakeProvider) Chat(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	f.calls++
	f.stamps = append(f.stamps, time.Now())
	if f.err != nil {
		return nil, f.err
	}
	return &provider.Response{Content: f.content}, nil
}

func TestGenerateWrapsProviderFailure(t *testing.T) {
	c := NewClient(&fakeProvider{err: errors.New("boom")}, 0)
	_, err := c.Generate(context.Background(), []provider.Message{provider.UserMessage("hi")})
	if !errors.Is(err, ErrProvider) {
		t.Fatalf("err = %v, want ErrProvider", err)
	}
}

func TestGenerateRejectsEmptyContent(t *testing.T) {
	c := NewClient(&fakeProvider{content: "   "}, 0)
	_, err := c.Generate(context.Background(), []provider.Message{provider.UserMessage("hi")})
	if !errors.Is(err, ErrProvider) {
		t.Fatalf("err = %v, want ErrProvider for empty content", err)
	}
}

func TestRateGateEnforcesMinimumInterval(t *testing.T) {
	fake := &fakeProvider{content: "ok"}
	c := NewClient(fake, 50*time.Millisecond)
	ctx := context.Background()
	msgs := []provider.Message{provider.UserMessage("hi")}

	if _, err := c.Generate(ctx, msgs); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Generate(ctx, msgs); err != nil {
		t.Fatal(err)
	}
	if gap := fake.stamps[1].Sub(fake.stamps[0]); gap < 45*time.Millisecond {
		t.Fatalf("calls only %v apart, want the minimum interval honored", gap)
	}
}

func TestRateGateRespectsCancellation(t *testing.T) {
	c := NewClient(&fakeProvider{content: "ok"}, time.Minute)
	ctx := context.Background()
	msgs := []provider.Message{provider.UserMessage("hi")}

	if _, err := c.Generate(ctx, msgs); err != nil {
		t.Fatal(err)
	}
	cancelled, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_, err := c.Generate(cancelled, msgs)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded from the gate", err)
	}
}

func TestGenerateWithToolsPassesResponseThrough(t *testing.T) {
	fake := &fakeProvider{content: ""}
	c := NewClient(fake, 0)
	resp, err := c.GenerateWithTools(context.Background(),
		[]provider.Message{provider.UserMessage("hi")}, nil)
	if err != nil {
		t.Fatal(err)
	}
	// Tool responses may legitimately have empty content.
	if resp.Content != "" {
		t.Fatalf("content = %q", resp.Content)
	}
}
