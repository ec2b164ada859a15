package ai_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"finops-agent/internal/ai"
)

// scriptedBackend replays canned step results and records the requests it saw.
type scriptedBackend struct {
	results  []*ai.StepResult
	requests []ai.StepRequest
}

func (b *scriptedBackend) Step(ctx context.Context, req ai.StepRequest) (*ai.StepResult, error) {
	b.requests = append(b.requests, req)
	if len(b.results) == 0 {
		return nil, fmt.Errorf("scripted backend exhausted after %d steps", len(b.requests))
	}
	next := b.results[0]
	b.results = b.results[1:]
	return next, nil
}

// greedyBackend requests the same tool on every step, forever.
type greedyBackend struct {
	steps int
}

func (b *greedyBackend) Step(ctx context.Context, req ai.StepRequest) (*ai.StepResult, error) {
	b.steps++
	return &ai.StepResult{
		ID:        fmt.Sprintf("resp_%d", b.steps),
		ToolCalls: []ai.ToolCall{{CallID: fmt.Sprintf("call_%d", b.steps), Name: "fetch_overdue_invoices", Arguments: `{"minimum_days_overdue":15,"limit":10}`}},
	}, nil
}

func newTestRegistry(t *testing.T, handler ai.ToolHandler) *ai.ToolRegistry {
	t.Helper()
	reg := ai.NewToolRegistry()
	reg.Register(ai.ToolDefinition{
		Name:        "fetch_overdue_invoices",
		Description: "Fetch overdue invoices",
		InputSchema: map[string]any{"type": "object"},
		Handler:     handler,
	})
	return reg
}

func TestAgentRun_TerminalContent(t *testing.T) {
	backend := &scriptedBackend{results: []*ai.StepResult{{ID: "resp_1", Content: "You have 3 overdue invoices."}}}
	agent := ai.NewAgentWithBackend(backend)

	answer, err := agent.Run(context.Background(), "show me overdue invoices", newTestRegistry(t, nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer != "You have 3 overdue invoices." {
		t.Errorf("answer = %q", answer)
	}
	if len(backend.requests) != 1 {
		t.Errorf("expected 1 backend step, got %d", len(backend.requests))
	}
	if backend.requests[0].UserInput != "show me overdue invoices" {
		t.Errorf("user input not forwarded: %q", backend.requests[0].UserInput)
	}
}

func TestAgentRun_ToolCallThenContent(t *testing.T) {
	backend := &scriptedBackend{results: []*ai.StepResult{
		{ID: "resp_1", ToolCalls: []ai.ToolCall{{CallID: "call_1", Name: "fetch_overdue_invoices", Arguments: `{"minimum_days_overdue":15,"limit":2}`}}},
		{ID: "resp_2", Content: "Here is a summary."},
	}}

	var gotParams map[string]any
	reg := newTestRegistry(t, func(ctx context.Context, params map[string]any) (string, error) {
		gotParams = params
		return `[{"invoice_id":"INV-1"}]`, nil
	})

	answer, err := ai.NewAgentWithBackend(backend).Run(context.Background(), "overdue over 15 days", reg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer != "Here is a summary." {
		t.Errorf("answer = %q", answer)
	}
	if gotParams["minimum_days_overdue"] != 15.0 || gotParams["limit"] != 2.0 {
		t.Errorf("handler params = %v", gotParams)
	}

	second := backend.requests[1]
	if second.PreviousID != "resp_1" {
		t.Errorf("continuation did not chain: previous id %q", second.PreviousID)
	}
	if len(second.ToolOutputs) != 1 || second.ToolOutputs[0].CallID != "call_1" {
		t.Errorf("tool output not fed back: %+v", second.ToolOutputs)
	}
	if second.ToolOutputs[0].Output != `[{"invoice_id":"INV-1"}]` {
		t.Errorf("tool output content = %q", second.ToolOutputs[0].Output)
	}
	if second.UserInput != "" {
		t.Errorf("user input repeated on continuation step")
	}
}

func TestAgentRun_StepBudget(t *testing.T) {
	backend := &greedyBackend{}
	reg := newTestRegistry(t, func(ctx context.Context, params map[string]any) (string, error) {
		return "[]", nil
	})

	_, err := ai.NewAgentWithBackend(backend).Run(context.Background(), "fetch everything", reg)
	if !errors.Is(err, ai.ErrStepBudgetExceeded) {
		t.Fatalf("expected ErrStepBudgetExceeded, got %v", err)
	}
	if backend.steps != ai.MaxToolSteps {
		t.Errorf("backend called %d times, want exactly %d", backend.steps, ai.MaxToolSteps)
	}
}

func TestAgentRun_UndeclaredTool(t *testing.T) {
	backend := &scriptedBackend{results: []*ai.StepResult{
		{ID: "resp_1", ToolCalls: []ai.ToolCall{{CallID: "call_1", Name: "delete_all_invoices", Arguments: `{}`}}},
	}}

	_, err := ai.NewAgentWithBackend(backend).Run(context.Background(), "hi", newTestRegistry(t, nil))
	if !errors.Is(err, ai.ErrUndeclaredTool) {
		t.Fatalf("expected ErrUndeclaredTool, got %v", err)
	}
}

func TestAgentRun_HandlerError(t *testing.T) {
	backend := &scriptedBackend{results: []*ai.StepResult{
		{ID: "resp_1", ToolCalls: []ai.ToolCall{{CallID: "call_1", Name: "fetch_overdue_invoices", Arguments: `{}`}}},
	}}
	reg := newTestRegistry(t, func(ctx context.Context, params map[string]any) (string, error) {
		return "", errors.New("store unavailable")
	})

	_, err := ai.NewAgentWithBackend(backend).Run(context.Background(), "hi", reg)
	if err == nil {
		t.Fatal("expected handler error to propagate")
	}
}

func TestAgentRun_MalformedArguments(t *testing.T) {
	backend := &scriptedBackend{results: []*ai.StepResult{
		{ID: "resp_1", ToolCalls: []ai.ToolCall{{CallID: "call_1", Name: "fetch_overdue_invoices", Arguments: `{not json`}}},
	}}

	_, err := ai.NewAgentWithBackend(backend).Run(context.Background(), "hi", newTestRegistry(t, func(ctx context.Context, params map[string]any) (string, error) {
		return "[]", nil
	}))
	if err == nil {
		t.Fatal("expected error for malformed tool arguments")
	}
}
