package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
)

// MaxToolSteps caps the number of reasoning round-trips per turn. A
// backend that keeps requesting tools is cut off after this many steps.
const MaxToolSteps = 3

const maxOutputTokens = 400

const systemPrompt = `You are an enterprise finance operations agent.

Rules:
- Do not invent data.
- Only call tools when needed.
- Never send or draft emails without explicit user approval.
- If the user asks for non-overdue invoices, do NOT call any tool.
- If the user requests overdue invoices but does not specify a limit,
  default to returning the top 10 overdue invoices.
- Be concise, factual, and deterministic.`

var (
	// ErrStepBudgetExceeded is returned when the loop hits MaxToolSteps
	// without a terminal text response.
	ErrStepBudgetExceeded = errors.New("tool step budget exceeded")

	// ErrUndeclaredTool is returned when the backend requests a tool that
	// was never declared to it. The backend contract forbids this, so it
	// is treated as fatal for the turn.
	ErrUndeclaredTool = errors.New("backend requested an undeclared tool")
)

// ToolCall is a structured request from the backend to execute a declared tool.
type ToolCall struct {
	CallID    string
	Name      string
	Arguments string // raw JSON
}

// ToolOutput carries one executed tool result back to the backend.
type ToolOutput struct {
	CallID string
	Output string
}

// StepRequest is one round-trip to the reasoning backend. The first step
// carries the user input; continuation steps carry tool outputs and chain
// the conversation via PreviousID.
type StepRequest struct {
	Instructions string
	UserInput    string
	ToolOutputs  []ToolOutput
	PreviousID   string
	Tools        []ToolDefinition
}

// StepResult is the backend's reply: either one or more tool calls, or
// terminal free-text content.
type StepResult struct {
	ID        string
	ToolCalls []ToolCall
	Content   string
}

// Backend performs a single exchange with the reasoning model.
type Backend interface {
	Step(ctx context.Context, req StepRequest) (*StepResult, error)
}

// Agent runs the bounded tool-calling loop against a Backend.
type Agent struct {
	backend Backend
}

// NewAgent constructs an Agent backed by the OpenAI Responses API.
func NewAgent(apiKey string) *Agent {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &Agent{backend: &openAIBackend{client: &client}}
}

// NewAgentWithBackend constructs an Agent around a custom backend.
func NewAgentWithBackend(backend Backend) *Agent {
	return &Agent{backend: backend}
}

// Run sends the user input to the backend and iterates: each requested
// tool call is validated against the registry, executed, and its output
// fed back. A step that produces no tool call terminates the loop with
// its text content. Exhausting the step budget returns
// ErrStepBudgetExceeded with no partial results.
func (a *Agent) Run(ctx context.Context, userInput string, registry *ToolRegistry) (string, error) {
	req := StepRequest{
		Instructions: systemPrompt,
		UserInput:    userInput,
		Tools:        registry.All(),
	}

	for step := 0; step < MaxToolSteps; step++ {
		result, err := a.backend.Step(ctx, req)
		if err != nil {
			return "", fmt.Errorf("reasoning backend step failed: %w", err)
		}

		if len(result.ToolCalls) == 0 {
			return result.Content, nil
		}

		outputs := make([]ToolOutput, 0, len(result.ToolCalls))
		for _, call := range result.ToolCalls {
			def, ok := registry.Get(call.Name)
			if !ok || def.Handler == nil {
				return "", fmt.Errorf("%w: %s", ErrUndeclaredTool, call.Name)
			}

			var params map[string]any
			if err := json.Unmarshal([]byte(call.Arguments), &params); err != nil {
				return "", fmt.Errorf("tool %s: arguments are not valid JSON: %w", call.Name, err)
			}

			output, err := def.Handler(ctx, params)
			if err != nil {
				return "", fmt.Errorf("tool %s: %w", call.Name, err)
			}
			outputs = append(outputs, ToolOutput{CallID: call.CallID, Output: output})
		}

		req = StepRequest{
			Instructions: systemPrompt,
			ToolOutputs:  outputs,
			PreviousID:   result.ID,
			Tools:        registry.All(),
		}
	}

	return "", ErrStepBudgetExceeded
}

// openAIBackend implements Backend over the OpenAI Responses API,
// chaining continuation steps server-side via the previous response ID.
type openAIBackend struct {
	client *openai.Client
}

func (b *openAIBackend) Step(ctx context.Context, req StepRequest) (*StepResult, error) {
	var items responses.ResponseInputParam
	if req.UserInput != "" {
		items = append(items, responses.ResponseInputItemUnionParam{
			OfMessage: &responses.EasyInputMessageParam{
				Role: responses.EasyInputMessageRoleUser,
				Content: responses.EasyInputMessageContentUnionParam{
					OfString: param.NewOpt(req.UserInput),
				},
			},
		})
	}
	for _, out := range req.ToolOutputs {
		items = append(items, responses.ResponseInputItemParamOfFunctionCallOutput(out.CallID, out.Output))
	}

	params := responses.ResponseNewParams{
		Model:           shared.ResponsesModel(shared.ChatModelGPT4oMini),
		Instructions:    param.NewOpt(req.Instructions),
		MaxOutputTokens: param.NewOpt(int64(maxOutputTokens)),
		Input:           responses.ResponseNewParamsInputUnion{OfInputItemList: items},
		Tools:           toOpenAITools(req.Tools),
		ToolChoice: responses.ResponseNewParamsToolChoiceUnion{
			OfToolChoiceMode: param.NewOpt(responses.ToolChoiceOptionsAuto),
		},
	}
	if req.PreviousID != "" {
		params.PreviousResponseID = param.NewOpt(req.PreviousID)
	}

	resp, err := b.client.Responses.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai responses error: %w", err)
	}

	result := &StepResult{ID: resp.ID, Content: resp.OutputText()}
	for _, item := range resp.Output {
		if item.Type == "function_call" {
			call := item.AsFunctionCall()
			result.ToolCalls = append(result.ToolCalls, ToolCall{
				CallID:    call.CallID,
				Name:      call.Name,
				Arguments: call.Arguments,
			})
		}
	}
	return result, nil
}
