package ai

import (
	"context"
	"encoding/json"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/responses"
)

// ToolHandler is the execution function for a declared tool.
// It receives parsed JSON parameters and returns a JSON-encoded result
// string that is fed back into the conversation.
type ToolHandler func(ctx context.Context, params map[string]any) (string, error)

// ToolDefinition describes a single tool in the registry.
// Every tool here is a read tool: it executes autonomously inside the
// bounded loop. Side effects that need human approval (sending email) are
// never exposed as tools — they go through the controller's approval gate.
type ToolDefinition struct {
	Name        string
	Description string
	InputSchema map[string]any // JSON Schema for the tool's input parameters
	Handler     ToolHandler
}

// ToolRegistry holds the tools declared to the reasoning backend for one
// turn. The controller builds a fresh registry per fallback turn so the
// handlers close over the current session.
type ToolRegistry struct {
	tools []ToolDefinition
}

// NewToolRegistry creates an empty ToolRegistry.
func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{}
}

// Register adds a tool to the registry.
func (r *ToolRegistry) Register(t ToolDefinition) {
	r.tools = append(r.tools, t)
}

// Get returns the ToolDefinition for a given tool name, and whether it was found.
func (r *ToolRegistry) Get(name string) (ToolDefinition, bool) {
	for _, t := range r.tools {
		if t.Name == name {
			return t, true
		}
	}
	return ToolDefinition{}, false
}

// All returns all registered tools.
func (r *ToolRegistry) All() []ToolDefinition {
	return r.tools
}

// toOpenAITools converts registry contents to the OpenAI Responses API tool format.
func toOpenAITools(tools []ToolDefinition) []responses.ToolUnionParam {
	out := make([]responses.ToolUnionParam, 0, len(tools))
	for _, t := range tools {
		out = append(out, responses.ToolUnionParam{
			OfFunction: &responses.FunctionToolParam{
				Name:        t.Name,
				Description: openai.String(t.Description),
				Parameters:  t.InputSchema,
			},
		})
	}
	return out
}

// InputSchema reflects a Go struct into the JSON Schema map declared to
// the backend for a tool's parameters. Fields without omitempty are
// required and additional properties are rejected.
func InputSchema(v any) map[string]any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}

	raw, err := json.Marshal(reflector.Reflect(v))
	if err != nil {
		return map[string]any{"type": "object"}
	}
	var schema map[string]any
	if err := json.Unmarshal(raw, &schema); err != nil {
		return map[string]any{"type": "object"}
	}
	return schema
}
