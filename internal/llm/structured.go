package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
)

// Schema describes the structured output a capability expects from the
// model, expressed as a single forced tool call.
type Schema struct {
	// Name is the tool name the model is forced to call.
	Name string
	// Description tells the model what the structured result represents.
	Description string
	// Properties is the JSON schema of the result fields.
	Properties map[string]interface{}
	// Required lists the property names that must be present.
	Required []string
}

// Structured makes a single model call and returns the arguments of the
// forced tool call as raw JSON. Callers unmarshal into their own result
// struct. There is no tool execution loop: the tool exists only to make the
// model emit a well-formed structure.
func (c *Client) Structured(ctx context.Context, systemPrompt, userPrompt string, schema Schema) (json.RawMessage, error) {
	resp, err := c.inner.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: 2048,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
		Tools: []anthropic.ToolUnionParam{
			{
				OfTool: &anthropic.ToolParam{
					Name:        schema.Name,
					Description: anthropic.String(schema.Description),
					InputSchema: anthropic.ToolInputSchemaParam{
						Properties: schema.Properties,
						Required:   schema.Required,
					},
				},
			},
		},
		ToolChoice: anthropic.ToolChoiceUnionParam{
			OfTool: &anthropic.ToolChoiceToolParam{Name: schema.Name},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("API call failed: %w", err)
	}

	for _, block := range resp.Content {
		if variant, ok := block.AsAny().(anthropic.ToolUseBlock); ok {
			if variant.Name == schema.Name {
				return variant.Input, nil
			}
		}
	}

	return nil, fmt.Errorf("model returned no %s tool call", schema.Name)
}
