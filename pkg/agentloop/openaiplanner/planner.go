// Package openaiplanner implements agentloop.Planner against the OpenAI
// chat completions API, constraining the model's reply to a JSON schema
// so it can be decoded directly into an agentloop.Action.
package openaiplanner

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/cyrup-ai/kodegen-tools-browser/pkg/agentloop"
)

const defaultModel = "gpt-4o"

var actionSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"kind": map[string]any{
			"type": "string",
			"enum": []string{"navigate", "click", "type", "extract", "done", "fail"},
		},
		"selector": map[string]any{"type": "string"},
		"text":     map[string]any{"type": "string"},
		"url":      map[string]any{"type": "string"},
		"reason":   map[string]any{"type": "string"},
	},
	"required":             []string{"kind"},
	"additionalProperties": false,
}

// Planner asks an OpenAI chat model to choose the next browser action.
type Planner struct {
	client openai.Client
	model  string
}

// New builds a Planner. If apiKey is empty it falls back to
// OPENAI_API_KEY; if model is empty it defaults to gpt-4o.
func New(apiKey, model string) *Planner {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if model == "" {
		model = defaultModel
	}

	return &Planner{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

// Plan implements agentloop.Planner.
func (p *Planner) Plan(ctx context.Context, task string, obs agentloop.Observation, history []agentloop.Action) (agentloop.Action, error) {
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(systemPrompt),
		openai.UserMessage(renderUserMessage(task, obs, history)),
	}

	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    p.model,
		Messages: messages,
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   "browser_action",
					Schema: actionSchema,
					Strict: openai.Bool(true),
				},
			},
		},
	})
	if err != nil {
		return agentloop.Action{}, fmt.Errorf("openaiplanner: completion request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return agentloop.Action{}, fmt.Errorf("openaiplanner: completion returned no choices")
	}

	var action agentloop.Action
	content := resp.Choices[0].Message.Content
	if err := json.Unmarshal([]byte(content), &action); err != nil {
		return agentloop.Action{}, fmt.Errorf("openaiplanner: failed to parse action JSON %q: %w", content, err)
	}

	return action, nil
}

const systemPrompt = `You are a browser automation planner. Given a task and the current page observation, choose exactly one next action: navigate, click, type, extract, done, or fail. Respond only with the action JSON object.`

func renderUserMessage(task string, obs agentloop.Observation, history []agentloop.Action) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Task: %s\n\n", task)
	fmt.Fprintf(&b, "Current page:\nURL: %s\nTitle: %s\nVisible text: %s\n\n", obs.URL, obs.Title, obs.TextSnippet)

	if obs.LastActionError != "" {
		fmt.Fprintf(&b, "Last action error: %s\n\n", obs.LastActionError)
	}

	if len(obs.Elements) > 0 {
		b.WriteString("Interactable elements:\n")
		for _, el := range obs.Elements {
			fmt.Fprintf(&b, "  - %s (%s) %q\n", el.Selector, el.Tag, el.Text)
		}
		b.WriteString("\n")
	}

	if len(history) > 0 {
		fmt.Fprintf(&b, "Actions taken so far: %d\n", len(history))
	}

	return b.String()
}
