package prompts

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/stockpilot-poc/server/internal/agent/model"
	"github.com/stockpilot-poc/server/internal/inventory"
)

//go:embed template/classifier_prompt.txt
var classifierSystemPrompt string

//go:embed template/query_prompt.txt
var querySystemPrompt string

//go:embed template/upsert_prompt.txt
var upsertSystemPrompt string

//go:embed template/delete_prompt.txt
var deleteSystemPrompt string

// RenderClassifierSystem renders the intent classifier system prompt via the
// Eino prompt component. This triggers prompt callbacks and returns the final
// system prompt string.
func RenderClassifierSystem(ctx context.Context) (string, error) {
	return render(ctx, classifierSystemPrompt, map[string]any{})
}

// RenderQuerySystem renders the query-answering system prompt with the
// inventory snapshot and the recent chat history embedded.
func RenderQuerySystem(ctx context.Context, items []inventory.Item, history []model.ChatTurn) (string, error) {
	return render(ctx, querySystemPrompt, map[string]any{
		"Inventory": FormatInventory(items),
		"History":   FormatChatHistory(history),
	})
}

// RenderUpsertSystem renders the upsert extraction system prompt.
func RenderUpsertSystem(ctx context.Context, items []inventory.Item, history []model.ChatTurn) (string, error) {
	return render(ctx, upsertSystemPrompt, map[string]any{
		"Inventory": FormatInventory(items),
		"History":   FormatChatHistory(history),
	})
}

// RenderDeleteSystem renders the delete extraction system prompt.
func RenderDeleteSystem(ctx context.Context, items []inventory.Item, history []model.ChatTurn) (string, error) {
	return render(ctx, deleteSystemPrompt, map[string]any{
		"Inventory": FormatInventory(items),
		"History":   FormatChatHistory(history),
	})
}

// render formats a system template via the Eino prompt component (Go template
// syntax, so JSON braces in templates stay inert) and emits prompt callbacks.
func render(ctx context.Context, tmpl string, vars map[string]any) (string, error) {
	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(tmpl),
	)
	msgs, err := tpl.Format(ctx, vars)
	if err != nil {
		return "", fmt.Errorf("prompt render: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("prompt render: empty result")
	}
	return msgs[0].Content, nil
}
