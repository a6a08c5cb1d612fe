package prompts

import (
	"fmt"
	"strings"

	"github.com/stockpilot-poc/server/internal/agent/model"
	"github.com/stockpilot-poc/server/internal/inventory"
)

// EmptyInventorySentinel is the exact string rendered for an empty snapshot.
// Other components match on it, so it must not change.
const EmptyInventorySentinel = "The inventory is empty."

// NoHistorySentinel is the exact string rendered when no prior turns exist.
const NoHistorySentinel = "No previous conversation history."

// FormatInventory renders the snapshot as a deterministic tabular text block,
// one row per item in insertion order.
func FormatInventory(items []inventory.Item) string {
	if len(items) == 0 {
		return EmptyInventorySentinel
	}

	var b strings.Builder
	b.WriteString("INVENTORY DATA:\n")
	b.WriteString("Item Name | Quantity | Description\n")
	for _, it := range items {
		fmt.Fprintf(&b, "%s | %d | %s\n", it.Name, it.Quantity, it.Description)
	}
	return b.String()
}

// FormatChatHistory renders recent turns numbered oldest-first, each showing
// the user message and then the assistant response.
func FormatChatHistory(turns []model.ChatTurn) string {
	if len(turns) == 0 {
		return NoHistorySentinel
	}

	var b strings.Builder
	b.WriteString("Previous conversation history:\n")
	for i, t := range turns {
		fmt.Fprintf(&b, "%d. User: %s\n", i+1, t.User)
		fmt.Fprintf(&b, "   Assistant: %s\n\n", t.Assistant)
	}
	return b.String()
}
