package prompts

import (
	"strings"
	"testing"

	"github.com/stockpilot-poc/server/internal/agent/model"
	"github.com/stockpilot-poc/server/internal/inventory"
)

func TestFormatInventoryEmptySentinel(t *testing.T) {
	t.Parallel()

	if got := FormatInventory(nil); got != EmptyInventorySentinel {
		t.Errorf("FormatInventory(nil) = %q, want %q", got, EmptyInventorySentinel)
	}
	if got := FormatInventory([]inventory.Item{}); got != EmptyInventorySentinel {
		t.Errorf("FormatInventory(empty) = %q, want %q", got, EmptyInventorySentinel)
	}
}

func TestFormatInventoryPreservesOrder(t *testing.T) {
	t.Parallel()

	items := []inventory.Item{
		{Name: "Laptop", Quantity: 10, Description: "work machines"},
		{Name: "keyboard", Quantity: 25},
		{Name: "HDMI Cable", Quantity: 3, Description: "2m"},
	}

	got := FormatInventory(items)
	if !strings.Contains(got, "Item Name | Quantity | Description") {
		t.Fatalf("missing header row: %q", got)
	}

	lines := strings.Split(strings.TrimSpace(got), "\n")
	// preamble + header + one line per item
	if len(lines) != 2+len(items) {
		t.Fatalf("line count = %d, want %d", len(lines), 2+len(items))
	}
	wantRows := []string{
		"Laptop | 10 | work machines",
		"keyboard | 25 | ",
		"HDMI Cable | 3 | 2m",
	}
	for i, want := range wantRows {
		if lines[2+i] != want {
			t.Errorf("row %d = %q, want %q", i, lines[2+i], want)
		}
	}
}

func TestFormatChatHistoryNoHistorySentinel(t *testing.T) {
	t.Parallel()

	if got := FormatChatHistory(nil); got != NoHistorySentinel {
		t.Errorf("FormatChatHistory(nil) = %q, want %q", got, NoHistorySentinel)
	}
}

func TestFormatChatHistoryNumbersTurnsOldestFirst(t *testing.T) {
	t.Parallel()

	turns := []model.ChatTurn{
		{User: "how many laptops?", Assistant: "We have 10 laptops."},
		{User: "and keyboards?", Assistant: "We have 25 keyboards."},
	}

	got := FormatChatHistory(turns)
	first := strings.Index(got, "1. User: how many laptops?")
	second := strings.Index(got, "2. User: and keyboards?")
	if first < 0 || second < 0 || second < first {
		t.Fatalf("turns missing or misordered:\n%s", got)
	}
	if !strings.Contains(got, "Assistant: We have 10 laptops.") {
		t.Errorf("assistant text missing:\n%s", got)
	}
}
