package parsers

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/stockpilot-poc/server/internal/agent/model"
)

type rawUpsertRecord struct {
	ItemName    string      `json:"item_name"`
	Quantity    json.Number `json:"quantity"`
	Description *string     `json:"description"`
}

type rawDeleteRecord struct {
	ItemName string `json:"item_name"`
}

// ParseUpsertRecord parses the extractor's upsert output: item_name (required),
// quantity (required integer, the new absolute total), description (optional).
func ParseUpsertRecord(content string) (*model.UpsertRecord, error) {
	s, err := extractJSONObject(content)
	if err != nil {
		return nil, fmt.Errorf("upsert record: %w", err)
	}

	var raw rawUpsertRecord
	if err := decodeObject(s, &raw); err != nil {
		return nil, fmt.Errorf("upsert record: %w", err)
	}

	name := strings.TrimSpace(raw.ItemName)
	if name == "" {
		return nil, fmt.Errorf("upsert record: missing item_name")
	}
	if raw.Quantity == "" {
		return nil, fmt.Errorf("upsert record: missing quantity")
	}
	qty, err := raw.Quantity.Int64()
	if err != nil {
		return nil, fmt.Errorf("upsert record: quantity is not an integer: %s", safeSnippet(raw.Quantity.String()))
	}
	if qty < 0 {
		return nil, fmt.Errorf("upsert record: quantity is negative")
	}

	rec := &model.UpsertRecord{Name: name, Quantity: qty}
	if raw.Description != nil {
		rec.Description = strings.TrimSpace(*raw.Description)
	}
	return rec, nil
}

// ParseDeleteRecord parses the extractor's delete output: item_name only.
func ParseDeleteRecord(content string) (*model.DeleteRecord, error) {
	s, err := extractJSONObject(content)
	if err != nil {
		return nil, fmt.Errorf("delete record: %w", err)
	}

	var raw rawDeleteRecord
	if err := decodeObject(s, &raw); err != nil {
		return nil, fmt.Errorf("delete record: %w", err)
	}

	name := strings.TrimSpace(raw.ItemName)
	if name == "" {
		return nil, fmt.Errorf("delete record: missing item_name")
	}
	return &model.DeleteRecord{Name: name}, nil
}
