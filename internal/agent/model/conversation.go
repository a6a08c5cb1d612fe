package model

import (
	"context"
)

// ChatTurn is one completed (user message, assistant response) exchange.
type ChatTurn struct {
	User      string `json:"user"`
	Assistant string `json:"assistant"`
}

// HistoryRepository persists chat turns per conversation. The workflow engine
// never touches it: the caller loads a recent window before each run and
// appends the finished turn afterwards.
type HistoryRepository interface {
	// AppendTurn appends a completed turn to the conversation's history.
	AppendTurn(ctx context.Context, conversationID string, turn ChatTurn) error

	// RecentTurns returns up to n most recent turns, ordered oldest first.
	RecentTurns(ctx context.Context, conversationID string, n int) ([]ChatTurn, error)

	// ClearHistory removes all history for a conversation.
	ClearHistory(ctx context.Context, conversationID string) error

	// TurnCount returns the number of stored turns for a conversation.
	TurnCount(ctx context.Context, conversationID string) (int, error)
}
