package conversations

import (
	"context"

	"github.com/stockpilot-poc/server/internal/agent/model"
)

// HistoryManager hands the caller a bounded recent-turn window before a run and
// records the finished turn afterwards. The workflow engine itself receives
// history read-only and never touches persistence.
type HistoryManager struct {
	repo     model.HistoryRepository
	maxTurns int
}

func NewHistoryManager(repo model.HistoryRepository, config model.ConversationConfig) *HistoryManager {
	maxTurns := config.MaxTurns
	if maxTurns <= 0 {
		maxTurns = 5
	}
	return &HistoryManager{repo: repo, maxTurns: maxTurns}
}

// RecentTurns loads the window supplied to the next workflow run, oldest first.
func (m *HistoryManager) RecentTurns(ctx context.Context, conversationID string) ([]model.ChatTurn, error) {
	return m.repo.RecentTurns(ctx, conversationID, m.maxTurns)
}

// RecordTurn appends a completed (message, response) pair for subsequent runs.
func (m *HistoryManager) RecordTurn(ctx context.Context, conversationID, message, response string) error {
	return m.repo.AppendTurn(ctx, conversationID, model.ChatTurn{
		User:      message,
		Assistant: response,
	})
}

// Reset wipes the conversation's stored turns and reports how many were dropped.
func (m *HistoryManager) Reset(ctx context.Context, conversationID string) (int, error) {
	n, err := m.repo.TurnCount(ctx, conversationID)
	if err != nil {
		return 0, err
	}
	if err := m.repo.ClearHistory(ctx, conversationID); err != nil {
		return 0, err
	}
	return n, nil
}
