package model

import (
	"github.com/stockpilot-poc/server/internal/inventory"
)

// TurnInput carries everything one workflow run needs: the raw user message,
// the inventory snapshot taken at the start of the turn, and the recent chat
// history. The engine reads all three and owns none of them.
type TurnInput struct {
	Message   string           `json:"message"`
	Inventory []inventory.Item `json:"inventory"`
	History   []ChatTurn       `json:"history,omitempty"`
}

// Outcome is the per-terminal-node result of a turn. Exactly one variant is
// produced per run, carrying only the fields relevant to that outcome.
type Outcome interface {
	outcome()
}

// QueryAnswered is produced by the query handler on success.
type QueryAnswered struct {
	Answer string
}

// ItemUpserted is produced by the upsert handler after a successful store write.
type ItemUpserted struct {
	Name        string
	Quantity    int64
	Description string
}

// ItemDeleted is produced by the delete handler after a successful store delete.
type ItemDeleted struct {
	Name string
}

// FailStage names the node (or the store call inside it) that failed.
type FailStage string

const (
	StageClassify FailStage = "classify"
	StageRoute    FailStage = "route"
	StageQuery    FailStage = "query"
	StageUpsert   FailStage = "upsert"
	StageDelete   FailStage = "delete"
	StageStore    FailStage = "store"
	StageEngine   FailStage = "engine"
)

// TurnFailed is produced whenever a turn ends without its operation completing.
// The run still carries a user-facing response; Cause holds the raw reason.
type TurnFailed struct {
	Stage FailStage
	Cause string
}

func (QueryAnswered) outcome() {}
func (ItemUpserted) outcome()  {}
func (ItemDeleted) outcome()   {}
func (TurnFailed) outcome()    {}

// TurnResult is the terminal output of one workflow run. Response is always a
// non-empty user-facing string, on failure paths included.
type TurnResult struct {
	Response       string
	Classification *IntentClassification
	Outcome        Outcome
}

// Failed reports whether the turn ended in a failure outcome.
func (r *TurnResult) Failed() bool {
	_, ok := r.Outcome.(TurnFailed)
	return ok
}
