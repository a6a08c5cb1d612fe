package inventory

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// Item is a single inventory row, keyed by item name. Writes replace prior
// state for the name; no history is retained.
type Item struct {
	bun.BaseModel `bun:"table:inventory"`

	Name        string    `bun:"name,pk" json:"name"`
	Quantity    int64     `bun:"quantity" json:"quantity"`
	Description string    `bun:"description,nullzero" json:"description,omitempty"`
	CreatedAt   time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at,omitempty"`
}

// Result reports the outcome of a mutating store operation. Domain failures
// (such as deleting a name with no match) are reported here with Success=false;
// transport failures surface as errors on the operation itself.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Items   []Item `json:"items,omitempty"`
}

// Store is the inventory persistence contract consumed by the agent handlers.
type Store interface {
	// List returns the full inventory snapshot in insertion order.
	List(ctx context.Context) ([]Item, error)

	// Upsert inserts the item or overwrites the row with the same name.
	Upsert(ctx context.Context, item Item) (Result, error)

	// Delete removes the named item. It verifies existence first and reports a
	// distinct not-found Result when the name has no match.
	Delete(ctx context.Context, name string) (Result, error)
}
