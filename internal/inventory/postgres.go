package inventory

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	errx "github.com/stockpilot-poc/server/internal/core/error"
	logx "github.com/stockpilot-poc/server/pkg/logger"
)

// PostgresStore persists inventory items in a Postgres table via bun.
type PostgresStore struct {
	db bun.IDB
}

func NewPostgresStore(db bun.IDB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) List(ctx context.Context) ([]Item, error) {
	var items []Item
	err := s.db.NewSelect().
		Model(&items).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		logx.Error().Err(err).Msg("failed to list inventory")
		return nil, errx.WrapPostgres(err)
	}
	return items, nil
}

func (s *PostgresStore) Upsert(ctx context.Context, item Item) (Result, error) {
	q := s.db.NewInsert().
		Model(&item).
		On("CONFLICT (name) DO UPDATE").
		Set("quantity = EXCLUDED.quantity")
	// Leave an existing description untouched when the caller supplies none.
	if item.Description != "" {
		q = q.Set("description = EXCLUDED.description")
	}

	if _, err := q.Exec(ctx); err != nil {
		logx.Error().Err(err).Str("name", item.Name).Msg("failed to upsert inventory item")
		return Result{}, errx.WrapPostgres(err)
	}

	logx.Debug().Str("name", item.Name).Int64("quantity", item.Quantity).Msg("inventory item upserted")
	return Result{
		Success: true,
		Message: fmt.Sprintf("Upserted item '%s'", item.Name),
		Items:   []Item{item},
	}, nil
}

func (s *PostgresStore) Delete(ctx context.Context, name string) (Result, error) {
	// Check-then-delete; not atomic against concurrent external writes, which
	// is acceptable for the single-user store this serves.
	exists, err := s.db.NewSelect().
		Model((*Item)(nil)).
		Where("name = ?", name).
		Exists(ctx)
	if err != nil {
		logx.Error().Err(err).Str("name", name).Msg("failed to check inventory item existence")
		return Result{}, errx.WrapPostgres(err)
	}
	if !exists {
		return Result{
			Success: false,
			Message: fmt.Sprintf("Item '%s' not found in inventory", name),
		}, nil
	}

	if _, err := s.db.NewDelete().
		Model((*Item)(nil)).
		Where("name = ?", name).
		Exec(ctx); err != nil {
		logx.Error().Err(err).Str("name", name).Msg("failed to delete inventory item")
		return Result{}, errx.WrapPostgres(err)
	}

	logx.Debug().Str("name", name).Msg("inventory item deleted")
	return Result{
		Success: true,
		Message: fmt.Sprintf("Deleted item '%s' from inventory", name),
	}, nil
}

var _ Store = (*PostgresStore)(nil)
