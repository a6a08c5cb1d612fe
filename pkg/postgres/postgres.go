package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

type Config struct {
	DSN         string `split_words:"true" required:"true"`
	DialTimeout int    `split_words:"true" default:"5"`
}

func (c *Config) New() (*bun.DB, error) {
	connector := pgdriver.NewConnector(
		pgdriver.WithDSN(c.DSN),
		pgdriver.WithTimeout(time.Duration(c.DialTimeout)*time.Second),
	)

	sqldb := sql.OpenDB(connector)
	db := bun.NewDB(sqldb, pgdialect.New())

	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}
