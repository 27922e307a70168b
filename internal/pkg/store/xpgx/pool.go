// Package xpgx adapts pgxpool to squirrel builders and struct scanning.
package xpgx

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Pool interface {
	// Execx runs a statement and returns the number of affected rows.
	Execx(ctx context.Context, query squirrel.Sqlizer) (int64, error)
	// Getx scans exactly one row into dst.
	Getx(ctx context.Context, dst interface{}, query squirrel.Sqlizer) error
	// Selectx scans all rows into the slice pointed to by dst.
	Selectx(ctx context.Context, dst interface{}, query squirrel.Sqlizer) error
	Ping(ctx context.Context) error
	Close()
}

type pool struct {
	pgx *pgxpool.Pool
}

func New(ctx context.Context, dsn string) (Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.ParseConfig: %w", err)
	}

	p, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.NewWithConfig: %w", err)
	}

	return &pool{pgx: p}, nil
}

func (p *pool) Execx(ctx context.Context, query squirrel.Sqlizer) (int64, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}

	tag, err := p.pgx.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (p *pool) Getx(ctx context.Context, dst interface{}, query squirrel.Sqlizer) error {
	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	return pgxscan.Get(ctx, p.pgx, dst, sql, args...)
}

func (p *pool) Selectx(ctx context.Context, dst interface{}, query squirrel.Sqlizer) error {
	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	return pgxscan.Select(ctx, p.pgx, dst, sql, args...)
}

func (p *pool) Ping(ctx context.Context) error {
	return p.pgx.Ping(ctx)
}

func (p *pool) Close() {
	p.pgx.Close()
}
