package repository

import (
	"context"
	"database/sql"
	"fmt"

	"aaiti/internal/domain/models"
	drepo "aaiti/internal/domain/repository"
)

// Schema statements for the audit archive, applied idempotently at startup.
var ArchiveSchema = []string{
	"CREATE DATABASE IF NOT EXISTS aaiti",
	`CREATE TABLE IF NOT EXISTS aaiti.closed_positions (
		id String, symbol String, side String,
		quantity Float64, entry_price Float64, exit_price Float64,
		realized_pnl Float64, close_reason String,
		opened_at DateTime, closed_at DateTime
	) ENGINE=MergeTree ORDER BY (symbol, closed_at)`,
	`CREATE TABLE IF NOT EXISTS aaiti.fills (
		order_id String, symbol String, side String,
		quantity Float64, price Float64, filled_at DateTime
	) ENGINE=MergeTree ORDER BY (symbol, filled_at)`,
}

// ClickHouseArchive implements PositionArchive on ClickHouse.
type ClickHouseArchive struct {
	db *sql.DB
}

func NewClickHouseArchive(db *sql.DB) drepo.PositionArchive {
	return &ClickHouseArchive{db: db}
}

func (a *ClickHouseArchive) ArchiveClosed(ctx context.Context, p *models.ClosedPosition) error {
	const q = `INSERT INTO aaiti.closed_positions
		(id, symbol, side, quantity, entry_price, exit_price, realized_pnl, close_reason, opened_at, closed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := a.db.ExecContext(ctx, q,
		p.ID, p.Symbol, string(p.Side),
		p.Quantity, p.EntryPrice, p.ExitPrice,
		p.RealizedPnL, p.CloseReason,
		p.OpenedAt, p.ClosedAt,
	)
	if err != nil {
		return fmt.Errorf("archive closed position %s: %w", p.ID, err)
	}
	return nil
}

func (a *ClickHouseArchive) ArchiveFill(ctx context.Context, f *models.Fill) error {
	const q = `INSERT INTO aaiti.fills
		(order_id, symbol, side, quantity, price, filled_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	_, err := a.db.ExecContext(ctx, q,
		f.OrderID, f.Symbol, string(f.Side),
		f.Quantity, f.Price, f.FilledAt,
	)
	if err != nil {
		return fmt.Errorf("archive fill %s: %w", f.OrderID, err)
	}
	return nil
}

func (a *ClickHouseArchive) Health(ctx context.Context) error {
	return a.db.PingContext(ctx)
}

func (a *ClickHouseArchive) Close() error {
	return nil // connection pool owned by pkg/clickhouse
}
