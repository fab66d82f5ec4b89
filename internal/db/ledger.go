package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Ledger is the append-only history of saves.
type Ledger struct {
	DB *sqlx.DB
}

func NewLedger(db *sqlx.DB) *Ledger {
	return &Ledger{DB: db}
}

// Record inserts e, filling in ID and SavedAt when they are zero.
func (l *Ledger) Record(ctx context.Context, e *SaveEntry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.SavedAt.IsZero() {
		e.SavedAt = time.Now().UTC()
	}
	q := l.DB.Rebind(`insert into score_saves(id, session_id, tester, user_name, model, filename, path, row_count, scored_count, object_ref, saved_at)
		values(?,?,?,?,?,?,?,?,?,?,?)`)
	_, err := l.DB.ExecContext(ctx, q,
		e.ID, e.SessionID, e.Tester, e.User, e.Model, e.Filename, e.Path,
		e.RowCount, e.ScoredCount, e.ObjectRef, e.SavedAt)
	if err != nil {
		return fmt.Errorf("record save: %w", err)
	}
	return nil
}

// Recent lists the newest saves first.
func (l *Ledger) Recent(ctx context.Context, limit int) ([]SaveEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	out := make([]SaveEntry, 0)
	q := l.DB.Rebind(`select * from score_saves order by saved_at desc, id limit ?`)
	if err := l.DB.SelectContext(ctx, &out, q, limit); err != nil {
		return nil, fmt.Errorf("list saves: %w", err)
	}
	return out, nil
}

// MarkMirrored stores the object-storage reference for a save.
func (l *Ledger) MarkMirrored(ctx context.Context, id, ref string) error {
	q := l.DB.Rebind(`update score_saves set object_ref=? where id=?`)
	res, err := l.DB.ExecContext(ctx, q, ref, id)
	if err != nil {
		return fmt.Errorf("mark mirrored: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("mark mirrored: save %s not found", id)
	}
	return nil
}

// Ping checks the connection.
func (l *Ledger) Ping(ctx context.Context) error {
	return l.DB.PingContext(ctx)
}
