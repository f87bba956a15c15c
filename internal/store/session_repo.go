package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// sessionRepo implements SessionRepo over the sessions table.
type sessionRepo struct {
	db *sql.DB
}

func (r *sessionRepo) Get(ctx context.Context, id string) ([]byte, error) {
	var doc []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT document FROM sessions WHERE id = ?`, id,
	).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session %q: %w", id, err)
	}
	return doc, nil
}

func (r *sessionRepo) Put(ctx context.Context, meta SessionMeta, doc []byte) error {
	now := time.Now().Unix()
	created := now
	if !meta.CreatedAt.IsZero() {
		created = meta.CreatedAt.Unix()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (id, context, document, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   context = excluded.context,
		   document = excluded.document,
		   updated_at = excluded.updated_at`,
		meta.ID, meta.Context, string(doc), created, now,
	)
	if err != nil {
		return fmt.Errorf("put session %q: %w", meta.ID, err)
	}
	return nil
}

func (r *sessionRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete session %q: %w", id, err)
	}
	return nil
}

func (r *sessionRepo) List(ctx context.Context) ([]SessionMeta, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, context, created_at, updated_at
		 FROM sessions ORDER BY updated_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionMeta
	for rows.Next() {
		var m SessionMeta
		var created, updated int64
		if err := rows.Scan(&m.ID, &m.Context, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan session row: %w", err)
		}
		m.CreatedAt = time.Unix(created, 0)
		m.UpdatedAt = time.Unix(updated, 0)
		out = append(out, m)
	}
	return out, rows.Err()
}
