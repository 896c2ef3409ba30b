package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SlotRepo stores single named values that must survive restarts, such as
// the active session id. One row per name; writers overwrite.
type SlotRepo struct {
	db *sql.DB
}

func NewSlotRepo(db *sql.DB) *SlotRepo {
	return &SlotRepo{db: db}
}

func (s *SlotRepo) Get(ctx context.Context, name string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM slots WHERE name = ?`, name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read slot %q: %w", name, err)
	}
	return value, nil
}

func (s *SlotRepo) Set(ctx context.Context, name, value string) error {
	query := `INSERT INTO slots (name, value) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`
	if _, err := s.db.ExecContext(ctx, query, name, value); err != nil {
		return fmt.Errorf("failed to write slot %q: %w", name, err)
	}
	return nil
}

func (s *SlotRepo) Clear(ctx context.Context, name string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM slots WHERE name = ?`, name); err != nil {
		return fmt.Errorf("failed to clear slot %q: %w", name, err)
	}
	return nil
}
