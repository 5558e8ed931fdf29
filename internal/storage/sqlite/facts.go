package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sandevgo/mnemo/internal/core"
)

type FactsRepo struct {
	db *sql.DB
}

func NewFactsRepo(db *sql.DB) *FactsRepo {
	return &FactsRepo{db: db}
}

func (r *FactsRepo) Insert(ctx context.Context, fact core.Fact) (int64, error) {
	if fact.CreatedAt == 0 {
		fact.CreatedAt = time.Now().UnixMilli()
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO facts (key, value, created_at) VALUES (?, ?, ?)`,
		fact.Key, fact.Value, fact.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert fact: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Update replaces key, value and timestamp wholesale.
func (r *FactsRepo) Update(ctx context.Context, fact core.Fact) error {
	if fact.CreatedAt == 0 {
		fact.CreatedAt = time.Now().UnixMilli()
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE facts SET key = ?, value = ?, created_at = ? WHERE id = ?`,
		fact.Key, fact.Value, fact.CreatedAt, fact.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update fact: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("fact %d not found", fact.ID)
	}
	return nil
}

func (r *FactsRepo) ListAll(ctx context.Context) ([]core.Fact, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, key, value, created_at FROM facts ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query facts: %w", err)
	}
	defer rows.Close()

	return scanFacts(rows)
}

func (r *FactsRepo) Search(ctx context.Context, substring string) ([]core.Fact, error) {
	pattern := "%" + substring + "%"
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, key, value, created_at FROM facts
		 WHERE key LIKE ? OR value LIKE ?
		 ORDER BY created_at DESC, id DESC`,
		pattern, pattern,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search facts: %w", err)
	}
	defer rows.Close()

	return scanFacts(rows)
}

func (r *FactsRepo) DeleteByID(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM facts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete fact: %w", err)
	}
	return nil
}

func (r *FactsRepo) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM facts`); err != nil {
		return fmt.Errorf("failed to delete facts: %w", err)
	}
	return nil
}

func scanFacts(rows *sql.Rows) ([]core.Fact, error) {
	var facts []core.Fact
	for rows.Next() {
		var f core.Fact
		if err := rows.Scan(&f.ID, &f.Key, &f.Value, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan fact: %w", err)
		}
		facts = append(facts, f)
	}
	return facts, rows.Err()
}
