package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/ImSudipBiswas/swiftcart/internal/model"
)

const colorColumns = "id,name,hex,category_id,created_at,updated_at"

// ColorRepo encapsulates all queries against the `colors` table.
type ColorRepo struct{ db *sql.DB }

func NewColorRepo(db *sql.DB) *ColorRepo { return &ColorRepo{db: db} }

func scanColor(row *sql.Row) (model.Color, error) {
	var c model.Color
	err := row.Scan(&c.ID, &c.Name, &c.Hex, &c.CategoryID, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return c, ErrNotFound
	}
	return c, err
}

// Create inserts a color and fills in the generated id.
func (r *ColorRepo) Create(ctx context.Context, c *model.Color) error {
	c.ID = uuid.NewString()
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO colors (id,name,hex,category_id) VALUES (?,?,?,?)",
		c.ID, c.Name, c.Hex, c.CategoryID)
	if err != nil && isDuplicateKey(err) {
		return ErrDuplicate
	}
	return err
}

// GetByID fetches a color by primary key.
func (r *ColorRepo) GetByID(ctx context.Context, id string) (model.Color, error) {
	return scanColor(r.db.QueryRowContext(ctx,
		"SELECT "+colorColumns+" FROM colors WHERE id=? LIMIT 1", id))
}

// FindConflict returns a color in the given category whose name OR hex
// matches. Uniqueness is scoped to the category, not global: the same color
// may exist in two different categories.
func (r *ColorRepo) FindConflict(ctx context.Context, categoryID, name, hex string) (model.Color, error) {
	return scanColor(r.db.QueryRowContext(ctx,
		"SELECT "+colorColumns+" FROM colors WHERE category_id=? AND (name=? OR hex=?) LIMIT 1",
		categoryID, name, hex))
}

// Update sets name and hex. category_id is immutable after creation and is
// deliberately absent from the statement.
func (r *ColorRepo) Update(ctx context.Context, id, name, hex string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE colors SET name=?, hex=? WHERE id=?", name, hex, id)
	return err
}

// Delete removes a color row.
func (r *ColorRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM colors WHERE id=?", id)
	return err
}

// ListByCategory returns every color of one category, used for relation
// expansion on category reads.
func (r *ColorRepo) ListByCategory(ctx context.Context, categoryID string) ([]model.Color, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+colorColumns+" FROM colors WHERE category_id=? ORDER BY created_at DESC", categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectColors(rows)
}

// Count returns how many colors match the optional name/hex filter.
func (r *ColorRepo) Count(ctx context.Context, q string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM colors WHERE name LIKE ? OR hex LIKE ?",
		like(q), like(q)).Scan(&n)
	return n, err
}

// List returns one page of colors, newest first.
func (r *ColorRepo) List(ctx context.Context, q string, offset, limit int) ([]model.Color, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+colorColumns+" FROM colors WHERE name LIKE ? OR hex LIKE ? ORDER BY created_at DESC LIMIT ? OFFSET ?",
		like(q), like(q), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectColors(rows)
}

func collectColors(rows *sql.Rows) ([]model.Color, error) {
	out := []model.Color{}
	for rows.Next() {
		var c model.Color
		if err := rows.Scan(&c.ID, &c.Name, &c.Hex, &c.CategoryID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
