package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/ImSudipBiswas/swiftcart/internal/model"
)

const sizeColumns = "id,name,value,category_id,created_at,updated_at"

// SizeRepo encapsulates all queries against the `sizes` table. It follows
// the same per-category uniqueness and immutable-category rules as ColorRepo.
type SizeRepo struct{ db *sql.DB }

func NewSizeRepo(db *sql.DB) *SizeRepo { return &SizeRepo{db: db} }

func scanSize(row *sql.Row) (model.Size, error) {
	var s model.Size
	err := row.Scan(&s.ID, &s.Name, &s.Value, &s.CategoryID, &s.CreatedAt, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return s, ErrNotFound
	}
	return s, err
}

// Create inserts a size and fills in the generated id.
func (r *SizeRepo) Create(ctx context.Context, s *model.Size) error {
	s.ID = uuid.NewString()
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO sizes (id,name,value,category_id) VALUES (?,?,?,?)",
		s.ID, s.Name, s.Value, s.CategoryID)
	if err != nil && isDuplicateKey(err) {
		return ErrDuplicate
	}
	return err
}

// GetByID fetches a size by primary key.
func (r *SizeRepo) GetByID(ctx context.Context, id string) (model.Size, error) {
	return scanSize(r.db.QueryRowContext(ctx,
		"SELECT "+sizeColumns+" FROM sizes WHERE id=? LIMIT 1", id))
}

// FindConflict returns a size in the given category whose name OR value
// matches; uniqueness is scoped to the category.
func (r *SizeRepo) FindConflict(ctx context.Context, categoryID, name, value string) (model.Size, error) {
	return scanSize(r.db.QueryRowContext(ctx,
		"SELECT "+sizeColumns+" FROM sizes WHERE category_id=? AND (name=? OR value=?) LIMIT 1",
		categoryID, name, value))
}

// Update sets name and value; category_id is immutable after creation.
func (r *SizeRepo) Update(ctx context.Context, id, name, value string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE sizes SET name=?, value=? WHERE id=?", name, value, id)
	return err
}

// Delete removes a size row.
func (r *SizeRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM sizes WHERE id=?", id)
	return err
}

// ListByCategory returns every size of one category for relation expansion.
func (r *SizeRepo) ListByCategory(ctx context.Context, categoryID string) ([]model.Size, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+sizeColumns+" FROM sizes WHERE category_id=? ORDER BY created_at DESC", categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSizes(rows)
}

// Count returns how many sizes match the optional name/value filter.
func (r *SizeRepo) Count(ctx context.Context, q string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sizes WHERE name LIKE ? OR value LIKE ?",
		like(q), like(q)).Scan(&n)
	return n, err
}

// List returns one page of sizes, newest first.
func (r *SizeRepo) List(ctx context.Context, q string, offset, limit int) ([]model.Size, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+sizeColumns+" FROM sizes WHERE name LIKE ? OR value LIKE ? ORDER BY created_at DESC LIMIT ? OFFSET ?",
		like(q), like(q), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSizes(rows)
}

func collectSizes(rows *sql.Rows) ([]model.Size, error) {
	out := []model.Size{}
	for rows.Next() {
		var s model.Size
		if err := rows.Scan(&s.ID, &s.Name, &s.Value, &s.CategoryID, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
