package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/ImSudipBiswas/swiftcart/internal/model"
)

const categoryColumns = "id,name,label_text,description,image,created_at,updated_at"

// CategoryRepo encapsulates all queries against the `categories` table.
type CategoryRepo struct{ db *sql.DB }

func NewCategoryRepo(db *sql.DB) *CategoryRepo { return &CategoryRepo{db: db} }

func scanCategory(row *sql.Row) (model.Category, error) {
	var (
		c    model.Category
		desc sql.NullString
	)
	err := row.Scan(&c.ID, &c.Name, &c.LabelText, &desc, &c.Image, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return c, ErrNotFound
	}
	if err != nil {
		return c, err
	}
	if desc.Valid {
		c.Description = &desc.String
	}
	return c, nil
}

// Create inserts a category and fills in the generated id.
func (r *CategoryRepo) Create(ctx context.Context, c *model.Category) error {
	c.ID = uuid.NewString()
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO categories (id,name,label_text,description,image) VALUES (?,?,?,?,?)",
		c.ID, c.Name, c.LabelText, nullable(c.Description), c.Image)
	if err != nil && isDuplicateKey(err) {
		return ErrDuplicate
	}
	return err
}

// GetByID fetches a category by primary key.
func (r *CategoryRepo) GetByID(ctx context.Context, id string) (model.Category, error) {
	return scanCategory(r.db.QueryRowContext(ctx,
		"SELECT "+categoryColumns+" FROM categories WHERE id=? LIMIT 1", id))
}

// GetByName fetches a category by its globally unique name.
func (r *CategoryRepo) GetByName(ctx context.Context, name string) (model.Category, error) {
	return scanCategory(r.db.QueryRowContext(ctx,
		"SELECT "+categoryColumns+" FROM categories WHERE name=? LIMIT 1", name))
}

// Update sets the editable text fields; the image has its own endpoint.
func (r *CategoryRepo) Update(ctx context.Context, id, name, labelText string, description *string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE categories SET name=?, label_text=?, description=? WHERE id=?",
		name, labelText, nullable(description), id)
	if err != nil && isDuplicateKey(err) {
		return ErrDuplicate
	}
	return err
}

// UpdateImage replaces the category image URL.
func (r *CategoryRepo) UpdateImage(ctx context.Context, id, image string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE categories SET image=? WHERE id=?", image, id)
	return err
}

// Delete removes the row; colors and sizes cascade at the schema level.
func (r *CategoryRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM categories WHERE id=?", id)
	return err
}

// Count returns how many categories match the optional substring filter over
// name, label text and description.
func (r *CategoryRepo) Count(ctx context.Context, q string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM categories WHERE name LIKE ? OR label_text LIKE ? OR COALESCE(description,'') LIKE ?",
		like(q), like(q), like(q)).Scan(&n)
	return n, err
}

// List returns one page of categories, newest first.
func (r *CategoryRepo) List(ctx context.Context, q string, offset, limit int) ([]model.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+categoryColumns+" FROM categories WHERE name LIKE ? OR label_text LIKE ? OR COALESCE(description,'') LIKE ? ORDER BY created_at DESC LIMIT ? OFFSET ?",
		like(q), like(q), like(q), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Category, 0, limit)
	for rows.Next() {
		var (
			c    model.Category
			desc sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.Name, &c.LabelText, &desc, &c.Image, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		if desc.Valid {
			c.Description = &desc.String
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
