package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ImSudipBiswas/swiftcart/internal/model"
)

const userColumns = "id,name,username,email,password_hash,role,image,email_verified,email_verified_at,email_verification_token,refresh_token,created_at,updated_at"

// UserRepo encapsulates all queries against the `users` table.
type UserRepo struct{ db *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

func scanUser(row *sql.Row) (model.User, error) {
	var (
		u          model.User
		image      sql.NullString
		verifiedAt sql.NullTime
		verifTok   sql.NullString
		refresh    sql.NullString
		role       string
	)
	err := row.Scan(&u.ID, &u.Name, &u.Username, &u.Email, &u.PasswordHash, &role,
		&image, &u.EmailVerified, &verifiedAt, &verifTok, &refresh, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return u, ErrNotFound
	}
	if err != nil {
		return u, err
	}
	u.Role, _ = model.ParseRole(role)
	if image.Valid {
		u.Image = &image.String
	}
	if verifiedAt.Valid {
		t := verifiedAt.Time
		u.EmailVerifiedAt = &t
	}
	if verifTok.Valid {
		u.EmailVerificationToken = &verifTok.String
	}
	if refresh.Valid {
		u.RefreshToken = &refresh.String
	}
	return u, nil
}

// Create inserts a user and fills in the generated id. Username and email are
// stored as given; callers normalize them to lowercase beforehand.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	u.ID = uuid.NewString()
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO users (id,name,username,email,password_hash,role,image,email_verification_token) VALUES (?,?,?,?,?,?,?,?)",
		u.ID, u.Name, u.Username, u.Email, u.PasswordHash, string(u.Role),
		nullable(u.Image), nullable(u.EmailVerificationToken))
	if err != nil && isDuplicateKey(err) {
		return ErrDuplicate
	}
	return err
}

// GetByID fetches a user by primary key.
func (r *UserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1",
		strings.ToLower(strings.TrimSpace(email))))
}

// GetByUsername fetches a user by normalized username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username=? LIMIT 1",
		strings.ToLower(strings.TrimSpace(username))))
}

// FindByEmailOrUsername returns the first user matching either identity
// field. Sign-up uses it for the duplicate / stale-reservation check.
func (r *UserRepo) FindByEmailOrUsername(ctx context.Context, email, username string) (model.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? OR username=? LIMIT 1",
		email, username))
}

// Delete removes a user row. Cascades to owned resources are a schema
// concern (ON DELETE CASCADE), not handled here.
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	return err
}

// UpdateProfile sets name and username.
func (r *UserRepo) UpdateProfile(ctx context.Context, id, name, username string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE users SET name=?, username=? WHERE id=?", name, username, id)
	if err != nil && isDuplicateKey(err) {
		return ErrDuplicate
	}
	return err
}

// UpdateImage sets or clears the avatar URL.
func (r *UserRepo) UpdateImage(ctx context.Context, id string, image *string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE users SET image=? WHERE id=?", nullable(image), id)
	return err
}

// SaveRefreshToken overwrites the stored refresh token. A new sign-in (or a
// silent rotation) invalidates whatever session held the previous value.
func (r *UserRepo) SaveRefreshToken(ctx context.Context, id, refreshToken string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE users SET refresh_token=? WHERE id=?", refreshToken, id)
	return err
}

// ClearRefreshToken drops the live session on sign-out.
func (r *UserRepo) ClearRefreshToken(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE users SET refresh_token=NULL WHERE id=?", id)
	return err
}

// MarkEmailVerified flips the verification state, clears the one-time token
// and persists the first session's refresh token in a single write.
func (r *UserRepo) MarkEmailVerified(ctx context.Context, id, refreshToken string, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE users SET email_verified=1, email_verified_at=?, email_verification_token=NULL, refresh_token=? WHERE id=?",
		at, refreshToken, id)
	return err
}

// Count returns the number of users whose name matches the optional filter.
func (r *UserRepo) Count(ctx context.Context, q string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE name LIKE ?", like(q)).Scan(&n)
	return n, err
}

// List returns one page of users, newest first.
func (r *UserRepo) List(ctx context.Context, q string, offset, limit int) ([]model.User, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE name LIKE ? ORDER BY created_at DESC LIMIT ? OFFSET ?",
		like(q), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]model.User, 0, limit)
	for rows.Next() {
		var (
			u          model.User
			image      sql.NullString
			verifiedAt sql.NullTime
			verifTok   sql.NullString
			refresh    sql.NullString
			role       string
		)
		if err := rows.Scan(&u.ID, &u.Name, &u.Username, &u.Email, &u.PasswordHash, &role,
			&image, &u.EmailVerified, &verifiedAt, &verifTok, &refresh, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		u.Role, _ = model.ParseRole(role)
		if image.Valid {
			u.Image = &image.String
		}
		if verifiedAt.Valid {
			t := verifiedAt.Time
			u.EmailVerifiedAt = &t
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// nullable converts *string to a driver-friendly value (NULL when nil).
func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// like wraps a substring filter for LIKE; an empty filter matches everything.
func like(q string) string {
	return "%" + q + "%"
}

// isDuplicateKey detects MySQL error 1062 (unique constraint violation).
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1062")
}
