package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"mindcare/internal/domain"
)

// GetByEmail retrieves a user by email. Unknown emails yield (nil, nil).
func (d *DB) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return d.getUser(ctx,
		"SELECT id, username, email, password_hash, emergency_phone, created_at FROM users WHERE email = $1", email)
}

// GetByID retrieves a user by ID. Unknown ids yield (nil, nil).
func (d *DB) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return d.getUser(ctx,
		"SELECT id, username, email, password_hash, emergency_phone, created_at FROM users WHERE id = $1", id)
}

func (d *DB) getUser(ctx context.Context, query string, arg any) (*domain.User, error) {
	var u domain.User
	err := d.sql.QueryRowContext(ctx, query, arg).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.EmergencyPhone, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create creates a new user. A taken email is domain.ErrDuplicateEmail.
func (d *DB) Create(ctx context.Context, username, email, passwordHash, emergencyPhone string) (*domain.User, error) {
	var u domain.User
	err := d.sql.QueryRowContext(ctx,
		`INSERT INTO users (username, email, password_hash, emergency_phone, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, username, email, password_hash, emergency_phone, created_at`,
		username, email, passwordHash, emergencyPhone, time.Now(),
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.EmergencyPhone, &u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "users_email_key") {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, err
	}
	return &u, nil
}

// Update applies a partial profile update; nil patch fields keep the stored
// value. Zero affected rows is domain.ErrNotFound.
func (d *DB) Update(ctx context.Context, id int64, patch domain.UserPatch) error {
	res, err := d.sql.ExecContext(ctx,
		`UPDATE users SET
			username = COALESCE($2, username),
			email = COALESCE($3, email),
			password_hash = COALESCE($4, password_hash),
			emergency_phone = COALESCE($5, emergency_phone)
		 WHERE id = $1`,
		id, patch.Username, patch.Email, patch.PasswordHash, patch.EmergencyPhone,
	)
	if err != nil {
		if isUniqueViolation(err, "users_email_key") {
			return domain.ErrDuplicateEmail
		}
		return err
	}
	return requireAffected(res)
}

// SessionRepo implements session repository operations on DB.
type SessionRepo struct {
	db *DB
}

// NewSessionRepo wraps a DB as a SessionRepository.
func NewSessionRepo(db *DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// Create creates a new session.
func (r *SessionRepo) Create(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	_, err := r.db.sql.ExecContext(ctx,
		"INSERT INTO sessions (token, user_id, expires_at, created_at) VALUES ($1, $2, $3, $4)",
		token, userID, expiresAt, time.Now(),
	)
	return err
}

// GetByToken retrieves a session by token. Unknown tokens yield (nil, nil).
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	var s domain.Session
	err := r.db.sql.QueryRowContext(ctx,
		"SELECT token, user_id, expires_at, created_at FROM sessions WHERE token = $1",
		token,
	).Scan(&s.Token, &s.UserID, &s.ExpiresAt, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Delete deletes a session by token.
func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	_, err := r.db.sql.ExecContext(ctx, "DELETE FROM sessions WHERE token = $1", token)
	return err
}

// DeleteExpired deletes all expired sessions.
func (r *SessionRepo) DeleteExpired(ctx context.Context) error {
	_, err := r.db.sql.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at < $1", time.Now())
	return err
}
