// Package memory implements in-memory repositories for development and testing.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"mindcare/internal/domain"
)

// DB implements an in-memory database storage.
type DB struct {
	mu       sync.Mutex
	events   []domain.MoodEvent
	users    []*domain.User
	sessions map[string]*domain.Session

	eventIDCounter int64
	userIDCounter  int64
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{
		sessions: make(map[string]*domain.Session),
	}
}

// Ensure interfaces are met.
var _ domain.EventStore = (*DB)(nil)
var _ domain.UserRepository = (*DB)(nil)
var _ domain.SessionRepository = (*SessionRepo)(nil)

// --- EventStore ---

// InsertEvent adds a mood event. The daily check-in uniqueness check and the
// append happen under one lock, so racing check-ins cannot both land.
func (db *DB) InsertEvent(ctx context.Context, e *domain.MoodEvent) (int64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	if e.CheckIn {
		day := domain.DayString(createdAt)
		if db.hasEventForDayLocked(e.UserID, day) {
			return 0, domain.ErrDuplicateCheckIn
		}
	}

	db.eventIDCounter++
	stored := *e
	stored.ID = db.eventIDCounter
	stored.CreatedAt = createdAt
	db.events = append(db.events, stored)

	e.ID = stored.ID
	e.CreatedAt = createdAt
	return stored.ID, nil
}

// HasEventForDay reports whether a check-in exists for the local day.
func (db *DB) HasEventForDay(ctx context.Context, userID int64, localDay string) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.hasEventForDayLocked(userID, localDay), nil
}

func (db *DB) hasEventForDayLocked(userID int64, localDay string) bool {
	for i := range db.events {
		e := &db.events[i]
		if e.UserID == userID && e.CheckIn && domain.DayString(e.CreatedAt) == localDay {
			return true
		}
	}
	return false
}

// GetEvent retrieves an event by id.
func (db *DB) GetEvent(ctx context.Context, id int64) (*domain.MoodEvent, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for i := range db.events {
		if db.events[i].ID == id {
			e := db.events[i]
			return &e, nil
		}
	}
	return nil, domain.ErrNotFound
}

// ListEvents returns all of a user's events, newest first.
func (db *DB) ListEvents(ctx context.Context, userID int64) ([]domain.MoodEvent, error) {
	return db.listEvents(userID, nil, 0), nil
}

// ListEventsSince returns a user's events created at or after since, newest first.
func (db *DB) ListEventsSince(ctx context.Context, userID int64, since time.Time) ([]domain.MoodEvent, error) {
	return db.listEvents(userID, &since, 0), nil
}

// ListRecentEvents returns the most recent events up to limit.
func (db *DB) ListRecentEvents(ctx context.Context, userID int64, limit int) ([]domain.MoodEvent, error) {
	return db.listEvents(userID, nil, limit), nil
}

func (db *DB) listEvents(userID int64, since *time.Time, limit int) []domain.MoodEvent {
	db.mu.Lock()
	defer db.mu.Unlock()

	result := make([]domain.MoodEvent, 0, len(db.events))
	for i := range db.events {
		e := db.events[i]
		if e.UserID != userID {
			continue
		}
		if since != nil && e.CreatedAt.Before(*since) {
			continue
		}
		result = append(result, e)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result
}

// AggregateByMood returns per-mood counts and last timestamps, optionally
// bounded below by since. Display metadata comes from the most recent event
// per mood key.
func (db *DB) AggregateByMood(ctx context.Context, userID int64, since *time.Time) ([]domain.MoodStat, error) {
	events := db.listEvents(userID, since, 0)

	byKey := make(map[string]*domain.MoodStat)
	order := []string{}
	for i := range events {
		e := &events[i]
		st, ok := byKey[e.MoodKey]
		if !ok {
			// events are newest first, so the first sighting carries the
			// latest metadata and timestamp
			st = &domain.MoodStat{
				MoodKey:     e.MoodKey,
				MoodName:    e.MoodName,
				MoodColor:   e.MoodColor,
				MoodIcon:    e.MoodIcon,
				LastEntryAt: e.CreatedAt,
			}
			byKey[e.MoodKey] = st
			order = append(order, e.MoodKey)
		}
		st.Count++
	}

	out := make([]domain.MoodStat, 0, len(order))
	for _, key := range order {
		out = append(out, *byKey[key])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out, nil
}

// UpdateEvent applies a partial update; only non-nil patch fields change.
func (db *DB) UpdateEvent(ctx context.Context, id int64, patch domain.EventPatch) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for i := range db.events {
		if db.events[i].ID != id {
			continue
		}
		e := &db.events[i]
		if patch.MoodKey != nil {
			e.MoodKey = *patch.MoodKey
		}
		if patch.MoodName != nil {
			e.MoodName = *patch.MoodName
		}
		if patch.MoodColor != nil {
			e.MoodColor = *patch.MoodColor
		}
		if patch.MoodIcon != nil {
			e.MoodIcon = *patch.MoodIcon
		}
		if patch.EntryText != nil {
			e.EntryText = *patch.EntryText
		}
		if patch.ImageURL != nil {
			e.ImageURL = *patch.ImageURL
		}
		if patch.ImageData != nil {
			e.ImageData = append([]byte(nil), patch.ImageData...)
		}
		return nil
	}
	return domain.ErrNotFound
}

// DeleteEvent removes an event by id.
func (db *DB) DeleteEvent(ctx context.Context, id int64) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for i := range db.events {
		if db.events[i].ID == id {
			db.events = append(db.events[:i], db.events[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

// --- UserRepository ---

// GetByEmail retrieves a user by email.
func (db *DB) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

// GetByID retrieves a user by ID.
func (db *DB) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

// Create creates a new user.
func (db *DB) Create(ctx context.Context, username, email, passwordHash, emergencyPhone string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Email == email {
			return nil, domain.ErrDuplicateEmail
		}
	}

	db.userIDCounter++
	u := &domain.User{
		ID:             db.userIDCounter,
		Username:       username,
		Email:          email,
		PasswordHash:   passwordHash,
		EmergencyPhone: emergencyPhone,
		CreatedAt:      time.Now().UTC(),
	}
	db.users = append(db.users, u)
	return u, nil
}

// Update applies a partial profile update.
func (db *DB) Update(ctx context.Context, id int64, patch domain.UserPatch) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	var target *domain.User
	for _, u := range db.users {
		if u.ID == id {
			target = u
			break
		}
	}
	if target == nil {
		return domain.ErrNotFound
	}

	if patch.Email != nil {
		for _, u := range db.users {
			if u.ID != id && u.Email == *patch.Email {
				return domain.ErrDuplicateEmail
			}
		}
		target.Email = *patch.Email
	}
	if patch.Username != nil {
		target.Username = *patch.Username
	}
	if patch.PasswordHash != nil {
		target.PasswordHash = *patch.PasswordHash
	}
	if patch.EmergencyPhone != nil {
		target.EmergencyPhone = *patch.EmergencyPhone
	}
	return nil
}

// --- SessionRepository ---

// SessionRepo implements session persistence.
type SessionRepo struct {
	db *DB
}

// NewSessionRepo creates a new session repository.
func (db *DB) NewSessionRepo() *SessionRepo {
	return &SessionRepo{db: db}
}

// Create creates a new session.
func (r *SessionRepo) Create(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.sessions[token] = &domain.Session{
		Token:     token,
		UserID:    userID,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
	return nil
}

// GetByToken retrieves a session by token.
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if s, ok := r.db.sessions[token]; ok {
		return s, nil
	}
	return nil, nil
}

// Delete deletes a session.
func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.sessions, token)
	return nil
}

// DeleteExpired deletes all expired sessions.
func (r *SessionRepo) DeleteExpired(ctx context.Context) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	now := time.Now()
	for k, v := range r.db.sessions {
		if now.After(v.ExpiresAt) {
			delete(r.db.sessions, k)
		}
	}
	return nil
}
