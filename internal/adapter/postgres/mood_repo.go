package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"mindcare/internal/domain"
)

const eventColumns = "id, user_id, created_at, mood_key, mood_name, mood_color, mood_icon, entry_text, image_url, image_data, check_in"

// InsertEvent persists a mood event and returns its id. The partial unique
// index on (user_id, checkin_day) turns a racing same-day check-in into
// domain.ErrDuplicateCheckIn.
func (d *DB) InsertEvent(ctx context.Context, e *domain.MoodEvent) (int64, error) {
	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	var checkinDay any
	if e.CheckIn {
		checkinDay = domain.DayString(createdAt)
	}

	var id int64
	err := d.sql.QueryRowContext(ctx,
		`INSERT INTO mood_events(user_id, created_at, mood_key, mood_name, mood_color, mood_icon, entry_text, image_url, image_data, check_in, checkin_day)
		 VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id;`,
		e.UserID, createdAt.UTC(), e.MoodKey, e.MoodName, e.MoodColor, e.MoodIcon,
		e.EntryText, e.ImageURL, e.ImageData, e.CheckIn, checkinDay,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err, "uidx_mood_events_checkin") {
			return 0, domain.ErrDuplicateCheckIn
		}
		return 0, err
	}
	e.ID = id
	e.CreatedAt = createdAt
	return id, nil
}

// HasEventForDay reports whether a check-in exists for the local day.
func (d *DB) HasEventForDay(ctx context.Context, userID int64, localDay string) (bool, error) {
	var exists bool
	err := d.sql.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM mood_events WHERE user_id=$1 AND checkin_day=$2);",
		userID, localDay,
	).Scan(&exists)
	return exists, err
}

// GetEvent retrieves an event by id.
func (d *DB) GetEvent(ctx context.Context, id int64) (*domain.MoodEvent, error) {
	row := d.sql.QueryRowContext(ctx,
		"SELECT "+eventColumns+" FROM mood_events WHERE id=$1;", id)

	var e domain.MoodEvent
	if err := scanEvent(row, &e); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

// ListEvents returns all of a user's events, newest first.
func (d *DB) ListEvents(ctx context.Context, userID int64) ([]domain.MoodEvent, error) {
	return d.queryEvents(ctx,
		"SELECT "+eventColumns+" FROM mood_events WHERE user_id=$1 ORDER BY created_at DESC;", userID)
}

// ListEventsSince returns a user's events created at or after since, newest first.
func (d *DB) ListEventsSince(ctx context.Context, userID int64, since time.Time) ([]domain.MoodEvent, error) {
	return d.queryEvents(ctx,
		"SELECT "+eventColumns+" FROM mood_events WHERE user_id=$1 AND created_at >= $2 ORDER BY created_at DESC;",
		userID, since.UTC())
}

// ListRecentEvents returns the most recent events up to limit.
func (d *DB) ListRecentEvents(ctx context.Context, userID int64, limit int) ([]domain.MoodEvent, error) {
	return d.queryEvents(ctx,
		"SELECT "+eventColumns+" FROM mood_events WHERE user_id=$1 ORDER BY created_at DESC LIMIT $2;",
		userID, limit)
}

// AggregateByMood returns per-mood counts and last-occurrence timestamps,
// optionally bounded below by since. Display metadata comes from the most
// recent event per mood key.
func (d *DB) AggregateByMood(ctx context.Context, userID int64, since *time.Time) ([]domain.MoodStat, error) {
	query := `SELECT DISTINCT ON (mood_key) mood_key, mood_name, mood_color, mood_icon,
			COUNT(*) OVER (PARTITION BY mood_key), MAX(created_at) OVER (PARTITION BY mood_key)
		 FROM mood_events WHERE user_id=$1`
	args := []any{userID}
	if since != nil {
		query += " AND created_at >= $2"
		args = append(args, since.UTC())
	}
	query += " ORDER BY mood_key, created_at DESC;"

	rows, err := d.sql.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var out []domain.MoodStat
	for rows.Next() {
		var st domain.MoodStat
		if err := rows.Scan(&st.MoodKey, &st.MoodName, &st.MoodColor, &st.MoodIcon, &st.Count, &st.LastEntryAt); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// UpdateEvent applies a partial update; nil patch fields keep the stored
// value via COALESCE. Zero affected rows is domain.ErrNotFound.
func (d *DB) UpdateEvent(ctx context.Context, id int64, patch domain.EventPatch) error {
	res, err := d.sql.ExecContext(ctx,
		`UPDATE mood_events SET
			mood_key = COALESCE($2, mood_key),
			mood_name = COALESCE($3, mood_name),
			mood_color = COALESCE($4, mood_color),
			mood_icon = COALESCE($5, mood_icon),
			entry_text = COALESCE($6, entry_text),
			image_url = COALESCE($7, image_url),
			image_data = COALESCE($8, image_data)
		 WHERE id = $1;`,
		id, patch.MoodKey, patch.MoodName, patch.MoodColor, patch.MoodIcon,
		patch.EntryText, patch.ImageURL, patch.ImageData,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// DeleteEvent removes an event by id.
func (d *DB) DeleteEvent(ctx context.Context, id int64) error {
	res, err := d.sql.ExecContext(ctx, "DELETE FROM mood_events WHERE id=$1;", id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (d *DB) queryEvents(ctx context.Context, query string, args ...any) ([]domain.MoodEvent, error) {
	rows, err := d.sql.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	out := []domain.MoodEvent{}
	for rows.Next() {
		var e domain.MoodEvent
		if err := scanEvent(rows, &e); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner, e *domain.MoodEvent) error {
	return row.Scan(&e.ID, &e.UserID, &e.CreatedAt, &e.MoodKey, &e.MoodName,
		&e.MoodColor, &e.MoodIcon, &e.EntryText, &e.ImageURL, &e.ImageData, &e.CheckIn)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
