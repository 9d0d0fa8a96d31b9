package app

import (
	"context"
	"sort"
	"time"

	"mindcare/internal/domain"
)

// MoodService implements the daily mood check-in and the read-side
// aggregations over the event store.
type MoodService struct {
	store domain.EventStore
	now   func() time.Time
}

// NewMoodService creates a MoodService backed by the given store.
func NewMoodService(store domain.EventStore) *MoodService {
	return &MoodService{store: store, now: time.Now}
}

// MoodCount is one bar of the weekly histogram.
type MoodCount struct {
	MoodKey string `json:"moodKey"`
	Count   int    `json:"count"`
}

// RecentMood is a feed item: the raw event timestamp plus a display date.
type RecentMood struct {
	ID        int64     `json:"id"`
	MoodKey   string    `json:"moodKey"`
	MoodName  string    `json:"moodName"`
	MoodColor string    `json:"moodColor"`
	MoodIcon  string    `json:"moodIcon"`
	CreatedAt time.Time `json:"createdAt"`
	Date      string    `json:"date"`
}

// CheckIn records the daily mood check-in. At most one check-in may exist
// per user per local calendar day; a second attempt fails with
// domain.ErrDuplicateCheckIn. The pre-check fails fast without writing; the
// store's uniqueness constraint covers the race between two concurrent
// check-ins.
func (s *MoodService) CheckIn(ctx context.Context, userID int64, moodKey string) (int64, error) {
	if userID <= 0 {
		return 0, missingField("userId")
	}
	if moodKey == "" {
		return 0, missingField("moodKey")
	}

	now := s.now()
	exists, err := s.store.HasEventForDay(ctx, userID, domain.DayString(now))
	if err != nil {
		return 0, err
	}
	if exists {
		return 0, domain.ErrDuplicateCheckIn
	}

	m := domain.LookupMood(moodKey)
	e := domain.MoodEvent{
		UserID:    userID,
		CreatedAt: now,
		MoodKey:   m.Key,
		MoodName:  m.Name,
		MoodColor: m.Color,
		MoodIcon:  m.Icon,
		CheckIn:   true,
	}
	return s.store.InsertEvent(ctx, &e)
}

// HasCheckedInToday reports whether a check-in already exists for today.
func (s *MoodService) HasCheckedInToday(ctx context.Context, userID int64) (bool, error) {
	return s.store.HasEventForDay(ctx, userID, domain.DayString(s.now()))
}

// WeeklyHistogram returns per-mood counts over the trailing 7 calendar days:
// local midnight of (today - 6 days), inclusive of today. Ordered by count
// descending, ties broken by mood key ascending.
func (s *MoodService) WeeklyHistogram(ctx context.Context, userID int64) ([]MoodCount, error) {
	since := weekStart(s.now())
	stats, err := s.store.AggregateByMood(ctx, userID, &since)
	if err != nil {
		return nil, err
	}

	out := make([]MoodCount, 0, len(stats))
	for _, st := range stats {
		out = append(out, MoodCount{MoodKey: st.MoodKey, Count: st.Count})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].MoodKey < out[j].MoodKey
	})
	return out, nil
}

// RecentMoods returns the most recent mood events, newest first, annotated
// with a display date. limit defaults to 5 when non-positive.
func (s *MoodService) RecentMoods(ctx context.Context, userID int64, limit int) ([]RecentMood, error) {
	if limit <= 0 {
		limit = 5
	}
	events, err := s.store.ListRecentEvents(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	out := make([]RecentMood, 0, len(events))
	for _, e := range events {
		out = append(out, RecentMood{
			ID:        e.ID,
			MoodKey:   e.MoodKey,
			MoodName:  e.MoodName,
			MoodColor: e.MoodColor,
			MoodIcon:  e.MoodIcon,
			CreatedAt: e.CreatedAt,
			Date:      e.CreatedAt.In(time.Local).Format("Jan 2, 2006"),
		})
	}
	return out, nil
}

// Statistics returns the all-time per-mood counts with last-occurrence
// timestamps, ordered by count descending.
func (s *MoodService) Statistics(ctx context.Context, userID int64) ([]domain.MoodStat, error) {
	stats, err := s.store.AggregateByMood(ctx, userID, nil)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		return stats[i].MoodKey < stats[j].MoodKey
	})
	return stats, nil
}

// weekStart is local midnight six days before t, so the window spans seven
// distinct calendar days including today.
func weekStart(t time.Time) time.Time {
	t = t.In(time.Local)
	y, m, d := t.AddDate(0, 0, -6).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}
