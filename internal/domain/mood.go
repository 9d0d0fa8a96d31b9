package domain

import (
	"context"
	"time"
)

// MoodEvent is a single diary/mood record, the unit of storage and aggregation.
// CheckIn marks events written through the daily-limited check-in path.
type MoodEvent struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	MoodKey   string    `json:"moodKey"`
	MoodName  string    `json:"moodName"`
	MoodColor string    `json:"moodColor"`
	MoodIcon  string    `json:"moodIcon"`
	EntryText string    `json:"entryText"`
	ImageURL  string    `json:"imageUrl,omitempty"`
	ImageData []byte    `json:"-"`
	CheckIn   bool      `json:"checkIn"`
}

// EventPatch carries the optional fields of a partial event update. Only
// non-nil fields are written; the store interprets the patch into a single
// parameterized UPDATE.
type EventPatch struct {
	MoodKey   *string
	MoodName  *string
	MoodColor *string
	MoodIcon  *string
	EntryText *string
	ImageURL  *string
	ImageData []byte
}

// Empty reports whether the patch carries no fields.
func (p EventPatch) Empty() bool {
	return p.MoodKey == nil && p.MoodName == nil && p.MoodColor == nil &&
		p.MoodIcon == nil && p.EntryText == nil && p.ImageURL == nil && p.ImageData == nil
}

// MoodStat is one row of a per-mood aggregation: how often a mood was
// recorded and when it last occurred.
type MoodStat struct {
	MoodKey     string    `json:"moodKey"`
	MoodName    string    `json:"moodName"`
	MoodColor   string    `json:"moodColor"`
	MoodIcon    string    `json:"moodIcon"`
	Count       int       `json:"count"`
	LastEntryAt time.Time `json:"lastEntryAt"`
}

// EventStore is the port for mood event persistence.
//
// InsertEvent assigns the ID and, when e.CreatedAt is zero, the creation
// time. Inserting a second check-in event for the same user and local
// calendar day fails with ErrDuplicateCheckIn; the store must enforce this
// atomically so concurrent check-ins cannot both land.
type EventStore interface {
	InsertEvent(ctx context.Context, e *MoodEvent) (int64, error)
	HasEventForDay(ctx context.Context, userID int64, localDay string) (bool, error)
	GetEvent(ctx context.Context, id int64) (*MoodEvent, error)
	ListEvents(ctx context.Context, userID int64) ([]MoodEvent, error)
	ListEventsSince(ctx context.Context, userID int64, since time.Time) ([]MoodEvent, error)
	ListRecentEvents(ctx context.Context, userID int64, limit int) ([]MoodEvent, error)
	AggregateByMood(ctx context.Context, userID int64, since *time.Time) ([]MoodStat, error)
	UpdateEvent(ctx context.Context, id int64, patch EventPatch) error
	DeleteEvent(ctx context.Context, id int64) error
}

// BlobStore is the port for image blob storage. Implementations return a
// publicly reachable URL for a stored object.
type BlobStore interface {
	Store(ctx context.Context, key string, data []byte, contentType string) error
	URL(key string) string
}

// Mood is the display metadata attached to a mood key. The metadata is
// denormalized onto each event at write time.
type Mood struct {
	Key   string `json:"key"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

var moodCatalog = map[string]Mood{
	"happy":   {Key: "happy", Name: "Happy", Color: "#F7C948", Icon: "sun"},
	"calm":    {Key: "calm", Name: "Calm", Color: "#6BC5A0", Icon: "leaf"},
	"sad":     {Key: "sad", Name: "Sad", Color: "#5B8DEF", Icon: "cloud-rain"},
	"anxious": {Key: "anxious", Name: "Anxious", Color: "#B07CE8", Icon: "wind"},
	"angry":   {Key: "angry", Name: "Angry", Color: "#EF6461", Icon: "flame"},
	"tired":   {Key: "tired", Name: "Tired", Color: "#8A94A6", Icon: "moon"},
}

// LookupMood returns the catalog metadata for a mood key. Unknown keys get
// the key itself as the display name so user-defined moods still render.
func LookupMood(key string) Mood {
	if m, ok := moodCatalog[key]; ok {
		return m
	}
	return Mood{Key: key, Name: key}
}

// DayString formats t as a local calendar day, the granularity used by the
// daily check-in rule and the trailing-week window.
func DayString(t time.Time) string {
	return t.In(time.Local).Format("2006-01-02")
}
