package app

import (
	"context"
	"fmt"
	"path"
	"time"

	"mindcare/internal/domain"

	"github.com/google/uuid"
)

// DiaryService encapsulates the full diary write path and entry CRUD. Unlike
// the mood check-in there is no daily limit on diary entries.
type DiaryService struct {
	store domain.EventStore
	blobs domain.BlobStore
}

// NewDiaryService creates a DiaryService. blobs may be nil when no blob
// store is configured; inline image storage still works without it.
func NewDiaryService(store domain.EventStore, blobs domain.BlobStore) *DiaryService {
	return &DiaryService{store: store, blobs: blobs}
}

// ImageInput is an optional diary image, given either as a URL reference or
// as inline bytes. At most one of the two is used; bytes win when both are
// set.
type ImageInput struct {
	URL  string
	Data []byte
}

// Entry is the read view of a diary entry, with the image collapsed to one
// representation: inline bytes come back as a data URI, references as the
// stored URL.
type Entry struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	MoodKey   string    `json:"moodKey"`
	MoodName  string    `json:"moodName"`
	MoodColor string    `json:"moodColor"`
	MoodIcon  string    `json:"moodIcon"`
	EntryText string    `json:"entryText"`
	Image     string    `json:"image,omitempty"`
	CheckIn   bool      `json:"checkIn"`
}

func entryView(e *domain.MoodEvent) Entry {
	return Entry{
		ID:        e.ID,
		UserID:    e.UserID,
		CreatedAt: e.CreatedAt,
		MoodKey:   e.MoodKey,
		MoodName:  e.MoodName,
		MoodColor: e.MoodColor,
		MoodIcon:  e.MoodIcon,
		EntryText: e.EntryText,
		Image:     e.NormalizeImage(),
		CheckIn:   e.CheckIn,
	}
}

// RecordEntry validates and stores a full diary entry. userID, moodKey and
// entryText are required; the image is optional. Any number of entries may
// be written per day.
func (s *DiaryService) RecordEntry(ctx context.Context, userID int64, moodKey, entryText string, image ImageInput) (int64, error) {
	if userID <= 0 {
		return 0, missingField("userId")
	}
	if moodKey == "" {
		return 0, missingField("moodKey")
	}
	if entryText == "" {
		return 0, missingField("entryText")
	}

	m := domain.LookupMood(moodKey)
	e := domain.MoodEvent{
		UserID:    userID,
		MoodKey:   m.Key,
		MoodName:  m.Name,
		MoodColor: m.Color,
		MoodIcon:  m.Icon,
		EntryText: entryText,
		ImageURL:  image.URL,
		ImageData: image.Data,
	}
	if len(image.Data) > 0 {
		e.ImageURL = ""
	}
	return s.store.InsertEvent(ctx, &e)
}

// UploadImage stores image bytes in the blob store and returns the public
// URL, for callers that prefer URL references over inline encoding.
func (s *DiaryService) UploadImage(ctx context.Context, data []byte, filename string) (string, error) {
	if s.blobs == nil {
		return "", ErrNoBlobStore
	}
	if len(data) == 0 {
		return "", missingField("image")
	}
	ext := path.Ext(filename)
	if ext == "" {
		ext = ".jpg"
	}
	key := fmt.Sprintf("diary/%s%s", uuid.New().String(), ext)
	if err := s.blobs.Store(ctx, key, data, "image/jpeg"); err != nil {
		return "", err
	}
	return s.blobs.URL(key), nil
}

// Feed returns all of a user's entries, newest first. Unknown users get an
// empty slice, not an error.
func (s *DiaryService) Feed(ctx context.Context, userID int64) ([]Entry, error) {
	events, err := s.store.ListEvents(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(events))
	for i := range events {
		out = append(out, entryView(&events[i]))
	}
	return out, nil
}

// Entry returns a single entry by id, or domain.ErrNotFound.
func (s *DiaryService) Entry(ctx context.Context, id int64) (Entry, error) {
	e, err := s.store.GetEvent(ctx, id)
	if err != nil {
		return Entry{}, err
	}
	return entryView(e), nil
}

// UpdateEntry applies a partial update; only the supplied fields change.
// Fails with domain.ErrNotFound when the id does not exist.
func (s *DiaryService) UpdateEntry(ctx context.Context, id int64, patch domain.EventPatch) error {
	if patch.Empty() {
		return missingField("fields")
	}
	return s.store.UpdateEvent(ctx, id, patch)
}

// DeleteEntry removes an entry by id, failing with domain.ErrNotFound when
// it does not exist.
func (s *DiaryService) DeleteEntry(ctx context.Context, id int64) error {
	return s.store.DeleteEvent(ctx, id)
}
