package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	"mindcare/internal/domain"
)

type mockBlobStore struct {
	storeFn func(ctx context.Context, key string, data []byte, contentType string) error
	urlFn   func(key string) string
}

func (m *mockBlobStore) Store(ctx context.Context, key string, data []byte, contentType string) error {
	if m.storeFn != nil {
		return m.storeFn(ctx, key, data, contentType)
	}
	return nil
}

func (m *mockBlobStore) URL(key string) string {
	if m.urlFn != nil {
		return m.urlFn(key)
	}
	return "https://blobs.example.com/" + key
}

func TestRecordEntry_Validation(t *testing.T) {
	svc := NewDiaryService(&mockEventStore{}, nil)

	tests := []struct {
		name    string
		userID  int64
		moodKey string
		text    string
	}{
		{"missing user", 0, "happy", "a good day"},
		{"missing mood", 1, "", "a good day"},
		{"missing text", 1, "happy", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.RecordEntry(context.Background(), tc.userID, tc.moodKey, tc.text, ImageInput{})
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestRecordEntry_NoDailyLimit(t *testing.T) {
	inserts := 0
	store := &mockEventStore{
		insertFn: func(_ context.Context, e *domain.MoodEvent) (int64, error) {
			if e.CheckIn {
				t.Fatal("diary entries must not be flagged as check-ins")
			}
			inserts++
			return int64(inserts), nil
		},
	}
	svc := NewDiaryService(store, nil)

	for i := 0; i < 5; i++ {
		if _, err := svc.RecordEntry(context.Background(), 1, "happy", "entry", ImageInput{}); err != nil {
			t.Fatalf("entry %d: unexpected error: %v", i, err)
		}
	}
	if inserts != 5 {
		t.Fatalf("expected 5 inserts, got %d", inserts)
	}
}

func TestRecordEntry_BytesWinOverURL(t *testing.T) {
	var inserted *domain.MoodEvent
	store := &mockEventStore{
		insertFn: func(_ context.Context, e *domain.MoodEvent) (int64, error) {
			inserted = e
			return 1, nil
		},
	}
	svc := NewDiaryService(store, nil)

	img := ImageInput{URL: "https://example.com/a.jpg", Data: []byte{0xff, 0xd8}}
	if _, err := svc.RecordEntry(context.Background(), 1, "calm", "entry", img); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inserted.ImageURL != "" {
		t.Errorf("expected URL to be dropped when bytes are present, got %q", inserted.ImageURL)
	}
	if len(inserted.ImageData) == 0 {
		t.Error("expected inline bytes to be stored")
	}
}

func TestEntry_InlineImageAsDataURI(t *testing.T) {
	store := &mockEventStore{
		getFn: func(_ context.Context, id int64) (*domain.MoodEvent, error) {
			return &domain.MoodEvent{ID: id, UserID: 1, ImageData: []byte{0xff, 0xd8}}, nil
		},
	}
	svc := NewDiaryService(store, nil)

	entry, err := svc.Entry(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(entry.Image, "data:image/jpeg;base64,") {
		t.Errorf("expected a data URI, got %q", entry.Image)
	}
}

func TestEntry_NotFound(t *testing.T) {
	svc := NewDiaryService(&mockEventStore{}, nil)

	_, err := svc.Entry(context.Background(), 99)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateEntry_EmptyPatch(t *testing.T) {
	svc := NewDiaryService(&mockEventStore{}, nil)

	err := svc.UpdateEntry(context.Background(), 1, domain.EventPatch{})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestUploadImage(t *testing.T) {
	var gotKey, gotContentType string
	blobs := &mockBlobStore{
		storeFn: func(_ context.Context, key string, data []byte, contentType string) error {
			gotKey = key
			gotContentType = contentType
			return nil
		},
	}
	svc := NewDiaryService(&mockEventStore{}, blobs)

	url, err := svc.UploadImage(context.Background(), []byte{0xff, 0xd8}, "selfie.png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(gotKey, "diary/") || !strings.HasSuffix(gotKey, ".png") {
		t.Errorf("unexpected object key %q", gotKey)
	}
	if gotContentType != "image/jpeg" {
		t.Errorf("unexpected content type %q", gotContentType)
	}
	if !strings.HasSuffix(url, gotKey) {
		t.Errorf("expected URL %q to reference key %q", url, gotKey)
	}
}

func TestUploadImage_NoBlobStore(t *testing.T) {
	svc := NewDiaryService(&mockEventStore{}, nil)

	_, err := svc.UploadImage(context.Background(), []byte{0xff}, "a.jpg")
	if !errors.Is(err, ErrNoBlobStore) {
		t.Fatalf("expected ErrNoBlobStore, got %v", err)
	}
}
