package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"mindcare/internal/domain"
)

func insertEvent(t *testing.T, db *DB, e domain.MoodEvent) int64 {
	t.Helper()
	id, err := db.InsertEvent(context.Background(), &e)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	return id
}

func TestInsertAndGetEvent(t *testing.T) {
	db := New()
	ctx := context.Background()

	id := insertEvent(t, db, domain.MoodEvent{UserID: 1, MoodKey: "happy", EntryText: "a fine day"})

	got, err := db.GetEvent(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.UserID != 1 || got.MoodKey != "happy" || got.EntryText != "a fine day" {
		t.Errorf("unexpected event: %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set on insert")
	}

	if _, err := db.GetEvent(ctx, 999); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCheckInUniquePerDay(t *testing.T) {
	db := New()
	ctx := context.Background()

	if _, err := db.InsertEvent(ctx, &domain.MoodEvent{UserID: 1, MoodKey: "happy", CheckIn: true}); err != nil {
		t.Fatalf("first check-in: %v", err)
	}
	_, err := db.InsertEvent(ctx, &domain.MoodEvent{UserID: 1, MoodKey: "sad", CheckIn: true})
	if !errors.Is(err, domain.ErrDuplicateCheckIn) {
		t.Fatalf("expected ErrDuplicateCheckIn, got %v", err)
	}

	// Another user and another day are unaffected.
	if _, err := db.InsertEvent(ctx, &domain.MoodEvent{UserID: 2, MoodKey: "happy", CheckIn: true}); err != nil {
		t.Fatalf("other user: %v", err)
	}
	yesterday := time.Now().AddDate(0, 0, -1)
	if _, err := db.InsertEvent(ctx, &domain.MoodEvent{UserID: 1, MoodKey: "calm", CheckIn: true, CreatedAt: yesterday}); err != nil {
		t.Fatalf("other day: %v", err)
	}

	// Diary entries are not limited.
	for i := 0; i < 3; i++ {
		if _, err := db.InsertEvent(ctx, &domain.MoodEvent{UserID: 1, MoodKey: "happy", EntryText: "entry"}); err != nil {
			t.Fatalf("diary entry %d: %v", i, err)
		}
	}
}

func TestCheckInConcurrent(t *testing.T) {
	db := New()
	ctx := context.Background()

	const n = 16
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = db.InsertEvent(ctx, &domain.MoodEvent{UserID: 1, MoodKey: "happy", CheckIn: true})
		}(i)
	}
	wg.Wait()

	success := 0
	for i, err := range errs {
		switch {
		case err == nil:
			success++
		case errors.Is(err, domain.ErrDuplicateCheckIn):
		default:
			t.Fatalf("goroutine %d: unexpected error: %v", i, err)
		}
	}
	if success != 1 {
		t.Fatalf("expected exactly one successful check-in, got %d", success)
	}
}

func TestListEventsOrderAndFilters(t *testing.T) {
	db := New()
	ctx := context.Background()
	now := time.Now()

	insertEvent(t, db, domain.MoodEvent{UserID: 1, MoodKey: "happy", CreatedAt: now.AddDate(0, 0, -8)})
	id2 := insertEvent(t, db, domain.MoodEvent{UserID: 1, MoodKey: "sad", CreatedAt: now.AddDate(0, 0, -2)})
	id3 := insertEvent(t, db, domain.MoodEvent{UserID: 1, MoodKey: "calm", CreatedAt: now.Add(-time.Hour)})
	insertEvent(t, db, domain.MoodEvent{UserID: 2, MoodKey: "angry", CreatedAt: now})

	all, err := db.ListEvents(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 events for user 1, got %d", len(all))
	}
	if all[0].ID != id3 || all[1].ID != id2 {
		t.Errorf("expected newest-first order, got ids %d, %d, %d", all[0].ID, all[1].ID, all[2].ID)
	}

	since := now.AddDate(0, 0, -6)
	recent, err := db.ListEventsSince(ctx, 1, since)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected the 8-day-old event to fall outside the window, got %d events", len(recent))
	}

	limited, err := db.ListRecentEvents(ctx, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 1 || limited[0].ID != id3 {
		t.Errorf("expected only the newest event, got %+v", limited)
	}
}

func TestAggregateByMood(t *testing.T) {
	db := New()
	ctx := context.Background()
	now := time.Now()

	insertEvent(t, db, domain.MoodEvent{UserID: 1, MoodKey: "happy", MoodName: "Glad", CreatedAt: now.Add(-3 * time.Hour)})
	insertEvent(t, db, domain.MoodEvent{UserID: 1, MoodKey: "happy", MoodName: "Happy", CreatedAt: now.Add(-time.Hour)})
	insertEvent(t, db, domain.MoodEvent{UserID: 1, MoodKey: "sad", MoodName: "Sad", CreatedAt: now.Add(-2 * time.Hour)})

	stats, err := db.AggregateByMood(ctx, 1, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(stats) != 2 {
		t.Fatalf("expected 2 mood groups, got %d", len(stats))
	}
	if stats[0].MoodKey != "happy" || stats[0].Count != 2 {
		t.Errorf("unexpected top stat: %+v", stats[0])
	}
	if stats[0].MoodName != "Happy" {
		t.Errorf("expected metadata from the latest event, got %q", stats[0].MoodName)
	}
	if !stats[0].LastEntryAt.Equal(now.Add(-time.Hour)) {
		t.Errorf("unexpected last entry time: %v", stats[0].LastEntryAt)
	}

	since := now.Add(-90 * time.Minute)
	bounded, err := db.AggregateByMood(ctx, 1, &since)
	if err != nil {
		t.Fatal(err)
	}
	if len(bounded) != 1 || bounded[0].MoodKey != "happy" || bounded[0].Count != 1 {
		t.Errorf("unexpected bounded stats: %+v", bounded)
	}

	// Aggregation is a pure read; repeating it changes nothing.
	again, err := db.AggregateByMood(ctx, 1, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(again) != 2 || again[0].Count != 2 {
		t.Errorf("expected identical stats on repeat, got %+v", again)
	}
}

func TestUpdateEventPatch(t *testing.T) {
	db := New()
	ctx := context.Background()

	id := insertEvent(t, db, domain.MoodEvent{UserID: 1, MoodKey: "happy", EntryText: "before", ImageURL: "https://example.com/a.jpg"})

	text := "after"
	if err := db.UpdateEvent(ctx, id, domain.EventPatch{EntryText: &text}); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := db.GetEvent(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if got.EntryText != "after" {
		t.Errorf("expected patched text, got %q", got.EntryText)
	}
	if got.MoodKey != "happy" || got.ImageURL != "https://example.com/a.jpg" {
		t.Errorf("unpatched fields must not change: %+v", got)
	}

	if err := db.UpdateEvent(ctx, 999, domain.EventPatch{EntryText: &text}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteEvent(t *testing.T) {
	db := New()
	ctx := context.Background()

	id := insertEvent(t, db, domain.MoodEvent{UserID: 1, MoodKey: "happy"})

	if err := db.DeleteEvent(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := db.GetEvent(ctx, id); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := db.DeleteEvent(ctx, id); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on repeat delete, got %v", err)
	}
}

func TestUsers(t *testing.T) {
	db := New()
	ctx := context.Background()

	u, err := db.Create(ctx, "alice", "alice@example.com", "hash", "555-0100")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := db.Create(ctx, "other", "alice@example.com", "hash2", ""); !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}

	got, err := db.GetByEmail(ctx, "alice@example.com")
	if err != nil || got == nil || got.ID != u.ID {
		t.Fatalf("GetByEmail: got %+v, %v", got, err)
	}
	missing, err := db.GetByEmail(ctx, "nobody@example.com")
	if err != nil || missing != nil {
		t.Fatalf("expected (nil, nil) for unknown email, got %+v, %v", missing, err)
	}

	phone := "555-0199"
	if err := db.Update(ctx, u.ID, domain.UserPatch{EmergencyPhone: &phone}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ = db.GetByID(ctx, u.ID)
	if got.EmergencyPhone != phone {
		t.Errorf("expected patched phone, got %q", got.EmergencyPhone)
	}
	if got.Username != "alice" {
		t.Errorf("unpatched fields must not change: %+v", got)
	}

	b, err := db.Create(ctx, "bob", "bob@example.com", "hash", "")
	if err != nil {
		t.Fatal(err)
	}
	taken := "alice@example.com"
	if err := db.Update(ctx, b.ID, domain.UserPatch{Email: &taken}); !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail on update, got %v", err)
	}
}

func TestSessions(t *testing.T) {
	db := New()
	repo := db.NewSessionRepo()
	ctx := context.Background()

	if err := repo.Create(ctx, 1, "tok-live", time.Now().Add(time.Hour)); err != nil {
		t.Fatal(err)
	}
	if err := repo.Create(ctx, 1, "tok-stale", time.Now().Add(-time.Hour)); err != nil {
		t.Fatal(err)
	}

	s, err := repo.GetByToken(ctx, "tok-live")
	if err != nil || s == nil || s.UserID != 1 {
		t.Fatalf("GetByToken: got %+v, %v", s, err)
	}

	if err := repo.DeleteExpired(ctx); err != nil {
		t.Fatal(err)
	}
	if s, _ := repo.GetByToken(ctx, "tok-stale"); s != nil {
		t.Error("expected the expired session to be removed")
	}
	if s, _ := repo.GetByToken(ctx, "tok-live"); s == nil {
		t.Error("expected the live session to survive")
	}

	if err := repo.Delete(ctx, "tok-live"); err != nil {
		t.Fatal(err)
	}
	if s, _ := repo.GetByToken(ctx, "tok-live"); s != nil {
		t.Error("expected the deleted session to be gone")
	}
}
