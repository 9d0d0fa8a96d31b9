package adapthttp

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"mindcare/internal/app"
	"mindcare/internal/domain"
)

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: moodKey is required", app.ErrValidation), http.StatusBadRequest},
		{app.ErrInvalidCredentials, http.StatusUnauthorized},
		{domain.ErrNotFound, http.StatusNotFound},
		{domain.ErrDuplicateCheckIn, http.StatusConflict},
		{domain.ErrDuplicateEmail, http.StatusConflict},
		{app.ErrNoBlobStore, http.StatusNotImplemented},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		if got := errorStatus(tc.err); got != tc.want {
			t.Errorf("errorStatus(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestIntQuery(t *testing.T) {
	tests := []struct {
		url  string
		want int
	}{
		{"/x", 5},
		{"/x?limit=3", 3},
		{"/x?limit=0", 5},
		{"/x?limit=abc", 5},
	}
	for _, tc := range tests {
		r := httptest.NewRequest(http.MethodGet, tc.url, nil)
		if got := intQuery(r, "limit", 5); got != tc.want {
			t.Errorf("intQuery(%q) = %d, want %d", tc.url, got, tc.want)
		}
	}
}

func TestIDQuery(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/x?id=12", nil)
	id, err := idQuery(r)
	if err != nil || id != 12 {
		t.Fatalf("idQuery = %d, %v", id, err)
	}

	for _, url := range []string{"/x", "/x?id=0", "/x?id=-4", "/x?id=abc"} {
		r := httptest.NewRequest(http.MethodGet, url, nil)
		if _, err := idQuery(r); err == nil {
			t.Errorf("idQuery(%q): expected an error", url)
		}
	}
}
