package domain_test

import (
	"bytes"
	"encoding/base64"
	"testing"

	"mindcare/internal/domain"
)

func TestImageDataURI(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"empty", nil, ""},
		{"bytes", []byte{0xFF, 0xD8, 0xFF}, "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte{0xFF, 0xD8, 0xFF})},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := domain.ImageDataURI(tc.data)
			if got != tc.want {
				t.Errorf("ImageDataURI(%v) = %q; want %q", tc.data, got, tc.want)
			}
		})
	}
}

func TestDecodeImageInput(t *testing.T) {
	raw := []byte("not really a jpeg")
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(raw)

	url, data, err := domain.DecodeImageInput(uri)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if url != "" {
		t.Errorf("expected empty url, got %q", url)
	}
	if !bytes.Equal(data, raw) {
		t.Errorf("expected decoded bytes %q, got %q", raw, data)
	}

	url, data, err = domain.DecodeImageInput("https://example.com/pic.jpg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if url != "https://example.com/pic.jpg" || data != nil {
		t.Errorf("expected plain url passthrough, got url=%q data=%v", url, data)
	}
}

func TestDecodeImageInput_BadBase64(t *testing.T) {
	if _, _, err := domain.DecodeImageInput("data:image/jpeg;base64,%%%"); err == nil {
		t.Fatal("expected error for invalid base64")
	}
}

func TestNormalizeImage(t *testing.T) {
	raw := []byte{1, 2, 3}
	e := domain.MoodEvent{ImageData: raw, ImageURL: "https://example.com/ignored.jpg"}
	if got := e.NormalizeImage(); got != domain.ImageDataURI(raw) {
		t.Errorf("inline bytes should win: got %q", got)
	}

	e = domain.MoodEvent{ImageURL: "https://example.com/pic.jpg"}
	if got := e.NormalizeImage(); got != "https://example.com/pic.jpg" {
		t.Errorf("expected stored url, got %q", got)
	}

	e = domain.MoodEvent{}
	if got := e.NormalizeImage(); got != "" {
		t.Errorf("expected empty image, got %q", got)
	}
}
