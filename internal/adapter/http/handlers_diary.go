package adapthttp

import (
	"io"
	"net/http"

	"mindcare/internal/app"
	"mindcare/internal/domain"
)

const maxImageBytes = 10 << 20

func (s *Server) handleDiarySave(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	user := userFromContext(r)

	var body struct {
		Mood      string `json:"mood"`
		EntryText string `json:"entryText"`
		ImageURL  string `json:"imageUrl"`
		ImageData string `json:"imageData"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	image := app.ImageInput{URL: body.ImageURL}
	if body.ImageData != "" {
		url, data, err := domain.DecodeImageInput(body.ImageData)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		image = app.ImageInput{URL: url, Data: data}
	}

	id, err := s.diary.RecordEntry(r.Context(), user.ID, body.Mood, body.EntryText, image)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"entryId": id})
}

// handleDiaryUpload stores a multipart image in the blob store and returns
// its public URL, for clients that prefer URL references over inline bytes.
func (s *Server) handleDiaryUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	defer file.Close() //nolint:errcheck

	data, err := io.ReadAll(io.LimitReader(file, maxImageBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	url, err := s.diary.UploadImage(r.Context(), data, header.Filename)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"url": url})
}

func (s *Server) handleDiaryEntries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	user := userFromContext(r)

	entries, err := s.diary.Feed(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": entries})
}

func (s *Server) handleDiaryEntry(w http.ResponseWriter, r *http.Request) {
	id, err := idQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	switch r.Method {
	case http.MethodGet:
		entry, err := s.diary.Entry(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, entry)

	case http.MethodPut:
		var body struct {
			Mood      *string `json:"mood"`
			EntryText *string `json:"entryText"`
			ImageURL  *string `json:"imageUrl"`
			ImageData *string `json:"imageData"`
		}
		if err := parseJSON(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		patch := domain.EventPatch{
			EntryText: body.EntryText,
			ImageURL:  body.ImageURL,
		}
		if body.Mood != nil {
			m := domain.LookupMood(*body.Mood)
			patch.MoodKey = &m.Key
			patch.MoodName = &m.Name
			patch.MoodColor = &m.Color
			patch.MoodIcon = &m.Icon
		}
		if body.ImageData != nil {
			url, data, err := domain.DecodeImageInput(*body.ImageData)
			if err != nil {
				writeError(w, http.StatusBadRequest, err)
				return
			}
			if url != "" {
				patch.ImageURL = &url
			} else {
				patch.ImageData = data
			}
		}

		if err := s.diary.UpdateEntry(r.Context(), id, patch); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})

	case http.MethodDelete:
		if err := s.diary.DeleteEntry(r.Context(), id); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
