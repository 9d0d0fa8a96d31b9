package domain

import (
	"encoding/base64"
	"strings"
)

const dataURIPrefix = "data:image/jpeg;base64,"

// ImageDataURI encodes inline image bytes as a data URI. Stored images are
// always tagged image/jpeg on the way out, regardless of the source format.
func ImageDataURI(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	return dataURIPrefix + base64.StdEncoding.EncodeToString(data)
}

// DecodeImageInput splits an image input string into a URL reference or
// inline bytes. A data URI of any media type yields the decoded bytes;
// anything else is treated as a URL.
func DecodeImageInput(s string) (url string, data []byte, err error) {
	if !strings.HasPrefix(s, "data:") {
		return s, nil, nil
	}
	idx := strings.Index(s, ",")
	if idx < 0 {
		return s, nil, nil
	}
	data, err = base64.StdEncoding.DecodeString(s[idx+1:])
	if err != nil {
		return "", nil, err
	}
	return "", data, nil
}

// NormalizeImage returns the single read-side representation of an event's
// image: the data URI for inline bytes, else the stored URL.
func (e *MoodEvent) NormalizeImage() string {
	if len(e.ImageData) > 0 {
		return ImageDataURI(e.ImageData)
	}
	return e.ImageURL
}
