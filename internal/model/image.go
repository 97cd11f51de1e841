package model

import (
	"encoding/base64"
	"fmt"
	"path"
	"strings"
	"time"
)

// ImageRecord is a gallery image as returned by the backend.
type ImageRecord struct {
	ID          string `json:"_id"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	ImageData   string `json:"image_data"`
	UploadedAt  string `json:"uploaded_at"`
}

// DateKey returns the calendar date portion of UploadedAt.
func (r ImageRecord) DateKey() string {
	date, _, _ := strings.Cut(r.UploadedAt, "T")
	return date
}

// Decode returns the raw image bytes.
func (r ImageRecord) Decode() ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(r.ImageData)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", r.ID, err)
	}
	return data, nil
}

// ObjectName is the name used when the record is exported to a sink.
func (r ImageRecord) ObjectName() string {
	return path.Join(r.DateKey(), r.ID+ExtensionFor(r.ContentType))
}

// Upload is a local file selected for description.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExtensionFor maps an image content type to a file extension.
func ExtensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".bin"
	}
}

// FormatDateHeading renders a date key like "Tuesday, January 2, 2024".
// Keys that are not dates are returned unchanged.
func FormatDateHeading(dateKey string) string {
	t, err := time.Parse(time.DateOnly, dateKey)
	if err != nil {
		return dateKey
	}
	return t.Format("Monday, January 2, 2006")
}
