package entity

import "time"

// BlobInfo describes one stored object under a user's prefix.
type BlobInfo struct {
	Path         string    `json:"path"`
	Name         string    `json:"name"`
	Size         int64     `json:"size"`
	ContentType  string    `json:"content_type,omitempty"`
	LastModified time.Time `json:"last_modified"`
}

// Transcript is the result of a speech-to-text call.
type Transcript struct {
	Language string `json:"detected_language"`
	Text     string `json:"transcription"`
}
