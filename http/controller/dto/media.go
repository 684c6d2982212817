package dto

type StoredBlobResponseDTO struct {
	Path      string         `json:"path"`
	URL       string         `json:"url"`
	ExpiresIn int64          `json:"expires_in"`
	Scores    map[string]int `json:"moderation_scores,omitempty"`
}

type TranscriptionResponseDTO struct {
	Language string `json:"detected_language"`
	Text     string `json:"transcription"`
	Path     string `json:"path"`
}

type SpeakRequestDTO struct {
	Text     string `json:"text" binding:"required,max=5000"`
	Language string `json:"language" binding:"required"`
}
