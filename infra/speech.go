package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"github.com/tnqbao/gau-travel-service/config"
	"github.com/tnqbao/gau-travel-service/entity"
	"github.com/tnqbao/gau-travel-service/utils"
)

var (
	ErrUnsupportedAudioFormat = errors.New("unsupported audio format")
	ErrNoSpeech               = errors.New("no speech could be recognized")
	ErrSpeechTimeout          = errors.New("speech recognition timed out")
)

const UnknownLanguage = "unknown"

// SupportedAudioFormats maps accepted extensions to their content type.
var SupportedAudioFormats = map[string]string{
	".wav":  "audio/wav",
	".mp3":  "audio/mpeg",
	".ogg":  "audio/ogg",
	".flac": "audio/flac",
	".m4a":  "audio/mp4",
	".aac":  "audio/aac",
}

var synthesisVoices = map[string]string{
	"ko-KR": "ko-KR-SunHiNeural",
	"en-US": "en-US-JennyNeural",
}

type SpeechProvider interface {
	Transcribe(ctx context.Context, audio []byte, formatHint string) (*entity.Transcript, error)
	Synthesize(ctx context.Context, text, language string) ([]byte, error)
}

type SpeechService struct {
	Endpoint    string
	TTSEndpoint string
	Key         string
	Locales     []string
	Timeout     time.Duration
	HTTPClient  *http.Client
	breaker     *gobreaker.CircuitBreaker
}

func InitSpeechService(cfg *config.EnvConfig) *SpeechService {
	if cfg.Speech.Endpoint == "" {
		panic("Speech service endpoint is not configured")
	}
	if cfg.Speech.Key == "" {
		panic("Speech service key is not configured")
	}

	return &SpeechService{
		Endpoint:    strings.TrimSuffix(cfg.Speech.Endpoint, "/"),
		TTSEndpoint: strings.TrimSuffix(cfg.Speech.TTSEndpoint, "/"),
		Key:         cfg.Speech.Key,
		Locales:     []string{"ko-KR", "en-US"},
		Timeout:     cfg.Speech.Timeout,
		HTTPClient:  &http.Client{},
		breaker:     newProviderBreaker("speech"),
	}
}

// NormalizeAudioFormat accepts "mp3", ".MP3" or "clip.mp3" and returns ".mp3".
func NormalizeAudioFormat(hint string) (string, error) {
	ext := strings.ToLower(filepath.Ext(hint))
	if ext == "" {
		ext = "." + strings.ToLower(strings.TrimPrefix(hint, "."))
	}
	if _, ok := SupportedAudioFormats[ext]; !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedAudioFormat, ext)
	}
	return ext, nil
}

// NormalizeLanguage maps short codes to the locales the synthesizer knows.
func NormalizeLanguage(language string) (string, error) {
	switch strings.ToLower(language) {
	case "ko", "ko-kr", "kor", "korean":
		return "ko-KR", nil
	case "en", "en-us", "eng", "english":
		return "en-US", nil
	}
	return "", fmt.Errorf("%w: unsupported language %q", utils.ErrValidation, language)
}

type transcriptionResponse struct {
	CombinedPhrases []struct {
		Text string `json:"text"`
	} `json:"combinedPhrases"`
	Phrases []struct {
		Locale string `json:"locale"`
		Text   string `json:"text"`
	} `json:"phrases"`
}

func (s *SpeechService) Transcribe(ctx context.Context, audio []byte, formatHint string) (*entity.Transcript, error) {
	ext, err := NormalizeAudioFormat(formatHint)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="audio"; filename="audio%s"`, ext))
	h.Set("Content-Type", SupportedAudioFormats[ext])
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("failed to create audio part: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return nil, fmt.Errorf("failed to write audio data: %w", err)
	}

	definition, err := json.Marshal(map[string]interface{}{"locales": s.Locales})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal definition: %w", err)
	}
	if err := w.WriteField("definition", string(definition)); err != nil {
		return nil, fmt.Errorf("failed to write definition field: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	url := fmt.Sprintf("%s/speechtotext/transcriptions:transcribe?api-version=2024-11-15", s.Endpoint)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Ocp-Apim-Subscription-Key", s.Key)

	return callProvider(s.breaker, func() (*entity.Transcript, error) {
		return s.sendTranscription(ctx, req)
	})
}

func (s *SpeechService) sendTranscription(ctx context.Context, req *http.Request) (*entity.Transcript, error) {
	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, ErrSpeechTimeout
		}
		return nil, fmt.Errorf("failed to call speech service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("speech service returned %d: %s", resp.StatusCode, raw)
	}

	var result transcriptionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	texts := make([]string, 0, len(result.CombinedPhrases))
	for _, phrase := range result.CombinedPhrases {
		if t := strings.TrimSpace(phrase.Text); t != "" {
			texts = append(texts, t)
		}
	}
	text := strings.TrimSpace(strings.Join(texts, " "))
	if text == "" {
		return nil, ErrNoSpeech
	}

	language := UnknownLanguage
	for _, phrase := range result.Phrases {
		if phrase.Locale != "" {
			language = phrase.Locale
			break
		}
	}

	return &entity.Transcript{Language: language, Text: text}, nil
}

// Synthesize renders text as MP3 audio.
func (s *SpeechService) Synthesize(ctx context.Context, text, language string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: text cannot be empty", utils.ErrValidation)
	}
	locale, err := NormalizeLanguage(language)
	if err != nil {
		return nil, err
	}

	var escaped bytes.Buffer
	if err := xml.EscapeText(&escaped, []byte(text)); err != nil {
		return nil, fmt.Errorf("failed to escape text: %w", err)
	}
	ssml := fmt.Sprintf(`<speak version="1.0" xml:lang="%s"><voice xml:lang="%s" name="%s">%s</voice></speak>`,
		locale, locale, synthesisVoices[locale], escaped.String())

	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	url := fmt.Sprintf("%s/cognitiveservices/v1", s.TTSEndpoint)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(ssml))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/ssml+xml")
	req.Header.Set("X-Microsoft-OutputFormat", "audio-24khz-48kbitrate-mono-mp3")
	req.Header.Set("Ocp-Apim-Subscription-Key", s.Key)
	req.Header.Set("User-Agent", "gau-travel-service")

	return callProvider(s.breaker, func() ([]byte, error) {
		return s.sendSynthesis(ctx, req)
	})
}

func (s *SpeechService) sendSynthesis(ctx context.Context, req *http.Request) ([]byte, error) {
	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, ErrSpeechTimeout
		}
		return nil, fmt.Errorf("failed to call synthesis service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("synthesis service returned %d: %s", resp.StatusCode, raw)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read synthesized audio: %w", err)
	}
	return audio, nil
}
