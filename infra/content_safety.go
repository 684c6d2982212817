package infra

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/sony/gobreaker"
	"github.com/tnqbao/gau-travel-service/config"
)

type ImageClassifier interface {
	Classify(ctx context.Context, image []byte) (map[string]int, error)
}

type ContentSafetyService struct {
	Endpoint   string
	Key        string
	HTTPClient *http.Client
	breaker    *gobreaker.CircuitBreaker
}

func InitContentSafetyService(cfg *config.EnvConfig) *ContentSafetyService {
	if cfg.ContentSafety.Endpoint == "" {
		panic("Content safety endpoint is not configured")
	}
	if cfg.ContentSafety.Key == "" {
		panic("Content safety key is not configured")
	}

	return &ContentSafetyService{
		Endpoint:   strings.TrimSuffix(cfg.ContentSafety.Endpoint, "/"),
		Key:        cfg.ContentSafety.Key,
		HTTPClient: &http.Client{},
		breaker:    newProviderBreaker("content-safety"),
	}
}

type analyzeImageResponse struct {
	CategoriesAnalysis []struct {
		Category string `json:"category"`
		Severity int    `json:"severity"`
	} `json:"categoriesAnalysis"`
}

// Classify returns the severity per harm category.
func (s *ContentSafetyService) Classify(ctx context.Context, image []byte) (map[string]int, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"image": map[string]string{"content": base64.StdEncoding.EncodeToString(image)},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/contentsafety/image:analyze?api-version=2023-10-01", s.Endpoint)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Ocp-Apim-Subscription-Key", s.Key)

	return callProvider(s.breaker, func() (map[string]int, error) {
		return s.analyze(req)
	})
}

func (s *ContentSafetyService) analyze(req *http.Request) (map[string]int, error) {
	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call content safety service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("content safety service returned %d: %s", resp.StatusCode, raw)
	}

	var result analyzeImageResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	scores := make(map[string]int, len(result.CategoriesAnalysis))
	for _, c := range result.CategoriesAnalysis {
		scores[c.Category] = c.Severity
	}
	return scores, nil
}

// FilteredCategories lists, sorted, the categories whose severity is above threshold.
func FilteredCategories(scores map[string]int, threshold int) []string {
	var flagged []string
	for category, severity := range scores {
		if severity > threshold {
			flagged = append(flagged, category)
		}
	}
	sort.Strings(flagged)
	return flagged
}
