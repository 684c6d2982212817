package infra

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/contentsafety/image:analyze", r.URL.Path)

		var body struct {
			Image struct {
				Content string `json:"content"`
			} `json:"image"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("png")), body.Image.Content)

		_, _ = w.Write([]byte(`{"categoriesAnalysis":[{"category":"Hate","severity":0},{"category":"Violence","severity":4}]}`))
	}))
	defer server.Close()

	service := &ContentSafetyService{Endpoint: server.URL, Key: "key", HTTPClient: server.Client()}
	scores, err := service.Classify(t.Context(), []byte("png"))
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Hate": 0, "Violence": 4}, scores)
}

func TestClassifyProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	service := &ContentSafetyService{Endpoint: server.URL, Key: "bad", HTTPClient: server.Client()}
	_, err := service.Classify(t.Context(), []byte("png"))
	assert.Error(t, err)
}

func TestFilteredCategories(t *testing.T) {
	scores := map[string]int{"Violence": 4, "Hate": 6, "Sexual": 3, "SelfHarm": 0}

	assert.Equal(t, []string{"Hate", "Violence"}, FilteredCategories(scores, 3))
	assert.Empty(t, FilteredCategories(scores, 6))
	assert.Empty(t, FilteredCategories(nil, 3))
}
