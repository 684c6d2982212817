package infra

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyOpensCircuitAfterRepeatedFailures(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	service := &ContentSafetyService{
		Endpoint:   server.URL,
		Key:        "key",
		HTTPClient: server.Client(),
		breaker:    newProviderBreaker("content-safety-test"),
	}

	for i := 0; i < 5; i++ {
		_, err := service.Classify(t.Context(), []byte("png"))
		require.Error(t, err)
		assert.False(t, errors.Is(err, ErrProviderUnavailable))
	}

	_, err := service.Classify(t.Context(), []byte("png"))
	assert.ErrorIs(t, err, ErrProviderUnavailable)
	assert.Equal(t, int32(5), calls.Load())
}

func TestNoSpeechDoesNotTripCircuit(t *testing.T) {
	breaker := newProviderBreaker("speech-test")

	for i := 0; i < 10; i++ {
		_, err := callProvider(breaker, func() (string, error) {
			return "", ErrNoSpeech
		})
		assert.ErrorIs(t, err, ErrNoSpeech)
	}

	out, err := callProvider(breaker, func() (string, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
}

func TestCallProviderWithoutBreaker(t *testing.T) {
	out, err := callProvider(nil, func() (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, out)
}
