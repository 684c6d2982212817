package controller_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tnqbao/gau-travel-service/infra"
)

type storedBlob struct {
	Path   string         `json:"path"`
	URL    string         `json:"url"`
	Scores map[string]int `json:"moderation_scores"`
}

func TestUploadImageAllocatesFreeName(t *testing.T) {
	app := newTestApp(t)
	token := app.register(t, "alice")
	app.storage.objects["alice/images/photo.png"] = []byte("existing")

	w := app.upload(t, "/api/v1/travel/images", token, "file", "photo.png", pngHeader, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var blob storedBlob
	decode(t, w, &blob)
	assert.Equal(t, "alice/images/photo_1.png", blob.Path)
	assert.Equal(t, "https://storage.test/alice/images/photo_1.png", blob.URL)
	assert.Equal(t, []byte("existing"), app.storage.objects["alice/images/photo.png"])
}

func TestUploadImageIntoMagazineFolder(t *testing.T) {
	app := newTestApp(t)
	token := app.register(t, "alice")

	w := app.upload(t, "/api/v1/travel/images", token, "file", "photo.png", pngHeader, map[string]string{
		"magazine": "tokyo",
		"folder":   "day1",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var blob storedBlob
	decode(t, w, &blob)
	assert.Equal(t, "alice/magazines/tokyo/day1/images/photo.png", blob.Path)

	w = app.upload(t, "/api/v1/travel/images", token, "file", "photo.png", pngHeader, map[string]string{
		"magazine": "../bob",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.upload(t, "/api/v1/travel/images", token, "file", "photo.png", pngHeader, map[string]string{
		"folder": "day1",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadImageFiltered(t *testing.T) {
	app := newTestApp(t)
	token := app.register(t, "alice")
	app.classifier.scores = map[string]int{"Hate": 0, "Violence": 4}

	w := app.upload(t, "/api/v1/travel/images", token, "file", "photo.png", pngHeader, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "image filtered")
	assert.Contains(t, w.Body.String(), "Violence")
	assert.Empty(t, app.storage.keys())
}

func TestUploadImageAtThresholdIsAccepted(t *testing.T) {
	app := newTestApp(t)
	token := app.register(t, "alice")
	app.classifier.scores = map[string]int{"Sexual": 3}

	w := app.upload(t, "/api/v1/travel/images", token, "file", "photo.png", pngHeader, nil)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestUploadImageClassifierDown(t *testing.T) {
	app := newTestApp(t)
	token := app.register(t, "alice")
	app.classifier.err = errors.New("connection refused")

	w := app.upload(t, "/api/v1/travel/images", token, "file", "photo.png", pngHeader, nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Empty(t, app.storage.keys())
}

func TestUploadImageClassifierCircuitOpen(t *testing.T) {
	app := newTestApp(t)
	token := app.register(t, "alice")
	app.classifier.err = fmt.Errorf("%w: content-safety", infra.ErrProviderUnavailable)

	w := app.upload(t, "/api/v1/travel/images", token, "file", "photo.png", pngHeader, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Empty(t, app.storage.keys())
}

func TestUploadRejectsNonImage(t *testing.T) {
	app := newTestApp(t)
	token := app.register(t, "alice")

	w := app.upload(t, "/api/v1/travel/images", token, "file", "notes.png", []byte("just some text"), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestImageURLListAndDelete(t *testing.T) {
	app := newTestApp(t)
	token := app.register(t, "alice")
	app.storage.objects["alice/images/a.png"] = pngHeader
	app.storage.objects["alice/images/b.png"] = pngHeader
	app.storage.objects["alice/magazines/tokyo/images/c.png"] = pngHeader
	app.storage.objects["bob/images/a.png"] = pngHeader

	var list struct {
		Images []string `json:"images"`
	}
	decode(t, app.do(t, http.MethodGet, "/api/v1/travel/images", token, nil), &list)
	assert.Equal(t, []string{"a.png", "b.png"}, list.Images)

	var blob storedBlob
	decode(t, app.do(t, http.MethodGet, "/api/v1/travel/images/url?name=a.png", token, nil), &blob)
	assert.Equal(t, "alice/images/a.png", blob.Path)

	w := app.do(t, http.MethodGet, "/api/v1/travel/images/url?name=missing.png", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = app.do(t, http.MethodDelete, "/api/v1/travel/images?name=a.png", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = app.do(t, http.MethodDelete, "/api/v1/travel/images?name=a.png", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = app.do(t, http.MethodDelete, "/api/v1/travel/images?name=../../bob/images/a.png", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, app.storage.keys(), "bob/images/a.png")
}
