package controller_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/tnqbao/gau-travel-service/config"
	"github.com/tnqbao/gau-travel-service/entity"
	"github.com/tnqbao/gau-travel-service/http/controller"
	"github.com/tnqbao/gau-travel-service/http/route"
	"github.com/tnqbao/gau-travel-service/infra"
	"github.com/tnqbao/gau-travel-service/infra/produce"
	"github.com/tnqbao/gau-travel-service/repository"
	"github.com/tnqbao/gau-travel-service/utils"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01")

type fakeStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	// afterPut runs once an object is stored, outside the lock
	afterPut func(key string)
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}}
}

func (s *fakeStorage) PutObject(_ context.Context, key string, data []byte, _ string) error {
	s.mu.Lock()
	s.objects[key] = data
	hook := s.afterPut
	s.mu.Unlock()

	if hook != nil {
		hook(key)
	}
	return nil
}

func (s *fakeStorage) GetObject(_ context.Context, key string) ([]byte, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[key]
	if !ok {
		return nil, "", fmt.Errorf("%w: %s", utils.ErrNotFound, key)
	}
	return data, "application/octet-stream", nil
}

func (s *fakeStorage) DeleteObject(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[key]; !ok {
		return fmt.Errorf("%w: %s", utils.ErrNotFound, key)
	}
	delete(s.objects, key)
	return nil
}

func (s *fakeStorage) ObjectExists(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[key]
	return ok, nil
}

func (s *fakeStorage) ListObjects(_ context.Context, prefix string) ([]entity.BlobInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var blobs []entity.BlobInfo
	for key, data := range s.objects {
		if strings.HasPrefix(key, prefix) {
			blobs = append(blobs, entity.BlobInfo{Path: key, Name: key[strings.LastIndex(key, "/")+1:], Size: int64(len(data))})
		}
	}
	sort.Slice(blobs, func(i, j int) bool { return blobs[i].Path < blobs[j].Path })
	return blobs, nil
}

func (s *fakeStorage) PresignedGetURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://storage.test/" + key, nil
}

func (s *fakeStorage) DeleteObjectsWithPrefix(_ context.Context, prefix string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.objects {
		if strings.HasPrefix(key, prefix) {
			delete(s.objects, key)
		}
	}
	return nil
}

func (s *fakeStorage) keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.objects))
	for key := range s.objects {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

type fakeClassifier struct {
	scores map[string]int
	err    error
}

func (f *fakeClassifier) Classify(context.Context, []byte) (map[string]int, error) {
	return f.scores, f.err
}

type fakeSpeech struct {
	transcript *entity.Transcript
	audio      []byte
	err        error
}

func (f *fakeSpeech) Transcribe(context.Context, []byte, string) (*entity.Transcript, error) {
	return f.transcript, f.err
}

func (f *fakeSpeech) Synthesize(context.Context, string, string) ([]byte, error) {
	return f.audio, f.err
}

type fakeSessions struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func (f *fakeSessions) RevokeUser(_ context.Context, userID string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revoked[userID] = time.Now()
	return nil
}

func (f *fakeSessions) RevokedAt(_ context.Context, userID string) (time.Time, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	at, ok := f.revoked[userID]
	return at, ok, nil
}

type fakePublisher struct {
	mu             sync.Mutex
	deletedUsers   []string
	deletedObjects []string
	welcomed       []string
	farewelled     []string
}

func (f *fakePublisher) PublishDeleteUserBlobs(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletedUsers = append(f.deletedUsers, userID)
	return nil
}

func (f *fakePublisher) PublishDeleteObject(_ context.Context, _ string, objectPath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletedObjects = append(f.deletedObjects, objectPath)
	return nil
}

func (f *fakePublisher) SendWelcome(_ context.Context, email, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.welcomed = append(f.welcomed, email)
	return nil
}

func (f *fakePublisher) SendAccountDeleted(_ context.Context, email, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.farewelled = append(f.farewelled, email)
	return nil
}

type testApp struct {
	router     *gin.Engine
	db         *gorm.DB
	storage    *fakeStorage
	classifier *fakeClassifier
	speech     *fakeSpeech
	sessions   *fakeSessions
	publisher  *fakePublisher
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)
	gin.DefaultWriter = io.Discard

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", name)), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, infra.MigrateSchema(db))

	cfg := &config.Config{EnvConfig: config.LoadEnvConfig()}
	cfg.EnvConfig.JWT.SecretKey = "test-secret"
	cfg.EnvConfig.JWT.Expire = 3600
	cfg.EnvConfig.ContentSafety.Threshold = 3
	cfg.EnvConfig.Upload.MaxImageSize = 1 << 20
	cfg.EnvConfig.Upload.MaxAudioSize = 1 << 20
	cfg.EnvConfig.Minio.PresignExpiry = 30 * time.Minute
	cfg.EnvConfig.CORS.AllowDomains = ""

	app := &testApp{
		db:         db,
		storage:    newFakeStorage(),
		classifier: &fakeClassifier{scores: map[string]int{"Hate": 0, "Violence": 0}},
		speech:     &fakeSpeech{},
		sessions:   &fakeSessions{revoked: map[string]time.Time{}},
		publisher:  &fakePublisher{},
	}

	testInfra := &infra.Infra{
		Logger:        infra.NewLoggerClient(slog.NewTextHandler(io.Discard, nil)),
		Storage:       app.storage,
		Sessions:      app.sessions,
		Speech:        app.speech,
		ContentSafety: app.classifier,
		Produce:       &produce.Produce{BlobService: app.publisher, EmailService: app.publisher},
		Metrics:       infra.DefaultMetrics(),
	}

	ctrl := controller.NewController(cfg, testInfra, repository.NewRepository(db))
	app.router = routes.SetupRouter(ctrl)
	return app
}

func (a *testApp) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) upload(t *testing.T, path, token, field, filename string, data []byte, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

// register signs a user up and returns a fresh access token.
func (a *testApp) register(t *testing.T, id string) string {
	t.Helper()
	w := a.do(t, http.MethodPost, "/api/v1/travel/auth/signup", "", map[string]interface{}{
		"id":       id,
		"name":     strings.ToUpper(id[:1]) + id[1:],
		"password": "correct-horse",
		"email":    id + "@example.com",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = a.do(t, http.MethodPost, "/api/v1/travel/auth/login", "", map[string]string{
		"id":       id,
		"password": "correct-horse",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)
	return resp.AccessToken
}

func (a *testApp) createArticle(t *testing.T, token string) string {
	t.Helper()
	w := a.do(t, http.MethodPost, "/api/v1/travel/articles", token, map[string]interface{}{
		"title":          "Kyoto in autumn",
		"travel_country": "Japan",
		"travel_city":    "Kyoto",
		"price":          120.5,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Article entity.Article `json:"article"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Article.ID
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func itoa(id uint) string {
	return fmt.Sprintf("%d", id)
}
