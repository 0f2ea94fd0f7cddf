package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type stubOCRService struct {
	mu      sync.Mutex
	objects []string
	err     error
}

func (s *stubOCRService) IngestScan(_ context.Context, objectName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects = append(s.objects, objectName)
	return s.err
}

// ingested returns a copy safe to inspect while scan goroutines run.
func (s *stubOCRService) ingested() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.objects...)
}

func newWebhookRouter(ocr *stubOCRService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewWebhookHandler(ocr).RegisterRoutes(router.Group(""))
	return router
}

func postWebhook(router *gin.Engine, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/storage", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestStorageWebhookForwardsObjectName(t *testing.T) {
	ocr := &stubOCRService{}
	router := newWebhookRouter(ocr)

	w := postWebhook(router, `{"name": "bills/3f1e9c1a-0000-0000-0000-000000000001/3f1e9c1a-0000-0000-0000-000000000002.jpg"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, ocr.objects, 1)
}

func TestStorageWebhookAcknowledgesMalformedObjectName(t *testing.T) {
	// The service dead-letters malformed names internally and returns nil,
	// so the webhook must answer 200 and never bounce the event.
	ocr := &stubOCRService{}
	router := newWebhookRouter(ocr)

	w := postWebhook(router, `{"name": "random/file.jpg"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"random/file.jpg"}, ocr.objects)
}

func TestStorageWebhookAcknowledgesUnparsablePayload(t *testing.T) {
	ocr := &stubOCRService{}
	router := newWebhookRouter(ocr)

	w := postWebhook(router, `{not json`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, ocr.objects)
}

func TestStorageWebhookSurfacesInfrastructureErrors(t *testing.T) {
	ocr := &stubOCRService{err: assert.AnError}
	router := newWebhookRouter(ocr)

	w := postWebhook(router, `{"name": "bills/x/y.jpg"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
