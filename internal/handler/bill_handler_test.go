package handler

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"buildflow/internal/apperr"
	"buildflow/internal/model"
	"buildflow/internal/service"
	"buildflow/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubAccessGuard struct {
	authCtx *service.AuthContext
	err     error
	roles   []string
}

func (g *stubAccessGuard) CheckScope(_ context.Context, projectID uuid.UUID, callerID string, allowedRoles ...string) (*service.AuthContext, error) {
	g.roles = allowedRoles
	if g.err != nil {
		return nil, g.err
	}
	return g.authCtx, nil
}

func newScanRouter(t *testing.T, guard service.AccessGuard, ocr service.OCRService) (*gin.Engine, *storage.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := storage.NewStore(t.TempDir(), "http://localhost:8080", []byte("test_secret"))
	require.NoError(t, err)

	router := gin.New()
	NewBillHandler(nil, nil, ocr, guard, store, zap.NewNop()).RegisterRoutes(router.Group(""))
	return router, store
}

func bearerToken(t *testing.T, userID uuid.UUID, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  userID.String(),
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("handler_test_secret"))
	require.NoError(t, err)
	return signed
}

func postScan(t *testing.T, router *gin.Engine, projectID, billID uuid.UUID, token string) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "scan.jpg")
	require.NoError(t, err)
	_, err = fw.Write([]byte("jpeg bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost,
		"/api/projects/"+projectID.String()+"/bills/"+billID.String()+"/scan", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)
	return w
}

func TestUploadScanRejectsCallerOutsideManagerRoles(t *testing.T) {
	t.Setenv("JWT_SECRET", "handler_test_secret")

	guard := &stubAccessGuard{err: apperr.Preconditionf("role %s is not permitted to perform this action", model.RoleEngineer)}
	ocr := &stubOCRService{}
	router, store := newScanRouter(t, guard, ocr)

	projectID, billID := uuid.New(), uuid.New()
	w := postScan(t, router, projectID, billID, bearerToken(t, uuid.New(), model.RoleEngineer))

	assert.Equal(t, http.StatusPreconditionFailed, w.Code)
	assert.Empty(t, ocr.ingested(), "scan must not be ingested for a rejected caller")
	assert.Equal(t, []string{model.RoleManager, model.RoleFieldManager}, guard.roles)

	_, err := store.Read("bills/" + projectID.String() + "/" + billID.String() + ".jpg")
	assert.Error(t, err, "scan must not be stored for a rejected caller")
}

func TestUploadScanAcceptsProjectManager(t *testing.T) {
	t.Setenv("JWT_SECRET", "handler_test_secret")

	managerID := uuid.New()
	projectID, billID := uuid.New(), uuid.New()
	guard := &stubAccessGuard{authCtx: &service.AuthContext{
		Project:  &model.Project{ID: projectID, Status: model.ProjectStatusActive, ManagerID: &managerID},
		CallerID: managerID,
		Role:     model.RoleManager,
	}}
	ocr := &stubOCRService{}
	router, store := newScanRouter(t, guard, ocr)

	w := postScan(t, router, projectID, billID, bearerToken(t, managerID, model.RoleManager))

	assert.Equal(t, http.StatusAccepted, w.Code)

	objectName := "bills/" + projectID.String() + "/" + billID.String() + ".jpg"
	data, err := store.Read(objectName)
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg bytes"), data)

	// Ingestion runs in a goroutine off the request path.
	assert.Eventually(t, func() bool {
		got := ocr.ingested()
		return len(got) == 1 && got[0] == objectName
	}, time.Second, 10*time.Millisecond)
}
