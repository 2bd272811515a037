package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edu-dashboard-api/internal/middleware"
	"github.com/noah-isme/edu-dashboard-api/internal/models"
	"github.com/noah-isme/edu-dashboard-api/internal/service"
	appErrors "github.com/noah-isme/edu-dashboard-api/pkg/errors"
)

type fakePermissionSrv struct {
	pageAllowed   bool
	actionAllowed bool
	actions       map[string]bool
	err           error
	lastRole      string
	lastPage      string
	lastAction    string
	bulkReq       service.BulkPermissionRequest
	bulkErr       error
}

func (f *fakePermissionSrv) CanAccessPage(ctx context.Context, role, pageName string) (bool, error) {
	f.lastRole, f.lastPage = role, pageName
	return f.pageAllowed, f.err
}

func (f *fakePermissionSrv) CanPerformAction(ctx context.Context, role, pageName, action string) (bool, error) {
	f.lastRole, f.lastPage, f.lastAction = role, pageName, action
	return f.actionAllowed, f.err
}

func (f *fakePermissionSrv) ActionsForPage(ctx context.Context, role, pageName string) (map[string]bool, error) {
	f.lastRole, f.lastPage = role, pageName
	return f.actions, f.err
}

func (f *fakePermissionSrv) AvailableActions() []string {
	return models.AvailableActions
}

func (f *fakePermissionSrv) BulkUpdate(ctx context.Context, req service.BulkPermissionRequest, actor *models.JWTClaims) error {
	f.bulkReq = req
	return f.bulkErr
}

type envelope struct {
	Data  map[string]interface{} `json:"data"`
	Error map[string]interface{} `json:"error"`
}

func permissionTestContext(t *testing.T, method, target string, body string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
		c.Request = httptest.NewRequest(method, target, reader)
		c.Request.Header.Set("Content-Type", "application/json")
	} else {
		c.Request = httptest.NewRequest(method, target, nil)
	}
	return c, rec
}

func TestCheckPageRequiresClaims(t *testing.T) {
	handler := NewPermissionHandler(&fakePermissionSrv{})
	c, rec := permissionTestContext(t, http.MethodGet, "/permissions/pages/grades", "")
	c.Params = gin.Params{{Key: "page", Value: "grades"}}

	handler.CheckPage(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCheckPageUsesCallerRole(t *testing.T) {
	srv := &fakePermissionSrv{pageAllowed: true}
	handler := NewPermissionHandler(srv)
	c, rec := permissionTestContext(t, http.MethodGet, "/permissions/pages/grades", "")
	c.Params = gin.Params{{Key: "page", Value: "grades"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "u1", Role: models.RoleTeacher})

	handler.CheckPage(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.RoleTeacher, srv.lastRole)
	assert.Equal(t, "grades", srv.lastPage)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, true, env.Data["allowed"])
}

func TestCheckActionResolverError(t *testing.T) {
	srv := &fakePermissionSrv{err: appErrors.ErrInternal}
	handler := NewPermissionHandler(srv)
	c, rec := permissionTestContext(t, http.MethodGet, "/permissions/pages/grades/actions/view", "")
	c.Params = gin.Params{{Key: "page", Value: "grades"}, {Key: "action", Value: "view"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "u1", Role: models.RoleTeacher})

	handler.CheckAction(c)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestBulkUpdateRejectsMalformedBody(t *testing.T) {
	handler := NewPermissionHandler(&fakePermissionSrv{})
	c, rec := permissionTestContext(t, http.MethodPut, "/permissions/bulk", "{not json")
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin})

	handler.BulkUpdate(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBulkUpdatePassesPayloadThrough(t *testing.T) {
	srv := &fakePermissionSrv{}
	handler := NewPermissionHandler(srv)
	body := `{"role":"teacher","entries":[{"page_id":1,"is_allowed":true,"actions":{"view":true}}]}`
	c, rec := permissionTestContext(t, http.MethodPut, "/permissions/bulk", body)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin})

	handler.BulkUpdate(c)
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "teacher", srv.bulkReq.Role)
	require.Len(t, srv.bulkReq.Entries, 1)
	assert.Equal(t, int64(1), srv.bulkReq.Entries[0].PageID)
	assert.Equal(t, map[string]bool{"view": true}, srv.bulkReq.Entries[0].Actions)
}
