package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhvu/portfolio-hub/adapters/persistence"
	authUC "github.com/minhvu/portfolio-hub/internal/application/usecase/auth"
	documentUC "github.com/minhvu/portfolio-hub/internal/application/usecase/document"
	"github.com/minhvu/portfolio-hub/internal/domain/portfolio"
	"github.com/minhvu/portfolio-hub/internal/render"
	"github.com/minhvu/portfolio-hub/pkg/auth"
	"github.com/minhvu/portfolio-hub/pkg/logger"
)

const adminPassword = "correct-horse"

func newTestRouter(t *testing.T) (*gin.Engine, *documentUC.Manager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	durable := persistence.NewMemoryLocalStore()
	ephemeral := persistence.NewMemoryLocalStore()
	remote := persistence.NewUnavailableDocumentStore()
	log := logger.NewNop()

	manager := documentUC.NewManager(durable, remote, nil, nil, "test-host", log)
	_, err := manager.Load(context.Background())
	require.NoError(t, err)

	hash, err := auth.HashPassword(adminPassword)
	require.NoError(t, err)
	sessions := authUC.NewSessionUseCase(durable, ephemeral, authUC.Credentials{
		Username:     "admin",
		PasswordHash: hash,
	}, auth.NewJWTService("test-secret"), log)

	authHandler := NewAuthHandler(sessions)
	profileHandler := NewProfileHandler(manager)
	entriesHandler := NewEntriesHandler(manager)
	dataHandler := NewDataHandler(manager)
	portfolioHandler := NewPortfolioHandler(manager, render.NewCache(durable), log)

	router := gin.New()
	router.Use(CorrelationMiddleware())

	api := router.Group("/api")
	api.GET("/portfolio", portfolioHandler.GetDocument)
	api.GET("/portfolio/sections/:section", portfolioHandler.GetSection)

	admin := api.Group("/admin")
	admin.POST("/auth/login", authHandler.Login)

	private := admin.Group("/")
	private.Use(AuthMiddleware(sessions))
	private.POST("/auth/logout", authHandler.Logout)
	private.GET("/auth/session", authHandler.Session)
	private.GET("/profile", profileHandler.Get)
	private.PUT("/profile", profileHandler.Update)
	private.POST("/collections/:collection", entriesHandler.Create)
	private.PUT("/collections/:collection/:id", entriesHandler.Update)
	private.DELETE("/collections/:collection/:id", entriesHandler.Delete)
	private.GET("/data/export", dataHandler.Export)
	private.POST("/data/import", dataHandler.Import)
	private.POST("/data/clear", dataHandler.Clear)
	private.GET("/data/backups", dataHandler.ListBackups)
	private.POST("/data/backups/restore", dataHandler.RestoreBackup)
	private.GET("/data/status", dataHandler.Status)

	return router, manager
}

func doJSON(router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func login(t *testing.T, router *gin.Engine) string {
	t.Helper()
	w := doJSON(router, http.MethodPost, "/api/admin/auth/login", "", LoginRequest{
		Username: "admin",
		Password: adminPassword,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)
	return resp.AccessToken
}

func TestLoginEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(router, http.MethodPost, "/api/admin/auth/login", "", LoginRequest{
		Username: "admin",
		Password: "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token := login(t, router)

	w = doJSON(router, http.MethodGet, "/api/admin/auth/session", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"active":true`)
}

func TestAdminSurfaceRequiresAuth(t *testing.T) {
	router, _ := newTestRouter(t)

	for _, path := range []string{
		"/api/admin/profile",
		"/api/admin/data/export",
		"/api/admin/data/status",
	} {
		w := doJSON(router, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}

	w := doJSON(router, http.MethodGet, "/api/admin/profile", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogoutInvalidatesToken(t *testing.T) {
	router, _ := newTestRouter(t)
	token := login(t, router)

	w := doJSON(router, http.MethodPost, "/api/admin/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodGet, "/api/admin/profile", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestEntryCRUDOverHTTP(t *testing.T) {
	router, _ := newTestRouter(t)
	token := login(t, router)

	w := doJSON(router, http.MethodPost, "/api/admin/collections/projects", token, EntryRequest{
		Fields: map[string]any{"title": "Finance", "category": "web development"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		Entry map[string]any `json:"entry"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	id := int64(created.Entry["id"].(float64))

	w = doJSON(router, http.MethodPut, fmt.Sprintf("/api/admin/collections/projects/%d", id), token, EntryRequest{
		Fields: map[string]any{"description": "budgeting app"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"updated":true`)
	assert.Contains(t, w.Body.String(), "budgeting app")

	// Unknown collection is a client error.
	w = doJSON(router, http.MethodPost, "/api/admin/collections/bogus", token, EntryRequest{
		Fields: map[string]any{"title": "x"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Delete needs the confirm flag.
	w = doJSON(router, http.MethodDelete, fmt.Sprintf("/api/admin/collections/projects/%d", id), token, nil)
	assert.Equal(t, http.StatusPreconditionFailed, w.Code)

	w = doJSON(router, http.MethodDelete, fmt.Sprintf("/api/admin/collections/projects/%d?confirm=true", id), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"deleted":true`)
}

func TestExportAndClearOverHTTP(t *testing.T) {
	router, _ := newTestRouter(t)
	token := login(t, router)

	// Nothing to export yet.
	w := doJSON(router, http.MethodGet, "/api/admin/data/export", token, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(router, http.MethodPost, "/api/admin/collections/skills", token, EntryRequest{
		Fields: map[string]any{"title": "Go"},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(router, http.MethodGet, "/api/admin/data/export", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "portfolio-data-")
	assert.Contains(t, w.Body.String(), `"version": "1.0"`)

	// Clear without the typed literal is refused.
	w = doJSON(router, http.MethodPost, "/api/admin/data/clear", token, ClearRequest{Confirm: true, Confirmation: "delete"})
	assert.Equal(t, http.StatusPreconditionFailed, w.Code)

	w = doJSON(router, http.MethodPost, "/api/admin/data/clear", token, ClearRequest{Confirm: true, Confirmation: "DELETE"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodGet, "/api/admin/data/backups", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "portfolioBackup_")
}

func doImport(router *gin.Engine, token string, filename string, payload []byte, confirm bool) *httptest.ResponseRecorder {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, _ := form.CreateFormFile("file", filename)
	part.Write(payload)
	if confirm {
		form.WriteField("confirm", "true")
	}
	form.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/admin/data/import", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestImportOverHTTP(t *testing.T) {
	router, _ := newTestRouter(t)
	token := login(t, router)

	w := doJSON(router, http.MethodPost, "/api/admin/collections/projects", token, EntryRequest{
		Fields: map[string]any{"title": "Finance", "category": "web development"},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(router, http.MethodGet, "/api/admin/data/export", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	exported := w.Body.Bytes()

	w = doJSON(router, http.MethodPost, "/api/admin/data/clear", token, ClearRequest{Confirm: true, Confirmation: "DELETE"})
	require.Equal(t, http.StatusOK, w.Code)

	// Content sniffing rejects non-JSON uploads regardless of filename.
	w = doImport(router, token, "sneaky.json", []byte("this is not json at all"), true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "expected a JSON file")

	// An unconfirmed import changes nothing.
	w = doImport(router, token, "portfolio-data.json", exported, false)
	assert.Equal(t, http.StatusPreconditionFailed, w.Code)
	w = doJSON(router, http.MethodGet, "/api/portfolio", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "Finance")

	// The confirmed import brings the exported data back.
	w = doImport(router, token, "portfolio-data.json", exported, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(router, http.MethodGet, "/api/portfolio", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Finance")
}

func TestRestoreBackupOverHTTP(t *testing.T) {
	router, _ := newTestRouter(t)
	token := login(t, router)

	w := doJSON(router, http.MethodPut, "/api/admin/profile", token, UpdateProfileRequest{
		Profile: portfolio.Profile{FullName: "Before Clear"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodPost, "/api/admin/data/clear", token, ClearRequest{Confirm: true, Confirmation: "DELETE"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodGet, "/api/admin/data/backups", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Backups []BackupInfoDTO `json:"backups"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.NotEmpty(t, list.Backups)

	w = doJSON(router, http.MethodPost, "/api/admin/data/backups/restore", token, RestoreBackupRequest{
		Key: list.Backups[0].Key,
	})
	assert.Equal(t, http.StatusPreconditionFailed, w.Code, "restore needs the confirm flag")

	w = doJSON(router, http.MethodPost, "/api/admin/data/backups/restore", token, RestoreBackupRequest{
		Key:     list.Backups[0].Key,
		Confirm: true,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(router, http.MethodGet, "/api/admin/profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Before Clear")
}

func TestStatusEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)
	token := login(t, router)

	w := doJSON(router, http.MethodGet, "/api/admin/data/status", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var status StatusDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, "ready", status.State)
	assert.False(t, status.RemoteAvailable)
	assert.Equal(t, "local-only", status.Mode)
}

func TestPublicSectionFallsBackToLiveRender(t *testing.T) {
	router, manager := newTestRouter(t)

	_, err := manager.UpdateProfile(context.Background(), documentUC.UpdateProfileInput{
		Profile: samplePublicProfile(),
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/portfolio/sections/profile", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/html"))
	assert.Contains(t, w.Body.String(), "Minh Vu")

	req = httptest.NewRequest(http.MethodGet, "/api/portfolio/sections/bogus", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func samplePublicProfile() portfolio.Profile {
	return portfolio.Profile{FullName: "Minh Vu", Title: "Web Developer"}
}

func TestCorrelationHeaderEchoed(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/portfolio", nil)
	req.Header.Set(HeaderCorrelationID, "abc-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get(HeaderCorrelationID))
}
