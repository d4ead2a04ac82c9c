package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	apiError "github.com/echoflow-solutions/carescribe-api/errors"
	"github.com/echoflow-solutions/carescribe-api/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDraftService struct {
	resp    *models.SaveDraftResponse
	err     error
	deleted bool
}

func (s *stubDraftService) SaveDraft(req *models.SaveDraftRequest) (*models.SaveDraftResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.resp, nil
}

func (s *stubDraftService) GetDraft(uint, string) (*models.DraftReport, bool, error) {
	return nil, false, nil
}

func (s *stubDraftService) DeleteDraft(uuid.UUID, uint, string) error {
	s.deleted = true
	return nil
}

func (s *stubDraftService) MarkComplete(uint, string) error { return nil }

// draftTestServer mounts the draft routes behind a middleware that injects
// the authenticated user, standing in for Authorize.
func draftTestServer(drafts *stubDraftService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	s := &Server{DraftService: drafts}
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", uint(42))
		c.Next()
	})
	r.POST("/drafts", s.handleSaveDraft())
	r.GET("/drafts/active", s.handleGetActiveDraft())
	return r
}

func postDraft(t *testing.T, r *gin.Engine, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/drafts", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandleSaveDraftSuccess(t *testing.T) {
	drafts := &stubDraftService{resp: &models.SaveDraftResponse{
		Success: true,
		Message: "draft saved",
	}}
	r := draftTestServer(drafts)

	w := postDraft(t, r, models.SaveDraftRequest{
		SessionID:    "s1",
		Conversation: []models.ConversationTurn{{Answer: "yes"}},
	})

	require.Equal(t, http.StatusOK, w.Code)
	var resp models.SaveDraftResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.False(t, resp.UseLocalStorage)
}

func TestHandleSaveDraftValidationErrorTellsClientToKeepLocalCopy(t *testing.T) {
	drafts := &stubDraftService{err: apiError.New("conversation must be an array", http.StatusBadRequest)}
	r := draftTestServer(drafts)

	w := postDraft(t, r, map[string]interface{}{"session_id": "s1"})

	require.Equal(t, http.StatusBadRequest, w.Code)
	var resp models.SaveDraftResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.True(t, resp.UseLocalStorage, "the client copy stays authoritative on rejection")
	assert.NotEmpty(t, resp.Error)
}

func TestHandleSaveDraftUnexpectedErrorStillFlagsLocalStorage(t *testing.T) {
	drafts := &stubDraftService{err: errors.New("disk full")}
	r := draftTestServer(drafts)

	w := postDraft(t, r, models.SaveDraftRequest{
		SessionID:    "s1",
		Conversation: []models.ConversationTurn{{Answer: "yes"}},
	})

	require.Equal(t, http.StatusInternalServerError, w.Code)
	var resp models.SaveDraftResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.UseLocalStorage)
}

func TestHandleGetActiveDraftRequiresSessionID(t *testing.T) {
	r := draftTestServer(&stubDraftService{})

	req := httptest.NewRequest(http.MethodGet, "/drafts/active", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleGetActiveDraftReturnsNullWhenNoneExists(t *testing.T) {
	r := draftTestServer(&stubDraftService{})

	req := httptest.NewRequest(http.MethodGet, "/drafts/active?session_id=s1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var envelope struct {
		Data struct {
			Draft *models.DraftReport `json:"draft"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Nil(t, envelope.Data.Draft)
}
