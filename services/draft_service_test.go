package services_test

import (
	"testing"

	"github.com/echoflow-solutions/carescribe-api/config"
	"github.com/echoflow-solutions/carescribe-api/db"
	"github.com/echoflow-solutions/carescribe-api/models"
	"github.com/echoflow-solutions/carescribe-api/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeDraftRepo struct {
	drafts  map[string]*models.DraftReport
	upserts int
	fail    bool
}

func newFakeDraftRepo() *fakeDraftRepo {
	return &fakeDraftRepo{drafts: make(map[string]*models.DraftReport)}
}

func (f *fakeDraftRepo) key(userID uint, sessionID string) string {
	return string(rune(userID)) + sessionID
}

func (f *fakeDraftRepo) UpsertDraft(draft *models.DraftReport) (*models.DraftReport, error) {
	f.upserts++
	if f.fail {
		return nil, gorm.ErrInvalidDB
	}
	if draft.ID == uuid.Nil {
		draft.ID = uuid.New()
	}
	f.drafts[f.key(draft.UserID, draft.SessionID)] = draft
	return draft, nil
}

func (f *fakeDraftRepo) FindActiveDraft(userID uint, sessionID string) (*models.DraftReport, error) {
	draft, ok := f.drafts[f.key(userID, sessionID)]
	if !ok || draft.IsComplete {
		return nil, gorm.ErrRecordNotFound
	}
	return draft, nil
}

func (f *fakeDraftRepo) MarkComplete(id uuid.UUID) error {
	for _, draft := range f.drafts {
		if draft.ID == id {
			draft.IsComplete = true
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeDraftRepo) DeleteByID(id uuid.UUID) error {
	for key, draft := range f.drafts {
		if draft.ID == id {
			delete(f.drafts, key)
		}
	}
	return nil
}

type fakeBackend struct{ online bool }

func (f *fakeBackend) Available() bool { return f.online }

func newDraftService(t *testing.T, repo *fakeDraftRepo, backend *fakeBackend) services.DraftService {
	t.Helper()
	snapshots, err := db.NewSnapshotStore(t.TempDir())
	require.NoError(t, err)
	return services.NewDraftService(repo, snapshots, backend, &config.Config{})
}

func saveRequest() *models.SaveDraftRequest {
	return &models.SaveDraftRequest{
		UserID:    42,
		SessionID: "session-42",
		Conversation: []models.ConversationTurn{
			{Question: "Is everyone safe?", Answer: "Yes."},
		},
		CurrentQuestion: "Where did it happen?",
		CurrentSubtext:  "Room, area or address.",
		Progress:        1,
	}
}

func TestSaveDraftValidation(t *testing.T) {
	t.Parallel()

	repo := newFakeDraftRepo()
	svc := newDraftService(t, repo, &fakeBackend{online: true})

	tests := []struct {
		name   string
		mutate func(*models.SaveDraftRequest)
	}{
		{"missing user id", func(r *models.SaveDraftRequest) { r.UserID = 0 }},
		{"missing session id", func(r *models.SaveDraftRequest) { r.SessionID = "" }},
		{"nil conversation", func(r *models.SaveDraftRequest) { r.Conversation = nil }},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			req := saveRequest()
			tc.mutate(req)
			_, err := svc.SaveDraft(req)
			require.Error(t, err)
		})
	}
	assert.Zero(t, repo.upserts, "invalid payloads never reach the database")
}

func TestSaveDraftWritesBothStoresAndSkipsIdenticalPayloads(t *testing.T) {
	t.Parallel()

	repo := newFakeDraftRepo()
	svc := newDraftService(t, repo, &fakeBackend{online: true})

	resp, err := svc.SaveDraft(saveRequest())
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.False(t, resp.UseLocalStorage)
	require.NotNil(t, resp.Draft)
	assert.Equal(t, 1, repo.upserts)

	// Identical payload: both stores current, nothing is written.
	resp, err = svc.SaveDraft(saveRequest())
	require.NoError(t, err)
	assert.True(t, resp.Skipped)
	assert.Equal(t, 1, repo.upserts)

	// Changed payload is written again.
	req := saveRequest()
	req.Progress = 2
	resp, err = svc.SaveDraft(req)
	require.NoError(t, err)
	assert.False(t, resp.Skipped)
	assert.Equal(t, 2, repo.upserts)
}

func TestSaveDraftDegradesToSnapshotWhenBackendDown(t *testing.T) {
	t.Parallel()

	repo := newFakeDraftRepo()
	backend := &fakeBackend{online: false}
	svc := newDraftService(t, repo, backend)

	resp, err := svc.SaveDraft(saveRequest())
	require.NoError(t, err, "a dead database is not an error to the caller")
	assert.True(t, resp.Success)
	assert.True(t, resp.UseLocalStorage)
	assert.Zero(t, repo.upserts)

	// The snapshot copy is immediately recoverable.
	draft, fromSnapshot, err := svc.GetDraft(42, "session-42")
	require.NoError(t, err)
	require.NotNil(t, draft)
	assert.True(t, fromSnapshot)
	turns, err := draft.Turns()
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, "Yes.", turns[0].Answer)
	assert.Equal(t, "Where did it happen?", draft.CurrentQuestion)
	assert.Equal(t, "Room, area or address.", draft.CurrentSubtext, "the pending question's helper text survives recovery")

	// Connectivity returns: the same payload still goes to the database
	// because only the snapshot copy was current.
	backend.online = true
	resp, err = svc.SaveDraft(saveRequest())
	require.NoError(t, err)
	assert.False(t, resp.Skipped)
	assert.False(t, resp.UseLocalStorage)
	assert.Equal(t, 1, repo.upserts)
}

func TestSaveDraftReportsDatabaseFailureAsDegradedSuccess(t *testing.T) {
	t.Parallel()

	repo := newFakeDraftRepo()
	repo.fail = true
	svc := newDraftService(t, repo, &fakeBackend{online: true})

	resp, err := svc.SaveDraft(saveRequest())
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.True(t, resp.UseLocalStorage)
	assert.NotEmpty(t, resp.Error)
}

func TestDeleteDraftClearsBothStores(t *testing.T) {
	t.Parallel()

	repo := newFakeDraftRepo()
	svc := newDraftService(t, repo, &fakeBackend{online: true})

	resp, err := svc.SaveDraft(saveRequest())
	require.NoError(t, err)

	require.NoError(t, svc.DeleteDraft(resp.Draft.ID, 42, "session-42"))

	draft, _, err := svc.GetDraft(42, "session-42")
	require.NoError(t, err)
	assert.Nil(t, draft)

	// Deleting again is idempotent.
	require.NoError(t, svc.DeleteDraft(resp.Draft.ID, 42, "session-42"))
}

func TestMarkCompleteRetiresDraft(t *testing.T) {
	t.Parallel()

	repo := newFakeDraftRepo()
	svc := newDraftService(t, repo, &fakeBackend{online: true})

	_, err := svc.SaveDraft(saveRequest())
	require.NoError(t, err)

	require.NoError(t, svc.MarkComplete(42, "session-42"))

	draft, _, err := svc.GetDraft(42, "session-42")
	require.NoError(t, err)
	assert.Nil(t, draft, "a completed draft is no longer active")

	// Completing a session with no draft is not an error.
	require.NoError(t, svc.MarkComplete(42, "never-existed"))
}
