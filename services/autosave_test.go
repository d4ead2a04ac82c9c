package services_test

import (
	"sync"
	"testing"
	"time"

	"github.com/echoflow-solutions/carescribe-api/models"
	"github.com/echoflow-solutions/carescribe-api/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingDraftService struct {
	mu    sync.Mutex
	saves []*models.SaveDraftRequest
	resp  *models.SaveDraftResponse
}

func (r *recordingDraftService) SaveDraft(req *models.SaveDraftRequest) (*models.SaveDraftResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves = append(r.saves, req)
	if r.resp != nil {
		return r.resp, nil
	}
	return &models.SaveDraftResponse{Success: true, Message: "draft saved"}, nil
}

func (r *recordingDraftService) GetDraft(uint, string) (*models.DraftReport, bool, error) {
	return nil, false, nil
}
func (r *recordingDraftService) DeleteDraft(uuid.UUID, uint, string) error { return nil }
func (r *recordingDraftService) MarkComplete(uint, string) error           { return nil }

func (r *recordingDraftService) saveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.saves)
}

// toggleBackend is safe to flip while the manager's poll goroutine reads it.
type toggleBackend struct {
	mu     sync.Mutex
	online bool
}

func (b *toggleBackend) Available() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.online
}

func (b *toggleBackend) setOnline(online bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.online = online
}

func autosaveChange(progress int) *models.SaveDraftRequest {
	return &models.SaveDraftRequest{
		UserID:       9,
		SessionID:    "auto-session",
		Conversation: []models.ConversationTurn{{Answer: "something"}},
		Progress:     progress,
	}
}

func TestAutosaveDebouncesRapidChanges(t *testing.T) {
	t.Parallel()

	drafts := &recordingDraftService{}
	manager := services.NewAutosaveManager(drafts, &fakeBackend{online: true})
	manager.SetTimings(30*time.Millisecond, time.Hour, time.Hour, 2*time.Hour)

	events := manager.Subscribe(9, "auto-session")
	defer manager.Unsubscribe(9, "auto-session", events)

	// Three changes inside the debounce window coalesce into one save of the
	// latest payload.
	for i := 1; i <= 3; i++ {
		manager.NotifyChange(autosaveChange(i))
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case event := <-events:
		assert.Equal(t, services.StatusSaved, event.Status)
	case <-time.After(time.Second):
		t.Fatal("expected a save event")
	}

	require.Equal(t, 1, drafts.saveCount())
	assert.Equal(t, 3, drafts.saves[0].Progress, "the latest payload wins")
}

func TestAutosaveReportsLocalOnlySaves(t *testing.T) {
	t.Parallel()

	drafts := &recordingDraftService{
		resp: &models.SaveDraftResponse{
			Success:         true,
			UseLocalStorage: true,
			Message:         "backend unavailable, draft kept in local storage",
		},
	}
	manager := services.NewAutosaveManager(drafts, &fakeBackend{online: false})
	manager.SetTimings(10*time.Millisecond, time.Hour, time.Hour, 2*time.Hour)

	events := manager.Subscribe(9, "auto-session")
	defer manager.Unsubscribe(9, "auto-session", events)

	manager.NotifyChange(autosaveChange(1))

	select {
	case event := <-events:
		assert.Equal(t, services.StatusLocalOnly, event.Status)
		assert.NotEmpty(t, event.Message)
	case <-time.After(time.Second):
		t.Fatal("expected a local-only event")
	}
}

func TestAutosaveForgetCancelsPendingSave(t *testing.T) {
	t.Parallel()

	drafts := &recordingDraftService{}
	manager := services.NewAutosaveManager(drafts, &fakeBackend{online: true})
	manager.SetTimings(50*time.Millisecond, time.Hour, time.Hour, 2*time.Hour)

	manager.NotifyChange(autosaveChange(1))
	manager.Forget(9, "auto-session")

	time.Sleep(150 * time.Millisecond)
	assert.Zero(t, drafts.saveCount(), "a forgotten session must not save")
}

func TestAutosaveWarnsOncePerIdleStretch(t *testing.T) {
	t.Parallel()

	drafts := &recordingDraftService{}
	manager := services.NewAutosaveManager(drafts, &fakeBackend{online: true})
	// Debounce is far out so the pending payload sits until the idle
	// thresholds take over.
	manager.SetTimings(time.Hour, 10*time.Millisecond, 30*time.Millisecond, time.Hour)

	events := manager.Subscribe(9, "auto-session")
	defer manager.Unsubscribe(9, "auto-session", events)

	manager.NotifyChange(autosaveChange(1))
	manager.Start()
	defer manager.Stop()

	select {
	case event := <-events:
		assert.Equal(t, services.StatusIdleWarning, event.Status)
		assert.NotEmpty(t, event.Message)
	case <-time.After(time.Second):
		t.Fatal("expected an idle warning")
	}

	// Further polls inside the same idle stretch stay quiet.
	time.Sleep(100 * time.Millisecond)
	select {
	case event := <-events:
		t.Fatalf("unexpected second event %q during the same idle stretch", event.Status)
	default:
	}

	// Activity resets the stretch and re-arms the warning.
	manager.Touch(9, "auto-session")
	select {
	case event := <-events:
		assert.Equal(t, services.StatusIdleWarning, event.Status)
	case <-time.After(time.Second):
		t.Fatal("expected a fresh warning after the idle clock reset")
	}
}

func TestAutosaveForcesSaveAfterProlongedIdle(t *testing.T) {
	t.Parallel()

	drafts := &recordingDraftService{}
	manager := services.NewAutosaveManager(drafts, &fakeBackend{online: true})
	manager.SetTimings(time.Hour, 10*time.Millisecond, 20*time.Millisecond, 40*time.Millisecond)

	events := manager.Subscribe(9, "auto-session")
	defer manager.Unsubscribe(9, "auto-session", events)

	manager.NotifyChange(autosaveChange(5))
	manager.Start()
	defer manager.Stop()

	deadline := time.After(time.Second)
	for {
		var event services.StatusEvent
		select {
		case event = <-events:
		case <-deadline:
			t.Fatal("expected a forced save")
		}
		if event.Status == services.StatusIdleWarning {
			continue
		}
		assert.Equal(t, services.StatusSaved, event.Status)
		break
	}

	require.Equal(t, 1, drafts.saveCount())
	assert.Equal(t, 5, drafts.saves[0].Progress)

	// The forced save retires the payload; later polls have nothing to flush.
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, 1, drafts.saveCount(), "an already-saved idle session must not re-save")
}

func TestAutosaveFlushesPendingWhenBackendReturns(t *testing.T) {
	t.Parallel()

	drafts := &recordingDraftService{}
	backend := &toggleBackend{online: false}
	manager := services.NewAutosaveManager(drafts, backend)
	manager.SetTimings(time.Hour, 10*time.Millisecond, time.Hour, 2*time.Hour)

	events := manager.Subscribe(9, "auto-session")
	defer manager.Unsubscribe(9, "auto-session", events)

	manager.NotifyChange(autosaveChange(2))
	manager.Start()
	defer manager.Stop()

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, drafts.saveCount(), "nothing saves while the backend is down")

	backend.setOnline(true)

	select {
	case event := <-events:
		assert.Equal(t, services.StatusSaved, event.Status)
	case <-time.After(time.Second):
		t.Fatal("expected an immediate save on reconnect")
	}
	require.Equal(t, 1, drafts.saveCount())
	assert.Equal(t, 2, drafts.saves[0].Progress)
}
