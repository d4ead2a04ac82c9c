package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/echoflow-solutions/carescribe-api/config"
	"github.com/echoflow-solutions/carescribe-api/db"
	apiError "github.com/echoflow-solutions/carescribe-api/errors"
	"github.com/echoflow-solutions/carescribe-api/models"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Availability reports whether the backing database is reachable. The draft
// flow degrades to snapshot-only writes while it is not.
type Availability interface {
	Available() bool
}

type DraftService interface {
	SaveDraft(req *models.SaveDraftRequest) (*models.SaveDraftResponse, error)
	GetDraft(userID uint, sessionID string) (*models.DraftReport, bool, error)
	DeleteDraft(id uuid.UUID, userID uint, sessionID string) error
	MarkComplete(userID uint, sessionID string) error
}

// savedState remembers the last serialization that reached each store, per
// (user, session). Identical payloads are skipped rather than re-written.
type savedState struct {
	local  []byte
	remote []byte
}

type draftService struct {
	Config    *config.Config
	draftRepo db.DraftReportRepository
	snapshots *db.SnapshotStore
	backend   Availability

	mu        sync.Mutex
	lastSaved map[string]*savedState
}

// NewDraftService instantiates a DraftService.
func NewDraftService(draftRepo db.DraftReportRepository, snapshots *db.SnapshotStore, backend Availability, conf *config.Config) DraftService {
	return &draftService{
		Config:    conf,
		draftRepo: draftRepo,
		snapshots: snapshots,
		backend:   backend,
		lastSaved: make(map[string]*savedState),
	}
}

func draftKey(userID uint, sessionID string) string {
	return fmt.Sprintf("%d:%s", userID, sessionID)
}

// SaveDraft performs the dual write: snapshot store first, synchronously,
// then the database when reachable. A database failure is reported as a
// degraded success since the snapshot already holds the data.
func (s *draftService) SaveDraft(req *models.SaveDraftRequest) (*models.SaveDraftResponse, error) {
	if req.UserID == 0 {
		return nil, apiError.New("user_id is required", http.StatusBadRequest)
	}
	if req.Conversation == nil {
		return nil, apiError.New("conversation must be an array", http.StatusBadRequest)
	}
	if req.SessionID == "" {
		return nil, apiError.New("session_id is required", http.StatusBadRequest)
	}

	draft, err := draftFromRequest(req)
	if err != nil {
		return nil, apiError.New("unable to encode draft", http.StatusBadRequest)
	}
	payload, err := json.Marshal(draft)
	if err != nil {
		return nil, errors.Wrap(err, "serialize draft")
	}

	key := draftKey(req.UserID, req.SessionID)

	s.mu.Lock()
	state, ok := s.lastSaved[key]
	if !ok {
		state = &savedState{}
		s.lastSaved[key] = state
	}
	localCurrent := bytes.Equal(state.local, payload)
	remoteCurrent := bytes.Equal(state.remote, payload)
	s.mu.Unlock()

	if localCurrent && remoteCurrent {
		return &models.SaveDraftResponse{
			Success: true,
			Skipped: true,
			Message: "draft unchanged, save skipped",
		}, nil
	}

	if !localCurrent {
		if err := s.snapshots.Write(req.UserID, req.SessionID, payload); err != nil {
			// The snapshot is the durability baseline; this must not fail
			// silently.
			return nil, errors.Wrap(err, "write draft snapshot")
		}
		s.mu.Lock()
		state.local = payload
		s.mu.Unlock()
	}

	if !s.backend.Available() {
		return &models.SaveDraftResponse{
			Success:         true,
			UseLocalStorage: true,
			Message:         "backend unavailable, draft kept in local storage",
		}, nil
	}

	saved, err := s.draftRepo.UpsertDraft(draft)
	if err != nil {
		log.Printf("draft save to database failed, snapshot retained: %v", err)
		return &models.SaveDraftResponse{
			Success:         true,
			UseLocalStorage: true,
			Message:         "database write failed, draft kept in local storage",
			Error:           err.Error(),
		}, nil
	}

	s.mu.Lock()
	state.remote = payload
	s.mu.Unlock()

	return &models.SaveDraftResponse{
		Success: true,
		Draft:   saved,
		Message: "draft saved",
	}, nil
}

// GetDraft recovers a draft: the local snapshot wins, then the database.
// The second return value reports whether the draft came from the snapshot
// store.
func (s *draftService) GetDraft(userID uint, sessionID string) (*models.DraftReport, bool, error) {
	snapshot, err := s.snapshots.Read(userID, sessionID)
	if err != nil {
		log.Printf("snapshot read failed: %v", err)
	}
	if len(snapshot) > 0 {
		var draft models.DraftReport
		if err := json.Unmarshal(snapshot, &draft); err == nil {
			if turns, terr := draft.Turns(); terr == nil && len(turns) > 0 {
				return &draft, true, nil
			}
		}
	}

	if !s.backend.Available() {
		return nil, false, nil
	}
	draft, err := s.draftRepo.FindActiveDraft(userID, sessionID)
	switch {
	case err == nil:
		return draft, false, nil
	case errors.Is(err, gorm.ErrRecordNotFound), db.IsTableMissing(err):
		return nil, false, nil
	default:
		return nil, false, errors.Wrap(err, "look up draft")
	}
}

// DeleteDraft removes both copies. Not-found conditions are non-fatal.
func (s *draftService) DeleteDraft(id uuid.UUID, userID uint, sessionID string) error {
	if err := s.snapshots.Clear(userID, sessionID); err != nil {
		log.Printf("snapshot clear failed: %v", err)
	}
	s.mu.Lock()
	delete(s.lastSaved, draftKey(userID, sessionID))
	s.mu.Unlock()

	if id == uuid.Nil || !s.backend.Available() {
		return nil
	}
	if err := s.draftRepo.DeleteByID(id); err != nil && !db.IsTableMissing(err) {
		return errors.Wrap(err, "delete draft")
	}
	return nil
}

func (s *draftService) MarkComplete(userID uint, sessionID string) error {
	if err := s.snapshots.Clear(userID, sessionID); err != nil {
		log.Printf("snapshot clear failed: %v", err)
	}
	s.mu.Lock()
	delete(s.lastSaved, draftKey(userID, sessionID))
	s.mu.Unlock()

	if !s.backend.Available() {
		return nil
	}
	draft, err := s.draftRepo.FindActiveDraft(userID, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) || db.IsTableMissing(err) {
			return nil
		}
		return err
	}
	return s.draftRepo.MarkComplete(draft.ID)
}

func draftFromRequest(req *models.SaveDraftRequest) (*models.DraftReport, error) {
	draft := &models.DraftReport{
		UserID:          req.UserID,
		FacilityID:      req.FacilityID,
		ParticipantID:   req.ParticipantID,
		CurrentQuestion: req.CurrentQuestion,
		CurrentSubtext:  req.CurrentSubtext,
		CurrentAnswer:   req.CurrentAnswer,
		Progress:        req.Progress,
		ReportType:      req.ReportType,
		SessionID:       req.SessionID,
	}
	if req.ID != "" {
		id, err := uuid.Parse(req.ID)
		if err != nil {
			return nil, err
		}
		draft.ID = id
	}
	if err := draft.SetTurns(req.Conversation); err != nil {
		return nil, err
	}
	if req.DeviceInfo != nil {
		raw, err := json.Marshal(req.DeviceInfo)
		if err != nil {
			return nil, err
		}
		draft.DeviceInfo = datatypes.JSON(raw)
	}
	return draft, nil
}
