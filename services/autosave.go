package services

import (
	"log"
	"sync"
	"time"

	"github.com/echoflow-solutions/carescribe-api/models"
)

type SaveStatus string

const (
	StatusSaved       SaveStatus = "saved"
	StatusLocalOnly   SaveStatus = "local-only"
	StatusSkipped     SaveStatus = "skipped"
	StatusIdleWarning SaveStatus = "idle-warning"
	StatusError       SaveStatus = "error"
)

// StatusEvent is pushed to the draft status feed after every autosave
// outcome or idle threshold crossing.
type StatusEvent struct {
	UserID    uint       `json:"user_id"`
	SessionID string     `json:"session_id"`
	Status    SaveStatus `json:"status"`
	Message   string     `json:"message,omitempty"`
	At        time.Time  `json:"at"`
}

const (
	defaultDebounce   = 2 * time.Second
	defaultPollEvery  = time.Minute
	defaultIdleWarn   = 25 * time.Minute
	defaultIdleForce  = 30 * time.Minute
	subscriberBacklog = 8
)

type autosaveEntry struct {
	timer        *time.Timer
	pending      *models.SaveDraftRequest
	lastActivity time.Time
	warned       bool
}

// AutosaveManager coalesces draft mutations into debounced saves, forces a
// save when connectivity returns or when the author has gone idle, and
// broadcasts each outcome to subscribers.
//
// Everything here is timer driven; each entry's state is guarded by the
// manager mutex.
type AutosaveManager struct {
	drafts  DraftService
	backend Availability

	debounce  time.Duration
	pollEvery time.Duration
	idleWarn  time.Duration
	idleForce time.Duration

	mu          sync.Mutex
	entries     map[string]*autosaveEntry
	subscribers map[string][]chan StatusEvent
	online      bool

	stop chan struct{}
}

func NewAutosaveManager(drafts DraftService, backend Availability) *AutosaveManager {
	return &AutosaveManager{
		drafts:      drafts,
		backend:     backend,
		debounce:    defaultDebounce,
		pollEvery:   defaultPollEvery,
		idleWarn:    defaultIdleWarn,
		idleForce:   defaultIdleForce,
		entries:     make(map[string]*autosaveEntry),
		subscribers: make(map[string][]chan StatusEvent),
		online:      backend.Available(),
		stop:        make(chan struct{}),
	}
}

// SetTimings overrides the debounce and inactivity intervals. Call before
// Start.
func (m *AutosaveManager) SetTimings(debounce, pollEvery, idleWarn, idleForce time.Duration) {
	m.debounce = debounce
	m.pollEvery = pollEvery
	m.idleWarn = idleWarn
	m.idleForce = idleForce
}

// Start runs the periodic connectivity and inactivity checks until Stop.
func (m *AutosaveManager) Start() {
	ticker := time.NewTicker(m.pollEvery)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-m.stop:
				return
			case <-ticker.C:
				m.poll()
			}
		}
	}()
}

func (m *AutosaveManager) Stop() {
	close(m.stop)
}

// NotifyChange records a draft mutation and (re)starts the debounce timer.
// Only an uninterrupted quiet period triggers the save.
func (m *AutosaveManager) NotifyChange(req *models.SaveDraftRequest) {
	key := draftKey(req.UserID, req.SessionID)

	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		entry = &autosaveEntry{}
		m.entries[key] = entry
	}
	entry.pending = req
	entry.lastActivity = time.Now()
	entry.warned = false
	if entry.timer != nil {
		entry.timer.Stop()
	}
	entry.timer = time.AfterFunc(m.debounce, func() {
		m.flush(key)
	})
}

// Touch records user activity without a content change, resetting the idle
// clock and dismissing any pending idle warning.
func (m *AutosaveManager) Touch(userID uint, sessionID string) {
	key := draftKey(userID, sessionID)

	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		entry = &autosaveEntry{}
		m.entries[key] = entry
	}
	entry.lastActivity = time.Now()
	entry.warned = false
}

// Forget drops an entry after discard or finalize.
func (m *AutosaveManager) Forget(userID uint, sessionID string) {
	key := draftKey(userID, sessionID)

	m.mu.Lock()
	defer m.mu.Unlock()

	if entry, ok := m.entries[key]; ok && entry.timer != nil {
		entry.timer.Stop()
	}
	delete(m.entries, key)
}

func (m *AutosaveManager) flush(key string) {
	m.mu.Lock()
	entry, ok := m.entries[key]
	if !ok || entry.pending == nil {
		m.mu.Unlock()
		return
	}
	req := entry.pending
	m.mu.Unlock()

	resp, err := m.drafts.SaveDraft(req)
	event := StatusEvent{
		UserID:    req.UserID,
		SessionID: req.SessionID,
		At:        time.Now(),
	}
	durable := false
	switch {
	case err != nil:
		event.Status = StatusError
		event.Message = err.Error()
	case resp.Skipped:
		event.Status = StatusSkipped
		durable = true
	case resp.UseLocalStorage:
		event.Status = StatusLocalOnly
		event.Message = resp.Message
	default:
		event.Status = StatusSaved
		durable = true
	}

	// A durable save retires the pending payload so the poll does not keep
	// re-flushing an idle session. Degraded saves stay pending for the
	// offline-to-online flush. A newer payload queued during the save is
	// left alone.
	if durable {
		m.mu.Lock()
		if entry, ok := m.entries[key]; ok && entry.pending == req {
			entry.pending = nil
		}
		m.mu.Unlock()
	}
	m.publish(key, event)
}

// poll handles the once-a-minute work: the offline-to-online forced save and
// the inactivity thresholds.
func (m *AutosaveManager) poll() {
	available := m.backend.Available()

	m.mu.Lock()
	cameOnline := available && !m.online
	m.online = available

	now := time.Now()
	var toFlush []string
	var toWarn []StatusEvent
	for key, entry := range m.entries {
		if entry.pending == nil {
			continue
		}
		if cameOnline {
			toFlush = append(toFlush, key)
			continue
		}
		idle := now.Sub(entry.lastActivity)
		if idle >= m.idleForce {
			toFlush = append(toFlush, key)
		} else if idle >= m.idleWarn && !entry.warned {
			entry.warned = true
			toWarn = append(toWarn, StatusEvent{
				UserID:    entry.pending.UserID,
				SessionID: entry.pending.SessionID,
				Status:    StatusIdleWarning,
				Message:   "still there? your draft will be saved automatically",
				At:        now,
			})
		}
	}
	m.mu.Unlock()

	for _, event := range toWarn {
		m.publish(draftKey(event.UserID, event.SessionID), event)
	}
	for _, key := range toFlush {
		m.flush(key)
	}
}

// Subscribe returns a channel of status events for one session. Slow
// consumers lose events rather than blocking saves.
func (m *AutosaveManager) Subscribe(userID uint, sessionID string) chan StatusEvent {
	key := draftKey(userID, sessionID)
	ch := make(chan StatusEvent, subscriberBacklog)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribers[key] = append(m.subscribers[key], ch)
	return ch
}

func (m *AutosaveManager) Unsubscribe(userID uint, sessionID string, ch chan StatusEvent) {
	key := draftKey(userID, sessionID)

	m.mu.Lock()
	defer m.mu.Unlock()

	subs := m.subscribers[key]
	for i, sub := range subs {
		if sub == ch {
			m.subscribers[key] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	close(ch)
}

func (m *AutosaveManager) publish(key string, event StatusEvent) {
	m.mu.Lock()
	subs := make([]chan StatusEvent, len(m.subscribers[key]))
	copy(subs, m.subscribers[key])
	m.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- event:
		default:
			log.Printf("draft status subscriber for %s is lagging, dropping event", key)
		}
	}
}
