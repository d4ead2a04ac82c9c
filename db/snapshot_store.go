package db

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// SnapshotStore is the durable local fallback for draft saves. Every save
// attempt lands here first, before the database is tried, so a draft is
// never contingent on the backend being reachable. One fixed key holds the
// latest full snapshot for a (user, session) pair.
type SnapshotStore struct {
	dir string
}

func NewSnapshotStore(dir string) (*SnapshotStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create snapshot directory")
	}
	return &SnapshotStore{dir: dir}, nil
}

func (s *SnapshotStore) path(userID uint, sessionID string) string {
	return filepath.Join(s.dir, fmt.Sprintf("draft_%d_%s.json", userID, safeKeyComponent(sessionID)))
}

// safeKeyComponent hex-escapes anything outside [A-Za-z0-9_-] so a
// client-supplied session id can never name a path outside the snapshot
// directory. The encoding is injective, so distinct session ids keep
// distinct snapshot files.
func safeKeyComponent(sessionID string) string {
	var b strings.Builder
	b.Grow(len(sessionID))
	for i := 0; i < len(sessionID); i++ {
		c := sessionID[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
			b.WriteByte(c)
		default:
			fmt.Fprintf(&b, "%%%02x", c)
		}
	}
	return b.String()
}

// Write replaces the stored snapshot. The write goes through a temp file and
// rename so a crash mid-write cannot corrupt the previous snapshot.
func (s *SnapshotStore) Write(userID uint, sessionID string, payload []byte) error {
	dest := s.path(userID, sessionID)
	tmp := dest + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return errors.Wrap(err, "write snapshot")
	}
	if err := os.Rename(tmp, dest); err != nil {
		return errors.Wrap(err, "replace snapshot")
	}
	return nil
}

// Read returns the stored snapshot, or nil when none exists.
func (s *SnapshotStore) Read(userID uint, sessionID string) ([]byte, error) {
	payload, err := os.ReadFile(s.path(userID, sessionID))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read snapshot")
	}
	return payload, nil
}

// Clear removes the snapshot on discard or finalize.
func (s *SnapshotStore) Clear(userID uint, sessionID string) error {
	err := os.Remove(s.path(userID, sessionID))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "clear snapshot")
	}
	return nil
}
