package chat

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Zuo-Peng/framechat/internal/apperrors"
)

// Snapshot is the whole persisted store: sessions in display order plus the
// active session id.
type Snapshot struct {
	Sessions []Session `json:"sessions"`
	ActiveID string    `json:"active_id"`
}

// Backend persists snapshots. Load returns (nil, nil) when nothing has been
// stored yet and an error wrapping apperrors.ErrCorrupt when the stored data
// cannot be decoded.
type Backend interface {
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, snap *Snapshot) error
	Close() error
}

// Validate checks the store invariants that must hold for a loaded snapshot.
// An unknown active id is not an error; Open falls back to the default session.
func (s *Snapshot) Validate() error {
	seen := make(map[string]struct{}, len(s.Sessions))
	hasDefault := false
	for _, sess := range s.Sessions {
		if sess.ID == "" {
			return fmt.Errorf("%w: session with empty id", apperrors.ErrCorrupt)
		}
		if _, dup := seen[sess.ID]; dup {
			return fmt.Errorf("%w: duplicate session id %q", apperrors.ErrCorrupt, sess.ID)
		}
		seen[sess.ID] = struct{}{}
		if sess.ID == DefaultSessionID {
			hasDefault = true
		}
		for i, m := range sess.Messages {
			if m.Role != RoleUser && m.Role != RoleSystem {
				return fmt.Errorf("%w: session %q message %d has role %q", apperrors.ErrCorrupt, sess.ID, i, m.Role)
			}
		}
	}
	if !hasDefault {
		return fmt.Errorf("%w: default session missing", apperrors.ErrCorrupt)
	}
	return nil
}

// MarshalSnapshot encodes a snapshot for key-value and file backends.
func MarshalSnapshot(s *Snapshot) ([]byte, error) {
	return json.Marshal(s)
}

// UnmarshalSnapshot decodes data written by MarshalSnapshot.
func UnmarshalSnapshot(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: decode snapshot: %v", apperrors.ErrCorrupt, err)
	}
	return &s, nil
}
