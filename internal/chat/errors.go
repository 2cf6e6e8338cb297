package chat

import (
	"fmt"

	"github.com/Zuo-Peng/framechat/internal/apperrors"
)

var (
	ErrEmptyName      = fmt.Errorf("%w: session name is empty", apperrors.ErrInvalidInput)
	ErrNameTaken      = fmt.Errorf("%w: session name already exists", apperrors.ErrInvalidInput)
	ErrDefaultSession = fmt.Errorf("%w: the default session cannot be deleted", apperrors.ErrInvalidInput)
	ErrEmptyMessage   = fmt.Errorf("%w: message is empty", apperrors.ErrInvalidInput)
)

// SessionError reports an operation on a session reference that failed.
type SessionError struct {
	Op  string // "switch", "append", "delete", "create"
	Ref string // session id or name as given
	Err error
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("%s session %q: %v", e.Op, e.Ref, e.Err)
}

func (e *SessionError) Unwrap() error {
	return e.Err
}
