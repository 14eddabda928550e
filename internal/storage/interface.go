package storage

import (
	"context"
	"errors"

	"github.com/dawudu11/burptracker/internal"
)

// Repositories return (nil, nil) on lookup misses; the service layer turns
// misses into the client-facing not-found errors.

// ErrInviteCodeTaken is returned by SaveGroup when another group already
// holds the invite code. The store is the reservation authority; callers
// retry with a fresh code.
var ErrInviteCodeTaken = errors.New("invite code already taken")

type UserRepository interface {
	// CreateUser inserts the user unless the username is already taken, in
	// which case the existing record is returned. The check and the insert
	// run atomically inside the store.
	CreateUser(ctx context.Context, user *internal.User) (*internal.User, error)
	GetUser(ctx context.Context, id string) (*internal.User, error)
	GetUserByUsername(ctx context.Context, username string) (*internal.User, error)
	CountUsers(ctx context.Context) (int, error)
}

type GroupRepository interface {
	// SaveGroup persists the group and reserves its invite code in the same
	// step, returning ErrInviteCodeTaken if a different group holds the code.
	SaveGroup(ctx context.Context, group *internal.Group) error
	GetGroup(ctx context.Context, id string) (*internal.Group, error)
	GetGroupByInviteCode(ctx context.Context, code string) (*internal.Group, error)
	InviteCodeExists(ctx context.Context, code string) (bool, error)
	// AddMember is idempotent: re-adding an existing member leaves the
	// membership unchanged.
	AddMember(ctx context.Context, groupID, userID string) (*internal.Group, error)
	RenameGroup(ctx context.Context, groupID, name string) (*internal.Group, error)
}

type SessionRepository interface {
	SaveSession(ctx context.Context, session *internal.BurpSession) error
	// ListPersonalSessions returns the group-less (single-player) ledger.
	ListPersonalSessions(ctx context.Context) ([]internal.BurpSession, error)
	ListGroupSessions(ctx context.Context, groupID string) ([]internal.BurpSession, error)
	CountSessions(ctx context.Context) (int, error)
}
