package service

import (
	"context"
	"crypto/rand"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dawudu11/burptracker/internal"
	"github.com/dawudu11/burptracker/internal/storage"
)

// Ambiguous characters (O/0, I/1) are excluded so codes survive being read
// aloud or scribbled on a napkin.
const inviteCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const inviteCodeLength = 6

type CreateGroupRequest struct {
	Name            string `json:"name" validate:"required"`
	CreatorUsername string `json:"creator_username" validate:"required"`
}

type JoinGroupRequest struct {
	InviteCode string `json:"invite_code" validate:"required"`
	Username   string `json:"username" validate:"required"`
}

type RenameGroupRequest struct {
	Name string `json:"name" validate:"required"`
}

func ValidateCreateGroupRequest(req *CreateGroupRequest) error {
	return validate.Struct(req)
}

func ValidateJoinGroupRequest(req *JoinGroupRequest) error {
	return validate.Struct(req)
}

func generateInviteCode() (string, error) {
	buf := make([]byte, inviteCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = inviteCodeAlphabet[int(b)%len(inviteCodeAlphabet)]
	}
	return string(buf), nil
}

func CreateGroup(ctx context.Context, userRepo storage.UserRepository, groupRepo storage.GroupRepository, name, creatorUsername string) (*internal.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, internal.NewValidationError("group name must not be empty")
	}

	creator, err := CreateOrGetUser(ctx, userRepo, creatorUsername)
	if err != nil {
		return nil, err
	}

	group := &internal.Group{
		ID:        uuid.NewString(),
		Name:      name,
		CreatorID: creator.ID,
		Members:   []string{creator.ID},
		CreatedAt: time.Now(),
	}
	// The store reserves the code atomically on save; a collision between
	// concurrent creates surfaces as ErrInviteCodeTaken and gets a fresh
	// code on the next attempt.
	for attempt := 0; attempt < 10; attempt++ {
		code, err := generateInviteCode()
		if err != nil {
			return nil, err
		}
		if exists, err := groupRepo.InviteCodeExists(ctx, code); err != nil {
			return nil, err
		} else if exists {
			continue
		}

		group.InviteCode = code
		err = groupRepo.SaveGroup(ctx, group)
		if errors.Is(err, storage.ErrInviteCodeTaken) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return group, nil
	}
	return nil, errors.New("could not generate a unique invite code")
}

// JoinGroup resolves (or creates) the user and adds them to the group behind
// the invite code. Re-joining is a no-op.
func JoinGroup(ctx context.Context, userRepo storage.UserRepository, groupRepo storage.GroupRepository, inviteCode, username string) (*internal.User, *internal.Group, error) {
	inviteCode = strings.TrimSpace(inviteCode)
	group, err := groupRepo.GetGroupByInviteCode(ctx, inviteCode)
	if err != nil {
		return nil, nil, err
	}
	if group == nil {
		return nil, nil, internal.NewNotFoundError("invalid invite code")
	}

	user, err := CreateOrGetUser(ctx, userRepo, username)
	if err != nil {
		return nil, nil, err
	}

	group, err = groupRepo.AddMember(ctx, group.ID, user.ID)
	if err != nil {
		return nil, nil, err
	}
	if group == nil {
		return nil, nil, internal.NewNotFoundError("invalid invite code")
	}
	return user, group, nil
}

// RenameGroup lets any member change the group name. Membership, not
// creator-only, is the rule.
func RenameGroup(ctx context.Context, groupRepo storage.GroupRepository, groupID, requestingUserID, newName string) (*internal.Group, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return nil, internal.NewValidationError("group name must not be empty")
	}

	group, err := groupRepo.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, internal.NewNotFoundError("group not found")
	}
	if !group.HasMember(requestingUserID) {
		return nil, internal.NewPermissionError("only group members can rename the group")
	}
	return groupRepo.RenameGroup(ctx, groupID, newName)
}

// BuildGroupStats assembles the group's current-day leaderboard and
// per-member stats from the session ledger.
func BuildGroupStats(ctx context.Context, userRepo storage.UserRepository, groupRepo storage.GroupRepository, sessionRepo storage.SessionRepository, groupID string, day string) (*internal.GroupStats, error) {
	group, err := groupRepo.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, internal.NewNotFoundError("group not found")
	}

	sessions, err := sessionRepo.ListGroupSessions(ctx, groupID)
	if err != nil {
		return nil, err
	}

	usernames := make(map[string]string, len(group.Members))
	for _, memberID := range group.Members {
		user, err := userRepo.GetUser(ctx, memberID)
		if err != nil {
			return nil, err
		}
		if user != nil {
			usernames[memberID] = user.Username
		}
	}

	leaderboard, membersStats := RankMembers(group.Members, usernames, sessions, day)
	return &internal.GroupStats{
		Group:            group,
		DailyLeaderboard: leaderboard,
		MembersStats:     membersStats,
	}, nil
}
