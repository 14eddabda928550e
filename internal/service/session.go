package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dawudu11/burptracker/internal"
	"github.com/dawudu11/burptracker/internal/storage"
)

// MinDuration is the shortest accepted burp, in milliseconds.
const MinDuration = 100

type PersonalSessionRequest struct {
	Duration int `json:"duration" validate:"required"`
}

type GroupSessionRequest struct {
	UserID          string `json:"user_id" validate:"required"`
	Duration        int    `json:"duration" validate:"required"`
	DetectionMethod string `json:"detection_method"`
}

func ValidatePersonalSessionRequest(req *PersonalSessionRequest) error {
	return validate.Struct(req)
}

func ValidateGroupSessionRequest(req *GroupSessionRequest) error {
	return validate.Struct(req)
}

func checkDuration(duration int) error {
	if duration < MinDuration {
		return internal.NewValidationError("burp too short, minimum duration is 100ms")
	}
	return nil
}

// RecordPersonalSession appends a single-player session and returns the
// updated stats for today. The timestamp is server-assigned; the day bucket
// derives from it, never from the client.
func RecordPersonalSession(ctx context.Context, sessionRepo storage.SessionRepository, duration int) (*internal.DayStats, error) {
	if err := checkDuration(duration); err != nil {
		return nil, err
	}

	session := &internal.BurpSession{
		ID:        uuid.NewString(),
		Duration:  duration,
		Timestamp: time.Now(),
	}
	if err := sessionRepo.SaveSession(ctx, session); err != nil {
		return nil, err
	}

	sessions, err := sessionRepo.ListPersonalSessions(ctx)
	if err != nil {
		return nil, err
	}
	stats := ComputeDayStats(sessions, session.Day())
	return &stats, nil
}

// PersonalTodayStats recomputes today's single-player stats from the ledger.
func PersonalTodayStats(ctx context.Context, sessionRepo storage.SessionRepository) (*internal.DayStats, error) {
	sessions, err := sessionRepo.ListPersonalSessions(ctx)
	if err != nil {
		return nil, err
	}
	stats := ComputeDayStats(sessions, Today())
	return &stats, nil
}

// PersonalHistory returns up to `days` recent days of single-player stats.
func PersonalHistory(ctx context.Context, sessionRepo storage.SessionRepository, days int) ([]internal.DayStats, error) {
	if days < 1 {
		return nil, internal.NewValidationError("days must be a positive integer")
	}
	sessions, err := sessionRepo.ListPersonalSessions(ctx)
	if err != nil {
		return nil, err
	}
	return History(sessions, days), nil
}

// RecordGroupSession appends a group-scoped session for a member and returns
// both the session and the group's refreshed current-day stats.
func RecordGroupSession(ctx context.Context, userRepo storage.UserRepository, groupRepo storage.GroupRepository, sessionRepo storage.SessionRepository, groupID, userID string, duration int, detectionMethod string) (*internal.BurpSession, *internal.GroupStats, error) {
	if err := checkDuration(duration); err != nil {
		return nil, nil, err
	}

	user, err := userRepo.GetUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, internal.NewNotFoundError("user not found")
	}

	group, err := groupRepo.GetGroup(ctx, groupID)
	if err != nil {
		return nil, nil, err
	}
	if group == nil {
		return nil, nil, internal.NewNotFoundError("group not found")
	}
	if !group.HasMember(userID) {
		return nil, nil, internal.NewNotFoundError("user is not a member of this group")
	}

	session := &internal.BurpSession{
		ID:              uuid.NewString(),
		UserID:          user.ID,
		Username:        user.Username,
		GroupID:         group.ID,
		Duration:        duration,
		DetectionMethod: detectionMethod,
		Timestamp:       time.Now(),
	}
	if err := sessionRepo.SaveSession(ctx, session); err != nil {
		return nil, nil, err
	}

	stats, err := BuildGroupStats(ctx, userRepo, groupRepo, sessionRepo, groupID, session.Day())
	if err != nil {
		return nil, nil, err
	}
	return session, stats, nil
}
