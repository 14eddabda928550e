package internal

import "time"

type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

type Group struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	CreatorID  string    `json:"creator_id"`
	InviteCode string    `json:"invite_code"`
	Members    []string  `json:"members"` // user IDs, creator included
	CreatedAt  time.Time `json:"created_at"`
}

// HasMember reports whether userID belongs to the group.
func (g *Group) HasMember(userID string) bool {
	for _, id := range g.Members {
		if id == userID {
			return true
		}
	}
	return false
}

type BurpSession struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id,omitempty"` // empty for personal (single-player) sessions
	Username        string    `json:"username,omitempty"`
	GroupID         string    `json:"group_id,omitempty"`
	Duration        int       `json:"duration"` // milliseconds
	DetectionMethod string    `json:"detection_method,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
}

// Day returns the calendar-day bucket of the session, e.g. "2025-08-31".
func (s *BurpSession) Day() string {
	return s.Timestamp.Format("2006-01-02")
}

// DayStats is derived from the session ledger on every read, never stored.
type DayStats struct {
	Date           string   `json:"date"`
	TotalTime      int      `json:"total_time"`
	SessionCount   int      `json:"session_count"`
	LongestSession int      `json:"longest_session"`
	AverageSession int      `json:"average_session"`
	Sessions       []string `json:"sessions"` // contributing session IDs
}

type LeaderboardEntry struct {
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	LongestBurp int    `json:"longest_burp"`
}

type MemberStats struct {
	UserID   string   `json:"user_id"`
	Username string   `json:"username"`
	Stats    DayStats `json:"stats"`
}

type GroupStats struct {
	Group            *Group             `json:"group"`
	DailyLeaderboard []LeaderboardEntry `json:"daily_leaderboard"`
	MembersStats     []MemberStats      `json:"members_stats"`
}
