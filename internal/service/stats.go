package service

import (
	"sort"
	"time"

	"github.com/dawudu11/burptracker/internal"
)

// Today returns the current server day bucket.
func Today() string {
	return time.Now().Format("2006-01-02")
}

// ComputeDayStats aggregates the sessions falling into the given day bucket.
// average_session is truncating integer division, 0 when the day is empty.
func ComputeDayStats(sessions []internal.BurpSession, day string) internal.DayStats {
	stats := internal.DayStats{Date: day, Sessions: []string{}}
	for _, s := range sessions {
		if s.Day() != day {
			continue
		}
		stats.TotalTime += s.Duration
		stats.SessionCount++
		if s.Duration > stats.LongestSession {
			stats.LongestSession = s.Duration
		}
		stats.Sessions = append(stats.Sessions, s.ID)
	}
	if stats.SessionCount > 0 {
		stats.AverageSession = stats.TotalTime / stats.SessionCount
	}
	return stats
}

// History walks back from today over the last `days` calendar days and
// returns the stats of each day that has at least one session, most recent
// first. Empty days are omitted, so the result holds at most `days` entries.
func History(sessions []internal.BurpSession, days int) []internal.DayStats {
	history := make([]internal.DayStats, 0, days)
	now := time.Now()
	for i := 0; i < days; i++ {
		day := now.AddDate(0, 0, -i).Format("2006-01-02")
		stats := ComputeDayStats(sessions, day)
		if stats.SessionCount > 0 {
			history = append(history, stats)
		}
	}
	return history
}

// FilterUserSessions narrows a ledger slice to one user's sessions.
func FilterUserSessions(sessions []internal.BurpSession, userID string) []internal.BurpSession {
	filtered := make([]internal.BurpSession, 0, len(sessions))
	for _, s := range sessions {
		if s.UserID == userID {
			filtered = append(filtered, s)
		}
	}
	return filtered
}

// RankMembers produces the daily leaderboard and per-member stats for a
// group. Every member appears, inactive ones with zeroed stats. Order is
// longest_burp descending; ties (including the all-zero tail) break by
// username ascending, which makes the order total since usernames are unique.
func RankMembers(memberIDs []string, usernames map[string]string, sessions []internal.BurpSession, day string) ([]internal.LeaderboardEntry, []internal.MemberStats) {
	statsByMember := make(map[string]internal.DayStats, len(memberIDs))
	for _, id := range memberIDs {
		statsByMember[id] = ComputeDayStats(FilterUserSessions(sessions, id), day)
	}

	entries := make([]internal.LeaderboardEntry, 0, len(memberIDs))
	for _, id := range memberIDs {
		entries = append(entries, internal.LeaderboardEntry{
			UserID:      id,
			Username:    usernames[id],
			LongestBurp: statsByMember[id].LongestSession,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].LongestBurp != entries[j].LongestBurp {
			return entries[i].LongestBurp > entries[j].LongestBurp
		}
		return entries[i].Username < entries[j].Username
	})

	membersStats := make([]internal.MemberStats, 0, len(entries))
	for _, e := range entries {
		membersStats = append(membersStats, internal.MemberStats{
			UserID:   e.UserID,
			Username: e.Username,
			Stats:    statsByMember[e.UserID],
		})
	}
	return entries, membersStats
}
