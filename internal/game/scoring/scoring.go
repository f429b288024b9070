// Package scoring mutates team scores and answers rotation and standings queries.
//
// Every helper operates on the caller's team slice; none of them creates a team
// implicitly when an id is unknown.
package scoring

import (
	"sort"
	"strings"

	"github.com/quizboard/quizboard-server-go/internal/game/domain"
)

// Standing is one leaderboard row.
type Standing struct {
	TeamID uint32 `json:"team_id"`
	Name   string `json:"name"`
	Score  int    `json:"score"`
}

// Stats summarises the current scores.
type Stats struct {
	Total       int     `json:"total"`
	Highest     int     `json:"highest"`
	Lowest      int     `json:"lowest"`
	Average     float64 `json:"average"`
	TotalPoints int     `json:"total_points"`
}

// AddTeam appends a zero-score team with id max+1 (starting at 1) and returns the id.
// Invalid UTF-8 in name is replaced with U+FFFD.
func AddTeam(teams *[]domain.Team, name string) uint32 {
	name = strings.ToValidUTF8(name, "\uFFFD")
	var maxID uint32
	for _, t := range *teams {
		if t.ID > maxID {
			maxID = t.ID
		}
	}
	id := maxID + 1
	*teams = append(*teams, domain.Team{ID: id, Name: name})
	return id
}

// Award adds points to the team's score. It reports false when the id is absent.
func Award(teams []domain.Team, teamID uint32, points int) bool {
	for i := range teams {
		if teams[i].ID == teamID {
			teams[i].Score += points
			return true
		}
	}
	return false
}

// Deduct subtracts points from the team's score. It reports false when the id is absent.
func Deduct(teams []domain.Team, teamID uint32, points int) bool {
	for i := range teams {
		if teams[i].ID == teamID {
			teams[i].Score -= points
			return true
		}
	}
	return false
}

// Rotate returns the id following current in list order, wrapping at the end.
// An absent current yields the first team; an empty list returns current.
func Rotate(teams []domain.Team, current uint32) uint32 {
	if len(teams) == 0 {
		return current
	}
	for i, t := range teams {
		if t.ID == current {
			return teams[(i+1)%len(teams)].ID
		}
	}
	return teams[0].ID
}

// Score returns the team's score and whether it exists.
func Score(teams []domain.Team, teamID uint32) (int, bool) {
	for _, t := range teams {
		if t.ID == teamID {
			return t.Score, true
		}
	}
	return 0, false
}

// Exists reports whether a team with the id is present.
func Exists(teams []domain.Team, teamID uint32) bool {
	_, ok := Score(teams, teamID)
	return ok
}

// Leaderboard returns standings sorted by score, highest first. Ties keep list order.
func Leaderboard(teams []domain.Team) []Standing {
	out := make([]Standing, 0, len(teams))
	for _, t := range teams {
		out = append(out, Standing{TeamID: t.ID, Name: t.Name, Score: t.Score})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

// Summarize computes aggregate score statistics.
func Summarize(teams []domain.Team) Stats {
	stats := Stats{Total: len(teams)}
	if len(teams) == 0 {
		return stats
	}
	stats.Highest = teams[0].Score
	stats.Lowest = teams[0].Score
	for _, t := range teams {
		stats.TotalPoints += t.Score
		if t.Score > stats.Highest {
			stats.Highest = t.Score
		}
		if t.Score < stats.Lowest {
			stats.Lowest = t.Score
		}
	}
	stats.Average = float64(stats.TotalPoints) / float64(len(teams))
	return stats
}
