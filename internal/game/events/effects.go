package events

import "github.com/quizboard/quizboard-server-go/internal/game/domain"

// StealPercent is the share of the leader's score taken by a score steal.
const StealPercent = 20

// ResetScores zeroes every team's score.
func ResetScores(teams []domain.Team) {
	for i := range teams {
		teams[i].Score = 0
	}
}

// StealFromLeader moves floor(20% of the highest score), never negative, from
// the highest-scoring team to the lowest-scoring one. The first team wins ties
// on either side. It is a no-op with fewer than two teams or when all scores
// are equal.
func StealFromLeader(teams []domain.Team) (StealContext, bool) {
	if len(teams) < 2 {
		return StealContext{}, false
	}
	minIdx, maxIdx := 0, 0
	for i, t := range teams {
		if t.Score < teams[minIdx].Score {
			minIdx = i
		}
		if t.Score > teams[maxIdx].Score {
			maxIdx = i
		}
	}
	if minIdx == maxIdx {
		return StealContext{}, false
	}

	victim := &teams[maxIdx]
	thief := &teams[minIdx]
	amount := victim.Score * StealPercent / 100
	if amount < 0 {
		amount = 0
	}
	victim.Score -= amount
	thief.Score += amount

	return StealContext{
		ThiefID:    thief.ID,
		ThiefName:  thief.Name,
		VictimID:   victim.ID,
		VictimName: victim.Name,
		Amount:     amount,
	}, true
}
