package game

import (
	"cmp"
	"slices"

	"github.com/scythe504/skribblr-rooms/internal"
)

const (
	MaxGuessPoints  = 100
	MinGuessPoints  = 50
	GuessPointsStep = 10
	DrawerBonus     = 25
)

// GuessPoints is the award for the k-th correct guess of a turn (1-based).
func GuessPoints(k int) int {
	if k < 1 {
		k = 1
	}
	return max(MinGuessPoints, MaxGuessPoints-GuessPointsStep*(k-1))
}

// CalculateFinalResults compiles winners and leaderboard from the room.
// Caller holds room.Mu.
func CalculateFinalResults(room *internal.Room) *internal.GameResult {
	players := room.OrderedPlayers()

	result := &internal.GameResult{
		Winners:      []internal.Winner{},
		Players:      room.PlayerInfos(),
		RoundsPlayed: room.RoundNumber,
	}

	// Winners are every player tied on the top score.
	top := -1
	for _, p := range players {
		top = max(top, p.Score)
	}
	for _, p := range players {
		if p.Score == top {
			result.Winners = append(result.Winners, p.ToWinner())
		}
	}

	// Stable sort keeps join order among equal scores.
	sorted := slices.Clone(players)
	slices.SortStableFunc(sorted, func(a, b *internal.Player) int {
		return cmp.Compare(b.Score, a.Score)
	})
	result.Leaderboard = make([]internal.LeaderboardEntry, 0, len(sorted))
	for idx, p := range sorted {
		result.Leaderboard = append(result.Leaderboard, internal.LeaderboardEntry{
			PlayerId: p.Id,
			Username: p.Username,
			Score:    p.Score,
			Position: idx + 1,
		})
	}

	return result
}
