package internal

import (
	"slices"
	"time"
)

// Methods (Room Struct)
// Callers hold r.Mu for every method below.

func NewRoom(id, code string, isPublic bool, now time.Time) *Room {
	return &Room{
		Id:                 id,
		Code:               code,
		IsPublic:           isPublic,
		Players:            make(map[string]*Player),
		PlayerOrder:        []string{},
		State:              StateWaiting,
		CurrentDrawerIndex: -1,
		MaxRounds:          MaxRounds,
		CreatedAt:          now,
		LastActivity:       now,
	}
}

func (r *Room) Touch(now time.Time) {
	r.LastActivity = now
}

func (r *Room) PlayerCount() int {
	return len(r.Players)
}

func (r *Room) IsFull() bool {
	return len(r.Players) >= MaxPlayersPerRoom
}

func (r *Room) CanStartGame() bool {
	return r.State == StateWaiting && r.PlayerCount() >= MinPlayersToStart
}

// OrderedPlayers returns the players in join order.
func (r *Room) OrderedPlayers() []*Player {
	players := make([]*Player, 0, len(r.PlayerOrder))
	for _, id := range r.PlayerOrder {
		if p, ok := r.Players[id]; ok {
			players = append(players, p)
		}
	}
	return players
}

func (r *Room) CurrentDrawer() *Player {
	if r.CurrentDrawerId == "" {
		return nil
	}
	return r.Players[r.CurrentDrawerId]
}

func (r *Room) Creator() *Player {
	if r.CreatorId == "" {
		return nil
	}
	return r.Players[r.CreatorId]
}

func (r *Room) CreatorName() string {
	if c := r.Creator(); c != nil {
		return c.Username
	}
	return ""
}

func (r *Room) IsDrawer(playerId string) bool {
	return r.State == StatePlaying && playerId != "" && r.CurrentDrawerId == playerId
}

// AddPlayer registers p. The first player becomes the creator, and a player
// arriving mid-game is queued at the end of the turn order.
func (r *Room) AddPlayer(p *Player, now time.Time) {
	p.GuessedCorrect = false
	r.Players[p.Id] = p
	r.PlayerOrder = append(r.PlayerOrder, p.Id)
	if r.CreatorId == "" {
		r.CreatorId = p.Id
	}
	if r.State == StatePlaying {
		r.TurnOrder = append(r.TurnOrder, p.Id)
	}
	r.Touch(now)
}

// RemovePlayer drops the player from every collection. When the drawer
// leaves, CurrentDrawerIndex is left pointing one before the next drawer so
// the following advance lands on the right player.
func (r *Room) RemovePlayer(playerId string, now time.Time) *Player {
	p, ok := r.Players[playerId]
	if !ok {
		return nil
	}
	delete(r.Players, playerId)

	if i := slices.Index(r.PlayerOrder, playerId); i >= 0 {
		r.PlayerOrder = slices.Delete(r.PlayerOrder, i, i+1)
	}

	if i := slices.Index(r.TurnOrder, playerId); i >= 0 {
		r.TurnOrder = slices.Delete(r.TurnOrder, i, i+1)
		if i <= r.CurrentDrawerIndex {
			r.CurrentDrawerIndex--
		}
	}

	if r.CurrentDrawerId == playerId {
		r.CurrentDrawerId = ""
	}

	r.Touch(now)
	return p
}

func (r *Room) ResetPlayerGuessState() {
	for _, player := range r.Players {
		player.GuessedCorrect = false
	}
	r.CorrectGuesses = 0
}

// HasEveryoneGuessed reports whether at least one non-drawer is present and
// all of them have guessed the word.
func (r *Room) HasEveryoneGuessed() bool {
	guessers := 0
	for id, player := range r.Players {
		if id == r.CurrentDrawerId {
			continue
		}
		guessers++
		if !player.GuessedCorrect {
			return false
		}
	}
	return guessers > 0
}

func (r *Room) PlayerInfos() []PlayerInfo {
	infos := make([]PlayerInfo, 0, len(r.PlayerOrder))
	for _, p := range r.OrderedPlayers() {
		infos = append(infos, p.Info(r))
	}
	return infos
}
