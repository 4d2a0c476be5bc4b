package internal

import "time"

func NewPlayer(id, username, connId string, now time.Time) *Player {
	return &Player{
		Id:       id,
		Username: username,
		JoinedAt: now,
		ConnId:   connId,
	}
}

// Info is the public view of p as seen by the rest of room r.
func (p *Player) Info(r *Room) PlayerInfo {
	return PlayerInfo{
		Id:             p.Id,
		Username:       p.Username,
		Score:          p.Score,
		GuessedCorrect: p.GuessedCorrect,
		IsDrawing:      r.State == StatePlaying && r.CurrentDrawerId == p.Id,
		IsCreator:      r.CreatorId == p.Id,
	}
}

func (p *Player) ToWinner() Winner {
	return Winner{Id: p.Id, Username: p.Username, Score: p.Score}
}
