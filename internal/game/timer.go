package game

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/scythe504/skribblr-rooms/internal"
)

// =============================================================================
// TIMER MANAGEMENT
// =============================================================================

type TimerKind string

const (
	TimerAutoStart     TimerKind = "auto_start"
	TimerWordSelection TimerKind = "word_selection"
	TimerRound         TimerKind = "round"
)

var timerKinds = []TimerKind{TimerAutoStart, TimerWordSelection, TimerRound}

type timerKey struct {
	roomId string
	kind   TimerKind
}

type phaseTimer struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// Scheduler keeps at most one pending timer per room and kind. Callbacks run
// on the timer goroutine with room.Mu held, and only if the timer was neither
// cancelled nor superseded before the lock was taken. Cancel is meant to be
// called with room.Mu held, which makes that check exact.
type Scheduler struct {
	mu     sync.Mutex
	timers map[timerKey]*phaseTimer
}

func NewScheduler() *Scheduler {
	return &Scheduler{timers: make(map[timerKey]*phaseTimer)}
}

// arm installs a new timer in the slot, cancelling whatever was there.
func (s *Scheduler) arm(key timerKey) *phaseTimer {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.timers[key]; ok {
		old.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	t := &phaseTimer{ctx: ctx, cancel: cancel}
	s.timers[key] = t
	return t
}

func (s *Scheduler) current(key timerKey, t *phaseTimer) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timers[key] == t && t.ctx.Err() == nil
}

// claim empties the slot if t still owns it.
func (s *Scheduler) claim(key timerKey, t *phaseTimer) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timers[key] != t || t.ctx.Err() != nil {
		return false
	}
	delete(s.timers, key)
	t.cancel()
	return true
}

// Schedule runs onExpire once after d unless cancelled or superseded first.
func (s *Scheduler) Schedule(room *internal.Room, kind TimerKind, d time.Duration, onExpire func()) {
	key := timerKey{roomId: room.Id, kind: kind}
	t := s.arm(key)
	log.Debug().Str("room", room.Id).Str("timer", string(kind)).Dur("after", d).Msg("[Schedule] timer armed")

	go func() {
		timer := time.NewTimer(d)
		defer timer.Stop()

		select {
		case <-t.ctx.Done():
			return
		case <-timer.C:
		}

		room.Mu.Lock()
		defer room.Mu.Unlock()
		if !s.claim(key, t) {
			return
		}
		onExpire()
	}()
}

// Countdown calls onTick with from-1 down to 1, one step per interval, then
// onZero. The initial value is the caller's to announce.
func (s *Scheduler) Countdown(room *internal.Room, kind TimerKind, from int, every time.Duration, onTick func(remaining int), onZero func()) {
	key := timerKey{roomId: room.Id, kind: kind}
	t := s.arm(key)
	log.Debug().Str("room", room.Id).Str("timer", string(kind)).Int("from", from).Msg("[Countdown] countdown armed")

	go func() {
		ticker := time.NewTicker(every)
		defer ticker.Stop()

		for remaining := from - 1; ; remaining-- {
			select {
			case <-t.ctx.Done():
				return
			case <-ticker.C:
			}

			if remaining > 0 {
				room.Mu.Lock()
				if s.current(key, t) {
					onTick(remaining)
				}
				room.Mu.Unlock()
				continue
			}

			room.Mu.Lock()
			if s.claim(key, t) {
				onZero()
			}
			room.Mu.Unlock()
			return
		}
	}()
}

// Cancel stops the pending timer in the slot. It reports whether one was
// live; cancelling an empty slot is a no-op.
func (s *Scheduler) Cancel(roomId string, kind TimerKind) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := timerKey{roomId: roomId, kind: kind}
	t, ok := s.timers[key]
	if !ok {
		return false
	}
	t.cancel()
	delete(s.timers, key)
	log.Debug().Str("room", roomId).Str("timer", string(kind)).Msg("[Cancel] timer cancelled")
	return true
}

func (s *Scheduler) CancelAll(roomId string) {
	for _, kind := range timerKinds {
		s.Cancel(roomId, kind)
	}
}

func (s *Scheduler) Active(roomId string, kind TimerKind) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.timers[timerKey{roomId: roomId, kind: kind}]
	return ok && t.ctx.Err() == nil
}
