package service

import (
	"sync/atomic"
	"time"
)

type State struct {
	ready     atomic.Bool
	startedAt time.Time

	botPolling     atomic.Bool
	lastUpdateUnix atomic.Int64 // unix seconds, последний апдейт от telegram
}

func NewState() *State {
	s := &State{startedAt: time.Now()}
	s.ready.Store(false)
	return s
}

func (s *State) SetReady(v bool) { s.ready.Store(v) }
func (s *State) Ready() bool     { return s.ready.Load() }

func (s *State) SetBotPolling(v bool) { s.botPolling.Store(v) }
func (s *State) BotPolling() bool     { return s.botPolling.Load() }

func (s *State) TouchUpdate(t time.Time) { s.lastUpdateUnix.Store(t.Unix()) }
func (s *State) LastUpdate() time.Time {
	u := s.lastUpdateUnix.Load()
	if u == 0 {
		return time.Time{}
	}
	return time.Unix(u, 0)
}

func (s *State) Uptime() time.Duration { return time.Since(s.startedAt) }
