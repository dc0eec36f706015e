package core

import (
	"sync"

	"github.com/dkeye/flightrelay/internal/domain"
	"github.com/rs/zerolog/log"
)

// sessionImpl is a threadsafe in-memory session.
// It never closes adapter-owned resources.
type sessionImpl struct {
	key domain.SessionKey

	mu      sync.RWMutex
	creds   domain.Credentials
	host    *Peer
	viewers map[ConnID]*Peer
	pause   Frame
}

// NewSessionService builds a session with no live host and no viewers.
func NewSessionService(creds domain.Credentials) SessionService {
	return &sessionImpl{
		key:     creds.UniqueID,
		creds:   creds,
		viewers: make(map[ConnID]*Peer),
	}
}

func (s *sessionImpl) Key() domain.SessionKey { return s.key }

func (s *sessionImpl) Credentials() domain.Credentials {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds
}

func (s *sessionImpl) Info() SessionInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return SessionInfo{UniqueID: s.key, PCOnline: s.host != nil, Viewers: len(s.viewers)}
}

func (s *sessionImpl) Rebind(creds domain.Credentials, host *Peer) *Peer {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.host
	s.creds = creds
	s.host = host
	if prev != nil && prev != host {
		log.Info().Str("module", "core.session").Str("key", string(s.key)).Str("prev", string(prev.ID())).Str("host", string(host.ID())).Msg("host replaced")
	}
	return prev
}

func (s *sessionImpl) IsHost(p *Peer) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return p != nil && s.host == p
}

func (s *sessionImpl) DetachHost(p *Peer, notice Frame) (PublishResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p == nil || s.host != p {
		return PublishResult{}, false
	}
	s.host = nil
	s.pause = nil
	log.Info().Str("module", "core.session").Str("key", string(s.key)).Str("host", string(p.ID())).Msg("host detached")
	return s.fanOut(notice), true
}

func (s *sessionImpl) AddViewer(p *Peer, welcome func(hostOnline bool) Frame) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewers[p.ID()] = p
	online := s.host != nil
	log.Info().Str("module", "core.session").Str("key", string(s.key)).Str("viewer", string(p.ID())).Bool("pc_online", online).Msg("viewer added")
	if welcome != nil {
		if err := p.Signal().TrySend(welcome(online)); err != nil {
			return online, err
		}
	}
	if s.pause != nil {
		if err := p.Signal().TrySend(s.pause); err != nil {
			return online, err
		}
	}
	return online, nil
}

func (s *sessionImpl) RemoveViewer(p *Peer) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.viewers[p.ID()]
	if !ok || cur != p {
		return false
	}
	delete(s.viewers, p.ID())
	log.Info().Str("module", "core.session").Str("key", string(s.key)).Str("viewer", string(p.ID())).Msg("viewer removed")
	return true
}

func (s *sessionImpl) ViewerCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.viewers)
}

func (s *sessionImpl) Broadcast(from *Peer, data Frame) (PublishResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if from == nil || s.host != from {
		return PublishResult{}, false
	}
	return s.fanOut(data), true
}

func (s *sessionImpl) SendToHost(data Frame) (bool, error) {
	s.mu.RLock()
	host := s.host
	s.mu.RUnlock()
	if host == nil {
		return false, nil
	}
	if err := host.Signal().TrySend(data); err != nil {
		return false, err
	}
	return true, nil
}

func (s *sessionImpl) PauseState() Frame {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pause
}

func (s *sessionImpl) SetPauseState(from *Peer, data Frame) (PublishResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if from == nil || s.host != from {
		return PublishResult{}, false
	}
	s.pause = data
	return s.fanOut(data), true
}

// fanOut must be called with mu held.
func (s *sessionImpl) fanOut(data Frame) PublishResult {
	res := PublishResult{}
	for _, v := range s.viewers {
		if err := v.Signal().TrySend(data); err != nil {
			res.Dropped = append(res.Dropped, v)
			continue
		}
		res.SendTo++
	}
	log.Debug().Str("module", "core.session").Str("key", string(s.key)).Int("sent_to", res.SendTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return res
}
