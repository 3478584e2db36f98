package profile

import (
	"sync"
	"time"

	"github.com/laughtale01/Scratch-sub001/pkg/netutil"
)

// Store holds behaviour profiles keyed by username and threat profiles keyed
// by IP. Each key is created at most once (compute-if-absent); there is no
// store-wide lock.
type Store struct {
	behaviors sync.Map // string -> *BehaviorProfile
	threats   sync.Map // string -> ThreatProfile

	source ThreatSource
	now    func() time.Time
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithThreatSource replaces the default heuristic threat source.
func WithThreatSource(src ThreatSource) StoreOption {
	return func(s *Store) {
		if src != nil {
			s.source = src
		}
	}
}

// WithClock overrides the time source handed to new profiles.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore returns an empty Store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{source: HeuristicThreatSource{}, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Behavior returns the profile for username, creating it on first sight.
func (s *Store) Behavior(username string) *BehaviorProfile {
	if p, ok := s.behaviors.Load(username); ok {
		return p.(*BehaviorProfile)
	}
	p, _ := s.behaviors.LoadOrStore(username, NewBehaviorProfile(username, s.now))
	return p.(*BehaviorProfile)
}

// LookupBehavior returns an existing profile without creating one.
func (s *Store) LookupBehavior(username string) (*BehaviorProfile, bool) {
	p, ok := s.behaviors.Load(username)
	if !ok {
		return nil, false
	}
	return p.(*BehaviorProfile), true
}

// Threat returns the cached threat profile for ip, computing it once on first
// lookup. Cached ratings are never refreshed.
func (s *Store) Threat(ip string) ThreatProfile {
	key := netutil.NormalizeIP(ip)
	if tp, ok := s.threats.Load(key); ok {
		return tp.(ThreatProfile)
	}
	tp, _ := s.threats.LoadOrStore(key, s.source.Lookup(key))
	return tp.(ThreatProfile)
}

// EvictIdle removes behaviour profiles with no activity since cutoff and
// returns how many were removed. Nothing calls this automatically.
func (s *Store) EvictIdle(cutoff time.Time) int {
	removed := 0
	s.behaviors.Range(func(key, value any) bool {
		if value.(*BehaviorProfile).LastActivity().Before(cutoff) {
			if s.behaviors.CompareAndDelete(key, value) {
				removed++
			}
		}
		return true
	})
	return removed
}

// Len returns the number of behaviour and threat profiles held.
func (s *Store) Len() (behaviors, threats int) {
	s.behaviors.Range(func(_, _ any) bool { behaviors++; return true })
	s.threats.Range(func(_, _ any) bool { threats++; return true })
	return behaviors, threats
}
