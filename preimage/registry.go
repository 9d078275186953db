// Package preimage lets callers commit to the Keccak-256 hash of a large
// preimage across many calls. Each session owns one sponge; the Registry maps
// opaque session ids to sessions from Init until Final.
//
// Calls naming different sessions may run concurrently. Calls on the same
// session must be serialized by the caller: Init, any number of Update, then
// exactly one Final.
package preimage

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"

	keccak "github.com/Giulio2002/keccak_preimage"
)

// SessionID identifies one in-progress preimage.
type SessionID uuid.UUID

func (id SessionID) String() string {
	return uuid.UUID(id).String()
}

// ParseSessionID parses the textual form produced by SessionID.String.
func ParseSessionID(s string) (SessionID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return SessionID{}, fmt.Errorf("invalid session id %q: %w", s, err)
	}
	return SessionID(id), nil
}

// Session is the state of one preimage being hashed. Its accessors are not
// synchronized with updates on the same session.
type Session struct {
	id        SessionID
	sponge    keccak.Sponge
	lastUsed  time.Time
	finalized bool
}

// ID returns the identifier handed out by Init.
func (s *Session) ID() SessionID { return s.id }

// Absorbed reports the bytes submitted so far.
func (s *Session) Absorbed() uint64 { return s.sponge.Absorbed() }

// Pending reports the bytes buffered towards the next 136-byte block.
func (s *Session) Pending() int { return s.sponge.Pending() }

// Finalized reports whether Final has run on the session.
func (s *Session) Finalized() bool { return s.finalized }

// Registry holds the open sessions.
type Registry struct {
	cfg     Config
	log     zerolog.Logger
	metrics Metrics
	now     func() time.Time

	mu        sync.Mutex
	sessions  map[SessionID]*Session
	finalized *lru.Cache[SessionID, struct{}]
}

// NewRegistry validates cfg and returns an empty registry. A nil metrics
// disables reporting.
func NewRegistry(cfg Config, log zerolog.Logger, metrics Metrics) (*Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid registry config: %w", err)
	}
	finalized, err := lru.New[SessionID, struct{}](cfg.FinalizedHistory)
	if err != nil {
		return nil, fmt.Errorf("could not create finalized session cache: %w", err)
	}
	if metrics == nil {
		metrics = NoopMetrics{}
	}
	return &Registry{
		cfg:       cfg,
		log:       log.With().Str("component", "preimage_registry").Logger(),
		metrics:   metrics,
		now:       time.Now,
		sessions:  make(map[SessionID]*Session),
		finalized: finalized,
	}, nil
}

// Init opens a session with a zeroed sponge. When the registry is full, idle
// sessions are reaped first; if none are, ErrTooManySessions is returned.
func (r *Registry) Init() (SessionID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if len(r.sessions) >= r.cfg.MaxSessions {
		r.reapLocked(now)
		if len(r.sessions) >= r.cfg.MaxSessions {
			r.metrics.SessionRejected()
			r.log.Warn().Int("open", len(r.sessions)).Msg("rejecting preimage session, registry full")
			return SessionID{}, ErrTooManySessions
		}
	}

	var id SessionID
	for {
		u, err := uuid.NewRandom()
		if err != nil {
			return SessionID{}, fmt.Errorf("could not generate session id: %w", err)
		}
		id = SessionID(u)
		if _, taken := r.sessions[id]; !taken && !r.finalized.Contains(id) {
			break
		}
	}

	r.sessions[id] = &Session{id: id, lastUsed: now}
	r.metrics.SessionOpened()
	r.metrics.OpenSessions(len(r.sessions))
	r.log.Debug().Str("session", id.String()).Msg("preimage session opened")
	return id, nil
}

// Lookup returns the open session for id.
func (r *Registry) Lookup(id SessionID) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lookupLocked(id)
}

// Update absorbs chunk into the session. A chunk that would exceed the
// configured maximum preimage size is rejected without touching the session.
func (r *Registry) Update(id SessionID, chunk []byte) error {
	r.mu.Lock()
	s, err := r.lookupLocked(id)
	if err == nil {
		s.lastUsed = r.now()
	}
	r.mu.Unlock()
	if err != nil {
		return err
	}

	if limit := uint64(r.cfg.MaxPreimageSize); limit > 0 && s.sponge.Absorbed()+uint64(len(chunk)) > limit {
		return PreimageTooLargeError{ID: id, Absorbed: s.sponge.Absorbed(), Chunk: len(chunk), Limit: limit}
	}

	blocks := s.sponge.Absorb(chunk)
	r.metrics.BytesAbsorbed(len(chunk))
	r.metrics.BlocksPermuted(blocks)
	return nil
}

// Final pads the session's tail, runs the last permutation and returns the
// digest. The session is retired whatever the caller does next: a later
// Update or Final on id fails.
func (r *Registry) Final(id SessionID) ([keccak.Size]byte, error) {
	r.mu.Lock()
	s, err := r.lookupLocked(id)
	if err != nil {
		r.mu.Unlock()
		return [keccak.Size]byte{}, err
	}
	s.finalized = true
	delete(r.sessions, id)
	r.finalized.Add(id, struct{}{})
	open := len(r.sessions)
	r.mu.Unlock()

	digest := s.sponge.Sum256()

	r.metrics.BlocksPermuted(1)
	r.metrics.SessionFinalized()
	r.metrics.OpenSessions(open)
	r.log.Debug().
		Str("session", id.String()).
		Uint64("absorbed", s.sponge.Absorbed()).
		Hex("digest", digest[:]).
		Msg("preimage session finalized")
	return digest, nil
}

// Discard drops an open session without producing a digest, for callers that
// abandon a preimage part way. The id is forgotten, not tombstoned.
func (r *Registry) Discard(id SessionID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := r.lookupLocked(id); err != nil {
		return err
	}
	delete(r.sessions, id)
	r.metrics.OpenSessions(len(r.sessions))
	r.log.Debug().Str("session", id.String()).Msg("preimage session discarded")
	return nil
}

// Len reports the number of open sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Reap drops sessions that have not been updated within the idle timeout and
// reports how many were dropped. Reaped ids are forgotten entirely.
func (r *Registry) Reap(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reapLocked(now)
}

func (r *Registry) reapLocked(now time.Time) int {
	timeout := time.Duration(r.cfg.IdleTimeout)
	if timeout == 0 {
		return 0
	}
	reaped := 0
	for id, s := range r.sessions {
		if now.Sub(s.lastUsed) <= timeout {
			continue
		}
		delete(r.sessions, id)
		reaped++
		r.metrics.SessionReaped()
		// An update may still be absorbing into s outside the lock, so only
		// fields guarded by r.mu are read here.
		r.log.Debug().
			Str("session", id.String()).
			Time("last_used", s.lastUsed).
			Msg("idle preimage session reaped")
	}
	if reaped > 0 {
		r.metrics.OpenSessions(len(r.sessions))
	}
	return reaped
}

func (r *Registry) lookupLocked(id SessionID) (*Session, error) {
	if s, ok := r.sessions[id]; ok {
		return s, nil
	}
	if r.finalized.Contains(id) {
		return nil, SessionFinalizedError{ID: id}
	}
	return nil, UnknownSessionError{ID: id}
}
