package session

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Reserved top-level keys inside Session.Data. Application code must not
// use them; the dotted-path accessors treat them as opaque.
const (
	csrfDataKey  = "_csrf"
	flashDataKey = "_flash"
)

// Session is one client's server-side state, addressed by an opaque random
// id presented in a cookie. The record is owned by exactly one Manager per
// request; cross-request coordination happens only through the Store.
type Session struct {
	ID     string     `json:"id"`
	UserID *uuid.UUID `json:"user_id,omitempty"`

	// IPAddress and UserAgent are audit fields refreshed on every adopt.
	// The refresh alone does not mark the session dirty; stored values may
	// lag the live client by up to the activity threshold.
	IPAddress string `json:"ip_address,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
	Fingerprint    string         `json:"fingerprint,omitempty"`
	Data           map[string]any `json:"data,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	LastActivityAt time.Time      `json:"last_activity_at"`

	// dirty gates whether Save performs store I/O. In-memory only.
	dirty bool
}

// NewSession creates an empty session record for the given id.
func NewSession(id string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:             id,
		Data:           make(map[string]any),
		CreatedAt:      now,
		LastActivityAt: now,
	}
}

// IsAuthenticated returns true if the session carries a user id.
func (s *Session) IsAuthenticated() bool {
	return s != nil && s.UserID != nil
}

// Get resolves a dotted path ("user.profile.name") against the data mapping.
func (s *Session) Get(path string) (any, bool) {
	if s == nil || s.Data == nil {
		return nil, false
	}

	keys := strings.Split(path, ".")
	current := s.Data
	for i, key := range keys {
		val, ok := current[key]
		if !ok {
			return nil, false
		}
		if i == len(keys)-1 {
			return val, true
		}
		current, ok = asMap(val)
		if !ok {
			return nil, false
		}
	}
	return nil, false
}

// Set stores a value under a dotted path, creating intermediate maps as
// needed. A non-map value sitting on an intermediate segment is replaced.
func (s *Session) Set(path string, value any) {
	if s == nil {
		return
	}
	if s.Data == nil {
		s.Data = make(map[string]any)
	}

	keys := strings.Split(path, ".")
	current := s.Data
	for _, key := range keys[:len(keys)-1] {
		next, ok := asMap(current[key])
		if !ok {
			next = make(map[string]any)
			current[key] = next
		}
		current = next
	}
	current[keys[len(keys)-1]] = value
	s.dirty = true
}

// Has reports whether a dotted path resolves to a value.
func (s *Session) Has(path string) bool {
	_, ok := s.Get(path)
	return ok
}

// Delete removes the value at a dotted path. Empty intermediate maps are
// left in place; they serialize to nothing meaningful and cost little.
func (s *Session) Delete(path string) {
	if s == nil || s.Data == nil {
		return
	}

	keys := strings.Split(path, ".")
	current := s.Data
	for _, key := range keys[:len(keys)-1] {
		next, ok := asMap(current[key])
		if !ok {
			return
		}
		current = next
	}
	if _, ok := current[keys[len(keys)-1]]; ok {
		delete(current, keys[len(keys)-1])
		s.dirty = true
	}
}

// Clear removes all data, including flash entries and the CSRF secret.
func (s *Session) Clear() {
	if s == nil {
		return
	}
	s.Data = make(map[string]any)
	s.dirty = true
}

// Touch updates the last activity time.
func (s *Session) Touch() {
	if s == nil {
		return
	}
	s.LastActivityAt = time.Now().UTC()
}

// Dirty reports whether the session was mutated since load.
func (s *Session) Dirty() bool {
	return s != nil && s.dirty
}

// asMap normalizes nested mappings. JSON decoding always yields
// map[string]any, so a single case covers both fresh and reloaded sessions.
func asMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}
