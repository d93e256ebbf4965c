package session

// Flash entry states. Stored as plain strings so entries survive the JSON
// round trip through any store backend.
const (
	flashFresh    = "fresh"
	flashConsumed = "consumed"
)

// Flash stores a single-read value under the reserved flash namespace.
// The value survives the current save cycle and exactly one subsequent
// request: set now, readable on the very next request, gone after that.
func (s *Session) Flash(key string, value any) {
	if s == nil {
		return
	}
	if s.Data == nil {
		s.Data = make(map[string]any)
	}

	entries, ok := asMap(s.Data[flashDataKey])
	if !ok {
		entries = make(map[string]any)
		s.Data[flashDataKey] = entries
	}

	entries[key] = map[string]any{
		"value": value,
		"state": flashFresh,
	}
	s.dirty = true
}

// GetFlash returns a flash value and marks it consumed, so the next Save
// removes it. Reading a key twice within one request returns the same value.
func (s *Session) GetFlash(key string) (any, bool) {
	entry, ok := s.flashEntry(key)
	if !ok {
		return nil, false
	}

	if entry["state"] != flashConsumed {
		entry["state"] = flashConsumed
		s.dirty = true
	}
	return entry["value"], true
}

// Reflash re-arms the named flash keys so they survive one more request.
// With no arguments, every current flash entry is re-armed.
func (s *Session) Reflash(keys ...string) {
	if s == nil || s.Data == nil {
		return
	}
	entries, ok := asMap(s.Data[flashDataKey])
	if !ok {
		return
	}

	if len(keys) == 0 {
		for k := range entries {
			keys = append(keys, k)
		}
	}

	for _, key := range keys {
		if entry, ok := asMap(entries[key]); ok {
			entry["state"] = flashFresh
			s.dirty = true
		}
	}
}

// ageFlashes advances flash state as part of Save: consumed entries are
// removed, fresh-but-unread entries are demoted to consumed so they live
// through exactly one more request.
func (s *Session) ageFlashes() {
	if s == nil || s.Data == nil {
		return
	}
	entries, ok := asMap(s.Data[flashDataKey])
	if !ok {
		return
	}

	for key, raw := range entries {
		entry, ok := asMap(raw)
		if !ok {
			delete(entries, key)
			s.dirty = true
			continue
		}
		switch entry["state"] {
		case flashConsumed:
			delete(entries, key)
			s.dirty = true
		case flashFresh:
			entry["state"] = flashConsumed
			s.dirty = true
		}
	}

	if len(entries) == 0 {
		delete(s.Data, flashDataKey)
	}
}

func (s *Session) flashEntry(key string) (map[string]any, bool) {
	if s == nil || s.Data == nil {
		return nil, false
	}
	entries, ok := asMap(s.Data[flashDataKey])
	if !ok {
		return nil, false
	}
	entry, ok := asMap(entries[key])
	return entry, ok
}
