// Package content holds the authored case content that actions and editors
// cross-reference by id. A Registry is built once during loading and passed
// explicitly to every component that resolves ids.
package content

import (
	"sort"

	"golang.org/x/text/cases"
)

// Store maps ids to content objects, optionally scoped under a parent id
// (for example an encounter). The zero scope "" is the global scope.
type Store[T any] struct {
	items map[string]map[string]T
	order map[string][]string
}

// NewStore creates an empty store.
func NewStore[T any]() *Store[T] {
	return &Store[T]{
		items: map[string]map[string]T{},
		order: map[string][]string{},
	}
}

// Add registers v under id in the given scope. Re-adding an id replaces the
// value but keeps its original position.
func (s *Store[T]) Add(id string, v T, scope ...string) {
	sc := scopeOf(scope)
	m, ok := s.items[sc]
	if !ok {
		m = map[string]T{}
		s.items[sc] = m
	}
	if _, exists := m[id]; !exists {
		s.order[sc] = append(s.order[sc], id)
	}
	m[id] = v
}

// Get returns the object registered under id in the given scope.
func (s *Store[T]) Get(id string, scope ...string) (T, bool) {
	v, ok := s.items[scopeOf(scope)][id]
	return v, ok
}

// Has reports whether id is registered in the given scope.
func (s *Store[T]) Has(id string, scope ...string) bool {
	_, ok := s.Get(id, scope...)
	return ok
}

// IDs returns ids in the given scope in registration order.
func (s *Store[T]) IDs(scope ...string) []string {
	ids := s.order[scopeOf(scope)]
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}

// Len returns the number of ids in the given scope.
func (s *Store[T]) Len(scope ...string) int {
	return len(s.order[scopeOf(scope)])
}

func scopeOf(scope []string) string {
	if len(scope) == 0 {
		return ""
	}
	return scope[0]
}

// Character is an actor that can appear on the left or right of the screen.
type Character struct {
	ID             string
	Name           string
	Emotions       []string
	DefaultEmotion string
}

// Emotion returns the character's canonical spelling of emotionID, matched
// case-insensitively.
func (c *Character) Emotion(emotionID string) (string, bool) {
	want := fold(emotionID)
	for _, e := range c.Emotions {
		if fold(e) == want {
			return e, true
		}
	}
	return "", false
}

// Evidence is an item the player can present.
type Evidence struct {
	ID          string
	Name        string
	Description string
}

// Partner is a character that can accompany the player.
type Partner struct {
	ID          string
	CharacterID string
	Name        string
}

// Location is a place the player can move to.
type Location struct {
	ID          string
	Name        string
	EncounterID string
}

// Registry is the content context for a loaded case.
type Registry struct {
	Characters *Store[*Character]
	Evidence   *Store[*Evidence]
	Partners   *Store[*Partner]
	Locations  *Store[*Location]
	Flags      *Store[string]
	Sounds     *Store[string]
	Music      *Store[string]
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		Characters: NewStore[*Character](),
		Evidence:   NewStore[*Evidence](),
		Partners:   NewStore[*Partner](),
		Locations:  NewStore[*Location](),
		Flags:      NewStore[string](),
		Sounds:     NewStore[string](),
		Music:      NewStore[string](),
	}
}

// Character looks up a character by id, matched case-insensitively.
func (r *Registry) Character(id string) (*Character, bool) {
	if c, ok := r.Characters.Get(id); ok {
		return c, true
	}
	want := fold(id)
	for _, cid := range r.Characters.IDs() {
		if fold(cid) == want {
			c, _ := r.Characters.Get(cid)
			return c, true
		}
	}
	return nil, false
}

// CharacterName returns the display name for id, or id itself.
func (r *Registry) CharacterName(id string) string {
	if c, ok := r.Character(id); ok && c.Name != "" {
		return c.Name
	}
	return id
}

// EvidenceName returns the display name for id, or id itself.
func (r *Registry) EvidenceName(id string) string {
	if e, ok := r.Evidence.Get(id); ok && e.Name != "" {
		return e.Name
	}
	return id
}

// SortedCharacterIDs returns all character ids sorted alphabetically.
func (r *Registry) SortedCharacterIDs() []string {
	ids := r.Characters.IDs()
	sort.Strings(ids)
	return ids
}

func fold(s string) string {
	return cases.Fold().String(s)
}
