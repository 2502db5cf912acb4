// Package stack provides the ordered entry collections behind layer and mask stacks.
//
// A [Stack] is an ordered list of [Entry] records plus a selection. Order is the
// compositing order and the source of truth for node naming: the engine derives each
// entry's node name from its current index, never from its identity. The identity is
// a random token assigned once at creation, used only to recover an entry's position
// after the list has been reordered (see [Stack.Find]).
//
// Stack is not safe for concurrent use; the layer engine runs every command to
// completion on a single goroutine.
package stack

import (
	"errors"
	"math/rand/v2"
	"slices"
	"strconv"
)

// NoSelection is the selected index of a stack with nothing selected.
const NoSelection = -1

// identitySpace bounds the random identity tokens: [0, identitySpace).
const identitySpace = 999999

var (
	// ErrIndexOutOfRange is returned when an index does not address an entry.
	ErrIndexOutOfRange = errors.New("stack index out of range")

	// ErrDuplicateIdentity is returned by [Stack.Insert] when the entry's identity
	// is already present in the stack.
	ErrDuplicateIdentity = errors.New("duplicate entry identity")

	// ErrEmptyIdentity is returned by [Stack.Insert] for entries without an identity.
	ErrEmptyIdentity = errors.New("entry identity must not be empty")
)

// Entry is one layer or mask record.
type Entry struct {
	ID     string `json:"id"`               // Random lookup token, never reused or mutated
	Kind   string `json:"kind,omitempty"`   // Template kind the entry was created from
	Hidden bool   `json:"hidden,omitempty"` // Display-only visibility flag
}

// Stack is an ordered collection of entries with a selection.
// The zero value is not usable; use [New].
type Stack struct {
	entries  []Entry
	selected int
	rng      *rand.Rand
}

// Option configures a Stack.
type Option func(*Stack)

// WithRand sets the random source used to draw entry identities.
// Tests use a seeded source for reproducible identities.
func WithRand(r *rand.Rand) Option {
	return func(s *Stack) { s.rng = r }
}

// WithSeed seeds the identity source deterministically.
func WithSeed(seed uint64) Option {
	return WithRand(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

// New creates an empty stack with no selection.
func New(opts ...Option) *Stack {
	s := &Stack{selected: NoSelection}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return s
}

// FromEntries rebuilds a stack from persisted entries and selection.
// An out-of-range selection is cleared.
func FromEntries(entries []Entry, selected int, opts ...Option) (*Stack, error) {
	s := New(opts...)
	for _, e := range entries {
		if err := s.Insert(len(s.entries), e); err != nil {
			return nil, err
		}
	}
	if selected >= 0 && selected < len(s.entries) {
		s.selected = selected
	}
	return s, nil
}

// Len returns the number of entries.
func (s *Stack) Len() int { return len(s.entries) }

// Entries returns a copy of the entries in stack order.
func (s *Stack) Entries() []Entry { return slices.Clone(s.entries) }

// Entry returns the entry at index i.
func (s *Stack) Entry(i int) (Entry, bool) {
	if i < 0 || i >= len(s.entries) {
		return Entry{}, false
	}
	return s.entries[i], true
}

// Selected returns the selected index, or [NoSelection].
func (s *Stack) Selected() int { return s.selected }

// Select sets the selection to index i.
func (s *Stack) Select(i int) error {
	if i < 0 || i >= len(s.entries) {
		return ErrIndexOutOfRange
	}
	s.selected = i
	return nil
}

// Deselect clears the selection.
func (s *Stack) Deselect() { s.selected = NoSelection }

// Find returns the current index of the entry with the given identity, or -1.
func (s *Stack) Find(id string) int {
	return slices.IndexFunc(s.entries, func(e Entry) bool { return e.ID == id })
}

// SetHidden updates the visibility flag of the entry at index i.
func (s *Stack) SetHidden(i int, hidden bool) error {
	if i < 0 || i >= len(s.entries) {
		return ErrIndexOutOfRange
	}
	s.entries[i].Hidden = hidden
	return nil
}

// NewIdentity draws a random identity that does not collide with any entry.
// Collisions are resolved by resampling.
func (s *Stack) NewIdentity() string {
	for {
		id := strconv.Itoa(s.rng.IntN(identitySpace))
		if s.Find(id) == -1 {
			return id
		}
	}
}

// AddSlot adds a new entry of the given kind and returns its index, which is
// also the new selection.
//
// With nothing selected the entry goes to the top of the stack (index 0).
// Otherwise it goes right after the selection, at selected+1 clamped to
// the valid range, and the selection follows it.
func (s *Stack) AddSlot(kind string) int {
	s.entries = append(s.entries, Entry{ID: s.NewIdentity(), Kind: kind})
	from := len(s.entries) - 1

	to := 0
	if s.selected != NoSelection {
		to = max(0, min(s.selected+1, len(s.entries)-1))
	}
	s.move(from, to)
	s.selected = to
	return to
}

// Insert places e at index i, shifting later entries up. The selection is not
// changed.
func (s *Stack) Insert(i int, e Entry) error {
	if i < 0 || i > len(s.entries) {
		return ErrIndexOutOfRange
	}
	if e.ID == "" {
		return ErrEmptyIdentity
	}
	if s.Find(e.ID) != -1 {
		return ErrDuplicateIdentity
	}
	s.entries = slices.Insert(s.entries, i, e)
	return nil
}

// Remove deletes the entry at index i and returns it. A selection after i
// shifts down with its entry. Removing the selected entry clamps the selection
// so that it still addresses an entry, or clears it when the stack becomes
// empty.
func (s *Stack) Remove(i int) (Entry, error) {
	if i < 0 || i >= len(s.entries) {
		return Entry{}, ErrIndexOutOfRange
	}
	e := s.entries[i]
	s.entries = slices.Delete(s.entries, i, i+1)
	switch {
	case len(s.entries) == 0:
		s.selected = NoSelection
	case i < s.selected:
		s.selected--
	case s.selected >= len(s.entries):
		s.selected = len(s.entries) - 1
	}
	return e, nil
}

// Move relocates the entry at index from to index to.
func (s *Stack) Move(from, to int) error {
	if from < 0 || from >= len(s.entries) || to < 0 || to >= len(s.entries) {
		return ErrIndexOutOfRange
	}
	s.move(from, to)
	return nil
}

func (s *Stack) move(from, to int) {
	if from == to {
		return
	}
	e := s.entries[from]
	s.entries = slices.Delete(s.entries, from, from+1)
	s.entries = slices.Insert(s.entries, to, e)
}
