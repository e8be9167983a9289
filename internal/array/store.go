// Package array holds the snapshot currently on display and fans changes
// out to the surfaces that draw it.
package array

import (
	"math/rand/v2"
	"slices"
	"sync"
)

// Default array shape.
const (
	DefaultLength   = 50
	DefaultMinValue = 1
	DefaultMaxValue = 100
)

// Snapshot is the full ordered array of bar heights at one instant.
type Snapshot []int

// Clone returns a copy of s.
func (s Snapshot) Clone() Snapshot {
	return slices.Clone(s)
}

// Last returns the last value, or 0 for an empty snapshot.
func (s Snapshot) Last() int {
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1]
}

// Update is delivered to subscribers on every change.
type Update struct {
	// Version increases by one on every Reset or Replace.
	Version uint64
	Values  Snapshot
	// Reset is set when the update came from Reset rather than Replace.
	Reset bool
}

// Options configures a Store.
type Options struct {
	Length   int
	MinValue int
	MaxValue int
	// Rand is the source for Reset. Nil uses the global source.
	Rand *rand.Rand
}

// DefaultOptions returns the default shape: fifty values in [1, 100].
func DefaultOptions() Options {
	return Options{
		Length:   DefaultLength,
		MinValue: DefaultMinValue,
		MaxValue: DefaultMaxValue,
	}
}

// Store holds the displayed snapshot. It is safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	opts    Options
	values  Snapshot
	version uint64
	nextSub int
	subs    map[int]chan Update
}

// New creates a Store seeded with a random snapshot. Zero fields in opts take
// their defaults.
func New(opts Options) *Store {
	if opts.Length <= 0 {
		opts.Length = DefaultLength
	}
	if opts.MinValue <= 0 {
		opts.MinValue = DefaultMinValue
	}
	if opts.MaxValue < opts.MinValue {
		opts.MaxValue = max(DefaultMaxValue, opts.MinValue)
	}

	s := &Store{
		opts: opts,
		subs: make(map[int]chan Update),
	}
	s.values = s.generate()
	return s
}

// Length returns the fixed snapshot length.
func (s *Store) Length() int {
	return s.opts.Length
}

// MaxValue returns the upper bound of generated values, used to scale bars.
func (s *Store) MaxValue() int {
	return s.opts.MaxValue
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values.Clone()
}

// Current returns a copy of the current snapshot together with its version.
func (s *Store) Current() Update {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Update{Version: s.version, Values: s.values.Clone()}
}

// Reset replaces the snapshot with fresh random values and returns a copy.
func (s *Store) Reset() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values = s.generate()
	s.publishLocked(true)
	return s.values.Clone()
}

// Replace swaps in a copy of values as the displayed snapshot.
func (s *Store) Replace(values Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values = values.Clone()
	s.publishLocked(false)
}

// Subscribe registers for updates. Delivery is latest-wins: a subscriber
// that falls behind only ever sees the newest update. The returned function
// unsubscribes and closes the channel.
func (s *Store) Subscribe() (<-chan Update, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan Update, 1)
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
			close(ch)
		})
	}
}

// publishLocked bumps the version and hands the new state to every
// subscriber without blocking. Must be called with s.mu held.
func (s *Store) publishLocked(reset bool) {
	s.version++
	for _, ch := range s.subs {
		u := Update{Version: s.version, Values: s.values.Clone(), Reset: reset}
		select {
		case ch <- u:
			continue
		default:
		}
		// Drop the stale pending update and retry once.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- u:
		default:
		}
	}
}

func (s *Store) generate() Snapshot {
	intN := rand.IntN
	if s.opts.Rand != nil {
		intN = s.opts.Rand.IntN
	}

	span := s.opts.MaxValue - s.opts.MinValue + 1
	values := make(Snapshot, s.opts.Length)
	for i := range values {
		values[i] = intN(span) + s.opts.MinValue
	}
	return values
}
