package capability

import (
	"strconv"
	"sync"

	"github.com/reoring/oamap/internal/naming"
)

// Remap records a key whose symbol differs from the key itself.
type Remap struct {
	Key    string
	Symbol string
}

// Symbols allocates identifier names for keys. The same key always gets the
// same symbol; distinct keys never collide with each other or with reserved
// names. Safe for concurrent use.
type Symbols struct {
	mu       sync.Mutex
	used     map[string]bool
	names    map[string]string
	remapped []Remap
}

// NewSymbols returns an allocator that avoids the reserved names (typically
// every identifier already used by the code being rewritten).
func NewSymbols(reserved ...string) *Symbols {
	s := &Symbols{used: make(map[string]bool), names: make(map[string]string)}
	s.Reserve(reserved...)
	return s
}

// Reserve marks names as taken.
func (s *Symbols) Reserve(names ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range names {
		s.used[n] = true
	}
}

// Sym returns the symbol for key, allocating one on first use: the key with
// non-identifier characters removed, suffixed _2, _3, ... until unused.
func (s *Symbols) Sym(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sym, ok := s.names[key]; ok {
		return sym
	}
	prefix := naming.Sanitize(key)
	trial := prefix
	for n := 2; s.used[trial]; n++ {
		trial = prefix + "_" + strconv.Itoa(n)
	}
	s.used[trial] = true
	s.names[key] = trial
	if trial != key {
		s.remapped = append(s.remapped, Remap{Key: key, Symbol: trial})
	}
	return trial
}

// Remapped lists the keys whose symbol is not the key, in allocation order.
func (s *Symbols) Remapped() []Remap {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Remap(nil), s.remapped...)
}

// Names returns a copy of the key to symbol table.
func (s *Symbols) Names() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.names))
	for k, v := range s.names {
		out[k] = v
	}
	return out
}
