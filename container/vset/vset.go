// Package vset implements parse value sets: runtime-populated sets of parser select values.
package vset

import (
	"encoding/hex"
	"sync"

	"github.com/flexsw/flexsw/core/swerr"
)

// Set is a named parse value set.
type Set struct {
	mu       sync.Mutex
	name     string
	bitwidth int
	values   map[string][]byte
}

// New creates a parse value set.
func New(name string, bitwidth int) *Set {
	return &Set{name: name, bitwidth: bitwidth, values: map[string][]byte{}}
}

// Name returns the set name.
func (s *Set) Name() string { return s.name }

// Bitwidth returns the compressed bit width of values.
func (s *Set) Bitwidth() int { return s.bitwidth }

func (s *Set) checkValue(value []byte) error {
	max := (s.bitwidth + 7) / 8
	if len(value) == 0 || len(value) > max {
		return swerr.New(swerr.InvalidCommandError, "parse vset %s value must be 1..%d octets", s.name, max)
	}
	return nil
}

// Add inserts a value. Adding a present value is a no-op.
func (s *Set) Add(value []byte) error {
	if e := s.checkValue(value); e != nil {
		return e
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[hex.EncodeToString(value)] = append([]byte(nil), value...)
	return nil
}

// Remove deletes a value. Removing an absent value is a no-op.
func (s *Set) Remove(value []byte) error {
	if e := s.checkValue(value); e != nil {
		return e
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, hex.EncodeToString(value))
	return nil
}

// Contains reports whether a value is present.
func (s *Set) Contains(value []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.values[hex.EncodeToString(value)]
	return ok
}

// Get returns a copy of every value.
func (s *Set) Get() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	values := make([][]byte, 0, len(s.values))
	for _, v := range s.values {
		values = append(values, append([]byte(nil), v...))
	}
	return values
}

// Clear removes every value.
func (s *Set) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = map[string][]byte{}
}
