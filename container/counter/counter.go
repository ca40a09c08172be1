// Package counter implements counter arrays for byte and packet statistics.
package counter

import (
	"sync/atomic"

	"github.com/flexsw/flexsw/core/swerr"
)

// Counter counts bytes and packets.
type Counter struct {
	bytes   uint64
	packets uint64
}

// Read returns the current byte and packet counts.
func (c *Counter) Read() (bytes, packets uint64) {
	return atomic.LoadUint64(&c.bytes), atomic.LoadUint64(&c.packets)
}

// Write overwrites the byte and packet counts.
func (c *Counter) Write(bytes, packets uint64) {
	atomic.StoreUint64(&c.bytes, bytes)
	atomic.StoreUint64(&c.packets, packets)
}

// Increment adds one packet of the given length.
func (c *Counter) Increment(pktLen uint64) {
	atomic.AddUint64(&c.bytes, pktLen)
	atomic.AddUint64(&c.packets, 1)
}

// Array is a named array of counters.
type Array struct {
	name     string
	counters []Counter
}

// New creates a counter array.
func New(name string, size int) *Array {
	return &Array{name: name, counters: make([]Counter, size)}
}

// Name returns the array name.
func (a *Array) Name() string { return a.name }

// Size returns the number of counters.
func (a *Array) Size() int { return len(a.counters) }

// At returns the counter at an index.
func (a *Array) At(idx int) (*Counter, error) {
	if idx < 0 || idx >= len(a.counters) {
		return nil, swerr.New(swerr.InvalidIndex, "counter %s index %d out of range", a.name, idx)
	}
	return &a.counters[idx], nil
}

// Read returns byte and packet counts at an index.
func (a *Array) Read(idx int) (bytes, packets uint64, e error) {
	c, e := a.At(idx)
	if e != nil {
		return 0, 0, e
	}
	bytes, packets = c.Read()
	return bytes, packets, nil
}

// Write overwrites byte and packet counts at an index.
func (a *Array) Write(idx int, bytes, packets uint64) error {
	c, e := a.At(idx)
	if e != nil {
		return e
	}
	c.Write(bytes, packets)
	return nil
}

// Reset zeroes all counters.
func (a *Array) Reset() {
	for i := range a.counters {
		a.counters[i].Write(0, 0)
	}
}

// Snapshot captures all counter values, for state serialization.
func (a *Array) Snapshot() (values [][2]uint64) {
	values = make([][2]uint64, len(a.counters))
	for i := range a.counters {
		values[i][0], values[i][1] = a.counters[i].Read()
	}
	return values
}

// Restore overwrites all counter values from a snapshot.
func (a *Array) Restore(values [][2]uint64) error {
	if len(values) != len(a.counters) {
		return swerr.New(swerr.StateMismatch, "counter %s has %d entries, snapshot has %d", a.name, len(a.counters), len(values))
	}
	for i, v := range values {
		a.counters[i].Write(v[0], v[1])
	}
	return nil
}
