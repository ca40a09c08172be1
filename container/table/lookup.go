package table

import (
	binutils "github.com/jfoster/binary-utilities"
	"github.com/pkg/math"
)

// Lookup maps normalized match keys to entry handles.
// The control plane uses it for duplicate detection and key-based retrieval;
// dataplane lookup structures may implement richer interfaces on top.
type Lookup interface {
	Add(key string, handle EntryHandle)
	Find(key string) (EntryHandle, bool)
	Remove(key string)
	Clear()
}

// LookupFactory builds a Lookup for a table.
type LookupFactory interface {
	NewLookup(kinds []MatchKind, capacityHint int) Lookup
}

// Lookup capacity bounds for the default factory.
const (
	minLookupCapacity     = 16
	defaultLookupCapacity = 1024
	maxLookupCapacity     = 1 << 20
)

// AlignCapacity rounds a capacity hint to a power of two within bounds.
func AlignCapacity(capacity int) int {
	if capacity <= 0 {
		capacity = defaultLookupCapacity
	} else {
		capacity = int(binutils.NextPowerOfTwo(int64(capacity)))
	}
	return math.MinInt(math.MaxInt(minLookupCapacity, capacity), maxLookupCapacity)
}

// DefaultLookupFactory builds hash-map lookups sized to a power of two.
type DefaultLookupFactory struct{}

// NewLookup implements LookupFactory.
func (DefaultLookupFactory) NewLookup(kinds []MatchKind, capacityHint int) Lookup {
	return make(mapLookup, AlignCapacity(capacityHint))
}

type mapLookup map[string]EntryHandle

func (l mapLookup) Add(key string, handle EntryHandle) { l[key] = handle }

func (l mapLookup) Find(key string) (EntryHandle, bool) {
	h, ok := l[key]
	return h, ok
}

func (l mapLookup) Remove(key string) { delete(l, key) }

func (l mapLookup) Clear() {
	for k := range l {
		delete(l, k)
	}
}
