// Package table implements match-action tables and action profiles.
package table

import (
	"sync"

	"github.com/flexsw/flexsw/container/meter"
	"github.com/flexsw/flexsw/core/swerr"
)

// Type identifies how a table selects its action.
type Type int

// Table types.
const (
	// Simple tables carry an action on every entry.
	Simple Type = iota
	// Indirect tables point entries at action profile members.
	Indirect
	// IndirectWS tables point entries at members or selector groups.
	IndirectWS
)

func (t Type) String() string {
	switch t {
	case Simple:
		return "simple"
	case Indirect:
		return "indirect"
	case IndirectWS:
		return "indirect_ws"
	}
	return "unknown"
}

// Config describes a table at build time.
type Config struct {
	Name           string
	Type           Type
	KeyKinds       []MatchKind
	Actions        []string
	MaxSize        int
	WithCounters   bool
	WithTimeout    bool
	MeterRateCount int
	Profile        *Profile
}

// Table is one match-action table.
type Table struct {
	mu  sync.Mutex
	cfg Config

	hasTernary  bool
	entries     map[EntryHandle]*Entry
	lookup      Lookup
	nextHandle  EntryHandle
	defaultEnt  *Entry
	initDefault *Entry
	actions     map[string]struct{}
}

// New creates a table.
func New(cfg Config, factory LookupFactory) *Table {
	if factory == nil {
		factory = DefaultLookupFactory{}
	}
	t := &Table{
		cfg:     cfg,
		entries: map[EntryHandle]*Entry{},
		lookup:  factory.NewLookup(cfg.KeyKinds, cfg.MaxSize),
		actions: map[string]struct{}{},
	}
	for _, k := range cfg.KeyKinds {
		if k == MatchTernary {
			t.hasTernary = true
		}
	}
	for _, a := range cfg.Actions {
		t.actions[a] = struct{}{}
	}
	return t
}

// Name returns the table name.
func (t *Table) Name() string { return t.cfg.Name }

// Type returns the table type.
func (t *Table) Type() Type { return t.cfg.Type }

// Profile returns the action profile of an indirect table, or nil.
func (t *Table) Profile() *Profile { return t.cfg.Profile }

// NumEntries returns the number of entries.
func (t *Table) NumEntries() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

func (t *Table) checkAction(name string) error {
	if _, ok := t.actions[name]; !ok {
		return swerr.New(swerr.ActionNotFound, "table %s has no action %s", t.cfg.Name, name)
	}
	return nil
}

func (t *Table) checkKey(key []MatchKeyParam, priority int) (string, error) {
	if t.hasTernary && priority < 0 {
		return "", swerr.New(swerr.PriorityRequired, "table %s has ternary fields", t.cfg.Name)
	}
	ks := keyString(key, priority, t.hasTernary)
	if _, ok := t.lookup.Find(ks); ok {
		return "", swerr.New(swerr.DuplicateEntry, "table %s already matches this key", t.cfg.Name)
	}
	return ks, nil
}

func (t *Table) insert(en *Entry, ks string) EntryHandle {
	t.nextHandle++
	en.Handle = t.nextHandle
	t.entries[en.Handle] = en
	t.lookup.Add(ks, en.Handle)
	return en.Handle
}

// AddEntry adds a direct entry to a simple table.
func (t *Table) AddEntry(key []MatchKeyParam, actionName string, data ActionData, priority int) (EntryHandle, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cfg.Type != Simple {
		return 0, swerr.New(swerr.WrongTableType, "table %s is %s", t.cfg.Name, t.cfg.Type)
	}
	if e := t.checkAction(actionName); e != nil {
		return 0, e
	}
	ks, e := t.checkKey(key, priority)
	if e != nil {
		return 0, e
	}
	en := &Entry{
		Key:        append([]MatchKeyParam(nil), key...),
		Priority:   priority,
		ActionName: actionName,
		ActionData: append(ActionData(nil), data...),
	}
	return t.insert(en, ks), nil
}

// ModifyEntry replaces the action of a direct entry.
func (t *Table) ModifyEntry(handle EntryHandle, actionName string, data ActionData) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cfg.Type != Simple {
		return swerr.New(swerr.WrongTableType, "table %s is %s", t.cfg.Name, t.cfg.Type)
	}
	if e := t.checkAction(actionName); e != nil {
		return e
	}
	en, ok := t.entries[handle]
	if !ok {
		return swerr.New(swerr.InvalidHandle, "table %s has no entry %d", t.cfg.Name, handle)
	}
	en.ActionName = actionName
	en.ActionData = append(ActionData(nil), data...)
	return nil
}

// DeleteEntry removes an entry by handle.
func (t *Table) DeleteEntry(handle EntryHandle) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	en, ok := t.entries[handle]
	if !ok {
		return swerr.New(swerr.InvalidHandle, "table %s has no entry %d", t.cfg.Name, handle)
	}
	t.lookup.Remove(keyString(en.Key, en.Priority, t.hasTernary))
	delete(t.entries, handle)
	return nil
}

// SetDefaultAction sets the default entry of a simple table.
func (t *Table) SetDefaultAction(actionName string, data ActionData) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cfg.Type != Simple {
		return swerr.New(swerr.WrongTableType, "table %s is %s", t.cfg.Name, t.cfg.Type)
	}
	if e := t.checkAction(actionName); e != nil {
		return e
	}
	t.defaultEnt = &Entry{ActionName: actionName, ActionData: append(ActionData(nil), data...)}
	return nil
}

// SetInitialDefault records the config-time default entry, used by ResetDefaultEntry.
func (t *Table) SetInitialDefault(actionName string, data ActionData) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.initDefault = &Entry{ActionName: actionName, ActionData: append(ActionData(nil), data...)}
	t.defaultEnt = t.initDefault.clone()
}

// ResetDefaultEntry restores the config-time default entry.
func (t *Table) ResetDefaultEntry() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.initDefault == nil {
		t.defaultEnt = nil
		return nil
	}
	t.defaultEnt = t.initDefault.clone()
	return nil
}

// GetDefaultEntry returns a copy of the default entry.
func (t *Table) GetDefaultEntry() (Entry, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.defaultEnt == nil {
		return Entry{}, swerr.New(swerr.InvalidHandle, "table %s has no default entry", t.cfg.Name)
	}
	return *t.defaultEnt.clone(), nil
}

// ClearEntries removes every entry; optionally also the default entry.
func (t *Table) ClearEntries(resetDefault bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = map[EntryHandle]*Entry{}
	t.lookup.Clear()
	if resetDefault {
		if t.initDefault != nil {
			t.defaultEnt = t.initDefault.clone()
		} else {
			t.defaultEnt = nil
		}
	}
}

// GetEntry returns a copy of one entry.
func (t *Table) GetEntry(handle EntryHandle) (Entry, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	en, ok := t.entries[handle]
	if !ok {
		return Entry{}, swerr.New(swerr.InvalidHandle, "table %s has no entry %d", t.cfg.Name, handle)
	}
	return *en.clone(), nil
}

// GetEntries returns a copy of every entry.
func (t *Table) GetEntries() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	entries := make([]Entry, 0, len(t.entries))
	for _, en := range t.entries {
		entries = append(entries, *en.clone())
	}
	return entries
}

// GetEntryFromKey returns a copy of the entry matching a key.
func (t *Table) GetEntryFromKey(key []MatchKeyParam, priority int) (Entry, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	h, ok := t.lookup.Find(keyString(key, priority, t.hasTernary))
	if !ok {
		return Entry{}, swerr.New(swerr.InvalidHandle, "table %s has no entry for this key", t.cfg.Name)
	}
	return *t.entries[h].clone(), nil
}

// SetEntryTTL sets the ageing timeout of an entry.
func (t *Table) SetEntryTTL(handle EntryHandle, ttlMillis uint32) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.cfg.WithTimeout {
		return swerr.New(swerr.InvalidCommandError, "table %s does not support timeout", t.cfg.Name)
	}
	en, ok := t.entries[handle]
	if !ok {
		return swerr.New(swerr.InvalidHandle, "table %s has no entry %d", t.cfg.Name, handle)
	}
	en.TTLMillis = ttlMillis
	return nil
}

// ReadCounters returns the direct counters of an entry.
func (t *Table) ReadCounters(handle EntryHandle) (bytes, packets uint64, e error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.cfg.WithCounters {
		return 0, 0, swerr.New(swerr.InvalidCommandError, "table %s has no direct counters", t.cfg.Name)
	}
	en, ok := t.entries[handle]
	if !ok {
		return 0, 0, swerr.New(swerr.InvalidHandle, "table %s has no entry %d", t.cfg.Name, handle)
	}
	return en.CounterBytes, en.CounterPackets, nil
}

// WriteCounters overwrites the direct counters of an entry.
func (t *Table) WriteCounters(handle EntryHandle, bytes, packets uint64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.cfg.WithCounters {
		return swerr.New(swerr.InvalidCommandError, "table %s has no direct counters", t.cfg.Name)
	}
	en, ok := t.entries[handle]
	if !ok {
		return swerr.New(swerr.InvalidHandle, "table %s has no entry %d", t.cfg.Name, handle)
	}
	en.CounterBytes, en.CounterPackets = bytes, packets
	return nil
}

// ResetCounters zeroes the direct counters of every entry.
func (t *Table) ResetCounters() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.cfg.WithCounters {
		return swerr.New(swerr.InvalidCommandError, "table %s has no direct counters", t.cfg.Name)
	}
	for _, en := range t.entries {
		en.CounterBytes, en.CounterPackets = 0, 0
	}
	return nil
}

// SetMeterRates configures the direct meter rates of an entry.
func (t *Table) SetMeterRates(handle EntryHandle, rates []meter.RateConfig) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cfg.MeterRateCount == 0 {
		return swerr.New(swerr.InvalidMeterOperation, "table %s has no direct meters", t.cfg.Name)
	}
	if len(rates) != t.cfg.MeterRateCount {
		return swerr.New(swerr.InvalidMeterOperation, "table %s expects %d rates, got %d", t.cfg.Name, t.cfg.MeterRateCount, len(rates))
	}
	en, ok := t.entries[handle]
	if !ok {
		return swerr.New(swerr.InvalidHandle, "table %s has no entry %d", t.cfg.Name, handle)
	}
	en.MeterRates = append([]meter.RateConfig(nil), rates...)
	return nil
}

// GetMeterRates returns the direct meter rates of an entry.
func (t *Table) GetMeterRates(handle EntryHandle) ([]meter.RateConfig, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cfg.MeterRateCount == 0 {
		return nil, swerr.New(swerr.InvalidMeterOperation, "table %s has no direct meters", t.cfg.Name)
	}
	en, ok := t.entries[handle]
	if !ok {
		return nil, swerr.New(swerr.InvalidHandle, "table %s has no entry %d", t.cfg.Name, handle)
	}
	return append([]meter.RateConfig(nil), en.MeterRates...), nil
}

// ResetMeterRates clears the direct meter rates of an entry.
func (t *Table) ResetMeterRates(handle EntryHandle) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cfg.MeterRateCount == 0 {
		return swerr.New(swerr.InvalidMeterOperation, "table %s has no direct meters", t.cfg.Name)
	}
	en, ok := t.entries[handle]
	if !ok {
		return swerr.New(swerr.InvalidHandle, "table %s has no entry %d", t.cfg.Name, handle)
	}
	en.MeterRates = nil
	return nil
}

// Snapshot captures entries and the default entry, for state serialization.
func (t *Table) Snapshot() (entries []Entry, defaultEntry *Entry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	entries = make([]Entry, 0, len(t.entries))
	for _, en := range t.entries {
		entries = append(entries, *en.clone())
	}
	if t.defaultEnt != nil {
		defaultEntry = t.defaultEnt.clone()
	}
	return entries, defaultEntry
}

// Restore replaces entries and the default entry from a snapshot.
func (t *Table) Restore(entries []Entry, defaultEntry *Entry) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = map[EntryHandle]*Entry{}
	t.lookup.Clear()
	t.nextHandle = 0
	for i := range entries {
		en := entries[i].clone()
		ks := keyString(en.Key, en.Priority, t.hasTernary)
		if _, ok := t.lookup.Find(ks); ok {
			return swerr.New(swerr.StateMismatch, "table %s snapshot has duplicate keys", t.cfg.Name)
		}
		t.entries[en.Handle] = en
		t.lookup.Add(ks, en.Handle)
		if en.Handle > t.nextHandle {
			t.nextHandle = en.Handle
		}
	}
	t.defaultEnt = defaultEntry
	return nil
}

// CloneEmpty creates a table with the same configuration but no entries.
func (t *Table) CloneEmpty(name string, factory LookupFactory) *Table {
	t.mu.Lock()
	cfg := t.cfg
	cfg.Name = name
	var initDefault *Entry
	if t.initDefault != nil {
		initDefault = t.initDefault.clone()
	}
	t.mu.Unlock()

	dup := New(cfg, factory)
	if initDefault != nil {
		dup.SetInitialDefault(initDefault.ActionName, initDefault.ActionData)
	}
	return dup
}
