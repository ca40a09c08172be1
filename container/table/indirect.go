package table

import (
	"github.com/flexsw/flexsw/core/swerr"
)

func (t *Table) checkIndirect() error {
	if t.cfg.Type != Indirect && t.cfg.Type != IndirectWS {
		return swerr.New(swerr.WrongTableType, "table %s is %s", t.cfg.Name, t.cfg.Type)
	}
	if t.cfg.Profile == nil {
		return swerr.New(swerr.ActProfNotFound, "table %s has no action profile", t.cfg.Name)
	}
	return nil
}

// IndirectAddEntry adds an entry pointing at an action profile member.
func (t *Table) IndirectAddEntry(key []MatchKeyParam, mbr MemberHandle, priority int) (EntryHandle, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if e := t.checkIndirect(); e != nil {
		return 0, e
	}
	if !t.cfg.Profile.HasMember(mbr) {
		return 0, swerr.New(swerr.MemberNotFound, "profile %s has no member %d", t.cfg.Profile.Name(), mbr)
	}
	ks, e := t.checkKey(key, priority)
	if e != nil {
		return 0, e
	}
	en := &Entry{
		Key:      append([]MatchKeyParam(nil), key...),
		Priority: priority,
		Member:   mbr,
	}
	return t.insert(en, ks), nil
}

// IndirectModifyEntry repoints an entry at another member.
func (t *Table) IndirectModifyEntry(handle EntryHandle, mbr MemberHandle) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if e := t.checkIndirect(); e != nil {
		return e
	}
	if !t.cfg.Profile.HasMember(mbr) {
		return swerr.New(swerr.MemberNotFound, "profile %s has no member %d", t.cfg.Profile.Name(), mbr)
	}
	en, ok := t.entries[handle]
	if !ok {
		return swerr.New(swerr.InvalidHandle, "table %s has no entry %d", t.cfg.Name, handle)
	}
	en.Member, en.IsGroup = mbr, false
	return nil
}

// IndirectDeleteEntry removes an indirect entry.
func (t *Table) IndirectDeleteEntry(handle EntryHandle) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if e := t.checkIndirect(); e != nil {
		return e
	}
	en, ok := t.entries[handle]
	if !ok {
		return swerr.New(swerr.InvalidHandle, "table %s has no entry %d", t.cfg.Name, handle)
	}
	t.lookup.Remove(keyString(en.Key, en.Priority, t.hasTernary))
	delete(t.entries, handle)
	return nil
}

// IndirectSetDefaultMember sets the default entry to a member.
func (t *Table) IndirectSetDefaultMember(mbr MemberHandle) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if e := t.checkIndirect(); e != nil {
		return e
	}
	if !t.cfg.Profile.HasMember(mbr) {
		return swerr.New(swerr.MemberNotFound, "profile %s has no member %d", t.cfg.Profile.Name(), mbr)
	}
	t.defaultEnt = &Entry{Member: mbr}
	return nil
}

// IndirectWSAddEntry adds an entry pointing at a selector group.
func (t *Table) IndirectWSAddEntry(key []MatchKeyParam, grp GroupHandle, priority int) (EntryHandle, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if e := t.checkWS(); e != nil {
		return 0, e
	}
	if !t.cfg.Profile.HasGroup(grp) {
		return 0, swerr.New(swerr.GroupNotFound, "profile %s has no group %d", t.cfg.Profile.Name(), grp)
	}
	ks, e := t.checkKey(key, priority)
	if e != nil {
		return 0, e
	}
	en := &Entry{
		Key:      append([]MatchKeyParam(nil), key...),
		Priority: priority,
		Group:    grp,
		IsGroup:  true,
	}
	return t.insert(en, ks), nil
}

// IndirectWSModifyEntry repoints an entry at another group.
func (t *Table) IndirectWSModifyEntry(handle EntryHandle, grp GroupHandle) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if e := t.checkWS(); e != nil {
		return e
	}
	if !t.cfg.Profile.HasGroup(grp) {
		return swerr.New(swerr.GroupNotFound, "profile %s has no group %d", t.cfg.Profile.Name(), grp)
	}
	en, ok := t.entries[handle]
	if !ok {
		return swerr.New(swerr.InvalidHandle, "table %s has no entry %d", t.cfg.Name, handle)
	}
	en.Group, en.IsGroup = grp, true
	return nil
}

// IndirectWSSetDefaultGroup sets the default entry to a group.
func (t *Table) IndirectWSSetDefaultGroup(grp GroupHandle) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if e := t.checkWS(); e != nil {
		return e
	}
	if !t.cfg.Profile.HasGroup(grp) {
		return swerr.New(swerr.GroupNotFound, "profile %s has no group %d", t.cfg.Profile.Name(), grp)
	}
	t.defaultEnt = &Entry{Group: grp, IsGroup: true}
	return nil
}

func (t *Table) checkWS() error {
	if t.cfg.Type != IndirectWS {
		return swerr.New(swerr.WrongTableType, "table %s is %s", t.cfg.Name, t.cfg.Type)
	}
	if t.cfg.Profile == nil {
		return swerr.New(swerr.ActProfNotFound, "table %s has no action profile", t.cfg.Name)
	}
	return nil
}
