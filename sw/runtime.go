package sw

import (
	"github.com/flexsw/flexsw/container/crcmgr"
	"github.com/flexsw/flexsw/container/meter"
	"github.com/flexsw/flexsw/container/table"
)

// Runtime operations of one context. Each is a thin dispatch: take the
// shared lock, resolve the named object in the live graph, forward.

// NumEntries returns the number of entries in a table.
func (c *Context) NumEntries(tableName string) (int, error) {
	c.requestMu.RLock()
	defer c.requestMu.RUnlock()
	t, e := c.tableRef(tableName)
	if e != nil {
		return 0, e
	}
	return t.NumEntries(), nil
}

// ClearEntries removes all entries of a table.
func (c *Context) ClearEntries(tableName string, resetDefault bool) error {
	c.requestMu.RLock()
	defer c.requestMu.RUnlock()
	t, e := c.tableRef(tableName)
	if e != nil {
		return e
	}
	t.ClearEntries(resetDefault)
	return nil
}

// AddEntry adds an entry to a simple match table.
func (c *Context) AddEntry(tableName string, key []table.MatchKeyParam, actionName string, data table.ActionData, priority int) (table.EntryHandle, error) {
	c.requestMu.RLock()
	defer c.requestMu.RUnlock()
	t, e := c.tableRef(tableName)
	if e != nil {
		return 0, e
	}
	return t.AddEntry(key, actionName, data, priority)
}

// SetDefaultAction sets the default action of a simple match table.
func (c *Context) SetDefaultAction(tableName, actionName string, data table.ActionData) error {
	c.requestMu.RLock()
	defer c.requestMu.RUnlock()
	t, e := c.tableRef(tableName)
	if e != nil {
		return e
	}
	return t.SetDefaultAction(actionName, data)
}

// ResetDefaultEntry restores the config-time default entry of a table.
func (c *Context) ResetDefaultEntry(tableName string) error {
	c.requestMu.RLock()
	defer c.requestMu.RUnlock()
	t, e := c.tableRef(tableName)
	if e != nil {
		return e
	}
	return t.ResetDefaultEntry()
}

// DeleteEntry removes an entry by handle.
func (c *Context) DeleteEntry(tableName string, handle table.EntryHandle) error {
	c.requestMu.RLock()
	defer c.requestMu.RUnlock()
	t, e := c.tableRef(tableName)
	if e != nil {
		return e
	}
	return t.DeleteEntry(handle)
}

// ModifyEntry replaces the action of an entry.
func (c *Context) ModifyEntry(tableName string, handle table.EntryHandle, actionName string, data table.ActionData) error {
	c.requestMu.RLock()
	defer c.requestMu.RUnlock()
	t, e := c.tableRef(tableName)
	if e != nil {
		return e
	}
	return t.ModifyEntry(handle, actionName, data)
}

// SetEntryTTL sets the ageing timeout of an entry.
func (c *Context) SetEntryTTL(tableName string, handle table.EntryHandle, ttlMillis uint32) error {
	c.requestMu.RLock()
	defer c.requestMu.RUnlock()
	t, e := c.tableRef(tableName)
	if e != nil {
		return e
	}
	return t.SetEntryTTL(handle, ttlMillis)
}

// ReadCounters returns the direct counters of an entry.
func (c *Context) ReadCounters(tableName string, handle table.EntryHandle) (bytes, packets uint64, e error) {
	c.requestMu.RLock()
	defer c.requestMu.RUnlock()
	t, e := c.tableRef(tableName)
	if e != nil {
		return 0, 0, e
	}
	return t.ReadCounters(handle)
}

// ResetCounters zeroes the direct counters of a table.
func (c *Context) ResetCounters(tableName string) error {
	c.requestMu.RLock()
	defer c.requestMu.RUnlock()
	t, e := c.tableRef(tableName)
	if e != nil {
		return e
	}
	return t.ResetCounters()
}

// WriteCounters overwrites the direct counters of an entry.
func (c *Context) WriteCounters(tableName string, handle table.EntryHandle, bytes, packets uint64) error {
	c.requestMu.RLock()
	defer c.requestMu.RUnlock()
	t, e := c.tableRef(tableName)
	if e != nil {
		return e
	}
	return t.WriteCounters(handle, bytes, packets)
}

// SetMeterRates configures the direct meter of an entry.
func (c *Context) SetMeterRates(tableName string, handle table.EntryHandle, rates []meter.RateConfig) error {
	c.requestMu.RLock()
	defer c.requestMu.RUnlock()
	t, e := c.tableRef(tableName)
	if e != nil {
		return e
	}
	return t.SetMeterRates(handle, rates)
}

// GetMeterRates returns the direct meter rates of an entry.
func (c *Context) GetMeterRates(tableName string, handle table.EntryHandle) ([]meter.RateConfig, error) {
	c.requestMu.RLock()
	defer c.requestMu.RUnlock()
	t, e := c.tableRef(tableName)
	if e != nil {
		return nil, e
	}
	return t.GetMeterRates(handle)
}

// ResetMeterRates clears the direct meter rates of an entry.
func (c *Context) ResetMeterRates(tableName string, handle table.EntryHandle) error {
	c.requestMu.RLock()
	defer c.requestMu.RUnlock()
	t, e := c.tableRef(tableName)
	if e != nil {
		return e
	}
	return t.ResetMeterRates(handle)
}

// GetTableType returns the type of a table.
func (c *Context) GetTableType(tableName string) (table.Type, error) {
	c.requestMu.RLock()
	defer c.requestMu.RUnlock()
	t, e := c.tableRef(tableName)
	if e != nil {
		return 0, e
	}
	return t.Type(), nil
}

// GetEntries returns a copy of every entry of a table.
func (c *Context) GetEntries(tableName string) ([]table.Entry, error) {
	c.requestMu.RLock()
	defer c.requestMu.RUnlock()
	t, e := c.tableRef(tableName)
	if e != nil {
		return nil, e
	}
	return t.GetEntries(), nil
}

// GetEntry returns a copy of one entry.
func (c *Context) GetEntry(tableName string, handle table.EntryHandle) (table.Entry, error) {
	c.requestMu.RLock()
	defer c.requestMu.RUnlock()
	t, e := c.tableRef(tableName)
	if e != nil {
		return table.Entry{}, e
	}
	return t.GetEntry(handle)
}

// GetDefaultEntry returns a copy of the default entry of a table.
func (c *Context) GetDefaultEntry(tableName string) (table.Entry, error) {
	c.requestMu.RLock()
	defer c.requestMu.RUnlock()
	t, e := c.tableRef(tableName)
	if e != nil {
		return table.Entry{}, e
	}
	return t.GetDefaultEntry()
}

// GetEntryFromKey returns a copy of the entry matching a key.
func (c *Context) GetEntryFromKey(tableName string, key []table.MatchKeyParam, priority int) (table.Entry, error) {
	c.requestMu.RLock()
	defer c.requestMu.RUnlock()
	t, e := c.tableRef(tableName)
	if e != nil {
		return table.Entry{}, e
	}
	return t.GetEntryFromKey(key, priority)
}

// profileRef resolves an action profile. Caller must hold requestMu.
func (c *Context) profileRef(name string) (*table.Profile, error) {
	return c.live.Profile(name)
}

// ActProfAddMember adds a member to an action profile.
func (c *Context) ActProfAddMember(profName, actionName string, data table.ActionData) (table.MemberHandle, error) {
	c.requestMu.RLock()
	defer c.requestMu.RUnlock()
	p, e := c.profileRef(profName)
	if e != nil {
		return 0, e
	}
	return p.AddMember(actionName, data)
}

// ActProfDeleteMember removes a member from an action profile.
func (c *Context) ActProfDeleteMember(profName string, mbr table.MemberHandle) error {
	c.requestMu.RLock()
	defer c.requestMu.RUnlock()
	p, e := c.profileRef(profName)
	if e != nil {
		return e
	}
	return p.DeleteMember(mbr)
}

// ActProfModifyMember replaces the action of a member.
func (c *Context) ActProfModifyMember(profName string, mbr table.MemberHandle, actionName string, data table.ActionData) error {
	c.requestMu.RLock()
	defer c.requestMu.RUnlock()
	p, e := c.profileRef(profName)
	if e != nil {
		return e
	}
	return p.ModifyMember(mbr, actionName, data)
}

// ActProfCreateGroup creates an empty selector group.
func (c *Context) ActProfCreateGroup(profName string) (table.GroupHandle, error) {
	c.requestMu.RLock()
	defer c.requestMu.RUnlock()
	p, e := c.profileRef(profName)
	if e != nil {
		return 0, e
	}
	return p.CreateGroup()
}

// ActProfDeleteGroup removes a group.
func (c *Context) ActProfDeleteGroup(profName string, grp table.GroupHandle) error {
	c.requestMu.RLock()
	defer c.requestMu.RUnlock()
	p, e := c.profileRef(profName)
	if e != nil {
		return e
	}
	return p.DeleteGroup(grp)
}

// ActProfAddMemberToGroup puts a member in a group.
func (c *Context) ActProfAddMemberToGroup(profName string, mbr table.MemberHandle, grp table.GroupHandle) error {
	c.requestMu.RLock()
	defer c.requestMu.RUnlock()
	p, e := c.profileRef(profName)
	if e != nil {
		return e
	}
	return p.AddMemberToGroup(mbr, grp)
}

// ActProfRemoveMemberFromGroup takes a member out of a group.
func (c *Context) ActProfRemoveMemberFromGroup(profName string, mbr table.MemberHandle, grp table.GroupHandle) error {
	c.requestMu.RLock()
	defer c.requestMu.RUnlock()
	p, e := c.profileRef(profName)
	if e != nil {
		return e
	}
	return p.RemoveMemberFromGroup(mbr, grp)
}

// ActProfGetMembers returns every member of a profile.
func (c *Context) ActProfGetMembers(profName string) ([]table.Member, error) {
	c.requestMu.RLock()
	defer c.requestMu.RUnlock()
	p, e := c.profileRef(profName)
	if e != nil {
		return nil, e
	}
	return p.GetMembers(), nil
}

// ActProfGetMember returns one member of a profile.
func (c *Context) ActProfGetMember(profName string, mbr table.MemberHandle) (table.Member, error) {
	c.requestMu.RLock()
	defer c.requestMu.RUnlock()
	p, e := c.profileRef(profName)
	if e != nil {
		return table.Member{}, e
	}
	return p.GetMember(mbr)
}

// ActProfGetGroups returns every group of a profile.
func (c *Context) ActProfGetGroups(profName string) ([]table.Group, error) {
	c.requestMu.RLock()
	defer c.requestMu.RUnlock()
	p, e := c.profileRef(profName)
	if e != nil {
		return nil, e
	}
	return p.GetGroups(), nil
}

// ActProfGetGroup returns one group of a profile.
func (c *Context) ActProfGetGroup(profName string, grp table.GroupHandle) (table.Group, error) {
	c.requestMu.RLock()
	defer c.requestMu.RUnlock()
	p, e := c.profileRef(profName)
	if e != nil {
		return table.Group{}, e
	}
	return p.GetGroup(grp)
}

// SetGroupSelector replaces the group-selection policy of an action profile.
func (c *Context) SetGroupSelector(profName string, selector table.GroupSelector) error {
	c.requestMu.RLock()
	defer c.requestMu.RUnlock()
	p, e := c.profileRef(profName)
	if e != nil {
		return e
	}
	p.SetGroupSelector(selector)
	return nil
}

// IndirectAddEntry adds an entry pointing at a member.
func (c *Context) IndirectAddEntry(tableName string, key []table.MatchKeyParam, mbr table.MemberHandle, priority int) (table.EntryHandle, error) {
	c.requestMu.RLock()
	defer c.requestMu.RUnlock()
	t, e := c.tableRef(tableName)
	if e != nil {
		return 0, e
	}
	return t.IndirectAddEntry(key, mbr, priority)
}

// IndirectModifyEntry repoints an entry at another member.
func (c *Context) IndirectModifyEntry(tableName string, handle table.EntryHandle, mbr table.MemberHandle) error {
	c.requestMu.RLock()
	defer c.requestMu.RUnlock()
	t, e := c.tableRef(tableName)
	if e != nil {
		return e
	}
	return t.IndirectModifyEntry(handle, mbr)
}

// IndirectDeleteEntry removes an indirect entry.
func (c *Context) IndirectDeleteEntry(tableName string, handle table.EntryHandle) error {
	c.requestMu.RLock()
	defer c.requestMu.RUnlock()
	t, e := c.tableRef(tableName)
	if e != nil {
		return e
	}
	return t.IndirectDeleteEntry(handle)
}

// IndirectSetEntryTTL sets the ageing timeout of an indirect entry.
func (c *Context) IndirectSetEntryTTL(tableName string, handle table.EntryHandle, ttlMillis uint32) error {
	c.requestMu.RLock()
	defer c.requestMu.RUnlock()
	t, e := c.tableRef(tableName)
	if e != nil {
		return e
	}
	return t.SetEntryTTL(handle, ttlMillis)
}

// IndirectSetDefaultMember sets the default entry of an indirect table.
func (c *Context) IndirectSetDefaultMember(tableName string, mbr table.MemberHandle) error {
	c.requestMu.RLock()
	defer c.requestMu.RUnlock()
	t, e := c.tableRef(tableName)
	if e != nil {
		return e
	}
	return t.IndirectSetDefaultMember(mbr)
}

// IndirectResetDefaultEntry restores the config-time default of an indirect table.
func (c *Context) IndirectResetDefaultEntry(tableName string) error {
	c.requestMu.RLock()
	defer c.requestMu.RUnlock()
	t, e := c.tableRef(tableName)
	if e != nil {
		return e
	}
	return t.ResetDefaultEntry()
}

// IndirectWSAddEntry adds an entry pointing at a selector group.
func (c *Context) IndirectWSAddEntry(tableName string, key []table.MatchKeyParam, grp table.GroupHandle, priority int) (table.EntryHandle, error) {
	c.requestMu.RLock()
	defer c.requestMu.RUnlock()
	t, e := c.tableRef(tableName)
	if e != nil {
		return 0, e
	}
	return t.IndirectWSAddEntry(key, grp, priority)
}

// IndirectWSModifyEntry repoints an entry at another group.
func (c *Context) IndirectWSModifyEntry(tableName string, handle table.EntryHandle, grp table.GroupHandle) error {
	c.requestMu.RLock()
	defer c.requestMu.RUnlock()
	t, e := c.tableRef(tableName)
	if e != nil {
		return e
	}
	return t.IndirectWSModifyEntry(handle, grp)
}

// IndirectWSSetDefaultGroup sets the default entry of a selector table to a group.
func (c *Context) IndirectWSSetDefaultGroup(tableName string, grp table.GroupHandle) error {
	c.requestMu.RLock()
	defer c.requestMu.RUnlock()
	t, e := c.tableRef(tableName)
	if e != nil {
		return e
	}
	return t.IndirectWSSetDefaultGroup(grp)
}

// CounterRead returns the value of one counter cell.
func (c *Context) CounterRead(counterName string, idx int) (bytes, packets uint64, e error) {
	c.requestMu.RLock()
	defer c.requestMu.RUnlock()
	arr, e := c.live.Counter(counterName)
	if e != nil {
		return 0, 0, e
	}
	return arr.Read(idx)
}

// CounterWrite overwrites one counter cell.
func (c *Context) CounterWrite(counterName string, idx int, bytes, packets uint64) error {
	c.requestMu.RLock()
	defer c.requestMu.RUnlock()
	arr, e := c.live.Counter(counterName)
	if e != nil {
		return e
	}
	return arr.Write(idx, bytes, packets)
}

// CounterReset zeroes a counter array.
func (c *Context) CounterReset(counterName string) error {
	c.requestMu.RLock()
	defer c.requestMu.RUnlock()
	arr, e := c.live.Counter(counterName)
	if e != nil {
		return e
	}
	arr.Reset()
	return nil
}

// MeterArraySetRates configures every meter of an array.
func (c *Context) MeterArraySetRates(meterName string, rates []meter.RateConfig) error {
	c.requestMu.RLock()
	defer c.requestMu.RUnlock()
	arr, e := c.live.Meter(meterName)
	if e != nil {
		return e
	}
	return arr.SetAllRates(rates)
}

// MeterSetRates configures one meter.
func (c *Context) MeterSetRates(meterName string, idx int, rates []meter.RateConfig) error {
	c.requestMu.RLock()
	defer c.requestMu.RUnlock()
	arr, e := c.live.Meter(meterName)
	if e != nil {
		return e
	}
	return arr.SetRates(idx, rates)
}

// MeterGetRates returns the rates of one meter.
func (c *Context) MeterGetRates(meterName string, idx int) ([]meter.RateConfig, error) {
	c.requestMu.RLock()
	defer c.requestMu.RUnlock()
	arr, e := c.live.Meter(meterName)
	if e != nil {
		return nil, e
	}
	return arr.GetRates(idx)
}

// MeterResetRates clears the rates of one meter.
func (c *Context) MeterResetRates(meterName string, idx int) error {
	c.requestMu.RLock()
	defer c.requestMu.RUnlock()
	arr, e := c.live.Meter(meterName)
	if e != nil {
		return e
	}
	return arr.ResetRates(idx)
}

// RegisterRead returns one register cell.
func (c *Context) RegisterRead(registerName string, idx int) (uint64, error) {
	c.requestMu.RLock()
	defer c.requestMu.RUnlock()
	arr, e := c.live.Register(registerName)
	if e != nil {
		return 0, e
	}
	return arr.Read(idx)
}

// RegisterReadAll returns every register cell.
func (c *Context) RegisterReadAll(registerName string) ([]uint64, error) {
	c.requestMu.RLock()
	defer c.requestMu.RUnlock()
	arr, e := c.live.Register(registerName)
	if e != nil {
		return nil, e
	}
	return arr.ReadAll(), nil
}

// RegisterWrite stores one register cell.
func (c *Context) RegisterWrite(registerName string, idx int, value uint64) error {
	c.requestMu.RLock()
	defer c.requestMu.RUnlock()
	arr, e := c.live.Register(registerName)
	if e != nil {
		return e
	}
	return arr.Write(idx, value)
}

// RegisterWriteRange stores a value in cells [start, end).
func (c *Context) RegisterWriteRange(registerName string, start, end int, value uint64) error {
	c.requestMu.RLock()
	defer c.requestMu.RUnlock()
	arr, e := c.live.Register(registerName)
	if e != nil {
		return e
	}
	return arr.WriteRange(start, end, value)
}

// RegisterReset zeroes a register array.
func (c *Context) RegisterReset(registerName string) error {
	c.requestMu.RLock()
	defer c.requestMu.RUnlock()
	arr, e := c.live.Register(registerName)
	if e != nil {
		return e
	}
	arr.Reset()
	return nil
}

// ParseVSetAdd inserts a value into a parse value set.
func (c *Context) ParseVSetAdd(vsetName string, value []byte) error {
	c.requestMu.RLock()
	defer c.requestMu.RUnlock()
	s, e := c.live.VSet(vsetName)
	if e != nil {
		return e
	}
	return s.Add(value)
}

// ParseVSetRemove deletes a value from a parse value set.
func (c *Context) ParseVSetRemove(vsetName string, value []byte) error {
	c.requestMu.RLock()
	defer c.requestMu.RUnlock()
	s, e := c.live.VSet(vsetName)
	if e != nil {
		return e
	}
	return s.Remove(value)
}

// ParseVSetGet returns every value of a parse value set.
func (c *Context) ParseVSetGet(vsetName string) ([][]byte, error) {
	c.requestMu.RLock()
	defer c.requestMu.RUnlock()
	s, e := c.live.VSet(vsetName)
	if e != nil {
		return nil, e
	}
	return s.Get(), nil
}

// ParseVSetClear removes every value of a parse value set.
func (c *Context) ParseVSetClear(vsetName string) error {
	c.requestMu.RLock()
	defer c.requestMu.RUnlock()
	s, e := c.live.VSet(vsetName)
	if e != nil {
		return e
	}
	s.Clear()
	return nil
}

// SetCRC16CustomParams updates a 16-bit CRC calculator.
func (c *Context) SetCRC16CustomParams(calcName string, cfg crcmgr.Config16) error {
	c.requestMu.RLock()
	defer c.requestMu.RUnlock()
	return c.live.CRC.SetCustom16(calcName, cfg)
}

// SetCRC32CustomParams updates a 32-bit CRC calculator.
func (c *Context) SetCRC32CustomParams(calcName string, cfg crcmgr.Config32) error {
	c.requestMu.RLock()
	defer c.requestMu.RUnlock()
	return c.live.CRC.SetCustom32(calcName, cfg)
}
