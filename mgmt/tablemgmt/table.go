// Package tablemgmt exposes match-table and action-profile operations over the management server.
package tablemgmt

import (
	"github.com/flexsw/flexsw/container/table"
	"github.com/flexsw/flexsw/sw"
)

// TableMgmt manages match tables.
type TableMgmt struct {
	Sw *sw.Switch
}

// GetNumEntries returns the entry count of a table.
func (mg TableMgmt) GetNumEntries(args TableArg, reply *NumEntriesReply) error {
	n, e := mg.Sw.MtGetNumEntries(args.Cxt, args.Table)
	if e != nil {
		return e
	}
	reply.NumEntries = n
	return nil
}

// ClearEntries removes all entries of a table.
func (mg TableMgmt) ClearEntries(args ClearArg, reply *struct{}) error {
	return mg.Sw.MtClearEntries(args.Cxt, args.Table, args.ResetDefault)
}

// AddEntry adds a direct entry.
func (mg TableMgmt) AddEntry(args AddEntryArg, reply *AddEntryReply) error {
	h, e := mg.Sw.MtAddEntry(args.Cxt, args.Table, args.Key, args.Action, table.ActionData(args.ActionData), priorityOf(args.Priority))
	if e != nil {
		return e
	}
	reply.Handle = uint32(h)
	return nil
}

// SetDefaultAction sets the default action of a table.
func (mg TableMgmt) SetDefaultAction(args DefaultActionArg, reply *struct{}) error {
	return mg.Sw.MtSetDefaultAction(args.Cxt, args.Table, args.Action, table.ActionData(args.ActionData))
}

// ResetDefaultEntry restores the config-time default entry.
func (mg TableMgmt) ResetDefaultEntry(args TableArg, reply *struct{}) error {
	return mg.Sw.MtResetDefaultEntry(args.Cxt, args.Table)
}

// DeleteEntry removes an entry.
func (mg TableMgmt) DeleteEntry(args HandleArg, reply *struct{}) error {
	return mg.Sw.MtDeleteEntry(args.Cxt, args.Table, table.EntryHandle(args.Handle))
}

// ModifyEntry replaces the action of an entry.
func (mg TableMgmt) ModifyEntry(args ModifyEntryArg, reply *struct{}) error {
	return mg.Sw.MtModifyEntry(args.Cxt, args.Table, table.EntryHandle(args.Handle), args.Action, table.ActionData(args.ActionData))
}

// SetEntryTTL sets the ageing timeout of an entry.
func (mg TableMgmt) SetEntryTTL(args TTLArg, reply *struct{}) error {
	return mg.Sw.MtSetEntryTTL(args.Cxt, args.Table, table.EntryHandle(args.Handle), uint32(args.TTL.Duration().Milliseconds()))
}

// ReadCounters returns the direct counters of an entry.
func (mg TableMgmt) ReadCounters(args HandleArg, reply *CountersReply) error {
	bytes, packets, e := mg.Sw.MtReadCounters(args.Cxt, args.Table, table.EntryHandle(args.Handle))
	if e != nil {
		return e
	}
	reply.Bytes, reply.Packets = bytes, packets
	return nil
}

// ResetCounters zeroes the direct counters of a table.
func (mg TableMgmt) ResetCounters(args TableArg, reply *struct{}) error {
	return mg.Sw.MtResetCounters(args.Cxt, args.Table)
}

// WriteCounters overwrites the direct counters of an entry.
func (mg TableMgmt) WriteCounters(args WriteCountersArg, reply *struct{}) error {
	return mg.Sw.MtWriteCounters(args.Cxt, args.Table, table.EntryHandle(args.Handle), args.Bytes, args.Packets)
}

// SetMeterRates configures the direct meter of an entry.
func (mg TableMgmt) SetMeterRates(args SetMeterRatesArg, reply *struct{}) error {
	return mg.Sw.MtSetMeterRates(args.Cxt, args.Table, table.EntryHandle(args.Handle), ratesOf(args.Rates))
}

// GetMeterRates returns the direct meter rates of an entry.
func (mg TableMgmt) GetMeterRates(args HandleArg, reply *MeterRatesReply) error {
	rates, e := mg.Sw.MtGetMeterRates(args.Cxt, args.Table, table.EntryHandle(args.Handle))
	if e != nil {
		return e
	}
	reply.Rates = ratesToArgs(rates)
	return nil
}

// ResetMeterRates clears the direct meter rates of an entry.
func (mg TableMgmt) ResetMeterRates(args HandleArg, reply *struct{}) error {
	return mg.Sw.MtResetMeterRates(args.Cxt, args.Table, table.EntryHandle(args.Handle))
}

// GetType returns the table type.
func (mg TableMgmt) GetType(args TableArg, reply *TypeReply) error {
	typ, e := mg.Sw.MtGetType(args.Cxt, args.Table)
	if e != nil {
		return e
	}
	reply.Type = typ.String()
	return nil
}

// GetEntries returns every entry of a table.
func (mg TableMgmt) GetEntries(args TableArg, reply *EntriesReply) error {
	entries, e := mg.Sw.MtGetEntries(args.Cxt, args.Table)
	if e != nil {
		return e
	}
	reply.Entries = entries
	return nil
}

// GetEntry returns one entry.
func (mg TableMgmt) GetEntry(args HandleArg, reply *EntryReply) error {
	entry, e := mg.Sw.MtGetEntry(args.Cxt, args.Table, table.EntryHandle(args.Handle))
	if e != nil {
		return e
	}
	reply.Entry = entry
	return nil
}

// GetDefaultEntry returns the default entry of a table.
func (mg TableMgmt) GetDefaultEntry(args TableArg, reply *EntryReply) error {
	entry, e := mg.Sw.MtGetDefaultEntry(args.Cxt, args.Table)
	if e != nil {
		return e
	}
	reply.Entry = entry
	return nil
}

// GetEntryFromKey returns the entry matching a key.
func (mg TableMgmt) GetEntryFromKey(args KeyArg, reply *EntryReply) error {
	entry, e := mg.Sw.MtGetEntryFromKey(args.Cxt, args.Table, args.Key, priorityOf(args.Priority))
	if e != nil {
		return e
	}
	reply.Entry = entry
	return nil
}

// IndirectAddEntry adds an entry pointing at a member.
func (mg TableMgmt) IndirectAddEntry(args IndirectAddEntryArg, reply *AddEntryReply) error {
	h, e := mg.Sw.MtIndirectAddEntry(args.Cxt, args.Table, args.Key, table.MemberHandle(args.Member), priorityOf(args.Priority))
	if e != nil {
		return e
	}
	reply.Handle = uint32(h)
	return nil
}

// IndirectModifyEntry repoints an entry at another member.
func (mg TableMgmt) IndirectModifyEntry(args IndirectModifyEntryArg, reply *struct{}) error {
	return mg.Sw.MtIndirectModifyEntry(args.Cxt, args.Table, table.EntryHandle(args.Handle), table.MemberHandle(args.Member))
}

// IndirectDeleteEntry removes an indirect entry.
func (mg TableMgmt) IndirectDeleteEntry(args HandleArg, reply *struct{}) error {
	return mg.Sw.MtIndirectDeleteEntry(args.Cxt, args.Table, table.EntryHandle(args.Handle))
}

// IndirectSetEntryTTL sets the ageing timeout of an indirect entry.
func (mg TableMgmt) IndirectSetEntryTTL(args TTLArg, reply *struct{}) error {
	return mg.Sw.MtIndirectSetEntryTTL(args.Cxt, args.Table, table.EntryHandle(args.Handle), uint32(args.TTL.Duration().Milliseconds()))
}

// IndirectSetDefaultMember sets the default member of an indirect table.
func (mg TableMgmt) IndirectSetDefaultMember(args IndirectDefaultMemberArg, reply *struct{}) error {
	return mg.Sw.MtIndirectSetDefaultMember(args.Cxt, args.Table, table.MemberHandle(args.Member))
}

// IndirectResetDefaultEntry restores the config-time default of an indirect table.
func (mg TableMgmt) IndirectResetDefaultEntry(args TableArg, reply *struct{}) error {
	return mg.Sw.MtIndirectResetDefaultEntry(args.Cxt, args.Table)
}

// IndirectWsAddEntry adds an entry pointing at a group.
func (mg TableMgmt) IndirectWsAddEntry(args WSAddEntryArg, reply *AddEntryReply) error {
	h, e := mg.Sw.MtIndirectWSAddEntry(args.Cxt, args.Table, args.Key, table.GroupHandle(args.Group), priorityOf(args.Priority))
	if e != nil {
		return e
	}
	reply.Handle = uint32(h)
	return nil
}

// IndirectWsModifyEntry repoints an entry at another group.
func (mg TableMgmt) IndirectWsModifyEntry(args WSModifyEntryArg, reply *struct{}) error {
	return mg.Sw.MtIndirectWSModifyEntry(args.Cxt, args.Table, table.EntryHandle(args.Handle), table.GroupHandle(args.Group))
}

// IndirectWsSetDefaultGroup sets the default group of a selector table.
func (mg TableMgmt) IndirectWsSetDefaultGroup(args WSDefaultGroupArg, reply *struct{}) error {
	return mg.Sw.MtIndirectWSSetDefaultGroup(args.Cxt, args.Table, table.GroupHandle(args.Group))
}
