package sw

import (
	"crypto/md5"
	"io"

	"github.com/flexsw/flexsw/container/crcmgr"
	"github.com/flexsw/flexsw/container/meter"
	"github.com/flexsw/flexsw/container/table"
)

// The runtime façade: every control-plane operation takes a context id as
// its first argument and is forwarded into the addressed context. An out of
// range id fails with CONTEXT_OUT_OF_RANGE.

// MtGetNumEntries forwards NumEntries.
func (s *Switch) MtGetNumEntries(cxtID int, tableName string) (int, error) {
	c, e := s.Context(cxtID)
	if e != nil {
		return 0, e
	}
	return c.NumEntries(tableName)
}

// MtClearEntries forwards ClearEntries.
func (s *Switch) MtClearEntries(cxtID int, tableName string, resetDefault bool) error {
	c, e := s.Context(cxtID)
	if e != nil {
		return e
	}
	return c.ClearEntries(tableName, resetDefault)
}

// MtAddEntry forwards AddEntry.
func (s *Switch) MtAddEntry(cxtID int, tableName string, key []table.MatchKeyParam, actionName string, data table.ActionData, priority int) (table.EntryHandle, error) {
	c, e := s.Context(cxtID)
	if e != nil {
		return 0, e
	}
	return c.AddEntry(tableName, key, actionName, data, priority)
}

// MtSetDefaultAction forwards SetDefaultAction.
func (s *Switch) MtSetDefaultAction(cxtID int, tableName, actionName string, data table.ActionData) error {
	c, e := s.Context(cxtID)
	if e != nil {
		return e
	}
	return c.SetDefaultAction(tableName, actionName, data)
}

// MtResetDefaultEntry forwards ResetDefaultEntry.
func (s *Switch) MtResetDefaultEntry(cxtID int, tableName string) error {
	c, e := s.Context(cxtID)
	if e != nil {
		return e
	}
	return c.ResetDefaultEntry(tableName)
}

// MtDeleteEntry forwards DeleteEntry.
func (s *Switch) MtDeleteEntry(cxtID int, tableName string, handle table.EntryHandle) error {
	c, e := s.Context(cxtID)
	if e != nil {
		return e
	}
	return c.DeleteEntry(tableName, handle)
}

// MtModifyEntry forwards ModifyEntry.
func (s *Switch) MtModifyEntry(cxtID int, tableName string, handle table.EntryHandle, actionName string, data table.ActionData) error {
	c, e := s.Context(cxtID)
	if e != nil {
		return e
	}
	return c.ModifyEntry(tableName, handle, actionName, data)
}

// MtSetEntryTTL forwards SetEntryTTL.
func (s *Switch) MtSetEntryTTL(cxtID int, tableName string, handle table.EntryHandle, ttlMillis uint32) error {
	c, e := s.Context(cxtID)
	if e != nil {
		return e
	}
	return c.SetEntryTTL(tableName, handle, ttlMillis)
}

// MtReadCounters forwards ReadCounters.
func (s *Switch) MtReadCounters(cxtID int, tableName string, handle table.EntryHandle) (bytes, packets uint64, e error) {
	c, e := s.Context(cxtID)
	if e != nil {
		return 0, 0, e
	}
	return c.ReadCounters(tableName, handle)
}

// MtResetCounters forwards ResetCounters.
func (s *Switch) MtResetCounters(cxtID int, tableName string) error {
	c, e := s.Context(cxtID)
	if e != nil {
		return e
	}
	return c.ResetCounters(tableName)
}

// MtWriteCounters forwards WriteCounters.
func (s *Switch) MtWriteCounters(cxtID int, tableName string, handle table.EntryHandle, bytes, packets uint64) error {
	c, e := s.Context(cxtID)
	if e != nil {
		return e
	}
	return c.WriteCounters(tableName, handle, bytes, packets)
}

// MtSetMeterRates forwards SetMeterRates.
func (s *Switch) MtSetMeterRates(cxtID int, tableName string, handle table.EntryHandle, rates []meter.RateConfig) error {
	c, e := s.Context(cxtID)
	if e != nil {
		return e
	}
	return c.SetMeterRates(tableName, handle, rates)
}

// MtGetMeterRates forwards GetMeterRates.
func (s *Switch) MtGetMeterRates(cxtID int, tableName string, handle table.EntryHandle) ([]meter.RateConfig, error) {
	c, e := s.Context(cxtID)
	if e != nil {
		return nil, e
	}
	return c.GetMeterRates(tableName, handle)
}

// MtResetMeterRates forwards ResetMeterRates.
func (s *Switch) MtResetMeterRates(cxtID int, tableName string, handle table.EntryHandle) error {
	c, e := s.Context(cxtID)
	if e != nil {
		return e
	}
	return c.ResetMeterRates(tableName, handle)
}

// MtGetType forwards GetTableType.
func (s *Switch) MtGetType(cxtID int, tableName string) (table.Type, error) {
	c, e := s.Context(cxtID)
	if e != nil {
		return 0, e
	}
	return c.GetTableType(tableName)
}

// MtGetEntries forwards GetEntries.
func (s *Switch) MtGetEntries(cxtID int, tableName string) ([]table.Entry, error) {
	c, e := s.Context(cxtID)
	if e != nil {
		return nil, e
	}
	return c.GetEntries(tableName)
}

// MtGetEntry forwards GetEntry.
func (s *Switch) MtGetEntry(cxtID int, tableName string, handle table.EntryHandle) (table.Entry, error) {
	c, e := s.Context(cxtID)
	if e != nil {
		return table.Entry{}, e
	}
	return c.GetEntry(tableName, handle)
}

// MtGetDefaultEntry forwards GetDefaultEntry.
func (s *Switch) MtGetDefaultEntry(cxtID int, tableName string) (table.Entry, error) {
	c, e := s.Context(cxtID)
	if e != nil {
		return table.Entry{}, e
	}
	return c.GetDefaultEntry(tableName)
}

// MtGetEntryFromKey forwards GetEntryFromKey.
func (s *Switch) MtGetEntryFromKey(cxtID int, tableName string, key []table.MatchKeyParam, priority int) (table.Entry, error) {
	c, e := s.Context(cxtID)
	if e != nil {
		return table.Entry{}, e
	}
	return c.GetEntryFromKey(tableName, key, priority)
}

// MtActProfAddMember forwards ActProfAddMember.
func (s *Switch) MtActProfAddMember(cxtID int, profName, actionName string, data table.ActionData) (table.MemberHandle, error) {
	c, e := s.Context(cxtID)
	if e != nil {
		return 0, e
	}
	return c.ActProfAddMember(profName, actionName, data)
}

// MtActProfDeleteMember forwards ActProfDeleteMember.
func (s *Switch) MtActProfDeleteMember(cxtID int, profName string, mbr table.MemberHandle) error {
	c, e := s.Context(cxtID)
	if e != nil {
		return e
	}
	return c.ActProfDeleteMember(profName, mbr)
}

// MtActProfModifyMember forwards ActProfModifyMember.
func (s *Switch) MtActProfModifyMember(cxtID int, profName string, mbr table.MemberHandle, actionName string, data table.ActionData) error {
	c, e := s.Context(cxtID)
	if e != nil {
		return e
	}
	return c.ActProfModifyMember(profName, mbr, actionName, data)
}

// MtActProfCreateGroup forwards ActProfCreateGroup.
func (s *Switch) MtActProfCreateGroup(cxtID int, profName string) (table.GroupHandle, error) {
	c, e := s.Context(cxtID)
	if e != nil {
		return 0, e
	}
	return c.ActProfCreateGroup(profName)
}

// MtActProfDeleteGroup forwards ActProfDeleteGroup.
func (s *Switch) MtActProfDeleteGroup(cxtID int, profName string, grp table.GroupHandle) error {
	c, e := s.Context(cxtID)
	if e != nil {
		return e
	}
	return c.ActProfDeleteGroup(profName, grp)
}

// MtActProfAddMemberToGroup forwards ActProfAddMemberToGroup.
func (s *Switch) MtActProfAddMemberToGroup(cxtID int, profName string, mbr table.MemberHandle, grp table.GroupHandle) error {
	c, e := s.Context(cxtID)
	if e != nil {
		return e
	}
	return c.ActProfAddMemberToGroup(profName, mbr, grp)
}

// MtActProfRemoveMemberFromGroup forwards ActProfRemoveMemberFromGroup.
func (s *Switch) MtActProfRemoveMemberFromGroup(cxtID int, profName string, mbr table.MemberHandle, grp table.GroupHandle) error {
	c, e := s.Context(cxtID)
	if e != nil {
		return e
	}
	return c.ActProfRemoveMemberFromGroup(profName, mbr, grp)
}

// MtActProfGetMembers forwards ActProfGetMembers.
func (s *Switch) MtActProfGetMembers(cxtID int, profName string) ([]table.Member, error) {
	c, e := s.Context(cxtID)
	if e != nil {
		return nil, e
	}
	return c.ActProfGetMembers(profName)
}

// MtActProfGetMember forwards ActProfGetMember.
func (s *Switch) MtActProfGetMember(cxtID int, profName string, mbr table.MemberHandle) (table.Member, error) {
	c, e := s.Context(cxtID)
	if e != nil {
		return table.Member{}, e
	}
	return c.ActProfGetMember(profName, mbr)
}

// MtActProfGetGroups forwards ActProfGetGroups.
func (s *Switch) MtActProfGetGroups(cxtID int, profName string) ([]table.Group, error) {
	c, e := s.Context(cxtID)
	if e != nil {
		return nil, e
	}
	return c.ActProfGetGroups(profName)
}

// MtActProfGetGroup forwards ActProfGetGroup.
func (s *Switch) MtActProfGetGroup(cxtID int, profName string, grp table.GroupHandle) (table.Group, error) {
	c, e := s.Context(cxtID)
	if e != nil {
		return table.Group{}, e
	}
	return c.ActProfGetGroup(profName, grp)
}

// SetGroupSelector forwards SetGroupSelector.
func (s *Switch) SetGroupSelector(cxtID int, profName string, selector table.GroupSelector) error {
	c, e := s.Context(cxtID)
	if e != nil {
		return e
	}
	return c.SetGroupSelector(profName, selector)
}

// MtIndirectAddEntry forwards IndirectAddEntry.
func (s *Switch) MtIndirectAddEntry(cxtID int, tableName string, key []table.MatchKeyParam, mbr table.MemberHandle, priority int) (table.EntryHandle, error) {
	c, e := s.Context(cxtID)
	if e != nil {
		return 0, e
	}
	return c.IndirectAddEntry(tableName, key, mbr, priority)
}

// MtIndirectModifyEntry forwards IndirectModifyEntry.
func (s *Switch) MtIndirectModifyEntry(cxtID int, tableName string, handle table.EntryHandle, mbr table.MemberHandle) error {
	c, e := s.Context(cxtID)
	if e != nil {
		return e
	}
	return c.IndirectModifyEntry(tableName, handle, mbr)
}

// MtIndirectDeleteEntry forwards IndirectDeleteEntry.
func (s *Switch) MtIndirectDeleteEntry(cxtID int, tableName string, handle table.EntryHandle) error {
	c, e := s.Context(cxtID)
	if e != nil {
		return e
	}
	return c.IndirectDeleteEntry(tableName, handle)
}

// MtIndirectSetEntryTTL forwards IndirectSetEntryTTL.
func (s *Switch) MtIndirectSetEntryTTL(cxtID int, tableName string, handle table.EntryHandle, ttlMillis uint32) error {
	c, e := s.Context(cxtID)
	if e != nil {
		return e
	}
	return c.IndirectSetEntryTTL(tableName, handle, ttlMillis)
}

// MtIndirectSetDefaultMember forwards IndirectSetDefaultMember.
func (s *Switch) MtIndirectSetDefaultMember(cxtID int, tableName string, mbr table.MemberHandle) error {
	c, e := s.Context(cxtID)
	if e != nil {
		return e
	}
	return c.IndirectSetDefaultMember(tableName, mbr)
}

// MtIndirectResetDefaultEntry forwards IndirectResetDefaultEntry.
func (s *Switch) MtIndirectResetDefaultEntry(cxtID int, tableName string) error {
	c, e := s.Context(cxtID)
	if e != nil {
		return e
	}
	return c.IndirectResetDefaultEntry(tableName)
}

// MtIndirectWSAddEntry forwards IndirectWSAddEntry.
func (s *Switch) MtIndirectWSAddEntry(cxtID int, tableName string, key []table.MatchKeyParam, grp table.GroupHandle, priority int) (table.EntryHandle, error) {
	c, e := s.Context(cxtID)
	if e != nil {
		return 0, e
	}
	return c.IndirectWSAddEntry(tableName, key, grp, priority)
}

// MtIndirectWSModifyEntry forwards IndirectWSModifyEntry.
func (s *Switch) MtIndirectWSModifyEntry(cxtID int, tableName string, handle table.EntryHandle, grp table.GroupHandle) error {
	c, e := s.Context(cxtID)
	if e != nil {
		return e
	}
	return c.IndirectWSModifyEntry(tableName, handle, grp)
}

// MtIndirectWSSetDefaultGroup forwards IndirectWSSetDefaultGroup.
func (s *Switch) MtIndirectWSSetDefaultGroup(cxtID int, tableName string, grp table.GroupHandle) error {
	c, e := s.Context(cxtID)
	if e != nil {
		return e
	}
	return c.IndirectWSSetDefaultGroup(tableName, grp)
}

// ReadCounters forwards CounterRead.
func (s *Switch) ReadCounters(cxtID int, counterName string, idx int) (bytes, packets uint64, e error) {
	c, e := s.Context(cxtID)
	if e != nil {
		return 0, 0, e
	}
	return c.CounterRead(counterName, idx)
}

// WriteCounters forwards CounterWrite.
func (s *Switch) WriteCounters(cxtID int, counterName string, idx int, bytes, packets uint64) error {
	c, e := s.Context(cxtID)
	if e != nil {
		return e
	}
	return c.CounterWrite(counterName, idx, bytes, packets)
}

// ResetCounters forwards CounterReset.
func (s *Switch) ResetCounters(cxtID int, counterName string) error {
	c, e := s.Context(cxtID)
	if e != nil {
		return e
	}
	return c.CounterReset(counterName)
}

// MeterArraySetRates forwards MeterArraySetRates.
func (s *Switch) MeterArraySetRates(cxtID int, meterName string, rates []meter.RateConfig) error {
	c, e := s.Context(cxtID)
	if e != nil {
		return e
	}
	return c.MeterArraySetRates(meterName, rates)
}

// MeterSetRates forwards MeterSetRates.
func (s *Switch) MeterSetRates(cxtID int, meterName string, idx int, rates []meter.RateConfig) error {
	c, e := s.Context(cxtID)
	if e != nil {
		return e
	}
	return c.MeterSetRates(meterName, idx, rates)
}

// MeterGetRates forwards MeterGetRates.
func (s *Switch) MeterGetRates(cxtID int, meterName string, idx int) ([]meter.RateConfig, error) {
	c, e := s.Context(cxtID)
	if e != nil {
		return nil, e
	}
	return c.MeterGetRates(meterName, idx)
}

// MeterResetRates forwards MeterResetRates.
func (s *Switch) MeterResetRates(cxtID int, meterName string, idx int) error {
	c, e := s.Context(cxtID)
	if e != nil {
		return e
	}
	return c.MeterResetRates(meterName, idx)
}

// RegisterRead forwards RegisterRead.
func (s *Switch) RegisterRead(cxtID int, registerName string, idx int) (uint64, error) {
	c, e := s.Context(cxtID)
	if e != nil {
		return 0, e
	}
	return c.RegisterRead(registerName, idx)
}

// RegisterReadAll forwards RegisterReadAll.
func (s *Switch) RegisterReadAll(cxtID int, registerName string) ([]uint64, error) {
	c, e := s.Context(cxtID)
	if e != nil {
		return nil, e
	}
	return c.RegisterReadAll(registerName)
}

// RegisterWrite forwards RegisterWrite.
func (s *Switch) RegisterWrite(cxtID int, registerName string, idx int, value uint64) error {
	c, e := s.Context(cxtID)
	if e != nil {
		return e
	}
	return c.RegisterWrite(registerName, idx, value)
}

// RegisterWriteRange forwards RegisterWriteRange.
func (s *Switch) RegisterWriteRange(cxtID int, registerName string, start, end int, value uint64) error {
	c, e := s.Context(cxtID)
	if e != nil {
		return e
	}
	return c.RegisterWriteRange(registerName, start, end, value)
}

// RegisterReset forwards RegisterReset.
func (s *Switch) RegisterReset(cxtID int, registerName string) error {
	c, e := s.Context(cxtID)
	if e != nil {
		return e
	}
	return c.RegisterReset(registerName)
}

// ParseVSetAdd forwards ParseVSetAdd.
func (s *Switch) ParseVSetAdd(cxtID int, vsetName string, value []byte) error {
	c, e := s.Context(cxtID)
	if e != nil {
		return e
	}
	return c.ParseVSetAdd(vsetName, value)
}

// ParseVSetRemove forwards ParseVSetRemove.
func (s *Switch) ParseVSetRemove(cxtID int, vsetName string, value []byte) error {
	c, e := s.Context(cxtID)
	if e != nil {
		return e
	}
	return c.ParseVSetRemove(vsetName, value)
}

// ParseVSetGet forwards ParseVSetGet.
func (s *Switch) ParseVSetGet(cxtID int, vsetName string) ([][]byte, error) {
	c, e := s.Context(cxtID)
	if e != nil {
		return nil, e
	}
	return c.ParseVSetGet(vsetName)
}

// ParseVSetClear forwards ParseVSetClear.
func (s *Switch) ParseVSetClear(cxtID int, vsetName string) error {
	c, e := s.Context(cxtID)
	if e != nil {
		return e
	}
	return c.ParseVSetClear(vsetName)
}

// SetCRC16CustomParams forwards SetCRC16CustomParams.
func (s *Switch) SetCRC16CustomParams(cxtID int, calcName string, cfg crcmgr.Config16) error {
	c, e := s.Context(cxtID)
	if e != nil {
		return e
	}
	return c.SetCRC16CustomParams(calcName, cfg)
}

// SetCRC32CustomParams forwards SetCRC32CustomParams.
func (s *Switch) SetCRC32CustomParams(cxtID int, calcName string, cfg crcmgr.Config32) error {
	c, e := s.Context(cxtID)
	if e != nil {
		return e
	}
	return c.SetCRC32CustomParams(calcName, cfg)
}

// LoadNewConfig forwards LoadNewConfig.
func (s *Switch) LoadNewConfig(cxtID int, blob []byte) error {
	c, e := s.Context(cxtID)
	if e != nil {
		return e
	}
	return c.LoadNewConfig(blob)
}

// SwapConfigs forwards SwapConfigs.
func (s *Switch) SwapConfigs(cxtID int) error {
	c, e := s.Context(cxtID)
	if e != nil {
		return e
	}
	return c.SwapConfigs()
}

// GetConfig forwards GetConfig.
func (s *Switch) GetConfig(cxtID int) ([]byte, error) {
	c, e := s.Context(cxtID)
	if e != nil {
		return nil, e
	}
	return c.GetConfig(), nil
}

// GetConfigMD5 forwards GetConfigMD5.
func (s *Switch) GetConfigMD5(cxtID int) ([md5.Size]byte, error) {
	c, e := s.Context(cxtID)
	if e != nil {
		return [md5.Size]byte{}, e
	}
	return c.GetConfigMD5(), nil
}

// ResetStateContext forwards ResetState to one context.
func (s *Switch) ResetStateContext(cxtID int) error {
	c, e := s.Context(cxtID)
	if e != nil {
		return e
	}
	c.ResetState()
	if s.ResetTargetFn != nil {
		s.ResetTargetFn()
	}
	return nil
}

// Serialize forwards Serialize.
func (s *Switch) Serialize(cxtID int, w io.Writer) error {
	c, e := s.Context(cxtID)
	if e != nil {
		return e
	}
	return c.Serialize(w)
}

// Deserialize forwards Deserialize.
func (s *Switch) Deserialize(cxtID int, r io.Reader) error {
	c, e := s.Context(cxtID)
	if e != nil {
		return e
	}
	return c.Deserialize(r)
}

// MtRuntimeReconfig forwards RunReconfigPlanFiles.
func (s *Switch) MtRuntimeReconfig(cxtID int, jsonPath, planPath string) error {
	c, e := s.Context(cxtID)
	if e != nil {
		return e
	}
	return c.RunReconfigPlanFiles(jsonPath, planPath)
}
