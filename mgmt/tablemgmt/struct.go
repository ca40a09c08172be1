package tablemgmt

import (
	"github.com/flexsw/flexsw/container/meter"
	"github.com/flexsw/flexsw/container/table"
	"github.com/flexsw/flexsw/core/nnduration"
)

// TableArg names a table of one context.
type TableArg struct {
	Cxt   int    `json:"cxt"`
	Table string `json:"table"`
}

// NumEntriesReply carries an entry count.
type NumEntriesReply struct {
	NumEntries int `json:"numEntries"`
}

// ClearArg clears a table.
type ClearArg struct {
	TableArg
	ResetDefault bool `json:"resetDefault"`
}

// AddEntryArg adds a direct entry.
type AddEntryArg struct {
	TableArg
	Key        []table.MatchKeyParam `json:"key"`
	Action     string                `json:"action"`
	ActionData []string              `json:"actionData"`
	Priority   *int                  `json:"priority"`
}

// AddEntryReply returns the new entry handle.
type AddEntryReply struct {
	Handle uint32 `json:"handle"`
}

// DefaultActionArg sets a default action.
type DefaultActionArg struct {
	TableArg
	Action     string   `json:"action"`
	ActionData []string `json:"actionData"`
}

// HandleArg addresses an entry.
type HandleArg struct {
	TableArg
	Handle uint32 `json:"handle"`
}

// ModifyEntryArg replaces the action of an entry.
type ModifyEntryArg struct {
	HandleArg
	Action     string   `json:"action"`
	ActionData []string `json:"actionData"`
}

// TTLArg sets an entry timeout.
type TTLArg struct {
	HandleArg
	TTL nnduration.Milliseconds `json:"ttl"`
}

// CountersReply carries direct counter values.
type CountersReply struct {
	Bytes   uint64 `json:"bytes"`
	Packets uint64 `json:"packets"`
}

// WriteCountersArg overwrites direct counters.
type WriteCountersArg struct {
	HandleArg
	Bytes   uint64 `json:"bytes"`
	Packets uint64 `json:"packets"`
}

// MeterRateArg is one meter rate config.
type MeterRateArg struct {
	InfoRate float64 `json:"infoRate"`
	Burst    uint32  `json:"burst"`
}

// SetMeterRatesArg sets direct meter rates of an entry.
type SetMeterRatesArg struct {
	HandleArg
	Rates []MeterRateArg `json:"rates"`
}

// MeterRatesReply carries meter rates.
type MeterRatesReply struct {
	Rates []MeterRateArg `json:"rates"`
}

// TypeReply carries a table type string.
type TypeReply struct {
	Type string `json:"type"`
}

// EntriesReply carries table entries.
type EntriesReply struct {
	Entries []table.Entry `json:"entries"`
}

// EntryReply carries one table entry.
type EntryReply struct {
	Entry table.Entry `json:"entry"`
}

// KeyArg addresses an entry by match key.
type KeyArg struct {
	TableArg
	Key      []table.MatchKeyParam `json:"key"`
	Priority *int                  `json:"priority"`
}

// ProfArg names an action profile of one context.
type ProfArg struct {
	Cxt     int    `json:"cxt"`
	Profile string `json:"profile"`
}

// AddMemberArg adds an action profile member.
type AddMemberArg struct {
	ProfArg
	Action     string   `json:"action"`
	ActionData []string `json:"actionData"`
}

// MemberReply returns a member handle.
type MemberReply struct {
	Member uint32 `json:"member"`
}

// MemberArg addresses a member.
type MemberArg struct {
	ProfArg
	Member uint32 `json:"member"`
}

// ModifyMemberArg replaces the action of a member.
type ModifyMemberArg struct {
	MemberArg
	Action     string   `json:"action"`
	ActionData []string `json:"actionData"`
}

// GroupReply returns a group handle.
type GroupReply struct {
	Group uint32 `json:"group"`
}

// GroupArg addresses a group.
type GroupArg struct {
	ProfArg
	Group uint32 `json:"group"`
}

// MemberGroupArg addresses a member and a group.
type MemberGroupArg struct {
	ProfArg
	Member uint32 `json:"member"`
	Group  uint32 `json:"group"`
}

// MembersReply carries profile members.
type MembersReply struct {
	Members []table.Member `json:"members"`
}

// OneMemberReply carries one profile member.
type OneMemberReply struct {
	Member table.Member `json:"member"`
}

// GroupsReply carries selector groups.
type GroupsReply struct {
	Groups []table.Group `json:"groups"`
}

// OneGroupReply carries one selector group.
type OneGroupReply struct {
	Group table.Group `json:"group"`
}

// IndirectAddEntryArg adds an entry pointing at a member.
type IndirectAddEntryArg struct {
	TableArg
	Key      []table.MatchKeyParam `json:"key"`
	Member   uint32                `json:"member"`
	Priority *int                  `json:"priority"`
}

// IndirectModifyEntryArg repoints an entry at a member.
type IndirectModifyEntryArg struct {
	HandleArg
	Member uint32 `json:"member"`
}

// IndirectDefaultMemberArg sets the default member.
type IndirectDefaultMemberArg struct {
	TableArg
	Member uint32 `json:"member"`
}

// WSAddEntryArg adds an entry pointing at a group.
type WSAddEntryArg struct {
	TableArg
	Key      []table.MatchKeyParam `json:"key"`
	Group    uint32                `json:"group"`
	Priority *int                  `json:"priority"`
}

// WSModifyEntryArg repoints an entry at a group.
type WSModifyEntryArg struct {
	HandleArg
	Group uint32 `json:"group"`
}

// WSDefaultGroupArg sets the default group.
type WSDefaultGroupArg struct {
	TableArg
	Group uint32 `json:"group"`
}

func priorityOf(p *int) int {
	if p == nil {
		return -1
	}
	return *p
}

func ratesOf(args []MeterRateArg) (rates []meter.RateConfig) {
	for _, r := range args {
		rates = append(rates, meter.RateConfig{InfoRate: r.InfoRate, Burst: r.Burst})
	}
	return rates
}

func ratesToArgs(rates []meter.RateConfig) (args []MeterRateArg) {
	for _, r := range rates {
		args = append(args, MeterRateArg{InfoRate: r.InfoRate, Burst: r.Burst})
	}
	return args
}
