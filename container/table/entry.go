package table

import (
	"strconv"
	"strings"

	"github.com/flexsw/flexsw/container/meter"
)

// MatchKind identifies how one key field is matched.
type MatchKind int

// Match kinds.
const (
	MatchExact MatchKind = iota
	MatchLPM
	MatchTernary
)

var matchKindNames = map[string]MatchKind{
	"exact":   MatchExact,
	"lpm":     MatchLPM,
	"ternary": MatchTernary,
}

// ParseMatchKind converts a config string to a MatchKind.
func ParseMatchKind(s string) (MatchKind, bool) {
	k, ok := matchKindNames[s]
	return k, ok
}

func (k MatchKind) String() string {
	for s, v := range matchKindNames {
		if v == k {
			return s
		}
	}
	return "unknown"
}

// MatchKeyParam is one field of a match key.
// Value and Mask are hexadecimal strings; the core does not interpret them.
type MatchKeyParam struct {
	Kind      MatchKind `json:"kind"`
	Value     string    `json:"value"`
	Mask      string    `json:"mask,omitempty"`
	PrefixLen int       `json:"prefixLen,omitempty"`
}

func (p MatchKeyParam) keyPart() string {
	switch p.Kind {
	case MatchLPM:
		return "L:" + p.Value + "/" + strconv.Itoa(p.PrefixLen)
	case MatchTernary:
		return "T:" + p.Value + "&" + p.Mask
	}
	return "E:" + p.Value
}

// ActionData is the opaque argument list of an action.
type ActionData []string

// EntryHandle identifies a table entry within one configuration.
type EntryHandle uint32

// MemberHandle identifies an action profile member.
type MemberHandle uint32

// GroupHandle identifies an action profile group.
type GroupHandle uint32

// Entry is one match-action entry.
type Entry struct {
	Handle     EntryHandle     `json:"handle"`
	Key        []MatchKeyParam `json:"key"`
	Priority   int             `json:"priority,omitempty"`
	ActionName string          `json:"actionName,omitempty"`
	ActionData ActionData      `json:"actionData,omitempty"`
	Member     MemberHandle    `json:"member,omitempty"`
	Group      GroupHandle     `json:"group,omitempty"`
	IsGroup    bool            `json:"isGroup,omitempty"`
	TTLMillis  uint32          `json:"ttlMillis,omitempty"`

	CounterBytes   uint64             `json:"counterBytes,omitempty"`
	CounterPackets uint64             `json:"counterPackets,omitempty"`
	MeterRates     []meter.RateConfig `json:"meterRates,omitempty"`
}

func (en *Entry) clone() *Entry {
	dup := *en
	dup.Key = append([]MatchKeyParam(nil), en.Key...)
	dup.ActionData = append(ActionData(nil), en.ActionData...)
	dup.MeterRates = append([]meter.RateConfig(nil), en.MeterRates...)
	return &dup
}

func keyString(key []MatchKeyParam, priority int, withPriority bool) string {
	parts := make([]string, 0, len(key)+1)
	for _, p := range key {
		parts = append(parts, p.keyPart())
	}
	if withPriority {
		parts = append(parts, "P:"+strconv.Itoa(priority))
	}
	return strings.Join(parts, "|")
}
