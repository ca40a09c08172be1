package cfggraph

import (
	"encoding/json"
	"io"

	"github.com/flexsw/flexsw/container/meter"
	"github.com/flexsw/flexsw/container/table"
	"github.com/flexsw/flexsw/core/swerr"
)

// stateVersion tags the envelope layout.
const stateVersion = 1

type tableState struct {
	Entries      []table.Entry `json:"entries"`
	DefaultEntry *table.Entry  `json:"defaultEntry,omitempty"`
}

type registerState struct {
	Bitwidth int      `json:"bitwidth"`
	Values   []uint64 `json:"values"`
}

type stateEnvelope struct {
	Version   int                             `json:"version"`
	Tables    map[string]tableState           `json:"tables"`
	Counters  map[string][][2]uint64          `json:"counters"`
	Meters    map[string][][]meter.RateConfig `json:"meters"`
	Registers map[string]registerState        `json:"registers"`
}

// SerializeState writes the mutable state of this graph as a self-describing
// envelope: a version tag followed by one section per subsystem.
// Graph structure is not serialized.
func (g *Graph) SerializeState(w io.Writer) error {
	env := stateEnvelope{
		Version:   stateVersion,
		Tables:    map[string]tableState{},
		Counters:  map[string][][2]uint64{},
		Meters:    map[string][][]meter.RateConfig{},
		Registers: map[string]registerState{},
	}
	for name, t := range g.Tables {
		entries, dflt := t.Snapshot()
		env.Tables[name] = tableState{Entries: entries, DefaultEntry: dflt}
	}
	for name, c := range g.Counters {
		env.Counters[name] = c.Snapshot()
	}
	for name, m := range g.Meters {
		env.Meters[name] = m.Snapshot()
	}
	for name, r := range g.Registers {
		env.Registers[name] = registerState{Bitwidth: r.Bitwidth(), Values: r.Snapshot()}
	}

	enc := json.NewEncoder(w)
	if e := enc.Encode(env); e != nil {
		return swerr.New(swerr.OpenOutputFileFail, "encode state: %v", e)
	}
	return nil
}

// DeserializeState restores mutable state from an envelope produced by
// SerializeState. The graph must be structurally equivalent to the one that
// produced the envelope; mismatches fail with STATE_MISMATCH and may leave
// state partially restored.
func (g *Graph) DeserializeState(r io.Reader) error {
	var env stateEnvelope
	if e := json.NewDecoder(r).Decode(&env); e != nil {
		return swerr.New(swerr.StateMismatch, "decode state: %v", e)
	}
	if env.Version != stateVersion {
		return swerr.New(swerr.StateMismatch, "state version %d, want %d", env.Version, stateVersion)
	}

	if len(env.Tables) != len(g.Tables) {
		return swerr.New(swerr.StateMismatch, "state has %d tables, graph has %d", len(env.Tables), len(g.Tables))
	}
	for name, ts := range env.Tables {
		t, ok := g.Tables[name]
		if !ok {
			return swerr.New(swerr.StateMismatch, "state has unknown table %s", name)
		}
		if e := t.Restore(ts.Entries, ts.DefaultEntry); e != nil {
			return e
		}
	}

	if len(env.Counters) != len(g.Counters) {
		return swerr.New(swerr.StateMismatch, "state has %d counter arrays, graph has %d", len(env.Counters), len(g.Counters))
	}
	for name, values := range env.Counters {
		c, ok := g.Counters[name]
		if !ok {
			return swerr.New(swerr.StateMismatch, "state has unknown counter array %s", name)
		}
		if e := c.Restore(values); e != nil {
			return e
		}
	}

	if len(env.Meters) != len(g.Meters) {
		return swerr.New(swerr.StateMismatch, "state has %d meter arrays, graph has %d", len(env.Meters), len(g.Meters))
	}
	for name, values := range env.Meters {
		m, ok := g.Meters[name]
		if !ok {
			return swerr.New(swerr.StateMismatch, "state has unknown meter array %s", name)
		}
		if e := m.Restore(values); e != nil {
			return e
		}
	}

	if len(env.Registers) != len(g.Registers) {
		return swerr.New(swerr.StateMismatch, "state has %d register arrays, graph has %d", len(env.Registers), len(g.Registers))
	}
	for name, rs := range env.Registers {
		reg, ok := g.Registers[name]
		if !ok {
			return swerr.New(swerr.StateMismatch, "state has unknown register array %s", name)
		}
		if reg.Bitwidth() != rs.Bitwidth {
			return swerr.New(swerr.StateMismatch, "register %s bitwidth %d, state has %d", name, reg.Bitwidth(), rs.Bitwidth)
		}
		if e := reg.Restore(rs.Values); e != nil {
			return e
		}
	}
	return nil
}
