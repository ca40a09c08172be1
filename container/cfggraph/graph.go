// Package cfggraph models one complete forwarding configuration:
// named pipelines of match tables, conditionals, and flex nodes, plus the
// stateful objects (registers, meters, counters, parse value sets) and
// auxiliary objects (learn lists, CRC calculators, extern instances) that a
// configuration carries.
package cfggraph

import (
	"crypto/md5"
	"fmt"

	"go.uber.org/multierr"

	"github.com/flexsw/flexsw/container/counter"
	"github.com/flexsw/flexsw/container/crcmgr"
	"github.com/flexsw/flexsw/container/meter"
	"github.com/flexsw/flexsw/container/register"
	"github.com/flexsw/flexsw/container/table"
	"github.com/flexsw/flexsw/container/vset"
	"github.com/flexsw/flexsw/core/logging"
	"github.com/flexsw/flexsw/core/swerr"
)

var logger = logging.New("cfggraph")

// Pipeline is a named directed graph of control nodes with a distinguished init node.
type Pipeline struct {
	Name     string
	initNode string
	nodes    map[string]Node
}

// Init returns the init node name.
func (p *Pipeline) Init() string { return p.initNode }

// Node returns a node by name.
func (p *Pipeline) Node(name string) (Node, bool) {
	n, ok := p.nodes[name]
	return n, ok
}

// Nodes returns the node table.
func (p *Pipeline) Nodes() map[string]Node { return p.nodes }

// FlexNodes returns the flex nodes of this pipeline.
func (p *Pipeline) FlexNodes() (flexes []*Flex) {
	for _, n := range p.nodes {
		if f, ok := n.(*Flex); ok {
			flexes = append(flexes, f)
		}
	}
	return flexes
}

// Parser is a named parser view; parsing itself is an executor concern.
type Parser struct {
	Name string `json:"name"`
}

// Deparser is a named deparser view.
type Deparser struct {
	Name string `json:"name"`
}

// FieldRef names one header field.
type FieldRef struct {
	Header string `json:"header"`
	Field  string `json:"field"`
}

// FieldList is a learn list: an ordered set of fields reported to the learning engine.
type FieldList struct {
	ID       int        `json:"id"`
	Name     string     `json:"name"`
	Elements []FieldRef `json:"elements"`
}

// Extern is a named extern instance with opaque attributes.
type Extern struct {
	Name       string            `json:"name"`
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// Graph is one fully-built forwarding configuration.
// Structure is immutable except through the edit primitives in edit.go,
// which the owner must call under its exclusive lock.
type Graph struct {
	pipelines map[string]*Pipeline
	nodes     map[string]Node

	Tables    map[string]*table.Table
	Profiles  map[string]*table.Profile
	Registers map[string]*register.Array
	Meters    map[string]*meter.Array
	Counters  map[string]*counter.Array
	VSets     map[string]*vset.Set
	Learns    map[int]*FieldList
	CRC       *crcmgr.Mgr
	Externs   map[string]*Extern

	parsers   map[string]*Parser
	deparsers map[string]*Deparser
	options   map[string]string
	headers   map[string]map[string]int
	arith     map[FieldRef]struct{}
	raw       []byte
}

// NewEmpty creates a graph with no pipelines, serving as the placeholder
// configuration of a context before the first load.
func NewEmpty() *Graph {
	g := newGraph()
	g.raw = []byte("{}")
	return g
}

func newGraph() *Graph {
	return &Graph{
		pipelines: map[string]*Pipeline{},
		nodes:     map[string]Node{},
		Tables:    map[string]*table.Table{},
		Profiles:  map[string]*table.Profile{},
		Registers: map[string]*register.Array{},
		Meters:    map[string]*meter.Array{},
		Counters:  map[string]*counter.Array{},
		VSets:     map[string]*vset.Set{},
		Learns:    map[int]*FieldList{},
		CRC:       crcmgr.NewMgr(),
		Externs:   map[string]*Extern{},
		parsers:   map[string]*Parser{},
		deparsers: map[string]*Deparser{},
		options:   map[string]string{},
		headers:   map[string]map[string]int{},
		arith:     map[FieldRef]struct{}{},
	}
}

// Pipeline returns a pipeline by name.
func (g *Graph) Pipeline(name string) (*Pipeline, bool) {
	p, ok := g.pipelines[name]
	return p, ok
}

// Pipelines returns the pipeline table.
func (g *Graph) Pipelines() map[string]*Pipeline { return g.pipelines }

// Node returns a node by name from any pipeline.
func (g *Graph) Node(name string) (Node, bool) {
	n, ok := g.nodes[name]
	return n, ok
}

// Parser returns a parser view by name, or nil.
func (g *Graph) Parser(name string) *Parser { return g.parsers[name] }

// Deparser returns a deparser view by name, or nil.
func (g *Graph) Deparser(name string) *Deparser { return g.deparsers[name] }

// FieldList returns a learn list by id, or nil.
func (g *Graph) FieldList(id int) *FieldList { return g.Learns[id] }

// ExternInstance returns an extern instance by name.
func (g *Graph) ExternInstance(name string) (*Extern, error) {
	if ext, ok := g.Externs[name]; ok {
		return ext, nil
	}
	return nil, swerr.New(swerr.ExternNotFound, "no extern instance %s", name)
}

// Table returns a match table by name.
func (g *Graph) Table(name string) (*table.Table, error) {
	if t, ok := g.Tables[name]; ok {
		return t, nil
	}
	return nil, swerr.New(swerr.TableNotFound, "no table %s", name)
}

// Profile returns an action profile by name.
func (g *Graph) Profile(name string) (*table.Profile, error) {
	if p, ok := g.Profiles[name]; ok {
		return p, nil
	}
	return nil, swerr.New(swerr.ActProfNotFound, "no action profile %s", name)
}

// Register returns a register array by name.
func (g *Graph) Register(name string) (*register.Array, error) {
	if r, ok := g.Registers[name]; ok {
		return r, nil
	}
	return nil, swerr.New(swerr.RegisterNotFound, "no register array %s", name)
}

// Meter returns a meter array by name.
func (g *Graph) Meter(name string) (*meter.Array, error) {
	if m, ok := g.Meters[name]; ok {
		return m, nil
	}
	return nil, swerr.New(swerr.MeterNotFound, "no meter array %s", name)
}

// Counter returns a counter array by name.
func (g *Graph) Counter(name string) (*counter.Array, error) {
	if c, ok := g.Counters[name]; ok {
		return c, nil
	}
	return nil, swerr.New(swerr.CounterNotFound, "no counter array %s", name)
}

// VSet returns a parse value set by name.
func (g *Graph) VSet(name string) (*vset.Set, error) {
	if s, ok := g.VSets[name]; ok {
		return s, nil
	}
	return nil, swerr.New(swerr.ParseVSetNotFound, "no parse vset %s", name)
}

// FieldExists reports whether a header field was defined in the input config.
func (g *Graph) FieldExists(header, field string) bool {
	fields, ok := g.headers[header]
	if !ok {
		return false
	}
	_, ok = fields[field]
	return ok
}

// ForceArithField enables arithmetic on a field. No effect if the field is absent.
func (g *Graph) ForceArithField(header, field string) {
	if g.FieldExists(header, field) {
		g.arith[FieldRef{header, field}] = struct{}{}
	}
}

// ForceArithHeader enables arithmetic on every field of a header.
func (g *Graph) ForceArithHeader(header string) {
	for field := range g.headers[header] {
		g.arith[FieldRef{header, field}] = struct{}{}
	}
}

// ArithEnabled reports whether arithmetic is enabled on a field.
func (g *Graph) ArithEnabled(header, field string) bool {
	_, ok := g.arith[FieldRef{header, field}]
	return ok
}

// ConfigOptions returns the target-specific options of this configuration.
func (g *Graph) ConfigOptions() map[string]string {
	options := make(map[string]string, len(g.options))
	for k, v := range g.options {
		options[k] = v
	}
	return options
}

// Raw returns the input bytes this graph was built from.
func (g *Graph) Raw() []byte { return g.raw }

// MD5 returns the digest of the input bytes.
func (g *Graph) MD5() [md5.Size]byte { return md5.Sum(g.raw) }

// Validate checks the structural invariants: every successor edge targets an
// existing node of the same pipeline or is terminal, and every init node exists.
func (g *Graph) Validate() error {
	var errs error
	check := func(p *Pipeline, from, to string) {
		if to == "" {
			return
		}
		if _, ok := p.nodes[to]; !ok {
			errs = multierr.Append(errs, fmt.Errorf("pipeline %s: node %s references missing node %s", p.Name, from, to))
		}
	}
	for _, p := range g.pipelines {
		if _, ok := p.nodes[p.initNode]; !ok {
			errs = multierr.Append(errs, fmt.Errorf("pipeline %s: init node %s missing", p.Name, p.initNode))
		}
		for name, n := range p.nodes {
			switch n := n.(type) {
			case *TableNode:
				for _, next := range n.Next {
					check(p, name, next)
				}
				check(p, name, n.BaseDefaultNext)
			case *Conditional:
				check(p, name, n.TrueNext)
				check(p, name, n.FalseNext)
			case *Flex:
				check(p, name, n.TrueNext)
				check(p, name, n.FalseNext)
			}
		}
	}
	return errs
}

// ResetState discards all entries, counters, meters, registers, and parse
// vset values, keeping graph structure.
func (g *Graph) ResetState() {
	for _, t := range g.Tables {
		t.ClearEntries(true)
	}
	for _, c := range g.Counters {
		c.Reset()
	}
	for _, m := range g.Meters {
		m.Reset()
	}
	for _, r := range g.Registers {
		r.Reset()
	}
	for _, s := range g.VSets {
		s.Clear()
	}
	logger.Debug("state reset")
}
