package cfggraph

import "github.com/flexsw/flexsw/container/table"

// Kind identifies the variant of a control node.
type Kind int

// Node kinds.
const (
	KindTable Kind = iota
	KindConditional
	KindFlex
)

func (k Kind) String() string {
	switch k {
	case KindTable:
		return "table"
	case KindConditional:
		return "conditional"
	case KindFlex:
		return "flex"
	}
	return "unknown"
}

// Node is one control node in a pipeline.
// Successor edges name other nodes in the same pipeline; the empty string is a terminal.
type Node interface {
	NodeName() string
	NodeKind() Kind
}

// TableNode wraps a match table with its successor edges.
type TableNode struct {
	name string
	// Table is the match-entry store.
	Table *table.Table
	// Next maps action or hit/miss labels to successor node names.
	Next map[string]string
	// BaseDefaultNext is the successor when no label applies.
	BaseDefaultNext string
}

// NodeName implements Node.
func (n *TableNode) NodeName() string { return n.name }

// NodeKind implements Node.
func (n *TableNode) NodeKind() Kind { return KindTable }

// Successor returns the next node name for an action label.
func (n *TableNode) Successor(label string) string {
	if next, ok := n.Next[label]; ok {
		return next
	}
	return n.BaseDefaultNext
}

// Conditional branches on a boolean expression.
type Conditional struct {
	name string
	// Expression is the opaque condition source; evaluation is an executor concern.
	Expression string
	TrueNext   string
	FalseNext  string
}

// NodeName implements Node.
func (n *Conditional) NodeName() string { return n.name }

// NodeKind implements Node.
func (n *Conditional) NodeKind() Kind { return KindConditional }

// MountPointNone tags a flex node without a mount point.
const MountPointNone = -1

// Flex is a conditional injected by runtime reconfiguration.
// While disarmed it forwards to FalseNext (the pre-edit path); arming it
// reroutes traffic to TrueNext. The armed flag is flipped only under the
// owning context's exclusive lock.
type Flex struct {
	name       string
	TrueNext   string
	FalseNext  string
	MountPoint int
	armed      bool
}

// NodeName implements Node.
func (n *Flex) NodeName() string { return n.name }

// NodeKind implements Node.
func (n *Flex) NodeKind() Kind { return KindFlex }

// Armed reports the trigger state.
func (n *Flex) Armed() bool { return n.armed }

// Target returns the active successor.
func (n *Flex) Target() string {
	if n.armed {
		return n.TrueNext
	}
	return n.FalseNext
}

func (n *Flex) setArmed(on bool) { n.armed = on }
