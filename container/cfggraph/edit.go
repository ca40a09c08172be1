package cfggraph

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/flexsw/flexsw/container/register"
	"github.com/flexsw/flexsw/container/table"
	"github.com/flexsw/flexsw/core/swerr"
)

// The edit primitives below mutate a live graph in place. Callers must hold
// the owning context's exclusive lock. Newly inserted nodes are unreachable
// until an edge, init, or flex trigger makes them so; that is what keeps the
// mutations invisible to inflight traffic.

// uniqueName picks a node name not yet present in the graph.
func (g *Graph) uniqueName(name string) string {
	if _, ok := g.nodes[name]; !ok {
		return name
	}
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s$%d", name, i)
		if _, ok := g.nodes[candidate]; !ok {
			return candidate
		}
	}
}

func (g *Graph) pipelineOf(name string) (*Pipeline, error) {
	p, ok := g.pipelines[name]
	if !ok {
		return nil, swerr.New(swerr.PipelineNotFound, "no pipeline %s", name)
	}
	return p, nil
}

// InsertTableFrom copies a match table node from a staging graph.
// Returns the name the node received in this graph.
func (g *Graph) InsertTableFrom(src *Graph, pipeline, name string, factory table.LookupFactory) (string, error) {
	p, e := g.pipelineOf(pipeline)
	if e != nil {
		return "", e
	}
	srcNode, ok := src.Node(name)
	if !ok {
		return "", swerr.New(swerr.NodeNotFound, "staging graph has no node %s", name)
	}
	tn, ok := srcNode.(*TableNode)
	if !ok {
		return "", swerr.New(swerr.WrongTableType, "staging node %s is a %s", name, srcNode.NodeKind())
	}

	actual := g.uniqueName(name)
	tbl := tn.Table.CloneEmpty(actual, factory)
	next := make(map[string]string, len(tn.Next))
	for label := range tn.Next {
		next[label] = ""
	}
	node := &TableNode{name: actual, Table: tbl, Next: next}
	p.nodes[actual] = node
	g.nodes[actual] = node
	g.Tables[actual] = tbl
	logger.Info("table inserted", zap.String("pipeline", pipeline), zap.String("node", actual))
	return actual, nil
}

// InsertConditionalFrom copies a conditional node from a staging graph.
func (g *Graph) InsertConditionalFrom(src *Graph, pipeline, name string) (string, error) {
	p, e := g.pipelineOf(pipeline)
	if e != nil {
		return "", e
	}
	srcNode, ok := src.Node(name)
	if !ok {
		return "", swerr.New(swerr.NodeNotFound, "staging graph has no node %s", name)
	}
	cn, ok := srcNode.(*Conditional)
	if !ok {
		return "", swerr.New(swerr.NodeNotFound, "staging node %s is a %s", name, srcNode.NodeKind())
	}

	actual := g.uniqueName(name)
	node := &Conditional{name: actual, Expression: cn.Expression}
	p.nodes[actual] = node
	g.nodes[actual] = node
	logger.Info("conditional inserted", zap.String("pipeline", pipeline), zap.String("node", actual))
	return actual, nil
}

// InsertFlex creates a flex node with both successors.
// The node starts disarmed, forwarding to falseNext.
func (g *Graph) InsertFlex(pipeline, name, trueNext, falseNext string, mountPoint int) (string, error) {
	p, e := g.pipelineOf(pipeline)
	if e != nil {
		return "", e
	}
	if e := g.checkTarget(p, trueNext); e != nil {
		return "", e
	}
	if e := g.checkTarget(p, falseNext); e != nil {
		return "", e
	}

	actual := g.uniqueName(name)
	node := &Flex{name: actual, TrueNext: trueNext, FalseNext: falseNext, MountPoint: mountPoint}
	p.nodes[actual] = node
	g.nodes[actual] = node
	logger.Info("flex inserted",
		zap.String("pipeline", pipeline),
		zap.String("node", actual),
		zap.Int("mountPoint", mountPoint),
	)
	return actual, nil
}

func (g *Graph) checkTarget(p *Pipeline, target string) error {
	if target == "" {
		return nil
	}
	if _, ok := p.nodes[target]; !ok {
		return swerr.New(swerr.NodeNotFound, "pipeline %s has no node %s", p.Name, target)
	}
	return nil
}

// ChangeTableNext rewires one outgoing edge of a table node.
func (g *Graph) ChangeTableNext(pipeline, name, label, next string) error {
	p, e := g.pipelineOf(pipeline)
	if e != nil {
		return e
	}
	n, ok := p.nodes[name]
	if !ok {
		return swerr.New(swerr.NodeNotFound, "pipeline %s has no node %s", pipeline, name)
	}
	tn, ok := n.(*TableNode)
	if !ok {
		return swerr.New(swerr.WrongTableType, "node %s is a %s", name, n.NodeKind())
	}
	if e := g.checkTarget(p, next); e != nil {
		return e
	}
	if label == "base_default_next" {
		tn.BaseDefaultNext = next
	} else {
		tn.Next[label] = next
	}
	return nil
}

// ChangeBranchNext rewires the true or false edge of a conditional or flex node.
func (g *Graph) ChangeBranchNext(pipeline, name string, trueBranch bool, next string) error {
	p, e := g.pipelineOf(pipeline)
	if e != nil {
		return e
	}
	n, ok := p.nodes[name]
	if !ok {
		return swerr.New(swerr.NodeNotFound, "pipeline %s has no node %s", pipeline, name)
	}
	if e := g.checkTarget(p, next); e != nil {
		return e
	}
	switch n := n.(type) {
	case *Conditional:
		if trueBranch {
			n.TrueNext = next
		} else {
			n.FalseNext = next
		}
	case *Flex:
		if trueBranch {
			n.TrueNext = next
		} else {
			n.FalseNext = next
		}
	default:
		return swerr.New(swerr.NodeNotFound, "node %s is a %s", name, n.NodeKind())
	}
	return nil
}

// ChangeInit rewires the init node of a pipeline.
func (g *Graph) ChangeInit(pipeline, next string) error {
	p, e := g.pipelineOf(pipeline)
	if e != nil {
		return e
	}
	if _, ok := p.nodes[next]; !ok {
		return swerr.New(swerr.NodeNotFound, "pipeline %s has no node %s", pipeline, next)
	}
	p.initNode = next
	return nil
}

func (g *Graph) deleteNode(pipeline, name string, kind Kind) error {
	p, e := g.pipelineOf(pipeline)
	if e != nil {
		return e
	}
	n, ok := p.nodes[name]
	if !ok {
		return swerr.New(swerr.NodeNotFound, "pipeline %s has no node %s", pipeline, name)
	}
	if n.NodeKind() != kind {
		return swerr.New(swerr.NodeNotFound, "node %s is a %s, not a %s", name, n.NodeKind(), kind)
	}
	delete(p.nodes, name)
	delete(g.nodes, name)
	if kind == KindTable {
		delete(g.Tables, name)
	}
	logger.Info("node deleted", zap.String("pipeline", pipeline), zap.String("node", name))
	return nil
}

// DeleteTable removes a table node from the graph.
func (g *Graph) DeleteTable(pipeline, name string) error {
	return g.deleteNode(pipeline, name, KindTable)
}

// DeleteConditional removes a conditional node from the graph.
func (g *Graph) DeleteConditional(pipeline, name string) error {
	return g.deleteNode(pipeline, name, KindConditional)
}

// DeleteFlex removes a flex node from the graph.
func (g *Graph) DeleteFlex(pipeline, name string) error {
	return g.deleteNode(pipeline, name, KindFlex)
}

// InsertRegisterArray creates a register array.
func (g *Graph) InsertRegisterArray(name string, size, bitwidth int) error {
	if _, ok := g.Registers[name]; ok {
		return swerr.New(swerr.InvalidCommandError, "register array %s already exists", name)
	}
	g.Registers[name] = register.New(name, size, bitwidth)
	return nil
}

// ChangeRegisterArraySize resizes a register array.
func (g *Graph) ChangeRegisterArraySize(name string, size int) error {
	r, e := g.Register(name)
	if e != nil {
		return e
	}
	return r.Resize(size)
}

// ChangeRegisterArrayBitwidth changes the cell width of a register array.
func (g *Graph) ChangeRegisterArrayBitwidth(name string, bitwidth int) error {
	r, e := g.Register(name)
	if e != nil {
		return e
	}
	return r.SetBitwidth(bitwidth)
}

// DeleteRegisterArray removes a register array.
func (g *Graph) DeleteRegisterArray(name string) error {
	if _, ok := g.Registers[name]; !ok {
		return swerr.New(swerr.RegisterNotFound, "no register array %s", name)
	}
	delete(g.Registers, name)
	return nil
}

// FlexTrigger arms or disarms flex nodes across all pipelines.
// With number >= 0, only flex nodes whose mount point matches are flipped.
// A packet entering a pipeline after this returns observes either every
// affected flex node flipped or none, because the caller holds the
// exclusive lock for the whole sweep.
func (g *Graph) FlexTrigger(on bool, number int) {
	count := 0
	for _, p := range g.pipelines {
		for _, f := range p.FlexNodes() {
			if number >= 0 && f.MountPoint != number {
				continue
			}
			f.setArmed(on)
			count++
		}
	}
	logger.Info("flex trigger",
		zap.Bool("on", on),
		zap.Int("number", number),
		zap.Int("flipped", count),
	)
}
