package sw

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/flexsw/flexsw/container/cfggraph"
	"github.com/flexsw/flexsw/core/swerr"
)

// Incremental reconfiguration of the live graph. Every identifier passed to
// a primitive carries a three-letter prefix:
//
//	new_<name>  an object staged by InitStaging, installed before first reference
//	old_<name>  an object already present in the live graph
//	flx_<name>  a flex node injected by the reconfiguration layer
//
// "null" as a target denotes a terminal. Edits apply directly to the live
// graph under the exclusive lock; they stay invisible to traffic until an
// edge, init change, or flex trigger makes the new material reachable.

const (
	prefixNew = "new"
	prefixOld = "old"
	prefixFlx = "flx"
)

// mountPointMarker introduces a flex mount-point tag in the node name:
// flex_func_mount_point_number_$<nonneg int>$.
const mountPointMarker = "flex_func_mount_point_number_"

func splitID(id string) (prefix, suffix string, e error) {
	if len(id) < 4 || id[3] != '_' {
		return "", "", swerr.New(swerr.PrefixError, "id %q has no prefix", id)
	}
	return id[:3], id[4:], nil
}

// resolveID maps a prefixed id to an actual node name.
// Caller must hold requestMu.
func (c *Context) resolveID(id string) (string, error) {
	if id == "null" {
		return "", nil
	}
	prefix, suffix, e := splitID(id)
	if e != nil {
		return "", e
	}
	switch prefix {
	case prefixNew, prefixFlx:
		name, ok := c.idToStaged[id]
		if !ok {
			return "", swerr.New(swerr.UnfoundIDError, "id %s not installed", id)
		}
		return name, nil
	case prefixOld:
		return suffix, nil
	}
	return "", swerr.New(swerr.PrefixError, "prefix %s has no match", prefix)
}

func (c *Context) dupCheck(id string) error {
	if _, ok := c.idToStaged[id]; ok {
		return swerr.New(swerr.DupCheckError, "duplicate id %s", id)
	}
	return nil
}

func (c *Context) stagingGraph() (*cfggraph.Graph, error) {
	if c.edit == nil {
		return nil, swerr.New(swerr.ObjectsInitFail, "no staging graph; call init first")
	}
	return c.edit, nil
}

// InitStaging builds a configuration graph from blob to serve as the source
// of new_ material for subsequent edits. This opens an edit session.
func (c *Context) InitStaging(blob []byte) error {
	if len(blob) == 0 {
		return swerr.New(swerr.OpenJSONStreamFail, "empty staging config")
	}
	g, e := cfggraph.Load(blob, c.sw.loadOptions())
	if e != nil {
		return swerr.New(swerr.ObjectsInitFail, "%v", e)
	}
	c.requestMu.Lock()
	defer c.requestMu.Unlock()
	c.edit = g
	logger.Info("staging graph initialized", zap.Int("cxt", c.id))
	return nil
}

// ReconfigInsertTable copies a match table from the staging graph into the live graph.
func (c *Context) ReconfigInsertTable(pipeline, id string) error {
	prefix, suffix, e := splitID(id)
	if e != nil {
		return e
	}
	if prefix != prefixNew {
		return swerr.New(swerr.PrefixError, "inserted table must have prefix new_, got %s", id)
	}

	c.requestMu.Lock()
	defer c.requestMu.Unlock()
	if e := c.dupCheck(id); e != nil {
		return e
	}
	src, e := c.stagingGraph()
	if e != nil {
		return e
	}
	actual, e := c.live.InsertTableFrom(src, pipeline, suffix, c.sw.lookupFactory)
	if e != nil {
		return e
	}
	c.idToStaged[id] = actual
	c.resolve.Purge()
	return nil
}

// ReconfigInsertConditional copies a conditional from the staging graph into the live graph.
func (c *Context) ReconfigInsertConditional(pipeline, id string) error {
	prefix, suffix, e := splitID(id)
	if e != nil {
		return e
	}
	if prefix != prefixNew {
		return swerr.New(swerr.PrefixError, "inserted conditional must have prefix new_, got %s", id)
	}

	c.requestMu.Lock()
	defer c.requestMu.Unlock()
	if e := c.dupCheck(id); e != nil {
		return e
	}
	src, e := c.stagingGraph()
	if e != nil {
		return e
	}
	actual, e := c.live.InsertConditionalFrom(src, pipeline, suffix)
	if e != nil {
		return e
	}
	c.idToStaged[id] = actual
	return nil
}

// parseMountPoint extracts the mount-point tag from a flex node name.
func parseMountPoint(suffix string) (int, error) {
	first := strings.Index(suffix, "$")
	last := strings.LastIndex(suffix, "$")
	if first < 0 || last <= first || suffix[:first] != mountPointMarker {
		return cfggraph.MountPointNone, nil
	}
	n, e := strconv.Atoi(suffix[first+1 : last])
	if e != nil || n < 0 {
		return 0, swerr.New(swerr.InvalidCommandError, "invalid mount point in %s", suffix)
	}
	return n, nil
}

// ReconfigInsertFlex creates a flex node with both successors.
func (c *Context) ReconfigInsertFlex(pipeline, flxID, trueNextID, falseNextID string) error {
	prefix, suffix, e := splitID(flxID)
	if e != nil {
		return e
	}
	if prefix != prefixFlx {
		return swerr.New(swerr.PrefixError, "inserted flex must have prefix flx_, got %s", flxID)
	}

	c.requestMu.Lock()
	defer c.requestMu.Unlock()
	trueNext, e := c.resolveID(trueNextID)
	if e != nil {
		return e
	}
	falseNext, e := c.resolveID(falseNextID)
	if e != nil {
		return e
	}
	if e := c.dupCheck(flxID); e != nil {
		return e
	}
	mountPoint, e := parseMountPoint(suffix)
	if e != nil {
		return e
	}
	actual, e := c.live.InsertFlex(pipeline, suffix, trueNext, falseNext, mountPoint)
	if e != nil {
		return e
	}
	c.idToStaged[flxID] = actual
	return nil
}

// ReconfigChangeTable rewires one outgoing edge of a table node.
func (c *Context) ReconfigChangeTable(pipeline, id, edgeLabel, nextID string) error {
	c.requestMu.Lock()
	defer c.requestMu.Unlock()
	name, e := c.resolveID(id)
	if e != nil {
		return e
	}
	next, e := c.resolveID(nextID)
	if e != nil {
		return e
	}
	return c.live.ChangeTableNext(pipeline, name, edgeLabel, next)
}

// ReconfigChangeConditional rewires the true or false edge of a conditional.
func (c *Context) ReconfigChangeConditional(pipeline, id string, trueBranch bool, nextID string) error {
	c.requestMu.Lock()
	defer c.requestMu.Unlock()
	name, e := c.resolveID(id)
	if e != nil {
		return e
	}
	next, e := c.resolveID(nextID)
	if e != nil {
		return e
	}
	return c.live.ChangeBranchNext(pipeline, name, trueBranch, next)
}

// ReconfigChangeFlex rewires the true or false edge of a flex node.
// A flex node shares the conditional's edge model.
func (c *Context) ReconfigChangeFlex(pipeline, id string, trueBranch bool, nextID string) error {
	return c.ReconfigChangeConditional(pipeline, id, trueBranch, nextID)
}

func (c *Context) reconfigDelete(pipeline, id string, kind cfggraph.Kind) error {
	c.requestMu.Lock()
	defer c.requestMu.Unlock()
	name, e := c.resolveID(id)
	if e != nil {
		return e
	}
	switch kind {
	case cfggraph.KindTable:
		e = c.live.DeleteTable(pipeline, name)
	case cfggraph.KindConditional:
		e = c.live.DeleteConditional(pipeline, name)
	case cfggraph.KindFlex:
		e = c.live.DeleteFlex(pipeline, name)
	}
	if e != nil {
		return e
	}
	prefix, _, _ := splitID(id)
	if prefix == prefixNew || prefix == prefixFlx {
		if _, ok := c.idToStaged[id]; !ok {
			return swerr.New(swerr.DeleteIDFail, "id %s not tracked", id)
		}
		delete(c.idToStaged, id)
	}
	c.resolve.Purge()
	return nil
}

// ReconfigDeleteTable removes a table node from the live graph.
func (c *Context) ReconfigDeleteTable(pipeline, id string) error {
	return c.reconfigDelete(pipeline, id, cfggraph.KindTable)
}

// ReconfigDeleteConditional removes a conditional from the live graph.
func (c *Context) ReconfigDeleteConditional(pipeline, id string) error {
	return c.reconfigDelete(pipeline, id, cfggraph.KindConditional)
}

// ReconfigDeleteFlex removes a flex node from the live graph.
func (c *Context) ReconfigDeleteFlex(pipeline, id string) error {
	return c.reconfigDelete(pipeline, id, cfggraph.KindFlex)
}

// ReconfigInsertRegisterArray creates a register array in the live graph.
func (c *Context) ReconfigInsertRegisterArray(id string, size, bitwidth int) error {
	prefix, suffix, e := splitID(id)
	if e != nil {
		return e
	}
	if prefix != prefixNew {
		return swerr.New(swerr.PrefixError, "inserted register array must have prefix new_, got %s", id)
	}

	c.requestMu.Lock()
	defer c.requestMu.Unlock()
	if e := c.dupCheck(id); e != nil {
		return e
	}
	if e := c.live.InsertRegisterArray(suffix, size, bitwidth); e != nil {
		return e
	}
	c.idToStaged[id] = suffix
	return nil
}

// Register array change types.
const (
	RegisterChangeSize     = 0
	RegisterChangeBitwidth = 1
)

// ReconfigChangeRegisterArray resizes or re-widths a register array.
func (c *Context) ReconfigChangeRegisterArray(id string, changeType, newValue int) error {
	c.requestMu.Lock()
	defer c.requestMu.Unlock()
	name, e := c.resolveID(id)
	if e != nil {
		return e
	}
	switch changeType {
	case RegisterChangeSize:
		return c.live.ChangeRegisterArraySize(name, newValue)
	case RegisterChangeBitwidth:
		return c.live.ChangeRegisterArrayBitwidth(name, newValue)
	}
	return swerr.New(swerr.InvalidCommandError, "invalid register change type %d", changeType)
}

// ReconfigDeleteRegisterArray removes a register array from the live graph.
func (c *Context) ReconfigDeleteRegisterArray(id string) error {
	c.requestMu.Lock()
	defer c.requestMu.Unlock()
	name, e := c.resolveID(id)
	if e != nil {
		return e
	}
	if e := c.live.DeleteRegisterArray(name); e != nil {
		return e
	}
	prefix, _, _ := splitID(id)
	if prefix == prefixNew {
		delete(c.idToStaged, id)
	}
	return nil
}

// ReconfigChangeInit rewires the init node of a pipeline.
func (c *Context) ReconfigChangeInit(pipeline, nextID string) error {
	c.requestMu.Lock()
	defer c.requestMu.Unlock()
	next, e := c.resolveID(nextID)
	if e != nil {
		return e
	}
	return c.live.ChangeInit(pipeline, next)
}

// ReconfigTrigger arms (on=true) or disarms flex nodes. With number >= 0,
// only the flex nodes with that mount point are flipped; with a negative
// number, all of them. Packets observe either every affected node flipped
// or none. Arming ends the edit session: the staging graph and the id map
// are dropped.
func (c *Context) ReconfigTrigger(on bool, number int) error {
	c.requestMu.Lock()
	defer c.requestMu.Unlock()
	c.live.FlexTrigger(on, number)
	if on {
		c.edit = nil
		c.idToStaged = map[string]string{}
	}
	return nil
}
