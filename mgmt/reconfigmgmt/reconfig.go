// Package reconfigmgmt exposes incremental reconfiguration primitives over the management server.
package reconfigmgmt

import (
	"strings"

	"github.com/flexsw/flexsw/sw"
)

// ReconfigMgmt manages runtime reconfiguration of live configurations.
type ReconfigMgmt struct {
	Sw *sw.Switch
}

func (mg ReconfigMgmt) context(cxt int) (*sw.Context, error) {
	return mg.Sw.Context(cxt)
}

// InitArg carries a staging configuration blob.
type InitArg struct {
	Cxt    int    `json:"cxt"`
	Config string `json:"config"`
}

// Init builds the staging graph for subsequent edits.
func (mg ReconfigMgmt) Init(args InitArg, reply *struct{}) error {
	c, e := mg.context(args.Cxt)
	if e != nil {
		return e
	}
	return c.InitStaging([]byte(args.Config))
}

// NodeArg addresses a node by prefixed id.
type NodeArg struct {
	Cxt      int    `json:"cxt"`
	Pipeline string `json:"pipeline"`
	ID       string `json:"id"`
}

// InsertTable copies a table from the staging graph into the live graph.
func (mg ReconfigMgmt) InsertTable(args NodeArg, reply *struct{}) error {
	c, e := mg.context(args.Cxt)
	if e != nil {
		return e
	}
	return c.ReconfigInsertTable(args.Pipeline, args.ID)
}

// InsertConditional copies a conditional from the staging graph into the live graph.
func (mg ReconfigMgmt) InsertConditional(args NodeArg, reply *struct{}) error {
	c, e := mg.context(args.Cxt)
	if e != nil {
		return e
	}
	return c.ReconfigInsertConditional(args.Pipeline, args.ID)
}

// InsertFlexArg creates a flex node.
type InsertFlexArg struct {
	NodeArg
	TrueNext  string `json:"trueNext"`
	FalseNext string `json:"falseNext"`
}

// InsertFlex creates a flex node with both successors.
func (mg ReconfigMgmt) InsertFlex(args InsertFlexArg, reply *struct{}) error {
	c, e := mg.context(args.Cxt)
	if e != nil {
		return e
	}
	return c.ReconfigInsertFlex(args.Pipeline, args.ID, args.TrueNext, args.FalseNext)
}

// ChangeTableArg rewires one table edge.
type ChangeTableArg struct {
	NodeArg
	Edge string `json:"edge"`
	Next string `json:"next"`
}

// ChangeTable rewires one outgoing edge of a table.
func (mg ReconfigMgmt) ChangeTable(args ChangeTableArg, reply *struct{}) error {
	c, e := mg.context(args.Cxt)
	if e != nil {
		return e
	}
	return c.ReconfigChangeTable(args.Pipeline, args.ID, args.Edge, args.Next)
}

// ChangeBranchArg rewires a conditional or flex edge.
type ChangeBranchArg struct {
	NodeArg
	// Branch is "true_next" or "false_next".
	Branch string `json:"branch"`
	Next   string `json:"next"`
}

func trueBranch(branch string) bool {
	return strings.EqualFold(branch, "true_next")
}

// ChangeConditional rewires the true or false edge of a conditional.
func (mg ReconfigMgmt) ChangeConditional(args ChangeBranchArg, reply *struct{}) error {
	c, e := mg.context(args.Cxt)
	if e != nil {
		return e
	}
	return c.ReconfigChangeConditional(args.Pipeline, args.ID, trueBranch(args.Branch), args.Next)
}

// ChangeFlex rewires the true or false edge of a flex node.
func (mg ReconfigMgmt) ChangeFlex(args ChangeBranchArg, reply *struct{}) error {
	c, e := mg.context(args.Cxt)
	if e != nil {
		return e
	}
	return c.ReconfigChangeFlex(args.Pipeline, args.ID, trueBranch(args.Branch), args.Next)
}

// DeleteTable removes a table node from the live graph.
func (mg ReconfigMgmt) DeleteTable(args NodeArg, reply *struct{}) error {
	c, e := mg.context(args.Cxt)
	if e != nil {
		return e
	}
	return c.ReconfigDeleteTable(args.Pipeline, args.ID)
}

// DeleteConditional removes a conditional from the live graph.
func (mg ReconfigMgmt) DeleteConditional(args NodeArg, reply *struct{}) error {
	c, e := mg.context(args.Cxt)
	if e != nil {
		return e
	}
	return c.ReconfigDeleteConditional(args.Pipeline, args.ID)
}

// DeleteFlex removes a flex node from the live graph.
func (mg ReconfigMgmt) DeleteFlex(args NodeArg, reply *struct{}) error {
	c, e := mg.context(args.Cxt)
	if e != nil {
		return e
	}
	return c.ReconfigDeleteFlex(args.Pipeline, args.ID)
}

// InsertRegisterArg creates a register array.
type InsertRegisterArg struct {
	Cxt      int    `json:"cxt"`
	ID       string `json:"id"`
	Size     int    `json:"size"`
	Bitwidth int    `json:"bitwidth"`
}

// InsertRegisterArray creates a register array in the live graph.
func (mg ReconfigMgmt) InsertRegisterArray(args InsertRegisterArg, reply *struct{}) error {
	c, e := mg.context(args.Cxt)
	if e != nil {
		return e
	}
	return c.ReconfigInsertRegisterArray(args.ID, args.Size, args.Bitwidth)
}

// ChangeRegisterArg resizes or re-widths a register array.
type ChangeRegisterArg struct {
	Cxt int    `json:"cxt"`
	ID  string `json:"id"`
	// ChangeType is 0 to resize, 1 to change bit width.
	ChangeType int `json:"changeType"`
	NewValue   int `json:"newValue"`
}

// ChangeRegisterArray resizes or re-widths a register array.
func (mg ReconfigMgmt) ChangeRegisterArray(args ChangeRegisterArg, reply *struct{}) error {
	c, e := mg.context(args.Cxt)
	if e != nil {
		return e
	}
	return c.ReconfigChangeRegisterArray(args.ID, args.ChangeType, args.NewValue)
}

// DeleteRegisterArg removes a register array.
type DeleteRegisterArg struct {
	Cxt int    `json:"cxt"`
	ID  string `json:"id"`
}

// DeleteRegisterArray removes a register array from the live graph.
func (mg ReconfigMgmt) DeleteRegisterArray(args DeleteRegisterArg, reply *struct{}) error {
	c, e := mg.context(args.Cxt)
	if e != nil {
		return e
	}
	return c.ReconfigDeleteRegisterArray(args.ID)
}

// ChangeInitArg rewires a pipeline init node.
type ChangeInitArg struct {
	Cxt      int    `json:"cxt"`
	Pipeline string `json:"pipeline"`
	Next     string `json:"next"`
}

// ChangeInit rewires the init node of a pipeline.
func (mg ReconfigMgmt) ChangeInit(args ChangeInitArg, reply *struct{}) error {
	c, e := mg.context(args.Cxt)
	if e != nil {
		return e
	}
	return c.ReconfigChangeInit(args.Pipeline, args.Next)
}

// TriggerArg arms or disarms flex nodes.
type TriggerArg struct {
	Cxt int  `json:"cxt"`
	On  bool `json:"on"`
	// Number selects flex nodes by mount point; negative selects all.
	Number int `json:"number"`
}

// Trigger arms or disarms flex nodes.
func (mg ReconfigMgmt) Trigger(args TriggerArg, reply *struct{}) error {
	c, e := mg.context(args.Cxt)
	if e != nil {
		return e
	}
	return c.ReconfigTrigger(args.On, args.Number)
}

// PlanArg runs a reconfiguration plan.
type PlanArg struct {
	Cxt    int    `json:"cxt"`
	Config string `json:"config"`
	Plan   string `json:"plan"`
}

// RunPlan applies a line-oriented reconfiguration plan.
func (mg ReconfigMgmt) RunPlan(args PlanArg, reply *struct{}) error {
	c, e := mg.context(args.Cxt)
	if e != nil {
		return e
	}
	return c.RunReconfigPlan([]byte(args.Config), strings.NewReader(args.Plan))
}
