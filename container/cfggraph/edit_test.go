package cfggraph_test

import (
	"testing"

	"github.com/flexsw/flexsw/container/cfggraph"
	"github.com/flexsw/flexsw/core/swerr"
	"github.com/flexsw/flexsw/core/testenv"
)

const stagingConfig = `{
  "actions": [{"name": "mark"}],
  "pipelines": [
    {
      "name": "ingress",
      "init_table": "checker",
      "tables": [
        {"name": "checker", "actions": ["mark"], "next_tables": {"mark": null}}
      ],
      "conditionals": [
        {"name": "gate", "expression": "meta.flag == 1", "true_next": "checker", "false_next": null}
      ]
    }
  ]
}`

func TestInsertFromStaging(t *testing.T) {
	assert, require := testenv.MakeAR(t)
	live := loadBase(t, cfggraph.LoadOptions{})
	staging, e := cfggraph.Load([]byte(stagingConfig), cfggraph.LoadOptions{})
	require.NoError(e)

	actual, e := live.InsertTableFrom(staging, "ingress", "checker", nil)
	require.NoError(e)
	assert.Equal("checker", actual)

	// a second insert of the same name gets a fresh name
	actual2, e := live.InsertTableFrom(staging, "ingress", "checker", nil)
	require.NoError(e)
	assert.NotEqual(actual, actual2)

	_, e = live.InsertTableFrom(staging, "ingress", "ghost", nil)
	assert.Equal(swerr.NodeNotFound, swerr.CodeOf(e))
	_, e = live.InsertTableFrom(staging, "egress", "checker", nil)
	assert.Equal(swerr.PipelineNotFound, swerr.CodeOf(e))

	condName, e := live.InsertConditionalFrom(staging, "ingress", "gate")
	require.NoError(e)

	// inserted nodes are detached until edges are rewired
	p, _ := live.Pipeline("ingress")
	n, ok := p.Node(actual)
	require.True(ok)
	assert.Empty(n.(*cfggraph.TableNode).Successor("mark"))
	cond, _ := p.Node(condName)
	assert.Empty(cond.(*cfggraph.Conditional).TrueNext)

	require.NoError(live.ChangeTableNext("ingress", actual, "mark", "dmac"))
	assert.Equal("dmac", n.(*cfggraph.TableNode).Successor("mark"))

	require.NoError(live.ChangeBranchNext("ingress", condName, true, actual))
	assert.Equal(actual, cond.(*cfggraph.Conditional).TrueNext)

	assert.Equal(swerr.NodeNotFound, swerr.CodeOf(live.ChangeTableNext("ingress", actual, "mark", "ghost")))

	require.NoError(live.DeleteConditional("ingress", condName))
	require.NoError(live.DeleteTable("ingress", actual2))
	_, ok = p.Node(actual2)
	assert.False(ok)
	assert.Equal(swerr.NodeNotFound, swerr.CodeOf(live.DeleteTable("ingress", actual2)))
}

func TestFlexLifecycle(t *testing.T) {
	assert, require := testenv.MakeAR(t)
	live := loadBase(t, cfggraph.LoadOptions{})

	name, e := live.InsertFlex("ingress", "bypass", "dmac", "smac", cfggraph.MountPointNone)
	require.NoError(e)

	p, _ := live.Pipeline("ingress")
	n, ok := p.Node(name)
	require.True(ok)
	flex := n.(*cfggraph.Flex)

	assert.False(flex.Armed())
	assert.Equal("smac", flex.Target())

	live.FlexTrigger(true, -1)
	assert.True(flex.Armed())
	assert.Equal("dmac", flex.Target())

	live.FlexTrigger(false, -1)
	assert.False(flex.Armed())
	assert.Equal("smac", flex.Target())

	require.NoError(live.ChangeInit("ingress", name))
	assert.Equal(name, p.Init())
	assert.Equal(swerr.NodeNotFound, swerr.CodeOf(live.ChangeInit("ingress", "ghost")))

	require.NoError(live.ChangeInit("ingress", "smac"))
	require.NoError(live.DeleteFlex("ingress", name))
}

func TestFlexTriggerByNumber(t *testing.T) {
	assert, require := testenv.MakeAR(t)
	live := loadBase(t, cfggraph.LoadOptions{})

	n0, e := live.InsertFlex("ingress", "f0", "dmac", "smac", 0)
	require.NoError(e)
	n1, e := live.InsertFlex("ingress", "f1", "dmac", "smac", 1)
	require.NoError(e)
	nAll, e := live.InsertFlex("ingress", "f2", "dmac", "smac", cfggraph.MountPointNone)
	require.NoError(e)

	p, _ := live.Pipeline("ingress")
	flex := func(name string) *cfggraph.Flex {
		n, _ := p.Node(name)
		return n.(*cfggraph.Flex)
	}

	live.FlexTrigger(true, 1)
	assert.False(flex(n0).Armed())
	assert.True(flex(n1).Armed())
	assert.False(flex(nAll).Armed())

	live.FlexTrigger(true, -1)
	assert.True(flex(n0).Armed())
	assert.True(flex(nAll).Armed())

	live.FlexTrigger(false, -1)
	assert.False(flex(n0).Armed())
	assert.False(flex(n1).Armed())
	assert.False(flex(nAll).Armed())
}

func TestRegisterArrayEdits(t *testing.T) {
	assert, require := testenv.MakeAR(t)
	live := loadBase(t, cfggraph.LoadOptions{})

	require.NoError(live.InsertRegisterArray("scratch", 8, 16))
	assert.Error(live.InsertRegisterArray("scratch", 8, 16))

	require.NoError(live.ChangeRegisterArraySize("scratch", 32))
	reg, e := live.Register("scratch")
	require.NoError(e)
	assert.Equal(32, reg.Size())

	require.NoError(live.ChangeRegisterArrayBitwidth("scratch", 8))
	assert.Equal(8, reg.Bitwidth())

	assert.Equal(swerr.RegisterNotFound, swerr.CodeOf(live.ChangeRegisterArraySize("ghost", 1)))

	require.NoError(live.DeleteRegisterArray("scratch"))
	assert.Equal(swerr.RegisterNotFound, swerr.CodeOf(live.DeleteRegisterArray("scratch")))
}
