package sw_test

import (
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/flexsw/flexsw/container/cfggraph"
	"github.com/flexsw/flexsw/core/swerr"
	"github.com/flexsw/flexsw/core/testenv"
	"github.com/flexsw/flexsw/sw"
)

const stagingT3 = `{
  "actions": [{"name": "fwd"}],
  "pipelines": [
    {"name": "ingress", "init_table": "t3",
     "tables": [{"name": "t3", "actions": ["fwd"], "next_tables": {"fwd": null}}]}
  ]
}`

// walk follows the pipeline from its init node, one successor per node kind.
func walk(g *cfggraph.Graph, pipeline string) (visited []string) {
	p, ok := g.Pipeline(pipeline)
	if !ok {
		return nil
	}
	name := p.Init()
	for steps := 0; name != "" && steps < 16; steps++ {
		visited = append(visited, name)
		n, ok := p.Node(name)
		if !ok {
			break
		}
		switch n := n.(type) {
		case *cfggraph.TableNode:
			name = n.Successor("fwd")
		case *cfggraph.Conditional:
			name = n.TrueNext
		case *cfggraph.Flex:
			name = n.Target()
		}
	}
	return visited
}

func TestFlexTriggerReroute(t *testing.T) {
	assert, require := testenv.MakeAR(t)
	s := newSwitch(t, configA)
	c, e := s.Context(0)
	require.NoError(e)

	require.NoError(c.InitStaging([]byte(stagingT3)))
	require.NoError(c.ReconfigInsertTable("ingress", "new_t3"))
	require.NoError(c.ReconfigInsertFlex("ingress", "flx_1", "new_t3", "old_t1"))
	require.NoError(c.ReconfigChangeInit("ingress", "flx_1"))

	// staged material is invisible before the trigger
	pkt, e := s.NewPacket(0, 1, 1, nil)
	require.NoError(e)
	path := walk(pkt.Graph(), "ingress")
	pkt.Close()
	assert.Contains(path, "t1")
	assert.NotContains(path, "t3")

	require.NoError(c.ReconfigTrigger(true, -1))

	pkt, e = s.NewPacket(0, 1, 2, nil)
	require.NoError(e)
	path = walk(pkt.Graph(), "ingress")
	pkt.Close()
	assert.Contains(path, "t3")
	assert.NotContains(path, "t1")

	// trigger(off) flips back cleanly
	require.NoError(c.ReconfigTrigger(false, -1))
	pkt, e = s.NewPacket(0, 1, 3, nil)
	require.NoError(e)
	path = walk(pkt.Graph(), "ingress")
	pkt.Close()
	assert.Contains(path, "t1")
}

func TestTriggerAtomicityUnderReaders(t *testing.T) {
	assert, require := testenv.MakeAR(t)
	s := newSwitch(t, configA)
	c, e := s.Context(0)
	require.NoError(e)

	require.NoError(c.InitStaging([]byte(stagingT3)))
	require.NoError(c.ReconfigInsertTable("ingress", "new_t3"))
	require.NoError(c.ReconfigInsertFlex("ingress", "flx_1", "new_t3", "old_t1"))
	require.NoError(c.ReconfigChangeInit("ingress", "flx_1"))

	var stop atomic.Bool
	var mixed atomic.Bool
	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := uint64(0); !stop.Load(); i++ {
				pkt, e := s.NewPacket(0, 1, i, nil)
				if e != nil {
					return
				}
				path := strings.Join(walk(pkt.Graph(), "ingress"), ">")
				pkt.Close()
				sawOld := strings.Contains(path, "t1")
				sawNew := strings.Contains(path, "t3")
				if sawOld == sawNew {
					mixed.Store(true)
				}
			}
		}()
	}

	require.NoError(c.ReconfigTrigger(true, -1))

	// after the trigger returns, no packet may observe the old path
	pkt, e := s.NewPacket(0, 1, 0, nil)
	require.NoError(e)
	path := walk(pkt.Graph(), "ingress")
	pkt.Close()
	assert.Contains(path, "t3")

	stop.Store(true)
	wg.Wait()
	assert.False(mixed.Load(), "a packet observed a mixed graph")
}

func TestNamingDiscipline(t *testing.T) {
	assert, require := testenv.MakeAR(t)
	s := newSwitch(t, configA)
	c, e := s.Context(0)
	require.NoError(e)

	require.NoError(c.InitStaging([]byte(stagingT3)))

	require.NoError(c.ReconfigInsertTable("ingress", "new_t3"))
	assert.Equal(swerr.DupCheckError, swerr.CodeOf(c.ReconfigInsertTable("ingress", "new_t3")))

	assert.Equal(swerr.PrefixError, swerr.CodeOf(c.ReconfigInsertTable("ingress", "xxx_t3")))
	assert.Equal(swerr.PrefixError, swerr.CodeOf(c.ReconfigInsertTable("ingress", "t3")))
	assert.Equal(swerr.PrefixError, swerr.CodeOf(c.ReconfigChangeTable("ingress", "xxx_foo", "fwd", "old_t2")))
	assert.Equal(swerr.UnfoundIDError, swerr.CodeOf(c.ReconfigChangeTable("ingress", "new_unseen", "fwd", "old_t2")))
	assert.Equal(swerr.UnfoundIDError, swerr.CodeOf(c.ReconfigChangeTable("ingress", "old_t1", "fwd", "new_unseen")))

	// old_ suffix is used verbatim; null is a terminal
	require.NoError(c.ReconfigChangeTable("ingress", "old_t1", "fwd", "new_t3"))
	require.NoError(c.ReconfigChangeTable("ingress", "old_t1", "fwd", "null"))
}

func TestReconfigWithoutStaging(t *testing.T) {
	assert, _ := testenv.MakeAR(t)
	s := newSwitch(t, configA)
	c, _ := s.Context(0)

	assert.Equal(swerr.ObjectsInitFail, swerr.CodeOf(c.ReconfigInsertTable("ingress", "new_t3")))
	assert.Equal(swerr.OpenJSONStreamFail, swerr.CodeOf(c.InitStaging(nil)))
	assert.Equal(swerr.ObjectsInitFail, swerr.CodeOf(c.InitStaging([]byte("{bad"))))
}

func TestTriggerEndsEditSession(t *testing.T) {
	assert, require := testenv.MakeAR(t)
	s := newSwitch(t, configA)
	c, e := s.Context(0)
	require.NoError(e)

	require.NoError(c.InitStaging([]byte(stagingT3)))
	require.NoError(c.ReconfigInsertTable("ingress", "new_t3"))
	require.NoError(c.ReconfigTrigger(true, -1))

	// the id map is empty outside an edit session
	assert.Equal(swerr.UnfoundIDError, swerr.CodeOf(c.ReconfigChangeTable("ingress", "new_t3", "fwd", "null")))
	// the staging graph is gone
	assert.Equal(swerr.ObjectsInitFail, swerr.CodeOf(c.ReconfigInsertTable("ingress", "new_t3")))
	// the inserted node itself stays live
	require.NoError(c.ReconfigChangeTable("ingress", "old_t3", "fwd", "null"))
}

func TestMountPointParsing(t *testing.T) {
	assert, require := testenv.MakeAR(t)
	s := newSwitch(t, configA)
	c, e := s.Context(0)
	require.NoError(e)
	require.NoError(c.InitStaging([]byte(stagingT3)))

	require.NoError(c.ReconfigInsertFlex("ingress", "flx_flex_func_mount_point_number_$2$", "old_t2", "old_t1"))
	require.NoError(c.ReconfigInsertFlex("ingress", "flx_plain", "old_t2", "old_t1"))
	assert.Equal(swerr.InvalidCommandError,
		swerr.CodeOf(c.ReconfigInsertFlex("ingress", "flx_flex_func_mount_point_number_$x$", "old_t2", "old_t1")))

	// trigger by number only arms the tagged flex node
	require.NoError(c.ReconfigTrigger(true, 2))
	p := c.GetPipeline("ingress")
	tagged, ok := p.Node("flex_func_mount_point_number_$2$")
	require.True(ok)
	assert.True(tagged.(*cfggraph.Flex).Armed())
	plain, ok := p.Node("plain")
	require.True(ok)
	assert.False(plain.(*cfggraph.Flex).Armed())
}

func TestRegisterArrayReconfig(t *testing.T) {
	assert, require := testenv.MakeAR(t)
	s := newSwitch(t, configA)
	c, e := s.Context(0)
	require.NoError(e)

	require.NoError(c.ReconfigInsertRegisterArray("new_scratch", 16, 32))
	assert.Equal(swerr.DupCheckError, swerr.CodeOf(c.ReconfigInsertRegisterArray("new_scratch", 16, 32)))
	assert.Equal(swerr.PrefixError, swerr.CodeOf(c.ReconfigInsertRegisterArray("old_scratch", 16, 32)))

	require.NoError(c.ReconfigChangeRegisterArray("new_scratch", sw.RegisterChangeSize, 64))
	v, e := s.RegisterReadAll(0, "scratch")
	require.NoError(e)
	assert.Len(v, 64)

	require.NoError(c.ReconfigChangeRegisterArray("new_scratch", sw.RegisterChangeBitwidth, 8))
	assert.Equal(swerr.InvalidCommandError, swerr.CodeOf(c.ReconfigChangeRegisterArray("new_scratch", 9, 1)))

	// the pre-existing array is reachable as old_
	require.NoError(c.ReconfigChangeRegisterArray("old_seen", sw.RegisterChangeSize, 4))

	require.NoError(c.ReconfigDeleteRegisterArray("new_scratch"))
	_, e = s.RegisterReadAll(0, "scratch")
	assert.Equal(swerr.RegisterNotFound, swerr.CodeOf(e))
}

func TestReconfigPlan(t *testing.T) {
	assert, require := testenv.MakeAR(t)
	s := newSwitch(t, configA)
	c, e := s.Context(0)
	require.NoError(e)

	plan := `
# reroute ingress through t3
insert tabl ingress new_t3
insert flex ingress flx_1 new_t3 old_t1
change init ingress flx_1
insert register_array new_plan_reg 8 16
trigger on
`
	require.NoError(c.RunReconfigPlan([]byte(stagingT3), strings.NewReader(plan)))

	pkt, e := s.NewPacket(0, 1, 1, nil)
	require.NoError(e)
	path := walk(pkt.Graph(), "ingress")
	pkt.Close()
	assert.Contains(path, "t3")

	_, e = s.RegisterReadAll(0, "plan_reg")
	require.NoError(e)

	e = c.RunReconfigPlan([]byte(stagingT3), strings.NewReader("frobnicate tabl ingress new_t3\n"))
	assert.Equal(swerr.InvalidCommandError, swerr.CodeOf(e))

	e = c.RunReconfigPlan([]byte(stagingT3), strings.NewReader("insert gadget ingress new_t3\n"))
	assert.Equal(swerr.UnsupportedTargetError, swerr.CodeOf(e))
}
