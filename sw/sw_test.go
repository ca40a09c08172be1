package sw_test

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/flexsw/flexsw/container/table"
	"github.com/flexsw/flexsw/core/swerr"
	"github.com/flexsw/flexsw/core/testenv"
	"github.com/flexsw/flexsw/sw"
)

const configA = `{
  "header_types": [{"name": "standard_metadata_t", "fields": [["ingress_port", 9], ["egress_port", 9]]}],
  "headers": [{"name": "standard_metadata", "header_type": "standard_metadata_t", "metadata": true}],
  "actions": [{"name": "fwd"}, {"name": "drop"}],
  "pipelines": [
    {
      "name": "ingress",
      "init_table": "t1",
      "tables": [
        {"name": "t1", "key": [{"match_type": "exact", "header": "standard_metadata", "field": "ingress_port"}],
         "actions": ["fwd", "drop"], "next_tables": {"fwd": "t2", "drop": null}},
        {"name": "t2", "actions": ["fwd"], "next_tables": {"fwd": null}}
      ]
    }
  ],
  "register_arrays": [{"name": "seen", "size": 8, "bitwidth": 32}],
  "counter_arrays": [{"name": "pkts", "size": 4}]
}`

const configB = `{
  "header_types": [{"name": "standard_metadata_t", "fields": [["ingress_port", 9], ["egress_port", 9]]}],
  "headers": [{"name": "standard_metadata", "header_type": "standard_metadata_t", "metadata": true}],
  "actions": [{"name": "fwd"}],
  "pipelines": [
    {"name": "ingress", "init_table": "only",
     "tables": [{"name": "only", "actions": ["fwd"], "next_tables": {"fwd": null}}]}
  ]
}`

// configNoMeta lacks standard_metadata.egress_port.
const configNoMeta = `{
  "actions": [{"name": "fwd"}],
  "pipelines": [
    {"name": "ingress", "init_table": "only",
     "tables": [{"name": "only", "actions": ["fwd"], "next_tables": {"fwd": null}}]}
  ]
}`

func newSwitch(t *testing.T, config string) *sw.Switch {
	_, require := testenv.MakeAR(t)
	s := sw.New(1, true)
	require.NoError(s.Init([]byte(config), 7, nil))
	return s
}

// collectStatuses registers a notification listener and returns the
// accumulated statuses through a callback.
func collectStatuses(s *sw.Switch) func() []sw.SwapStatus {
	var mu sync.Mutex
	var statuses []sw.SwapStatus
	et := s.Transport().(*sw.EmitterTransport)
	et.On(sw.TopicSwapStatus, func(msg []byte) {
		if _, _, st, ok := sw.DecodeSwapStatus(msg); ok {
			mu.Lock()
			statuses = append(statuses, st)
			mu.Unlock()
		}
	})
	return func() []sw.SwapStatus {
		mu.Lock()
		defer mu.Unlock()
		return append([]sw.SwapStatus(nil), statuses...)
	}
}

func TestColdStartWait(t *testing.T) {
	assert, require := testenv.MakeAR(t)
	s := sw.New(1, true)

	started := make(chan struct{})
	go func() {
		s.StartAndReturn()
		close(started)
	}()

	select {
	case <-started:
		t.Fatal("StartAndReturn returned before a config was loaded")
	case <-time.After(50 * time.Millisecond):
	}

	require.NoError(s.LoadNewConfig(0, []byte(configA)))

	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("StartAndReturn did not unblock after LoadNewConfig")
	}
	assert.True(s.ConfigLoaded())
}

func TestSwapUnderTraffic(t *testing.T) {
	assert, require := testenv.MakeAR(t)
	s := newSwitch(t, configA)
	statuses := collectStatuses(s)

	c, e := s.Context(0)
	require.NoError(e)
	oldGraph := c.GetPipeline("ingress")
	require.NotNil(oldGraph)

	const nPackets = 10000
	var wg sync.WaitGroup
	graphs := make([]any, nPackets)
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < nPackets; i++ {
			pkt, e := s.NewPacket(0, 1, uint64(i), nil)
			if e != nil {
				return
			}
			graphs[i] = pkt.Graph()
			pkt.Close()
		}
	}()

	time.Sleep(time.Millisecond)
	require.NoError(s.LoadNewConfig(0, []byte(configB)))
	require.NoError(s.SwapConfigs(0))
	wg.Wait()

	// every packet saw exactly one of the two graphs
	distinct := map[any]struct{}{}
	for _, g := range graphs {
		distinct[g] = struct{}{}
	}
	assert.LessOrEqual(len(distinct), 2)

	// the live graph is the new one
	p := c.GetPipeline("ingress")
	require.NotNil(p)
	assert.Equal("only", p.Init())

	got := statuses()
	require.GreaterOrEqual(len(got), 3)
	assert.Equal(sw.NewConfigLoaded, got[0])
	assert.Equal(sw.SwapRequested, got[1])
	assert.Equal(sw.SwapCompleted, got[2])
}

func TestDoSwapIdempotentOnEmpty(t *testing.T) {
	assert, require := testenv.MakeAR(t)
	s := newSwitch(t, configA)

	skipped, e := s.DoSwap()
	require.NoError(e)
	assert.Equal(1, skipped)

	ordered, e := s.SwapRequested(0)
	require.NoError(e)
	assert.False(ordered)

	assert.Equal(swerr.NoOngoingSwap, swerr.CodeOf(s.SwapConfigs(0)))
}

func TestRequiredFieldEnforcement(t *testing.T) {
	assert, require := testenv.MakeAR(t)
	s := sw.New(1, true)
	s.AddRequiredField("standard_metadata", "egress_port")
	require.NoError(s.Init([]byte(configA), 7, nil))

	before, e := s.GetConfigMD5(0)
	require.NoError(e)

	e = s.LoadNewConfig(0, []byte(configNoMeta))
	assert.Equal(swerr.RequiredFieldMissing, swerr.CodeOf(e))

	// live graph untouched, no swap pending
	after, e := s.GetConfigMD5(0)
	require.NoError(e)
	assert.Equal(before, after)
	ordered, e := s.SwapRequested(0)
	require.NoError(e)
	assert.False(ordered)
}

func TestStaleHandleRejection(t *testing.T) {
	assert, require := testenv.MakeAR(t)
	s := newSwitch(t, configA)

	key := []table.MatchKeyParam{{Kind: table.MatchExact, Value: "0001"}}
	h, e := s.MtAddEntry(0, "t1", key, "fwd", nil, -1)
	require.NoError(e)

	require.NoError(s.LoadNewConfig(0, []byte(configA)))
	require.NoError(s.SwapConfigs(0))

	assert.Equal(swerr.InvalidHandle, swerr.CodeOf(s.MtDeleteEntry(0, "t1", h)))
	_, e = s.MtGetEntry(0, "t1", h)
	assert.Equal(swerr.InvalidHandle, swerr.CodeOf(e))
}

func TestResetStateCancelsPendingSwap(t *testing.T) {
	assert, require := testenv.MakeAR(t)
	s := newSwitch(t, configA)
	statuses := collectStatuses(s)

	require.NoError(s.LoadNewConfig(0, []byte(configB)))
	ordered, e := s.SwapRequested(0)
	require.NoError(e)
	require.True(ordered)

	require.NoError(s.ResetStateContext(0))
	ordered, e = s.SwapRequested(0)
	require.NoError(e)
	assert.False(ordered)

	// the staged graph is discarded: live is still configA
	p, e := s.Context(0)
	require.NoError(e)
	assert.Equal("t1", p.GetPipeline("ingress").Init())

	got := statuses()
	require.GreaterOrEqual(len(got), 2)
	assert.Equal(sw.NewConfigLoaded, got[0])
	assert.Equal(sw.SwapCancelled, got[1])

	assert.Equal(swerr.NoOngoingSwap, swerr.CodeOf(s.SwapConfigs(0)))
}

func TestSerializeRoundTrip(t *testing.T) {
	assert, require := testenv.MakeAR(t)
	s := newSwitch(t, configA)

	key := []table.MatchKeyParam{{Kind: table.MatchExact, Value: "0001"}}
	h, e := s.MtAddEntry(0, "t1", key, "fwd", table.ActionData{"9"}, -1)
	require.NoError(e)
	require.NoError(s.RegisterWrite(0, "seen", 3, 77))
	require.NoError(s.WriteCounters(0, "pkts", 1, 500, 5))

	var buf bytes.Buffer
	require.NoError(s.Serialize(0, &buf))

	s2 := newSwitch(t, configA)
	require.NoError(s2.Deserialize(0, bytes.NewReader(buf.Bytes())))

	en, e := s2.MtGetEntry(0, "t1", h)
	require.NoError(e)
	assert.Equal("fwd", en.ActionName)
	assert.Equal(table.ActionData{"9"}, en.ActionData)

	v, e := s2.RegisterRead(0, "seen", 3)
	require.NoError(e)
	assert.EqualValues(77, v)

	b, p, e := s2.ReadCounters(0, "pkts", 1)
	require.NoError(e)
	assert.EqualValues(500, b)
	assert.EqualValues(5, p)

	// mismatched structure is rejected
	s3 := newSwitch(t, configB)
	assert.Equal(swerr.StateMismatch, swerr.CodeOf(s3.Deserialize(0, bytes.NewReader(buf.Bytes()))))
}

func TestContextOutOfRange(t *testing.T) {
	assert, _ := testenv.MakeAR(t)
	s := newSwitch(t, configA)

	_, e := s.MtGetNumEntries(3, "t1")
	assert.Equal(swerr.ContextOutOfRange, swerr.CodeOf(e))
	assert.Equal(swerr.ContextOutOfRange, swerr.CodeOf(s.LoadNewConfig(-1, nil)))
}

func TestComponents(t *testing.T) {
	assert, require := testenv.MakeAR(t)
	s := newSwitch(t, configA)

	type pre struct{ n int }
	assert.True(s.AddComponent("pre", &pre{1}))
	assert.False(s.AddComponent("pre", &pre{2}))
	assert.Equal(1, s.Component("pre").(*pre).n)
	assert.Nil(s.Component("absent"))

	ok, e := s.AddContextComponent(0, "learn", &pre{3})
	require.NoError(e)
	assert.True(ok)
	v, e := s.ContextComponent(0, "learn")
	require.NoError(e)
	assert.Equal(3, v.(*pre).n)
}

func TestExternLeaseBlocksSwap(t *testing.T) {
	assert, require := testenv.MakeAR(t)
	s := sw.New(1, true)
	require.NoError(s.Init([]byte(`{
	  "actions": [{"name": "a"}],
	  "pipelines": [{"name": "p", "init_table": "t",
	    "tables": [{"name": "t", "actions": ["a"], "next_tables": {"a": null}}]}],
	  "extern_instances": [{"name": "ext0", "type": "widget"}]
	}`), 7, nil))

	require.NoError(s.LoadNewConfig(0, []byte(configB)))

	c, e := s.Context(0)
	require.NoError(e)
	lease, e := c.ExternInstance("ext0")
	require.NoError(e)
	assert.Equal("widget", lease.Get().Type)

	done := make(chan struct{})
	go func() {
		s.DoSwap()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("swap completed while an extern lease was outstanding")
	case <-time.After(50 * time.Millisecond):
	}

	require.NoError(lease.Close())
	require.NoError(lease.Close()) // idempotent

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("swap did not complete after lease release")
	}

	_, e = c.ExternInstance("ghost")
	assert.Equal(swerr.ExternNotFound, swerr.CodeOf(e))
}

func TestSwapNotifyFailureStillCommits(t *testing.T) {
	assert, require := testenv.MakeAR(t)
	s := newSwitch(t, configA)
	s.SwapNotifyFn = func() error { return swerr.New(swerr.InvalidCommandError, "target unhappy") }

	require.NoError(s.LoadNewConfig(0, []byte(configB)))
	skipped, e := s.DoSwap()
	assert.Equal(0, skipped)
	assert.Equal(swerr.SwapNotifyError, swerr.CodeOf(e))

	// committed despite the hook failure
	c, _ := s.Context(0)
	assert.Equal("only", c.GetPipeline("ingress").Init())
}
