package cfggraph_test

import (
	"bytes"
	"testing"

	"github.com/flexsw/flexsw/container/cfggraph"
	"github.com/flexsw/flexsw/container/table"
	"github.com/flexsw/flexsw/core/swerr"
	"github.com/flexsw/flexsw/core/testenv"
)

const baseConfig = `{
  "header_types": [
    {"name": "ethernet_t", "fields": [["dstAddr", 48], ["srcAddr", 48], ["etherType", 16]]},
    {"name": "standard_metadata_t", "fields": [["ingress_port", 9], ["egress_port", 9]]}
  ],
  "headers": [
    {"name": "ethernet", "header_type": "ethernet_t"},
    {"name": "standard_metadata", "header_type": "standard_metadata_t", "metadata": true}
  ],
  "parsers": [{"name": "parser"}],
  "deparsers": [{"name": "deparser"}],
  "actions": [{"name": "fwd"}, {"name": "drop"}, {"name": "set_nh"}],
  "pipelines": [
    {
      "name": "ingress",
      "init_table": "smac",
      "tables": [
        {
          "name": "smac",
          "match_type": "exact",
          "key": [{"match_type": "exact", "header": "ethernet", "field": "srcAddr"}],
          "actions": ["fwd", "drop"],
          "next_tables": {"fwd": "dmac", "drop": null},
          "with_counters": true,
          "support_timeout": true,
          "default_entry": {"action_name": "drop"}
        },
        {
          "name": "dmac",
          "key": [{"match_type": "exact", "header": "ethernet", "field": "dstAddr"}],
          "actions": ["fwd"],
          "next_tables": {"fwd": null}
        },
        {
          "name": "nexthop",
          "type": "indirect_ws",
          "key": [{"match_type": "exact", "header": "ethernet", "field": "dstAddr"}],
          "actions": ["set_nh"],
          "action_profile": "nh_profile",
          "next_tables": {"set_nh": null}
        }
      ],
      "conditionals": [
        {"name": "is_bcast", "expression": "eth.dstAddr == ff:ff:ff:ff:ff:ff", "true_next": "dmac", "false_next": null}
      ]
    }
  ],
  "action_profiles": [{"name": "nh_profile", "with_selector": true, "actions": ["set_nh"]}],
  "register_arrays": [{"name": "flowlet", "size": 16, "bitwidth": 32}],
  "meter_arrays": [{"name": "ingress_meter", "size": 4, "type": "bytes", "rate_count": 2}],
  "counter_arrays": [{"name": "port_counter", "size": 8}],
  "parse_vsets": [{"name": "tpid_vset", "compressed_bitwidth": 16}],
  "learn_lists": [{"id": 1, "name": "mac_learn", "elements": [{"header": "ethernet", "field": "srcAddr"}]}],
  "calculations": [{"name": "flow_hash", "algo": "crc16"}],
  "extern_instances": [{"name": "rate_ext", "type": "rate_limiter", "attribute_values": {"rate": "100"}}],
  "config_options": {"mode": "l2"}
}`

func loadBase(t *testing.T, opts cfggraph.LoadOptions) *cfggraph.Graph {
	_, require := testenv.MakeAR(t)
	g, e := cfggraph.Load([]byte(baseConfig), opts)
	require.NoError(e)
	return g
}

func TestLoad(t *testing.T) {
	assert, require := testenv.MakeAR(t)
	g := loadBase(t, cfggraph.LoadOptions{
		DefaultOptions: map[string]interface{}{"mode": "l3", "mtu": 1500},
	})

	p, ok := g.Pipeline("ingress")
	require.True(ok)
	assert.Equal("smac", p.Init())
	for _, name := range []string{"smac", "dmac", "nexthop", "is_bcast"} {
		_, ok := p.Node(name)
		assert.True(ok, name)
	}

	tbl, e := g.Table("smac")
	require.NoError(e)
	assert.Equal(table.Simple, tbl.Type())
	dflt, e := tbl.GetDefaultEntry()
	require.NoError(e)
	assert.Equal("drop", dflt.ActionName)

	nh, e := g.Table("nexthop")
	require.NoError(e)
	assert.Equal(table.IndirectWS, nh.Type())
	assert.NotNil(nh.Profile())

	assert.True(g.FieldExists("ethernet", "dstAddr"))
	assert.False(g.FieldExists("ethernet", "vlan"))

	assert.NotNil(g.Parser("parser"))
	assert.NotNil(g.Deparser("deparser"))
	assert.NotNil(g.FieldList(1))
	assert.Nil(g.FieldList(2))

	_, e = g.Register("flowlet")
	assert.NoError(e)
	_, e = g.Meter("ingress_meter")
	assert.NoError(e)
	_, e = g.Counter("port_counter")
	assert.NoError(e)
	_, e = g.VSet("tpid_vset")
	assert.NoError(e)
	_, e = g.ExternInstance("rate_ext")
	assert.NoError(e)
	_, e = g.CRC.Calc16("flow_hash")
	assert.NoError(e)

	// config options override target defaults
	options := g.ConfigOptions()
	assert.Equal("l2", options["mode"])
	assert.Equal("1500", options["mtu"])
}

func TestLoadErrors(t *testing.T) {
	assert, _ := testenv.MakeAR(t)

	_, e := cfggraph.Load(nil, cfggraph.LoadOptions{})
	assert.Equal(swerr.ConfigParseError, swerr.CodeOf(e))

	_, e = cfggraph.Load([]byte("not json"), cfggraph.LoadOptions{})
	assert.Equal(swerr.ConfigParseError, swerr.CodeOf(e))

	_, e = cfggraph.Load([]byte(`{"headers": []}`), cfggraph.LoadOptions{})
	assert.Equal(swerr.ConfigParseError, swerr.CodeOf(e)) // pipelines required

	// init node missing
	_, e = cfggraph.Load([]byte(`{"pipelines": [{"name": "p", "init_table": "ghost"}]}`), cfggraph.LoadOptions{})
	assert.Equal(swerr.ConfigParseError, swerr.CodeOf(e))

	// successor edge to a missing node
	_, e = cfggraph.Load([]byte(`{
	  "actions": [{"name": "a"}],
	  "pipelines": [{"name": "p", "init_table": "t",
	    "tables": [{"name": "t", "actions": ["a"], "next_tables": {"a": "ghost"}}]}]
	}`), cfggraph.LoadOptions{})
	assert.Equal(swerr.ConfigParseError, swerr.CodeOf(e))
}

func TestRequiredFields(t *testing.T) {
	assert, _ := testenv.MakeAR(t)

	_, e := cfggraph.Load([]byte(baseConfig), cfggraph.LoadOptions{
		RequiredFields: []cfggraph.FieldRef{{Header: "standard_metadata", Field: "egress_port"}},
	})
	assert.NoError(e)

	_, e = cfggraph.Load([]byte(baseConfig), cfggraph.LoadOptions{
		RequiredFields: []cfggraph.FieldRef{{Header: "standard_metadata", Field: "mcast_grp"}},
	})
	assert.Equal(swerr.RequiredFieldMissing, swerr.CodeOf(e))
}

func TestForceArith(t *testing.T) {
	assert, _ := testenv.MakeAR(t)
	g := loadBase(t, cfggraph.LoadOptions{
		ForceArith:        []cfggraph.FieldRef{{Header: "ethernet", Field: "etherType"}},
		ForceArithHeaders: []string{"standard_metadata"},
	})

	assert.True(g.ArithEnabled("ethernet", "etherType"))
	assert.False(g.ArithEnabled("ethernet", "dstAddr"))
	assert.True(g.ArithEnabled("standard_metadata", "ingress_port"))
	assert.True(g.ArithEnabled("standard_metadata", "egress_port"))
}

func TestStateRoundTrip(t *testing.T) {
	assert, require := testenv.MakeAR(t)
	g := loadBase(t, cfggraph.LoadOptions{})

	tbl, e := g.Table("smac")
	require.NoError(e)
	h, e := tbl.AddEntry([]table.MatchKeyParam{{Kind: table.MatchExact, Value: "001122334455"}}, "fwd", table.ActionData{"2"}, -1)
	require.NoError(e)

	reg, e := g.Register("flowlet")
	require.NoError(e)
	require.NoError(reg.Write(7, 99))

	ctr, e := g.Counter("port_counter")
	require.NoError(e)
	require.NoError(ctr.Write(1, 10, 1))

	var buf bytes.Buffer
	require.NoError(g.SerializeState(&buf))

	g2 := loadBase(t, cfggraph.LoadOptions{})
	require.NoError(g2.DeserializeState(bytes.NewReader(buf.Bytes())))

	tbl2, e := g2.Table("smac")
	require.NoError(e)
	en, e := tbl2.GetEntry(h)
	require.NoError(e)
	assert.Equal("fwd", en.ActionName)

	reg2, e := g2.Register("flowlet")
	require.NoError(e)
	v, e := reg2.Read(7)
	require.NoError(e)
	assert.EqualValues(99, v)

	ctr2, e := g2.Counter("port_counter")
	require.NoError(e)
	b, p, e := ctr2.Read(1)
	require.NoError(e)
	assert.EqualValues(10, b)
	assert.EqualValues(1, p)

	// structurally different graph rejects the envelope
	other, e := cfggraph.Load([]byte(`{
	  "actions": [{"name": "a"}],
	  "pipelines": [{"name": "p", "init_table": "t",
	    "tables": [{"name": "t", "actions": ["a"], "next_tables": {"a": null}}]}]
	}`), cfggraph.LoadOptions{})
	require.NoError(e)
	assert.Equal(swerr.StateMismatch, swerr.CodeOf(other.DeserializeState(bytes.NewReader(buf.Bytes()))))
}

func TestResetState(t *testing.T) {
	assert, require := testenv.MakeAR(t)
	g := loadBase(t, cfggraph.LoadOptions{})

	tbl, e := g.Table("dmac")
	require.NoError(e)
	_, e = tbl.AddEntry([]table.MatchKeyParam{{Kind: table.MatchExact, Value: "aa"}}, "fwd", nil, -1)
	require.NoError(e)

	reg, e := g.Register("flowlet")
	require.NoError(e)
	require.NoError(reg.Write(0, 5))

	g.ResetState()
	assert.Zero(tbl.NumEntries())
	v, e := reg.Read(0)
	require.NoError(e)
	assert.Zero(v)

	// structure survives
	p, ok := g.Pipeline("ingress")
	require.True(ok)
	assert.Equal("smac", p.Init())
}
