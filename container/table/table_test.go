package table_test

import (
	"errors"
	"testing"

	"github.com/flexsw/flexsw/container/meter"
	"github.com/flexsw/flexsw/container/table"
	"github.com/flexsw/flexsw/core/swerr"
	"github.com/flexsw/flexsw/core/testenv"
)

func exactKey(value string) []table.MatchKeyParam {
	return []table.MatchKeyParam{{Kind: table.MatchExact, Value: value}}
}

func newSimpleTable() *table.Table {
	return table.New(table.Config{
		Name:           "ipv4_fwd",
		Type:           table.Simple,
		KeyKinds:       []table.MatchKind{table.MatchExact},
		Actions:        []string{"fwd", "drop"},
		MaxSize:        64,
		WithCounters:   true,
		WithTimeout:    true,
		MeterRateCount: 2,
	}, nil)
}

func TestAddModifyDelete(t *testing.T) {
	assert, require := testenv.MakeAR(t)
	tbl := newSimpleTable()

	h1, e := tbl.AddEntry(exactKey("0a000001"), "fwd", table.ActionData{"1"}, -1)
	require.NoError(e)
	assert.Equal(1, tbl.NumEntries())

	_, e = tbl.AddEntry(exactKey("0a000001"), "drop", nil, -1)
	assert.Equal(swerr.DuplicateEntry, swerr.CodeOf(e))

	_, e = tbl.AddEntry(exactKey("0a000002"), "nope", nil, -1)
	assert.Equal(swerr.ActionNotFound, swerr.CodeOf(e))

	require.NoError(tbl.ModifyEntry(h1, "drop", nil))
	en, e := tbl.GetEntry(h1)
	require.NoError(e)
	assert.Equal("drop", en.ActionName)

	found, e := tbl.GetEntryFromKey(exactKey("0a000001"), -1)
	require.NoError(e)
	assert.Equal(h1, found.Handle)

	require.NoError(tbl.DeleteEntry(h1))
	assert.Equal(0, tbl.NumEntries())
	assert.Equal(swerr.InvalidHandle, swerr.CodeOf(tbl.DeleteEntry(h1)))
}

func TestTernaryPriority(t *testing.T) {
	assert, require := testenv.MakeAR(t)
	tbl := table.New(table.Config{
		Name:     "acl",
		Type:     table.Simple,
		KeyKinds: []table.MatchKind{table.MatchTernary},
		Actions:  []string{"permit"},
	}, nil)

	key := []table.MatchKeyParam{{Kind: table.MatchTernary, Value: "0a000000", Mask: "ffffff00"}}
	_, e := tbl.AddEntry(key, "permit", nil, -1)
	assert.Equal(swerr.PriorityRequired, swerr.CodeOf(e))

	_, e = tbl.AddEntry(key, "permit", nil, 10)
	require.NoError(e)

	// same key at a different priority is a distinct entry
	_, e = tbl.AddEntry(key, "permit", nil, 20)
	require.NoError(e)
	assert.Equal(2, tbl.NumEntries())
}

func TestDefaultEntry(t *testing.T) {
	assert, require := testenv.MakeAR(t)
	tbl := newSimpleTable()
	tbl.SetInitialDefault("drop", nil)

	require.NoError(tbl.SetDefaultAction("fwd", table.ActionData{"3"}))
	en, e := tbl.GetDefaultEntry()
	require.NoError(e)
	assert.Equal("fwd", en.ActionName)

	require.NoError(tbl.ResetDefaultEntry())
	en, e = tbl.GetDefaultEntry()
	require.NoError(e)
	assert.Equal("drop", en.ActionName)
}

func TestCountersAndMeters(t *testing.T) {
	assert, require := testenv.MakeAR(t)
	tbl := newSimpleTable()

	h, e := tbl.AddEntry(exactKey("0a000001"), "fwd", nil, -1)
	require.NoError(e)

	require.NoError(tbl.WriteCounters(h, 100, 2))
	bytes, packets, e := tbl.ReadCounters(h)
	require.NoError(e)
	assert.EqualValues(100, bytes)
	assert.EqualValues(2, packets)

	require.NoError(tbl.ResetCounters())
	bytes, packets, e = tbl.ReadCounters(h)
	require.NoError(e)
	assert.Zero(bytes)
	assert.Zero(packets)

	rates := []meter.RateConfig{{InfoRate: 0.5, Burst: 100}, {InfoRate: 1.0, Burst: 200}}
	require.NoError(tbl.SetMeterRates(h, rates))
	got, e := tbl.GetMeterRates(h)
	require.NoError(e)
	assert.Equal(rates, got)
	require.NoError(tbl.ResetMeterRates(h))

	e = tbl.SetMeterRates(h, rates[:1])
	assert.Equal(swerr.InvalidMeterOperation, swerr.CodeOf(e))

	require.NoError(tbl.SetEntryTTL(h, 3000))
	en, e := tbl.GetEntry(h)
	require.NoError(e)
	assert.EqualValues(3000, en.TTLMillis)
}

func TestActionProfile(t *testing.T) {
	assert, require := testenv.MakeAR(t)
	prof := table.NewProfile("ecmp", true, []string{"set_nh"})

	m1, e := prof.AddMember("set_nh", table.ActionData{"1"})
	require.NoError(e)
	m2, e := prof.AddMember("set_nh", table.ActionData{"2"})
	require.NoError(e)
	assert.Len(prof.GetMembers(), 2)

	_, e = prof.AddMember("bad", nil)
	assert.Equal(swerr.ActionNotFound, swerr.CodeOf(e))

	grp, e := prof.CreateGroup()
	require.NoError(e)
	require.NoError(prof.AddMemberToGroup(m1, grp))
	require.NoError(prof.AddMemberToGroup(m2, grp))

	g, e := prof.GetGroup(grp)
	require.NoError(e)
	assert.Len(g.Members, 2)

	seen := map[table.MemberHandle]bool{}
	for i := 0; i < 8; i++ {
		mbr, e := prof.SelectFromGroup(grp, uint64(i))
		require.NoError(e)
		seen[mbr] = true
	}
	assert.True(seen[m1])
	assert.True(seen[m2])

	require.NoError(prof.RemoveMemberFromGroup(m1, grp))
	g, e = prof.GetGroup(grp)
	require.NoError(e)
	assert.Equal([]table.MemberHandle{m2}, g.Members)

	// deleting a member also drops its group membership
	require.NoError(prof.AddMemberToGroup(m1, grp))
	require.NoError(prof.DeleteMember(m1))
	g, e = prof.GetGroup(grp)
	require.NoError(e)
	assert.Equal([]table.MemberHandle{m2}, g.Members)

	require.NoError(prof.DeleteGroup(grp))
	_, e = prof.GetGroup(grp)
	assert.Equal(swerr.GroupNotFound, swerr.CodeOf(e))
}

func TestIndirect(t *testing.T) {
	assert, require := testenv.MakeAR(t)
	prof := table.NewProfile("nh", true, []string{"set_nh"})
	tbl := table.New(table.Config{
		Name:     "route",
		Type:     table.IndirectWS,
		KeyKinds: []table.MatchKind{table.MatchExact},
		Profile:  prof,
	}, nil)

	mbr, e := prof.AddMember("set_nh", nil)
	require.NoError(e)

	h, e := tbl.IndirectAddEntry(exactKey("0a000001"), mbr, -1)
	require.NoError(e)

	_, e = tbl.IndirectAddEntry(exactKey("0a000002"), 99, -1)
	assert.Equal(swerr.MemberNotFound, swerr.CodeOf(e))

	grp, e := prof.CreateGroup()
	require.NoError(e)
	require.NoError(prof.AddMemberToGroup(mbr, grp))

	require.NoError(tbl.IndirectWSModifyEntry(h, grp))
	en, e := tbl.GetEntry(h)
	require.NoError(e)
	assert.True(en.IsGroup)

	require.NoError(tbl.IndirectSetDefaultMember(mbr))
	require.NoError(tbl.IndirectWSSetDefaultGroup(grp))
	require.NoError(tbl.IndirectDeleteEntry(h))

	// simple ops on an indirect table are rejected
	_, e = tbl.AddEntry(exactKey("0a000003"), "set_nh", nil, -1)
	var se *swerr.Error
	require.True(errors.As(e, &se))
	assert.Equal(swerr.WrongTableType, se.Code)
}

func TestSnapshotRestore(t *testing.T) {
	assert, require := testenv.MakeAR(t)
	tbl := newSimpleTable()
	tbl.SetInitialDefault("drop", nil)

	h1, e := tbl.AddEntry(exactKey("0a000001"), "fwd", table.ActionData{"1"}, -1)
	require.NoError(e)
	require.NoError(tbl.WriteCounters(h1, 42, 1))

	entries, dflt := tbl.Snapshot()
	dup := tbl.CloneEmpty("ipv4_fwd", nil)
	require.NoError(dup.Restore(entries, dflt))

	en, e := dup.GetEntry(h1)
	require.NoError(e)
	assert.Equal("fwd", en.ActionName)
	bytes, packets, e := dup.ReadCounters(h1)
	require.NoError(e)
	assert.EqualValues(42, bytes)
	assert.EqualValues(1, packets)

	// a handle allocated after restore does not collide
	h2, e := dup.AddEntry(exactKey("0a000002"), "fwd", nil, -1)
	require.NoError(e)
	assert.NotEqual(h1, h2)
}
