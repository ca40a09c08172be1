package mgmt_test

import (
	"fmt"
	"net"
	"os"
	"testing"
	"time"

	"github.com/gabstv/freeport"
	"github.com/powerman/rpc-codec/jsonrpc2"

	"github.com/flexsw/flexsw/container/table"
	"github.com/flexsw/flexsw/core/testenv"
	"github.com/flexsw/flexsw/mgmt"
	"github.com/flexsw/flexsw/mgmt/configmgmt"
	"github.com/flexsw/flexsw/mgmt/statemgmt"
	"github.com/flexsw/flexsw/mgmt/tablemgmt"
	"github.com/flexsw/flexsw/mgmt/versionmgmt"
	"github.com/flexsw/flexsw/sw"
)

const testConfig = `{
  "actions": [{"name": "fwd"}, {"name": "drop"}],
  "pipelines": [
    {"name": "ingress", "init_table": "t1",
     "tables": [{"name": "t1", "key": [{"match_type": "exact", "header": "h", "field": "f"}],
       "actions": ["fwd", "drop"], "next_tables": {"fwd": null, "drop": null}}]}
  ],
  "register_arrays": [{"name": "r0", "size": 4, "bitwidth": 32}]
}`

func TestServer(t *testing.T) {
	assert, require := testenv.MakeAR(t)

	s := sw.New(1, true)
	require.NoError(s.Init([]byte(testConfig), 1, nil))

	require.NoError(mgmt.Register(tablemgmt.TableMgmt{Sw: s}))
	require.NoError(mgmt.Register(statemgmt.RegisterMgmt{Sw: s}))
	require.NoError(mgmt.Register(configmgmt.ConfigMgmt{Sw: s}))
	require.NoError(mgmt.Register(versionmgmt.VersionMgmt{}))

	port, e := freeport.TCP()
	require.NoError(e)
	addr := fmt.Sprintf("127.0.0.1:%d", port)
	os.Setenv("MGMT", "tcp://"+addr)
	defer os.Unsetenv("MGMT")

	require.NoError(mgmt.Start())
	defer mgmt.Stop()

	var conn net.Conn
	for i := 0; i < 50; i++ {
		conn, e = net.Dial("tcp", addr)
		if e == nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	require.NoError(e)
	client := jsonrpc2.NewClient(conn)
	defer client.Close()

	var addReply tablemgmt.AddEntryReply
	require.NoError(client.Call("Table.AddEntry", tablemgmt.AddEntryArg{
		TableArg: tablemgmt.TableArg{Cxt: 0, Table: "t1"},
		Key:      []table.MatchKeyParam{{Kind: table.MatchExact, Value: "0a"}},
		Action:   "fwd",
	}, &addReply))
	assert.NotZero(addReply.Handle)

	var numReply tablemgmt.NumEntriesReply
	require.NoError(client.Call("Table.GetNumEntries", tablemgmt.TableArg{Cxt: 0, Table: "t1"}, &numReply))
	assert.Equal(1, numReply.NumEntries)

	e = client.Call("Table.GetNumEntries", tablemgmt.TableArg{Cxt: 0, Table: "ghost"}, &numReply)
	assert.Error(e)

	require.NoError(client.Call("Register.Write", statemgmt.RegisterWriteArg{
		IndexArg: statemgmt.IndexArg{NameArg: statemgmt.NameArg{Cxt: 0, Name: "r0"}, Index: 2},
		Value:    42,
	}, &struct{}{}))
	var readReply statemgmt.RegisterReadReply
	require.NoError(client.Call("Register.Read", statemgmt.IndexArg{
		NameArg: statemgmt.NameArg{Cxt: 0, Name: "r0"}, Index: 2,
	}, &readReply))
	assert.EqualValues(42, readReply.Value)

	var md5Reply configmgmt.Md5Reply
	require.NoError(client.Call("Config.GetConfigMd5", configmgmt.CxtArg{Cxt: 0}, &md5Reply))
	assert.Len(md5Reply.Md5, 32)

	var swapReply configmgmt.DoSwapReply
	require.NoError(client.Call("Config.DoSwap", struct{}{}, &swapReply))
	assert.Equal(1, swapReply.Skipped)
}
