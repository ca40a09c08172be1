package register_test

import (
	"testing"

	"github.com/flexsw/flexsw/container/register"
	"github.com/flexsw/flexsw/core/swerr"
	"github.com/flexsw/flexsw/core/testenv"
)

func TestReadWrite(t *testing.T) {
	assert, require := testenv.MakeAR(t)
	arr := register.New("r0", 8, 16)

	require.NoError(arr.Write(3, 0x1FFFF))
	v, e := arr.Read(3)
	require.NoError(e)
	assert.EqualValues(0xFFFF, v) // masked to 16 bits

	_, e = arr.Read(8)
	assert.Equal(swerr.InvalidIndex, swerr.CodeOf(e))

	require.NoError(arr.WriteRange(2, 6, 7))
	all := arr.ReadAll()
	assert.Len(all, 8)
	assert.EqualValues(7, all[2])
	assert.EqualValues(7, all[5])
	assert.EqualValues(0, all[6])

	assert.Equal(swerr.InvalidIndex, swerr.CodeOf(arr.WriteRange(6, 2, 1)))
	assert.Equal(swerr.InvalidIndex, swerr.CodeOf(arr.WriteRange(0, 9, 1)))

	arr.Reset()
	v, e = arr.Read(2)
	require.NoError(e)
	assert.Zero(v)
}

func TestResizeRebitwidth(t *testing.T) {
	assert, require := testenv.MakeAR(t)
	arr := register.New("r1", 4, 32)

	require.NoError(arr.Write(1, 0xABCD))
	require.NoError(arr.Resize(8))
	assert.Equal(8, arr.Size())
	v, e := arr.Read(1)
	require.NoError(e)
	assert.EqualValues(0xABCD, v) // kept across growth

	require.NoError(arr.Resize(2))
	assert.Equal(2, arr.Size())
	_, e = arr.Read(3)
	assert.Equal(swerr.InvalidIndex, swerr.CodeOf(e))

	require.NoError(arr.SetBitwidth(8))
	v, e = arr.Read(1)
	require.NoError(e)
	assert.EqualValues(0xCD, v) // re-masked

	assert.Error(arr.SetBitwidth(0))
}

func TestSnapshotRestore(t *testing.T) {
	assert, require := testenv.MakeAR(t)
	arr := register.New("r2", 4, 32)
	require.NoError(arr.Write(0, 1))
	require.NoError(arr.Write(3, 4))

	snap := arr.Snapshot()
	dup := register.New("r2", 4, 32)
	require.NoError(dup.Restore(snap))
	assert.Equal(arr.ReadAll(), dup.ReadAll())

	short := register.New("r2", 3, 32)
	assert.Equal(swerr.StateMismatch, swerr.CodeOf(short.Restore(snap)))
}
