package crcmgr_test

import (
	"testing"

	"github.com/flexsw/flexsw/container/crcmgr"
	"github.com/flexsw/flexsw/core/swerr"
	"github.com/flexsw/flexsw/core/testenv"
)

var checkInput = []byte("123456789")

func TestDefaults(t *testing.T) {
	assert, require := testenv.MakeAR(t)
	mgr := crcmgr.NewMgr()
	mgr.Register("calc16", "crc16")
	mgr.Register("calc32", "crc32")
	mgr.Register("calcx", "xor16") // not customizable, ignored

	c16, e := mgr.Calc16("calc16")
	require.NoError(e)
	assert.EqualValues(0xBB3D, c16.Compute(checkInput)) // CRC-16/ARC check value

	c32, e := mgr.Calc32("calc32")
	require.NoError(e)
	assert.EqualValues(0xCBF43926, c32.Compute(checkInput)) // CRC-32 check value

	_, e = mgr.Calc16("calcx")
	assert.Equal(swerr.HashFunctionNotFound, swerr.CodeOf(e))
}

func TestCustomParameters(t *testing.T) {
	assert, require := testenv.MakeAR(t)
	mgr := crcmgr.NewMgr()
	mgr.Register("calc16", "crc16")

	// CRC-16/CCITT-FALSE
	require.NoError(mgr.SetCustom16("calc16", crcmgr.Config16{
		Polynomial:   0x1021,
		InitialValue: 0xFFFF,
	}))
	c16, e := mgr.Calc16("calc16")
	require.NoError(e)
	assert.EqualValues(0x29B1, c16.Compute(checkInput))

	e = mgr.SetCustom16("missing", crcmgr.Config16{})
	assert.Equal(swerr.HashFunctionNotFound, swerr.CodeOf(e))

	e = mgr.SetCustom32("calc16", crcmgr.Config32{})
	assert.Equal(swerr.HashFunctionNotFound, swerr.CodeOf(e))
}
