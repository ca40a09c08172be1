package events_test

import (
	"testing"

	"github.com/flexsw/flexsw/core/events"
	"github.com/flexsw/flexsw/core/testenv"
)

func TestOnCancel(t *testing.T) {
	assert, _ := testenv.MakeAR(t)

	nA, nB := 0, 0
	fA := func() { nA++ }
	fB := func() { nB++ }

	emitter := events.NewEmitter()
	cA := emitter.On(1, fA)
	cB := emitter.On(1, fB)

	emitter.EmitSync(1)
	assert.Equal(1, nA)
	assert.Equal(1, nB)

	assert.NoError(cA.Close())
	emitter.EmitSync(1)
	assert.Equal(1, nA)
	assert.Equal(2, nB)

	assert.NoError(cB.Close())
	emitter.EmitSync(1)
	assert.Equal(1, nA)
	assert.Equal(2, nB)
}

func TestOnce(t *testing.T) {
	assert, _ := testenv.MakeAR(t)

	n := 0
	emitter := events.NewEmitter()
	emitter.Once(2, func() { n++ })

	emitter.EmitSync(2)
	emitter.EmitSync(2)
	assert.Equal(1, n)
}
