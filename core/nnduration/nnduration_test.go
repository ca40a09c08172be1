package nnduration_test

import (
	"testing"
	"time"

	"github.com/flexsw/flexsw/core/nnduration"
	"github.com/flexsw/flexsw/core/testenv"
)

func TestMilliseconds(t *testing.T) {
	assert, _ := testenv.MakeAR(t)

	assert.Equal(2816*time.Millisecond, nnduration.Milliseconds(0).DurationOr(2816))

	ms := nnduration.Milliseconds(5274)
	assert.Equal(5274*time.Millisecond, ms.DurationOr(2816))
	assert.Equal(`5274`, testenv.ToJSON(ms))

	var decoded nnduration.Milliseconds
	testenv.FromJSON(`5274`, &decoded)
	assert.Equal(ms, decoded)

	testenv.FromJSON(`"5274"`, &decoded)
	assert.Equal(ms, decoded)

	testenv.FromJSON(`"6s"`, &decoded)
	assert.Equal(nnduration.Milliseconds(6000), decoded)
	assert.Equal(6*time.Second, decoded.Duration())
}

func TestNanoseconds(t *testing.T) {
	assert, _ := testenv.MakeAR(t)

	ns := nnduration.Nanoseconds(7419)
	assert.Equal(7419*time.Nanosecond, ns.Duration())

	var decoded nnduration.Nanoseconds
	testenv.FromJSON(`"7419"`, &decoded)
	assert.Equal(ns, decoded)
}
