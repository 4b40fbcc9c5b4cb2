package core

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestMetrics(t *testing.T) {
	c := qt.New(t)

	m := NewMetrics()
	c.Assert(m.FrameTime(), qt.Equals, 0.0)

	// 60 frames of 20ms: the second boundary is crossed on the 51st frame.
	for i := 0; i < 60; i++ {
		m.Update(0.020)
	}
	c.Assert(m.FPS(), qt.Equals, 50.0)
	c.Assert(m.FrameTime(), qt.Equals, 20.0)

	// Only the last AVG_COUNT frames are averaged.
	for i := 0; i < AVG_COUNT; i++ {
		m.Update(0.010)
	}
	c.Assert(m.FrameTime() < 10.0001 && m.FrameTime() > 9.9999, qt.IsTrue)
}
