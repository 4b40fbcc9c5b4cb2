package core

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestEvents(t *testing.T) {
	c := qt.New(t)

	c.Assert(EventSystemInitialize(), qt.IsTrue)
	c.Cleanup(func() { EventSystemShutdown() })
	c.Assert(EventSystemInitialize(), qt.IsFalse)

	var first, second []ResizeEvent
	listenerA, listenerB := new(int), new(int)
	c.Assert(EventRegister(EVENT_CODE_RESIZED, listenerA, func(ctx EventContext) bool {
		first = append(first, *ctx.Data.(*ResizeEvent))
		return false
	}), qt.IsTrue)
	c.Assert(EventRegister(EVENT_CODE_RESIZED, listenerB, func(ctx EventContext) bool {
		second = append(second, *ctx.Data.(*ResizeEvent))
		return true
	}), qt.IsTrue)
	c.Assert(EventRegister(EVENT_CODE_RESIZED, listenerA, func(EventContext) bool { return false }), qt.IsFalse)

	resize := EventContext{Type: EVENT_CODE_RESIZED, Data: &ResizeEvent{Width: 640, Height: 480}}
	c.Assert(EventFire(resize), qt.IsTrue)
	c.Assert(first, qt.DeepEquals, []ResizeEvent{{640, 480}})
	c.Assert(second, qt.DeepEquals, []ResizeEvent{{640, 480}})

	c.Assert(EventUnregister(EVENT_CODE_RESIZED, listenerB), qt.IsTrue)
	c.Assert(EventUnregister(EVENT_CODE_RESIZED, listenerB), qt.IsFalse)
	c.Assert(EventFire(resize), qt.IsFalse)
	c.Assert(first, qt.HasLen, 2)
	c.Assert(second, qt.HasLen, 1)

	c.Assert(EventFire(EventContext{Type: EVENT_CODE_APPLICATION_QUIT}), qt.IsFalse)
}

func TestEventsBeforeInitialize(t *testing.T) {
	c := qt.New(t)

	c.Assert(EventRegister(EVENT_CODE_APPLICATION_QUIT, c, func(EventContext) bool { return true }), qt.IsFalse)
	c.Assert(EventFire(EventContext{Type: EVENT_CODE_APPLICATION_QUIT}), qt.IsFalse)
}
