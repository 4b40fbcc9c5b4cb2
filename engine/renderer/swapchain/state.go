package swapchain

// FrameState is the position of a Chain in its per-frame protocol.
type FrameState uint8

const (
	// No frame in progress; the next call is AcquireNext.
	StateIdle FrameState = iota
	// Blocked on the current frame slot's fence.
	StateWaitFence
	// Waiting for the platform to hand out a presentable image.
	StateAcquiring
	// An image is acquired and the caller is recording commands for it.
	StateRecording
	StateSubmitting
	StatePresenting
	// The chain no longer matches its surface. It must be replaced by a new
	// chain built from this one; no further frames are accepted.
	StateNeedsRecreate
)

func (s FrameState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateWaitFence:
		return "WaitFence"
	case StateAcquiring:
		return "Acquiring"
	case StateRecording:
		return "Recording"
	case StateSubmitting:
		return "Submitting"
	case StatePresenting:
		return "Presenting"
	case StateNeedsRecreate:
		return "NeedsRecreate"
	}
	return "Unknown"
}
