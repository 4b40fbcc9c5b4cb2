package metadata

// PresentStatus is the per-frame outcome of acquiring or presenting an image.
// Stale and degraded targets are routine control flow, not errors.
type PresentStatus uint8

const (
	// The image was acquired or presented normally.
	StatusReady PresentStatus = iota
	// The swapchain still works but no longer matches the surface exactly.
	StatusSuboptimal
	// The swapchain can no longer present to the surface and must be rebuilt.
	StatusOutOfDate
)

func (s PresentStatus) String() string {
	switch s {
	case StatusReady:
		return "Ready"
	case StatusSuboptimal:
		return "Suboptimal"
	case StatusOutOfDate:
		return "OutOfDate"
	}
	return "Unknown"
}
