package metadata

// RenderPacket carries the per frame data handed to the renderer.
type RenderPacket struct {
	DeltaTime float64
	// Monotonic number of the frame being drawn, starting at 0.
	FrameNumber uint64
}
