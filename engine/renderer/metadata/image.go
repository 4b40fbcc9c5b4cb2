package metadata

/**
 * @brief Parameters for a 2D, single-mip, single-layer image owned by the client.
 */
type ImageInfo struct {
	/** @brief The width of the image. */
	Width uint32
	/** @brief The height of the image. */
	Height uint32
	/** @brief The pixel format of the image. */
	Format Format
	/** @brief How the image is going to be used. */
	Usage ImageUsageFlags
	/** @brief The number of samples per pixel. */
	Samples SampleCountFlags
}

type MemoryRequirements struct {
	Size uint64
	// MemoryTypeBits has bit i set when memory type i can back the resource.
	MemoryTypeBits uint32
}

type MemoryType struct {
	PropertyFlags MemoryPropertyFlags
	HeapIndex     uint32
}

type FormatProperties struct {
	LinearTilingFeatures  FormatFeatureFlags
	OptimalTilingFeatures FormatFeatureFlags
}
