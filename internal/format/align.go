package format

// Alignment utilities for the arena layout. Payload sizes and region starts
// must land on 16-byte boundaries.

// AlignUp returns n aligned up to the next multiple of AlignUnit.
//
// Example:
//
//	AlignUp(1)  = 16
//	AlignUp(16) = 16
//	AlignUp(17) = 32
func AlignUp(n int) int {
	return (n + AlignUnitMask) & ^AlignUnitMask
}

// AlignUpI32 returns n aligned up to the next multiple of AlignUnit.
// int32 version for use in allocator code to avoid G115 warnings.
func AlignUpI32(n int32) int32 {
	return (n + AlignUnitMask) & ^int32(AlignUnitMask)
}

// IsAligned reports whether n lands on an AlignUnit boundary.
func IsAligned(n int) bool {
	return n&AlignUnitMask == 0
}
