package arena

import "sort"

const (
	// defaultRangeCapacity is the pre-allocated capacity for dirty ranges.
	// This reduces allocations during typical workloads.
	defaultRangeCapacity = 64

	// standardPageSize is the typical OS page size (4KB).
	standardPageSize = 4096
)

// Range represents a dirty byte range (arena offsets).
type Range struct {
	Off int64 // Offset from the start of the arena
	Len int64 // Length in bytes
}

// RangeTracker accumulates dirty ranges and coalesces them into
// page-aligned, non-overlapping ranges at flush time.
//
// NOT thread-safe. Only one goroutine should use it at a time.
type RangeTracker struct {
	ranges   []Range
	pageSize int64
}

// NewRangeTracker creates an empty tracker.
//
// The tracker pre-allocates capacity for 64 ranges to minimize allocations
// during typical workloads.
func NewRangeTracker() *RangeTracker {
	return &RangeTracker{
		ranges:   make([]Range, 0, defaultRangeCapacity),
		pageSize: standardPageSize,
	}
}

// Add records a dirty range.
//
// The range will be page-aligned and coalesced with other ranges at flush
// time. This method only appends to a slice, so it is cheap enough to call
// for every header write.
func (t *RangeTracker) Add(off, length int) {
	t.ranges = append(t.ranges, Range{
		Off: int64(off),
		Len: int64(length),
	})
}

// Reset clears all tracked ranges.
func (t *RangeTracker) Reset() {
	t.ranges = t.ranges[:0]
}

// Coalesced returns the page-aligned, sorted, merged dirty ranges and does
// not clear them. Callers flush the returned ranges then Reset.
func (t *RangeTracker) Coalesced() []Range {
	if len(t.ranges) == 0 {
		return nil
	}

	// Page-align all ranges
	aligned := make([]Range, len(t.ranges))
	for i, r := range t.ranges {
		start := (r.Off / t.pageSize) * t.pageSize
		end := r.Off + r.Len
		if end%t.pageSize != 0 {
			end = (end/t.pageSize + 1) * t.pageSize
		}
		aligned[i] = Range{Off: start, Len: end - start}
	}

	sort.Slice(aligned, func(i, j int) bool {
		return aligned[i].Off < aligned[j].Off
	})

	// Merge overlapping and adjacent ranges
	merged := aligned[:1]
	for _, r := range aligned[1:] {
		last := &merged[len(merged)-1]
		if r.Off <= last.Off+last.Len {
			if end := r.Off + r.Len; end > last.Off+last.Len {
				last.Len = end - last.Off
			}
			continue
		}
		merged = append(merged, r)
	}
	return merged
}

// Compile-time interface check.
var _ Tracker = (*RangeTracker)(nil)
