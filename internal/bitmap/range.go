// Package bitmap records which parts of a linear byte address space a task has
// processed. A Store maps byte ranges onto bit ranges at the task's
// granularity and keeps the bits in fixed-span Range segments that are
// allocated when first set and released once cleared.
package bitmap

import "github.com/bits-and-blooms/bitset"

// SegmentBits is the number of bit indices covered by one Range (4 KiB of
// bitmap words).
const SegmentBits = 1 << 15

const wordBits = 64

// Range holds the processed state of a contiguous span of bit indices
// [Start, Start+SegmentBits). Callers must keep every operation inside that
// span; Store splits larger ranges before delegating.
type Range struct {
	bits  *bitset.BitSet
	start uint64
}

// NewRange returns an all-clear segment beginning at bit index start.
func NewRange(start uint64) *Range {
	return &Range{
		bits:  bitset.New(SegmentBits),
		start: start,
	}
}

// Start returns the first bit index covered by the segment.
func (r *Range) Start() uint64 { return r.start }

// Set marks [start, start+count) as processed.
func (r *Range) Set(start, count uint64) {
	lo := r.local(start)
	r.fill(lo, lo+uint(count), true)
}

// Clear marks [start, start+count) as unprocessed.
func (r *Range) Clear(start, count uint64) {
	lo := r.local(start)
	r.fill(lo, lo+uint(count), false)
}

// fill writes local bits [lo, hi) through the bitset's backing words,
// masking only the partial words at either end.
func (r *Range) fill(lo, hi uint, on bool) {
	words := r.bits.Bytes()
	for lo < hi {
		off := lo % wordBits
		n := min(wordBits-off, hi-lo)
		mask := ^uint64(0)
		if n < wordBits {
			mask = (uint64(1)<<n - 1) << off
		}
		if on {
			words[lo/wordBits] |= mask
		} else {
			words[lo/wordBits] &^= mask
		}
		lo += n
	}
}

// AllSet reports whether every bit in [start, start+count) is set. An empty
// range is vacuously set.
func (r *Range) AllSet(start, count uint64) bool {
	if count == 0 {
		return true
	}
	lo := r.local(start)
	next, found := r.bits.NextClear(lo)
	return !found || next >= lo+uint(count)
}

// Empty reports whether no bit in the segment is set.
func (r *Range) Empty() bool { return r.bits.None() }

// Count returns the number of set bits.
func (r *Range) Count() uint { return r.bits.Count() }

func (r *Range) local(bit uint64) uint {
	return uint(bit - r.start)
}
