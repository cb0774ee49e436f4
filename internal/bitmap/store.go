package bitmap

import (
	"fmt"
	"math"
	"math/bits"

	"github.com/bamsammich/taskmap/internal/fault"
)

const (
	// DefaultGranularity is the number of bytes represented by one bit when
	// the caller does not choose one.
	DefaultGranularity = 4096

	// DefaultMaxSegments bounds the segments a single store may allocate
	// (256 MiB of bitmap words).
	DefaultMaxSegments = 1 << 16

	// DefaultMaxAddress is the highest byte address (exclusive) a range may
	// reach.
	DefaultMaxAddress = math.MaxInt64
)

// Options configures a Store. Zero values select the defaults.
type Options struct {
	Granularity uint32
	MaxSegments int
	MaxAddress  uint64
}

// Stats is a point-in-time summary of a store's allocation.
type Stats struct {
	Segments int
	SetBits  uint64
}

// Store is the bitmap of a single task. It is not safe for concurrent use;
// the owning task serializes access.
type Store struct {
	segments    map[uint64]*Range // keyed by segment number
	granularity uint64
	maxAddress  uint64
	maxSegments int
	shift       int // log2(granularity), or -1 when not a power of two
}

// NewStore creates an empty store.
func NewStore(opts Options) *Store {
	if opts.Granularity == 0 {
		opts.Granularity = DefaultGranularity
	}
	if opts.MaxSegments <= 0 {
		opts.MaxSegments = DefaultMaxSegments
	}
	if opts.MaxAddress == 0 || opts.MaxAddress > DefaultMaxAddress {
		opts.MaxAddress = DefaultMaxAddress
	}

	shift := -1
	if g := opts.Granularity; g&(g-1) == 0 {
		shift = bits.TrailingZeros32(g)
	}

	return &Store{
		segments:    make(map[uint64]*Range),
		granularity: uint64(opts.Granularity),
		maxAddress:  opts.MaxAddress,
		maxSegments: opts.MaxSegments,
		shift:       shift,
	}
}

// Granularity returns the number of bytes per bit.
func (s *Store) Granularity() uint64 { return s.granularity }

// BitIndex returns the bit covering byte offset off.
func (s *Store) BitIndex(off uint64) uint64 {
	if s.shift >= 0 {
		return off >> s.shift
	}
	return off / s.granularity
}

// ByteOffset returns the first byte covered by bit.
func (s *Store) ByteOffset(bit uint64) uint64 {
	if s.shift >= 0 {
		return bit << s.shift
	}
	return bit * s.granularity
}

// Mark records [off, off+length) as processed. Partial bits at either edge
// are set in full.
func (s *Store) Mark(off, length uint64) error {
	start, count, err := s.bitRange(off, length)
	if err != nil {
		return err
	}
	return s.SetBits(start, count)
}

// Unmark records [off, off+length) as unprocessed, clearing every bit the
// range touches.
func (s *Store) Unmark(off, length uint64) error {
	start, count, err := s.bitRange(off, length)
	if err != nil {
		return err
	}
	s.ClearBits(start, count)
	return nil
}

// IsMarked reports whether every bit touched by [off, off+length) is set.
func (s *Store) IsMarked(off, length uint64) (bool, error) {
	start, count, err := s.bitRange(off, length)
	if err != nil {
		return false, err
	}
	return s.AllSetBits(start, count), nil
}

// bitRange translates a byte range into [start, start+count) bit indices.
func (s *Store) bitRange(off, length uint64) (start, count uint64, err error) {
	if length == 0 {
		return 0, 0, fmt.Errorf("zero-length range at offset %d: %w", off, fault.ErrInvalidRange)
	}
	end := off + length
	if end < off || end > s.maxAddress {
		return 0, 0, fmt.Errorf(
			"range offset %d length %d exceeds addressable space: %w",
			off, length, fault.ErrInvalidRange,
		)
	}

	start = s.BitIndex(off)
	last := s.BitIndex(end)
	if s.ByteOffset(last) != end {
		last++
	}
	return start, last - start, nil
}

// SetBits sets [start, start+count), allocating segments as needed. It fails
// without side effects when the range overflows or the allocation budget
// would be exceeded.
func (s *Store) SetBits(start, count uint64) error {
	if count == 0 {
		return nil
	}
	end := start + count
	if end < start {
		return fmt.Errorf("bit range overflows: %w", fault.ErrInvalidRange)
	}

	first, last := start/SegmentBits, (end-1)/SegmentBits
	if err := s.reserve(first, last); err != nil {
		return err
	}

	for seg := first; seg <= last; seg++ {
		lo, hi := clampToSegment(seg, start, end)
		r, ok := s.segments[seg]
		if !ok {
			r = NewRange(seg * SegmentBits)
			s.segments[seg] = r
		}
		r.Set(lo, hi-lo)
	}
	return nil
}

// ClearBits clears [start, start+count). Segments left empty are released.
// Bits past the end of the address space are already clear, so an
// overflowing range is clipped rather than rejected.
func (s *Store) ClearBits(start, count uint64) {
	if count == 0 {
		return
	}
	end := start + count
	if end < start {
		end = math.MaxUint64
	}

	first, last := start/SegmentBits, (end-1)/SegmentBits
	s.eachAllocated(first, last, func(seg uint64, r *Range) {
		lo, hi := clampToSegment(seg, start, end)
		r.Clear(lo, hi-lo)
		if r.Empty() {
			delete(s.segments, seg)
		}
	})
}

// AllSetBits reports whether every bit in [start, start+count) is set.
// Unallocated bits are clear, so any range touching them reports false.
func (s *Store) AllSetBits(start, count uint64) bool {
	if count == 0 {
		return true
	}
	end := start + count
	if end < start {
		return false
	}

	first, last := start/SegmentBits, (end-1)/SegmentBits
	if last-first >= uint64(len(s.segments)) {
		return false
	}
	for seg := first; seg <= last; seg++ {
		r, ok := s.segments[seg]
		if !ok {
			return false
		}
		lo, hi := clampToSegment(seg, start, end)
		if !r.AllSet(lo, hi-lo) {
			return false
		}
	}
	return true
}

// Stats reports the current allocation.
func (s *Store) Stats() Stats {
	st := Stats{Segments: len(s.segments)}
	for _, r := range s.segments {
		st.SetBits += uint64(r.Count())
	}
	return st
}

// Reset releases every segment.
func (s *Store) Reset() {
	clear(s.segments)
}

// reserve checks that allocating the missing segments in [first, last] stays
// within the budget.
func (s *Store) reserve(first, last uint64) error {
	span := last - first + 1
	if span == 0 || span > uint64(s.maxSegments) {
		return fmt.Errorf("range needs more than %d bitmap segments: %w", s.maxSegments, fault.ErrInternal)
	}
	missing := 0
	for seg := first; seg <= last; seg++ {
		if _, ok := s.segments[seg]; !ok {
			missing++
		}
	}
	if len(s.segments)+missing > s.maxSegments {
		return fmt.Errorf(
			"bitmap segment budget exhausted (%d allocated, %d more needed, limit %d): %w",
			len(s.segments), missing, s.maxSegments, fault.ErrInternal,
		)
	}
	return nil
}

// eachAllocated calls fn for every allocated segment numbered within
// [first, last], walking whichever of the span or the map is smaller.
func (s *Store) eachAllocated(first, last uint64, fn func(seg uint64, r *Range)) {
	if last-first < uint64(len(s.segments)) {
		for seg := first; seg <= last; seg++ {
			if r, ok := s.segments[seg]; ok {
				fn(seg, r)
			}
		}
		return
	}
	for seg, r := range s.segments {
		if seg >= first && seg <= last {
			fn(seg, r)
		}
	}
}

// clampToSegment intersects [start, end) with the span of segment seg.
func clampToSegment(seg, start, end uint64) (lo, hi uint64) {
	segStart := seg * SegmentBits
	segEnd := segStart + SegmentBits
	if segEnd < segStart { // last segment of the uint64 space
		segEnd = math.MaxUint64
	}
	return max(start, segStart), min(end, segEnd)
}
