// Package addrset implements AddrRangeSet, the disjoint-interval container
// SynchroTrace uses to compress many single-address touches into a handful
// of ranges (spec.md §4.A).
//
// The merge algorithm is ported case-for-case from the original AddrSet
// (_examples/original_source/src/Backends/SynchroTraceGen/STEvent.cpp),
// which stored ranges in an ordered std::set<std::pair<Addr,Addr>> and
// located the merge candidate with lower_bound. Here the ordered set is a
// slice kept sorted by Start, and the candidate lookup uses
// golang.org/x/exp/slices' binary search instead of a tree lookup — same
// role, array-backed representation.
package addrset

import (
	"golang.org/x/exp/slices"

	"github.com/kolkov/stgen/internal/stgen/stid"
)

// Set is an ordered set of disjoint, non-adjacent address ranges. The zero
// value is an empty, ready-to-use set.
type Set struct {
	ranges []stid.Range
}

// Ranges returns the stored ranges in ascending Start order. The returned
// slice is owned by the caller and safe to mutate.
func (s *Set) Ranges() []stid.Range {
	out := make([]stid.Range, len(s.ranges))
	copy(out, s.ranges)
	return out
}

// Len reports the number of disjoint ranges currently stored.
func (s *Set) Len() int {
	return len(s.ranges)
}

// Clear empties the set.
func (s *Set) Clear() {
	s.ranges = s.ranges[:0]
}

// Insert idempotently adds r, merging with any adjacent or overlapping
// ranges so the disjointness invariant (spec.md §8 invariant 1) holds
// afterward: for any two stored ranges r1, r2, r1.End+1 < r2.Start.
func (s *Set) Insert(r stid.Range) {
	if len(s.ranges) == 0 {
		s.ranges = append(s.ranges, r)
		return
	}

	// Candidate lookup: the first range whose Start >= r.Start, stepping
	// back one if its predecessor might border or overlap r instead.
	// This is the array equivalent of the original's ms.lower_bound(range).
	lb, _ := slices.BinarySearchFunc(s.ranges, r, func(a, b stid.Range) int {
		switch {
		case a.Start < b.Start:
			return -1
		case a.Start > b.Start:
			return 1
		default:
			return 0
		}
	})

	it := lb
	if lb != 0 {
		if lb == len(s.ranges) {
			it = len(s.ranges) - 1
		} else {
			it = lb - 1
			if r.Start > s.ranges[it].End+1 {
				it = lb
			}
		}
	}

	cand := s.ranges[it]

	switch {
	case r.Start == cand.End+1:
		s.remove(it)
		s.Insert(stid.Range{Start: cand.Start, End: r.End})

	case r.End+1 == cand.Start:
		s.remove(it)
		s.Insert(stid.Range{Start: r.Start, End: cand.End})

	case r.Start > cand.End:
		// r sits strictly above cand: no merge, plain insert.
		s.insertAt(lb, r)

	case r.Start >= cand.Start && r.Start <= cand.End:
		if r.End > cand.End {
			s.remove(it)
			s.Insert(stid.Range{Start: cand.Start, End: r.End})
		}
		// else: cand already encompasses r, nothing to do.

	case r.Start < cand.Start && r.End < cand.Start:
		s.insertAt(lb, r)

	case r.Start < cand.Start && r.End >= cand.Start && r.End <= cand.End:
		s.remove(it)
		s.insertAt(it, stid.Range{Start: r.Start, End: cand.End})

	default: // r.Start < cand.Start && r.End > cand.End: r swallows cand
		s.remove(it)
		s.Insert(r)
	}
}

func (s *Set) remove(i int) {
	s.ranges = slices.Delete(s.ranges, i, i+1)
}

func (s *Set) insertAt(i int, r stid.Range) {
	s.ranges = slices.Insert(s.ranges, i, r)
}
