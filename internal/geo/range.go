package geo

import "slices"

// Range is a contiguous run of offsets.
type Range struct {
	Start Offset
	Size  int
}

// End returns the first offset after r.
func (r Range) End() Offset {
	return r.Start + Offset(r.Size)
}

// Ranges coalesces offsets into sorted contiguous runs. Duplicates are
// collapsed.
func Ranges(offsets []Offset) []Range {
	if len(offsets) == 0 {
		return nil
	}
	sorted := slices.Clone(offsets)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	out := []Range{{Start: sorted[0], Size: 1}}
	for _, off := range sorted[1:] {
		last := &out[len(out)-1]
		if off == last.End() {
			last.Size++
			continue
		}
		out = append(out, Range{Start: off, Size: 1})
	}
	return out
}
