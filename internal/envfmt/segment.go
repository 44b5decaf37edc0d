package envfmt

// Segment is a contiguous byte range of the source buffer believed to hold
// one embedded payload chunk. Invariant: 0 <= Start <= End <= len(buffer).
type Segment struct {
	Start int
	End   int
}

// Len returns the number of bytes the segment covers.
func (s Segment) Len() int { return s.End - s.Start }

// IsZero reports whether the segment covers no bytes.
func (s Segment) IsZero() bool { return s.Start == s.End }

// span returns the smallest segment covering all of segs. Zero value when
// segs is empty.
func span(segs []Segment) Segment {
	if len(segs) == 0 {
		return Segment{}
	}
	out := segs[0]
	for _, s := range segs[1:] {
		if s.Start < out.Start {
			out.Start = s.Start
		}
		if s.End > out.End {
			out.End = s.End
		}
	}
	return out
}
