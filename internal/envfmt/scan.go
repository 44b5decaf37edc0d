package envfmt

import "sort"

// Tag token shape: a run of [A-Z0-9_] immediately followed by '/'.
const (
	minTokenLen = 2
	maxTokenLen = 32
)

// Marker is a located occurrence of a primary tag.
type Marker struct {
	Offset int
	Tag    Tag
}

func isTokenByte(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9') || b == '_'
}

// AllTags scans data for anything shaped like a tag token and returns the
// sorted set of distinct tokens (trailing slash included). This is an
// exploratory discovery pass over the whole buffer, independent of the
// primary allowlist; it exists so unknown markers surface in the tag
// listing and can be promoted into PrimaryTags over time.
//
// A candidate is accepted only when its identifier run sits on a real
// boundary: the byte before the run must not itself be an identifier byte
// (otherwise the "token" is the tail of a longer run, i.e. payload noise),
// and runs longer than maxTokenLen are rejected outright.
func AllTags(data []byte) []string {
	seen := make(map[string]struct{})

	i := 0
	for i < len(data) {
		if !isTokenByte(data[i]) {
			i++
			continue
		}
		// Measure the full identifier run starting at i. Because the scan
		// only enters here at a non-identifier boundary (or buffer start),
		// i is the true start of the run.
		j := i
		for j < len(data) && isTokenByte(data[j]) {
			j++
		}
		runLen := j - i
		if runLen >= minTokenLen && runLen <= maxTokenLen && j < len(data) && data[j] == '/' {
			seen[string(data[i:j+1])] = struct{}{}
		}
		i = j + 1
	}

	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// FindMarkers returns every occurrence of a primary tag in data, ordered by
// byte offset. Matches do not overlap: once a tag matches, scanning resumes
// after its trailing slash, so a token embedded inside another (the GUID/
// tail of ENV_GUID/) is not reported twice.
//
// When more than one allowlist entry matches at the same offset, the
// earlier-declared tag wins and the losers are reported as duplicates so
// the caller can flag the ambiguity.
func FindMarkers(data []byte) (markers []Marker, duplicates []Marker) {
	i := 0
	for i < len(data) {
		matched := false
		for _, t := range PrimaryTags {
			if !hasTagAt(data, i, t) {
				continue
			}
			if !matched {
				markers = append(markers, Marker{Offset: i, Tag: t})
				matched = true
			} else {
				duplicates = append(duplicates, Marker{Offset: i, Tag: t})
			}
		}
		if matched {
			i += len(markers[len(markers)-1].Tag)
		} else {
			i++
		}
	}
	return markers, duplicates
}

func hasTagAt(data []byte, off int, t Tag) bool {
	if off+len(t) > len(data) {
		return false
	}
	for k := 0; k < len(t); k++ {
		if data[off+k] != t[k] {
			return false
		}
	}
	return true
}
