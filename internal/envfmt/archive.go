package envfmt

import "fmt"

// Diagnostic records a non-fatal condition noticed during parsing:
// ambiguous boundaries, malformed fields, suspicious segments. Diagnostics
// never abort a parse; they exist so callers can surface warnings next to
// the recovered records.
type Diagnostic struct {
	Offset  int
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("offset %d: %s", d.Offset, d.Message)
}

// FileRecord is one recovered file entry. It never copies payload bytes:
// Segments are ranges of the source buffer, so the buffer must outlive the
// record. Records are assembled once by Parse and not mutated afterwards.
type FileRecord struct {
	// Meta holds the decoded header fields of the record block.
	Meta Metadata
	// Segments are the ordered payload chunks contributed by payload
	// tags (DOCU/, _SIG/, IMAGE/, OADI/) within the block. A record whose
	// block held no payload tag has none.
	Segments []Segment
	// InferredType is the signature label of the leading payload bytes.
	// It is set only when the block declared no TYPE/ field.
	InferredType string

	data []byte
}

// Size returns the total payload length in bytes.
func (r *FileRecord) Size() int {
	n := 0
	for _, s := range r.Segments {
		n += s.Len()
	}
	return n
}

// Span returns the smallest segment covering every payload chunk, the zero
// segment when the record has no payload.
func (r *FileRecord) Span() Segment { return span(r.Segments) }

// Chunks returns the payload as ordered byte-slice views into the source
// buffer. Callers must not modify the returned slices.
func (r *FileRecord) Chunks() [][]byte {
	out := make([][]byte, 0, len(r.Segments))
	for _, s := range r.Segments {
		out = append(out, r.data[s.Start:s.End])
	}
	return out
}

// Head returns the first non-empty payload chunk, nil when the record has
// no payload bytes. Type sniffing keys off these leading bytes.
func (r *FileRecord) Head() []byte {
	for _, s := range r.Segments {
		if !s.IsZero() {
			return r.data[s.Start:s.End]
		}
	}
	return nil
}

// ResolvedType returns the declared TYPE/ field when present, otherwise
// the inferred signature label.
func (r *FileRecord) ResolvedType() string {
	if t, ok := r.Meta.DeclaredType(); ok && t != "" {
		return t
	}
	return r.InferredType
}

// Archive is the immutable result of parsing one source buffer. Records
// preserve buffer-offset order. Filenames are not deduplicated; collision
// handling belongs to whoever writes the records out.
type Archive struct {
	// Source is the declared origin of the buffer, used in diagnostics.
	Source string
	// Records are the recovered file entries in offset order.
	Records []FileRecord
	// Tags is the sorted set of every tag-shaped token discovered in the
	// buffer, known or not. Diagnostics only; it does not drive
	// segmentation.
	Tags []string
	// Markers are the primary-tag occurrences segmentation was derived
	// from.
	Markers []Marker
	// Diagnostics lists every non-fatal condition hit during the parse.
	Diagnostics []Diagnostic
}

// Parse recovers file records from a raw .env buffer in a single forward
// pass: scan markers, resolve record blocks between GUID/ occurrences,
// decode metadata fields, and sniff payload types where none is declared.
// Parse is a pure function of the buffer; the same input always yields an
// identical Archive. It never fails: malformed regions degrade to absent
// fields or diagnostics rather than errors.
func Parse(data []byte, source string) *Archive {
	a := &Archive{Source: source, Tags: AllTags(data)}

	markers, dups := FindMarkers(data)
	a.Markers = markers
	for _, d := range dups {
		a.Diagnostics = append(a.Diagnostics, Diagnostic{
			Offset:  d.Offset,
			Message: fmt.Sprintf("marker %s shadowed by earlier allowlist entry at same offset", d.Tag),
		})
	}

	var cur *FileRecord

	flush := func(blockEnd int) {
		if cur == nil {
			return
		}
		if len(cur.Segments) == 0 {
			a.Diagnostics = append(a.Diagnostics, Diagnostic{
				Offset:  blockEnd,
				Message: "record block has no payload marker",
			})
		}
		if _, ok := cur.Meta.DeclaredType(); !ok {
			cur.InferredType = Sniff(cur.Head())
		}
		a.Records = append(a.Records, *cur)
		cur = nil
	}

	for i, m := range markers {
		valStart := m.Offset + len(m.Tag)
		valEnd := len(data)
		if i+1 < len(markers) {
			valEnd = markers[i+1].Offset
		}
		raw := data[valStart:valEnd]

		switch m.Tag.Kind() {
		case KindGUID:
			flush(m.Offset)
			cur = &FileRecord{Meta: Metadata{}, data: data}
			setField(a, cur, m, raw)

		case KindMeta:
			if cur == nil {
				cur = &FileRecord{Meta: Metadata{}, data: data}
			}
			setField(a, cur, m, raw)

		case KindPayload:
			if cur == nil {
				cur = &FileRecord{Meta: Metadata{}, data: data}
				a.Diagnostics = append(a.Diagnostics, Diagnostic{
					Offset:  m.Offset,
					Message: fmt.Sprintf("payload marker %s with no preceding record metadata", m.Tag),
				})
			}
			seg := Segment{Start: valStart, End: valEnd}
			if seg.IsZero() {
				a.Diagnostics = append(a.Diagnostics, Diagnostic{
					Offset:  m.Offset,
					Message: fmt.Sprintf("zero-length payload segment after %s", m.Tag),
				})
			} else if seg.End == len(data) {
				// The format carries no length fields, so a payload
				// terminated by buffer end rather than a marker may be
				// truncated. Keep it, but say so.
				a.Diagnostics = append(a.Diagnostics, Diagnostic{
					Offset:  m.Offset,
					Message: fmt.Sprintf("payload after %s runs to end of buffer, possible truncation", m.Tag),
				})
			}
			cur.Segments = append(cur.Segments, seg)

		case KindOther:
			// Recognized block delimiter; it already terminated the
			// previous field or payload, nothing else to extract.
		}
	}
	flush(len(data))

	return a
}

// setField decodes raw into the record field named by m's tag. An
// implausible value (binary noise after the tag) leaves the field absent
// and adds a diagnostic.
func setField(a *Archive, rec *FileRecord, m Marker, raw []byte) {
	v, ok := fieldValue(raw)
	if !ok {
		a.Diagnostics = append(a.Diagnostics, Diagnostic{
			Offset:  m.Offset,
			Message: fmt.Sprintf("field after %s is not plausible text, treated as absent", m.Tag),
		})
		return
	}
	rec.Meta[m.Tag.Field()] = v
}
