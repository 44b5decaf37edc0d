package envfmt

import (
	"bytes"
	"strings"
	"unicode/utf8"
)

// Longest header field the format's producer is known to emit. Anything
// past this is payload bytes that happen to follow a metadata tag.
const maxFieldLen = 1000

// Metadata maps field names (tag token without the trailing slash, e.g.
// "FILENAME") to their decoded values. A field missing from the record
// block is absent from the map; absent and empty are distinct, so
// consumers can tell "no FILENAME/ marker" from "FILENAME/ with nothing
// after it".
type Metadata map[string]string

// GUID returns the GUID field and whether it was present.
func (m Metadata) GUID() (string, bool) { v, ok := m["GUID"]; return v, ok }

// Filename returns the FILENAME field and whether it was present.
func (m Metadata) Filename() (string, bool) { v, ok := m["FILENAME"]; return v, ok }

// Ext returns the EXT field and whether it was present.
func (m Metadata) Ext() (string, bool) { v, ok := m["EXT"]; return v, ok }

// DeclaredType returns the TYPE field and whether it was present.
func (m Metadata) DeclaredType() (string, bool) { v, ok := m["TYPE"]; return v, ok }

// SHA1 returns the SHA1 field and whether it was present.
func (m Metadata) SHA1() (string, bool) { v, ok := m["SHA1"]; return v, ok }

// DocType returns the DOCTYPE field and whether it was present.
func (m Metadata) DocType() (string, bool) { v, ok := m["DOCTYPE"]; return v, ok }

// fieldValue decodes the bytes between a metadata tag and the next primary
// marker into a header field value: first line only, capped at maxFieldLen,
// surrounding whitespace trimmed. ok is false when the bytes are not
// plausible text (invalid UTF-8 or embedded control bytes), in which case
// the field is treated as absent rather than stored mangled.
func fieldValue(raw []byte) (value string, ok bool) {
	if i := bytes.IndexByte(raw, '\r'); i >= 0 {
		raw = raw[:i]
	}
	if i := bytes.IndexByte(raw, '\n'); i >= 0 {
		raw = raw[:i]
	}
	if len(raw) > maxFieldLen {
		raw = raw[:maxFieldLen]
	}
	raw = bytes.TrimSpace(raw)

	if !utf8.Valid(raw) {
		return "", false
	}
	s := string(raw)
	for _, r := range s {
		if r < 0x20 || r == 0x7f {
			return "", false
		}
	}
	return strings.TrimSpace(s), true
}
