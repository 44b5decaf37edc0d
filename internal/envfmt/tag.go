// Package envfmt recovers structured file entries from the proprietary
// HomeVision .env archive format: a flat binary buffer in which embedded
// payloads (images, XML, text) are interleaved with ASCII marker tags such
// as GUID/, FILENAME/ and DOCU/. The format has no published schema, length
// table, or index; segmentation is driven entirely by marker positions.
package envfmt

// Tag is a marker token embedded in the archive, including its trailing
// slash delimiter (e.g. "GUID/").
type Tag string

// Kind classifies what a primary tag contributes to a record block.
type Kind int

const (
	// KindGUID starts a new record block.
	KindGUID Kind = iota
	// KindMeta introduces a text metadata field (filename, extension, ...).
	KindMeta
	// KindPayload introduces embedded payload bytes.
	KindPayload
	// KindOther is recognized as a block delimiter but carries no
	// extraction semantics of its own.
	KindOther
)

// PrimaryTags is the curated allowlist of markers known to bound file
// records, in declaration order. The order is a contract: it is the
// tie-break rule when two tags match at the same byte offset, and the
// marker scanner tries candidates in this order.
var PrimaryTags = []Tag{
	"GUID/", "FILENAME/", "EXT/", "TYPE/", "SHA1/",
	"DOCU/", "_SIG/", "DOCTYPE/", "ENV_GUID/",
	"FORM/", "IMAGE/", "OADI/", "SUP/", "XSL/", "ID/", "QU/",
}

// Kind returns the extraction role of a primary tag.
func (t Tag) Kind() Kind {
	switch t {
	case "GUID/":
		return KindGUID
	case "FILENAME/", "EXT/", "TYPE/", "SHA1/", "DOCTYPE/":
		return KindMeta
	case "DOCU/", "_SIG/", "IMAGE/", "OADI/":
		return KindPayload
	default:
		return KindOther
	}
}

// Field returns the metadata field name for a tag: the token without its
// trailing slash.
func (t Tag) Field() string {
	s := string(t)
	if len(s) > 0 && s[len(s)-1] == '/' {
		return s[:len(s)-1]
	}
	return s
}
