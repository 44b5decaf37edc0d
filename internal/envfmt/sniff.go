package envfmt

import (
	"bytes"
	"strings"
)

// TypeUnknown is the sentinel label for payloads matching no signature.
const TypeUnknown = "Unknown"

type signature struct {
	label string
	ext   string
	match func([]byte) bool
}

// signatures is the magic-number detection table. Table order is part of
// the contract: a payload is classified by the first entry that matches,
// so the same buffer always resolves to the same label across runs.
var signatures = []signature{
	{"JPEG", ".jpg", func(b []byte) bool {
		return bytes.HasPrefix(b, []byte{0xFF, 0xD8, 0xFF})
	}},
	{"PNG", ".png", func(b []byte) bool {
		return bytes.HasPrefix(b, []byte("\x89PNG"))
	}},
	{"WEBP", ".webp", func(b []byte) bool {
		return bytes.HasPrefix(b, []byte("RIFF")) && bytes.Contains(head(b, 20), []byte("WEBP"))
	}},
	{"XML", ".xml", func(b []byte) bool {
		return bytes.HasPrefix(bytes.TrimSpace(b), []byte("<?xml")) || bytes.Contains(head(b, 200), []byte("</"))
	}},
	{"ZIP", ".zip", func(b []byte) bool {
		return bytes.HasPrefix(b, []byte("PK\x03\x04"))
	}},
	{"TEXT", ".txt", func(b []byte) bool {
		return bytes.Contains(bytes.ToLower(head(b, 300)), []byte("content"))
	}},
}

// declaredTypes maps an EXT/ or TYPE/ field value (lowercased, optional
// leading dot) to its canonical extension and label.
var declaredTypes = map[string]struct{ ext, label string }{
	"jpg": {".jpg", "JPEG"}, "jpeg": {".jpg", "JPEG"},
	"png":  {".png", "PNG"},
	"webp": {".webp", "WEBP"},
	"xml":  {".xml", "XML"},
	"zip":  {".zip", "ZIP"},
	"txt":  {".txt", "TEXT"}, "text": {".txt", "TEXT"},
}

func head(b []byte, n int) []byte {
	if len(b) > n {
		return b[:n]
	}
	return b
}

// Sniff classifies payload bytes by magic number alone, returning the label
// of the first matching signature or TypeUnknown. An empty payload is
// always TypeUnknown.
func Sniff(blob []byte) string {
	if len(blob) == 0 {
		return TypeUnknown
	}
	for _, sig := range signatures {
		if sig.match(blob) {
			return sig.label
		}
	}
	return TypeUnknown
}

// DetectType resolves the output extension and type label for a payload. A
// declared extension or type keyword wins when recognized; otherwise the
// signature table decides; otherwise ".bin" / Unknown.
func DetectType(blob []byte, declared string) (ext, label string) {
	declared = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(declared)), ".")
	if d, ok := declaredTypes[declared]; ok {
		return d.ext, d.label
	}
	for _, sig := range signatures {
		if sig.match(blob) {
			return sig.ext, sig.label
		}
	}
	return ".bin", TypeUnknown
}

// ExtForType maps a type label back to its canonical extension, ".bin"
// when the label is unknown.
func ExtForType(label string) string {
	for _, sig := range signatures {
		if sig.label == label {
			return sig.ext
		}
	}
	return ".bin"
}
