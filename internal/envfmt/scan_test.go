package envfmt

import (
	"bytes"
	"reflect"
	"testing"
)

func TestAllTags_Basic(t *testing.T) {
	data := []byte("GUID/some-id\nTYPE/xml\nDOCU/contents")
	got := AllTags(data)
	want := []string{"DOCU/", "GUID/", "TYPE/"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("AllTags = %v, want %v", got, want)
	}
}

func TestAllTags_UnknownTokensDiscovered(t *testing.T) {
	data := []byte("ZZTOP/hello GUID/abc NEWTAG/x")
	got := AllTags(data)
	want := []string{"GUID/", "NEWTAG/", "ZZTOP/"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("AllTags = %v, want %v", got, want)
	}
}

func TestAllTags_RejectsOverlongRuns(t *testing.T) {
	// 33 identifier bytes before the slash: longer than a header field
	// token can be, so it is payload noise, not a tag.
	data := append(bytes.Repeat([]byte("A"), 33), '/')
	if got := AllTags(data); len(got) != 0 {
		t.Errorf("AllTags = %v, want none", got)
	}
	// 32 is still acceptable.
	data = append(bytes.Repeat([]byte("A"), 32), '/')
	if got := AllTags(data); len(got) != 1 {
		t.Errorf("AllTags = %v, want one token", got)
	}
}

func TestAllTags_RejectsShortRuns(t *testing.T) {
	if got := AllTags([]byte("x A/ y")); len(got) != 0 {
		t.Errorf("single-byte token accepted: %v", got)
	}
}

func TestAllTags_TokenInsideLongerRunNotSplit(t *testing.T) {
	// ENV_GUID/ is one token; the embedded GUID/ tail must not be
	// reported as a second discovery.
	got := AllTags([]byte("ENV_GUID/abc"))
	want := []string{"ENV_GUID/"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("AllTags = %v, want %v", got, want)
	}
}

func TestFindMarkers_OffsetsAndOrder(t *testing.T) {
	data := []byte("GUID/abcTYPE/jpegDOCU/binary_data")
	markers, dups := FindMarkers(data)
	want := []Marker{
		{Offset: 0, Tag: "GUID/"},
		{Offset: 8, Tag: "TYPE/"},
		{Offset: 17, Tag: "DOCU/"},
	}
	if !reflect.DeepEqual(markers, want) {
		t.Errorf("markers = %v, want %v", markers, want)
	}
	if len(dups) != 0 {
		t.Errorf("unexpected duplicates: %v", dups)
	}
}

func TestFindMarkers_NoOverlap(t *testing.T) {
	// The GUID/ tail inside ENV_GUID/ must not surface as its own marker.
	markers, _ := FindMarkers([]byte("ENV_GUID/abc"))
	if len(markers) != 1 {
		t.Fatalf("len(markers) = %d, want 1", len(markers))
	}
	if markers[0].Tag != "ENV_GUID/" || markers[0].Offset != 0 {
		t.Errorf("marker = %+v, want ENV_GUID/ at 0", markers[0])
	}
}

func TestFindMarkers_BinaryNoiseAround(t *testing.T) {
	data := append([]byte{0x00, 0xFF, 0xD8}, []byte("DOCU/")...)
	data = append(data, 0x89, 0x50)
	markers, _ := FindMarkers(data)
	if len(markers) != 1 {
		t.Fatalf("len(markers) = %d, want 1", len(markers))
	}
	if markers[0].Offset != 3 {
		t.Errorf("offset = %d, want 3", markers[0].Offset)
	}
}

func TestFindMarkers_Deterministic(t *testing.T) {
	data := []byte("GUID/a\nFILENAME/f.txt\nDOCU/payload bytes")
	a, _ := FindMarkers(data)
	b, _ := FindMarkers(data)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("two scans differ: %v vs %v", a, b)
	}
}
