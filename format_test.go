// On-disk format verification tests.
//
// The pack format has strict layout requirements that every read function
// depends on: the index header is exactly 16 bytes, note records are 14
// bytes plus the title, part headers are exactly 24 bytes with the chunk
// count at byte 14 and the table offset at byte 16, and table entries are
// 8 bytes each. These tests read raw bytes from freshly encoded objects
// and verify the layout matches expectations. They serve as a contract
// between the builder (which produces the layout) and the reader (which
// assumes it); if either side changes, these tests catch the mismatch
// before it becomes a runtime bug.
package ntx

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// TestConstants guards every exported constant that is persisted inside
// objects or used in byte-position calculations. If any value changed,
// existing packs would become unreadable because the reader extracts
// fields at hardcoded offsets derived from these constants.
func TestConstants(t *testing.T) {
	tests := []struct {
		name string
		got  int
		want int
	}{
		{"IndexHeaderSize", IndexHeaderSize, 16},
		{"PartHeaderSize", PartHeaderSize, 24},
		{"PartEntrySize", PartEntrySize, 8},
		{"MaxObjectSize", MaxObjectSize, 65512},
		{"SplitNone", int(SplitNone), 0},
		{"SplitSentence", int(SplitSentence), 1},
		{"SplitParagraph", int(SplitParagraph), 2},
		{"SplitWhitespace", int(SplitWhitespace), 3},
		{"SplitHard", int(SplitHard), 4},
		{"AlgXXHash3", AlgXXHash3, 1},
		{"AlgFNV1a", AlgFNV1a, 2},
		{"AlgBlake2b", AlgBlake2b, 3},
	}

	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %d, want %d", tt.name, tt.got, tt.want)
		}
	}
}

// TestIndexLayout encodes a one-note index and checks every header and
// record field at its raw byte offset.
func TestIndexLayout(t *testing.T) {
	blob, err := encodeIndex([]Note{{
		NoteID:         7,
		FirstPartID:    3,
		PartCount:      2,
		TotalChunks:    9,
		TotalTextBytes: 70000,
		Title:          "ab",
	}})
	if err != nil {
		t.Fatalf("encodeIndex: %v", err)
	}

	if want := IndexHeaderSize + 14 + 2; len(blob) != want {
		t.Fatalf("blob is %d bytes, want %d", len(blob), want)
	}
	if !bytes.Equal(blob[0:4], []byte("NTXI")) {
		t.Errorf("magic = %q, want NTXI", blob[0:4])
	}

	le := binary.LittleEndian
	header := []struct {
		name string
		off  int
		want uint16
	}{
		{"version", 4, 1},
		{"header_size", 6, 16},
		{"note_count", 8, 1},
	}
	for _, f := range header {
		if got := le.Uint16(blob[f.off:]); got != f.want {
			t.Errorf("%s at byte %d = %d, want %d", f.name, f.off, got, f.want)
		}
	}

	rec := blob[IndexHeaderSize:]
	record := []struct {
		name string
		off  int
		want uint16
	}{
		{"note_id", 0, 7},
		{"first_part_id", 2, 3},
		{"part_count", 4, 2},
		{"total_chunks", 6, 9},
	}
	for _, f := range record {
		if got := le.Uint16(rec[f.off:]); got != f.want {
			t.Errorf("%s at record byte %d = %d, want %d", f.name, f.off, got, f.want)
		}
	}
	if got := le.Uint32(rec[8:]); got != 70000 {
		t.Errorf("total_text_bytes = %d, want 70000", got)
	}
	if rec[12] != 2 {
		t.Errorf("title_len = %d, want 2", rec[12])
	}
	if rec[13] != 0 {
		t.Errorf("record reserved byte = %d, want 0", rec[13])
	}
	if string(rec[14:16]) != "ab" {
		t.Errorf("title bytes = %q, want %q", rec[14:16], "ab")
	}
}

// TestPartLayout encodes a two-chunk part and checks the header fields,
// both table entries, and the payload region at their raw byte offsets.
func TestPartLayout(t *testing.T) {
	blob := encodePart(5, 1, 3, 10, []TextChunk{
		{Text: "abcd", Kind: SplitSentence},
		{Text: "xyz", Kind: SplitNone},
	})

	if want := PartHeaderSize + 2*PartEntrySize + 7; len(blob) != want {
		t.Fatalf("blob is %d bytes, want %d", len(blob), want)
	}
	if !bytes.Equal(blob[0:4], []byte("NTXP")) {
		t.Errorf("magic = %q, want NTXP", blob[0:4])
	}

	le := binary.LittleEndian
	header := []struct {
		name string
		off  int
		want uint16
	}{
		{"version", 4, 1},
		{"header_size", 6, 24},
		{"note_id", 8, 5},
		{"part_index", 10, 1},
		{"part_count", 12, 3},
		{"chunk_count", 14, 2},
		{"chunk_table_offset", 16, 24},
		{"payload_offset", 18, 40},
		{"payload_size", 20, 7},
		{"reserved", 22, 0},
	}
	for _, f := range header {
		if got := le.Uint16(blob[f.off:]); got != f.want {
			t.Errorf("%s at byte %d = %d, want %d", f.name, f.off, got, f.want)
		}
	}

	entries := []struct {
		rel, length uint16
		split       byte
		global      uint16
	}{
		{0, 4, byte(SplitSentence), 10},
		{4, 3, byte(SplitNone), 11},
	}
	for i, want := range entries {
		e := blob[PartHeaderSize+i*PartEntrySize:]
		if got := le.Uint16(e[0:]); got != want.rel {
			t.Errorf("entry %d rel = %d, want %d", i, got, want.rel)
		}
		if got := le.Uint16(e[2:]); got != want.length {
			t.Errorf("entry %d len = %d, want %d", i, got, want.length)
		}
		if e[4] != want.split {
			t.Errorf("entry %d split = %d, want %d", i, e[4], want.split)
		}
		if e[5] != 0 {
			t.Errorf("entry %d reserved = %d, want 0", i, e[5])
		}
		if got := le.Uint16(e[6:]); got != want.global {
			t.Errorf("entry %d global = %d, want %d", i, got, want.global)
		}
	}

	if string(blob[40:]) != "abcdxyz" {
		t.Errorf("payload = %q, want %q", blob[40:], "abcdxyz")
	}
}

// Every encoded object from a real build must fit under the object cap
// and parse back through the reader unchanged.
func TestBuildStaysUnderObjectCap(t *testing.T) {
	var sources []NoteSource
	body := ""
	for i := 0; i < 200; i++ {
		body += "A reasonably long sentence to fill a note with text. "
	}
	sources = append(sources, NoteSource{Title: "big", Text: body})

	pack, err := Builder{Splitter: Splitter{Target: 2048, Hard: 4096}}.Build(sources)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for name, blob := range pack.Objects {
		if len(blob) > MaxObjectSize {
			t.Errorf("object %s is %d bytes, exceeds cap", name, len(blob))
		}
	}
}
