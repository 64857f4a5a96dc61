// Index container decoding.
//
// The index is the pack's table of contents: a 16-byte header followed by
// back-to-back note records, each a 14-byte fixed block plus a variable
// title. Decoding is all-or-nothing: the note table is only committed
// once every record parsed, so a failure halfway through simply discards
// the partial table.
//
// TotalChunks is the index's claim about the parts, not a verified fact:
// the decoder does not open any part object to check it. A chunk index
// inside the declared range that no part actually holds surfaces later as
// ErrNotFound from LoadChunk. Eager verification would mean reading every
// part at load time, which the one-part-resident memory bound forbids.
package ntx

import (
	"bytes"
	"fmt"
)

// Index container layout constants.
const (
	// IndexHeaderSize is the fixed size of the index header in bytes.
	IndexHeaderSize = 16

	indexMagic     = "NTXI"
	indexVersion   = 1
	noteRecordSize = 14
)

// Note describes one logical document: its identity, the contiguous range
// of part objects holding its text, and its declared totals. Parts are
// visited in ascending order FirstPartID .. FirstPartID+PartCount-1, and
// global chunk indexes for the note range over [0, TotalChunks).
type Note struct {
	NoteID         uint16
	FirstPartID    uint16
	PartCount      uint16
	TotalChunks    uint16
	TotalTextBytes uint32 // informational; never used for bounds checks
	Title          string
}

// Index is the ordered note table decoded from the index object. Order is
// container order, which is the display order. An Index is immutable
// after LoadIndex.
type Index struct {
	notes []Note
}

// Len returns the number of notes.
func (ix *Index) Len() int {
	return len(ix.notes)
}

// Note returns the i'th note in container order.
func (ix *Index) Note(i int) Note {
	return ix.notes[i]
}

// Notes returns the full note table in container order.
func (ix *Index) Notes() []Note {
	return ix.notes
}

// LoadIndex reads and decodes the pack's index object.
func LoadIndex(st Storage) (*Index, error) {
	buf, err := readObject(st, IndexName)
	if err != nil {
		return nil, err
	}
	return parseIndex(buf)
}

func parseIndex(buf []byte) (*Index, error) {
	if len(buf) < IndexHeaderSize {
		return nil, fmt.Errorf("%w: index is %d bytes, header needs %d", ErrUndersized, len(buf), IndexHeaderSize)
	}
	if !bytes.Equal(buf[:4], []byte(indexMagic)) {
		return nil, fmt.Errorf("%w: %s is not an index container", ErrBadMagic, IndexName)
	}

	cur := newCursor(buf)
	cur.seek(4)
	version := cur.u16()
	headerSize := cur.u16()
	noteCount := cur.u16()
	if version != indexVersion || headerSize != IndexHeaderSize {
		return nil, fmt.Errorf("%w: index version %d header size %d", ErrUnsupported, version, headerSize)
	}

	// Records start immediately after the header; the gap holds reserved
	// header bytes.
	cur.seek(IndexHeaderSize)

	notes := make([]Note, 0, noteCount)
	for i := 0; i < int(noteCount); i++ {
		n := Note{
			NoteID:         cur.u16(),
			FirstPartID:    cur.u16(),
			PartCount:      cur.u16(),
			TotalChunks:    cur.u16(),
			TotalTextBytes: cur.u32(),
		}
		titleLen := cur.u8()
		cur.skip(1) // reserved
		if err := cur.Err(); err != nil {
			return nil, fmt.Errorf("note record %d: %w", i, err)
		}

		// string() copies, so the title owns its bytes independently of
		// the container buffer.
		title := cur.bytes(int(titleLen))
		if err := cur.Err(); err != nil {
			return nil, fmt.Errorf("note record %d title: %w", i, err)
		}
		n.Title = string(title)
		notes = append(notes, n)
	}

	return &Index{notes: notes}, nil
}
