// Part container decoding and chunk resolution.
//
// A part object is a 24-byte header, a chunk table of fixed 8-byte
// entries, and a contiguous payload of concatenated chunk bytes. Each
// table entry carries the chunk's index within the whole note, so the
// table does not have to be in global order and parts can hold any
// contiguous or non-contiguous selection the builder produced; the
// resolver always does a full linear scan per part.
//
// Parts are loaded whole, scanned, and dropped one at a time. A load or
// validation failure on any part aborts the lookup; there is no fallback
// to later parts, and no partial result.
package ntx

import (
	"bytes"
	"fmt"
)

// Part container layout constants.
const (
	// PartHeaderSize is the fixed size of the part header in bytes.
	PartHeaderSize = 24

	// PartEntrySize is the size of one chunk table entry in bytes.
	PartEntrySize = 8

	partMagic   = "NTXP"
	partVersion = 1
)

// Chunk is one decoded unit of note text. Text is an independent copy of
// the payload bytes; Kind records why the source text was divided at this
// chunk's boundary.
type Chunk struct {
	Text string
	Kind SplitKind
}

// LoadChunk resolves a global chunk index of a note to its text and split
// kind by scanning the note's part objects in ascending id order. The
// range check runs before any storage access.
func LoadChunk(st Storage, note Note, index uint16) (Chunk, error) {
	if index >= note.TotalChunks {
		return Chunk{}, fmt.Errorf("%w: chunk %d, note %d declares %d", ErrOutOfRange, index, note.NoteID, note.TotalChunks)
	}

	for p := uint16(0); p < note.PartCount; p++ {
		name := PartName(note.FirstPartID + p)
		buf, err := readObject(st, name)
		if err != nil {
			return Chunk{}, err
		}

		chunk, found, err := scanPart(buf, name, index)
		if err != nil {
			return Chunk{}, err
		}
		if found {
			return chunk, nil
		}
	}

	// Reachable even for an in-range index: the index object's declared
	// total and the parts' actual tables are allowed to disagree, and the
	// disagreement is only discovered here.
	return Chunk{}, fmt.Errorf("%w: chunk %d of note %d", ErrNotFound, index, note.NoteID)
}

// scanPart validates one part container and linearly scans its chunk
// table for the requested global index.
func scanPart(buf []byte, name string, index uint16) (Chunk, bool, error) {
	if len(buf) < PartHeaderSize {
		return Chunk{}, false, fmt.Errorf("%w: part %s is %d bytes, header needs %d", ErrUndersized, name, len(buf), PartHeaderSize)
	}
	if !bytes.Equal(buf[:4], []byte(partMagic)) {
		return Chunk{}, false, fmt.Errorf("%w: %s is not a part container", ErrBadMagic, name)
	}

	cur := newCursor(buf)
	cur.seek(4)
	version := cur.u16()
	headerSize := cur.u16()
	cur.skip(6) // note id, part index, part count: builder metadata
	chunkCount := cur.u16()
	tableOffset := cur.u16()
	payloadOffset := cur.u16()
	payloadSize := cur.u16()
	if err := cur.Err(); err != nil {
		return Chunk{}, false, fmt.Errorf("part %s header: %w", name, err)
	}

	if version != partVersion || headerSize != PartHeaderSize {
		return Chunk{}, false, fmt.Errorf("%w: part %s version %d header size %d", ErrUnsupported, name, version, headerSize)
	}
	if int(tableOffset)+int(chunkCount)*PartEntrySize > len(buf) {
		return Chunk{}, false, fmt.Errorf("%w: %s chunk table", ErrOutOfBounds, name)
	}
	if int(payloadOffset)+int(payloadSize) > len(buf) {
		return Chunk{}, false, fmt.Errorf("%w: %s payload", ErrOutOfBounds, name)
	}

	tab := newCursor(buf)
	tab.seek(int(tableOffset))
	for c := uint16(0); c < chunkCount; c++ {
		rel := tab.u16()
		length := tab.u16()
		kind := tab.u8()
		tab.skip(1) // reserved
		global := tab.u16()
		if err := tab.Err(); err != nil {
			return Chunk{}, false, fmt.Errorf("part %s entry %d: %w", name, c, err)
		}

		if global != index {
			continue
		}
		if int(rel)+int(length) > int(payloadSize) {
			return Chunk{}, false, fmt.Errorf("%w: %s chunk %d payload slice", ErrOutOfBounds, name, index)
		}

		start := int(payloadOffset) + int(rel)
		return Chunk{
			Text: string(buf[start : start+int(length)]),
			Kind: SplitKind(kind),
		}, true, nil
	}

	return Chunk{}, false, nil
}
