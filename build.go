// Pack building.
//
// The builder is the host-side write half of the format: it splits each
// note's text into chunks, packs the chunks into as few part objects as
// fit under the storage size cap, and encodes the index and part
// containers byte-for-byte as the device reader expects them. Building is
// pure in-memory assembly; writing the objects anywhere is the caller's
// job (a directory of .bin files, a bundle, a test's Mem map).
package ntx

import (
	"fmt"
)

// MaxObjectSize is the storage primitive's per-object byte cap. Every
// encoded container must fit under it.
const MaxObjectSize = 65512

// maxTitleBytes is the most title a note record can carry (u8 length).
const maxTitleBytes = 255

// NoteSource is one document fed to the builder.
type NoteSource struct {
	Title string
	Text  string
}

// Builder assembles pack objects from note sources.
type Builder struct {
	Splitter  Splitter
	Algorithm int // manifest digest algorithm; zero means AlgXXHash3
}

// Pack holds the encoded objects of one build, keyed by object name, plus
// the build manifest describing them.
type Pack struct {
	Objects  map[string][]byte
	Manifest *Manifest
}

// Storage returns the pack's objects as an in-memory Storage, ready for
// LoadIndex and LoadChunk.
func (p *Pack) Storage() Mem {
	return Mem(p.Objects)
}

// Build splits, partitions and encodes the given notes. Note ids and part
// ids are assigned sequentially from 1 in input order.
func (b Builder) Build(sources []NoteSource) (*Pack, error) {
	if len(sources) > 0xFFFF {
		return nil, fmt.Errorf("too many notes: %d", len(sources))
	}

	alg := b.Algorithm
	if alg == 0 {
		alg = AlgXXHash3
	}

	objects := make(map[string][]byte)
	manifest := &Manifest{
		Index:     IndexName,
		Algorithm: alg,
		Objects:   make(map[string]string),
	}

	notes := make([]Note, 0, len(sources))
	nextPartID := 1

	for i, src := range sources {
		noteID := uint16(i + 1)

		chunks, err := b.Splitter.Split(src.Text)
		if err != nil {
			return nil, fmt.Errorf("note %d (%s): %w", noteID, src.Title, err)
		}
		if len(chunks) > 0xFFFF {
			return nil, fmt.Errorf("note %d (%s): %d chunks exceeds container limit", noteID, src.Title, len(chunks))
		}

		parts, err := partition(chunks)
		if err != nil {
			return nil, fmt.Errorf("note %d (%s): %w", noteID, src.Title, err)
		}
		if nextPartID+len(parts) > 0x10000 {
			return nil, fmt.Errorf("note %d (%s): part ids exhausted", noteID, src.Title)
		}

		note := Note{
			NoteID:      noteID,
			FirstPartID: uint16(nextPartID),
			PartCount:   uint16(len(parts)),
			TotalChunks: uint16(len(chunks)),
			Title:       truncateTitle(src.Title),
		}
		for _, c := range chunks {
			note.TotalTextBytes += uint32(len(c.Text))
		}

		for partIndex, span := range parts {
			name := PartName(uint16(nextPartID))
			blob := encodePart(noteID, partIndex, len(parts), span.first, chunks[span.first:span.last])
			objects[name] = blob
			manifest.Objects[name] = digest(blob, alg)
			nextPartID++
		}

		notes = append(notes, note)
		manifest.Notes = append(manifest.Notes, ManifestNote{
			NoteID:      note.NoteID,
			Title:       note.Title,
			FirstPartID: note.FirstPartID,
			PartCount:   note.PartCount,
			TotalChunks: note.TotalChunks,
		})
	}

	indexBlob, err := encodeIndex(notes)
	if err != nil {
		return nil, err
	}
	objects[IndexName] = indexBlob
	manifest.Objects[IndexName] = digest(indexBlob, alg)

	return &Pack{Objects: objects, Manifest: manifest}, nil
}

// span is a half-open chunk range [first, last) assigned to one part.
type span struct {
	first, last int
}

// partition greedily fills parts with consecutive chunks, starting a new
// part whenever header + table + payload would exceed MaxObjectSize.
func partition(chunks []TextChunk) ([]span, error) {
	var parts []span
	cur := span{}
	payload := 0

	for i, c := range chunks {
		count := i - cur.first + 1
		next := PartHeaderSize + count*PartEntrySize + payload + len(c.Text)

		if next > MaxObjectSize && count > 1 {
			cur.last = i
			parts = append(parts, cur)
			cur = span{first: i}
			payload = 0
			next = PartHeaderSize + PartEntrySize + len(c.Text)
		}
		if next > MaxObjectSize {
			return nil, fmt.Errorf("chunk %d is %d bytes, too large for one object; lower the hard budget", i, len(c.Text))
		}
		payload += len(c.Text)
	}

	if len(chunks) > 0 {
		cur.last = len(chunks)
		parts = append(parts, cur)
	}
	return parts, nil
}

// encodePart builds one part container. firstGlobal is the global chunk
// index of chunks[0]; table entries are emitted in payload order.
func encodePart(noteID uint16, partIndex, partCount, firstGlobal int, chunks []TextChunk) []byte {
	payloadSize := 0
	for _, c := range chunks {
		payloadSize += len(c.Text)
	}
	tableOffset := PartHeaderSize
	payloadOffset := PartHeaderSize + len(chunks)*PartEntrySize

	blob := make([]byte, 0, payloadOffset+payloadSize)
	blob = append(blob, partMagic...)
	blob = appendU16(blob, partVersion)
	blob = appendU16(blob, PartHeaderSize)
	blob = appendU16(blob, noteID)
	blob = appendU16(blob, uint16(partIndex))
	blob = appendU16(blob, uint16(partCount))
	blob = appendU16(blob, uint16(len(chunks)))
	blob = appendU16(blob, uint16(tableOffset))
	blob = appendU16(blob, uint16(payloadOffset))
	blob = appendU16(blob, uint16(payloadSize))
	blob = appendU16(blob, 0) // reserved

	rel := 0
	for i, c := range chunks {
		blob = appendU16(blob, uint16(rel))
		blob = appendU16(blob, uint16(len(c.Text)))
		blob = append(blob, byte(c.Kind), 0)
		blob = appendU16(blob, uint16(firstGlobal+i))
		rel += len(c.Text)
	}
	for _, c := range chunks {
		blob = append(blob, c.Text...)
	}
	return blob
}

// encodeIndex builds the index container from a finished note table.
func encodeIndex(notes []Note) ([]byte, error) {
	blob := make([]byte, 0, IndexHeaderSize)
	blob = append(blob, indexMagic...)
	blob = appendU16(blob, indexVersion)
	blob = appendU16(blob, IndexHeaderSize)
	blob = appendU16(blob, uint16(len(notes)))
	blob = append(blob, 0, 0, 0, 0, 0, 0) // reserved header bytes

	for _, n := range notes {
		title := truncateTitle(n.Title)
		blob = appendU16(blob, n.NoteID)
		blob = appendU16(blob, n.FirstPartID)
		blob = appendU16(blob, n.PartCount)
		blob = appendU16(blob, n.TotalChunks)
		blob = appendU32(blob, n.TotalTextBytes)
		blob = append(blob, byte(len(title)), 0)
		blob = append(blob, title...)
	}

	if len(blob) > MaxObjectSize {
		return nil, fmt.Errorf("index is %d bytes, exceeds object cap %d", len(blob), MaxObjectSize)
	}
	return blob, nil
}

// truncateTitle caps a title at the container's u8 length, backing off to
// the nearest rune boundary so the stored title stays valid UTF-8.
func truncateTitle(title string) string {
	if len(title) <= maxTitleBytes {
		return title
	}
	cut := maxTitleBytes
	for cut > 0 && title[cut]&0xC0 == 0x80 {
		cut--
	}
	return title[:cut]
}

func appendU16(b []byte, v uint16) []byte {
	return append(b, byte(v), byte(v>>8))
}

func appendU32(b []byte, v uint32) []byte {
	return append(b, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}
