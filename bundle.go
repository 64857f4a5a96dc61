// Bundle archives for pack transfer.
//
// A bundle is every object of a pack in a single zstd-compressed stream,
// convenient for moving a build between hosts before the objects are
// loaded onto a device. Inside the stream each object is a length-prefixed
// record: name length (u8), name bytes, data length (u32 little-endian),
// data bytes. Records are written in sorted name order so the same pack
// always produces the same bundle.
//
// Bundles compress the transfer envelope only; object payloads inside
// remain the exact bytes the device reader expects.
package ntx

import (
	"encoding/binary"
	"fmt"
	"io"
	"sort"

	"github.com/klauspost/compress/zstd"
)

// WriteBundle writes all objects as one compressed stream.
func WriteBundle(w io.Writer, objects map[string][]byte) error {
	names := make([]string, 0, len(objects))
	for name := range objects {
		if len(name) == 0 || len(name) > 0xFF {
			return fmt.Errorf("bundle: object name %q out of range", name)
		}
		if len(objects[name]) > MaxObjectSize {
			return fmt.Errorf("bundle: object %s is %d bytes, exceeds cap %d", name, len(objects[name]), MaxObjectSize)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("bundle: %w", err)
	}

	var lead [5]byte
	for _, name := range names {
		data := objects[name]
		lead[0] = byte(len(name))
		if _, err := zw.Write(lead[:1]); err != nil {
			return fmt.Errorf("bundle: %w", err)
		}
		if _, err := io.WriteString(zw, name); err != nil {
			return fmt.Errorf("bundle: %w", err)
		}
		binary.LittleEndian.PutUint32(lead[1:5], uint32(len(data)))
		if _, err := zw.Write(lead[1:5]); err != nil {
			return fmt.Errorf("bundle: %w", err)
		}
		if _, err := zw.Write(data); err != nil {
			return fmt.Errorf("bundle: %w", err)
		}
	}

	return zw.Close()
}

// ReadBundle decompresses a bundle into an in-memory Storage. A stream
// that ends mid-record fails with ErrTruncated; a record claiming more
// than MaxObjectSize fails with ErrOutOfBounds before any allocation.
func ReadBundle(r io.Reader) (Mem, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("bundle: %w", err)
	}
	defer zr.Close()

	objects := make(Mem)
	var lead [4]byte
	for {
		if _, err := io.ReadFull(zr, lead[:1]); err == io.EOF {
			return objects, nil
		} else if err != nil {
			return nil, fmt.Errorf("%w: bundle record header: %v", ErrTruncated, err)
		}
		nameLen := int(lead[0])
		if nameLen == 0 {
			return nil, fmt.Errorf("%w: bundle record with empty name", ErrTruncated)
		}

		name := make([]byte, nameLen)
		if _, err := io.ReadFull(zr, name); err != nil {
			return nil, fmt.Errorf("%w: bundle record name: %v", ErrTruncated, err)
		}
		if _, err := io.ReadFull(zr, lead[:4]); err != nil {
			return nil, fmt.Errorf("%w: bundle record %s length: %v", ErrTruncated, name, err)
		}

		dataLen := binary.LittleEndian.Uint32(lead[:4])
		if dataLen > MaxObjectSize {
			return nil, fmt.Errorf("%w: bundle record %s claims %d bytes", ErrOutOfBounds, name, dataLen)
		}

		data := make([]byte, dataLen)
		if _, err := io.ReadFull(zr, data); err != nil {
			return nil, fmt.Errorf("%w: bundle record %s data: %v", ErrTruncated, name, err)
		}
		objects[string(name)] = data
	}
}
