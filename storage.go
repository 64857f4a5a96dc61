// Storage access for named pack objects.
//
// The device exposes a minimal named-object primitive: open by name, get
// size, rewind, bulk read, close, every call fallible. The decoders only
// ever need "the whole object or a reason why not", so readObject wraps
// the primitive into exactly that and maps each deviation (open failure,
// zero size, short read) onto the error taxonomy with the failing object's
// name attached. Nothing is retried.
package ntx

import (
	"fmt"
	"io"
	"os"
)

// Storage is the named-object primitive the pack lives on.
type Storage interface {
	// Open opens an existing object by name; it fails if the object is
	// absent or unreadable.
	Open(name string) (Object, error)
}

// Object is one opened storage object.
type Object interface {
	Size() (int, error)
	Rewind() error
	Read(p []byte) (int, error)
	Close() error
}

// readObject loads an entire named object into a fresh buffer.
func readObject(st Storage, name string) ([]byte, error) {
	obj, err := st.Open(name)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrUnavailable, name, err)
	}
	defer obj.Close()

	sz, err := obj.Size()
	if err != nil {
		return nil, fmt.Errorf("%w: size %s: %v", ErrUnavailable, name, err)
	}
	if sz == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmpty, name)
	}
	if err := obj.Rewind(); err != nil {
		return nil, fmt.Errorf("%w: rewind %s: %v", ErrUnavailable, name, err)
	}

	buf := make([]byte, sz)
	if _, err := io.ReadFull(obj, buf); err != nil {
		return nil, fmt.Errorf("%w: short read %s: %v", ErrUnavailable, name, err)
	}
	return buf, nil
}

// objExt is the filename suffix Dir uses for pack objects on a host
// filesystem, matching what the builder writes.
const objExt = ".bin"

// Dir serves pack objects from <name>.bin files in a single directory.
// Access is sandboxed with os.Root so a hostile object name cannot escape
// the pack directory.
type Dir struct {
	root *os.Root
}

// OpenDir opens a pack directory.
func OpenDir(path string) (*Dir, error) {
	root, err := os.OpenRoot(path)
	if err != nil {
		return nil, err
	}
	return &Dir{root: root}, nil
}

func (d *Dir) Open(name string) (Object, error) {
	f, err := d.root.Open(name + objExt)
	if err != nil {
		return nil, err
	}
	return &fileObject{f: f}, nil
}

func (d *Dir) Close() error {
	return d.root.Close()
}

type fileObject struct {
	f *os.File
}

func (o *fileObject) Size() (int, error) {
	info, err := o.f.Stat()
	if err != nil {
		return 0, err
	}
	return int(info.Size()), nil
}

func (o *fileObject) Rewind() error {
	_, err := o.f.Seek(0, io.SeekStart)
	return err
}

func (o *fileObject) Read(p []byte) (int, error) {
	return o.f.Read(p)
}

func (o *fileObject) Close() error {
	return o.f.Close()
}

// Mem serves pack objects from memory. It backs bundle reads and tests.
type Mem map[string][]byte

func (m Mem) Open(name string) (Object, error) {
	data, ok := m[name]
	if !ok {
		return nil, fmt.Errorf("no object %q", name)
	}
	return &memObject{data: data}, nil
}

type memObject struct {
	data []byte
	pos  int
}

func (o *memObject) Size() (int, error) {
	return len(o.data), nil
}

func (o *memObject) Rewind() error {
	o.pos = 0
	return nil
}

func (o *memObject) Read(p []byte) (int, error) {
	if o.pos >= len(o.data) {
		return 0, io.EOF
	}
	n := copy(p, o.data[o.pos:])
	o.pos += n
	return n, nil
}

func (o *memObject) Close() error {
	return nil
}
