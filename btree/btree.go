package btree

import "encoding/binary"
import "fmt"
import "io"

import "github.com/bnclabs/hashbt/api"
import "github.com/bnclabs/hashbt/lib"

// UnusedPointer marks a pointer slot with no node behind it. The root
// carries it as parent pointer.
const UnusedPointer = uint32(0xFFFFFFFF)

// headerSize is order followed by root pointer, both uint32.
const headerSize = int64(8)

// MaxOrder bounds the branching order; at the bound a node record
// takes a little over 48 MiB.
const MaxOrder = 1024 * 1024

// tree carries the geometry shared between the builder and the
// snapshot: the branching order m and the current root pointer. A
// node holds up to 2m keys and 2m+1 children, non-root interior
// nodes hold at least m keys once finalized.
type tree struct {
	order uint32
	root  uint32
	buf   []byte // codec scratch, reused across read/write calls
}

func (t *tree) maxkeys() int {
	return int(2 * t.order)
}

func (t *tree) minkeys() int {
	return int(t.order)
}

func (t *tree) nodesize() int64 {
	return nodesize(t.order)
}

func (t *tree) nodeoffset(ptr uint32) int64 {
	return headerSize + int64(ptr)*t.nodesize()
}

// nodesize is the on-disk footprint of one node record: is_leaf,
// keys_count, 2m+1 pointers, 2m keys and the parent pointer.
func nodesize(order uint32) int64 {
	m := int64(order)
	return 1 + 4 + (2*m+1)*4 + 2*m*api.DigestLen + 4
}

// readnode fetches the fixed size record for ptr and decodes it. The
// codec trusts the record, invariants are for Validate() to check.
func (t *tree) readnode(r io.ReaderAt, ptr uint32) (*node, error) {
	t.buf = lib.Fixbuffer(t.buf, t.nodesize())
	n, err := r.ReadAt(t.buf, t.nodeoffset(ptr))
	if err != nil {
		return nil, err
	} else if int64(n) != t.nodesize() {
		return nil, fmt.Errorf("hashbt.btree.partialread: %v != %v", n, t.nodesize())
	}
	nd := newnode(t.order)
	nd.decode(t.buf)
	nd.this = ptr
	return nd, nil
}

// writenode encodes nd and writes it at the position implied by its
// pointer.
func (t *tree) writenode(w io.WriterAt, nd *node) error {
	if nd.this == UnusedPointer {
		panic(fmt.Errorf("hashbt.btree.writeunallocated"))
	}
	t.buf = lib.Fixbuffer(t.buf, t.nodesize())
	nd.encode(t.buf)
	n, err := w.WriteAt(t.buf, t.nodeoffset(nd.this))
	if err != nil {
		return err
	} else if int64(n) != t.nodesize() {
		return fmt.Errorf("hashbt.btree.partialwrite: %v != %v", n, t.nodesize())
	}
	return nil
}

// writeheader persists order and root pointer at the head of the
// store. Order is written once per file, the root pointer is
// rewritten in place whenever the root changes.
func (t *tree) writeheader(w io.WriterAt) error {
	var scratch [8]byte
	binary.LittleEndian.PutUint32(scratch[:4], t.order)
	binary.LittleEndian.PutUint32(scratch[4:], t.root)
	n, err := w.WriteAt(scratch[:], 0)
	if err != nil {
		return err
	} else if n != len(scratch) {
		return fmt.Errorf("hashbt.btree.partialwrite: %v != %v", n, len(scratch))
	}
	return nil
}

// setrootptr updates the persisted root pointer in place.
func (t *tree) setrootptr(w io.WriterAt, ptr uint32) error {
	t.root = ptr
	var scratch [4]byte
	binary.LittleEndian.PutUint32(scratch[:], ptr)
	n, err := w.WriteAt(scratch[:], 4)
	if err != nil {
		return err
	} else if n != len(scratch) {
		return fmt.Errorf("hashbt.btree.partialwrite: %v != %v", n, len(scratch))
	}
	return nil
}

// readheader loads order and root pointer from the head of the store.
func readheader(r io.ReaderAt) (order, root uint32, err error) {
	var scratch [8]byte
	n, err := r.ReadAt(scratch[:], 0)
	if err != nil {
		return 0, 0, err
	} else if n != len(scratch) {
		return 0, 0, fmt.Errorf("hashbt.btree.partialread: %v != %v", n, len(scratch))
	}
	order = binary.LittleEndian.Uint32(scratch[:4])
	root = binary.LittleEndian.Uint32(scratch[4:])
	return order, root, nil
}
