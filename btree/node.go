package btree

import "bytes"
import "encoding/binary"
import "fmt"

import "github.com/bnclabs/hashbt/api"

// node is the in-memory image of one fixed size record. Only the
// first keyscount key slots and, for interior nodes, the first
// keyscount+1 pointer slots are live; the remaining slots may carry
// stale values from earlier passes and are never interpreted.
type node struct {
	isleaf    bool
	keyscount uint32
	pointers  []uint32     // 2m+1 slots
	keys      []api.Digest // 2m slots
	parent    uint32
	this      uint32 // position in the store, not persisted
}

func newnode(order uint32) *node {
	nd := &node{
		pointers: make([]uint32, 2*order+1),
		keys:     make([]api.Digest, 2*order),
		parent:   UnusedPointer,
		this:     UnusedPointer,
	}
	for i := range nd.pointers {
		nd.pointers[i] = UnusedPointer
	}
	return nd
}

func (nd *node) isfull(order uint32) bool {
	return nd.keyscount == 2*order
}

// pushkey appends d as the new greatest key. Callers guarantee room
// and ordering, this is the sorted-stream fast path.
func (nd *node) pushkey(d api.Digest) {
	nd.keys[nd.keyscount] = d
	nd.keyscount++
}

// rightmost returns the live rightmost child pointer.
func (nd *node) rightmost() uint32 {
	return nd.pointers[nd.keyscount]
}

// search the live key prefix for d. Returns (true, position) on a
// hit, else (false, i) where i counts the live keys strictly less
// than d, which doubles as the child index to descend into.
func (nd *node) search(d api.Digest) (bool, int) {
	lo, hi := 0, int(nd.keyscount)
	for lo < hi {
		mid := (lo + hi) >> 1
		switch bytes.Compare(nd.keys[mid][:], d[:]) {
		case 0:
			return true, mid
		case -1:
			lo = mid + 1
		default:
			hi = mid
		}
	}
	return false, lo
}

// encode the node into buf, which must be nodesize(order) long.
// Field order on disk: is_leaf, keys_count, pointers, keys,
// parent_pointer, everything little-endian.
func (nd *node) encode(buf []byte) {
	if nd.isleaf {
		buf[0] = 1
	} else {
		buf[0] = 0
	}
	binary.LittleEndian.PutUint32(buf[1:5], nd.keyscount)
	off := 5
	for _, ptr := range nd.pointers {
		binary.LittleEndian.PutUint32(buf[off:off+4], ptr)
		off += 4
	}
	for i := range nd.keys {
		copy(buf[off:off+api.DigestLen], nd.keys[i][:])
		off += api.DigestLen
	}
	binary.LittleEndian.PutUint32(buf[off:off+4], nd.parent)
}

// decode the node from buf, the inverse of encode. The caller fills
// in this, it is recomputable from the record's offset.
func (nd *node) decode(buf []byte) {
	nd.isleaf = buf[0] == 1
	nd.keyscount = binary.LittleEndian.Uint32(buf[1:5])
	off := 5
	for i := range nd.pointers {
		nd.pointers[i] = binary.LittleEndian.Uint32(buf[off : off+4])
		off += 4
	}
	for i := range nd.keys {
		copy(nd.keys[i][:], buf[off:off+api.DigestLen])
		off += api.DigestLen
	}
	nd.parent = binary.LittleEndian.Uint32(buf[off : off+4])
}

func (nd *node) String() string {
	kind := "mnode"
	if nd.isleaf {
		kind = "znode"
	}
	return fmt.Sprintf("%v<%v keys:%v parent:%v>", kind, nd.this, nd.keyscount, nd.parent)
}
