package btree

import "fmt"
import "io"
import "path/filepath"

import "github.com/bnclabs/golog"
import "golang.org/x/exp/mmap"

import "github.com/bnclabs/hashbt/api"

// maxdepth bounds the descent, orders of magnitude above any real
// tree's height; running into it means the pointer graph is cyclic.
const maxdepth = 64

// Snapshot reads a finalized tree. Snapshots never write; any number
// of them may be open against the same file, each with its own
// handle. A single snapshot descends one path at a time and is not
// meant to be shared across goroutines, open one per reader instead.
type Snapshot struct {
	tree
	store     io.ReaderAt
	closer    io.Closer
	nnodes    int64
	logprefix string
}

// OpenSnapshot memory-maps the file at path and loads the tree
// header.
func OpenSnapshot(path string) (*Snapshot, error) {
	r, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	ss, err := NewSnapshot(r, int64(r.Len()))
	if err != nil {
		r.Close()
		return nil, err
	}
	ss.closer = r
	ss.logprefix = fmt.Sprintf("[SNAP-%s]", filepath.Base(path))
	log.Infof("%v opened with %v nodes, order %v\n", ss.logprefix, ss.nnodes, ss.order)
	return ss, nil
}

// NewSnapshot reads the tree header from an arbitrary positioned
// store of the given size.
func NewSnapshot(store io.ReaderAt, size int64) (*Snapshot, error) {
	order, root, err := readheader(store)
	if err != nil {
		return nil, err
	}
	if order == 0 || order > MaxOrder {
		return nil, fmt.Errorf("hashbt.snap.badorder: %v", order)
	}
	nsize := nodesize(order)
	if size < headerSize+nsize {
		return nil, fmt.Errorf("hashbt.snap.truncated: %v", size)
	}
	nnodes := (size - headerSize) / nsize
	if int64(root) >= nnodes {
		return nil, fmt.Errorf("hashbt.snap.badroot: %v >= %v", root, nnodes)
	}

	ss := &Snapshot{store: store, nnodes: nnodes}
	ss.order, ss.root = order, root
	ss.logprefix = "[SNAP]"
	return ss, nil
}

// Contains descends from the root following per-node binary search
// until the digest is found or a leaf rules it out. On a well-formed
// file Contains never errors; an error means the file is corrupt or
// the store failed, and the boolean is meaningless.
func (ss *Snapshot) Contains(d api.Digest) (bool, error) {
	ptr := ss.root
	for depth := 0; depth < maxdepth; depth++ {
		nd, err := ss.readnode(ss.store, ptr)
		if err != nil {
			return false, err
		}
		if int(nd.keyscount) > ss.maxkeys() {
			return false, fmt.Errorf("hashbt.snap.badkeyscount: node %v has %v", ptr, nd.keyscount)
		}
		found, idx := nd.search(d)
		if found {
			return true, nil
		}
		if nd.isleaf {
			return false, nil
		}
		ptr = nd.pointers[idx]
		if ptr == UnusedPointer || int64(ptr) >= ss.nnodes {
			return false, fmt.Errorf("hashbt.snap.badpointer: node %v child %v", nd.this, ptr)
		}
	}
	return false, fmt.Errorf("hashbt.snap.cyclic")
}

// Order returns the branching order recorded in the header.
func (ss *Snapshot) Order() int64 {
	return int64(ss.order)
}

// NumNodes returns the number of node records in the file.
func (ss *Snapshot) NumNodes() int64 {
	return ss.nnodes
}

// Height walks the leftmost path and returns the number of levels.
func (ss *Snapshot) Height() (int64, error) {
	height, ptr := int64(0), ss.root
	for depth := 0; depth < maxdepth; depth++ {
		nd, err := ss.readnode(ss.store, ptr)
		if err != nil {
			return 0, err
		}
		height++
		if nd.isleaf {
			return height, nil
		}
		ptr = nd.pointers[0]
		if ptr == UnusedPointer || int64(ptr) >= ss.nnodes {
			return 0, fmt.Errorf("hashbt.snap.badpointer: node %v child %v", nd.this, ptr)
		}
	}
	return 0, fmt.Errorf("hashbt.snap.cyclic")
}

// Count walks the whole tree and returns the number of digests it
// holds. This is a full scan over the file, meant for tooling.
func (ss *Snapshot) Count() (int64, error) {
	return ss.countnode(ss.root, 0)
}

func (ss *Snapshot) countnode(ptr uint32, depth int) (int64, error) {
	if depth >= maxdepth {
		return 0, fmt.Errorf("hashbt.snap.cyclic")
	}
	nd, err := ss.readnode(ss.store, ptr)
	if err != nil {
		return 0, err
	}
	count := int64(nd.keyscount)
	if nd.isleaf {
		return count, nil
	}
	for i := 0; i <= int(nd.keyscount); i++ {
		child := nd.pointers[i]
		if child == UnusedPointer || int64(child) >= ss.nnodes {
			return 0, fmt.Errorf("hashbt.snap.badpointer: node %v child %v", ptr, child)
		}
		n, err := ss.countnode(child, depth+1)
		if err != nil {
			return 0, err
		}
		count += n
	}
	return count, nil
}

// Stats returns the snapshot's figures derived from the header and
// the file size.
func (ss *Snapshot) Stats() map[string]interface{} {
	return map[string]interface{}{
		"order":    int64(ss.order),
		"rootptr":  int64(ss.root),
		"n_nodes":  ss.nnodes,
		"nodesize": ss.nodesize(),
	}
}

// Close releases the underlying handle if the snapshot owns one.
func (ss *Snapshot) Close() error {
	if ss.closer != nil {
		return ss.closer.Close()
	}
	return nil
}
