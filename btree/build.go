package btree

import "fmt"

import "github.com/bnclabs/golog"
import s "github.com/bnclabs/gosettings"
import humanize "github.com/dustin/go-humanize"

import "github.com/bnclabs/hashbt/api"
import "github.com/bnclabs/hashbt/lib"

// Builder constructs the persisted btree from a strictly ascending
// stream of digests, in one pass. Because every digest is greater
// than all before it, growth always happens at the right edge: the
// builder keeps only the rightmost root-to-leaf path in memory, nodes
// to the left are flushed full and revisited only by the finalization
// passes.
type Builder struct {
	tree
	store     api.Store
	name      string
	logprefix string

	nextptr uint32
	path    []*node // rightmost root-to-leaf path, path[0] is the root
	height  int64
	lastkey api.Digest

	finalized bool

	// finalization state
	synthetic      map[uint32]bool   // nodes created to satisfy minimum child counts
	lent           map[uint32]uint32 // donor pointer -> number of digests lent away
	pendingtops    int               // interiors still to be raised to minimum occupancy
	pendingrefills int               // drained interior slots still to be healed

	// statistics
	n_count    int64
	n_borrowed int64
	a_leaffill *lib.AverageInt64
	h_leaffill *lib.HistogramInt64
}

// NewBuilder returns a builder writing to store. The store becomes
// the builder's alone until Finalize returns. Settings: see
// DefaultSettings().
func NewBuilder(store api.Store, name string, setts s.Settings) (*Builder, error) {
	order := setts.Int64("order")
	if order < 1 || order > MaxOrder {
		return nil, fmt.Errorf("hashbt.build.badorder: %v", order)
	}

	b := &Builder{
		store:   store,
		name:    name,
		nextptr: 0,
		height:  1,
	}
	b.order = uint32(order)
	b.logprefix = fmt.Sprintf("[BTREE-%s]", name)
	b.a_leaffill = &lib.AverageInt64{}
	width := order / 8
	if width < 1 {
		width = 1
	}
	b.h_leaffill = lib.NewhistogramInt64(0, 2*order, width)

	if err := b.writeheader(store); err != nil {
		return nil, err
	}

	root := newnode(b.order)
	root.this = b.newnodeptr()
	root.isleaf = true
	b.path = append(b.path, root)

	log.Infof("%v started with order %v ...\n", b.logprefix, order)
	return b, nil
}

func (b *Builder) newnodeptr() uint32 {
	ptr := b.nextptr
	b.nextptr++
	return ptr
}

func (b *Builder) back() *node {
	return b.path[len(b.path)-1]
}

// InsertSorted adds the next digest. The digest must be strictly
// greater than every digest inserted before it; unsorted or duplicate
// input panics, the contract is on the caller.
func (b *Builder) InsertSorted(d api.Digest) error {
	if b.finalized {
		return fmt.Errorf("hashbt.build.finalized")
	}
	if b.n_count > 0 && d.Compare(b.lastkey) <= 0 {
		panic(fmt.Errorf("hashbt.build.unsorted: %v after %v", d, b.lastkey))
	}

	leaf := b.back()
	if leaf.isfull(b.order) {
		if err := b.split(d, 0); err != nil {
			return err
		}
	} else {
		leaf.pushkey(d)
	}
	b.lastkey, b.n_count = d, b.n_count+1
	return nil
}

// Build drains iter into the builder. The iterator is the sorted key
// source, typically a full scan over the prepared corpus.
func (b *Builder) Build(iter api.DigestIterator) error {
	for {
		d, ok, err := iter.Next()
		if err != nil {
			return err
		} else if ok == false {
			return nil
		}
		if err := b.InsertSorted(d); err != nil {
			return err
		}
	}
}

// split makes room for d when the node level levels above the leaf is
// full. The node is flushed, not to change again before Finalize, and d is pushed
// into the nearest non-full ancestor; a fresh empty chain of children
// grows below it down to the leaf level. If every node on the path is
// full the tree grows a new root.
func (b *Builder) split(d api.Digest, level int) error {
	if len(b.path) == 1 {
		return b.growroot(d, level)
	}

	nd := b.back()
	if err := b.flushnode(nd); err != nil {
		return err
	}
	b.path = b.path[:len(b.path)-1]

	parent := b.back()
	if parent.isfull(b.order) {
		return b.split(d, level+1)
	}
	// d is greater than every key in parent, appending keeps order.
	parent.pushkey(d)
	return b.createchildren(level)
}

// growroot replaces the full root with a fresh one holding d alone,
// the old root as leftmost child and an empty spine to its right.
func (b *Builder) growroot(d api.Digest, level int) error {
	newrootptr := b.newnodeptr()

	oldroot := b.back()
	oldrootptr := oldroot.this
	oldroot.parent = newrootptr
	if err := b.flushnode(oldroot); err != nil {
		return err
	}
	b.path = b.path[:len(b.path)-1]

	newroot := newnode(b.order)
	newroot.this = newrootptr
	newroot.isleaf = false
	newroot.pushkey(d)
	newroot.pointers[0] = oldrootptr
	b.path = append(b.path, newroot)

	if err := b.createchildren(level); err != nil {
		return err
	}
	if err := b.setrootptr(b.store, newrootptr); err != nil {
		return err
	}
	b.height++
	return nil
}

// createchildren appends a chain of level+1 empty nodes below the
// back of the path, the last one a leaf. Each parent's rightmost live
// pointer is wired to the new child before descending.
func (b *Builder) createchildren(level int) error {
	for lvl := level; ; lvl-- {
		parent := b.back()
		child := newnode(b.order)
		child.this = b.newnodeptr()
		child.parent = parent.this
		child.isleaf = lvl == 0
		parent.pointers[parent.keyscount] = child.this
		b.path = append(b.path, child)
		if lvl == 0 {
			return nil
		}
	}
}

func (b *Builder) flushnode(nd *node) error {
	if nd.isleaf {
		b.a_leaffill.Add(int64(nd.keyscount))
		b.h_leaffill.Add(int64(nd.keyscount))
	}
	return b.writenode(b.store, nd)
}

// Finalize flushes the remaining rightmost path and reshapes the
// right edge of the tree into a legal btree: interior nodes short of
// children are padded with empty ones, interior nodes short of keys
// borrow them from flushed nodes to their left. After Finalize the
// tree is immutable and ready for Snapshot.
func (b *Builder) Finalize() error {
	if b.finalized {
		return fmt.Errorf("hashbt.build.finalized")
	}

	for i := len(b.path) - 1; i >= 0; i-- {
		if err := b.flushnode(b.path[i]); err != nil {
			return err
		}
	}
	b.path = b.path[:0]

	b.synthetic = make(map[uint32]bool)
	b.lent = make(map[uint32]uint32)

	if err := b.fulfill(b.root, 1); err != nil {
		return err
	}
	if err := b.rebalancekeys(); err != nil {
		return err
	}

	b.finalized = true
	log.Infof("%v built %v digests, %v nodes, height %v\n",
		b.logprefix, humanize.Comma(b.n_count), humanize.Comma(int64(b.nextptr)),
		b.height)
	return nil
}

// Count returns the number of digests inserted so far.
func (b *Builder) Count() int64 {
	return b.n_count
}

// Stats returns the builder's figures, meaningful once Finalize has
// returned.
func (b *Builder) Stats() map[string]interface{} {
	return map[string]interface{}{
		"n_count":     b.n_count,
		"n_nodes":     int64(b.nextptr),
		"n_synthetic": int64(len(b.synthetic)),
		"n_borrowed":  b.n_borrowed,
		"height":      b.height,
		"order":       int64(b.order),
		"a_leaffill":  b.a_leaffill.Stats(),
		"h_leaffill":  b.h_leaffill.Fullstats(),
	}
}
