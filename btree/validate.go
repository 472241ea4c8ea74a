package btree

import "fmt"

import "github.com/bnclabs/hashbt/api"

// Validate walks the whole tree and checks it against the btree
// invariants: occupancy bounds, strict key ordering within and across
// nodes, live child counts, parent back-pointers and uniform leaf
// depth. It is meant for tests and tooling, a full build should
// always produce a tree that validates.
func (ss *Snapshot) Validate() error {
	root, err := ss.readnode(ss.store, ss.root)
	if err != nil {
		return err
	}
	if root.isleaf == false && root.keyscount == 0 {
		return fmt.Errorf("hashbt.validate.emptyroot")
	}

	v := &validator{ss: ss, leafdepth: -1}
	return v.validatenode(ss.root, 0, nil, nil, UnusedPointer)
}

type validator struct {
	ss        *Snapshot
	leafdepth int64
}

// validatenode checks one node and recurses into its live children.
// lo and hi are exclusive bounds inherited from ancestor keys, nil
// for unbounded.
func (v *validator) validatenode(ptr uint32, depth int64, lo, hi *api.Digest, parent uint32) error {
	if depth >= maxdepth {
		return fmt.Errorf("hashbt.validate.cyclic")
	}
	nd, err := v.ss.readnode(v.ss.store, ptr)
	if err != nil {
		return err
	}

	if int(nd.keyscount) > v.ss.maxkeys() {
		return fmt.Errorf("hashbt.validate.overfull: node %v has %v keys", ptr, nd.keyscount)
	}
	isroot := parent == UnusedPointer
	if isroot == false {
		if nd.parent != parent {
			return fmt.Errorf("hashbt.validate.badparent: node %v has %v, expected %v",
				ptr, nd.parent, parent)
		}
		if nd.isleaf == false && int(nd.keyscount) < v.ss.minkeys() {
			return fmt.Errorf("hashbt.validate.underfull: node %v has %v keys",
				ptr, nd.keyscount)
		}
	}

	for i := 0; i < int(nd.keyscount); i++ {
		key := nd.keys[i]
		if lo != nil && key.Compare(*lo) <= 0 {
			return fmt.Errorf("hashbt.validate.outofbounds: node %v key %v", ptr, i)
		}
		if hi != nil && key.Compare(*hi) >= 0 {
			return fmt.Errorf("hashbt.validate.outofbounds: node %v key %v", ptr, i)
		}
		if i > 0 && nd.keys[i-1].Compare(key) >= 0 {
			return fmt.Errorf("hashbt.validate.unordered: node %v key %v", ptr, i)
		}
	}

	if nd.isleaf {
		if v.leafdepth == -1 {
			v.leafdepth = depth
		} else if v.leafdepth != depth {
			return fmt.Errorf("hashbt.validate.leafdepth: node %v at %v, expected %v",
				ptr, depth, v.leafdepth)
		}
		return nil
	}

	// an interior node with k live keys has exactly k+1 live children.
	for i := 0; i <= int(nd.keyscount); i++ {
		child := nd.pointers[i]
		if child == UnusedPointer || int64(child) >= v.ss.nnodes {
			return fmt.Errorf("hashbt.validate.badpointer: node %v child slot %v", ptr, i)
		}
		clo, chi := lo, hi
		if i > 0 {
			clo = &nd.keys[i-1]
		}
		if i < int(nd.keyscount) {
			chi = &nd.keys[i]
		}
		if err := v.validatenode(child, depth+1, clo, chi, ptr); err != nil {
			return err
		}
	}
	return nil
}
