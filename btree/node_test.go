package btree

import "testing"

func TestNodesize(t *testing.T) {
	// is_leaf(1) + keys_count(4) + (2m+1)*4 pointers + 2m*20 keys +
	// parent(4).
	if x, y := int64(61), nodesize(1); x != y {
		t.Fatalf("expected %v, got %v", x, y)
	}
	if x, y := int64(48*1024+13), nodesize(1024); x != y {
		t.Fatalf("expected %v, got %v", x, y)
	}
}

func TestNodeCodec(t *testing.T) {
	order := uint32(4)
	nd := newnode(order)
	nd.this = 42
	nd.parent = 7
	nd.isleaf = false
	nd.keyscount = 5
	for i := 0; i < 5; i++ {
		nd.keys[i] = makedigest(uint64(i + 1))
	}
	for i := 0; i <= 5; i++ {
		nd.pointers[i] = uint32(100 + i)
	}

	buf := make([]byte, nodesize(order))
	nd.encode(buf)

	out := newnode(order)
	out.decode(buf)
	out.this = nd.this

	if out.isleaf != nd.isleaf {
		t.Fatalf("expected %v, got %v", nd.isleaf, out.isleaf)
	} else if out.keyscount != nd.keyscount {
		t.Fatalf("expected %v, got %v", nd.keyscount, out.keyscount)
	} else if out.parent != nd.parent {
		t.Fatalf("expected %v, got %v", nd.parent, out.parent)
	}
	for i := range nd.pointers {
		if out.pointers[i] != nd.pointers[i] {
			t.Fatalf("pointer %v: expected %v, got %v", i, nd.pointers[i], out.pointers[i])
		}
	}
	for i := range nd.keys {
		if out.keys[i] != nd.keys[i] {
			t.Fatalf("key %v: expected %v, got %v", i, nd.keys[i], out.keys[i])
		}
	}
}

func TestNodeCodecLeaf(t *testing.T) {
	order := uint32(2)
	nd := newnode(order)
	nd.this = 0
	nd.isleaf = true
	nd.pushkey(makedigest(10))
	nd.pushkey(makedigest(20))

	buf := make([]byte, nodesize(order))
	nd.encode(buf)

	out := newnode(order)
	out.decode(buf)
	if out.isleaf == false {
		t.Fatalf("expected leaf")
	} else if out.keyscount != 2 {
		t.Fatalf("expected %v, got %v", 2, out.keyscount)
	} else if out.keys[0] != makedigest(10) || out.keys[1] != makedigest(20) {
		t.Fatalf("keys mismatch")
	} else if out.parent != UnusedPointer {
		t.Fatalf("expected unused parent, got %v", out.parent)
	}
}

func TestNodeSearch(t *testing.T) {
	nd := newnode(8)
	for i := uint64(1); i <= 10; i++ {
		nd.pushkey(makedigest(i * 2)) // 2, 4, ... 20
	}

	for i := uint64(1); i <= 10; i++ {
		found, idx := nd.search(makedigest(i * 2))
		if found == false {
			t.Fatalf("expected to find %v", i*2)
		} else if idx != int(i-1) {
			t.Fatalf("expected index %v, got %v", i-1, idx)
		}
	}
	// misses land on the insertion index.
	if found, idx := nd.search(makedigest(1)); found || idx != 0 {
		t.Fatalf("expected (false, 0), got (%v, %v)", found, idx)
	}
	if found, idx := nd.search(makedigest(5)); found || idx != 2 {
		t.Fatalf("expected (false, 2), got (%v, %v)", found, idx)
	}
	if found, idx := nd.search(makedigest(21)); found || idx != 10 {
		t.Fatalf("expected (false, 10), got (%v, %v)", found, idx)
	}

	// only the live prefix is searched.
	nd.keyscount = 5
	if found, idx := nd.search(makedigest(12)); found || idx != 5 {
		t.Fatalf("expected (false, 5), got (%v, %v)", found, idx)
	}
}
