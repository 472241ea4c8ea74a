package api

import "io"

// DigestIterator supplies digests in strictly ascending order with no
// duplicates, one at a time. Next returns false once the stream is
// exhausted; a non-nil error means the underlying source failed and
// the stream is not usable further.
type DigestIterator interface {
	Next() (d Digest, ok bool, err error)
}

// Store is the random-access byte sink and source the btree engine
// builds against. Reads and writes are exact: a short read or short
// write is an error. *os.File satisfies Store.
type Store interface {
	io.ReaderAt
	io.WriterAt
}
